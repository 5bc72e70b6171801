package storage

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"meta_media/internal/common"
	"meta_media/internal/logger"

	"github.com/google/uuid"
)

// LocalStrategy lưu file vào một thư mục quản lý trên filesystem,
// được serve trực tiếp bởi ứng dụng qua prefix /uploads.
type LocalStrategy struct {
	uploadDir string
}

// NewLocalStrategy tạo mới LocalStrategy, đảm bảo thư mục upload tồn tại
func NewLocalStrategy(uploadDir string) (*LocalStrategy, error) {
	if err := os.MkdirAll(uploadDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create upload directory %s: %w", uploadDir, err)
	}
	return &LocalStrategy{uploadDir: uploadDir}, nil
}

// Store di chuyển file tạm vào thư mục upload với tên file chống trùng lặp.
// Locator trả về là đường dẫn được serve trực tiếp bởi ứng dụng.
func (s *LocalStrategy) Store(ctx context.Context, tempPath string, originalFilename string, size int64) (*Placement, error) {
	storedName := uuid.NewString() + filepath.Ext(originalFilename)
	destPath := filepath.Join(s.uploadDir, storedName)

	if err := moveFile(tempPath, destPath); err != nil {
		return nil, common.NewError(
			common.ErrCodeStoragePlacement,
			fmt.Sprintf("Không di chuyển được file vào thư mục lưu trữ: %v", err),
			common.StatusInternalServerError,
			err,
		)
	}

	return &Placement{
		Locator:     "/uploads/" + storedName,
		StorageKey:  storedName,
		MediaSource: destPath,
	}, nil
}

// Delete xóa file vật lý khỏi thư mục upload
func (s *LocalStrategy) Delete(ctx context.Context, storageKey string) error {
	path := filepath.Join(s.uploadDir, filepath.Base(storageKey))
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return common.NewError(
			common.ErrCodeStoragePlacement,
			fmt.Sprintf("Không xóa được file lưu trữ: %v", err),
			common.StatusInternalServerError,
			err,
		)
	}
	return nil
}

// ResolvePath trả về đường dẫn tuyệt đối của một storage key (dùng cho streaming)
func (s *LocalStrategy) ResolvePath(storageKey string) string {
	return filepath.Join(s.uploadDir, filepath.Base(storageKey))
}

// moveFile di chuyển file, fallback copy khi rename qua filesystem khác thất bại
func moveFile(src, dst string) error {
	if err := os.Rename(src, dst); err == nil {
		return nil
	}

	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return err
	}

	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		os.Remove(dst)
		return err
	}
	if err := out.Close(); err != nil {
		return err
	}

	// Xóa file nguồn sau khi copy xong, lỗi xóa chỉ log
	if err := os.Remove(src); err != nil {
		logger.GetAppLogger().WithError(err).Warn("Không xóa được file tạm sau khi copy")
	}
	return nil
}
