package storage

import (
	"context"
	"fmt"
	"io"
	"mime"
	"os"
	"path/filepath"

	"meta_media/internal/common"
	"meta_media/internal/logger"

	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"
)

// chunkedPartSize là kích thước mỗi part khi upload chunked (16 MB)
const chunkedPartSize = 16 * 1024 * 1024

// compressor nén một file video vào file tạm mới
type compressor interface {
	Compress(ctx context.Context, source string) (string, error)
}

// objectUploader trừu tượng hóa backend object storage để test được
// cây quyết định transfer mà không cần backend thật.
type objectUploader interface {
	UploadDirect(ctx context.Context, path, key, contentType string) (string, error)
	UploadChunked(ctx context.Context, path, key, contentType string, size int64) (string, error)
	Remove(ctx context.Context, key string) error
}

// RemoteStrategy đưa file lên remote object storage với cây quyết định
// nén/chunked theo kích thước file.
type RemoteStrategy struct {
	uploader          objectUploader
	transcoder        compressor
	compressThreshold int64 // Trên ngưỡng này thì thử nén trước khi upload
	directUploadLimit int64 // Trên ngưỡng này thì phải upload chunked
}

// NewRemoteStrategy tạo mới RemoteStrategy với backend MinIO
func NewRemoteStrategy(client *minio.Client, core *minio.Core, bucket string, transcoder *Transcoder, compressThreshold, directUploadLimit int64) *RemoteStrategy {
	return &RemoteStrategy{
		uploader:          &minioUploader{client: client, core: core, bucket: bucket},
		transcoder:        transcoder,
		compressThreshold: compressThreshold,
		directUploadLimit: directUploadLimit,
	}
}

// newRemoteStrategyWithUploader dùng cho test với uploader/compressor giả
func newRemoteStrategyWithUploader(uploader objectUploader, transcoder compressor, compressThreshold, directUploadLimit int64) *RemoteStrategy {
	return &RemoteStrategy{
		uploader:          uploader,
		transcoder:        transcoder,
		compressThreshold: compressThreshold,
		directUploadLimit: directUploadLimit,
	}
}

// Store đưa file tạm lên remote storage.
// File <= compressThreshold upload thẳng. File lớn hơn được thử nén trước:
// nén thất bại hoặc không nhỏ hơn thì fallback chunked upload file gốc,
// nén được thì upload file nén (direct hay chunked tùy kích thước sau nén).
// Các file tạm liên quan được xóa sau khi upload thành công, và best-effort
// xóa trên nhánh lỗi.
func (s *RemoteStrategy) Store(ctx context.Context, tempPath string, originalFilename string, size int64) (*Placement, error) {
	key := uuid.NewString() + filepath.Ext(originalFilename)
	contentType := mime.TypeByExtension(filepath.Ext(originalFilename))
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	log := logger.GetAppLogger().WithField("storageKey", key)

	uploadPath := tempPath
	uploadSize := size
	var compressedPath string

	if size > s.compressThreshold {
		compressedSize := int64(-1)
		path, err := s.transcoder.Compress(ctx, tempPath)
		compressedPath = path
		if err != nil {
			log.WithError(err).Warn("Nén video thất bại, fallback upload file gốc")
			removeQuiet(compressedPath)
			compressedPath = ""
		} else if info, statErr := os.Stat(path); statErr == nil {
			compressedSize = info.Size()
		}

		decision := DecideTransfer(size, compressedSize, s.compressThreshold, s.directUploadLimit)
		if decision.UseCompressed {
			uploadPath = compressedPath
			uploadSize = compressedSize
		} else if compressedPath != "" {
			// File nén không được dùng đến, xóa luôn
			removeQuiet(compressedPath)
			compressedPath = ""
		}

		if decision.Method == TransferChunked {
			url, err := s.uploader.UploadChunked(ctx, uploadPath, key, contentType, uploadSize)
			return s.finish(tempPath, compressedPath, key, url, err)
		}
	}

	url, err := s.uploader.UploadDirect(ctx, uploadPath, key, contentType)
	return s.finish(tempPath, compressedPath, key, url, err)
}

// finish dọn dẹp file tạm và đóng gói kết quả/lỗi upload
func (s *RemoteStrategy) finish(tempPath, compressedPath, key, url string, err error) (*Placement, error) {
	// Dọn file tạm trên mọi nhánh, lỗi dọn dẹp chỉ log
	removeQuiet(tempPath)
	if compressedPath != "" {
		removeQuiet(compressedPath)
	}

	if err != nil {
		return nil, common.NewError(
			common.ErrCodeStorageUpload,
			fmt.Sprintf("Upload lên remote storage thất bại: %v", err),
			common.StatusInternalServerError,
			err,
		)
	}
	if url == "" {
		return nil, common.NewError(
			common.ErrCodeStorageUpload,
			"Remote storage không trả về URL truy xuất",
			common.StatusInternalServerError,
			nil,
		)
	}

	return &Placement{Locator: url, StorageKey: key, MediaSource: url}, nil
}

// Delete xóa object khỏi remote storage
func (s *RemoteStrategy) Delete(ctx context.Context, storageKey string) error {
	if err := s.uploader.Remove(ctx, storageKey); err != nil {
		return common.NewError(
			common.ErrCodeStoragePlacement,
			fmt.Sprintf("Không xóa được object trên remote storage: %v", err),
			common.StatusInternalServerError,
			err,
		)
	}
	return nil
}

// removeQuiet xóa file, lỗi chỉ log không escalate
func removeQuiet(path string) {
	if path == "" {
		return
	}
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		logger.GetAppLogger().WithError(err).WithField("path", path).Warn("Không xóa được file tạm")
	}
}

// minioUploader triển khai objectUploader trên MinIO/S3-compatible storage
type minioUploader struct {
	client *minio.Client
	core   *minio.Core
	bucket string
}

// UploadDirect upload file trong một request duy nhất
func (u *minioUploader) UploadDirect(ctx context.Context, path, key, contentType string) (string, error) {
	_, err := u.client.FPutObject(ctx, u.bucket, key, path, minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return "", err
	}
	return u.objectURL(key), nil
}

// UploadChunked upload file theo từng part qua multipart upload API.
// Nếu có lỗi giữa chừng, multipart upload được abort để không giữ rác
// trên backend.
func (u *minioUploader) UploadChunked(ctx context.Context, path, key, contentType string, size int64) (string, error) {
	file, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer file.Close()

	uploadID, err := u.core.NewMultipartUpload(ctx, u.bucket, key, minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return "", err
	}

	var parts []minio.CompletePart
	partNumber := 1
	remaining := size

	for remaining > 0 {
		partSize := int64(chunkedPartSize)
		if remaining < partSize {
			partSize = remaining
		}

		part, err := u.core.PutObjectPart(ctx, u.bucket, key, uploadID, partNumber,
			io.LimitReader(file, partSize), partSize, minio.PutObjectPartOptions{})
		if err != nil {
			u.abortQuiet(ctx, key, uploadID)
			return "", err
		}

		parts = append(parts, minio.CompletePart{
			PartNumber: partNumber,
			ETag:       part.ETag,
		})
		remaining -= partSize
		partNumber++
	}

	if _, err := u.core.CompleteMultipartUpload(ctx, u.bucket, key, uploadID, parts, minio.PutObjectOptions{}); err != nil {
		u.abortQuiet(ctx, key, uploadID)
		return "", err
	}

	return u.objectURL(key), nil
}

// Remove xóa object khỏi bucket
func (u *minioUploader) Remove(ctx context.Context, key string) error {
	return u.client.RemoveObject(ctx, u.bucket, key, minio.RemoveObjectOptions{})
}

func (u *minioUploader) abortQuiet(ctx context.Context, key, uploadID string) {
	if err := u.core.AbortMultipartUpload(ctx, u.bucket, key, uploadID); err != nil {
		logger.GetAppLogger().WithError(err).WithField("storageKey", key).Warn("Không abort được multipart upload")
	}
}

func (u *minioUploader) objectURL(key string) string {
	return u.client.EndpointURL().String() + "/" + u.bucket + "/" + key
}
