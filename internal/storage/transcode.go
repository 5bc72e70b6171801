package storage

import (
	"context"
	"fmt"
	"os/exec"
	"path/filepath"
	"strings"

	"meta_media/internal/common"

	"github.com/google/uuid"
)

// Transcoder gọi ffmpeg để re-encode video nhằm giảm kích thước file.
// Chỉ giảm chất lượng/bitrate trong giới hạn, không đổi format.
type Transcoder struct {
	ffmpegBinary string
	tempDir      string
}

// NewTranscoder tạo mới Transcoder
func NewTranscoder(ffmpegBinary, tempDir string) *Transcoder {
	if ffmpegBinary == "" {
		ffmpegBinary = "ffmpeg"
	}
	return &Transcoder{ffmpegBinary: ffmpegBinary, tempDir: tempDir}
}

// Compress re-encode file nguồn vào một file tạm mới và trả về đường dẫn.
// Caller chịu trách nhiệm xóa file output (kể cả khi không dùng đến).
func (t *Transcoder) Compress(ctx context.Context, source string) (string, error) {
	dest := filepath.Join(t.tempDir, "compressed-"+uuid.NewString()+filepath.Ext(source))

	args := []string{
		"-y",
		"-hide_banner",
		"-loglevel", "error",
		"-i", source,
		"-c:v", "libx264",
		"-crf", "28",
		"-preset", "fast",
		"-maxrate", "2M",
		"-bufsize", "4M",
		"-c:a", "aac",
		"-b:a", "128k",
		dest,
	}
	cmd := exec.CommandContext(ctx, t.ffmpegBinary, args...) //nolint:gosec
	if output, err := cmd.CombinedOutput(); err != nil {
		return dest, common.NewError(
			common.ErrCodeStorageTranscode,
			fmt.Sprintf("Nén video bằng ffmpeg thất bại: %v: %s", err, strings.TrimSpace(string(output))),
			common.StatusInternalServerError,
			err,
		)
	}
	return dest, nil
}
