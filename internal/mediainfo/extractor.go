// Package mediainfo trích xuất metadata media (duration, resolution, codec)
// từ một file bằng ffprobe.
package mediainfo

import (
	"context"
	"encoding/json"
	"fmt"
	"os/exec"
	"strconv"
	"strings"

	"meta_media/internal/common"
)

// Metadata chứa thông tin trích xuất được từ một file media
type Metadata struct {
	Duration float64 // Thời lượng (giây)
	Width    int     // Chiều rộng (pixels)
	Height   int     // Chiều cao (pixels)
	Codec    string  // Tên codec của video stream
}

// Extractor gọi ffprobe để đọc metadata. Không có side effect,
// lỗi không được tự động retry — caller quyết định xử lý.
type Extractor struct {
	ffprobeBinary string
}

// NewExtractor tạo mới Extractor với đường dẫn binary ffprobe
func NewExtractor(ffprobeBinary string) *Extractor {
	if ffprobeBinary == "" {
		ffprobeBinary = "ffprobe"
	}
	return &Extractor{ffprobeBinary: ffprobeBinary}
}

// ffprobeOutput là cấu trúc JSON trả về từ ffprobe
type ffprobeOutput struct {
	Streams []struct {
		CodecType string `json:"codec_type"`
		CodecName string `json:"codec_name"`
		Width     int    `json:"width"`
		Height    int    `json:"height"`
	} `json:"streams"`
	Format struct {
		Duration string `json:"duration"`
	} `json:"format"`
}

// Extract đọc metadata từ file tại đường dẫn cho trước.
// Trả về lỗi MED_001 nếu ffprobe lỗi hoặc file không có video stream.
func (e *Extractor) Extract(ctx context.Context, path string) (*Metadata, error) {
	args := []string{
		"-v", "error",
		"-print_format", "json",
		"-show_format",
		"-show_streams",
		path,
	}
	cmd := exec.CommandContext(ctx, e.ffprobeBinary, args...) //nolint:gosec
	output, err := cmd.CombinedOutput()
	if err != nil {
		return nil, common.NewError(
			common.ErrCodeMediaExtraction,
			fmt.Sprintf("ffprobe thất bại: %v: %s", err, strings.TrimSpace(string(output))),
			common.StatusInternalServerError,
			err,
		)
	}

	return parseProbeOutput(output)
}

// parseProbeOutput đọc JSON ffprobe thành Metadata.
// Trả về lỗi nếu output không parse được hoặc không có video stream.
func parseProbeOutput(output []byte) (*Metadata, error) {
	var probe ffprobeOutput
	if err := json.Unmarshal(output, &probe); err != nil {
		return nil, common.NewError(
			common.ErrCodeMediaExtraction,
			"Không parse được output của ffprobe",
			common.StatusInternalServerError,
			err,
		)
	}

	meta := &Metadata{}
	found := false
	for _, stream := range probe.Streams {
		if stream.CodecType == "video" {
			meta.Width = stream.Width
			meta.Height = stream.Height
			meta.Codec = stream.CodecName
			found = true
			break
		}
	}
	if !found {
		return nil, common.NewError(
			common.ErrCodeMediaExtraction,
			"File không chứa video stream",
			common.StatusBadRequest,
			nil,
		)
	}

	if probe.Format.Duration != "" {
		if d, err := strconv.ParseFloat(probe.Format.Duration, 64); err == nil {
			meta.Duration = d
		}
	}

	return meta, nil
}
