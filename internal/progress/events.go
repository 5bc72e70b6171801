// Package progress cung cấp kênh publish/subscribe theo user cho các sự kiện
// tiến độ xử lý video. Orchestrator và storage publish vào đây, client kết nối
// SSE subscribe để nhận realtime.
package progress

// EventType định nghĩa loại sự kiện tiến độ
const (
	EventStart    = "start"    // Bắt đầu xử lý
	EventProgress = "progress" // Cập nhật tiến độ
	EventComplete = "complete" // Hoàn tất, kèm kết quả sensitivity
	EventError    = "error"    // Lỗi xử lý, kèm message
)

// Event mô tả một sự kiện tiến độ gửi đến user upload video.
// Các trường không liên quan đến loại sự kiện được bỏ trống.
type Event struct {
	Type              string   `json:"type"`
	VideoID           string   `json:"videoId"`
	Progress          int      `json:"progress,omitempty"`
	Status            string   `json:"status,omitempty"`
	SensitivityStatus string   `json:"sensitivityStatus,omitempty"`
	SensitivityScore  int      `json:"sensitivityScore,omitempty"`
	FlaggedReasons    []string `json:"flaggedReasons,omitempty"`
	Error             string   `json:"error,omitempty"`
}
