package models

import (
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// VideoStatus định nghĩa trạng thái xử lý của video
const (
	VideoStatusPending    = "pending"    // Đã tạo bản ghi, chưa lưu trữ
	VideoStatusProcessing = "processing" // Đã lưu trữ xong, đang xử lý (metadata, sensitivity)
	VideoStatusCompleted  = "completed"  // Xử lý hoàn tất
	VideoStatusFailed     = "failed"     // Xử lý thất bại (terminal, không tự retry)
)

// SensitivityStatus định nghĩa kết quả sàng lọc nội dung nhạy cảm
const (
	SensitivityStatusPending = "pending" // Chưa phân tích
	SensitivityStatusSafe    = "safe"    // An toàn
	SensitivityStatusFlagged = "flagged" // Bị gắn cờ, cần review thủ công
)

// VideoAsset đại diện cho một video đã upload cùng metadata và trạng thái xử lý
type VideoAsset struct {
	ID primitive.ObjectID `json:"id,omitempty" bson:"_id,omitempty"` // ID của video asset

	// ===== DESCRIPTIVE =====
	Title            string `json:"title" bson:"title"`                                 // Tiêu đề (bắt buộc, không rỗng)
	Description      string `json:"description,omitempty" bson:"description,omitempty"` // Mô tả tự do (tùy chọn)
	OriginalFilename string `json:"originalFilename" bson:"originalFilename"`           // Tên file gốc khi upload

	// ===== STORAGE POINTER =====
	StorageLocator string `json:"storageLocator,omitempty" bson:"storageLocator,omitempty"` // Đường dẫn tương đối (local) hoặc URL (remote)
	StorageKey     string `json:"storageKey,omitempty" bson:"storageKey,omitempty"`         // Key do backend lưu trữ cấp

	// ===== PHYSICAL ATTRIBUTES =====
	Size      int64   `json:"size" bson:"size"`                             // Kích thước file (bytes)
	MediaType string  `json:"mediaType,omitempty" bson:"mediaType,omitempty"` // Content-Type khai báo khi upload
	Duration  float64 `json:"duration" bson:"duration"`                     // Thời lượng (giây), 0 cho tới khi extract xong
	Width     int     `json:"width" bson:"width"`                           // Chiều rộng (pixels)
	Height    int     `json:"height" bson:"height"`                         // Chiều cao (pixels)
	Codec     string  `json:"codec,omitempty" bson:"codec,omitempty"`       // Tên codec video

	// ===== OWNERSHIP =====
	UserID              primitive.ObjectID `json:"userId" bson:"userId" index:"single:1"`                                           // User upload video
	OwnerOrganizationID primitive.ObjectID `json:"ownerOrganizationId,omitempty" bson:"ownerOrganizationId,omitempty" index:"single:1"` // Tổ chức sở hữu dữ liệu

	// ===== STATUS =====
	Status             string `json:"status" bson:"status" index:"single:1"` // Trạng thái: pending, processing, completed, failed
	ProcessingProgress int    `json:"processingProgress" bson:"processingProgress"` // Tiến độ xử lý 0-100, không giảm trong một run

	// ===== SENSITIVITY =====
	SensitivityStatus string   `json:"sensitivityStatus" bson:"sensitivityStatus" index:"single:1"` // pending, safe, flagged
	SensitivityScore  int      `json:"sensitivityScore" bson:"sensitivityScore"`                    // Điểm nhạy cảm 0-100
	FlaggedReasons    []string `json:"flaggedReasons,omitempty" bson:"flaggedReasons,omitempty"`    // Danh sách lý do gắn cờ (rỗng nếu safe)

	// ===== TIMESTAMPS =====
	CreatedAt int64 `json:"createdAt" bson:"createdAt"` // Thời gian tạo
	UpdatedAt int64 `json:"updatedAt" bson:"updatedAt"` // Thời gian cập nhật
}
