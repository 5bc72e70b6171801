// Package storage chịu trách nhiệm đưa file upload tạm về nơi lưu trữ bền vững
// (local filesystem hoặc remote object storage), bao gồm cả cây quyết định
// nén/chunked upload theo kích thước file.
package storage

import (
	"context"
)

// Placement là kết quả của một lần lưu trữ thành công
type Placement struct {
	Locator     string // Đường dẫn phục vụ trực tiếp (local) hoặc URL truy xuất (remote)
	StorageKey  string // Key do backend cấp, dùng để xóa file sau này
	MediaSource string // Vị trí đọc được cho tool inspect media: đường dẫn tuyệt đối (local) hoặc URL (remote)
}

// Strategy định nghĩa backend lưu trữ.
// Store di chuyển file tạm về nơi lưu trữ bền vững và xóa file tạm
// trên mọi nhánh thành công (nhánh lỗi thì best-effort).
type Strategy interface {
	Store(ctx context.Context, tempPath string, originalFilename string, size int64) (*Placement, error)
	Delete(ctx context.Context, storageKey string) error
}
