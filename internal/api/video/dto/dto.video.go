package videodto

// UploadInput dữ liệu form đi kèm file khi upload video
type UploadInput struct {
	Title       string `json:"title" validate:"required,no_xss"`
	Description string `json:"description,omitempty" validate:"omitempty,no_xss"`
}

// UploadResponse dữ liệu trả về ngay khi chấp nhận upload
type UploadResponse struct {
	ID               string `json:"id"`
	Title            string `json:"title"`
	Description      string `json:"description,omitempty"`
	OriginalFilename string `json:"originalFilename"`
	Size             int64  `json:"size"`
	Status           string `json:"status"`
	CreatedAt        int64  `json:"createdAt"`
}

// ListQuery tham số truy vấn danh sách video
type ListQuery struct {
	Page   int64  `query:"page"`
	Limit  int64  `query:"limit"`
	Status string `query:"status" validate:"omitempty,oneof=pending processing completed failed"`
}
