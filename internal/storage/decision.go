package storage

// TransferMethod định nghĩa phương thức đưa file lên remote storage
const (
	TransferDirect  = "direct"  // Upload một lần
	TransferChunked = "chunked" // Upload chunked/resumable nhiều phần
)

// TransferDecision là kết quả của cây quyết định chọn phương thức transfer
type TransferDecision struct {
	Method        string // direct hoặc chunked
	UseCompressed bool   // true nếu upload file đã nén, false nếu file gốc
}

// DecideTransfer chọn phương thức transfer dựa trên kích thước file và kết quả nén.
// Tách thành hàm thuần để test độc lập khỏi backend thật.
//
// Bảng quyết định:
//   - size gốc <= compressThreshold: direct file gốc (không nén)
//   - nén thất bại hoặc file nén không nhỏ hơn file gốc: chunked file gốc
//   - file nén < directUploadLimit: direct file nén
//   - file nén >= directUploadLimit: chunked file nén
//
// compressedSize < 0 nghĩa là nén thất bại.
func DecideTransfer(originalSize, compressedSize, compressThreshold, directUploadLimit int64) TransferDecision {
	if originalSize <= compressThreshold {
		return TransferDecision{Method: TransferDirect, UseCompressed: false}
	}

	// Nén thất bại hoặc không giảm được kích thước: fallback chunked file gốc
	if compressedSize < 0 || compressedSize >= originalSize {
		return TransferDecision{Method: TransferChunked, UseCompressed: false}
	}

	if compressedSize < directUploadLimit {
		return TransferDecision{Method: TransferDirect, UseCompressed: true}
	}

	return TransferDecision{Method: TransferChunked, UseCompressed: true}
}
