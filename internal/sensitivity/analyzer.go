// Package sensitivity chấm điểm nội dung nhạy cảm cho video dựa trên
// tên file và metadata trích xuất được. Điểm >= 30 thì video bị gắn cờ
// chờ review thủ công.
package sensitivity

import (
	"fmt"
	"math/rand"
	"strings"
	"sync"

	videomodels "meta_media/internal/api/video/models"
)

// ScoreThreshold là ngưỡng điểm để gắn cờ flagged
const ScoreThreshold = 30

// denylist các từ khóa nhạy cảm, so khớp substring không phân biệt hoa thường
var denylist = []string{"explicit", "violence", "nsfw", "adult", "restricted"}

// Result chứa kết quả phân tích nội dung nhạy cảm
type Result struct {
	Status  string   // safe hoặc flagged
	Score   int      // Điểm 0-100
	Reasons []string // Danh sách lý do, rỗng nếu không có rule nào bắn
}

// Input chứa dữ liệu đầu vào cho một lần phân tích
type Input struct {
	Filename string  // Tên file gốc
	Duration float64 // Thời lượng (giây)
	Width    int     // Chiều rộng (pixels)
	Height   int     // Chiều cao (pixels)
}

// Analyzer chấm điểm nội dung. Tất cả rule đều deterministic trừ
// nhánh xác suất 10% chỉ chạy khi không rule nào bắn.
type Analyzer struct {
	mu  sync.Mutex // rand.Rand không an toàn khi gọi từ nhiều goroutine
	rng *rand.Rand
}

// NewAnalyzer tạo mới Analyzer với nguồn random cho trước.
// Truyền rng cố định seed để test deterministic.
func NewAnalyzer(rng *rand.Rand) *Analyzer {
	return &Analyzer{rng: rng}
}

// Analyze chấm điểm một video.
// Quy tắc:
//   - Mỗi từ khóa denylist xuất hiện trong tên file: +30 điểm (cộng dồn)
//   - Thời lượng > 7200 giây: +10 điểm
//   - Độ phân giải width < 640 hoặc height < 480: +5 điểm
//   - Không rule nào bắn: 10% xác suất +20 điểm (mô hình hóa độ bất định
//     của sàng lọc tự động)
//
// Điểm cuối clamp về [0,100]. Status là flagged khi điểm >= 30.
func (a *Analyzer) Analyze(in Input) Result {
	score := 0
	var reasons []string

	lowerName := strings.ToLower(in.Filename)
	for _, keyword := range denylist {
		if strings.Contains(lowerName, keyword) {
			score += 30
			reasons = append(reasons, fmt.Sprintf("Tên file chứa từ khóa nhạy cảm: %s", keyword))
		}
	}

	if in.Duration > 7200 {
		score += 10
		reasons = append(reasons, "Thời lượng vượt quá 2 giờ")
	}

	if in.Width < 640 || in.Height < 480 {
		score += 5
		reasons = append(reasons, "Độ phân giải thấp bất thường")
	}

	// Nhánh xác suất chỉ chạy khi không có rule deterministic nào bắn
	if len(reasons) == 0 && a.randomFloat() < 0.1 {
		score += 20
		reasons = append(reasons, "Được chọn ngẫu nhiên để review thủ công")
	}

	if score < 0 {
		score = 0
	}
	if score > 100 {
		score = 100
	}

	status := videomodels.SensitivityStatusSafe
	if score >= ScoreThreshold {
		status = videomodels.SensitivityStatusFlagged
	}

	return Result{
		Status:  status,
		Score:   score,
		Reasons: reasons,
	}
}

func (a *Analyzer) randomFloat() float64 {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.rng.Float64()
}

// ErrorResult trả về kết quả mặc định khi chính analyzer gặp lỗi.
// Lỗi phân tích không bao giờ được coi là safe một cách âm thầm.
func ErrorResult() Result {
	return Result{
		Status:  videomodels.SensitivityStatusFlagged,
		Score:   50,
		Reasons: []string{"Analysis error - requires manual review"},
	}
}
