package sensitivity

import (
	"math/rand"
	"strings"
	"testing"

	videomodels "meta_media/internal/api/video/models"

	"github.com/stretchr/testify/assert"
)

func newTestAnalyzer(seed int64) *Analyzer {
	return NewAnalyzer(rand.New(rand.NewSource(seed)))
}

func TestAnalyze_ExplicitFilename_Flagged(t *testing.T) {
	a := newTestAnalyzer(1)

	result := a.Analyze(Input{
		Filename: "explicit-content.mp4",
		Duration: 100,
		Width:    1920,
		Height:   1080,
	})

	assert.Equal(t, videomodels.SensitivityStatusFlagged, result.Status, "Tên file chứa từ khóa explicit phải bị gắn cờ")
	assert.GreaterOrEqual(t, result.Score, 30, "Điểm phải >= 30 khi có từ khóa nhạy cảm")
	assert.LessOrEqual(t, result.Score, 100, "Điểm phải được clamp về tối đa 100")

	found := false
	for _, reason := range result.Reasons {
		if strings.Contains(reason, "explicit") {
			found = true
		}
	}
	assert.True(t, found, "Danh sách lý do phải nêu tên từ khóa explicit, có: %v", result.Reasons)
}

func TestAnalyze_MultipleKeywords_ScoresStack(t *testing.T) {
	a := newTestAnalyzer(1)

	result := a.Analyze(Input{
		Filename: "explicit-violence-nsfw.mp4",
		Duration: 60,
		Width:    1920,
		Height:   1080,
	})

	assert.GreaterOrEqual(t, result.Score, 90, "Ba từ khóa phải cộng dồn 3 x 30 điểm")
	assert.LessOrEqual(t, result.Score, 100, "Điểm phải được clamp về tối đa 100")
	assert.Len(t, result.Reasons, 3, "Mỗi từ khóa phải có một lý do riêng")
}

func TestAnalyze_FamilyVideo_ScoreInRange(t *testing.T) {
	a := newTestAnalyzer(42)

	result := a.Analyze(Input{
		Filename: "family-video.mp4",
		Duration: 100,
		Width:    1920,
		Height:   1080,
	})

	assert.GreaterOrEqual(t, result.Score, 0, "Điểm không được âm")
	assert.LessOrEqual(t, result.Score, 100, "Điểm không được vượt 100")
	// Nhánh xác suất 10% có thể bắn, cả safe và flagged đều hợp lệ
	assert.Contains(t, []string{videomodels.SensitivityStatusSafe, videomodels.SensitivityStatusFlagged}, result.Status)
}

func TestAnalyze_LongDuration_AddsReason(t *testing.T) {
	a := newTestAnalyzer(1)

	result := a.Analyze(Input{
		Filename: "conference-recording.mp4",
		Duration: 7500,
		Width:    1920,
		Height:   1080,
	})

	found := false
	for _, reason := range result.Reasons {
		if strings.Contains(reason, "2 giờ") {
			found = true
		}
	}
	assert.True(t, found, "Thời lượng 7500s phải có lý do vượt quá 2 giờ, có: %v", result.Reasons)
}

func TestAnalyze_LowResolution_AddsReason(t *testing.T) {
	a := newTestAnalyzer(1)

	result := a.Analyze(Input{
		Filename: "old-recording.mp4",
		Duration: 100,
		Width:    320,
		Height:   240,
	})

	found := false
	for _, reason := range result.Reasons {
		if strings.Contains(reason, "phân giải") {
			found = true
		}
	}
	assert.True(t, found, "Độ phân giải 320x240 phải có lý do low resolution, có: %v", result.Reasons)
	assert.Equal(t, videomodels.SensitivityStatusSafe, result.Status, "Chỉ low resolution (5 điểm) chưa đủ ngưỡng gắn cờ")
}

func TestAnalyze_FlaggedThreshold(t *testing.T) {
	a := newTestAnalyzer(1)

	// Duration dài (10) + low-res (5) = 15 điểm, dưới ngưỡng 30
	result := a.Analyze(Input{
		Filename: "home-movie.avi",
		Duration: 8000,
		Width:    320,
		Height:   240,
	})
	assert.Equal(t, videomodels.SensitivityStatusSafe, result.Status, "15 điểm phải là safe")
	assert.Equal(t, 15, result.Score)

	// Thêm một từ khóa là vượt ngưỡng
	result = a.Analyze(Input{
		Filename: "restricted-home-movie.avi",
		Duration: 8000,
		Width:    320,
		Height:   240,
	})
	assert.Equal(t, videomodels.SensitivityStatusFlagged, result.Status, "45 điểm phải bị gắn cờ")
	assert.Equal(t, 45, result.Score)
}

func TestAnalyze_ProbabilisticBranchOnlyWhenNoRulesFired(t *testing.T) {
	// Chạy nhiều lần: khi có rule deterministic bắn thì điểm không bao giờ
	// chứa thành phần +20 của nhánh xác suất
	a := newTestAnalyzer(7)
	for i := 0; i < 200; i++ {
		result := a.Analyze(Input{
			Filename: "nsfw-clip.mp4",
			Duration: 100,
			Width:    1920,
			Height:   1080,
		})
		assert.Equal(t, 30, result.Score, "Nhánh xác suất không được bắn khi đã có rule deterministic")
		assert.Len(t, result.Reasons, 1)
	}
}

func TestErrorResult_NeverSafe(t *testing.T) {
	result := ErrorResult()

	assert.Equal(t, videomodels.SensitivityStatusFlagged, result.Status, "Lỗi phân tích không được coi là safe")
	assert.Equal(t, 50, result.Score)
	assert.Equal(t, []string{"Analysis error - requires manual review"}, result.Reasons)
}
