// Package pipeline điều phối chuỗi xử lý video sau khi upload:
// lưu trữ → trích xuất metadata → sàng lọc nội dung nhạy cảm → hoàn tất.
// Mỗi asset chỉ đi qua pipeline đúng một lần, lỗi terminal không tự retry.
package pipeline

import (
	"context"
	"errors"
	"time"

	videomodels "meta_media/internal/api/video/models"
	"meta_media/internal/common"
	"meta_media/internal/logger"
	"meta_media/internal/mediainfo"
	"meta_media/internal/progress"
	"meta_media/internal/sensitivity"
	"meta_media/internal/storage"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// AssetStore là tập các thao tác bản ghi mà pipeline cần.
// Mỗi hàm update chỉ ghi các trường mà bước tương ứng sở hữu.
type AssetStore interface {
	FindOneById(ctx context.Context, id primitive.ObjectID) (videomodels.VideoAsset, error)
	UpdateStorage(ctx context.Context, id primitive.ObjectID, locator, storageKey string) error
	UpdateProgress(ctx context.Context, id primitive.ObjectID, progress int) error
	UpdateMediaMetadata(ctx context.Context, id primitive.ObjectID, duration float64, width, height int, codec string) error
	UpdateSensitivity(ctx context.Context, id primitive.ObjectID, status string, score int, reasons []string) error
	MarkCompleted(ctx context.Context, id primitive.ObjectID) error
	MarkFailed(ctx context.Context, id primitive.ObjectID) error
}

// Extractor trích xuất metadata media từ một vị trí đọc được
type Extractor interface {
	Extract(ctx context.Context, source string) (*mediainfo.Metadata, error)
}

// Analyzer chấm điểm nội dung nhạy cảm
type Analyzer interface {
	Analyze(in sensitivity.Input) sensitivity.Result
}

// Publisher phát sự kiện tiến độ đến user
type Publisher interface {
	Publish(userID string, e progress.Event)
}

// Orchestrator điều phối state machine xử lý của từng video asset
type Orchestrator struct {
	store       AssetStore
	strategy    storage.Strategy
	extractor   Extractor
	analyzer    Analyzer
	publisher   Publisher
	settleDelay time.Duration
}

// NewOrchestrator tạo mới Orchestrator
func NewOrchestrator(store AssetStore, strategy storage.Strategy, extractor Extractor, analyzer Analyzer, publisher Publisher, settleDelay time.Duration) *Orchestrator {
	return &Orchestrator{
		store:       store,
		strategy:    strategy,
		extractor:   extractor,
		analyzer:    analyzer,
		publisher:   publisher,
		settleDelay: settleDelay,
	}
}

// Ingest chạy toàn bộ chuỗi lưu trữ rồi xử lý cho một asset vừa upload.
// Hàm này được gọi trong goroutine nền, không bao giờ trả lỗi ra ngoài:
// mọi lỗi đều kết thúc ở trạng thái failed của asset cộng một error event.
func (o *Orchestrator) Ingest(ctx context.Context, asset videomodels.VideoAsset, tempPath string) {
	log := logger.GetAppLogger().WithField("videoId", asset.ID.Hex())

	placement, err := o.strategy.Store(ctx, tempPath, asset.OriginalFilename, asset.Size)
	if err != nil {
		log.WithError(err).Error("❌ Lưu trữ video thất bại")
		o.fail(ctx, asset, err)
		return
	}

	if err := o.store.UpdateStorage(ctx, asset.ID, placement.Locator, placement.StorageKey); err != nil {
		log.WithError(err).Error("❌ Không ghi được con trỏ lưu trữ")
		o.fail(ctx, asset, err)
		return
	}

	o.process(ctx, asset, placement.MediaSource)
}

// process chạy các bước xử lý theo thứ tự cố định, publish tiến độ sau mỗi bước.
// Thứ tự tiến độ trong một run luôn không giảm: 0, 10, 25, 50, 60, 75, 100.
func (o *Orchestrator) process(ctx context.Context, asset videomodels.VideoAsset, mediaSource string) {
	log := logger.GetAppLogger().WithField("videoId", asset.ID.Hex())
	userID := asset.UserID.Hex()
	videoID := asset.ID.Hex()

	// Bước 1: sự kiện start và tiến độ 0
	o.publisher.Publish(userID, progress.Event{Type: progress.EventStart, VideoID: videoID})
	if err := o.publishProgress(ctx, asset, 0); err != nil {
		o.fail(ctx, asset, err)
		return
	}

	// Bước 2: trích xuất metadata
	if err := o.publishProgress(ctx, asset, 10); err != nil {
		o.fail(ctx, asset, err)
		return
	}
	meta, err := o.extractor.Extract(ctx, mediaSource)
	if err != nil {
		log.WithError(err).Error("❌ Trích xuất metadata thất bại")
		o.fail(ctx, asset, err)
		return
	}
	if err := o.store.UpdateMediaMetadata(ctx, asset.ID, meta.Duration, meta.Width, meta.Height, meta.Codec); err != nil {
		o.fail(ctx, asset, err)
		return
	}

	// Bước 3
	if err := o.publishProgress(ctx, asset, 25); err != nil {
		o.fail(ctx, asset, err)
		return
	}

	// Bước 4: settling delay mô hình hóa công việc downstream (thumbnail, ...)
	o.settle(ctx)
	if err := o.publishProgress(ctx, asset, 50); err != nil {
		o.fail(ctx, asset, err)
		return
	}

	// Bước 5: sàng lọc nội dung nhạy cảm
	if err := o.publishProgress(ctx, asset, 60); err != nil {
		o.fail(ctx, asset, err)
		return
	}
	result := o.analyzeSafe(sensitivity.Input{
		Filename: asset.OriginalFilename,
		Duration: meta.Duration,
		Width:    meta.Width,
		Height:   meta.Height,
	})
	if err := o.store.UpdateSensitivity(ctx, asset.ID, result.Status, result.Score, result.Reasons); err != nil {
		o.fail(ctx, asset, err)
		return
	}
	if err := o.publishProgress(ctx, asset, 75); err != nil {
		o.fail(ctx, asset, err)
		return
	}

	// Bước 6: hoàn tất
	o.settle(ctx)
	if err := o.store.MarkCompleted(ctx, asset.ID); err != nil {
		o.fail(ctx, asset, err)
		return
	}
	o.publisher.Publish(userID, progress.Event{
		Type:              progress.EventComplete,
		VideoID:           videoID,
		Status:            videomodels.VideoStatusCompleted,
		SensitivityStatus: result.Status,
		SensitivityScore:  result.Score,
		FlaggedReasons:    result.Reasons,
	})

	log.WithField("sensitivityStatus", result.Status).Info("✅ Xử lý video hoàn tất")
}

// publishProgress ghi tiến độ vào bản ghi và phát sự kiện progress
func (o *Orchestrator) publishProgress(ctx context.Context, asset videomodels.VideoAsset, value int) error {
	if err := o.store.UpdateProgress(ctx, asset.ID, value); err != nil {
		return err
	}
	o.publisher.Publish(asset.UserID.Hex(), progress.Event{
		Type:     progress.EventProgress,
		VideoID:  asset.ID.Hex(),
		Progress: value,
	})
	return nil
}

// analyzeSafe bọc analyzer với recover: lỗi phân tích không bao giờ
// được coi là safe, luôn fallback về flagged chờ review thủ công.
func (o *Orchestrator) analyzeSafe(in sensitivity.Input) (result sensitivity.Result) {
	defer func() {
		if r := recover(); r != nil {
			logger.GetAppLogger().WithField("code", common.ErrCodeAnalysis.Code).
				Errorf("Sensitivity analyzer panic: %v", r)
			result = sensitivity.ErrorResult()
		}
	}()
	return o.analyzer.Analyze(in)
}

// fail đưa asset về trạng thái failed với tiến độ 0 và phát đúng một error event.
// Bản ghi được đọc lại trước khi ghi vì các bước trước có thể đã ghi một phần,
// và chỉ ghi các trường status/progress để không đè các chỉnh sửa song song.
// Lỗi được nuốt tại đây — pipeline không bao giờ raise ra ngoài.
func (o *Orchestrator) fail(ctx context.Context, asset videomodels.VideoAsset, cause error) {
	log := logger.GetAppLogger().WithField("videoId", asset.ID.Hex())

	if _, err := o.store.FindOneById(ctx, asset.ID); err != nil {
		if !errors.Is(err, common.ErrNotFound) {
			log.WithError(err).Error("Không đọc lại được asset khi xử lý lỗi")
		}
	}

	if err := o.store.MarkFailed(ctx, asset.ID); err != nil {
		log.WithError(err).Error("Không ghi được trạng thái failed")
	}

	o.publisher.Publish(asset.UserID.Hex(), progress.Event{
		Type:    progress.EventError,
		VideoID: asset.ID.Hex(),
		Error:   errorMessage(cause),
	})
}

// settle dừng một khoảng cố định, tôn trọng context cancellation
func (o *Orchestrator) settle(ctx context.Context) {
	if o.settleDelay <= 0 {
		return
	}
	select {
	case <-time.After(o.settleDelay):
	case <-ctx.Done():
	}
}

func errorMessage(err error) string {
	var customErr *common.Error
	if errors.As(err, &customErr) {
		return customErr.Message
	}
	if err != nil {
		return err.Error()
	}
	return "Lỗi xử lý không xác định"
}
