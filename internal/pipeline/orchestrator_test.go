package pipeline

import (
	"context"
	"errors"
	"sync"
	"testing"

	videomodels "meta_media/internal/api/video/models"
	"meta_media/internal/mediainfo"
	"meta_media/internal/progress"
	"meta_media/internal/sensitivity"
	"meta_media/internal/storage"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ===== FAKES =====

type fakeStore struct {
	mu          sync.Mutex
	progressSeq []int
	status      string
	metadataSet bool
	sensitivity string

	updateStorageErr error
	metadataErr      error
	markCompletedErr error
}

func (f *fakeStore) FindOneById(_ context.Context, id primitive.ObjectID) (videomodels.VideoAsset, error) {
	return videomodels.VideoAsset{ID: id}, nil
}

func (f *fakeStore) UpdateStorage(_ context.Context, _ primitive.ObjectID, _, _ string) error {
	if f.updateStorageErr != nil {
		return f.updateStorageErr
	}
	f.mu.Lock()
	f.status = videomodels.VideoStatusProcessing
	f.mu.Unlock()
	return nil
}

func (f *fakeStore) UpdateProgress(_ context.Context, _ primitive.ObjectID, progress int) error {
	f.mu.Lock()
	f.progressSeq = append(f.progressSeq, progress)
	f.mu.Unlock()
	return nil
}

func (f *fakeStore) UpdateMediaMetadata(_ context.Context, _ primitive.ObjectID, _ float64, _, _ int, _ string) error {
	if f.metadataErr != nil {
		return f.metadataErr
	}
	f.mu.Lock()
	f.metadataSet = true
	f.mu.Unlock()
	return nil
}

func (f *fakeStore) UpdateSensitivity(_ context.Context, _ primitive.ObjectID, status string, _ int, _ []string) error {
	f.mu.Lock()
	f.sensitivity = status
	f.mu.Unlock()
	return nil
}

func (f *fakeStore) MarkCompleted(_ context.Context, _ primitive.ObjectID) error {
	if f.markCompletedErr != nil {
		return f.markCompletedErr
	}
	f.mu.Lock()
	f.status = videomodels.VideoStatusCompleted
	f.mu.Unlock()
	return nil
}

func (f *fakeStore) MarkFailed(_ context.Context, _ primitive.ObjectID) error {
	f.mu.Lock()
	f.status = videomodels.VideoStatusFailed
	f.mu.Unlock()
	return nil
}

type fakeStrategy struct {
	placement *storage.Placement
	err       error
	deleted   []string
}

func (f *fakeStrategy) Store(_ context.Context, _, _ string, _ int64) (*storage.Placement, error) {
	return f.placement, f.err
}

func (f *fakeStrategy) Delete(_ context.Context, storageKey string) error {
	f.deleted = append(f.deleted, storageKey)
	return nil
}

type fakeExtractor struct {
	meta *mediainfo.Metadata
	err  error
}

func (f *fakeExtractor) Extract(_ context.Context, _ string) (*mediainfo.Metadata, error) {
	return f.meta, f.err
}

type fakeAnalyzer struct {
	result sensitivity.Result
	panics bool
}

func (f *fakeAnalyzer) Analyze(_ sensitivity.Input) sensitivity.Result {
	if f.panics {
		panic("analyzer hỏng")
	}
	return f.result
}

type fakePublisher struct {
	mu     sync.Mutex
	events []progress.Event
}

func (f *fakePublisher) Publish(_ string, e progress.Event) {
	f.mu.Lock()
	f.events = append(f.events, e)
	f.mu.Unlock()
}

func (f *fakePublisher) byType(eventType string) []progress.Event {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []progress.Event
	for _, e := range f.events {
		if e.Type == eventType {
			out = append(out, e)
		}
	}
	return out
}

// ===== HELPERS =====

func testAsset() videomodels.VideoAsset {
	return videomodels.VideoAsset{
		ID:               primitive.NewObjectID(),
		UserID:           primitive.NewObjectID(),
		OriginalFilename: "clip.mp4",
		Size:             1024,
		Status:           videomodels.VideoStatusPending,
	}
}

func goodStrategy() *fakeStrategy {
	return &fakeStrategy{placement: &storage.Placement{
		Locator:     "/uploads/x.mp4",
		StorageKey:  "x.mp4",
		MediaSource: "/tmp/uploads/x.mp4",
	}}
}

func goodExtractor() *fakeExtractor {
	return &fakeExtractor{meta: &mediainfo.Metadata{
		Duration: 120, Width: 1920, Height: 1080, Codec: "h264",
	}}
}

func safeAnalyzer() *fakeAnalyzer {
	return &fakeAnalyzer{result: sensitivity.Result{
		Status: videomodels.SensitivityStatusSafe, Score: 0,
	}}
}

// ===== TESTS =====

func TestIngest_HappyPath_ProgressNonDecreasing(t *testing.T) {
	store := &fakeStore{}
	publisher := &fakePublisher{}
	o := NewOrchestrator(store, goodStrategy(), goodExtractor(), safeAnalyzer(), publisher, 0)

	o.Ingest(context.Background(), testAsset(), "/tmp/upload.mp4")

	if store.status != videomodels.VideoStatusCompleted {
		t.Fatalf("Happy path phải kết thúc ở completed, nhận %s", store.status)
	}

	expected := []int{0, 10, 25, 50, 60, 75}
	if len(store.progressSeq) != len(expected) {
		t.Fatalf("Chuỗi tiến độ sai độ dài: %v", store.progressSeq)
	}
	for i, v := range expected {
		if store.progressSeq[i] != v {
			t.Errorf("Tiến độ bước %d phải là %d, nhận %d", i, v, store.progressSeq[i])
		}
	}
	for i := 1; i < len(store.progressSeq); i++ {
		if store.progressSeq[i] < store.progressSeq[i-1] {
			t.Errorf("Tiến độ không được giảm: %v", store.progressSeq)
		}
	}

	if !store.metadataSet {
		t.Error("Metadata phải được ghi vào bản ghi")
	}

	startEvents := publisher.byType(progress.EventStart)
	if len(startEvents) != 1 {
		t.Errorf("Phải có đúng 1 event start, có %d", len(startEvents))
	}
	completeEvents := publisher.byType(progress.EventComplete)
	if len(completeEvents) != 1 {
		t.Fatalf("Phải có đúng 1 event complete, có %d", len(completeEvents))
	}
	if completeEvents[0].Status != videomodels.VideoStatusCompleted {
		t.Errorf("Event complete phải mang status completed, nhận %s", completeEvents[0].Status)
	}
	if completeEvents[0].SensitivityStatus != videomodels.SensitivityStatusSafe {
		t.Errorf("Event complete phải mang kết quả sensitivity, nhận %s", completeEvents[0].SensitivityStatus)
	}
	if len(publisher.byType(progress.EventError)) != 0 {
		t.Error("Happy path không được phát error event")
	}
}

func TestIngest_CompletedImpliesSensitivityResolved(t *testing.T) {
	store := &fakeStore{}
	o := NewOrchestrator(store, goodStrategy(), goodExtractor(), safeAnalyzer(), &fakePublisher{}, 0)

	o.Ingest(context.Background(), testAsset(), "/tmp/upload.mp4")

	if store.sensitivity == "" || store.sensitivity == videomodels.SensitivityStatusPending {
		t.Errorf("Trạng thái completed thì sensitivity không được còn pending, nhận %q", store.sensitivity)
	}
}

func TestIngest_StorageFailure_FailsWithoutProcessing(t *testing.T) {
	store := &fakeStore{}
	publisher := &fakePublisher{}
	strategy := &fakeStrategy{err: errors.New("disk full")}
	o := NewOrchestrator(store, strategy, goodExtractor(), safeAnalyzer(), publisher, 0)

	o.Ingest(context.Background(), testAsset(), "/tmp/upload.mp4")

	if store.status != videomodels.VideoStatusFailed {
		t.Fatalf("Lỗi lưu trữ phải đưa asset về failed, nhận %s", store.status)
	}
	if len(store.progressSeq) != 0 {
		t.Errorf("Không được publish tiến độ khi lưu trữ thất bại: %v", store.progressSeq)
	}
	errorEvents := publisher.byType(progress.EventError)
	if len(errorEvents) != 1 {
		t.Fatalf("Phải có đúng 1 error event, có %d", len(errorEvents))
	}
	if errorEvents[0].Error == "" {
		t.Error("Error event phải mang thông điệp lỗi")
	}
}

func TestIngest_ExtractionFailure_FailsWithSingleErrorEvent(t *testing.T) {
	store := &fakeStore{}
	publisher := &fakePublisher{}
	extractor := &fakeExtractor{err: errors.New("ffprobe exit 1")}
	o := NewOrchestrator(store, goodStrategy(), extractor, safeAnalyzer(), publisher, 0)

	o.Ingest(context.Background(), testAsset(), "/tmp/upload.mp4")

	if store.status != videomodels.VideoStatusFailed {
		t.Fatalf("Lỗi extract phải đưa asset về failed, nhận %s", store.status)
	}
	if len(publisher.byType(progress.EventError)) != 1 {
		t.Errorf("Phải có đúng 1 error event, có %d", len(publisher.byType(progress.EventError)))
	}
	if len(publisher.byType(progress.EventComplete)) != 0 {
		t.Error("Run thất bại không được phát event complete")
	}
	if store.sensitivity != "" {
		t.Error("Lỗi extract thì không được chạy bước sensitivity")
	}
}

func TestIngest_UpdateStorageFailure_Fails(t *testing.T) {
	store := &fakeStore{updateStorageErr: errors.New("write conflict")}
	publisher := &fakePublisher{}
	o := NewOrchestrator(store, goodStrategy(), goodExtractor(), safeAnalyzer(), publisher, 0)

	o.Ingest(context.Background(), testAsset(), "/tmp/upload.mp4")

	if store.status != videomodels.VideoStatusFailed {
		t.Fatalf("Lỗi ghi con trỏ lưu trữ phải đưa asset về failed, nhận %s", store.status)
	}
	if len(publisher.byType(progress.EventError)) != 1 {
		t.Error("Phải có đúng 1 error event")
	}
}

func TestIngest_AnalyzerPanic_FallsBackToFlagged(t *testing.T) {
	store := &fakeStore{}
	publisher := &fakePublisher{}
	analyzer := &fakeAnalyzer{panics: true}
	o := NewOrchestrator(store, goodStrategy(), goodExtractor(), analyzer, publisher, 0)

	o.Ingest(context.Background(), testAsset(), "/tmp/upload.mp4")

	// Panic của analyzer không được làm hỏng pipeline, kết quả phải là flagged
	if store.status != videomodels.VideoStatusCompleted {
		t.Fatalf("Pipeline phải hoàn tất dù analyzer panic, nhận %s", store.status)
	}
	if store.sensitivity != videomodels.SensitivityStatusFlagged {
		t.Errorf("Lỗi phân tích phải fallback về flagged, nhận %s", store.sensitivity)
	}
}

func TestIngest_MarkCompletedFailure_Fails(t *testing.T) {
	store := &fakeStore{markCompletedErr: errors.New("connection reset")}
	publisher := &fakePublisher{}
	o := NewOrchestrator(store, goodStrategy(), goodExtractor(), safeAnalyzer(), publisher, 0)

	o.Ingest(context.Background(), testAsset(), "/tmp/upload.mp4")

	if store.status != videomodels.VideoStatusFailed {
		t.Fatalf("Không ghi được completed thì asset phải về failed, nhận %s", store.status)
	}
	if len(publisher.byType(progress.EventComplete)) != 0 {
		t.Error("Không được phát event complete khi ghi trạng thái thất bại")
	}
}
