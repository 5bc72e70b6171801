package videosvc

import (
	"context"
	"fmt"

	basemodels "meta_media/internal/api/base/models"
	basesvc "meta_media/internal/api/base/service"
	videomodels "meta_media/internal/api/video/models"
	"meta_media/internal/common"
	"meta_media/internal/global"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// VideoAssetService là service quản lý video assets.
// Nhúng BaseServiceMongo dạng interface để các thao tác CRUD chung
// luôn đi qua contract thay vì implementation cụ thể.
type VideoAssetService struct {
	basesvc.BaseServiceMongo[videomodels.VideoAsset]
}

// NewVideoAssetService tạo mới VideoAssetService
func NewVideoAssetService() (*VideoAssetService, error) {
	collection, exist := global.RegistryCollections.Get(global.MongoDB_ColNames.VideoAssets)
	if !exist {
		return nil, fmt.Errorf("failed to get video_assets collection: %v", common.ErrNotFound)
	}

	return &VideoAssetService{
		BaseServiceMongo: basesvc.NewBaseServiceMongo[videomodels.VideoAsset](collection),
	}, nil
}

// Các hàm update dưới đây đều là partial update có phạm vi hẹp:
// mỗi bước pipeline chỉ ghi các trường mà nó sở hữu, tránh ghi đè
// các chỉnh sửa song song (ví dụ user sửa title trong lúc đang xử lý).

// UpdateStorage ghi con trỏ lưu trữ và chuyển trạng thái sang processing
func (s *VideoAssetService) UpdateStorage(ctx context.Context, id primitive.ObjectID, locator, storageKey string) error {
	_, err := s.UpdateById(ctx, id, &basesvc.UpdateData{
		Set: map[string]interface{}{
			"storageLocator": locator,
			"storageKey":     storageKey,
			"status":         videomodels.VideoStatusProcessing,
		},
	})
	return err
}

// UpdateProgress ghi tiến độ xử lý hiện tại
func (s *VideoAssetService) UpdateProgress(ctx context.Context, id primitive.ObjectID, progress int) error {
	_, err := s.UpdateById(ctx, id, &basesvc.UpdateData{
		Set: map[string]interface{}{
			"processingProgress": progress,
		},
	})
	return err
}

// UpdateMediaMetadata ghi metadata trích xuất được từ file media
func (s *VideoAssetService) UpdateMediaMetadata(ctx context.Context, id primitive.ObjectID, duration float64, width, height int, codec string) error {
	_, err := s.UpdateById(ctx, id, &basesvc.UpdateData{
		Set: map[string]interface{}{
			"duration": duration,
			"width":    width,
			"height":   height,
			"codec":    codec,
		},
	})
	return err
}

// UpdateSensitivity ghi kết quả sàng lọc nội dung nhạy cảm
func (s *VideoAssetService) UpdateSensitivity(ctx context.Context, id primitive.ObjectID, status string, score int, reasons []string) error {
	_, err := s.UpdateById(ctx, id, &basesvc.UpdateData{
		Set: map[string]interface{}{
			"sensitivityStatus": status,
			"sensitivityScore":  score,
			"flaggedReasons":    reasons,
		},
	})
	return err
}

// MarkCompleted chuyển asset sang trạng thái completed với tiến độ 100
func (s *VideoAssetService) MarkCompleted(ctx context.Context, id primitive.ObjectID) error {
	_, err := s.UpdateById(ctx, id, &basesvc.UpdateData{
		Set: map[string]interface{}{
			"status":             videomodels.VideoStatusCompleted,
			"processingProgress": 100,
		},
	})
	return err
}

// MarkFailed chuyển asset sang trạng thái failed và reset tiến độ về 0
func (s *VideoAssetService) MarkFailed(ctx context.Context, id primitive.ObjectID) error {
	_, err := s.UpdateById(ctx, id, &basesvc.UpdateData{
		Set: map[string]interface{}{
			"status":             videomodels.VideoStatusFailed,
			"processingProgress": 0,
		},
	})
	return err
}

// FindByUser tìm danh sách video của một user với phân trang, mới nhất trước
func (s *VideoAssetService) FindByUser(ctx context.Context, userID primitive.ObjectID, status string, page, limit int64) (*basemodels.PaginateResult[videomodels.VideoAsset], error) {
	filter := bson.M{"userId": userID}
	if status != "" {
		filter["status"] = status
	}

	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	return s.FindWithPagination(ctx, filter, page, limit, opts)
}
