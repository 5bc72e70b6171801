package database

import (
	"context"
	"fmt"
	"strings"

	"meta_media/internal/global"
	"meta_media/internal/logger"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// CreateVideoIndexes tạo các indexes cần thiết cho collection video_assets.
// Hàm này được gọi khi khởi động server, sau khi đã kết nối database.
func CreateVideoIndexes(ctx context.Context, db *mongo.Database) error {
	col := db.Collection(global.MongoDB_ColNames.VideoAssets)

	indexes := []mongo.IndexModel{
		{
			// Truy vấn danh sách video của một user, sắp xếp theo thời gian tạo
			Keys: bson.D{
				{Key: "userId", Value: 1},
				{Key: "createdAt", Value: -1},
			},
			Options: options.Index().SetName("idx_user_created"),
		},
		{
			// Truy vấn video theo tổ chức sở hữu
			Keys:    bson.D{{Key: "ownerOrganizationId", Value: 1}},
			Options: options.Index().SetName("idx_owner_organization"),
		},
		{
			// Lọc theo trạng thái xử lý (pending / processing / completed / failed)
			Keys:    bson.D{{Key: "status", Value: 1}},
			Options: options.Index().SetName("idx_status"),
		},
		{
			// Lọc các video bị gắn cờ nhạy cảm
			Keys:    bson.D{{Key: "sensitivityStatus", Value: 1}},
			Options: options.Index().SetName("idx_sensitivity_status"),
		},
	}

	for _, idx := range indexes {
		if _, err := col.Indexes().CreateOne(ctx, idx); err != nil {
			if isIndexExistsError(err) {
				continue
			}
			return fmt.Errorf("failed to create index on %s: %w", global.MongoDB_ColNames.VideoAssets, err)
		}
	}

	logger.GetAppLogger().WithField("collection", global.MongoDB_ColNames.VideoAssets).
		Info("✅ Video asset indexes ensured")
	return nil
}

// isIndexExistsError kiểm tra lỗi trả về có phải do index đã tồn tại hay không.
func isIndexExistsError(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "IndexOptionsConflict") ||
		strings.Contains(msg, "IndexKeySpecsConflict") ||
		strings.Contains(msg, "already exists")
}
