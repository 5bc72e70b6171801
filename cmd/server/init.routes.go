package main

import (
	"context"
	"fmt"
	"math/rand"
	"os"
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	apirouter "meta_media/internal/api/router"
	videohdl "meta_media/internal/api/video/handler"
	videorouter "meta_media/internal/api/video/router"
	videosvc "meta_media/internal/api/video/service"
	"meta_media/internal/global"
	"meta_media/internal/logger"
	"meta_media/internal/mediainfo"
	"meta_media/internal/pipeline"
	"meta_media/internal/progress"
	"meta_media/internal/sensitivity"
	"meta_media/internal/storage"
)

// SetupRoutes lắp ráp các thành phần pipeline và đăng ký toàn bộ route.
func SetupRoutes(app *fiber.App) error {
	cfg := global.ServerConfig

	if err := os.MkdirAll(cfg.TempDir, 0o755); err != nil {
		return fmt.Errorf("create temp directory: %w", err)
	}

	// Backend lưu trữ theo STORAGE_MODE, cố định cho cả deployment
	var strategy storage.Strategy
	var local *storage.LocalStrategy
	switch cfg.StorageMode {
	case "remote":
		remote, err := newRemoteStrategy()
		if err != nil {
			return fmt.Errorf("create remote storage: %w", err)
		}
		strategy = remote
	case "local", "":
		l, err := storage.NewLocalStrategy(cfg.UploadDir)
		if err != nil {
			return fmt.Errorf("create local storage: %w", err)
		}
		strategy = l
		local = l
	default:
		return fmt.Errorf("invalid STORAGE_MODE %q (expected local or remote)", cfg.StorageMode)
	}

	videoService, err := videosvc.NewVideoAssetService()
	if err != nil {
		return fmt.Errorf("create video asset service: %w", err)
	}

	broker := progress.NewBroker()
	extractor := mediainfo.NewExtractor(cfg.FfprobeBinary)
	analyzer := sensitivity.NewAnalyzer(rand.New(rand.NewSource(time.Now().UnixNano())))
	orchestrator := pipeline.NewOrchestrator(
		videoService,
		strategy,
		extractor,
		analyzer,
		broker,
		time.Duration(cfg.SettleDelayMs)*time.Millisecond,
	)

	videoHandler := videohdl.NewVideoAssetHandler(videoService, orchestrator, strategy, local, broker, cfg.TempDir)

	// Health check không cần auth
	app.Get("/health", func(c fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	prefix := apirouter.NewRoutePrefix()
	v1 := app.Group(prefix.V1)
	videorouter.Register(v1, videoHandler)

	return nil
}

// newRemoteStrategy khởi tạo client MinIO và đảm bảo bucket tồn tại
func newRemoteStrategy() (*storage.RemoteStrategy, error) {
	cfg := global.ServerConfig

	core, err := minio.NewCore(cfg.MinioEndpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.MinioAccessKey, cfg.MinioSecretKey, ""),
		Secure: cfg.MinioUseSSL,
	})
	if err != nil {
		return nil, err
	}
	client := core.Client

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	exists, err := client.BucketExists(ctx, cfg.MinioBucket)
	if err != nil {
		return nil, err
	}
	if !exists {
		if err := client.MakeBucket(ctx, cfg.MinioBucket, minio.MakeBucketOptions{}); err != nil {
			return nil, err
		}
		logger.GetAppLogger().WithField("bucket", cfg.MinioBucket).Info("Created object storage bucket")
	}

	transcoder := storage.NewTranscoder(cfg.FfmpegBinary, cfg.TempDir)
	return storage.NewRemoteStrategy(client, core, cfg.MinioBucket, transcoder, cfg.CompressThresholdBytes, cfg.DirectUploadLimitBytes), nil
}
