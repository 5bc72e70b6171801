package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v3"

	"meta_media/internal/database"
	"meta_media/internal/global"
	"meta_media/internal/logger"
	"meta_media/internal/utility"
	"meta_media/internal/worker"
)

// initLogger khởi tạo và cấu hình logger cho toàn bộ ứng dụng
func initLogger() {
	// Khởi tạo logger với cấu hình mặc định
	// Logger sẽ tự động đọc environment variables để cấu hình
	if err := logger.Init(nil); err != nil {
		panic(fmt.Sprintf("Failed to initialize logger: %v", err))
	}

	// Log thông tin khởi tạo bằng logger mới
	log := logger.GetAppLogger()
	log.Info("Logger system initialized successfully")
}

// main_thread khởi tạo và chạy Fiber server.
// Khi nhận SIGINT/SIGTERM, server được shutdown có trật tự rồi mới
// đóng kết nối MongoDB.
func main_thread() {
	// Khởi tạo app với cấu hình
	app := InitFiberApp()

	cfg := global.ServerConfig
	log := logger.GetAppLogger()

	// Bắt tín hiệu dừng để shutdown có trật tự
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
		sig := <-sigCh

		log.WithFields(map[string]interface{}{
			"signal": sig.String(),
		}).Info("Received shutdown signal, stopping Fiber server...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := app.ShutdownWithContext(shutdownCtx); err != nil {
			log.WithError(err).Error("Error during Fiber shutdown")
		}
	}()

	log.WithFields(map[string]interface{}{
		"address":     cfg.Address,
		"storageMode": cfg.StorageMode,
	}).Info("Starting Fiber server...")

	listenConfig := fiber.ListenConfig{}
	if err := app.Listen(cfg.Address, listenConfig); err != nil {
		log.Fatalf("Error in Fiber Listen: %v", err)
	}

	// Listen trả về sau khi shutdown xong: đóng kết nối MongoDB
	if global.MongoDB_Session != nil {
		_ = database.CloseInstance(global.MongoDB_Session)
	}
}

// Hàm main
func main() {
	// Khởi tạo logger
	initLogger()

	// Khởi tạo các biến toàn cục
	InitGlobal()

	// Khởi tạo registry
	InitRegistry()

	cfg := global.ServerConfig

	// Chạy worker dọn file tạm trong goroutine riêng, bọc recover
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cleanupWorker := worker.NewTempCleanupWorker(
		cfg.TempDir,
		10*time.Minute,
		time.Duration(cfg.TempFileMaxAgeMinutes)*time.Minute,
	)
	go utility.GoProtect(func() {
		cleanupWorker.Start(ctx)
	})

	// Chạy Fiber server trên main thread
	main_thread()
}
