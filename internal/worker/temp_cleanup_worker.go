// Package worker chứa các background worker chạy định kỳ của server.
package worker

import (
	"context"
	"os"
	"path/filepath"
	"time"

	"meta_media/internal/logger"
)

// TempCleanupWorker dọn các file upload tạm bị bỏ rơi trong thư mục temp
// (ví dụ khi server crash giữa chừng placement). File cũ hơn maxAge bị xóa.
// Chạy định kỳ, mỗi lần quét toàn bộ thư mục.
type TempCleanupWorker struct {
	tempDir  string
	interval time.Duration // Khoảng thời gian giữa các lần chạy
	maxAge   time.Duration // Tuổi tối đa của file tạm trước khi bị dọn
}

// NewTempCleanupWorker tạo mới TempCleanupWorker.
// Tham số:
//   - tempDir: Thư mục chứa file upload tạm
//   - interval: Khoảng thời gian giữa các lần chạy (mặc định: 10 phút)
//   - maxAge: Tuổi tối đa của file tạm (mặc định: 1 giờ)
func NewTempCleanupWorker(tempDir string, interval, maxAge time.Duration) *TempCleanupWorker {
	if interval < time.Minute {
		interval = 10 * time.Minute
	}
	if maxAge <= 0 {
		maxAge = time.Hour
	}
	return &TempCleanupWorker{
		tempDir:  tempDir,
		interval: interval,
		maxAge:   maxAge,
	}
}

// Start chạy worker trong vòng lặp: mỗi interval quét thư mục temp và xóa file quá tuổi.
func (w *TempCleanupWorker) Start(ctx context.Context) {
	log := logger.GetAppLogger()

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	log.WithFields(map[string]interface{}{
		"tempDir":  w.tempDir,
		"interval": w.interval.String(),
		"maxAge":   w.maxAge.String(),
	}).Info("🧹 [TEMP_CLEANUP] Starting Temp Cleanup Worker...")

	for {
		select {
		case <-ctx.Done():
			log.Info("🧹 [TEMP_CLEANUP] Temp Cleanup Worker stopped")
			return
		case <-ticker.C:
			func() {
				defer func() {
					if r := recover(); r != nil {
						log.WithFields(map[string]interface{}{
							"panic": r,
						}).Error("🧹 [TEMP_CLEANUP] Panic khi dọn file tạm, sẽ tiếp tục ở lần chạy tiếp theo")
					}
				}()

				removed := w.sweep()
				if removed > 0 {
					log.WithFields(map[string]interface{}{
						"removed": removed,
					}).Info("🧹 [TEMP_CLEANUP] Đã dọn file tạm quá hạn")
				}
			}()
		}
	}
}

// sweep quét thư mục temp một lần, trả về số file đã xóa
func (w *TempCleanupWorker) sweep() int {
	log := logger.GetAppLogger()

	entries, err := os.ReadDir(w.tempDir)
	if err != nil {
		log.WithError(err).Error("🧹 [TEMP_CLEANUP] Không đọc được thư mục temp")
		return 0
	}

	cutoff := time.Now().Add(-w.maxAge)
	removed := 0

	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		if info.ModTime().After(cutoff) {
			continue
		}

		path := filepath.Join(w.tempDir, entry.Name())
		if err := os.Remove(path); err != nil {
			log.WithError(err).WithFields(map[string]interface{}{
				"path": path,
			}).Warn("🧹 [TEMP_CLEANUP] Không xóa được file tạm")
			continue
		}
		removed++
	}

	return removed
}
