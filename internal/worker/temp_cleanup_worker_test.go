package worker

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeFileWithAge(t *testing.T, dir, name string, age time.Duration) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte("x"), 0o644); err != nil {
		t.Fatalf("Không tạo được file test: %v", err)
	}
	mtime := time.Now().Add(-age)
	if err := os.Chtimes(path, mtime, mtime); err != nil {
		t.Fatalf("Không set được mtime: %v", err)
	}
	return path
}

func TestSweep_RemovesOnlyExpiredFiles(t *testing.T) {
	dir := t.TempDir()

	oldFile := writeFileWithAge(t, dir, "upload-old.mp4", 2*time.Hour)
	freshFile := writeFileWithAge(t, dir, "upload-fresh.mp4", time.Minute)

	w := NewTempCleanupWorker(dir, 10*time.Minute, time.Hour)

	removed := w.sweep()
	if removed != 1 {
		t.Errorf("Phải xóa đúng 1 file quá hạn, xóa %d", removed)
	}

	if _, err := os.Stat(oldFile); !os.IsNotExist(err) {
		t.Error("File quá hạn phải bị xóa")
	}
	if _, err := os.Stat(freshFile); err != nil {
		t.Error("File còn mới không được xóa")
	}
}

func TestSweep_SkipsDirectories(t *testing.T) {
	dir := t.TempDir()

	subDir := filepath.Join(dir, "sub")
	if err := os.Mkdir(subDir, 0o755); err != nil {
		t.Fatal(err)
	}
	mtime := time.Now().Add(-3 * time.Hour)
	if err := os.Chtimes(subDir, mtime, mtime); err != nil {
		t.Fatal(err)
	}

	w := NewTempCleanupWorker(dir, 10*time.Minute, time.Hour)

	if removed := w.sweep(); removed != 0 {
		t.Errorf("Thư mục con không được tính là file tạm, xóa %d", removed)
	}
	if _, err := os.Stat(subDir); err != nil {
		t.Error("Thư mục con phải được giữ nguyên")
	}
}

func TestSweep_MissingDirIsNoop(t *testing.T) {
	w := NewTempCleanupWorker(filepath.Join(t.TempDir(), "khong-ton-tai"), 10*time.Minute, time.Hour)

	if removed := w.sweep(); removed != 0 {
		t.Errorf("Thư mục không tồn tại phải trả 0, nhận %d", removed)
	}
}

func TestNewTempCleanupWorker_Defaults(t *testing.T) {
	w := NewTempCleanupWorker("/tmp/x", 0, 0)

	if w.interval != 10*time.Minute {
		t.Errorf("Interval mặc định phải là 10 phút, nhận %s", w.interval)
	}
	if w.maxAge != time.Hour {
		t.Errorf("MaxAge mặc định phải là 1 giờ, nhận %s", w.maxAge)
	}
}
