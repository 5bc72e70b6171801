package storage

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestLocalStore_MovesFileAndReturnsLocator(t *testing.T) {
	uploadDir := t.TempDir()
	tempPath := writeTempVideo(t, t.TempDir(), 1024)

	strategy, err := NewLocalStrategy(uploadDir)
	if err != nil {
		t.Fatalf("Không tạo được LocalStrategy: %v", err)
	}

	placement, err := strategy.Store(context.Background(), tempPath, "my video.mp4", 1024)
	if err != nil {
		t.Fatalf("Store trả lỗi không mong đợi: %v", err)
	}

	if !strings.HasPrefix(placement.Locator, "/uploads/") {
		t.Errorf("Locator phải bắt đầu bằng /uploads/, nhận %s", placement.Locator)
	}
	if !strings.HasSuffix(placement.StorageKey, ".mp4") {
		t.Errorf("Storage key phải giữ extension gốc, nhận %s", placement.StorageKey)
	}
	if strings.Contains(placement.StorageKey, "my video") {
		t.Error("Tên file lưu trữ không được dùng lại tên gốc (chống trùng lặp)")
	}

	if _, err := os.Stat(placement.MediaSource); err != nil {
		t.Errorf("MediaSource phải trỏ vào file thật trong upload dir: %v", err)
	}
	if fileExists(tempPath) {
		t.Error("File tạm phải được di chuyển, không còn ở chỗ cũ")
	}
}

func TestLocalStore_UniqueKeysPerCall(t *testing.T) {
	uploadDir := t.TempDir()
	strategy, err := NewLocalStrategy(uploadDir)
	if err != nil {
		t.Fatalf("Không tạo được LocalStrategy: %v", err)
	}

	p1, err := strategy.Store(context.Background(), writeTempVideo(t, t.TempDir(), 10), "a.mp4", 10)
	if err != nil {
		t.Fatal(err)
	}
	p2, err := strategy.Store(context.Background(), writeTempVideo(t, t.TempDir(), 10), "a.mp4", 10)
	if err != nil {
		t.Fatal(err)
	}

	if p1.StorageKey == p2.StorageKey {
		t.Errorf("Hai lần upload cùng tên file phải ra storage key khác nhau: %s", p1.StorageKey)
	}
}

func TestLocalDelete_RemovesFile(t *testing.T) {
	uploadDir := t.TempDir()
	strategy, err := NewLocalStrategy(uploadDir)
	if err != nil {
		t.Fatalf("Không tạo được LocalStrategy: %v", err)
	}

	placement, err := strategy.Store(context.Background(), writeTempVideo(t, t.TempDir(), 10), "a.mp4", 10)
	if err != nil {
		t.Fatal(err)
	}

	if err := strategy.Delete(context.Background(), placement.StorageKey); err != nil {
		t.Fatalf("Delete trả lỗi không mong đợi: %v", err)
	}
	if fileExists(placement.MediaSource) {
		t.Error("File phải bị xóa khỏi upload dir")
	}
}

func TestLocalDelete_MissingFileIsNoop(t *testing.T) {
	strategy, err := NewLocalStrategy(t.TempDir())
	if err != nil {
		t.Fatalf("Không tạo được LocalStrategy: %v", err)
	}

	if err := strategy.Delete(context.Background(), "khong-ton-tai.mp4"); err != nil {
		t.Errorf("Xóa file không tồn tại phải là no-op, nhận lỗi: %v", err)
	}
}

func TestLocalDelete_SanitizesPathTraversal(t *testing.T) {
	uploadDir := t.TempDir()
	strategy, err := NewLocalStrategy(uploadDir)
	if err != nil {
		t.Fatalf("Không tạo được LocalStrategy: %v", err)
	}

	// File bên ngoài upload dir không được phép bị xóa qua storage key
	outside := filepath.Join(t.TempDir(), "secret.txt")
	if err := os.WriteFile(outside, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}

	_ = strategy.Delete(context.Background(), "../"+filepath.Base(filepath.Dir(outside))+"/secret.txt")

	if !fileExists(outside) {
		t.Error("Delete không được thoát ra ngoài upload dir")
	}
}

func TestLocalResolvePath(t *testing.T) {
	uploadDir := t.TempDir()
	strategy, err := NewLocalStrategy(uploadDir)
	if err != nil {
		t.Fatalf("Không tạo được LocalStrategy: %v", err)
	}

	path := strategy.ResolvePath("abc.mp4")
	if path != filepath.Join(uploadDir, "abc.mp4") {
		t.Errorf("ResolvePath sai: %s", path)
	}

	// Path traversal trong storage key bị cắt về base name
	path = strategy.ResolvePath("../../etc/passwd")
	if path != filepath.Join(uploadDir, "passwd") {
		t.Errorf("ResolvePath phải sanitize path traversal, nhận %s", path)
	}
}
