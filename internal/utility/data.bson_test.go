package utility

import "testing"

func TestToMap_StructWithBsonTags(t *testing.T) {
	type doc struct {
		Title string `bson:"title"`
		Size  int64  `bson:"size"`
	}

	m, err := ToMap(doc{Title: "Video test", Size: 1024})
	if err != nil {
		t.Fatalf("ToMap trả lỗi không mong đợi: %v", err)
	}

	if m["title"] != "Video test" {
		t.Errorf("Key title sai: %v", m["title"])
	}
	// bson decode số nguyên 64-bit thành int64
	if size, ok := m["size"].(int64); !ok || size != 1024 {
		t.Errorf("Key size sai: %v (%T)", m["size"], m["size"])
	}
}

func TestToMap_UnmarshalableInput(t *testing.T) {
	// Channel không marshal được thành bson document
	if _, err := ToMap(make(chan int)); err == nil {
		t.Fatal("Input không marshal được phải trả lỗi")
	}
}
