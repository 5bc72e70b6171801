package basesvc

import "testing"

func TestToUpdateData_PointerPassthrough(t *testing.T) {
	in := &UpdateData{Set: map[string]interface{}{"status": "processing"}}

	out, err := ToUpdateData(in)
	if err != nil {
		t.Fatalf("ToUpdateData trả lỗi không mong đợi: %v", err)
	}
	if out != in {
		t.Error("Con trỏ UpdateData phải được trả về nguyên vẹn")
	}
}

func TestToUpdateData_ValuePassthrough(t *testing.T) {
	in := UpdateData{Set: map[string]interface{}{"processingProgress": 50}}

	out, err := ToUpdateData(in)
	if err != nil {
		t.Fatalf("ToUpdateData trả lỗi không mong đợi: %v", err)
	}
	if out.Set["processingProgress"] != 50 {
		t.Errorf("Giá trị Set phải được giữ nguyên, nhận %v", out.Set)
	}
}

func TestToUpdateData_PlainMapWrappedInSet(t *testing.T) {
	out, err := ToUpdateData(map[string]interface{}{"title": "Video mới"})
	if err != nil {
		t.Fatalf("ToUpdateData trả lỗi không mong đợi: %v", err)
	}

	if out.Set == nil {
		t.Fatal("Map thường phải được wrap trong $set")
	}
	if out.Set["title"] != "Video mới" {
		t.Errorf("Giá trị trong $set sai: %v", out.Set)
	}
	if out.Unset != nil || out.Push != nil || out.AddToSet != nil {
		t.Error("Các operator khác phải rỗng khi input là map thường")
	}
}

func TestToUpdateData_StructWrappedInSet(t *testing.T) {
	type patch struct {
		Codec string `bson:"codec"`
		Width int    `bson:"width"`
	}

	out, err := ToUpdateData(patch{Codec: "h264", Width: 1920})
	if err != nil {
		t.Fatalf("ToUpdateData trả lỗi không mong đợi: %v", err)
	}

	if out.Set["codec"] != "h264" {
		t.Errorf("Trường codec phải nằm trong $set, nhận %v", out.Set)
	}
}

func TestToUpdateData_UnmarshalableInput(t *testing.T) {
	if _, err := ToUpdateData(make(chan int)); err == nil {
		t.Fatal("Input không chuyển được thành map phải trả lỗi")
	}
}
