package database

import (
	"context"
	"testing"

	"meta_media/config"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

func TestCloseInstance_DisconnectsClient(t *testing.T) {
	// Driver kết nối lazy nên client tạo được mà không cần server thật
	client, err := mongo.Connect(context.Background(),
		options.Client().ApplyURI("mongodb://127.0.0.1:1"))
	if err != nil {
		t.Fatalf("Không tạo được mongo client: %v", err)
	}

	if err := CloseInstance(client); err != nil {
		t.Errorf("CloseInstance trả lỗi không mong đợi: %v", err)
	}

	// Client đã disconnect thì không dùng được nữa
	if err := client.Ping(context.Background(), nil); err == nil {
		t.Error("Ping sau khi disconnect phải trả lỗi")
	}
}

func TestGetInstance_EmptyURI(t *testing.T) {
	if _, err := GetInstance(&config.Configuration{}); err == nil {
		t.Fatal("URI kết nối rỗng phải trả lỗi")
	}
}
