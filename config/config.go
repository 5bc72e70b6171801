package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/caarlos0/env"
	"github.com/joho/godotenv"
)

// Configuration chứa thông tin tĩnh cần thiết để chạy ứng dụng.
// Bao gồm cấu hình server, database, storage backend và các tham số pipeline xử lý video.
type Configuration struct {
	Address               string `env:"ADDRESS" envDefault:":8080"`                // Địa chỉ server
	JwtSecret             string `env:"JWT_SECRET,required"`                       // Bí mật JWT (contract với hệ thống auth bên ngoài)
	MongoDB_ConnectionURI string `env:"MONGODB_CONNECTION_URI,required"`           // URL kết nối cơ sở dữ liệu
	MongoDB_DBName        string `env:"MONGODB_DBNAME,required"`                   // Tên cơ sở dữ liệu
	CORS_Origins          string `env:"CORS_ORIGINS" envDefault:"*"`               // Các origins được phép (phân cách bởi dấu phẩy, * = tất cả)
	CORS_AllowCredentials bool   `env:"CORS_ALLOW_CREDENTIALS" envDefault:"false"` // Cho phép gửi credentials
	RateLimit_Max         int    `env:"RATE_LIMIT_MAX" envDefault:"100"`           // Số request tối đa trong window (0 = disable rate limit)
	RateLimit_Window      int    `env:"RATE_LIMIT_WINDOW" envDefault:"60"`         // Thời gian window (giây)
	RateLimit_Enabled     bool   `env:"RATE_LIMIT_ENABLED" envDefault:"true"`      // Bật/tắt rate limiting

	// Storage Configuration
	StorageMode string `env:"STORAGE_MODE" envDefault:"local"`      // Backend lưu trữ: local | remote (cấu hình toàn deployment, không override theo upload)
	UploadDir   string `env:"UPLOAD_DIR" envDefault:"./uploads"`    // Thư mục chứa file local (backend local)
	TempDir     string `env:"TEMP_DIR" envDefault:"./tmp"`          // Thư mục chứa file tạm khi upload
	MaxBodySize int    `env:"MAX_BODY_SIZE" envDefault:"524288000"` // Giới hạn body request (bytes, mặc định 500MB)

	// Remote Storage Configuration (MinIO / S3-compatible)
	MinioEndpoint  string `env:"MINIO_ENDPOINT"`                   // Endpoint của object storage
	MinioAccessKey string `env:"MINIO_ACCESS_KEY"`                 // Access key
	MinioSecretKey string `env:"MINIO_SECRET_KEY"`                 // Secret key
	MinioBucket    string `env:"MINIO_BUCKET" envDefault:"videos"` // Bucket chứa video
	MinioUseSSL    bool   `env:"MINIO_USE_SSL" envDefault:"true"`  // Dùng TLS khi kết nối object storage

	// Media Tools Configuration
	FfmpegBinary  string `env:"FFMPEG_BINARY" envDefault:"ffmpeg"`   // Đường dẫn ffmpeg (nén video trước khi upload remote)
	FfprobeBinary string `env:"FFPROBE_BINARY" envDefault:"ffprobe"` // Đường dẫn ffprobe (trích xuất metadata)

	// Pipeline Tuning
	CompressThresholdBytes int64 `env:"COMPRESS_THRESHOLD_BYTES" envDefault:"52428800"`   // Ngưỡng kích thước phải nén trước khi upload remote (50MB)
	DirectUploadLimitBytes int64 `env:"DIRECT_UPLOAD_LIMIT_BYTES" envDefault:"104857600"` // Ngưỡng upload trực tiếp sau khi nén (100MB)
	SettleDelayMs          int   `env:"SETTLE_DELAY_MS" envDefault:"2000"`                // Thời gian chờ giữa các bước xử lý (mô phỏng công việc hạ nguồn)
	TempFileMaxAgeMinutes  int   `env:"TEMP_FILE_MAX_AGE_MINUTES" envDefault:"60"`        // Tuổi tối đa của file tạm trước khi janitor dọn
}

// getEnvPath trả về đường dẫn đến file env dựa trên môi trường
func getEnvPath() string {
	// Mặc định sử dụng môi trường development
	env := os.Getenv("GO_ENV")
	if env == "" {
		env = "development"
	}

	// Tìm thư mục config
	currentDir, err := os.Getwd()
	if err != nil {
		// Sử dụng fmt.Printf vì logger có thể chưa được init ở đây
		fmt.Printf("Không thể lấy được thư mục hiện tại: %v\n", err)
		return ""
	}

	// Tìm thư mục config/env
	for {
		envDir := filepath.Join(currentDir, "config", "env")
		if _, err := os.Stat(envDir); err == nil {
			// Tìm thấy thư mục config/env
			envPath := filepath.Join(envDir, fmt.Sprintf("%s.env", env))
			return envPath
		}

		// Đi lên thư mục cha
		parentDir := filepath.Dir(currentDir)
		if parentDir == currentDir {
			return ""
		}
		currentDir = parentDir
	}
}

// NewConfig sẽ đọc dữ liệu cấu hình từ file env được cung cấp
func NewConfig(files ...string) *Configuration {
	envPath := getEnvPath()
	if envPath == "" {
		// Sử dụng fmt.Printf vì logger có thể chưa được init ở đây
		fmt.Printf("Không tìm thấy thư mục config/env\n")
		return nil
	}

	err := godotenv.Load(envPath)
	if err != nil {
		// Sử dụng fmt.Printf vì logger có thể chưa được init ở đây
		fmt.Printf("Không thể load file env tại %s: %v\n", envPath, err)
		return nil
	}

	cfg := Configuration{}
	err = env.Parse(&cfg)
	if err != nil {
		fmt.Printf("Lỗi khi parse config: %+v\n", err)
		return nil
	}

	// Storage mode chỉ chấp nhận local hoặc remote
	if cfg.StorageMode != "local" && cfg.StorageMode != "remote" {
		fmt.Printf("STORAGE_MODE không hợp lệ: %s (chỉ chấp nhận local hoặc remote)\n", cfg.StorageMode)
		return nil
	}

	return &cfg
}
