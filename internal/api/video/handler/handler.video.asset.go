// Package videohdl xử lý các request HTTP của domain video:
// upload intake, truy vấn, streaming playback, xóa và subscribe tiến độ.
package videohdl

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	basehdl "meta_media/internal/api/base/handler"
	videodto "meta_media/internal/api/video/dto"
	videomodels "meta_media/internal/api/video/models"
	videosvc "meta_media/internal/api/video/service"
	"meta_media/internal/common"
	"meta_media/internal/global"
	"meta_media/internal/logger"
	"meta_media/internal/pipeline"
	"meta_media/internal/progress"
	"meta_media/internal/storage"
	"meta_media/internal/utility"

	"github.com/gofiber/fiber/v3"
	"github.com/google/uuid"
	"github.com/valyala/fasthttp"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// VideoAssetHandler xử lý các request liên quan đến video assets
type VideoAssetHandler struct {
	service      *videosvc.VideoAssetService
	orchestrator *pipeline.Orchestrator
	strategy     storage.Strategy
	local        *storage.LocalStrategy // nil khi chạy storage mode remote
	broker       *progress.Broker
	tempDir      string
}

// NewVideoAssetHandler tạo mới VideoAssetHandler
func NewVideoAssetHandler(service *videosvc.VideoAssetService, orchestrator *pipeline.Orchestrator, strategy storage.Strategy, local *storage.LocalStrategy, broker *progress.Broker, tempDir string) *VideoAssetHandler {
	return &VideoAssetHandler{
		service:      service,
		orchestrator: orchestrator,
		strategy:     strategy,
		local:        local,
		broker:       broker,
		tempDir:      tempDir,
	}
}

// Upload nhận multipart upload, tạo bản ghi pending và khởi động pipeline nền.
// Response trả về ngay khi bản ghi được tạo — caller không chờ lưu trữ hay xử lý.
func (h *VideoAssetHandler) Upload(c fiber.Ctx) error {
	return basehdl.SafeHandler(c, func() error {
		log := logger.WithRequest(c)

		file, err := c.FormFile("file")
		if err != nil || file == nil {
			basehdl.HandleResponse(c, nil, common.NewError(
				common.ErrCodeValidationInput,
				"Thiếu file video trong request",
				common.StatusBadRequest,
				nil,
			))
			return nil
		}

		// Lưu file tạm trước khi validate các field còn lại
		// (multipart đã được đọc, cần chỗ chứa bytes)
		tempPath := filepath.Join(h.tempDir, "upload-"+uuid.NewString()+filepath.Ext(file.Filename))
		if err := c.SaveFile(file, tempPath); err != nil {
			basehdl.HandleResponse(c, nil, common.NewError(
				common.ErrCodeStoragePlacement,
				"Không lưu được file upload",
				common.StatusInternalServerError,
				err,
			))
			return nil
		}

		input := videodto.UploadInput{
			Title:       strings.TrimSpace(c.FormValue("title")),
			Description: strings.TrimSpace(c.FormValue("description")),
		}
		if input.Title == "" {
			// Title rỗng: xóa file tạm đã ghi rồi mới trả lỗi
			removeTempQuiet(tempPath)
			basehdl.HandleResponse(c, nil, common.NewError(
				common.ErrCodeValidationInput,
				"Tiêu đề video không được để trống",
				common.StatusBadRequest,
				nil,
			))
			return nil
		}
		if err := global.Validate.Struct(&input); err != nil {
			removeTempQuiet(tempPath)
			basehdl.HandleResponse(c, nil, common.NewError(
				common.ErrCodeValidationInput,
				"Dữ liệu upload không hợp lệ",
				common.StatusBadRequest,
				err,
			))
			return nil
		}

		userID := utility.String2ObjectID(requireLocalString(c, "user_id"))
		orgID := utility.String2ObjectID(requireLocalString(c, "organization_id"))

		asset := videomodels.VideoAsset{
			Title:               input.Title,
			Description:         input.Description,
			OriginalFilename:    file.Filename,
			Size:                file.Size,
			MediaType:           file.Header.Get("Content-Type"),
			UserID:              userID,
			OwnerOrganizationID: orgID,
			Status:              videomodels.VideoStatusPending,
			ProcessingProgress:  0,
			SensitivityStatus:   videomodels.SensitivityStatusPending,
		}

		created, err := h.service.InsertOne(c.Context(), asset)
		if err != nil {
			removeTempQuiet(tempPath)
			basehdl.HandleResponse(c, nil, err)
			return nil
		}

		// Chuỗi lưu trữ → xử lý chạy nền, tách khỏi request/response cycle.
		// Lỗi trong goroutine không bao giờ lan ngược về caller — chỉ quan sát
		// được qua trạng thái asset và Progress Channel.
		go func() {
			defer func() {
				if r := recover(); r != nil {
					logger.GetAppLogger().WithField("videoId", created.ID.Hex()).
						Errorf("Pipeline panic: %v", r)
				}
			}()
			h.orchestrator.Ingest(context.Background(), created, tempPath)
		}()

		log.WithFields(map[string]interface{}{
			"videoId": created.ID.Hex(),
			"size":    utility.FormatBytes(uint64(created.Size)),
		}).Info("📥 Đã nhận video upload")
		return basehdl.HandleCreated(c, videodto.UploadResponse{
			ID:               created.ID.Hex(),
			Title:            created.Title,
			Description:      created.Description,
			OriginalFilename: created.OriginalFilename,
			Size:             created.Size,
			Status:           created.Status,
			CreatedAt:        created.CreatedAt,
		})
	})
}

// GetByID trả về một video asset theo id
func (h *VideoAssetHandler) GetByID(c fiber.Ctx) error {
	return basehdl.SafeHandler(c, func() error {
		asset, err := h.findOwned(c)
		basehdl.HandleResponse(c, asset, err)
		return nil
	})
}

// List trả về danh sách video của user hiện tại, phân trang, mới nhất trước
func (h *VideoAssetHandler) List(c fiber.Ctx) error {
	return basehdl.SafeHandler(c, func() error {
		var query videodto.ListQuery
		if err := c.Bind().Query(&query); err != nil {
			basehdl.HandleResponse(c, nil, common.ErrInvalidInput)
			return nil
		}
		if err := global.Validate.Struct(&query); err != nil {
			basehdl.HandleResponse(c, nil, common.ErrInvalidInput)
			return nil
		}

		userID := utility.String2ObjectID(requireLocalString(c, "user_id"))
		result, err := h.service.FindByUser(c.Context(), userID, query.Status, query.Page, query.Limit)
		basehdl.HandleResponse(c, result, err)
		return nil
	})
}

// Stream phục vụ nội dung video cho playback.
// Local backend: serve file trực tiếp với hỗ trợ byte-range để seek được.
// Remote backend: redirect về URL truy xuất của object storage.
func (h *VideoAssetHandler) Stream(c fiber.Ctx) error {
	asset, err := h.findOwned(c)
	if err != nil {
		basehdl.HandleResponse(c, nil, err)
		return nil
	}

	// Locator chỉ đáng tin khi asset chưa failed — file vật lý
	// có thể đã bị xóa trên nhánh lỗi
	if asset.Status == videomodels.VideoStatusFailed || asset.StorageLocator == "" {
		basehdl.HandleResponse(c, nil, common.NewError(
			common.ErrCodeBusinessState,
			"Video chưa sẵn sàng để phát",
			common.StatusBadRequest,
			nil,
		))
		return nil
	}

	if h.local != nil {
		return c.SendFile(h.local.ResolvePath(asset.StorageKey), fiber.SendFile{ByteRange: true})
	}
	return c.Redirect().To(asset.StorageLocator)
}

// Delete xóa bản ghi video cùng file vật lý.
// Lỗi xóa file vật lý chỉ log, không chặn việc xóa bản ghi.
func (h *VideoAssetHandler) Delete(c fiber.Ctx) error {
	return basehdl.SafeHandler(c, func() error {
		asset, err := h.findOwned(c)
		if err != nil {
			basehdl.HandleResponse(c, nil, err)
			return nil
		}

		if asset.StorageKey != "" {
			if err := h.strategy.Delete(c.Context(), asset.StorageKey); err != nil {
				logger.WithRequest(c).WithError(err).
					WithField("videoId", asset.ID.Hex()).
					Warn("Không xóa được file vật lý của video")
			}
		}

		err = h.service.DeleteById(c.Context(), asset.ID)
		basehdl.HandleResponse(c, fiber.Map{"id": asset.ID.Hex()}, err)
		return nil
	})
}

// SubscribeProgress mở kết nối SSE nhận sự kiện tiến độ của user hiện tại.
// Client ngắt kết nối chỉ dừng việc nhận event, không dừng pipeline.
func (h *VideoAssetHandler) SubscribeProgress(c fiber.Ctx) error {
	userID := requireLocalString(c, "user_id")
	if userID == "" {
		basehdl.HandleResponse(c, nil, common.ErrTokenMissing)
		return nil
	}

	c.Set("Content-Type", "text/event-stream")
	c.Set("Cache-Control", "no-cache")
	c.Set("Connection", "keep-alive")

	ch, unsubscribe := h.broker.Subscribe(userID)

	c.RequestCtx().SetBodyStreamWriter(fasthttp.StreamWriter(func(w *bufio.Writer) {
		defer unsubscribe()

		heartbeat := time.NewTicker(30 * time.Second)
		defer heartbeat.Stop()

		for {
			select {
			case event, ok := <-ch:
				if !ok {
					return
				}
				payload, err := json.Marshal(event)
				if err != nil {
					continue
				}
				fmt.Fprintf(w, "event: %s\ndata: %s\n\n", event.Type, payload)
				if err := w.Flush(); err != nil {
					// Client đã ngắt kết nối
					return
				}
			case <-heartbeat.C:
				fmt.Fprint(w, ": ping\n\n")
				if err := w.Flush(); err != nil {
					return
				}
			}
		}
	}))

	return nil
}

// findOwned load asset theo param id và kiểm tra thuộc về user hiện tại
func (h *VideoAssetHandler) findOwned(c fiber.Ctx) (videomodels.VideoAsset, error) {
	var zero videomodels.VideoAsset

	id, err := primitive.ObjectIDFromHex(c.Params("id"))
	if err != nil {
		return zero, common.ErrInvalidFormat
	}

	asset, err := h.service.FindOneById(c.Context(), id)
	if err != nil {
		return zero, err
	}

	userID := requireLocalString(c, "user_id")
	if asset.UserID.Hex() != userID {
		return zero, common.ErrNotFound
	}

	return asset, nil
}

// requireLocalString đọc một giá trị string từ Locals, rỗng nếu không có
func requireLocalString(c fiber.Ctx, key string) string {
	if v, ok := c.Locals(key).(string); ok {
		return v
	}
	return ""
}

// removeTempQuiet xóa file tạm, lỗi chỉ log
func removeTempQuiet(path string) {
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		logger.GetAppLogger().WithError(err).WithField("path", path).Warn("Không xóa được file tạm")
	}
}
