// Package router đăng ký các route thuộc domain Video: upload, truy vấn,
// streaming playback, xóa và subscribe tiến độ.
package router

import (
	"github.com/gofiber/fiber/v3"

	"meta_media/internal/api/middleware"
	apirouter "meta_media/internal/api/router"
	videohdl "meta_media/internal/api/video/handler"
)

// Register đăng ký tất cả route video lên v1.
func Register(v1 fiber.Router, h *videohdl.VideoAssetHandler) {
	authMiddleware := middleware.AuthMiddleware()

	// SSE subscribe đăng ký trước các route có param :id
	apirouter.RegisterRouteWithMiddleware(v1, "/videos", "GET", "/progress/subscribe", []fiber.Handler{authMiddleware}, h.SubscribeProgress)

	apirouter.RegisterRouteWithMiddleware(v1, "/videos", "POST", "/upload", []fiber.Handler{authMiddleware}, h.Upload)
	apirouter.RegisterRouteWithMiddleware(v1, "/videos", "GET", "/", []fiber.Handler{authMiddleware}, h.List)
	apirouter.RegisterRouteWithMiddleware(v1, "/videos", "GET", "/:id", []fiber.Handler{authMiddleware}, h.GetByID)
	apirouter.RegisterRouteWithMiddleware(v1, "/videos", "GET", "/:id/stream", []fiber.Handler{authMiddleware}, h.Stream)
	apirouter.RegisterRouteWithMiddleware(v1, "/videos", "DELETE", "/:id", []fiber.Handler{authMiddleware}, h.Delete)
}
