// Package middleware chứa các middleware dùng chung cho tầng API.
package middleware

import (
	"errors"
	"strings"
	"time"

	"meta_media/internal/common"
	"meta_media/internal/global"

	"github.com/gofiber/fiber/v3"
	"github.com/golang-jwt/jwt/v5"
)

// AuthClaims chứa các claims trong JWT token của hệ thống
type AuthClaims struct {
	UserID         string `json:"userId"`
	OrganizationID string `json:"organizationId,omitempty"`
	jwt.RegisteredClaims
}

// GenerateToken tạo JWT token cho một user (dùng cho test và công cụ nội bộ)
func GenerateToken(userID, organizationID string, ttl time.Duration) (string, error) {
	claims := &AuthClaims{
		UserID:         userID,
		OrganizationID: organizationID,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(global.ServerConfig.JwtSecret))
}

// ValidateToken kiểm tra và giải mã JWT token
func ValidateToken(tokenString string) (*AuthClaims, error) {
	claims := &AuthClaims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, common.ErrTokenInvalid
		}
		return []byte(global.ServerConfig.JwtSecret), nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, common.ErrTokenExpired
		}
		return nil, common.ErrTokenInvalid
	}

	if !token.Valid || claims.UserID == "" {
		return nil, common.ErrTokenInvalid
	}

	return claims, nil
}

// AuthMiddleware xác thực JWT Bearer token và lưu danh tính user vào context.
// Sau khi qua middleware này, handler có thể đọc c.Locals("user_id") và
// c.Locals("organization_id").
func AuthMiddleware() fiber.Handler {
	return func(c fiber.Ctx) error {
		tokenString := extractBearerToken(c)
		if tokenString == "" {
			return common.ErrTokenMissing
		}

		claims, err := ValidateToken(tokenString)
		if err != nil {
			return err
		}

		// Lưu danh tính vào context cho các handler phía sau
		c.Locals("user_id", claims.UserID)
		c.Locals("organization_id", claims.OrganizationID)

		return c.Next()
	}
}

// extractBearerToken lấy token từ header Authorization hoặc query param token.
// Query param được hỗ trợ cho các kết nối SSE (EventSource không gửi được header).
func extractBearerToken(c fiber.Ctx) string {
	auth := c.Get("Authorization")
	if strings.HasPrefix(auth, "Bearer ") {
		return strings.TrimSpace(strings.TrimPrefix(auth, "Bearer "))
	}
	return c.Query("token")
}
