package middleware

import (
	"fmt"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v4"
	"go.uber.org/zap"

	"tasktracker/internal/config"
	"tasktracker/pkg/logger"
)

// ParseToken validates a signed session token and returns the embedded
// user ID and role. Signature, expiry, and claim shape are all checked.
func ParseToken(tokenString string) (int, string, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return config.SecretKey, nil
	})
	if err != nil || !token.Valid {
		return 0, "", fmt.Errorf("invalid token")
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return 0, "", fmt.Errorf("invalid token claims")
	}
	if exp, ok := claims["exp"].(float64); !ok || int64(exp) < time.Now().Unix() {
		return 0, "", fmt.Errorf("token expired")
	}
	userID, ok := claims["user_id"].(float64)
	if !ok {
		return 0, "", fmt.Errorf("invalid user ID in token")
	}
	role, ok := claims["role"].(string)
	if !ok {
		return 0, "", fmt.Errorf("invalid role in token")
	}
	return int(userID), role, nil
}

// RequireAuth extracts the bearer token, verifies it, and attaches the
// caller's identity to the request context. Failures short-circuit with
// 401 and never reach the downstream handler.
func RequireAuth(c *fiber.Ctx) error {
	authHeader := c.Get("Authorization")
	if authHeader == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "No token provided"})
	}
	parts := strings.Split(authHeader, " ")
	if len(parts) != 2 || parts[0] != "Bearer" {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "Invalid token format"})
	}
	userID, role, err := ParseToken(parts[1])
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": err.Error()})
	}
	c.Locals("userID", userID)
	c.Locals("role", role)
	return c.Next()
}

// RequireAdmin is the second stage of the pipeline: it assumes RequireAuth
// already ran and rejects callers whose role claim is not admin.
func RequireAdmin(c *fiber.Ctx) error {
	role, _ := c.Locals("role").(string)
	if role != "admin" {
		userID, _ := c.Locals("userID").(int)
		logger.SecurityLogger.Warn("Admin route denied",
			zap.Int("user_id", userID),
			zap.String("role", role),
			zap.String("url", c.OriginalURL()),
		)
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"message": "Admin access required"})
	}
	return c.Next()
}
