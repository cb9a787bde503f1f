package handlers

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v4"
	"github.com/lib/pq"
	"go.uber.org/zap"

	"tasktracker/internal/config"
	"tasktracker/pkg/logger"
	"tasktracker/pkg/password"
)

// Register creates a user account. The password policy and the admin-key
// gate are authoritative here; whatever the client checked is advisory.
func Register(c *fiber.Ctx) error {
	type RegisterRequest struct {
		Name     string `json:"name" validate:"required"`
		Email    string `json:"email" validate:"required,email"`
		Password string `json:"password" validate:"required"`
		Role     string `json:"role" validate:"omitempty,oneof=user admin"`
		AdminKey string `json:"adminKey"`
	}

	var req RegisterRequest
	if err := c.BodyParser(&req); err != nil {
		logger.ErrorLogger.Error("Bad request in register", zap.Error(err))
		return c.Status(400).JSON(fiber.Map{"message": "Bad request"})
	}

	if err := config.Validate.Struct(req); err != nil {
		logger.AuditLogger.Warn("Validation error during register", zap.Error(err))
		return c.Status(400).JSON(fiber.Map{
			"message": "Validation error",
			"errors":  err.Error(),
		})
	}

	if !password.ValidPolicy(req.Password) {
		return c.Status(400).JSON(fiber.Map{
			"message": "Password must be 8-12 characters and include one uppercase letter, one number, and one special character",
		})
	}

	if req.Role == "" {
		req.Role = "user"
	}
	if req.Role == "admin" && req.AdminKey != config.AdminKey {
		logger.SecurityLogger.Warn("Admin registration with wrong key", zap.String("email", req.Email))
		return c.Status(403).JSON(fiber.Map{"message": "Invalid admin key"})
	}

	hashed, err := password.Hash(req.Password)
	if err != nil {
		logger.ErrorLogger.Error("Error hashing password", zap.Error(err))
		return c.Status(500).JSON(fiber.Map{"message": "Error hashing password"})
	}

	var userID int
	err = config.DB.QueryRow(
		"INSERT INTO users (name, email, password, role) VALUES ($1, $2, $3, $4) RETURNING id",
		req.Name, req.Email, hashed, req.Role).Scan(&userID)
	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23505" {
			logger.SecurityLogger.Warn("Duplicate email", zap.String("email", req.Email))
			return c.Status(409).JSON(fiber.Map{"message": "Email already registered"})
		}
		logger.ErrorLogger.Error("Error creating user", zap.Error(err))
		return c.Status(500).JSON(fiber.Map{"message": "Error creating user"})
	}

	logger.AuditLogger.Info("User registered", zap.Int("user_id", userID), zap.String("role", req.Role))
	return c.Status(201).JSON(fiber.Map{"message": "User registered successfully"})
}

// Login verifies credentials and issues a signed session token carrying
// the user's identity and role. Unknown email and wrong password return
// the same message.
func Login(c *fiber.Ctx) error {
	type LoginRequest struct {
		Email    string `json:"email" validate:"required,email"`
		Password string `json:"password" validate:"required"`
	}

	var req LoginRequest
	if err := c.BodyParser(&req); err != nil {
		logger.ErrorLogger.Error("Bad request in login", zap.Error(err))
		return c.Status(400).JSON(fiber.Map{"message": "Bad request"})
	}

	if err := config.Validate.Struct(req); err != nil {
		logger.AuditLogger.Warn("Validation error during login", zap.Error(err))
		return c.Status(400).JSON(fiber.Map{
			"message": "Validation error",
			"errors":  err.Error(),
		})
	}

	var user struct {
		ID       int
		Password string
		Role     string
	}
	err := config.DB.QueryRow(
		"SELECT id, password, role FROM users WHERE email = $1",
		req.Email).Scan(&user.ID, &user.Password, &user.Role)
	if err != nil {
		logger.SecurityLogger.Warn("Login with unknown email", zap.String("email", req.Email))
		return c.Status(401).JSON(fiber.Map{"message": "Invalid credentials"})
	}

	if !password.Compare(user.Password, req.Password) {
		logger.SecurityLogger.Warn("Login with wrong password", zap.Int("user_id", user.ID))
		return c.Status(401).JSON(fiber.Map{"message": "Invalid credentials"})
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id": user.ID,
		"role":    user.Role,
		"exp":     time.Now().Add(time.Hour * 1).Unix(),
	})
	tokenString, err := token.SignedString(config.SecretKey)
	if err != nil {
		logger.ErrorLogger.Error("Error generating token", zap.Error(err))
		return c.Status(500).JSON(fiber.Map{"message": "Error generating token"})
	}

	logger.AuditLogger.Info("Login success", zap.Int("user_id", user.ID), zap.String("role", user.Role))
	return c.JSON(fiber.Map{
		"token": tokenString,
		"role":  user.Role,
	})
}
