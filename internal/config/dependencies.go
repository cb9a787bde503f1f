package config

import (
	"context"
	"database/sql"

	"github.com/go-playground/validator/v10"
	"github.com/go-redis/redis/v8"

	"tasktracker/internal/ws"
)

var (
	// Global dependencies shared across the application.
	DB          *sql.DB
	RedisClient *redis.Client
	Validate    = validator.New()
	Ctx         = context.Background()

	// SecretKey signs session tokens; AdminKey gates admin registration.
	// Both are overwritten from configs at startup.
	SecretKey = []byte("secret")
	AdminKey  = "ADMIN123"

	// Events carries task lifecycle notifications to connected admin dashboards.
	Events *ws.Hub
)
