package main

import (
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"go.uber.org/zap"

	"tasktracker/configs"
	v1 "tasktracker/internal/api/v1"
	"tasktracker/internal/config"
	"tasktracker/internal/middleware"
	"tasktracker/internal/repository"
	"tasktracker/internal/ws"
	"tasktracker/pkg/database"
	"tasktracker/pkg/logger"
)

func main() {
	logger.InitLoggers()
	defer logger.SyncLoggers()
	logger.SystemLogger.Info("Starting application", zap.String("time", time.Now().Format(time.RFC3339)))

	cfg := configs.LoadConfig()
	config.SecretKey = []byte(cfg.JWTSecret)
	config.AdminKey = cfg.AdminKey

	config.DB = database.ConnectDB(cfg)
	defer config.DB.Close()
	logger.SystemLogger.Info("Database connected")

	repository.CreateTableIfNotExists(config.DB)

	if cfg.SeedAdminEmail != "" && cfg.SeedAdminPassword != "" {
		if err := repository.CreateAdminUser(config.DB, cfg.SeedAdminEmail, cfg.SeedAdminPassword); err != nil {
			logger.SystemLogger.Warn("Seed admin not created", zap.Error(err))
		}
	}

	config.RedisClient = database.ConnectRedis(cfg)
	defer config.RedisClient.Close()
	logger.SystemLogger.Info("Redis connected")

	// Event hub for the admin dashboard's live feed.
	config.Events = ws.NewHub()
	go config.Events.Run()

	app := fiber.New()

	app.Use(middleware.ErrorHandler())
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
	}))
	app.Use(limiter.New(limiter.Config{
		Max:        100,
		Expiration: 1 * time.Minute,
	}))

	v1.RegisterRoutes(app)

	addr := fmt.Sprintf(":%d", cfg.Port)
	logger.SystemLogger.Info("Application ready", zap.String("addr", addr))
	if err := app.Listen(addr); err != nil {
		logger.ErrorLogger.Error("Application failed to start", zap.Error(err))
	}
}
