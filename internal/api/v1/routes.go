package v1

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"

	"tasktracker/internal/api/v1/handlers"
	"tasktracker/internal/config"
	"tasktracker/internal/middleware"
	"tasktracker/internal/ws"
)

func RegisterRoutes(app *fiber.App) {
	api := app.Group("/api")

	// Auth
	authRoutes := api.Group("/auth")
	authRoutes.Post("/register", handlers.Register)
	authRoutes.Post("/login", handlers.Login)

	// Tasks, always scoped to the caller
	taskRoutes := api.Group("/tasks", middleware.RequireAuth)
	taskRoutes.Get("/", handlers.ListTasks)
	taskRoutes.Post("/", handlers.CreateTask)
	taskRoutes.Patch("/:id", handlers.UpdateTask)
	taskRoutes.Delete("/:id", handlers.DeleteTask)

	// Categories: any authenticated user may read them (the dashboard's
	// category picker needs the list), only admins may mutate.
	categoryRoutes := api.Group("/categories", middleware.RequireAuth)
	categoryRoutes.Get("/", handlers.ListCategories)
	categoryRoutes.Post("/", middleware.RequireAdmin, handlers.CreateCategory)
	categoryRoutes.Put("/:id", middleware.RequireAdmin, handlers.UpdateCategory)
	categoryRoutes.Delete("/:id", middleware.RequireAdmin, handlers.DeleteCategory)

	// Admin aggregation
	adminRoutes := api.Group("/admin", middleware.RequireAuth, middleware.RequireAdmin)
	adminRoutes.Get("/dashboard", handlers.AdminDashboard)
	adminRoutes.Get("/users", handlers.AdminUsers)

	// Live task-event feed for admin dashboards. The browser WebSocket
	// API cannot set an Authorization header, so the token rides in the
	// query string.
	app.Use("/ws", func(c *fiber.Ctx) error {
		if !websocket.IsWebSocketUpgrade(c) {
			return fiber.ErrUpgradeRequired
		}
		_, role, err := middleware.ParseToken(c.Query("token"))
		if err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": err.Error()})
		}
		if role != "admin" {
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"message": "Admin access required"})
		}
		return c.Next()
	})
	app.Get("/ws/events", websocket.New(func(conn *websocket.Conn) {
		client := &ws.Client{Conn: conn}
		config.Events.Register <- client
		defer func() {
			config.Events.Unregister <- client
		}()
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				break
			}
		}
	}))
}
