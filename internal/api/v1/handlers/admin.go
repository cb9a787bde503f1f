package handlers

import (
	"database/sql"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"tasktracker/internal/config"
	"tasktracker/internal/models"
	"tasktracker/pkg/logger"
)

// AdminDashboard returns every task joined with its owner and category.
// No server-side filters: the dashboard filters by user, status, and due
// date after the fetch.
func AdminDashboard(c *fiber.Ctx) error {
	rows, err := config.DB.Query(`
		SELECT t.id, t.user_id, t.title, t.description, t.category_id,
		       to_char(t.due_date, 'YYYY-MM-DD'), t.status, t.created_at, t.updated_at,
		       c.id, c.name,
		       u.id, u.name, u.email
		FROM tasks t
		JOIN users u ON u.id = t.user_id
		LEFT JOIN categories c ON c.id = t.category_id
		ORDER BY t.id`)
	if err != nil {
		logger.ErrorLogger.Error("Error fetching dashboard tasks", zap.Error(err))
		return c.Status(500).JSON(fiber.Map{"message": "Error fetching tasks"})
	}
	defer rows.Close()

	tasks := []models.Task{}
	for rows.Next() {
		var task models.Task
		var categoryID, catID sql.NullInt64
		var catName sql.NullString
		var owner models.TaskOwner
		err := rows.Scan(
			&task.ID, &task.UserID, &task.Title, &task.Description, &categoryID,
			&task.DueDate, &task.Status, &task.CreatedAt, &task.UpdatedAt,
			&catID, &catName,
			&owner.ID, &owner.Name, &owner.Email,
		)
		if err != nil {
			logger.ErrorLogger.Error("Error scanning dashboard tasks", zap.Error(err))
			return c.Status(500).JSON(fiber.Map{"message": "Error scanning tasks"})
		}
		if categoryID.Valid {
			id := int(categoryID.Int64)
			task.CategoryID = &id
		}
		if catID.Valid {
			task.Category = &models.Category{ID: int(catID.Int64), Name: catName.String}
		}
		task.User = &owner
		tasks = append(tasks, task)
	}
	if err = rows.Err(); err != nil {
		logger.ErrorLogger.Error("Error iterating over dashboard tasks", zap.Error(err))
		return c.Status(500).JSON(fiber.Map{"message": "Error fetching tasks"})
	}

	logger.AuditLogger.Info("Admin dashboard fetched", zap.Int("task_count", len(tasks)))
	return c.JSON(fiber.Map{"tasks": tasks})
}

// AdminUsers lists all registered users. The password column is never
// selected, and the model keeps the hash out of JSON regardless.
func AdminUsers(c *fiber.Ctx) error {
	rows, err := config.DB.Query("SELECT id, name, email, role, created_at, updated_at FROM users ORDER BY id")
	if err != nil {
		logger.ErrorLogger.Error("Error fetching users", zap.Error(err))
		return c.Status(500).JSON(fiber.Map{"message": "Error fetching users"})
	}
	defer rows.Close()

	users := []models.User{}
	for rows.Next() {
		var user models.User
		if err := rows.Scan(&user.ID, &user.Name, &user.Email, &user.Role, &user.CreatedAt, &user.UpdatedAt); err != nil {
			logger.ErrorLogger.Error("Error scanning users", zap.Error(err))
			return c.Status(500).JSON(fiber.Map{"message": "Error scanning users"})
		}
		users = append(users, user)
	}
	if err = rows.Err(); err != nil {
		logger.ErrorLogger.Error("Error iterating over users", zap.Error(err))
		return c.Status(500).JSON(fiber.Map{"message": "Error fetching users"})
	}

	logger.AuditLogger.Info("Users fetched", zap.Int("user_count", len(users)))
	return c.JSON(users)
}
