package handlers

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"tasktracker/internal/config"
	"tasktracker/internal/models"
	"tasktracker/pkg/logger"
)

const taskJoinQuery = `
	SELECT t.id, t.user_id, t.title, t.description, t.category_id,
	       to_char(t.due_date, 'YYYY-MM-DD'), t.status, t.created_at, t.updated_at,
	       c.id, c.name
	FROM tasks t
	LEFT JOIN categories c ON c.id = t.category_id`

// scanTask reads one row of taskJoinQuery. The category columns are
// nullable because a deleted category leaves its tasks unassigned.
func scanTask(scanner interface{ Scan(...interface{}) error }) (models.Task, error) {
	var task models.Task
	var categoryID sql.NullInt64
	var catID sql.NullInt64
	var catName sql.NullString
	err := scanner.Scan(
		&task.ID, &task.UserID, &task.Title, &task.Description, &categoryID,
		&task.DueDate, &task.Status, &task.CreatedAt, &task.UpdatedAt,
		&catID, &catName,
	)
	if err != nil {
		return task, err
	}
	if categoryID.Valid {
		id := int(categoryID.Int64)
		task.CategoryID = &id
	}
	if catID.Valid {
		task.Category = &models.Category{ID: int(catID.Int64), Name: catName.String}
	}
	return task, nil
}

func taskListCacheKey(userID int) string {
	return fmt.Sprintf("tasks:user:%d", userID)
}

func invalidateTaskCache(userID int) {
	if err := config.RedisClient.Del(config.Ctx, taskListCacheKey(userID)).Err(); err != nil {
		logger.ErrorLogger.Error("Error invalidating task cache", zap.Error(err))
	}
}

// categoryExists is the referential check behind task creation/update:
// a task may only point at a category that is actually there.
func categoryExists(id int) (bool, error) {
	var one int
	err := config.DB.QueryRow("SELECT 1 FROM categories WHERE id = $1", id).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// ListTasks returns the caller's tasks with their categories joined.
// The result is scoped to the authenticated identity for every caller,
// admins included; the cross-user view lives under /api/admin.
func ListTasks(c *fiber.Ctx) error {
	userID := c.Locals("userID").(int)

	cacheKey := taskListCacheKey(userID)
	if cached, err := config.RedisClient.Get(config.Ctx, cacheKey).Result(); err == nil {
		tasks := []models.Task{}
		if err = json.Unmarshal([]byte(cached), &tasks); err == nil {
			return c.JSON(tasks)
		}
	}

	rows, err := config.DB.Query(taskJoinQuery+" WHERE t.user_id = $1 ORDER BY t.id", userID)
	if err != nil {
		logger.ErrorLogger.Error("Error fetching tasks", zap.Error(err))
		return c.Status(500).JSON(fiber.Map{"message": "Error fetching tasks"})
	}
	defer rows.Close()

	tasks := []models.Task{}
	for rows.Next() {
		task, err := scanTask(rows)
		if err != nil {
			logger.ErrorLogger.Error("Error scanning tasks", zap.Error(err))
			return c.Status(500).JSON(fiber.Map{"message": "Error scanning tasks"})
		}
		tasks = append(tasks, task)
	}
	if err = rows.Err(); err != nil {
		logger.ErrorLogger.Error("Error iterating over tasks", zap.Error(err))
		return c.Status(500).JSON(fiber.Map{"message": "Error fetching tasks"})
	}

	if jsonData, err := json.Marshal(tasks); err == nil {
		if err = config.RedisClient.Set(config.Ctx, cacheKey, jsonData, time.Hour).Err(); err != nil {
			logger.ErrorLogger.Error("Error caching tasks", zap.Error(err))
		}
	}

	return c.JSON(tasks)
}

// CreateTask persists a new task owned by the caller. The owner is
// always the authenticated identity; a client-supplied userId is never
// trusted.
func CreateTask(c *fiber.Ctx) error {
	userID := c.Locals("userID").(int)

	type TaskRequest struct {
		Title       string `json:"title" validate:"required"`
		Description string `json:"description" validate:"required"`
		CategoryID  int    `json:"categoryId" validate:"required"`
		DueDate     string `json:"dueDate" validate:"required"`
		Status      string `json:"status" validate:"omitempty,oneof=Todo Doing Done"`
	}

	var req TaskRequest
	if err := c.BodyParser(&req); err != nil {
		logger.ErrorLogger.Error("Bad request in create task", zap.Error(err))
		return c.Status(400).JSON(fiber.Map{"message": "Bad request"})
	}

	if err := config.Validate.Struct(req); err != nil {
		logger.AuditLogger.Warn("Validation error in create task", zap.Error(err))
		return c.Status(400).JSON(fiber.Map{
			"message": "Validation error",
			"errors":  err.Error(),
		})
	}

	if _, err := time.Parse("2006-01-02", req.DueDate); err != nil {
		return c.Status(400).JSON(fiber.Map{"message": "Invalid due date, expected YYYY-MM-DD"})
	}

	if req.Status == "" {
		req.Status = models.StatusTodo
	}

	ok, err := categoryExists(req.CategoryID)
	if err != nil {
		logger.ErrorLogger.Error("Error checking category", zap.Error(err))
		return c.Status(500).JSON(fiber.Map{"message": "Error creating task"})
	}
	if !ok {
		return c.Status(400).JSON(fiber.Map{"message": "Invalid category"})
	}

	var taskID int
	err = config.DB.QueryRow(
		"INSERT INTO tasks (user_id, title, description, category_id, due_date, status) VALUES ($1, $2, $3, $4, $5, $6) RETURNING id",
		userID, req.Title, req.Description, req.CategoryID, req.DueDate, req.Status,
	).Scan(&taskID)
	if err != nil {
		logger.ErrorLogger.Error("Error creating task", zap.Error(err))
		return c.Status(500).JSON(fiber.Map{"message": "Error creating task"})
	}

	task, err := fetchOwnedTask(taskID, userID)
	if err != nil {
		logger.ErrorLogger.Error("Error fetching created task", zap.Error(err))
		return c.Status(500).JSON(fiber.Map{"message": "Error creating task"})
	}

	invalidateTaskCache(userID)
	config.Events.PublishTaskEvent("task.created", task)

	logger.AuditLogger.Info("Task created", zap.Int("task_id", taskID), zap.Int("user_id", userID))
	return c.Status(201).JSON(fiber.Map{"task": task})
}

func fetchOwnedTask(taskID, userID int) (models.Task, error) {
	row := config.DB.QueryRow(taskJoinQuery+" WHERE t.id = $1 AND t.user_id = $2", taskID, userID)
	return scanTask(row)
}

// UpdateTask applies a partial update to a task the caller owns. The
// ownership predicate doubles as the existence check: a task that is
// absent and a task owned by someone else are both reported as 404, so
// foreign task IDs never leak.
func UpdateTask(c *fiber.Ctx) error {
	userID := c.Locals("userID").(int)

	taskID, err := c.ParamsInt("id")
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"message": "Invalid task ID"})
	}

	type UpdateTaskRequest struct {
		Title       *string `json:"title"`
		Description *string `json:"description"`
		CategoryID  *int    `json:"categoryId"`
		DueDate     *string `json:"dueDate"`
		Status      *string `json:"status"`
	}

	var req UpdateTaskRequest
	if err := c.BodyParser(&req); err != nil {
		logger.ErrorLogger.Error("Bad request in update task", zap.Error(err))
		return c.Status(400).JSON(fiber.Map{"message": "Bad request"})
	}

	if req.Status != nil && !models.ValidStatus(*req.Status) {
		return c.Status(400).JSON(fiber.Map{"message": "Invalid status"})
	}
	if req.DueDate != nil {
		if _, err := time.Parse("2006-01-02", *req.DueDate); err != nil {
			return c.Status(400).JSON(fiber.Map{"message": "Invalid due date, expected YYYY-MM-DD"})
		}
	}
	if req.CategoryID != nil {
		ok, err := categoryExists(*req.CategoryID)
		if err != nil {
			logger.ErrorLogger.Error("Error checking category", zap.Error(err))
			return c.Status(500).JSON(fiber.Map{"message": "Error updating task"})
		}
		if !ok {
			return c.Status(400).JSON(fiber.Map{"message": "Invalid category"})
		}
	}

	result, err := config.DB.Exec(`
		UPDATE tasks
		SET title = COALESCE($1::varchar, title),
			description = COALESCE($2::text, description),
			category_id = COALESCE($3::int, category_id),
			due_date = COALESCE($4::date, due_date),
			status = COALESCE($5::varchar, status),
			updated_at = CURRENT_TIMESTAMP
		WHERE id = $6 AND user_id = $7`,
		req.Title, req.Description, req.CategoryID, req.DueDate, req.Status, taskID, userID,
	)
	if err != nil {
		logger.ErrorLogger.Error("Error updating task", zap.Error(err))
		return c.Status(500).JSON(fiber.Map{"message": "Error updating task"})
	}
	affected, err := result.RowsAffected()
	if err != nil {
		logger.ErrorLogger.Error("Error updating task", zap.Error(err))
		return c.Status(500).JSON(fiber.Map{"message": "Error updating task"})
	}
	if affected == 0 {
		return c.Status(404).JSON(fiber.Map{"message": "Task not found"})
	}

	task, err := fetchOwnedTask(taskID, userID)
	if err != nil {
		logger.ErrorLogger.Error("Error fetching updated task", zap.Error(err))
		return c.Status(500).JSON(fiber.Map{"message": "Error updating task"})
	}

	invalidateTaskCache(userID)
	config.Events.PublishTaskEvent("task.updated", task)

	logger.AuditLogger.Info("Task updated", zap.Int("task_id", taskID), zap.Int("user_id", userID))
	return c.JSON(fiber.Map{"task": task})
}

// DeleteTask removes a task the caller owns, with the same 404-for-both
// treatment of missing and foreign tasks as UpdateTask.
func DeleteTask(c *fiber.Ctx) error {
	userID := c.Locals("userID").(int)

	taskID, err := c.ParamsInt("id")
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"message": "Invalid task ID"})
	}

	result, err := config.DB.Exec("DELETE FROM tasks WHERE id = $1 AND user_id = $2", taskID, userID)
	if err != nil {
		logger.ErrorLogger.Error("Error deleting task", zap.Error(err))
		return c.Status(500).JSON(fiber.Map{"message": "Error deleting task"})
	}
	affected, err := result.RowsAffected()
	if err != nil {
		logger.ErrorLogger.Error("Error deleting task", zap.Error(err))
		return c.Status(500).JSON(fiber.Map{"message": "Error deleting task"})
	}
	if affected == 0 {
		return c.Status(404).JSON(fiber.Map{"message": "Task not found"})
	}

	invalidateTaskCache(userID)
	config.Events.PublishTaskEvent("task.deleted", fiber.Map{"id": taskID, "userId": userID})

	logger.AuditLogger.Info("Task deleted", zap.Int("task_id", taskID), zap.Int("user_id", userID))
	return c.SendStatus(204)
}
