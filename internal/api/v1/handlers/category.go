package handlers

import (
	"encoding/json"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"tasktracker/internal/config"
	"tasktracker/internal/models"
	"tasktracker/pkg/logger"
)

const categoryCacheKey = "categories"

func invalidateCategoryCache() {
	if err := config.RedisClient.Del(config.Ctx, categoryCacheKey).Err(); err != nil {
		logger.ErrorLogger.Error("Error invalidating category cache", zap.Error(err))
	}
}

// invalidateAllTaskCaches drops every cached task list. Category renames
// and deletions change the joined Category object inside task lists, so
// per-user invalidation is not enough.
func invalidateAllTaskCaches() {
	keys, err := config.RedisClient.Keys(config.Ctx, "tasks:user:*").Result()
	if err != nil {
		logger.ErrorLogger.Error("Error listing task cache keys", zap.Error(err))
		return
	}
	if len(keys) == 0 {
		return
	}
	if err := config.RedisClient.Del(config.Ctx, keys...).Err(); err != nil {
		logger.ErrorLogger.Error("Error invalidating task caches", zap.Error(err))
	}
}

// ListCategories is readable by any authenticated user: the task form
// needs the list to populate its picker. Mutations are admin-only.
func ListCategories(c *fiber.Ctx) error {
	if cached, err := config.RedisClient.Get(config.Ctx, categoryCacheKey).Result(); err == nil {
		categories := []models.Category{}
		if err = json.Unmarshal([]byte(cached), &categories); err == nil {
			return c.JSON(categories)
		}
	}

	rows, err := config.DB.Query("SELECT id, name FROM categories ORDER BY id")
	if err != nil {
		logger.ErrorLogger.Error("Error fetching categories", zap.Error(err))
		return c.Status(500).JSON(fiber.Map{"message": "Error fetching categories"})
	}
	defer rows.Close()

	categories := []models.Category{}
	for rows.Next() {
		var category models.Category
		if err := rows.Scan(&category.ID, &category.Name); err != nil {
			logger.ErrorLogger.Error("Error scanning categories", zap.Error(err))
			return c.Status(500).JSON(fiber.Map{"message": "Error scanning categories"})
		}
		categories = append(categories, category)
	}
	if err = rows.Err(); err != nil {
		logger.ErrorLogger.Error("Error iterating over categories", zap.Error(err))
		return c.Status(500).JSON(fiber.Map{"message": "Error fetching categories"})
	}

	if jsonData, err := json.Marshal(categories); err == nil {
		if err = config.RedisClient.Set(config.Ctx, categoryCacheKey, jsonData, time.Hour).Err(); err != nil {
			logger.ErrorLogger.Error("Error caching categories", zap.Error(err))
		}
	}

	return c.JSON(categories)
}

func CreateCategory(c *fiber.Ctx) error {
	type CategoryRequest struct {
		Name string `json:"name" validate:"required"`
	}

	var req CategoryRequest
	if err := c.BodyParser(&req); err != nil {
		logger.ErrorLogger.Error("Bad request in create category", zap.Error(err))
		return c.Status(400).JSON(fiber.Map{"message": "Bad request"})
	}
	if err := config.Validate.Struct(req); err != nil {
		return c.Status(400).JSON(fiber.Map{
			"message": "Validation error",
			"errors":  err.Error(),
		})
	}

	var category models.Category
	err := config.DB.QueryRow(
		"INSERT INTO categories (name) VALUES ($1) RETURNING id, name",
		req.Name).Scan(&category.ID, &category.Name)
	if err != nil {
		logger.ErrorLogger.Error("Error creating category", zap.Error(err))
		return c.Status(500).JSON(fiber.Map{"message": "Error creating category"})
	}

	invalidateCategoryCache()

	logger.AuditLogger.Info("Category created", zap.Int("category_id", category.ID))
	return c.Status(201).JSON(fiber.Map{"category": category})
}

func UpdateCategory(c *fiber.Ctx) error {
	categoryID, err := c.ParamsInt("id")
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"message": "Invalid category ID"})
	}

	type CategoryRequest struct {
		Name string `json:"name" validate:"required"`
	}

	var req CategoryRequest
	if err := c.BodyParser(&req); err != nil {
		logger.ErrorLogger.Error("Bad request in update category", zap.Error(err))
		return c.Status(400).JSON(fiber.Map{"message": "Bad request"})
	}
	if err := config.Validate.Struct(req); err != nil {
		return c.Status(400).JSON(fiber.Map{
			"message": "Validation error",
			"errors":  err.Error(),
		})
	}

	var category models.Category
	err = config.DB.QueryRow(
		"UPDATE categories SET name = $1 WHERE id = $2 RETURNING id, name",
		req.Name, categoryID).Scan(&category.ID, &category.Name)
	if err != nil {
		return c.Status(404).JSON(fiber.Map{"message": "Category not found"})
	}

	invalidateCategoryCache()
	invalidateAllTaskCaches()

	logger.AuditLogger.Info("Category updated", zap.Int("category_id", categoryID))
	return c.JSON(category)
}

// DeleteCategory removes a category; tasks that referenced it keep
// existing with a null categoryId (the store sets the reference null).
func DeleteCategory(c *fiber.Ctx) error {
	categoryID, err := c.ParamsInt("id")
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"message": "Invalid category ID"})
	}

	result, err := config.DB.Exec("DELETE FROM categories WHERE id = $1", categoryID)
	if err != nil {
		logger.ErrorLogger.Error("Error deleting category", zap.Error(err))
		return c.Status(500).JSON(fiber.Map{"message": "Error deleting category"})
	}
	affected, err := result.RowsAffected()
	if err != nil {
		logger.ErrorLogger.Error("Error deleting category", zap.Error(err))
		return c.Status(500).JSON(fiber.Map{"message": "Error deleting category"})
	}
	if affected == 0 {
		return c.Status(404).JSON(fiber.Map{"message": "Category not found"})
	}

	invalidateCategoryCache()
	invalidateAllTaskCaches()

	logger.AuditLogger.Info("Category deleted", zap.Int("category_id", categoryID))
	return c.SendStatus(204)
}
