package handlers

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/flexilance/flexilance-api/internal/models"
)

type CategoryHandler struct {
	DB *gorm.DB
}

func NewCategoryHandler(db *gorm.DB) *CategoryHandler {
	return &CategoryHandler{DB: db}
}

func (h *CategoryHandler) GetCategories(c *fiber.Ctx) error {
	var categories []models.JobCategory
	if err := h.DB.Order("name ASC").Find(&categories).Error; err != nil {
		return fail(c, 500, "Failed to fetch categories")
	}

	return c.JSON(fiber.Map{"success": true, "data": categories})
}
