package handlers

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/karanbsk/useradmin/internal/dto"
	"github.com/karanbsk/useradmin/internal/models"
)

type AdminHandler struct {
	db *gorm.DB
}

func NewAdminHandler(db *gorm.DB) *AdminHandler {
	return &AdminHandler{db: db}
}

// Logs returns the most recent system log records, newest first. Optional
// ?level= filters by level name.
func (h *AdminHandler) Logs(c *fiber.Ctx) error {
	limit := c.QueryInt("limit", 100)
	if limit < 1 || limit > 500 {
		limit = 100
	}

	query := h.db.Model(&models.SystemLog{}).Order("timestamp desc").Limit(limit)
	if level := c.Query("level"); level != "" {
		query = query.Where("level = ?", level)
	}

	var logs []models.SystemLog
	if err := query.Find(&logs).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Error: true, Message: "Internal server error",
		})
	}
	return c.JSON(logs)
}
