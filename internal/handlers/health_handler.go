package handlers

import (
	"log/slog"
	"os"
	"time"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/karanbsk/useradmin/internal/config"
	"github.com/karanbsk/useradmin/internal/database"
	"github.com/karanbsk/useradmin/internal/dto"
	"github.com/karanbsk/useradmin/internal/services"
)

type HealthHandler struct {
	db    *gorm.DB
	users *services.UserService
	cfg   *config.Config
}

func NewHealthHandler(db *gorm.DB, users *services.UserService, cfg *config.Config) *HealthHandler {
	return &HealthHandler{db: db, users: users, cfg: cfg}
}

// Check reports process and storage status. It is read-only and always
// answers 200: an unreachable database degrades the payload to "down"
// instead of failing the request.
func (h *HealthHandler) Check(c *fiber.Ctx) error {
	resp := dto.HealthResponse{
		Status:    "ok",
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		DB:        "up",
		Hostname:  hostname(),
		Env:       h.cfg.Env,
	}

	start := time.Now()
	if err := database.Ping(h.db); err != nil {
		slog.Error("health check db ping failed", "error", err)
		resp.Status = "degraded"
		resp.DB = "down"
		return c.JSON(resp)
	}
	latency := time.Since(start).Milliseconds()
	resp.DBLatencyMs = &latency

	if count, err := h.users.Count(c.Context()); err == nil {
		resp.UserCount = &count
	}
	return c.JSON(resp)
}

func hostname() string {
	if h := os.Getenv("APP_HOSTNAME"); h != "" {
		return h
	}
	h, err := os.Hostname()
	if err != nil {
		return "unknown"
	}
	return h
}
