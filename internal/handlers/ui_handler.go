package handlers

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/karanbsk/useradmin/internal/config"
	"github.com/karanbsk/useradmin/internal/database"
	"github.com/karanbsk/useradmin/internal/dto"
	"github.com/karanbsk/useradmin/internal/services"
)

// UIHandler serves the server-rendered pages. Form submissions from these
// pages post to the API handlers, which branch on content negotiation.
type UIHandler struct {
	db    *gorm.DB
	users *services.UserService
	cfg   *config.Config
}

func NewUIHandler(db *gorm.DB, users *services.UserService, cfg *config.Config) *UIHandler {
	return &UIHandler{db: db, users: users, cfg: cfg}
}

func (h *UIHandler) Index(c *fiber.Ctx) error {
	return c.Render("index", fiber.Map{
		"Title":   "User Administration",
		"Message": "Manage accounts from the users page.",
	})
}

func (h *UIHandler) Users(c *fiber.Ctx) error {
	users, err := h.users.List(c.Context())
	if err != nil {
		return c.Status(errorStatus(err)).Render("ui", fiber.Map{
			"Title":        "Users",
			"ErrorMessage": errorMessage(err),
		})
	}
	return c.Render("ui", fiber.Map{
		"Title": "Users",
		"Users": dto.NewUserListResponse(users),
	})
}

func (h *UIHandler) Dashboard(c *fiber.Ctx) error {
	dbStatus := "Up"
	if err := database.Ping(h.db); err != nil {
		dbStatus = "Down"
	}

	return c.Render("dashboard", fiber.Map{
		"Title":      "Dashboard",
		"Env":        h.cfg.Env,
		"ServerTime": time.Now().UTC().Format("2006-01-02 15:04:05"),
		"Hostname":   hostname(),
		"DBStatus":   dbStatus,
	})
}
