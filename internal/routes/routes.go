package routes

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"gorm.io/gorm"

	"github.com/karanbsk/useradmin/internal/config"
	"github.com/karanbsk/useradmin/internal/handlers"
	"github.com/karanbsk/useradmin/internal/middleware"
)

func Setup(
	app *fiber.App,
	cfg *config.Config,
	db *gorm.DB,
	userHandler *handlers.UserHandler,
	authHandler *handlers.AuthHandler,
	healthHandler *handlers.HealthHandler,
	adminHandler *handlers.AdminHandler,
	uiHandler *handlers.UIHandler,
) {
	// Server-rendered pages
	app.Get("/", uiHandler.Index)
	app.Get("/ui", uiHandler.Users)
	app.Get("/dashboard", uiHandler.Dashboard)

	api := app.Group("/api")

	// General API rate limiter: 60 req/min per IP
	api.Use(limiter.New(limiter.Config{
		Max:               60,
		Expiration:        1 * time.Minute,
		LimiterMiddleware: limiter.SlidingWindow{},
		KeyGenerator:      func(c *fiber.Ctx) string { return c.IP() },
	}))

	api.Get("/health", healthHandler.Check)

	// Login gets a stricter limit: 10 req/min per IP
	auth := api.Group("/auth")
	auth.Use(limiter.New(limiter.Config{
		Max:               10,
		Expiration:        1 * time.Minute,
		LimiterMiddleware: limiter.SlidingWindow{},
		KeyGenerator:      func(c *fiber.Ctx) string { return c.IP() },
	}))
	auth.Post("/login", authHandler.Login)

	// Account CRUD. Form posts from the UI land on the same handlers.
	users := api.Group("/users")
	users.Get("", userHandler.List)
	users.Post("", userHandler.Create)
	users.Post("/reset_password", userHandler.ResetPassword)
	users.Post("/delete", userHandler.DeleteByUsername)
	users.Get("/:id<int>", userHandler.Get)
	users.Patch("/:id<int>", userHandler.Update)
	users.Post("/:id<int>/reset_password", userHandler.ResetPassword)
	users.Delete("/:id<int>", userHandler.Delete)

	// Admin surface: root only
	admin := api.Group("/admin", middleware.JWTProtected(cfg), middleware.RootRequired(db))
	admin.Get("/logs", adminHandler.Logs)
}
