package database

import (
	"fmt"
	"log/slog"

	"gorm.io/gorm"

	"github.com/karanbsk/useradmin/internal/config"
	"github.com/karanbsk/useradmin/internal/models"
)

// SeedRoot inserts the protected root account if no root row exists yet. The
// seeded account carries force_password_change so the initial password cannot
// survive the first login.
func SeedRoot(db *gorm.DB, cfg *config.Config) error {
	var count int64
	if err := db.Model(&models.User{}).Where("is_root = ?", true).Count(&count).Error; err != nil {
		return fmt.Errorf("count root users: %w", err)
	}
	if count > 0 {
		return nil
	}

	if cfg.RootInitialPassword == "" {
		return fmt.Errorf("no root user exists and ROOT_INITIAL_PASSWORD is not set")
	}

	root, err := models.NewUser(cfg.RootUsername, cfg.RootEmail, cfg.RootInitialPassword)
	if err != nil {
		return fmt.Errorf("build root user: %w", err)
	}
	root.IsRoot = true
	root.ForcePasswordChange = true

	if err := db.Create(root).Error; err != nil {
		return fmt.Errorf("seed root user: %w", err)
	}

	slog.Info("root user seeded", "username", root.Username)
	return nil
}
