package database

import (
	"fmt"

	"gorm.io/gorm"

	"github.com/karanbsk/useradmin/internal/models"
)

// rootGuardSQL installs a BEFORE DELETE trigger so the root row is protected
// at the storage layer too, not only by the service guard. Any deletion path
// that bypasses the service (bulk delete, psql) hits the same wall.
const rootGuardSQL = `
CREATE OR REPLACE FUNCTION users_protect_root() RETURNS trigger AS $$
BEGIN
    IF OLD.is_root THEN
        RAISE EXCEPTION 'root user cannot be deleted';
    END IF;
    RETURN OLD;
END;
$$ LANGUAGE plpgsql;

DROP TRIGGER IF EXISTS users_protect_root ON users;
CREATE TRIGGER users_protect_root
    BEFORE DELETE ON users
    FOR EACH ROW EXECUTE FUNCTION users_protect_root();
`

// Migrate runs AutoMigrate for all models and installs the root-deletion
// guard trigger.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&models.User{},
		&models.SystemLog{},
	); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}

	if err := db.Exec(rootGuardSQL).Error; err != nil {
		return fmt.Errorf("install root guard trigger: %w", err)
	}
	return nil
}
