package services

import (
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"

	"github.com/karanbsk/useradmin/internal/apperror"
	"github.com/karanbsk/useradmin/internal/models"
	"github.com/karanbsk/useradmin/internal/validation"
)

// UserService owns the account lifecycle: create, list, reset password,
// profile updates and deletion. Every mutation runs in a single transaction;
// uniqueness ultimately rests on the DB unique indexes, the pre-checks only
// produce friendlier errors than a raw constraint violation.
type UserService struct {
	db *gorm.DB
}

func NewUserService(db *gorm.DB) *UserService {
	return &UserService{db: db}
}

// Create validates shape and policy, hashes the password and inserts the row.
// Duplicate username or email yields a Conflict error, whether caught by the
// pre-check or by the unique index on a concurrent insert.
func (s *UserService) Create(ctx context.Context, username, email, password string) (*models.User, error) {
	if err := validation.Username(username); err != nil {
		return nil, err
	}
	if err := validation.Email(email); err != nil {
		return nil, err
	}

	user, err := models.NewUser(username, email, password)
	if err != nil {
		return nil, err
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&models.User{}).
			Where("username = ? OR email = ?", user.Username, user.Email).
			Count(&count).Error; err != nil {
			return apperror.Wrap(apperror.Internal, "failed to check existing users", err)
		}
		if count > 0 {
			return apperror.NewConflict("Username or email already exists.")
		}
		if err := tx.Create(user).Error; err != nil {
			return translateWriteError(err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return user, nil
}

// List returns all users ordered by username ascending.
func (s *UserService) List(ctx context.Context) ([]models.User, error) {
	var users []models.User
	if err := s.db.WithContext(ctx).Order("username asc").Find(&users).Error; err != nil {
		return nil, apperror.Wrap(apperror.Internal, "failed to list users", err)
	}
	return users, nil
}

func (s *UserService) GetByID(ctx context.Context, id uint) (*models.User, error) {
	var user models.User
	if err := s.db.WithContext(ctx).First(&user, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.NewNotFound("User not found.")
		}
		return nil, apperror.Wrap(apperror.Internal, "failed to load user", err)
	}
	return &user, nil
}

func (s *UserService) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	var user models.User
	if err := s.db.WithContext(ctx).Where("username = ?", username).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.NewNotFound("User not found.")
		}
		return nil, apperror.Wrap(apperror.Internal, "failed to load user", err)
	}
	return &user, nil
}

// Count returns the total number of user rows. Used by the health endpoint.
func (s *UserService) Count(ctx context.Context) (int64, error) {
	var count int64
	if err := s.db.WithContext(ctx).Model(&models.User{}).Count(&count).Error; err != nil {
		return 0, apperror.Wrap(apperror.Internal, "failed to count users", err)
	}
	return count, nil
}

// ResetPasswordByID re-validates the policy, overwrites the hash and clears
// force_password_change for the user with the given id.
func (s *UserService) ResetPasswordByID(ctx context.Context, id uint, newPassword string) (*models.User, error) {
	return s.resetPassword(ctx, findUserByID(id), newPassword)
}

// ResetPasswordByUsername is the body-shaped variant taking a username. The
// caller decides which kind of identifier it holds; a digit-only username like
// "42" is still a username here, never an id.
func (s *UserService) ResetPasswordByUsername(ctx context.Context, username, newPassword string) (*models.User, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return nil, apperror.NewValidation("username is required")
	}
	return s.resetPassword(ctx, findUserByUsername(username), newPassword)
}

func (s *UserService) resetPassword(ctx context.Context, find userFinder, newPassword string) (*models.User, error) {
	if err := validation.Password(newPassword); err != nil {
		return nil, err
	}

	var user *models.User
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		found, err := find(tx)
		if err != nil {
			return err
		}
		if err := found.SetPassword(newPassword); err != nil {
			return err
		}
		found.ForcePasswordChange = false
		if err := tx.Model(found).Updates(map[string]interface{}{
			"password_hash":         found.PasswordHash,
			"force_password_change": false,
		}).Error; err != nil {
			return apperror.Wrap(apperror.Internal, "failed to reset password", err)
		}
		user = found
		return nil
	})
	if err != nil {
		return nil, err
	}
	return user, nil
}

// DeleteByID removes the user with the given id. The root row is refused here
// and, independently, by the users_protect_root trigger in the database.
func (s *UserService) DeleteByID(ctx context.Context, id uint) error {
	return s.delete(ctx, findUserByID(id))
}

// DeleteByUsername removes the user with the given username.
func (s *UserService) DeleteByUsername(ctx context.Context, username string) error {
	username = strings.TrimSpace(username)
	if username == "" {
		return apperror.NewValidation("username is required")
	}
	return s.delete(ctx, findUserByUsername(username))
}

func (s *UserService) delete(ctx context.Context, find userFinder) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		user, err := find(tx)
		if err != nil {
			return err
		}
		if user.IsRoot {
			return apperror.NewRootProtected("Root user cannot be deleted.")
		}
		if err := tx.Delete(user).Error; err != nil {
			return translateWriteError(err)
		}
		return nil
	})
}

// UpdateProfile applies the mutable field whitelist: email, and optionally a
// new password through the validated path. Username is immutable and not
// accepted here.
func (s *UserService) UpdateProfile(ctx context.Context, id uint, email, password *string) (*models.User, error) {
	if email == nil && password == nil {
		return nil, apperror.NewValidation("Nothing to update.")
	}

	var user *models.User
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var found models.User
		if err := tx.First(&found, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperror.NewNotFound("User not found.")
			}
			return apperror.Wrap(apperror.Internal, "failed to load user", err)
		}

		updates := map[string]interface{}{}
		if email != nil {
			normalized := strings.ToLower(strings.TrimSpace(*email))
			if err := validation.Email(normalized); err != nil {
				return err
			}
			var count int64
			if err := tx.Model(&models.User{}).
				Where("email = ? AND id <> ?", normalized, id).
				Count(&count).Error; err != nil {
				return apperror.Wrap(apperror.Internal, "failed to check existing users", err)
			}
			if count > 0 {
				return apperror.NewConflict("Username or email already exists.")
			}
			found.Email = normalized
			updates["email"] = normalized
		}
		if password != nil {
			if err := found.SetPassword(*password); err != nil {
				return err
			}
			updates["password_hash"] = found.PasswordHash
		}

		if err := tx.Model(&found).Updates(updates).Error; err != nil {
			return translateWriteError(err)
		}
		user = &found
		return nil
	})
	if err != nil {
		return nil, err
	}
	return user, nil
}

// userFinder loads one user row inside a transaction.
type userFinder func(tx *gorm.DB) (*models.User, error)

func findUserByID(id uint) userFinder {
	return func(tx *gorm.DB) (*models.User, error) {
		var user models.User
		return translateLookup(&user, tx.First(&user, id).Error)
	}
}

func findUserByUsername(username string) userFinder {
	return func(tx *gorm.DB) (*models.User, error) {
		var user models.User
		return translateLookup(&user, tx.Where("username = ?", username).First(&user).Error)
	}
}

func translateLookup(user *models.User, err error) (*models.User, error) {
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.NewNotFound("User not found.")
		}
		return nil, apperror.Wrap(apperror.Internal, "failed to load user", err)
	}
	return user, nil
}

// translateWriteError converts storage-level failures into application
// errors: unique index violations on a creation race become Conflict, the
// root guard trigger becomes RootProtected.
func translateWriteError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return apperror.Wrap(apperror.Conflict, "Username or email already exists.", err)
	}
	if strings.Contains(err.Error(), "root user cannot be deleted") {
		return apperror.Wrap(apperror.RootProtected, "Root user cannot be deleted.", err)
	}
	return apperror.Wrap(apperror.Internal, "database write failed", err)
}
