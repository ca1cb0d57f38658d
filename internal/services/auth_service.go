package services

import (
	"context"
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"gorm.io/gorm"

	"github.com/karanbsk/useradmin/internal/apperror"
	"github.com/karanbsk/useradmin/internal/config"
	"github.com/karanbsk/useradmin/internal/models"
)

// AuthService verifies credentials and mints access tokens for the admin
// surface.
type AuthService struct {
	db  *gorm.DB
	cfg *config.Config
}

func NewAuthService(db *gorm.DB, cfg *config.Config) *AuthService {
	return &AuthService{db: db, cfg: cfg}
}

// Login checks the password against the stored hash and returns a signed
// HS256 token. A wrong username and a wrong password are indistinguishable to
// the caller.
func (s *AuthService) Login(ctx context.Context, username, password string) (string, *models.User, error) {
	var user models.User
	if err := s.db.WithContext(ctx).Where("username = ?", username).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", nil, apperror.NewUnauthorized("Invalid username or password.")
		}
		return "", nil, apperror.Wrap(apperror.Internal, "failed to load user", err)
	}

	if !user.CheckPassword(password) {
		return "", nil, apperror.NewUnauthorized("Invalid username or password.")
	}

	token, err := s.generateAccessToken(&user)
	if err != nil {
		return "", nil, apperror.Wrap(apperror.Internal, "failed to sign token", err)
	}
	return token, &user, nil
}

func (s *AuthService) generateAccessToken(user *models.User) (string, error) {
	claims := jwt.MapClaims{
		"sub":      user.ID,
		"username": user.Username,
		"is_root":  user.IsRoot,
		"iat":      time.Now().Unix(),
		"exp":      time.Now().Add(s.cfg.JWTAccessExpiry).Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.cfg.JWTSecret))
}
