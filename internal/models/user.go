package models

import (
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/karanbsk/useradmin/internal/validation"
)

// User is the single persisted account entity. Username and email carry DB
// unique indexes; application-level pre-checks only exist for friendly errors.
type User struct {
	ID                  uint      `gorm:"primaryKey" json:"id"`
	Username            string    `gorm:"size:80;not null;uniqueIndex" json:"username"`
	Email               string    `gorm:"size:120;not null;uniqueIndex" json:"email"`
	PasswordHash        string    `gorm:"size:255;not null" json:"-"`
	IsRoot              bool      `gorm:"not null;default:false" json:"is_root"`
	ForcePasswordChange bool      `gorm:"not null;default:false" json:"force_password_change"`
	CreatedAt           time.Time `json:"created_at"`
	UpdatedAt           time.Time `json:"updated_at"`
}

// NewUser builds an unsaved user, lowercasing the email and hashing the
// password through the validated path.
func NewUser(username, email, password string) (*User, error) {
	u := &User{
		Username: username,
		Email:    strings.ToLower(email),
	}
	if err := u.SetPassword(password); err != nil {
		return nil, err
	}
	return u, nil
}

// SetPassword validates the complexity policy and stores a bcrypt hash.
// The plaintext is never retained; there is no getter.
func (u *User) SetPassword(password string) error {
	if err := validation.Password(password); err != nil {
		return err
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	u.PasswordHash = string(hash)
	return nil
}

// CheckPassword reports whether the candidate matches the stored hash.
func (u *User) CheckPassword(password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)) == nil
}
