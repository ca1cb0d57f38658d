package dto

import (
	"time"

	"github.com/karanbsk/useradmin/internal/models"
)

type CreateUserRequest struct {
	Username        string `json:"username" form:"username"`
	Email           string `json:"email" form:"email"`
	Password        string `json:"password" form:"password"`
	ConfirmPassword string `json:"confirm_password" form:"confirm_password"`
}

type UpdateUserRequest struct {
	Email           *string `json:"email" form:"email"`
	Password        *string `json:"password" form:"password"`
	ConfirmPassword *string `json:"confirm_password" form:"confirm_password"`
}

type ResetPasswordRequest struct {
	Username        string `json:"username" form:"username"`
	NewPassword     string `json:"new_password" form:"new_password"`
	ConfirmPassword string `json:"confirm_password" form:"confirm_password"`
}

type DeleteUserRequest struct {
	Username string `json:"username" form:"username"`
}

// UserResponse is the public projection of a user. The password hash never
// leaves the service.
type UserResponse struct {
	ID        uint      `json:"id"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	IsRoot    bool      `json:"is_root"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func NewUserResponse(u *models.User) UserResponse {
	return UserResponse{
		ID:        u.ID,
		Username:  u.Username,
		Email:     u.Email,
		IsRoot:    u.IsRoot,
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
}

func NewUserListResponse(users []models.User) []UserResponse {
	out := make([]UserResponse, 0, len(users))
	for i := range users {
		out = append(out, NewUserResponse(&users[i]))
	}
	return out
}

type ErrorResponse struct {
	Error   bool   `json:"error"`
	Message string `json:"message"`
}

// ValidationErrorResponse carries the itemized messages for a 422.
type ValidationErrorResponse struct {
	Error  bool     `json:"error"`
	Errors []string `json:"errors"`
}

type MessageResponse struct {
	Message string `json:"message"`
}

type HealthResponse struct {
	Status      string `json:"status"`
	Timestamp   string `json:"timestamp"`
	DB          string `json:"db"`
	DBLatencyMs *int64 `json:"db_latency_ms,omitempty"`
	UserCount   *int64 `json:"user_count,omitempty"`
	Hostname    string `json:"hostname"`
	Env         string `json:"env"`
}
