package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/karanbsk/useradmin/internal/dto"
	"github.com/karanbsk/useradmin/internal/services"
)

type AuthHandler struct {
	auth *services.AuthService
}

func NewAuthHandler(auth *services.AuthService) *AuthHandler {
	return &AuthHandler{auth: auth}
}

// Login verifies credentials and returns a signed access token. The response
// carries force_password_change so clients can route the user to the reset
// form before anything else.
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req dto.LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "Invalid request body",
		})
	}

	token, user, err := h.auth.Login(c.Context(), req.Username, req.Password)
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(dto.LoginResponse{
		Token:               token,
		User:                dto.NewUserResponse(user),
		ForcePasswordChange: user.ForcePasswordChange,
	})
}
