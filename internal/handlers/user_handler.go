package handlers

import (
	"log/slog"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/gofiber/fiber/v2"

	"github.com/karanbsk/useradmin/internal/dto"
	"github.com/karanbsk/useradmin/internal/services"
	"github.com/karanbsk/useradmin/internal/validation"
)

type UserHandler struct {
	users *services.UserService
}

func NewUserHandler(users *services.UserService) *UserHandler {
	return &UserHandler{users: users}
}

// List returns all users ordered by username, public fields only.
func (h *UserHandler) List(c *fiber.Ctx) error {
	users, err := h.users.List(c.Context())
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(dto.NewUserListResponse(users))
}

// Get returns a single user by id.
func (h *UserHandler) Get(c *fiber.Ctx) error {
	id, err := strconv.ParseUint(c.Params("id"), 10, 64)
	if err != nil {
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{
			Error: true, Message: "User not found.",
		})
	}

	user, svcErr := h.users.GetByID(c.Context(), uint(id))
	if svcErr != nil {
		return respondError(c, svcErr)
	}
	return c.JSON(dto.NewUserResponse(user))
}

// Create handles both the JSON API and the UI create form. Input shape is
// checked here with itemized messages; the password policy and uniqueness
// checks live in the service.
func (h *UserHandler) Create(c *fiber.Ctx) error {
	var req dto.CreateUserRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "Invalid request body",
		})
	}

	username := strings.TrimSpace(req.Username)
	email := strings.TrimSpace(req.Email)

	// Boundary filter: SQL control tokens never reach the service, even
	// though persistence is parameterized anyway.
	if username != "" && validation.SuspiciousUsername(username) {
		slog.Warn("suspicious username rejected", "path", c.Path())
		return h.createFailure(c, username, email, fiber.StatusUnprocessableEntity, []string{"Invalid username."})
	}

	var errs []string
	if username == "" {
		errs = append(errs, "Username is required.")
	} else if err := validation.Username(username); err != nil {
		errs = append(errs, errorMessage(err))
	}
	if err := validation.Email(email); err != nil {
		errs = append(errs, errorMessage(err))
	}
	if utf8.RuneCountInString(req.Password) < 8 {
		errs = append(errs, "Password too short (min 8).")
	}
	if req.Password != req.ConfirmPassword {
		errs = append(errs, "Passwords do not match.")
	}
	if len(errs) > 0 {
		return h.createFailure(c, username, email, fiber.StatusUnprocessableEntity, errs)
	}

	user, err := h.users.Create(c.Context(), username, email, req.Password)
	if err != nil {
		return h.createFailure(c, username, email, errorStatus(err), []string{errorMessage(err)})
	}

	if wantsHTML(c) {
		return c.Redirect("/ui", fiber.StatusSeeOther)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.NewUserResponse(user))
}

// createFailure renders the UI page with the inline error for form posts, or
// the itemized JSON body for API clients.
func (h *UserHandler) createFailure(c *fiber.Ctx, username, email string, status int, errs []string) error {
	if wantsHTML(c) {
		users, listErr := h.users.List(c.Context())
		if listErr != nil {
			users = nil
		}
		return c.Status(status).Render("ui", fiber.Map{
			"Title":        "Users",
			"Users":        dto.NewUserListResponse(users),
			"ErrorMessage": strings.Join(errs, " "),
			"FormUsername": username,
			"FormEmail":    email,
			"OpenModal":    "create",
		})
	}
	if status == fiber.StatusUnprocessableEntity {
		return c.Status(status).JSON(dto.ValidationErrorResponse{Error: true, Errors: errs})
	}
	return c.Status(status).JSON(dto.ErrorResponse{Error: true, Message: strings.Join(errs, " ")})
}

// Update applies the mutable-field whitelist (email, password). Username is
// immutable and silently absent from the accepted fields.
func (h *UserHandler) Update(c *fiber.Ctx) error {
	id, err := strconv.ParseUint(c.Params("id"), 10, 64)
	if err != nil {
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{
			Error: true, Message: "User not found.",
		})
	}

	var req dto.UpdateUserRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "Invalid request body",
		})
	}

	if req.Password != nil {
		confirm := ""
		if req.ConfirmPassword != nil {
			confirm = *req.ConfirmPassword
		}
		if *req.Password != confirm {
			return c.Status(fiber.StatusUnprocessableEntity).JSON(dto.ValidationErrorResponse{
				Error: true, Errors: []string{"Passwords do not match."},
			})
		}
	}

	user, svcErr := h.users.UpdateProfile(c.Context(), uint(id), req.Email, req.Password)
	if svcErr != nil {
		return respondError(c, svcErr)
	}

	if wantsHTML(c) {
		return c.Redirect("/ui", fiber.StatusSeeOther)
	}
	return c.JSON(dto.NewUserResponse(user))
}

// ResetPassword accepts either the id from the path or a username in the
// body (the older API shape).
func (h *UserHandler) ResetPassword(c *fiber.Ctx) error {
	var req dto.ResetPasswordRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "Invalid request body",
		})
	}

	idParam := c.Params("id")
	username := strings.TrimSpace(req.Username)
	var errs []string
	if idParam == "" && username == "" {
		errs = append(errs, "Username is required.")
	}
	if req.NewPassword != req.ConfirmPassword {
		errs = append(errs, "Passwords do not match.")
	}
	if len(errs) > 0 {
		if wantsHTML(c) {
			users, _ := h.users.List(c.Context())
			return c.Status(fiber.StatusUnprocessableEntity).Render("ui", fiber.Map{
				"Title":        "Users",
				"Users":        dto.NewUserListResponse(users),
				"ErrorMessage": strings.Join(errs, " "),
			})
		}
		return c.Status(fiber.StatusUnprocessableEntity).JSON(dto.ValidationErrorResponse{
			Error: true, Errors: errs,
		})
	}

	var resetErr error
	if idParam != "" {
		id, convErr := strconv.ParseUint(idParam, 10, 64)
		if convErr != nil {
			return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{
				Error: true, Message: "User not found.",
			})
		}
		_, resetErr = h.users.ResetPasswordByID(c.Context(), uint(id), req.NewPassword)
	} else {
		_, resetErr = h.users.ResetPasswordByUsername(c.Context(), username, req.NewPassword)
	}
	if resetErr != nil {
		if wantsHTML(c) {
			users, _ := h.users.List(c.Context())
			return c.Status(errorStatus(resetErr)).Render("ui", fiber.Map{
				"Title":        "Users",
				"Users":        dto.NewUserListResponse(users),
				"ErrorMessage": errorMessage(resetErr),
			})
		}
		return respondError(c, resetErr)
	}
	if wantsHTML(c) {
		return c.Redirect("/ui", fiber.StatusSeeOther)
	}
	return c.JSON(dto.MessageResponse{Message: "Password reset successful"})
}

// Delete removes a user by path id.
func (h *UserHandler) Delete(c *fiber.Ctx) error {
	id, err := strconv.ParseUint(c.Params("id"), 10, 64)
	if err != nil {
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{
			Error: true, Message: "User not found.",
		})
	}
	if err := h.users.DeleteByID(c.Context(), uint(id)); err != nil {
		return respondError(c, err)
	}
	if wantsHTML(c) {
		return c.Redirect("/ui", fiber.StatusSeeOther)
	}
	return c.JSON(dto.MessageResponse{Message: "User deleted successfully"})
}

// DeleteByUsername is the legacy POST shape taking a username in the body.
func (h *UserHandler) DeleteByUsername(c *fiber.Ctx) error {
	var req dto.DeleteUserRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "Invalid request body",
		})
	}

	username := strings.TrimSpace(req.Username)
	if username == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "username is required",
		})
	}

	if err := h.users.DeleteByUsername(c.Context(), username); err != nil {
		return respondError(c, err)
	}
	if wantsHTML(c) {
		return c.Redirect("/ui", fiber.StatusSeeOther)
	}
	return c.JSON(dto.MessageResponse{Message: "User deleted successfully"})
}
