package handlers

import (
	"errors"
	"log/slog"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/karanbsk/useradmin/internal/apperror"
	"github.com/karanbsk/useradmin/internal/dto"
)

// wantsHTML is the single content-negotiation policy for the account
// endpoints: browser form posts and clients preferring text/html get HTML,
// everything else gets JSON. JSON is the default when the request expresses
// no preference.
func wantsHTML(c *fiber.Ctx) bool {
	ct := c.Get(fiber.HeaderContentType)
	if strings.HasPrefix(ct, fiber.MIMEApplicationForm) || strings.HasPrefix(ct, fiber.MIMEMultipartForm) {
		return true
	}
	if strings.HasPrefix(ct, fiber.MIMEApplicationJSON) {
		return false
	}
	return c.Accepts(fiber.MIMEApplicationJSON, fiber.MIMETextHTML) == fiber.MIMETextHTML
}

// respondError maps an application error to its status code and JSON body.
// Unrecognized errors are logged with full context and surface as a generic
// 500.
func respondError(c *fiber.Ctx, err error) error {
	var appErr *apperror.Error
	if errors.As(err, &appErr) {
		if appErr.Kind == apperror.Internal {
			slog.Error("internal error", "method", c.Method(), "path", c.Path(), "error", err.Error())
			return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
				Error: true, Message: "Internal server error",
			})
		}
		if appErr.Kind == apperror.Validation {
			return c.Status(appErr.StatusCode()).JSON(dto.ValidationErrorResponse{
				Error: true, Errors: []string{appErr.Message},
			})
		}
		return c.Status(appErr.StatusCode()).JSON(dto.ErrorResponse{
			Error: true, Message: appErr.Message,
		})
	}

	slog.Error("unhandled error", "method", c.Method(), "path", c.Path(), "error", err.Error())
	return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
		Error: true, Message: "Internal server error",
	})
}

// errorStatus returns the HTTP status an error maps to, for the HTML branch
// where the body is a rendered page rather than a JSON document.
func errorStatus(err error) int {
	var appErr *apperror.Error
	if errors.As(err, &appErr) {
		return appErr.StatusCode()
	}
	return fiber.StatusInternalServerError
}

// errorMessage returns the client-safe message for an error.
func errorMessage(err error) string {
	var appErr *apperror.Error
	if errors.As(err, &appErr) && appErr.Kind != apperror.Internal {
		return appErr.Message
	}
	return "Internal server error"
}
