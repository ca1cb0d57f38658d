package middleware

import (
	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"gorm.io/gorm"

	"github.com/karanbsk/useradmin/internal/dto"
	"github.com/karanbsk/useradmin/internal/models"
)

// RootRequired allows only the protected root account through. The token
// claim is checked first; the DB row is the authority when the claim is
// missing or stale.
func RootRequired(db *gorm.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		token, ok := c.Locals("user").(*jwt.Token)
		if !ok || token == nil {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
				Error: true, Message: "Unauthorized",
			})
		}

		claims, ok := token.Claims.(jwt.MapClaims)
		if !ok {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
				Error: true, Message: "Invalid claims",
			})
		}

		if isRoot, _ := claims["is_root"].(bool); isRoot {
			if sub, ok := claims["sub"].(float64); ok {
				var user models.User
				if err := db.First(&user, uint(sub)).Error; err == nil && user.IsRoot {
					return c.Next()
				}
			}
		}

		return c.Status(fiber.StatusForbidden).JSON(dto.ErrorResponse{
			Error: true, Message: "Root access required",
		})
	}
}
