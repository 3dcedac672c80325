package middleware

import (
	"project/backend/config"
	"project/backend/models"
	"project/backend/utils"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

func AuthMiddleware(cfg *config.Config) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, err := utils.ExtractUserIDFromToken(c, cfg)
		if err != nil {
			return utils.Error(c, fiber.StatusUnauthorized, "Unauthorized")
		}
		c.Locals("user_id", userID)
		return c.Next()
	}
}

func AdminMiddleware(db *gorm.DB, cfg *config.Config) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, err := utils.ExtractUserIDFromToken(c, cfg)
		if err != nil {
			return utils.Error(c, fiber.StatusUnauthorized, "Unauthorized")
		}

		var user models.User
		if err := db.First(&user, userID).Error; err != nil || user.Role != "admin" {
			return utils.Error(c, fiber.StatusForbidden, "Admin access required")
		}
		return c.Next()
	}
}
