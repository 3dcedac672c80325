package utils

import (
	"net/http"

	"github.com/gofiber/fiber/v2"
)

type ErrorResponse struct {
	Success bool        `json:"success"`
	Error   string      `json:"error"`
	Message string      `json:"message,omitempty"`
	Details interface{} `json:"details,omitempty"`
}

// Error writes a JSON error response; details carries structured context
// such as the unmet prerequisite behind a locked selection.
func Error(c *fiber.Ctx, status int, message string, details ...interface{}) error {
	response := ErrorResponse{
		Success: false,
		Error:   http.StatusText(status),
		Message: message,
	}
	if len(details) > 0 {
		response.Details = details[0]
	}
	return c.Status(status).JSON(response)
}

// ValidationError writes a 422 with per-field failures.
func ValidationError(c *fiber.Ctx, errors map[string]string) error {
	return c.Status(fiber.StatusUnprocessableEntity).JSON(ErrorResponse{
		Success: false,
		Error:   "Validation Error",
		Details: errors,
	})
}
