package response

import (
	"errors"

	"github.com/modelscout/modelscout/internal/models"

	"github.com/gofiber/fiber/v2"
)

// BaseService provides the HTTP response utilities shared by the handlers.
type BaseService struct{}

// NewBaseService creates a new base response service
func NewBaseService() *BaseService {
	return &BaseService{}
}

// ErrorResponse is the wire shape of every error this API returns.
type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitzero"`
}

// Error sends an error response with the given status and message.
func (s *BaseService) Error(c *fiber.Ctx, status int, message, details string) error {
	return c.Status(status).JSON(ErrorResponse{
		Error:   message,
		Details: details,
	})
}

// AppError maps a pipeline error onto the wire shape, using the taxonomy's
// status code when the error is an AppError and 500 otherwise.
func (s *BaseService) AppError(c *fiber.Ctx, err error) error {
	var appErr *models.AppError
	if errors.As(err, &appErr) {
		details := ""
		if appErr.Cause != nil {
			details = appErr.Cause.Error()
		}
		return s.Error(c, appErr.GetStatusCode(), appErr.Message, details)
	}
	return s.Error(c, fiber.StatusInternalServerError, "internal server error", err.Error())
}

// Success sends a 200 OK response with the provided data
func (s *BaseService) Success(c *fiber.Ctx, data any) error {
	return c.JSON(data)
}
