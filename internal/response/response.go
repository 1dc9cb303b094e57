// Package response writes the JSON envelope shared by every API endpoint.
package response

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"alfredoptarigan/ats-backend/internal/models"
)

const (
	CodeValidation = "VALIDATION_ERROR"
	CodeInternal   = "INTERNAL_ERROR"
)

type ErrorDetail struct {
	Field   *string `json:"field"`
	Message string  `json:"message"`
	Code    *string `json:"code"`
}

type Meta struct {
	Timestamp  string             `json:"timestamp"`
	RequestID  string             `json:"requestId"`
	Pagination *models.Pagination `json:"pagination,omitempty"`
}

type Envelope struct {
	Success bool          `json:"success"`
	Message string        `json:"message"`
	Data    interface{}   `json:"data"`
	Meta    Meta          `json:"meta"`
	Errors  []ErrorDetail `json:"errors"`
}

func Success(c *fiber.Ctx, status int, message string, data interface{}) error {
	return c.Status(status).JSON(Envelope{
		Success: true,
		Message: message,
		Data:    data,
		Meta:    newMeta(c, nil),
	})
}

func Paginated(c *fiber.Ctx, message string, data interface{}, pagination models.Pagination) error {
	return c.Status(fiber.StatusOK).JSON(Envelope{
		Success: true,
		Message: message,
		Data:    data,
		Meta:    newMeta(c, &pagination),
	})
}

// Fail writes an error envelope with a single detail entry carrying code.
func Fail(c *fiber.Ctx, status int, message, code string) error {
	detail := ErrorDetail{Message: message}
	if code != "" {
		detail.Code = &code
	}
	return FailWith(c, status, message, []ErrorDetail{detail})
}

func FailWith(c *fiber.Ctx, status int, message string, errors []ErrorDetail) error {
	return c.Status(status).JSON(Envelope{
		Success: false,
		Message: message,
		Meta:    newMeta(c, nil),
		Errors:  errors,
	})
}

// FieldError builds a validation detail for one request field.
func FieldError(field, message string) ErrorDetail {
	code := CodeValidation
	return ErrorDetail{Field: &field, Message: message, Code: &code}
}

func newMeta(c *fiber.Ctx, pagination *models.Pagination) Meta {
	return Meta{
		Timestamp:  time.Now().UTC().Format(time.RFC3339Nano),
		RequestID:  RequestID(c),
		Pagination: pagination,
	}
}

// RequestID returns the ID assigned by the requestid middleware.
func RequestID(c *fiber.Ctx) string {
	if id, ok := c.Locals("requestid").(string); ok && id != "" {
		return id
	}
	if id := c.Get(fiber.HeaderXRequestID); id != "" {
		return id
	}
	return "unknown"
}
