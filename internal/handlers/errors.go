package handlers

import (
	"context"
	"errors"
	"log"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"alfredoptarigan/ats-backend/internal/analysis"
	"alfredoptarigan/ats-backend/internal/middleware"
	"alfredoptarigan/ats-backend/internal/repositories"
	"alfredoptarigan/ats-backend/internal/response"
	"alfredoptarigan/ats-backend/internal/services"
)

type errorMapping struct {
	target  error
	status  int
	message string
	code    string
}

// Known errors map to fixed client messages. Anything else is a 500 and
// only its detail goes to the log.
var errorMappings = []errorMapping{
	{services.ErrInvalidFileType, fiber.StatusBadRequest, "Invalid file type. Only PDF, DOC, DOCX, and TXT files are allowed.", "INVALID_FILE_TYPE"},
	{services.ErrFileTooLarge, fiber.StatusBadRequest, "", "FILE_TOO_LARGE"},
	{analysis.ErrAnalysisParse, fiber.StatusBadGateway, "Failed to analyze resume. Please try again.", "ANALYSIS_FAILED"},
	{services.ErrNoResumeText, fiber.StatusUnprocessableEntity, "Could not read text from this resume. Please upload a PDF, DOCX, or TXT file.", "UNREADABLE_RESUME"},
	{context.DeadlineExceeded, fiber.StatusGatewayTimeout, "Resume analysis timed out. Please try again.", "AI_TIMEOUT"},
	{repositories.ErrApplicantNotFound, fiber.StatusNotFound, "Applicant not found", "NOT_FOUND"},
	{repositories.ErrJobNotFound, fiber.StatusNotFound, "Job posting not found", "NOT_FOUND"},
	{repositories.ErrRecruiterNotFound, fiber.StatusNotFound, "Recruiter not found", "NOT_FOUND"},
	{services.ErrResumeNotFound, fiber.StatusNotFound, "Resume file not found", "NOT_FOUND"},
	{services.ErrJobForbidden, fiber.StatusForbidden, "You do not have permission to access this job", "FORBIDDEN"},
	{services.ErrJobNotActive, fiber.StatusBadRequest, "This job is not accepting applications", "JOB_NOT_ACTIVE"},
	{services.ErrEmailTaken, fiber.StatusConflict, "An account with this email already exists", "EMAIL_EXISTS"},
	{services.ErrInvalidCredentials, fiber.StatusUnauthorized, "Invalid email or password", "LOGIN_ERROR"},
	{services.ErrAccountInactive, fiber.StatusForbidden, "Account is inactive", "ACCOUNT_INACTIVE"},
	{services.ErrInvalidToken, fiber.StatusUnauthorized, "Invalid or expired token", "INVALID_TOKEN"},
	{services.ErrSearchDisabled, fiber.StatusServiceUnavailable, "Semantic search is not configured", "SEARCH_DISABLED"},
	{services.ErrEmptySearchQuery, fiber.StatusBadRequest, "Search query is required", "INVALID_QUERY"},
}

// apiError is a client error raised by a handler itself.
type apiError struct {
	status  int
	message string
	code    string
}

func (e *apiError) Error() string {
	return e.message
}

func newAPIError(status int, message, code string) error {
	return &apiError{status: status, message: message, code: code}
}

// ErrorHandler renders every error returned from a route as the response
// envelope. It is installed as the Fiber app's error handler.
func ErrorHandler(c *fiber.Ctx, err error) error {
	var validationErr *validationError
	if errors.As(err, &validationErr) {
		return response.FailWith(c, fiber.StatusUnprocessableEntity, "Validation failed", validationErr.details)
	}

	var apiErr *apiError
	if errors.As(err, &apiErr) {
		return response.Fail(c, apiErr.status, apiErr.message, apiErr.code)
	}

	var fiberErr *fiber.Error
	if errors.As(err, &fiberErr) {
		return response.Fail(c, fiberErr.Code, fiberErr.Message, fiberCode(fiberErr.Code))
	}

	for _, m := range errorMappings {
		if errors.Is(err, m.target) {
			message := m.message
			if message == "" {
				message = err.Error()
			}
			return response.Fail(c, m.status, message, m.code)
		}
	}

	log.Printf("❌ %s %s failed [%s]: %v\n", c.Method(), c.Path(), response.RequestID(c), err)
	return response.Fail(c, fiber.StatusInternalServerError, "An unexpected error occurred", response.CodeInternal)
}

func fiberCode(status int) string {
	switch status {
	case fiber.StatusNotFound:
		return "NOT_FOUND"
	case fiber.StatusMethodNotAllowed:
		return "METHOD_NOT_ALLOWED"
	case fiber.StatusRequestEntityTooLarge:
		return "FILE_TOO_LARGE"
	case fiber.StatusInternalServerError:
		return response.CodeInternal
	default:
		return "REQUEST_ERROR"
	}
}

func parseUUIDParam(c *fiber.Ctx, name string) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Params(name))
	if err != nil {
		return uuid.Nil, newAPIError(fiber.StatusBadRequest, "Invalid "+name+" format", "INVALID_ID")
	}
	return id, nil
}

// currentRecruiter reads the ID set by middleware.RequireAuth.
func currentRecruiter(c *fiber.Ctx) (uuid.UUID, error) {
	id, ok := middleware.RecruiterID(c)
	if !ok {
		return uuid.Nil, newAPIError(fiber.StatusUnauthorized, "Authentication required", "UNAUTHORIZED")
	}
	return id, nil
}

// parseBody decodes and validates a JSON request body.
func parseBody(c *fiber.Ctx, dest interface{}) error {
	if err := c.BodyParser(dest); err != nil {
		return newAPIError(fiber.StatusBadRequest, "Invalid request payload", "INVALID_BODY")
	}
	if details := validateStruct(dest); details != nil {
		return &validationError{details: details}
	}
	return nil
}

type validationError struct {
	details []response.ErrorDetail
}

func (e *validationError) Error() string {
	return "validation failed"
}
