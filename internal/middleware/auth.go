package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"alfredoptarigan/ats-backend/internal/response"
)

const recruiterIDKey = "recruiterID"

type TokenVerifier interface {
	VerifyToken(token string) (uuid.UUID, error)
}

// RequireAuth rejects requests without a valid bearer token and stores the
// recruiter ID for downstream handlers.
func RequireAuth(verifier TokenVerifier) fiber.Handler {
	return func(c *fiber.Ctx) error {
		header := c.Get(fiber.HeaderAuthorization)
		token, ok := strings.CutPrefix(header, "Bearer ")
		token = strings.TrimSpace(token)
		if !ok || token == "" {
			return response.Fail(c, fiber.StatusUnauthorized, "Authentication required", "UNAUTHORIZED")
		}

		recruiterID, err := verifier.VerifyToken(token)
		if err != nil {
			return response.Fail(c, fiber.StatusUnauthorized, "Invalid or expired token", "INVALID_TOKEN")
		}

		c.Locals(recruiterIDKey, recruiterID)
		return c.Next()
	}
}

// RecruiterID returns the authenticated recruiter, if any.
func RecruiterID(c *fiber.Ctx) (uuid.UUID, bool) {
	id, ok := c.Locals(recruiterIDKey).(uuid.UUID)
	return id, ok
}
