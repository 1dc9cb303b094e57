package handlers

import (
	"github.com/gofiber/fiber/v2"
)

// Handlers groups everything SetupRoutes mounts.
type Handlers struct {
	Health    *HealthHandler
	Auth      *AuthHandler
	Applicant *ApplicantHandler
	Job       *JobHandler
}

// SetupRoutes mounts the API under /api/v1. requireAuth guards the recruiter
// endpoints; the public job board and applications stay open.
func SetupRoutes(app *fiber.App, h Handlers, requireAuth fiber.Handler) {
	api := app.Group("/api/v1")

	api.Get("/health", h.Health.HandleHealth)

	auth := api.Group("/auth")
	auth.Post("/signup", h.Auth.HandleSignup)
	auth.Post("/login", h.Auth.HandleLogin)
	auth.Get("/profile", requireAuth, h.Auth.HandleProfile)
	auth.Patch("/profile", requireAuth, h.Auth.HandleUpdateProfile)
	auth.Post("/refresh", requireAuth, h.Auth.HandleRefresh)

	applicants := api.Group("/applicants", requireAuth)
	applicants.Post("/upload", h.Applicant.HandleUpload)
	applicants.Get("/", h.Applicant.HandleList)
	applicants.Get("/stats", h.Applicant.HandleStats)
	applicants.Get("/search", h.Applicant.HandleSearch)
	applicants.Get("/:id", h.Applicant.HandleGet)
	applicants.Patch("/:id", h.Applicant.HandleUpdate)
	applicants.Delete("/:id", h.Applicant.HandleDelete)
	applicants.Get("/:id/resume", h.Applicant.HandleDownloadResume)

	jobs := api.Group("/jobs")
	jobs.Get("/public", h.Job.HandlePublicList)
	jobs.Get("/public/:id", h.Job.HandlePublicGet)
	jobs.Get("/filters", h.Job.HandleFilters)
	jobs.Post("/:id/apply", h.Job.HandleApply)

	jobs.Get("/", requireAuth, h.Job.HandleList)
	jobs.Post("/", requireAuth, h.Job.HandleCreate)
	jobs.Get("/stats", requireAuth, h.Job.HandleStats)
	jobs.Get("/:id", requireAuth, h.Job.HandleGet)
	jobs.Patch("/:id", requireAuth, h.Job.HandleUpdate)
	jobs.Delete("/:id", requireAuth, h.Job.HandleDelete)
	jobs.Get("/:id/applicants", requireAuth, h.Job.HandleApplicants)
	jobs.Get("/:id/applicants/stats", requireAuth, h.Job.HandleApplicantStats)
}
