package handlers

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"alfredoptarigan/ats-backend/internal/models"
	"alfredoptarigan/ats-backend/internal/repositories"
	"alfredoptarigan/ats-backend/internal/response"
	"alfredoptarigan/ats-backend/internal/services"
)

type JobHandler struct {
	jobService       services.JobService
	applicantService services.ApplicantService
}

func NewJobHandler(jobService services.JobService, applicantService services.ApplicantService) *JobHandler {
	return &JobHandler{
		jobService:       jobService,
		applicantService: applicantService,
	}
}

func (h *JobHandler) HandleCreate(c *fiber.Ctx) error {
	recruiterID, err := currentRecruiter(c)
	if err != nil {
		return err
	}

	var req models.CreateJobRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}

	job, err := h.jobService.Create(c.UserContext(), recruiterID, req)
	if err != nil {
		return err
	}
	return response.Success(c, fiber.StatusCreated, "Job posting created successfully", job)
}

func (h *JobHandler) HandleList(c *fiber.Ctx) error {
	recruiterID, err := currentRecruiter(c)
	if err != nil {
		return err
	}

	filter := repositories.JobFilter{
		SortBy: c.Query("sortBy"),
		Order:  strings.ToLower(c.Query("order")),
	}
	if raw := c.Query("status"); raw != "" {
		status := models.JobStatus(raw)
		if !validJobStatus(status) {
			return &validationError{details: []response.ErrorDetail{
				response.FieldError("status", "Must be one of: draft, active, closed"),
			}}
		}
		filter.Status = status
	}

	jobs, err := h.jobService.ListByRecruiter(c.UserContext(), recruiterID, filter)
	if err != nil {
		return err
	}
	return response.Success(c, fiber.StatusOK, "Job postings retrieved successfully", jobs)
}

func (h *JobHandler) HandleStats(c *fiber.Ctx) error {
	recruiterID, err := currentRecruiter(c)
	if err != nil {
		return err
	}

	stats, err := h.jobService.Stats(c.UserContext(), recruiterID)
	if err != nil {
		return err
	}
	return response.Success(c, fiber.StatusOK, "Statistics retrieved successfully", stats)
}

func (h *JobHandler) HandleGet(c *fiber.Ctx) error {
	recruiterID, err := currentRecruiter(c)
	if err != nil {
		return err
	}
	id, err := parseUUIDParam(c, "id")
	if err != nil {
		return err
	}

	job, err := h.jobService.Get(c.UserContext(), recruiterID, id)
	if err != nil {
		return err
	}
	return response.Success(c, fiber.StatusOK, "Job posting retrieved successfully", job)
}

func (h *JobHandler) HandleUpdate(c *fiber.Ctx) error {
	recruiterID, err := currentRecruiter(c)
	if err != nil {
		return err
	}
	id, err := parseUUIDParam(c, "id")
	if err != nil {
		return err
	}

	var req models.UpdateJobRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}

	job, err := h.jobService.Update(c.UserContext(), recruiterID, id, req)
	if err != nil {
		return err
	}
	return response.Success(c, fiber.StatusOK, "Job posting updated successfully", job)
}

func (h *JobHandler) HandleDelete(c *fiber.Ctx) error {
	recruiterID, err := currentRecruiter(c)
	if err != nil {
		return err
	}
	id, err := parseUUIDParam(c, "id")
	if err != nil {
		return err
	}

	if err := h.jobService.Delete(c.UserContext(), recruiterID, id); err != nil {
		return err
	}
	return response.Success(c, fiber.StatusOK, "Job posting deleted successfully", nil)
}

func (h *JobHandler) HandleApplicants(c *fiber.Ctx) error {
	recruiterID, err := currentRecruiter(c)
	if err != nil {
		return err
	}
	id, err := parseUUIDParam(c, "id")
	if err != nil {
		return err
	}
	filter, err := applicantFilter(c)
	if err != nil {
		return err
	}

	applicants, err := h.applicantService.ListByJob(c.UserContext(), recruiterID, id, filter)
	if err != nil {
		return err
	}
	return response.Success(c, fiber.StatusOK, "Applicants retrieved successfully", applicants)
}

func (h *JobHandler) HandleApplicantStats(c *fiber.Ctx) error {
	recruiterID, err := currentRecruiter(c)
	if err != nil {
		return err
	}
	id, err := parseUUIDParam(c, "id")
	if err != nil {
		return err
	}

	stats, err := h.applicantService.JobStats(c.UserContext(), recruiterID, id)
	if err != nil {
		return err
	}
	return response.Success(c, fiber.StatusOK, "Statistics retrieved successfully", stats)
}

func (h *JobHandler) HandlePublicList(c *fiber.Ctx) error {
	filter := repositories.PublicJobFilter{
		Search:         strings.TrimSpace(c.Query("search")),
		Department:     c.Query("department"),
		Location:       c.Query("location"),
		EmploymentType: models.EmploymentType(c.Query("employmentType")),
		Page:           c.QueryInt("page", 1),
		Limit:          c.QueryInt("limit", services.DefaultPublicPageSize),
	}

	jobs, pagination, err := h.jobService.PublicList(c.UserContext(), filter)
	if err != nil {
		return err
	}
	return response.Paginated(c, "Job postings retrieved successfully", jobs, pagination)
}

func (h *JobHandler) HandlePublicGet(c *fiber.Ctx) error {
	id, err := parseUUIDParam(c, "id")
	if err != nil {
		return err
	}

	job, err := h.jobService.PublicGet(c.UserContext(), id)
	if err != nil {
		return err
	}
	return response.Success(c, fiber.StatusOK, "Job posting retrieved successfully", job)
}

func (h *JobHandler) HandleFilters(c *fiber.Ctx) error {
	filters, err := h.jobService.Filters(c.UserContext())
	if err != nil {
		return err
	}
	return response.Success(c, fiber.StatusOK, "Filters retrieved successfully", filters)
}

// HandleApply accepts a public application for an active job.
func (h *JobHandler) HandleApply(c *fiber.Ctx) error {
	id, err := parseUUIDParam(c, "id")
	if err != nil {
		return err
	}

	input, file, err := resumeInput(c)
	if err != nil {
		return err
	}
	defer file.Close()

	applicant, err := h.applicantService.Apply(c.UserContext(), id, input)
	if err != nil {
		return err
	}
	return response.Success(c, fiber.StatusCreated, "Application submitted successfully", applicant)
}

func validJobStatus(status models.JobStatus) bool {
	for _, s := range models.JobStatuses {
		if s == status {
			return true
		}
	}
	return false
}
