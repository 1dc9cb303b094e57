package handlers

import (
	"fmt"
	"io"
	"mime/multipart"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"alfredoptarigan/ats-backend/internal/models"
	"alfredoptarigan/ats-backend/internal/repositories"
	"alfredoptarigan/ats-backend/internal/response"
	"alfredoptarigan/ats-backend/internal/services"
)

const resumeField = "resume"

type ApplicantHandler struct {
	applicantService services.ApplicantService
	searchService    services.SearchService
}

func NewApplicantHandler(applicantService services.ApplicantService, searchService services.SearchService) *ApplicantHandler {
	return &ApplicantHandler{
		applicantService: applicantService,
		searchService:    searchService,
	}
}

func (h *ApplicantHandler) HandleUpload(c *fiber.Ctx) error {
	input, file, err := resumeInput(c)
	if err != nil {
		return err
	}
	defer file.Close()

	applicant, err := h.applicantService.Upload(c.UserContext(), input)
	if err != nil {
		return err
	}
	return response.Success(c, fiber.StatusCreated, "Resume uploaded and analyzed successfully", applicant)
}

func (h *ApplicantHandler) HandleList(c *fiber.Ctx) error {
	filter, err := applicantFilter(c)
	if err != nil {
		return err
	}

	applicants, err := h.applicantService.List(c.UserContext(), filter)
	if err != nil {
		return err
	}
	return response.Success(c, fiber.StatusOK, "Applicants retrieved successfully", applicants)
}

func (h *ApplicantHandler) HandleStats(c *fiber.Ctx) error {
	stats, err := h.applicantService.Stats(c.UserContext())
	if err != nil {
		return err
	}
	return response.Success(c, fiber.StatusOK, "Statistics retrieved successfully", stats)
}

func (h *ApplicantHandler) HandleSearch(c *fiber.Ctx) error {
	var jobID *uuid.UUID
	if raw := c.Query("jobId"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			return newAPIError(fiber.StatusBadRequest, "Invalid jobId format", "INVALID_ID")
		}
		jobID = &id
	}

	hits, err := h.searchService.Search(c.UserContext(), c.Query("q"), jobID, c.QueryInt("limit", services.DefaultSearchLimit))
	if err != nil {
		return err
	}
	return response.Success(c, fiber.StatusOK, "Search completed successfully", hits)
}

func (h *ApplicantHandler) HandleGet(c *fiber.Ctx) error {
	id, err := parseUUIDParam(c, "id")
	if err != nil {
		return err
	}

	applicant, err := h.applicantService.Get(c.UserContext(), id)
	if err != nil {
		return err
	}
	return response.Success(c, fiber.StatusOK, "Applicant retrieved successfully", applicant)
}

func (h *ApplicantHandler) HandleUpdate(c *fiber.Ctx) error {
	id, err := parseUUIDParam(c, "id")
	if err != nil {
		return err
	}

	var req models.UpdateApplicantRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}

	applicant, err := h.applicantService.Update(c.UserContext(), id, req)
	if err != nil {
		return err
	}
	return response.Success(c, fiber.StatusOK, "Applicant updated successfully", applicant)
}

func (h *ApplicantHandler) HandleDelete(c *fiber.Ctx) error {
	id, err := parseUUIDParam(c, "id")
	if err != nil {
		return err
	}

	if err := h.applicantService.Delete(c.UserContext(), id); err != nil {
		return err
	}
	return response.Success(c, fiber.StatusOK, "Applicant deleted successfully", nil)
}

func (h *ApplicantHandler) HandleDownloadResume(c *fiber.Ctx) error {
	id, err := parseUUIDParam(c, "id")
	if err != nil {
		return err
	}

	download, err := h.applicantService.OpenResume(c.UserContext(), id)
	if err != nil {
		return err
	}

	c.Set(fiber.HeaderContentType, download.MIMEType)
	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%q", download.FileName))
	// fasthttp closes the stream once the body is written.
	return c.SendStream(download.Content)
}

// resumeInput opens the uploaded resume. The caller closes the returned file.
func resumeInput(c *fiber.Ctx) (services.UploadInput, io.Closer, error) {
	header, err := c.FormFile(resumeField)
	if err != nil {
		return services.UploadInput{}, nil, newAPIError(fiber.StatusBadRequest, "No file uploaded", "NO_FILE")
	}

	var file multipart.File
	file, err = header.Open()
	if err != nil {
		return services.UploadInput{}, nil, fmt.Errorf("failed to open uploaded file: %w", err)
	}

	return services.UploadInput{
		FileName:    header.Filename,
		ContentType: header.Header.Get(fiber.HeaderContentType),
		Size:        header.Size,
		Content:     file,
	}, file, nil
}

func applicantFilter(c *fiber.Ctx) (repositories.ApplicantFilter, error) {
	filter := repositories.ApplicantFilter{
		SortBy: c.Query("sortBy"),
		Order:  strings.ToLower(c.Query("order")),
	}

	if raw := c.Query("status"); raw != "" {
		status := models.ApplicantStatus(raw)
		if !status.Valid() {
			return filter, &validationError{details: []response.ErrorDetail{
				response.FieldError("status", "Must be one of: new, reviewed, shortlisted, rejected, hired"),
			}}
		}
		filter.Status = status
	}
	return filter, nil
}
