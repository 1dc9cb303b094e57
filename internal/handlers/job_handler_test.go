package handlers

import (
	"net/http"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"alfredoptarigan/ats-backend/internal/analysis"
	"alfredoptarigan/ats-backend/internal/models"
	"alfredoptarigan/ats-backend/internal/services"
)

func (s *testServer) createJob(t *testing.T, token string, payload map[string]interface{}) models.JobPosting {
	t.Helper()
	resp, body := s.doJSON(t, http.MethodPost, "/api/v1/jobs", payload, token)
	require.Equal(t, fiber.StatusCreated, resp.StatusCode, string(body.raw))

	var job models.JobPosting
	body.decode(t, &job)
	return job
}

func TestCreateJobValidation(t *testing.T) {
	srv := newTestServer(t)
	token := srv.signup(t, "recruiter@example.com")

	resp, body := srv.doJSON(t, http.MethodPost, "/api/v1/jobs", map[string]interface{}{
		"title":          "Go",
		"employmentType": "gig",
	}, token)

	assert.Equal(t, fiber.StatusUnprocessableEntity, resp.StatusCode)
	fields := make([]string, 0, len(body.Errors))
	for _, detail := range body.Errors {
		fields = append(fields, *detail.Field)
	}
	assert.ElementsMatch(t, []string{"title", "employmentType"}, fields)
}

func TestJobOwnership(t *testing.T) {
	srv := newTestServer(t)
	owner := srv.signup(t, "owner@example.com")
	other := srv.signup(t, "other@example.com")

	job := srv.createJob(t, owner, map[string]interface{}{"title": "Backend Engineer"})
	assert.Equal(t, models.JobStatusDraft, job.Status)
	path := "/api/v1/jobs/" + job.ID.String()

	for _, p := range []string{path, path + "/applicants", path + "/applicants/stats"} {
		resp, body := srv.doJSON(t, http.MethodGet, p, nil, other)
		assert.Equal(t, fiber.StatusForbidden, resp.StatusCode, p)
		assert.Equal(t, "FORBIDDEN", body.errorCode())
	}

	resp, _ := srv.doJSON(t, http.MethodPatch, path, map[string]interface{}{"status": "closed"}, other)
	assert.Equal(t, fiber.StatusForbidden, resp.StatusCode)

	resp, body := srv.doJSON(t, http.MethodPatch, path, map[string]interface{}{"status": "closed"}, owner)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	var updated models.JobPosting
	body.decode(t, &updated)
	assert.Equal(t, models.JobStatusClosed, updated.Status)

	resp, _ = srv.doJSON(t, http.MethodDelete, path, nil, owner)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	resp, body = srv.doJSON(t, http.MethodGet, path, nil, owner)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
	assert.Equal(t, "NOT_FOUND", body.errorCode())
}

func TestPublicJobBoard(t *testing.T) {
	srv := newTestServer(t)
	token := srv.signup(t, "recruiter@example.com")

	active := srv.createJob(t, token, map[string]interface{}{
		"title":          "Backend Engineer",
		"department":     "Engineering",
		"location":       "Remote",
		"employmentType": "full-time",
		"status":         "active",
	})
	draft := srv.createJob(t, token, map[string]interface{}{"title": "Data Analyst"})

	t.Run("list shows active only", func(t *testing.T) {
		resp, body := srv.doJSON(t, http.MethodGet, "/api/v1/jobs/public?limit=5", nil, "")
		require.Equal(t, fiber.StatusOK, resp.StatusCode)

		var jobs []models.JobPosting
		body.decode(t, &jobs)
		require.Len(t, jobs, 1)
		assert.Equal(t, active.ID, jobs[0].ID)
		assert.NotContains(t, string(body.raw), "applicantCount")

		require.NotNil(t, body.Meta.Pagination)
		assert.Equal(t, int64(1), body.Meta.Pagination.Total)
		assert.Equal(t, 5, body.Meta.Pagination.Limit)
		assert.Equal(t, 1, body.Meta.Pagination.TotalPages)
	})

	t.Run("search filter", func(t *testing.T) {
		resp, body := srv.doJSON(t, http.MethodGet, "/api/v1/jobs/public?search=analyst", nil, "")
		require.Equal(t, fiber.StatusOK, resp.StatusCode)
		var jobs []models.JobPosting
		body.decode(t, &jobs)
		assert.Empty(t, jobs)
	})

	t.Run("get", func(t *testing.T) {
		resp, _ := srv.doJSON(t, http.MethodGet, "/api/v1/jobs/public/"+active.ID.String(), nil, "")
		assert.Equal(t, fiber.StatusOK, resp.StatusCode)

		resp, body := srv.doJSON(t, http.MethodGet, "/api/v1/jobs/public/"+draft.ID.String(), nil, "")
		assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
		assert.Equal(t, "NOT_FOUND", body.errorCode())
	})

	t.Run("filters", func(t *testing.T) {
		resp, body := srv.doJSON(t, http.MethodGet, "/api/v1/jobs/filters", nil, "")
		require.Equal(t, fiber.StatusOK, resp.StatusCode)
		var filters models.JobFilters
		body.decode(t, &filters)
		assert.Equal(t, []string{"Engineering"}, filters.Departments)
		assert.Equal(t, []string{"Remote"}, filters.Locations)
		assert.Len(t, filters.EmploymentTypes, len(models.EmploymentTypes))
	})
}

func TestApplyToJob(t *testing.T) {
	srv := newTestServer(t)
	token := srv.signup(t, "recruiter@example.com")

	job := srv.createJob(t, token, map[string]interface{}{
		"title":        "Backend Engineer",
		"requirements": "Go, PostgreSQL",
		"status":       "active",
	})
	draft := srv.createJob(t, token, map[string]interface{}{"title": "Data Analyst"})

	t.Run("inactive job", func(t *testing.T) {
		resp, body := srv.upload(t, "/api/v1/jobs/"+draft.ID.String()+"/apply", "resume.txt", resumeText, "")
		assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
		assert.Equal(t, "JOB_NOT_ACTIVE", body.errorCode())
	})

	srv.analyzer.On("AnalyzeResumeForJob", mock.Anything, mock.AnythingOfType("services.ResumeFile"), mock.MatchedBy(func(j *models.JobPosting) bool {
		return j.ID == job.ID
	})).Return(analysis.JobMatchAnalysis{
		ResumeAnalysis:    sarahChen(),
		JobRelevancyScore: 91,
		JobMatchSummary:   "Strong match.",
		SkillMatches:      []string{"Go", "PostgreSQL"},
		SkillGaps:         []string{},
	}, nil).Once()

	resp, body := srv.upload(t, "/api/v1/jobs/"+job.ID.String()+"/apply", "resume.txt", resumeText, "")
	require.Equal(t, fiber.StatusCreated, resp.StatusCode, string(body.raw))

	var applicant models.Applicant
	body.decode(t, &applicant)
	require.NotNil(t, applicant.JobPostingID)
	assert.Equal(t, job.ID, *applicant.JobPostingID)
	require.NotNil(t, applicant.JobRelevancyScore)
	assert.Equal(t, 91, *applicant.JobRelevancyScore)
	srv.analyzer.AssertExpectations(t)

	t.Run("job applicants", func(t *testing.T) {
		resp, body := srv.doJSON(t, http.MethodGet, "/api/v1/jobs/"+job.ID.String()+"/applicants", nil, token)
		require.Equal(t, fiber.StatusOK, resp.StatusCode)
		var applicants []models.Applicant
		body.decode(t, &applicants)
		require.Len(t, applicants, 1)
		assert.Equal(t, applicant.ID, applicants[0].ID)
	})

	t.Run("job applicant stats", func(t *testing.T) {
		resp, body := srv.doJSON(t, http.MethodGet, "/api/v1/jobs/"+job.ID.String()+"/applicants/stats", nil, token)
		require.Equal(t, fiber.StatusOK, resp.StatusCode)
		var stats models.JobApplicantStats
		body.decode(t, &stats)
		assert.Equal(t, int64(1), stats.Total)
		assert.Equal(t, int64(1), stats.HighMatches)
	})

	t.Run("recruiter stats", func(t *testing.T) {
		resp, body := srv.doJSON(t, http.MethodGet, "/api/v1/jobs/stats", nil, token)
		require.Equal(t, fiber.StatusOK, resp.StatusCode)
		var stats models.JobStats
		body.decode(t, &stats)
		assert.Equal(t, int64(2), stats.TotalJobs)
		assert.Equal(t, int64(1), stats.ActiveJobs)
		assert.Equal(t, int64(1), stats.TotalApplicants)
	})

	t.Run("recruiter list counts applicants", func(t *testing.T) {
		resp, body := srv.doJSON(t, http.MethodGet, "/api/v1/jobs?status=active", nil, token)
		require.Equal(t, fiber.StatusOK, resp.StatusCode)
		var jobs []models.JobPosting
		body.decode(t, &jobs)
		require.Len(t, jobs, 1)
		require.NotNil(t, jobs[0].ApplicantCount)
		assert.Equal(t, int64(1), *jobs[0].ApplicantCount)
	})
}

var _ services.ResumeAnalyzer = (*mockAnalyzer)(nil)
