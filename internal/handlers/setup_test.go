package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"alfredoptarigan/ats-backend/internal/analysis"
	"alfredoptarigan/ats-backend/internal/config"
	"alfredoptarigan/ats-backend/internal/middleware"
	"alfredoptarigan/ats-backend/internal/models"
	"alfredoptarigan/ats-backend/internal/repositories"
	"alfredoptarigan/ats-backend/internal/response"
	"alfredoptarigan/ats-backend/internal/services"
)

type mockAnalyzer struct {
	mock.Mock
}

func (m *mockAnalyzer) AnalyzeResume(ctx context.Context, file services.ResumeFile) (analysis.ResumeAnalysis, error) {
	args := m.Called(ctx, file)
	return args.Get(0).(analysis.ResumeAnalysis), args.Error(1)
}

func (m *mockAnalyzer) AnalyzeResumeForJob(ctx context.Context, file services.ResumeFile, job *models.JobPosting) (analysis.JobMatchAnalysis, error) {
	args := m.Called(ctx, file, job)
	return args.Get(0).(analysis.JobMatchAnalysis), args.Error(1)
}

type testServer struct {
	app      *fiber.App
	db       *gorm.DB
	analyzer *mockAnalyzer
	auth     services.AuthService
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, config.Migrate(db))

	sqlDB, err := db.DB()
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })

	applicantRepo := repositories.NewApplicantRepository(db)
	jobRepo := repositories.NewJobPostingRepository(db)
	recruiterRepo := repositories.NewRecruiterRepository(db)

	analyzer := new(mockAnalyzer)
	storage := services.NewStorageService(t.TempDir(), 1024*1024)
	authService := services.NewAuthService(recruiterRepo, "test-secret", time.Hour)
	applicantService := services.NewApplicantService(
		applicantRepo,
		jobRepo,
		storage,
		services.NewTextExtractor(),
		analyzer,
		services.NewDisabledIndexer(),
	)
	jobService := services.NewJobService(jobRepo, services.NewNoopCache())
	searchService := services.NewSearchService(nil, nil, applicantRepo)

	app := fiber.New(fiber.Config{ErrorHandler: ErrorHandler})
	SetupRoutes(app, Handlers{
		Health:    NewHealthHandler(sqlDB, "test"),
		Auth:      NewAuthHandler(authService),
		Applicant: NewApplicantHandler(applicantService, searchService),
		Job:       NewJobHandler(jobService, applicantService),
	}, middleware.RequireAuth(authService))

	return &testServer{app: app, db: db, analyzer: analyzer, auth: authService}
}

// signup creates a recruiter and returns its bearer token.
func (s *testServer) signup(t *testing.T, email string) string {
	t.Helper()
	result, err := s.auth.Signup(context.Background(), models.SignupRequest{
		Email:    email,
		Password: "password123",
		FullName: "Test Recruiter",
	})
	require.NoError(t, err)
	return result.Token
}

func (s *testServer) do(t *testing.T, req *http.Request, token string) (*http.Response, envelope) {
	t.Helper()
	if token != "" {
		req.Header.Set(fiber.HeaderAuthorization, "Bearer "+token)
	}

	resp, err := s.app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	var body envelope
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	if len(raw) > 0 && strings.HasPrefix(resp.Header.Get(fiber.HeaderContentType), fiber.MIMEApplicationJSON) {
		require.NoError(t, json.Unmarshal(raw, &body))
	}
	body.raw = raw
	return resp, body
}

func (s *testServer) doJSON(t *testing.T, method, path string, payload interface{}, token string) (*http.Response, envelope) {
	t.Helper()
	var reader io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	}

	req := httptest.NewRequest(method, path, reader)
	if payload != nil {
		req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	}
	return s.do(t, req, token)
}

func (s *testServer) upload(t *testing.T, path, fileName, content, token string) (*http.Response, envelope) {
	t.Helper()
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	part, err := writer.CreateFormFile(resumeField, fileName)
	require.NoError(t, err)
	_, err = part.Write([]byte(content))
	require.NoError(t, err)
	require.NoError(t, writer.Close())

	req := httptest.NewRequest(http.MethodPost, path, &buf)
	req.Header.Set(fiber.HeaderContentType, writer.FormDataContentType())
	return s.do(t, req, token)
}

type envelope struct {
	Success bool                   `json:"success"`
	Message string                 `json:"message"`
	Data    json.RawMessage        `json:"data"`
	Meta    response.Meta          `json:"meta"`
	Errors  []response.ErrorDetail `json:"errors"`

	raw []byte
}

func (e envelope) errorCode() string {
	if len(e.Errors) == 0 || e.Errors[0].Code == nil {
		return ""
	}
	return *e.Errors[0].Code
}

func (e envelope) decode(t *testing.T, dest interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(e.Data, dest))
}

func sarahChen() analysis.ResumeAnalysis {
	return analysis.ResumeAnalysis{
		Name:          "Sarah Chen",
		Email:         "sarah.chen@email.com",
		PriorityScore: 87,
		Summary:       "Senior backend engineer.",
		KeySkills:     []string{"Go", "PostgreSQL"},
		Experience:    "8 years",
		Education:     "BS Computer Science",
		Highlights:    []string{"Led migration"},
		Concerns:      []string{},
	}
}
