package services

import (
	"context"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"alfredoptarigan/ats-backend/internal/analysis"
	"alfredoptarigan/ats-backend/internal/config"
	"alfredoptarigan/ats-backend/internal/models"
)

func setupTestDB(t *testing.T) *gorm.DB {
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

	return db
}

type mockLLM struct {
	mock.Mock
}

func (m *mockLLM) GenerateText(ctx context.Context, prompt string, temperature float32) (string, error) {
	args := m.Called(ctx, prompt, temperature)
	return args.String(0), args.Error(1)
}

func (m *mockLLM) GenerateWithAttachment(ctx context.Context, prompt string, attachment Attachment, temperature float32) (string, error) {
	args := m.Called(ctx, prompt, attachment, temperature)
	return args.String(0), args.Error(1)
}

type mockEmbedder struct {
	mock.Mock
}

func (m *mockEmbedder) GenerateEmbedding(ctx context.Context, text string) ([]float32, error) {
	args := m.Called(ctx, text)
	if v := args.Get(0); v != nil {
		return v.([]float32), args.Error(1)
	}
	return nil, args.Error(1)
}

type mockQdrant struct {
	mock.Mock
}

func (m *mockQdrant) InitCollection(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

func (m *mockQdrant) UpsertApplicant(ctx context.Context, applicantID uuid.UUID, jobID *uuid.UUID, chunks []ResumeChunk) error {
	return m.Called(ctx, applicantID, jobID, chunks).Error(0)
}

func (m *mockQdrant) Search(ctx context.Context, embedding []float32, jobID *uuid.UUID, limit int) ([]VectorMatch, error) {
	args := m.Called(ctx, embedding, jobID, limit)
	if v := args.Get(0); v != nil {
		return v.([]VectorMatch), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockQdrant) DeleteApplicant(ctx context.Context, applicantID uuid.UUID) error {
	return m.Called(ctx, applicantID).Error(0)
}

type mockCache struct {
	mock.Mock
}

func (m *mockCache) GetJSON(ctx context.Context, key string, dest interface{}) (bool, error) {
	args := m.Called(ctx, key, dest)
	return args.Bool(0), args.Error(1)
}

func (m *mockCache) SetJSON(ctx context.Context, key string, value interface{}) error {
	return m.Called(ctx, key, value).Error(0)
}

func (m *mockCache) Generation(ctx context.Context, namespace string) (int64, error) {
	args := m.Called(ctx, namespace)
	return args.Get(0).(int64), args.Error(1)
}

func (m *mockCache) Bump(ctx context.Context, namespace string) error {
	return m.Called(ctx, namespace).Error(0)
}

func (m *mockCache) Close() {}

type mockIndexer struct {
	mock.Mock
}

func (m *mockIndexer) Enabled() bool {
	return m.Called().Bool(0)
}

func (m *mockIndexer) Enqueue(applicantID uuid.UUID) {
	m.Called(applicantID)
}

func (m *mockIndexer) Remove(ctx context.Context, applicantID uuid.UUID) error {
	return m.Called(ctx, applicantID).Error(0)
}

type mockAnalyzer struct {
	mock.Mock
}

func (m *mockAnalyzer) AnalyzeResume(ctx context.Context, file ResumeFile) (analysis.ResumeAnalysis, error) {
	args := m.Called(ctx, file)
	return args.Get(0).(analysis.ResumeAnalysis), args.Error(1)
}

func (m *mockAnalyzer) AnalyzeResumeForJob(ctx context.Context, file ResumeFile, job *models.JobPosting) (analysis.JobMatchAnalysis, error) {
	args := m.Called(ctx, file, job)
	return args.Get(0).(analysis.JobMatchAnalysis), args.Error(1)
}
