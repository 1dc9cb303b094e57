package repositories

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

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

func seedRecruiter(t *testing.T, db *gorm.DB, email string) *models.Recruiter {
	t.Helper()
	company := "Acme"
	recruiter := &models.Recruiter{
		Email:        email,
		PasswordHash: "hash",
		FullName:     "Rita Recruiter",
		CompanyName:  &company,
		IsActive:     true,
	}
	require.NoError(t, NewRecruiterRepository(db).Create(context.Background(), recruiter))
	return recruiter
}

func seedJob(t *testing.T, db *gorm.DB, recruiterID uuid.UUID, title string, status models.JobStatus, opts ...func(*models.JobPosting)) *models.JobPosting {
	t.Helper()
	job := &models.JobPosting{
		RecruiterID: recruiterID,
		Title:       title,
		Status:      status,
	}
	for _, opt := range opts {
		opt(job)
	}
	require.NoError(t, NewJobPostingRepository(db).Create(context.Background(), job))
	return job
}

func seedApplicant(t *testing.T, db *gorm.DB, name string, score int, opts ...func(*models.Applicant)) *models.Applicant {
	t.Helper()
	applicant := &models.Applicant{
		Name:           name,
		Email:          name + "@example.com",
		ResumeFilePath: "/tmp/" + name + ".pdf",
		ResumeFileName: name + ".pdf",
		PriorityScore:  score,
		KeySkills:      datatypes.NewJSONSlice([]string{"Go"}),
	}
	for _, opt := range opts {
		opt(applicant)
	}
	require.NoError(t, NewApplicantRepository(db).Create(context.Background(), applicant))
	return applicant
}

func strPtr(s string) *string { return &s }

func intPtr(i int) *int { return &i }

func TestApplicantRepository_CreateAndFind(t *testing.T) {
	db := setupTestDB(t)
	repo := NewApplicantRepository(db)
	ctx := context.Background()

	created := seedApplicant(t, db, "sarah", 88, func(a *models.Applicant) {
		a.Highlights = datatypes.NewJSONSlice([]string{"Led migration"})
	})
	assert.NotEqual(t, uuid.Nil, created.ID)

	found, err := repo.FindByID(ctx, created.ID)
	require.NoError(t, err)

	assert.Equal(t, "sarah", found.Name)
	assert.Equal(t, 88, found.PriorityScore)
	assert.Equal(t, models.ApplicantStatusNew, found.Status)
	assert.Equal(t, models.IndexStatusPending, found.IndexStatus)
	assert.Equal(t, []string{"Go"}, []string(found.KeySkills))
	assert.Equal(t, []string{"Led migration"}, []string(found.Highlights))
	assert.Equal(t, []string{}, []string(found.Concerns))
	assert.Nil(t, found.JobPosting)
}

func TestApplicantRepository_FindByIDNotFound(t *testing.T) {
	repo := NewApplicantRepository(setupTestDB(t))

	_, err := repo.FindByID(context.Background(), uuid.New())
	assert.ErrorIs(t, err, ErrApplicantNotFound)
}

func TestApplicantRepository_List(t *testing.T) {
	db := setupTestDB(t)
	repo := NewApplicantRepository(db)
	ctx := context.Background()

	base := time.Now().Add(-time.Hour)
	seedApplicant(t, db, "low", 20, func(a *models.Applicant) { a.CreatedAt = base })
	seedApplicant(t, db, "high", 95, func(a *models.Applicant) {
		a.CreatedAt = base.Add(time.Minute)
		a.Status = models.ApplicantStatusShortlisted
	})
	seedApplicant(t, db, "mid", 60, func(a *models.Applicant) { a.CreatedAt = base.Add(2 * time.Minute) })

	names := func(applicants []models.Applicant) []string {
		out := make([]string, 0, len(applicants))
		for _, a := range applicants {
			out = append(out, a.Name)
		}
		return out
	}

	tests := []struct {
		name   string
		filter ApplicantFilter
		want   []string
	}{
		{"default priority desc", ApplicantFilter{}, []string{"high", "mid", "low"}},
		{"priority asc", ApplicantFilter{SortBy: "priorityScore", Order: "asc"}, []string{"low", "mid", "high"}},
		{"created desc", ApplicantFilter{SortBy: "createdAt"}, []string{"mid", "high", "low"}},
		{"created asc", ApplicantFilter{SortBy: "created_at", Order: "asc"}, []string{"low", "high", "mid"}},
		{"unknown sort falls back", ApplicantFilter{SortBy: "name; DROP TABLE applicants"}, []string{"high", "mid", "low"}},
		{"status filter", ApplicantFilter{Status: models.ApplicantStatusShortlisted}, []string{"high"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := repo.List(ctx, tt.filter)
			require.NoError(t, err)
			assert.Equal(t, tt.want, names(got))
		})
	}
}

func TestApplicantRepository_ListByJobSortsByRelevancy(t *testing.T) {
	db := setupTestDB(t)
	repo := NewApplicantRepository(db)
	recruiter := seedRecruiter(t, db, "r@example.com")
	job := seedJob(t, db, recruiter.ID, "Backend Engineer", models.JobStatusActive)

	seedApplicant(t, db, "a", 90, func(a *models.Applicant) {
		a.JobPostingID = &job.ID
		a.JobRelevancyScore = intPtr(40)
	})
	seedApplicant(t, db, "b", 30, func(a *models.Applicant) {
		a.JobPostingID = &job.ID
		a.JobRelevancyScore = intPtr(85)
	})
	seedApplicant(t, db, "unrelated", 99)

	got, err := repo.List(context.Background(), ApplicantFilter{JobPostingID: &job.ID})
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "b", got[0].Name)
	assert.Equal(t, "a", got[1].Name)
	require.NotNil(t, got[0].JobPosting)
	assert.Equal(t, "Backend Engineer", got[0].JobPosting.Title)
}

func TestApplicantRepository_Update(t *testing.T) {
	db := setupTestDB(t)
	repo := NewApplicantRepository(db)
	ctx := context.Background()
	applicant := seedApplicant(t, db, "sam", 50)

	status := models.ApplicantStatusReviewed
	err := repo.Update(ctx, applicant.ID, ApplicantUpdate{
		Status:        &status,
		Notes:         strPtr("Strong portfolio"),
		PriorityScore: intPtr(77),
	})
	require.NoError(t, err)

	found, err := repo.FindByID(ctx, applicant.ID)
	require.NoError(t, err)
	assert.Equal(t, models.ApplicantStatusReviewed, found.Status)
	require.NotNil(t, found.Notes)
	assert.Equal(t, "Strong portfolio", *found.Notes)
	assert.Equal(t, 77, found.PriorityScore)
	assert.Equal(t, "sam", found.Name)

	err = repo.Update(ctx, uuid.New(), ApplicantUpdate{Status: &status})
	assert.ErrorIs(t, err, ErrApplicantNotFound)
}

func TestApplicantRepository_Delete(t *testing.T) {
	db := setupTestDB(t)
	repo := NewApplicantRepository(db)
	ctx := context.Background()
	applicant := seedApplicant(t, db, "gone", 50)

	require.NoError(t, repo.Delete(ctx, applicant.ID))

	_, err := repo.FindByID(ctx, applicant.ID)
	assert.ErrorIs(t, err, ErrApplicantNotFound)
	assert.ErrorIs(t, repo.Delete(ctx, applicant.ID), ErrApplicantNotFound)
}

func TestApplicantRepository_Stats(t *testing.T) {
	db := setupTestDB(t)
	repo := NewApplicantRepository(db)
	ctx := context.Background()

	stats, err := repo.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(0), stats.Total)
	assert.Equal(t, 0.0, stats.AvgScore)

	seedApplicant(t, db, "a", 70)
	seedApplicant(t, db, "b", 81)
	seedApplicant(t, db, "c", 50, func(a *models.Applicant) { a.Status = models.ApplicantStatusHired })

	stats, err = repo.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(3), stats.Total)
	assert.Equal(t, int64(2), stats.ByStatus[models.ApplicantStatusNew])
	assert.Equal(t, int64(1), stats.ByStatus[models.ApplicantStatusHired])
	assert.Equal(t, 67.0, stats.AvgScore)
}

func TestApplicantRepository_JobStats(t *testing.T) {
	db := setupTestDB(t)
	repo := NewApplicantRepository(db)
	recruiter := seedRecruiter(t, db, "r@example.com")
	job := seedJob(t, db, recruiter.ID, "Data Engineer", models.JobStatusActive)

	for i, score := range []int{70, 90, 45} {
		s := score
		seedApplicant(t, db, fmt.Sprintf("cand%d", i), 50, func(a *models.Applicant) {
			a.JobPostingID = &job.ID
			a.JobRelevancyScore = &s
		})
	}
	seedApplicant(t, db, "other", 99, func(a *models.Applicant) { a.JobRelevancyScore = intPtr(99) })

	stats, err := repo.JobStats(context.Background(), job.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(3), stats.Total)
	assert.Equal(t, int64(2), stats.HighMatches)
	assert.Equal(t, 68.3, stats.AvgRelevancyScore)
	assert.Equal(t, int64(3), stats.ByStatus[models.ApplicantStatusNew])
}

func TestApplicantRepository_IndexStatus(t *testing.T) {
	db := setupTestDB(t)
	repo := NewApplicantRepository(db)
	ctx := context.Background()

	a := seedApplicant(t, db, "a", 50)
	b := seedApplicant(t, db, "b", 50)

	require.NoError(t, repo.UpdateIndexStatus(ctx, a.ID, models.IndexStatusIndexed))

	pending, err := repo.FindPendingIndex(ctx, 10)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, b.ID, pending[0].ID)

	reset, err := repo.ResetIndexStatus(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), reset)

	pending, err = repo.FindPendingIndex(ctx, 10)
	require.NoError(t, err)
	assert.Len(t, pending, 2)

	assert.ErrorIs(t, repo.UpdateIndexStatus(ctx, uuid.New(), models.IndexStatusFailed), ErrApplicantNotFound)
}

func TestJobPostingRepository_FindByIDWithApplicantCount(t *testing.T) {
	db := setupTestDB(t)
	repo := NewJobPostingRepository(db)
	recruiter := seedRecruiter(t, db, "r@example.com")
	job := seedJob(t, db, recruiter.ID, "Designer", models.JobStatusDraft)

	seedApplicant(t, db, "a", 50, func(a *models.Applicant) { a.JobPostingID = &job.ID })
	seedApplicant(t, db, "b", 50, func(a *models.Applicant) { a.JobPostingID = &job.ID })

	found, err := repo.FindByID(context.Background(), job.ID)
	require.NoError(t, err)
	assert.Equal(t, "Designer", found.Title)
	assert.Equal(t, models.EmploymentFullTime, found.EmploymentType)
	require.NotNil(t, found.ApplicantCount)
	assert.Equal(t, int64(2), *found.ApplicantCount)

	_, err = repo.FindByID(context.Background(), uuid.New())
	assert.ErrorIs(t, err, ErrJobNotFound)
}

func TestJobPostingRepository_FindActiveByID(t *testing.T) {
	db := setupTestDB(t)
	repo := NewJobPostingRepository(db)
	recruiter := seedRecruiter(t, db, "r@example.com")
	active := seedJob(t, db, recruiter.ID, "Active", models.JobStatusActive)
	draft := seedJob(t, db, recruiter.ID, "Draft", models.JobStatusDraft)

	found, err := repo.FindActiveByID(context.Background(), active.ID)
	require.NoError(t, err)
	require.NotNil(t, found.Recruiter)
	assert.Equal(t, "Rita Recruiter", found.Recruiter.FullName)
	assert.Empty(t, found.Recruiter.Email)
	assert.Nil(t, found.ApplicantCount)

	_, err = repo.FindActiveByID(context.Background(), draft.ID)
	assert.ErrorIs(t, err, ErrJobNotFound)
}

func TestJobPostingRepository_ListByRecruiter(t *testing.T) {
	db := setupTestDB(t)
	repo := NewJobPostingRepository(db)
	owner := seedRecruiter(t, db, "owner@example.com")
	other := seedRecruiter(t, db, "other@example.com")

	first := seedJob(t, db, owner.ID, "First", models.JobStatusActive, func(j *models.JobPosting) {
		j.CreatedAt = time.Now().Add(-time.Hour)
	})
	seedJob(t, db, owner.ID, "Second", models.JobStatusClosed)
	seedJob(t, db, other.ID, "Foreign", models.JobStatusActive)
	seedApplicant(t, db, "a", 50, func(a *models.Applicant) { a.JobPostingID = &first.ID })

	jobs, err := repo.ListByRecruiter(context.Background(), owner.ID, JobFilter{})
	require.NoError(t, err)
	require.Len(t, jobs, 2)
	assert.Equal(t, "Second", jobs[0].Title)
	assert.Equal(t, "First", jobs[1].Title)
	require.NotNil(t, jobs[1].ApplicantCount)
	assert.Equal(t, int64(1), *jobs[1].ApplicantCount)

	jobs, err = repo.ListByRecruiter(context.Background(), owner.ID, JobFilter{Status: models.JobStatusActive})
	require.NoError(t, err)
	require.Len(t, jobs, 1)
	assert.Equal(t, "First", jobs[0].Title)
}

func TestJobPostingRepository_ListPublic(t *testing.T) {
	db := setupTestDB(t)
	repo := NewJobPostingRepository(db)
	recruiter := seedRecruiter(t, db, "r@example.com")

	seedJob(t, db, recruiter.ID, "Go Developer", models.JobStatusActive, func(j *models.JobPosting) {
		j.Department = strPtr("Engineering")
		j.Location = strPtr("Berlin, Germany")
		j.Description = strPtr("Build APIs")
	})
	seedJob(t, db, recruiter.ID, "Account Manager", models.JobStatusActive, func(j *models.JobPosting) {
		j.Department = strPtr("Sales")
		j.Location = strPtr("Remote")
		j.EmploymentType = models.EmploymentContract
		j.Description = strPtr("Work with developer tools customers")
	})
	seedJob(t, db, recruiter.ID, "Hidden Developer", models.JobStatusDraft)

	tests := []struct {
		name   string
		filter PublicJobFilter
		total  int64
		titles []string
	}{
		{"all active", PublicJobFilter{Page: 1, Limit: 20}, 2, nil},
		{"search matches title or description", PublicJobFilter{Search: "DEVELOPER", Page: 1, Limit: 20}, 2, nil},
		{"department", PublicJobFilter{Department: "Engineering", Page: 1, Limit: 20}, 1, []string{"Go Developer"}},
		{"location partial", PublicJobFilter{Location: "berlin", Page: 1, Limit: 20}, 1, []string{"Go Developer"}},
		{"employment type", PublicJobFilter{EmploymentType: models.EmploymentContract, Page: 1, Limit: 20}, 1, []string{"Account Manager"}},
		{"second page", PublicJobFilter{Page: 2, Limit: 1}, 2, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			jobs, total, err := repo.ListPublic(context.Background(), tt.filter)
			require.NoError(t, err)
			assert.Equal(t, tt.total, total)
			for _, job := range jobs {
				assert.Nil(t, job.ApplicantCount)
			}
			if tt.titles != nil {
				require.Len(t, jobs, len(tt.titles))
				for i, title := range tt.titles {
					assert.Equal(t, title, jobs[i].Title)
				}
			}
			for _, job := range jobs {
				assert.Equal(t, models.JobStatusActive, job.Status)
				assert.NotNil(t, job.Recruiter)
			}
		})
	}
}

func TestJobPostingRepository_UpdateAndDelete(t *testing.T) {
	db := setupTestDB(t)
	repo := NewJobPostingRepository(db)
	applicants := NewApplicantRepository(db)
	ctx := context.Background()
	recruiter := seedRecruiter(t, db, "r@example.com")
	job := seedJob(t, db, recruiter.ID, "Old Title", models.JobStatusDraft)
	applicant := seedApplicant(t, db, "a", 50, func(a *models.Applicant) { a.JobPostingID = &job.ID })

	require.NoError(t, repo.Update(ctx, job.ID, map[string]interface{}{
		"title":  "New Title",
		"status": models.JobStatusActive,
	}))

	found, err := repo.FindByID(ctx, job.ID)
	require.NoError(t, err)
	assert.Equal(t, "New Title", found.Title)
	assert.Equal(t, models.JobStatusActive, found.Status)

	require.NoError(t, repo.Delete(ctx, job.ID))
	_, err = repo.FindByID(ctx, job.ID)
	assert.ErrorIs(t, err, ErrJobNotFound)

	kept, err := applicants.FindByID(ctx, applicant.ID)
	require.NoError(t, err)
	assert.Nil(t, kept.JobPostingID)

	assert.ErrorIs(t, repo.Delete(ctx, job.ID), ErrJobNotFound)
	assert.ErrorIs(t, repo.Update(ctx, job.ID, map[string]interface{}{"title": "x"}), ErrJobNotFound)
}

func TestJobPostingRepository_Stats(t *testing.T) {
	db := setupTestDB(t)
	repo := NewJobPostingRepository(db)
	recruiter := seedRecruiter(t, db, "r@example.com")
	other := seedRecruiter(t, db, "o@example.com")

	a := seedJob(t, db, recruiter.ID, "A", models.JobStatusActive)
	seedJob(t, db, recruiter.ID, "B", models.JobStatusActive)
	seedJob(t, db, recruiter.ID, "C", models.JobStatusClosed)
	foreign := seedJob(t, db, other.ID, "D", models.JobStatusActive)

	seedApplicant(t, db, "x", 50, func(ap *models.Applicant) { ap.JobPostingID = &a.ID })
	seedApplicant(t, db, "y", 50, func(ap *models.Applicant) { ap.JobPostingID = &a.ID })
	seedApplicant(t, db, "z", 50, func(ap *models.Applicant) { ap.JobPostingID = &foreign.ID })

	stats, err := repo.Stats(context.Background(), recruiter.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(3), stats.TotalJobs)
	assert.Equal(t, int64(2), stats.ActiveJobs)
	assert.Equal(t, int64(2), stats.TotalApplicants)
	assert.Equal(t, int64(1), stats.ByStatus[models.JobStatusClosed])
}

func TestJobPostingRepository_ActiveFilters(t *testing.T) {
	db := setupTestDB(t)
	repo := NewJobPostingRepository(db)
	recruiter := seedRecruiter(t, db, "r@example.com")

	seedJob(t, db, recruiter.ID, "A", models.JobStatusActive, func(j *models.JobPosting) {
		j.Department = strPtr("Sales")
		j.Location = strPtr("Remote")
	})
	seedJob(t, db, recruiter.ID, "B", models.JobStatusActive, func(j *models.JobPosting) {
		j.Department = strPtr("Engineering")
		j.Location = strPtr("Remote")
	})
	seedJob(t, db, recruiter.ID, "C", models.JobStatusDraft, func(j *models.JobPosting) {
		j.Department = strPtr("Legal")
	})
	seedJob(t, db, recruiter.ID, "D", models.JobStatusActive)

	departments, err := repo.ActiveDepartments(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"Engineering", "Sales"}, departments)

	locations, err := repo.ActiveLocations(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"Remote"}, locations)
}

func TestRecruiterRepository(t *testing.T) {
	db := setupTestDB(t)
	repo := NewRecruiterRepository(db)
	ctx := context.Background()

	recruiter := seedRecruiter(t, db, "jane@example.com")

	found, err := repo.FindByEmail(ctx, "  JANE@example.com ")
	require.NoError(t, err)
	assert.Equal(t, recruiter.ID, found.ID)

	_, err = repo.FindByEmail(ctx, "missing@example.com")
	assert.ErrorIs(t, err, ErrRecruiterNotFound)

	dup := &models.Recruiter{Email: "jane@example.com", PasswordHash: "x", FullName: "Dup"}
	assert.Error(t, repo.Create(ctx, dup))

	require.NoError(t, repo.Update(ctx, recruiter.ID, map[string]interface{}{"full_name": "Jane Doe"}))
	found, err = repo.FindByID(ctx, recruiter.ID)
	require.NoError(t, err)
	assert.Equal(t, "Jane Doe", found.FullName)

	assert.ErrorIs(t, repo.Update(ctx, uuid.New(), map[string]interface{}{"full_name": "x"}), ErrRecruiterNotFound)
	_, err = repo.FindByID(ctx, uuid.New())
	assert.ErrorIs(t, err, ErrRecruiterNotFound)
}
