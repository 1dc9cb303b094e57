package repositories

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"alfredoptarigan/ats-backend/internal/models"
)

const applicantCountSelect = "job_postings.*, " +
	"(SELECT COUNT(*) FROM applicants WHERE applicants.job_posting_id = job_postings.id) AS applicant_count"

type JobFilter struct {
	Status models.JobStatus
	SortBy string
	Order  string
}

type PublicJobFilter struct {
	Search         string
	Department     string
	Location       string
	EmploymentType models.EmploymentType
	Page           int
	Limit          int
}

type JobPostingRepository interface {
	Create(ctx context.Context, job *models.JobPosting) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.JobPosting, error)
	FindActiveByID(ctx context.Context, id uuid.UUID) (*models.JobPosting, error)
	ListByRecruiter(ctx context.Context, recruiterID uuid.UUID, filter JobFilter) ([]models.JobPosting, error)
	ListPublic(ctx context.Context, filter PublicJobFilter) ([]models.JobPosting, int64, error)
	Update(ctx context.Context, id uuid.UUID, updates map[string]interface{}) error
	Delete(ctx context.Context, id uuid.UUID) error
	Stats(ctx context.Context, recruiterID uuid.UUID) (*models.JobStats, error)
	ActiveDepartments(ctx context.Context) ([]string, error)
	ActiveLocations(ctx context.Context) ([]string, error)
}

var jobSortColumns = map[string]string{
	"createdAt":  "created_at",
	"created_at": "created_at",
	"updatedAt":  "updated_at",
	"updated_at": "updated_at",
	"title":      "title",
}

type jobPostingRepository struct {
	db *gorm.DB
}

func NewJobPostingRepository(db *gorm.DB) JobPostingRepository {
	return &jobPostingRepository{db: db}
}

func (r *jobPostingRepository) Create(ctx context.Context, job *models.JobPosting) error {
	if err := r.db.WithContext(ctx).Create(job).Error; err != nil {
		return fmt.Errorf("failed to create job posting: %w", err)
	}
	return nil
}

func (r *jobPostingRepository) FindByID(ctx context.Context, id uuid.UUID) (*models.JobPosting, error) {
	var job models.JobPosting
	err := r.db.WithContext(ctx).
		Select(applicantCountSelect).
		Where("job_postings.id = ?", id).
		First(&job).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrJobNotFound
		}
		return nil, fmt.Errorf("failed to find job posting: %w", err)
	}
	return &job, nil
}

func (r *jobPostingRepository) FindActiveByID(ctx context.Context, id uuid.UUID) (*models.JobPosting, error) {
	var job models.JobPosting
	err := r.db.WithContext(ctx).
		Preload("Recruiter", publicRecruiterColumns).
		Where("id = ? AND status = ?", id, models.JobStatusActive).
		First(&job).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrJobNotFound
		}
		return nil, fmt.Errorf("failed to find job posting: %w", err)
	}
	return &job, nil
}

func (r *jobPostingRepository) ListByRecruiter(ctx context.Context, recruiterID uuid.UUID, filter JobFilter) ([]models.JobPosting, error) {
	query := r.db.WithContext(ctx).
		Select(applicantCountSelect).
		Where("job_postings.recruiter_id = ?", recruiterID)

	if filter.Status != "" {
		query = query.Where("job_postings.status = ?", filter.Status)
	}

	column, ok := jobSortColumns[filter.SortBy]
	if !ok {
		column = "created_at"
	}

	var jobs []models.JobPosting
	err := query.
		Order(fmt.Sprintf("job_postings.%s %s", column, sortDirection(filter.Order))).
		Find(&jobs).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list job postings: %w", err)
	}
	return jobs, nil
}

func (r *jobPostingRepository) ListPublic(ctx context.Context, filter PublicJobFilter) ([]models.JobPosting, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.JobPosting{}).
		Where("status = ?", models.JobStatusActive)

	if filter.Department != "" {
		query = query.Where("department = ?", filter.Department)
	}
	if filter.Location != "" {
		query = query.Where("LOWER(location) LIKE ?", likePattern(filter.Location))
	}
	if filter.EmploymentType != "" {
		query = query.Where("employment_type = ?", filter.EmploymentType)
	}
	if filter.Search != "" {
		pattern := likePattern(filter.Search)
		query = query.Where("(LOWER(title) LIKE ? OR LOWER(description) LIKE ?)", pattern, pattern)
	}
	query = query.Session(&gorm.Session{})

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count job postings: %w", err)
	}

	var jobs []models.JobPosting
	err := query.
		Preload("Recruiter", publicRecruiterColumns).
		Order("created_at DESC").
		Offset((filter.Page - 1) * filter.Limit).
		Limit(filter.Limit).
		Find(&jobs).Error
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list public job postings: %w", err)
	}

	return jobs, total, nil
}

func (r *jobPostingRepository) Update(ctx context.Context, id uuid.UUID, updates map[string]interface{}) error {
	updates["updated_at"] = time.Now()

	result := r.db.WithContext(ctx).Model(&models.JobPosting{}).
		Where("id = ?", id).
		Updates(updates)
	if result.Error != nil {
		return fmt.Errorf("failed to update job posting: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrJobNotFound
	}
	return nil
}

// Delete removes the posting. Applicants keep their records with the job
// reference cleared.
func (r *jobPostingRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.Applicant{}).
			Where("job_posting_id = ?", id).
			Update("job_posting_id", nil).Error; err != nil {
			return fmt.Errorf("failed to detach applicants: %w", err)
		}

		result := tx.Where("id = ?", id).Delete(&models.JobPosting{})
		if result.Error != nil {
			return fmt.Errorf("failed to delete job posting: %w", result.Error)
		}
		if result.RowsAffected == 0 {
			return ErrJobNotFound
		}
		return nil
	})
}

func (r *jobPostingRepository) Stats(ctx context.Context, recruiterID uuid.UUID) (*models.JobStats, error) {
	var rows []struct {
		Status models.JobStatus
		Count  int64
	}
	err := r.db.WithContext(ctx).Model(&models.JobPosting{}).
		Select("status, COUNT(*) AS count").
		Where("recruiter_id = ?", recruiterID).
		Group("status").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to count job postings: %w", err)
	}

	stats := &models.JobStats{ByStatus: make(map[models.JobStatus]int64, len(rows))}
	for _, row := range rows {
		stats.ByStatus[row.Status] = row.Count
		stats.TotalJobs += row.Count
	}
	stats.ActiveJobs = stats.ByStatus[models.JobStatusActive]

	err = r.db.WithContext(ctx).Model(&models.Applicant{}).
		Joins("JOIN job_postings ON job_postings.id = applicants.job_posting_id").
		Where("job_postings.recruiter_id = ?", recruiterID).
		Count(&stats.TotalApplicants).Error
	if err != nil {
		return nil, fmt.Errorf("failed to count applicants: %w", err)
	}

	return stats, nil
}

func (r *jobPostingRepository) ActiveDepartments(ctx context.Context) ([]string, error) {
	return r.distinctActive(ctx, "department")
}

func (r *jobPostingRepository) ActiveLocations(ctx context.Context) ([]string, error) {
	return r.distinctActive(ctx, "location")
}

func (r *jobPostingRepository) distinctActive(ctx context.Context, column string) ([]string, error) {
	values := []string{}
	err := r.db.WithContext(ctx).Model(&models.JobPosting{}).
		Where("status = ?", models.JobStatusActive).
		Where(fmt.Sprintf("%s IS NOT NULL AND %s <> ''", column, column)).
		Distinct(column).
		Order(column).
		Pluck(column, &values).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list %s values: %w", column, err)
	}
	return values, nil
}

func publicRecruiterColumns(db *gorm.DB) *gorm.DB {
	return db.Select("id", "full_name", "company_name")
}

func likePattern(s string) string {
	return "%" + strings.ToLower(strings.TrimSpace(s)) + "%"
}
