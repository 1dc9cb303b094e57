package repositories

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"alfredoptarigan/ats-backend/internal/models"
)

// HighMatchThreshold is the relevancy score at which an applicant counts as a
// strong match for a job.
const HighMatchThreshold = 70

type ApplicantFilter struct {
	SortBy       string
	Order        string
	Status       models.ApplicantStatus
	JobPostingID *uuid.UUID
}

type ApplicantUpdate struct {
	Status        *models.ApplicantStatus
	Notes         *string
	PriorityScore *int
}

func (u ApplicantUpdate) IsEmpty() bool {
	return u.Status == nil && u.Notes == nil && u.PriorityScore == nil
}

type ApplicantRepository interface {
	Create(ctx context.Context, applicant *models.Applicant) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.Applicant, error)
	FindByIDs(ctx context.Context, ids []uuid.UUID) ([]models.Applicant, error)
	List(ctx context.Context, filter ApplicantFilter) ([]models.Applicant, error)
	Update(ctx context.Context, id uuid.UUID, update ApplicantUpdate) error
	Delete(ctx context.Context, id uuid.UUID) error
	Stats(ctx context.Context) (*models.ApplicantStats, error)
	JobStats(ctx context.Context, jobID uuid.UUID) (*models.JobApplicantStats, error)
	UpdateIndexStatus(ctx context.Context, id uuid.UUID, status models.IndexStatus) error
	FindPendingIndex(ctx context.Context, limit int) ([]models.Applicant, error)
	ResetIndexStatus(ctx context.Context) (int64, error)
}

var applicantSortColumns = map[string]string{
	"priorityScore":       "priority_score",
	"priority_score":      "priority_score",
	"createdAt":           "created_at",
	"created_at":          "created_at",
	"jobRelevancyScore":   "job_relevancy_score",
	"job_relevancy_score": "job_relevancy_score",
}

type applicantRepository struct {
	db *gorm.DB
}

func NewApplicantRepository(db *gorm.DB) ApplicantRepository {
	return &applicantRepository{db: db}
}

func (r *applicantRepository) Create(ctx context.Context, applicant *models.Applicant) error {
	if err := r.db.WithContext(ctx).Create(applicant).Error; err != nil {
		return fmt.Errorf("failed to create applicant: %w", err)
	}
	return nil
}

func (r *applicantRepository) FindByID(ctx context.Context, id uuid.UUID) (*models.Applicant, error) {
	var applicant models.Applicant
	err := r.db.WithContext(ctx).
		Preload("JobPosting").
		Where("id = ?", id).
		First(&applicant).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrApplicantNotFound
		}
		return nil, fmt.Errorf("failed to find applicant: %w", err)
	}
	return &applicant, nil
}

func (r *applicantRepository) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]models.Applicant, error) {
	var applicants []models.Applicant
	if len(ids) == 0 {
		return applicants, nil
	}
	if err := r.db.WithContext(ctx).Preload("JobPosting").Where("id IN ?", ids).Find(&applicants).Error; err != nil {
		return nil, fmt.Errorf("failed to find applicants: %w", err)
	}
	return applicants, nil
}

func (r *applicantRepository) List(ctx context.Context, filter ApplicantFilter) ([]models.Applicant, error) {
	defaultSort := "priority_score"
	query := r.db.WithContext(ctx).Model(&models.Applicant{}).Preload("JobPosting")

	if filter.JobPostingID != nil {
		defaultSort = "job_relevancy_score"
		query = query.Where("job_posting_id = ?", *filter.JobPostingID)
	}
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}

	column, ok := applicantSortColumns[filter.SortBy]
	if !ok || (column == "job_relevancy_score" && filter.JobPostingID == nil) {
		column = defaultSort
	}

	var applicants []models.Applicant
	err := query.
		Order(fmt.Sprintf("%s %s", column, sortDirection(filter.Order))).
		Order("created_at DESC").
		Find(&applicants).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list applicants: %w", err)
	}

	return applicants, nil
}

func (r *applicantRepository) Update(ctx context.Context, id uuid.UUID, update ApplicantUpdate) error {
	updates := map[string]interface{}{
		"updated_at": time.Now(),
	}
	if update.Status != nil {
		updates["status"] = *update.Status
	}
	if update.Notes != nil {
		updates["notes"] = *update.Notes
	}
	if update.PriorityScore != nil {
		updates["priority_score"] = *update.PriorityScore
	}

	result := r.db.WithContext(ctx).Model(&models.Applicant{}).
		Where("id = ?", id).
		Updates(updates)
	if result.Error != nil {
		return fmt.Errorf("failed to update applicant: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrApplicantNotFound
	}

	return nil
}

func (r *applicantRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Where("id = ?", id).Delete(&models.Applicant{})
	if result.Error != nil {
		return fmt.Errorf("failed to delete applicant: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrApplicantNotFound
	}
	return nil
}

type statusCount struct {
	Status models.ApplicantStatus
	Count  int64
}

func (r *applicantRepository) countByStatus(ctx context.Context, jobID *uuid.UUID) (map[models.ApplicantStatus]int64, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.Applicant{}).
		Select("status, COUNT(*) AS count")
	if jobID != nil {
		query = query.Where("job_posting_id = ?", *jobID)
	}

	var rows []statusCount
	if err := query.Group("status").Scan(&rows).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count applicants by status: %w", err)
	}

	byStatus := make(map[models.ApplicantStatus]int64, len(rows))
	var total int64
	for _, row := range rows {
		byStatus[row.Status] = row.Count
		total += row.Count
	}

	return byStatus, total, nil
}

func (r *applicantRepository) Stats(ctx context.Context) (*models.ApplicantStats, error) {
	byStatus, total, err := r.countByStatus(ctx, nil)
	if err != nil {
		return nil, err
	}

	var row struct {
		Avg *float64
	}
	err = r.db.WithContext(ctx).Model(&models.Applicant{}).
		Select("AVG(priority_score) AS avg").
		Scan(&row).Error
	if err != nil {
		return nil, fmt.Errorf("failed to average priority score: %w", err)
	}

	return &models.ApplicantStats{
		Total:    total,
		ByStatus: byStatus,
		AvgScore: roundOneDecimal(row.Avg),
	}, nil
}

func (r *applicantRepository) JobStats(ctx context.Context, jobID uuid.UUID) (*models.JobApplicantStats, error) {
	byStatus, total, err := r.countByStatus(ctx, &jobID)
	if err != nil {
		return nil, err
	}

	var row struct {
		Avg         *float64
		HighMatches int64
	}
	err = r.db.WithContext(ctx).Model(&models.Applicant{}).
		Select(
			"AVG(COALESCE(job_relevancy_score, 0)) AS avg, "+
				"COALESCE(SUM(CASE WHEN job_relevancy_score >= ? THEN 1 ELSE 0 END), 0) AS high_matches",
			HighMatchThreshold,
		).
		Where("job_posting_id = ?", jobID).
		Scan(&row).Error
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate job applicants: %w", err)
	}

	return &models.JobApplicantStats{
		Total:             total,
		ByStatus:          byStatus,
		AvgRelevancyScore: roundOneDecimal(row.Avg),
		HighMatches:       row.HighMatches,
	}, nil
}

func (r *applicantRepository) UpdateIndexStatus(ctx context.Context, id uuid.UUID, status models.IndexStatus) error {
	result := r.db.WithContext(ctx).Model(&models.Applicant{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"index_status": status,
			"updated_at":   time.Now(),
		})
	if result.Error != nil {
		return fmt.Errorf("failed to update index status: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrApplicantNotFound
	}
	return nil
}

func (r *applicantRepository) FindPendingIndex(ctx context.Context, limit int) ([]models.Applicant, error) {
	var applicants []models.Applicant
	err := r.db.WithContext(ctx).
		Where("index_status = ?", models.IndexStatusPending).
		Order("created_at ASC").
		Limit(limit).
		Find(&applicants).Error
	if err != nil {
		return nil, fmt.Errorf("failed to find pending applicants: %w", err)
	}
	return applicants, nil
}

// ResetIndexStatus marks every applicant as pending so the index worker
// rebuilds their embeddings.
func (r *applicantRepository) ResetIndexStatus(ctx context.Context) (int64, error) {
	result := r.db.WithContext(ctx).Model(&models.Applicant{}).
		Where("1 = 1").
		Update("index_status", models.IndexStatusPending)
	if result.Error != nil {
		return 0, fmt.Errorf("failed to reset index status: %w", result.Error)
	}
	return result.RowsAffected, nil
}

func roundOneDecimal(v *float64) float64 {
	if v == nil {
		return 0
	}
	return math.Round(*v*10) / 10
}
