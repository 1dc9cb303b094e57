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

type RecruiterRepository interface {
	Create(ctx context.Context, recruiter *models.Recruiter) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.Recruiter, error)
	FindByEmail(ctx context.Context, email string) (*models.Recruiter, error)
	Update(ctx context.Context, id uuid.UUID, updates map[string]interface{}) error
}

type recruiterRepository struct {
	db *gorm.DB
}

func NewRecruiterRepository(db *gorm.DB) RecruiterRepository {
	return &recruiterRepository{db: db}
}

func (r *recruiterRepository) Create(ctx context.Context, recruiter *models.Recruiter) error {
	if err := r.db.WithContext(ctx).Create(recruiter).Error; err != nil {
		return fmt.Errorf("failed to create recruiter: %w", err)
	}
	return nil
}

func (r *recruiterRepository) FindByID(ctx context.Context, id uuid.UUID) (*models.Recruiter, error) {
	var recruiter models.Recruiter
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&recruiter).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRecruiterNotFound
		}
		return nil, fmt.Errorf("failed to find recruiter: %w", err)
	}
	return &recruiter, nil
}

// FindByEmail matches case-insensitively; emails are stored lower-cased.
func (r *recruiterRepository) FindByEmail(ctx context.Context, email string) (*models.Recruiter, error) {
	var recruiter models.Recruiter
	err := r.db.WithContext(ctx).
		Where("email = ?", strings.ToLower(strings.TrimSpace(email))).
		First(&recruiter).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRecruiterNotFound
		}
		return nil, fmt.Errorf("failed to find recruiter: %w", err)
	}
	return &recruiter, nil
}

func (r *recruiterRepository) Update(ctx context.Context, id uuid.UUID, updates map[string]interface{}) error {
	updates["updated_at"] = time.Now()

	result := r.db.WithContext(ctx).Model(&models.Recruiter{}).
		Where("id = ?", id).
		Updates(updates)
	if result.Error != nil {
		return fmt.Errorf("failed to update recruiter: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrRecruiterNotFound
	}
	return nil
}
