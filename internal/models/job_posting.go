package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type JobStatus string

const (
	JobStatusDraft  JobStatus = "draft"
	JobStatusActive JobStatus = "active"
	JobStatusClosed JobStatus = "closed"
)

var JobStatuses = []JobStatus{JobStatusDraft, JobStatusActive, JobStatusClosed}

type EmploymentType string

const (
	EmploymentFullTime   EmploymentType = "full-time"
	EmploymentPartTime   EmploymentType = "part-time"
	EmploymentContract   EmploymentType = "contract"
	EmploymentInternship EmploymentType = "internship"
)

var EmploymentTypes = []EmploymentType{
	EmploymentFullTime,
	EmploymentPartTime,
	EmploymentContract,
	EmploymentInternship,
}

type JobPosting struct {
	ID             uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	RecruiterID    uuid.UUID      `gorm:"type:uuid;not null;index" json:"recruiterId"`
	Title          string         `gorm:"type:varchar(200);not null" json:"title"`
	Department     *string        `gorm:"type:varchar(100);index" json:"department"`
	Description    *string        `gorm:"type:text" json:"description"`
	Requirements   *string        `gorm:"type:text" json:"requirements"`
	Location       *string        `gorm:"type:varchar(200);index" json:"location"`
	EmploymentType EmploymentType `gorm:"type:varchar(20);not null;default:'full-time'" json:"employmentType"`
	SalaryRange    *string        `gorm:"type:varchar(100)" json:"salaryRange"`
	Status         JobStatus      `gorm:"type:varchar(20);not null;default:'draft';index" json:"status"`
	CreatedAt      time.Time      `gorm:"index" json:"createdAt"`
	UpdatedAt      time.Time      `json:"updatedAt"`

	// Filled by recruiter queries only; public board responses omit it.
	ApplicantCount *int64 `gorm:"->;-:migration" json:"applicantCount,omitempty"`

	Recruiter *Recruiter `gorm:"foreignKey:RecruiterID;constraint:OnDelete:CASCADE" json:"recruiter,omitempty"`
}

func (JobPosting) TableName() string {
	return "job_postings"
}

func (j *JobPosting) BeforeCreate(tx *gorm.DB) error {
	if j.ID == uuid.Nil {
		j.ID = uuid.New()
	}
	if j.Status == "" {
		j.Status = JobStatusDraft
	}
	if j.EmploymentType == "" {
		j.EmploymentType = EmploymentFullTime
	}
	return nil
}

func (j *JobPosting) IsActive() bool {
	return j.Status == JobStatusActive
}
