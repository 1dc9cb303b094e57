package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"alfredoptarigan/ats-backend/internal/analysis"
)

type ApplicantStatus string

const (
	ApplicantStatusNew         ApplicantStatus = "new"
	ApplicantStatusReviewed    ApplicantStatus = "reviewed"
	ApplicantStatusShortlisted ApplicantStatus = "shortlisted"
	ApplicantStatusRejected    ApplicantStatus = "rejected"
	ApplicantStatusHired       ApplicantStatus = "hired"
)

var ApplicantStatuses = []ApplicantStatus{
	ApplicantStatusNew,
	ApplicantStatusReviewed,
	ApplicantStatusShortlisted,
	ApplicantStatusRejected,
	ApplicantStatusHired,
}

func (s ApplicantStatus) Valid() bool {
	for _, status := range ApplicantStatuses {
		if s == status {
			return true
		}
	}
	return false
}

// IndexStatus tracks an applicant's embeddings in the vector store.
type IndexStatus string

const (
	IndexStatusPending IndexStatus = "pending"
	IndexStatusIndexed IndexStatus = "indexed"
	IndexStatusFailed  IndexStatus = "failed"
	IndexStatusSkipped IndexStatus = "skipped"
)

type Applicant struct {
	ID           uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	JobPostingID *uuid.UUID `gorm:"type:uuid;index" json:"jobPostingId"`

	Name  string  `gorm:"type:text;not null" json:"name"`
	Email string  `gorm:"type:text;not null;index" json:"email"`
	Phone *string `gorm:"type:text" json:"phone"`

	ResumeFilePath string `gorm:"type:text;not null" json:"-"`
	ResumeFileName string `gorm:"type:text" json:"resumeFileName"`
	ResumeMimeType string `gorm:"type:text" json:"resumeMimeType"`
	ResumeText     string `gorm:"type:text" json:"-"`

	// Analysis fields are written once at creation. Only PriorityScore can be
	// overridden later by a recruiter.
	PriorityScore int                         `gorm:"not null;default:50;index" json:"priorityScore"`
	Summary       string                      `gorm:"type:text" json:"summary"`
	KeySkills     datatypes.JSONSlice[string] `gorm:"not null" json:"keySkills"`
	Experience    string                      `gorm:"type:text" json:"experience"`
	Education     string                      `gorm:"type:text" json:"education"`
	Highlights    datatypes.JSONSlice[string] `gorm:"not null" json:"highlights"`
	Concerns      datatypes.JSONSlice[string] `gorm:"not null" json:"concerns"`

	JobRelevancyScore *int                        `gorm:"index" json:"jobRelevancyScore,omitempty"`
	JobMatchSummary   *string                     `gorm:"type:text" json:"jobMatchSummary,omitempty"`
	SkillMatches      datatypes.JSONSlice[string] `gorm:"not null" json:"skillMatches"`
	SkillGaps         datatypes.JSONSlice[string] `gorm:"not null" json:"skillGaps"`

	Status      ApplicantStatus `gorm:"type:varchar(20);not null;default:'new';index" json:"status"`
	Notes       *string         `gorm:"type:text" json:"notes"`
	IndexStatus IndexStatus     `gorm:"type:varchar(20);not null;default:'pending';index" json:"indexStatus"`

	CreatedAt time.Time `gorm:"index" json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`

	JobPosting *JobPosting `gorm:"foreignKey:JobPostingID;constraint:OnDelete:SET NULL" json:"jobPosting,omitempty"`
}

func (Applicant) TableName() string {
	return "applicants"
}

func (a *Applicant) BeforeCreate(tx *gorm.DB) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	if a.Status == "" {
		a.Status = ApplicantStatusNew
	}
	if a.IndexStatus == "" {
		a.IndexStatus = IndexStatusPending
	}
	a.KeySkills = nonNil(a.KeySkills)
	a.Highlights = nonNil(a.Highlights)
	a.Concerns = nonNil(a.Concerns)
	a.SkillMatches = nonNil(a.SkillMatches)
	a.SkillGaps = nonNil(a.SkillGaps)
	return nil
}

// ApplyAnalysis copies a normalized analysis onto the applicant.
func (a *Applicant) ApplyAnalysis(result analysis.ResumeAnalysis) {
	a.Name = result.Name
	a.Email = result.Email
	a.Phone = result.Phone
	a.PriorityScore = result.PriorityScore
	a.Summary = result.Summary
	a.KeySkills = datatypes.NewJSONSlice(result.KeySkills)
	a.Experience = result.Experience
	a.Education = result.Education
	a.Highlights = datatypes.NewJSONSlice(result.Highlights)
	a.Concerns = datatypes.NewJSONSlice(result.Concerns)
}

// ApplyJobMatch copies a job-specific analysis onto the applicant.
func (a *Applicant) ApplyJobMatch(result analysis.JobMatchAnalysis) {
	a.ApplyAnalysis(result.ResumeAnalysis)
	score := result.JobRelevancyScore
	summary := result.JobMatchSummary
	a.JobRelevancyScore = &score
	a.JobMatchSummary = &summary
	a.SkillMatches = datatypes.NewJSONSlice(result.SkillMatches)
	a.SkillGaps = datatypes.NewJSONSlice(result.SkillGaps)
}

func nonNil(s datatypes.JSONSlice[string]) datatypes.JSONSlice[string] {
	if s == nil {
		return datatypes.JSONSlice[string]{}
	}
	return s
}
