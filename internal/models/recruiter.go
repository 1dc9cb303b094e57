package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Recruiter struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Email        string    `gorm:"type:varchar(255);not null;uniqueIndex" json:"email,omitempty"`
	PasswordHash string    `gorm:"type:text;not null" json:"-"`
	FullName     string    `gorm:"type:varchar(100);not null" json:"fullName"`
	CompanyName  *string   `gorm:"type:varchar(200)" json:"companyName"`
	IsActive     bool      `gorm:"not null;default:true" json:"isActive"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

func (Recruiter) TableName() string {
	return "recruiters"
}

func (r *Recruiter) BeforeCreate(tx *gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	return nil
}
