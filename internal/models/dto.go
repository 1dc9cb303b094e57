package models

type SignupRequest struct {
	Email       string  `json:"email" validate:"required,email"`
	Password    string  `json:"password" validate:"required,min=8"`
	FullName    string  `json:"fullName" validate:"required,min=2,max=100"`
	CompanyName *string `json:"companyName" validate:"omitempty,max=200"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type UpdateProfileRequest struct {
	FullName    *string `json:"fullName" validate:"omitempty,min=2,max=100"`
	CompanyName *string `json:"companyName" validate:"omitempty,max=200"`
}

type AuthResponse struct {
	Recruiter *Recruiter `json:"recruiter"`
	Token     string     `json:"token"`
}

type UpdateApplicantRequest struct {
	Status        *ApplicantStatus `json:"status" validate:"omitempty,oneof=new reviewed shortlisted rejected hired"`
	Notes         *string          `json:"notes"`
	PriorityScore *int             `json:"priorityScore" validate:"omitempty,min=0,max=100"`
}

type CreateJobRequest struct {
	Title          string         `json:"title" validate:"required,min=3,max=200"`
	Department     *string        `json:"department" validate:"omitempty,max=100"`
	Description    *string        `json:"description"`
	Requirements   *string        `json:"requirements"`
	Location       *string        `json:"location" validate:"omitempty,max=200"`
	EmploymentType EmploymentType `json:"employmentType" validate:"omitempty,oneof=full-time part-time contract internship"`
	SalaryRange    *string        `json:"salaryRange" validate:"omitempty,max=100"`
	Status         JobStatus      `json:"status" validate:"omitempty,oneof=draft active closed"`
}

type UpdateJobRequest struct {
	Title          *string         `json:"title" validate:"omitempty,min=3,max=200"`
	Department     *string         `json:"department" validate:"omitempty,max=100"`
	Description    *string         `json:"description"`
	Requirements   *string         `json:"requirements"`
	Location       *string         `json:"location" validate:"omitempty,max=200"`
	EmploymentType *EmploymentType `json:"employmentType" validate:"omitempty,oneof=full-time part-time contract internship"`
	SalaryRange    *string         `json:"salaryRange" validate:"omitempty,max=100"`
	Status         *JobStatus      `json:"status" validate:"omitempty,oneof=draft active closed"`
}

type ApplicantStats struct {
	Total    int64                     `json:"total"`
	ByStatus map[ApplicantStatus]int64 `json:"byStatus"`
	AvgScore float64                   `json:"avgScore"`
}

type JobApplicantStats struct {
	Total             int64                     `json:"total"`
	ByStatus          map[ApplicantStatus]int64 `json:"byStatus"`
	AvgRelevancyScore float64                   `json:"avgRelevancyScore"`
	HighMatches       int64                     `json:"highMatches"`
}

type JobStats struct {
	TotalJobs       int64               `json:"totalJobs"`
	ActiveJobs      int64               `json:"activeJobs"`
	TotalApplicants int64               `json:"totalApplicants"`
	ByStatus        map[JobStatus]int64 `json:"byStatus"`
}

type JobFilters struct {
	Departments     []string         `json:"departments"`
	Locations       []string         `json:"locations"`
	EmploymentTypes []EmploymentType `json:"employmentTypes"`
}

type Pagination struct {
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	Total      int64 `json:"total"`
	TotalPages int   `json:"totalPages"`
}

func NewPagination(page, limit int, total int64) Pagination {
	totalPages := 0
	if limit > 0 {
		totalPages = int((total + int64(limit) - 1) / int64(limit))
	}
	return Pagination{Page: page, Limit: limit, Total: total, TotalPages: totalPages}
}

// SearchHit is an applicant matched by semantic search.
type SearchHit struct {
	Applicant *Applicant `json:"applicant"`
	Score     float32    `json:"score"`
	Snippet   string     `json:"snippet"`
}
