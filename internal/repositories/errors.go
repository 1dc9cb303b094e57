package repositories

import "errors"

var (
	ErrApplicantNotFound = errors.New("applicant not found")
	ErrJobNotFound       = errors.New("job posting not found")
	ErrRecruiterNotFound = errors.New("recruiter not found")
)

func sortDirection(order string) string {
	if order == "asc" {
		return "ASC"
	}
	return "DESC"
}
