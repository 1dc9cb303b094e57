package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/url"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"alfredoptarigan/ats-backend/internal/models"
	"alfredoptarigan/ats-backend/internal/repositories"
)

const (
	DefaultPublicPageSize = 20
	MaxPublicPageSize     = 50

	publicJobsNamespace = "jobs:public"
)

var ErrJobForbidden = errors.New("you do not have permission to access this job")

type JobService interface {
	Create(ctx context.Context, recruiterID uuid.UUID, req models.CreateJobRequest) (*models.JobPosting, error)
	Get(ctx context.Context, recruiterID, id uuid.UUID) (*models.JobPosting, error)
	ListByRecruiter(ctx context.Context, recruiterID uuid.UUID, filter repositories.JobFilter) ([]models.JobPosting, error)
	Update(ctx context.Context, recruiterID, id uuid.UUID, req models.UpdateJobRequest) (*models.JobPosting, error)
	Delete(ctx context.Context, recruiterID, id uuid.UUID) error
	Stats(ctx context.Context, recruiterID uuid.UUID) (*models.JobStats, error)
	PublicList(ctx context.Context, filter repositories.PublicJobFilter) ([]models.JobPosting, models.Pagination, error)
	PublicGet(ctx context.Context, id uuid.UUID) (*models.JobPosting, error)
	Filters(ctx context.Context) (*models.JobFilters, error)
}

type jobService struct {
	jobRepo repositories.JobPostingRepository
	cache   CacheService
}

func NewJobService(jobRepo repositories.JobPostingRepository, cache CacheService) JobService {
	return &jobService{jobRepo: jobRepo, cache: cache}
}

func (s *jobService) Create(ctx context.Context, recruiterID uuid.UUID, req models.CreateJobRequest) (*models.JobPosting, error) {
	job := &models.JobPosting{
		RecruiterID:    recruiterID,
		Title:          strings.TrimSpace(req.Title),
		Department:     req.Department,
		Description:    req.Description,
		Requirements:   req.Requirements,
		Location:       req.Location,
		EmploymentType: req.EmploymentType,
		SalaryRange:    req.SalaryRange,
		Status:         req.Status,
	}

	if err := s.jobRepo.Create(ctx, job); err != nil {
		return nil, err
	}

	s.invalidatePublic(ctx)
	log.Printf("✅ Job posting %s created by recruiter %s\n", job.ID, recruiterID)
	return job, nil
}

// Get returns a posting owned by the recruiter.
func (s *jobService) Get(ctx context.Context, recruiterID, id uuid.UUID) (*models.JobPosting, error) {
	job, err := s.jobRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if job.RecruiterID != recruiterID {
		return nil, ErrJobForbidden
	}
	return job, nil
}

func (s *jobService) ListByRecruiter(ctx context.Context, recruiterID uuid.UUID, filter repositories.JobFilter) ([]models.JobPosting, error) {
	return s.jobRepo.ListByRecruiter(ctx, recruiterID, filter)
}

func (s *jobService) Update(ctx context.Context, recruiterID, id uuid.UUID, req models.UpdateJobRequest) (*models.JobPosting, error) {
	if _, err := s.Get(ctx, recruiterID, id); err != nil {
		return nil, err
	}

	updates := jobUpdates(req)
	if len(updates) > 0 {
		if err := s.jobRepo.Update(ctx, id, updates); err != nil {
			return nil, err
		}
		s.invalidatePublic(ctx)
	}

	return s.jobRepo.FindByID(ctx, id)
}

func jobUpdates(req models.UpdateJobRequest) map[string]interface{} {
	updates := make(map[string]interface{})
	if req.Title != nil {
		updates["title"] = strings.TrimSpace(*req.Title)
	}
	if req.Department != nil {
		updates["department"] = *req.Department
	}
	if req.Description != nil {
		updates["description"] = *req.Description
	}
	if req.Requirements != nil {
		updates["requirements"] = *req.Requirements
	}
	if req.Location != nil {
		updates["location"] = *req.Location
	}
	if req.EmploymentType != nil {
		updates["employment_type"] = *req.EmploymentType
	}
	if req.SalaryRange != nil {
		updates["salary_range"] = *req.SalaryRange
	}
	if req.Status != nil {
		updates["status"] = *req.Status
	}
	return updates
}

func (s *jobService) Delete(ctx context.Context, recruiterID, id uuid.UUID) error {
	if _, err := s.Get(ctx, recruiterID, id); err != nil {
		return err
	}

	if err := s.jobRepo.Delete(ctx, id); err != nil {
		return err
	}

	s.invalidatePublic(ctx)
	log.Printf("🗑️  Job posting %s deleted\n", id)
	return nil
}

func (s *jobService) Stats(ctx context.Context, recruiterID uuid.UUID) (*models.JobStats, error) {
	return s.jobRepo.Stats(ctx, recruiterID)
}

type publicJobPage struct {
	Jobs       []models.JobPosting `json:"jobs"`
	Pagination models.Pagination   `json:"pagination"`
}

func (s *jobService) PublicList(ctx context.Context, filter repositories.PublicJobFilter) ([]models.JobPosting, models.Pagination, error) {
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.Limit < 1 {
		filter.Limit = DefaultPublicPageSize
	}
	if filter.Limit > MaxPublicPageSize {
		filter.Limit = MaxPublicPageSize
	}

	key := s.publicKey(ctx, "list", publicListQuery(filter))

	var page publicJobPage
	if s.readCache(ctx, key, &page) {
		return page.Jobs, page.Pagination, nil
	}

	jobs, total, err := s.jobRepo.ListPublic(ctx, filter)
	if err != nil {
		return nil, models.Pagination{}, err
	}

	page = publicJobPage{Jobs: jobs, Pagination: models.NewPagination(filter.Page, filter.Limit, total)}
	s.writeCache(ctx, key, page)

	return page.Jobs, page.Pagination, nil
}

// PublicGet returns an active posting. Drafts and closed postings read as
// not found.
func (s *jobService) PublicGet(ctx context.Context, id uuid.UUID) (*models.JobPosting, error) {
	key := s.publicKey(ctx, "job", id.String())

	var job models.JobPosting
	if s.readCache(ctx, key, &job) {
		return &job, nil
	}

	found, err := s.jobRepo.FindActiveByID(ctx, id)
	if err != nil {
		return nil, err
	}

	s.writeCache(ctx, key, found)
	return found, nil
}

func (s *jobService) Filters(ctx context.Context) (*models.JobFilters, error) {
	key := s.publicKey(ctx, "filters", "")

	var filters models.JobFilters
	if s.readCache(ctx, key, &filters) {
		return &filters, nil
	}

	departments, err := s.jobRepo.ActiveDepartments(ctx)
	if err != nil {
		return nil, err
	}
	locations, err := s.jobRepo.ActiveLocations(ctx)
	if err != nil {
		return nil, err
	}

	filters = models.JobFilters{
		Departments:     departments,
		Locations:       locations,
		EmploymentTypes: models.EmploymentTypes,
	}
	s.writeCache(ctx, key, filters)

	return &filters, nil
}

func publicListQuery(filter repositories.PublicJobFilter) string {
	values := url.Values{}
	values.Set("search", strings.ToLower(strings.TrimSpace(filter.Search)))
	values.Set("department", filter.Department)
	values.Set("location", strings.ToLower(strings.TrimSpace(filter.Location)))
	values.Set("type", string(filter.EmploymentType))
	values.Set("page", strconv.Itoa(filter.Page))
	values.Set("limit", strconv.Itoa(filter.Limit))
	return values.Encode()
}

// Cache failures are logged and otherwise ignored; the database stays the
// source of truth.

func (s *jobService) publicKey(ctx context.Context, kind, suffix string) string {
	gen, err := s.cache.Generation(ctx, publicJobsNamespace)
	if err != nil {
		log.Printf("⚠️  Cache generation unavailable: %v\n", err)
	}
	return fmt.Sprintf("%s:%d:%s:%s", publicJobsNamespace, gen, kind, suffix)
}

func (s *jobService) readCache(ctx context.Context, key string, dest interface{}) bool {
	hit, err := s.cache.GetJSON(ctx, key, dest)
	if err != nil {
		log.Printf("⚠️  Cache read failed: %v\n", err)
		return false
	}
	return hit
}

func (s *jobService) writeCache(ctx context.Context, key string, value interface{}) {
	if err := s.cache.SetJSON(ctx, key, value); err != nil {
		log.Printf("⚠️  Cache write failed: %v\n", err)
	}
}

func (s *jobService) invalidatePublic(ctx context.Context) {
	if err := s.cache.Bump(ctx, publicJobsNamespace); err != nil {
		log.Printf("⚠️  Cache invalidation failed: %v\n", err)
	}
}
