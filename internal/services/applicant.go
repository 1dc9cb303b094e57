package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"

	"github.com/google/uuid"

	"alfredoptarigan/ats-backend/internal/models"
	"alfredoptarigan/ats-backend/internal/repositories"
)

var (
	ErrJobNotActive   = errors.New("job posting is not accepting applications")
	ErrResumeNotFound = errors.New("resume file not found")
)

// UploadInput is a resume as received from the client.
type UploadInput struct {
	FileName    string
	ContentType string
	Size        int64
	Content     io.Reader
}

type ResumeDownload struct {
	Content  io.ReadCloser
	FileName string
	MIMEType string
}

type ApplicantService interface {
	Upload(ctx context.Context, input UploadInput) (*models.Applicant, error)
	Apply(ctx context.Context, jobID uuid.UUID, input UploadInput) (*models.Applicant, error)
	List(ctx context.Context, filter repositories.ApplicantFilter) ([]models.Applicant, error)
	ListByJob(ctx context.Context, recruiterID, jobID uuid.UUID, filter repositories.ApplicantFilter) ([]models.Applicant, error)
	Get(ctx context.Context, id uuid.UUID) (*models.Applicant, error)
	Update(ctx context.Context, id uuid.UUID, req models.UpdateApplicantRequest) (*models.Applicant, error)
	Delete(ctx context.Context, id uuid.UUID) error
	Stats(ctx context.Context) (*models.ApplicantStats, error)
	JobStats(ctx context.Context, recruiterID, jobID uuid.UUID) (*models.JobApplicantStats, error)
	OpenResume(ctx context.Context, id uuid.UUID) (*ResumeDownload, error)
}

type applicantService struct {
	applicantRepo repositories.ApplicantRepository
	jobRepo       repositories.JobPostingRepository
	storage       StorageService
	extractor     TextExtractor
	analyzer      ResumeAnalyzer
	indexer       ApplicantIndexer
}

func NewApplicantService(
	applicantRepo repositories.ApplicantRepository,
	jobRepo repositories.JobPostingRepository,
	storage StorageService,
	extractor TextExtractor,
	analyzer ResumeAnalyzer,
	indexer ApplicantIndexer,
) ApplicantService {
	return &applicantService{
		applicantRepo: applicantRepo,
		jobRepo:       jobRepo,
		storage:       storage,
		extractor:     extractor,
		analyzer:      analyzer,
		indexer:       indexer,
	}
}

// Upload stores and analyzes a resume, then creates the applicant. The file
// is removed again if any later step fails.
func (s *applicantService) Upload(ctx context.Context, input UploadInput) (*models.Applicant, error) {
	return s.create(ctx, input, nil)
}

// Apply is Upload for a public application to an active job posting, scored
// against that posting.
func (s *applicantService) Apply(ctx context.Context, jobID uuid.UUID, input UploadInput) (*models.Applicant, error) {
	job, err := s.jobRepo.FindActiveByID(ctx, jobID)
	if errors.Is(err, repositories.ErrJobNotFound) {
		return nil, ErrJobNotActive
	}
	if err != nil {
		return nil, err
	}

	return s.create(ctx, input, job)
}

func (s *applicantService) create(ctx context.Context, input UploadInput, job *models.JobPosting) (*models.Applicant, error) {
	mimeType, err := s.storage.ResolveMIMEType(input.FileName, input.ContentType, input.Size)
	if err != nil {
		return nil, err
	}

	filePath, err := s.storage.Save(input.Content, mimeType)
	if err != nil {
		return nil, err
	}
	log.Printf("📁 Resume saved to %s\n", filePath)

	applicant, err := s.analyze(ctx, filePath, mimeType, job)
	if err != nil {
		s.removeFile(filePath)
		return nil, err
	}

	applicant.ResumeFileName = filepath.Base(input.FileName)
	if !s.indexer.Enabled() {
		applicant.IndexStatus = models.IndexStatusSkipped
	}

	if err := s.applicantRepo.Create(ctx, applicant); err != nil {
		s.removeFile(filePath)
		return nil, err
	}

	log.Printf("✅ Applicant %s created (score %d)\n", applicant.ID, applicant.PriorityScore)

	if s.indexer.Enabled() {
		s.indexer.Enqueue(applicant.ID)
	}

	return applicant, nil
}

func (s *applicantService) analyze(ctx context.Context, filePath, mimeType string, job *models.JobPosting) (*models.Applicant, error) {
	text, err := s.extractor.ExtractText(filePath, mimeType)
	if err != nil {
		log.Printf("⚠️  Text extraction failed for %s: %v\n", filePath, err)
		text = ""
	}

	file := ResumeFile{Path: filePath, MIMEType: mimeType, Text: text}
	applicant := &models.Applicant{
		ResumeFilePath: filePath,
		ResumeMimeType: mimeType,
		ResumeText:     text,
	}

	if job == nil {
		result, err := s.analyzer.AnalyzeResume(ctx, file)
		if err != nil {
			return nil, err
		}
		applicant.ApplyAnalysis(result)
		return applicant, nil
	}

	result, err := s.analyzer.AnalyzeResumeForJob(ctx, file, job)
	if err != nil {
		return nil, err
	}
	applicant.ApplyJobMatch(result)
	applicant.JobPostingID = &job.ID
	return applicant, nil
}

func (s *applicantService) removeFile(filePath string) {
	if err := s.storage.Delete(filePath); err != nil {
		log.Printf("⚠️  Failed to remove resume %s: %v\n", filePath, err)
	}
}

func (s *applicantService) List(ctx context.Context, filter repositories.ApplicantFilter) ([]models.Applicant, error) {
	filter.JobPostingID = nil
	return s.applicantRepo.List(ctx, filter)
}

func (s *applicantService) ListByJob(ctx context.Context, recruiterID, jobID uuid.UUID, filter repositories.ApplicantFilter) ([]models.Applicant, error) {
	if err := s.checkJobOwner(ctx, recruiterID, jobID); err != nil {
		return nil, err
	}

	filter.JobPostingID = &jobID
	return s.applicantRepo.List(ctx, filter)
}

func (s *applicantService) JobStats(ctx context.Context, recruiterID, jobID uuid.UUID) (*models.JobApplicantStats, error) {
	if err := s.checkJobOwner(ctx, recruiterID, jobID); err != nil {
		return nil, err
	}

	return s.applicantRepo.JobStats(ctx, jobID)
}

func (s *applicantService) checkJobOwner(ctx context.Context, recruiterID, jobID uuid.UUID) error {
	job, err := s.jobRepo.FindByID(ctx, jobID)
	if err != nil {
		return err
	}
	if job.RecruiterID != recruiterID {
		return ErrJobForbidden
	}
	return nil
}

func (s *applicantService) Get(ctx context.Context, id uuid.UUID) (*models.Applicant, error) {
	return s.applicantRepo.FindByID(ctx, id)
}

// Update changes only the recruiter-managed fields. Analysis output stays as
// it was produced, apart from a manual priority score override.
func (s *applicantService) Update(ctx context.Context, id uuid.UUID, req models.UpdateApplicantRequest) (*models.Applicant, error) {
	update := repositories.ApplicantUpdate{
		Status:        req.Status,
		Notes:         req.Notes,
		PriorityScore: req.PriorityScore,
	}

	if !update.IsEmpty() {
		if err := s.applicantRepo.Update(ctx, id, update); err != nil {
			return nil, err
		}
	}

	return s.applicantRepo.FindByID(ctx, id)
}

func (s *applicantService) Delete(ctx context.Context, id uuid.UUID) error {
	applicant, err := s.applicantRepo.FindByID(ctx, id)
	if err != nil {
		return err
	}

	if err := s.applicantRepo.Delete(ctx, id); err != nil {
		return err
	}

	s.removeFile(applicant.ResumeFilePath)

	if s.indexer.Enabled() {
		if err := s.indexer.Remove(ctx, id); err != nil {
			log.Printf("⚠️  Failed to remove applicant %s from search index: %v\n", id, err)
		}
	}

	log.Printf("🗑️  Applicant %s deleted\n", id)
	return nil
}

func (s *applicantService) Stats(ctx context.Context) (*models.ApplicantStats, error) {
	return s.applicantRepo.Stats(ctx)
}

func (s *applicantService) OpenResume(ctx context.Context, id uuid.UUID) (*ResumeDownload, error) {
	applicant, err := s.applicantRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	content, err := s.storage.Open(applicant.ResumeFilePath)
	if errors.Is(err, os.ErrNotExist) {
		return nil, ErrResumeNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to open resume: %w", err)
	}

	mimeType := applicant.ResumeMimeType
	if mimeType == "" {
		mimeType = MIMETypeForPath(applicant.ResumeFilePath)
	}

	return &ResumeDownload{
		Content:  content,
		FileName: applicant.ResumeFileName,
		MIMEType: mimeType,
	}, nil
}
