package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"alfredoptarigan/ats-backend/internal/models"
	"alfredoptarigan/ats-backend/internal/repositories"
)

const (
	DefaultSearchLimit = 10
	MaxSearchLimit     = 50

	// chunks fetched per requested applicant, since one applicant owns many
	chunksPerApplicant = 5
)

var (
	ErrSearchDisabled   = errors.New("semantic search is not configured")
	ErrEmptySearchQuery = errors.New("search query is required")
)

type SearchService interface {
	Search(ctx context.Context, query string, jobID *uuid.UUID, limit int) ([]models.SearchHit, error)
}

type searchService struct {
	embedder      EmbeddingService
	vectors       QdrantService
	applicantRepo repositories.ApplicantRepository
}

// NewSearchService returns a service that answers ErrSearchDisabled when
// either the embedder or the vector store is missing.
func NewSearchService(embedder EmbeddingService, vectors QdrantService, applicantRepo repositories.ApplicantRepository) SearchService {
	return &searchService{
		embedder:      embedder,
		vectors:       vectors,
		applicantRepo: applicantRepo,
	}
}

func (s *searchService) Search(ctx context.Context, query string, jobID *uuid.UUID, limit int) ([]models.SearchHit, error) {
	if s.embedder == nil || s.vectors == nil {
		return nil, ErrSearchDisabled
	}

	query = strings.TrimSpace(query)
	if query == "" {
		return nil, ErrEmptySearchQuery
	}

	if limit <= 0 {
		limit = DefaultSearchLimit
	}
	if limit > MaxSearchLimit {
		limit = MaxSearchLimit
	}

	embedding, err := s.embedder.GenerateEmbedding(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to embed query: %w", err)
	}

	matches, err := s.vectors.Search(ctx, embedding, jobID, limit*chunksPerApplicant)
	if err != nil {
		return nil, err
	}

	// Matches arrive best first, so the first hit per applicant is its best.
	var ids []uuid.UUID
	best := make(map[uuid.UUID]VectorMatch)
	for _, match := range matches {
		if _, seen := best[match.ApplicantID]; seen {
			continue
		}
		best[match.ApplicantID] = match
		ids = append(ids, match.ApplicantID)
		if len(ids) == limit {
			break
		}
	}

	applicants, err := s.applicantRepo.FindByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}

	byID := make(map[uuid.UUID]*models.Applicant, len(applicants))
	for i := range applicants {
		byID[applicants[i].ID] = &applicants[i]
	}

	hits := make([]models.SearchHit, 0, len(ids))
	for _, id := range ids {
		applicant, ok := byID[id]
		if !ok {
			// deleted since it was indexed
			continue
		}
		hits = append(hits, models.SearchHit{
			Applicant: applicant,
			Score:     best[id].Score,
			Snippet:   snippet(best[id].Text, 240),
		})
	}

	return hits, nil
}

func snippet(text string, max int) string {
	text = strings.Join(strings.Fields(text), " ")
	runes := []rune(text)
	if len(runes) <= max {
		return text
	}
	return string(runes[:max]) + "..."
}
