package services

import (
	"context"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"alfredoptarigan/ats-backend/internal/models"
	"alfredoptarigan/ats-backend/internal/repositories"
)

const pendingBatchSize = 10

// ApplicantIndexer keeps the semantic-search index in step with applicants.
type ApplicantIndexer interface {
	Enabled() bool
	Enqueue(applicantID uuid.UUID)
	Remove(ctx context.Context, applicantID uuid.UUID) error
}

type IndexWorker interface {
	ApplicantIndexer
	Start(ctx context.Context)
	Stop()
	IndexApplicant(ctx context.Context, applicantID uuid.UUID) error
}

type indexWorker struct {
	applicantRepo repositories.ApplicantRepository
	embedder      EmbeddingService
	vectors       QdrantService
	chunker       TextChunker
	queue         chan uuid.UUID
	inFlight      sync.Map
	concurrency   int
	pollInterval  time.Duration
	wg            sync.WaitGroup
	stopChan      chan struct{}
	stopOnce      sync.Once
}

func NewIndexWorker(
	applicantRepo repositories.ApplicantRepository,
	embedder EmbeddingService,
	vectors QdrantService,
	chunker TextChunker,
	concurrency int,
	pollInterval time.Duration,
) IndexWorker {
	if concurrency < 1 {
		concurrency = 1
	}
	return &indexWorker{
		applicantRepo: applicantRepo,
		embedder:      embedder,
		vectors:       vectors,
		chunker:       chunker,
		queue:         make(chan uuid.UUID, 100),
		concurrency:   concurrency,
		pollInterval:  pollInterval,
		stopChan:      make(chan struct{}),
	}
}

func (w *indexWorker) Enabled() bool {
	return true
}

func (w *indexWorker) Start(ctx context.Context) {
	log.Printf("🚀 Starting index worker with %d concurrent workers\n", w.concurrency)

	for i := 0; i < w.concurrency; i++ {
		w.wg.Add(1)
		go w.process(ctx, i+1)
	}

	if w.pollInterval > 0 {
		w.wg.Add(1)
		go w.pollPending(ctx)
	}

	log.Println("✅ Index worker started successfully")
}

func (w *indexWorker) Stop() {
	w.stopOnce.Do(func() {
		log.Println("🛑 Stopping index worker...")
		close(w.stopChan)
		w.wg.Wait()
		log.Println("✅ Index worker stopped")
	})
}

// Enqueue never blocks. A full queue leaves the applicant pending for the
// poller to pick up later.
func (w *indexWorker) Enqueue(applicantID uuid.UUID) {
	if _, loaded := w.inFlight.LoadOrStore(applicantID, struct{}{}); loaded {
		return
	}

	select {
	case <-w.stopChan:
		w.inFlight.Delete(applicantID)
		log.Printf("⚠️  Index worker stopped, cannot enqueue applicant %s\n", applicantID)
	case w.queue <- applicantID:
		log.Printf("📥 Applicant %s enqueued for indexing\n", applicantID)
	default:
		w.inFlight.Delete(applicantID)
		log.Printf("⚠️  Index queue full, applicant %s left pending\n", applicantID)
	}
}

func (w *indexWorker) Remove(ctx context.Context, applicantID uuid.UUID) error {
	return w.vectors.DeleteApplicant(ctx, applicantID)
}

func (w *indexWorker) process(ctx context.Context, workerID int) {
	defer w.wg.Done()

	for {
		select {
		case <-w.stopChan:
			log.Printf("👷 Index worker #%d stopped\n", workerID)
			return
		case <-ctx.Done():
			return
		case applicantID := <-w.queue:
			if err := w.IndexApplicant(ctx, applicantID); err != nil {
				log.Printf("❌ Index worker #%d failed on applicant %s: %v\n", workerID, applicantID, err)
			} else {
				log.Printf("✅ Index worker #%d indexed applicant %s\n", workerID, applicantID)
			}
			w.inFlight.Delete(applicantID)
		}
	}
}

func (w *indexWorker) pollPending(ctx context.Context) {
	defer w.wg.Done()
	ticker := time.NewTicker(w.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-w.stopChan:
			log.Println("🔄 Pending index poller stopped")
			return
		case <-ctx.Done():
			return
		case <-ticker.C:
			pending, err := w.applicantRepo.FindPendingIndex(ctx, pendingBatchSize)
			if err != nil {
				log.Printf("⚠️  Failed to fetch pending applicants: %v\n", err)
				continue
			}

			if len(pending) > 0 {
				log.Printf("📋 Found %d applicants waiting for indexing\n", len(pending))
			}

			for _, applicant := range pending {
				w.Enqueue(applicant.ID)
			}
		}
	}
}

// IndexApplicant embeds the applicant's profile and resume chunks and marks
// the outcome on the record.
func (w *indexWorker) IndexApplicant(ctx context.Context, applicantID uuid.UUID) error {
	applicant, err := w.applicantRepo.FindByID(ctx, applicantID)
	if err != nil {
		return err
	}

	if err := w.index(ctx, applicant); err != nil {
		if markErr := w.applicantRepo.UpdateIndexStatus(ctx, applicantID, models.IndexStatusFailed); markErr != nil {
			log.Printf("⚠️  Failed to mark applicant %s as failed: %v\n", applicantID, markErr)
		}
		return err
	}

	return w.applicantRepo.UpdateIndexStatus(ctx, applicantID, models.IndexStatusIndexed)
}

func (w *indexWorker) index(ctx context.Context, applicant *models.Applicant) error {
	texts := append([]string{ApplicantProfileText(applicant)}, w.chunker.ChunkText(applicant.ResumeText)...)

	chunks := make([]ResumeChunk, 0, len(texts))
	for i, text := range texts {
		embedding, err := w.embedder.GenerateEmbedding(ctx, text)
		if err != nil {
			return fmt.Errorf("failed to embed chunk %d: %w", i, err)
		}
		chunks = append(chunks, ResumeChunk{Index: i, Text: text, Embedding: embedding})
	}

	return w.vectors.UpsertApplicant(ctx, applicant.ID, applicant.JobPostingID, chunks)
}

// ApplicantProfileText condenses the analysis fields into one searchable
// passage.
func ApplicantProfileText(applicant *models.Applicant) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "%s\n%s\n", applicant.Name, applicant.Summary)
	if len(applicant.KeySkills) > 0 {
		fmt.Fprintf(&sb, "Skills: %s\n", strings.Join(applicant.KeySkills, ", "))
	}
	fmt.Fprintf(&sb, "Experience: %s\n", applicant.Experience)
	fmt.Fprintf(&sb, "Education: %s", applicant.Education)
	if len(applicant.Highlights) > 0 {
		fmt.Fprintf(&sb, "\nHighlights: %s", strings.Join(applicant.Highlights, "; "))
	}
	return sb.String()
}

type disabledIndexer struct{}

// NewDisabledIndexer stands in when semantic search is not configured.
func NewDisabledIndexer() ApplicantIndexer {
	return disabledIndexer{}
}

func (disabledIndexer) Enabled() bool                           { return false }
func (disabledIndexer) Enqueue(uuid.UUID)                       {}
func (disabledIndexer) Remove(context.Context, uuid.UUID) error { return nil }
