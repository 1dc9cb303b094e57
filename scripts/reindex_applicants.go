package main

import (
	"context"
	"log"
	"os"
	"strings"

	"github.com/google/uuid"

	"alfredoptarigan/ats-backend/internal/config"
	"alfredoptarigan/ats-backend/internal/repositories"
	"alfredoptarigan/ats-backend/internal/services"
)

const batchSize = 50

func main() {
	log.Println("🚀 Starting applicant reindex...")

	// Load configuration
	cfg := config.Load()
	if !cfg.SearchEnabled() {
		log.Fatal("❌ QDRANT_URL and GEMINI_API_KEY must be set to build the search index")
	}

	ctx := context.Background()

	db, err := config.InitDatabase(cfg)
	if err != nil {
		log.Fatalf("❌ Failed to initialize database: %v", err)
	}
	applicantRepo := repositories.NewApplicantRepository(db)

	geminiService, err := services.NewGeminiService(ctx, cfg.Gemini.APIKey, cfg.Gemini.Model, cfg.Gemini.EmbeddingModel)
	if err != nil {
		log.Fatalf("❌ Failed to initialize Gemini: %v", err)
	}

	qdrantService, err := services.NewQdrantService(
		cfg.Qdrant.URL,
		cfg.Qdrant.APIKey,
		cfg.Qdrant.Collection,
		cfg.Qdrant.VectorSize,
	)
	if err != nil {
		log.Fatalf("❌ Failed to initialize Qdrant: %v", err)
	}
	if err := qdrantService.InitCollection(ctx); err != nil {
		log.Fatalf("❌ Failed to initialize collection: %v", err)
	}

	// The worker is used synchronously here; its pool is never started.
	worker := services.NewIndexWorker(
		applicantRepo,
		geminiService,
		qdrantService,
		services.NewTextChunker(services.DefaultChunkSize, services.DefaultChunkOverlap),
		1,
		0,
	)

	total, err := applicantRepo.ResetIndexStatus(ctx)
	if err != nil {
		log.Fatalf("❌ Failed to reset index status: %v", err)
	}
	log.Printf("📄 %d applicants queued for indexing", total)

	successCount := 0
	failCount := 0
	seen := make(map[uuid.UUID]bool)

	for {
		applicants, err := applicantRepo.FindPendingIndex(ctx, batchSize)
		if err != nil {
			log.Fatalf("❌ Failed to load pending applicants: %v", err)
		}

		progressed := false
		for _, applicant := range applicants {
			if seen[applicant.ID] {
				continue
			}
			seen[applicant.ID] = true
			progressed = true

			if err := worker.IndexApplicant(ctx, applicant.ID); err != nil {
				log.Printf("   ❌ %s (%s): %v", applicant.Name, applicant.ID, err)
				failCount++
				continue
			}
			successCount++

			if (successCount+failCount)%10 == 0 {
				log.Printf("   📊 Progress: %d/%d applicants", successCount+failCount, total)
			}
		}

		if !progressed {
			break
		}
	}

	// Summary
	log.Println("\n" + strings.Repeat("=", 60))
	log.Printf("📊 Reindex Summary:")
	log.Printf("   ✅ Indexed: %d applicants", successCount)
	log.Printf("   ❌ Failed: %d applicants", failCount)
	log.Println(strings.Repeat("=", 60))

	if failCount > 0 {
		log.Println("⚠️  Some applicants failed to index. Please check the logs above.")
		os.Exit(1)
	}

	log.Println("✅ All applicants indexed successfully!")
}
