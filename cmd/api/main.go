package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"

	"alfredoptarigan/ats-backend/internal/config"
	"alfredoptarigan/ats-backend/internal/handlers"
	"alfredoptarigan/ats-backend/internal/middleware"
	"alfredoptarigan/ats-backend/internal/repositories"
	"alfredoptarigan/ats-backend/internal/services"
)

const version = "1.0.0"

func main() {
	// Load configuration
	cfg := config.Load()
	log.Println("✅ Config loaded successfully")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Initialize database
	db, err := config.InitDatabase(cfg)
	if err != nil {
		log.Fatalf("❌ Failed to initialize database: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		log.Fatalf("❌ Failed to get database handle: %v", err)
	}

	// Initialize repositories
	applicantRepo := repositories.NewApplicantRepository(db)
	jobRepo := repositories.NewJobPostingRepository(db)
	recruiterRepo := repositories.NewRecruiterRepository(db)
	log.Println("✅ Repositories initialized successfully")

	// Initialize storage
	storageService := services.NewStorageService(cfg.Storage.UploadPath, cfg.Storage.MaxFileSize)
	if err := storageService.EnsureUploadDir(); err != nil {
		log.Fatalf("❌ Failed to create upload directory: %v", err)
	}
	textExtractor := services.NewTextExtractor()

	// Initialize AI provider
	var gemini services.GeminiService
	if cfg.Gemini.APIKey != "" {
		gemini, err = services.NewGeminiService(ctx, cfg.Gemini.APIKey, cfg.Gemini.Model, cfg.Gemini.EmbeddingModel)
		if err != nil {
			log.Fatalf("❌ Failed to initialize Gemini AI: %v", err)
		}
		log.Println("✅ Gemini AI initialized successfully")
	}

	var llm services.LLMService
	switch cfg.AI.Provider {
	case config.ProviderOpenAI:
		llm, err = services.NewOpenAIService(cfg.OpenAI.APIKey, cfg.OpenAI.BaseURL, cfg.OpenAI.Model)
		if err != nil {
			log.Fatalf("❌ Failed to initialize OpenAI: %v", err)
		}
		log.Println("✅ OpenAI initialized successfully")
	case config.ProviderGemini:
		if gemini == nil {
			log.Fatal("❌ GEMINI_API_KEY is required when AI_PROVIDER=gemini")
		}
		llm = gemini
	default:
		log.Fatalf("❌ Unknown AI_PROVIDER %q", cfg.AI.Provider)
	}

	llm = services.NewRetryingLLM(llm, services.RetryConfig{
		MaxAttempts:  cfg.Worker.RetryMaxAttempts,
		InitialDelay: cfg.Worker.RetryInitialDelay,
		MaxDelay:     cfg.Worker.RetryMaxDelay,
	})
	analyzer := services.NewResumeAnalyzer(llm, storageService, cfg.AI.Temperature, cfg.AI.Timeout)

	// Initialize cache
	cache := services.NewNoopCache()
	if cfg.Cache.Address != "" {
		cache, err = services.NewValkeyCache(cfg.Cache.Address, cfg.Cache.TTL)
		if err != nil {
			log.Fatalf("❌ Failed to initialize Valkey: %v", err)
		}
		log.Println("✅ Valkey cache initialized successfully")
	}

	// Initialize semantic search
	indexer := services.NewDisabledIndexer()
	searchService := services.NewSearchService(nil, nil, applicantRepo)
	var worker services.IndexWorker
	if cfg.SearchEnabled() {
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
			log.Fatalf("❌ Failed to initialize Qdrant collection: %v", err)
		}
		log.Println("✅ Qdrant initialized successfully")

		worker = services.NewIndexWorker(
			applicantRepo,
			gemini,
			qdrantService,
			services.NewTextChunker(services.DefaultChunkSize, services.DefaultChunkOverlap),
			cfg.Worker.Concurrency,
			cfg.Worker.PollInterval,
		)
		worker.Start(ctx)
		log.Println("✅ Index worker started successfully")

		indexer = worker
		searchService = services.NewSearchService(gemini, qdrantService, applicantRepo)
	} else {
		log.Println("⚠️  Semantic search disabled (QDRANT_URL or GEMINI_API_KEY not set)")
	}

	authService := services.NewAuthService(recruiterRepo, cfg.Auth.JWTSecret, time.Duration(cfg.Auth.ExpirationHours)*time.Hour)
	applicantService := services.NewApplicantService(applicantRepo, jobRepo, storageService, textExtractor, analyzer, indexer)
	jobService := services.NewJobService(jobRepo, cache)
	log.Println("✅ Services initialized successfully")

	// Initialize handlers
	h := handlers.Handlers{
		Health:    handlers.NewHealthHandler(sqlDB, version),
		Auth:      handlers.NewAuthHandler(authService),
		Applicant: handlers.NewApplicantHandler(applicantService, searchService),
		Job:       handlers.NewJobHandler(jobService, applicantService),
	}
	log.Println("✅ Handlers initialized")

	// Create Fiber app
	app := fiber.New(fiber.Config{
		AppName:      "ATS Backend API",
		ReadTimeout:  30 * time.Second,
		WriteTimeout: cfg.AI.Timeout + 30*time.Second,
		// Leave room for multipart framing so oversized files reach the
		// storage check and get a descriptive error.
		BodyLimit:    int(cfg.Storage.MaxFileSize) + 1024*1024,
		ErrorHandler: handlers.ErrorHandler,
	})

	// Middleware
	app.Use(recover.New())
	app.Use(requestid.New())
	app.Use(logger.New(logger.Config{
		Format:     "[${time}] ${status} - ${latency} ${method} ${path} ${locals:requestid}\n",
		TimeFormat: "2006-01-02 15:04:05",
	}))
	app.Use(cors.New(cors.Config{
		AllowOrigins: cfg.CORS.AllowOrigins,
		AllowMethods: "GET,POST,PATCH,DELETE,OPTIONS",
		AllowHeaders: "Origin, Content-Type, Accept, Authorization, X-Request-ID",
	}))

	// Routes
	handlers.SetupRoutes(app, h, middleware.RequireAuth(authService))

	app.Get("/", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"message": "ATS Backend API",
			"version": version,
			"health":  "/api/v1/health",
		})
	})

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-quit
		log.Println("\n🛑 Shutting down server...")
		if worker != nil {
			worker.Stop()
		}
		cancel()
		if err := app.Shutdown(); err != nil {
			log.Printf("❌ Server forced to shutdown: %v", err)
		}
	}()

	// Start server
	addr := fmt.Sprintf(":%s", cfg.Server.Port)
	log.Printf("🚀 Server starting on %s\n", addr)

	if err := app.Listen(addr); err != nil {
		log.Fatalf("❌ Failed to start server: %v", err)
	}

	cache.Close()
	if err := sqlDB.Close(); err != nil {
		log.Printf("⚠️  Failed to close database: %v", err)
	}
	log.Println("👋 Server stopped")
}
