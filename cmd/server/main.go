package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"sideio-backend/internal/config"
	"sideio-backend/internal/database"
	"sideio-backend/internal/handlers"
	"sideio-backend/internal/repository"
	"sideio-backend/internal/router"
	"sideio-backend/internal/services"
	"sideio-backend/internal/web"
	"sideio-backend/internal/worker"
)

func main() {
	log.Println("🚀 Starting Sideio Backend...")

	// ──── Step 1: Load Environment Variables ────
	cfg := config.Load()
	log.Println("✓ Environment variables loaded")
	for _, w := range cfg.Validate() {
		log.Printf("⚠ %s", w)
	}

	// ──── Step 2: Optional PostgreSQL ────
	var pool *pgxpool.Pool
	if cfg.DatabaseURL != "" {
		p, err := database.NewPostgresPool(cfg.DatabaseURL)
		if err != nil {
			log.Printf("⚠ PostgreSQL unavailable, records will be discarded: %v", err)
		} else if err := database.RunMigrations(p, "migrations"); err != nil {
			log.Printf("⚠ Database migration failed, records will be discarded: %v", err)
			p.Close()
		} else {
			pool = p
			defer pool.Close()
			log.Println("✓ PostgreSQL connected, migrations applied")
		}
	}

	// ──── Step 3: Optional Redis ────
	var redisClient *redis.Client
	if cfg.RedisURL != "" {
		c, err := database.NewRedisClient(cfg.RedisURL)
		if err != nil {
			log.Printf("⚠ Redis unavailable, writing records directly: %v", err)
		} else {
			redisClient = c
			defer redisClient.Close()
			log.Println("✓ Redis connected")
		}
	}

	// ──── Step 4: Initialize Gemini Client ────
	persona, err := services.LoadPersona(cfg.SystemPromptFile)
	if err != nil {
		log.Printf("⚠ %v; using built-in persona", err)
		persona = services.DefaultPersona
	}

	geminiService, err := services.NewGeminiService(context.Background(), cfg.GeminiAPIKey, services.GeminiOptions{
		Model:             cfg.GeminiModel,
		SystemInstruction: persona,
		MaxOutputTokens:   cfg.GeminiMaxOutputTokens,
		Temperature:       cfg.GeminiTemperature,
	})
	if err != nil {
		// Chat stays up and answers every request with the configuration notice.
		log.Printf("✗ Gemini client initialization failed: %v", err)
		geminiService, _ = services.NewGeminiService(context.Background(), "", services.GeminiOptions{Model: cfg.GeminiModel})
	}
	defer geminiService.Close()
	if geminiService.Configured() {
		log.Printf("✓ Gemini client initialized (%s)", geminiService.ModelName())
	} else {
		log.Println("✗ Gemini client not configured, Logic Core offline")
	}

	// ──── Step 5: Record Sinks ────
	var (
		audits services.AuditSink = services.NopSink{}
		visits services.VisitSink = services.NopSink{}
		leads  services.LeadSink  = services.NopSink{}
	)
	var workerPool *worker.Pool
	if pool != nil {
		auditRepo := repository.NewAuditRepo(pool)
		visitRepo := repository.NewVisitRepo(pool)
		leadRepo := repository.NewLeadRepo(pool)
		audits, visits, leads = auditRepo, visitRepo, leadRepo

		if redisClient != nil {
			queue := services.NewQueueSink(redisClient)
			audits, visits, leads = queue, queue, queue

			workerPool = worker.NewPool(redisClient, auditRepo, visitRepo, leadRepo, repository.NewJobRepo(pool), cfg.LogWorkers)
			workerPool.Start()
			log.Printf("✓ Log worker pool started (%d goroutines)", cfg.LogWorkers)
		}
	}

	var visitCounter services.VisitCounter
	if redisClient != nil {
		visitCounter = services.NewRedisVisitCounter(redisClient)
	}

	// ──── Step 6: Initialize Services ────
	hasher, err := services.NewVisitorHasherOrUnkeyed(cfg.VisitorHashKey)
	if err != nil {
		log.Printf("⚠ Visitor hasher: %v; hashing without a key", err)
	}

	chatService := services.NewChatService(geminiService, audits, geminiService.ModelName(), cfg.GeminiTimeout)
	visitService := services.NewVisitService(visits, visitCounter, hasher)
	emailService := services.NewEmailService(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPass, cfg.SMTPFrom)
	leadService := services.NewLeadService(leads, emailService, cfg.LeadNotifyEmail)

	var digestScheduler *services.DigestScheduler
	if pool != nil && cfg.LeadNotifyEmail != "" {
		digestScheduler = services.NewDigestScheduler(repository.NewStatsRepo(pool), emailService, cfg.LeadNotifyEmail, redisClient)
		digestScheduler.Start()
		log.Println("✓ Daily digest scheduler started")
	}

	// ──── Step 7: Initialize Handlers ────
	chatHandler := handlers.NewChatHandler(chatService)
	visitHandler := handlers.NewVisitHandler(visitService)
	contactHandler := handlers.NewContactHandler(leadService)

	// ──── Step 8: Start HTTP Server ────
	r := router.New(
		chatHandler,
		visitHandler,
		contactHandler,
		web.SPAHandler(cfg.StaticDir),
		cfg.FrontendURL,
	)

	server := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.Port),
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: cfg.WriteTimeout(),
		IdleTimeout:  60 * time.Second,
	}

	done := make(chan struct{})

	// Graceful shutdown
	go func() {
		defer close(done)
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		<-sigChan

		log.Println("Shutting down...")
		if digestScheduler != nil {
			digestScheduler.Stop()
		}

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		server.Shutdown(ctx)

		// Pending audit and notification writes may still be queueing jobs,
		// so the workers stop last.
		chatService.Wait()
		leadService.Wait()
		if workerPool != nil {
			workerPool.Stop()
		}
	}()

	log.Printf("✓ Sideio Backend ready on http://localhost:%s", cfg.Port)
	log.Printf("  API: http://localhost:%s/api/chat", cfg.Port)
	log.Printf("  SPA: %s", cfg.StaticDir)

	if err := server.ListenAndServe(); err != http.ErrServerClosed {
		log.Fatalf("Server error: %v", err)
	}
	<-done
}
