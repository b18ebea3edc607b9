package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/docuflow/docuflow-backend/internal/review/events"
	"github.com/docuflow/docuflow-backend/internal/review/extract"
	"github.com/docuflow/docuflow-backend/internal/review/handler"
	"github.com/docuflow/docuflow-backend/internal/review/ocr"
	"github.com/docuflow/docuflow-backend/internal/review/repository"
	"github.com/docuflow/docuflow-backend/internal/review/reviewai"
	"github.com/docuflow/docuflow-backend/internal/review/service"
	"github.com/docuflow/docuflow-backend/internal/review/storage"
	"github.com/docuflow/docuflow-backend/pkg/config"
	"github.com/docuflow/docuflow-backend/pkg/database"
	"github.com/docuflow/docuflow-backend/pkg/httputil"
	"github.com/docuflow/docuflow-backend/pkg/logger"
	"github.com/docuflow/docuflow-backend/pkg/messaging"
)

func main() {
	// Load configuration with validation (fails fast in production if required config is missing)
	cfg, err := config.LoadWithValidation("review-service")
	if err != nil {
		fmt.Fprintf(os.Stderr, "configuration error: %v\n", err)
		os.Exit(1)
	}

	log := logger.New("review-service", cfg.Server.Environment)
	log.Info().Msg("starting Review Service")

	production := config.IsProductionLike()

	// Database holds the review audit trail. In development the service runs
	// without one; audits are simply skipped.
	var auditRepo service.AuditWriter
	db, err := database.New(&cfg.Database, log)
	if err != nil {
		if production {
			log.Fatal().Err(err).Msg("failed to connect to database")
		}
		log.Warn().Err(err).Msg("running without database, review audits disabled")
	} else {
		defer db.Close()
		auditRepo = repository.NewAuditRepository(db)
	}

	// RabbitMQ carries review lifecycle events; a nil publisher drops them.
	var publisher *events.ReviewEventPublisher
	rmq, err := messaging.New(&cfg.RabbitMQ, log)
	if err != nil {
		if production {
			log.Fatal().Err(err).Msg("failed to connect to RabbitMQ")
		}
		log.Warn().Err(err).Msg("running without RabbitMQ, review events disabled")
	} else {
		defer rmq.Close()
		publisher, err = events.NewReviewEventPublisher(rmq, log)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to create event publisher")
		}
	}

	// Extraction collaborators
	orchestrator := extract.NewOrchestrator(
		extract.NewPDFParser(),
		extract.NewAltParserClient(cfg.Services.AltParserURL, cfg.Services.CallTimeout),
		extract.NewRasterizerClient(cfg.Services.RasterizerURL, cfg.Services.CallTimeout),
		ocr.NewTesseractEngine(),
		cfg.Review.OCRLanguages,
		log,
	)

	reviewClient := reviewai.NewClient(cfg.Services.ReviewAIURL, cfg.Services.CallTimeout, log)

	store := storage.NewJobStore(cfg.Review.JobTTL)
	reviewService := service.NewService(
		orchestrator,
		reviewClient,
		store,
		auditRepo,
		publisher,
		cfg.Review.Workers,
		cfg.Review.FileTimeout,
		log,
	)

	reviewHandler := handler.NewHandler(reviewService, log)

	// Router
	r := chi.NewRouter()
	r.Use(middleware.RealIP)
	r.Use(httputil.RequestID)
	r.Use(httputil.Logger(log))
	r.Use(httputil.Recoverer(log))

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"http://localhost:3000", "http://localhost:5173"},
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type", "X-Request-ID"},
		MaxAge:         300,
	}))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		health := map[string]interface{}{
			"status":  "healthy",
			"service": "review-service",
		}
		if db != nil {
			health["database"] = db.Health(r.Context())
		}
		if rmq != nil {
			health["rabbitmq"] = rmq.Health()
		}
		httputil.JSON(w, http.StatusOK, health)
	})

	r.Route("/api/v1", reviewHandler.Routes)

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		log.Info().Str("addr", addr).Msg("server listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down server")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("server forced to shutdown")
	}

	log.Info().Msg("server stopped")
}
