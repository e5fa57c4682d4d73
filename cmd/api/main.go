package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/xavierca1/consult-intake/internal/config"
	"github.com/xavierca1/consult-intake/internal/infra/cache"
	"github.com/xavierca1/consult-intake/internal/infra/database"
	"github.com/xavierca1/consult-intake/internal/infra/http/handlers"
	"github.com/xavierca1/consult-intake/internal/infra/http/middleware"
	"github.com/xavierca1/consult-intake/internal/infra/integration/webhook"
	"github.com/xavierca1/consult-intake/internal/infra/mail"
	"github.com/xavierca1/consult-intake/internal/infra/queue"
	"github.com/xavierca1/consult-intake/internal/infra/worker"
	"github.com/xavierca1/consult-intake/internal/logger"
	"github.com/xavierca1/consult-intake/internal/phone"
	"github.com/xavierca1/consult-intake/internal/usecase"
)

func main() {
	cfg := config.Load()

	logg, err := logger.New(cfg.LogLevel, cfg.IsProduction())
	if err != nil {
		log.Fatalf("init logger: %v", err)
	}
	defer logg.Sync()

	if cfg.SentryDSN != "" {
		if err := sentry.Init(sentry.ClientOptions{
			Dsn:              cfg.SentryDSN,
			Environment:      cfg.Environment,
			AttachStacktrace: true,
		}); err != nil {
			logg.Warn("sentry init failed", zap.Error(err))
		} else {
			defer sentry.Flush(2 * time.Second)
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 1. Storage (required)
	if cfg.DatabaseURL == "" {
		logg.Fatal("DATABASE_URL is required")
	}
	db, err := database.NewDBConnection(cfg.DatabaseDriver, cfg.DatabaseURL)
	if err != nil {
		logg.Fatal("database unavailable", zap.Error(err))
	}
	defer db.Close()

	if err := database.EnsureSchema(ctx, db); err != nil {
		logg.Fatal("schema setup failed", zap.Error(err))
	}

	submissionRepo := database.NewSubmissionRepository(db)
	leadRepo := database.NewLeadRepository(db)

	// 2. Optional integrations
	var (
		statsCache  usecase.StatsCache
		redisPinger handlers.Pinger
	)
	if cfg.RedisURL != "" {
		redisClient, err := cache.NewClient(cfg.RedisURL, cfg.StatsCacheTTL)
		if err != nil {
			logg.Warn("redis unavailable, stats cache disabled", zap.Error(err))
		} else {
			defer redisClient.Close()
			statsCache = redisClient
			redisPinger = redisClient
		}
	}

	var alerts usecase.AlertSender
	if cfg.AlertsEnabled() {
		alerts = mail.NewEmailSender(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPassword,
			cfg.AlertEmailFrom, splitList(cfg.AlertEmailTo))
	}

	var (
		rabbitMQ   *queue.RabbitMQ
		redelivery usecase.RedeliveryPublisher
	)
	if cfg.AMQPURL != "" {
		rabbitMQ, err = queue.NewRabbitMQ(cfg.AMQPURL)
		if err != nil {
			logg.Warn("rabbitmq unavailable, webhook redelivery disabled", zap.Error(err))
			rabbitMQ = nil
		} else {
			defer rabbitMQ.Close()
			redelivery = queue.NewProducer(rabbitMQ.Ch)
		}
	}

	webhookClient := webhook.NewClient(cfg.WebhookURL, cfg.WebhookSecret, cfg.WebhookTimeout)
	if !webhookClient.Configured() {
		logg.Warn("WEBHOOK_URL not set, every submission will stay pending")
	}

	metrics := middleware.PrometheusRecorder{}

	// 3. Use cases
	submitUC := usecase.NewSubmitConsultationUseCase(
		submissionRepo,
		leadRepo,
		usecase.NewPayloadBuilder(phone.NewFormatter(cfg.PhoneDefaultRegion)),
		webhookClient,
		redelivery,
		alerts,
		metrics,
		logg,
		usecase.SubmitConsultationConfig{
			DuplicateWindow: cfg.DuplicateWindow,
			DefaultSource:   cfg.SubmissionSource,
			RedeliveryDelay: cfg.RedeliveryDelay,
		},
	)
	getUC := usecase.NewGetConsultationUseCase(submissionRepo)
	statsUC := usecase.NewConsultationStatsUseCase(submissionRepo, statsCache, logg)

	// 4. Background workers
	sweeper := worker.NewPendingDeliveryWorker(submissionRepo, middleware.PendingDeliveries, logg,
		cfg.PendingSweepSchedule, cfg.PendingStaleAfter)
	go func() {
		if err := sweeper.Start(ctx); err != nil {
			logg.Error("pending delivery sweep stopped", zap.Error(err))
		}
	}()

	amqpConn := rabbitMQConn(rabbitMQ)
	if rabbitMQ != nil {
		redeliverUC := usecase.NewRedeliverWebhookUseCase(submissionRepo, webhookClient, redelivery, alerts,
			metrics, logg, cfg.RedeliveryMaxAttempts, cfg.RedeliveryDelay)
		consumerCh, err := rabbitMQ.Conn.Channel()
		if err != nil {
			logg.Error("open consumer channel failed, redelivery worker disabled", zap.Error(err))
		} else {
			redeliveryWorker := queue.NewWorker(consumerCh, redeliverUC, logg)
			go func() {
				if err := redeliveryWorker.Start(ctx); err != nil {
					logg.Error("redelivery worker stopped", zap.Error(err))
				}
			}()
		}
	}

	// 5. Handlers
	consultationHandler := handlers.NewConsultationHandler(submitUC, getUC, statsUC,
		handlers.DiagnosticsConfig{
			Database:      true,
			WebhookURL:    cfg.WebhookURL != "",
			WebhookSecret: cfg.WebhookSecret != "",
			Redis:         statsCache != nil,
			AMQP:          redelivery != nil,
			SMTP:          alerts != nil,
		},
		logg, !cfg.IsProduction())
	healthHandler := handlers.NewHealthHandler(db, amqpConn, redisPinger)

	// 6. Router
	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Logger)
	r.Use(middleware.Recover(logg, !cfg.IsProduction()))
	r.Use(middleware.Metrics)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: cfg.CORSAllowedOrigins,
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type"},
		MaxAge:         300,
	}))

	r.Get("/health", healthHandler.Handle)
	r.Handle("/metrics", promhttp.Handler())

	adminOnly := middleware.RequireRole(cfg.JWTSecret, cfg.AdminRole, cfg.IsDevelopment())
	r.Route("/api/consultation", func(r chi.Router) {
		r.Post("/", consultationHandler.Submit)
		r.With(adminOnly).Get("/stats", consultationHandler.Stats)
		r.With(adminOnly).Get("/test-db", consultationHandler.TestDB)
		r.Get("/{submissionId}", consultationHandler.Get)
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logg.Info("consultation intake listening",
			zap.String("addr", srv.Addr), zap.String("environment", cfg.Environment))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logg.Fatal("http server failed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	logg.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logg.Error("graceful shutdown failed", zap.Error(err))
	}
}
