package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	"github.com/talentseek/b2beelanding/cmd/mainconfig"
	"github.com/talentseek/b2beelanding/internal/abm"
	"github.com/talentseek/b2beelanding/internal/api/router"
	"github.com/talentseek/b2beelanding/internal/bees"
	"github.com/talentseek/b2beelanding/internal/boatfund"
	"github.com/talentseek/b2beelanding/internal/bookings"
	appconfig "github.com/talentseek/b2beelanding/internal/config"
	"github.com/talentseek/b2beelanding/internal/http/handlers"
	httpmiddleware "github.com/talentseek/b2beelanding/internal/http/middleware"
	"github.com/talentseek/b2beelanding/internal/leads"
	"github.com/talentseek/b2beelanding/internal/notify"
	"github.com/talentseek/b2beelanding/internal/observability/metrics"
	"github.com/talentseek/b2beelanding/internal/reminders"
	"github.com/talentseek/b2beelanding/internal/testimonials"
	"github.com/talentseek/b2beelanding/pkg/logging"
)

func main() {
	_ = godotenv.Load()

	// Load configuration
	cfg := appconfig.Load()

	// Initialize logger
	logger := logging.New(cfg.LogLevel)
	logger.Info("starting b2bee API server",
		"env", cfg.Env,
		"port", cfg.Port,
	)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	metricsHandler, m := setupMetrics()

	pool, db, err := mainconfig.OpenDatabase(ctx, cfg.DatabaseURL)
	if err != nil {
		logger.Error("failed to open database", "error", err)
		os.Exit(1)
	}
	defer pool.Close()
	defer db.Close()

	awsCfg, err := mainconfig.LoadAWSConfig(ctx, cfg)
	if err != nil {
		logger.Error("failed to load AWS config", "error", err)
		os.Exit(1)
	}

	redisClient := mainconfig.NewRedisClient(cfg)
	if redisClient != nil {
		defer redisClient.Close()
	}

	queue, memoryQueue := mainconfig.NewNotifyQueue(cfg, awsCfg)
	sender := mainconfig.NewEmailSender(cfg, awsCfg, logger)
	notifier, worker := setupNotifications(ctx, cfg, queue, memoryQueue, sender, logger, m)

	// Stores, services and handlers
	beeStore := bees.NewStore(db)
	quoteStore := testimonials.NewStore(db)
	leadRepo := leads.NewPostgresRepository(pool)
	leadService := leads.NewService(leadRepo, beeStore, notifier, logger, m)
	bookingService := bookings.NewService(bookings.NewPostgresRepository(pool), leadRepo, beeStore, notifier, logger, m)
	reminderJob := setupReminderJob(cfg, leadRepo, notifier, redisClient, logger, m)

	routerCfg := &router.Config{
		Logger:              logger,
		LeadsHandler:        leads.NewHandler(leadService, logger),
		BeesHandler:         bees.NewHandler(beeStore, quoteStore, cfg.PublicBaseURL, logger),
		TestimonialsHandler: testimonials.NewHandler(quoteStore, logger),
		BookingsHandler:     bookings.NewHandler(bookingService, cfg.CalcomWebhookSecret, logger),
		RemindersHandler:    reminders.NewHandler(reminderJob, cfg.CronSecret, logger),
		ABMHandler:          abm.NewHandler(abm.NewStore(db), logger),
		BoatFundHandler:     boatfund.NewHandler(boatfund.NewStore(db), logger),
		AdminDashboard:      handlers.NewAdminDashboardHandler(db, logger),
		LeadLimiter:         setupLeadLimiter(cfg, redisClient),
		AdminAuthSecret:     cfg.AdminJWTSecret,
		CORSAllowedOrigins:  cfg.CORSAllowedOrigins,
		MetricsHandler:      metricsHandler,
		Health:              db,
	}
	if cfg.AdminJWTSecret == "" {
		logger.Warn("ADMIN_JWT_SECRET not set; admin API will refuse every request")
	}
	if cfg.CalcomWebhookSecret == "" {
		logger.Warn("CALCOM_WEBHOOK_SECRET not set; webhook signatures are not verified")
	}

	// Create HTTP server
	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router.New(routerCfg),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		logger.Info("server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server forced to shutdown", "error", err)
	}

	cancel()
	if worker != nil {
		worker.Wait()
	}

	logger.Info("server stopped")
	fmt.Println("Server exited gracefully")
}

// setupMetrics builds a dedicated registry with runtime collectors plus the
// application metrics.
func setupMetrics() (http.Handler, *metrics.Metrics) {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	m := metrics.New(reg)
	return promhttp.HandlerFor(reg, promhttp.HandlerOpts{}), m
}

// setupNotifications wires the dispatcher and notifier. With the in-memory
// queue the consumers run inside this process, so nothing is queued unless
// this process can send email; with SQS they run in cmd/notify-worker.
func setupNotifications(ctx context.Context, cfg *appconfig.Config, queue notify.Queue, memoryQueue bool, sender notify.EmailSender, logger *logging.Logger, m *metrics.Metrics) (*notify.Notifier, *notify.Worker) {
	notifierCfg := notify.NotifierConfig{
		OpsEmail: cfg.NotifyEmail,
		Templates: notify.TemplateConfig{
			BaseURL: cfg.PublicBaseURL,
			CalLink: cfg.CalcomLink,
		},
	}
	if cfg.NotifyEmail == "" {
		logger.Warn("NOTIFY_EMAIL not set; new-lead alerts are disabled")
	}

	if memoryQueue && sender == nil {
		logger.Warn("email delivery not configured; lead and booking emails are disabled")
		return notify.NewNotifier(nil, nil, notifierCfg, logger, m), nil
	}

	dispatcher := notify.NewDispatcher(queue, logger, m)
	notifier := notify.NewNotifier(dispatcher, sender, notifierCfg, logger, m)
	if !memoryQueue {
		return notifier, nil
	}
	worker := notify.NewWorker(queue, sender, logger, m,
		notify.WithWorkerCount(cfg.NotifyWorkerCount),
		notify.WithSendTimeout(cfg.EmailSendTimeout),
	)
	worker.Start(ctx)
	logger.Info("in-process notification workers started", "workers", cfg.NotifyWorkerCount)
	return notifier, worker
}

func setupReminderJob(cfg *appconfig.Config, store reminders.LeadStore, sender reminders.Sender, redisClient *redis.Client, logger *logging.Logger, m *metrics.Metrics) *reminders.Job {
	opts := []reminders.Option{
		reminders.WithDelay(cfg.ReminderDelay),
		reminders.WithBatchSize(cfg.ReminderBatchSize),
	}
	if redisClient != nil {
		opts = append(opts, reminders.WithLocker(reminders.NewRedisLocker(redisClient, cfg.ReminderLockTTL)))
	} else {
		logger.Warn("REDIS_ADDR not set; reminder runs are not locked across instances")
	}
	return reminders.NewJob(store, sender, logger, m, opts...)
}

// setupLeadLimiter shares the budget through Redis when available.
func setupLeadLimiter(cfg *appconfig.Config, redisClient *redis.Client) httpmiddleware.Limiter {
	if cfg.LeadRateLimitPerMinute <= 0 {
		return nil
	}
	if redisClient != nil {
		return httpmiddleware.NewRedisLimiter(redisClient, cfg.LeadRateLimitPerMinute)
	}
	return httpmiddleware.NewMemoryLimiter(cfg.LeadRateLimitPerMinute)
}
