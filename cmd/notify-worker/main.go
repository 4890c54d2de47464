package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/talentseek/b2beelanding/cmd/mainconfig"
	appconfig "github.com/talentseek/b2beelanding/internal/config"
	"github.com/talentseek/b2beelanding/internal/notify"
	"github.com/talentseek/b2beelanding/internal/observability/metrics"
	"github.com/talentseek/b2beelanding/pkg/logging"
)

func main() {
	_ = godotenv.Load()
	cfg := appconfig.Load()
	logger := logging.New(cfg.LogLevel)

	if cfg.NotifyQueueURL == "" {
		logger.Error("notify worker requires NOTIFY_QUEUE_URL")
		os.Exit(1)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	awsCfg, err := mainconfig.LoadAWSConfig(ctx, cfg)
	if err != nil {
		logger.Error("failed to load AWS config", "error", err)
		os.Exit(1)
	}

	queue, _ := mainconfig.NewNotifyQueue(cfg, awsCfg)
	sender := mainconfig.NewEmailSender(cfg, awsCfg, logger)

	worker := notify.NewWorker(queue, sender, logger, metrics.New(nil),
		notify.WithWorkerCount(cfg.NotifyWorkerCount),
		notify.WithReceiveWaitSeconds(20),
		notify.WithReceiveBatchSize(10),
		notify.WithSendTimeout(cfg.EmailSendTimeout),
	)
	worker.Start(ctx)
	logger.Info("notify worker started", "workers", cfg.NotifyWorkerCount, "queue", cfg.NotifyQueueURL)

	<-ctx.Done()
	logger.Info("notify worker shutting down")
	worker.Wait()
}
