package main

import (
	"context"
	"os"
	"time"

	"github.com/joho/godotenv"

	"github.com/talentseek/b2beelanding/cmd/mainconfig"
	appconfig "github.com/talentseek/b2beelanding/internal/config"
	"github.com/talentseek/b2beelanding/internal/seed"
	"github.com/talentseek/b2beelanding/pkg/logging"
)

func main() {
	_ = godotenv.Load()
	cfg := appconfig.Load()
	logger := logging.New(cfg.LogLevel)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	pool, db, err := mainconfig.OpenDatabase(ctx, cfg.DatabaseURL)
	if err != nil {
		logger.Error("failed to open database", "error", err)
		os.Exit(1)
	}
	defer pool.Close()
	defer db.Close()

	data, err := loadData(os.Args[1:])
	if err != nil {
		logger.Error("failed to load seed data", "error", err)
		os.Exit(1)
	}

	report, err := seed.New(db, cfg.CalcomLink, logger).Run(ctx, data)
	if err != nil {
		logger.Error("seeding failed", "error", err)
		os.Exit(1)
	}
	logger.Info("database seeded",
		"bees", report.Bees,
		"testimonials", report.Testimonials,
		"sales_pages", report.SalesPages,
		"marina_pages", report.MarinaPages,
		"contributions", report.Contributions,
	)
}

// loadData reads an optional seed file path, falling back to the embedded data.
func loadData(args []string) (*seed.Data, error) {
	if len(args) == 0 {
		return seed.Default()
	}
	raw, err := os.ReadFile(args[0])
	if err != nil {
		return nil, err
	}
	return seed.Parse(raw)
}
