package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"
)

type config struct {
	triggerURL string
	cronSecret string
	timeout    time.Duration
}

// runSummary mirrors the body returned by /api/cron/send-reminders.
type runSummary struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Results struct {
		Total   int  `json:"total"`
		Sent    int  `json:"sent"`
		Failed  int  `json:"failed"`
		Skipped bool `json:"skipped,omitempty"`
	} `json:"results"`
}

func loadConfig() (config, error) {
	triggerURL := strings.TrimSpace(os.Getenv("REMINDER_TRIGGER_URL"))
	if triggerURL == "" {
		return config{}, errors.New("REMINDER_TRIGGER_URL is required")
	}

	timeout := 55 * time.Second
	if raw := strings.TrimSpace(os.Getenv("REMINDER_TRIGGER_TIMEOUT")); raw != "" {
		parsed, err := time.ParseDuration(raw)
		if err != nil {
			return config{}, fmt.Errorf("invalid REMINDER_TRIGGER_TIMEOUT: %w", err)
		}
		timeout = parsed
	}

	return config{
		triggerURL: triggerURL,
		cronSecret: strings.TrimSpace(os.Getenv("CRON_SECRET")),
		timeout:    timeout,
	}, nil
}

func main() {
	cfg, err := loadConfig()
	if err != nil {
		panic(err)
	}

	client := &http.Client{Timeout: cfg.timeout}
	lambda.Start(func(ctx context.Context, evt events.CloudWatchEvent) (runSummary, error) {
		return handle(ctx, cfg, client, evt)
	})
}

// handle fires one reminder run. A non-2xx answer fails the invocation so the
// scheduler's retry and alarms apply.
func handle(ctx context.Context, cfg config, client *http.Client, evt events.CloudWatchEvent) (runSummary, error) {
	reqCtx, cancel := context.WithTimeout(ctx, cfg.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(reqCtx, http.MethodPost, cfg.triggerURL, nil)
	if err != nil {
		return runSummary{}, fmt.Errorf("build request: %w", err)
	}
	if cfg.cronSecret != "" {
		req.Header.Set("Authorization", "Bearer "+cfg.cronSecret)
	}
	if evt.ID != "" {
		req.Header.Set("X-Request-Id", evt.ID)
	}

	resp, err := client.Do(req)
	if err != nil {
		return runSummary{}, fmt.Errorf("trigger reminders: %w", err)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<16))
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return runSummary{}, fmt.Errorf("trigger reminders: status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var out runSummary
	if err := json.Unmarshal(body, &out); err != nil {
		return runSummary{}, fmt.Errorf("decode response: %w", err)
	}
	return out, nil
}
