package notify

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/talentseek/b2beelanding/internal/observability/metrics"
	"github.com/talentseek/b2beelanding/pkg/logging"
)

// JobKind labels what a queued email is for.
type JobKind string

const (
	KindLeadNotification    JobKind = "lead_notification"
	KindReminder            JobKind = "reminder"
	KindBookingConfirmation JobKind = "booking_confirmation"
)

// Job is the queued unit of work: one email.
type Job struct {
	ID         string       `json:"id"`
	Kind       JobKind      `json:"kind"`
	Message    EmailMessage `json:"message"`
	EnqueuedAt time.Time    `json:"enqueued_at"`
}

const defaultEnqueueTimeout = 5 * time.Second

// Dispatcher hands email jobs to the queue without waiting for delivery.
type Dispatcher struct {
	queue   Queue
	logger  *logging.Logger
	metrics *metrics.Metrics
}

// NewDispatcher creates a dispatcher publishing to queue.
func NewDispatcher(queue Queue, logger *logging.Logger, m *metrics.Metrics) *Dispatcher {
	if queue == nil {
		panic("notify: queue required")
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &Dispatcher{queue: queue, logger: logger, metrics: m}
}

// Enqueue publishes msg. The publish is detached from ctx cancellation so a
// client disconnect cannot drop the job half way.
func (d *Dispatcher) Enqueue(ctx context.Context, kind JobKind, msg EmailMessage) (string, error) {
	job := Job{
		ID:         uuid.NewString(),
		Kind:       kind,
		Message:    msg,
		EnqueuedAt: time.Now().UTC(),
	}
	body, err := json.Marshal(job)
	if err != nil {
		return "", fmt.Errorf("notify: encode job: %w", err)
	}

	sendCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), defaultEnqueueTimeout)
	defer cancel()
	if err := d.queue.Send(sendCtx, string(body)); err != nil {
		d.metrics.ObserveNotification(string(kind), "enqueue_failed")
		return "", fmt.Errorf("notify: enqueue %s: %w", kind, err)
	}
	d.metrics.ObserveNotification(string(kind), "queued")
	d.logger.Debug("notification queued", "job_id", job.ID, "kind", kind, "to", msg.To)
	return job.ID, nil
}

const (
	defaultWorkerCount  = 2
	defaultWaitSeconds  = 2
	defaultBatchSize    = 5
	maxWaitSeconds      = 20
	defaultSendTimeout  = 10 * time.Second
	deleteTimeout       = 5 * time.Second
	maxReceiveBackoff   = 5 * time.Second
	initialRecvBackoff  = time.Second
	maxReceiveBatchSize = 10
)

type workerConfig struct {
	workers          int
	receiveWaitSecs  int
	receiveBatchSize int
	sendTimeout      time.Duration
}

// WorkerOption customizes worker behavior.
type WorkerOption func(*workerConfig)

// WithWorkerCount sets the number of concurrent consumer goroutines.
func WithWorkerCount(count int) WorkerOption {
	return func(cfg *workerConfig) {
		if count > 0 {
			cfg.workers = count
		}
	}
}

// WithReceiveWaitSeconds sets the long-poll wait duration.
func WithReceiveWaitSeconds(seconds int) WorkerOption {
	return func(cfg *workerConfig) {
		if seconds < 0 {
			return
		}
		if seconds > maxWaitSeconds {
			seconds = maxWaitSeconds
		}
		cfg.receiveWaitSecs = seconds
	}
}

// WithReceiveBatchSize sets how many jobs are pulled per receive.
func WithReceiveBatchSize(size int) WorkerOption {
	return func(cfg *workerConfig) {
		if size > 0 && size <= maxReceiveBatchSize {
			cfg.receiveBatchSize = size
		}
	}
}

// WithSendTimeout bounds each provider call.
func WithSendTimeout(d time.Duration) WorkerOption {
	return func(cfg *workerConfig) {
		if d > 0 {
			cfg.sendTimeout = d
		}
	}
}

// Worker consumes email jobs and delivers them. Failed sends are logged and
// dropped; there is no retry.
type Worker struct {
	queue   Queue
	sender  EmailSender
	logger  *logging.Logger
	metrics *metrics.Metrics

	cfg workerConfig
	wg  sync.WaitGroup
}

// NewWorker builds a worker. sender may be nil, in which case jobs are drained and logged.
func NewWorker(queue Queue, sender EmailSender, logger *logging.Logger, m *metrics.Metrics, opts ...WorkerOption) *Worker {
	if queue == nil {
		panic("notify: queue required")
	}
	if logger == nil {
		logger = logging.Default()
	}
	cfg := workerConfig{
		workers:          defaultWorkerCount,
		receiveWaitSecs:  defaultWaitSeconds,
		receiveBatchSize: defaultBatchSize,
		sendTimeout:      defaultSendTimeout,
	}
	for _, opt := range opts {
		opt(&cfg)
	}
	return &Worker{queue: queue, sender: sender, logger: logger, metrics: m, cfg: cfg}
}

// Start launches the consumer goroutines. They stop when ctx is cancelled.
func (w *Worker) Start(ctx context.Context) {
	for i := 0; i < w.cfg.workers; i++ {
		w.wg.Add(1)
		go w.run(ctx, i+1)
	}
}

// Wait blocks until every consumer goroutine has returned.
func (w *Worker) Wait() {
	w.wg.Wait()
}

func (w *Worker) run(ctx context.Context, workerID int) {
	defer w.wg.Done()
	w.logger.Debug("notification worker started", "worker_id", workerID)

	backoff := initialRecvBackoff
	for {
		select {
		case <-ctx.Done():
			w.logger.Debug("notification worker stopping", "worker_id", workerID)
			return
		default:
		}

		messages, err := w.queue.Receive(ctx, w.cfg.receiveBatchSize, w.cfg.receiveWaitSecs)
		if err != nil {
			if errors.Is(err, context.Canceled) || ctx.Err() != nil {
				return
			}
			w.logger.Error("failed to receive notification jobs", "error", err, "worker_id", workerID)
			select {
			case <-ctx.Done():
				return
			case <-time.After(backoff):
			}
			if backoff < maxReceiveBackoff {
				backoff *= 2
			}
			continue
		}
		backoff = initialRecvBackoff

		for _, msg := range messages {
			w.handleMessage(ctx, msg)
		}
	}
}

func (w *Worker) handleMessage(ctx context.Context, msg QueueMessage) {
	defer w.deleteMessage(ctx, msg.ReceiptHandle)

	var job Job
	if err := json.Unmarshal([]byte(msg.Body), &job); err != nil {
		w.logger.Error("dropping malformed notification job", "message_id", msg.ID, "error", err)
		w.metrics.ObserveNotification("unknown", "malformed")
		return
	}
	if err := w.Deliver(ctx, job); err != nil {
		w.logger.Warn("notification delivery failed", "job_id", job.ID, "kind", job.Kind, "to", job.Message.To, "error", err)
	}
}

// Deliver sends one job through the configured sender.
func (w *Worker) Deliver(ctx context.Context, job Job) error {
	if w.sender == nil {
		w.metrics.ObserveNotification(string(job.Kind), "disabled")
		return ErrEmailDisabled
	}
	sendCtx, cancel := context.WithTimeout(ctx, w.cfg.sendTimeout)
	defer cancel()

	if err := w.sender.Send(sendCtx, job.Message); err != nil {
		w.metrics.ObserveNotification(string(job.Kind), "failed")
		return err
	}
	w.metrics.ObserveNotification(string(job.Kind), "sent")
	w.logger.Info("notification delivered", "job_id", job.ID, "kind", job.Kind, "to", job.Message.To)
	return nil
}

func (w *Worker) deleteMessage(ctx context.Context, receiptHandle string) {
	if receiptHandle == "" {
		return
	}
	delCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), deleteTimeout)
	defer cancel()
	if err := w.queue.Delete(delCtx, receiptHandle); err != nil {
		w.logger.Error("failed to delete notification job", "error", err)
	}
}
