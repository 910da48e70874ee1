// Package syncworker drains the durable sync queue into the spreadsheet
// mirror. Work is retried with exponential backoff and throttled so bursts
// of bookings cannot exhaust the Sheets API quota.
package syncworker

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"stationbook/internal/database"
	"stationbook/internal/metrics"
	"stationbook/internal/models"
)

const claimBatchSize = 20

// Queue is the durable task store backing the worker.
type Queue interface {
	EnqueueSyncTask(ctx context.Context, taskType, bookingCode, payload string) error
	ClaimSyncTasks(ctx context.Context, limit int, now time.Time) ([]database.SyncTask, error)
	MarkSyncDone(ctx context.Context, id int64) error
	MarkSyncRetry(ctx context.Context, id int64, lastError string, nextRetry time.Time) error
	MarkSyncFailed(ctx context.Context, id int64, lastError string) error
}

// Sink receives mirrored booking rows.
type Sink interface {
	Record(ctx context.Context, booking *models.Booking) error
	MarkCompleted(ctx context.Context, bookingCode string) error
	Enabled() bool
}

// Config tunes the worker loop.
type Config struct {
	Interval      time.Duration
	RatePerSecond float64
	Burst         int
	MaxRetries    int
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() Config {
	return Config{
		Interval:      15 * time.Second,
		RatePerSecond: 1,
		Burst:         5,
		MaxRetries:    8,
	}
}

// Worker polls the queue and pushes tasks to the sink.
type Worker struct {
	queue   Queue
	sink    Sink
	limiter *rate.Limiter
	config  Config
	logger  *zerolog.Logger
}

// NewWorker builds a worker; zero config fields fall back to defaults.
func NewWorker(queue Queue, sink Sink, cfg Config, logger *zerolog.Logger) *Worker {
	def := DefaultConfig()
	if cfg.Interval <= 0 {
		cfg.Interval = def.Interval
	}
	if cfg.RatePerSecond <= 0 {
		cfg.RatePerSecond = def.RatePerSecond
	}
	if cfg.Burst <= 0 {
		cfg.Burst = def.Burst
	}
	if cfg.MaxRetries <= 0 {
		cfg.MaxRetries = def.MaxRetries
	}

	return &Worker{
		queue:   queue,
		sink:    sink,
		limiter: rate.NewLimiter(rate.Limit(cfg.RatePerSecond), cfg.Burst),
		config:  cfg,
		logger:  logger,
	}
}

// taskPayload is the wire form of a booking stored in the queue. The queue
// row survives restarts, so the payload carries everything the mirror row
// needs instead of referencing live database state.
type taskPayload struct {
	BookingCode   string  `json:"booking_code"`
	CustomerName  string  `json:"customer_name"`
	Contact       string  `json:"contact,omitempty"`
	StationID     int64   `json:"station_id"`
	StationName   string  `json:"station_name"`
	BookingDate   string  `json:"booking_date"`
	StartTime     string  `json:"start_time"`
	EndTime       string  `json:"end_time"`
	DurationHours float64 `json:"duration_hours"`
	TotalPrice    float64 `json:"total_price"`
	Status        string  `json:"status"`
}

func payloadFromBooking(b *models.Booking) taskPayload {
	return taskPayload{
		BookingCode:   b.BookingCode,
		CustomerName:  b.CustomerName,
		Contact:       b.Contact,
		StationID:     b.StationID,
		StationName:   b.StationName,
		BookingDate:   b.BookingDate.Format(models.DateFormat),
		StartTime:     b.StartTime.Format("2006-01-02 15:04"),
		EndTime:       b.EndTime.Format("2006-01-02 15:04"),
		DurationHours: b.DurationHours,
		TotalPrice:    b.TotalPrice,
		Status:        b.Status,
	}
}

func (p taskPayload) toBooking() (*models.Booking, error) {
	date, err := time.Parse(models.DateFormat, p.BookingDate)
	if err != nil {
		return nil, fmt.Errorf("parse booking_date: %w", err)
	}
	start, err := time.Parse("2006-01-02 15:04", p.StartTime)
	if err != nil {
		return nil, fmt.Errorf("parse start_time: %w", err)
	}
	end, err := time.Parse("2006-01-02 15:04", p.EndTime)
	if err != nil {
		return nil, fmt.Errorf("parse end_time: %w", err)
	}
	return &models.Booking{
		BookingCode:   p.BookingCode,
		CustomerName:  p.CustomerName,
		Contact:       p.Contact,
		StationID:     p.StationID,
		StationName:   p.StationName,
		BookingDate:   date,
		StartTime:     start,
		EndTime:       end,
		DurationHours: p.DurationHours,
		TotalPrice:    p.TotalPrice,
		Status:        p.Status,
	}, nil
}

// EnqueueRecord queues a mirror append for a freshly created booking.
func (w *Worker) EnqueueRecord(ctx context.Context, booking *models.Booking) error {
	data, err := json.Marshal(payloadFromBooking(booking))
	if err != nil {
		return err
	}
	return w.queue.EnqueueSyncTask(ctx, database.TaskRecord, booking.BookingCode, string(data))
}

// EnqueueMarkCompleted queues a mirror status update.
func (w *Worker) EnqueueMarkCompleted(ctx context.Context, bookingCode string) error {
	return w.queue.EnqueueSyncTask(ctx, database.TaskMarkCompleted, bookingCode, "")
}

// Start runs the drain loop until ctx is cancelled. The loop also runs
// when the sink is disabled: the sink then accepts tasks as no-ops, which
// keeps the queue table from growing without bound.
func (w *Worker) Start(ctx context.Context) {
	if !w.sink.Enabled() {
		w.logger.Info().Msg("Mirror sink not configured, queued tasks are drained as no-ops")
	}

	w.logger.Info().Dur("interval", w.config.Interval).Msg("Sync worker started")

	ticker := time.NewTicker(w.config.Interval)
	defer ticker.Stop()

	w.ProcessPending(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			w.ProcessPending(ctx)
		}
	}
}

// ProcessPending claims due tasks and executes them one by one.
func (w *Worker) ProcessPending(ctx context.Context) {
	tasks, err := w.queue.ClaimSyncTasks(ctx, claimBatchSize, time.Now())
	if err != nil {
		w.logger.Error().Err(err).Msg("Failed to claim sync tasks")
		return
	}

	for _, task := range tasks {
		if err := w.limiter.Wait(ctx); err != nil {
			return
		}
		w.processTask(ctx, task)
	}
}

func (w *Worker) processTask(ctx context.Context, task database.SyncTask) {
	err := w.runTask(ctx, task)
	if err == nil {
		metrics.IncMirrorSync("ok")
		if err := w.queue.MarkSyncDone(ctx, task.ID); err != nil {
			w.logger.Error().Err(err).Int64("task_id", task.ID).Msg("Failed to mark sync task done")
		}
		return
	}

	w.logger.Warn().Err(err).
		Int64("task_id", task.ID).
		Str("task_type", task.TaskType).
		Str("booking_code", task.BookingCode).
		Int("retry_count", task.RetryCount).
		Msg("Mirror sync attempt failed")

	if task.RetryCount+1 >= w.config.MaxRetries {
		metrics.IncMirrorSync("failed")
		if err := w.queue.MarkSyncFailed(ctx, task.ID, err.Error()); err != nil {
			w.logger.Error().Err(err).Int64("task_id", task.ID).Msg("Failed to mark sync task failed")
		}
		return
	}

	metrics.IncMirrorSync("retry")
	next := time.Now().Add(retryBackoff(task.RetryCount))
	if err := w.queue.MarkSyncRetry(ctx, task.ID, err.Error(), next); err != nil {
		w.logger.Error().Err(err).Int64("task_id", task.ID).Msg("Failed to reschedule sync task")
	}
}

func (w *Worker) runTask(ctx context.Context, task database.SyncTask) error {
	switch task.TaskType {
	case database.TaskRecord:
		var p taskPayload
		if err := json.Unmarshal([]byte(task.Payload), &p); err != nil {
			return fmt.Errorf("decode payload: %w", err)
		}
		booking, err := p.toBooking()
		if err != nil {
			return err
		}
		return w.sink.Record(ctx, booking)
	case database.TaskMarkCompleted:
		return w.sink.MarkCompleted(ctx, task.BookingCode)
	default:
		return fmt.Errorf("unknown task type %q", task.TaskType)
	}
}

// retryBackoff doubles per attempt from 30s, capped at 30m.
func retryBackoff(retryCount int) time.Duration {
	backoff := 30 * time.Second
	for i := 0; i < retryCount && backoff < 30*time.Minute; i++ {
		backoff *= 2
	}
	if backoff > 30*time.Minute {
		backoff = 30 * time.Minute
	}
	return backoff
}
