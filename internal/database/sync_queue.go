package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

// Mirror sync task types.
const (
	TaskRecord        = "record"
	TaskMarkCompleted = "mark_completed"
)

// Sync task states.
const (
	SyncPending = "pending"
	SyncDone    = "done"
	SyncFailed  = "failed"
)

// SyncTask is one queued mirror write.
type SyncTask struct {
	ID          int64
	TaskType    string
	BookingCode string
	Payload     string
	RetryCount  int
}

// EnqueueSyncTask records a pending mirror write. Queue failures are the
// caller's to log; they never affect the authoritative booking row.
func (db *DB) EnqueueSyncTask(ctx context.Context, taskType, bookingCode, payload string) error {
	_, err := db.ExecContext(ctx, `
		INSERT INTO sync_queue (task_type, booking_code, payload, status, next_retry_at)
		VALUES (?, ?, ?, ?, ?)`,
		taskType, bookingCode, payload, SyncPending, time.Now(),
	)
	if err != nil {
		return fmt.Errorf("enqueue sync task: %w", err)
	}
	return nil
}

// ClaimSyncTasks returns pending tasks that are due, oldest first.
func (db *DB) ClaimSyncTasks(ctx context.Context, limit int, now time.Time) ([]SyncTask, error) {
	rows, err := db.QueryContext(ctx, `
		SELECT id, task_type, booking_code, payload, retry_count
		FROM sync_queue
		WHERE status = ? AND next_retry_at <= ?
		ORDER BY id
		LIMIT ?`,
		SyncPending, now, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tasks []SyncTask
	for rows.Next() {
		var t SyncTask
		var payload sql.NullString
		if err := rows.Scan(&t.ID, &t.TaskType, &t.BookingCode, &payload, &t.RetryCount); err != nil {
			return nil, err
		}
		t.Payload = payload.String
		tasks = append(tasks, t)
	}
	return tasks, rows.Err()
}

// MarkSyncDone marks a task processed.
func (db *DB) MarkSyncDone(ctx context.Context, id int64) error {
	_, err := db.ExecContext(ctx, `
		UPDATE sync_queue SET status = ?, processed_at = ? WHERE id = ?`,
		SyncDone, time.Now(), id)
	return err
}

// MarkSyncRetry schedules another attempt for a failed task.
func (db *DB) MarkSyncRetry(ctx context.Context, id int64, lastError string, nextRetry time.Time) error {
	_, err := db.ExecContext(ctx, `
		UPDATE sync_queue
		SET retry_count = retry_count + 1, last_error = ?, next_retry_at = ?
		WHERE id = ?`,
		lastError, nextRetry, id)
	return err
}

// MarkSyncFailed gives up on a task after exhausting retries.
func (db *DB) MarkSyncFailed(ctx context.Context, id int64, lastError string) error {
	_, err := db.ExecContext(ctx, `
		UPDATE sync_queue
		SET status = ?, last_error = ?, processed_at = ?
		WHERE id = ?`,
		SyncFailed, lastError, time.Now(), id)
	return err
}
