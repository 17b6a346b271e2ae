package storage

import (
	"context"
	"time"
)

// AttemptRecord holds failed PIN attempts of one client inside the current window.
// Only the client key, counters and timestamps are stored.
type AttemptRecord struct {
	FirstFailure time.Time `json:"first_failure"` // начало текущего окна
	LastFailure  time.Time `json:"last_failure"`  // последняя неудачная попытка
	Key          string    `json:"key"`           // IP клиента
	Count        int       `json:"count"`         // число неудач в окне
}

// Expired reports whether the window that started at FirstFailure has passed
func (r *AttemptRecord) Expired(now time.Time, window time.Duration) bool {
	return !now.Before(r.FirstFailure.Add(window))
}

// AttemptStorage defines persistence for the failed-attempt ledger
type AttemptStorage interface {
	// RecordFailure atomically counts one failure for key.
	// A record whose window has passed starts over at 1.
	RecordFailure(ctx context.Context, key string, now time.Time, window time.Duration) (*AttemptRecord, error)

	// GetAttempts returns the record for key
	// Returns ErrAttemptsNotFound if there is none
	GetAttempts(ctx context.Context, key string) (*AttemptRecord, error)

	// DeleteExpired removes records whose window has passed
	// Returns number of deleted records
	DeleteExpired(ctx context.Context, now time.Time, window time.Duration) (int, error)

	// Close releases the underlying database
	Close() error
}
