// Package lockout limits PIN guessing per client on top of the attempt ledger.
package lockout

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/iudanet/cvvault/internal/server/storage"
)

// Guard decides whether a client may try another PIN.
// Failures are counted per client key inside a fixed window; once
// maxAttempts is reached the client is blocked until the window passes.
// A successful attempt does not clear earlier failures.
type Guard struct {
	store       storage.AttemptStorage
	logger      *slog.Logger
	now         func() time.Time
	locks       map[string]*clientLock
	window      time.Duration
	maxAttempts int
	locksMu     sync.Mutex
}

type clientLock struct {
	mu   sync.Mutex
	refs int
}

// NewGuard creates a guard over the attempt storage
func NewGuard(store storage.AttemptStorage, maxAttempts int, window time.Duration, logger *slog.Logger) *Guard {
	return &Guard{
		store:       store,
		logger:      logger,
		now:         time.Now,
		locks:       make(map[string]*clientLock),
		window:      window,
		maxAttempts: maxAttempts,
	}
}

// Check returns how long the client must wait. Zero means it may proceed.
func (g *Guard) Check(ctx context.Context, client string) (time.Duration, error) {
	rec, err := g.store.GetAttempts(ctx, client)
	if err != nil {
		if errors.Is(err, storage.ErrAttemptsNotFound) {
			return 0, nil
		}
		return 0, fmt.Errorf("failed to read attempts: %w", err)
	}

	now := g.now()
	if rec.Expired(now, g.window) || rec.Count < g.maxAttempts {
		return 0, nil
	}

	return rec.FirstFailure.Add(g.window).Sub(now), nil
}

// Fail records one failed PIN attempt
func (g *Guard) Fail(ctx context.Context, client string) error {
	rec, err := g.store.RecordFailure(ctx, client, g.now(), g.window)
	if err != nil {
		return fmt.Errorf("failed to record attempt: %w", err)
	}

	if rec.Count == g.maxAttempts {
		g.logger.WarnContext(ctx, "client locked out after failed PIN attempts",
			slog.String("client", client),
			slog.Int("attempts", rec.Count),
			slog.Duration("window", g.window))
	}
	return nil
}

// Acquire serializes PIN attempts of one client: Check, the attempt itself
// and Fail run under the lock, so parallel requests see each other's failures.
// The returned function releases the lock.
func (g *Guard) Acquire(client string) func() {
	g.locksMu.Lock()
	l, ok := g.locks[client]
	if !ok {
		l = &clientLock{}
		g.locks[client] = l
	}
	l.refs++
	g.locksMu.Unlock()

	l.mu.Lock()

	return func() {
		l.mu.Unlock()

		g.locksMu.Lock()
		l.refs--
		if l.refs == 0 {
			delete(g.locks, client)
		}
		g.locksMu.Unlock()
	}
}

// Run periodically removes expired records until ctx is done
func (g *Guard) Run(ctx context.Context) {
	ticker := time.NewTicker(g.window)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			n, err := g.store.DeleteExpired(ctx, g.now(), g.window)
			if err != nil {
				g.logger.ErrorContext(ctx, "failed to clean up attempt ledger", slog.Any("error", err))
				continue
			}
			if n > 0 {
				g.logger.DebugContext(ctx, "attempt ledger cleaned up", slog.Int("deleted", n))
			}
		}
	}
}
