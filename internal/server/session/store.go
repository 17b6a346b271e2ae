// Package session keeps login sessions in memory. A session holds the PIN
// for its lifetime so that document operations can derive keys; nothing
// here is ever written to disk.
package session

import (
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/iudanet/cvvault/internal/vault"
)

// ErrSessionNotFound indicates an unknown or expired session
var ErrSessionNotFound = errors.New("session not found")

type entry struct {
	expiresAt time.Time
	creds     vault.Credentials
}

// Store maps session ids to credentials with a fixed TTL
type Store struct {
	sessions map[string]*entry
	logger   *slog.Logger
	stopC    chan struct{}
	now      func() time.Time
	ttl      time.Duration
	mu       sync.RWMutex
	stopOnce sync.Once
}

// NewStore creates a session store and starts periodic cleanup of expired sessions
func NewStore(ttl time.Duration, logger *slog.Logger) *Store {
	s := &Store{
		sessions: make(map[string]*entry),
		logger:   logger,
		stopC:    make(chan struct{}),
		now:      time.Now,
		ttl:      ttl,
	}

	go s.cleanup()

	return s
}

// TTL returns the session lifetime
func (s *Store) TTL() time.Duration {
	return s.ttl
}

// Create opens a session for creds and returns its id and expiry
func (s *Store) Create(creds vault.Credentials) (string, time.Time, error) {
	id, err := uuid.NewRandom()
	if err != nil {
		return "", time.Time{}, err
	}

	expiresAt := s.now().Add(s.ttl)

	s.mu.Lock()
	s.sessions[id.String()] = &entry{creds: creds, expiresAt: expiresAt}
	s.mu.Unlock()

	return id.String(), expiresAt, nil
}

// Get returns the credentials of a live session
func (s *Store) Get(id string) (vault.Credentials, error) {
	s.mu.RLock()
	e, ok := s.sessions[id]
	s.mu.RUnlock()

	if !ok || !s.now().Before(e.expiresAt) {
		return vault.Credentials{}, ErrSessionNotFound
	}
	return e.creds, nil
}

// Update replaces the credentials of a live session, keeping its expiry
func (s *Store) Update(id string, creds vault.Credentials) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.sessions[id]
	if !ok || !s.now().Before(e.expiresAt) {
		return ErrSessionNotFound
	}
	e.creds = creds
	return nil
}

// Delete ends a session. Unknown ids are ignored.
func (s *Store) Delete(id string) {
	s.mu.Lock()
	delete(s.sessions, id)
	s.mu.Unlock()
}

// Len returns the number of stored sessions, including expired ones not yet cleaned up
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}

// Stop terminates the cleanup goroutine
func (s *Store) Stop() {
	s.stopOnce.Do(func() { close(s.stopC) })
}

func (s *Store) cleanup() {
	ticker := time.NewTicker(s.ttl)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if n := s.removeExpired(); n > 0 {
				s.logger.Debug("expired sessions removed", slog.Int("count", n))
			}
		case <-s.stopC:
			return
		}
	}
}

func (s *Store) removeExpired() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	removed := 0
	for id, e := range s.sessions {
		if !now.Before(e.expiresAt) {
			delete(s.sessions, id)
			removed++
		}
	}
	return removed
}
