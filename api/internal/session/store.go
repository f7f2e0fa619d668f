// Package session keeps ephemeral per-user state for the chat channels.
// The analysis pipeline never reads it. It exists for diagnostics and
// possible future personalization.
package session

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

// DefaultMaxAge is how long an idle session survives before the sweeper
// drops it.
const DefaultMaxAge = 24 * time.Hour

type Session struct {
	Identity    string
	LastMessage string
	LastSeen    time.Time
}

// Store is a lock-guarded identity -> session map. Construct one at
// process start and hand it to every handler that needs it.
type Store struct {
	mu  sync.Mutex
	m   map[string]*Session
	log *zap.SugaredLogger

	now func() time.Time // test hook
}

func NewStore(log *zap.SugaredLogger) *Store {
	return &Store{
		m:   make(map[string]*Session),
		log: log,
		now: time.Now,
	}
}

// Touch upserts the session for identity, refreshing last message and
// last-seen time. Called on every inbound chat event.
func (s *Store) Touch(identity, text string) {
	if identity == "" {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.m[identity]
	if !ok {
		sess = &Session{Identity: identity}
		s.m[identity] = sess
	}
	sess.LastMessage = text
	sess.LastSeen = s.now()
}

// Get returns a copy of the session for identity, if any.
func (s *Store) Get(identity string) (Session, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.m[identity]
	if !ok {
		return Session{}, false
	}
	return *sess, true
}

// Len reports the number of live sessions.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.m)
}

// Sweep removes every session idle for strictly longer than maxAge and
// returns how many were removed.
func (s *Store) Sweep(maxAge time.Duration) int {
	cutoff := s.now().Add(-maxAge)
	s.mu.Lock()
	defer s.mu.Unlock()
	removed := 0
	for id, sess := range s.m {
		if sess.LastSeen.Before(cutoff) {
			delete(s.m, id)
			removed++
		}
	}
	return removed
}

// Run sweeps on a timer until ctx is cancelled.
func (s *Store) Run(ctx context.Context, interval, maxAge time.Duration) {
	t := time.NewTicker(interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			if n := s.Sweep(maxAge); n > 0 {
				s.log.Infow("swept idle sessions", "removed", n)
			}
		}
	}
}
