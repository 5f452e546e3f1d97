package session

import (
	"context"
	"io"
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/scrolly/pkg/errors"
)

// MemoryStore keeps sessions in process memory. Pages hold live charts,
// so they are never serialized.
type MemoryStore struct {
	ttl time.Duration

	mu       sync.Mutex
	sessions map[string]*Session
}

// NewMemoryStore creates a store whose sessions expire after ttl of
// inactivity. ttl <= 0 disables expiry.
func NewMemoryStore(ttl time.Duration) *MemoryStore {
	return &MemoryStore{ttl: ttl, sessions: make(map[string]*Session)}
}

// TTL returns the idle lifetime.
func (s *MemoryStore) TTL() time.Duration { return s.ttl }

func (s *MemoryStore) Get(ctx context.Context, id string) (*Session, error) {
	s.mu.Lock()
	sess, ok := s.sessions[id]
	if ok && sess.IsExpired() {
		delete(s.sessions, id)
		s.mu.Unlock()
		sess.Close()
		return nil, errors.New(errors.ErrCodeNotFound, "session %q expired", id)
	}
	if ok && s.ttl > 0 {
		sess.ExpiresAt = time.Now().Add(s.ttl)
	}
	s.mu.Unlock()

	if !ok {
		return nil, errors.New(errors.ErrCodeNotFound, "session %q not found", id)
	}
	return sess, nil
}

func (s *MemoryStore) Set(ctx context.Context, sess *Session) error {
	if sess == nil || sess.ID == "" {
		return errors.New(errors.ErrCodeInvalidInput, "session has no id")
	}
	s.mu.Lock()
	old := s.sessions[sess.ID]
	s.sessions[sess.ID] = sess
	s.mu.Unlock()

	if old != nil && old != sess {
		old.Close()
	}
	return nil
}

func (s *MemoryStore) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	sess, ok := s.sessions[id]
	delete(s.sessions, id)
	s.mu.Unlock()

	if ok {
		sess.Close()
	}
	return nil
}

func (s *MemoryStore) Cleanup(ctx context.Context) (int, error) {
	var expired []*Session
	s.mu.Lock()
	for id, sess := range s.sessions {
		if sess.IsExpired() {
			expired = append(expired, sess)
			delete(s.sessions, id)
		}
	}
	s.mu.Unlock()

	for _, sess := range expired {
		sess.Close()
	}
	return len(expired), nil
}

// Len returns the number of stored sessions, expired or not.
func (s *MemoryStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

// Close closes every session.
func (s *MemoryStore) Close() error {
	s.mu.Lock()
	all := s.sessions
	s.sessions = make(map[string]*Session)
	s.mu.Unlock()

	for _, sess := range all {
		sess.Close()
	}
	return nil
}

var _ Store = (*MemoryStore)(nil)

// Reap runs store.Cleanup every interval until ctx is done.
func Reap(ctx context.Context, store Store, interval time.Duration, logger *log.Logger) {
	if interval <= 0 {
		return
	}
	if logger == nil {
		logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			n, err := store.Cleanup(ctx)
			if err != nil {
				logger.Warn("session cleanup failed", "err", err)
				continue
			}
			if n > 0 {
				logger.Debug("sessions expired", "count", n)
			}
		}
	}
}
