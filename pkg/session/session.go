// Package session keeps one live article page per reader.
//
// A session is created when a reader opens the article. Its page owns the
// reader's charts, so steps and viewport changes from one browser never
// touch another's. Sessions expire after an idle TTL; expiry closes the
// page and stops its pending relayouts.
//
//	store := session.NewMemoryStore(30 * time.Minute)
//	go store.Reap(ctx, time.Minute, logger)
//
//	sess, _ := session.New(page, store.TTL())
//	_ = store.Set(ctx, sess)
//
//	sess, err := store.Get(ctx, id) // touches the session
package session

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/matzehuels/scrolly/pkg/article"
	"github.com/matzehuels/scrolly/pkg/errors"
)

// DefaultTTL is the idle lifetime of a session.
const DefaultTTL = 30 * time.Minute

// Session is one reader's page.
type Session struct {
	ID        string        `json:"id"`
	Page      *article.Page `json:"-"`
	CreatedAt time.Time     `json:"created_at"`
	ExpiresAt time.Time     `json:"expires_at"`
}

// IsExpired reports whether the session has been idle past its TTL.
func (s *Session) IsExpired() bool {
	return !s.ExpiresAt.IsZero() && time.Now().After(s.ExpiresAt)
}

// Close releases the session's page.
func (s *Session) Close() {
	if s.Page != nil {
		s.Page.Close()
	}
}

// Store is the interface for session storage backends.
type Store interface {
	// Get returns the session and extends its expiry. Missing and
	// expired sessions are NOT_FOUND.
	Get(ctx context.Context, id string) (*Session, error)

	// Set stores a session, replacing and closing any previous one with
	// the same ID.
	Set(ctx context.Context, sess *Session) error

	// Delete closes and removes a session. Deleting a missing session is
	// not an error.
	Delete(ctx context.Context, id string) error

	// Cleanup closes and removes expired sessions and reports how many.
	Cleanup(ctx context.Context) (int, error)
}

// New creates a session for page with a random ID.
func New(page *article.Page, ttl time.Duration) (*Session, error) {
	if page == nil {
		return nil, errors.New(errors.ErrCodeInvalidInput, "session needs a page")
	}
	id, err := uuid.NewRandom()
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "generate session id")
	}
	now := time.Now()
	sess := &Session{ID: id.String(), Page: page, CreatedAt: now}
	if ttl > 0 {
		sess.ExpiresAt = now.Add(ttl)
	}
	return sess, nil
}

// ValidID reports whether id has the form New generates.
func ValidID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}
