package persistence

import (
	"context"
	"time"

	"github.com/nestkv/nestkv/pkg/cache"
)

// SessionMedium is the session-scoped byte-string medium: documents live
// in process memory and expire after the session TTL, mirroring storage
// whose retention ends with the owning session. Contents vanish when the
// process exits.
type SessionMedium struct {
	docs *cache.Cache[string, string]
}

// NewSessionMedium creates the medium with the given entry TTL and
// expired-entry sweep interval. Non-positive values fall back to the
// cache defaults.
func NewSessionMedium(ttl, sweep time.Duration) *SessionMedium {
	return &SessionMedium{
		docs: cache.New[string, string](
			cache.WithDefaultTTL[string, string](ttl),
			cache.WithCleanupInterval[string, string](sweep),
		),
	}
}

// Load returns the document stored under root, if it has not expired.
func (s *SessionMedium) Load(_ context.Context, root string) (string, bool, error) {
	doc, found := s.docs.Get(root)
	return doc, found, nil
}

// Store writes the document under root, restarting its TTL.
func (s *SessionMedium) Store(_ context.Context, root string, doc string) error {
	s.docs.Set(root, doc)
	return nil
}

// Remove deletes the document under root.
func (s *SessionMedium) Remove(_ context.Context, root string) error {
	s.docs.Delete(root)
	return nil
}

// Keys lists the names of all live documents.
func (s *SessionMedium) Keys(_ context.Context) ([]string, error) {
	return s.docs.Keys(), nil
}

// Clear drops every document.
func (s *SessionMedium) Clear(_ context.Context) error {
	s.docs.Clear()
	return nil
}

// Close stops the cache's cleanup goroutine.
func (s *SessionMedium) Close() {
	s.docs.Stop()
}
