package memory

import (
	"context"
	"time"

	"github.com/yndnr/gymdesk-go/internal/core/domain"
	"github.com/yndnr/gymdesk-go/pkg/cmap"
)

// DefaultMaxSessionsPerUser is the default quota of sessions per user.
// Zero disables the quota.
const DefaultMaxSessionsPerUser = 0

// Store provides in-memory session storage keyed by token hash.
type Store struct {
	// Primary index: TokenHash -> Session
	sessions *cmap.Map[*domain.Session]

	// Secondary index: Username -> set of TokenHashes
	users *UserIndex

	maxSessionsPerUser int
	shards             int
}

// Option configures the Store.
type Option func(*Store)

// WithMaxSessionsPerUser caps concurrent sessions per user. Zero means
// unlimited.
func WithMaxSessionsPerUser(max int) Option {
	return func(s *Store) {
		s.maxSessionsPerUser = max
	}
}

// WithShardCount sets the number of shards of the primary index.
func WithShardCount(n int) Option {
	return func(s *Store) {
		s.shards = n
	}
}

// New creates a new in-memory store.
func New(opts ...Option) *Store {
	s := &Store{
		maxSessionsPerUser: DefaultMaxSessionsPerUser,
		shards:             cmap.DefaultShardCount,
	}
	for _, opt := range opts {
		opt(s)
	}

	s.sessions = cmap.NewWithShards[*domain.Session](s.shards)
	s.users = NewUserIndex()
	return s
}

// Create stores a new session. It fails with ErrSessionConflict if the
// token hash is already bound, leaving the existing session untouched.
func (s *Store) Create(_ context.Context, session *domain.Session) error {
	if err := session.Validate(); err != nil {
		return err
	}

	clone := session.Clone()
	if err := s.users.Reserve(clone.Username, clone.TokenHash, s.maxSessionsPerUser); err != nil {
		return err
	}
	if !s.sessions.SetIfAbsent(clone.TokenHash, clone) {
		s.users.Remove(clone.Username, clone.TokenHash)
		return domain.ErrSessionConflict
	}
	return nil
}

// GetByTokenHash returns a copy of the session bound to tokenHash.
// Stored sessions are replaced, never mutated, so the copy is consistent.
func (s *Store) GetByTokenHash(_ context.Context, tokenHash string) (*domain.Session, error) {
	session, ok := s.sessions.Get(tokenHash)
	if !ok {
		return nil, domain.ErrSessionNotFound
	}
	return session.Clone(), nil
}

// Touch records activity on a session.
func (s *Store) Touch(_ context.Context, tokenHash string, at time.Time) error {
	_, ok := s.sessions.Compute(tokenHash, func(v *domain.Session, exists bool) (*domain.Session, bool) {
		if !exists {
			return nil, false
		}
		updated := v.Clone()
		updated.Touch(at)
		return updated, true
	})
	if !ok {
		return domain.ErrSessionNotFound
	}
	return nil
}

// Delete removes the session bound to tokenHash.
func (s *Store) Delete(_ context.Context, tokenHash string) error {
	session, ok := s.sessions.Pop(tokenHash)
	if !ok {
		return domain.ErrSessionNotFound
	}
	s.users.Remove(session.Username, tokenHash)
	return nil
}

// DeleteIf removes the session bound to tokenHash when pred holds for it.
// It reports whether a session was removed.
func (s *Store) DeleteIf(_ context.Context, tokenHash string, pred func(*domain.Session) bool) (bool, error) {
	session, ok := s.sessions.DeleteIf(tokenHash, pred)
	if !ok {
		return false, nil
	}
	s.users.Remove(session.Username, tokenHash)
	return true, nil
}

// ListByUsername returns copies of all sessions held by username.
func (s *Store) ListByUsername(_ context.Context, username string) ([]*domain.Session, error) {
	hashes := s.users.Get(username)
	out := make([]*domain.Session, 0, len(hashes))
	for _, h := range hashes {
		if session, ok := s.sessions.Get(h); ok {
			out = append(out, session.Clone())
		}
	}
	return out, nil
}

// DeleteByUsername removes every session held by username and returns
// how many were removed.
func (s *Store) DeleteByUsername(_ context.Context, username string) (int, error) {
	deleted := 0
	for _, h := range s.users.Get(username) {
		session, ok := s.sessions.DeleteIf(h, func(v *domain.Session) bool {
			return v.Username == username
		})
		if !ok {
			continue
		}
		s.users.Remove(session.Username, h)
		deleted++
	}
	return deleted, nil
}

// DeleteExpired removes every session for which expired returns true.
func (s *Store) DeleteExpired(_ context.Context, expired func(*domain.Session) bool) (int, error) {
	removed := s.sessions.Sweep(func(_ string, v *domain.Session) bool {
		return expired(v)
	})
	for h, session := range removed {
		s.users.Remove(session.Username, h)
	}
	return len(removed), nil
}

// Count returns the total number of sessions.
func (s *Store) Count() int {
	return s.sessions.Count()
}

// CountByUsername returns the number of sessions held by username.
func (s *Store) CountByUsername(username string) int {
	return s.users.Count(username)
}

// Users returns the number of distinct users holding sessions.
func (s *Store) Users() int {
	return s.users.Users()
}
