package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/yndnr/gymdesk-go/internal/core/domain"
	"github.com/yndnr/gymdesk-go/pkg/token"
)

const (
	// maxIssueAttempts bounds regeneration when a fresh token hash is
	// already bound. With 256-bit tokens a second attempt is never
	// expected in practice.
	maxIssueAttempts = 3

	// touchGranularity limits LastActive writes on hot tokens.
	touchGranularity = time.Second
)

// SessionConfig controls session expiry.
type SessionConfig struct {
	// TTL is the absolute lifetime of a session. Zero disables expiry.
	TTL time.Duration

	// IdleTimeout expires sessions without activity for this long.
	// Zero disables the idle check.
	IdleTimeout time.Duration

	// CleanupInterval is the period of the background sweep started by
	// RunCleanup. Zero disables the sweep; expired sessions are then only
	// removed when they are read.
	CleanupInterval time.Duration
}

// DefaultSessionConfig returns sessions that never expire, matching the
// behaviour of an explicit-logout-only deployment.
func DefaultSessionConfig() *SessionConfig {
	return &SessionConfig{
		CleanupInterval: time.Minute,
	}
}

// SessionService owns the lifecycle of opaque bearer tokens.
//
// Reads never fail: unknown, malformed, revoked or expired tokens are
// reported as absent, and the caller decides how to react.
type SessionService struct {
	repo   SessionRepository
	cfg    SessionConfig
	now    func() time.Time
	newTok func() (string, error)
	logger *slog.Logger
}

// SessionOption configures a SessionService.
type SessionOption func(*SessionService)

// WithClock overrides the time source.
func WithClock(now func() time.Time) SessionOption {
	return func(s *SessionService) {
		s.now = now
	}
}

// WithTokenGenerator overrides the token source.
func WithTokenGenerator(gen func() (string, error)) SessionOption {
	return func(s *SessionService) {
		s.newTok = gen
	}
}

// WithSessionLogger sets the logger used by the cleanup loop.
func WithSessionLogger(logger *slog.Logger) SessionOption {
	return func(s *SessionService) {
		s.logger = logger
	}
}

// NewSessionService creates a new SessionService.
func NewSessionService(repo SessionRepository, cfg *SessionConfig, opts ...SessionOption) *SessionService {
	if cfg == nil {
		cfg = DefaultSessionConfig()
	}
	s := &SessionService{
		repo:   repo,
		cfg:    *cfg,
		now:    time.Now,
		newTok: token.New,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// CreateSessionRequest contains parameters for session creation.
type CreateSessionRequest struct {
	Username  string // Required
	ClientIP  string // Optional
	UserAgent string // Optional
}

// CreateSessionResponse contains the result of session creation.
type CreateSessionResponse struct {
	SessionID string // Safe to log
	Token     string // Plaintext token, only returned here
	ExpiresAt int64  // Unix milliseconds, 0 if the session does not expire
}

// Create issues a new session for a user that has just passed a
// credential check. Existing sessions of the same user stay valid.
func (s *SessionService) Create(ctx context.Context, req *CreateSessionRequest) (*CreateSessionResponse, error) {
	username := strings.TrimSpace(req.Username)
	if username == "" {
		return nil, domain.ErrValidation.WithFields(domain.FieldError{Field: "username", Message: "is required"})
	}

	for attempt := 0; attempt < maxIssueAttempts; attempt++ {
		plain, err := s.newTok()
		if err != nil {
			return nil, domain.ErrInternalServer.WithCause(err)
		}

		session, err := domain.NewSession(username, token.Hash(plain))
		if err != nil {
			return nil, err
		}
		session.ClientIP = truncate(req.ClientIP, domain.MaxIPAddressLength)
		session.UserAgent = truncate(req.UserAgent, domain.MaxUserAgentLength)
		now := s.now()
		session.CreatedAt = now.UnixMilli()
		session.LastActive = session.CreatedAt
		session.SetTTL(s.cfg.TTL)

		err = s.repo.Create(ctx, session)
		if errors.Is(err, domain.ErrSessionConflict) {
			continue
		}
		if err != nil {
			return nil, err
		}

		return &CreateSessionResponse{
			SessionID: session.ID,
			Token:     plain,
			ExpiresAt: session.ExpiresAt,
		}, nil
	}

	return nil, domain.ErrSessionConflict.WithDetails("could not allocate a unique token")
}

// Issue creates a session for username and returns its token.
func (s *SessionService) Issue(ctx context.Context, username string) (string, error) {
	resp, err := s.Create(ctx, &CreateSessionRequest{Username: username})
	if err != nil {
		return "", err
	}
	return resp.Token, nil
}

// IsValid reports whether tok identifies a live session.
func (s *SessionService) IsValid(ctx context.Context, tok string) bool {
	_, ok := s.lookup(ctx, tok)
	return ok
}

// IsValidFor reports whether tok identifies a live session bound to
// username. An absent token yields false.
func (s *SessionService) IsValidFor(ctx context.Context, username, tok string) bool {
	session, ok := s.lookup(ctx, tok)
	if !ok {
		return false
	}
	return session.Username == username
}

// ResolveUsername returns the username bound to tok.
func (s *SessionService) ResolveUsername(ctx context.Context, tok string) (string, bool) {
	session, ok := s.lookup(ctx, tok)
	if !ok {
		return "", false
	}
	return session.Username, true
}

// Get returns a copy of the live session for tok.
func (s *SessionService) Get(ctx context.Context, tok string) (*domain.Session, bool) {
	return s.lookup(ctx, tok)
}

// Revoke ends the session for tok. Unknown tokens are ignored.
func (s *SessionService) Revoke(ctx context.Context, tok string) {
	if tok == "" {
		return
	}
	_ = s.repo.Delete(ctx, token.Hash(tok))
}

// RevokeUser ends every session held by username and returns how many
// were removed.
func (s *SessionService) RevokeUser(ctx context.Context, username string) int {
	n, _ := s.repo.DeleteByUsername(ctx, username)
	return n
}

// RevokeUserExcept ends every session of username other than keep.
func (s *SessionService) RevokeUserExcept(ctx context.Context, username, keep string) int {
	keepHash := token.Hash(keep)
	sessions, err := s.repo.ListByUsername(ctx, username)
	if err != nil {
		return 0
	}
	n := 0
	for _, session := range sessions {
		if session.TokenHash == keepHash {
			continue
		}
		if s.repo.Delete(ctx, session.TokenHash) == nil {
			n++
		}
	}
	return n
}

// Count returns the number of stored sessions, including expired ones not
// yet swept.
func (s *SessionService) Count() int {
	return s.repo.Count()
}

// CleanupExpired removes every expired session.
func (s *SessionService) CleanupExpired(ctx context.Context) (int, error) {
	if s.cfg.TTL <= 0 && s.cfg.IdleTimeout <= 0 {
		return 0, nil
	}
	now := s.now()
	return s.repo.DeleteExpired(ctx, func(session *domain.Session) bool {
		return session.IsExpiredAt(now, s.cfg.IdleTimeout)
	})
}

// RunCleanup sweeps expired sessions every CleanupInterval until ctx is
// done. It returns immediately when expiry or the sweep is disabled.
func (s *SessionService) RunCleanup(ctx context.Context) {
	if s.cfg.CleanupInterval <= 0 || (s.cfg.TTL <= 0 && s.cfg.IdleTimeout <= 0) {
		return
	}

	ticker := time.NewTicker(s.cfg.CleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			n, err := s.CleanupExpired(ctx)
			if err != nil {
				s.logger.Error("session cleanup failed", "error", err)
				continue
			}
			if n > 0 {
				s.logger.Debug("expired sessions removed", "count", n)
			}
		}
	}
}

func (s *SessionService) lookup(ctx context.Context, tok string) (*domain.Session, bool) {
	if !token.IsWellFormed(tok) {
		return nil, false
	}
	hash := token.Hash(tok)

	session, err := s.repo.GetByTokenHash(ctx, hash)
	if err != nil {
		return nil, false
	}

	now := s.now()
	if session.IsExpiredAt(now, s.cfg.IdleTimeout) {
		_, _ = s.repo.DeleteIf(ctx, hash, func(cur *domain.Session) bool {
			return cur.IsExpiredAt(now, s.cfg.IdleTimeout)
		})
		return nil, false
	}

	if now.UnixMilli()-session.LastActive >= touchGranularity.Milliseconds() {
		_ = s.repo.Touch(ctx, hash, now)
	}
	return session, true
}

func truncate(s string, max int) string {
	if len(s) > max {
		return s[:max]
	}
	return s
}
