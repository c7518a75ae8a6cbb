package service

import (
	"context"
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/yndnr/gymdesk-go/internal/core/domain"
)

// AuthConfig holds configuration for AuthService.
type AuthConfig struct {
	// LoginRate is the sustained login attempts per second allowed per
	// username. Zero disables the limit.
	LoginRate float64

	// LoginBurst is the number of attempts allowed in a burst.
	LoginBurst int

	// RevokeOnPasswordChange ends the user's other sessions when the
	// password changes.
	RevokeOnPasswordChange bool
}

// DefaultAuthConfig returns default configuration: five attempts in a
// burst, refilled at one per twelve seconds.
func DefaultAuthConfig() *AuthConfig {
	return &AuthConfig{
		LoginRate:              1.0 / 12,
		LoginBurst:             5,
		RevokeOnPasswordChange: true,
	}
}

// AuthService implements login, logout, token introspection and
// password change on top of SessionService.
type AuthService struct {
	creds    *CredentialService
	users    UserRepository
	sessions *SessionService
	limiters *RateLimiterRegistry
	cfg      AuthConfig
}

// NewAuthService creates a new AuthService.
func NewAuthService(creds *CredentialService, users UserRepository, sessions *SessionService, cfg *AuthConfig) *AuthService {
	if cfg == nil {
		cfg = DefaultAuthConfig()
	}
	return &AuthService{
		creds:    creds,
		users:    users,
		sessions: sessions,
		limiters: NewRateLimiterRegistry(rate.Limit(cfg.LoginRate), cfg.LoginBurst),
		cfg:      *cfg,
	}
}

// LoginRequest contains login credentials.
type LoginRequest struct {
	Username  string
	Password  string
	ClientIP  string
	UserAgent string
}

// LoginResponse contains the issued token.
type LoginResponse struct {
	Token     string
	Username  string
	SessionID string
	ExpiresAt int64
}

// Login verifies credentials and issues a new session.
func (s *AuthService) Login(ctx context.Context, req *LoginRequest) (*LoginResponse, error) {
	username := strings.TrimSpace(req.Username)
	var fields []domain.FieldError
	if username == "" {
		fields = append(fields, domain.FieldError{Field: "username", Message: "is required"})
	}
	if req.Password == "" {
		fields = append(fields, domain.FieldError{Field: "password", Message: "is required"})
	}
	if len(fields) > 0 {
		return nil, domain.ErrValidation.WithFields(fields...)
	}

	if s.cfg.LoginRate > 0 && !s.limiters.Allow(username) {
		return nil, domain.ErrLoginThrottled
	}

	user, err := s.creds.Authenticate(ctx, username, req.Password)
	if err != nil {
		return nil, err
	}

	resp, err := s.sessions.Create(ctx, &CreateSessionRequest{
		Username:  user.Username,
		ClientIP:  req.ClientIP,
		UserAgent: req.UserAgent,
	})
	if err != nil {
		return nil, err
	}

	return &LoginResponse{
		Token:     resp.Token,
		Username:  user.Username,
		SessionID: resp.SessionID,
		ExpiresAt: resp.ExpiresAt,
	}, nil
}

// Logout revokes the token. Unknown tokens are ignored.
func (s *AuthService) Logout(ctx context.Context, tok string) {
	s.sessions.Revoke(ctx, tok)
}

// ValidateResponse reports the state of a token.
type ValidateResponse struct {
	Valid    bool
	Username string
}

// Validate reports whether tok is live and who it belongs to.
func (s *AuthService) Validate(ctx context.Context, tok string) *ValidateResponse {
	if !s.sessions.IsValid(ctx, tok) {
		return &ValidateResponse{}
	}
	username, ok := s.sessions.ResolveUsername(ctx, tok)
	if !ok {
		return &ValidateResponse{}
	}
	return &ValidateResponse{Valid: true, Username: username}
}

// ChangePasswordRequest contains parameters for a password change.
type ChangePasswordRequest struct {
	Username    string
	OldPassword string
	NewPassword string

	// CurrentToken survives the revocation of the user's other sessions.
	CurrentToken string
}

// MinPasswordLength is the minimum length of a user-chosen password.
const MinPasswordLength = 8

// ChangePassword verifies the old password and stores a hash of the new one.
func (s *AuthService) ChangePassword(ctx context.Context, req *ChangePasswordRequest) error {
	var fields []domain.FieldError
	if strings.TrimSpace(req.Username) == "" {
		fields = append(fields, domain.FieldError{Field: "username", Message: "is required"})
	}
	if req.OldPassword == "" {
		fields = append(fields, domain.FieldError{Field: "oldPassword", Message: "is required"})
	}
	switch {
	case req.NewPassword == "":
		fields = append(fields, domain.FieldError{Field: "newPassword", Message: "is required"})
	case len(req.NewPassword) < MinPasswordLength:
		fields = append(fields, domain.FieldError{Field: "newPassword", Message: "must be at least 8 characters"})
	}
	if len(fields) > 0 {
		return domain.ErrValidation.WithFields(fields...)
	}

	user, err := s.creds.Authenticate(ctx, req.Username, req.OldPassword)
	if err != nil {
		return err
	}

	hash, err := s.creds.HashPassword(req.NewPassword)
	if err != nil {
		return domain.ErrInternalServer.WithCause(err)
	}
	if err := s.users.UpdatePassword(ctx, user.Username, hash); err != nil {
		return err
	}

	if s.cfg.RevokeOnPasswordChange {
		s.sessions.RevokeUserExcept(ctx, user.Username, req.CurrentToken)
	}
	return nil
}

// RateLimiterRegistry hands out one token-bucket limiter per key.
type RateLimiterRegistry struct {
	mu       sync.Mutex
	limiters map[string]*limiterEntry
	limit    rate.Limit
	burst    int
	idle     time.Duration
	lastGC   time.Time
}

type limiterEntry struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// NewRateLimiterRegistry creates a registry whose limiters allow limit
// events per second with the given burst.
func NewRateLimiterRegistry(limit rate.Limit, burst int) *RateLimiterRegistry {
	if burst <= 0 {
		burst = 1
	}
	return &RateLimiterRegistry{
		limiters: make(map[string]*limiterEntry),
		limit:    limit,
		burst:    burst,
		idle:     10 * time.Minute,
		lastGC:   time.Now(),
	}
}

// Allow reports whether an event for key may happen now.
func (r *RateLimiterRegistry) Allow(key string) bool {
	return r.get(key).Allow()
}

func (r *RateLimiterRegistry) get(key string) *rate.Limiter {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now()
	if now.Sub(r.lastGC) > r.idle {
		for k, e := range r.limiters {
			if now.Sub(e.lastSeen) > r.idle {
				delete(r.limiters, k)
			}
		}
		r.lastGC = now
	}

	e, ok := r.limiters[key]
	if !ok {
		e = &limiterEntry{limiter: rate.NewLimiter(r.limit, r.burst)}
		r.limiters[key] = e
	}
	e.lastSeen = now
	return e.limiter
}

// Delete removes the limiter for key.
func (r *RateLimiterRegistry) Delete(key string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.limiters, key)
}

// Len returns the number of tracked keys.
func (r *RateLimiterRegistry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.limiters)
}
