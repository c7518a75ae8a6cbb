package domain

import (
	"crypto/rand"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"
)

// Session constraints.
const (
	MaxUsernameLength  = 128
	MaxIPAddressLength = 45 // IPv6 max length
	MaxUserAgentLength = 512

	// SessionIDPrefix is the prefix for session IDs.
	SessionIDPrefix = "gdss-"
)

// Session binds a hashed bearer token to the username that logged in.
// A user may hold several sessions at once.
type Session struct {
	// ID is a ULID-based identifier, safe to log and expose.
	// Format: gdss-{ulid_lowercase}.
	ID string `json:"id"`

	// TokenHash is the SHA-256 hash of the bearer token (gdth_ prefix).
	TokenHash string `json:"token_hash"`

	// Username is the principal the token authenticates as.
	Username string `json:"username"`

	// ClientIP is the client address at login.
	ClientIP string `json:"client_ip,omitempty"`

	// UserAgent is the client user agent at login.
	UserAgent string `json:"user_agent,omitempty"`

	// CreatedAt is the login timestamp (Unix milliseconds).
	CreatedAt int64 `json:"created_at"`

	// LastActive is the last successful validation (Unix milliseconds).
	LastActive int64 `json:"last_active"`

	// ExpiresAt is the absolute expiry (Unix milliseconds). Zero means never.
	ExpiresAt int64 `json:"expires_at"`
}

// NewSession creates a session for username keyed by tokenHash.
func NewSession(username, tokenHash string) (*Session, error) {
	id, err := GenerateSessionID()
	if err != nil {
		return nil, err
	}

	now := time.Now().UnixMilli()
	return &Session{
		ID:         id,
		TokenHash:  tokenHash,
		Username:   username,
		CreatedAt:  now,
		LastActive: now,
	}, nil
}

// GenerateSessionID generates a new session ID using ULID.
func GenerateSessionID() (string, error) {
	return generatePrefixedID(SessionIDPrefix)
}

func generatePrefixedID(prefix string) (string, error) {
	id, err := ulid.New(ulid.Timestamp(time.Now()), rand.Reader)
	if err != nil {
		return "", ErrInternalServer.WithCause(err)
	}
	return prefix + strings.ToLower(id.String()), nil
}

// SetTTL sets an absolute expiry ttl after creation. A non-positive ttl
// clears the expiry.
func (s *Session) SetTTL(ttl time.Duration) {
	if ttl <= 0 {
		s.ExpiresAt = 0
		return
	}
	s.ExpiresAt = s.CreatedAt + ttl.Milliseconds()
}

// IsExpiredAt reports whether the session is past its absolute expiry or
// has been idle longer than idleTimeout at time now. A zero idleTimeout
// disables the idle check.
func (s *Session) IsExpiredAt(now time.Time, idleTimeout time.Duration) bool {
	ms := now.UnixMilli()
	if s.ExpiresAt != 0 && ms >= s.ExpiresAt {
		return true
	}
	if idleTimeout > 0 && ms-s.LastActive >= idleTimeout.Milliseconds() {
		return true
	}
	return false
}

// IsExpired reports whether the absolute expiry has passed.
func (s *Session) IsExpired() bool {
	return s.IsExpiredAt(time.Now(), 0)
}

// TTLDuration returns the remaining time-to-live.
// Returns 0 if expired or no expiration is set.
func (s *Session) TTLDuration() time.Duration {
	if s.ExpiresAt == 0 {
		return 0
	}
	remaining := s.ExpiresAt - time.Now().UnixMilli()
	if remaining < 0 {
		return 0
	}
	return time.Duration(remaining) * time.Millisecond
}

// Touch records activity at now.
func (s *Session) Touch(now time.Time) {
	s.LastActive = now.UnixMilli()
}

// Clone returns a copy that shares no state with s.
func (s *Session) Clone() *Session {
	if s == nil {
		return nil
	}
	c := *s
	return &c
}

// Validate checks the session fields against their constraints.
func (s *Session) Validate() error {
	var fields []FieldError

	if s.Username == "" {
		fields = append(fields, FieldError{Field: "username", Message: "is required"})
	} else if len(s.Username) > MaxUsernameLength {
		fields = append(fields, FieldError{Field: "username", Message: "exceeds 128 characters"})
	}
	if s.TokenHash == "" {
		fields = append(fields, FieldError{Field: "token_hash", Message: "is required"})
	}
	if len(s.ClientIP) > MaxIPAddressLength {
		fields = append(fields, FieldError{Field: "client_ip", Message: "exceeds 45 characters"})
	}
	if len(s.UserAgent) > MaxUserAgentLength {
		fields = append(fields, FieldError{Field: "user_agent", Message: "exceeds 512 characters"})
	}

	if len(fields) > 0 {
		return ErrValidation.WithFields(fields...)
	}
	return nil
}
