package service

import (
	"context"
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"golang.org/x/crypto/argon2"
	"golang.org/x/crypto/bcrypt"

	"github.com/yndnr/gymdesk-go/internal/core/domain"
	"github.com/yndnr/gymdesk-go/pkg/token"
)

// GeneratedPasswordLength is the length of passwords issued at registration.
const GeneratedPasswordLength = 10

// Supported password hashing algorithms.
const (
	HashArgon2id = "argon2id"
	HashBcrypt   = "bcrypt"
)

// PasswordHasher turns plaintext passwords into self-describing hashes.
type PasswordHasher interface {
	Hash(plain string) (string, error)
	Verify(encoded, plain string) bool
}

// NewPasswordHasher returns the hasher for algorithm.
func NewPasswordHasher(algorithm string) (PasswordHasher, error) {
	switch strings.ToLower(algorithm) {
	case "", HashArgon2id:
		return DefaultArgon2Hasher(), nil
	case HashBcrypt:
		return &BcryptHasher{Cost: bcrypt.DefaultCost}, nil
	default:
		return nil, fmt.Errorf("unknown password hash algorithm %q", algorithm)
	}
}

// Argon2Hasher hashes with Argon2id and encodes the result as
// $argon2id$v=19$m=<mem>,t=<time>,p=<threads>$<salt>$<hash>.
type Argon2Hasher struct {
	Time    uint32
	Memory  uint32 // KiB
	Threads uint8
	KeyLen  uint32
	SaltLen int
}

// DefaultArgon2Hasher returns an Argon2id hasher with interactive-login
// parameters.
func DefaultArgon2Hasher() *Argon2Hasher {
	return &Argon2Hasher{
		Time:    2,
		Memory:  19 * 1024,
		Threads: 2,
		KeyLen:  32,
		SaltLen: 16,
	}
}

// Hash implements PasswordHasher.
func (h *Argon2Hasher) Hash(plain string) (string, error) {
	salt := make([]byte, h.SaltLen)
	if _, err := rand.Read(salt); err != nil {
		return "", err
	}
	key := argon2.IDKey([]byte(plain), salt, h.Time, h.Memory, h.Threads, h.KeyLen)
	return fmt.Sprintf("$argon2id$v=%d$m=%d,t=%d,p=%d$%s$%s",
		argon2.Version, h.Memory, h.Time, h.Threads,
		base64.RawStdEncoding.EncodeToString(salt),
		base64.RawStdEncoding.EncodeToString(key),
	), nil
}

// Verify implements PasswordHasher. Parameters are read from the encoded
// hash, so hashes made with older settings keep verifying.
func (h *Argon2Hasher) Verify(encoded, plain string) bool {
	parts := strings.Split(encoded, "$")
	if len(parts) != 6 || parts[1] != "argon2id" {
		return false
	}

	var version int
	if _, err := fmt.Sscanf(parts[2], "v=%d", &version); err != nil || version != argon2.Version {
		return false
	}

	var memory, iterations uint32
	var threads uint8
	if _, err := fmt.Sscanf(parts[3], "m=%d,t=%d,p=%d", &memory, &iterations, &threads); err != nil {
		return false
	}

	salt, err := base64.RawStdEncoding.DecodeString(parts[4])
	if err != nil {
		return false
	}
	expected, err := base64.RawStdEncoding.DecodeString(parts[5])
	if err != nil || len(expected) == 0 {
		return false
	}

	computed := argon2.IDKey([]byte(plain), salt, iterations, memory, threads, uint32(len(expected)))
	return subtle.ConstantTimeCompare(computed, expected) == 1
}

// BcryptHasher hashes with bcrypt.
type BcryptHasher struct {
	Cost int
}

// Hash implements PasswordHasher.
func (h *BcryptHasher) Hash(plain string) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(plain), h.Cost)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// Verify implements PasswordHasher.
func (h *BcryptHasher) Verify(encoded, plain string) bool {
	return bcrypt.CompareHashAndPassword([]byte(encoded), []byte(plain)) == nil
}

// multiHasher hashes with its primary hasher and verifies hashes made by
// any supported algorithm, so switching algorithms keeps old accounts.
type multiHasher struct {
	primary PasswordHasher
	argon   *Argon2Hasher
	bcrypt  *BcryptHasher
}

func (m *multiHasher) Hash(plain string) (string, error) {
	return m.primary.Hash(plain)
}

func (m *multiHasher) Verify(encoded, plain string) bool {
	if strings.HasPrefix(encoded, "$argon2id$") {
		return m.argon.Verify(encoded, plain)
	}
	if strings.HasPrefix(encoded, "$2") {
		return m.bcrypt.Verify(encoded, plain)
	}
	return false
}

// CredentialService generates usernames and passwords and checks them.
type CredentialService struct {
	users  UserRepository
	hasher PasswordHasher
}

// NewCredentialService creates a CredentialService. A nil hasher selects
// Argon2id.
func NewCredentialService(users UserRepository, hasher PasswordHasher) *CredentialService {
	if hasher == nil {
		hasher = DefaultArgon2Hasher()
	}
	return &CredentialService{
		users: users,
		hasher: &multiHasher{
			primary: hasher,
			argon:   DefaultArgon2Hasher(),
			bcrypt:  &BcryptHasher{Cost: bcrypt.DefaultCost},
		},
	}
}

// GenerateUsername returns "first.last", or "first.last<N>" with the
// lowest N >= 1 that is free.
func (c *CredentialService) GenerateUsername(ctx context.Context, firstName, lastName string) (string, error) {
	base := domain.BaseUsername(firstName, lastName)

	existing, err := c.users.UsernamesWithPrefix(ctx, base)
	if err != nil {
		return "", domain.ErrStorageError.WithCause(err)
	}
	taken := make(map[string]struct{}, len(existing))
	for _, u := range existing {
		taken[u] = struct{}{}
	}

	if _, ok := taken[base]; !ok {
		return base, nil
	}
	for n := 1; ; n++ {
		candidate := base + strconv.Itoa(n)
		if _, ok := taken[candidate]; !ok {
			return candidate, nil
		}
	}
}

// GeneratePassword returns a random alphanumeric password.
func (c *CredentialService) GeneratePassword() (string, error) {
	return token.RandomString(token.Alphanumeric, GeneratedPasswordLength)
}

// HashPassword hashes plain with the configured algorithm.
func (c *CredentialService) HashPassword(plain string) (string, error) {
	if plain == "" {
		return "", errors.New("empty password")
	}
	return c.hasher.Hash(plain)
}

// VerifyPassword checks plain against a stored hash.
func (c *CredentialService) VerifyPassword(encoded, plain string) bool {
	if encoded == "" || plain == "" {
		return false
	}
	return c.hasher.Verify(encoded, plain)
}

// Authenticate checks a username/password pair and returns the account.
// Unknown users and wrong passwords yield the same error.
func (c *CredentialService) Authenticate(ctx context.Context, username, password string) (*domain.User, error) {
	user, err := c.users.GetUser(ctx, username)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			// Unknown users cost one hash verification, like known ones.
			c.hasher.Verify(dummyHash, password)
			return nil, domain.ErrInvalidCredentials
		}
		return nil, domain.ErrStorageError.WithCause(err)
	}
	if !c.VerifyPassword(user.PasswordHash, password) {
		return nil, domain.ErrInvalidCredentials
	}
	if !user.Active {
		return nil, domain.ErrUserInactive
	}
	return user, nil
}

// dummyHash is an Argon2id hash of a random string.
const dummyHash = "$argon2id$v=19$m=19456,t=2,p=2$c29tZXNhbHRzb21lc2FsdA$2U4Q0lmD9bYc2oXyP6Kq0Vq2m7Hk1Y3xv2m8pTq0wqE"
