package token

import (
	"crypto/rand"
	"encoding/base64"
	"errors"
	"math/big"
	"strings"
)

const (
	// DefaultLength is the default token length in bytes.
	DefaultLength = 32

	// Prefix marks a plaintext session token.
	Prefix = "gdtk_"

	// EncodedLength is the length of a formatted token including the prefix.
	EncodedLength = len(Prefix) + 43
)

// Alphanumeric is the alphabet used for generated passwords.
const Alphanumeric = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789"

// ErrEmptyAlphabet is returned by RandomString for an empty alphabet.
var ErrEmptyAlphabet = errors.New("token: empty alphabet")

// New generates a prefixed session token carrying DefaultLength random bytes.
func New() (string, error) {
	body, err := GenerateWithLength(DefaultLength)
	if err != nil {
		return "", err
	}
	return Prefix + body, nil
}

// Generate generates a cryptographically secure random token without prefix.
func Generate() (string, error) {
	return GenerateWithLength(DefaultLength)
}

// GenerateWithLength generates a token with the specified byte length.
func GenerateWithLength(length int) (string, error) {
	b := make([]byte, length)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}

// RandomString returns n characters drawn uniformly from alphabet.
func RandomString(alphabet string, n int) (string, error) {
	if alphabet == "" {
		return "", ErrEmptyAlphabet
	}
	max := big.NewInt(int64(len(alphabet)))
	var sb strings.Builder
	sb.Grow(n)
	for i := 0; i < n; i++ {
		idx, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", err
		}
		sb.WriteByte(alphabet[idx.Int64()])
	}
	return sb.String(), nil
}

// IsWellFormed reports whether s has the shape of a session token.
// It does not say anything about whether the token is live.
func IsWellFormed(s string) bool {
	if len(s) != EncodedLength || !strings.HasPrefix(s, Prefix) {
		return false
	}
	_, err := base64.RawURLEncoding.DecodeString(s[len(Prefix):])
	return err == nil
}
