package token

import (
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
)

// HashPrefix marks a hashed session token.
const HashPrefix = "gdth_"

// Hash computes the prefixed, hex encoded SHA-256 hash of a token.
func Hash(token string) string {
	h := sha256.Sum256([]byte(token))
	return HashPrefix + hex.EncodeToString(h[:])
}

// Verify verifies a token against an expected hash in constant time.
func Verify(token, expectedHash string) bool {
	return subtle.ConstantTimeCompare([]byte(Hash(token)), []byte(expectedHash)) == 1
}

// Mask returns a log-safe rendering of a token: prefix, first and last
// four characters of the body.
func Mask(token string) string {
	if len(token) <= len(Prefix)+8 {
		return "***"
	}
	body := token[len(Prefix):]
	return token[:len(Prefix)] + body[:4] + "..." + body[len(body)-4:]
}
