// Package token provides the opaque bearer token primitives used by GymDesk.
//
// Token Format:
//
//   - Prefix: gdtk_ (5 characters)
//   - Body: 43 characters of Base64 RawURL encoded random bytes (256 bits)
//   - Total: 48 characters
//
// Token Hash Format:
//
//   - Prefix: gdth_ (5 characters)
//   - Body: 64 characters of hex-encoded SHA-256 hash
//   - Total: 69 characters
//
// Plaintext tokens are handed to the client once and are never stored.
// The session store is keyed by the hash.
package token
