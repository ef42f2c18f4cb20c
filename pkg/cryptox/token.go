package cryptox

import (
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
)

// FingerprintToken returns a deterministic SHA-256 fingerprint of a token,
// base64url encoded. Logs carry fingerprints instead of raw token values.
func FingerprintToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return base64.RawURLEncoding.EncodeToString(sum[:])
}

// HashUsername returns the lowercase hex SHA-256 digest of username. It keys
// per-user cache entries without exposing the username itself.
func HashUsername(username string) string {
	sum := sha256.Sum256([]byte(username))
	return hex.EncodeToString(sum[:])
}
