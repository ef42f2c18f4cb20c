package jwtx

import (
	"crypto/rand"
	"encoding/base64"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Default lifetimes. Services override these from configuration.
const (
	DefaultAccessTokenTTL  = 30 * time.Minute
	DefaultRefreshTokenTTL = 7 * 24 * time.Hour
)

// Subject markers. Each token kind is pinned to its own "sub" value so a
// token minted for one purpose is never accepted for another.
const (
	SubjectRefresh = "refresh_token"
	SubjectCSRF    = "csrf_token"
	SubjectAccess  = "access_token"
)

// RefreshClaims identify a recognised browser session, independent of 2FA.
type RefreshClaims struct {
	jwt.RegisteredClaims

	Username string `json:"username"`
}

// CSRFClaims bind a bearer header value to the cookie carried tokens it was
// issued alongside. AccessToken is empty until the session has been
// elevated by a refresh.
type CSRFClaims struct {
	jwt.RegisteredClaims

	RefreshToken string `json:"refresh_token"`
	AccessToken  string `json:"access_token,omitempty"`
}

// AccessClaims prove a verified, role bearing identity. RefreshToken is the
// token the access token was minted from, which makes it revocable.
type AccessClaims struct {
	jwt.RegisteredClaims

	Username     string `json:"username"`
	Role         string `json:"role"`
	RefreshToken string `json:"refresh_token"`
}

func registered(subject string, now time.Time, ttl time.Duration) jwt.RegisteredClaims {
	return jwt.RegisteredClaims{
		Subject:   subject,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		ID:        NewJTI(),
	}
}

// NewJTI returns a URL-safe random identifier for the "jti" claim.
func NewJTI() string {
	var b [20]byte
	_, _ = rand.Read(b[:])
	return base64.RawURLEncoding.EncodeToString(b[:])
}
