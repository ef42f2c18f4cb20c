package jwtx

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/aussiebroadwan/blog/pkg/apperr"
	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrEmptySecret      = errors.New("jwtx: empty signing secret")
	ErrUnsupportedAlg   = errors.New("jwtx: unsupported algorithm")
	ErrNonPositiveTTL   = errors.New("jwtx: ttl must be positive")
	ErrMissingClaim     = errors.New("jwtx: required claim missing")
	ErrMissingUsername  = errors.New("jwtx: username is required")
	ErrMissingReference = errors.New("jwtx: refresh token reference is required")
)

var hmacMethods = map[string]*jwt.SigningMethodHMAC{
	"HS256": jwt.SigningMethodHS256,
	"HS384": jwt.SigningMethodHS384,
	"HS512": jwt.SigningMethodHS512,
}

// Codec mints and validates the three token kinds with one shared secret
// and one HMAC algorithm.
type Codec struct {
	secret []byte
	method *jwt.SigningMethodHMAC

	// Now is the clock used for minting and validation. Defaults to
	// time.Now; tests replace it to move through expiry windows.
	Now func() time.Time
}

// NewCodec builds a codec for alg ("HS256", "HS384" or "HS512").
func NewCodec(secret []byte, alg string) (*Codec, error) {
	if len(secret) == 0 {
		return nil, ErrEmptySecret
	}
	if alg == "" {
		alg = "HS256"
	}
	method, ok := hmacMethods[strings.ToUpper(alg)]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedAlg, alg)
	}

	key := make([]byte, len(secret))
	copy(key, secret)

	return &Codec{secret: key, method: method, Now: time.Now}, nil
}

// Alg reports the configured signing algorithm.
func (c *Codec) Alg() string { return c.method.Alg() }

func (c *Codec) now() time.Time {
	if c.Now == nil {
		return time.Now()
	}
	return c.Now()
}

// EncodeRefresh mints a refresh token for username.
func (c *Codec) EncodeRefresh(username string, ttl time.Duration) (string, error) {
	if username == "" {
		return "", ErrMissingUsername
	}
	if ttl <= 0 {
		return "", ErrNonPositiveTTL
	}
	return c.sign(RefreshClaims{
		RegisteredClaims: registered(SubjectRefresh, c.now(), ttl),
		Username:         username,
	})
}

// DecodeRefresh validates a refresh token and returns its claims.
func (c *Codec) DecodeRefresh(token string) (RefreshClaims, error) {
	var claims RefreshClaims
	if err := c.parse(token, SubjectRefresh, &claims); err != nil {
		return RefreshClaims{}, err
	}
	if claims.Username == "" {
		return RefreshClaims{}, credentials(ErrMissingClaim)
	}
	return claims, nil
}

// EncodeCSRF mints a csrf token bound to refresh and, when non-empty, to
// access. ttl should match the refresh lifetime.
func (c *Codec) EncodeCSRF(refresh, access string, ttl time.Duration) (string, error) {
	if refresh == "" {
		return "", ErrMissingReference
	}
	if ttl <= 0 {
		return "", ErrNonPositiveTTL
	}
	return c.sign(CSRFClaims{
		RegisteredClaims: registered(SubjectCSRF, c.now(), ttl),
		RefreshToken:     refresh,
		AccessToken:      access,
	})
}

// DecodeCSRF validates a csrf token. A missing access_token is not an error.
func (c *Codec) DecodeCSRF(token string) (CSRFClaims, error) {
	var claims CSRFClaims
	if err := c.parse(token, SubjectCSRF, &claims); err != nil {
		return CSRFClaims{}, err
	}
	if claims.RefreshToken == "" {
		return CSRFClaims{}, credentials(ErrMissingClaim)
	}
	return claims, nil
}

// EncodeAccess mints an access token derived from refresh.
func (c *Codec) EncodeAccess(username, role, refresh string, ttl time.Duration) (string, error) {
	if username == "" {
		return "", ErrMissingUsername
	}
	if refresh == "" {
		return "", ErrMissingReference
	}
	if ttl <= 0 {
		return "", ErrNonPositiveTTL
	}
	return c.sign(AccessClaims{
		RegisteredClaims: registered(SubjectAccess, c.now(), ttl),
		Username:         username,
		Role:             role,
		RefreshToken:     refresh,
	})
}

// DecodeAccess validates an access token.
func (c *Codec) DecodeAccess(token string) (AccessClaims, error) {
	var claims AccessClaims
	if err := c.parse(token, SubjectAccess, &claims); err != nil {
		return AccessClaims{}, err
	}
	if claims.Username == "" || claims.Role == "" || claims.RefreshToken == "" {
		return AccessClaims{}, credentials(ErrMissingClaim)
	}
	return claims, nil
}

func (c *Codec) sign(claims jwt.Claims) (string, error) {
	signed, err := jwt.NewWithClaims(c.method, claims).SignedString(c.secret)
	if err != nil {
		return "", fmt.Errorf("jwtx: sign: %w", err)
	}
	return signed, nil
}

// parse checks signature, algorithm, expiry and subject in one pass.
// Decoding is strict: the token string is a session key, so two spellings
// of the same signature bytes must not both be accepted.
func (c *Codec) parse(token, subject string, claims jwt.Claims) error {
	if token == "" {
		return credentials(ErrMissingClaim)
	}

	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{c.method.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithIssuedAt(),
		jwt.WithSubject(subject),
		jwt.WithTimeFunc(c.now),
		jwt.WithStrictDecoding(),
	)

	_, err := parser.ParseWithClaims(token, claims, func(*jwt.Token) (any, error) {
		return c.secret, nil
	})
	if err != nil {
		return credentials(err)
	}
	return nil
}

func credentials(cause error) error {
	return apperr.Wrap(apperr.KindCredentials, apperr.DetailCredentials, cause)
}
