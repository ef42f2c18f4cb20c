package service

import (
	"context"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/aussiebroadwan/blog/internal/blog/acl"
	"github.com/aussiebroadwan/blog/internal/blog/domain"
	"github.com/aussiebroadwan/blog/internal/blog/mfa"
	"github.com/aussiebroadwan/blog/internal/blog/session"
	"github.com/aussiebroadwan/blog/internal/blog/store/drivers/sqlite"
	"github.com/aussiebroadwan/blog/pkg/cryptox"
	"github.com/aussiebroadwan/blog/pkg/jwtx"
	"github.com/pquerna/otp"
	"github.com/pquerna/otp/totp"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
)

var fixedNow = time.Date(2024, 5, 1, 12, 0, 10, 0, time.UTC)

// tickingClock starts at fixedNow and advances a millisecond per read, so
// records keep their creation order while every read stays inside the
// TOTP step that fixedNow falls in.
func tickingClock() Clock {
	var ticks atomic.Int64
	return func() time.Time {
		return fixedNow.Add(time.Duration(ticks.Add(1)) * time.Millisecond)
	}
}

type harness struct {
	store *sqlite.Store
	redis *miniredis.Miniredis
	cache *session.Store
	codec *jwtx.Codec

	auth      *AuthService
	users     *UserService
	drafts    *DraftService
	bootstrap *BootstrapService
}

func newHarness(t *testing.T) *harness {
	t.Helper()

	st, err := sqlite.NewStore(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })
	require.NoError(t, st.ApplyMigrations())

	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	cache := session.NewStore(rdb)
	t.Cleanup(func() { _ = cache.Close() })

	clock := tickingClock()
	codec, err := jwtx.NewCodec([]byte("test-secret-key-with-enough-bytes"), "HS256")
	require.NoError(t, err)
	codec.Now = clock

	pepper, err := cryptox.LoadPepper(filepath.Join(t.TempDir(), "pepper"))
	require.NoError(t, err)
	hasher := cryptox.NewPasswordHasher(pepper)
	verifier := mfa.NewVerifier("", 0)

	table := acl.Default(UserOwner(st), DraftOwner(st))

	return &harness{
		store: st,
		redis: mr,
		cache: cache,
		codec: codec,
		auth: &AuthService{
			Store:           st,
			Cache:           cache,
			Codec:           codec,
			MFA:             verifier,
			Hasher:          hasher,
			AccessTTL:       jwtx.DefaultAccessTokenTTL,
			RefreshTTL:      jwtx.DefaultRefreshTokenTTL,
			VerificationTTL: DefaultVerificationTTL,
			Now:             clock,
		},
		users:  &UserService{Store: st, ACL: table, Now: clock},
		drafts: &DraftService{Store: st, ACL: table, Now: clock},
		bootstrap: &BootstrapService{
			Store:  st,
			Hasher: hasher,
			MFA:    verifier,
			Token:  "bootstrap-token",
			Now:    clock,
		},
	}
}

// code returns the TOTP code for username at fixedNow.
func (h *harness) code(t *testing.T, username string) string {
	t.Helper()

	u, err := h.store.Users().GetUserByUsername(context.Background(), username)
	require.NoError(t, err)

	code, err := totp.GenerateCodeCustom(u.TOTPSecret, fixedNow, totp.ValidateOpts{
		Period:    mfa.Period,
		Digits:    otp.DigitsSix,
		Algorithm: otp.AlgorithmSHA1,
	})
	require.NoError(t, err)
	return code
}

func (h *harness) signup(t *testing.T, username string) {
	t.Helper()

	_, err := h.auth.Signup(context.Background(), SignupInput{Username: username, Password: "12345678"})
	require.NoError(t, err)
}

func (h *harness) login(t *testing.T, username string) Credentials {
	t.Helper()

	res, err := h.auth.Login(context.Background(), username, "12345678")
	require.NoError(t, err)
	return Credentials{RefreshToken: res.RefreshToken, CSRFToken: res.CSRFToken}
}

// elevate runs login, verify and refresh and returns the refresh result.
func (h *harness) elevate(t *testing.T, username string) RefreshResult {
	t.Helper()

	creds := h.login(t, username)
	require.NoError(t, h.auth.Verify(context.Background(), creds, h.code(t, username)))

	res, err := h.auth.Refresh(context.Background(), creds)
	require.NoError(t, err)
	return res
}

// admin bootstraps username as the first ADMIN. It must run before any
// signup.
func (h *harness) admin(t *testing.T, username string) {
	t.Helper()

	_, err := h.bootstrap.Bootstrap(context.Background(), "bootstrap-token", domain.BootstrapData{
		AdminUsername: username,
		AdminPassword: "12345678",
	})
	require.NoError(t, err)
}
