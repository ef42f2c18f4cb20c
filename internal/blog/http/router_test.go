package http

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/aussiebroadwan/blog/internal/blog/acl"
	"github.com/aussiebroadwan/blog/internal/blog/mfa"
	"github.com/aussiebroadwan/blog/internal/blog/service"
	"github.com/aussiebroadwan/blog/internal/blog/session"
	"github.com/aussiebroadwan/blog/internal/blog/store/drivers/sqlite"
	"github.com/aussiebroadwan/blog/pkg/apperr"
	"github.com/aussiebroadwan/blog/pkg/blogsdk"
	"github.com/aussiebroadwan/blog/pkg/cryptox"
	"github.com/aussiebroadwan/blog/pkg/httpx"
	"github.com/aussiebroadwan/blog/pkg/jwtx"
	"github.com/aussiebroadwan/blog/pkg/slogx"
	"github.com/pquerna/otp"
	"github.com/pquerna/otp/totp"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
)

const (
	testPassword       = "12345678"
	testBootstrapToken = "bootstrap-token"
)

// totpNow is the instant the auth service checks codes against, so tests
// never straddle a period boundary.
var totpNow = time.Date(2024, 5, 1, 12, 0, 10, 0, time.UTC)

type testServer struct {
	*httptest.Server

	store  *sqlite.Store
	redis  *miniredis.Miniredis
	codec  *jwtx.Codec
	client *blogsdk.SDKClient
}

func generousLimits() httpx.Profiles {
	wide := httpx.RateLimitConfig{RequestsPerWindow: 10000, Window: time.Minute, Burst: 10000}
	return httpx.Profiles{Strict: wide, Moderate: wide, Lenient: wide, Public: wide}
}

func newTestServer(t *testing.T, limits httpx.Profiles) *testServer {
	t.Helper()

	st, err := sqlite.NewStore(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })
	require.NoError(t, st.ApplyMigrations())

	mr := miniredis.RunT(t)
	cache := session.NewStore(redis.NewClient(&redis.Options{Addr: mr.Addr()}))
	t.Cleanup(func() { _ = cache.Close() })

	clock := service.Clock(func() time.Time { return totpNow })
	codec, err := jwtx.NewCodec([]byte("router-test-secret"), "HS256")
	require.NoError(t, err)
	codec.Now = clock

	pepper, err := cryptox.LoadPepper(filepath.Join(t.TempDir(), "pepper"))
	require.NoError(t, err)
	hasher := cryptox.NewPasswordHasher(pepper)
	verifier := mfa.NewVerifier("", 0)
	table := acl.Default(service.UserOwner(st), service.DraftOwner(st))

	logger := slogx.New(slogx.Config{Service: "blog-test", Level: "error", Format: "text"})
	router := NewRouter(Options{
		APIPrefix:    blogsdk.DefaultAPIPrefix,
		BuildVersion: "test",
		Cookies:      httpx.CookieOptions{Secure: true},
		Limits:       limits,
	}, st, cache, logger)

	router.AuthService = &service.AuthService{
		Store:  st,
		Cache:  cache,
		Codec:  codec,
		MFA:    verifier,
		Hasher: hasher,
		Now:    clock,
	}
	router.UserService = &service.UserService{Store: st, ACL: table, Now: clock}
	router.DraftService = &service.DraftService{Store: st, ACL: table, Now: clock}
	router.BootstrapService = &service.BootstrapService{
		Store:  st,
		Hasher: hasher,
		MFA:    verifier,
		Token:  testBootstrapToken,
		Now:    clock,
	}
	router.ApplyRoutes()

	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)

	return &testServer{
		Server: srv,
		store:  st,
		redis:  mr,
		codec:  codec,
		client: blogsdk.NewSDKClient(srv.URL),
	}
}

func (ts *testServer) code(t *testing.T, username string) string {
	t.Helper()

	u, err := ts.store.Users().GetUserByUsername(context.Background(), username)
	require.NoError(t, err)

	code, err := totp.GenerateCodeCustom(u.TOTPSecret, totpNow, totp.ValidateOpts{
		Period:    mfa.Period,
		Digits:    otp.DigitsSix,
		Algorithm: otp.AlgorithmSHA1,
	})
	require.NoError(t, err)
	return code
}

func (ts *testServer) signup(t *testing.T, username string) {
	t.Helper()

	res, err := ts.client.Signup(t.Context(), blogsdk.SignupRequest{Username: username, Password: testPassword})
	require.NoError(t, err)
	require.NotEmpty(t, res.QRImage)
}

func (ts *testServer) login(t *testing.T, username string) *blogsdk.Session {
	t.Helper()

	s, err := ts.client.Login(t.Context(), username, testPassword)
	require.NoError(t, err)
	return s
}

// elevate logs in, verifies and refreshes, returning a session that holds
// an access token.
func (ts *testServer) elevate(t *testing.T, username string) *blogsdk.Session {
	t.Helper()

	s := ts.login(t, username)
	require.NoError(t, s.Verify(t.Context(), ts.code(t, username)))
	_, err := s.Refresh(t.Context())
	require.NoError(t, err)
	return s
}

func jsonBody(t *testing.T, v any) io.Reader {
	t.Helper()

	raw, err := json.Marshal(v)
	require.NoError(t, err)
	return bytes.NewReader(raw)
}

func requireAPIError(t *testing.T, err error, status int, code, description string) {
	t.Helper()

	var apiErr *blogsdk.APIError
	require.ErrorAs(t, err, &apiErr)
	require.Equal(t, status, apiErr.StatusCode)
	require.Equal(t, code, apiErr.Code)
	if description != "" {
		require.Equal(t, description, apiErr.Description)
	}
}

func TestLoginIssuesRefreshCookieAndCSRF(t *testing.T) {
	ts := newTestServer(t, generousLimits())
	ts.signup(t, "mahdi")

	s := ts.login(t, "mahdi")
	require.NotEmpty(t, s.RefreshToken())
	require.NotEmpty(t, s.CSRFToken())
	require.Empty(t, s.AccessToken())

	refresh, err := ts.codec.DecodeRefresh(s.RefreshToken())
	require.NoError(t, err)
	require.Equal(t, "mahdi", refresh.Username)

	csrf, err := ts.codec.DecodeCSRF(s.CSRFToken())
	require.NoError(t, err)
	require.Equal(t, s.RefreshToken(), csrf.RefreshToken)
}

func TestLoginCookieAttributes(t *testing.T) {
	ts := newTestServer(t, generousLimits())
	ts.signup(t, "mahdi")

	resp, err := http.Post(ts.URL+"/api/v1/auth/login", "application/json",
		jsonBody(t, blogsdk.LoginRequest{Username: "mahdi", Password: testPassword}))
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.NotEmpty(t, resp.Header.Get(blogsdk.HeaderCSRFToken))

	var refresh *http.Cookie
	for _, c := range resp.Cookies() {
		if c.Name == blogsdk.CookieRefreshToken {
			refresh = c
		}
	}
	require.NotNil(t, refresh)
	require.True(t, refresh.HttpOnly)
	require.True(t, refresh.Secure)
	require.Equal(t, http.SameSiteStrictMode, refresh.SameSite)
	require.Equal(t, int(jwtx.DefaultRefreshTokenTTL.Seconds()), refresh.MaxAge)
}

func TestLoginReportsStoredUsername(t *testing.T) {
	ts := newTestServer(t, generousLimits())
	ts.signup(t, "mahdi")

	resp, err := http.Post(ts.URL+"/api/v1/auth/login", "application/json",
		jsonBody(t, blogsdk.LoginRequest{Username: "  MaHdI ", Password: testPassword}))
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var out blogsdk.LoginResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	require.Equal(t, "mahdi", out.Username)
}

func TestVerifyMarksUserVerified(t *testing.T) {
	ts := newTestServer(t, generousLimits())
	ts.signup(t, "mahdi")

	s := ts.login(t, "mahdi")
	require.NoError(t, s.Verify(t.Context(), ts.code(t, "mahdi")))

	v, err := ts.redis.Get(session.VerifiedKey("mahdi"))
	require.NoError(t, err)
	require.Equal(t, "true", v)
}

func TestVerifyRejectsWrongCode(t *testing.T) {
	ts := newTestServer(t, generousLimits())
	ts.signup(t, "mahdi")

	s := ts.login(t, "mahdi")
	code := ts.code(t, "mahdi")
	wrong := "000000"
	if code == wrong {
		wrong = "111111"
	}

	err := s.Verify(t.Context(), wrong)
	requireAPIError(t, err, http.StatusUnauthorized, blogsdk.ErrorCodeInvalidCredentials, apperr.DetailInvalidTOTP)
	require.False(t, ts.redis.Exists(session.VerifiedKey("mahdi")))
}

func TestRefreshIssuesAccessAndRetiresOldRefresh(t *testing.T) {
	ts := newTestServer(t, generousLimits())
	ts.signup(t, "mahdi")

	s := ts.login(t, "mahdi")
	oldRefresh, oldCSRF := s.RefreshToken(), s.CSRFToken()
	require.NoError(t, s.Verify(t.Context(), ts.code(t, "mahdi")))

	res, err := s.Refresh(t.Context())
	require.NoError(t, err)
	require.Equal(t, "mahdi", res.Username)
	require.Equal(t, "USER", res.Role)
	require.Positive(t, res.VerificationExpiresIn)

	access, err := ts.codec.DecodeAccess(s.AccessToken())
	require.NoError(t, err)
	require.Equal(t, "USER", access.Role)
	require.Equal(t, s.RefreshToken(), access.RefreshToken)
	require.NotEqual(t, oldRefresh, s.RefreshToken())

	replay := ts.client.NewSessionFromTokens(oldRefresh, "", oldCSRF)
	_, err = replay.Refresh(t.Context())
	requireAPIError(t, err, http.StatusUnauthorized, blogsdk.ErrorCodeInvalidCredentials, apperr.DetailInvalidRefresh)

	// The rotated tokens keep working while verification lasts.
	_, err = s.Refresh(t.Context())
	require.NoError(t, err)
}

func TestRefreshReplayAfterRotationFails(t *testing.T) {
	ts := newTestServer(t, generousLimits())
	ts.signup(t, "mahdi")

	s := ts.login(t, "mahdi")
	require.NoError(t, s.Verify(t.Context(), ts.code(t, "mahdi")))

	_, err := s.Refresh(t.Context())
	require.NoError(t, err)
	first := ts.client.NewSessionFromTokens(s.RefreshToken(), s.AccessToken(), s.CSRFToken())

	_, err = s.Refresh(t.Context())
	require.NoError(t, err)

	_, err = first.Refresh(t.Context())
	requireAPIError(t, err, http.StatusUnauthorized, blogsdk.ErrorCodeInvalidCredentials, apperr.DetailInvalidRefresh)
}

func TestRefreshRequiresVerification(t *testing.T) {
	ts := newTestServer(t, generousLimits())
	ts.signup(t, "mahdi")

	s := ts.login(t, "mahdi")
	_, err := s.Refresh(t.Context())
	requireAPIError(t, err, http.StatusUnauthorized, blogsdk.ErrorCodeInvalidCredentials, apperr.DetailNotVerified)
}

func TestLogoutEndsSession(t *testing.T) {
	ts := newTestServer(t, generousLimits())
	ts.signup(t, "mahdi")

	s := ts.login(t, "mahdi")
	refresh, csrf := s.RefreshToken(), s.CSRFToken()

	require.NoError(t, s.Logout(t.Context()))
	require.Empty(t, s.RefreshToken())

	replay := ts.client.NewSessionFromTokens(refresh, "", csrf)
	_, err := replay.Refresh(t.Context())
	requireAPIError(t, err, http.StatusUnauthorized, blogsdk.ErrorCodeInvalidCredentials, apperr.DetailInvalidRefresh)
}

func TestMissingTokensAreForbidden(t *testing.T) {
	ts := newTestServer(t, generousLimits())

	anon := ts.client.NewSessionFromTokens("", "", "")
	_, err := anon.Refresh(t.Context())
	requireAPIError(t, err, http.StatusForbidden, blogsdk.ErrorCodeForbidden, "")

	req, err := http.NewRequestWithContext(t.Context(), http.MethodGet, ts.URL+"/api/v1/users/me", nil)
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusForbidden, resp.StatusCode)
}

func TestAccessRequiresMatchingCSRF(t *testing.T) {
	ts := newTestServer(t, generousLimits())
	ts.signup(t, "mahdi")
	ts.signup(t, "sara")

	mahdi := ts.elevate(t, "mahdi")
	sara := ts.elevate(t, "sara")

	// Mahdi's cookie with Sara's CSRF token.
	mixed := ts.client.NewSessionFromTokens(mahdi.RefreshToken(), mahdi.AccessToken(), sara.CSRFToken())
	_, err := mixed.Me(t.Context())
	requireAPIError(t, err, http.StatusUnauthorized, blogsdk.ErrorCodeInvalidCredentials, "")

	me, err := mahdi.Me(t.Context())
	require.NoError(t, err)
	require.Equal(t, "mahdi", me.Username)
}

func TestAccessRevokedByLogout(t *testing.T) {
	ts := newTestServer(t, generousLimits())
	ts.signup(t, "mahdi")

	s := ts.elevate(t, "mahdi")
	stale := ts.client.NewSessionFromTokens(s.RefreshToken(), s.AccessToken(), s.CSRFToken())
	require.NoError(t, s.Logout(t.Context()))

	_, err := stale.Me(t.Context())
	requireAPIError(t, err, http.StatusUnauthorized, blogsdk.ErrorCodeInvalidCredentials, "")
}

func TestDraftAccessByRole(t *testing.T) {
	ts := newTestServer(t, generousLimits())

	_, err := ts.client.Bootstrap(t.Context(), testBootstrapToken, blogsdk.BootstrapRequest{
		AdminUsername: "root",
		AdminPassword: testPassword,
	})
	require.NoError(t, err)
	ts.signup(t, "mahdi")
	ts.signup(t, "sara")

	admin := ts.elevate(t, "root")
	mahdi := ts.elevate(t, "mahdi")
	sara := ts.elevate(t, "sara")

	d, err := mahdi.CreateDraft(t.Context(), blogsdk.DraftRequest{Title: "Hello", Body: "first post"})
	require.NoError(t, err)
	require.Equal(t, "mahdi", d.Username)
	require.NotEmpty(t, d.Link)

	got, err := admin.GetDraft(t.Context(), d.ID)
	require.NoError(t, err)
	require.Equal(t, d.ID, got.ID)

	_, err = sara.GetDraft(t.Context(), d.ID)
	requireAPIError(t, err, http.StatusUnauthorized, blogsdk.ErrorCodeUnauthorisedAccess, "")

	err = sara.DeleteDraft(t.Context(), d.ID)
	requireAPIError(t, err, http.StatusUnauthorized, blogsdk.ErrorCodeUnauthorisedAccess, "")

	list, err := mahdi.ListDrafts(t.Context())
	require.NoError(t, err)
	require.Len(t, list.Drafts, 1)
	require.Equal(t, "/api/v1/drafts/"+d.ID, list.Drafts[0].Href)

	updated, err := mahdi.UpdateDraft(t.Context(), d.ID, blogsdk.DraftRequest{Title: "Hello again", Body: "edited"})
	require.NoError(t, err)
	require.Equal(t, "Hello again", updated.Title)

	require.NoError(t, admin.DeleteDraft(t.Context(), d.ID))
	_, err = mahdi.GetDraft(t.Context(), d.ID)
	requireAPIError(t, err, http.StatusNotFound, blogsdk.ErrorCodeNotFound, "")
}

func TestUserEndpoints(t *testing.T) {
	ts := newTestServer(t, generousLimits())
	ts.signup(t, "mahdi")
	ts.signup(t, "sara")

	mahdi := ts.elevate(t, "mahdi")

	u, err := mahdi.UpdateProfile(t.Context(), blogsdk.ProfileRequest{Name: "Mahdi", Telegram: "@mahdi"})
	require.NoError(t, err)
	require.Equal(t, "Mahdi", u.Name)
	require.Equal(t, "https://t.me/mahdi", u.Telegram)

	own, err := mahdi.GetUser(t.Context(), "mahdi")
	require.NoError(t, err)
	require.Equal(t, "USER", own.Role)

	_, err = mahdi.GetUser(t.Context(), "sara")
	requireAPIError(t, err, http.StatusUnauthorized, blogsdk.ErrorCodeUnauthorisedAccess, "")
}

func TestSignupValidation(t *testing.T) {
	ts := newTestServer(t, generousLimits())

	_, err := ts.client.Signup(t.Context(), blogsdk.SignupRequest{Username: "mahdi"})
	requireAPIError(t, err, http.StatusBadRequest, blogsdk.ErrorCodeValidation, "")

	ts.signup(t, "mahdi")
	_, err = ts.client.Signup(t.Context(), blogsdk.SignupRequest{Username: "mahdi", Password: testPassword})
	requireAPIError(t, err, http.StatusBadRequest, blogsdk.ErrorCodeDuplicateUsername, "")
}

func TestQRCodeEndpoint(t *testing.T) {
	ts := newTestServer(t, generousLimits())
	ts.signup(t, "mahdi")

	png, err := ts.login(t, "mahdi").QRCode(t.Context())
	require.NoError(t, err)
	require.Equal(t, []byte("\x89PNG"), png[:4])
}

func TestBootstrapEndpoint(t *testing.T) {
	ts := newTestServer(t, generousLimits())

	_, err := ts.client.Bootstrap(t.Context(), "wrong", blogsdk.BootstrapRequest{AdminUsername: "root"})
	requireAPIError(t, err, http.StatusUnauthorized, blogsdk.ErrorCodeUnauthorisedAccess, "")

	res, err := ts.client.Bootstrap(t.Context(), testBootstrapToken, blogsdk.BootstrapRequest{AdminUsername: "root"})
	require.NoError(t, err)
	require.Equal(t, "root", res.AdminUsername)
	require.NotEmpty(t, res.AdminPassword)
	require.NotEmpty(t, res.QRImage)

	_, err = ts.client.Bootstrap(t.Context(), testBootstrapToken, blogsdk.BootstrapRequest{AdminUsername: "root2"})
	requireAPIError(t, err, http.StatusUnauthorized, blogsdk.ErrorCodeUnauthorisedAccess, "")
}

func TestHealthEndpoints(t *testing.T) {
	ts := newTestServer(t, generousLimits())

	live, err := ts.client.GetLiveness(t.Context())
	require.NoError(t, err)
	require.Equal(t, "ok", live.Status)
	require.Equal(t, "test", live.Version)

	ready, err := ts.client.GetReadiness(t.Context())
	require.NoError(t, err)
	require.Equal(t, "ok", ready.Status)
	require.Equal(t, "ok", ready.Checks.Cache)

	ts.redis.SetError("LOADING redis is loading the dataset in memory")
	_, err = ts.client.GetReadiness(t.Context())
	var apiErr *blogsdk.APIError
	require.ErrorAs(t, err, &apiErr)
	require.Equal(t, http.StatusServiceUnavailable, apiErr.StatusCode)
}

func TestStrictRateLimit(t *testing.T) {
	limits := generousLimits()
	limits.Strict = httpx.RateLimitConfig{RequestsPerWindow: 2, Window: time.Minute, Burst: 2}
	ts := newTestServer(t, limits)
	ts.signup(t, "mahdi")

	ts.login(t, "mahdi")
	_, err := ts.client.Login(t.Context(), "mahdi", testPassword)
	requireAPIError(t, err, http.StatusTooManyRequests, blogsdk.ErrorCodeRateLimited, "")
}

func TestCORSExposesCSRFHeader(t *testing.T) {
	ts := newTestServer(t, generousLimits())
	ts.signup(t, "mahdi")

	req, err := http.NewRequestWithContext(t.Context(), http.MethodPost, ts.URL+"/api/v1/auth/login",
		jsonBody(t, blogsdk.LoginRequest{Username: "mahdi", Password: testPassword}))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Origin", "https://blog.example")

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, "*", resp.Header.Get("Access-Control-Allow-Origin"))
	exposed := strings.ToLower(resp.Header.Get("Access-Control-Expose-Headers"))
	require.Contains(t, exposed, strings.ToLower(blogsdk.HeaderCSRFToken))
}
