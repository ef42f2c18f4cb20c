package service

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/aussiebroadwan/blog/internal/blog/domain"
	"github.com/aussiebroadwan/blog/internal/blog/mfa"
	"github.com/aussiebroadwan/blog/internal/blog/session"
	"github.com/aussiebroadwan/blog/internal/blog/store"
	"github.com/aussiebroadwan/blog/pkg/apperr"
	"github.com/aussiebroadwan/blog/pkg/cryptox"
	"github.com/aussiebroadwan/blog/pkg/idx"
	"github.com/aussiebroadwan/blog/pkg/jwtx"
	"github.com/aussiebroadwan/blog/pkg/slogx"
	"golang.org/x/sync/errgroup"
)

const DefaultVerificationTTL = 5 * time.Minute

// Credentials are the values a browser presents once logged in: the
// Refresh-Token cookie and the CSRF token sent as a bearer header.
type Credentials struct {
	RefreshToken string
	CSRFToken    string
}

type SignupResult struct {
	User            domain.User
	ProvisioningURI string
	QRImage         string // base64 PNG
}

type LoginResult struct {
	// Username is the stored, canonical spelling.
	Username     string
	RefreshToken string
	CSRFToken    string
}

type RefreshResult struct {
	RefreshToken string
	AccessToken  string
	CSRFToken    string

	// VerificationTTL is what is left of the two factor window. Once it runs
	// out the next refresh requires another verify.
	VerificationTTL time.Duration

	Identity domain.Identity
}

// AuthService drives a browser session through
// Anonymous -> LoggedIn -> Verified -> AccessGranted and back to Anonymous
// on logout. The refresh token string is the session key in Cache.
type AuthService struct {
	Store  store.Store
	Cache  session.Cache
	Codec  *jwtx.Codec
	MFA    *mfa.Verifier
	Hasher *cryptox.PasswordHasher

	AccessTTL       time.Duration
	RefreshTTL      time.Duration
	VerificationTTL time.Duration

	// Now should be the clock Codec mints with. Defaults to time.Now.
	Now Clock
}

func (s *AuthService) RefreshLifetime() time.Duration {
	if s.RefreshTTL > 0 {
		return s.RefreshTTL
	}
	return jwtx.DefaultRefreshTokenTTL
}

func (s *AuthService) AccessLifetime() time.Duration {
	if s.AccessTTL > 0 {
		return s.AccessTTL
	}
	return jwtx.DefaultAccessTokenTTL
}

func (s *AuthService) VerificationLifetime() time.Duration {
	if s.VerificationTTL > 0 {
		return s.VerificationTTL
	}
	return DefaultVerificationTTL
}

// Signup creates a USER account with a fresh TOTP secret and returns the
// enrollment QR code. The secret is never shown again.
func (s *AuthService) Signup(ctx context.Context, in SignupInput) (SignupResult, error) {
	l := slogx.FromContext(ctx)

	in, err := in.normalise()
	if err != nil {
		return SignupResult{}, err
	}

	secret, err := s.MFA.GenerateSecret(in.Username)
	if err != nil {
		return SignupResult{}, err
	}
	hash, err := s.Hasher.Hash(in.Password)
	if err != nil {
		return SignupResult{}, fmt.Errorf("hash password: %w", err)
	}

	now := s.Now.now()
	u := domain.User{
		ID:           idx.NewAt(now).String(),
		Username:     in.Username,
		PasswordHash: hash,
		Role:         domain.RoleUser,
		TOTPSecret:   secret,
		Profile:      in.profile(),
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.Store.Users().CreateUser(ctx, u); err != nil {
		if errors.Is(err, store.ErrAlreadyExists) {
			return SignupResult{}, apperr.DuplicateUsername(in.Username)
		}
		l.Error("failed to create user", slog.String("username", in.Username), slog.Any("error", err))
		return SignupResult{}, err
	}

	uri, err := s.MFA.Enroll(u.Username, secret)
	if err != nil {
		return SignupResult{}, err
	}
	png, err := s.MFA.RenderQR(uri)
	if err != nil {
		return SignupResult{}, err
	}

	l.Info("user signed up", slog.String("username", u.Username))
	return SignupResult{
		User:            u,
		ProvisioningURI: uri,
		QRImage:         base64.StdEncoding.EncodeToString(png),
	}, nil
}

// Login checks the password and opens an unverified session. The returned
// refresh token is the session key; the CSRF token is bound to it.
func (s *AuthService) Login(ctx context.Context, username, password string) (LoginResult, error) {
	l := slogx.FromContext(ctx)
	username = normaliseUsername(username)

	u, err := s.Store.Users().GetUserByUsername(ctx, username)
	if errors.Is(err, store.ErrNotFound) {
		return LoginResult{}, apperr.UserNotFound(username)
	}
	if err != nil {
		return LoginResult{}, fmt.Errorf("get user: %w", err)
	}

	if err := s.Hasher.Verify(strings.TrimSpace(password), u.PasswordHash); err != nil {
		l.Warn("login rejected", slog.String("username", username), slog.String("reason", err.Error()))
		return LoginResult{}, apperr.Credentials("")
	}

	refresh, err := s.Codec.EncodeRefresh(u.Username, s.RefreshLifetime())
	if err != nil {
		return LoginResult{}, err
	}
	csrf, err := s.Codec.EncodeCSRF(refresh, "", s.RefreshLifetime())
	if err != nil {
		return LoginResult{}, err
	}

	if err := s.Cache.Set(ctx, refresh, u.Username, s.RefreshLifetime()); err != nil {
		return LoginResult{}, err
	}

	l.Info("user logged in", slog.String("username", u.Username))
	return LoginResult{Username: u.Username, RefreshToken: refresh, CSRFToken: csrf}, nil
}

// Verify checks a TOTP code for the session's user and, on success, opens
// the verification window.
func (s *AuthService) Verify(ctx context.Context, creds Credentials, code string) error {
	l := slogx.FromContext(ctx)

	username, err := s.checkCredentials(creds)
	if err != nil {
		return err
	}
	if err := s.requireSession(ctx, creds.RefreshToken, username); err != nil {
		return err
	}

	u, err := s.Store.Users().GetUserByUsername(ctx, username)
	if errors.Is(err, store.ErrNotFound) {
		return apperr.UserNotFound(username)
	}
	if err != nil {
		return fmt.Errorf("get user: %w", err)
	}

	ok, err := s.MFA.Verify(u.TOTPSecret, code, s.Now.now())
	if err != nil {
		return err
	}
	if !ok {
		l.Warn("totp rejected", slog.String("username", username))
		return apperr.Credentials(apperr.DetailInvalidTOTP)
	}

	if err := s.Cache.Set(ctx, session.VerifiedKey(username), true, s.VerificationLifetime()); err != nil {
		return err
	}

	l.Info("user verified", slog.String("username", username))
	return nil
}

// QRCode re-renders the enrollment QR code as PNG for a logged in, not yet
// necessarily verified, session.
func (s *AuthService) QRCode(ctx context.Context, creds Credentials) ([]byte, error) {
	username, err := s.checkCredentials(creds)
	if err != nil {
		return nil, err
	}
	if err := s.requireSession(ctx, creds.RefreshToken, username); err != nil {
		return nil, err
	}

	u, err := s.Store.Users().GetUserByUsername(ctx, username)
	if errors.Is(err, store.ErrNotFound) {
		return nil, apperr.UserNotFound(username)
	}
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}

	uri, err := s.MFA.Enroll(u.Username, u.TOTPSecret)
	if err != nil {
		return nil, err
	}
	return s.MFA.RenderQR(uri)
}

// Refresh rotates a verified session: a new refresh token replaces the old
// one in Cache and an access token is minted from it. The old refresh
// token stops working as soon as this returns.
func (s *AuthService) Refresh(ctx context.Context, creds Credentials) (RefreshResult, error) {
	l := slogx.FromContext(ctx)

	username, err := s.checkCredentials(creds)
	if err != nil {
		return RefreshResult{}, err
	}

	var (
		stored      string
		found       bool
		verified    bool
		verifiedTTL time.Duration
		verifiedKey = session.VerifiedKey(username)
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		found, err = s.Cache.Get(gctx, creds.RefreshToken, &stored)
		return err
	})
	g.Go(func() error {
		_, err := s.Cache.Get(gctx, verifiedKey, &verified)
		return err
	})
	g.Go(func() error {
		var err error
		verifiedTTL, err = s.Cache.TTL(gctx, verifiedKey)
		return err
	})
	if err := g.Wait(); err != nil {
		return RefreshResult{}, err
	}

	if !found || stored != username {
		l.Warn("refresh rejected: no session",
			slog.String("username", username),
			slog.String("token_fp", cryptox.FingerprintToken(creds.RefreshToken)),
		)
		return RefreshResult{}, apperr.Credentials(apperr.DetailInvalidRefresh)
	}
	if !verified {
		return RefreshResult{}, apperr.Credentials(apperr.DetailNotVerified)
	}

	u, err := s.Store.Users().GetUserByUsername(ctx, username)
	if errors.Is(err, store.ErrNotFound) {
		return RefreshResult{}, apperr.UserNotFound(username)
	}
	if err != nil {
		return RefreshResult{}, fmt.Errorf("get user: %w", err)
	}

	refresh, err := s.Codec.EncodeRefresh(username, s.RefreshLifetime())
	if err != nil {
		return RefreshResult{}, err
	}
	access, err := s.Codec.EncodeAccess(username, u.Role.String(), refresh, s.AccessLifetime())
	if err != nil {
		return RefreshResult{}, err
	}
	csrf, err := s.Codec.EncodeCSRF(refresh, access, s.RefreshLifetime())
	if err != nil {
		return RefreshResult{}, err
	}

	if err := s.Cache.Set(ctx, refresh, username, s.RefreshLifetime()); err != nil {
		return RefreshResult{}, err
	}
	// Not atomic with the write above. A failure here leaves the old entry
	// to expire on its own.
	if _, err := s.Cache.Delete(ctx, creds.RefreshToken); err != nil {
		l.Error("failed to drop rotated session", slog.String("username", username), slog.Any("error", err))
		return RefreshResult{}, err
	}

	l.Info("session rotated", slog.String("username", username))
	return RefreshResult{
		RefreshToken:    refresh,
		AccessToken:     access,
		CSRFToken:       csrf,
		VerificationTTL: verifiedTTL,
		Identity:        domain.Identity{Username: username, Role: u.Role},
	}, nil
}

// Logout ends the session and clears the verification window.
func (s *AuthService) Logout(ctx context.Context, creds Credentials) error {
	username, err := s.checkCredentials(creds)
	if err != nil {
		return err
	}
	if err := s.requireSession(ctx, creds.RefreshToken, username); err != nil {
		return err
	}

	if _, err := s.Cache.Delete(ctx, creds.RefreshToken, session.VerifiedKey(username)); err != nil {
		return err
	}

	slogx.FromContext(ctx).Info("user logged out", slog.String("username", username))
	return nil
}

// Authenticate admits a request carrying an access token cookie and the
// CSRF token issued with it. The access token is only honoured while the
// refresh session it was minted from is still live.
func (s *AuthService) Authenticate(ctx context.Context, access, csrf string) (domain.Identity, error) {
	if access == "" || csrf == "" {
		return domain.Identity{}, apperr.Forbidden("Not authenticated")
	}

	csrfClaims, err := s.Codec.DecodeCSRF(csrf)
	if err != nil {
		return domain.Identity{}, err
	}
	accessClaims, err := s.Codec.DecodeAccess(access)
	if err != nil {
		return domain.Identity{}, err
	}
	if csrfClaims.AccessToken != access || csrfClaims.RefreshToken != accessClaims.RefreshToken {
		return domain.Identity{}, apperr.Credentials("")
	}

	role, err := domain.ParseRole(accessClaims.Role)
	if err != nil {
		return domain.Identity{}, apperr.Wrap(apperr.KindCredentials, apperr.DetailCredentials, err)
	}

	var stored string
	found, err := s.Cache.Get(ctx, accessClaims.RefreshToken, &stored)
	if err != nil {
		return domain.Identity{}, err
	}
	if !found || stored != accessClaims.Username {
		return domain.Identity{}, apperr.Credentials("")
	}

	return domain.Identity{Username: accessClaims.Username, Role: role}, nil
}

// checkCredentials validates the cookie/bearer pair offline and returns the
// username named by the refresh token.
func (s *AuthService) checkCredentials(creds Credentials) (string, error) {
	if creds.RefreshToken == "" || creds.CSRFToken == "" {
		return "", apperr.Forbidden("Not authenticated")
	}

	csrf, err := s.Codec.DecodeCSRF(creds.CSRFToken)
	if err != nil {
		return "", err
	}
	if csrf.RefreshToken != creds.RefreshToken {
		return "", apperr.Credentials("")
	}

	refresh, err := s.Codec.DecodeRefresh(creds.RefreshToken)
	if err != nil {
		return "", apperr.Wrap(apperr.KindCredentials, apperr.DetailInvalidRefresh, err)
	}
	return refresh.Username, nil
}

// requireSession checks the refresh token still names username in Cache.
func (s *AuthService) requireSession(ctx context.Context, refresh, username string) error {
	var stored string
	found, err := s.Cache.Get(ctx, refresh, &stored)
	if err != nil {
		return err
	}
	if !found || stored != username {
		slogx.FromContext(ctx).Warn("session not found",
			slog.String("username", username),
			slog.String("token_fp", cryptox.FingerprintToken(refresh)),
		)
		return apperr.Credentials(apperr.DetailInvalidRefresh)
	}
	return nil
}
