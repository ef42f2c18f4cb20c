package service

import (
	"context"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/aussiebroadwan/blog/internal/blog/domain"
	"github.com/aussiebroadwan/blog/internal/blog/mfa"
	"github.com/aussiebroadwan/blog/internal/blog/store"
	"github.com/aussiebroadwan/blog/pkg/apperr"
	"github.com/aussiebroadwan/blog/pkg/cryptox"
	"github.com/aussiebroadwan/blog/pkg/idx"
	"github.com/aussiebroadwan/blog/pkg/slogx"
)

var (
	ErrBootstrapDisabled     = apperr.NotFound("Bootstrap endpoint is not enabled")
	ErrBootstrapAlready      = apperr.UnauthorisedAccess("System has already been bootstrapped")
	ErrBootstrapUnauthorized = apperr.UnauthorisedAccess("Invalid bootstrap token")
)

type BootstrapResult struct {
	Username        string
	Password        string // only ever shown here
	ProvisioningURI string
	QRImage         string // base64 PNG
}

// BootstrapService creates the first ADMIN account. It works exactly once:
// as soon as any user exists it refuses.
type BootstrapService struct {
	Store  store.Store
	Hasher *cryptox.PasswordHasher
	MFA    *mfa.Verifier
	Token  string // empty disables bootstrapping
	Now    Clock
}

func (s *BootstrapService) Enabled() bool { return s.Token != "" }

func (s *BootstrapService) IsBootstrapped(ctx context.Context) (bool, error) {
	empty, err := s.Store.Users().IsEmpty(ctx)
	if err != nil {
		return false, err
	}
	return !empty, nil
}

func (s *BootstrapService) Bootstrap(ctx context.Context, token string, req domain.BootstrapData) (BootstrapResult, error) {
	l := slogx.FromContext(ctx)

	if !s.Enabled() {
		return BootstrapResult{}, ErrBootstrapDisabled
	}
	if subtle.ConstantTimeCompare([]byte(token), []byte(s.Token)) != 1 {
		l.Warn("unauthorized bootstrap attempt")
		return BootstrapResult{}, ErrBootstrapUnauthorized
	}

	bootstrapped, err := s.IsBootstrapped(ctx)
	if err != nil {
		return BootstrapResult{}, fmt.Errorf("check bootstrap state: %w", err)
	}
	if bootstrapped {
		l.Warn("attempted bootstrap on already-bootstrapped system")
		return BootstrapResult{}, ErrBootstrapAlready
	}

	username := normaliseUsername(req.AdminUsername)
	if !validUsername(username) {
		return BootstrapResult{}, apperr.BadRequest("admin_username " + usernameRule)
	}

	password := strings.TrimSpace(req.AdminPassword)
	if password == "" {
		if password, err = cryptox.GeneratePassword(); err != nil {
			return BootstrapResult{}, fmt.Errorf("generate password: %w", err)
		}
	}
	if len(password) < MinPasswordLength {
		return BootstrapResult{}, apperr.BadRequest("admin_password too short (min 8)")
	}

	hash, err := s.Hasher.Hash(password)
	if err != nil {
		l.Error("failed to hash admin password", slog.Any("error", err))
		return BootstrapResult{}, err
	}
	secret, err := s.MFA.GenerateSecret(username)
	if err != nil {
		return BootstrapResult{}, err
	}

	now := s.Now.now()
	err = s.Store.WithTx(ctx, func(tx store.Tx) error {
		// Re-checked inside the transaction so two racing requests cannot
		// both create an admin.
		empty, err := tx.Users().IsEmpty(ctx)
		if err != nil {
			return err
		}
		if !empty {
			return ErrBootstrapAlready
		}
		return tx.Users().CreateUser(ctx, domain.User{
			ID:           idx.NewAt(now).String(),
			Username:     username,
			PasswordHash: hash,
			Role:         domain.RoleAdmin,
			TOTPSecret:   secret,
			Profile:      domain.Profile{Name: strings.TrimSpace(req.AdminName)},
			CreatedAt:    now,
			UpdatedAt:    now,
		})
	})
	if errors.Is(err, ErrBootstrapAlready) {
		return BootstrapResult{}, err
	}
	if err != nil {
		l.Error("failed to create admin user", slog.String("username", username), slog.Any("error", err))
		return BootstrapResult{}, fmt.Errorf("create admin: %w", err)
	}

	uri, err := s.MFA.Enroll(username, secret)
	if err != nil {
		return BootstrapResult{}, err
	}
	png, err := s.MFA.RenderQR(uri)
	if err != nil {
		return BootstrapResult{}, err
	}

	l.Info("system bootstrapped", slog.String("admin_username", username))
	return BootstrapResult{
		Username:        username,
		Password:        password,
		ProvisioningURI: uri,
		QRImage:         base64.StdEncoding.EncodeToString(png),
	}, nil
}
