package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/aussiebroadwan/blog/internal/blog/acl"
	"github.com/aussiebroadwan/blog/internal/blog/domain"
	"github.com/aussiebroadwan/blog/internal/blog/store"
	"github.com/aussiebroadwan/blog/pkg/apperr"
	"github.com/aussiebroadwan/blog/pkg/slogx"
)

type UserService struct {
	Store store.Store
	ACL   acl.Table
	Now   Clock
}

// Me returns the caller's own account.
func (s *UserService) Me(ctx context.Context, caller domain.Identity) (domain.User, error) {
	return s.get(ctx, caller.Username)
}

// GetByUsername returns another account, subject to GET_USER_BY_USERNAME.
func (s *UserService) GetByUsername(ctx context.Context, caller domain.Identity, username string) (domain.User, error) {
	username = normaliseUsername(username)
	if err := s.ACL.Enforce(ctx, acl.GetUserByUsername, caller, username); err != nil {
		return domain.User{}, err
	}
	return s.get(ctx, username)
}

// UpdateProfile replaces the caller's profile fields.
func (s *UserService) UpdateProfile(ctx context.Context, caller domain.Identity, in ProfileInput) (domain.User, error) {
	p, err := in.normalise()
	if err != nil {
		return domain.User{}, err
	}

	err = s.Store.Users().UpdateProfile(ctx, caller.Username, p.profile(), s.Now.now())
	if errors.Is(err, store.ErrNotFound) {
		return domain.User{}, apperr.UserNotFound(caller.Username)
	}
	if err != nil {
		return domain.User{}, fmt.Errorf("update profile: %w", err)
	}

	slogx.FromContext(ctx).Info("profile updated", slog.String("username", caller.Username))
	return s.get(ctx, caller.Username)
}

func (s *UserService) get(ctx context.Context, username string) (domain.User, error) {
	u, err := s.Store.Users().GetUserByUsername(ctx, username)
	if errors.Is(err, store.ErrNotFound) {
		return domain.User{}, apperr.UserNotFound(username)
	}
	if err != nil {
		return domain.User{}, fmt.Errorf("get user: %w", err)
	}
	return u, nil
}

// UserOwner resolves a profile's owner for the ACL: the username itself,
// once it is known to exist.
func UserOwner(st store.Store) acl.OwnerFunc {
	return func(ctx context.Context, username string) (string, error) {
		u, err := st.Users().GetUserByUsername(ctx, username)
		if errors.Is(err, store.ErrNotFound) {
			return "", apperr.UserNotFound(username)
		}
		if err != nil {
			return "", fmt.Errorf("get user: %w", err)
		}
		return u.Username, nil
	}
}

// DraftOwner resolves a draft's owner for the ACL.
func DraftOwner(st store.Store) acl.OwnerFunc {
	return func(ctx context.Context, id string) (string, error) {
		owner, err := st.Drafts().DraftOwner(ctx, id)
		if errors.Is(err, store.ErrNotFound) {
			return "", draftNotFound(id)
		}
		if err != nil {
			return "", fmt.Errorf("get draft owner: %w", err)
		}
		return owner, nil
	}
}
