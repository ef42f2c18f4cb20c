package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/aussiebroadwan/blog/internal/blog/acl"
	"github.com/aussiebroadwan/blog/internal/blog/domain"
	"github.com/aussiebroadwan/blog/internal/blog/store"
	"github.com/aussiebroadwan/blog/pkg/apperr"
	"github.com/aussiebroadwan/blog/pkg/idx"
	"github.com/aussiebroadwan/blog/pkg/slogx"
	"github.com/google/uuid"
)

const maxTitleLength = 256

type DraftInput struct {
	Title string
	Body  string
}

func (in DraftInput) normalise() (DraftInput, error) {
	in.Title = strings.TrimSpace(in.Title)
	switch {
	case in.Title == "":
		return in, apperr.BadRequest("title is required")
	case len(in.Title) > maxTitleLength:
		return in, apperr.BadRequest("title too long (max 256)")
	}
	return in, nil
}

func draftNotFound(id string) error {
	return apperr.NotFound(fmt.Sprintf("<Draft:%q> is not found!", id))
}

// DraftService manages unpublished drafts. Reads, updates and deletes by id
// go through the ACL; listing and creating always act on the caller's own
// drafts.
type DraftService struct {
	Store store.Store
	ACL   acl.Table
	Now   Clock
}

func (s *DraftService) Create(ctx context.Context, caller domain.Identity, in DraftInput) (domain.Draft, error) {
	in, err := in.normalise()
	if err != nil {
		return domain.Draft{}, err
	}

	now := s.Now.now()
	d := domain.Draft{
		ID:        idx.NewAt(now).String(),
		Username:  caller.Username,
		Title:     in.Title,
		Body:      in.Body,
		Link:      uuid.NewString(),
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.Store.Drafts().CreateDraft(ctx, d); err != nil {
		return domain.Draft{}, fmt.Errorf("create draft: %w", err)
	}

	slogx.FromContext(ctx).Info("draft created",
		slog.String("username", caller.Username),
		slog.String("draft_id", d.ID),
	)
	return d, nil
}

func (s *DraftService) List(ctx context.Context, caller domain.Identity) ([]domain.Draft, error) {
	drafts, err := s.Store.Drafts().ListDraftsByUsername(ctx, caller.Username)
	if err != nil {
		return nil, fmt.Errorf("list drafts: %w", err)
	}
	return drafts, nil
}

// checkID turns ids that could never have been minted into a not found
// before any store lookup.
func checkID(id string) error {
	if _, err := idx.Parse(id); err != nil {
		return draftNotFound(id)
	}
	return nil
}

func (s *DraftService) Get(ctx context.Context, caller domain.Identity, id string) (domain.Draft, error) {
	if err := checkID(id); err != nil {
		return domain.Draft{}, err
	}
	if err := s.ACL.Enforce(ctx, acl.GetDraft, caller, id); err != nil {
		return domain.Draft{}, err
	}
	return s.get(ctx, id)
}

func (s *DraftService) Update(ctx context.Context, caller domain.Identity, id string, in DraftInput) (domain.Draft, error) {
	in, err := in.normalise()
	if err != nil {
		return domain.Draft{}, err
	}
	if err := checkID(id); err != nil {
		return domain.Draft{}, err
	}
	if err := s.ACL.Enforce(ctx, acl.UpdateDraft, caller, id); err != nil {
		return domain.Draft{}, err
	}

	err = s.Store.Drafts().UpdateDraft(ctx, id, in.Title, in.Body, s.Now.now())
	if errors.Is(err, store.ErrNotFound) {
		return domain.Draft{}, draftNotFound(id)
	}
	if err != nil {
		return domain.Draft{}, fmt.Errorf("update draft: %w", err)
	}
	return s.get(ctx, id)
}

func (s *DraftService) Delete(ctx context.Context, caller domain.Identity, id string) error {
	if err := checkID(id); err != nil {
		return err
	}
	if err := s.ACL.Enforce(ctx, acl.DeleteDraft, caller, id); err != nil {
		return err
	}

	err := s.Store.Drafts().DeleteDraft(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return draftNotFound(id)
	}
	if err != nil {
		return fmt.Errorf("delete draft: %w", err)
	}

	slogx.FromContext(ctx).Info("draft deleted",
		slog.String("username", caller.Username),
		slog.String("draft_id", id),
	)
	return nil
}

func (s *DraftService) get(ctx context.Context, id string) (domain.Draft, error) {
	d, err := s.Store.Drafts().GetDraftByID(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return domain.Draft{}, draftNotFound(id)
	}
	if err != nil {
		return domain.Draft{}, fmt.Errorf("get draft: %w", err)
	}
	return d, nil
}
