// Package acl decides whether a caller may act on a resource. The decision
// table is plain data: each (route, role) pair maps to one of a closed set
// of grants, and any pair missing from the table is denied.
package acl

import (
	"context"
	"fmt"

	"github.com/aussiebroadwan/blog/internal/blog/domain"
	"github.com/aussiebroadwan/blog/pkg/apperr"
)

// Route names a protected operation.
type Route string

const (
	GetUserByUsername Route = "GET_USER_BY_USERNAME"
	GetDraft          Route = "GET_DRAFT"
	UpdateDraft       Route = "UPDATE_DRAFT"
	DeleteDraft       Route = "DELETE_DRAFT"
)

// OwnerFunc resolves the username owning resource. Lookup failures such as
// a missing resource are returned to the caller unchanged.
type OwnerFunc func(ctx context.Context, resource string) (owner string, err error)

// Grant is implemented only by AllowAll, DenyAll and OwnerOnly.
type Grant interface {
	grant()
}

// AllowAll admits every caller holding the role.
type AllowAll struct{}

// DenyAll refuses every caller holding the role.
type DenyAll struct{}

// OwnerOnly admits the caller only when they own the resource.
type OwnerOnly struct {
	Owner OwnerFunc
}

func (AllowAll) grant()  {}
func (DenyAll) grant()   {}
func (OwnerOnly) grant() {}

// Decision is the outcome of Decide. Reason is set on denials.
type Decision struct {
	Allowed bool
	Reason  string
}

// Table maps routes and roles to grants.
type Table map[Route]map[domain.Role]Grant

// Decide evaluates the grant for (route, role). err is only returned when an
// ownership lookup fails; every other path yields a Decision.
func (t Table) Decide(ctx context.Context, route Route, role domain.Role, requester, resource string) (Decision, error) {
	grant, ok := t[route][role]
	if !ok {
		return Decision{Reason: fmt.Sprintf("no rule for %s as %s", route, role)}, nil
	}

	switch g := grant.(type) {
	case AllowAll:
		return Decision{Allowed: true}, nil
	case DenyAll:
		return Decision{Reason: fmt.Sprintf("%s is denied for %s", route, role)}, nil
	case OwnerOnly:
		if g.Owner == nil || requester == "" {
			return Decision{Reason: "ownership cannot be established"}, nil
		}
		owner, err := g.Owner(ctx, resource)
		if err != nil {
			return Decision{}, err
		}
		if owner != requester {
			return Decision{Reason: "requester does not own the resource"}, nil
		}
		return Decision{Allowed: true}, nil
	default:
		return Decision{Reason: fmt.Sprintf("unknown grant %T", grant)}, nil
	}
}

// Enforce is Decide for handlers: a denial becomes an UnauthorisedAccess
// error.
func (t Table) Enforce(ctx context.Context, route Route, caller domain.Identity, resource string) error {
	d, err := t.Decide(ctx, route, caller.Role, caller.Username, resource)
	if err != nil {
		return err
	}
	if !d.Allowed {
		return apperr.Wrap(apperr.KindUnauthorisedAccess, apperr.DetailUnauthorised, fmt.Errorf("acl: %s", d.Reason))
	}
	return nil
}

// Default wires the built-in routes: admins may do anything, users only
// touch what they own. users resolves a profile's owner (the username
// itself once it is known to exist); drafts resolves a draft's owner.
func Default(users, drafts OwnerFunc) Table {
	return Table{
		GetUserByUsername: {
			domain.RoleAdmin: AllowAll{},
			domain.RoleUser:  OwnerOnly{Owner: users},
		},
		GetDraft: {
			domain.RoleAdmin: AllowAll{},
			domain.RoleUser:  OwnerOnly{Owner: drafts},
		},
		UpdateDraft: {
			domain.RoleAdmin: AllowAll{},
			domain.RoleUser:  OwnerOnly{Owner: drafts},
		},
		DeleteDraft: {
			domain.RoleAdmin: AllowAll{},
			domain.RoleUser:  OwnerOnly{Owner: drafts},
		},
	}
}
