package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/aussiebroadwan/blog/internal/blog/domain"
	"github.com/aussiebroadwan/blog/pkg/apperr"
	"github.com/aussiebroadwan/blog/pkg/blogsdk"
	"github.com/aussiebroadwan/blog/pkg/httpx"
	"github.com/aussiebroadwan/blog/pkg/slogx"
)

// writeError logs unexpected failures before handing err to apperr, which
// hides their details from the client.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	if status, _ := apperr.ResponseFor(err); status >= http.StatusInternalServerError {
		slogx.FromContext(r.Context()).Error("request failed", slog.Any("error", err))
	}
	apperr.WriteError(w, err)
}

// decodeBody reads a JSON body and runs its Validate method. It writes the
// failure response itself and reports whether the handler should go on.
func decodeBody[T interface{ Validate() map[string]string }](w http.ResponseWriter, r *http.Request, dst *T) bool {
	if err := httpx.DecodeJSON(w, r, dst); err != nil {
		writeError(w, r, apperr.BadRequest(err.Error()))
		return false
	}
	if errs := (*dst).Validate(); errs != nil {
		httpx.WriteJSON(w, http.StatusBadRequest, blogsdk.ValidationErrorResponse{
			Error:            blogsdk.ErrorCodeValidation,
			ErrorDescription: "validation failed for some fields",
			Details:          errs,
		})
		return false
	}
	return true
}

// identity returns the caller placed in the context by the access
// middleware.
func identity(r *http.Request) domain.Identity {
	p, _ := httpx.PrincipalFromContext(r.Context())
	return domain.Identity{Username: p.Username, Role: domain.Role(p.Role)}
}

func timestamp(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}

func userResponse(u domain.User) blogsdk.UserResponse {
	return blogsdk.UserResponse{
		Username:  u.Username,
		Role:      u.Role.String(),
		Name:      u.Profile.Name,
		Bio:       u.Profile.Bio,
		Email:     u.Profile.Email,
		Telegram:  u.Profile.Telegram,
		Instagram: u.Profile.Instagram,
		Twitter:   u.Profile.Twitter,
		CreatedAt: timestamp(u.CreatedAt),
	}
}
