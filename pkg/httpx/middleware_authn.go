package httpx

import (
	"context"
	"net/http"

	"github.com/aussiebroadwan/blog/pkg/apperr"
	"github.com/aussiebroadwan/blog/pkg/slogx"
)

// Principal is the authenticated caller attached to the request context.
type Principal struct {
	Username string
	Role     string
}

const ctxKeyPrincipal ctxKey = "principal"

// AuthenticateFunc resolves a session cookie value and the CSRF token sent
// as bearer to a Principal.
type AuthenticateFunc func(ctx context.Context, cookie, csrf string) (Principal, error)

// AuthnMiddleware authenticates requests from the named cookie plus the
// bearer CSRF token. Failures are written with apperr.WriteError; missing
// values are left to authn to classify.
func AuthnMiddleware(cookie string, authn AuthenticateFunc) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()

			p, err := authn(ctx, CookieValue(r, cookie), BearerToken(r))
			if err != nil {
				slogx.FromContext(ctx).Warn("authentication failed", "err", err)
				apperr.WriteError(w, err)
				return
			}

			ctx = contextWithPrincipal(ctx, p)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func contextWithPrincipal(ctx context.Context, p Principal) context.Context {
	ctx = WithUsername(ctx, p.Username)
	ctx = context.WithValue(ctx, ctxKeyPrincipal, p)
	slogx.Annotate(ctx, "username", p.Username)
	return slogx.With(ctx, "username", p.Username)
}

// PrincipalFromContext returns the caller set by AuthnMiddleware.
func PrincipalFromContext(ctx context.Context) (Principal, bool) {
	p, ok := ctx.Value(ctxKeyPrincipal).(Principal)
	return p, ok
}
