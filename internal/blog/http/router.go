package http

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/aussiebroadwan/blog/internal/blog/service"
	"github.com/aussiebroadwan/blog/pkg/blogsdk"
	"github.com/aussiebroadwan/blog/pkg/httpx"
	"github.com/aussiebroadwan/blog/pkg/slogx"

	_ "github.com/aussiebroadwan/blog/api/blog" // Swagger docs
	httpSwagger "github.com/swaggo/http-swagger"
)

// Options tune the routes registered by ApplyRoutes.
type Options struct {
	// APIPrefix is prepended to every API route, e.g. "/api/v1". Health
	// probes and docs stay at the root.
	APIPrefix    string
	BuildVersion string

	// CORSOrigins lists origins allowed to call the API with cookies. Empty
	// allows any origin without credentials.
	CORSOrigins []string
	Cookies     httpx.CookieOptions
	Limits      httpx.Profiles
}

// Router holds shared dependencies for HTTP handlers.
type Router struct {
	Mux         *http.ServeMux
	middlewares []httpx.Middleware

	opts      Options
	startTime time.Time
	logger    *slog.Logger
	db        Pinger
	cache     Pinger

	AuthService      *service.AuthService
	UserService      *service.UserService
	DraftService     *service.DraftService
	BootstrapService *service.BootstrapService
}

func NewRouter(opts Options, db, cache Pinger, logger *slog.Logger) *Router {
	r := &Router{
		Mux:       http.NewServeMux(),
		opts:      opts,
		startTime: time.Now(),
		logger:    logger,
		db:        db,
		cache:     cache,
	}

	r.middlewares = []httpx.Middleware{
		slogx.HTTPMiddleware(r.logger),
		httpx.CORS(opts.CORSOrigins, blogsdk.HeaderCSRFToken),
	}

	return r
}

func (r *Router) ApplyRoutes() {
	r.registerAuth()
	r.registerUsers()
	r.registerDrafts()
	r.registerBootstrap()
	r.registerSystem()

	r.Mux.Handle("/swagger/",
		httpx.Chain(httpSwagger.Handler(), httpx.RateLimitByIP(r.opts.Limits.Public)),
	)
}

// ServeHTTP implements http.Handler for Router and applies the global middleware chain.
//
//	@title			Blog API
//	@version		0.1.0
//	@description	Blog backend with cookie sessions and TOTP second factor.
//	@description
//	@description				Log in to receive a Refresh-Token cookie and an X-CSRF-TOKEN header, verify with a TOTP code, then refresh to obtain an Access-Token cookie. Every authenticated call sends the latest CSRF token as a bearer.
//
//	@contact.name				AussieBroadWAN Team
//	@contact.url				https://github.com/aussiebroadwan/blog
//
//	@license.name				MIT
//	@license.url				https://opensource.org/licenses/MIT
//
//	@host						localhost:8080
//	@BasePath					/
//
//	@schemes					http https
//
//	@securityDefinitions.apikey	BearerAuth
//	@in							header
//	@name						Authorization
//	@description				CSRF token from the X-CSRF-TOKEN header. Format: "Bearer {token}".
func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	httpx.Chain(r.Mux, r.middlewares...).ServeHTTP(w, req)
}

// route joins method and path under the API prefix into a ServeMux
// pattern.
func (r *Router) route(method, path string) string {
	return method + " " + r.opts.APIPrefix + path
}

// authenticate resolves the Access-Token cookie and CSRF bearer to the
// caller.
func (r *Router) authenticate(ctx context.Context, access, csrf string) (httpx.Principal, error) {
	id, err := r.AuthService.Authenticate(ctx, access, csrf)
	if err != nil {
		return httpx.Principal{}, err
	}
	return httpx.Principal{Username: id.Username, Role: id.Role.String()}, nil
}

// secured wraps h with access-token authentication and a per-user limit.
func (r *Router) secured(h http.HandlerFunc) http.Handler {
	return httpx.Chain(h,
		httpx.AuthnMiddleware(blogsdk.CookieAccessToken, r.authenticate),
		httpx.RateLimitByUser(r.opts.Limits.Lenient),
	)
}

func (r *Router) registerAuth() {
	h := &AuthHandler{AuthService: r.AuthService, Cookies: r.opts.Cookies}

	// Credential checks are brute-force targets: strict limit by IP.
	strict := httpx.RateLimitByIP(r.opts.Limits.Strict)
	r.Mux.Handle(r.route(http.MethodPost, "/auth/signup"), httpx.Chain(http.HandlerFunc(h.HandleSignup), strict))
	r.Mux.Handle(r.route(http.MethodPost, "/auth/login"), httpx.Chain(http.HandlerFunc(h.HandleLogin), strict))
	r.Mux.Handle(r.route(http.MethodPost, "/auth/verify"), httpx.Chain(http.HandlerFunc(h.HandleVerify), strict))

	moderate := httpx.RateLimitByIP(r.opts.Limits.Moderate)
	r.Mux.Handle(r.route(http.MethodPost, "/auth/refresh"), httpx.Chain(http.HandlerFunc(h.HandleRefresh), moderate))
	r.Mux.Handle(r.route(http.MethodPost, "/auth/logout"), httpx.Chain(http.HandlerFunc(h.HandleLogout), moderate))
	r.Mux.Handle(r.route(http.MethodGet, "/auth/2fa-img"), httpx.Chain(http.HandlerFunc(h.HandleQRCode), moderate))
}

func (r *Router) registerUsers() {
	h := &UserHandler{UserService: r.UserService}

	r.Mux.Handle(r.route(http.MethodGet, "/users/me"), r.secured(h.HandleMe))
	r.Mux.Handle(r.route(http.MethodPut, "/users/me"), r.secured(h.HandleUpdateMe))
	r.Mux.Handle(r.route(http.MethodGet, "/users/{username}"), r.secured(h.HandleGet))
}

func (r *Router) registerDrafts() {
	h := &DraftHandler{DraftService: r.DraftService, Prefix: r.opts.APIPrefix}

	r.Mux.Handle(r.route(http.MethodPost, "/drafts"), r.secured(h.HandleCreate))
	r.Mux.Handle(r.route(http.MethodGet, "/drafts"), r.secured(h.HandleList))
	r.Mux.Handle(r.route(http.MethodGet, "/drafts/{id}"), r.secured(h.HandleGet))
	r.Mux.Handle(r.route(http.MethodPut, "/drafts/{id}"), r.secured(h.HandleUpdate))
	r.Mux.Handle(r.route(http.MethodDelete, "/drafts/{id}"), r.secured(h.HandleDelete))
}

func (r *Router) registerBootstrap() {
	h := &BootstrapHandler{BootstrapService: r.BootstrapService}
	r.Mux.Handle(r.route(http.MethodPost, "/bootstrap"),
		httpx.Chain(h, httpx.RateLimitByIP(r.opts.Limits.Strict)),
	)
}

func (r *Router) registerSystem() {
	// Monitoring may poll often.
	r.Mux.Handle("GET /livez",
		httpx.Chain(LivezHandler(r.startTime, r.opts.BuildVersion),
			httpx.RateLimitByIP(r.opts.Limits.Public),
		),
	)
	r.Mux.Handle("GET /readyz",
		httpx.Chain(ReadyzHandler(r.startTime, r.opts.BuildVersion, r.db, r.cache),
			httpx.RateLimitByIP(r.opts.Limits.Public),
		),
	)
}
