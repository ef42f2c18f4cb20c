package httpx

import (
	"net/http"

	"github.com/rs/cors"
)

// CORS allows cross origin calls from origins. Cookies are only allowed
// for an explicit origin list; with no list every origin is accepted
// without credentials. exposed names response headers scripts may read.
func CORS(origins []string, exposed ...string) Middleware {
	credentials := len(origins) > 0
	if !credentials {
		origins = []string{"*"}
	}

	handler := cors.New(cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:   []string{"Authorization", "Content-Type", "X-Request-ID", "X-Bootstrap-Token"},
		ExposedHeaders:   append([]string{"X-Request-ID"}, exposed...),
		MaxAge:           3600,
		AllowCredentials: credentials,
	})

	return handler.Handler
}
