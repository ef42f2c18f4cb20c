package slogx

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/aussiebroadwan/blog/pkg/idx"
)

// RequestIDHeader carries the correlation id in both directions.
const RequestIDHeader = "X-Request-ID"

// QuietPaths are logged at debug level. Probes hit them every few seconds.
var QuietPaths = map[string]bool{
	"/livez":  true,
	"/readyz": true,
}

// accessLog lets handlers further down the chain add attributes to the
// request's closing log line.
type accessLog struct {
	attrs []any
}

type accessLogKey struct{}

// Annotate adds attributes to the access line written when the request
// finishes. It is a no-op outside HTTPMiddleware.
func Annotate(ctx context.Context, args ...any) {
	if al, ok := ctx.Value(accessLogKey{}).(*accessLog); ok {
		al.attrs = append(al.attrs, args...)
	}
}

// HTTPMiddleware writes one access line per request and gives the request
// a logger tagged with its correlation id.
func HTTPMiddleware(base *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			reqID := r.Header.Get(RequestIDHeader)
			if reqID == "" {
				reqID = idx.New().String()
			}
			w.Header().Set(RequestIDHeader, reqID)

			logger := base.With("req_id", reqID)
			al := &accessLog{}
			ctx := context.WithValue(WithContext(r.Context(), logger), accessLogKey{}, al)

			rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(rec, r.WithContext(ctx))

			level := slog.LevelInfo
			switch {
			case rec.status >= http.StatusInternalServerError:
				level = slog.LevelError
			case rec.status == http.StatusTooManyRequests:
				level = slog.LevelWarn
			case QuietPaths[r.URL.Path]:
				level = slog.LevelDebug
			}

			attrs := append([]any{
				"method", r.Method,
				"path", r.URL.Path,
				"status", rec.status,
				"bytes", rec.written,
				"duration_ms", time.Since(start).Milliseconds(),
				"remote_addr", r.RemoteAddr,
				"user_agent", r.UserAgent(),
			}, al.attrs...)
			logger.Log(ctx, level, "http_request", attrs...)
		})
	}
}

type statusRecorder struct {
	http.ResponseWriter

	status  int
	written int
}

func (s *statusRecorder) WriteHeader(code int) {
	s.status = code
	s.ResponseWriter.WriteHeader(code)
}

func (s *statusRecorder) Write(b []byte) (int, error) {
	n, err := s.ResponseWriter.Write(b)
	s.written += n
	return n, err
}
