package httpx

import "context"

type ctxKey string

const CtxKeyUsername ctxKey = "username"

// WithUsername records the authenticated username for downstream
// middleware such as per-user rate limiting.
func WithUsername(ctx context.Context, username string) context.Context {
	return context.WithValue(ctx, CtxKeyUsername, username)
}

func UsernameFromContext(ctx context.Context) string {
	v, _ := ctx.Value(CtxKeyUsername).(string)
	return v
}
