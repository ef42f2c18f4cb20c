package httpx

import (
	"net/http"
	"time"
)

// CookieOptions control the attributes of session cookies.
type CookieOptions struct {
	Secure bool
	Path   string
}

// SetSessionCookie writes an HttpOnly, SameSite=Strict cookie living for ttl.
func SetSessionCookie(w http.ResponseWriter, opts CookieOptions, name, value string, ttl time.Duration) {
	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     cookiePath(opts),
		MaxAge:   int(ttl.Seconds()),
		Expires:  time.Now().Add(ttl),
		Secure:   opts.Secure,
		HttpOnly: true,
		SameSite: http.SameSiteStrictMode,
	})
}

// ClearCookie expires the named cookie on the client.
func ClearCookie(w http.ResponseWriter, opts CookieOptions, name string) {
	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Value:    "",
		Path:     cookiePath(opts),
		MaxAge:   -1,
		Expires:  time.Unix(0, 0),
		Secure:   opts.Secure,
		HttpOnly: true,
		SameSite: http.SameSiteStrictMode,
	})
}

// CookieValue returns the named cookie's value or "" when absent.
func CookieValue(r *http.Request, name string) string {
	c, err := r.Cookie(name)
	if err != nil {
		return ""
	}
	return c.Value
}

func cookiePath(opts CookieOptions) string {
	if opts.Path == "" {
		return "/"
	}
	return opts.Path
}
