package service

import "time"

// Clock returns the current time. The application hands one clock to the
// token codec and every service so token expiry, TOTP windows and stored
// timestamps agree.
type Clock func() time.Time

// now reads c in UTC, falling back to the wall clock when c is unset.
func (c Clock) now() time.Time {
	if c == nil {
		return time.Now().UTC()
	}
	return c().UTC()
}
