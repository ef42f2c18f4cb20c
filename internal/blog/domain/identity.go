package domain

// Identity is the authenticated caller of a request, taken from a validated
// access token.
type Identity struct {
	Username string
	Role     Role
}

func (i Identity) IsZero() bool { return i.Username == "" }
