package domain

// BootstrapData describes the first administrator account.
type BootstrapData struct {
	AdminUsername string
	AdminPassword string // generated when empty
	AdminName     string
}
