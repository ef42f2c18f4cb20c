package domain

import "time"

type User struct {
	ID           string
	Username     string // lower-cased, unique
	PasswordHash string // argon2id PHC string
	Role         Role
	TOTPSecret   string // base32, fixed at signup
	Profile      Profile
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Profile holds the optional public fields shown on a user's page. Social
// fields are stored as full URLs.
type Profile struct {
	Name      string
	Bio       string
	Email     string
	Telegram  string
	Instagram string
	Twitter   string
}
