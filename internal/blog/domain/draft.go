package domain

import "time"

// Draft is an unpublished piece of writing owned by a single user.
type Draft struct {
	ID        string
	Username  string // owner
	Title     string
	Body      string
	Link      string // uuid, stable share link
	CreatedAt time.Time
	UpdatedAt time.Time
}
