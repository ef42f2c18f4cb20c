package service

import (
	"net/mail"
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/aussiebroadwan/blog/internal/blog/domain"
	"github.com/aussiebroadwan/blog/pkg/apperr"
)

const (
	MinPasswordLength = 8
	MaxPasswordLength = 128
	maxNameLength     = 64
	MaxUsernameLength = 64
	maxBioLength      = 1024
)

var reHandle = regexp.MustCompile(`^[A-Za-z0-9_.]{1,64}$`)

const usernameRule = "must be 1-64 characters without '/' or control characters"

// SignupInput is the self service registration form.
type SignupInput struct {
	Username string
	Password string
	ProfileInput
}

// ProfileInput carries the editable profile fields. Social fields accept a
// bare handle, with or without a leading @.
type ProfileInput struct {
	Name      string
	Bio       string
	Email     string
	Telegram  string
	Instagram string
	Twitter   string
}

func normaliseUsername(u string) string {
	return strings.ToLower(strings.TrimSpace(u))
}

// validUsername accepts any lower-cased name that fits in one URL path
// segment, spaces included.
func validUsername(u string) bool {
	if u == "" || utf8.RuneCountInString(u) > MaxUsernameLength || !utf8.ValidString(u) {
		return false
	}
	return !strings.ContainsFunc(u, func(r rune) bool {
		return r == '/' || unicode.IsControl(r)
	})
}

func (in SignupInput) normalise() (SignupInput, error) {
	in.Username = normaliseUsername(in.Username)
	in.Password = strings.TrimSpace(in.Password)

	switch {
	case !validUsername(in.Username):
		return in, apperr.BadRequest("username " + usernameRule)
	case len(in.Password) < MinPasswordLength:
		return in, apperr.BadRequest("password too short (min 8)")
	case len(in.Password) > MaxPasswordLength:
		return in, apperr.BadRequest("password too long (max 128)")
	}

	p, err := in.ProfileInput.normalise()
	if err != nil {
		return in, err
	}
	in.ProfileInput = p
	return in, nil
}

func (p ProfileInput) normalise() (ProfileInput, error) {
	p.Name = strings.TrimSpace(p.Name)
	p.Bio = strings.TrimSpace(p.Bio)
	p.Email = strings.TrimSpace(p.Email)

	if len(p.Name) > maxNameLength {
		return p, apperr.BadRequest("name too long (max 64)")
	}
	if len(p.Bio) > maxBioLength {
		return p, apperr.BadRequest("bio too long (max 1024)")
	}
	if p.Email != "" {
		addr, err := mail.ParseAddress(p.Email)
		if err != nil || addr.Address != p.Email {
			return p, apperr.BadRequest("email is not a valid address")
		}
	}

	var err error
	if p.Telegram, err = socialURL("telegram", "https://t.me/", p.Telegram); err != nil {
		return p, err
	}
	if p.Instagram, err = socialURL("instagram", "https://instagram.com/", p.Instagram); err != nil {
		return p, err
	}
	if p.Twitter, err = socialURL("twitter", "https://x.com/@", p.Twitter); err != nil {
		return p, err
	}
	return p, nil
}

func (p ProfileInput) profile() domain.Profile {
	return domain.Profile{
		Name:      p.Name,
		Bio:       p.Bio,
		Email:     p.Email,
		Telegram:  p.Telegram,
		Instagram: p.Instagram,
		Twitter:   p.Twitter,
	}
}

// socialURL expands a handle into a profile link. Values already carrying
// the prefix are kept so a profile can be round tripped through an update.
func socialURL(field, prefix, handle string) (string, error) {
	handle = strings.TrimSpace(handle)
	if handle == "" {
		return "", nil
	}
	if strings.HasPrefix(handle, prefix) {
		handle = strings.TrimPrefix(handle, prefix)
	}
	handle = strings.TrimPrefix(handle, "@")
	if !reHandle.MatchString(handle) {
		return "", apperr.BadRequest(field + " handle is not valid")
	}
	return prefix + handle, nil
}
