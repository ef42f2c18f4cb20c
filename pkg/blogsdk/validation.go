package blogsdk

import (
	"strings"
	"unicode/utf8"
)

const requiredReason = "required"

// Validate checks presence of the required fields. Content rules such as
// password length are enforced by the server.
func (r SignupRequest) Validate() map[string]string {
	errs := make(map[string]string)
	if strings.TrimSpace(r.Username) == "" {
		errs["username"] = requiredReason
	}
	if strings.TrimSpace(r.Password) == "" {
		errs["password"] = requiredReason
	}
	return nilIfEmpty(errs)
}

func (r LoginRequest) Validate() map[string]string {
	errs := make(map[string]string)
	if strings.TrimSpace(r.Username) == "" {
		errs["username"] = requiredReason
	}
	if r.Password == "" {
		errs["password"] = requiredReason
	}
	return nilIfEmpty(errs)
}

func (r VerifyRequest) Validate() map[string]string {
	if strings.TrimSpace(r.Code) == "" {
		return map[string]string{"code": requiredReason}
	}
	return nil
}

func (r DraftRequest) Validate() map[string]string {
	errs := make(map[string]string)
	switch title := strings.TrimSpace(r.Title); {
	case title == "":
		errs["title"] = requiredReason
	case len(title) > 256:
		errs["title"] = "too long (max 256)"
	}
	return nilIfEmpty(errs)
}

func (r BootstrapRequest) Validate() map[string]string {
	errs := make(map[string]string)
	switch u := strings.TrimSpace(r.AdminUsername); {
	case u == "":
		errs["admin_username"] = requiredReason
	case utf8.RuneCountInString(u) > 64:
		errs["admin_username"] = "too long (max 64)"
	}
	if pw := r.AdminPassword; pw != "" && (len(pw) < 8 || len(pw) > 128) {
		errs["admin_password"] = "must be 8-128 characters"
	}
	if len(strings.TrimSpace(r.AdminName)) > 64 {
		errs["admin_name"] = "too long (max 64)"
	}
	return nilIfEmpty(errs)
}

func nilIfEmpty(errs map[string]string) map[string]string {
	if len(errs) == 0 {
		return nil
	}
	return errs
}
