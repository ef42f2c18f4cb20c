// Package apperr holds the error taxonomy shared by the token codec, the
// session store, the auth service and the ACL. Every failure that reaches a
// client carries a Kind, which decides the wire status and the stable error
// code, plus an optional human readable detail.
package apperr

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies an error. The zero value is KindInternal.
type Kind int

const (
	KindInternal Kind = iota
	KindNotFound
	KindUserNotFound
	KindBadRequest
	KindDuplicateUsername
	KindCredentials
	KindForbidden
	KindUnauthorisedAccess
	KindDatabaseConnection
)

// Default details, used when a constructor is given an empty string.
const (
	DetailCredentials    = "Could not validate credentials"
	DetailInvalidRefresh = "Invalid refresh token"
	DetailInvalidTOTP    = "Invalid TOTP code"
	DetailNotVerified    = "please verify 2-step verification first"
	DetailUnauthorised   = "You are not authorised to access this resource"
	DetailDatabaseDown   = "Could not connect to the session store"
)

var kindCodes = map[Kind]string{
	KindInternal:           "server_error",
	KindNotFound:           "not_found",
	KindUserNotFound:       "user_not_found",
	KindBadRequest:         "bad_request",
	KindDuplicateUsername:  "duplicate_username",
	KindCredentials:        "invalid_credentials",
	KindForbidden:          "forbidden",
	KindUnauthorisedAccess: "unauthorised_access",
	KindDatabaseConnection: "database_connection_error",
}

// Code returns the stable machine readable code for the kind.
func (k Kind) Code() string {
	if c, ok := kindCodes[k]; ok {
		return c
	}
	return kindCodes[KindInternal]
}

// Status maps the kind onto an HTTP status code.
func (k Kind) Status() int {
	switch k {
	case KindNotFound, KindUserNotFound:
		return http.StatusNotFound
	case KindBadRequest, KindDuplicateUsername:
		return http.StatusBadRequest
	case KindCredentials, KindUnauthorisedAccess:
		return http.StatusUnauthorized
	case KindForbidden:
		return http.StatusForbidden
	default:
		return http.StatusInternalServerError
	}
}

func (k Kind) String() string { return k.Code() }

// Error is the concrete error type. Err is the optional underlying cause and
// is never shown to clients.
type Error struct {
	Kind   Kind
	Detail string
	Err    error
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	msg := e.Kind.Code()
	if e.Detail != "" {
		msg += ": " + e.Detail
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *Error) Unwrap() error { return e.Err }

// Is lets errors.Is match on kind alone, so callers can compare against the
// Err* sentinels below without caring about detail text.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Detail == "" && t.Err == nil && t.Kind == e.Kind
}

// Sentinels for errors.Is.
var (
	ErrNotFound           = &Error{Kind: KindNotFound}
	ErrUserNotFound       = &Error{Kind: KindUserNotFound}
	ErrBadRequest         = &Error{Kind: KindBadRequest}
	ErrDuplicateUsername  = &Error{Kind: KindDuplicateUsername}
	ErrCredentials        = &Error{Kind: KindCredentials}
	ErrForbidden          = &Error{Kind: KindForbidden}
	ErrUnauthorisedAccess = &Error{Kind: KindUnauthorisedAccess}
	ErrDatabaseConnection = &Error{Kind: KindDatabaseConnection}
)

func New(kind Kind, detail string) *Error {
	return &Error{Kind: kind, Detail: detail}
}

// Wrap attaches a kind and detail to an underlying cause.
func Wrap(kind Kind, detail string, err error) *Error {
	return &Error{Kind: kind, Detail: detail, Err: err}
}

func NotFound(detail string) *Error { return New(KindNotFound, detail) }

func UserNotFound(username string) *Error {
	return New(KindUserNotFound, fmt.Sprintf("<User:%q> is not found!", username))
}

func BadRequest(detail string) *Error { return New(KindBadRequest, detail) }

func DuplicateUsername(username string) *Error {
	return New(KindDuplicateUsername, fmt.Sprintf("username: %q already exists!", username))
}

// Credentials reports an authentication failure. An empty detail falls back
// to DetailCredentials.
func Credentials(detail string) *Error {
	if detail == "" {
		detail = DetailCredentials
	}
	return New(KindCredentials, detail)
}

func Forbidden(detail string) *Error { return New(KindForbidden, detail) }

func UnauthorisedAccess(detail string) *Error {
	if detail == "" {
		detail = DetailUnauthorised
	}
	return New(KindUnauthorisedAccess, detail)
}

func DatabaseConnection(err error) *Error {
	return Wrap(KindDatabaseConnection, DetailDatabaseDown, err)
}

// KindOf returns the kind of the first *Error in err's chain, or KindInternal.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

// Response is the JSON body written for every failed request.
type Response struct {
	Code        string `json:"error"`
	Description string `json:"error_description,omitempty"`
}

// ResponseFor builds the wire body and status for err. Errors without a kind
// are reported as a generic server error so internals never leak.
func ResponseFor(err error) (int, Response) {
	var e *Error
	if !errors.As(err, &e) {
		return http.StatusInternalServerError, Response{
			Code:        KindInternal.Code(),
			Description: "internal server error",
		}
	}
	return e.Kind.Status(), Response{Code: e.Kind.Code(), Description: e.Detail}
}

// WriteError writes err as a JSON error response.
func WriteError(w http.ResponseWriter, err error) {
	status, body := ResponseFor(err)
	if KindOf(err) == KindCredentials {
		w.Header().Set("WWW-Authenticate", "Bearer")
	}
	w.Header().Set("Cache-Control", "no-store")
	w.Header().Set("Pragma", "no-cache")
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
