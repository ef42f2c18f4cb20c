package blogsdk

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
)

// Error codes the server returns.
const (
	ErrorCodeNotFound           = "not_found"
	ErrorCodeUserNotFound       = "user_not_found"
	ErrorCodeBadRequest         = "bad_request"
	ErrorCodeDuplicateUsername  = "duplicate_username"
	ErrorCodeInvalidCredentials = "invalid_credentials"
	ErrorCodeForbidden          = "forbidden"
	ErrorCodeUnauthorisedAccess = "unauthorised_access"
	ErrorCodeValidation         = "validation_error"
	ErrorCodeRateLimited        = "rate_limit_exceeded"
	ErrorCodeServerError        = "server_error"
)

// ErrNotElevated is returned by Session calls that need an access token
// before Refresh has succeeded.
var ErrNotElevated = errors.New("blogsdk: session has no access token, call Verify and Refresh first")

// APIError is a failed response from the server.
type APIError struct {
	StatusCode  int
	Code        string
	Description string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Description)
}

// IsCode reports whether err is an APIError with the given code.
func IsCode(err error, code string) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Code == code
}

// parseErrorResponse turns a non 2xx response into an *APIError.
func parseErrorResponse(resp *http.Response, body []byte) error {
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}

	var errResp ErrorResponse
	if err := json.Unmarshal(body, &errResp); err == nil && errResp.Error != "" {
		return &APIError{
			StatusCode:  resp.StatusCode,
			Code:        errResp.Error,
			Description: errResp.ErrorDescription,
		}
	}

	return &APIError{
		StatusCode:  resp.StatusCode,
		Code:        ErrorCodeServerError,
		Description: fmt.Sprintf("HTTP %d: %s", resp.StatusCode, http.StatusText(resp.StatusCode)),
	}
}
