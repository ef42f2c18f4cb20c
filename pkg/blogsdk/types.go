package blogsdk

// Cookie and header names shared by the server and the SDK.
const (
	CookieRefreshToken   = "Refresh-Token"
	CookieAccessToken    = "Access-Token"
	HeaderCSRFToken      = "X-CSRF-TOKEN"
	HeaderBootstrapToken = "X-Bootstrap-Token"
)

// ============================================================================
// Error Types
// ============================================================================

// ErrorResponse is the body of every failed request.
type ErrorResponse struct {
	// Error is the stable error code (e.g., "invalid_credentials", "forbidden")
	Error string `json:"error"`

	// ErrorDescription is a human-readable description of the error
	ErrorDescription string `json:"error_description,omitempty"`
}

// ValidationErrorResponse is returned when a request body is well formed
// JSON but fails field validation.
type ValidationErrorResponse struct {
	Error            string            `json:"error"`
	ErrorDescription string            `json:"error_description"`
	Details          map[string]string `json:"details,omitempty"`
}

// ============================================================================
// Auth Types
// ============================================================================

// SignupRequest registers a new USER account. Social fields take a bare
// handle, a leading @ is accepted.
type SignupRequest struct {
	Username  string `json:"username" example:"mahdi"`
	Password  string `json:"password" example:"12345678"`
	Name      string `json:"name,omitempty" example:"Mahdi"`
	Bio       string `json:"bio,omitempty"`
	Email     string `json:"email,omitempty" example:"mahdi@example.com"`
	Telegram  string `json:"telegram,omitempty" example:"@mahdi"`
	Instagram string `json:"instagram,omitempty"`
	Twitter   string `json:"twitter,omitempty"`
}

// LoginRequest opens an unverified session.
type LoginRequest struct {
	Username string `json:"username" example:"mahdi"`
	Password string `json:"password" example:"12345678"`
}

// VerifyRequest submits the current TOTP code.
type VerifyRequest struct {
	Code string `json:"code" example:"123456"`
}

// LoginResponse accompanies the Refresh-Token cookie and X-CSRF-TOKEN
// header.
type LoginResponse struct {
	Username string `json:"username"`
	Detail   string `json:"detail"`
}

// DetailResponse is the body of calls that only report success.
type DetailResponse struct {
	Detail string `json:"detail"`
}

// RefreshResponse accompanies the rotated cookies and X-CSRF-TOKEN header.
type RefreshResponse struct {
	Username string `json:"username"`
	Role     string `json:"role"`

	// VerificationExpiresIn is the number of seconds left before another
	// verify is needed.
	VerificationExpiresIn int64 `json:"verification_expires_in"`
}

// ============================================================================
// User Types
// ============================================================================

// UserResponse is the public view of an account. QRImage is only set on
// signup.
type UserResponse struct {
	Username  string `json:"username"`
	Role      string `json:"role"`
	Name      string `json:"name,omitempty"`
	Bio       string `json:"bio,omitempty"`
	Email     string `json:"email,omitempty"`
	Telegram  string `json:"telegram,omitempty"`
	Instagram string `json:"instagram,omitempty"`
	Twitter   string `json:"twitter,omitempty"`
	CreatedAt string `json:"created_at"`

	// QRImage is the base64 PNG enrollment code and ProvisioningURI the
	// otpauth:// URI it encodes, for authenticators that cannot scan. Both
	// are shown once at signup.
	QRImage         string `json:"qr_img,omitempty"`
	ProvisioningURI string `json:"provisioning_uri,omitempty"`
}

// ProfileRequest replaces the caller's profile fields.
type ProfileRequest struct {
	Name      string `json:"name"`
	Bio       string `json:"bio"`
	Email     string `json:"email"`
	Telegram  string `json:"telegram"`
	Instagram string `json:"instagram"`
	Twitter   string `json:"twitter"`
}

// ============================================================================
// Draft Types
// ============================================================================

type DraftRequest struct {
	Title string `json:"title" example:"Hello world"`
	Body  string `json:"body"`
}

type DraftResponse struct {
	ID        string `json:"id"`
	Username  string `json:"username"`
	Title     string `json:"title"`
	Body      string `json:"body"`
	Link      string `json:"link"`
	CreatedAt string `json:"created_at"`
	UpdatedAt string `json:"updated_at"`
}

// DraftSummary is the list view of a draft. Href is the path to fetch it.
type DraftSummary struct {
	ID        string `json:"id"`
	Title     string `json:"title"`
	Href      string `json:"href"`
	UpdatedAt string `json:"updated_at"`
}

type ListDraftsResponse struct {
	Drafts []DraftSummary `json:"drafts"`
}

// ============================================================================
// Bootstrap Types
// ============================================================================

// BootstrapRequest creates the first ADMIN. An empty password is replaced
// by a generated one.
type BootstrapRequest struct {
	AdminUsername string `json:"admin_username" example:"admin"`
	AdminPassword string `json:"admin_password,omitempty"`
	AdminName     string `json:"admin_name,omitempty" example:"Administrator"`
}

// BootstrapResponse carries the admin credentials. They are shown only once.
type BootstrapResponse struct {
	AdminUsername   string `json:"admin_username"`
	AdminPassword   string `json:"admin_password"`
	ProvisioningURI string `json:"provisioning_uri"`
	QRImage         string `json:"qr_img"`
}

// ============================================================================
// Health Types
// ============================================================================

type HealthResponse struct {
	// Status is "ok" or "degraded"
	Status string `json:"status"`

	Uptime  string `json:"uptime,omitempty"`
	Version string `json:"version,omitempty"`

	Checks *HealthChecks `json:"checks,omitempty"`
}

type HealthChecks struct {
	Database string `json:"database"`
	Cache    string `json:"cache"`
}
