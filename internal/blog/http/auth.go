package http

import (
	"net/http"

	"github.com/aussiebroadwan/blog/internal/blog/service"
	"github.com/aussiebroadwan/blog/pkg/blogsdk"
	"github.com/aussiebroadwan/blog/pkg/httpx"
)

type AuthHandler struct {
	AuthService *service.AuthService
	Cookies     httpx.CookieOptions
}

func credentials(r *http.Request) service.Credentials {
	return service.Credentials{
		RefreshToken: httpx.CookieValue(r, blogsdk.CookieRefreshToken),
		CSRFToken:    httpx.BearerToken(r),
	}
}

// HandleSignup registers a USER account.
//
//	@Summary		Sign up
//	@Description	Creates a USER account and returns its TOTP enrollment QR code as a base64 PNG. The code is shown only once.
//	@Tags			Auth
//	@Accept			json
//	@Produce		json
//	@Param			request	body		blogsdk.SignupRequest			true	"Account details"
//	@Success		201		{object}	blogsdk.UserResponse			"Created account with qr_img"
//	@Failure		400		{object}	blogsdk.ErrorResponse			"Invalid input or duplicate username"
//	@Failure		429		{object}	blogsdk.ErrorResponse			"Rate limited"
//	@Router			/api/v1/auth/signup [post].
func (h *AuthHandler) HandleSignup(w http.ResponseWriter, r *http.Request) {
	var req blogsdk.SignupRequest
	if !decodeBody(w, r, &req) {
		return
	}

	res, err := h.AuthService.Signup(r.Context(), service.SignupInput{
		Username: req.Username,
		Password: req.Password,
		ProfileInput: service.ProfileInput{
			Name:      req.Name,
			Bio:       req.Bio,
			Email:     req.Email,
			Telegram:  req.Telegram,
			Instagram: req.Instagram,
			Twitter:   req.Twitter,
		},
	})
	if err != nil {
		writeError(w, r, err)
		return
	}

	out := userResponse(res.User)
	out.QRImage = res.QRImage
	out.ProvisioningURI = res.ProvisioningURI
	httpx.WriteJSON(w, http.StatusCreated, out)
}

// HandleLogin checks the password and opens an unverified session.
//
//	@Summary		Log in
//	@Description	Sets the Refresh-Token cookie and returns the CSRF token in the X-CSRF-TOKEN header. The session must be verified with a TOTP code before it can be refreshed.
//	@Tags			Auth
//	@Accept			json
//	@Produce		json
//	@Param			request	body		blogsdk.LoginRequest	true	"Credentials"
//	@Success		200		{object}	blogsdk.LoginResponse
//	@Header			200		{string}	X-CSRF-TOKEN			"CSRF token to send as bearer"
//	@Failure		401		{object}	blogsdk.ErrorResponse	"Wrong password"
//	@Failure		404		{object}	blogsdk.ErrorResponse	"Unknown user"
//	@Router			/api/v1/auth/login [post].
func (h *AuthHandler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	var req blogsdk.LoginRequest
	if !decodeBody(w, r, &req) {
		return
	}

	res, err := h.AuthService.Login(r.Context(), req.Username, req.Password)
	if err != nil {
		writeError(w, r, err)
		return
	}

	httpx.SetSessionCookie(w, h.Cookies, blogsdk.CookieRefreshToken, res.RefreshToken, h.AuthService.RefreshLifetime())
	w.Header().Set(blogsdk.HeaderCSRFToken, res.CSRFToken)
	httpx.WriteJSON(w, http.StatusOK, blogsdk.LoginResponse{
		Username: res.Username,
		Detail:   "Logged in, verify the one time code to continue",
	})
}

// HandleVerify checks a TOTP code for the current session.
//
//	@Summary		Verify second factor
//	@Tags			Auth
//	@Accept			json
//	@Produce		json
//	@Security		BearerAuth
//	@Param			request	body		blogsdk.VerifyRequest	true	"Current TOTP code"
//	@Success		200		{object}	blogsdk.DetailResponse
//	@Failure		401		{object}	blogsdk.ErrorResponse	"Invalid refresh token or TOTP code"
//	@Failure		403		{object}	blogsdk.ErrorResponse	"Missing Refresh-Token cookie or bearer"
//	@Router			/api/v1/auth/verify [post].
func (h *AuthHandler) HandleVerify(w http.ResponseWriter, r *http.Request) {
	var req blogsdk.VerifyRequest
	if !decodeBody(w, r, &req) {
		return
	}

	if err := h.AuthService.Verify(r.Context(), credentials(r), req.Code); err != nil {
		writeError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, blogsdk.DetailResponse{Detail: "verified"})
}

// HandleQRCode renders the enrollment QR code again.
//
//	@Summary		Enrollment QR code
//	@Tags			Auth
//	@Produce		png
//	@Security		BearerAuth
//	@Success		200	{file}		binary
//	@Failure		401	{object}	blogsdk.ErrorResponse
//	@Failure		403	{object}	blogsdk.ErrorResponse
//	@Router			/api/v1/auth/2fa-img [get].
func (h *AuthHandler) HandleQRCode(w http.ResponseWriter, r *http.Request) {
	png, err := h.AuthService.QRCode(r.Context(), credentials(r))
	if err != nil {
		writeError(w, r, err)
		return
	}

	httpx.NoCache(w)
	w.Header().Set("Content-Type", "image/png")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(png)
}

// HandleRefresh rotates the session and issues an access token.
//
//	@Summary		Refresh tokens
//	@Description	Requires a verified session. Replaces the Refresh-Token cookie, sets the Access-Token cookie and returns a new CSRF token in X-CSRF-TOKEN. The previous refresh token stops working.
//	@Tags			Auth
//	@Produce		json
//	@Security		BearerAuth
//	@Success		200	{object}	blogsdk.RefreshResponse
//	@Header			200	{string}	X-CSRF-TOKEN			"CSRF token to send as bearer"
//	@Failure		401	{object}	blogsdk.ErrorResponse	"Invalid refresh token or not verified"
//	@Failure		403	{object}	blogsdk.ErrorResponse	"Missing Refresh-Token cookie or bearer"
//	@Router			/api/v1/auth/refresh [post].
func (h *AuthHandler) HandleRefresh(w http.ResponseWriter, r *http.Request) {
	res, err := h.AuthService.Refresh(r.Context(), credentials(r))
	if err != nil {
		writeError(w, r, err)
		return
	}

	httpx.SetSessionCookie(w, h.Cookies, blogsdk.CookieRefreshToken, res.RefreshToken, h.AuthService.RefreshLifetime())
	httpx.SetSessionCookie(w, h.Cookies, blogsdk.CookieAccessToken, res.AccessToken, h.AuthService.AccessLifetime())
	w.Header().Set(blogsdk.HeaderCSRFToken, res.CSRFToken)
	httpx.WriteJSON(w, http.StatusOK, blogsdk.RefreshResponse{
		Username:              res.Identity.Username,
		Role:                  res.Identity.Role.String(),
		VerificationExpiresIn: int64(res.VerificationTTL.Seconds()),
	})
}

// HandleLogout ends the session.
//
//	@Summary		Log out
//	@Tags			Auth
//	@Security		BearerAuth
//	@Success		204
//	@Failure		401	{object}	blogsdk.ErrorResponse
//	@Failure		403	{object}	blogsdk.ErrorResponse
//	@Router			/api/v1/auth/logout [post].
func (h *AuthHandler) HandleLogout(w http.ResponseWriter, r *http.Request) {
	if err := h.AuthService.Logout(r.Context(), credentials(r)); err != nil {
		writeError(w, r, err)
		return
	}

	httpx.ClearCookie(w, h.Cookies, blogsdk.CookieRefreshToken)
	httpx.ClearCookie(w, h.Cookies, blogsdk.CookieAccessToken)
	httpx.NoCache(w)
	w.WriteHeader(http.StatusNoContent)
}
