package http

import (
	"net/http"

	"github.com/aussiebroadwan/blog/internal/blog/domain"
	"github.com/aussiebroadwan/blog/internal/blog/service"
	"github.com/aussiebroadwan/blog/pkg/apperr"
	"github.com/aussiebroadwan/blog/pkg/blogsdk"
	"github.com/aussiebroadwan/blog/pkg/httpx"
	"github.com/aussiebroadwan/blog/pkg/slogx"
)

type BootstrapHandler struct {
	BootstrapService *service.BootstrapService
}

// ServeHTTP creates the first administrator.
//
//	@Summary		Bootstrap the blog
//	@Description	Creates the first ADMIN account. Only available when a bootstrap token is configured and only until the first user exists. The generated password and TOTP QR code are shown once.
//	@Tags			Bootstrap
//	@Accept			json
//	@Produce		json
//	@Param			X-Bootstrap-Token	header		string							true	"Bootstrap token"
//	@Param			request				body		blogsdk.BootstrapRequest		true	"Admin account"
//	@Success		201					{object}	blogsdk.BootstrapResponse
//	@Failure		400					{object}	blogsdk.ValidationErrorResponse
//	@Failure		401					{object}	blogsdk.ErrorResponse	"Missing or invalid token, or already bootstrapped"
//	@Failure		404					{object}	blogsdk.ErrorResponse	"Bootstrap not enabled"
//	@Router			/api/v1/bootstrap [post].
func (h *BootstrapHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	slogx.FromContext(r.Context()).Info("starting bootstrap")

	if !h.BootstrapService.Enabled() {
		writeError(w, r, service.ErrBootstrapDisabled)
		return
	}

	token := r.Header.Get(blogsdk.HeaderBootstrapToken)
	if token == "" {
		writeError(w, r, apperr.UnauthorisedAccess("Bootstrap token is required in X-Bootstrap-Token header"))
		return
	}

	var req blogsdk.BootstrapRequest
	if !decodeBody(w, r, &req) {
		return
	}

	res, err := h.BootstrapService.Bootstrap(r.Context(), token, domain.BootstrapData{
		AdminUsername: req.AdminUsername,
		AdminPassword: req.AdminPassword,
		AdminName:     req.AdminName,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}

	httpx.WriteJSON(w, http.StatusCreated, blogsdk.BootstrapResponse{
		AdminUsername:   res.Username,
		AdminPassword:   res.Password,
		ProvisioningURI: res.ProvisioningURI,
		QRImage:         res.QRImage,
	})
}
