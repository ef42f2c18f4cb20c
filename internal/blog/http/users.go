package http

import (
	"net/http"

	"github.com/aussiebroadwan/blog/internal/blog/service"
	"github.com/aussiebroadwan/blog/pkg/apperr"
	"github.com/aussiebroadwan/blog/pkg/blogsdk"
	"github.com/aussiebroadwan/blog/pkg/httpx"
)

type UserHandler struct {
	UserService *service.UserService
}

// HandleMe returns the caller's account.
//
//	@Summary		Current user
//	@Tags			Users
//	@Produce		json
//	@Security		BearerAuth
//	@Success		200	{object}	blogsdk.UserResponse
//	@Failure		401	{object}	blogsdk.ErrorResponse
//	@Failure		403	{object}	blogsdk.ErrorResponse	"Missing Access-Token cookie or bearer"
//	@Router			/api/v1/users/me [get].
func (h *UserHandler) HandleMe(w http.ResponseWriter, r *http.Request) {
	u, err := h.UserService.Me(r.Context(), identity(r))
	if err != nil {
		writeError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, userResponse(u))
}

// HandleUpdateMe replaces the caller's profile.
//
//	@Summary		Update profile
//	@Tags			Users
//	@Accept			json
//	@Produce		json
//	@Security		BearerAuth
//	@Param			request	body		blogsdk.ProfileRequest	true	"Profile fields"
//	@Success		200		{object}	blogsdk.UserResponse
//	@Failure		400		{object}	blogsdk.ErrorResponse
//	@Failure		401		{object}	blogsdk.ErrorResponse
//	@Router			/api/v1/users/me [put].
func (h *UserHandler) HandleUpdateMe(w http.ResponseWriter, r *http.Request) {
	var req blogsdk.ProfileRequest
	if err := httpx.DecodeJSON(w, r, &req); err != nil {
		writeError(w, r, apperr.BadRequest(err.Error()))
		return
	}

	u, err := h.UserService.UpdateProfile(r.Context(), identity(r), service.ProfileInput{
		Name:      req.Name,
		Bio:       req.Bio,
		Email:     req.Email,
		Telegram:  req.Telegram,
		Instagram: req.Instagram,
		Twitter:   req.Twitter,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, userResponse(u))
}

// HandleGet returns an account by username. Users may only read their own;
// admins may read any.
//
//	@Summary		Get user
//	@Tags			Users
//	@Produce		json
//	@Security		BearerAuth
//	@Param			username	path		string	true	"Username"
//	@Success		200			{object}	blogsdk.UserResponse
//	@Failure		401			{object}	blogsdk.ErrorResponse	"Not allowed to read this user"
//	@Failure		404			{object}	blogsdk.ErrorResponse
//	@Router			/api/v1/users/{username} [get].
func (h *UserHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	u, err := h.UserService.GetByUsername(r.Context(), identity(r), r.PathValue("username"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, userResponse(u))
}
