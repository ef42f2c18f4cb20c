package http

import (
	"net/http"

	"github.com/aussiebroadwan/blog/internal/blog/domain"
	"github.com/aussiebroadwan/blog/internal/blog/service"
	"github.com/aussiebroadwan/blog/pkg/blogsdk"
	"github.com/aussiebroadwan/blog/pkg/httpx"
)

type DraftHandler struct {
	DraftService *service.DraftService

	// Prefix is the API prefix used to build list hrefs.
	Prefix string
}

func draftResponse(d domain.Draft) blogsdk.DraftResponse {
	return blogsdk.DraftResponse{
		ID:        d.ID,
		Username:  d.Username,
		Title:     d.Title,
		Body:      d.Body,
		Link:      d.Link,
		CreatedAt: timestamp(d.CreatedAt),
		UpdatedAt: timestamp(d.UpdatedAt),
	}
}

// HandleCreate stores a new draft owned by the caller.
//
//	@Summary		Create draft
//	@Tags			Drafts
//	@Accept			json
//	@Produce		json
//	@Security		BearerAuth
//	@Param			request	body		blogsdk.DraftRequest	true	"Draft content"
//	@Success		201		{object}	blogsdk.DraftResponse
//	@Failure		400		{object}	blogsdk.ValidationErrorResponse
//	@Failure		401		{object}	blogsdk.ErrorResponse
//	@Router			/api/v1/drafts [post].
func (h *DraftHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	var req blogsdk.DraftRequest
	if !decodeBody(w, r, &req) {
		return
	}

	d, err := h.DraftService.Create(r.Context(), identity(r), service.DraftInput{Title: req.Title, Body: req.Body})
	if err != nil {
		writeError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusCreated, draftResponse(d))
}

// HandleList returns the caller's drafts, newest first.
//
//	@Summary		List drafts
//	@Tags			Drafts
//	@Produce		json
//	@Security		BearerAuth
//	@Success		200	{object}	blogsdk.ListDraftsResponse
//	@Failure		401	{object}	blogsdk.ErrorResponse
//	@Router			/api/v1/drafts [get].
func (h *DraftHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	drafts, err := h.DraftService.List(r.Context(), identity(r))
	if err != nil {
		writeError(w, r, err)
		return
	}

	out := blogsdk.ListDraftsResponse{Drafts: make([]blogsdk.DraftSummary, 0, len(drafts))}
	for _, d := range drafts {
		out.Drafts = append(out.Drafts, blogsdk.DraftSummary{
			ID:        d.ID,
			Title:     d.Title,
			Href:      h.Prefix + "/drafts/" + d.ID,
			UpdatedAt: timestamp(d.UpdatedAt),
		})
	}
	httpx.WriteJSON(w, http.StatusOK, out)
}

// HandleGet returns one draft.
//
//	@Summary		Get draft
//	@Tags			Drafts
//	@Produce		json
//	@Security		BearerAuth
//	@Param			id	path		string	true	"Draft ID"
//	@Success		200	{object}	blogsdk.DraftResponse
//	@Failure		401	{object}	blogsdk.ErrorResponse	"Not the owner"
//	@Failure		404	{object}	blogsdk.ErrorResponse
//	@Router			/api/v1/drafts/{id} [get].
func (h *DraftHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	d, err := h.DraftService.Get(r.Context(), identity(r), r.PathValue("id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, draftResponse(d))
}

// HandleUpdate replaces a draft's title and body.
//
//	@Summary		Update draft
//	@Tags			Drafts
//	@Accept			json
//	@Produce		json
//	@Security		BearerAuth
//	@Param			id		path		string					true	"Draft ID"
//	@Param			request	body		blogsdk.DraftRequest	true	"Draft content"
//	@Success		200		{object}	blogsdk.DraftResponse
//	@Failure		400		{object}	blogsdk.ValidationErrorResponse
//	@Failure		401		{object}	blogsdk.ErrorResponse	"Not the owner"
//	@Failure		404		{object}	blogsdk.ErrorResponse
//	@Router			/api/v1/drafts/{id} [put].
func (h *DraftHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	var req blogsdk.DraftRequest
	if !decodeBody(w, r, &req) {
		return
	}

	d, err := h.DraftService.Update(r.Context(), identity(r), r.PathValue("id"), service.DraftInput{Title: req.Title, Body: req.Body})
	if err != nil {
		writeError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, draftResponse(d))
}

// HandleDelete removes a draft.
//
//	@Summary		Delete draft
//	@Tags			Drafts
//	@Security		BearerAuth
//	@Param			id	path	string	true	"Draft ID"
//	@Success		204
//	@Failure		401	{object}	blogsdk.ErrorResponse	"Not the owner"
//	@Failure		404	{object}	blogsdk.ErrorResponse
//	@Router			/api/v1/drafts/{id} [delete].
func (h *DraftHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	if err := h.DraftService.Delete(r.Context(), identity(r), r.PathValue("id")); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
