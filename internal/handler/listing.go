package handler

import (
	"net/http"

	"github.com/templui/drive/internal/model"
	"github.com/templui/drive/internal/service"
)

type ListingHandler struct {
	listing *service.ListingService
	stars   *service.StarService
}

func NewListingHandler(listing *service.ListingService, stars *service.StarService) *ListingHandler {
	return &ListingHandler{
		listing: listing,
		stars:   stars,
	}
}

type starRequest struct {
	ResourceType model.ResourceType `json:"resource_type"`
	ResourceID   string             `json:"resource_id"`
}

type starResponse struct {
	Starred bool `json:"starred"`
}

func (h *ListingHandler) Recent(w http.ResponseWriter, r *http.Request) {
	files, err := h.listing.Recent(r.Context(), principal(r))
	if err != nil {
		Error(w, r, err)
		return
	}
	JSON(w, http.StatusOK, files)
}

func (h *ListingHandler) Trash(w http.ResponseWriter, r *http.Request) {
	trash, err := h.listing.Trash(r.Context(), principal(r))
	if err != nil {
		Error(w, r, err)
		return
	}
	JSON(w, http.StatusOK, trash)
}

func (h *ListingHandler) Search(w http.ResponseWriter, r *http.Request) {
	found, err := h.listing.Search(r.Context(), principal(r), r.URL.Query().Get("q"))
	if err != nil {
		Error(w, r, err)
		return
	}
	JSON(w, http.StatusOK, found)
}

func (h *ListingHandler) Starred(w http.ResponseWriter, r *http.Request) {
	starred, err := h.stars.Starred(r.Context(), principal(r))
	if err != nil {
		Error(w, r, err)
		return
	}
	JSON(w, http.StatusOK, starred)
}

// ToggleStar flips the star and reports the new state
func (h *ListingHandler) ToggleStar(w http.ResponseWriter, r *http.Request) {
	var req starRequest
	if err := decode(r, &req); err != nil {
		Error(w, r, err)
		return
	}

	starred, err := h.stars.Toggle(r.Context(), principal(r), req.ResourceType, req.ResourceID)
	if err != nil {
		Error(w, r, err)
		return
	}
	JSON(w, http.StatusOK, starResponse{Starred: starred})
}
