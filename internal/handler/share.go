package handler

import (
	"net/http"

	"github.com/templui/drive/internal/model"
	"github.com/templui/drive/internal/service"
)

type ShareHandler struct {
	shareService *service.ShareService
	linkService  *service.LinkService
}

func NewShareHandler(shareService *service.ShareService, linkService *service.LinkService) *ShareHandler {
	return &ShareHandler{
		shareService: shareService,
		linkService:  linkService,
	}
}

// Create answers 201 for a new grant and 200 when an existing grant's role
// was changed
func (h *ShareHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req service.ShareRequest
	if err := decode(r, &req); err != nil {
		Error(w, r, err)
		return
	}

	result, err := h.shareService.ShareWithUser(r.Context(), principal(r), req)
	if err != nil {
		Error(w, r, err)
		return
	}

	status := http.StatusOK
	if result.Created {
		status = http.StatusCreated
	}
	JSON(w, status, result)
}

func (h *ShareHandler) List(w http.ResponseWriter, r *http.Request) {
	resourceType := model.ResourceType(r.PathValue("type"))

	list, err := h.shareService.ListShares(r.Context(), principal(r), resourceType, r.PathValue("id"))
	if err != nil {
		Error(w, r, err)
		return
	}

	JSON(w, http.StatusOK, list)
}

func (h *ShareHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.shareService.Revoke(r.Context(), principal(r), r.PathValue("id")); err != nil {
		Error(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *ShareHandler) SharedWithMe(w http.ResponseWriter, r *http.Request) {
	shared, err := h.shareService.SharedWithMe(r.Context(), principal(r))
	if err != nil {
		Error(w, r, err)
		return
	}

	JSON(w, http.StatusOK, shared)
}

func (h *ShareHandler) CreateLink(w http.ResponseWriter, r *http.Request) {
	var req service.LinkRequest
	if err := decode(r, &req); err != nil {
		Error(w, r, err)
		return
	}

	result, err := h.linkService.Create(r.Context(), principal(r), req)
	if err != nil {
		Error(w, r, err)
		return
	}

	JSON(w, http.StatusCreated, result)
}

func (h *ShareHandler) DeleteLink(w http.ResponseWriter, r *http.Request) {
	if err := h.linkService.Revoke(r.Context(), principal(r), r.PathValue("id")); err != nil {
		Error(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// ResolveLink is the unauthenticated view of a link share. The password may
// come from ?password= or the X-Link-Password header.
func (h *ShareHandler) ResolveLink(w http.ResponseWriter, r *http.Request) {
	password := r.Header.Get("X-Link-Password")
	if password == "" {
		password = r.URL.Query().Get("password")
	}

	resolved, err := h.linkService.Resolve(r.Context(), r.PathValue("token"), password)
	if err != nil {
		Error(w, r, err)
		return
	}

	w.Header().Set("Cache-Control", "no-store")
	JSON(w, http.StatusOK, resolved)
}
