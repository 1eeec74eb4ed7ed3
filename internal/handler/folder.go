package handler

import (
	"net/http"

	"github.com/templui/drive/internal/model"
	"github.com/templui/drive/internal/service"
)

type FolderHandler struct {
	hierarchy *service.HierarchyService
}

func NewFolderHandler(hierarchy *service.HierarchyService) *FolderHandler {
	return &FolderHandler{hierarchy: hierarchy}
}

type createFolderRequest struct {
	Name     string  `json:"name"`
	ParentID *string `json:"parent_id"`
}

// updateRequest renames and/or moves a folder or file as one change
type updateRequest struct {
	Name     *string    `json:"name"`
	ParentID optionalID `json:"parent_id"`
	FolderID optionalID `json:"folder_id"`
}

func (h *FolderHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createFolderRequest
	if err := decode(r, &req); err != nil {
		Error(w, r, err)
		return
	}

	folder, err := h.hierarchy.CreateFolder(r.Context(), principal(r), req.Name, req.ParentID)
	if err != nil {
		Error(w, r, err)
		return
	}

	JSON(w, http.StatusCreated, folder)
}

// List returns the root, or the folder named by ?parent_id=
func (h *FolderHandler) List(w http.ResponseWriter, r *http.Request) {
	var folderID *string
	if id := r.URL.Query().Get("parent_id"); id != "" {
		folderID = &id
	}

	h.contents(w, r, folderID)
}

func (h *FolderHandler) Show(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	h.contents(w, r, &id)
}

func (h *FolderHandler) contents(w http.ResponseWriter, r *http.Request, folderID *string) {
	contents, err := h.hierarchy.Contents(r.Context(), principal(r), folderID)
	if err != nil {
		Error(w, r, err)
		return
	}

	JSON(w, http.StatusOK, contents)
}

func (h *FolderHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req updateRequest
	if err := decode(r, &req); err != nil {
		Error(w, r, err)
		return
	}
	if req.FolderID.Set {
		Error(w, r, invalidField("folder_id", "parent_id"))
		return
	}

	ctx := r.Context()
	ownerID := principal(r)
	id := r.PathValue("id")

	if req.Name == nil && !req.ParentID.Set {
		Error(w, r, errNothingToUpdate)
		return
	}

	folder, err := h.hierarchy.UpdateFolder(ctx, ownerID, id, service.Change{
		Name:     req.Name,
		Move:     req.ParentID.Set,
		ParentID: req.ParentID.Value,
	})
	if err != nil {
		Error(w, r, err)
		return
	}

	JSON(w, http.StatusOK, folder)
}

func (h *FolderHandler) Delete(w http.ResponseWriter, r *http.Request) {
	err := h.hierarchy.Delete(r.Context(), principal(r), model.ResourceFolder, r.PathValue("id"))
	if err != nil {
		Error(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
