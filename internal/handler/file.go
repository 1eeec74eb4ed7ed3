package handler

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/templui/drive/internal/model"
	"github.com/templui/drive/internal/service"
)

// multipartOverhead leaves room for the form fields around the file part
const multipartOverhead = 1 << 20

type FileHandler struct {
	fileService *service.FileService
	hierarchy   *service.HierarchyService
	maxUpload   int64
}

func NewFileHandler(fileService *service.FileService, hierarchy *service.HierarchyService, maxUpload int64) *FileHandler {
	return &FileHandler{
		fileService: fileService,
		hierarchy:   hierarchy,
		maxUpload:   maxUpload,
	}
}

type completeUploadRequest struct {
	FileID   string  `json:"file_id"`
	Checksum *string `json:"checksum"`
}

// InitUpload records the file and answers with a signed upload URL
func (h *FileHandler) InitUpload(w http.ResponseWriter, r *http.Request) {
	var req service.UploadRequest
	if err := decode(r, &req); err != nil {
		Error(w, r, err)
		return
	}

	ticket, err := h.fileService.InitUpload(r.Context(), principal(r), req)
	if err != nil {
		Error(w, r, err)
		return
	}

	JSON(w, http.StatusCreated, ticket)
}

// Upload accepts the bytes directly as a multipart form with a "file" part
// and optional "name" and "folder_id" fields
func (h *FileHandler) Upload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUpload+multipartOverhead)

	err := r.ParseMultipartForm(32 << 20)
	if err != nil {
		Error(w, r, fmt.Errorf("%w: failed to parse form: %v", service.ErrValidation, err))
		return
	}
	defer func() {
		if err := r.MultipartForm.RemoveAll(); err != nil {
			slog.Warn("failed to remove multipart temp files", "error", err)
		}
	}()

	file, header, err := r.FormFile("file")
	if err != nil {
		Error(w, r, fmt.Errorf("%w: no file uploaded", service.ErrValidation))
		return
	}
	defer func() {
		closeErr := file.Close()
		if closeErr != nil {
			slog.Error("failed to close file", "error", closeErr)
		}
	}()

	req := service.UploadRequest{
		Name:      r.FormValue("name"),
		MimeType:  header.Header.Get("Content-Type"),
		SizeBytes: header.Size,
	}
	if req.Name == "" {
		req.Name = header.Filename
	}
	if req.MimeType == "" {
		req.MimeType = "application/octet-stream"
	}
	if folderID := r.FormValue("folder_id"); folderID != "" {
		req.FolderID = &folderID
	}

	uploaded, err := h.fileService.Upload(r.Context(), principal(r), req, file)
	if err != nil {
		Error(w, r, err)
		return
	}

	JSON(w, http.StatusCreated, uploaded)
}

func (h *FileHandler) CompleteUpload(w http.ResponseWriter, r *http.Request) {
	var req completeUploadRequest
	if err := decode(r, &req); err != nil {
		Error(w, r, err)
		return
	}

	file, err := h.fileService.CompleteUpload(r.Context(), principal(r), req.FileID, req.Checksum)
	if err != nil {
		Error(w, r, err)
		return
	}

	JSON(w, http.StatusOK, file)
}

// Show answers with the file and a short-lived download URL
func (h *FileHandler) Show(w http.ResponseWriter, r *http.Request) {
	download, err := h.fileService.Download(r.Context(), principal(r), r.PathValue("id"))
	if err != nil {
		Error(w, r, err)
		return
	}

	JSON(w, http.StatusOK, download)
}

func (h *FileHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req updateRequest
	if err := decode(r, &req); err != nil {
		Error(w, r, err)
		return
	}
	if req.ParentID.Set {
		Error(w, r, invalidField("parent_id", "folder_id"))
		return
	}
	if req.Name == nil && !req.FolderID.Set {
		Error(w, r, errNothingToUpdate)
		return
	}

	ctx := r.Context()
	ownerID := principal(r)
	id := r.PathValue("id")

	file, err := h.hierarchy.UpdateFile(ctx, ownerID, id, service.Change{
		Name:     req.Name,
		Move:     req.FolderID.Set,
		ParentID: req.FolderID.Value,
	})
	if err != nil {
		Error(w, r, err)
		return
	}

	JSON(w, http.StatusOK, file)
}

func (h *FileHandler) Delete(w http.ResponseWriter, r *http.Request) {
	err := h.hierarchy.Delete(r.Context(), principal(r), model.ResourceFile, r.PathValue("id"))
	if err != nil {
		Error(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
