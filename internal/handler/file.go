package handler

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"

	"docvault/internal/config"
	docsySvc "docvault/internal/domain/services/docstore"
	"docvault/internal/httputil"
)

// FileHandler handles file HTTP requests
type FileHandler struct {
	fileService   docsySvc.FileService
	searchService docsySvc.SearchService
	logger        *slog.Logger
}

// NewFileHandler creates a new file handler
func NewFileHandler(fileService docsySvc.FileService, searchService docsySvc.SearchService, logger *slog.Logger) *FileHandler {
	return &FileHandler{
		fileService:   fileService,
		searchService: searchService,
		logger:        logger,
	}
}

// Upload handles POST /api/files/upload (multipart). The body is capped at
// the upload limit plus headroom for the form framing.
func (h *FileHandler) Upload(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, config.MaxUploadBytes+(1<<20))
	if err := r.ParseMultipartForm(32 << 20); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			httputil.RespondError(w, http.StatusRequestEntityTooLarge,
				fmt.Sprintf("upload exceeds the %d byte limit", config.MaxUploadBytes))
			return
		}
		httputil.RespondError(w, http.StatusBadRequest, "invalid multipart body")
		return
	}
	defer r.MultipartForm.RemoveAll()

	part, header, err := r.FormFile("file")
	if err != nil {
		httputil.RespondError(w, http.StatusBadRequest, `multipart field "file" is required`)
		return
	}
	defer part.Close()

	req := &docsySvc.UploadFileRequest{
		UserID: userID,
		Upload: &docsySvc.UploadedFile{
			Filename:    header.Filename,
			ContentType: header.Header.Get("Content-Type"),
			Size:        header.Size,
			Content:     part,
		},
	}
	if v := r.FormValue("folder_id"); v != "" {
		req.FolderID = &v
	}

	file, err := h.fileService.UploadFile(r.Context(), req)
	if err != nil {
		handleError(w, err)
		return
	}
	httputil.RespondJSON(w, http.StatusCreated, file)
}

// List handles GET /api/files. An optional ?folder_id= scopes to one folder;
// absent means root-level files.
func (h *FileHandler) List(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	var folderID *string
	if v := r.URL.Query().Get("folder_id"); v != "" {
		folderID = &v
	}

	files, err := h.fileService.ListFiles(r.Context(), userID, folderID)
	if err != nil {
		handleError(w, err)
		return
	}
	httputil.RespondJSON(w, http.StatusOK, map[string]interface{}{
		"files": files,
		"total": len(files),
	})
}

// Get handles GET /api/files/{id}
func (h *FileHandler) Get(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	file, err := h.fileService.GetFile(r.Context(), userID, r.PathValue("id"))
	if err != nil {
		handleError(w, err)
		return
	}
	httputil.RespondJSON(w, http.StatusOK, file)
}

// updateFileBody is the wire shape of a file PATCH. folder_id needs
// tri-state handling: absent (leave alone), null (move to root), id (move).
type updateFileBody struct {
	Name     *string                 `json:"name,omitempty"`
	FolderID httputil.OptionalString `json:"folder_id"`
}

// Update handles PATCH /api/files/{id}
func (h *FileHandler) Update(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	var body updateFileBody
	if err := httputil.ParseJSON(w, r, &body); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}

	req := &docsySvc.UpdateFileRequest{
		Name: body.Name,
		Folder: docsySvc.OptionalFolderID{
			Present: body.FolderID.Present,
			Value:   body.FolderID.Value,
		},
	}

	file, err := h.fileService.UpdateFile(r.Context(), userID, r.PathValue("id"), req)
	if err != nil {
		handleError(w, err)
		return
	}
	httputil.RespondJSON(w, http.StatusOK, file)
}

// Delete handles DELETE /api/files/{id}
func (h *FileHandler) Delete(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	if err := h.fileService.DeleteFile(r.Context(), userID, r.PathValue("id")); err != nil {
		handleError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Download handles GET /api/files/{id}/download
func (h *FileHandler) Download(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	download, err := h.fileService.DownloadFile(r.Context(), userID, r.PathValue("id"))
	if err != nil {
		handleError(w, err)
		return
	}
	h.serve(w, r, download)
}

// Preview handles GET /api/files/{id}/preview
func (h *FileHandler) Preview(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	download, err := h.fileService.PreviewFile(r.Context(), userID, r.PathValue("id"))
	if err != nil {
		handleError(w, err)
		return
	}
	h.serve(w, r, download)
}

// serve streams resolved content or redirects to a short-lived reference.
func (h *FileHandler) serve(w http.ResponseWriter, r *http.Request, d *docsySvc.FileDownload) {
	if d.RedirectURL != "" {
		http.Redirect(w, r, d.RedirectURL, http.StatusTemporaryRedirect)
		return
	}
	defer d.Content.Close()

	disposition := "attachment"
	if d.Inline {
		disposition = "inline"
	}
	w.Header().Set("Content-Type", d.ContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("%s; filename=%q", disposition, d.Filename))
	if d.Size > 0 {
		w.Header().Set("Content-Length", strconv.FormatInt(d.Size, 10))
	}

	if _, err := io.Copy(w, d.Content); err != nil {
		// Headers are gone; all we can do is log the broken stream.
		h.logger.Warn("file stream interrupted", "filename", d.Filename, "error", err)
	}
}

// Search handles GET /api/files/search?q=
func (h *FileHandler) Search(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	results, err := h.searchService.Search(r.Context(), userID, r.URL.Query().Get("q"))
	if err != nil {
		handleError(w, err)
		return
	}
	httputil.RespondJSON(w, http.StatusOK, results)
}

// MentionList handles GET /api/files/mention-list
func (h *FileHandler) MentionList(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	items, err := h.searchService.ListMentionables(r.Context(), userID)
	if err != nil {
		handleError(w, err)
		return
	}
	httputil.RespondJSON(w, http.StatusOK, map[string]interface{}{
		"items": items,
		"total": len(items),
	})
}
