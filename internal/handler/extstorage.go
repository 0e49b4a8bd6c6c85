package handler

import (
	"log/slog"
	"net/http"

	extSvc "docvault/internal/domain/services/extstorage"
	"docvault/internal/httputil"
)

// ExternalStorageHandler handles external drive connection requests
type ExternalStorageHandler struct {
	connectService extSvc.ConnectService
	logger         *slog.Logger
}

// NewExternalStorageHandler creates a new external storage handler
func NewExternalStorageHandler(connectService extSvc.ConnectService, logger *slog.Logger) *ExternalStorageHandler {
	return &ExternalStorageHandler{
		connectService: connectService,
		logger:         logger,
	}
}

// Status handles GET /api/external-storage
func (h *ExternalStorageHandler) Status(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	statuses, err := h.connectService.Status(r.Context(), userID)
	if err != nil {
		handleError(w, err)
		return
	}
	httputil.RespondJSON(w, http.StatusOK, map[string]interface{}{"connections": statuses})
}

// AuthURL handles GET /api/external-storage/{provider}/auth-url
func (h *ExternalStorageHandler) AuthURL(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	url, err := h.connectService.AuthURL(r.Context(), userID, r.PathValue("provider"))
	if err != nil {
		handleError(w, err)
		return
	}
	httputil.RespondJSON(w, http.StatusOK, map[string]string{"auth_url": url})
}

// Callback handles GET /api/external-storage/callback. Unauthenticated:
// the user reference travels inside the signed state parameter.
func (h *ExternalStorageHandler) Callback(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	if errParam := query.Get("error"); errParam != "" {
		httputil.RespondError(w, http.StatusBadRequest, "authorization was denied by the provider")
		return
	}

	state := query.Get("state")
	code := query.Get("code")
	if state == "" || code == "" {
		httputil.RespondError(w, http.StatusBadRequest, "state and code are required")
		return
	}

	result, err := h.connectService.HandleCallback(r.Context(), state, code)
	if err != nil {
		handleError(w, err)
		return
	}
	httputil.RespondJSON(w, http.StatusOK, result)
}

// Disconnect handles DELETE /api/external-storage/{provider}
func (h *ExternalStorageHandler) Disconnect(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	if err := h.connectService.Disconnect(r.Context(), userID, r.PathValue("provider")); err != nil {
		handleError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Test handles GET /api/external-storage/{provider}/test
func (h *ExternalStorageHandler) Test(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	result, err := h.connectService.Test(r.Context(), userID, r.PathValue("provider"))
	if err != nil {
		handleError(w, err)
		return
	}
	httputil.RespondJSON(w, http.StatusOK, result)
}
