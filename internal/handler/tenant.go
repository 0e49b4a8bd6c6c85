package handler

import (
	"log/slog"
	"net/http"

	dirSvc "docvault/internal/domain/services/directory"
	"docvault/internal/httputil"
)

// TenantHandler handles tenant HTTP requests
type TenantHandler struct {
	tenantService dirSvc.TenantService
	logger        *slog.Logger
}

// NewTenantHandler creates a new tenant handler
func NewTenantHandler(tenantService dirSvc.TenantService, logger *slog.Logger) *TenantHandler {
	return &TenantHandler{
		tenantService: tenantService,
		logger:        logger,
	}
}

// Me handles GET /api/tenants/me
func (h *TenantHandler) Me(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	tenant, err := h.tenantService.GetMyTenant(r.Context(), userID)
	if err != nil {
		handleError(w, err)
		return
	}
	httputil.RespondJSON(w, http.StatusOK, tenant)
}
