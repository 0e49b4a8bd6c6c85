package handler

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Set bundles every handler the server mounts.
type Set struct {
	Health          *HealthHandler
	Auth            *AuthHandler
	User            *UserHandler
	Tenant          *TenantHandler
	Role            *RoleHandler
	Folder          *FolderHandler
	File            *FileHandler
	ExternalStorage *ExternalStorageHandler
}

// RegisterRoutes mounts the full route table on the mux. Auth enforcement
// happens in middleware, keyed by path; this function only does dispatch.
func RegisterRoutes(mux *http.ServeMux, h *Set) {
	mux.HandleFunc("GET /health", h.Health.Health)
	mux.Handle("GET /metrics", promhttp.Handler())

	mux.HandleFunc("POST /api/auth/register", h.Auth.Register)
	mux.HandleFunc("POST /api/auth/login", h.Auth.Login)
	mux.HandleFunc("POST /api/auth/password-reset", h.Auth.RequestPasswordReset)
	mux.HandleFunc("POST /api/auth/set-password", h.Auth.SetPassword)
	mux.HandleFunc("POST /api/auth/change-password", h.Auth.ChangePassword)

	mux.HandleFunc("GET /api/users/me", h.User.Me)
	mux.HandleFunc("GET /api/users", h.User.List)
	mux.HandleFunc("POST /api/users/invite", h.User.Invite)
	mux.HandleFunc("PATCH /api/users/{id}/roles", h.User.UpdateRoles)
	mux.HandleFunc("DELETE /api/users/{id}", h.User.Delete)

	mux.HandleFunc("GET /api/tenants/me", h.Tenant.Me)

	mux.HandleFunc("POST /api/roles", h.Role.Create)
	mux.HandleFunc("GET /api/roles", h.Role.List)
	mux.HandleFunc("PUT /api/roles/{id}/permissions", h.Role.UpdatePermissions)
	mux.HandleFunc("DELETE /api/roles/{id}", h.Role.Delete)

	mux.HandleFunc("POST /api/folders", h.Folder.Create)
	mux.HandleFunc("GET /api/folders", h.Folder.List)
	mux.HandleFunc("GET /api/folders/{id}", h.Folder.Get)
	mux.HandleFunc("PATCH /api/folders/{id}", h.Folder.Rename)
	mux.HandleFunc("DELETE /api/folders/{id}", h.Folder.Delete)
	mux.HandleFunc("GET /api/folders/{id}/file-count", h.Folder.FileCount)
	mux.HandleFunc("GET /api/folders/{id}/files", h.Folder.Files)

	mux.HandleFunc("POST /api/files/upload", h.File.Upload)
	mux.HandleFunc("GET /api/files", h.File.List)
	mux.HandleFunc("GET /api/files/search", h.File.Search)
	mux.HandleFunc("GET /api/files/mention-list", h.File.MentionList)
	mux.HandleFunc("GET /api/files/{id}", h.File.Get)
	mux.HandleFunc("PATCH /api/files/{id}", h.File.Update)
	mux.HandleFunc("DELETE /api/files/{id}", h.File.Delete)
	mux.HandleFunc("GET /api/files/{id}/download", h.File.Download)
	mux.HandleFunc("GET /api/files/{id}/preview", h.File.Preview)

	mux.HandleFunc("GET /api/external-storage", h.ExternalStorage.Status)
	mux.HandleFunc("GET /api/external-storage/callback", h.ExternalStorage.Callback)
	mux.HandleFunc("GET /api/external-storage/{provider}/auth-url", h.ExternalStorage.AuthURL)
	mux.HandleFunc("GET /api/external-storage/{provider}/test", h.ExternalStorage.Test)
	mux.HandleFunc("DELETE /api/external-storage/{provider}", h.ExternalStorage.Disconnect)
}
