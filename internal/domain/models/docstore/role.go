package docstore

import (
	"time"
)

// Role is a tenant-scoped named grant set. AllowedFolders and AllowedFiles
// are explicit id allow-lists, independent of ownership. A folder grant
// covers the folder itself and files directly inside it; it does NOT extend
// to nested subfolders or their files.
type Role struct {
	ID             string    `json:"id" db:"id"`
	TenantID       string    `json:"tenant_id" db:"tenant_id"`
	Name           string    `json:"name" db:"name"`
	Description    string    `json:"description" db:"description"`
	AllowedFolders []string  `json:"allowed_folders" db:"allowed_folders"`
	AllowedFiles   []string  `json:"allowed_files" db:"allowed_files"`
	CreatedAt      time.Time `json:"created_at" db:"created_at"`
	UpdatedAt      time.Time `json:"updated_at" db:"updated_at"`
}

// IsBuiltIn reports whether the role is one of the two roles every tenant
// always has. Built-in roles cannot be deleted.
func (r *Role) IsBuiltIn() bool {
	return r.Name == RoleAdmin || r.Name == RoleUser
}

// AllowsFolder reports whether folderID is in the role's folder allow-list.
func (r *Role) AllowsFolder(folderID string) bool {
	for _, id := range r.AllowedFolders {
		if id == folderID {
			return true
		}
	}
	return false
}

// AllowsFile reports whether fileID is in the role's file allow-list.
func (r *Role) AllowsFile(fileID string) bool {
	for _, id := range r.AllowedFiles {
		if id == fileID {
			return true
		}
	}
	return false
}
