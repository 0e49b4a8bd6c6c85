package docstore

import (
	"context"

	"docvault/internal/domain/models/docstore"
)

// FolderService handles folder business logic
type FolderService interface {
	// CreateFolder creates a new folder owned by the requesting user
	CreateFolder(ctx context.Context, req *CreateFolderRequest) (*docstore.Folder, error)

	// GetFolder retrieves a folder with its computed path
	// userID is used for authorization check
	GetFolder(ctx context.Context, userID, folderID string) (*docstore.Folder, error)

	// ListFolders lists the tenant's folders with computed paths.
	// Folder names are not access-protected: every authenticated member of
	// the tenant sees the full list. File-level visibility is enforced
	// separately.
	ListFolders(ctx context.Context, userID string, parentID *string) ([]docstore.Folder, error)

	// RenameFolder renames a folder (owner or admin)
	RenameFolder(ctx context.Context, userID, folderID string, req *RenameFolderRequest) (*docstore.Folder, error)

	// DeleteFolder deletes a folder and its entire subtree (owner or admin).
	// Partial failures are reported, not rolled back.
	DeleteFolder(ctx context.Context, userID, folderID string) (*DeleteFolderResult, error)

	// CountFiles counts files in the folder's subtree. Non-admins only
	// count files they can see.
	CountFiles(ctx context.Context, userID, folderID string) (*FolderFileCount, error)
}

// CreateFolderRequest represents a folder creation request
type CreateFolderRequest struct {
	UserID   string  `json:"-"` // Set by handler from auth context, not from request body
	Name     string  `json:"name"`
	ParentID *string `json:"parent_id,omitempty"` // null for root
}

// RenameFolderRequest represents a folder rename request
type RenameFolderRequest struct {
	Name string `json:"name"`
}

// DeleteFolderResult summarizes a recursive folder deletion
type DeleteFolderResult struct {
	DeletedFolders int `json:"deleted_folders"`
	DeletedFiles   int `json:"deleted_files"`
}

// FolderFileCount is the recursive file count for a folder subtree
type FolderFileCount struct {
	FolderID  string `json:"folder_id"`
	FileCount int    `json:"file_count"`
}
