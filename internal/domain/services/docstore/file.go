package docstore

import (
	"context"
	"io"

	"docvault/internal/domain/models/docstore"
)

// FileService handles file business logic
type FileService interface {
	// UploadFile validates and stores an uploaded file, owned by the
	// requesting user
	UploadFile(ctx context.Context, req *UploadFileRequest) (*docstore.File, error)

	// GetFile retrieves a file's metadata
	// userID is used for authorization check
	GetFile(ctx context.Context, userID, fileID string) (*docstore.File, error)

	// ListFiles lists files visible to the user, optionally scoped to one
	// folder (nil folderID = root-level files)
	ListFiles(ctx context.Context, userID string, folderID *string) ([]docstore.File, error)

	// DownloadFile returns the file content as an attachment, resolving
	// external storage credentials transparently
	DownloadFile(ctx context.Context, userID, fileID string) (*FileDownload, error)

	// PreviewFile returns the file content for inline display
	PreviewFile(ctx context.Context, userID, fileID string) (*FileDownload, error)

	// UpdateFile renames and/or moves a file (owner or admin)
	UpdateFile(ctx context.Context, userID, fileID string, req *UpdateFileRequest) (*docstore.File, error)

	// DeleteFile deletes a file record and its stored content (owner or admin)
	DeleteFile(ctx context.Context, userID, fileID string) error
}

// UploadFileRequest represents a file upload. Content comes from the
// multipart body, everything else from form fields and auth context.
type UploadFileRequest struct {
	UserID   string  `json:"-"` // Set by handler from auth context
	FolderID *string `json:"folder_id,omitempty"`
	Upload   *UploadedFile
}

// OptionalFolderID tracks tri-state semantics for file moves (RFC 7396 PATCH).
// Transport-agnostic (no JSON tags) - handler maps from httputil.OptionalString.
//   - Present=false: field absent from request (don't move)
//   - Present=true, Value=nil: field is null (move to root)
//   - Present=true, Value=&id: move into that folder
type OptionalFolderID struct {
	Present bool
	Value   *string
}

// UpdateFileRequest represents a file rename and/or move. Only provided
// fields are applied.
type UpdateFileRequest struct {
	Name   *string
	Folder OptionalFolderID
}

// FileDownload carries resolved file content back to the HTTP layer.
// Content must be closed by the caller. Inline selects the
// Content-Disposition (preview vs attachment). When RedirectURL is set,
// Content is nil and the handler redirects instead of streaming (object
// storage previews hand out short-lived signed URLs).
type FileDownload struct {
	Filename    string
	ContentType string
	Size        int64
	Content     io.ReadCloser
	Inline      bool
	RedirectURL string
}
