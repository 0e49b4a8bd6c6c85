package docstore

import (
	"context"

	"docvault/internal/domain/models/docstore"
)

// MinSearchQueryLength is the minimum query length before a search runs.
// Shorter queries return empty results rather than an error.
const MinSearchQueryLength = 2

// SearchService handles name search and mention suggestions over the
// entities visible to a user
type SearchService interface {
	// Search performs a case-insensitive substring search over the names of
	// visible files and folders. Results carry reconstructed display paths.
	Search(ctx context.Context, userID, query string) (*SearchResults, error)

	// ListMentionables lists visible files and folders for @-mention
	// autocompletion
	ListMentionables(ctx context.Context, userID string) ([]MentionItem, error)
}

// SearchResults groups matched files and folders
type SearchResults struct {
	Query   string            `json:"query"`
	Files   []docstore.File   `json:"files"`
	Folders []docstore.Folder `json:"folders"`
}

// MentionItem is one suggestion for the mention picker
type MentionItem struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Path string `json:"path"`
	Type string `json:"type"` // "file" or "folder"
}
