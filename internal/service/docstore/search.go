package docstore

import (
	"context"
	"log/slog"
	"strings"

	models "docvault/internal/domain/models/docstore"
	storeRepo "docvault/internal/domain/repositories/docstore"
	docsySvc "docvault/internal/domain/services/docstore"
	"docvault/internal/service/access"
)

type searchService struct {
	fileRepo   storeRepo.FileRepository
	folderRepo storeRepo.FolderRepository
	resolver   *access.Resolver
	tree       *Tree
	logger     *slog.Logger
}

// NewSearchService creates a new search service
func NewSearchService(
	fileRepo storeRepo.FileRepository,
	folderRepo storeRepo.FolderRepository,
	resolver *access.Resolver,
	tree *Tree,
	logger *slog.Logger,
) docsySvc.SearchService {
	return &searchService{
		fileRepo:   fileRepo,
		folderRepo: folderRepo,
		resolver:   resolver,
		tree:       tree,
		logger:     logger,
	}
}

// Search matches the query as a case-insensitive substring against the
// names of files and folders visible to the user. Queries shorter than
// MinSearchQueryLength return empty results without touching the database.
func (s *searchService) Search(ctx context.Context, userID, query string) (*docsySvc.SearchResults, error) {
	query = strings.TrimSpace(query)
	results := &docsySvc.SearchResults{
		Query:   query,
		Files:   []models.File{},
		Folders: []models.Folder{},
	}
	if len([]rune(query)) < docsySvc.MinSearchQueryLength {
		return results, nil
	}

	actor, err := s.resolver.ResolveActorByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	files, folders, err := s.loadVisible(ctx, actor)
	if err != nil {
		return nil, err
	}

	needle := strings.ToLower(query)
	for i := range folders {
		if strings.Contains(strings.ToLower(folders[i].Name), needle) {
			results.Folders = append(results.Folders, folders[i])
		}
	}
	for i := range files {
		if strings.Contains(strings.ToLower(files[i].Name), needle) {
			results.Files = append(results.Files, files[i])
		}
	}

	return results, nil
}

// ListMentionables returns every visible folder and file as a flat
// suggestion list, folders first.
func (s *searchService) ListMentionables(ctx context.Context, userID string) ([]docsySvc.MentionItem, error) {
	actor, err := s.resolver.ResolveActorByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	files, folders, err := s.loadVisible(ctx, actor)
	if err != nil {
		return nil, err
	}

	items := make([]docsySvc.MentionItem, 0, len(folders)+len(files))
	for i := range folders {
		items = append(items, docsySvc.MentionItem{
			ID:   folders[i].ID,
			Name: folders[i].Name,
			Path: folders[i].Path,
			Type: "folder",
		})
	}
	for i := range files {
		items = append(items, docsySvc.MentionItem{
			ID:   files[i].ID,
			Name: files[i].Name,
			Path: files[i].Path,
			Type: "file",
		})
	}
	return items, nil
}

// loadVisible loads the tenant's flat file and folder sets, filters them to
// the actor's read verdict and computes display paths. Paths are built over
// the full tenant folder set before filtering so an entity remains correctly
// located even when its ancestors are not themselves visible.
func (s *searchService) loadVisible(ctx context.Context, actor *access.Actor) ([]models.File, []models.Folder, error) {
	tenantID := actor.User.TenantID

	allFolders, err := s.folderRepo.ListByTenant(ctx, tenantID)
	if err != nil {
		return nil, nil, err
	}
	s.tree.BuildPaths(allFolders)

	folderPaths := make(map[string]string, len(allFolders))
	for i := range allFolders {
		folderPaths[allFolders[i].ID] = allFolders[i].Path
	}

	allFiles, err := s.fileRepo.ListByTenant(ctx, tenantID)
	if err != nil {
		return nil, nil, err
	}
	for i := range allFiles {
		f := &allFiles[i]
		if f.FolderID != nil {
			if prefix, ok := folderPaths[*f.FolderID]; ok {
				f.Path = prefix + " / " + f.Name
				continue
			}
		}
		f.Path = f.Name
	}

	return access.FilterFiles(actor, allFiles), access.FilterFolders(actor, allFolders), nil
}
