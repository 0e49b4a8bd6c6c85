package docstore

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"strings"

	"docvault/internal/domain"
	models "docvault/internal/domain/models/docstore"
	storeRepo "docvault/internal/domain/repositories/docstore"
	"docvault/internal/service/access"
	"docvault/internal/storage"
)

// Tree performs subtree-wide folder operations: breadth-first enumeration,
// recursive file counting, recursive deletion and display-path
// reconstruction. Parent links are plain id references with no structural
// guarantee against cycles, so every walk carries an explicit visited set.
type Tree struct {
	folderRepo storeRepo.FolderRepository
	fileRepo   storeRepo.FileRepository
	store      storage.Adapter
	logger     *slog.Logger
}

// NewTree creates a new tree walker
func NewTree(
	folderRepo storeRepo.FolderRepository,
	fileRepo storeRepo.FileRepository,
	store storage.Adapter,
	logger *slog.Logger,
) *Tree {
	return &Tree{
		folderRepo: folderRepo,
		fileRepo:   fileRepo,
		store:      store,
		logger:     logger,
	}
}

// SubtreeDeletion reports what a recursive folder delete accomplished.
// Failures are collected per node; completed deletions are never rolled
// back.
type SubtreeDeletion struct {
	DeletedFolders int
	DeletedFiles   int
	Failures       []domain.NodeFailure
}

// Enumerate returns the folders of a subtree in breadth-first order,
// starting with the root itself. Each folder id appears at most once:
// encountering an already-visited id means the hierarchy holds a cycle,
// which is logged and skipped so the walk always terminates.
func (t *Tree) Enumerate(ctx context.Context, root *models.Folder) ([]models.Folder, error) {
	visited := map[string]bool{root.ID: true}
	folders := []models.Folder{*root}

	queue := []models.Folder{*root}
	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]

		children, err := t.folderRepo.ListChildren(ctx, current.TenantID, &current.ID)
		if err != nil {
			return nil, fmt.Errorf("failed to list children of folder %s: %w", current.ID, err)
		}

		for _, child := range children {
			if visited[child.ID] {
				t.logger.Warn("folder hierarchy contains a cycle, skipping revisit",
					"tenant_id", child.TenantID,
					"folder_id", child.ID,
					"reached_from", current.ID,
					"error", domain.ErrMalformedHierarchy,
				)
				continue
			}
			visited[child.ID] = true
			folders = append(folders, child)
			queue = append(queue, child)
		}
	}

	return folders, nil
}

// CountFiles counts the files in the folder's subtree. Admins count
// everything; other actors only count files visible to them.
func (t *Tree) CountFiles(ctx context.Context, actor *access.Actor, root *models.Folder) (int, error) {
	folders, err := t.Enumerate(ctx, root)
	if err != nil {
		return 0, err
	}

	total := 0
	for i := range folders {
		files, err := t.fileRepo.ListByFolder(ctx, folders[i].TenantID, &folders[i].ID)
		if err != nil {
			return 0, fmt.Errorf("failed to list files in folder %s: %w", folders[i].ID, err)
		}
		total += len(access.FilterFiles(actor, files))
	}

	return total, nil
}

// DeleteSubtree deletes every file and folder under root, root included.
// For each folder, its directly contained files are removed before the
// folder's own record; a folder whose files could not all be removed keeps
// its record so a later attempt can resume. There is no transaction across
// the subtree and no rollback; the result lists every node that failed.
func (t *Tree) DeleteSubtree(ctx context.Context, root *models.Folder) (*SubtreeDeletion, error) {
	folders, err := t.Enumerate(ctx, root)
	if err != nil {
		return nil, err
	}

	result := &SubtreeDeletion{}

	for i := range folders {
		folder := &folders[i]

		files, err := t.fileRepo.ListByFolder(ctx, folder.TenantID, &folder.ID)
		if err != nil {
			result.Failures = append(result.Failures, domain.NodeFailure{
				NodeID:   folder.ID,
				NodeType: "folder",
				Name:     folder.Name,
				Reason:   fmt.Sprintf("listing files: %v", err),
			})
			continue
		}

		clean := true
		for j := range files {
			if err := t.RemoveFileContent(ctx, &files[j]); err != nil {
				clean = false
				result.Failures = append(result.Failures, domain.NodeFailure{
					NodeID:   files[j].ID,
					NodeType: "file",
					Name:     files[j].Name,
					Reason:   err.Error(),
				})
				continue
			}
			result.DeletedFiles++
		}

		// Files still referencing the folder keep its record alive; the
		// delete can be re-run once they are cleaned up.
		if !clean {
			result.Failures = append(result.Failures, domain.NodeFailure{
				NodeID:   folder.ID,
				NodeType: "folder",
				Name:     folder.Name,
				Reason:   "kept: contained files could not all be removed",
			})
			continue
		}

		if err := t.folderRepo.Delete(ctx, folder.TenantID, folder.ID); err != nil {
			result.Failures = append(result.Failures, domain.NodeFailure{
				NodeID:   folder.ID,
				NodeType: "folder",
				Name:     folder.Name,
				Reason:   err.Error(),
			})
			continue
		}
		result.DeletedFolders++
	}

	return result, nil
}

// RemoveFileContent deletes a file's stored bytes and then its record.
// Storage cleanup is best effort: a storage fault is logged and the record
// still goes, matching the single-file delete procedure. Content on
// external drives stays put; only our record of it is removed.
func (t *Tree) RemoveFileContent(ctx context.Context, file *models.File) error {
	if file.StoragePath != nil {
		if err := t.store.Delete(ctx, *file.StoragePath); err != nil {
			t.logger.Warn("failed to delete stored content, removing record anyway",
				"file_id", file.ID,
				"storage_path", *file.StoragePath,
				"error", err,
			)
		}
	}
	return t.fileRepo.Delete(ctx, file.TenantID, file.ID)
}

// BuildFolderPath reconstructs the display path "A / B / C" by walking
// parent links upward. A missing parent or a cycle truncates the walk; the
// partial path is still returned.
func (t *Tree) BuildFolderPath(ctx context.Context, folder *models.Folder) string {
	names := []string{folder.Name}
	visited := map[string]bool{folder.ID: true}

	parentID := folder.ParentID
	for parentID != nil {
		if visited[*parentID] {
			t.logger.Warn("cycle while reconstructing folder path",
				"tenant_id", folder.TenantID,
				"folder_id", folder.ID,
				"error", domain.ErrMalformedHierarchy,
			)
			break
		}

		parent, err := t.folderRepo.GetByID(ctx, folder.TenantID, *parentID)
		if err != nil {
			t.logger.Warn("parent lookup failed while reconstructing folder path",
				"tenant_id", folder.TenantID,
				"parent_id", *parentID,
				"error", err,
			)
			break
		}

		visited[parent.ID] = true
		names = append(names, parent.Name)
		parentID = parent.ParentID
	}

	slices.Reverse(names)
	return strings.Join(names, " / ")
}

// BuildPaths computes display paths for a whole set of folders in one pass,
// treating the slice as an arena keyed by id and walking parent links in
// memory. A parent outside the set or a cycle truncates that folder's path.
func (t *Tree) BuildPaths(folders []models.Folder) {
	arena := make(map[string]*models.Folder, len(folders))
	for i := range folders {
		arena[folders[i].ID] = &folders[i]
	}

	for i := range folders {
		names := []string{folders[i].Name}
		visited := map[string]bool{folders[i].ID: true}

		parentID := folders[i].ParentID
		for parentID != nil {
			if visited[*parentID] {
				t.logger.Warn("cycle while reconstructing folder path",
					"tenant_id", folders[i].TenantID,
					"folder_id", folders[i].ID,
					"error", domain.ErrMalformedHierarchy,
				)
				break
			}
			parent, ok := arena[*parentID]
			if !ok {
				break
			}
			visited[parent.ID] = true
			names = append(names, parent.Name)
			parentID = parent.ParentID
		}

		slices.Reverse(names)
		folders[i].Path = strings.Join(names, " / ")
	}
}

// FilePath returns the file's display path, prefixed with its folder chain
// when the containing folder resolves.
func (t *Tree) FilePath(ctx context.Context, file *models.File) string {
	if file.FolderID == nil {
		return file.Name
	}

	folder, err := t.folderRepo.GetByID(ctx, file.TenantID, *file.FolderID)
	if err != nil {
		t.logger.Warn("folder lookup failed while reconstructing file path",
			"tenant_id", file.TenantID,
			"file_id", file.ID,
			"folder_id", *file.FolderID,
			"error", err,
		)
		return file.Name
	}

	return t.BuildFolderPath(ctx, folder) + " / " + file.Name
}
