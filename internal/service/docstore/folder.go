package docstore

import (
	"context"
	"fmt"
	"log/slog"
	"regexp"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"docvault/internal/config"
	"docvault/internal/domain"
	models "docvault/internal/domain/models/docstore"
	storeRepo "docvault/internal/domain/repositories/docstore"
	docsySvc "docvault/internal/domain/services/docstore"
	"docvault/internal/service/access"
)

type folderService struct {
	folderRepo storeRepo.FolderRepository
	resolver   *access.Resolver
	tree       *Tree
	logger     *slog.Logger
}

// NewFolderService creates a new folder service
func NewFolderService(
	folderRepo storeRepo.FolderRepository,
	resolver *access.Resolver,
	tree *Tree,
	logger *slog.Logger,
) docsySvc.FolderService {
	return &folderService{
		folderRepo: folderRepo,
		resolver:   resolver,
		tree:       tree,
		logger:     logger,
	}
}

// CreateFolder creates a new folder owned by the requesting user. Any
// tenant member may create folders; ownership is what restricts later
// writes.
func (s *folderService) CreateFolder(ctx context.Context, req *docsySvc.CreateFolderRequest) (*models.Folder, error) {
	req.Name = strings.TrimSpace(req.Name)
	if err := s.validateCreateRequest(req); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}

	actor, err := s.resolver.ResolveActorByID(ctx, req.UserID)
	if err != nil {
		return nil, err
	}

	// Normalize empty string to nil for root-level folders
	if req.ParentID != nil && *req.ParentID == "" {
		req.ParentID = nil
	}

	if req.ParentID != nil {
		if _, err := s.folderRepo.GetByID(ctx, actor.User.TenantID, *req.ParentID); err != nil {
			return nil, err
		}
	}

	folder := &models.Folder{
		TenantID: actor.User.TenantID,
		OwnerID:  actor.User.ID,
		ParentID: req.ParentID,
		Name:     req.Name,
	}

	if err := s.folderRepo.Create(ctx, folder); err != nil {
		return nil, err
	}

	folder.Path = s.tree.BuildFolderPath(ctx, folder)

	s.logger.Info("folder created",
		"id", folder.ID,
		"name", folder.Name,
		"tenant_id", folder.TenantID,
		"owner_id", folder.OwnerID,
		"parent_id", folder.ParentID,
	)

	return folder, nil
}

// GetFolder retrieves a folder with its computed path. Folder metadata is
// visible to every tenant member; file contents are what visibility rules
// protect.
func (s *folderService) GetFolder(ctx context.Context, userID, folderID string) (*models.Folder, error) {
	actor, err := s.resolver.ResolveActorByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	folder, err := s.folderRepo.GetByID(ctx, actor.User.TenantID, folderID)
	if err != nil {
		return nil, err
	}

	folder.Path = s.tree.BuildFolderPath(ctx, folder)
	return folder, nil
}

// ListFolders lists the tenant's folders with computed paths. A nil
// parentID returns the whole tenant flat; a non-nil one scopes to that
// parent's direct children (empty string = root level).
func (s *folderService) ListFolders(ctx context.Context, userID string, parentID *string) ([]models.Folder, error) {
	actor, err := s.resolver.ResolveActorByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	tenantID := actor.User.TenantID

	if parentID == nil {
		folders, err := s.folderRepo.ListByTenant(ctx, tenantID)
		if err != nil {
			return nil, err
		}
		s.tree.BuildPaths(folders)
		return folders, nil
	}

	var parent *models.Folder
	scope := parentID
	if *parentID == "" {
		scope = nil
	} else {
		parent, err = s.folderRepo.GetByID(ctx, tenantID, *parentID)
		if err != nil {
			return nil, err
		}
	}

	folders, err := s.folderRepo.ListChildren(ctx, tenantID, scope)
	if err != nil {
		return nil, err
	}

	// Children share one parent, so the prefix is computed once.
	prefix := ""
	if parent != nil {
		prefix = s.tree.BuildFolderPath(ctx, parent) + " / "
	}
	for i := range folders {
		folders[i].Path = prefix + folders[i].Name
	}

	return folders, nil
}

// RenameFolder renames a folder. Only the owner or an admin may rename;
// a sibling already carrying the name is a conflict and leaves the folder
// untouched.
func (s *folderService) RenameFolder(ctx context.Context, userID, folderID string, req *docsySvc.RenameFolderRequest) (*models.Folder, error) {
	req.Name = strings.TrimSpace(req.Name)
	if err := s.validateRenameRequest(req); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}

	actor, err := s.resolver.ResolveActorByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	folder, err := s.folderRepo.GetByID(ctx, actor.User.TenantID, folderID)
	if err != nil {
		return nil, err
	}

	if access.CanAccessFolder(actor, folder, access.ActionRename) != access.Allow {
		return nil, &domain.ForbiddenError{Message: "only the folder owner or an admin can rename this folder"}
	}

	if err := s.folderRepo.Rename(ctx, folder.TenantID, folder.ID, req.Name); err != nil {
		return nil, err
	}

	folder, err = s.folderRepo.GetByID(ctx, folder.TenantID, folder.ID)
	if err != nil {
		return nil, err
	}
	folder.Path = s.tree.BuildFolderPath(ctx, folder)

	s.logger.Info("folder renamed",
		"id", folder.ID,
		"name", folder.Name,
		"tenant_id", folder.TenantID,
	)

	return folder, nil
}

// DeleteFolder deletes a folder and its entire subtree. Files inside each
// folder go before the folder's own record. Completed deletions survive a
// partial failure; the error lists the nodes that remain.
func (s *folderService) DeleteFolder(ctx context.Context, userID, folderID string) (*docsySvc.DeleteFolderResult, error) {
	actor, err := s.resolver.ResolveActorByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	folder, err := s.folderRepo.GetByID(ctx, actor.User.TenantID, folderID)
	if err != nil {
		return nil, err
	}

	if access.CanAccessFolder(actor, folder, access.ActionDelete) != access.Allow {
		return nil, &domain.ForbiddenError{Message: "only the folder owner or an admin can delete this folder"}
	}

	result, err := s.tree.DeleteSubtree(ctx, folder)
	if err != nil {
		return nil, err
	}

	if len(result.Failures) > 0 {
		s.logger.Error("recursive folder delete did not fully complete",
			"folder_id", folderID,
			"tenant_id", folder.TenantID,
			"deleted_folders", result.DeletedFolders,
			"deleted_files", result.DeletedFiles,
			"failed_nodes", len(result.Failures),
		)
		return nil, &domain.PartialDeleteError{FolderID: folderID, Failures: result.Failures}
	}

	s.logger.Info("folder deleted recursively",
		"folder_id", folderID,
		"tenant_id", folder.TenantID,
		"deleted_folders", result.DeletedFolders,
		"deleted_files", result.DeletedFiles,
	)

	return &docsySvc.DeleteFolderResult{
		DeletedFolders: result.DeletedFolders,
		DeletedFiles:   result.DeletedFiles,
	}, nil
}

// CountFiles counts the files in the folder's subtree that the requesting
// user can see
func (s *folderService) CountFiles(ctx context.Context, userID, folderID string) (*docsySvc.FolderFileCount, error) {
	actor, err := s.resolver.ResolveActorByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	folder, err := s.folderRepo.GetByID(ctx, actor.User.TenantID, folderID)
	if err != nil {
		return nil, err
	}

	count, err := s.tree.CountFiles(ctx, actor, folder)
	if err != nil {
		return nil, err
	}

	return &docsySvc.FolderFileCount{
		FolderID:  folderID,
		FileCount: count,
	}, nil
}

// validateCreateRequest validates a folder creation request
func (s *folderService) validateCreateRequest(req *docsySvc.CreateFolderRequest) error {
	return validation.ValidateStruct(req,
		validation.Field(&req.Name,
			validation.Required,
			validation.Length(1, config.MaxFolderNameLength),
			validation.Match(regexp.MustCompile(`^[^/]+$`)).Error("folder name cannot contain slashes"),
		),
	)
}

// validateRenameRequest validates a folder rename request
func (s *folderService) validateRenameRequest(req *docsySvc.RenameFolderRequest) error {
	return validation.ValidateStruct(req,
		validation.Field(&req.Name,
			validation.Required,
			validation.Length(1, config.MaxFolderNameLength),
			validation.Match(regexp.MustCompile(`^[^/]+$`)).Error("folder name cannot contain slashes"),
		),
	)
}
