package docstore

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"docvault/internal/config"
	"docvault/internal/domain"
	models "docvault/internal/domain/models/docstore"
	storeRepo "docvault/internal/domain/repositories/docstore"
	docsySvc "docvault/internal/domain/services/docstore"
	extSvc "docvault/internal/domain/services/extstorage"
	"docvault/internal/service/access"
	"docvault/internal/storage"
)

type fileService struct {
	fileRepo   storeRepo.FileRepository
	folderRepo storeRepo.FolderRepository
	store      storage.Adapter
	external   extSvc.Downloader
	resolver   *access.Resolver
	tree       *Tree
	logger     *slog.Logger
}

// NewFileService creates a new file service
func NewFileService(
	fileRepo storeRepo.FileRepository,
	folderRepo storeRepo.FolderRepository,
	store storage.Adapter,
	external extSvc.Downloader,
	resolver *access.Resolver,
	tree *Tree,
	logger *slog.Logger,
) docsySvc.FileService {
	return &fileService{
		fileRepo:   fileRepo,
		folderRepo: folderRepo,
		store:      store,
		external:   external,
		resolver:   resolver,
		tree:       tree,
		logger:     logger,
	}
}

// UploadFile validates and stores an uploaded file. The sanitized filename
// becomes the record name; the stored object gets a uuid prefix so storage
// names never collide even when record names do.
func (s *fileService) UploadFile(ctx context.Context, req *docsySvc.UploadFileRequest) (*models.File, error) {
	name, err := validateUpload(req.Upload)
	if err != nil {
		return nil, err
	}

	actor, err := s.resolver.ResolveActorByID(ctx, req.UserID)
	if err != nil {
		return nil, err
	}
	tenantID := actor.User.TenantID

	// Normalize empty string to nil for root-level uploads
	if req.FolderID != nil && *req.FolderID == "" {
		req.FolderID = nil
	}
	if req.FolderID != nil {
		if _, err := s.folderRepo.GetByID(ctx, tenantID, *req.FolderID); err != nil {
			return nil, err
		}
	}

	// Duplicate check runs before the content is written; the unique index
	// still catches concurrent uploads at Create.
	taken, err := s.fileRepo.Exists(ctx, tenantID, req.FolderID, name)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, &domain.ConflictError{
			Message:      fmt.Sprintf("a file named %q already exists at this location", name),
			ResourceType: "file",
		}
	}

	storagePath, err := s.store.Upload(ctx, tenantID, storageName(name), req.Upload.Content)
	if err != nil {
		return nil, fmt.Errorf("failed to store uploaded content: %w", err)
	}

	contentType := req.Upload.ContentType
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	file := &models.File{
		TenantID:    tenantID,
		OwnerID:     actor.User.ID,
		FolderID:    req.FolderID,
		Name:        name,
		StoragePath: &storagePath,
		SizeBytes:   req.Upload.Size,
		ContentType: contentType,
	}

	if err := s.fileRepo.Create(ctx, file); err != nil {
		if delErr := s.store.Delete(ctx, storagePath); delErr != nil {
			s.logger.Warn("failed to remove stored content after record create failure",
				"storage_path", storagePath,
				"error", delErr,
			)
		}
		return nil, err
	}

	file.Path = s.tree.FilePath(ctx, file)

	s.logger.Info("file uploaded",
		"id", file.ID,
		"name", file.Name,
		"tenant_id", tenantID,
		"owner_id", file.OwnerID,
		"folder_id", file.FolderID,
		"size_bytes", file.SizeBytes,
	)

	return file, nil
}

// GetFile retrieves a file's metadata with its computed path
func (s *fileService) GetFile(ctx context.Context, userID, fileID string) (*models.File, error) {
	actor, file, err := s.loadFile(ctx, userID, fileID)
	if err != nil {
		return nil, err
	}

	if access.CanAccessFile(actor, file, access.ActionRead) != access.Allow {
		return nil, &domain.ForbiddenError{Message: "you do not have access to this file"}
	}

	file.Path = s.tree.FilePath(ctx, file)
	return file, nil
}

// ListFiles lists the files the user may see directly inside one folder
// (nil folderID = tenant root level). There is no folder-level gate: a
// folder the user holds no grant for simply lists empty.
func (s *fileService) ListFiles(ctx context.Context, userID string, folderID *string) ([]models.File, error) {
	actor, err := s.resolver.ResolveActorByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	tenantID := actor.User.TenantID

	// Normalize empty string to nil for root-level listings
	if folderID != nil && *folderID == "" {
		folderID = nil
	}

	// Siblings share one folder, so the prefix is computed once.
	prefix := ""
	if folderID != nil {
		folder, err := s.folderRepo.GetByID(ctx, tenantID, *folderID)
		if err != nil {
			return nil, err
		}
		prefix = s.tree.BuildFolderPath(ctx, folder) + " / "
	}

	files, err := s.fileRepo.ListByFolder(ctx, tenantID, folderID)
	if err != nil {
		return nil, err
	}

	visible := access.FilterFiles(actor, files)
	for i := range visible {
		visible[i].Path = prefix + visible[i].Name
	}

	return visible, nil
}

// DownloadFile returns the file content as an attachment, resolving
// external storage credentials transparently
func (s *fileService) DownloadFile(ctx context.Context, userID, fileID string) (*docsySvc.FileDownload, error) {
	actor, file, err := s.loadFile(ctx, userID, fileID)
	if err != nil {
		return nil, err
	}

	if access.CanAccessFile(actor, file, access.ActionRead) != access.Allow {
		return nil, &domain.ForbiddenError{Message: "you do not have access to this file"}
	}

	return s.openContent(ctx, file, false)
}

// PreviewFile returns the file content for inline display. Object storage
// hands out a short-lived signed URL instead of streaming bytes.
func (s *fileService) PreviewFile(ctx context.Context, userID, fileID string) (*docsySvc.FileDownload, error) {
	actor, file, err := s.loadFile(ctx, userID, fileID)
	if err != nil {
		return nil, err
	}

	if access.CanAccessFile(actor, file, access.ActionRead) != access.Allow {
		return nil, &domain.ForbiddenError{Message: "you do not have access to this file"}
	}

	return s.openContent(ctx, file, true)
}

// UpdateFile renames and/or moves a file. Only provided fields are
// applied; a patch with neither is a no-op.
func (s *fileService) UpdateFile(ctx context.Context, userID, fileID string, req *docsySvc.UpdateFileRequest) (*models.File, error) {
	if req.Name != nil {
		trimmed := strings.TrimSpace(*req.Name)
		req.Name = &trimmed
	}
	if err := s.validateUpdateRequest(req); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}

	actor, file, err := s.loadFile(ctx, userID, fileID)
	if err != nil {
		return nil, err
	}

	if req.Folder.Present && access.CanAccessFile(actor, file, access.ActionMove) != access.Allow {
		return nil, &domain.ForbiddenError{Message: "only the file owner or an admin can move this file"}
	}
	if req.Name != nil && access.CanAccessFile(actor, file, access.ActionRename) != access.Allow {
		return nil, &domain.ForbiddenError{Message: "only the file owner or an admin can rename this file"}
	}

	if req.Folder.Present {
		target := req.Folder.Value
		// Normalize empty string to nil for moves to the root level
		if target != nil && *target == "" {
			target = nil
		}
		if target != nil {
			if _, err := s.folderRepo.GetByID(ctx, file.TenantID, *target); err != nil {
				return nil, err
			}
		}

		if err := s.fileRepo.Move(ctx, file.TenantID, file.ID, target); err != nil {
			return nil, err
		}
		file.FolderID = target
	}

	if req.Name != nil {
		name := SanitizeFilename(*req.Name)
		if name != file.Name {
			if err := s.fileRepo.Rename(ctx, file.TenantID, file.ID, name); err != nil {
				return nil, err
			}
			file.Name = name
		}
	}

	file.Path = s.tree.FilePath(ctx, file)

	s.logger.Info("file updated",
		"id", file.ID,
		"name", file.Name,
		"tenant_id", file.TenantID,
		"folder_id", file.FolderID,
	)

	return file, nil
}

// DeleteFile deletes a file's stored content and record. Storage removal
// is best-effort; the record always goes.
func (s *fileService) DeleteFile(ctx context.Context, userID, fileID string) error {
	actor, file, err := s.loadFile(ctx, userID, fileID)
	if err != nil {
		return err
	}

	if access.CanAccessFile(actor, file, access.ActionDelete) != access.Allow {
		return &domain.ForbiddenError{Message: "only the file owner or an admin can delete this file"}
	}

	if err := s.tree.RemoveFileContent(ctx, file); err != nil {
		return err
	}

	s.logger.Info("file deleted",
		"id", file.ID,
		"name", file.Name,
		"tenant_id", file.TenantID,
	)

	return nil
}

// loadFile resolves the actor and fetches the file in their tenant.
// Callers apply the verdict for their own action.
func (s *fileService) loadFile(ctx context.Context, userID, fileID string) (*access.Actor, *models.File, error) {
	actor, err := s.resolver.ResolveActorByID(ctx, userID)
	if err != nil {
		return nil, nil, err
	}

	file, err := s.fileRepo.GetByID(ctx, actor.User.TenantID, fileID)
	if err != nil {
		return nil, nil, err
	}

	return actor, file, nil
}

// openContent resolves the file's content location into a response body.
func (s *fileService) openContent(ctx context.Context, file *models.File, inline bool) (*docsySvc.FileDownload, error) {
	dl := &docsySvc.FileDownload{
		Filename:    file.Name,
		ContentType: file.ContentType,
		Size:        file.SizeBytes,
		Inline:      inline,
	}
	if dl.ContentType == "" {
		dl.ContentType = "application/octet-stream"
	}

	switch {
	case file.IsExternal():
		content, err := s.external.DownloadFile(ctx, file)
		if err != nil {
			return nil, err
		}
		dl.Content = io.NopCloser(bytes.NewReader(content))
		dl.Size = int64(len(content))

	case file.StoragePath != nil:
		if inline {
			ref, err := s.store.GetDownloadReference(ctx, *file.StoragePath)
			if err != nil {
				return nil, err
			}
			// Only URL references can be handed to a browser; local
			// filesystem paths stream inline instead.
			if strings.HasPrefix(ref, "http://") || strings.HasPrefix(ref, "https://") {
				dl.RedirectURL = ref
				return dl, nil
			}
		}

		content, err := s.store.DownloadBytes(ctx, *file.StoragePath)
		if err != nil {
			return nil, err
		}
		dl.Content = io.NopCloser(bytes.NewReader(content))
		dl.Size = int64(len(content))

	default:
		return nil, fmt.Errorf("file %s has no content location", file.ID)
	}

	return dl, nil
}

// validateUpdateRequest validates a file rename/move request
func (s *fileService) validateUpdateRequest(req *docsySvc.UpdateFileRequest) error {
	return validation.ValidateStruct(req,
		validation.Field(&req.Name,
			validation.NilOrNotEmpty,
			validation.Length(1, config.MaxFileNameLength),
		),
	)
}
