package docstore

import (
	"context"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"time"

	"docvault/internal/domain"
	models "docvault/internal/domain/models/docstore"
	"docvault/internal/service/access"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestResolver(users *fakeUserRepo, roles *fakeRoleRepo) *access.Resolver {
	return access.NewResolver(users, roles, testLogger())
}

// sameParent compares two optional folder references (nil = root level).
func sameParent(a, b *string) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

// fakeFolderRepo is a slice-backed FolderRepository. Slice order keeps
// ListChildren deterministic for BFS assertions. Create and Rename enforce
// the sibling-name uniqueness the real repository gets from its index.
type fakeFolderRepo struct {
	folders    []*models.Folder
	deleted    []string
	failDelete map[string]error
}

func (r *fakeFolderRepo) Create(ctx context.Context, folder *models.Folder) error {
	for _, f := range r.folders {
		if f.TenantID == folder.TenantID && sameParent(f.ParentID, folder.ParentID) && f.Name == folder.Name {
			return &domain.ConflictError{
				Message:      fmt.Sprintf("a folder named %q already exists here", folder.Name),
				ResourceType: "folder",
				ResourceID:   f.ID,
			}
		}
	}
	if folder.ID == "" {
		folder.ID = fmt.Sprintf("folder-%d", len(r.folders)+1)
	}
	r.folders = append(r.folders, folder)
	return nil
}

func (r *fakeFolderRepo) GetByID(ctx context.Context, tenantID, id string) (*models.Folder, error) {
	for _, f := range r.folders {
		if f.TenantID == tenantID && f.ID == id {
			copied := *f
			return &copied, nil
		}
	}
	return nil, fmt.Errorf("%w: folder %s", domain.ErrNotFound, id)
}

func (r *fakeFolderRepo) ListByTenant(ctx context.Context, tenantID string) ([]models.Folder, error) {
	out := []models.Folder{}
	for _, f := range r.folders {
		if f.TenantID == tenantID {
			out = append(out, *f)
		}
	}
	return out, nil
}

func (r *fakeFolderRepo) ListChildren(ctx context.Context, tenantID string, parentID *string) ([]models.Folder, error) {
	out := []models.Folder{}
	for _, f := range r.folders {
		if f.TenantID == tenantID && sameParent(f.ParentID, parentID) {
			out = append(out, *f)
		}
	}
	return out, nil
}

func (r *fakeFolderRepo) Rename(ctx context.Context, tenantID, id, name string) error {
	var target *models.Folder
	for _, f := range r.folders {
		if f.TenantID == tenantID && f.ID == id {
			target = f
			break
		}
	}
	if target == nil {
		return fmt.Errorf("%w: folder %s", domain.ErrNotFound, id)
	}
	for _, f := range r.folders {
		if f.ID != id && f.TenantID == tenantID && sameParent(f.ParentID, target.ParentID) && f.Name == name {
			return &domain.ConflictError{
				Message:      fmt.Sprintf("a folder named %q already exists here", name),
				ResourceType: "folder",
				ResourceID:   f.ID,
			}
		}
	}
	target.Name = name
	return nil
}

func (r *fakeFolderRepo) Delete(ctx context.Context, tenantID, id string) error {
	if err, ok := r.failDelete[id]; ok {
		return err
	}
	r.deleted = append(r.deleted, id)
	for i, f := range r.folders {
		if f.TenantID == tenantID && f.ID == id {
			r.folders = append(r.folders[:i], r.folders[i+1:]...)
			return nil
		}
	}
	// Absent rows are a no-op, same as the real repository.
	return nil
}

// fakeFileRepo is a slice-backed FileRepository. Create, Move and Rename
// enforce per-location name uniqueness.
type fakeFileRepo struct {
	files      []*models.File
	deleted    []string
	failDelete map[string]error
}

func (r *fakeFileRepo) Create(ctx context.Context, file *models.File) error {
	for _, f := range r.files {
		if f.TenantID == file.TenantID && sameParent(f.FolderID, file.FolderID) && f.Name == file.Name {
			return &domain.ConflictError{
				Message:      fmt.Sprintf("a file named %q already exists in this location", file.Name),
				ResourceType: "file",
				ResourceID:   f.ID,
			}
		}
	}
	if file.ID == "" {
		file.ID = fmt.Sprintf("file-%d", len(r.files)+1)
	}
	r.files = append(r.files, file)
	return nil
}

func (r *fakeFileRepo) GetByID(ctx context.Context, tenantID, id string) (*models.File, error) {
	for _, f := range r.files {
		if f.TenantID == tenantID && f.ID == id {
			copied := *f
			return &copied, nil
		}
	}
	return nil, fmt.Errorf("%w: file %s", domain.ErrNotFound, id)
}

func (r *fakeFileRepo) ListByFolder(ctx context.Context, tenantID string, folderID *string) ([]models.File, error) {
	out := []models.File{}
	for _, f := range r.files {
		if f.TenantID == tenantID && sameParent(f.FolderID, folderID) {
			out = append(out, *f)
		}
	}
	return out, nil
}

func (r *fakeFileRepo) ListByTenant(ctx context.Context, tenantID string) ([]models.File, error) {
	out := []models.File{}
	for _, f := range r.files {
		if f.TenantID == tenantID {
			out = append(out, *f)
		}
	}
	return out, nil
}

func (r *fakeFileRepo) CountByFolder(ctx context.Context, tenantID string, folderID *string) (int, error) {
	files, _ := r.ListByFolder(ctx, tenantID, folderID)
	return len(files), nil
}

func (r *fakeFileRepo) Exists(ctx context.Context, tenantID string, folderID *string, name string) (bool, error) {
	for _, f := range r.files {
		if f.TenantID == tenantID && sameParent(f.FolderID, folderID) && f.Name == name {
			return true, nil
		}
	}
	return false, nil
}

func (r *fakeFileRepo) Move(ctx context.Context, tenantID, id string, folderID *string) error {
	var target *models.File
	for _, f := range r.files {
		if f.TenantID == tenantID && f.ID == id {
			target = f
			break
		}
	}
	if target == nil {
		return fmt.Errorf("%w: file %s", domain.ErrNotFound, id)
	}
	for _, f := range r.files {
		if f.ID != id && f.TenantID == tenantID && sameParent(f.FolderID, folderID) && f.Name == target.Name {
			return &domain.ConflictError{
				Message:      fmt.Sprintf("a file named %q already exists in the destination folder", target.Name),
				ResourceType: "file",
				ResourceID:   f.ID,
			}
		}
	}
	target.FolderID = folderID
	return nil
}

func (r *fakeFileRepo) Rename(ctx context.Context, tenantID, id, name string) error {
	var target *models.File
	for _, f := range r.files {
		if f.TenantID == tenantID && f.ID == id {
			target = f
			break
		}
	}
	if target == nil {
		return fmt.Errorf("%w: file %s", domain.ErrNotFound, id)
	}
	for _, f := range r.files {
		if f.ID != id && f.TenantID == tenantID && sameParent(f.FolderID, target.FolderID) && f.Name == name {
			return &domain.ConflictError{
				Message:      fmt.Sprintf("a file named %q already exists in this location", name),
				ResourceType: "file",
				ResourceID:   f.ID,
			}
		}
	}
	target.Name = name
	return nil
}

func (r *fakeFileRepo) Delete(ctx context.Context, tenantID, id string) error {
	if err, ok := r.failDelete[id]; ok {
		return err
	}
	r.deleted = append(r.deleted, id)
	for i, f := range r.files {
		if f.TenantID == tenantID && f.ID == id {
			r.files = append(r.files[:i], r.files[i+1:]...)
			return nil
		}
	}
	return nil
}

// fakeUserRepo is a slice-backed UserRepository.
type fakeUserRepo struct {
	users []*models.User
}

func (r *fakeUserRepo) Create(ctx context.Context, user *models.User) error {
	if user.ID == "" {
		user.ID = fmt.Sprintf("user-%d", len(r.users)+1)
	}
	r.users = append(r.users, user)
	return nil
}

func (r *fakeUserRepo) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	for _, u := range r.users {
		if u.Email == email {
			copied := *u
			return &copied, nil
		}
	}
	return nil, fmt.Errorf("%w: user %s", domain.ErrNotFound, email)
}

func (r *fakeUserRepo) GetByID(ctx context.Context, id string) (*models.User, error) {
	for _, u := range r.users {
		if u.ID == id {
			copied := *u
			return &copied, nil
		}
	}
	return nil, fmt.Errorf("%w: user %s", domain.ErrNotFound, id)
}

func (r *fakeUserRepo) ListByTenant(ctx context.Context, tenantID string) ([]models.User, error) {
	out := []models.User{}
	for _, u := range r.users {
		if u.TenantID == tenantID {
			out = append(out, *u)
		}
	}
	return out, nil
}

func (r *fakeUserRepo) UpdateRoles(ctx context.Context, tenantID, userID string, roles []string) error {
	for _, u := range r.users {
		if u.TenantID == tenantID && u.ID == userID {
			u.Roles = roles
			return nil
		}
	}
	return fmt.Errorf("%w: user %s", domain.ErrNotFound, userID)
}

func (r *fakeUserRepo) Delete(ctx context.Context, tenantID, id string) error {
	for i, u := range r.users {
		if u.TenantID == tenantID && u.ID == id {
			r.users = append(r.users[:i], r.users[i+1:]...)
			return nil
		}
	}
	return fmt.Errorf("%w: user %s", domain.ErrNotFound, id)
}

func (r *fakeUserRepo) SetPassword(ctx context.Context, userID, hashedPassword string) error {
	for _, u := range r.users {
		if u.ID == userID {
			u.HashedPassword = &hashedPassword
			u.PasswordResetToken = nil
			u.TokenExpiresAt = nil
			return nil
		}
	}
	return fmt.Errorf("%w: user %s", domain.ErrNotFound, userID)
}

func (r *fakeUserRepo) SetResetToken(ctx context.Context, userID, token string, expiresAt time.Time) error {
	for _, u := range r.users {
		if u.ID == userID {
			u.PasswordResetToken = &token
			u.TokenExpiresAt = &expiresAt
			return nil
		}
	}
	return fmt.Errorf("%w: user %s", domain.ErrNotFound, userID)
}

func (r *fakeUserRepo) GetByResetToken(ctx context.Context, token string) (*models.User, error) {
	for _, u := range r.users {
		if u.PasswordResetToken != nil && *u.PasswordResetToken == token {
			copied := *u
			return &copied, nil
		}
	}
	return nil, fmt.Errorf("%w: reset token", domain.ErrNotFound)
}

func (r *fakeUserRepo) CountByRoleName(ctx context.Context, tenantID, roleName string) (int, error) {
	n := 0
	for _, u := range r.users {
		if u.TenantID == tenantID && u.HasRole(roleName) {
			n++
		}
	}
	return n, nil
}

// fakeRoleRepo is a slice-backed RoleRepository.
type fakeRoleRepo struct {
	roles []*models.Role
}

func (r *fakeRoleRepo) Create(ctx context.Context, role *models.Role) error {
	for _, existing := range r.roles {
		if existing.TenantID == role.TenantID && existing.Name == role.Name {
			return &domain.ConflictError{
				Message:      fmt.Sprintf("a role named %q already exists", role.Name),
				ResourceType: "role",
				ResourceID:   existing.ID,
			}
		}
	}
	if role.ID == "" {
		role.ID = fmt.Sprintf("role-%d", len(r.roles)+1)
	}
	r.roles = append(r.roles, role)
	return nil
}

func (r *fakeRoleRepo) GetByID(ctx context.Context, tenantID, id string) (*models.Role, error) {
	for _, role := range r.roles {
		if role.TenantID == tenantID && role.ID == id {
			copied := *role
			return &copied, nil
		}
	}
	return nil, fmt.Errorf("%w: role %s", domain.ErrNotFound, id)
}

func (r *fakeRoleRepo) GetByName(ctx context.Context, tenantID, name string) (*models.Role, error) {
	for _, role := range r.roles {
		if role.TenantID == tenantID && role.Name == name {
			copied := *role
			return &copied, nil
		}
	}
	return nil, fmt.Errorf("%w: role %s", domain.ErrNotFound, name)
}

func (r *fakeRoleRepo) ListByTenant(ctx context.Context, tenantID string) ([]models.Role, error) {
	out := []models.Role{}
	for _, role := range r.roles {
		if role.TenantID == tenantID {
			out = append(out, *role)
		}
	}
	return out, nil
}

func (r *fakeRoleRepo) UpdatePermissions(ctx context.Context, tenantID, roleID string, allowedFolders, allowedFiles []string) error {
	for _, role := range r.roles {
		if role.TenantID == tenantID && role.ID == roleID {
			role.AllowedFolders = allowedFolders
			role.AllowedFiles = allowedFiles
			return nil
		}
	}
	return fmt.Errorf("%w: role %s", domain.ErrNotFound, roleID)
}

func (r *fakeRoleRepo) Delete(ctx context.Context, tenantID, id string) error {
	for i, role := range r.roles {
		if role.TenantID == tenantID && role.ID == id {
			r.roles = append(r.roles[:i], r.roles[i+1:]...)
			return nil
		}
	}
	return fmt.Errorf("%w: role %s", domain.ErrNotFound, id)
}

// fakeStorage records deletions and tolerates absent paths.
type fakeStorage struct {
	objects map[string][]byte
	deleted []string
}

func newFakeStorage() *fakeStorage {
	return &fakeStorage{objects: map[string][]byte{}}
}

func (s *fakeStorage) Upload(ctx context.Context, tenantID, name string, content io.Reader) (string, error) {
	data, err := io.ReadAll(content)
	if err != nil {
		return "", err
	}
	path := tenantID + "/" + name
	s.objects[path] = data
	return path, nil
}

func (s *fakeStorage) DownloadBytes(ctx context.Context, storagePath string) ([]byte, error) {
	data, ok := s.objects[storagePath]
	if !ok {
		return nil, fmt.Errorf("%w: stored content %q", domain.ErrNotFound, storagePath)
	}
	return data, nil
}

func (s *fakeStorage) Delete(ctx context.Context, storagePath string) error {
	s.deleted = append(s.deleted, storagePath)
	delete(s.objects, storagePath)
	return nil
}

func (s *fakeStorage) GetDownloadReference(ctx context.Context, storagePath string) (string, error) {
	if _, ok := s.objects[storagePath]; !ok {
		return "", fs.ErrNotExist
	}
	return "/tmp/" + storagePath, nil
}

// fakeDownloader stands in for the external storage manager.
type fakeDownloader struct {
	content []byte
	err     error
	calls   int
}

func (d *fakeDownloader) DownloadFile(ctx context.Context, file *models.File) ([]byte, error) {
	d.calls++
	if d.err != nil {
		return nil, d.err
	}
	return d.content, nil
}

func strPtr(s string) *string { return &s }

func folderRecord(tenantID, id, owner string, parentID *string) *models.Folder {
	return &models.Folder{ID: id, TenantID: tenantID, OwnerID: owner, ParentID: parentID, Name: id}
}

func fileRecord(tenantID, id, owner string, folderID *string, storagePath string) *models.File {
	f := &models.File{ID: id, TenantID: tenantID, OwnerID: owner, FolderID: folderID, Name: id}
	if storagePath != "" {
		f.StoragePath = &storagePath
	}
	return f
}
