package access

import (
	"context"
	"errors"
	"log/slog"

	"docvault/internal/domain"
	models "docvault/internal/domain/models/docstore"
	storeRepo "docvault/internal/domain/repositories/docstore"
)

// Action classifies an operation for permission checks. Read covers every
// read-class operation: get, list, download, preview, search and mention
// inclusion. The write actions each carry their own name because handlers
// report them separately, but they share one rule: ownership or Admin.
type Action int

const (
	ActionRead Action = iota
	ActionMove
	ActionRename
	ActionDelete
)

// IsWrite reports whether the action mutates the target. Allow-list
// membership never grants write actions.
func (a Action) IsWrite() bool {
	return a != ActionRead
}

// Verdict is the outcome of a permission check. Checks never fail with an
// error: an actor whose role record is missing is evaluated against empty
// allow-lists, so unresolvable state degrades to Deny, never to Allow.
type Verdict int

const (
	Deny Verdict = iota
	Allow
)

// Actor is an authenticated user together with the Role record backing the
// user's primary role name. Role is nil when the record could not be
// resolved (role renamed or deleted since the user got it); every allow-list
// lookup then misses.
type Actor struct {
	User *models.User
	Role *models.Role
}

// IsAdmin reports whether the actor carries the built-in Admin role.
func (a *Actor) IsAdmin() bool {
	return a.User != nil && a.User.IsAdmin()
}

// Resolver builds Actors and answers access questions. The verdict
// functions are pure over already-loaded records; only actor resolution
// touches the database.
type Resolver struct {
	userRepo storeRepo.UserRepository
	roleRepo storeRepo.RoleRepository
	logger   *slog.Logger
}

// NewResolver creates a new permission resolver
func NewResolver(userRepo storeRepo.UserRepository, roleRepo storeRepo.RoleRepository, logger *slog.Logger) *Resolver {
	return &Resolver{
		userRepo: userRepo,
		roleRepo: roleRepo,
		logger:   logger,
	}
}

// ResolveActorByID loads the user behind an authenticated request and
// resolves their primary role. A user id from a token that no longer maps
// to an account is an authentication failure, not a missing resource.
func (r *Resolver) ResolveActorByID(ctx context.Context, userID string) (*Actor, error) {
	user, err := r.userRepo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, &domain.UnauthorizedError{Message: "account no longer exists"}
		}
		return nil, err
	}
	return r.ResolveActor(ctx, user)
}

// ResolveActor loads the Role record for the user's primary role. A missing
// record is not an error: the actor is returned with a nil Role and fails
// closed on allow-list checks. Admins skip the lookup entirely since their
// verdicts never consult allow-lists.
func (r *Resolver) ResolveActor(ctx context.Context, user *models.User) (*Actor, error) {
	actor := &Actor{User: user}

	if user.IsAdmin() {
		return actor, nil
	}

	role, err := r.roleRepo.GetByName(ctx, user.TenantID, user.PrimaryRole())
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			r.logger.Warn("primary role record missing, evaluating with empty allow-lists",
				"user_id", user.ID,
				"tenant_id", user.TenantID,
				"role", user.PrimaryRole(),
			)
			return actor, nil
		}
		return nil, err
	}

	actor.Role = role
	return actor, nil
}

// CanAccessFile returns the verdict for an action on a file. Rules in
// precedence order, first match wins:
//  1. different tenant: deny, regardless of any id collision
//  2. Admin role: allow
//  3. actor owns the file: allow
//  4. read actions: file id in the primary role's file allow-list
//  5. read actions: the file's containing folder in the folder allow-list
//     (grants cover files directly inside the folder, not nested subfolders)
//  6. deny
func CanAccessFile(a *Actor, file *models.File, action Action) Verdict {
	if a.User == nil || file == nil || file.TenantID != a.User.TenantID {
		return Deny
	}
	if a.IsAdmin() {
		return Allow
	}
	if file.OwnerID == a.User.ID {
		return Allow
	}
	if action.IsWrite() {
		return Deny
	}
	if a.Role == nil {
		return Deny
	}
	if a.Role.AllowsFile(file.ID) {
		return Allow
	}
	if file.FolderID != nil && a.Role.AllowsFolder(*file.FolderID) {
		return Allow
	}
	return Deny
}

// CanAccessFolder returns the verdict for an action on a folder. Same
// precedence as files, minus the containing-folder rule: a folder is
// readable through the allow-list only when its own id is granted. Grants
// do not inherit downward through the tree.
func CanAccessFolder(a *Actor, folder *models.Folder, action Action) Verdict {
	if a.User == nil || folder == nil || folder.TenantID != a.User.TenantID {
		return Deny
	}
	if a.IsAdmin() {
		return Allow
	}
	if folder.OwnerID == a.User.ID {
		return Allow
	}
	if action.IsWrite() {
		return Deny
	}
	if a.Role == nil {
		return Deny
	}
	if a.Role.AllowsFolder(folder.ID) {
		return Allow
	}
	return Deny
}
