package directory

import (
	"context"
	"errors"
	"testing"

	"docvault/internal/domain"
	models "docvault/internal/domain/models/docstore"
	dirSvc "docvault/internal/domain/services/directory"
)

func newRoleFixture() (dirSvc.RoleService, *fakeRoleRepo, *fakeUserRepo) {
	users := &fakeUserRepo{users: []*models.User{
		{ID: "admin-1", TenantID: "tenant-1", Email: "admin@acme.test", Roles: []string{models.RoleAdmin}},
		{ID: "member-1", TenantID: "tenant-1", Email: "member@acme.test", Roles: []string{models.RoleUser}},
		{ID: "viewer-1", TenantID: "tenant-1", Email: "viewer@acme.test", Roles: []string{"Viewer"}},
	}}
	roles := &fakeRoleRepo{roles: []*models.Role{
		{ID: "role-admin", TenantID: "tenant-1", Name: models.RoleAdmin},
		{ID: "role-user", TenantID: "tenant-1", Name: models.RoleUser},
		{ID: "role-viewer", TenantID: "tenant-1", Name: "Viewer"},
		{ID: "role-idle", TenantID: "tenant-1", Name: "Contractor"},
	}}
	return NewRoleService(roles, users, testLogger()), roles, users
}

func TestCreateRole(t *testing.T) {
	svc, _, _ := newRoleFixture()

	role, err := svc.CreateRole(context.Background(), "admin-1", &dirSvc.CreateRoleRequest{
		Name:        "  Auditor  ",
		Description: "Read-only compliance access",
	})
	if err != nil {
		t.Fatalf("CreateRole: %v", err)
	}
	if role.Name != "Auditor" {
		t.Errorf("name = %q, want trimmed", role.Name)
	}
	if len(role.AllowedFolders) != 0 || len(role.AllowedFiles) != 0 {
		t.Error("new role should start with empty allow-lists")
	}
}

func TestCreateRoleDuplicateNameConflicts(t *testing.T) {
	svc, _, _ := newRoleFixture()

	_, err := svc.CreateRole(context.Background(), "admin-1", &dirSvc.CreateRoleRequest{Name: "Viewer"})
	if !errors.Is(err, domain.ErrConflict) {
		t.Fatalf("err = %v, want conflict", err)
	}
}

func TestCreateRoleRequiresAdmin(t *testing.T) {
	svc, _, _ := newRoleFixture()

	_, err := svc.CreateRole(context.Background(), "member-1", &dirSvc.CreateRoleRequest{Name: "Backdoor"})
	var ferr *domain.ForbiddenError
	if !errors.As(err, &ferr) {
		t.Fatalf("err = %v, want forbidden", err)
	}
}

func TestUpdateRolePermissionsReplacesLists(t *testing.T) {
	svc, roles, _ := newRoleFixture()
	roles.roles[2].AllowedFolders = []string{"folder-old"}

	role, err := svc.UpdateRolePermissions(context.Background(), "admin-1", "role-viewer", &dirSvc.UpdateRolePermissionsRequest{
		AllowedFolders: []string{"folder-a", "folder-a", "folder-b", ""},
		AllowedFiles:   []string{"file-a"},
	})
	if err != nil {
		t.Fatalf("UpdateRolePermissions: %v", err)
	}
	if len(role.AllowedFolders) != 2 {
		t.Errorf("allowed folders = %v, want deduped [folder-a folder-b]", role.AllowedFolders)
	}
	stored, _ := roles.GetByID(context.Background(), "tenant-1", "role-viewer")
	if stored.AllowsFolder("folder-old") {
		t.Error("old grant survived a full replace")
	}
	if !stored.AllowsFolder("folder-a") || !stored.AllowsFile("file-a") {
		t.Error("new grants not stored")
	}
}

func TestUpdateRolePermissionsClearsWhenOmitted(t *testing.T) {
	svc, roles, _ := newRoleFixture()
	roles.roles[2].AllowedFolders = []string{"folder-old"}
	roles.roles[2].AllowedFiles = []string{"file-old"}

	role, err := svc.UpdateRolePermissions(context.Background(), "admin-1", "role-viewer", &dirSvc.UpdateRolePermissionsRequest{})
	if err != nil {
		t.Fatalf("UpdateRolePermissions: %v", err)
	}
	if len(role.AllowedFolders) != 0 || len(role.AllowedFiles) != 0 {
		t.Errorf("lists = %v / %v, want both cleared", role.AllowedFolders, role.AllowedFiles)
	}
}

func TestDeleteRoleProtectsBuiltins(t *testing.T) {
	svc, _, _ := newRoleFixture()

	for _, id := range []string{"role-admin", "role-user"} {
		err := svc.DeleteRole(context.Background(), "admin-1", id)
		var ferr *domain.ForbiddenError
		if !errors.As(err, &ferr) {
			t.Errorf("delete %s: err = %v, want forbidden", id, err)
		}
	}
}

func TestDeleteRoleStillAssignedConflicts(t *testing.T) {
	svc, _, _ := newRoleFixture()

	err := svc.DeleteRole(context.Background(), "admin-1", "role-viewer")
	if !errors.Is(err, domain.ErrConflict) {
		t.Fatalf("err = %v, want conflict while viewer-1 holds the role", err)
	}
}

func TestDeleteRoleUnassignedSucceeds(t *testing.T) {
	svc, roles, _ := newRoleFixture()

	if err := svc.DeleteRole(context.Background(), "admin-1", "role-idle"); err != nil {
		t.Fatalf("DeleteRole: %v", err)
	}
	if _, err := roles.GetByID(context.Background(), "tenant-1", "role-idle"); !errors.Is(err, domain.ErrNotFound) {
		t.Error("role still present after delete")
	}
}

func TestListRolesOpenToMembers(t *testing.T) {
	svc, _, _ := newRoleFixture()

	list, err := svc.ListRoles(context.Background(), "member-1")
	if err != nil {
		t.Fatalf("ListRoles: %v", err)
	}
	if len(list) != 4 {
		t.Errorf("listed %d roles, want 4", len(list))
	}
}
