package access

import (
	"testing"

	models "docvault/internal/domain/models/docstore"
)

func testUser(id, tenantID string, roles ...string) *models.User {
	return &models.User{
		ID:       id,
		TenantID: tenantID,
		Email:    id + "@example.com",
		Roles:    models.NormalizeRoles(roles, ""),
	}
}

func testRole(tenantID, name string, allowedFolders, allowedFiles []string) *models.Role {
	return &models.Role{
		ID:             "role-" + name,
		TenantID:       tenantID,
		Name:           name,
		AllowedFolders: allowedFolders,
		AllowedFiles:   allowedFiles,
	}
}

func TestCanAccessFileAdmin(t *testing.T) {
	admin := &Actor{User: testUser("u-admin", "t1", models.RoleAdmin)}

	sameTenant := &models.File{ID: "f1", TenantID: "t1", OwnerID: "u-other"}
	otherTenant := &models.File{ID: "f1", TenantID: "t2", OwnerID: "u-other"}

	actions := []Action{ActionRead, ActionMove, ActionRename, ActionDelete}
	for _, action := range actions {
		if got := CanAccessFile(admin, sameTenant, action); got != Allow {
			t.Errorf("admin action %d on same-tenant file = %v, want Allow", action, got)
		}
		if got := CanAccessFile(admin, otherTenant, action); got != Deny {
			t.Errorf("admin action %d on cross-tenant file = %v, want Deny", action, got)
		}
	}
}

func TestCanAccessFileRead(t *testing.T) {
	folderID := "fo-reports"
	otherFolderID := "fo-other"

	tests := []struct {
		name  string
		actor *Actor
		file  *models.File
		want  Verdict
	}{
		{
			name:  "owner reads own file",
			actor: &Actor{User: testUser("u1", "t1", "Viewer")},
			file:  &models.File{ID: "f1", TenantID: "t1", OwnerID: "u1"},
			want:  Allow,
		},
		{
			name: "file allow-list grants read",
			actor: &Actor{
				User: testUser("u1", "t1", "Viewer"),
				Role: testRole("t1", "Viewer", nil, []string{"f1"}),
			},
			file: &models.File{ID: "f1", TenantID: "t1", OwnerID: "u2"},
			want: Allow,
		},
		{
			name: "containing folder grant covers direct child file",
			actor: &Actor{
				User: testUser("u1", "t1", "Viewer"),
				Role: testRole("t1", "Viewer", []string{folderID}, nil),
			},
			file: &models.File{ID: "f1", TenantID: "t1", OwnerID: "u2", FolderID: &folderID},
			want: Allow,
		},
		{
			name: "folder grant does not cover file in a different folder",
			actor: &Actor{
				User: testUser("u1", "t1", "Viewer"),
				Role: testRole("t1", "Viewer", []string{folderID}, nil),
			},
			file: &models.File{ID: "f1", TenantID: "t1", OwnerID: "u2", FolderID: &otherFolderID},
			want: Deny,
		},
		{
			name: "no grant denies read",
			actor: &Actor{
				User: testUser("u1", "t1", "Viewer"),
				Role: testRole("t1", "Viewer", nil, nil),
			},
			file: &models.File{ID: "f1", TenantID: "t1", OwnerID: "u2"},
			want: Deny,
		},
		{
			name: "root-level file only reachable through direct grant or ownership",
			actor: &Actor{
				User: testUser("u1", "t1", "Viewer"),
				Role: testRole("t1", "Viewer", []string{folderID}, nil),
			},
			file: &models.File{ID: "f1", TenantID: "t1", OwnerID: "u2", FolderID: nil},
			want: Deny,
		},
		{
			name: "cross-tenant file denied even when allow-listed",
			actor: &Actor{
				User: testUser("u1", "t1", "Viewer"),
				Role: testRole("t1", "Viewer", nil, []string{"f1"}),
			},
			file: &models.File{ID: "f1", TenantID: "t2", OwnerID: "u2"},
			want: Deny,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CanAccessFile(tt.actor, tt.file, ActionRead); got != tt.want {
				t.Errorf("CanAccessFile() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestCanAccessFileWriteRequiresOwnership(t *testing.T) {
	folderID := "fo-reports"

	// Full read grants through both allow-lists, no ownership.
	actor := &Actor{
		User: testUser("u1", "t1", "Editor"),
		Role: testRole("t1", "Editor", []string{folderID}, []string{"f1"}),
	}
	file := &models.File{ID: "f1", TenantID: "t1", OwnerID: "u2", FolderID: &folderID}

	if got := CanAccessFile(actor, file, ActionRead); got != Allow {
		t.Fatalf("read with grants = %v, want Allow", got)
	}

	for _, action := range []Action{ActionMove, ActionRename, ActionDelete} {
		if got := CanAccessFile(actor, file, action); got != Deny {
			t.Errorf("write action %d without ownership = %v, want Deny", action, got)
		}
	}

	owned := &models.File{ID: "f2", TenantID: "t1", OwnerID: "u1"}
	for _, action := range []Action{ActionMove, ActionRename, ActionDelete} {
		if got := CanAccessFile(actor, owned, action); got != Allow {
			t.Errorf("write action %d on own file = %v, want Allow", action, got)
		}
	}
}

func TestCanAccessFileMissingRoleFailsClosed(t *testing.T) {
	// Role record was deleted after assignment: Actor.Role is nil and every
	// allow-list check must miss rather than error or allow.
	actor := &Actor{User: testUser("u1", "t1", "Ghost")}

	foreign := &models.File{ID: "f1", TenantID: "t1", OwnerID: "u2"}
	if got := CanAccessFile(actor, foreign, ActionRead); got != Deny {
		t.Errorf("nil role on foreign file = %v, want Deny", got)
	}

	owned := &models.File{ID: "f2", TenantID: "t1", OwnerID: "u1"}
	if got := CanAccessFile(actor, owned, ActionRead); got != Allow {
		t.Errorf("nil role on own file = %v, want Allow", got)
	}
}

func TestCanAccessFolder(t *testing.T) {
	tests := []struct {
		name   string
		actor  *Actor
		folder *models.Folder
		action Action
		want   Verdict
	}{
		{
			name:   "admin reads any same-tenant folder",
			actor:  &Actor{User: testUser("u-admin", "t1", models.RoleAdmin)},
			folder: &models.Folder{ID: "fo1", TenantID: "t1", OwnerID: "u2"},
			action: ActionRead,
			want:   Allow,
		},
		{
			name:   "admin denied cross-tenant",
			actor:  &Actor{User: testUser("u-admin", "t1", models.RoleAdmin)},
			folder: &models.Folder{ID: "fo1", TenantID: "t2", OwnerID: "u2"},
			action: ActionRead,
			want:   Deny,
		},
		{
			name:   "owner deletes own folder",
			actor:  &Actor{User: testUser("u1", "t1", "Viewer")},
			folder: &models.Folder{ID: "fo1", TenantID: "t1", OwnerID: "u1"},
			action: ActionDelete,
			want:   Allow,
		},
		{
			name: "allow-list grants folder read",
			actor: &Actor{
				User: testUser("u1", "t1", "Viewer"),
				Role: testRole("t1", "Viewer", []string{"fo1"}, nil),
			},
			folder: &models.Folder{ID: "fo1", TenantID: "t1", OwnerID: "u2"},
			action: ActionRead,
			want:   Allow,
		},
		{
			name: "allow-list never grants rename",
			actor: &Actor{
				User: testUser("u1", "t1", "Viewer"),
				Role: testRole("t1", "Viewer", []string{"fo1"}, nil),
			},
			folder: &models.Folder{ID: "fo1", TenantID: "t1", OwnerID: "u2"},
			action: ActionRename,
			want:   Deny,
		},
		{
			name: "grant on parent does not reach subfolder",
			actor: &Actor{
				User: testUser("u1", "t1", "Viewer"),
				Role: testRole("t1", "Viewer", []string{"fo-parent"}, nil),
			},
			folder: &models.Folder{ID: "fo-child", TenantID: "t1", OwnerID: "u2"},
			action: ActionRead,
			want:   Deny,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CanAccessFolder(tt.actor, tt.folder, tt.action); got != tt.want {
				t.Errorf("CanAccessFolder() = %v, want %v", got, tt.want)
			}
		})
	}
}
