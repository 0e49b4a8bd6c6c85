package access

import (
	"testing"

	models "docvault/internal/domain/models/docstore"
)

func TestFilterFilesFolderGrantDoesNotInherit(t *testing.T) {
	// Viewer granted folder fo-f1. Files directly inside fo-f1 are visible;
	// files in its subfolder fo-f1-sub are not.
	f1 := "fo-f1"
	f1sub := "fo-f1-sub"

	actor := &Actor{
		User: testUser("u1", "t1", "Viewer"),
		Role: testRole("t1", "Viewer", []string{f1}, nil),
	}

	files := []models.File{
		{ID: "direct", TenantID: "t1", OwnerID: "u2", FolderID: &f1},
		{ID: "nested", TenantID: "t1", OwnerID: "u2", FolderID: &f1sub},
		{ID: "mine", TenantID: "t1", OwnerID: "u1", FolderID: &f1sub},
	}

	got := FilterFiles(actor, files)
	if len(got) != 2 {
		t.Fatalf("FilterFiles() returned %d files, want 2", len(got))
	}
	if got[0].ID != "direct" || got[1].ID != "mine" {
		t.Errorf("FilterFiles() = [%s %s], want [direct mine]", got[0].ID, got[1].ID)
	}
}

func TestFilterFilesAdminPassthrough(t *testing.T) {
	actor := &Actor{User: testUser("u-admin", "t1", models.RoleAdmin)}

	files := []models.File{
		{ID: "a", TenantID: "t1", OwnerID: "u2"},
		{ID: "b", TenantID: "t1", OwnerID: "u3"},
	}

	got := FilterFiles(actor, files)
	if len(got) != len(files) {
		t.Errorf("FilterFiles() for admin returned %d files, want %d", len(got), len(files))
	}
}

func TestFilterFilesEmptyInput(t *testing.T) {
	actor := &Actor{User: testUser("u1", "t1", "Viewer")}

	got := FilterFiles(actor, nil)
	if got == nil {
		t.Error("FilterFiles() returned nil, want empty slice")
	}
	if len(got) != 0 {
		t.Errorf("FilterFiles() returned %d files, want 0", len(got))
	}
}

func TestFilterFolders(t *testing.T) {
	tests := []struct {
		name    string
		actor   *Actor
		folders []models.Folder
		wantIDs []string
	}{
		{
			name: "owner, grant and miss",
			actor: &Actor{
				User: testUser("u1", "t1", "Viewer"),
				Role: testRole("t1", "Viewer", []string{"fo-granted"}, nil),
			},
			folders: []models.Folder{
				{ID: "fo-mine", TenantID: "t1", OwnerID: "u1"},
				{ID: "fo-granted", TenantID: "t1", OwnerID: "u2"},
				{ID: "fo-hidden", TenantID: "t1", OwnerID: "u2"},
			},
			wantIDs: []string{"fo-mine", "fo-granted"},
		},
		{
			name:  "missing role record keeps only owned folders",
			actor: &Actor{User: testUser("u1", "t1", "Ghost")},
			folders: []models.Folder{
				{ID: "fo-mine", TenantID: "t1", OwnerID: "u1"},
				{ID: "fo-other", TenantID: "t1", OwnerID: "u2"},
			},
			wantIDs: []string{"fo-mine"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := FilterFolders(tt.actor, tt.folders)
			if len(got) != len(tt.wantIDs) {
				t.Fatalf("FilterFolders() returned %d folders, want %d", len(got), len(tt.wantIDs))
			}
			for i, id := range tt.wantIDs {
				if got[i].ID != id {
					t.Errorf("FilterFolders()[%d] = %s, want %s", i, got[i].ID, id)
				}
			}
		})
	}
}
