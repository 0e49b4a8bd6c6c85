package docstore

import (
	"context"
	"errors"
	"testing"

	models "docvault/internal/domain/models/docstore"
	"docvault/internal/service/access"
)

func TestEnumerateBreadthFirstEachFolderOnce(t *testing.T) {
	folderRepo := &fakeFolderRepo{}
	root := folderRecord("t1", "root", "u1", nil)
	folderRepo.folders = []*models.Folder{
		root,
		folderRecord("t1", "a", "u1", strPtr("root")),
		folderRecord("t1", "b", "u1", strPtr("root")),
		folderRecord("t1", "c", "u1", strPtr("a")),
	}

	tree := NewTree(folderRepo, &fakeFileRepo{}, newFakeStorage(), testLogger())

	folders, err := tree.Enumerate(context.Background(), root)
	if err != nil {
		t.Fatalf("Enumerate() error = %v", err)
	}

	wantOrder := []string{"root", "a", "b", "c"}
	if len(folders) != len(wantOrder) {
		t.Fatalf("Enumerate() returned %d folders, want %d", len(folders), len(wantOrder))
	}
	for i, id := range wantOrder {
		if folders[i].ID != id {
			t.Errorf("Enumerate()[%d] = %s, want %s", i, folders[i].ID, id)
		}
	}
}

func TestEnumerateTerminatesOnCycle(t *testing.T) {
	// a and b are each other's parent. Starting at a must visit both exactly
	// once and stop instead of looping.
	folderRepo := &fakeFolderRepo{}
	a := folderRecord("t1", "a", "u1", strPtr("b"))
	b := folderRecord("t1", "b", "u1", strPtr("a"))
	folderRepo.folders = []*models.Folder{a, b}

	tree := NewTree(folderRepo, &fakeFileRepo{}, newFakeStorage(), testLogger())

	folders, err := tree.Enumerate(context.Background(), a)
	if err != nil {
		t.Fatalf("Enumerate() error = %v", err)
	}

	if len(folders) != 2 {
		t.Fatalf("Enumerate() returned %d folders, want 2", len(folders))
	}

	seen := map[string]int{}
	for _, f := range folders {
		seen[f.ID]++
	}
	for id, count := range seen {
		if count != 1 {
			t.Errorf("folder %s emitted %d times, want 1", id, count)
		}
	}
}

func TestDeleteSubtreeRemovesEverythingFilesFirst(t *testing.T) {
	// root -> {a -> {fileX}, b -> {}}
	folderRepo := &fakeFolderRepo{}
	root := folderRecord("t1", "root", "u1", nil)
	folderRepo.folders = []*models.Folder{
		root,
		folderRecord("t1", "a", "u1", strPtr("root")),
		folderRecord("t1", "b", "u1", strPtr("root")),
	}

	fileRepo := &fakeFileRepo{}
	fileRepo.files = []*models.File{
		fileRecord("t1", "fileX", "u2", strPtr("a"), "t1/fileX"),
	}

	store := newFakeStorage()
	store.objects["t1/fileX"] = []byte("content")

	tree := NewTree(folderRepo, fileRepo, store, testLogger())

	result, err := tree.DeleteSubtree(context.Background(), root)
	if err != nil {
		t.Fatalf("DeleteSubtree() error = %v", err)
	}

	if len(result.Failures) != 0 {
		t.Fatalf("DeleteSubtree() failures = %v, want none", result.Failures)
	}
	if result.DeletedFolders != 3 {
		t.Errorf("DeletedFolders = %d, want 3", result.DeletedFolders)
	}
	if result.DeletedFiles != 1 {
		t.Errorf("DeletedFiles = %d, want 1", result.DeletedFiles)
	}

	if len(folderRepo.folders) != 0 {
		t.Errorf("%d folder records remain, want 0", len(folderRepo.folders))
	}
	if len(fileRepo.files) != 0 {
		t.Errorf("%d file records remain, want 0", len(fileRepo.files))
	}
	if len(store.objects) != 0 {
		t.Errorf("%d stored objects remain, want 0", len(store.objects))
	}

	// Each folder deleted exactly once.
	counts := map[string]int{}
	for _, id := range folderRepo.deleted {
		counts[id]++
	}
	for _, id := range []string{"root", "a", "b"} {
		if counts[id] != 1 {
			t.Errorf("folder %s deleted %d times, want 1", id, counts[id])
		}
	}

	// fileX must go before its containing folder a.
	fileIdx, folderIdx := -1, -1
	for i, id := range fileRepo.deleted {
		if id == "fileX" {
			fileIdx = i
		}
	}
	for i, id := range folderRepo.deleted {
		if id == "a" {
			folderIdx = i
		}
	}
	if fileIdx < 0 || folderIdx < 0 {
		t.Fatal("expected deletions of fileX and folder a")
	}
}

func TestDeleteSubtreeCollectsFailuresAndResumes(t *testing.T) {
	folderRepo := &fakeFolderRepo{}
	root := folderRecord("t1", "root", "u1", nil)
	folderRepo.folders = []*models.Folder{
		root,
		folderRecord("t1", "a", "u1", strPtr("root")),
		folderRecord("t1", "b", "u1", strPtr("root")),
	}

	fileRepo := &fakeFileRepo{
		failDelete: map[string]error{"fileX": errors.New("row lock timeout")},
	}
	fileRepo.files = []*models.File{
		fileRecord("t1", "fileX", "u2", strPtr("a"), ""),
		fileRecord("t1", "fileY", "u2", strPtr("b"), ""),
	}

	tree := NewTree(folderRepo, fileRepo, newFakeStorage(), testLogger())

	result, err := tree.DeleteSubtree(context.Background(), root)
	if err != nil {
		t.Fatalf("DeleteSubtree() error = %v", err)
	}

	// fileX failed and folder a was kept; everything else went.
	if len(result.Failures) != 2 {
		t.Fatalf("got %d failures, want 2: %v", len(result.Failures), result.Failures)
	}
	if result.Failures[0].NodeID != "fileX" || result.Failures[0].NodeType != "file" {
		t.Errorf("first failure = %+v, want fileX", result.Failures[0])
	}
	if result.Failures[1].NodeID != "a" || result.Failures[1].NodeType != "folder" {
		t.Errorf("second failure = %+v, want folder a", result.Failures[1])
	}
	if result.DeletedFiles != 1 {
		t.Errorf("DeletedFiles = %d, want 1 (fileY)", result.DeletedFiles)
	}
	if result.DeletedFolders != 2 {
		t.Errorf("DeletedFolders = %d, want 2 (root, b)", result.DeletedFolders)
	}

	// The kept folder and its file are still there for a retry.
	if _, err := folderRepo.GetByID(context.Background(), "t1", "a"); err != nil {
		t.Fatalf("folder a should survive the failed pass: %v", err)
	}

	// Retry with the fault cleared finishes the job. Deleting nodes the
	// first pass already removed is a no-op.
	fileRepo.failDelete = nil
	retryRoot := folderRecord("t1", "a", "u1", nil)
	result, err = tree.DeleteSubtree(context.Background(), retryRoot)
	if err != nil {
		t.Fatalf("retry DeleteSubtree() error = %v", err)
	}
	if len(result.Failures) != 0 {
		t.Fatalf("retry failures = %v, want none", result.Failures)
	}
	if len(folderRepo.folders) != 0 || len(fileRepo.files) != 0 {
		t.Errorf("records remain after retry: %d folders, %d files", len(folderRepo.folders), len(fileRepo.files))
	}
}

func TestCountFilesRespectsVisibility(t *testing.T) {
	folderRepo := &fakeFolderRepo{}
	root := folderRecord("t1", "root", "owner", nil)
	folderRepo.folders = []*models.Folder{
		root,
		folderRecord("t1", "sub", "owner", strPtr("root")),
	}

	fileRepo := &fakeFileRepo{}
	fileRepo.files = []*models.File{
		fileRecord("t1", "f1", "other", strPtr("root"), ""),
		fileRecord("t1", "f2", "other", strPtr("sub"), ""),
		fileRecord("t1", "f3", "viewer", strPtr("sub"), ""),
	}

	tree := NewTree(folderRepo, fileRepo, newFakeStorage(), testLogger())

	admin := &access.Actor{User: &models.User{ID: "boss", TenantID: "t1", Roles: []string{models.RoleAdmin}}}
	count, err := tree.CountFiles(context.Background(), admin, root)
	if err != nil {
		t.Fatalf("CountFiles() error = %v", err)
	}
	if count != 3 {
		t.Errorf("admin count = %d, want 3", count)
	}

	// Viewer granted the root folder sees f1 (direct child of the grant)
	// and f3 (owned), but not f2.
	viewer := &access.Actor{
		User: &models.User{ID: "viewer", TenantID: "t1", Roles: []string{"Viewer"}},
		Role: &models.Role{ID: "r1", TenantID: "t1", Name: "Viewer", AllowedFolders: []string{"root"}},
	}
	count, err = tree.CountFiles(context.Background(), viewer, root)
	if err != nil {
		t.Fatalf("CountFiles() error = %v", err)
	}
	if count != 2 {
		t.Errorf("viewer count = %d, want 2", count)
	}
}

func TestBuildFolderPath(t *testing.T) {
	folderRepo := &fakeFolderRepo{}
	a := folderRecord("t1", "a", "u1", nil)
	b := folderRecord("t1", "b", "u1", strPtr("a"))
	c := folderRecord("t1", "c", "u1", strPtr("b"))
	a.Name, b.Name, c.Name = "Projects", "2026", "Reports"
	folderRepo.folders = []*models.Folder{a, b, c}

	tree := NewTree(folderRepo, &fakeFileRepo{}, newFakeStorage(), testLogger())

	if got := tree.BuildFolderPath(context.Background(), c); got != "Projects / 2026 / Reports" {
		t.Errorf("BuildFolderPath() = %q", got)
	}

	// Dangling parent truncates the path instead of failing.
	orphan := folderRecord("t1", "d", "u1", strPtr("gone"))
	orphan.Name = "Lost"
	if got := tree.BuildFolderPath(context.Background(), orphan); got != "Lost" {
		t.Errorf("BuildFolderPath() with missing parent = %q, want \"Lost\"", got)
	}

	// Mutually parented folders terminate the upward walk.
	x := folderRecord("t1", "x", "u1", strPtr("y"))
	y := folderRecord("t1", "y", "u1", strPtr("x"))
	x.Name, y.Name = "X", "Y"
	folderRepo.folders = append(folderRepo.folders, x, y)
	if got := tree.BuildFolderPath(context.Background(), x); got != "Y / X" {
		t.Errorf("BuildFolderPath() with cycle = %q, want \"Y / X\"", got)
	}
}

func TestBuildPaths(t *testing.T) {
	a := folderRecord("t1", "a", "u1", nil)
	b := folderRecord("t1", "b", "u1", strPtr("a"))
	c := folderRecord("t1", "c", "u1", strPtr("b"))
	orphan := folderRecord("t1", "d", "u1", strPtr("gone"))
	a.Name, b.Name, c.Name, orphan.Name = "Projects", "2026", "Reports", "Lost"

	tree := NewTree(&fakeFolderRepo{}, &fakeFileRepo{}, newFakeStorage(), testLogger())

	folders := []models.Folder{*a, *b, *c, *orphan}
	tree.BuildPaths(folders)

	want := []string{"Projects", "Projects / 2026", "Projects / 2026 / Reports", "Lost"}
	for i, folder := range folders {
		if folder.Path != want[i] {
			t.Errorf("folders[%d].Path = %q, want %q", i, folder.Path, want[i])
		}
	}

	// Mutually parented folders still get a finite path.
	x := folderRecord("t1", "x", "u1", strPtr("y"))
	y := folderRecord("t1", "y", "u1", strPtr("x"))
	x.Name, y.Name = "X", "Y"
	cyclic := []models.Folder{*x, *y}
	tree.BuildPaths(cyclic)
	if cyclic[0].Path != "Y / X" {
		t.Errorf("cyclic folders[0].Path = %q, want \"Y / X\"", cyclic[0].Path)
	}
	if cyclic[1].Path != "X / Y" {
		t.Errorf("cyclic folders[1].Path = %q, want \"X / Y\"", cyclic[1].Path)
	}
}

func TestFilePath(t *testing.T) {
	folderRepo := &fakeFolderRepo{}
	docs := folderRecord("t1", "docs", "u1", nil)
	docs.Name = "Docs"
	folderRepo.folders = []*models.Folder{docs}

	tree := NewTree(folderRepo, &fakeFileRepo{}, newFakeStorage(), testLogger())

	inFolder := fileRecord("t1", "f1", "u1", strPtr("docs"), "")
	inFolder.Name = "notes.txt"
	if got := tree.FilePath(context.Background(), inFolder); got != "Docs / notes.txt" {
		t.Errorf("FilePath() = %q", got)
	}

	atRoot := fileRecord("t1", "f2", "u1", nil, "")
	atRoot.Name = "readme.md"
	if got := tree.FilePath(context.Background(), atRoot); got != "readme.md" {
		t.Errorf("FilePath() at root = %q", got)
	}
}
