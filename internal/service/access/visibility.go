package access

import (
	models "docvault/internal/domain/models/docstore"
)

// FileVisible reports whether a single file shows up for the actor in
// listings, search results and mention pickers. It is the read verdict:
// keeping one definition here keeps every listing surface consistent.
func FileVisible(a *Actor, file *models.File) bool {
	return CanAccessFile(a, file, ActionRead) == Allow
}

// FolderVisible reports whether the actor can read the folder itself.
func FolderVisible(a *Actor, folder *models.Folder) bool {
	return CanAccessFolder(a, folder, ActionRead) == Allow
}

// FilterFiles returns the subset of files the actor may read, preserving
// input order. Admins pass everything through untouched.
func FilterFiles(a *Actor, files []models.File) []models.File {
	if a.IsAdmin() {
		return files
	}
	visible := make([]models.File, 0, len(files))
	for i := range files {
		if FileVisible(a, &files[i]) {
			visible = append(visible, files[i])
		}
	}
	return visible
}

// FilterFolders returns the subset of folders the actor may read, preserving
// input order.
func FilterFolders(a *Actor, folders []models.Folder) []models.Folder {
	if a.IsAdmin() {
		return folders
	}
	visible := make([]models.Folder, 0, len(folders))
	for i := range folders {
		if FolderVisible(a, &folders[i]) {
			visible = append(visible, folders[i])
		}
	}
	return visible
}
