package docstore

import (
	"time"
)

// External storage provider identifiers, as stored in
// File.ExternalStorageType and ExternalCredential.Provider.
const (
	ProviderGoogleDrive = "googledrive"
	ProviderOneDrive    = "onedrive"
)

// File is a stored document. Exactly one of the two location forms is
// populated: StoragePath for files held by our own storage backend, or
// ExternalFileID + ExternalStorageType for files living on a third-party
// drive. Never both, never neither.
type File struct {
	ID       string  `json:"id" db:"id"`
	TenantID string  `json:"tenant_id" db:"tenant_id"`
	OwnerID  string  `json:"owner_id" db:"owner_id"`
	FolderID *string `json:"folder_id" db:"folder_id"` // NULL = tenant root
	Name     string  `json:"name" db:"name"`
	Path     string  `json:"path,omitempty"` // Computed display path, not stored in DB

	StoragePath         *string `json:"-" db:"storage_path"`
	ExternalFileID      *string `json:"external_file_id,omitempty" db:"external_file_id"`
	ExternalStorageType *string `json:"external_storage_type,omitempty" db:"external_storage_type"`

	SizeBytes   int64  `json:"size_bytes" db:"size_bytes"`
	ContentType string `json:"content_type" db:"content_type"`

	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// IsExternal reports whether the file lives on a third-party drive.
func (f *File) IsExternal() bool {
	return f.ExternalFileID != nil && f.ExternalStorageType != nil
}

// LocationValid checks the exactly-one-form invariant.
func (f *File) LocationValid() bool {
	local := f.StoragePath != nil
	external := f.ExternalFileID != nil && f.ExternalStorageType != nil
	return local != external
}
