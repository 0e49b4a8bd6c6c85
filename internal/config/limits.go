package config

const (
	// MaxTenantNameLength is the maximum length for tenant names.
	// Limited to 255 to fit in PostgreSQL VARCHAR(255) and provide
	// reasonable UX (names should be short and descriptive).
	MaxTenantNameLength = 255

	// MaxFolderNameLength is the maximum length for folder names.
	// Limited to 255 to fit in PostgreSQL VARCHAR(255) and provide
	// reasonable UX (names should be short and descriptive).
	MaxFolderNameLength = 255

	// MaxFileNameLength is the maximum length for file names.
	// Same as folder names for consistency.
	MaxFileNameLength = 255

	// MaxRoleNameLength is the maximum length for role names.
	MaxRoleNameLength = 100

	// MaxUploadBytes is the upload size cap. Requests with larger bodies
	// are rejected before any content is stored.
	MaxUploadBytes = 100 << 20

	// MinPasswordLength is the minimum accepted password length.
	MinPasswordLength = 8
)
