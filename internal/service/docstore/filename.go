package docstore

import (
	"fmt"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/google/uuid"

	"docvault/internal/config"
	"docvault/internal/domain"
	docsySvc "docvault/internal/domain/services/docstore"
)

var allowedExtensions = map[string]bool{
	".pdf": true, ".doc": true, ".docx": true, ".xls": true, ".xlsx": true,
	".ppt": true, ".pptx": true,
	".txt": true, ".md": true, ".rtf": true, ".csv": true,
	".jpg": true, ".jpeg": true, ".png": true, ".gif": true, ".bmp": true,
	".svg": true, ".webp": true,
	".mp4": true, ".avi": true, ".mov": true, ".wmv": true,
	".mp3": true, ".wav": true, ".ogg": true,
	".zip": true, ".rar": true, ".7z": true,
	".js": true, ".py": true, ".java": true, ".html": true, ".css": true,
	".json": true, ".xml": true,
}

// dangerousExtensions always lose, even against the allowed set.
var dangerousExtensions = map[string]bool{
	".exe": true, ".bat": true, ".cmd": true, ".com": true, ".pif": true,
	".scr": true, ".vbs": true, ".jar": true, ".sh": true, ".ps1": true,
	".msi": true, ".dll": true, ".sys": true, ".drv": true,
}

var unsafeFilenameChars = regexp.MustCompile(`[<>:"|?*\x00-\x1f]`)

// SanitizeFilename neutralizes path traversal and unsafe characters in a
// user-supplied filename. Traversal sequences and separators are removed,
// unsafe characters dropped, surrounding whitespace trimmed and the result
// capped at the filename length limit preserving the extension. A name
// that does not survive sanitization falls back to a generated one.
func SanitizeFilename(name string) string {
	s := strings.NewReplacer("..", "", "/", "", "\\", "").Replace(name)
	s = unsafeFilenameChars.ReplaceAllString(s, "")
	s = strings.TrimSpace(s)

	if runes := []rune(s); len(runes) > config.MaxFileNameLength {
		ext := filepath.Ext(s)
		if len(ext) >= config.MaxFileNameLength {
			ext = ""
		}
		s = string(runes[:config.MaxFileNameLength-len(ext)]) + ext
	}

	if s == "" || s == "." || s == ".." {
		s = "file_" + strings.ReplaceAll(uuid.New().String(), "-", "")[:8]
	}

	return s
}

// validateUpload applies the upload rules (size cap, extension allow/deny
// sets) and returns the sanitized filename to store.
func validateUpload(upload *docsySvc.UploadedFile) (string, error) {
	if upload == nil || upload.Filename == "" {
		return "", fmt.Errorf("%w: no file provided", domain.ErrValidation)
	}
	if upload.Size > config.MaxUploadBytes {
		return "", fmt.Errorf("%w: file too large, maximum size is %dMB", domain.ErrValidation, config.MaxUploadBytes/(1024*1024))
	}
	if upload.Size == 0 {
		return "", fmt.Errorf("%w: empty files cannot be uploaded", domain.ErrValidation)
	}

	name := SanitizeFilename(upload.Filename)

	ext := strings.ToLower(filepath.Ext(name))
	if ext == "" {
		return "", fmt.Errorf("%w: filename has no extension", domain.ErrValidation)
	}
	if dangerousExtensions[ext] {
		return "", fmt.Errorf("%w: file type %s is not permitted", domain.ErrValidation, ext)
	}
	if !allowedExtensions[ext] {
		return "", fmt.Errorf("%w: unsupported file type %s", domain.ErrValidation, ext)
	}

	return name, nil
}

// storageName builds the name content is stored under. The uuid prefix
// keeps storage names unique even when display names collide across
// folders.
func storageName(sanitized string) string {
	return uuid.New().String() + "_" + sanitized
}
