package docstore

import (
	"errors"
	"strings"
	"testing"

	"docvault/internal/domain"
	docsySvc "docvault/internal/domain/services/docstore"
)

func TestSanitizeFilename(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{
			name:  "clean name untouched",
			input: "report.pdf",
			want:  "report.pdf",
		},
		{
			name:  "path traversal stripped",
			input: "../../etc/passwd",
			want:  "etcpasswd",
		},
		{
			name:  "windows separators stripped",
			input: `..\..\boot.ini`,
			want:  "boot.ini",
		},
		{
			name:  "unsafe characters dropped",
			input: `quar<terly>: "plan"?.xlsx`,
			want:  "quarterly plan.xlsx",
		},
		{
			name:  "control characters dropped",
			input: "bud\x00get\x1f.csv",
			want:  "budget.csv",
		},
		{
			name:  "whitespace trimmed",
			input: "  notes.txt  ",
			want:  "notes.txt",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := SanitizeFilename(tt.input); got != tt.want {
				t.Errorf("SanitizeFilename(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestSanitizeFilenameFallsBackWhenNothingSurvives(t *testing.T) {
	for _, input := range []string{"", "///", "..", "   "} {
		got := SanitizeFilename(input)
		if !strings.HasPrefix(got, "file_") {
			t.Errorf("SanitizeFilename(%q) = %q, want generated file_ name", input, got)
		}
		if len(got) != len("file_")+8 {
			t.Errorf("SanitizeFilename(%q) = %q, want 8-char suffix", input, got)
		}
	}
}

func TestSanitizeFilenameCapsLengthKeepingExtension(t *testing.T) {
	input := strings.Repeat("a", 300) + ".pdf"
	got := SanitizeFilename(input)

	if len([]rune(got)) > 255 {
		t.Errorf("sanitized name is %d runes, want <= 255", len([]rune(got)))
	}
	if !strings.HasSuffix(got, ".pdf") {
		t.Errorf("sanitized name %q lost its extension", got)
	}
}

func TestValidateUpload(t *testing.T) {
	tests := []struct {
		name     string
		upload   *docsySvc.UploadedFile
		wantName string
		wantErr  bool
	}{
		{
			name:     "valid document",
			upload:   &docsySvc.UploadedFile{Filename: "plan.docx", Size: 1024},
			wantName: "plan.docx",
		},
		{
			name:     "uppercase extension accepted",
			upload:   &docsySvc.UploadedFile{Filename: "photo.JPG", Size: 2048},
			wantName: "photo.JPG",
		},
		{
			name:    "missing upload",
			upload:  nil,
			wantErr: true,
		},
		{
			name:    "empty file",
			upload:  &docsySvc.UploadedFile{Filename: "empty.txt", Size: 0},
			wantErr: true,
		},
		{
			name:    "over size cap",
			upload:  &docsySvc.UploadedFile{Filename: "huge.zip", Size: 101 << 20},
			wantErr: true,
		},
		{
			name:    "dangerous extension",
			upload:  &docsySvc.UploadedFile{Filename: "setup.exe", Size: 10},
			wantErr: true,
		},
		{
			name:    "unknown extension",
			upload:  &docsySvc.UploadedFile{Filename: "disk.iso", Size: 10},
			wantErr: true,
		},
		{
			name:    "no extension",
			upload:  &docsySvc.UploadedFile{Filename: "README", Size: 10},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := validateUpload(tt.upload)
			if tt.wantErr {
				if err == nil {
					t.Fatal("validateUpload() error = nil, want validation error")
				}
				if !errors.Is(err, domain.ErrValidation) {
					t.Errorf("validateUpload() error = %v, want validation error", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("validateUpload() error = %v", err)
			}
			if got != tt.wantName {
				t.Errorf("validateUpload() = %q, want %q", got, tt.wantName)
			}
		})
	}
}

func TestStorageNameIsUniquePerCall(t *testing.T) {
	a := storageName("report.pdf")
	b := storageName("report.pdf")

	if a == b {
		t.Error("storageName() produced identical names for two calls")
	}
	if !strings.HasSuffix(a, "_report.pdf") {
		t.Errorf("storageName() = %q, want uuid_report.pdf shape", a)
	}
}
