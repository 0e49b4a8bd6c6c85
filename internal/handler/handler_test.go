package handler

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/golang-jwt/jwt/v5"

	"docvault/internal/domain"
	"docvault/internal/domain/models"
	"docvault/internal/domain/models/docstore"
	docsySvc "docvault/internal/domain/services/docstore"
	"docvault/internal/httputil"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func authed(r *http.Request, userID string) *http.Request {
	return httputil.WithClaims(r, &models.AccessClaims{
		RegisteredClaims: jwt.RegisteredClaims{Subject: userID},
		TenantID:         "tenant-1",
	})
}

func TestHandleErrorStatusMapping(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
	}{
		{"typed not found", &domain.NotFoundError{Message: "gone"}, http.StatusNotFound},
		{"typed validation", &domain.ValidationError{Message: "bad"}, http.StatusBadRequest},
		{"typed forbidden", &domain.ForbiddenError{Message: "no"}, http.StatusForbidden},
		{"typed conflict", &domain.ConflictError{Message: "dup"}, http.StatusConflict},
		{"external storage", &domain.ExternalStorageError{Provider: "googledrive", Message: "down"}, http.StatusBadGateway},
		{"wrapped sentinel", errors.New("x: " + domain.ErrNotFound.Error()), http.StatusInternalServerError},
		{"wrapped not found", errWrap(domain.ErrNotFound), http.StatusNotFound},
		{"unknown", errors.New("boom"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			handleError(rec, tt.err)
			if rec.Code != tt.status {
				t.Errorf("status = %d, want %d", rec.Code, tt.status)
			}
			if ct := rec.Header().Get("Content-Type"); ct != "application/problem+json" {
				t.Errorf("content type = %q, want problem+json", ct)
			}
		})
	}
}

func errWrap(err error) error {
	return &wrapped{err}
}

type wrapped struct{ inner error }

func (w *wrapped) Error() string { return "wrapped: " + w.inner.Error() }
func (w *wrapped) Unwrap() error { return w.inner }

func TestHandleErrorPartialDeleteCarriesFailures(t *testing.T) {
	rec := httptest.NewRecorder()
	handleError(rec, &domain.PartialDeleteError{
		FolderID: "folder-1",
		Failures: []domain.NodeFailure{
			{NodeID: "file-9", NodeType: "file", Name: "stuck.pdf", Reason: "storage fault"},
		},
	})

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", rec.Code)
	}
	var body struct {
		FolderID string               `json:"folder_id"`
		Failures []domain.NodeFailure `json:"failures"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if body.FolderID != "folder-1" || len(body.Failures) != 1 || body.Failures[0].NodeID != "file-9" {
		t.Errorf("body = %+v, want the failed node listed", body)
	}
}

func TestHandleErrorHidesInternalDetail(t *testing.T) {
	rec := httptest.NewRecorder()
	handleError(rec, errors.New("pq: connection refused at 10.0.0.3"))
	if strings.Contains(rec.Body.String(), "10.0.0.3") {
		t.Error("internal error detail leaked to the response body")
	}
}

// fakeFolderService satisfies just enough of FolderService for route tests.
type fakeFolderService struct {
	renamed map[string]string
}

func (s *fakeFolderService) CreateFolder(ctx context.Context, req *docsySvc.CreateFolderRequest) (*docstore.Folder, error) {
	return &docstore.Folder{ID: "folder-new", TenantID: "tenant-1", OwnerID: req.UserID, Name: req.Name}, nil
}

func (s *fakeFolderService) GetFolder(ctx context.Context, userID, folderID string) (*docstore.Folder, error) {
	if folderID != "folder-1" {
		return nil, &domain.NotFoundError{Message: "folder not found"}
	}
	return &docstore.Folder{ID: "folder-1", TenantID: "tenant-1", Name: "Projects"}, nil
}

func (s *fakeFolderService) ListFolders(ctx context.Context, userID string, parentID *string) ([]docstore.Folder, error) {
	return []docstore.Folder{}, nil
}

func (s *fakeFolderService) RenameFolder(ctx context.Context, userID, folderID string, req *docsySvc.RenameFolderRequest) (*docstore.Folder, error) {
	if s.renamed == nil {
		s.renamed = map[string]string{}
	}
	s.renamed[folderID] = req.Name
	return &docstore.Folder{ID: folderID, TenantID: "tenant-1", Name: req.Name}, nil
}

func (s *fakeFolderService) DeleteFolder(ctx context.Context, userID, folderID string) (*docsySvc.DeleteFolderResult, error) {
	return &docsySvc.DeleteFolderResult{DeletedFolders: 1}, nil
}

func (s *fakeFolderService) CountFiles(ctx context.Context, userID, folderID string) (*docsySvc.FolderFileCount, error) {
	return &docsySvc.FolderFileCount{FolderID: folderID, FileCount: 4}, nil
}

func TestFolderRoutesDispatchAndDecode(t *testing.T) {
	svc := &fakeFolderService{}
	h := NewFolderHandler(svc, nil, testLogger())

	mux := http.NewServeMux()
	mux.HandleFunc("PATCH /api/folders/{id}", h.Rename)
	mux.HandleFunc("GET /api/folders/{id}/file-count", h.FileCount)

	req := httptest.NewRequest(http.MethodPatch, "/api/folders/folder-1", strings.NewReader(`{"name":"Renamed"}`))
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, authed(req, "user-1"))
	if rec.Code != http.StatusOK {
		t.Fatalf("rename status = %d, body = %s", rec.Code, rec.Body.String())
	}
	if svc.renamed["folder-1"] != "Renamed" {
		t.Errorf("service saw rename %v, want folder-1 -> Renamed", svc.renamed)
	}

	req = httptest.NewRequest(http.MethodGet, "/api/folders/folder-1/file-count", nil)
	rec = httptest.NewRecorder()
	mux.ServeHTTP(rec, authed(req, "user-1"))
	var count docsySvc.FolderFileCount
	if err := json.Unmarshal(rec.Body.Bytes(), &count); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if count.FileCount != 4 {
		t.Errorf("file count = %d, want 4", count.FileCount)
	}
}

func TestHandlersRejectUnauthenticatedRequests(t *testing.T) {
	h := NewFolderHandler(&fakeFolderService{}, nil, testLogger())

	req := httptest.NewRequest(http.MethodGet, "/api/folders/folder-1", nil)
	req.SetPathValue("id", "folder-1")
	rec := httptest.NewRecorder()
	h.Get(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401 without claims", rec.Code)
	}
}
