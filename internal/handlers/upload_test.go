package handlers

import (
	"bytes"
	"context"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"ragchat/internal/processor"
)

// fakeIngestor records calls and returns canned results.
type fakeIngestor struct {
	stats    processor.Stats
	err      error
	gotPaths []string
	gotDir   string
}

func (f *fakeIngestor) ProcessFiles(_ context.Context, paths []string) (processor.Stats, error) {
	f.gotPaths = paths
	return f.stats, f.err
}

func (f *fakeIngestor) ProcessDirectory(_ context.Context, dir string) (processor.Stats, error) {
	f.gotDir = dir
	return f.stats, f.err
}

func multipartUpload(t *testing.T, files map[string]string) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for name, content := range files {
		part, err := mw.CreateFormFile("files", name)
		if err != nil {
			t.Fatal(err)
		}
		if _, err := part.Write([]byte(content)); err != nil {
			t.Fatal(err)
		}
	}
	if err := mw.Close(); err != nil {
		t.Fatal(err)
	}
	return &buf, mw.FormDataContentType()
}

func TestUploadHandler_Success(t *testing.T) {
	ingestor := &fakeIngestor{stats: processor.Stats{TotalFiles: 2, TotalDocuments: 2, TotalChunks: 5}}
	body, contentType := multipartUpload(t, map[string]string{
		"a.txt": "First document body.",
		"b.txt": "Second document body.",
	})

	req := httptest.NewRequest(http.MethodPost, "/api/upload-files", body)
	req.Header.Set("Content-Type", contentType)
	w := httptest.NewRecorder()
	NewUploadHandler(ingestor).ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}
	if !strings.Contains(w.Body.String(), "Successfully processed 2 files") {
		t.Errorf("body = %s", w.Body.String())
	}
	if len(ingestor.gotPaths) != 2 {
		t.Fatalf("ingestor got %d paths, want 2", len(ingestor.gotPaths))
	}
	for _, p := range ingestor.gotPaths {
		base := filepath.Base(p)
		if base != "a.txt" && base != "b.txt" {
			t.Errorf("unexpected staged file %q", p)
		}
	}
}

func TestUploadHandler_TempFilesCleanedUp(t *testing.T) {
	ingestor := &fakeIngestor{stats: processor.Stats{TotalFiles: 1}}
	body, contentType := multipartUpload(t, map[string]string{"a.txt": "content"})

	req := httptest.NewRequest(http.MethodPost, "/api/upload-files", body)
	req.Header.Set("Content-Type", contentType)
	w := httptest.NewRecorder()
	NewUploadHandler(ingestor).ServeHTTP(w, req)

	if len(ingestor.gotPaths) != 1 {
		t.Fatal("ingestor not called")
	}
	if _, err := os.Stat(filepath.Dir(ingestor.gotPaths[0])); !os.IsNotExist(err) {
		t.Error("temp upload directory not removed")
	}
}

func TestUploadHandler_NoFiles(t *testing.T) {
	body, contentType := multipartUpload(t, nil)
	req := httptest.NewRequest(http.MethodPost, "/api/upload-files", body)
	req.Header.Set("Content-Type", contentType)
	w := httptest.NewRecorder()
	NewUploadHandler(&fakeIngestor{}).ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", w.Code)
	}
}

func TestUploadHandler_EmptyInput(t *testing.T) {
	ingestor := &fakeIngestor{err: processor.ErrEmptyInput}
	body, contentType := multipartUpload(t, map[string]string{"a.xyz": "unsupported"})

	req := httptest.NewRequest(http.MethodPost, "/api/upload-files", body)
	req.Header.Set("Content-Type", contentType)
	w := httptest.NewRecorder()
	NewUploadHandler(ingestor).ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", w.Code)
	}
	if !strings.Contains(w.Body.String(), "No documents were processed successfully") {
		t.Errorf("body = %s", w.Body.String())
	}
}

func TestUploadHandler_IngestionFailure(t *testing.T) {
	ingestor := &fakeIngestor{err: errors.New("embedding service down")}
	body, contentType := multipartUpload(t, map[string]string{"a.txt": "content"})

	req := httptest.NewRequest(http.MethodPost, "/api/upload-files", body)
	req.Header.Set("Content-Type", contentType)
	w := httptest.NewRecorder()
	NewUploadHandler(ingestor).ServeHTTP(w, req)

	if w.Code != http.StatusInternalServerError {
		t.Errorf("status = %d, want 500", w.Code)
	}
}

func TestDirectoryHandler_Success(t *testing.T) {
	dir := t.TempDir()
	ingestor := &fakeIngestor{stats: processor.Stats{TotalFiles: 3}}

	form := strings.NewReader("directory_path=" + dir)
	req := httptest.NewRequest(http.MethodPost, "/api/process-directory", form)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	w := httptest.NewRecorder()
	NewDirectoryHandler(ingestor).ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}
	if ingestor.gotDir != dir {
		t.Errorf("ingested dir = %q, want %q", ingestor.gotDir, dir)
	}
	if !strings.Contains(w.Body.String(), "Successfully processed 3 files from directory") {
		t.Errorf("body = %s", w.Body.String())
	}
}

func TestDirectoryHandler_MissingDirectory(t *testing.T) {
	form := strings.NewReader("directory_path=/does/not/exist")
	req := httptest.NewRequest(http.MethodPost, "/api/process-directory", form)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	w := httptest.NewRecorder()
	NewDirectoryHandler(&fakeIngestor{}).ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", w.Code)
	}
	if !strings.Contains(w.Body.String(), "Directory does not exist") {
		t.Errorf("body = %s", w.Body.String())
	}
}

func TestDirectoryHandler_EmptyDirectory(t *testing.T) {
	dir := t.TempDir()
	ingestor := &fakeIngestor{err: processor.ErrEmptyInput}

	form := strings.NewReader("directory_path=" + dir)
	req := httptest.NewRequest(http.MethodPost, "/api/process-directory", form)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	w := httptest.NewRecorder()
	NewDirectoryHandler(ingestor).ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", w.Code)
	}
	if !strings.Contains(w.Body.String(), "No documents found or processed in the directory") {
		t.Errorf("body = %s", w.Body.String())
	}
}
