package handlers

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"

	"ragchat/internal/contextutil"
	"ragchat/internal/processor"
)

const maxUploadMemory = 32 << 20 // 32 MB before multipart spills to disk

// Ingestor is what the upload endpoints need from the document processor.
type Ingestor interface {
	ProcessFiles(ctx context.Context, paths []string) (processor.Stats, error)
	ProcessDirectory(ctx context.Context, dir string) (processor.Stats, error)
}

// UploadHandler handles multipart file uploads and ingestion.
type UploadHandler struct {
	ingestor Ingestor
}

// NewUploadHandler creates a new UploadHandler.
func NewUploadHandler(ingestor Ingestor) *UploadHandler {
	return &UploadHandler{ingestor: ingestor}
}

// ServeHTTP saves the uploaded files to a temporary directory and ingests
// them as one batch.
func (h *UploadHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := contextutil.LoggerFromContext(ctx)

	if err := r.ParseMultipartForm(maxUploadMemory); err != nil {
		logger.WarnContext(ctx, "invalid multipart form", "error", err)
		writeError(w, http.StatusBadRequest, "Invalid multipart form")
		return
	}

	parts := r.MultipartForm.File["files"]
	if len(parts) == 0 {
		writeError(w, http.StatusBadRequest, "No files provided")
		return
	}

	tempDir, err := os.MkdirTemp("", "ragchat-upload-*")
	if err != nil {
		logger.ErrorContext(ctx, "failed to create temp directory", "error", err)
		writeError(w, http.StatusInternalServerError, "Failed to store uploaded files")
		return
	}
	defer func() {
		_ = os.RemoveAll(tempDir)
	}()

	var paths []string
	for _, part := range parts {
		if part.Filename == "" {
			continue
		}
		path, err := saveUpload(part, tempDir)
		if err != nil {
			logger.ErrorContext(ctx, "failed to save uploaded file", "filename", part.Filename, "error", err)
			writeError(w, http.StatusInternalServerError, "Failed to store uploaded files")
			return
		}
		paths = append(paths, path)
	}

	stats, err := h.ingestor.ProcessFiles(ctx, paths)
	if err != nil {
		if errors.Is(err, processor.ErrEmptyInput) {
			writeError(w, http.StatusBadRequest, "No documents were processed successfully")
			return
		}
		logger.ErrorContext(ctx, "ingestion failed", "error", err)
		writeError(w, http.StatusInternalServerError, "Failed to process documents")
		return
	}

	writeJSON(w, http.StatusOK, StatusResponse{
		Status:  "success",
		Message: fmt.Sprintf("Successfully processed %d files", stats.TotalFiles),
		Stats:   stats,
	})
}

func saveUpload(part *multipart.FileHeader, dir string) (string, error) {
	src, err := part.Open()
	if err != nil {
		return "", err
	}
	defer func() {
		_ = src.Close()
	}()

	// Uploaded filenames are untrusted; keep only the base name.
	path := filepath.Join(dir, filepath.Base(part.Filename))
	dst, err := os.Create(path)
	if err != nil {
		return "", err
	}
	defer func() {
		_ = dst.Close()
	}()

	if _, err := io.Copy(dst, src); err != nil {
		return "", err
	}
	return path, nil
}

// DirectoryHandler ingests all supported files under a server-side directory.
type DirectoryHandler struct {
	ingestor Ingestor
}

// NewDirectoryHandler creates a new DirectoryHandler.
func NewDirectoryHandler(ingestor Ingestor) *DirectoryHandler {
	return &DirectoryHandler{ingestor: ingestor}
}

// ServeHTTP ingests the directory named by the directory_path form field.
func (h *DirectoryHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := contextutil.LoggerFromContext(ctx)

	dir := r.FormValue("directory_path")
	if dir == "" {
		writeError(w, http.StatusBadRequest, "directory_path is required")
		return
	}
	if info, err := os.Stat(dir); err != nil || !info.IsDir() {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("Directory does not exist: %s", dir))
		return
	}

	stats, err := h.ingestor.ProcessDirectory(ctx, dir)
	if err != nil {
		if errors.Is(err, processor.ErrEmptyInput) {
			writeError(w, http.StatusBadRequest, "No documents found or processed in the directory")
			return
		}
		logger.ErrorContext(ctx, "directory ingestion failed", "dir", dir, "error", err)
		writeError(w, http.StatusInternalServerError, "Failed to process documents")
		return
	}

	writeJSON(w, http.StatusOK, StatusResponse{
		Status:  "success",
		Message: fmt.Sprintf("Successfully processed %d files from directory", stats.TotalFiles),
		Stats:   stats,
	})
}
