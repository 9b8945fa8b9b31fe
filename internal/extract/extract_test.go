package extract

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"go.uber.org/mock/gomock"

	"ragchat/internal/llm/mocks"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write %s: %v", name, err)
	}
	return path
}

func TestExtractFile_Text(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "notes.txt", "Machine learning is a subset of AI. It learns from data.")

	e := New(nil)
	records := e.ExtractFile(context.Background(), path)

	if len(records) != 1 {
		t.Fatalf("expected 1 record, got %d", len(records))
	}
	rec := records[0]
	if rec.Type != TypeText {
		t.Errorf("Type = %q, want %q", rec.Type, TypeText)
	}
	if rec.Source != path {
		t.Errorf("Source = %q, want %q", rec.Source, path)
	}
	if rec.SentenceCount != 2 {
		t.Errorf("SentenceCount = %d, want 2", rec.SentenceCount)
	}
	if rec.WordCount != 11 {
		t.Errorf("WordCount = %d, want 11", rec.WordCount)
	}
	if rec.Page != 0 {
		t.Errorf("Page = %d, want 0 for text records", rec.Page)
	}
}

func TestExtractFile_EmptyTextDropped(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "empty.txt", "   \n\t  ")

	e := New(nil)
	if records := e.ExtractFile(context.Background(), path); len(records) != 0 {
		t.Errorf("expected 0 records for whitespace-only file, got %d", len(records))
	}
}

func TestExtractFile_UnsupportedExtension(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "binary.exe", "not text")

	e := New(nil)
	if records := e.ExtractFile(context.Background(), path); len(records) != 0 {
		t.Errorf("expected 0 records for unsupported extension, got %d", len(records))
	}
}

func TestExtractFile_MissingFile(t *testing.T) {
	e := New(nil)
	if records := e.ExtractFile(context.Background(), "/nonexistent/file.txt"); len(records) != 0 {
		t.Errorf("expected 0 records for missing file, got %d", len(records))
	}
}

func TestExtractFile_PDFPages(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "report.pdf", "placeholder")

	e := New(nil)
	e.readPDF = func(string) ([]string, error) {
		return []string{"Page one text.", "   ", "Page three text."}, nil
	}

	records := e.ExtractFile(context.Background(), path)
	if len(records) != 2 {
		t.Fatalf("expected 2 records (blank page dropped), got %d", len(records))
	}
	if records[0].Page != 1 || records[1].Page != 3 {
		t.Errorf("pages = %d, %d, want 1, 3", records[0].Page, records[1].Page)
	}
	for i, rec := range records {
		if rec.Type != TypePDF {
			t.Errorf("record %d type = %q, want %q", i, rec.Type, TypePDF)
		}
		if rec.TotalPages != 3 {
			t.Errorf("record %d TotalPages = %d, want 3", i, rec.TotalPages)
		}
	}
}

func TestExtractFile_PDFFailureSkipped(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "broken.pdf", "placeholder")

	e := New(nil)
	e.readPDF = func(string) ([]string, error) {
		return nil, errors.New("unreadable PDF")
	}

	if records := e.ExtractFile(context.Background(), path); len(records) != 0 {
		t.Errorf("expected 0 records for unreadable PDF, got %d", len(records))
	}
}

func TestExtractFile_ImageOCR(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	dir := t.TempDir()
	path := writeFile(t, dir, "scan.png", "fake image bytes")

	ocr := mocks.NewMockTextGenerator(ctrl)
	ocr.EXPECT().
		CompleteVision(gomock.Any(), gomock.Any(), gomock.Any(), "image/png").
		Return("Extracted text from image.", nil)

	e := New(ocr)
	records := e.ExtractFile(context.Background(), path)
	if len(records) != 1 {
		t.Fatalf("expected 1 record, got %d", len(records))
	}
	if records[0].Type != TypeImage {
		t.Errorf("Type = %q, want %q", records[0].Type, TypeImage)
	}
	if records[0].Text != "Extracted text from image." {
		t.Errorf("Text = %q", records[0].Text)
	}
}

func TestExtractFile_ImageOCRSentinel(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	dir := t.TempDir()
	path := writeFile(t, dir, "blank.jpg", "fake image bytes")

	ocr := mocks.NewMockTextGenerator(ctrl)
	ocr.EXPECT().
		CompleteVision(gomock.Any(), gomock.Any(), gomock.Any(), "image/jpeg").
		Return("No Text Found", nil)

	e := New(ocr)
	if records := e.ExtractFile(context.Background(), path); len(records) != 0 {
		t.Errorf("expected 0 records for OCR sentinel, got %d", len(records))
	}
}

func TestExtractFile_ImageWithoutOCRCapability(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "scan.png", "fake image bytes")

	e := New(nil)
	if records := e.ExtractFile(context.Background(), path); len(records) != 0 {
		t.Errorf("expected 0 records without OCR capability, got %d", len(records))
	}
}

func TestExtractFile_ImageOCRFailure(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	dir := t.TempDir()
	path := writeFile(t, dir, "scan.png", "fake image bytes")

	ocr := mocks.NewMockTextGenerator(ctrl)
	ocr.EXPECT().
		CompleteVision(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
		Return("", errors.New("vision model unavailable"))

	e := New(ocr)
	if records := e.ExtractFile(context.Background(), path); len(records) != 0 {
		t.Errorf("expected 0 records for OCR failure, got %d", len(records))
	}
}

func TestExtractFiles_BatchContinuesOnFailure(t *testing.T) {
	dir := t.TempDir()
	good := writeFile(t, dir, "good.txt", "Some useful text.")
	writeFile(t, dir, "skip.xyz", "unsupported")

	e := New(nil)
	records := e.ExtractFiles(context.Background(), []string{
		"/nonexistent/missing.txt",
		filepath.Join(dir, "skip.xyz"),
		good,
	})

	if len(records) != 1 {
		t.Fatalf("expected 1 record from the batch, got %d", len(records))
	}
	if records[0].Source != good {
		t.Errorf("Source = %q, want %q", records[0].Source, good)
	}
}

func TestExtractDir(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "a.txt", "File A content.")
	sub := filepath.Join(dir, "nested")
	if err := os.Mkdir(sub, 0755); err != nil {
		t.Fatal(err)
	}
	writeFile(t, sub, "b.md", "# Title B\n\nFile B content.")
	writeFile(t, dir, "ignored.bin", "binary")

	e := New(nil)
	records, err := e.ExtractDir(context.Background(), dir)
	if err != nil {
		t.Fatalf("ExtractDir failed: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("expected 2 records, got %d", len(records))
	}
}

func TestMarkdownTitle(t *testing.T) {
	tests := []struct {
		name     string
		content  string
		filename string
		want     string
	}{
		{"h1 heading", "# Project Overview\n\nBody.", "file.md", "Project Overview"},
		{"h2 fallback", "## Section One\n\nBody.", "file.md", "Section One"},
		{"h1 preferred over h2", "## Early Section\n\n# Real Title\n", "file.md", "Real Title"},
		{"no headings", "Just some text.", "meeting-notes.md", "Meeting Notes"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := markdownTitle([]byte(tt.content), tt.filename); got != tt.want {
				t.Errorf("markdownTitle = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestTitleFromFilename(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"quarterly_report.pdf", "Quarterly Report"},
		{"scan-01.png", "Scan 01"},
		{"notes.txt", "Notes"},
	}
	for _, tt := range tests {
		if got := titleFromFilename(tt.in); got != tt.want {
			t.Errorf("titleFromFilename(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
