// Package extract converts files into raw text records. Dispatch is by file
// extension: text-like files are read whole, PDFs yield one record per page,
// and images are OCR'd through a multimodal text-generation capability.
// A failure on one file never aborts the batch.
package extract

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"ragchat/internal/contextutil"
	"ragchat/internal/llm"
	"ragchat/internal/sentence"
)

// DocType identifies the kind of document a record came from.
type DocType string

const (
	TypeText    DocType = "text"
	TypePDF     DocType = "pdf"
	TypeImage   DocType = "image"
	TypeUnknown DocType = "unknown"
)

// Record is one logical unit of extracted text: a whole file for text and
// image sources, a single page for PDFs. Records are immutable after creation.
type Record struct {
	Text          string
	Source        string
	Type          DocType
	Page          int // 1-based page number for PDFs, 0 otherwise
	TotalPages    int // total pages in the source PDF, 0 otherwise
	Title         string
	SentenceCount int
	WordCount     int
	ExtractedAt   time.Time
}

const ocrPrompt = "Extract all the text from this image. " +
	"Preserve the structure and formatting as much as possible. " +
	"If there's no text, return 'No text found'."

// ocrEmptySentinel is what the vision model returns for images without text.
const ocrEmptySentinel = "no text found"

// PDFReader extracts the plain text of every page of a PDF file, in order.
type PDFReader func(path string) ([]string, error)

// Extractor converts file paths into records via a fixed per-extension
// capability table.
type Extractor struct {
	ocr      llm.TextGenerator // nil disables image OCR
	readPDF  PDFReader
	handlers map[string]func(ctx context.Context, path string) ([]Record, error)
}

// New creates an Extractor. ocr may be nil, in which case image files yield no
// records.
func New(ocr llm.TextGenerator) *Extractor {
	e := &Extractor{
		ocr:     ocr,
		readPDF: readPDFPages,
	}

	e.handlers = map[string]func(ctx context.Context, path string) ([]Record, error){
		".pdf": e.extractPDF,
	}
	for _, ext := range []string{".txt", ".md", ".py", ".js", ".html", ".csv", ".json"} {
		e.handlers[ext] = e.extractText
	}
	for _, ext := range []string{".png", ".jpg", ".jpeg", ".bmp", ".tiff", ".webp"} {
		e.handlers[ext] = e.extractImage
	}

	return e
}

// Supported reports whether files with the given extension can be extracted.
func (e *Extractor) Supported(ext string) bool {
	_, ok := e.handlers[strings.ToLower(ext)]
	return ok
}

// ExtractFile returns the records for a single file. Unsupported extensions
// and extraction failures yield an empty result, never an error; both are
// logged so a batch can keep going.
func (e *Extractor) ExtractFile(ctx context.Context, path string) []Record {
	logger := contextutil.LoggerFromContext(ctx)

	ext := strings.ToLower(filepath.Ext(path))
	handler, ok := e.handlers[ext]
	if !ok {
		logger.WarnContext(ctx, "unsupported file type", "path", path, "ext", ext)
		return nil
	}

	records, err := handler(ctx, path)
	if err != nil {
		logger.ErrorContext(ctx, "failed to extract file", "path", path, "error", err)
		return nil
	}
	return records
}

// ExtractFiles extracts every file in paths, preserving input order. Files
// that fail or produce no text are skipped.
func (e *Extractor) ExtractFiles(ctx context.Context, paths []string) []Record {
	logger := contextutil.LoggerFromContext(ctx)

	var records []Record
	for _, path := range paths {
		select {
		case <-ctx.Done():
			return records
		default:
		}
		records = append(records, e.ExtractFile(ctx, path)...)
	}

	logger.InfoContext(ctx, "extraction completed", "files", len(paths), "records", len(records))
	return records
}

// ExtractDir walks a directory recursively and extracts every supported file.
func (e *Extractor) ExtractDir(ctx context.Context, dir string) ([]Record, error) {
	var paths []string
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		if e.Supported(filepath.Ext(path)) {
			paths = append(paths, path)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return e.ExtractFiles(ctx, paths), nil
}

func (e *Extractor) extractText(ctx context.Context, path string) ([]Record, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	text := string(content)
	if strings.TrimSpace(text) == "" {
		return nil, nil
	}

	rec := newRecord(text, path, TypeText)
	if strings.EqualFold(filepath.Ext(path), ".md") {
		rec.Title = markdownTitle(content, filepath.Base(path))
	} else {
		rec.Title = titleFromFilename(filepath.Base(path))
	}
	return []Record{rec}, nil
}

func (e *Extractor) extractPDF(ctx context.Context, path string) ([]Record, error) {
	pages, err := e.readPDF(path)
	if err != nil {
		return nil, err
	}

	var records []Record
	for i, page := range pages {
		if strings.TrimSpace(page) == "" {
			continue
		}
		rec := newRecord(page, path, TypePDF)
		rec.Page = i + 1
		rec.TotalPages = len(pages)
		rec.Title = titleFromFilename(filepath.Base(path))
		records = append(records, rec)
	}
	return records, nil
}

func (e *Extractor) extractImage(ctx context.Context, path string) ([]Record, error) {
	logger := contextutil.LoggerFromContext(ctx)

	if e.ocr == nil {
		logger.WarnContext(ctx, "OCR capability not configured, skipping image", "path", path)
		return nil, nil
	}

	image, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	text, err := e.ocr.CompleteVision(ctx, ocrPrompt, image, mimeType(path))
	if err != nil {
		return nil, err
	}

	text = strings.TrimSpace(text)
	if text == "" || strings.EqualFold(text, ocrEmptySentinel) {
		logger.WarnContext(ctx, "no text extracted from image", "path", path)
		return nil, nil
	}

	rec := newRecord(text, path, TypeImage)
	rec.Title = titleFromFilename(filepath.Base(path))
	return []Record{rec}, nil
}

// newRecord builds a record with its sentence and word statistics filled in.
func newRecord(text, source string, docType DocType) Record {
	return Record{
		Text:          text,
		Source:        source,
		Type:          docType,
		SentenceCount: sentence.Count(text),
		WordCount:     len(strings.Fields(text)),
		ExtractedAt:   time.Now().UTC(),
	}
}

// mimeType maps an image path to its MIME type for the vision API.
func mimeType(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".jpg", ".jpeg":
		return "image/jpeg"
	case ".bmp":
		return "image/bmp"
	case ".tiff":
		return "image/tiff"
	case ".webp":
		return "image/webp"
	default:
		return "image/png"
	}
}
