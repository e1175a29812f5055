package html

import (
	"context"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"time"
	"unicode/utf8"

	"github.com/custodia-labs/proctok/internal/core/domain"
	"github.com/custodia-labs/proctok/internal/core/ports/driven"
	"github.com/custodia-labs/proctok/internal/logger"
)

// MethodSavedHTML is the extraction method recorded for saved files.
const MethodSavedHTML = "saved-html"

// SavedExtractor reads web pages saved to disk.
type SavedExtractor struct {
	cleaner driven.TextPipeline
	now     func() time.Time
}

var _ driven.Extractor = (*SavedExtractor)(nil)

// NewSavedExtractor creates a saved HTML extractor using the saved-html cleaning pipeline.
func NewSavedExtractor(cleaner driven.TextPipeline) *SavedExtractor {
	return &SavedExtractor{cleaner: cleaner, now: time.Now}
}

// Type returns domain.DocumentTypeHTML.
func (e *SavedExtractor) Type() domain.DocumentType {
	return domain.DocumentTypeHTML
}

// Extract reads the HTML file at path.
// opts.OriginalURL overrides any URL found in the page.
func (e *SavedExtractor) Extract(ctx context.Context, path string, opts driven.ExtractOptions) (*domain.Document, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", domain.ErrSourceUnavailable, path, err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", domain.ErrSourceUnavailable, path, err)
	}

	page, err := Parse(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	title := page.Title()
	originalURL := opts.OriginalURL
	if originalURL == "" {
		originalURL = page.OriginalURL()
		if originalURL != "" {
			logger.Debug("html: detected original URL %s in %s", originalURL, filepath.Base(path))
		}
	}

	content, err := page.MainContent(savedNoise)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	text, err := e.cleaner.Process(ctx, content)
	if err != nil {
		return nil, fmt.Errorf("clean %s: %w", path, err)
	}
	if text == "" {
		return nil, fmt.Errorf("%w: %s", domain.ErrExtractionEmpty, path)
	}

	metadata := map[string]string{
		domain.MetaSource:           domain.SourceProcurementDocs,
		domain.MetaDocumentType:     string(domain.DocumentTypeHTML),
		domain.MetaSourceFile:       path,
		domain.MetaFilename:         filepath.Base(path),
		domain.MetaFileSize:         strconv.FormatInt(info.Size(), 10),
		domain.MetaExtractionMethod: MethodSavedHTML,
		domain.MetaTitle:            title,
	}
	if originalURL != "" {
		metadata[domain.MetaOriginalURL] = originalURL
		if u, err := url.Parse(originalURL); err == nil {
			metadata[domain.MetaDomain] = u.Host
		}
	}

	if title == "" {
		title = titleFromFilename(path)
	}

	logger.Info("Extracted %d characters from %s", utf8.RuneCountInString(text), filepath.Base(path))
	return &domain.Document{
		Type:        domain.DocumentTypeHTML,
		Source:      filepath.Base(path),
		Title:       title,
		Text:        text,
		Method:      MethodSavedHTML,
		ExtractedAt: e.now(),
		Metadata:    metadata,
	}, nil
}
