package pdf

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/custodia-labs/proctok/internal/core/domain"
	"github.com/custodia-labs/proctok/internal/core/ports/driven"
	"github.com/custodia-labs/proctok/internal/logger"
)

// Extractor turns PDF files into cleaned documents.
type Extractor struct {
	strategies []driven.PDFStrategy
	cleaner    driven.TextPipeline
	now        func() time.Time
}

var _ driven.Extractor = (*Extractor)(nil)

// New creates a PDF extractor. Strategies run in the given order for auto extraction.
func New(cleaner driven.TextPipeline, strategies ...driven.PDFStrategy) *Extractor {
	if len(strategies) == 0 {
		strategies = DefaultStrategies()
	}
	return &Extractor{strategies: strategies, cleaner: cleaner, now: time.Now}
}

// Type returns domain.DocumentTypePDF.
func (e *Extractor) Type() domain.DocumentType {
	return domain.DocumentTypePDF
}

// Methods returns the strategy names in auto order.
func (e *Extractor) Methods() []string {
	names := make([]string, len(e.strategies))
	for i, s := range e.strategies {
		names[i] = s.Name()
	}
	return names
}

// Select returns the strategies a method name runs.
func (e *Extractor) Select(method string) ([]driven.PDFStrategy, error) {
	if method == "" || method == MethodAuto {
		return e.strategies, nil
	}
	for _, s := range e.strategies {
		if s.Name() == method {
			return []driven.PDFStrategy{s}, nil
		}
	}
	return nil, fmt.Errorf("%w: pdf extraction method %q (want auto, %s)",
		domain.ErrInvalidMethod, method, strings.Join(e.Methods(), ", "))
}

// Extract reads the PDF at path.
func (e *Extractor) Extract(ctx context.Context, path string, opts driven.ExtractOptions) (*domain.Document, error) {
	strategies, err := e.Select(opts.Method)
	if err != nil {
		return nil, err
	}

	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", domain.ErrSourceUnavailable, path, err)
	}

	raw, method, err := e.run(ctx, path, strategies)
	if err != nil {
		return nil, err
	}

	text, err := e.cleaner.Process(ctx, raw)
	if err != nil {
		return nil, fmt.Errorf("clean %s: %w", path, err)
	}
	if text == "" {
		return nil, fmt.Errorf("%w: %s is blank after cleaning", domain.ErrExtractionEmpty, path)
	}

	name := filepath.Base(path)
	return &domain.Document{
		Type:        domain.DocumentTypePDF,
		Source:      name,
		Title:       extractTitle(raw, path),
		Text:        text,
		Method:      method,
		ExtractedAt: e.now(),
		Metadata: map[string]string{
			domain.MetaSource:           domain.SourceProcurementDocs,
			domain.MetaDocumentType:     string(domain.DocumentTypePDF),
			domain.MetaFilename:         name,
			domain.MetaFileSize:         strconv.FormatInt(info.Size(), 10),
			domain.MetaExtractionMethod: method,
		},
	}, nil
}

// run tries strategies in order and returns the first non-blank text.
func (e *Extractor) run(ctx context.Context, path string, strategies []driven.PDFStrategy) (string, string, error) {
	var errs []error
	for _, s := range strategies {
		if err := ctx.Err(); err != nil {
			return "", "", err
		}
		logger.Debug("pdf: trying %s on %s", s.Name(), path)

		text, err := s.Extract(ctx, path)
		if err != nil {
			logger.Warn("%s failed for %s: %v", s.Name(), filepath.Base(path), err)
			errs = append(errs, err)
			continue
		}
		if strings.TrimSpace(text) == "" {
			logger.Warn("%s returned no text for %s", s.Name(), filepath.Base(path))
			continue
		}

		logger.Info("Extracted text from %s using %s", filepath.Base(path), s.Name())
		return text, s.Name(), nil
	}

	if len(errs) > 0 {
		return "", "", fmt.Errorf("%w: %s: %w", domain.ErrExtractionEmpty, path, errors.Join(errs...))
	}
	return "", "", fmt.Errorf("%w: %s", domain.ErrExtractionEmpty, path)
}

// extractTitle returns the first short non-blank line, or a title built from the file name.
func extractTitle(content, path string) string {
	for _, line := range strings.Split(content, "\n") {
		line = strings.TrimSpace(line)
		if line != "" && len(line) < 200 && strings.IndexByte(line, 0) < 0 {
			return line
		}
	}

	return strings.ReplaceAll(domain.FileStem(path), "_", " ")
}
