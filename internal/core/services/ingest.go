package services

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"sort"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/custodia-labs/proctok/internal/core/domain"
	"github.com/custodia-labs/proctok/internal/core/ports/driven"
	"github.com/custodia-labs/proctok/internal/core/ports/driving"
	"github.com/custodia-labs/proctok/internal/logger"
)

// Ensure IngestService implements the interface.
var _ driving.IngestService = (*IngestService)(nil)

// selfTestResults is the k used for the post-ingest query.
const selfTestResults = 3

// IngestService extracts, chunks, embeds and stores documents.
type IngestService struct {
	extractors map[domain.DocumentType]driven.Extractor
	chunker    driven.Chunker
	embedder   driven.EmbeddingService
	store      driven.VectorStore

	exportDir string
	batchSize int
	now       func() time.Time
}

// NewIngestService creates an ingest service.
// Extractors are keyed by the document type they produce.
func NewIngestService(
	store driven.VectorStore,
	embedder driven.EmbeddingService,
	chunker driven.Chunker,
	extractors ...driven.Extractor,
) *IngestService {
	byType := make(map[domain.DocumentType]driven.Extractor, len(extractors))
	for _, e := range extractors {
		byType[e.Type()] = e
	}
	return &IngestService{
		extractors: byType,
		chunker:    chunker,
		embedder:   embedder,
		store:      store,
		batchSize:  domain.DefaultBatchSize,
		now:        time.Now,
	}
}

// SetExportDir enables full-text export. Empty disables it.
func (s *IngestService) SetExportDir(dir string) {
	s.exportDir = dir
}

// SetBatchSize sets the number of records per upsert.
func (s *IngestService) SetBatchSize(n int) {
	if n > 0 {
		s.batchSize = n
	}
}

// Methods returns every accepted extraction method name, auto first.
func (s *IngestService) Methods() []string {
	methods := []string{domain.MethodAuto}
	for _, t := range []domain.DocumentType{domain.DocumentTypePDF, domain.DocumentTypeWebpage} {
		if l, ok := s.extractors[t].(driven.MethodLister); ok {
			methods = append(methods, l.Methods()...)
		}
	}
	return methods
}

// ValidateMethod rejects names no extractor knows.
func (s *IngestService) ValidateMethod(method string) error {
	if method == "" || slices.Contains(s.Methods(), method) {
		return nil
	}
	return fmt.Errorf("%w: extraction method %q (want %s)",
		domain.ErrInvalidMethod, method, strings.Join(s.Methods(), ", "))
}

// methodFor maps a shared method name onto one extractor.
// A name belonging to another extractor falls back to auto.
func (s *IngestService) methodFor(t domain.DocumentType, method string) string {
	l, ok := s.extractors[t].(driven.MethodLister)
	if !ok || method == "" {
		return domain.MethodAuto
	}
	if slices.Contains(l.Methods(), method) {
		return method
	}
	return domain.MethodAuto
}

func (s *IngestService) extractor(t domain.DocumentType) (driven.Extractor, error) {
	e, ok := s.extractors[t]
	if !ok {
		return nil, fmt.Errorf("%w: no extractor for %s", domain.ErrUnsupportedType, t)
	}
	return e, nil
}

// Prepare checks the store is reachable and ensures the collection exists.
func (s *IngestService) Prepare(ctx context.Context, reset bool) error {
	if err := s.store.Heartbeat(ctx); err != nil {
		return err
	}
	if reset {
		logger.Info("Resetting collection")
	}
	if err := s.store.EnsureCollection(ctx, reset); err != nil {
		return fmt.Errorf("ensure collection: %w", err)
	}
	return nil
}

// ProcessPDF extracts and chunks one PDF. Records carry no embeddings yet.
func (s *IngestService) ProcessPDF(ctx context.Context, path, method string) ([]domain.Record, error) {
	logger.Info("Processing PDF file: %s", filepath.Base(path))

	e, err := s.extractor(domain.DocumentTypePDF)
	if err != nil {
		return nil, err
	}
	doc, err := e.Extract(ctx, path, driven.ExtractOptions{Method: s.methodFor(domain.DocumentTypePDF, method)})
	if err != nil {
		return nil, err
	}
	logger.Info("Extracted %d characters from %s", utf8.RuneCountInString(doc.Text), doc.Source)

	if s.exportDir != "" {
		header := []string{
			doc.Source,
			"Document Type: PDF",
			fmt.Sprintf("File Size: %s bytes", comma(domain.MetaInt(doc.Metadata, domain.MetaFileSize))),
			"Characters: " + comma(utf8.RuneCountInString(doc.Text)),
			"Words: " + comma(len(strings.Fields(doc.Text))),
			"Processed: " + domain.FormatTimestamp(s.now()),
		}
		s.export(domain.FileStem(path)+".txt", header, doc.Text)
	}

	return s.records(doc, func(i int) string {
		return domain.RecordID(doc.Source, i, domain.DocumentTypePDF)
	})
}

// ProcessURL extracts and chunks one web page.
func (s *IngestService) ProcessURL(ctx context.Context, rawURL, method string) ([]domain.Record, error) {
	logger.Info("Processing web page: %s", rawURL)

	e, err := s.extractor(domain.DocumentTypeWebpage)
	if err != nil {
		return nil, err
	}
	doc, err := e.Extract(ctx, rawURL, driven.ExtractOptions{Method: s.methodFor(domain.DocumentTypeWebpage, method)})
	if err != nil {
		return nil, err
	}
	logger.Info("Extracted %d characters from %s", utf8.RuneCountInString(doc.Text), rawURL)

	identifier := domain.URLIdentifier(rawURL)
	if s.exportDir != "" {
		header := []string{
			rawURL,
			"Document Type: Webpage",
			"Domain: " + doc.Metadata[domain.MetaDomain],
			"Extraction Method: " + doc.Method,
			"Characters: " + comma(utf8.RuneCountInString(doc.Text)),
			"Words: " + comma(len(strings.Fields(doc.Text))),
			"Extracted: " + doc.Metadata[domain.MetaExtractedAt],
			"Processed: " + domain.FormatTimestamp(s.now()),
		}
		s.export(identifier+".txt", header, doc.Text)
	}

	return s.records(doc, func(i int) string {
		return domain.RecordID(identifier, i, domain.DocumentTypeWebpage)
	})
}

// ProcessSavedHTML extracts and chunks one saved HTML file.
func (s *IngestService) ProcessSavedHTML(ctx context.Context, path, originalURL string) ([]domain.Record, error) {
	logger.Info("Processing HTML file: %s", filepath.Base(path))

	e, err := s.extractor(domain.DocumentTypeHTML)
	if err != nil {
		return nil, err
	}
	doc, err := e.Extract(ctx, path, driven.ExtractOptions{OriginalURL: originalURL})
	if err != nil {
		return nil, err
	}
	logger.Info("Extracted %d characters from %s", utf8.RuneCountInString(doc.Text), doc.Source)

	if s.exportDir != "" {
		header := []string{
			filepath.Base(path),
			"Document Type: HTML",
			"Source File: " + path,
			fmt.Sprintf("File Size: %s bytes", comma(domain.MetaInt(doc.Metadata, domain.MetaFileSize))),
		}
		if u := doc.Metadata[domain.MetaOriginalURL]; u != "" {
			header = append(header, "Original URL: "+u)
		}
		if t := doc.Metadata[domain.MetaTitle]; t != "" {
			header = append(header, "Title: "+t)
		}
		header = append(header,
			"Characters: "+comma(utf8.RuneCountInString(doc.Text)),
			"Words: "+comma(len(strings.Fields(doc.Text))),
			"Processed: "+domain.FormatTimestamp(s.now()),
		)
		s.export(domain.FileStem(path)+"_html.txt", header, doc.Text)
	}

	return s.records(doc, func(i int) string {
		return domain.SavedHTMLRecordID(path, i)
	})
}

// export writes a full-text file. Failures are logged; they never fail the document.
func (s *IngestService) export(name string, header []string, text string) {
	path, err := writeFullText(s.exportDir, name, header, text)
	if err != nil {
		logger.Warn("Failed to export full text: %v", err)
		return
	}
	logger.Info("Exported full text to: %s", path)
}

func (s *IngestService) records(doc *domain.Document, id func(int) string) ([]domain.Record, error) {
	chunks, err := s.chunker.Chunk(doc.Text)
	if err != nil {
		return nil, err
	}

	processedAt := s.now()
	records := make([]domain.Record, 0, len(chunks))
	for _, c := range chunks {
		records = append(records, domain.Record{
			ID:       id(c.ChunkIndex),
			Text:     c.Text,
			Metadata: domain.ChunkMetadata(doc.Metadata, c, processedAt),
		})
	}
	logger.Info("Created %d chunks from %s", len(records), doc.Source)
	return records, nil
}

// Store embeds records and upserts them in fixed-size batches, sequentially.
// A failure leaves earlier batches stored and returns the number written so far.
func (s *IngestService) Store(ctx context.Context, records []domain.Record) (int, error) {
	if len(records) == 0 {
		logger.Warn("No documents to add")
		return 0, nil
	}

	total := (len(records) + s.batchSize - 1) / s.batchSize
	stored := 0
	for start := 0; start < len(records); start += s.batchSize {
		end := min(start+s.batchSize, len(records))
		batch := slices.Clone(records[start:end])

		texts := make([]string, len(batch))
		for i, r := range batch {
			texts[i] = r.Text
		}
		vectors, err := s.embedder.EmbedBatch(ctx, texts)
		if err != nil {
			return stored, fmt.Errorf("embed batch %d/%d: %w", start/s.batchSize+1, total, err)
		}
		if len(vectors) != len(batch) {
			return stored, fmt.Errorf("%w: got %d embeddings for %d texts",
				domain.ErrEmbeddingUnavailable, len(vectors), len(batch))
		}
		for i := range batch {
			batch[i].Embedding = vectors[i]
		}

		if err := s.store.Upsert(ctx, batch); err != nil {
			return stored, fmt.Errorf("upsert batch %d/%d: %w", start/s.batchSize+1, total, err)
		}
		stored += len(batch)
		logger.Info("Added batch %d/%d", start/s.batchSize+1, total)
	}

	logger.Info("Successfully added %d documents to collection", stored)
	return stored, nil
}

// Run processes a URL or the PDFs in a directory, stores every chunk and
// runs the self-test query.
func (s *IngestService) Run(ctx context.Context, req domain.IngestRequest) (*domain.IngestResult, error) {
	if err := s.ValidateMethod(req.Method); err != nil {
		return nil, err
	}

	var files []string
	if req.URL == "" {
		var err error
		if files, err = s.resolveFiles(req); err != nil {
			return nil, err
		}
	}

	if err := s.Prepare(ctx, req.Reset); err != nil {
		return nil, err
	}

	result := &domain.IngestResult{Processed: []string{}, Failed: []string{}}
	var all []domain.Record

	if req.URL != "" {
		records, err := s.ProcessURL(ctx, req.URL, req.Method)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			logger.Error("Failed to process URL %s: %v", req.URL, err)
			result.Failed = append(result.Failed, req.URL)
		} else {
			logger.Info("Successfully processed URL: %s", req.URL)
			result.Processed = append(result.Processed, req.URL)
			all = records
		}
	} else {
		logger.Info("Found %d PDF files to process", len(files))
		for _, path := range files {
			records, err := s.ProcessPDF(ctx, path, req.Method)
			if err != nil {
				if ctx.Err() != nil {
					return nil, ctx.Err()
				}
				logger.Error("Failed to process %s: %v", filepath.Base(path), err)
				result.Failed = append(result.Failed, path)
				continue
			}
			result.Processed = append(result.Processed, path)
			all = append(all, records...)
		}
	}

	if len(all) == 0 {
		return result, fmt.Errorf("%w: no documents were processed successfully", domain.ErrExtractionEmpty)
	}

	logger.Info("Adding %d chunks to collection", len(all))
	n, err := s.Store(ctx, all)
	result.Records = n
	if err != nil {
		return result, err
	}

	result.SelfTest = s.selfTest(ctx)
	return result, nil
}

// RunSavedHTML processes saved HTML files, storing each file's chunks before the next.
func (s *IngestService) RunSavedHTML(ctx context.Context, req domain.SavedHTMLRequest) (*domain.IngestResult, error) {
	if len(req.Files) == 0 {
		return nil, fmt.Errorf("%w: no HTML files given", domain.ErrInvalidInput)
	}
	if err := s.Prepare(ctx, req.Reset); err != nil {
		return nil, err
	}

	result := &domain.IngestResult{Processed: []string{}, Failed: []string{}}
	for _, path := range req.Files {
		records, err := s.ProcessSavedHTML(ctx, path, req.OriginalURL)
		if err == nil {
			var n int
			n, err = s.Store(ctx, records)
			result.Records += n
		}
		if err != nil {
			if ctx.Err() != nil {
				return result, ctx.Err()
			}
			logger.Error("Failed to process %s: %v", filepath.Base(path), err)
			result.Failed = append(result.Failed, path)
			continue
		}
		logger.Info("Successfully processed: %s", filepath.Base(path))
		result.Processed = append(result.Processed, path)
	}

	if len(result.Processed) == 0 {
		return result, fmt.Errorf("%w: no HTML files were processed successfully", domain.ErrExtractionEmpty)
	}
	return result, nil
}

// resolveFiles returns the PDFs a run should process, sorted.
func (s *IngestService) resolveFiles(req domain.IngestRequest) ([]string, error) {
	dir := req.DocsDir
	if dir == "" {
		dir = domain.DefaultDocsDir
	}
	info, err := os.Stat(dir)
	if err != nil || !info.IsDir() {
		return nil, fmt.Errorf("%w: documents directory does not exist: %s", domain.ErrSourceUnavailable, dir)
	}

	if req.File != "" {
		path := filepath.Join(dir, req.File)
		if _, err := os.Stat(path); err != nil {
			return nil, fmt.Errorf("%w: file not found: %s", domain.ErrSourceUnavailable, path)
		}
		return []string{path}, nil
	}

	pattern := req.Pattern
	if pattern == "" {
		pattern = domain.DefaultDocsPattern
	}
	matches, err := doublestar.Glob(os.DirFS(dir), pattern)
	if err != nil {
		return nil, fmt.Errorf("%w: pattern %q: %v", domain.ErrInvalidInput, pattern, err)
	}
	sort.Strings(matches)

	files := make([]string, 0, len(matches))
	for _, m := range matches {
		files = append(files, filepath.Join(dir, filepath.FromSlash(m)))
	}
	if len(files) == 0 {
		logger.Warn("No files match %s in %s", pattern, dir)
	}
	return files, nil
}

// selfTest queries the store and logs the top matches. Failures are logged only.
func (s *IngestService) selfTest(ctx context.Context) []domain.SearchHit {
	logger.Info("Testing query: '%s'", domain.SelfTestQuery)

	hits, err := search(ctx, s.embedder, s.store, domain.SelfTestQuery, selfTestResults)
	if err != nil {
		if !errors.Is(err, context.Canceled) {
			logger.Warn("Self-test query failed: %v", err)
		}
		return nil
	}
	for _, h := range hits {
		logger.Info("Result %d: %s (similarity %.3f)", h.Rank, truncate(h.Text, 100), h.Similarity)
	}
	return hits
}
