package services

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/custodia-labs/proctok/internal/core/domain"
	"github.com/custodia-labs/proctok/internal/core/ports/driven"
	"github.com/custodia-labs/proctok/internal/core/ports/driving"
	"github.com/custodia-labs/proctok/internal/logger"
)

// Ensure ExportService implements the interface.
var _ driving.ExportService = (*ExportService)(nil)

// Export layout under the output root.
const (
	FullTextDir       = "full_text"
	MetadataDir       = "metadata"
	SummariesDir      = "summaries"
	ExportSummaryFile = "export_summary.json"
	ExportReadmeFile  = "README.md"
)

var (
	unsafeFilenameChars = regexp.MustCompile(`[<>:"/\\|?*]`)
	repeatedUnderscores = regexp.MustCompile(`_{2,}`)
)

// maxFilenameLength bounds sanitised names.
const maxFilenameLength = 200

// ExportService rebuilds whole documents from stored chunks and writes them to disk.
type ExportService struct {
	store      driven.VectorStore
	collection string
	now        func() time.Time
	newID      func() string
}

// NewExportService creates a new export service.
func NewExportService(store driven.VectorStore, collection string) *ExportService {
	return &ExportService{
		store:      store,
		collection: collection,
		now:        time.Now,
		newID:      func() string { return uuid.New().String() },
	}
}

// Sanitize makes name safe as a file name.
func Sanitize(name string) string {
	s := unsafeFilenameChars.ReplaceAllString(name, "_")
	s = repeatedUnderscores.ReplaceAllString(s, "_")
	if utf8.RuneCountInString(s) > maxFilenameLength {
		s = string([]rune(s)[:maxFilenameLength])
	}
	return strings.Trim(s, "_")
}

// DocumentKey returns the grouping key for a record. i is the record's position.
func DocumentKey(md map[string]string, i int) string {
	docType := md[domain.MetaDocumentType]
	if docType == "" {
		docType = "unknown"
	}

	switch domain.DocumentType(docType) {
	case domain.DocumentTypePDF:
		return valueOr(md[domain.MetaFilename], "unknown_pdf")
	case domain.DocumentTypeHTML:
		return valueOr(md[domain.MetaFilename], "unknown_html")
	case domain.DocumentTypeWebpage:
		u := valueOr(md[domain.MetaURL], "unknown_webpage")
		segments := strings.Split(u, "/")
		key := segments[len(segments)-1]
		if key == "" && len(segments) > 1 {
			key = segments[len(segments)-2]
		}
		if key == "" {
			key = "webpage"
		}
		return Sanitize(key)
	default:
		return fmt.Sprintf("%s_%d", docType, i)
	}
}

func valueOr(v, fallback string) string {
	if v == "" {
		return fallback
	}
	return v
}

// exportDoc is one document reassembled from its chunks.
type exportDoc struct {
	key       string
	docType   string
	metadata  map[string]string
	chunks    []domain.Record
	text      string
	words     int
	sentences int
}

// groupRecords groups records by document key, keeping first-seen order.
func groupRecords(records []domain.Record) []*exportDoc {
	var order []*exportDoc
	byKey := make(map[string]*exportDoc)
	for i, r := range records {
		key := DocumentKey(r.Metadata, i)
		d, ok := byKey[key]
		if !ok {
			d = &exportDoc{
				key:      key,
				docType:  valueOr(r.Metadata[domain.MetaDocumentType], "unknown"),
				metadata: r.Metadata,
			}
			byKey[key] = d
			order = append(order, d)
		}
		d.chunks = append(d.chunks, r)
	}
	for _, d := range order {
		d.reconstruct()
	}
	return order
}

// reconstruct sorts chunks by numeric chunk_index and joins them.
func (d *exportDoc) reconstruct() {
	sort.SliceStable(d.chunks, func(i, j int) bool {
		return domain.MetaInt(d.chunks[i].Metadata, domain.MetaChunkIndex) <
			domain.MetaInt(d.chunks[j].Metadata, domain.MetaChunkIndex)
	})
	parts := make([]string, len(d.chunks))
	for i, c := range d.chunks {
		parts[i] = c.Text
		d.words += domain.MetaInt(c.Metadata, domain.MetaWordCount)
		d.sentences += domain.MetaInt(c.Metadata, domain.MetaSentenceCount)
	}
	d.text = strings.Join(parts, "\n\n")
}

type exportStatistics struct {
	TotalChunks    int `json:"total_chunks"`
	TotalWords     int `json:"total_words"`
	TotalSentences int `json:"total_sentences"`
	CharacterCount int `json:"character_count"`
}

type exportInfo struct {
	ExportedAt      string `json:"exported_at"`
	TextFile        string `json:"text_file"`
	ReadyForSummary bool   `json:"ready_for_summary"`
	ExportID        string `json:"export_id"`
}

type documentMetadata struct {
	DocumentKey      string            `json:"document_key"`
	Filename         string            `json:"filename"`
	DocumentType     string            `json:"document_type"`
	Statistics       exportStatistics  `json:"statistics"`
	OriginalMetadata map[string]string `json:"original_metadata"`
	ExportInfo       exportInfo        `json:"export_info"`
}

type exportEntry struct {
	DocumentKey   string `json:"document_key"`
	Filename      string `json:"filename"`
	DocumentType  string `json:"document_type"`
	OriginalWords int    `json:"original_words"`
	TextFile      string `json:"text_file"`
	MetadataFile  string `json:"metadata_file"`
	SummaryFile   string `json:"summary_file"`
	SummaryStatus string `json:"summary_status"`
}

type exportSummary struct {
	ExportID        string        `json:"export_id"`
	ExportDate      string        `json:"export_date"`
	CollectionName  string        `json:"collection_name"`
	TotalChunks     int           `json:"total_chunks"`
	UniqueDocuments int           `json:"unique_documents"`
	Documents       []exportEntry `json:"documents"`
}

// Export writes every stored document under outputDir.
func (s *ExportService) Export(ctx context.Context, outputDir string) (*domain.ExportResult, error) {
	if outputDir == "" {
		outputDir = domain.DefaultOutputDir
	}
	for _, sub := range []string{FullTextDir, MetadataDir, SummariesDir} {
		if err := os.MkdirAll(filepath.Join(outputDir, sub), 0o755); err != nil {
			return nil, fmt.Errorf("create output directory: %w", err)
		}
	}

	count, err := s.store.Count(ctx)
	if err != nil {
		return nil, fmt.Errorf("count: %w", err)
	}
	logger.Info("Exporting %s chunks from collection: %s", comma(count), s.collection)
	if count == 0 {
		return nil, fmt.Errorf("%w: no documents in collection %s", domain.ErrNotFound, s.collection)
	}

	records, err := s.store.Get(ctx, domain.GetFilter{})
	if err != nil {
		return nil, fmt.Errorf("get: %w", err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("%w: no document content retrieved", domain.ErrNotFound)
	}

	docs := groupRecords(records)
	logger.Info("Found %d unique documents", len(docs))

	exportID := s.newID()
	result := &domain.ExportResult{
		ExportID:    exportID,
		OutputDir:   outputDir,
		TotalChunks: len(records),
		Documents:   len(docs),
		TextFiles:   []string{},
	}
	summary := exportSummary{
		ExportID:        exportID,
		ExportDate:      domain.FormatTimestamp(s.now()),
		CollectionName:  s.collection,
		TotalChunks:     len(records),
		UniqueDocuments: len(docs),
		Documents:       []exportEntry{},
	}

	for _, d := range docs {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		entry, created, err := s.writeDocument(outputDir, exportID, d)
		if err != nil {
			return nil, err
		}
		if created {
			result.NewSummaryStub++
		}
		result.TextFiles = append(result.TextFiles, filepath.Join(outputDir, entry.TextFile))
		summary.Documents = append(summary.Documents, entry)
		logger.Info("Exported: %s words -> %s", comma(d.words), entry.Filename)
	}

	if err := writeJSON(filepath.Join(outputDir, ExportSummaryFile), summary); err != nil {
		return nil, err
	}
	if err := os.WriteFile(filepath.Join(outputDir, ExportReadmeFile), []byte(s.readme(summary)), 0o644); err != nil {
		return nil, fmt.Errorf("write README: %w", err)
	}
	return result, nil
}

// writeDocument writes the text, metadata and summary placeholder for one document.
func (s *ExportService) writeDocument(outputDir, exportID string, d *exportDoc) (exportEntry, bool, error) {
	filename := Sanitize(d.key)
	if !strings.HasSuffix(filename, ".txt") {
		filename += ".txt"
	}
	stem := strings.TrimSuffix(filename, ".txt")
	textRel := filepath.Join(FullTextDir, filename)
	metaRel := filepath.Join(MetadataDir, stem+".json")
	summaryRel := filepath.Join(SummariesDir, filename)
	ts := domain.FormatTimestamp(s.now())

	header := []string{
		d.key,
		"Document Type: " + d.docType,
		"Total Chunks: " + strconv.Itoa(len(d.chunks)),
		"Total Words: " + comma(d.words),
		"Characters: " + comma(utf8.RuneCountInString(d.text)),
		"Exported: " + ts,
	}
	if _, err := writeFullText(filepath.Join(outputDir, FullTextDir), filename, header, d.text); err != nil {
		return exportEntry{}, false, err
	}

	meta := documentMetadata{
		DocumentKey:  d.key,
		Filename:     filename,
		DocumentType: d.docType,
		Statistics: exportStatistics{
			TotalChunks:    len(d.chunks),
			TotalWords:     d.words,
			TotalSentences: d.sentences,
			CharacterCount: utf8.RuneCountInString(d.text),
		},
		OriginalMetadata: d.metadata,
		ExportInfo: exportInfo{
			ExportedAt:      ts,
			TextFile:        textRel,
			ReadyForSummary: true,
			ExportID:        exportID,
		},
	}
	if err := writeJSON(filepath.Join(outputDir, metaRel), meta); err != nil {
		return exportEntry{}, false, err
	}

	created, err := writeSummaryPlaceholder(filepath.Join(outputDir, summaryRel), d)
	if err != nil {
		return exportEntry{}, false, err
	}

	return exportEntry{
		DocumentKey:   d.key,
		Filename:      filename,
		DocumentType:  d.docType,
		OriginalWords: d.words,
		TextFile:      textRel,
		MetadataFile:  metaRel,
		SummaryFile:   summaryRel,
		SummaryStatus: "pending",
	}, created, nil
}

// writeSummaryPlaceholder creates path unless it already exists.
func writeSummaryPlaceholder(path string, d *exportDoc) (bool, error) {
	if _, err := os.Stat(path); err == nil {
		return false, nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "# SUMMARY: %s\n", d.key)
	fmt.Fprintf(&b, "# Original Length: %s words\n", comma(d.words))
	fmt.Fprintf(&b, "# Target Summary Length: %d words\n", min(1000, d.words/10))
	b.WriteString("# Status: PENDING SUMMARY CREATION\n")
	b.WriteString("\n" + FullTextSeparator + "\n\n")
	b.WriteString("SUMMARY TO BE CREATED\n\n")
	b.WriteString("Key sections to preserve:\n")
	b.WriteString("- Main objectives and requirements\n")
	b.WriteString("- Important procedures and processes\n")
	b.WriteString("- Critical dates and deadlines\n")
	b.WriteString("- Key contacts and responsibilities\n")
	b.WriteString("- Essential technical specifications\n")

	if err := os.WriteFile(path, []byte(b.String()), 0o644); err != nil {
		return false, fmt.Errorf("write summary placeholder: %w", err)
	}
	return true, nil
}

func (s *ExportService) readme(summary exportSummary) string {
	var b strings.Builder
	b.WriteString("# Procurement Documents Export\n\n")
	fmt.Fprintf(&b, "Generated: %s\n", summary.ExportDate)
	fmt.Fprintf(&b, "Source Collection: %s\n", summary.CollectionName)
	fmt.Fprintf(&b, "Total Chunks: %s\n", comma(summary.TotalChunks))
	fmt.Fprintf(&b, "Unique Documents: %d\n\n", summary.UniqueDocuments)
	b.WriteString("## Directory Structure\n\n")
	b.WriteString("- `full_text/` - Complete reconstructed documents\n")
	b.WriteString("- `metadata/` - Document metadata and statistics\n")
	b.WriteString("- `summaries/` - Compressed summaries (to be created)\n")
	b.WriteString("- `export_summary.json` - Export overview and file mapping\n\n")
	b.WriteString("## Next Steps\n\n")
	b.WriteString("1. Review the full text documents in `full_text/`\n")
	b.WriteString("2. Create summaries with `proctok summarize`\n")
	b.WriteString("3. Target summary length: ~10% of original word count\n\n")
	b.WriteString("## Document Summary\n\n")
	for _, d := range summary.Documents {
		fmt.Fprintf(&b, "### %s\n", d.DocumentKey)
		fmt.Fprintf(&b, "- Type: %s\n", d.DocumentType)
		fmt.Fprintf(&b, "- Original: %s words\n", comma(d.OriginalWords))
		fmt.Fprintf(&b, "- Text: `%s`\n", d.TextFile)
		fmt.Fprintf(&b, "- Summary: `%s` (pending)\n\n", d.SummaryFile)
	}
	return b.String()
}

func writeJSON(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("encode %s: %w", filepath.Base(path), err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}
