package services

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/proctok/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/proctok/internal/core/domain"
)

func TestSanitize(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"report.pdf", "report.pdf"},
		{`a<b>c:d"e/f\g|h?i*j`, "a_b_c_d_e_f_g_h_i_j"},
		{"__lead__and__trail__", "lead_and_trail"},
		{"x??y", "x_y"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, Sanitize(tt.in))
		})
	}
}

func TestSanitize_Truncates(t *testing.T) {
	long := make([]byte, 300)
	for i := range long {
		long[i] = 'a'
	}
	assert.Len(t, Sanitize(string(long)), maxFilenameLength)
}

func TestSanitize_TruncatesOnRuneBoundary(t *testing.T) {
	got := Sanitize(strings.Repeat("a", 199) + "é.pdf")
	assert.True(t, utf8.ValidString(got))
	assert.Equal(t, maxFilenameLength, utf8.RuneCountInString(got))
	assert.Equal(t, strings.Repeat("a", 199)+"é", got)
}

func TestExportService_Export_CountsCharactersAsRunes(t *testing.T) {
	svc, store := newTestExport(t)
	ctx := context.Background()
	require.NoError(t, store.Upsert(ctx, seedRecords(domain.DocumentTypePDF, "menu.pdf", "Crème", "brûlée")))
	out := t.TempDir()

	_, err := svc.Export(ctx, out)
	require.NoError(t, err)

	text, err := os.ReadFile(filepath.Join(out, FullTextDir, "menu.pdf.txt"))
	require.NoError(t, err)
	assert.Contains(t, string(text), "# Characters: 13\n")

	raw, err := os.ReadFile(filepath.Join(out, MetadataDir, "menu.pdf.json"))
	require.NoError(t, err)
	var meta documentMetadata
	require.NoError(t, json.Unmarshal(raw, &meta))
	assert.Equal(t, 13, meta.Statistics.CharacterCount)
}

func TestDocumentKey(t *testing.T) {
	tests := []struct {
		name string
		md   map[string]string
		want string
	}{
		{"pdf", map[string]string{"document_type": "pdf", "filename": "rfp.pdf"}, "rfp.pdf"},
		{"pdf without filename", map[string]string{"document_type": "pdf"}, "unknown_pdf"},
		{"html", map[string]string{"document_type": "html", "filename": "page.html"}, "page.html"},
		{"webpage last segment", map[string]string{"document_type": "webpage", "url": "https://gov.bc.ca/buy/sprint-with-us"}, "sprint-with-us"},
		{"webpage trailing slash", map[string]string{"document_type": "webpage", "url": "https://gov.bc.ca/buy/"}, "buy"},
		{"unknown type", map[string]string{}, "unknown_7"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DocumentKey(tt.md, 7))
		})
	}
}

func TestGroupRecords_OrdersChunksNumerically(t *testing.T) {
	texts := make([]string, 12)
	for i := range texts {
		texts[i] = string(rune('a' + i))
	}
	records := seedRecords(domain.DocumentTypePDF, "a.pdf", texts...)
	// store order 11, 10, ..., 0 so a lexical sort would put 10 and 11 before 2
	reversed := make([]domain.Record, len(records))
	for i, r := range records {
		reversed[len(records)-1-i] = r
	}
	other := seedRecords(domain.DocumentTypePDF, "b.pdf", "only")

	docs := groupRecords(append(reversed, other...))
	require.Len(t, docs, 2)
	assert.Equal(t, "a.pdf", docs[0].key)
	assert.Equal(t, "b.pdf", docs[1].key)
	assert.Equal(t, "a\n\nb\n\nc\n\nd\n\ne\n\nf\n\ng\n\nh\n\ni\n\nj\n\nk\n\nl", docs[0].text)
	assert.Equal(t, 12, docs[0].words)
	assert.Equal(t, 12, docs[0].sentences)
}

func newTestExport(t *testing.T) (*ExportService, *memory.VectorStore) {
	t.Helper()
	store := memory.NewVectorStore()
	svc := NewExportService(store, "procurement_docs")
	svc.now = func() time.Time { return time.Date(2025, 3, 1, 9, 30, 0, 0, time.UTC) }
	svc.newID = func() string { return "export-1" }
	return svc, store
}

func TestExportService_Export(t *testing.T) {
	svc, store := newTestExport(t)
	ctx := context.Background()
	require.NoError(t, store.Upsert(ctx, seedRecords(domain.DocumentTypePDF, "rfp.pdf", "First part here.", "Second part.")))
	require.NoError(t, store.Upsert(ctx, seedRecords(domain.DocumentTypeWebpage, "https://example.gov/buy/sprint", "Web text.")))
	out := t.TempDir()

	result, err := svc.Export(ctx, out)
	require.NoError(t, err)

	assert.Equal(t, "export-1", result.ExportID)
	assert.Equal(t, 3, result.TotalChunks)
	assert.Equal(t, 2, result.Documents)
	assert.Equal(t, 2, result.NewSummaryStub)
	assert.Equal(t, []string{
		filepath.Join(out, FullTextDir, "rfp.pdf.txt"),
		filepath.Join(out, FullTextDir, "sprint.txt"),
	}, result.TextFiles)

	text, err := os.ReadFile(filepath.Join(out, FullTextDir, "rfp.pdf.txt"))
	require.NoError(t, err)
	assert.Contains(t, string(text), "# rfp.pdf\n# Document Type: pdf\n# Total Chunks: 2\n# Total Words: 5\n")
	assert.Contains(t, string(text), "# Exported: 2025-03-01T09:30:00.000000")
	assert.Equal(t, "First part here.\n\nSecond part.", StripHeader(string(text)))

	raw, err := os.ReadFile(filepath.Join(out, MetadataDir, "rfp.pdf.json"))
	require.NoError(t, err)
	var meta documentMetadata
	require.NoError(t, json.Unmarshal(raw, &meta))
	assert.Equal(t, "export-1", meta.ExportInfo.ExportID)
	assert.Equal(t, 2, meta.Statistics.TotalChunks)
	assert.True(t, meta.ExportInfo.ReadyForSummary)

	raw, err = os.ReadFile(filepath.Join(out, ExportSummaryFile))
	require.NoError(t, err)
	var summary exportSummary
	require.NoError(t, json.Unmarshal(raw, &summary))
	assert.Equal(t, 2, summary.UniqueDocuments)
	require.Len(t, summary.Documents, 2)
	assert.Equal(t, "pending", summary.Documents[0].SummaryStatus)

	readme, err := os.ReadFile(filepath.Join(out, ExportReadmeFile))
	require.NoError(t, err)
	assert.Contains(t, string(readme), "Source Collection: procurement_docs")
	assert.Contains(t, string(readme), "### sprint")

	stub, err := os.ReadFile(filepath.Join(out, SummariesDir, "sprint.txt"))
	require.NoError(t, err)
	assert.Contains(t, string(stub), "# Status: PENDING SUMMARY CREATION")
}

func TestExportService_Export_KeepsExistingSummaries(t *testing.T) {
	svc, store := newTestExport(t)
	ctx := context.Background()
	require.NoError(t, store.Upsert(ctx, seedRecords(domain.DocumentTypePDF, "rfp.pdf", "Text.")))
	out := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(out, SummariesDir), 0o755))
	existing := filepath.Join(out, SummariesDir, "rfp.pdf.txt")
	require.NoError(t, os.WriteFile(existing, []byte("hand written"), 0o644))

	result, err := svc.Export(ctx, out)
	require.NoError(t, err)
	assert.Zero(t, result.NewSummaryStub)

	data, err := os.ReadFile(existing)
	require.NoError(t, err)
	assert.Equal(t, "hand written", string(data))
}

func TestExportService_Export_EmptyCollection(t *testing.T) {
	svc, _ := newTestExport(t)

	_, err := svc.Export(context.Background(), t.TempDir())
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
