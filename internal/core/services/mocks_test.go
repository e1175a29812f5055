package services

import (
	"context"
	"errors"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/custodia-labs/proctok/internal/core/domain"
	"github.com/custodia-labs/proctok/internal/core/ports/driven"
)

var errMock = errors.New("mock failure")

// mockEmbedder derives a small deterministic vector from the text.
type mockEmbedder struct {
	calls   int
	failOn  int // 1-based EmbedBatch call that fails; 0 never fails
	pingErr error
}

func (m *mockEmbedder) vector(text string) []float32 {
	return []float32{
		float32(len(text)%7 + 1),
		float32(strings.Count(text, "a") + 1),
		float32(strings.Count(text, "e") + 1),
		1,
	}
}

func (m *mockEmbedder) Embed(_ context.Context, text string) ([]float32, error) {
	return m.vector(text), nil
}

func (m *mockEmbedder) EmbedBatch(_ context.Context, texts []string) ([][]float32, error) {
	m.calls++
	if m.failOn > 0 && m.calls == m.failOn {
		return nil, errMock
	}
	out := make([][]float32, len(texts))
	for i, t := range texts {
		out[i] = m.vector(t)
	}
	return out, nil
}

func (m *mockEmbedder) Dimensions() int            { return 4 }
func (m *mockEmbedder) ModelName() string          { return "mock-embed" }
func (m *mockEmbedder) Ping(context.Context) error { return m.pingErr }
func (m *mockEmbedder) Close() error               { return nil }

// mockExtractor returns fixed text for every source, or fails for sources in failFor.
type mockExtractor struct {
	docType  domain.DocumentType
	text     string
	methods  []string
	failFor  map[string]bool
	lastOpts driven.ExtractOptions
}

func (m *mockExtractor) Type() domain.DocumentType { return m.docType }

func (m *mockExtractor) Methods() []string { return m.methods }

func (m *mockExtractor) Extract(_ context.Context, source string, opts driven.ExtractOptions) (*domain.Document, error) {
	m.lastOpts = opts
	if m.failFor[filepath.Base(source)] || m.failFor[source] {
		return nil, domain.ErrExtractionEmpty
	}
	method := opts.Method
	if method == "" || method == domain.MethodAuto {
		method = "mock"
	}
	md := map[string]string{
		domain.MetaSource:           domain.SourceProcurementDocs,
		domain.MetaDocumentType:     string(m.docType),
		domain.MetaExtractionMethod: method,
	}
	name := filepath.Base(source)
	switch m.docType {
	case domain.DocumentTypeWebpage:
		md[domain.MetaURL] = source
		md[domain.MetaDomain] = "example.gov"
		name = source
	default:
		md[domain.MetaFilename] = name
		md[domain.MetaFileSize] = strconv.Itoa(len(m.text))
	}
	if opts.OriginalURL != "" {
		md[domain.MetaOriginalURL] = opts.OriginalURL
	}
	return &domain.Document{
		Type:     m.docType,
		Source:   name,
		Text:     m.text,
		Method:   method,
		Metadata: md,
	}, nil
}

// paragraphChunker emits one chunk per blank-line separated paragraph.
type paragraphChunker struct{}

func (paragraphChunker) Chunk(text string) ([]domain.Chunk, error) {
	var parts []string
	for _, p := range strings.Split(text, "\n\n") {
		if p = strings.TrimSpace(p); p != "" {
			parts = append(parts, p)
		}
	}
	chunks := make([]domain.Chunk, len(parts))
	for i, p := range parts {
		chunks[i] = domain.Chunk{
			Text:          p,
			WordCount:     len(strings.Fields(p)),
			SentenceCount: 1,
			ChunkIndex:    i,
			TotalChunks:   len(parts),
		}
	}
	return chunks, nil
}

// mockLLM returns reply, or err when set.
type mockLLM struct {
	reply    string
	err      error
	messages []driven.ChatMessage
	opts     driven.ChatOptions
}

func (m *mockLLM) Chat(_ context.Context, messages []driven.ChatMessage, opts driven.ChatOptions) (string, error) {
	m.messages = messages
	m.opts = opts
	if m.err != nil {
		return "", m.err
	}
	return m.reply, nil
}

func (m *mockLLM) ModelName() string          { return "mock-llm" }
func (m *mockLLM) Ping(context.Context) error { return m.err }
func (m *mockLLM) Close() error               { return nil }

// mockFetcher returns a fixed page or an error.
type mockFetcher struct {
	name string
	html string
	err  error
}

func (m *mockFetcher) Name() string { return m.name }

func (m *mockFetcher) Fetch(_ context.Context, url string) (*driven.FetchedPage, error) {
	if m.err != nil {
		return nil, m.err
	}
	return &driven.FetchedPage{URL: url, StatusCode: 200, HTML: m.html}, nil
}

// seedRecords builds n records with embeddings for one document.
func seedRecords(docType domain.DocumentType, key string, texts ...string) []domain.Record {
	e := &mockEmbedder{}
	records := make([]domain.Record, len(texts))
	for i, t := range texts {
		md := map[string]string{
			domain.MetaDocumentType:  string(docType),
			domain.MetaChunkIndex:    strconv.Itoa(i),
			domain.MetaTotalChunks:   strconv.Itoa(len(texts)),
			domain.MetaWordCount:     strconv.Itoa(len(strings.Fields(t))),
			domain.MetaSentenceCount: "1",
		}
		if docType == domain.DocumentTypeWebpage {
			md[domain.MetaURL] = key
		} else {
			md[domain.MetaFilename] = key
		}
		records[i] = domain.Record{
			ID:        domain.RecordID(key, i, docType),
			Text:      t,
			Metadata:  md,
			Embedding: e.vector(t),
		}
	}
	return records
}
