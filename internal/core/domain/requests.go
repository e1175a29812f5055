package domain

// MethodAuto tries every extraction strategy in order.
const MethodAuto = "auto"

// IngestRequest describes one tokenize run.
type IngestRequest struct {
	// URL, when set, is processed alone.
	URL string

	// DocsDir is scanned for PDFs when URL is empty.
	DocsDir string

	// File restricts the run to one file inside DocsDir.
	File string

	// Pattern is a doublestar glob relative to DocsDir.
	Pattern string

	// Method is an extraction method name; auto applies to PDFs and web pages.
	Method string

	// Reset deletes the collection before writing.
	Reset bool
}

// SavedHTMLRequest describes one process-html run.
type SavedHTMLRequest struct {
	Files []string

	// OriginalURL overrides URL detection for every file.
	OriginalURL string

	Reset bool
}

// SummaryRequest describes one summarize run.
type SummaryRequest struct {
	InputDir  string
	OutputDir string

	// Document restricts the run to one file inside InputDir.
	Document string

	UseLLM           bool
	CompressionRatio float64
}
