package domain

// Token estimation methods.
const (
	EstimateGPT        = "gpt"
	EstimateClaude     = "claude"
	EstimateCharacters = "characters"
	EstimateWords      = "words"
)

// TokenReport is the result of analysing every stored chunk.
type TokenReport struct {
	Collection string `json:"collection"`

	// StoredCount is the store's own count; Retrieved may be lower if paging failed.
	StoredCount int `json:"stored_count"`
	Retrieved   int `json:"retrieved"`

	TotalCharacters int     `json:"total_characters"`
	TotalWords      int     `json:"total_words"`
	AvgCharacters   float64 `json:"avg_characters"`
	MaxCharacters   int     `json:"max_characters"`
	MinCharacters   int     `json:"min_characters"`

	GPTTokens    int `json:"gpt_tokens"`
	ClaudeTokens int `json:"claude_tokens"`

	Windows []WindowFit `json:"windows"`

	Recommendation RecommendationTier `json:"recommendation"`

	// SampleChunks is min(10, Retrieved); SampleTokens estimates their combined size.
	SampleChunks int `json:"sample_chunks"`
	SampleTokens int `json:"sample_tokens"`
}

// WindowFit reports how the collection compares with one model's context window.
type WindowFit struct {
	Model       string  `json:"model"`
	Tokens      int     `json:"tokens"`
	Fits        bool    `json:"fits"`
	PercentUsed float64 `json:"percent_used"`
}

// RecommendationTier classifies total token size.
type RecommendationTier string

// Recommendation tiers, smallest first.
const (
	TierSmallContext RecommendationTier = "small_context"
	TierGPT4Context  RecommendationTier = "gpt4_context"
	TierLargeContext RecommendationTier = "large_context"
	TierRAG          RecommendationTier = "rag"
)

// RecommendationFor returns the tier for a total token estimate.
func RecommendationFor(tokens int) RecommendationTier {
	switch {
	case tokens <= 4096:
		return TierSmallContext
	case tokens <= 8192:
		return TierGPT4Context
	case tokens <= 128000:
		return TierLargeContext
	default:
		return TierRAG
	}
}

// ExportResult summarises an export run.
type ExportResult struct {
	ExportID       string   `json:"export_id"`
	OutputDir      string   `json:"output_dir"`
	TotalChunks    int      `json:"total_chunks"`
	Documents      int      `json:"documents"`
	TextFiles      []string `json:"text_files"`
	NewSummaryStub int      `json:"new_summary_placeholders"`
}

// Summary methods.
const (
	SummaryLocal         = "local"
	SummaryLLM           = "llm"
	SummaryLocalFallback = "local_fallback"
)

// SummaryResult describes one summarised document.
type SummaryResult struct {
	DocumentName     string  `json:"document_name"`
	OriginalTokens   int     `json:"original_tokens"`
	SummaryTokens    int     `json:"summary_tokens"`
	CompressionRatio float64 `json:"compression_ratio"`
	TargetTokens     int     `json:"target_tokens"`
	Method           string  `json:"method"`
	CreatedAt        string  `json:"created_at"`
	SummaryFile      string  `json:"summary_file,omitempty"`
}

// SummaryReport aggregates a summarisation run.
type SummaryReport struct {
	Documents           int             `json:"total_documents"`
	TotalOriginalTokens int             `json:"total_original_tokens"`
	TotalSummaryTokens  int             `json:"total_summary_tokens"`
	OverallCompression  float64         `json:"overall_compression"`
	Details             []SummaryResult `json:"document_details"`
	Skipped             []string        `json:"skipped,omitempty"`
}

// IngestResult summarises an ingest run.
type IngestResult struct {
	Processed []string `json:"processed"`
	Failed    []string `json:"failed"`
	Records   int      `json:"records"`

	// SelfTest holds the results of the post-ingest query.
	SelfTest []SearchHit `json:"self_test,omitempty"`
}

// CheckResult is one diagnostics check.
type CheckResult struct {
	Name    string `json:"name"`
	Passed  bool   `json:"passed"`
	Message string `json:"message"`
}
