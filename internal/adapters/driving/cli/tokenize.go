package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/proctok/internal/core/domain"
)

// selfTestPreview is the number of characters shown per self-test hit.
const selfTestPreview = 100

var (
	tokenizeChunkSize  int
	tokenizeOverlap    int
	tokenizeDocsDir    string
	tokenizeFile       string
	tokenizePattern    string
	tokenizeURL        string
	tokenizeReset      bool
	tokenizeMethod     string
	tokenizeExportText bool
)

var tokenizeCmd = &cobra.Command{
	Use:   "tokenize",
	Short: "Extract, chunk, embed and store procurement documents",
	Long: `Extracts text from every PDF in the documents directory (or a single
file, or a single web page with --url), splits it into overlapping chunks
and stores the chunks with their embeddings in the vector store.

Extraction methods:
  auto          - try every strategy in order (default)
  tabula        - pure-Go PDF text extraction
  tabula-layout - pure-Go extraction preserving columns
  pdftotext     - poppler's pdftotext
  http          - plain HTTP fetch of a web page
  browser       - headless Chrome rendering of a web page

Examples:
  proctok tokenize --reset-collection
  proctok tokenize --file tender.pdf --extraction-method pdftotext
  proctok tokenize --url https://example.gov/opportunities/123`,
	Args: cobra.NoArgs,
	RunE: runTokenize,
}

func init() {
	f := tokenizeCmd.Flags()
	f.IntVar(&tokenizeChunkSize, "chunk-size", domain.DefaultChunkSize, "target words per chunk")
	f.IntVar(&tokenizeOverlap, "chunk-overlap", domain.DefaultChunkOverlap, "words repeated between chunks")
	f.StringVar(&tokenizeDocsDir, "docs-dir", "", "directory of PDFs (default from config)")
	f.StringVar(&tokenizeFile, "file", "", "process only this file inside the documents directory")
	f.StringVar(&tokenizePattern, "pattern", "", "glob of files to process, ** matches subdirectories (default *.pdf)")
	f.StringVar(&tokenizeURL, "url", "", "process a single web page instead of PDFs")
	f.BoolVar(&tokenizeReset, "reset-collection", false, "delete the collection before storing")
	f.StringVar(&tokenizeMethod, "extraction-method", domain.MethodAuto, "extraction method")
	f.BoolVar(&tokenizeExportText, "export-text", true, "write full extracted text to the export directory")
	rootCmd.AddCommand(tokenizeCmd)
}

func runTokenize(cmd *cobra.Command, _ []string) error {
	flags := cmd.Flags()
	err := overrideConfig(func(c *domain.Config) {
		if flags.Changed("chunk-size") {
			c.Chunking.ChunkSize = tokenizeChunkSize
		}
		if flags.Changed("chunk-overlap") {
			c.Chunking.Overlap = tokenizeOverlap
		}
		if tokenizeDocsDir != "" {
			c.Paths.DocsDir = tokenizeDocsDir
		}
		if tokenizePattern != "" {
			c.Paths.DocsPattern = tokenizePattern
		}
	})
	if err != nil {
		return err
	}

	svc, err := requireIngest(cmd.Context(), tokenizeExportText)
	if err != nil {
		return err
	}

	result, err := svc.Run(cmd.Context(), domain.IngestRequest{
		URL:     tokenizeURL,
		DocsDir: cfg.Paths.DocsDir,
		File:    tokenizeFile,
		Pattern: cfg.Paths.DocsPattern,
		Method:  tokenizeMethod,
		Reset:   tokenizeReset,
	})
	if result != nil {
		printIngestResult(cmd, result)
	}
	if err != nil {
		return fmt.Errorf("tokenize failed: %w", err)
	}
	return nil
}

func printIngestResult(cmd *cobra.Command, result *domain.IngestResult) {
	cmd.Println()
	printHeading(cmd, "Tokenization Summary")
	cmd.Printf("Processed: %d\n", len(result.Processed))
	cmd.Printf("Failed:    %d\n", len(result.Failed))
	for _, f := range result.Failed {
		cmd.Printf("  - %s\n", f)
	}
	cmd.Printf("Chunks stored: %d\n", result.Records)

	if len(result.SelfTest) == 0 {
		return
	}
	cmd.Println()
	cmd.Printf("Self-test query: %q\n", domain.SelfTestQuery)
	for _, h := range result.SelfTest {
		cmd.Printf("  %d. (%.3f) %s\n", h.Rank, h.Similarity, preview(h.Text, selfTestPreview))
	}
}
