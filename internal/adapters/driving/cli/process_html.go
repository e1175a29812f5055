package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/proctok/internal/core/domain"
	"github.com/custodia-labs/proctok/internal/logger"
)

var (
	htmlChunkSize   int
	htmlOverlap     int
	htmlOriginalURL string
	htmlReset       bool
	htmlExportText  bool
)

var processHTMLCmd = &cobra.Command{
	Use:   "process-html [files...]",
	Short: "Process web pages saved from a browser",
	Long: `Processes HTML files saved with the browser's "Save Page As" and stores
their chunks in the vector store. Use this for pages that block automated
fetching or need a login.

Examples:
  proctok process-html saved_page.html
  proctok process-html *.html --original-url https://example.gov/opportunity
  proctok process-html page.html --reset-collection`,
	RunE: runProcessHTML,
}

func init() {
	f := processHTMLCmd.Flags()
	f.IntVar(&htmlChunkSize, "chunk-size", domain.DefaultChunkSize, "target words per chunk")
	f.IntVar(&htmlOverlap, "chunk-overlap", domain.DefaultChunkOverlap, "words repeated between chunks")
	f.StringVar(&htmlOriginalURL, "original-url", "", "URL the pages were saved from (for metadata)")
	f.BoolVar(&htmlReset, "reset-collection", false, "delete the collection before storing")
	f.BoolVar(&htmlExportText, "export-text", true, "write full extracted text to the export directory")
	rootCmd.AddCommand(processHTMLCmd)
}

func runProcessHTML(cmd *cobra.Command, args []string) error {
	if len(args) == 0 {
		logger.Error("No HTML files provided. Use --help for usage information.")
		cmd.Println()
		cmd.Println("Quick start:")
		cmd.Println("1. Save a webpage as HTML (Ctrl+S in browser)")
		cmd.Println("2. Run: proctok process-html saved_page.html")
		cmd.Println("3. Optionally add --original-url for better metadata")
		return nil
	}

	flags := cmd.Flags()
	err := overrideConfig(func(c *domain.Config) {
		if flags.Changed("chunk-size") {
			c.Chunking.ChunkSize = htmlChunkSize
		}
		if flags.Changed("chunk-overlap") {
			c.Chunking.Overlap = htmlOverlap
		}
	})
	if err != nil {
		return err
	}

	svc, err := requireIngest(cmd.Context(), htmlExportText)
	if err != nil {
		return err
	}

	result, err := svc.RunSavedHTML(cmd.Context(), domain.SavedHTMLRequest{
		Files:       args,
		OriginalURL: htmlOriginalURL,
		Reset:       htmlReset,
	})
	if result != nil {
		cmd.Println()
		printHeading(cmd, "Processing complete")
		cmd.Printf("Processed files: %d/%d\n", len(result.Processed), len(args))
		cmd.Printf("Total chunks added: %d\n", result.Records)
		cmd.Printf("Collection: %s\n", cfg.Store.Collection)
	}
	if err != nil {
		return fmt.Errorf("process-html failed: %w", err)
	}
	return nil
}
