package cli

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/proctok/internal/core/services"
)

var exportOutputDir string

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Rebuild stored documents as text files",
	Long: `Reassembles every stored document from its chunks and writes, under the
output directory:

  full_text/            - one text file per document
  metadata/             - document metadata and statistics as JSON
  summaries/            - summary placeholders, never overwritten
  export_summary.json   - export overview and file mapping
  README.md             - directory guide`,
	Args: cobra.NoArgs,
	RunE: runExport,
}

func init() {
	exportCmd.Flags().StringVar(&exportOutputDir, "output-dir", "", "export root directory (default from config)")
	rootCmd.AddCommand(exportCmd)
}

func runExport(cmd *cobra.Command, _ []string) error {
	svc, err := requireExport(cmd.Context())
	if err != nil {
		return err
	}

	dir := exportOutputDir
	if dir == "" {
		dir = cfg.Paths.OutputDir
	}

	result, err := svc.Export(cmd.Context(), dir)
	if err != nil {
		return fmt.Errorf("export failed: %w", err)
	}

	printHeading(cmd, "Export complete")
	cmd.Printf("Export ID: %s\n", result.ExportID)
	cmd.Printf("Documents: %d (%d chunks)\n", result.Documents, result.TotalChunks)
	cmd.Printf("New summary placeholders: %d\n", result.NewSummaryStub)
	cmd.Printf("Output: %s\n", result.OutputDir)
	for _, f := range result.TextFiles {
		cmd.Printf("  - %s\n", f)
	}
	cmd.Printf("Overview: %s\n", filepath.Join(result.OutputDir, services.ExportSummaryFile))
	return nil
}
