package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var diagnoseURL string

var diagnoseCmd = &cobra.Command{
	Use:   "diagnose",
	Short: "Check web fetching, the vector store and the embedder",
	Long: `Runs each connectivity check in turn and reports pass or fail:

  http-connectivity - plain HTTP fetch of a known page
  target-fetch      - HTTP fetch of --url
  target-extraction - full web extraction of --url
  browser           - headless Chrome rendering
  vector-store      - vector store heartbeat
  embedding         - embedding service ping

The target checks are skipped without --url.

A failing check never stops the others.`,
	Args: cobra.NoArgs,
	RunE: runDiagnose,
}

func init() {
	diagnoseCmd.Flags().StringVar(&diagnoseURL, "url", "", "page to fetch and extract")
	rootCmd.AddCommand(diagnoseCmd)
}

func runDiagnose(cmd *cobra.Command, _ []string) error {
	svc, err := requireDiagnostics(cmd.Context())
	if err != nil {
		return err
	}

	results := svc.Run(cmd.Context(), diagnoseURL)

	printHeading(cmd, "Diagnostics")
	failed := 0
	for _, r := range results {
		if !r.Passed {
			failed++
		}
		cmd.Printf("%s %-18s %s\n", mark(cmd, r.Passed), r.Name, r.Message)
	}
	cmd.Println()
	if failed > 0 {
		return fmt.Errorf("%d of %d checks failed", failed, len(results))
	}
	cmd.Printf("All %d checks passed\n", len(results))
	return nil
}
