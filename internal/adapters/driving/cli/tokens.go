package cli

import (
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/custodia-labs/proctok/internal/core/domain"
)

var tokensJSON bool

var tokensCmd = &cobra.Command{
	Use:   "tokens",
	Short: "Estimate token counts for the stored collection",
	Long: `Reads every stored chunk and estimates its token count at about four
characters per token, then compares the total with common model context
windows and recommends how to feed the collection to a model.`,
	Args: cobra.NoArgs,
	RunE: runTokens,
}

func init() {
	tokensCmd.Flags().BoolVar(&tokensJSON, "json", false, "output the report as JSON")
	rootCmd.AddCommand(tokensCmd)
}

// recommendations describes each tier to the user.
var recommendations = map[domain.RecommendationTier]string{
	domain.TierSmallContext: "Small dataset - fits in GPT-3.5-turbo context window",
	domain.TierGPT4Context:  "Medium dataset - fits in GPT-4 context window",
	domain.TierLargeContext: "Large dataset - requires GPT-4-turbo, GPT-4o or Claude-3",
	domain.TierRAG:          "Very large dataset - use RAG (retrieval) rather than the full context",
}

func runTokens(cmd *cobra.Command, _ []string) error {
	svc, err := requireTokens(cmd.Context())
	if err != nil {
		return err
	}

	report, err := svc.Analyze(cmd.Context())
	if err != nil {
		return fmt.Errorf("token analysis failed: %w", err)
	}

	if tokensJSON {
		return printJSON(cmd, report)
	}
	printTokenReport(cmd, report)
	return nil
}

func printTokenReport(cmd *cobra.Command, r *domain.TokenReport) {
	printHeading(cmd, "Token Analysis Results")
	cmd.Printf("Collection: %s\n", r.Collection)
	cmd.Printf("Total documents: %s\n", humanize.Comma(int64(r.Retrieved)))
	if r.Retrieved < r.StoredCount {
		cmd.Printf("  (store reports %s; some pages could not be read)\n", humanize.Comma(int64(r.StoredCount)))
	}
	cmd.Printf("Total characters: %s\n", humanize.Comma(int64(r.TotalCharacters)))
	cmd.Printf("Total words: %s\n", humanize.Comma(int64(r.TotalWords)))
	cmd.Printf("Average chunk size: %.0f characters\n", r.AvgCharacters)
	cmd.Printf("Chunk size range: %s - %s characters\n",
		humanize.Comma(int64(r.MinCharacters)), humanize.Comma(int64(r.MaxCharacters)))
	cmd.Println()

	printHeading(cmd, "Token Estimates")
	cmd.Printf("GPT tokens (approx): %s\n", humanize.Comma(int64(r.GPTTokens)))
	cmd.Printf("Claude tokens (approx): %s\n", humanize.Comma(int64(r.ClaudeTokens)))
	cmd.Println()

	printHeading(cmd, "Context Window Comparison")
	for _, w := range r.Windows {
		cmd.Printf("%s %-18s %8s tokens  %6.1f%%\n",
			mark(cmd, w.Fits), w.Model, humanize.Comma(int64(w.Tokens)), w.PercentUsed)
	}
	cmd.Println()

	printHeading(cmd, "Recommendation")
	cmd.Println(recommendations[r.Recommendation])
	cmd.Printf("Top %d chunks: ~%s tokens (typical RAG prompt)\n",
		r.SampleChunks, humanize.Comma(int64(r.SampleTokens)))
}
