package cli

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/proctok/internal/core/domain"
	"github.com/custodia-labs/proctok/internal/core/services"
)

// searchPreview is the number of characters shown per hit.
const searchPreview = 300

var (
	searchQuery   string
	searchStats   bool
	searchTestAll bool
	searchResults int
	searchJSON    bool
)

var searchCmd = &cobra.Command{
	Use:   "search",
	Short: "Search the stored procurement chunks",
	Long: `Runs semantic search against the vector store.

With no flags the collection statistics are shown. --query runs one
similarity search; --test-all runs the built-in procurement queries and
reports how many results each returns.`,
	Args: cobra.NoArgs,
	RunE: runSearch,
}

func init() {
	f := searchCmd.Flags()
	f.StringVar(&searchQuery, "query", "", "search query")
	f.BoolVar(&searchStats, "stats", false, "show collection statistics")
	f.BoolVar(&searchTestAll, "test-all", false, "run the predefined procurement queries")
	f.IntVarP(&searchResults, "n-results", "n", services.DefaultSearchResults, "number of results")
	f.BoolVar(&searchJSON, "json", false, "output results as JSON")
	rootCmd.AddCommand(searchCmd)
}

func runSearch(cmd *cobra.Command, _ []string) error {
	if searchResults <= 0 {
		return fmt.Errorf("%w: --n-results must be positive, got %d", domain.ErrInvalidInput, searchResults)
	}

	svc, err := requireSearch(cmd.Context())
	if err != nil {
		return err
	}

	switch {
	case searchQuery != "":
		hits, err := svc.Search(cmd.Context(), searchQuery, searchResults)
		if err != nil {
			return fmt.Errorf("search failed: %w", err)
		}
		if searchJSON {
			return printJSON(cmd, hits)
		}
		outputSearchTable(cmd, searchQuery, hits)
	case searchTestAll:
		results, err := svc.RunPredefined(cmd.Context(), searchResults)
		if err != nil {
			return fmt.Errorf("search tests failed: %w", err)
		}
		if searchJSON {
			return printJSON(cmd, results)
		}
		outputPredefined(cmd, results)
	default:
		stats, err := svc.Stats(cmd.Context())
		if err != nil {
			return fmt.Errorf("stats failed: %w", err)
		}
		if searchJSON {
			return printJSON(cmd, stats)
		}
		outputStats(cmd, stats)
	}
	return nil
}

func printJSON(cmd *cobra.Command, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal results: %w", err)
	}
	cmd.Println(string(data))
	return nil
}

func outputSearchTable(cmd *cobra.Command, query string, hits []domain.SearchHit) {
	printHeading(cmd, fmt.Sprintf("Results for %q", query))
	if len(hits) == 0 {
		cmd.Println("No results found.")
		return
	}
	for _, h := range hits {
		cmd.Printf("  [%d] %s (similarity %.3f)\n", h.Rank, hitTitle(h), h.Similarity)
		if src := h.Metadata[domain.MetaSource]; src != "" {
			cmd.Printf("      Source: %s\n", render(cmd, mutedStyle, src))
		}
		cmd.Printf("      %s\n", preview(h.Text, searchPreview))
		cmd.Println()
	}
}

func outputPredefined(cmd *cobra.Command, results []domain.PredefinedResult) {
	printHeading(cmd, "Predefined search tests")
	passed := 0
	for _, r := range results {
		ok := r.Error == "" && r.Results > 0
		if ok {
			passed++
		}
		cmd.Printf("%s %-32s %d results\n", mark(cmd, ok), r.Query, r.Results)
		switch {
		case r.Error != "":
			cmd.Printf("      error: %s\n", r.Error)
		case r.Top != nil:
			cmd.Printf("      top: %s (%.3f)\n", hitTitle(*r.Top), r.Top.Similarity)
		}
	}
	cmd.Printf("\n%d/%d queries returned results\n", passed, len(results))
}

func outputStats(cmd *cobra.Command, s *domain.CollectionStats) {
	printHeading(cmd, "Collection statistics")
	cmd.Printf("Collection: %s\n", s.Collection)
	cmd.Printf("Backend: %s\n", s.Backend)
	cmd.Printf("Documents: %d\n", s.Count)
	if len(s.SampleMetadata) == 0 {
		return
	}
	cmd.Println("Sample metadata:")
	keys := make([]string, 0, len(s.SampleMetadata))
	for k := range s.SampleMetadata {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		cmd.Printf("  %s: %s\n", k, s.SampleMetadata[k])
	}
}

// hitTitle prefers the document title, then the filename, then the id.
func hitTitle(h domain.SearchHit) string {
	for _, k := range []string{domain.MetaTitle, domain.MetaFilename} {
		if v := h.Metadata[k]; v != "" {
			return v
		}
	}
	return h.ID
}

// preview collapses whitespace and truncates s to n runes with an ellipsis.
func preview(s string, n int) string {
	s = strings.Join(strings.Fields(s), " ")
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "..."
}
