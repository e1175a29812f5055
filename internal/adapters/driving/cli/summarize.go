package cli

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/proctok/internal/core/domain"
	"github.com/custodia-labs/proctok/internal/core/services"
)

var (
	summarizeInputDir    string
	summarizeOutputDir   string
	summarizeModel       string
	summarizeUseLLM      bool
	summarizeCompression float64
	summarizeDocument    string
	summarizeProvider    string
)

var summarizeCmd = &cobra.Command{
	Use:   "summarize",
	Short: "Write review summaries of exported documents",
	Long: `Summarises each exported full-text document to about a tenth of its size.

By default summaries are extractive: sentences that mention review criteria
(requirements, skills, budget, timelines, deadlines) are kept, highest
scoring first. With --use-llm a model writes a structured summary instead:
OpenAI (needs OPENAI_API_KEY) or a local Ollama server with
--llm-provider ollama. If the model fails the extractive summary is used.

Prompts for the model can be edited in ~/.proctok/prompts/.`,
	Args: cobra.NoArgs,
	RunE: runSummarize,
}

func init() {
	f := summarizeCmd.Flags()
	f.StringVar(&summarizeInputDir, "input-dir", "", "directory of exported text files (default from config)")
	f.StringVar(&summarizeOutputDir, "output-dir", "", "directory for summaries (default from config)")
	f.StringVar(&summarizeModel, "model", "", "LLM model for --use-llm (default from config)")
	f.BoolVar(&summarizeUseLLM, "use-llm", false, "summarise with an LLM")
	f.StringVar(&summarizeProvider, "llm-provider", "", "LLM provider: openai or ollama (default from config)")
	f.Float64Var(&summarizeCompression, "compression-ratio", domain.DefaultCompression, "target summary size as a fraction of the original")
	f.StringVar(&summarizeDocument, "document", "", "summarise only this file inside the input directory")
	rootCmd.AddCommand(summarizeCmd)
}

func runSummarize(cmd *cobra.Command, _ []string) error {
	flags := cmd.Flags()
	err := overrideConfig(func(c *domain.Config) {
		if summarizeProvider != "" {
			c.LLM.Provider = summarizeProvider
		}
		if summarizeModel != "" {
			c.LLM.Model = summarizeModel
		}
		if flags.Changed("compression-ratio") {
			c.Summary.CompressionRatio = summarizeCompression
		}
		if summarizeInputDir != "" {
			c.Paths.ExportDir = summarizeInputDir
		}
		if summarizeOutputDir != "" {
			c.Paths.SummaryDir = summarizeOutputDir
		}
	})
	if err != nil {
		return err
	}

	svc, err := requireSummary(cmd.Context(), summarizeUseLLM)
	if err != nil {
		return err
	}

	report, err := svc.Summarize(cmd.Context(), domain.SummaryRequest{
		InputDir:         cfg.Paths.ExportDir,
		OutputDir:        cfg.Paths.SummaryDir,
		Document:         summarizeDocument,
		UseLLM:           summarizeUseLLM,
		CompressionRatio: cfg.Summary.CompressionRatio,
	})
	if err != nil {
		return fmt.Errorf("summarize failed: %w", err)
	}

	printHeading(cmd, "Summarization complete")
	cmd.Printf("Documents processed: %d\n", report.Documents)
	cmd.Printf("Original tokens: %d\n", report.TotalOriginalTokens)
	cmd.Printf("Summary tokens: %d\n", report.TotalSummaryTokens)
	cmd.Printf("Overall compression: %.1f%%\n", report.OverallCompression*100)
	for _, d := range report.Details {
		cmd.Printf("  - %s: %d -> %d tokens (%s)\n", d.DocumentName, d.OriginalTokens, d.SummaryTokens, d.Method)
	}
	for _, s := range report.Skipped {
		cmd.Printf("  - %s: skipped\n", s)
	}
	cmd.Printf("Report: %s\n", filepath.Join(cfg.Paths.SummaryDir, services.SummaryReportFile))
	return nil
}
