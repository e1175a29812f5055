package cli

import (
	"fmt"
	"runtime/debug"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/proctok/internal/adapters/driving/tui"
	"github.com/custodia-labs/proctok/internal/adapters/driving/tui/views/search"
)

var tuiResults int

var tuiCmd = &cobra.Command{
	Use:   "tui",
	Short: "Browse the collection interactively",
	Long: `Open a full-screen search over the stored procurement chunks.

Type a query and press enter to list the closest chunks with their scores.
Open a hit to read the whole chunk and its metadata. The Collection screen
shows the chunk count and a sample of metadata, and "t" runs the built-in
test queries against the store.

Press ? on the menu for every key binding, esc to go back, and q or
ctrl+c to leave.`,
	Example: `  proctok tui
  proctok tui --store redis -n 20`,
	RunE: runTUI,
}

func init() {
	tuiCmd.Flags().IntVarP(&tuiResults, "n-results", "n", search.DefaultK, "hits listed per query")
	rootCmd.AddCommand(tuiCmd)
}

func runTUI(cmd *cobra.Command, _ []string) (err error) {
	// A panic inside bubbletea leaves the terminal in raw mode without a
	// trace, so surface it as an error once the program has unwound.
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("tui panic: %v\n%s", r, debug.Stack())
		}
	}()

	svc, err := requireSearch(cmd.Context())
	if err != nil {
		return err
	}

	app, err := tui.NewApp(tui.NewPorts(svc))
	if err != nil {
		return fmt.Errorf("start tui: %w", err)
	}
	if err := app.WithContext(cmd.Context()).WithK(tuiResults).Run(); err != nil {
		return fmt.Errorf("tui: %w", err)
	}
	return nil
}
