package cli

import (
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/custodia-labs/proctok/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/proctok/internal/core/domain"
)

var theme = styles.DefaultTheme()

var (
	headingStyle = lipgloss.NewStyle().Bold(true).Foreground(theme.Primary)
	passStyle    = lipgloss.NewStyle().Foreground(theme.Success)
	failStyle    = lipgloss.NewStyle().Foreground(theme.Error)
	mutedStyle   = lipgloss.NewStyle().Foreground(theme.Muted)
)

// isTerminal reports whether cmd writes to an interactive terminal.
func isTerminal(cmd *cobra.Command) bool {
	f, ok := cmd.OutOrStdout().(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

func render(cmd *cobra.Command, style lipgloss.Style, s string) string {
	if !isTerminal(cmd) {
		return s
	}
	return style.Render(s)
}

// printHeading prints a title underlined with '='.
func printHeading(cmd *cobra.Command, title string) {
	cmd.Println(render(cmd, headingStyle, title))
	cmd.Println(strings.Repeat("=", len(title)))
}

// mark renders a pass/fail marker.
func mark(cmd *cobra.Command, ok bool) string {
	if ok {
		return render(cmd, passStyle, "PASS")
	}
	return render(cmd, failStyle, "FAIL")
}

// overrideConfig applies fn to the resolved config and the running container.
func overrideConfig(fn func(*domain.Config)) error {
	fn(&cfg)
	if err := cfg.Validate(); err != nil {
		return err
	}
	if app != nil {
		fn(&app.cfg)
	}
	return nil
}
