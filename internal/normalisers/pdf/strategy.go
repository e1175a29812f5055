package pdf

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"

	"github.com/tsawler/tabula"

	"github.com/custodia-labs/proctok/internal/core/ports/driven"
	"github.com/custodia-labs/proctok/internal/logger"
)

// Strategy names.
const (
	MethodAuto         = "auto"
	MethodTabula       = "tabula"
	MethodTabulaLayout = "tabula-layout"
	MethodPDFToText    = "pdftotext"
)

// ErrPDFToolNotFound is returned when pdftotext is not installed.
var ErrPDFToolNotFound = errors.New("pdftotext not found: install poppler-utils")

// Tabula extracts text with the tabula library.
type Tabula struct {
	layout bool
}

var _ driven.PDFStrategy = (*Tabula)(nil)

// NewTabula returns the plain tabula strategy.
func NewTabula() *Tabula {
	return &Tabula{}
}

// NewTabulaLayout returns the layout-aware tabula strategy.
func NewTabulaLayout() *Tabula {
	return &Tabula{layout: true}
}

// Name returns the strategy name.
func (t *Tabula) Name() string {
	if t.layout {
		return MethodTabulaLayout
	}
	return MethodTabula
}

// Extract returns the text of every page.
func (t *Tabula) Extract(ctx context.Context, path string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	ext := tabula.Open(path)
	if t.layout {
		ext = ext.ExcludeHeadersAndFooters().JoinParagraphs().ByColumn()
	}

	text, warnings, err := ext.Text()
	if err != nil {
		return "", fmt.Errorf("%s: %w", t.Name(), err)
	}
	for _, w := range warnings {
		logger.Debug("%s: %s: %s", t.Name(), path, w.Message)
	}
	return text, nil
}

// ExecRunner runs commands with os/exec.
type ExecRunner struct{}

var _ driven.CommandRunner = ExecRunner{}

// Run executes name with args and returns stdout.
func (ExecRunner) Run(ctx context.Context, name string, args ...string) ([]byte, error) {
	return exec.CommandContext(ctx, name, args...).Output()
}

// PDFToText extracts text by shelling out to poppler's pdftotext.
type PDFToText struct {
	runner   driven.CommandRunner
	lookPath func(string) (string, error)
}

var _ driven.PDFStrategy = (*PDFToText)(nil)

// NewPDFToText creates the strategy using the system pdftotext.
func NewPDFToText() *PDFToText {
	return &PDFToText{runner: ExecRunner{}, lookPath: exec.LookPath}
}

// NewPDFToTextWithRunner creates the strategy with a custom runner.
// The PATH check is skipped.
func NewPDFToTextWithRunner(runner driven.CommandRunner) *PDFToText {
	return &PDFToText{runner: runner}
}

// Name returns the strategy name.
func (p *PDFToText) Name() string {
	return MethodPDFToText
}

// Extract runs pdftotext -layout and returns its output.
func (p *PDFToText) Extract(ctx context.Context, path string) (string, error) {
	if p.lookPath != nil {
		if _, err := p.lookPath("pdftotext"); err != nil {
			return "", ErrPDFToolNotFound
		}
	}

	out, err := p.runner.Run(ctx, "pdftotext", "-layout", "-enc", "UTF-8", path, "-")
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) && len(exitErr.Stderr) > 0 {
			return "", fmt.Errorf("pdftotext failed: %s", strings.TrimSpace(string(exitErr.Stderr)))
		}
		return "", fmt.Errorf("pdftotext failed: %w", err)
	}
	return string(out), nil
}

// CheckAvailable reports whether pdftotext is on PATH.
func CheckAvailable() error {
	if _, err := exec.LookPath("pdftotext"); err != nil {
		return ErrPDFToolNotFound
	}
	return nil
}

// InstallInstructions returns platform hints for installing pdftotext.
func InstallInstructions() string {
	return `pdftotext is provided by poppler:
  macOS:         brew install poppler
  Debian/Ubuntu: apt install poppler-utils
  Fedora:        dnf install poppler-utils`
}

// DefaultStrategies returns the auto order: tabula, tabula-layout, pdftotext.
func DefaultStrategies() []driven.PDFStrategy {
	return []driven.PDFStrategy{NewTabula(), NewTabulaLayout(), NewPDFToText()}
}
