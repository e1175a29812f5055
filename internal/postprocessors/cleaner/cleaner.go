// Package cleaner provides regular-expression text cleaning processors.
package cleaner

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/custodia-labs/proctok/internal/core/ports/driven"
)

// Rule replaces every match of Pattern with Replacement.
// Replacement may reference capture groups ($1).
type Rule struct {
	Pattern     *regexp.Regexp
	Replacement string
}

// Remove returns a rule that deletes every match of pattern.
func Remove(pattern string) Rule {
	return Rule{Pattern: regexp.MustCompile(pattern)}
}

// Replace returns a rule that substitutes every match of pattern.
func Replace(pattern, replacement string) Rule {
	return Rule{Pattern: regexp.MustCompile(pattern), Replacement: replacement}
}

// Processor applies its rules in order.
type Processor struct {
	name  string
	rules []Rule
}

var _ driven.TextProcessor = (*Processor)(nil)

// New creates a processor from rules.
func New(name string, rules ...Rule) *Processor {
	return &Processor{name: name, rules: rules}
}

// Compile creates a single-rule processor from an untrusted pattern.
func Compile(name, pattern, replacement string, ignoreCase bool) (*Processor, error) {
	if pattern == "" {
		return nil, fmt.Errorf("%s: empty pattern", name)
	}
	if ignoreCase {
		pattern = "(?i)" + pattern
	}
	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, fmt.Errorf("%s: compile pattern: %w", name, err)
	}
	return New(name, Rule{Pattern: re, Replacement: replacement}), nil
}

// Name returns the processor name.
func (p *Processor) Name() string {
	return p.name
}

// Process applies every rule to text.
func (p *Processor) Process(ctx context.Context, text string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	for _, r := range p.rules {
		text = r.Pattern.ReplaceAllString(text, r.Replacement)
	}
	return text, nil
}

// Trim strips leading and trailing whitespace.
type Trim struct{}

var _ driven.TextProcessor = Trim{}

// Name returns the processor name.
func (Trim) Name() string { return "trim" }

// Process trims text.
func (Trim) Process(_ context.Context, text string) (string, error) {
	return strings.TrimSpace(text), nil
}
