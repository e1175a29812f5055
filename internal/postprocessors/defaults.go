package postprocessors

import (
	"fmt"

	"github.com/custodia-labs/proctok/internal/core/domain"
	"github.com/custodia-labs/proctok/internal/core/ports/driven"
	"github.com/custodia-labs/proctok/internal/postprocessors/cleaner"
)

// Cleaning profiles.
const (
	ProfilePDF       = "pdf"
	ProfileWeb       = "web"
	ProfileSavedHTML = "saved-html"
)

// Built-in processor names.
const (
	BlankLines        = "blank-lines"
	Whitespace        = "whitespace"
	FormFeeds         = "form-feeds"
	TrimSpace         = "trim"
	SkipLinks         = "skip-links"
	CookieBanners     = "cookie-banners"
	JavaScriptNotices = "javascript-notices"
	MenuToggles       = "menu-toggles"
	MarkdownLinks     = "markdown-links"
	MarkdownEmphasis  = "markdown-emphasis"
	Breadcrumbs       = "breadcrumbs"
	ReplacePattern    = "replace"
)

var pdfSteps = []string{Whitespace, FormFeeds, BlankLines, TrimSpace}

// profiles lists processor names per profile. The pdf steps run last for web and saved-html.
var profiles = map[string][]string{
	ProfilePDF: pdfSteps,
	ProfileWeb: concat([]string{
		BlankLines, Whitespace,
		SkipLinks, CookieBanners, JavaScriptNotices,
		MarkdownLinks, MarkdownEmphasis,
		TrimSpace,
	}, pdfSteps),
	ProfileSavedHTML: concat([]string{
		BlankLines, Whitespace,
		SkipLinks, CookieBanners, JavaScriptNotices, MenuToggles,
		MarkdownLinks, MarkdownEmphasis,
		Breadcrumbs,
		TrimSpace,
	}, pdfSteps),
}

func concat(a, b []string) []string {
	out := make([]string, 0, len(a)+len(b))
	return append(append(out, a...), b...)
}

// RegisterDefaults registers all built-in processors with the registry.
// Call this during application initialisation to enable standard processors.
func RegisterDefaults(r *Registry) {
	fixed := map[string][]cleaner.Rule{
		BlankLines:        {cleaner.Replace(`\n\s*\n\s*\n`, "\n\n")},
		Whitespace:        {cleaner.Replace(`\s+`, " ")},
		FormFeeds:         {cleaner.Replace(`[\f\r]`, "\n")},
		SkipLinks:         {cleaner.Remove(`(?i)Skip to main content`)},
		CookieBanners:     {cleaner.Remove(`(?i)Cookie.*?Accept`)},
		JavaScriptNotices: {cleaner.Remove(`(?i)JavaScript.*?enabled`)},
		MenuToggles:       {cleaner.Remove(`(?i)Menu\s*Toggle`)},
		MarkdownLinks:     {cleaner.Replace(`\[([^\]]+)\]\([^\)]+\)`, "$1")},
		MarkdownEmphasis:  {cleaner.Remove(`_{2,}`), cleaner.Remove(`\*{2,}`)},
		Breadcrumbs:       {cleaner.Remove(`Home\s*>\s*`), cleaner.Remove(`(?i)Breadcrumb`)},
	}
	for name, rules := range fixed {
		proc := cleaner.New(name, rules...)
		r.Register(name, func(map[string]any) (driven.TextProcessor, error) {
			return proc, nil
		})
	}
	r.Register(TrimSpace, func(map[string]any) (driven.TextProcessor, error) {
		return cleaner.Trim{}, nil
	})
	r.Register(ReplacePattern, buildReplace)
}

// buildReplace creates a user-defined regex processor.
// Supported config keys:
//   - pattern (string): Regular expression to match (required)
//   - replacement (string): Substitution text (default: remove)
//   - ignore_case (bool): Case-insensitive matching
func buildReplace(cfg map[string]any) (driven.TextProcessor, error) {
	pattern, _ := cfg["pattern"].(string)
	replacement, _ := cfg["replacement"].(string)
	ignoreCase, _ := cfg["ignore_case"].(bool)
	return cleaner.Compile(ReplacePattern, pattern, replacement, ignoreCase)
}

// ProfileSteps returns the processor names of a profile.
func ProfileSteps(profile string) ([]string, bool) {
	steps, ok := profiles[profile]
	if !ok {
		return nil, false
	}
	return append([]string(nil), steps...), true
}

// BuildProfile assembles the pipeline for a cleaning profile.
// Extra patterns are removed after the profile's boilerplate steps and before the final pdf steps.
func BuildProfile(r *Registry, profile string, extraRemove []string) (*Pipeline, error) {
	steps, ok := profiles[profile]
	if !ok {
		return nil, fmt.Errorf("%w: cleaning profile %q", domain.ErrInvalidInput, profile)
	}

	p := NewPipeline()
	insertAt := len(steps) - len(pdfSteps)
	for i, name := range steps {
		if i == insertAt {
			for _, pattern := range extraRemove {
				proc, err := r.Build(ReplacePattern, map[string]any{"pattern": pattern})
				if err != nil {
					return nil, fmt.Errorf("%w: %v", domain.ErrInvalidInput, err)
				}
				p.Add(proc)
			}
		}
		proc, err := r.Build(name, nil)
		if err != nil {
			return nil, err
		}
		p.Add(proc)
	}
	return p, nil
}

// DefaultRegistry returns a registry with the built-in processors.
func DefaultRegistry() *Registry {
	r := NewRegistry()
	RegisterDefaults(r)
	return r
}
