package html

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/custodia-labs/proctok/internal/core/domain"
	"github.com/custodia-labs/proctok/internal/core/ports/driven"
	"github.com/custodia-labs/proctok/internal/logger"
)

// Web extraction methods.
const (
	MethodAuto    = "auto"
	MethodHTTP    = "http"
	MethodBrowser = "browser"
)

// WebExtractor fetches live pages over HTTP, falling back to a headless
// browser when the HTTP result is too short.
type WebExtractor struct {
	http     driven.PageFetcher
	browser  driven.PageFetcher
	cleaner  driven.TextPipeline
	minChars int
	now      func() time.Time
}

var _ driven.Extractor = (*WebExtractor)(nil)

// NewWebExtractor creates a web page extractor. browser may be nil.
// minChars is the length the HTTP text must exceed for auto to skip the browser.
func NewWebExtractor(httpFetcher, browser driven.PageFetcher, cleaner driven.TextPipeline, minChars int) *WebExtractor {
	return &WebExtractor{
		http:     httpFetcher,
		browser:  browser,
		cleaner:  cleaner,
		minChars: minChars,
		now:      time.Now,
	}
}

// Type returns domain.DocumentTypeWebpage.
func (e *WebExtractor) Type() domain.DocumentType {
	return domain.DocumentTypeWebpage
}

// Methods returns the web strategy names in auto order.
func (e *WebExtractor) Methods() []string {
	return []string{MethodHTTP, MethodBrowser}
}

// ValidateURL requires an http or https URL with a host.
func ValidateURL(raw string) (*url.URL, error) {
	u, err := url.Parse(raw)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return nil, fmt.Errorf("%w: invalid URL %q", domain.ErrInvalidInput, raw)
	}
	return u, nil
}

// IsMethod reports whether name is a web extraction method.
func IsMethod(name string) bool {
	switch name {
	case MethodAuto, MethodHTTP, MethodBrowser:
		return true
	}
	return false
}

// Extract fetches and cleans the page at rawURL.
func (e *WebExtractor) Extract(ctx context.Context, rawURL string, opts driven.ExtractOptions) (*domain.Document, error) {
	method := opts.Method
	if method == "" {
		method = MethodAuto
	}
	if !IsMethod(method) {
		return nil, fmt.Errorf("%w: web extraction method %q (want auto, http, browser)", domain.ErrInvalidMethod, method)
	}

	u, err := ValidateURL(rawURL)
	if err != nil {
		return nil, err
	}

	var title, text, used string
	switch method {
	case MethodHTTP:
		title, text, err = e.extractWith(ctx, e.http, rawURL)
		used = MethodHTTP
	case MethodBrowser:
		title, text, err = e.extractWith(ctx, e.browser, rawURL)
		used = MethodBrowser
	default:
		title, text, err = e.extractWith(ctx, e.http, rawURL)
		used = MethodHTTP
		if err == nil && utf8.RuneCountInString(strings.TrimSpace(text)) > e.minChars {
			logger.Info("Successfully extracted content using %s", MethodHTTP)
			break
		}
		if err != nil {
			logger.Warn("HTTP extraction failed for %s: %v", rawURL, err)
		}
		if e.browser == nil {
			if err == nil {
				err = fmt.Errorf("%w: %s returned minimal content and no browser is configured", domain.ErrExtractionEmpty, rawURL)
			}
			return nil, err
		}
		logger.Info("HTTP extraction yielded minimal content, trying browser...")
		title, text, err = e.extractWith(ctx, e.browser, rawURL)
		used = MethodBrowser
	}
	if err != nil {
		return nil, err
	}
	if text == "" {
		return nil, fmt.Errorf("%w: %s", domain.ErrExtractionEmpty, rawURL)
	}

	extractedAt := e.now()
	if title == "" {
		title = rawURL
	}

	return &domain.Document{
		Type:        domain.DocumentTypeWebpage,
		Source:      rawURL,
		Title:       title,
		Text:        text,
		Method:      used,
		ExtractedAt: extractedAt,
		Metadata: map[string]string{
			domain.MetaSource:           domain.SourceProcurementDocs,
			domain.MetaDocumentType:     string(domain.DocumentTypeWebpage),
			domain.MetaURL:              rawURL,
			domain.MetaDomain:           u.Host,
			domain.MetaExtractionMethod: used,
			domain.MetaExtractedAt:      domain.FormatTimestamp(extractedAt),
		},
	}, nil
}

// extractWith fetches the page and returns its title and cleaned text.
func (e *WebExtractor) extractWith(ctx context.Context, f driven.PageFetcher, rawURL string) (string, string, error) {
	if f == nil {
		return "", "", fmt.Errorf("%w: no fetcher configured for %s", domain.ErrSourceUnavailable, rawURL)
	}
	logger.Info("Fetching content from %s using %s...", rawURL, f.Name())

	page, err := f.Fetch(ctx, rawURL)
	if err != nil {
		return "", "", err
	}

	parsed, err := ParseString(page.HTML)
	if err != nil {
		return "", "", err
	}
	title := parsed.Title()

	content, err := parsed.MainContent(webNoise)
	if err != nil {
		return "", "", err
	}

	text, err := e.cleaner.Process(ctx, content)
	if err != nil {
		return "", "", fmt.Errorf("clean %s: %w", rawURL, err)
	}
	return title, text, nil
}

// IsUnavailable reports whether err means the page could not be retrieved.
func IsUnavailable(err error) bool {
	return errors.Is(err, domain.ErrSourceUnavailable)
}
