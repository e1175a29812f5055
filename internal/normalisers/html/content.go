package html

import (
	"fmt"
	"io"
	"path/filepath"
	"regexp"
	"strings"

	md "github.com/JohannesKaufmann/html-to-markdown"
	"github.com/PuerkitoBio/goquery"
)

// Elements removed before content selection.
const (
	webNoise   = "script, style, nav, header, footer"
	savedNoise = webNoise + ", aside"
)

var (
	contentClass = regexp.MustCompile(`(?i)content|main|body`)
	refreshURL   = regexp.MustCompile(`(?i)url=([^;]+)`)
)

// Page is a parsed HTML document.
type Page struct {
	doc *goquery.Document
}

// Parse reads an HTML document.
func Parse(r io.Reader) (*Page, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}
	return &Page{doc: doc}, nil
}

// ParseString parses an HTML string.
func ParseString(s string) (*Page, error) {
	return Parse(strings.NewReader(s))
}

// Title returns the trimmed <title> text.
func (p *Page) Title() string {
	return strings.TrimSpace(p.doc.Find("title").First().Text())
}

// OriginalURL looks for the page's own address in canonical, og:url and
// meta refresh tags, in that order.
func (p *Page) OriginalURL() string {
	if href, ok := p.doc.Find(`link[rel="canonical"]`).First().Attr("href"); ok && href != "" {
		return href
	}
	if content, ok := p.doc.Find(`meta[property="og:url"]`).First().Attr("content"); ok && content != "" {
		return content
	}
	if content, ok := p.doc.Find(`meta[http-equiv="refresh"], meta[http-equiv="Refresh"]`).First().Attr("content"); ok {
		if m := refreshURL.FindStringSubmatch(content); m != nil {
			return strings.TrimSpace(m[1])
		}
	}
	return ""
}

// MainContent removes the noise elements and converts the main content
// region to markdown. The region is the first of main, article, a div whose
// class mentions content, main or body, and body.
// The page is modified.
func (p *Page) MainContent(noise string) (string, error) {
	p.doc.Find(noise).Remove()

	sel := p.doc.Find("main").First()
	if sel.Length() == 0 {
		sel = p.doc.Find("article").First()
	}
	if sel.Length() == 0 {
		sel = p.doc.Find("div[class]").FilterFunction(func(_ int, s *goquery.Selection) bool {
			class, _ := s.Attr("class")
			return contentClass.MatchString(class)
		}).First()
	}
	if sel.Length() == 0 {
		sel = p.doc.Find("body").First()
	}

	var raw string
	var err error
	if sel.Length() == 0 {
		raw, err = p.doc.Html()
	} else {
		raw, err = goquery.OuterHtml(sel)
	}
	if err != nil {
		return "", fmt.Errorf("render content: %w", err)
	}

	text, err := md.NewConverter("", true, nil).ConvertString(raw)
	if err != nil {
		return "", fmt.Errorf("convert to markdown: %w", err)
	}
	return text, nil
}

// titleFromFilename builds a title from a file name.
func titleFromFilename(path string) string {
	name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	name = strings.ReplaceAll(name, "_", " ")
	return strings.ReplaceAll(name, "-", " ")
}
