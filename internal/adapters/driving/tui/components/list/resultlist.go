// Package list renders ranked search hits as a scrollable list.
package list

import (
	"fmt"
	"strings"

	"github.com/custodia-labs/proctok/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/proctok/internal/core/domain"
)

// linesPerHit is the height of one rendered hit: heading, origin and preview.
const linesPerHit = 3

// ResultList holds hits and a cursor.
type ResultList struct {
	styles   *styles.Styles
	hits     []domain.SearchHit
	selected int
	width    int
	height   int
}

// NewResultList creates an empty list.
func NewResultList(s *styles.Styles) *ResultList {
	if s == nil {
		s = styles.DefaultStyles()
	}
	return &ResultList{styles: s, width: 80, height: 12}
}

// SetResults replaces the hits and selects the first.
func (r *ResultList) SetResults(hits []domain.SearchHit) {
	r.hits = hits
	r.selected = 0
}

// View renders the visible window of hits around the cursor.
func (r *ResultList) View() string {
	if len(r.hits) == 0 {
		return r.styles.Muted.Render("No chunks matched.")
	}

	from, to := r.window()
	out := make([]string, 0, 2+(to-from)*linesPerHit)
	out = append(out, r.styles.Subtitle.Render(fmt.Sprintf("Top %d chunks", len(r.hits))), "")
	for i := from; i < to; i++ {
		out = append(out, r.renderHit(i)...)
	}
	if to < len(r.hits) {
		out = append(out, r.styles.Muted.Render(fmt.Sprintf("  … %d more", len(r.hits)-to)))
	}
	return strings.Join(out, "\n")
}

// window returns the half-open range of hits that fit the height.
func (r *ResultList) window() (int, int) {
	fit := (r.height - 3) / linesPerHit
	if fit < 1 {
		fit = 1
	}
	from := 0
	if r.selected >= fit {
		from = r.selected - fit + 1
	}
	return from, min(from+fit, len(r.hits))
}

func (r *ResultList) renderHit(i int) []string {
	h := &r.hits[i]
	textWidth := max(r.width-8, 20)

	heading := fmt.Sprintf("%2d. %s", h.Rank, truncate(Title(h), textWidth-8))
	score := r.styles.Score(h.Similarity).Render(fmt.Sprintf("%.3f", h.Similarity))
	if i == r.selected {
		heading = r.styles.Selected.Render("▸ " + heading)
	} else {
		heading = r.styles.Normal.Render("  " + heading)
	}

	preview := truncate(strings.Join(strings.Fields(h.Text), " "), textWidth)
	return []string{
		heading + "  " + score,
		r.styles.MetaKey.Render("     " + truncate(Origin(h), textWidth)),
		r.styles.Muted.Render("     " + preview),
	}
}

// Title is a hit's display name: document title, then filename, then id.
func Title(h *domain.SearchHit) string {
	for _, k := range []string{domain.MetaTitle, domain.MetaFilename, domain.MetaSourceFile} {
		if v := h.Metadata[k]; v != "" {
			return v
		}
	}
	if h.ID != "" {
		return h.ID
	}
	return "(untitled)"
}

// Origin describes where a hit came from: the document type, its URL or
// source path, and the chunk position when known.
func Origin(h *domain.SearchHit) string {
	var parts []string
	if t := h.Metadata[domain.MetaDocumentType]; t != "" {
		parts = append(parts, "["+t+"]")
	}
	for _, k := range []string{domain.MetaURL, domain.MetaOriginalURL, domain.MetaSource} {
		if v := h.Metadata[k]; v != "" {
			parts = append(parts, v)
			break
		}
	}
	if idx := h.Metadata[domain.MetaChunkIndex]; idx != "" {
		pos := "chunk " + idx
		if total := h.Metadata[domain.MetaTotalChunks]; total != "" {
			pos += "/" + total
		}
		parts = append(parts, pos)
	}
	return strings.Join(parts, " ")
}

// truncate cuts s to n runes with a trailing ellipsis.
func truncate(s string, n int) string {
	rs := []rune(s)
	if len(rs) <= n {
		return s
	}
	if n < 2 {
		return string(rs[:n])
	}
	return string(rs[:n-1]) + "…"
}

// MoveUp selects the previous hit.
func (r *ResultList) MoveUp() {
	if r.selected > 0 {
		r.selected--
	}
}

// MoveDown selects the next hit.
func (r *ResultList) MoveDown() {
	if r.selected < len(r.hits)-1 {
		r.selected++
	}
}

// Top selects the first hit.
func (r *ResultList) Top() { r.selected = 0 }

// Bottom selects the last hit.
func (r *ResultList) Bottom() { r.selected = max(len(r.hits)-1, 0) }

// SelectedResult returns the hit under the cursor, or nil when empty.
func (r *ResultList) SelectedResult() *domain.SearchHit {
	if r.selected < 0 || r.selected >= len(r.hits) {
		return nil
	}
	return &r.hits[r.selected]
}

// SetDimensions sets the area the list may draw in.
func (r *ResultList) SetDimensions(width, height int) {
	r.width = width
	r.height = height
}

func (r *ResultList) Results() []domain.SearchHit { return r.hits }
func (r *ResultList) Selected() int               { return r.selected }
func (r *ResultList) Count() int                  { return len(r.hits) }
