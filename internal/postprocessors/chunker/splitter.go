package chunker

import (
	"regexp"
	"strings"
	"unicode"

	"github.com/custodia-labs/proctok/internal/core/ports/driven"
)

// sentenceEnd matches terminal punctuation followed by whitespace.
var sentenceEnd = regexp.MustCompile(`[.!?]+[\s\p{Z}]+`)

// RegexSplitter breaks text after '.', '!' or '?' when followed by whitespace.
// The punctuation stays with its sentence.
type RegexSplitter struct{}

var _ driven.SentenceSplitter = RegexSplitter{}

// Split returns the trimmed, non-blank sentences of text in order.
func (RegexSplitter) Split(text string) []string {
	var sentences []string
	start := 0
	for _, loc := range sentenceEnd.FindAllStringIndex(text, -1) {
		end := loc[1]
		// Keep punctuation, drop the trailing whitespace.
		cut := loc[0] + len(strings.TrimRightFunc(text[loc[0]:loc[1]], unicode.IsSpace))
		if s := strings.TrimSpace(text[start:cut]); s != "" {
			sentences = append(sentences, s)
		}
		start = end
	}
	if s := strings.TrimSpace(text[start:]); s != "" {
		sentences = append(sentences, s)
	}
	return sentences
}

// SplitSentences splits text with the default RegexSplitter.
func SplitSentences(text string) []string {
	return RegexSplitter{}.Split(text)
}
