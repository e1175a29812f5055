// Package chunker splits cleaned text into overlapping, word-bounded chunks.
//
// Chunks are built from whole sentences. A chunk closes when the next
// sentence would push it past the word budget, and the following chunk is
// seeded with trailing sentences of the closed one up to the overlap budget.
package chunker

import (
	"fmt"
	"strings"

	"github.com/custodia-labs/proctok/internal/core/domain"
	"github.com/custodia-labs/proctok/internal/core/ports/driven"
)

// DefaultChunkSize is the default number of words per chunk.
const DefaultChunkSize = domain.DefaultChunkSize

// DefaultChunkOverlap is the default number of overlapping words.
const DefaultChunkOverlap = domain.DefaultChunkOverlap

// Chunker splits text into chunks.
type Chunker struct {
	chunkSize int
	overlap   int
	splitter  driven.SentenceSplitter
}

// Option configures the chunker.
type Option func(*Chunker)

// WithChunkSize sets the chunk size in words.
func WithChunkSize(size int) Option {
	return func(c *Chunker) {
		c.chunkSize = size
	}
}

// WithOverlap sets the overlap between chunks in words.
func WithOverlap(overlap int) Option {
	return func(c *Chunker) {
		c.overlap = overlap
	}
}

// WithSplitter replaces the default regex sentence splitter.
func WithSplitter(s driven.SentenceSplitter) Option {
	return func(c *Chunker) {
		if s != nil {
			c.splitter = s
		}
	}
}

// New creates a chunker with the given options.
// A non-positive chunk size or negative overlap returns domain.ErrInvalidInput.
func New(opts ...Option) (*Chunker, error) {
	c := &Chunker{
		chunkSize: DefaultChunkSize,
		overlap:   DefaultChunkOverlap,
		splitter:  RegexSplitter{},
	}

	for _, opt := range opts {
		opt(c)
	}

	if c.chunkSize <= 0 {
		return nil, fmt.Errorf("%w: chunk size must be positive, got %d", domain.ErrInvalidInput, c.chunkSize)
	}
	if c.overlap < 0 {
		return nil, fmt.Errorf("%w: overlap must not be negative, got %d", domain.ErrInvalidInput, c.overlap)
	}

	return c, nil
}

// ChunkSize returns the configured chunk size in words.
func (c *Chunker) ChunkSize() int { return c.chunkSize }

// Overlap returns the configured overlap in words.
func (c *Chunker) Overlap() int { return c.overlap }

// Chunk splits text into ordered chunks.
// Blank input produces an empty slice.
func (c *Chunker) Chunk(text string) ([]domain.Chunk, error) {
	sentences := c.splitter.Split(text)
	if len(sentences) == 0 {
		return []domain.Chunk{}, nil
	}

	chunks := make([]domain.Chunk, 0, len(sentences)/4+1)
	var current []string
	words := 0

	for _, sentence := range sentences {
		n := WordCount(sentence)

		if len(current) > 0 && words+n > c.chunkSize {
			chunks = appendChunk(chunks, current)
			current, words = c.seed(current)
		}

		current = append(current, sentence)
		words += n
	}

	if len(current) > 0 {
		chunks = appendChunk(chunks, current)
	}

	for i := range chunks {
		chunks[i].ChunkIndex = i
		chunks[i].TotalChunks = len(chunks)
	}

	return chunks, nil
}

// seed returns the trailing sentences of a closed chunk that fit in the overlap budget.
func (c *Chunker) seed(closed []string) ([]string, int) {
	if c.overlap <= 0 || len(closed) <= 1 {
		return nil, 0
	}

	var seeded []string
	words := 0
	for i := len(closed) - 1; i >= 0; i-- {
		n := WordCount(closed[i])
		if words+n > c.overlap {
			break
		}
		seeded = append([]string{closed[i]}, seeded...)
		words += n
	}

	return seeded, words
}

func appendChunk(chunks []domain.Chunk, sentences []string) []domain.Chunk {
	text := strings.TrimSpace(strings.Join(sentences, " "))
	if text == "" {
		return chunks
	}
	return append(chunks, domain.Chunk{
		Text:          text,
		WordCount:     WordCount(text),
		SentenceCount: len(sentences),
	})
}

// WordCount returns the number of whitespace-separated fields in s.
func WordCount(s string) int {
	return len(strings.Fields(s))
}
