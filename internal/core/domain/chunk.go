package domain

// Chunk represents a bounded contiguous span of a source document.
// Chunks are produced by the chunker and are immutable once created.
type Chunk struct {
	// Text is the chunk's sentences joined with single spaces.
	Text string `json:"text"`

	// WordCount is the number of words across the chunk's sentences,
	// including any sentences carried over as overlap.
	WordCount int `json:"word_count"`

	// SentenceCount is the number of sentences in the chunk.
	SentenceCount int `json:"sentence_count"`

	// ChunkIndex is the 0-based emission order within the document.
	ChunkIndex int `json:"chunk_index"`

	// TotalChunks is the number of chunks emitted for the document.
	TotalChunks int `json:"total_chunks"`
}
