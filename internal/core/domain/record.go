package domain

// Record is the unit persisted to and retrieved from a vector store.
type Record struct {
	// ID is derived deterministically from the source and chunk index.
	ID string `json:"id"`

	// Text is the chunk text.
	Text string `json:"text"`

	// Metadata is flattened to strings; stores only accept scalar values.
	Metadata map[string]string `json:"metadata"`

	// Embedding is the chunk's vector. Empty on records read back with Get.
	Embedding []float32 `json:"-"`
}

// QueryResult is a record returned by a similarity query.
type QueryResult struct {
	Record Record `json:"record"`

	// Distance is the cosine distance between the query and the record.
	Distance float64 `json:"distance"`
}

// Similarity returns 1 - Distance.
func (r QueryResult) Similarity() float64 {
	return 1 - r.Distance
}

// GetFilter selects records by exact metadata equality, with paging.
type GetFilter struct {
	// Where maps metadata keys to required values. Empty matches everything.
	Where map[string]string

	// Limit is the maximum number of records. Zero means no limit.
	Limit int

	// Offset is the number of matching records to skip.
	Offset int
}

// Matches reports whether metadata satisfies every Where clause.
func (f GetFilter) Matches(metadata map[string]string) bool {
	for k, v := range f.Where {
		if metadata[k] != v {
			return false
		}
	}
	return true
}
