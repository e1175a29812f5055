package domain

// SelfTestQuery is run against the store after every ingest.
const SelfTestQuery = "procurement practice standard"

// PredefinedQueries are the fixed queries run by search --test-all.
var PredefinedQueries = []string{
	"procurement practice standard",
	"agile software development",
	"sprint with us",
	"team requirements",
	"resource agreement",
	"budget and pricing",
	"evaluation criteria",
	"proposal submission",
	"government procurement",
	"contract management",
}

// SearchHit is a ranked similarity search result.
type SearchHit struct {
	// Rank starts at 1.
	Rank int `json:"rank"`

	ID       string            `json:"id"`
	Text     string            `json:"content"`
	Metadata map[string]string `json:"metadata"`

	// Distance is the cosine distance reported by the store.
	Distance float64 `json:"distance"`

	// Similarity is 1 - Distance.
	Similarity float64 `json:"similarity"`
}

// CollectionStats summarises a vector store collection.
type CollectionStats struct {
	Collection string `json:"collection"`
	Backend    string `json:"backend"`
	Count      int    `json:"count"`

	// SampleMetadata is the metadata of the first stored record, if any.
	SampleMetadata map[string]string `json:"sample_metadata,omitempty"`
}

// PredefinedResult is the outcome of one predefined query.
type PredefinedResult struct {
	Query   string     `json:"query"`
	Results int        `json:"results"`
	Top     *SearchHit `json:"top,omitempty"`
	Error   string     `json:"error,omitempty"`
}
