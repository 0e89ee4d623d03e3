package knowledge

import "time"

// Metadata keys with meaning to the serving path.
const (
	// TopicKey marks an entry's topic. Entries with TopicGeneral back the
	// general-wisdom fallback tier.
	TopicKey = "topic"

	// TopicGeneral is the topic value for general-purpose entries.
	TopicGeneral = "General"
)

// Entry is one row of the cultural knowledge base: a culturally-grounded
// analogy (or textbook chunk) with its region and optional illustration.
// Entries are created by ingestion and immutable once stored; the serving
// path holds only transient copies.
type Entry struct {
	ID        string
	Content   string
	Region    string
	ImageURL  string            // empty = no stored illustration
	Metadata  map[string]string // optional, e.g. {"topic": "General"}
	CreatedAt time.Time
}

// Match is a search result with its cosine similarity score.
type Match struct {
	Entry      Entry
	Similarity float32 // 0-1, higher = more similar
}

// SearchOption configures search behavior using the functional options pattern.
type SearchOption func(*searchConfig)

type searchConfig struct {
	limit         int32
	minSimilarity float32
	timeout       time.Duration
}

// WithLimit sets the maximum number of matches to return. Default is 1:
// the serving path only ever wants the single best analogy.
func WithLimit(n int32) SearchOption {
	return func(c *searchConfig) {
		if n > 0 {
			c.limit = n
		}
	}
}

// WithMinSimilarity sets the similarity threshold a match must reach.
// Zero is valid and means "always return the top match regardless of
// relevance".
func WithMinSimilarity(s float32) SearchOption {
	return func(c *searchConfig) {
		c.minSimilarity = s
	}
}

// WithTimeout bounds the embedding call plus the vector query.
// Default is 15 seconds.
func WithTimeout(d time.Duration) SearchOption {
	return func(c *searchConfig) {
		if d > 0 {
			c.timeout = d
		}
	}
}

func buildSearchConfig(opts []SearchOption) *searchConfig {
	cfg := &searchConfig{
		limit:         1,
		minSimilarity: 0,
		timeout:       15 * time.Second,
	}
	for _, opt := range opts {
		opt(cfg)
	}
	return cfg
}
