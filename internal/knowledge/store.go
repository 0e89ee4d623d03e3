// Package knowledge manages the cultural analogy knowledge base backed by
// PostgreSQL + pgvector. It handles embedding generation, vector similarity
// search with a threshold, and metadata lookups for the fallback tier.
package knowledge

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/firebase/genkit/go/ai"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/pgvector/pgvector-go"
)

// ErrDimensionMismatch reports an embedding whose length does not match
// the configured vector column width. Without this check a misconfigured
// embedder model fails on every insert and search with an opaque
// database error instead.
var ErrDimensionMismatch = errors.New("embedding dimension mismatch")

// Store manages knowledge entries with vector search capabilities.
// It is safe for concurrent use by multiple goroutines.
type Store struct {
	queries   Querier
	embedder  ai.Embedder
	dimension int
	logger    *slog.Logger
}

// New creates a Store. dimension is the width of the table's vector
// column; every embedding the embedder returns must have exactly that
// many values. A non-positive dimension disables the check.
//
// Example (production):
//
//	store := knowledge.New(knowledge.NewQueries(pool), embedder, 384, logger)
//
// Example (testing):
//
//	store := knowledge.New(mockQuerier, mockEmbedder, 3, log.NewNop())
func New(querier Querier, embedder ai.Embedder, dimension int, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{
		queries:   querier,
		embedder:  embedder,
		dimension: dimension,
		logger:    logger,
	}
}

// Search embeds the query and performs vector similarity search, returning
// matches at or above the configured threshold ordered by descending
// similarity. The embedding call and the query share one timeout.
func (s *Store) Search(ctx context.Context, query string, opts ...SearchOption) ([]Match, error) {
	cfg := buildSearchConfig(opts)

	queryCtx, cancel := context.WithTimeout(ctx, cfg.timeout)
	defer cancel()

	embedding, err := s.embed(queryCtx, query)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, fmt.Errorf("embedding generation timeout: %w", err)
		}
		return nil, fmt.Errorf("generating query embedding: %w", err)
	}

	rows, err := s.queries.SearchEntries(queryCtx, SearchEntriesParams{
		QueryEmbedding: embedding,
		MinSimilarity:  cfg.minSimilarity,
		ResultLimit:    cfg.limit,
	})
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, fmt.Errorf("search query timeout: %w", err)
		}
		return nil, fmt.Errorf("search failed: %w", err)
	}

	matches := make([]Match, 0, len(rows))
	for _, row := range rows {
		matches = append(matches, Match{
			Entry:      s.rowToEntry(row.EntryRow),
			Similarity: row.Similarity,
		})
	}
	return matches, nil
}

// FindByTopic returns entries whose metadata topic equals the given value,
// oldest first. Used by the general-wisdom fallback tier with
// TopicGeneral.
func (s *Store) FindByTopic(ctx context.Context, topic string, limit int32) ([]Entry, error) {
	if limit <= 0 {
		limit = 1
	}

	filter, err := json.Marshal(map[string]string{TopicKey: topic})
	if err != nil {
		return nil, fmt.Errorf("marshaling topic filter: %w", err)
	}

	rows, err := s.queries.FindEntriesByMetadata(ctx, filter, limit)
	if err != nil {
		return nil, fmt.Errorf("finding entries by topic %q: %w", topic, err)
	}

	entries := make([]Entry, 0, len(rows))
	for _, row := range rows {
		entries = append(entries, s.rowToEntry(row))
	}
	return entries, nil
}

// Add embeds the entry content and upserts the entry. Used by ingestion.
func (s *Store) Add(ctx context.Context, entry Entry) error {
	if entry.ID == "" {
		return errors.New("entry ID must not be empty")
	}

	embedding, err := s.embed(ctx, entry.Content)
	if err != nil {
		return fmt.Errorf("generating embedding for entry %q: %w", entry.ID, err)
	}

	metadata := entry.Metadata
	if metadata == nil {
		metadata = map[string]string{}
	}
	metadataJSON, err := json.Marshal(metadata)
	if err != nil {
		return fmt.Errorf("marshaling metadata: %w", err)
	}

	err = s.queries.UpsertEntry(ctx, UpsertEntryParams{
		ID:        entry.ID,
		Content:   entry.Content,
		Region:    entry.Region,
		Embedding: embedding,
		ImageURL:  pgtype.Text{String: entry.ImageURL, Valid: entry.ImageURL != ""},
		Metadata:  metadataJSON,
	})
	if err != nil {
		return fmt.Errorf("upserting entry %q: %w", entry.ID, err)
	}

	s.logger.Debug("added entry", "id", entry.ID, "region", entry.Region, "content_length", len(entry.Content))
	return nil
}

// Count returns the total number of entries in the knowledge base.
func (s *Store) Count(ctx context.Context) (int, error) {
	count, err := s.queries.CountEntries(ctx)
	if err != nil {
		return 0, fmt.Errorf("count failed: %w", err)
	}

	// Overflow protection for 32-bit platforms.
	if count > math.MaxInt {
		return 0, fmt.Errorf("entry count %d exceeds platform int capacity", count)
	}
	return int(count), nil
}

// embed generates the embedding vector for a single text.
func (s *Store) embed(ctx context.Context, text string) (pgvector.Vector, error) {
	resp, err := s.embedder.Embed(ctx, &ai.EmbedRequest{
		Input: []*ai.Document{
			ai.DocumentFromText(text, nil),
		},
	})
	if err != nil {
		return pgvector.Vector{}, err
	}
	if len(resp.Embeddings) == 0 || len(resp.Embeddings[0].Embedding) == 0 {
		return pgvector.Vector{}, errors.New("empty embedding returned")
	}

	embedding := resp.Embeddings[0].Embedding
	if s.dimension > 0 && len(embedding) != s.dimension {
		return pgvector.Vector{}, fmt.Errorf("%w: embedder returned %d values, store expects %d",
			ErrDimensionMismatch, len(embedding), s.dimension)
	}
	return pgvector.NewVector(embedding), nil
}

// rowToEntry converts a raw row to the business model Entry.
func (s *Store) rowToEntry(row EntryRow) Entry {
	var metadata map[string]string
	if err := json.Unmarshal(row.Metadata, &metadata); err != nil {
		s.logger.Warn("failed to parse metadata", "entry_id", row.ID, "error", err)
		metadata = map[string]string{}
	}

	var imageURL string
	if row.ImageURL.Valid {
		imageURL = row.ImageURL.String
	}

	var createdAt time.Time
	if row.CreatedAt.Valid {
		createdAt = row.CreatedAt.Time
	}

	return Entry{
		ID:        row.ID,
		Content:   row.Content,
		Region:    row.Region,
		ImageURL:  imageURL,
		Metadata:  metadata,
		CreatedAt: createdAt,
	}
}
