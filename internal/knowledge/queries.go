package knowledge

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/pgvector/pgvector-go"
)

// DBTX is the subset of pgx operations Queries needs. Both *pgxpool.Pool
// and *pgx.Conn satisfy it.
type DBTX interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// SearchEntriesParams are the inputs to the vector similarity search.
type SearchEntriesParams struct {
	QueryEmbedding pgvector.Vector
	MinSimilarity  float32
	ResultLimit    int32
}

// EntryRow is a raw cultural_knowledge row before conversion to Entry.
type EntryRow struct {
	ID        string
	Content   string
	Region    string
	ImageURL  pgtype.Text
	Metadata  []byte
	CreatedAt pgtype.Timestamptz
}

// SearchEntriesRow is an EntryRow plus its similarity score.
type SearchEntriesRow struct {
	EntryRow
	Similarity float32
}

// UpsertEntryParams are the inputs for inserting or updating an entry.
type UpsertEntryParams struct {
	ID        string
	Content   string
	Region    string
	Embedding pgvector.Vector
	ImageURL  pgtype.Text
	Metadata  []byte
}

// Querier defines the database operations the Store depends on. Interfaces
// are defined by the consumer, so the Store stays mockable in tests.
type Querier interface {
	// SearchEntries performs vector similarity search with a threshold,
	// ordered by descending similarity.
	SearchEntries(ctx context.Context, arg SearchEntriesParams) ([]SearchEntriesRow, error)

	// FindEntriesByMetadata returns entries whose metadata contains the
	// given JSON object (JSONB @> containment).
	FindEntriesByMetadata(ctx context.Context, filterMetadata []byte, limit int32) ([]EntryRow, error)

	// UpsertEntry inserts or updates an entry.
	UpsertEntry(ctx context.Context, arg UpsertEntryParams) error

	// CountEntries counts all entries.
	CountEntries(ctx context.Context) (int64, error)
}

// Queries is the pgx implementation of Querier.
type Queries struct {
	db DBTX
}

// NewQueries creates a Queries instance over a pool or connection.
func NewQueries(db DBTX) *Queries {
	return &Queries{db: db}
}

const searchEntriesSQL = `
SELECT id, content, region, image_url, metadata, created_at,
       (1 - (embedding <=> $1))::float4 AS similarity
FROM cultural_knowledge
WHERE 1 - (embedding <=> $1) >= $2
ORDER BY embedding <=> $1
LIMIT $3`

// SearchEntries implements Querier.
//
// Similarity is cosine: 1 - (embedding <=> query). The threshold comparison
// happens in SQL so a zero threshold degrades to plain top-N.
func (q *Queries) SearchEntries(ctx context.Context, arg SearchEntriesParams) ([]SearchEntriesRow, error) {
	rows, err := q.db.Query(ctx, searchEntriesSQL, arg.QueryEmbedding, arg.MinSimilarity, arg.ResultLimit)
	if err != nil {
		return nil, fmt.Errorf("querying entries: %w", err)
	}
	defer rows.Close()

	var results []SearchEntriesRow
	for rows.Next() {
		var r SearchEntriesRow
		if err := rows.Scan(&r.ID, &r.Content, &r.Region, &r.ImageURL, &r.Metadata, &r.CreatedAt, &r.Similarity); err != nil {
			return nil, fmt.Errorf("scanning entry row: %w", err)
		}
		results = append(results, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("reading entry rows: %w", err)
	}
	return results, nil
}

const findEntriesByMetadataSQL = `
SELECT id, content, region, image_url, metadata, created_at
FROM cultural_knowledge
WHERE metadata @> $1
ORDER BY created_at
LIMIT $2`

// FindEntriesByMetadata implements Querier.
func (q *Queries) FindEntriesByMetadata(ctx context.Context, filterMetadata []byte, limit int32) ([]EntryRow, error) {
	rows, err := q.db.Query(ctx, findEntriesByMetadataSQL, filterMetadata, limit)
	if err != nil {
		return nil, fmt.Errorf("querying entries by metadata: %w", err)
	}
	defer rows.Close()

	var results []EntryRow
	for rows.Next() {
		var r EntryRow
		if err := rows.Scan(&r.ID, &r.Content, &r.Region, &r.ImageURL, &r.Metadata, &r.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning entry row: %w", err)
		}
		results = append(results, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("reading entry rows: %w", err)
	}
	return results, nil
}

const upsertEntrySQL = `
INSERT INTO cultural_knowledge (id, content, region, embedding, image_url, metadata)
VALUES ($1, $2, $3, $4, $5, $6)
ON CONFLICT (id) DO UPDATE SET
    content   = EXCLUDED.content,
    region    = EXCLUDED.region,
    embedding = EXCLUDED.embedding,
    image_url = EXCLUDED.image_url,
    metadata  = EXCLUDED.metadata`

// UpsertEntry implements Querier.
func (q *Queries) UpsertEntry(ctx context.Context, arg UpsertEntryParams) error {
	_, err := q.db.Exec(ctx, upsertEntrySQL,
		arg.ID, arg.Content, arg.Region, arg.Embedding, arg.ImageURL, arg.Metadata)
	if err != nil {
		return fmt.Errorf("upserting entry: %w", err)
	}
	return nil
}

// CountEntries implements Querier.
func (q *Queries) CountEntries(ctx context.Context) (int64, error) {
	var count int64
	if err := q.db.QueryRow(ctx, "SELECT count(*) FROM cultural_knowledge").Scan(&count); err != nil {
		return 0, fmt.Errorf("counting entries: %w", err)
	}
	return count, nil
}
