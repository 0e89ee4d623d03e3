package knowledge

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/firebase/genkit/go/ai"
	"github.com/firebase/genkit/go/core/api"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/sabitutor/sabi/internal/log"
)

// mockEmbedder implements ai.Embedder for testing.
type mockEmbedder struct {
	delay         time.Duration
	embedErr      error
	returnEmpty   bool
	embeddings    []float32
	callCount     int
	lastInputText string
}

func (m *mockEmbedder) Name() string { return "mock-embedder" }

func (m *mockEmbedder) Register(_ api.Registry) {}

func (m *mockEmbedder) Embed(ctx context.Context, req *ai.EmbedRequest) (*ai.EmbedResponse, error) {
	m.callCount++

	if len(req.Input) > 0 && len(req.Input[0].Content) > 0 {
		m.lastInputText = req.Input[0].Content[0].Text
	}

	if m.delay > 0 {
		select {
		case <-time.After(m.delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	if m.embedErr != nil {
		return nil, m.embedErr
	}

	if m.returnEmpty {
		return &ai.EmbedResponse{
			Embeddings: []*ai.Embedding{{Embedding: []float32{}}},
		}, nil
	}

	embeddings := m.embeddings
	if embeddings == nil {
		embeddings = []float32{0.1, 0.2, 0.3}
	}
	return &ai.EmbedResponse{
		Embeddings: []*ai.Embedding{{Embedding: embeddings}},
	}, nil
}

// mockQuerier implements Querier for testing.
type mockQuerier struct {
	searchRows    []SearchEntriesRow
	searchErr     error
	searchParams  SearchEntriesParams
	metadataRows  []EntryRow
	metadataErr   error
	lastFilter    []byte
	upsertErr     error
	upsertParams  UpsertEntryParams
	countValue    int64
	countErr      error
}

func (m *mockQuerier) SearchEntries(_ context.Context, arg SearchEntriesParams) ([]SearchEntriesRow, error) {
	m.searchParams = arg
	if m.searchErr != nil {
		return nil, m.searchErr
	}
	return m.searchRows, nil
}

func (m *mockQuerier) FindEntriesByMetadata(_ context.Context, filterMetadata []byte, _ int32) ([]EntryRow, error) {
	m.lastFilter = filterMetadata
	if m.metadataErr != nil {
		return nil, m.metadataErr
	}
	return m.metadataRows, nil
}

func (m *mockQuerier) UpsertEntry(_ context.Context, arg UpsertEntryParams) error {
	m.upsertParams = arg
	return m.upsertErr
}

func (m *mockQuerier) CountEntries(_ context.Context) (int64, error) {
	return m.countValue, m.countErr
}

func entryRow(id, content, region, imageURL string, metadata map[string]string) EntryRow {
	metadataJSON, _ := json.Marshal(metadata)
	return EntryRow{
		ID:        id,
		Content:   content,
		Region:    region,
		ImageURL:  pgtype.Text{String: imageURL, Valid: imageURL != ""},
		Metadata:  metadataJSON,
		CreatedAt: pgtype.Timestamptz{Time: time.Now(), Valid: true},
	}
}

func TestStoreSearch(t *testing.T) {
	tests := []struct {
		name        string
		querier     *mockQuerier
		embedder    *mockEmbedder
		opts        []SearchOption
		wantMatches int
		wantErr     bool
	}{
		{
			name: "match above threshold",
			querier: &mockQuerier{
				searchRows: []SearchEntriesRow{
					{
						EntryRow:   entryRow("e1", "danfo drivers cut corners", "Lagos, Nigeria", "", nil),
						Similarity: 0.85,
					},
				},
			},
			embedder:    &mockEmbedder{},
			opts:        []SearchOption{WithMinSimilarity(0.20)},
			wantMatches: 1,
		},
		{
			name:        "no matches",
			querier:     &mockQuerier{},
			embedder:    &mockEmbedder{},
			wantMatches: 0,
		},
		{
			name:     "embedder failure",
			querier:  &mockQuerier{},
			embedder: &mockEmbedder{embedErr: errors.New("embed service down")},
			wantErr:  true,
		},
		{
			name:     "empty embedding",
			querier:  &mockQuerier{},
			embedder: &mockEmbedder{returnEmpty: true},
			wantErr:  true,
		},
		{
			name:     "search failure",
			querier:  &mockQuerier{searchErr: errors.New("connection refused")},
			embedder: &mockEmbedder{},
			wantErr:  true,
		},
		{
			name:     "embedding timeout",
			querier:  &mockQuerier{},
			embedder: &mockEmbedder{delay: 100 * time.Millisecond},
			opts:     []SearchOption{WithTimeout(10 * time.Millisecond)},
			wantErr:  true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := New(tt.querier, tt.embedder, 3, log.NewNop())

			matches, err := store.Search(context.Background(), "electricity", tt.opts...)
			if tt.wantErr {
				if err == nil {
					t.Fatal("Search() error = nil, want error")
				}
				return
			}
			if err != nil {
				t.Fatalf("Search() error = %v", err)
			}
			if len(matches) != tt.wantMatches {
				t.Errorf("Search() returned %d matches, want %d", len(matches), tt.wantMatches)
			}
		})
	}
}

func TestStoreSearchThresholdPassedToQuery(t *testing.T) {
	querier := &mockQuerier{}
	store := New(querier, &mockEmbedder{}, 3, log.NewNop())

	if _, err := store.Search(context.Background(), "supply and demand",
		WithMinSimilarity(0.20), WithLimit(3)); err != nil {
		t.Fatalf("Search() error = %v", err)
	}

	if querier.searchParams.MinSimilarity != 0.20 {
		t.Errorf("MinSimilarity = %v, want 0.20", querier.searchParams.MinSimilarity)
	}
	if querier.searchParams.ResultLimit != 3 {
		t.Errorf("ResultLimit = %d, want 3", querier.searchParams.ResultLimit)
	}
}

func TestStoreSearchZeroThresholdIsValid(t *testing.T) {
	querier := &mockQuerier{
		searchRows: []SearchEntriesRow{
			{EntryRow: entryRow("e1", "weak match", "Global", "", nil), Similarity: 0.05},
		},
	}
	store := New(querier, &mockEmbedder{}, 3, log.NewNop())

	matches, err := store.Search(context.Background(), "anything", WithMinSimilarity(0))
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	if len(matches) != 1 {
		t.Fatalf("Search() with zero threshold returned %d matches, want 1", len(matches))
	}
	if querier.searchParams.MinSimilarity != 0 {
		t.Errorf("MinSimilarity = %v, want 0", querier.searchParams.MinSimilarity)
	}
}

func TestStoreSearchMatchFields(t *testing.T) {
	querier := &mockQuerier{
		searchRows: []SearchEntriesRow{
			{
				EntryRow: entryRow("e1", "circuit diagram lesson", "Visual Diagram",
					"https://example.com/circuit.png", map[string]string{"topic": "physics"}),
				Similarity: 0.85,
			},
		},
	}
	store := New(querier, &mockEmbedder{}, 3, log.NewNop())

	matches, err := store.Search(context.Background(), "Ohm's Law")
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	if len(matches) != 1 {
		t.Fatalf("got %d matches, want 1", len(matches))
	}

	m := matches[0]
	if m.Entry.Content != "circuit diagram lesson" {
		t.Errorf("Content = %q", m.Entry.Content)
	}
	if m.Entry.Region != "Visual Diagram" {
		t.Errorf("Region = %q", m.Entry.Region)
	}
	if m.Entry.ImageURL != "https://example.com/circuit.png" {
		t.Errorf("ImageURL = %q", m.Entry.ImageURL)
	}
	if m.Similarity != 0.85 {
		t.Errorf("Similarity = %v, want 0.85", m.Similarity)
	}
	if m.Entry.Metadata["topic"] != "physics" {
		t.Errorf("Metadata[topic] = %q, want physics", m.Entry.Metadata["topic"])
	}
}

func TestStoreFindByTopic(t *testing.T) {
	querier := &mockQuerier{
		metadataRows: []EntryRow{
			entryRow("g1", "markets balance supply and demand", "Global",
				"", map[string]string{TopicKey: TopicGeneral}),
		},
	}
	store := New(querier, &mockEmbedder{}, 3, log.NewNop())

	entries, err := store.FindByTopic(context.Background(), TopicGeneral, 1)
	if err != nil {
		t.Fatalf("FindByTopic() error = %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("got %d entries, want 1", len(entries))
	}

	var filter map[string]string
	if err := json.Unmarshal(querier.lastFilter, &filter); err != nil {
		t.Fatalf("unmarshaling filter: %v", err)
	}
	if filter[TopicKey] != TopicGeneral {
		t.Errorf("filter topic = %q, want %q", filter[TopicKey], TopicGeneral)
	}
}

func TestStoreAdd(t *testing.T) {
	tests := []struct {
		name    string
		entry   Entry
		querier *mockQuerier
		wantErr bool
	}{
		{
			name: "valid entry",
			entry: Entry{
				ID:      "chunk-1",
				Content: "matatu culture attracts customers like flowers attract pollinators",
				Region:  "Nairobi, Kenya",
			},
			querier: &mockQuerier{},
		},
		{
			name: "entry with image",
			entry: Entry{
				ID:       "visual-1",
				Content:  "battery as a water pump",
				Region:   "Visual Diagram",
				ImageURL: "https://example.com/circuit.png",
			},
			querier: &mockQuerier{},
		},
		{
			name:    "missing ID",
			entry:   Entry{Content: "orphan"},
			querier: &mockQuerier{},
			wantErr: true,
		},
		{
			name:    "upsert failure",
			entry:   Entry{ID: "chunk-2", Content: "text"},
			querier: &mockQuerier{upsertErr: errors.New("disk full")},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := New(tt.querier, &mockEmbedder{}, 3, log.NewNop())

			err := store.Add(context.Background(), tt.entry)
			if tt.wantErr {
				if err == nil {
					t.Fatal("Add() error = nil, want error")
				}
				return
			}
			if err != nil {
				t.Fatalf("Add() error = %v", err)
			}

			if tt.querier.upsertParams.ID != tt.entry.ID {
				t.Errorf("upserted ID = %q, want %q", tt.querier.upsertParams.ID, tt.entry.ID)
			}
			wantValid := tt.entry.ImageURL != ""
			if tt.querier.upsertParams.ImageURL.Valid != wantValid {
				t.Errorf("ImageURL.Valid = %v, want %v", tt.querier.upsertParams.ImageURL.Valid, wantValid)
			}
		})
	}
}

// A store configured for a 3-wide vector column must reject embeddings of
// any other length before they reach the database.
func TestStoreRejectsWrongDimension(t *testing.T) {
	embedder := &mockEmbedder{embeddings: []float32{0.1, 0.2, 0.3, 0.4}}

	t.Run("search", func(t *testing.T) {
		store := New(&mockQuerier{}, embedder, 3, log.NewNop())

		_, err := store.Search(context.Background(), "electricity")
		if !errors.Is(err, ErrDimensionMismatch) {
			t.Fatalf("Search() error = %v, want ErrDimensionMismatch", err)
		}
	})

	t.Run("add", func(t *testing.T) {
		querier := &mockQuerier{}
		store := New(querier, embedder, 3, log.NewNop())

		err := store.Add(context.Background(), Entry{ID: "chunk-1", Content: "text"})
		if !errors.Is(err, ErrDimensionMismatch) {
			t.Fatalf("Add() error = %v, want ErrDimensionMismatch", err)
		}
		if querier.upsertParams.ID != "" {
			t.Error("upsert ran despite dimension mismatch")
		}
	})

	t.Run("zero dimension disables the check", func(t *testing.T) {
		store := New(&mockQuerier{}, embedder, 0, log.NewNop())

		if _, err := store.Search(context.Background(), "electricity"); err != nil {
			t.Fatalf("Search() error = %v", err)
		}
	})
}

func TestStoreCount(t *testing.T) {
	store := New(&mockQuerier{countValue: 42}, &mockEmbedder{}, 3, log.NewNop())

	count, err := store.Count(context.Background())
	if err != nil {
		t.Fatalf("Count() error = %v", err)
	}
	if count != 42 {
		t.Errorf("Count() = %d, want 42", count)
	}
}
