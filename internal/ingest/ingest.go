// Package ingest loads teaching material into the knowledge base: extract
// text from a source, split it into overlapping chunks, embed and store
// each chunk tagged with its origin.
package ingest

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"github.com/sabitutor/sabi/internal/knowledge"
)

// minTextLength filters out extracted texts too short to be useful
// teaching material (empty pages, cookie banners, stub articles). The
// check applies to the whole text before splitting, not to individual
// chunks, so a long document keeps its short trailing chunk.
const minTextLength = 100

// EntryStore is the storage surface ingestion needs. knowledge.Store
// satisfies it.
type EntryStore interface {
	Add(ctx context.Context, entry knowledge.Entry) error
}

// Options tag every chunk produced from one source.
type Options struct {
	// Region labels where the material's analogies are rooted, e.g.
	// "Lagos". Empty means "Global".
	Region string

	// Topic, when set, is stored in each chunk's metadata under the topic
	// key. Use knowledge.TopicGeneral to feed the fallback tier.
	Topic string

	// Source is a human-readable origin appended to each chunk as a
	// "(Source: ...)" line. IngestURL and IngestPDF default it to the URL
	// or file path.
	Source string
}

// Result summarizes one ingestion run.
type Result struct {
	// ChunksAdded counts the chunks embedded and stored.
	ChunksAdded int

	// Skipped reports that the whole text was below the minimum length
	// and nothing was stored.
	Skipped bool
}

// Ingestor drives the extract-split-store pipeline.
type Ingestor struct {
	store    EntryStore
	splitter *Splitter
	logger   *slog.Logger
}

// New creates an Ingestor with the default chunking parameters.
func New(store EntryStore, logger *slog.Logger) *Ingestor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Ingestor{
		store:    store,
		splitter: NewSplitter(DefaultChunkSize, DefaultOverlap),
		logger:   logger,
	}
}

// IngestText splits raw text and stores each chunk. Texts shorter than
// the minimum length are skipped whole. It stops at the first storage
// failure, returning the count accumulated so far.
func (ing *Ingestor) IngestText(ctx context.Context, text string, opts Options) (Result, error) {
	var result Result

	if len(strings.TrimSpace(text)) < minTextLength {
		ing.logger.Info("skipping short text", "source", opts.Source, "length", len(text))
		result.Skipped = true
		return result, nil
	}

	region := opts.Region
	if region == "" {
		region = "Global"
	}

	for _, chunk := range ing.splitter.Split(text) {
		content := chunk
		if opts.Source != "" {
			content += fmt.Sprintf("\n(Source: %s)", opts.Source)
		}

		var metadata map[string]string
		if opts.Topic != "" {
			metadata = map[string]string{knowledge.TopicKey: opts.Topic}
		}

		entry := knowledge.Entry{
			ID:       uuid.NewString(),
			Content:  content,
			Region:   region,
			Metadata: metadata,
		}
		if err := ing.store.Add(ctx, entry); err != nil {
			return result, fmt.Errorf("storing chunk %d: %w", result.ChunksAdded+1, err)
		}
		result.ChunksAdded++
	}

	ing.logger.Info("ingested text",
		"source", opts.Source, "region", region, "added", result.ChunksAdded)
	return result, nil
}

// IngestURL extracts a web page's paragraphs and ingests them. The URL
// becomes the source tag unless Options overrides it.
func (ing *Ingestor) IngestURL(ctx context.Context, pageURL string, opts Options) (Result, error) {
	text, err := ExtractURL(ctx, pageURL)
	if err != nil {
		return Result{}, err
	}
	if strings.TrimSpace(text) == "" {
		return Result{}, fmt.Errorf("no paragraph text found at %s", pageURL)
	}

	if opts.Source == "" {
		opts.Source = pageURL
	}
	return ing.IngestText(ctx, text, opts)
}

// IngestPDF extracts a PDF's text and ingests it. The file path becomes
// the source tag unless Options overrides it.
func (ing *Ingestor) IngestPDF(ctx context.Context, path string, opts Options) (Result, error) {
	text, err := ExtractPDF(path)
	if err != nil {
		return Result{}, err
	}
	if strings.TrimSpace(text) == "" {
		return Result{}, fmt.Errorf("no text extracted from %s", path)
	}

	if opts.Source == "" {
		opts.Source = path
	}
	return ing.IngestText(ctx, text, opts)
}
