// Package retrieval turns a student query into tutoring context through an
// ordered fallback chain over the knowledge base.
//
// The chain has three tiers:
//
//	Specific:        best vector match at or above the similarity threshold
//	GeneralFallback: any general-wisdom entry (metadata topic = "General")
//	None:            fixed "improvise" narrative
//
// A tier that fails or finds nothing hands over to the next; failures are
// logged, never surfaced. FindContext always returns exactly one
// ContextResult and never an error.
package retrieval

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/sabitutor/sabi/internal/knowledge"
)

// Tier identifies which step of the fallback chain produced a result.
type Tier int

const (
	// TierSpecific means a vector match at or above the threshold was found.
	TierSpecific Tier = iota

	// TierGeneralFallback means no specific match, but a general-wisdom
	// entry was found.
	TierGeneralFallback

	// TierNone means both lookups came up empty; the model improvises.
	TierNone
)

// String returns the tier name for logging.
func (t Tier) String() string {
	switch t {
	case TierSpecific:
		return "specific"
	case TierGeneralFallback:
		return "general_fallback"
	case TierNone:
		return "none"
	default:
		return fmt.Sprintf("tier(%d)", int(t))
	}
}

// NoContextNarrative is the fixed narrative for the None tier.
const NoContextNarrative = "No specific local metaphor found. Improvise with a relatable everyday example."

// ContextResult is the context handed to prompt composition. Constructed
// fresh per request, consumed once, never persisted.
type ContextResult struct {
	Narrative string
	ImageURL  string // empty = no stored illustration
	Tier      Tier
}

// Searcher is the knowledge base surface the lookup depends on.
type Searcher interface {
	Search(ctx context.Context, query string, opts ...knowledge.SearchOption) ([]knowledge.Match, error)
	FindByTopic(ctx context.Context, topic string, limit int32) ([]knowledge.Entry, error)
}

// Lookup resolves tutoring context via the tiered fallback chain.
type Lookup struct {
	store  Searcher
	logger *slog.Logger
}

// NewLookup creates a Lookup over the given knowledge base.
func NewLookup(store Searcher, logger *slog.Logger) *Lookup {
	if logger == nil {
		logger = slog.Default()
	}
	return &Lookup{store: store, logger: logger}
}

// FindContext walks the fallback chain for the query. minSimilarity is the
// threshold for the specific tier; zero is valid and means "always take the
// top match". All retrieval failures degrade to the next tier.
func (l *Lookup) FindContext(ctx context.Context, query string, minSimilarity float32) ContextResult {
	tiers := []func(context.Context, string, float32) (ContextResult, bool){
		l.specificTier,
		l.generalTier,
	}

	for _, tier := range tiers {
		if result, ok := tier(ctx, query, minSimilarity); ok {
			l.logger.Debug("context resolved", "tier", result.Tier.String(), "query_length", len(query))
			return result
		}
	}

	l.logger.Debug("context resolved", "tier", TierNone.String(), "query_length", len(query))
	return ContextResult{Narrative: NoContextNarrative, Tier: TierNone}
}

// specificTier embeds the query and searches for the single best match at
// or above the threshold.
func (l *Lookup) specificTier(ctx context.Context, query string, minSimilarity float32) (ContextResult, bool) {
	matches, err := l.store.Search(ctx, query,
		knowledge.WithLimit(1),
		knowledge.WithMinSimilarity(minSimilarity),
	)
	if err != nil {
		l.logger.Warn("specific-tier search failed, falling back", "error", err)
		return ContextResult{}, false
	}
	if len(matches) == 0 {
		return ContextResult{}, false
	}

	match := matches[0]
	return ContextResult{
		Narrative: fmt.Sprintf("Use this local metaphor: %s (Region: %s)", match.Entry.Content, match.Entry.Region),
		ImageURL:  match.Entry.ImageURL,
		Tier:      TierSpecific,
	}, true
}

// generalTier looks for any entry marked as general-purpose. It carries no
// image: general wisdom is not tied to a specific illustration.
func (l *Lookup) generalTier(ctx context.Context, _ string, _ float32) (ContextResult, bool) {
	entries, err := l.store.FindByTopic(ctx, knowledge.TopicGeneral, 1)
	if err != nil {
		l.logger.Warn("general-tier lookup failed, falling back", "error", err)
		return ContextResult{}, false
	}
	if len(entries) == 0 {
		return ContextResult{}, false
	}

	return ContextResult{
		Narrative: fmt.Sprintf("Draw on this piece of general wisdom: %s", entries[0].Content),
		Tier:      TierGeneralFallback,
	}, true
}
