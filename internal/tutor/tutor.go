// Package tutor orchestrates one tutoring request end to end: context
// lookup, prompt composition, generation and post-processing.
//
// The orchestrator never returns an error to its caller. Retrieval
// failures are already absorbed inside the lookup's fallback chain;
// generation failures degrade into a structurally valid reply carrying an
// error description, the "Error" narrative marker and no visual.
package tutor

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/sabitutor/sabi/internal/format"
	"github.com/sabitutor/sabi/internal/prompt"
	"github.com/sabitutor/sabi/internal/retrieval"
	"github.com/sabitutor/sabi/internal/visual"
)

// ErrorNarrative is the sentinel context narrative of a degraded reply.
const ErrorNarrative = "Error"

// defaultGenerationTimeout bounds a single generation call.
const defaultGenerationTimeout = 60 * time.Second

// Generator produces text from a rendered prompt. Implemented by
// GenkitGenerator in production and by mocks in tests.
type Generator interface {
	Generate(ctx context.Context, renderedPrompt string) (string, error)
}

// ContextFinder resolves tutoring context for a query. Implemented by
// retrieval.Lookup.
type ContextFinder interface {
	FindContext(ctx context.Context, query string, minSimilarity float32) retrieval.ContextResult
}

// Reply is the well-formed triple every orchestration path yields.
type Reply struct {
	Text             string
	ContextNarrative string
	VisualURL        string // empty only for degraded replies
}

// Config holds the orchestrator's tuning values.
type Config struct {
	// MinSimilarity is the retrieval threshold for the specific tier.
	MinSimilarity float32

	// GenerationTimeout bounds each generation call. Zero uses the default.
	GenerationTimeout time.Duration
}

// Tutor is the answer orchestrator.
type Tutor struct {
	lookup        ContextFinder
	gen           Generator
	visuals       *visual.Builder
	post          *format.Processor
	minSimilarity float32
	genTimeout    time.Duration
	logger        *slog.Logger
}

// New creates a Tutor. All collaborators are constructed once at startup
// and injected; the orchestrator holds no lock across its calls, so any
// number of requests may run concurrently.
func New(lookup ContextFinder, gen Generator, visuals *visual.Builder, cfg Config, logger *slog.Logger) *Tutor {
	if logger == nil {
		logger = slog.Default()
	}
	timeout := cfg.GenerationTimeout
	if timeout <= 0 {
		timeout = defaultGenerationTimeout
	}
	return &Tutor{
		lookup:        lookup,
		gen:           gen,
		visuals:       visuals,
		post:          format.NewProcessor(visuals),
		minSimilarity: cfg.MinSimilarity,
		genTimeout:    timeout,
		logger:        logger,
	}
}

// Answer runs the full request cycle for a subject and profile. Empty
// subjects are passed through unchanged; input validation is the
// transport layer's concern.
func (t *Tutor) Answer(ctx context.Context, subject string, profile prompt.Profile) Reply {
	cr := t.lookup.FindContext(ctx, subject, t.minSimilarity)

	// Guarantee a visual: fall back to a subject diagram when the context
	// carried no stored illustration.
	visualURL := cr.ImageURL
	if visualURL == "" {
		visualURL = t.visuals.FallbackURL(subject)
	}

	rendered := prompt.Build(subject, cr.Narrative, profile)

	raw, err := t.generate(ctx, rendered)
	if err != nil {
		t.logger.Error("generation failed", "subject", subject, "error", err)
		return Reply{
			Text:             fmt.Sprintf("Sorry, I could not prepare this lesson: %v", err),
			ContextNarrative: ErrorNarrative,
		}
	}

	t.logger.Debug("answered", "subject", subject, "tier", cr.Tier.String(), "reply_length", len(raw))
	return Reply{
		Text:             t.post.Apply(raw, profile),
		ContextNarrative: cr.Narrative,
		VisualURL:        visualURL,
	}
}

// Quiz generates a 5-question multiple-choice quiz for the subject,
// grounded in the retrieved context. The model's output follows a fixed
// line-oriented grammar; the service returns it verbatim and never parses
// it; validation is a consumer concern. Like Answer, Quiz absorbs
// generation failures into an error-description text.
func (t *Tutor) Quiz(ctx context.Context, subject string) string {
	cr := t.lookup.FindContext(ctx, subject, t.minSimilarity)

	rendered := prompt.BuildQuiz(subject, cr.Narrative)

	raw, err := t.generate(ctx, rendered)
	if err != nil {
		t.logger.Error("quiz generation failed", "subject", subject, "error", err)
		return fmt.Sprintf("Sorry, I could not prepare a quiz: %v", err)
	}
	return raw
}

// generate invokes the generation client under the configured timeout.
func (t *Tutor) generate(ctx context.Context, renderedPrompt string) (string, error) {
	genCtx, cancel := context.WithTimeout(ctx, t.genTimeout)
	defer cancel()
	return t.gen.Generate(genCtx, renderedPrompt)
}
