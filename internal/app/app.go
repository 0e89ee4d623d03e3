// Package app provides application initialization and dependency
// injection. Setup builds every collaborator once, before serving
// begins; nothing in the serving path lazily initializes shared state.
package app

import (
	"github.com/firebase/genkit/go/ai"
	"github.com/firebase/genkit/go/genkit"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/sabitutor/sabi/internal/config"
	"github.com/sabitutor/sabi/internal/ingest"
	"github.com/sabitutor/sabi/internal/knowledge"
	"github.com/sabitutor/sabi/internal/log"
	"github.com/sabitutor/sabi/internal/retrieval"
	"github.com/sabitutor/sabi/internal/tutor"
	"github.com/sabitutor/sabi/internal/visual"
)

// App is the application container.
type App struct {
	Config *config.Config
	Logger log.Logger

	// Core services
	Genkit    *genkit.Genkit
	Embedder  ai.Embedder
	DBPool    *pgxpool.Pool
	Knowledge *knowledge.Store
	Lookup    *retrieval.Lookup
	Visuals   *visual.Builder
	Tutor     *tutor.Tutor
	Ingestor  *ingest.Ingestor

	// Lifecycle
	otelCleanup func()
	dbCleanup   func()
}

// Close releases all resources in reverse construction order.
func (a *App) Close() error {
	if a.Logger != nil {
		a.Logger.Info("shutting down application")
	}

	if a.dbCleanup != nil {
		a.dbCleanup()
	}
	if a.otelCleanup != nil {
		a.otelCleanup()
	}
	return nil
}
