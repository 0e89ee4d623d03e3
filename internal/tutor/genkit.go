package tutor

import (
	"context"
	"fmt"

	"github.com/firebase/genkit/go/ai"
	"github.com/firebase/genkit/go/genkit"
)

// GenkitGenerator generates text through a Genkit-registered model.
type GenkitGenerator struct {
	g         *genkit.Genkit
	modelName string
}

// NewGenkitGenerator creates a generator bound to a model name, e.g.
// "googleai/gemini-2.5-flash".
func NewGenkitGenerator(g *genkit.Genkit, modelName string) *GenkitGenerator {
	return &GenkitGenerator{g: g, modelName: modelName}
}

// Generate sends the rendered prompt as a single user message and returns
// the response text.
func (gg *GenkitGenerator) Generate(ctx context.Context, renderedPrompt string) (string, error) {
	response, err := genkit.Generate(ctx, gg.g,
		ai.WithModelName(gg.modelName),
		ai.WithMessages(ai.NewUserTextMessage(renderedPrompt)),
	)
	if err != nil {
		return "", fmt.Errorf("generating with %s: %w", gg.modelName, err)
	}
	return response.Text(), nil
}
