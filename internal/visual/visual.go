// Package visual builds illustration URLs against an external
// image-generation endpoint. The service only constructs URLs; it never
// fetches them; the student's client does.
package visual

import (
	"fmt"
	"net/url"
	"strings"
)

// Fixed prompt templates. The description or subject is substituted and the
// whole prompt is URL-encoded into the path.
const (
	diagramTemplate  = "educational vector diagram of %s, clean minimalist style, white background"
	fallbackTemplate = "educational diagram of %s, simple illustration"
)

// queryParams are the fixed parameters appended to every generated URL.
const queryParams = "nologo=true&width=1024&height=600"

// Builder constructs image URLs for a configured endpoint base.
type Builder struct {
	base string
}

// NewBuilder creates a Builder. base is the endpoint root, e.g.
// "https://image.pollinations.ai"; a trailing slash is tolerated.
func NewBuilder(base string) *Builder {
	return &Builder{base: strings.TrimRight(base, "/")}
}

// DiagramURL returns the URL for an inline illustration requested by the
// model through an [IMAGE: description] tag.
func (b *Builder) DiagramURL(description string) string {
	return b.promptURL(fmt.Sprintf(diagramTemplate, description))
}

// FallbackURL returns the URL for the general subject illustration used
// when the retrieved context carries no stored image.
func (b *Builder) FallbackURL(subject string) string {
	return b.promptURL(fmt.Sprintf(fallbackTemplate, subject))
}

// promptURL encodes the prompt into the endpoint's path template:
// {base}/prompt/{encoded}?nologo=true&width=1024&height=600
func (b *Builder) promptURL(prompt string) string {
	return fmt.Sprintf("%s/prompt/%s?%s", b.base, url.PathEscape(prompt), queryParams)
}
