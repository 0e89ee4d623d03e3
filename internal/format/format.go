// Package format post-processes raw model output into audience-specific
// text: markdown cleanup for messaging clients and inline image-tag
// expansion for rich web clients. Both transforms are pure functions.
package format

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/sabitutor/sabi/internal/prompt"
	"github.com/sabitutor/sabi/internal/visual"
)

var (
	// headingLine matches markdown heading lines, capturing the text.
	headingLine = regexp.MustCompile(`(?m)^[ \t]*#{1,6}[ \t]*(.*)$`)

	// emphasisRun matches runs of two or more asterisks. Collapsing runs to
	// a single asterisk turns **bold** into *bold* and keeps the transform
	// idempotent.
	emphasisRun = regexp.MustCompile(`\*{2,}`)

	// imageTag matches the [IMAGE: description] convention the web format
	// block invites the model to use.
	imageTag = regexp.MustCompile(`\[IMAGE:\s*([^\]]+)\]`)
)

// mathDelimiters are the LaTeX delimiter tokens stripped for messaging
// output. Content between them is kept; the markup itself is discarded.
// This is a best-effort lossy conversion.
var mathDelimiters = []string{"$$", "$", `\(`, `\)`, `\[`, `\]`}

// Processor applies audience-specific post-processing.
type Processor struct {
	visuals *visual.Builder
}

// NewProcessor creates a Processor using the given image URL builder for
// tag expansion.
func NewProcessor(visuals *visual.Builder) *Processor {
	return &Processor{visuals: visuals}
}

// Apply transforms raw generated text for the profile's audience:
// messaging cleanup for WhatsApp, image-tag expansion for web.
func (p *Processor) Apply(raw string, profile prompt.Profile) string {
	switch profile.Audience {
	case prompt.AudienceWhatsApp:
		return CleanWhatsApp(raw)
	default:
		return ExpandImageTags(raw, p.visuals)
	}
}

// CleanWhatsApp rewrites markdown conventions into WhatsApp ones:
// math delimiters are stripped, heading lines become emphasized lines,
// double emphasis collapses to single asterisks and the result is
// trimmed. Applying it twice yields the same result as applying it once.
func CleanWhatsApp(s string) string {
	// Delimiters first: removing "$" or "\(" can push asterisks or heading
	// markers together, and those must still be rewritten in this pass.
	for _, delim := range mathDelimiters {
		s = strings.ReplaceAll(s, delim, "")
	}

	// Headings before the emphasis collapse so "## **Term**" collapses
	// cleanly below.
	s = headingLine.ReplaceAllStringFunc(s, func(line string) string {
		text := strings.TrimSpace(strings.TrimLeft(strings.TrimSpace(line), "#"))
		return "*" + text + "*"
	})

	s = emphasisRun.ReplaceAllString(s, "*")

	return strings.TrimSpace(s)
}

// ExpandImageTags replaces every [IMAGE: description] occurrence with an
// inline markdown image pointing at the generation endpoint, each tag with
// its own description substituted. Text without tags is returned unchanged.
func ExpandImageTags(s string, visuals *visual.Builder) string {
	return imageTag.ReplaceAllStringFunc(s, func(tag string) string {
		description := strings.TrimSpace(imageTag.FindStringSubmatch(tag)[1])
		return fmt.Sprintf("![%s](%s)", description, visuals.DiagramURL(description))
	})
}
