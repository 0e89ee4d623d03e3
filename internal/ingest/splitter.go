package ingest

import "strings"

// Default chunking parameters. Sized so a chunk stays well inside the
// embedding model's token limit while keeping enough context to stand
// alone as a retrievable analogy.
const (
	DefaultChunkSize = 1000
	DefaultOverlap   = 100
)

// splitSeparators are tried in order: paragraph break, line break,
// sentence end, then word boundary.
var splitSeparators = []string{"\n\n", "\n", ". ", " "}

// Splitter breaks long text into overlapping chunks. It prefers breaking
// on the coarsest separator that keeps pieces under the chunk size, only
// slicing mid-word as a last resort.
type Splitter struct {
	chunkSize int
	overlap   int
}

// NewSplitter creates a Splitter. Non-positive values fall back to the
// defaults; overlap is clamped below the chunk size.
func NewSplitter(chunkSize, overlap int) *Splitter {
	if chunkSize <= 0 {
		chunkSize = DefaultChunkSize
	}
	if overlap < 0 {
		overlap = DefaultOverlap
	}
	if overlap >= chunkSize {
		overlap = chunkSize / 10
	}
	return &Splitter{chunkSize: chunkSize, overlap: overlap}
}

// Split returns the text's chunks in document order. Whitespace-only
// chunks are dropped.
func (s *Splitter) Split(text string) []string {
	return s.merge(s.divide(text, splitSeparators))
}

// divide recursively breaks text into pieces no longer than the chunk
// size, descending to finer separators only for pieces that need it.
func (s *Splitter) divide(text string, separators []string) []string {
	if len(text) <= s.chunkSize {
		return []string{text}
	}

	for i, sep := range separators {
		if !strings.Contains(text, sep) {
			continue
		}
		var pieces []string
		for _, part := range strings.SplitAfter(text, sep) {
			if len(part) > s.chunkSize {
				pieces = append(pieces, s.divide(part, separators[i+1:])...)
			} else {
				pieces = append(pieces, part)
			}
		}
		return pieces
	}

	return s.window(text)
}

// window hard-slices text that no separator can break.
func (s *Splitter) window(text string) []string {
	var pieces []string
	step := s.chunkSize - s.overlap
	for start := 0; start < len(text); start += step {
		end := min(start+s.chunkSize, len(text))
		pieces = append(pieces, text[start:end])
		if end == len(text) {
			break
		}
	}
	return pieces
}

// merge greedily packs pieces into chunks up to the chunk size, seeding
// each new chunk with the tail of the previous one so context carries
// across chunk boundaries.
func (s *Splitter) merge(pieces []string) []string {
	var chunks []string
	var current strings.Builder

	flush := func() {
		if chunk := strings.TrimSpace(current.String()); chunk != "" {
			chunks = append(chunks, chunk)
		}
	}

	for _, piece := range pieces {
		if current.Len() > 0 && current.Len()+len(piece) > s.chunkSize {
			flush()
			tail := overlapTail(current.String(), s.overlap)
			current.Reset()
			current.WriteString(tail)
		}
		current.WriteString(piece)
	}
	flush()

	return chunks
}

func overlapTail(s string, n int) string {
	if n <= 0 {
		return ""
	}
	if len(s) <= n {
		return s
	}
	return s[len(s)-n:]
}
