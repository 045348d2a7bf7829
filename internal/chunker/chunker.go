// Package chunker provides fixed-size text splitting with overlap.
package chunker

import "strings"

// DefaultChunkSize is the default number of characters per chunk.
const DefaultChunkSize = 1000

// DefaultChunkOverlap is the default number of overlapping characters.
const DefaultChunkOverlap = 200

// Splitter splits raw text into overlapping chunks. Splitting prefers
// natural boundaries (paragraph, then line, then sentence, then word) but
// guarantees the hard size ceiling. Deterministic: the same input always
// yields the same chunk sequence.
type Splitter struct {
	size    int
	overlap int
}

// Option configures the splitter.
type Option func(*Splitter)

// WithChunkSize sets the chunk size in characters.
func WithChunkSize(size int) Option {
	return func(s *Splitter) {
		if size > 0 {
			s.size = size
		}
	}
}

// WithOverlap sets the overlap between chunks in characters.
func WithOverlap(overlap int) Option {
	return func(s *Splitter) {
		if overlap >= 0 {
			s.overlap = overlap
		}
	}
}

// New creates a splitter with the given options.
func New(opts ...Option) *Splitter {
	s := &Splitter{
		size:    DefaultChunkSize,
		overlap: DefaultChunkOverlap,
	}

	for _, opt := range opts {
		opt(s)
	}

	// Ensure overlap doesn't exceed chunk size
	if s.overlap >= s.size {
		s.overlap = s.size / 4
	}

	return s
}

// Size returns the configured chunk size.
func (s *Splitter) Size() int { return s.size }

// Overlap returns the configured overlap.
func (s *Splitter) Overlap() int { return s.overlap }

// Split cuts text into chunks of at most Size characters. Each chunk after
// the first repeats the trailing Overlap characters of its predecessor as
// leading context. Empty input produces no chunks; no chunk is ever empty.
func (s *Splitter) Split(text string) []string {
	if text == "" {
		return nil
	}

	textLen := len(text)
	if textLen <= s.size {
		return []string{text}
	}

	estimated := (textLen / (s.size - s.overlap)) + 1
	chunks := make([]string, 0, estimated)

	start := 0
	for start < textLen {
		end := start + s.size
		if end >= textLen {
			chunks = append(chunks, text[start:])
			break
		}

		end = s.breakPoint(text, start, end)
		chunks = append(chunks, text[start:end])

		start = end - s.overlap
	}

	return chunks
}

// breakPoint picks the cut position within (start, limit], preferring
// natural boundaries. The cut must leave enough room past the overlap so
// the walk always advances.
func (s *Splitter) breakPoint(text string, start, limit int) int {
	window := text[start:limit]

	// Floor keeps chunks from collapsing below the overlap
	floor := s.overlap + 1
	if half := len(window) / 2; half > floor {
		floor = half
	}

	if idx := strings.LastIndex(window, "\n\n"); idx >= floor {
		return start + idx + 2
	}
	if idx := strings.LastIndexByte(window, '\n'); idx >= floor {
		return start + idx + 1
	}
	if idx := lastSentenceEnd(window); idx >= floor {
		return start + idx
	}
	if idx := strings.LastIndexByte(window, ' '); idx >= floor {
		return start + idx + 1
	}

	return limit
}

// lastSentenceEnd returns the position just past the last sentence
// terminator followed by a space, or -1.
func lastSentenceEnd(window string) int {
	best := -1
	for _, term := range []string{". ", "! ", "? "} {
		if idx := strings.LastIndex(window, term); idx >= 0 && idx+2 > best {
			best = idx + 2
		}
	}
	return best
}
