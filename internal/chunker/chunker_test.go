package chunker

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSplitEmptyInput(t *testing.T) {
	assert.Nil(t, New().Split(""))
}

func TestSplitShortInput(t *testing.T) {
	chunks := New().Split("short text")
	require.Len(t, chunks, 1)
	assert.Equal(t, "short text", chunks[0])
}

func TestSplitDeterministic(t *testing.T) {
	text := strings.Repeat("The quick brown fox jumps over the lazy dog. ", 200)
	s := New()

	first := s.Split(text)
	second := s.Split(text)
	assert.Equal(t, first, second)
}

func TestSplitSizeCeiling(t *testing.T) {
	text := strings.Repeat("word ", 2000)
	chunks := New().Split(text)
	require.Greater(t, len(chunks), 1)

	for i, chunk := range chunks {
		assert.LessOrEqual(t, len(chunk), DefaultChunkSize, "chunk %d", i)
		assert.NotEmpty(t, chunk, "chunk %d", i)
	}
}

func TestSplitOverlapInvariant(t *testing.T) {
	text := strings.Repeat("The quick brown fox jumps over the lazy dog. ", 200)
	s := New()
	chunks := s.Split(text)
	require.Greater(t, len(chunks), 1)

	// Each chunk after the first starts with its predecessor's tail
	for i := 1; i < len(chunks); i++ {
		prev := chunks[i-1]
		tail := prev[len(prev)-s.Overlap():]
		assert.Equal(t, tail, chunks[i][:s.Overlap()], "chunk %d", i)
	}
}

func TestSplitReassembles(t *testing.T) {
	text := strings.Repeat("All work and no play makes for dull documents. ", 150)
	s := New()
	chunks := s.Split(text)
	require.Greater(t, len(chunks), 1)

	// Dropping each chunk's leading overlap reconstructs the input
	var b strings.Builder
	b.WriteString(chunks[0])
	for _, chunk := range chunks[1:] {
		b.WriteString(chunk[s.Overlap():])
	}
	assert.Equal(t, text, b.String())
}

func TestSplitPrefersParagraphBoundary(t *testing.T) {
	para := strings.Repeat("alpha beta gamma delta. ", 30) // ~720 chars
	text := para + "\n\n" + para

	chunks := New().Split(text)
	require.Greater(t, len(chunks), 1)
	assert.True(t, strings.HasSuffix(chunks[0], "\n\n"),
		"first chunk should end at the paragraph break, got tail %q",
		chunks[0][len(chunks[0])-10:])
}

func TestSplitHardCutWithoutBoundaries(t *testing.T) {
	text := strings.Repeat("x", 2500)
	s := New(WithChunkSize(1000), WithOverlap(200))

	chunks := s.Split(text)
	require.Greater(t, len(chunks), 1)
	assert.Equal(t, 1000, len(chunks[0]))
}

func TestNewClampsExcessiveOverlap(t *testing.T) {
	s := New(WithChunkSize(100), WithOverlap(100))
	assert.Equal(t, 25, s.Overlap())
}

func TestSplitCustomOptions(t *testing.T) {
	s := New(WithChunkSize(50), WithOverlap(10))
	assert.Equal(t, 50, s.Size())
	assert.Equal(t, 10, s.Overlap())

	chunks := s.Split(strings.Repeat("ab ", 100))
	for i, chunk := range chunks {
		assert.LessOrEqual(t, len(chunk), 50, "chunk %d", i)
	}
}
