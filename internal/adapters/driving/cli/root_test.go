package cli

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/monster2z/llm-rag-pro/internal/chunker"
	"github.com/monster2z/llm-rag-pro/internal/core/ports/driven"
)

// stubConfig serves typed lookups from a plain map.
type stubConfig struct {
	values map[string]any
}

var _ driven.ConfigStore = (*stubConfig)(nil)

func (c *stubConfig) Get(key string) (any, bool) {
	v, ok := c.values[key]
	return v, ok
}

func (c *stubConfig) GetString(key string) string {
	s, _ := c.values[key].(string)
	return s
}

func (c *stubConfig) GetInt(key string) int {
	n, _ := c.values[key].(int)
	return n
}

func (c *stubConfig) GetBool(key string) bool {
	b, _ := c.values[key].(bool)
	return b
}

func (c *stubConfig) Set(key string, value any) error {
	c.values[key] = value
	return nil
}

func (c *stubConfig) Save() error { return nil }
func (c *stubConfig) Load() error { return nil }
func (c *stubConfig) Path() string { return "" }

func TestBuildChunkerDefaults(t *testing.T) {
	s := buildChunker(&stubConfig{values: map[string]any{}})
	assert.Equal(t, chunker.DefaultChunkSize, s.Size())
	assert.Equal(t, chunker.DefaultChunkOverlap, s.Overlap())
}

func TestBuildChunkerFromConfig(t *testing.T) {
	s := buildChunker(&stubConfig{values: map[string]any{
		"chunker.size":    600,
		"chunker.overlap": 120,
	}})
	assert.Equal(t, 600, s.Size())
	assert.Equal(t, 120, s.Overlap())
}

func TestBuildChunkerIgnoresInvalidValues(t *testing.T) {
	s := buildChunker(&stubConfig{values: map[string]any{
		"chunker.size":    -1,
		"chunker.overlap": 0,
	}})
	assert.Equal(t, chunker.DefaultChunkSize, s.Size())
	assert.Equal(t, chunker.DefaultChunkOverlap, s.Overlap())
}
