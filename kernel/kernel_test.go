package kernel

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSerialPassChecksContextBetweenChunks(t *testing.T) {
	e := New(Options{Workers: 1, ChunkSize: 4})
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var spans [][2]int
	err := e.pass(ctx, 16, func(lo, hi int) {
		spans = append(spans, [2]int{lo, hi})
		cancel()
	})
	require.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, [][2]int{{0, 4}}, spans)
}

func TestSerialPassCoversRange(t *testing.T) {
	e := New(Options{Workers: 1, ChunkSize: 4})
	var spans [][2]int
	require.NoError(t, e.pass(context.Background(), 10, func(lo, hi int) {
		spans = append(spans, [2]int{lo, hi})
	}))
	assert.Equal(t, [][2]int{{0, 4}, {4, 8}, {8, 10}}, spans)
}
