package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestEncodeCachesIdenticalOrderedBatches(t *testing.T) {
	embedder := &stubEmbedder{vectors: map[string][]float64{
		"alpha clause": {1, 0},
		"beta clause":  {0, 1},
	}}
	service := NewEmbeddingService(embedder, "test-model", zap.NewNop())

	batch := []string{"alpha clause", "beta clause"}
	first, err := service.Encode(context.Background(), batch)
	require.NoError(t, err)
	second, err := service.Encode(context.Background(), batch)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Len(t, embedder.batches, 1)

	// a different order is a different batch
	_, err = service.Encode(context.Background(), []string{"beta clause", "alpha clause"})
	require.NoError(t, err)
	assert.Len(t, embedder.batches, 2)
}

func TestEncodePreservesInputOrder(t *testing.T) {
	embedder := &stubEmbedder{vectors: map[string][]float64{
		"alpha clause": {1, 0},
		"beta clause":  {0, 1},
	}}
	service := NewEmbeddingService(embedder, "test-model", zap.NewNop())

	vectors, err := service.Encode(context.Background(), []string{"beta clause", "alpha clause"})
	require.NoError(t, err)
	require.Len(t, vectors, 2)
	assert.Equal(t, []float64{0, 1}, vectors[0])
	assert.Equal(t, []float64{1, 0}, vectors[1])
}

func TestEncodeEmptyBatch(t *testing.T) {
	embedder := &stubEmbedder{vectors: map[string][]float64{}}
	service := NewEmbeddingService(embedder, "test-model", zap.NewNop())

	vectors, err := service.Encode(context.Background(), nil)
	require.NoError(t, err)
	assert.Nil(t, vectors)
	assert.Empty(t, embedder.batches)
}

func TestEncodeOne(t *testing.T) {
	embedder := &stubEmbedder{vectors: map[string][]float64{
		"single clause": {0.5, 0.5},
	}}
	service := NewEmbeddingService(embedder, "test-model", zap.NewNop())

	vec, err := service.EncodeOne(context.Background(), "single clause")
	require.NoError(t, err)
	assert.Equal(t, []float64{0.5, 0.5}, vec)
}
