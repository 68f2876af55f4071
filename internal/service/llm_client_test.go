package service

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"clausematch/pkg/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestOpenAIClient(baseURL string) *OpenAIClient {
	return NewOpenAIClient(&config.LLMConfig{
		APIKey:         "test-key",
		BaseURL:        baseURL,
		RequestTimeout: 5 * time.Second,
	}, zap.NewNop())
}

func TestEmbedReordersByResponseIndex(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		// vectors deliberately out of order; the index field is authoritative
		_, _ = w.Write([]byte(`{
			"object": "list",
			"model": "test-embed",
			"data": [
				{"object": "embedding", "index": 1, "embedding": [0.0, 1.0]},
				{"object": "embedding", "index": 0, "embedding": [1.0, 0.0]}
			]
		}`))
	}))
	defer server.Close()

	client := newTestOpenAIClient(server.URL + "/v1")
	vectors, err := client.Embed(context.Background(), "test-embed", []string{"first", "second"})
	require.NoError(t, err)

	require.Len(t, vectors, 2)
	assert.Equal(t, []float64{1, 0}, vectors[0])
	assert.Equal(t, []float64{0, 1}, vectors[1])
}

func TestEmbedRejectsOutOfRangeIndex(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"object": "list",
			"model": "test-embed",
			"data": [{"object": "embedding", "index": 3, "embedding": [1.0]}]
		}`))
	}))
	defer server.Close()

	client := newTestOpenAIClient(server.URL + "/v1")
	_, err := client.Embed(context.Background(), "test-embed", []string{"only"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "out of range")
}
