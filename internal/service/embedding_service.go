package service

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sync"

	"go.uber.org/zap"
)

// EmbeddingService encodes clause text into dense vectors through a shared,
// once-initialized client. Identical ordered batches within the service's
// lifetime are served from cache instead of recomputed.
type EmbeddingService struct {
	client EmbeddingClient
	model  string
	logger *zap.Logger

	mu    sync.Mutex
	cache map[string][][]float64
}

func NewEmbeddingService(client EmbeddingClient, model string, logger *zap.Logger) *EmbeddingService {
	return &EmbeddingService{
		client: client,
		model:  model,
		logger: logger,
		cache:  make(map[string][][]float64),
	}
}

// Encode returns one vector per input text, in input order. The cache key is
// the exact ordered input sequence.
func (s *EmbeddingService) Encode(ctx context.Context, texts []string) ([][]float64, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	key := batchKey(texts)
	s.mu.Lock()
	if cached, ok := s.cache[key]; ok {
		s.mu.Unlock()
		return cached, nil
	}
	s.mu.Unlock()

	vectors, err := s.client.Embed(ctx, s.model, texts)
	if err != nil {
		return nil, fmt.Errorf("failed to encode batch of %d texts: %w", len(texts), err)
	}

	s.mu.Lock()
	s.cache[key] = vectors
	s.mu.Unlock()

	s.logger.Debug("Batch encoded",
		zap.Int("texts", len(texts)),
		zap.String("model", s.model),
	)

	return vectors, nil
}

// EncodeOne encodes a single text. The active control clause is encoded
// through this path, one call per match.
func (s *EmbeddingService) EncodeOne(ctx context.Context, text string) ([]float64, error) {
	vectors, err := s.Encode(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return vectors[0], nil
}

func batchKey(texts []string) string {
	h := sha256.New()
	for _, t := range texts {
		h.Write([]byte(t))
		h.Write([]byte{0})
	}
	return hex.EncodeToString(h.Sum(nil))
}
