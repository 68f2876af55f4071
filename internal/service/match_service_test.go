package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"clausematch/internal/models"
	"clausematch/pkg/config"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// stubEmbedder returns fixed vectors per text and records every batch it was
// asked to encode.
type stubEmbedder struct {
	mu      sync.Mutex
	vectors map[string][]float64
	batches [][]string
	err     error
}

func (s *stubEmbedder) Embed(_ context.Context, _ string, texts []string) ([][]float64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return nil, s.err
	}
	s.batches = append(s.batches, append([]string(nil), texts...))
	out := make([][]float64, len(texts))
	for i, text := range texts {
		vec, ok := s.vectors[text]
		if !ok {
			return nil, fmt.Errorf("no stub vector for %q", text)
		}
		out[i] = vec
	}
	return out, nil
}

// stubReasoner returns a canned response and counts invocations.
type stubReasoner struct {
	mu       sync.Mutex
	response string
	err      error
	calls    int
}

func (s *stubReasoner) Complete(_ context.Context, _ CompletionRequest) (CompletionResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	if s.err != nil {
		return CompletionResult{}, s.err
	}
	return CompletionResult{Content: s.response}, nil
}

func (s *stubReasoner) CompleteStream(ctx context.Context, req CompletionRequest, fn func(string) error) (CompletionResult, error) {
	result, err := s.Complete(ctx, req)
	if err != nil {
		return CompletionResult{}, err
	}
	if fn != nil {
		if err := fn(result.Content); err != nil {
			return CompletionResult{}, err
		}
	}
	return result, nil
}

func (s *stubReasoner) callCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}

func newTestMatcher(embedder *stubEmbedder, reasoner *stubReasoner, cfg config.MatchConfig) *MatchService {
	embeddings := NewEmbeddingService(embedder, "test-model", zap.NewNop())
	analysis := NewAnalysisService(reasoner, "test-model", zap.NewNop())
	return NewMatchService(embeddings, analysis, cfg, zap.NewNop())
}

func TestClassifyScore(t *testing.T) {
	assert.Equal(t, models.StatusStrongMatch, ClassifyScore(0.8))
	assert.Equal(t, models.StatusPartialMatch, ClassifyScore(0.6))
	assert.Equal(t, models.StatusWeakMatch, ClassifyScore(0.3))
	assert.Equal(t, models.StatusUnmatched, ClassifyScore(0.1))

	// boundary values classify into the higher tier
	assert.Equal(t, models.StatusStrongMatch, ClassifyScore(0.75))
	assert.Equal(t, models.StatusPartialMatch, ClassifyScore(0.50))
	assert.Equal(t, models.StatusWeakMatch, ClassifyScore(0.25))

	// negative cosine scores fall below every threshold
	assert.Equal(t, models.StatusUnmatched, ClassifyScore(-0.4))
}

func TestCosineSimilarity(t *testing.T) {
	assert.InDelta(t, 1.0, CosineSimilarity([]float64{1, 2, 3}, []float64{1, 2, 3}), 1e-9)
	assert.InDelta(t, 0.0, CosineSimilarity([]float64{1, 0}, []float64{0, 1}), 1e-9)
	assert.InDelta(t, -1.0, CosineSimilarity([]float64{1, 0}, []float64{-1, 0}), 1e-9)

	// zero norm and length mismatch degrade to 0
	assert.Equal(t, 0.0, CosineSimilarity([]float64{0, 0}, []float64{1, 1}))
	assert.Equal(t, 0.0, CosineSimilarity([]float64{1}, []float64{1, 1}))
	assert.Equal(t, 0.0, CosineSimilarity(nil, nil))
}

func TestTopMatchesTiebreak(t *testing.T) {
	query := []float64{1, 0}
	corpus := [][]float64{
		{1, 0},
		{1, 0}, // identical score, higher index
		{0, 1},
	}

	ranked := topMatches(query, corpus, 2)
	require.Len(t, ranked, 2)
	assert.Equal(t, 0, ranked[0].Index)
	assert.Equal(t, 1, ranked[1].Index)
}

func testClauses(n int) []models.ClauseRecord {
	clauses := make([]models.ClauseRecord, n)
	for i := range clauses {
		clauses[i] = models.ClauseRecord{
			ClauseID: fmt.Sprintf("policy-T%d", i+1),
			Text:     fmt.Sprintf("Control clause number %d with enough length to be valid", i+1),
			DocName:  "policy.txt",
			Section:  "Text File",
		}
	}
	return clauses
}

func testRegulations(vectors map[string][]float64) []models.RegulationClause {
	page := 1
	return []models.RegulationClause{
		{
			ClauseRecord: models.ClauseRecord{
				ClauseID: "GDPR-P1-C1",
				Text:     "Personal data shall be encrypted using industry-standard algorithms.",
				DocName:  "GDPR.pdf",
				PageNum:  &page,
				Section:  "Page 1",
			},
			Regulation: "GDPR.pdf",
		},
		{
			ClauseRecord: models.ClauseRecord{
				ClauseID: "GDPR-P1-C2",
				Text:     "Data subjects have the right to erasure of their personal data.",
				DocName:  "GDPR.pdf",
				PageNum:  &page,
				Section:  "Page 1",
			},
			Regulation: "GDPR.pdf",
		},
	}
}

func TestProcessAndMatchOrderAndCount(t *testing.T) {
	vectors := map[string][]float64{
		"Personal data shall be encrypted using industry-standard algorithms.": {1, 0},
		"Data subjects have the right to erasure of their personal data.":      {0, 1},
	}
	controls := testClauses(6)
	for i, clause := range controls {
		// alternate between aligning with the two regulation clauses
		if i%2 == 0 {
			vectors[clause.Text] = []float64{0.9, 0.1}
		} else {
			vectors[clause.Text] = []float64{0.1, 0.9}
		}
	}

	embedder := &stubEmbedder{vectors: vectors}
	reasoner := &stubReasoner{response: "Classify the match: Strong\nOverlap: encryption of personal data\nGap: none found"}
	matcher := newTestMatcher(embedder, reasoner, config.MatchConfig{
		TopK: 1, MaxAnalysis: 3, Workers: 4, AnalysisEnabled: true,
	})

	sessionID := uuid.New()
	results, err := matcher.ProcessAndMatch(context.Background(), sessionID, controls, testRegulations(vectors))
	require.NoError(t, err)

	// N controls x K=1 results, in submission order, with ordinals
	// stamped at assembly so reloads reproduce the same order
	require.Len(t, results, len(controls))
	for i, result := range results {
		assert.Equal(t, controls[i].ClauseID, result.ControlID)
		assert.Equal(t, i, result.Ordinal)
		assert.Equal(t, sessionID, result.SessionID)
		assert.Equal(t, models.StatusStrongMatch, result.Status)
		assert.Equal(t, "GDPR.pdf", result.Regulation)
	}

	// only the first MaxAnalysis clauses get a narrative
	require.Equal(t, 3, reasoner.callCount())
	for i, result := range results {
		if i < 3 {
			assert.Equal(t, "encryption of personal data", result.Overlap)
			assert.Contains(t, result.Reason, "Classify the match")
		} else {
			assert.Equal(t, AnalysisNotApplied, result.Reason)
			assert.Equal(t, models.FieldEmpty, result.Overlap)
			assert.Equal(t, models.FieldEmpty, result.Gap)
		}
	}
}

func TestProcessAndMatchEmptyClauseShortCircuit(t *testing.T) {
	regVec := []float64{1, 0}
	vectors := map[string][]float64{
		"Personal data shall be encrypted using industry-standard algorithms.": regVec,
		"Data subjects have the right to erasure of their personal data.":      {0, 1},
	}
	embedder := &stubEmbedder{vectors: vectors}
	reasoner := &stubReasoner{response: "irrelevant"}
	matcher := newTestMatcher(embedder, reasoner, config.MatchConfig{
		TopK: 1, MaxAnalysis: 3, Workers: 2, AnalysisEnabled: true,
	})

	controls := []models.ClauseRecord{{ClauseID: "policy-T1", Text: "   "}}
	results, err := matcher.ProcessAndMatch(context.Background(), uuid.New(), controls, testRegulations(vectors))
	require.NoError(t, err)

	require.Len(t, results, 1)
	assert.Equal(t, 0.0, results[0].Score)
	assert.Equal(t, models.StatusUnmatched, results[0].Status)
	assert.Equal(t, "Clause was empty", results[0].Gap)
	assert.Equal(t, models.FieldEmpty, results[0].MatchedText)

	// only the regulation batch was embedded; the empty clause never was
	embedder.mu.Lock()
	defer embedder.mu.Unlock()
	require.Len(t, embedder.batches, 1)
	assert.Len(t, embedder.batches[0], 2)
}

func TestProcessAndMatchDegradesOnEmbeddingFailure(t *testing.T) {
	vectors := map[string][]float64{
		"Personal data shall be encrypted using industry-standard algorithms.": {1, 0},
		"Data subjects have the right to erasure of their personal data.":      {0, 1},
	}
	// the control clause has no stub vector, so its individual encode fails
	embedder := &stubEmbedder{vectors: vectors}
	reasoner := &stubReasoner{response: "irrelevant"}
	matcher := newTestMatcher(embedder, reasoner, config.MatchConfig{
		TopK: 1, MaxAnalysis: 3, Workers: 2, AnalysisEnabled: true,
	})

	controls := []models.ClauseRecord{{
		ClauseID: "policy-T1",
		Text:     "A clause the embedding service cannot handle this time around",
	}}
	results, err := matcher.ProcessAndMatch(context.Background(), uuid.New(), controls, testRegulations(vectors))
	require.NoError(t, err)

	require.Len(t, results, 1)
	assert.Equal(t, models.StatusUnmatched, results[0].Status)
	assert.Contains(t, results[0].Reason, "[match error:")
}

func TestProcessAndMatchRegulationEmbedFailureAborts(t *testing.T) {
	embedder := &stubEmbedder{err: errors.New("rate limited")}
	reasoner := &stubReasoner{response: "irrelevant"}
	matcher := newTestMatcher(embedder, reasoner, config.MatchConfig{
		TopK: 1, MaxAnalysis: 3, Workers: 2, AnalysisEnabled: true,
	})

	_, err := matcher.ProcessAndMatch(context.Background(), uuid.New(), testClauses(1), testRegulations(nil))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "regulation clauses")
}
