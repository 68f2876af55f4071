package service

import (
	"context"
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"
	"time"

	"clausematch/internal/models"
	"clausematch/pkg/config"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Classification thresholds, evaluated high to low. Negative cosine scores
// fall through every tier and land on Unmatched.
const (
	thresholdStrong  = 0.75
	thresholdPartial = 0.50
	thresholdWeak    = 0.25
)

// rankedMatch is one regulation candidate for a control clause, ranked by
// descending cosine similarity.
type rankedMatch struct {
	Index int
	Score float64
}

// MatchService runs the full matching pipeline: embed the regulation corpus
// once, then fan control clauses out over a bounded worker pool, score each
// against every regulation clause, classify, and annotate the first few with
// a narrative analysis.
type MatchService struct {
	embeddings *EmbeddingService
	analysis   *AnalysisService
	cfg        config.MatchConfig
	logger     *zap.Logger
}

func NewMatchService(embeddings *EmbeddingService, analysis *AnalysisService, cfg config.MatchConfig, logger *zap.Logger) *MatchService {
	return &MatchService{
		embeddings: embeddings,
		analysis:   analysis,
		cfg:        cfg,
		logger:     logger,
	}
}

// ProcessAndMatch matches every control clause against the regulation corpus
// and returns the results flattened in control-clause submission order,
// regardless of worker completion order. A failure on a single clause
// degrades that clause's result; only a failure to embed the regulation
// corpus aborts the run.
func (s *MatchService) ProcessAndMatch(ctx context.Context, sessionID uuid.UUID, controls []models.ClauseRecord, regulations []models.RegulationClause) ([]models.MatchResult, error) {
	if len(controls) == 0 {
		return []models.MatchResult{}, nil
	}

	regTexts := make([]string, len(regulations))
	for i, reg := range regulations {
		regTexts[i] = reg.Text
	}
	regVectors, err := s.embeddings.Encode(ctx, regTexts)
	if err != nil {
		return nil, fmt.Errorf("failed to embed regulation clauses: %w", err)
	}

	s.logger.Info("Starting matching run",
		zap.String("session_id", sessionID.String()),
		zap.Int("control_clauses", len(controls)),
		zap.Int("regulation_clauses", len(regulations)),
		zap.Int("workers", s.cfg.Workers))

	slots := make([][]models.MatchResult, len(controls))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.cfg.Workers)
	for i, clause := range controls {
		i, clause := i, clause
		g.Go(func() error {
			slots[i] = s.matchOne(gctx, sessionID, i, clause, regulations, regVectors)
			return nil
		})
	}
	// Workers never return errors; failures degrade their own slot.
	_ = g.Wait()

	// Flatten in submission order and stamp the ordinal here: workers
	// finish in arbitrary order, so their timestamps cannot carry it.
	results := make([]models.MatchResult, 0, len(controls))
	for _, slot := range slots {
		for _, result := range slot {
			result.Ordinal = len(results)
			results = append(results, result)
		}
	}
	return results, nil
}

// matchOne scores a single control clause against the shared regulation
// vectors. It never fails: embedding or analysis errors produce a degraded
// result for this clause alone.
func (s *MatchService) matchOne(ctx context.Context, sessionID uuid.UUID, idx int, clause models.ClauseRecord, regulations []models.RegulationClause, regVectors [][]float64) []models.MatchResult {
	if strings.TrimSpace(clause.Text) == "" {
		result := s.degradedResult(sessionID, clause)
		result.Gap = "Clause was empty"
		return []models.MatchResult{result}
	}

	if len(regVectors) == 0 {
		result := s.degradedResult(sessionID, clause)
		result.Gap = "No regulation clauses available"
		return []models.MatchResult{result}
	}

	vector, err := s.embeddings.EncodeOne(ctx, clause.Text)
	if err != nil {
		s.logger.Warn("Failed to embed control clause",
			zap.String("clause_id", clause.ClauseID), zap.Error(err))
		result := s.degradedResult(sessionID, clause)
		result.Reason = fmt.Sprintf("[match error: %v]", err)
		return []models.MatchResult{result}
	}

	ranked := topMatches(vector, regVectors, s.cfg.TopK)

	results := make([]models.MatchResult, 0, len(ranked))
	for _, candidate := range ranked {
		reg := regulations[candidate.Index]
		score := roundScore(candidate.Score)
		status := ClassifyScore(score)

		analysis := ClauseAnalysis{
			Overlap: models.FieldEmpty,
			Gap:     models.FieldEmpty,
			Rewrite: models.FieldEmpty,
			Risk:    models.FieldEmpty,
			Fine:    models.FieldEmpty,
			Reason:  AnalysisNotApplied,
		}
		if s.cfg.AnalysisEnabled && idx < s.cfg.MaxAnalysis {
			analysis = s.analysis.Analyze(ctx, clause.Text, reg.Text, reg.Regulation, score)
		}

		results = append(results, models.MatchResult{
			ID:          uuid.New(),
			SessionID:   sessionID,
			ControlID:   clause.ClauseID,
			ControlText: clause.Text,
			Status:      status,
			Score:       score,
			MatchedText: reg.Text,
			Regulation:  reg.Regulation,
			DocName:     reg.DocName,
			PageNum:     formatPageNum(reg.PageNum),
			Section:     reg.Section,
			Overlap:     analysis.Overlap,
			Gap:         analysis.Gap,
			Reason:      analysis.Reason,
			Rewrite:     analysis.Rewrite,
			Risk:        analysis.Risk,
			Fine:        analysis.Fine,
			CreatedAt:   time.Now().UTC(),
		})
	}
	return results
}

func (s *MatchService) degradedResult(sessionID uuid.UUID, clause models.ClauseRecord) models.MatchResult {
	return models.MatchResult{
		ID:          uuid.New(),
		SessionID:   sessionID,
		ControlID:   clause.ClauseID,
		ControlText: clause.Text,
		Status:      models.StatusUnmatched,
		Score:       0.0,
		MatchedText: models.FieldEmpty,
		Regulation:  models.FieldEmpty,
		DocName:     models.FieldEmpty,
		PageNum:     models.FieldEmpty,
		Section:     models.FieldEmpty,
		Overlap:     models.FieldEmpty,
		Gap:         models.FieldEmpty,
		Reason:      models.FieldEmpty,
		Rewrite:     models.FieldEmpty,
		Risk:        models.FieldEmpty,
		Fine:        models.FieldEmpty,
		CreatedAt:   time.Now().UTC(),
	}
}

// topMatches scores the query against every corpus vector and returns the
// best k by descending similarity. Ties keep the lower original index.
func topMatches(query []float64, corpus [][]float64, k int) []rankedMatch {
	ranked := make([]rankedMatch, len(corpus))
	for i, vec := range corpus {
		ranked[i] = rankedMatch{Index: i, Score: CosineSimilarity(query, vec)}
	}
	sort.SliceStable(ranked, func(a, b int) bool {
		return ranked[a].Score > ranked[b].Score
	})
	if k < 1 {
		k = 1
	}
	if k > len(ranked) {
		k = len(ranked)
	}
	return ranked[:k]
}

// CosineSimilarity returns dot(a,b)/(|a||b|), or 0 when either vector has
// zero norm or the lengths disagree.
func CosineSimilarity(a, b []float64) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}
	var dot, normA, normB float64
	for i := range a {
		dot += a[i] * b[i]
		normA += a[i] * a[i]
		normB += b[i] * b[i]
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}

// ClassifyScore maps a similarity score onto its match tier.
func ClassifyScore(score float64) models.MatchStatus {
	switch {
	case score >= thresholdStrong:
		return models.StatusStrongMatch
	case score >= thresholdPartial:
		return models.StatusPartialMatch
	case score >= thresholdWeak:
		return models.StatusWeakMatch
	default:
		return models.StatusUnmatched
	}
}

func roundScore(score float64) float64 {
	return math.Round(score*1000) / 1000
}

func formatPageNum(page *int) string {
	if page == nil {
		return models.FieldEmpty
	}
	return strconv.Itoa(*page)
}
