package service

import (
	"context"
	"errors"
	"testing"

	"clausematch/internal/models"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

func TestParseAnalysisExtractsFields(t *testing.T) {
	response := `1. Classify the match: Partial
2. Overlap: both require encryption of customer data
3. Gap: No mention of retention period
4. Rewrite: Add an explicit retention clause of 90 days
5. Non-Compliance Risk: moderate regulatory exposure
6. Estimated Fine: Medium, recurring audit findings`

	analysis := ParseAnalysis(response)

	assert.Equal(t, "both require encryption of customer data", analysis.Overlap)
	assert.Equal(t, "No mention of retention period", analysis.Gap)
	assert.Equal(t, "Add an explicit retention clause of 90 days", analysis.Rewrite)
	assert.Equal(t, "moderate regulatory exposure", analysis.Risk)
	assert.Equal(t, "Medium, recurring audit findings", analysis.Fine)
	// the classification line is kept whole
	assert.Equal(t, "1. Classify the match: Partial", analysis.Reason)
}

func TestParseAnalysisGapIndependentOfLineOrder(t *testing.T) {
	assert.Equal(t, "No mention of retention period",
		ParseAnalysis("Gap: No mention of retention period").Gap)
	assert.Equal(t, "No mention of retention period",
		ParseAnalysis("Risk: low\nSomething else entirely\nGap: No mention of retention period").Gap)
}

func TestParseAnalysisMissingKeywordTriggersGap(t *testing.T) {
	analysis := ParseAnalysis("The control is missing an incident reporting duty")
	assert.Equal(t, "The control is missing an incident reporting duty", analysis.Gap)
}

func TestParseAnalysisFirstMatchWins(t *testing.T) {
	analysis := ParseAnalysis("Overlap: first value\nOverlap: second value")
	assert.Equal(t, "first value", analysis.Overlap)
}

func TestParseAnalysisKeywordFreeResponseKeepsDefaults(t *testing.T) {
	analysis := ParseAnalysis("Nothing useful here.\n\nJust prose with no labels whatsoever.")

	assert.Equal(t, models.FieldEmpty, analysis.Overlap)
	assert.Equal(t, models.FieldEmpty, analysis.Gap)
	assert.Equal(t, models.FieldEmpty, analysis.Rewrite)
	assert.Equal(t, models.FieldEmpty, analysis.Risk)
	assert.Equal(t, models.FieldEmpty, analysis.Fine)
	assert.Equal(t, models.FieldEmpty, analysis.Reason)
}

func TestParseAnalysisLineWithoutColon(t *testing.T) {
	analysis := ParseAnalysis("Overlap on encryption requirements")
	assert.Equal(t, "Overlap on encryption requirements", analysis.Overlap)
}

func TestAnalyzeServiceFailureDegrades(t *testing.T) {
	reasoner := &stubReasoner{err: errors.New("upstream overloaded")}
	service := NewAnalysisService(reasoner, "test-model", zap.NewNop())

	analysis := service.Analyze(context.Background(), "control text", "regulation text", "GDPR.pdf", 0.8)

	assert.Contains(t, analysis.Reason, "[analysis error:")
	assert.Contains(t, analysis.Reason, "upstream overloaded")
	assert.Equal(t, models.FieldEmpty, analysis.Overlap)
	assert.Equal(t, models.FieldEmpty, analysis.Gap)
	assert.Equal(t, models.FieldEmpty, analysis.Rewrite)
	assert.Equal(t, models.FieldEmpty, analysis.Risk)
	assert.Equal(t, models.FieldEmpty, analysis.Fine)
}
