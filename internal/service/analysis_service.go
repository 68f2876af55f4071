package service

import (
	"context"
	"fmt"
	"strings"

	"clausematch/internal/models"

	"go.uber.org/zap"
)

// AnalysisNotApplied is the narrative carried by clauses beyond the
// per-run analysis budget.
const AnalysisNotApplied = "AI analysis not applied."

const (
	analysisTemperature = 0.4
	analysisMaxTokens   = 400
)

// ClauseAnalysis holds the structured fields parsed out of a free-text
// reasoning response. Absent fields keep the "—" default.
type ClauseAnalysis struct {
	Overlap string
	Gap     string
	Rewrite string
	Risk    string
	Fine    string
	Reason  string
}

func defaultAnalysis() ClauseAnalysis {
	return ClauseAnalysis{
		Overlap: models.FieldEmpty,
		Gap:     models.FieldEmpty,
		Rewrite: models.FieldEmpty,
		Risk:    models.FieldEmpty,
		Fine:    models.FieldEmpty,
		Reason:  models.FieldEmpty,
	}
}

// AnalysisService produces overlap/gap/risk/rewrite commentary for a matched
// clause pair through the external reasoning service.
type AnalysisService struct {
	client ReasoningClient
	model  string
	logger *zap.Logger
}

func NewAnalysisService(client ReasoningClient, model string, logger *zap.Logger) *AnalysisService {
	return &AnalysisService{
		client: client,
		model:  model,
		logger: logger,
	}
}

// Analyze issues one single-turn reasoning request for the pair and parses
// the response. A transport or service failure degrades to default fields
// with an error marker in reason; it never fails the caller.
func (s *AnalysisService) Analyze(ctx context.Context, control, regulation, regName string, score float64) ClauseAnalysis {
	prompt := buildAnalysisPrompt(control, regulation, regName, score)

	result, err := s.client.Complete(ctx, CompletionRequest{
		Model:       s.model,
		Temperature: analysisTemperature,
		MaxTokens:   analysisMaxTokens,
		Messages:    []CompletionMessage{{Role: "user", Content: prompt}},
	})
	if err != nil {
		s.logger.Warn("Clause analysis failed", zap.Error(err))
		analysis := defaultAnalysis()
		analysis.Reason = fmt.Sprintf("[analysis error: %v]", err)
		return analysis
	}

	return ParseAnalysis(result.Content)
}

func buildAnalysisPrompt(control, regulation, regName string, score float64) string {
	return fmt.Sprintf(`Control Clause:
"""%s"""

Regulation Clause from %s:
"""%s"""

Match score: %.3f

You are a compliance analyst. Analyze the above in detail:

1. Classify the match: Strong, Partial, Weak, Unmatched
2. Overlap
3. Gaps
4. Rewrite (if needed)
5. Non-Compliance Risk
6. Estimated Fine (Low, Medium, High + reason)
Provide your answer in plain text format.`, control, regName, regulation, score)
}

// ParseAnalysis scans the response line by line for trigger keywords. The
// first matching line per field wins; the value is the text after the first
// colon (the classification line is kept whole as the reason). Keyword-free
// responses leave every field at its default.
func ParseAnalysis(text string) ClauseAnalysis {
	analysis := defaultAnalysis()

	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		lower := strings.ToLower(line)

		switch {
		case strings.Contains(lower, "overlap"):
			if analysis.Overlap == models.FieldEmpty {
				analysis.Overlap = afterColon(line)
			}
		case strings.Contains(lower, "gap") || strings.Contains(lower, "missing"):
			if analysis.Gap == models.FieldEmpty {
				analysis.Gap = afterColon(line)
			}
		case strings.Contains(lower, "rewrite"):
			if analysis.Rewrite == models.FieldEmpty {
				analysis.Rewrite = afterColon(line)
			}
		case strings.Contains(lower, "risk"):
			if analysis.Risk == models.FieldEmpty {
				analysis.Risk = afterColon(line)
			}
		case strings.Contains(lower, "fine"):
			if analysis.Fine == models.FieldEmpty {
				analysis.Fine = afterColon(line)
			}
		case strings.Contains(lower, "classify") || strings.Contains(lower, "match"):
			if analysis.Reason == models.FieldEmpty {
				analysis.Reason = line
			}
		}
	}

	return analysis
}

func afterColon(line string) string {
	if idx := strings.Index(line, ":"); idx >= 0 {
		return strings.TrimSpace(line[idx+1:])
	}
	return strings.TrimSpace(line)
}
