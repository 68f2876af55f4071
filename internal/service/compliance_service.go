package service

import (
	"context"
	"errors"
	"fmt"

	"clausematch/internal/dto"
	"clausematch/internal/models"
	"clausematch/internal/repository"

	"go.uber.org/zap"
)

var (
	ErrNoControlDocuments    = errors.New("session has no control documents")
	ErrNoRegulationDocuments = errors.New("session has no regulation documents")
)

// ComplianceService drives a session's matching run: extract clauses from
// every uploaded document, match control against regulation, persist the
// results as the session's current run.
type ComplianceService struct {
	parser    *ParserService
	matcher   *MatchService
	docRepo   *repository.DocumentRepository
	matchRepo *repository.MatchRepository
	logger    *zap.Logger
}

func NewComplianceService(
	parser *ParserService,
	matcher *MatchService,
	docRepo *repository.DocumentRepository,
	matchRepo *repository.MatchRepository,
	logger *zap.Logger,
) *ComplianceService {
	return &ComplianceService{
		parser:    parser,
		matcher:   matcher,
		docRepo:   docRepo,
		matchRepo: matchRepo,
		logger:    logger,
	}
}

// RunMatching executes the full pipeline for a session and replaces any
// previous run. A file that fails extraction is logged and skipped; the run
// fails only when a whole side has no documents or the matcher itself fails.
func (s *ComplianceService) RunMatching(ctx context.Context, session *models.Session) (*dto.MatchRunResponse, error) {
	controlDocs, err := s.docRepo.ListBySessionAndBucket(ctx, session.ID, models.BucketControl)
	if err != nil {
		return nil, err
	}
	if len(controlDocs) == 0 {
		return nil, ErrNoControlDocuments
	}

	regulationDocs, err := s.docRepo.ListBySessionAndBucket(ctx, session.ID, models.BucketRegulation)
	if err != nil {
		return nil, err
	}
	if len(regulationDocs) == 0 {
		return nil, ErrNoRegulationDocuments
	}

	var controls []models.ClauseRecord
	for _, doc := range controlDocs {
		clauses, err := s.parser.ExtractFile(doc.FilePath, doc.FileName)
		if err != nil {
			s.logger.Warn("Skipping control document",
				zap.String("file", doc.FileName), zap.Error(err))
			continue
		}
		controls = append(controls, clauses...)
	}

	var regulations []models.RegulationClause
	for _, doc := range regulationDocs {
		clauses, err := s.parser.ExtractFile(doc.FilePath, doc.FileName)
		if err != nil {
			s.logger.Warn("Skipping regulation document",
				zap.String("file", doc.FileName), zap.Error(err))
			continue
		}
		for _, clause := range clauses {
			regulations = append(regulations, models.RegulationClause{
				ClauseRecord: clause,
				Regulation:   doc.FileName,
			})
		}
	}

	results, err := s.matcher.ProcessAndMatch(ctx, session.ID, controls, regulations)
	if err != nil {
		return nil, fmt.Errorf("matching run failed: %w", err)
	}

	for i := range results {
		results[i].ControlText = sanitizeUTF8(results[i].ControlText)
		results[i].MatchedText = sanitizeUTF8(results[i].MatchedText)
	}

	if err := s.matchRepo.ReplaceForSession(ctx, session.ID, results); err != nil {
		return nil, fmt.Errorf("failed to store match results: %w", err)
	}

	s.logger.Info("Matching run complete",
		zap.String("session_id", session.ID.String()),
		zap.Int("results", len(results)))

	return buildRunResponse(session.ID.String(), len(controls), len(regulations), results), nil
}

// GetResults returns the session's stored run split into matched and missing.
func (s *ComplianceService) GetResults(ctx context.Context, session *models.Session) (*dto.MatchRunResponse, error) {
	results, err := s.matchRepo.ListBySessionID(ctx, session.ID)
	if err != nil {
		return nil, err
	}
	return buildRunResponse(session.ID.String(), 0, 0, results), nil
}

func buildRunResponse(sessionID string, controlCount, regulationCount int, results []models.MatchResult) *dto.MatchRunResponse {
	response := &dto.MatchRunResponse{
		SessionID:         sessionID,
		ControlClauses:    controlCount,
		RegulationClauses: regulationCount,
		Matched:           []dto.MatchResultResponse{},
		Missing:           []dto.MatchResultResponse{},
	}
	for i := range results {
		item := toMatchResultResponse(&results[i])
		if results[i].Matched() {
			response.Matched = append(response.Matched, item)
		} else {
			response.Missing = append(response.Missing, item)
		}
	}
	return response
}

func toMatchResultResponse(result *models.MatchResult) dto.MatchResultResponse {
	return dto.MatchResultResponse{
		ControlID:   result.ControlID,
		ControlText: result.ControlText,
		Status:      string(result.Status),
		Score:       result.Score,
		MatchedText: result.MatchedText,
		Regulation:  result.Regulation,
		DocName:     result.DocName,
		PageNum:     result.PageNum,
		Section:     result.Section,
		Overlap:     result.Overlap,
		Gap:         result.Gap,
		Reason:      result.Reason,
		Rewrite:     result.Rewrite,
		Risk:        result.Risk,
		Fine:        result.Fine,
	}
}
