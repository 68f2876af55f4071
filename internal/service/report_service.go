package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"clausematch/internal/models"
	"clausematch/internal/repository"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
)

const (
	sheetCompliance = "Compliance Report"
	sheetChat       = "Chatbot History"
	sheetRewrites   = "Rewritten Controls"
	sheetCross      = "Cross-Document Analysis"
	sheetSession    = "Session Info"
)

// reasoningErrorNotice replaces internal error markers in exported fields.
const reasoningErrorNotice = "Unable to generate reasoning (AI overload)"

// ReportService exports a session's run and transcript as a multi-sheet
// spreadsheet.
type ReportService struct {
	matchRepo *repository.MatchRepository
	chatRepo  *repository.ChatRepository
	docRepo   *repository.DocumentRepository
	logger    *zap.Logger
}

func NewReportService(
	matchRepo *repository.MatchRepository,
	chatRepo *repository.ChatRepository,
	docRepo *repository.DocumentRepository,
	logger *zap.Logger,
) *ReportService {
	return &ReportService{
		matchRepo: matchRepo,
		chatRepo:  chatRepo,
		docRepo:   docRepo,
		logger:    logger,
	}
}

// GenerateWorkbook builds the export for a session and returns the encoded
// workbook bytes.
func (s *ReportService) GenerateWorkbook(ctx context.Context, session *models.Session) ([]byte, error) {
	results, err := s.matchRepo.ListBySessionID(ctx, session.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to load match results: %w", err)
	}
	transcript, err := s.chatRepo.ListBySessionID(ctx, session.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to load chat transcript: %w", err)
	}
	documents, err := s.docRepo.ListBySessionID(ctx, session.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to load documents: %w", err)
	}

	f := excelize.NewFile()
	defer f.Close()

	f.SetSheetName("Sheet1", sheetCompliance)
	if err := s.writeComplianceSheet(f, results); err != nil {
		return nil, err
	}
	if err := s.writeChatSheet(f, transcript); err != nil {
		return nil, err
	}
	if err := s.writeRewriteSheet(f, results); err != nil {
		return nil, err
	}
	if err := s.writeCrossDocumentSheet(f, results); err != nil {
		return nil, err
	}
	if err := s.writeSessionSheet(f, session, documents, results); err != nil {
		return nil, err
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to encode workbook: %w", err)
	}

	s.logger.Info("Report generated",
		zap.String("session_id", session.ID.String()),
		zap.Int("results", len(results)),
		zap.Int("chat_messages", len(transcript)))

	return buf.Bytes(), nil
}

func (s *ReportService) writeComplianceSheet(f *excelize.File, results []models.MatchResult) error {
	header := []interface{}{
		"Control ID", "Control Text", "Status", "Score", "Matched Text",
		"Regulation", "Document", "Page", "Section",
		"Overlap", "Gap", "Reason", "Rewrite", "Risk", "Estimated Fine",
	}
	if err := setRow(f, sheetCompliance, 1, header); err != nil {
		return err
	}
	for i, result := range results {
		row := []interface{}{
			result.ControlID, result.ControlText, string(result.Status), result.Score,
			result.MatchedText, result.Regulation, result.DocName, result.PageNum, result.Section,
			cleanField(result.Overlap), cleanField(result.Gap), cleanField(result.Reason),
			cleanField(result.Rewrite), cleanField(result.Risk), cleanField(result.Fine),
		}
		if err := setRow(f, sheetCompliance, i+2, row); err != nil {
			return err
		}
	}
	return nil
}

func (s *ReportService) writeChatSheet(f *excelize.File, transcript []models.ChatMessage) error {
	if _, err := f.NewSheet(sheetChat); err != nil {
		return err
	}
	if err := setRow(f, sheetChat, 1, []interface{}{"Time", "Role", "Message"}); err != nil {
		return err
	}
	for i, message := range transcript {
		row := []interface{}{
			message.CreatedAt.Format(time.RFC3339),
			string(message.Role),
			message.Content,
		}
		if err := setRow(f, sheetChat, i+2, row); err != nil {
			return err
		}
	}
	return nil
}

// writeRewriteSheet lists only controls the analyzer suggested rewrites for.
func (s *ReportService) writeRewriteSheet(f *excelize.File, results []models.MatchResult) error {
	if _, err := f.NewSheet(sheetRewrites); err != nil {
		return err
	}
	if err := setRow(f, sheetRewrites, 1, []interface{}{"Control ID", "Original Text", "Suggested Rewrite"}); err != nil {
		return err
	}
	row := 2
	for _, result := range results {
		if result.Rewrite == models.FieldEmpty || result.Rewrite == "" {
			continue
		}
		if err := setRow(f, sheetRewrites, row, []interface{}{
			result.ControlID, result.ControlText, cleanField(result.Rewrite),
		}); err != nil {
			return err
		}
		row++
	}
	return nil
}

// writeCrossDocumentSheet aggregates match statistics per regulation source.
func (s *ReportService) writeCrossDocumentSheet(f *excelize.File, results []models.MatchResult) error {
	if _, err := f.NewSheet(sheetCross); err != nil {
		return err
	}
	if err := setRow(f, sheetCross, 1, []interface{}{
		"Regulation", "Matches", "Strong", "Partial", "Weak", "Average Score",
	}); err != nil {
		return err
	}

	type regStats struct {
		matches, strong, partial, weak int
		scoreSum                       float64
	}
	stats := make(map[string]*regStats)
	var order []string
	for _, result := range results {
		if !result.Matched() {
			continue
		}
		entry, ok := stats[result.Regulation]
		if !ok {
			entry = &regStats{}
			stats[result.Regulation] = entry
			order = append(order, result.Regulation)
		}
		entry.matches++
		entry.scoreSum += result.Score
		switch result.Status {
		case models.StatusStrongMatch:
			entry.strong++
		case models.StatusPartialMatch:
			entry.partial++
		case models.StatusWeakMatch:
			entry.weak++
		}
	}

	for i, regulation := range order {
		entry := stats[regulation]
		avg := entry.scoreSum / float64(entry.matches)
		if err := setRow(f, sheetCross, i+2, []interface{}{
			regulation, entry.matches, entry.strong, entry.partial, entry.weak,
			fmt.Sprintf("%.3f", avg),
		}); err != nil {
			return err
		}
	}
	return nil
}

func (s *ReportService) writeSessionSheet(f *excelize.File, session *models.Session, documents []*models.Document, results []models.MatchResult) error {
	if _, err := f.NewSheet(sheetSession); err != nil {
		return err
	}

	controlDocs, regulationDocs := 0, 0
	for _, doc := range documents {
		if doc.Bucket == models.BucketControl {
			controlDocs++
		} else {
			regulationDocs++
		}
	}
	matched, missing := 0, 0
	for _, result := range results {
		if result.Matched() {
			matched++
		} else {
			missing++
		}
	}

	rows := [][]interface{}{
		{"Session", session.Name},
		{"Audit Mode", session.AuditMode},
		{"Created", session.CreatedAt.Format(time.RFC3339)},
		{"Control Documents", controlDocs},
		{"Regulation Documents", regulationDocs},
		{"Matched Controls", matched},
		{"Missing Controls", missing},
	}
	for i, row := range rows {
		if err := setRow(f, sheetSession, i+1, row); err != nil {
			return err
		}
	}
	return nil
}

func setRow(f *excelize.File, sheet string, row int, values []interface{}) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return err
	}
	return f.SetSheetRow(sheet, cell, &values)
}

// cleanField normalizes an analysis field for export: internal error markers
// become a user-facing notice, empties become the placeholder dash.
func cleanField(value string) string {
	value = strings.TrimSpace(value)
	if value == "" {
		return models.FieldEmpty
	}
	if strings.HasPrefix(value, "[analysis error:") || strings.HasPrefix(value, "[match error:") {
		return reasoningErrorNotice
	}
	return value
}
