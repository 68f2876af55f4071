package service

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"clausematch/internal/models"

	"github.com/fumiama/go-docx"
	"github.com/gen2brain/go-fitz"
	"github.com/neurosnap/sentences"
	"github.com/neurosnap/sentences/english"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
)

// SupportedExtensions is the set of file formats the extractor accepts.
var SupportedExtensions = []string{".pdf", ".docx", ".txt", ".csv", ".xlsx", ".xls"}

var ErrUnsupportedFormat = errors.New("unsupported file format")

const minClauseLength = 20

var (
	invalidCharsRe = regexp.MustCompile(`[^A-Za-z0-9\s,.()\-–/]`)
	whitespaceRe   = regexp.MustCompile(`\s+`)
)

var skipMarkers = []string{"table of contents", "annexure", "appendix"}

// ParserService turns uploaded documents into ordered clause records.
// The sentence tokenizer is loaded once and shared by all extractions.
type ParserService struct {
	tokenizer *sentences.DefaultSentenceTokenizer
	logger    *zap.Logger
}

func NewParserService(logger *zap.Logger) (*ParserService, error) {
	tokenizer, err := english.NewSentenceTokenizer(nil)
	if err != nil {
		return nil, fmt.Errorf("failed to load sentence tokenizer: %w", err)
	}

	return &ParserService{
		tokenizer: tokenizer,
		logger:    logger,
	}, nil
}

// IsSupported reports whether the extension is one the extractor handles.
func (s *ParserService) IsSupported(ext string) bool {
	ext = strings.ToLower(ext)
	for _, supported := range SupportedExtensions {
		if ext == supported {
			return true
		}
	}
	return false
}

// ExtractFile dispatches on the file extension and returns the document's
// clause records in document order. docName is the user-facing file name
// used for clause IDs; path is where the bytes actually live (uploads are
// stored under generated names). Unsupported extensions fail with
// ErrUnsupportedFormat naming the extension; any other failure is wrapped
// with the offending file path.
func (s *ParserService) ExtractFile(path, docName string) ([]models.ClauseRecord, error) {
	ext := strings.ToLower(filepath.Ext(docName))

	var (
		clauses []models.ClauseRecord
		err     error
	)

	switch ext {
	case ".pdf":
		clauses, err = s.extractPDF(path, docName)
	case ".docx":
		clauses, err = s.extractDOCX(path, docName)
	case ".txt":
		clauses, err = s.extractTXT(path, docName)
	case ".csv":
		clauses, err = s.extractCSV(path, docName)
	case ".xlsx", ".xls":
		clauses, err = s.extractExcel(path, docName)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, ext)
	}

	if err != nil {
		return nil, fmt.Errorf("error reading %s: %w", path, err)
	}

	s.logger.Info("Clauses extracted",
		zap.String("file", docName),
		zap.Int("clauses", len(clauses)),
	)

	return clauses, nil
}

// extractPDF emits one clause per sentence, page by page.
func (s *ParserService) extractPDF(path, docName string) ([]models.ClauseRecord, error) {
	doc, err := fitz.New(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open PDF: %w", err)
	}
	defer doc.Close()

	var clauses []models.ClauseRecord
	for page := 0; page < doc.NumPage(); page++ {
		text, err := doc.Text(page)
		if err != nil {
			return nil, fmt.Errorf("failed to read page %d: %w", page+1, err)
		}

		pageNum := page + 1
		for i, sent := range s.splitSentences(text) {
			clean := SanitizeClause(sent)
			if !IsValidClause(clean) {
				continue
			}
			p := pageNum
			clauses = append(clauses, makeClause(docName, clean, &p,
				fmt.Sprintf("Page %d", pageNum),
				fmt.Sprintf("P%d-C%d", pageNum, i+1)))
		}
	}

	return clauses, nil
}

// extractDOCX emits one clause per body paragraph. Heading-styled paragraphs
// update the running section label instead of being emitted.
func (s *ParserService) extractDOCX(path, docName string) ([]models.ClauseRecord, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	fi, err := f.Stat()
	if err != nil {
		return nil, err
	}

	doc, err := docx.Parse(f, fi.Size())
	if err != nil {
		return nil, fmt.Errorf("failed to parse docx: %w", err)
	}

	var clauses []models.ClauseRecord
	currentSection := ""
	paraCount := 0

	for _, item := range doc.Document.Body.Items {
		para, ok := item.(*docx.Paragraph)
		if !ok {
			continue
		}

		text := strings.TrimSpace(para.String())
		if strings.HasPrefix(paragraphStyle(para), "Heading") {
			currentSection = text
			continue
		}
		if utf8.RuneCountInString(text) < minClauseLength {
			continue
		}
		paraCount++

		clean := SanitizeClause(text)
		if !IsValidClause(clean) {
			continue
		}

		section := currentSection
		if section == "" {
			section = "Untitled"
		}
		clauses = append(clauses, makeClause(docName, clean, nil, section,
			fmt.Sprintf("S%d", paraCount)))
	}

	return clauses, nil
}

func paragraphStyle(para *docx.Paragraph) string {
	if para.Properties != nil && para.Properties.Style != nil {
		return para.Properties.Style.Val
	}
	return ""
}

// extractTXT emits one clause per sentence of the whole file.
func (s *ParserService) extractTXT(path, docName string) ([]models.ClauseRecord, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var clauses []models.ClauseRecord
	for i, sent := range s.splitSentences(string(data)) {
		clean := SanitizeClause(sent)
		if !IsValidClause(clean) {
			continue
		}
		clauses = append(clauses, makeClause(docName, clean, nil, "Text File",
			fmt.Sprintf("T%d", i+1)))
	}

	return clauses, nil
}

// extractCSV joins each data row's non-empty cells into one clause.
// The first row is treated as a header. Malformed lines are skipped.
func (s *ParserService) extractCSV(path, docName string) ([]models.ClauseRecord, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	var clauses []models.ClauseRecord
	row := 0
	header := true
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			continue
		}
		if header {
			header = false
			continue
		}
		row++

		clean := SanitizeClause(joinCells(record))
		if !IsValidClause(clean) {
			continue
		}
		clauses = append(clauses, makeClause(docName, clean, nil, "Row",
			fmt.Sprintf("R%d", row)))
	}

	return clauses, nil
}

// extractExcel reads the first sheet, one clause per data row.
func (s *ParserService) extractExcel(path, docName string) ([]models.ClauseRecord, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, errors.New("workbook has no sheets")
	}

	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %s: %w", sheets[0], err)
	}

	var clauses []models.ClauseRecord
	for i, row := range rows {
		if i == 0 {
			// header row
			continue
		}

		clean := SanitizeClause(joinCells(row))
		if !IsValidClause(clean) {
			continue
		}
		clauses = append(clauses, makeClause(docName, clean, nil, "Sheet",
			fmt.Sprintf("XL%d", i)))
	}

	return clauses, nil
}

// splitSentences tokenizes text into trimmed, non-empty sentences.
func (s *ParserService) splitSentences(text string) []string {
	var out []string
	for _, sent := range s.tokenizer.Tokenize(text) {
		t := strings.TrimSpace(sent.Text)
		if t != "" {
			out = append(out, t)
		}
	}
	return out
}

func joinCells(cells []string) string {
	var parts []string
	for _, cell := range cells {
		cell = strings.TrimSpace(cell)
		if cell != "" {
			parts = append(parts, cell)
		}
	}
	return strings.Join(parts, " ")
}

func makeClause(docName, text string, pageNum *int, section, suffix string) models.ClauseRecord {
	name := filepath.Base(docName)
	base := strings.TrimSuffix(name, filepath.Ext(name))
	return models.ClauseRecord{
		ClauseID:   base + "-" + suffix,
		Text:       text,
		DocName:    name,
		PageNum:    pageNum,
		Section:    section,
		SourceType: InferSourceType(docName),
	}
}

// SanitizeClause strips everything but letters, digits, whitespace and the
// punctuation set ", . ( ) - – /" and collapses whitespace runs. Idempotent.
func SanitizeClause(text string) string {
	s := invalidCharsRe.ReplaceAllString(strings.TrimSpace(text), "")
	s = whitespaceRe.ReplaceAllString(s, " ")
	return strings.TrimSpace(s)
}

// IsValidClause rejects structural noise (tables of contents, annexures,
// appendices), fragments shorter than 20 characters, and text without a
// single letter. Rejected clauses are dropped silently.
func IsValidClause(text string) bool {
	lower := strings.ToLower(text)
	for _, marker := range skipMarkers {
		if strings.Contains(lower, marker) {
			return false
		}
	}
	if utf8.RuneCountInString(text) < minClauseLength {
		return false
	}
	for _, r := range text {
		if unicode.IsLetter(r) {
			return true
		}
	}
	return false
}

// InferSourceType guesses the clause origin from the file name. Advisory
// only: the upload bucket, not this value, decides matching sides.
func InferSourceType(path string) models.SourceType {
	name := strings.ToUpper(filepath.Base(path))
	if strings.Contains(name, "CONTROL") || strings.Contains(name, "POLICY") {
		return models.SourceTypeControl
	}
	for _, reg := range models.KnownRegulations {
		if strings.Contains(name, reg) {
			return models.SourceTypeRegulation
		}
	}
	return models.SourceTypeUnknown
}
