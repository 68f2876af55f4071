package service

import (
	"bytes"
	"testing"
	"time"

	"clausematch/internal/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func TestCleanField(t *testing.T) {
	assert.Equal(t, models.FieldEmpty, cleanField(""))
	assert.Equal(t, models.FieldEmpty, cleanField("   "))
	assert.Equal(t, "kept as is", cleanField("kept as is"))
	assert.Equal(t, reasoningErrorNotice, cleanField("[analysis error: timeout]"))
	assert.Equal(t, reasoningErrorNotice, cleanField("[match error: rate limited]"))
}

func TestComplianceSheetRows(t *testing.T) {
	service := &ReportService{}
	results := []models.MatchResult{
		{
			ID:          uuid.New(),
			ControlID:   "policy-T1",
			ControlText: "All customer data must be encrypted at rest.",
			Status:      models.StatusStrongMatch,
			Score:       0.812,
			MatchedText: "Personal data shall be encrypted.",
			Regulation:  "GDPR.pdf",
			DocName:     "GDPR.pdf",
			PageNum:     "1",
			Section:     "Page 1",
			Overlap:     "encryption of stored data",
			Gap:         models.FieldEmpty,
			Reason:      "[analysis error: timeout]",
			Rewrite:     models.FieldEmpty,
			Risk:        models.FieldEmpty,
			Fine:        models.FieldEmpty,
			CreatedAt:   time.Now(),
		},
	}

	f := excelize.NewFile()
	defer f.Close()
	f.SetSheetName("Sheet1", sheetCompliance)
	require.NoError(t, service.writeComplianceSheet(f, results))

	buf, err := f.WriteToBuffer()
	require.NoError(t, err)

	reread, err := excelize.OpenReader(bytes.NewReader(buf.Bytes()))
	require.NoError(t, err)
	defer reread.Close()

	rows, err := reread.GetRows(sheetCompliance)
	require.NoError(t, err)
	require.Len(t, rows, 2)

	assert.Equal(t, "Control ID", rows[0][0])
	assert.Equal(t, "policy-T1", rows[1][0])
	assert.Equal(t, string(models.StatusStrongMatch), rows[1][2])
	// error markers are replaced with the user-facing notice
	assert.Equal(t, reasoningErrorNotice, rows[1][11])
}

func TestCrossDocumentSheetAggregates(t *testing.T) {
	service := &ReportService{}
	results := []models.MatchResult{
		{Status: models.StatusStrongMatch, Score: 0.8, Regulation: "GDPR.pdf"},
		{Status: models.StatusPartialMatch, Score: 0.6, Regulation: "GDPR.pdf"},
		{Status: models.StatusWeakMatch, Score: 0.3, Regulation: "RBI.pdf"},
		{Status: models.StatusUnmatched, Score: 0.1, Regulation: models.FieldEmpty},
	}

	f := excelize.NewFile()
	defer f.Close()
	require.NoError(t, service.writeCrossDocumentSheet(f, results))

	rows, err := f.GetRows(sheetCross)
	require.NoError(t, err)
	require.Len(t, rows, 3)

	assert.Equal(t, "GDPR.pdf", rows[1][0])
	assert.Equal(t, "2", rows[1][1])
	assert.Equal(t, "0.700", rows[1][5])
	assert.Equal(t, "RBI.pdf", rows[2][0])
	// unmatched results are excluded from the aggregation
}
