package service

import (
	"os"
	"path/filepath"
	"testing"

	"clausematch/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestParser(t *testing.T) *ParserService {
	t.Helper()
	parser, err := NewParserService(zap.NewNop())
	require.NoError(t, err)
	return parser
}

func TestSanitizeClause(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{
			name: "strips disallowed characters",
			in:   "Data must be encrypted! @rest #always",
			want: "Data must be encrypted rest always",
		},
		{
			name: "keeps allowed punctuation",
			in:   "Retention (per GDPR Art. 5), 30-90 days, a/b",
			want: "Retention (per GDPR Art. 5), 30-90 days, a/b",
		},
		{
			name: "collapses whitespace runs",
			in:   "Access  controls\t\tshall\n\nbe reviewed",
			want: "Access controls shall be reviewed",
		},
		{
			name: "trims",
			in:   "   padded clause text   ",
			want: "padded clause text",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, SanitizeClause(tt.in))
		})
	}
}

func TestSanitizeClauseIdempotent(t *testing.T) {
	inputs := []string{
		"All customer data must be encrypted at rest using AES-256.",
		"  Weird   spacing & symbols $$ here  ",
		"",
	}
	for _, in := range inputs {
		once := SanitizeClause(in)
		assert.Equal(t, once, SanitizeClause(once))
	}
}

func TestIsValidClause(t *testing.T) {
	assert.True(t, IsValidClause("All customer data must be encrypted at rest."))

	// structural noise markers
	assert.False(t, IsValidClause("Table of Contents for the security policy"))
	assert.False(t, IsValidClause("See Annexure B for the full list of systems"))
	assert.False(t, IsValidClause("Details are given in Appendix 3 of this document"))

	// too short
	assert.False(t, IsValidClause("Short one"))
	assert.False(t, IsValidClause(""))

	// no letters
	assert.False(t, IsValidClause("1234567890 1234567890 ()"))
}

func TestInferSourceType(t *testing.T) {
	assert.Equal(t, models.SourceTypeControl, InferSourceType("internal_control_matrix.xlsx"))
	assert.Equal(t, models.SourceTypeControl, InferSourceType("Security-Policy.docx"))
	assert.Equal(t, models.SourceTypeRegulation, InferSourceType("gdpr_articles.pdf"))
	assert.Equal(t, models.SourceTypeRegulation, InferSourceType("RBI-guidelines.txt"))
	assert.Equal(t, models.SourceTypeUnknown, InferSourceType("notes.txt"))
}

func TestExtractFileUnsupportedExtension(t *testing.T) {
	parser := newTestParser(t)

	_, err := parser.ExtractFile("somewhere/deck.pptx", "deck.pptx")
	require.ErrorIs(t, err, ErrUnsupportedFormat)
	assert.Contains(t, err.Error(), ".pptx")
}

func TestExtractTXT(t *testing.T) {
	parser := newTestParser(t)

	dir := t.TempDir()
	path := filepath.Join(dir, "policy.txt")
	content := "All customer data must be encrypted at rest using AES-256. " +
		"Access controls shall be reviewed quarterly by the security team."
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	clauses, err := parser.ExtractFile(path, "policy.txt")
	require.NoError(t, err)
	require.Len(t, clauses, 2)

	assert.Equal(t, "policy-T1", clauses[0].ClauseID)
	assert.Equal(t, "policy-T2", clauses[1].ClauseID)
	for _, clause := range clauses {
		assert.Equal(t, "Text File", clause.Section)
		assert.Equal(t, "policy.txt", clause.DocName)
		assert.Nil(t, clause.PageNum)
		assert.Equal(t, models.SourceTypeControl, clause.SourceType)
	}
	assert.Equal(t, "All customer data must be encrypted at rest using AES-256.", clauses[0].Text)
}

func TestExtractTXTDropsShortFragments(t *testing.T) {
	parser := newTestParser(t)

	dir := t.TempDir()
	path := filepath.Join(dir, "fragment.txt")
	require.NoError(t, os.WriteFile(path, []byte("Short one"), 0o644))

	clauses, err := parser.ExtractFile(path, "fragment.txt")
	require.NoError(t, err)
	assert.Empty(t, clauses)
}

func TestExtractTXTUsesDocNameForIDs(t *testing.T) {
	parser := newTestParser(t)

	// Uploads are stored under generated names; clause IDs must still come
	// from the user-facing name.
	dir := t.TempDir()
	path := filepath.Join(dir, "3e7a0b-upload.bin")
	require.NoError(t, os.WriteFile(path,
		[]byte("Personal data shall be encrypted using industry-standard algorithms."), 0o644))

	clauses, err := parser.ExtractFile(path, "GDPR_extract.txt")
	require.NoError(t, err)
	require.Len(t, clauses, 1)
	assert.Equal(t, "GDPR_extract-T1", clauses[0].ClauseID)
	assert.Equal(t, "GDPR_extract.txt", clauses[0].DocName)
	assert.Equal(t, models.SourceTypeRegulation, clauses[0].SourceType)
}

func TestExtractCSV(t *testing.T) {
	parser := newTestParser(t)

	dir := t.TempDir()
	path := filepath.Join(dir, "controls.csv")
	content := "id,control,owner\n" +
		"C1,All backups must be encrypted and tested monthly,IT\n" +
		"C2,short,IT\n" +
		"C3,Vendor access requires a signed data processing agreement,Legal\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	clauses, err := parser.ExtractFile(path, "controls.csv")
	require.NoError(t, err)
	require.Len(t, clauses, 2)

	// header row skipped, row numbering starts at the first data row
	assert.Equal(t, "controls-R1", clauses[0].ClauseID)
	assert.Equal(t, "C1 All backups must be encrypted and tested monthly IT", clauses[0].Text)
	assert.Equal(t, "Row", clauses[0].Section)

	// row 2 fails validation, row 3 keeps its original row number
	assert.Equal(t, "controls-R3", clauses[1].ClauseID)
}

func TestIsSupported(t *testing.T) {
	parser := newTestParser(t)

	for _, ext := range []string{".pdf", ".docx", ".txt", ".csv", ".xlsx", ".xls"} {
		assert.True(t, parser.IsSupported(ext), ext)
	}
	assert.True(t, parser.IsSupported(".PDF"))
	assert.False(t, parser.IsSupported(".pptx"))
	assert.False(t, parser.IsSupported(""))
}
