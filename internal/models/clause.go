package models

// SourceType is advisory metadata inferred from the file name. Matching is
// driven by which upload bucket a document was placed in, not by this value.
type SourceType string

const (
	SourceTypeControl    SourceType = "Control"
	SourceTypeRegulation SourceType = "Regulation"
	SourceTypeUnknown    SourceType = "Unknown"
)

// KnownRegulations are name fragments that mark a file as a regulation source.
var KnownRegulations = []string{"GDPR", "ISO27001", "RBI", "SEBI", "PDPB", "DPDP", "MSA"}

// ClauseRecord is one sanitized compliance statement extracted from a
// document. Records are immutable after extraction and live only for the
// duration of a matching run.
type ClauseRecord struct {
	ClauseID   string     `json:"clause_id"`
	Text       string     `json:"text"`
	DocName    string     `json:"doc_name"`
	PageNum    *int       `json:"page_num,omitempty"`
	Section    string     `json:"section"`
	SourceType SourceType `json:"source_type"`
}

// RegulationClause is a clause drawn from a regulation upload, tagged with
// the source document name as its regulation label.
type RegulationClause struct {
	ClauseRecord
	Regulation string `json:"regulation"`
}
