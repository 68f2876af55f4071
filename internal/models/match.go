package models

import (
	"time"

	"github.com/google/uuid"
)

// MatchStatus is the tier assigned to a similarity score.
type MatchStatus string

const (
	StatusStrongMatch  MatchStatus = "Strong Match"
	StatusPartialMatch MatchStatus = "Partial Match"
	StatusWeakMatch    MatchStatus = "Weak Match"
	StatusUnmatched    MatchStatus = "Unmatched"
)

// FieldEmpty is the placeholder for analysis fields that were not provided.
const FieldEmpty = "—"

// MatchResult pairs one control clause with one of its top-K regulation
// matches, plus the narrative analysis fields. Immutable once assembled.
type MatchResult struct {
	ID          uuid.UUID   `db:"id" json:"id"`
	SessionID   uuid.UUID   `db:"session_id" json:"session_id"`
	ControlID   string      `db:"control_id" json:"control_id"`
	ControlText string      `db:"control_text" json:"control_text"`
	Status      MatchStatus `db:"status" json:"status"`
	Score       float64     `db:"score" json:"score"`
	MatchedText string      `db:"matched_text" json:"matched_text"`
	Regulation  string      `db:"regulation" json:"regulation"`
	DocName     string      `db:"doc_name" json:"doc_name"`
	PageNum     string      `db:"page_num" json:"page_num"`
	Section     string      `db:"section" json:"section"`
	Overlap     string      `db:"overlap_note" json:"overlap"`
	Gap         string      `db:"gap_note" json:"gap"`
	Reason      string      `db:"reason" json:"reason"`
	Rewrite     string      `db:"rewrite" json:"rewrite"`
	Risk        string      `db:"risk" json:"risk"`
	Fine        string      `db:"fine" json:"fine"`
	Ordinal     int         `db:"ordinal" json:"ordinal"`
	CreatedAt   time.Time   `db:"created_at" json:"created_at"`
}

// Matched reports whether the result cleared the lowest match threshold.
func (r *MatchResult) Matched() bool {
	return r.Status != StatusUnmatched
}
