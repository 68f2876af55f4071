package dto

type MatchResultResponse struct {
	ControlID   string  `json:"control_id"`
	ControlText string  `json:"control_text"`
	Status      string  `json:"status"`
	Score       float64 `json:"score"`
	MatchedText string  `json:"matched_text"`
	Regulation  string  `json:"regulation"`
	DocName     string  `json:"doc_name"`
	PageNum     string  `json:"page_num"`
	Section     string  `json:"section"`
	Overlap     string  `json:"overlap"`
	Gap         string  `json:"gap"`
	Reason      string  `json:"reason"`
	Rewrite     string  `json:"rewrite"`
	Risk        string  `json:"risk"`
	Fine        string  `json:"fine"`
}

type MatchRunResponse struct {
	SessionID         string                `json:"session_id"`
	ControlClauses    int                   `json:"control_clauses"`
	RegulationClauses int                   `json:"regulation_clauses"`
	Matched           []MatchResultResponse `json:"matched"`
	Missing           []MatchResultResponse `json:"missing"`
}
