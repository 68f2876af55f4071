package dto

type DocumentResponse struct {
	ID          string `json:"id"`
	Bucket      string `json:"bucket"`
	FileName    string `json:"file_name"`
	FileSize    int64  `json:"file_size"`
	SourceType  string `json:"source_type"`
	ClauseCount int    `json:"clause_count"`
	CreatedAt   string `json:"created_at"`
}
