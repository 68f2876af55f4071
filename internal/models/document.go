package models

import (
	"time"

	"github.com/google/uuid"
)

// DocumentBucket selects which side of the matching run a file feeds.
type DocumentBucket string

const (
	BucketControl    DocumentBucket = "control"
	BucketRegulation DocumentBucket = "regulation"
)

type Document struct {
	ID          uuid.UUID      `db:"id"`
	SessionID   uuid.UUID      `db:"session_id"`
	Bucket      DocumentBucket `db:"bucket"`
	FileName    string         `db:"file_name"`
	FileSize    int64          `db:"file_size"`
	FilePath    string         `db:"file_path"`
	SourceType  SourceType     `db:"source_type"`
	ClauseCount int            `db:"clause_count"`
	CreatedAt   time.Time      `db:"created_at"`
	UpdatedAt   time.Time      `db:"updated_at"`
}
