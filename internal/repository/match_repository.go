package repository

import (
	"context"

	"clausematch/internal/models"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

var matchColumns = []string{
	"id", "session_id", "control_id", "control_text", "status", "score",
	"matched_text", "regulation", "doc_name", "page_num", "section",
	"overlap_note", "gap_note", "reason", "rewrite", "risk", "fine", "ordinal", "created_at",
}

type MatchRepository struct {
	db     *pgxpool.Pool
	logger *zap.Logger
}

func NewMatchRepository(db *pgxpool.Pool, logger *zap.Logger) *MatchRepository {
	return &MatchRepository{
		db:     db,
		logger: logger,
	}
}

// ReplaceForSession swaps a session's match results for the given set in one
// transaction: a rerun replaces the previous run entirely.
func (r *MatchRepository) ReplaceForSession(ctx context.Context, sessionID uuid.UUID, results []models.MatchResult) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	deleteQuery := squirrel.Delete("match_results").
		Where(squirrel.Eq{"session_id": sessionID}).
		PlaceholderFormat(squirrel.Dollar)

	sql, args, err := deleteQuery.ToSql()
	if err != nil {
		return err
	}
	if _, err := tx.Exec(ctx, sql, args...); err != nil {
		return err
	}

	for _, result := range results {
		insertQuery := squirrel.Insert("match_results").
			Columns(matchColumns...).
			Values(
				result.ID, result.SessionID, result.ControlID, result.ControlText, result.Status, result.Score,
				result.MatchedText, result.Regulation, result.DocName, result.PageNum, result.Section,
				result.Overlap, result.Gap, result.Reason, result.Rewrite, result.Risk, result.Fine, result.Ordinal, result.CreatedAt,
			).
			PlaceholderFormat(squirrel.Dollar)

		sql, args, err := insertQuery.ToSql()
		if err != nil {
			return err
		}
		if _, err := tx.Exec(ctx, sql, args...); err != nil {
			return err
		}
	}

	return tx.Commit(ctx)
}

func (r *MatchRepository) ListBySessionID(ctx context.Context, sessionID uuid.UUID) ([]models.MatchResult, error) {
	query := squirrel.Select(matchColumns...).
		From("match_results").
		Where(squirrel.Eq{"session_id": sessionID}).
		OrderBy("ordinal ASC").
		PlaceholderFormat(squirrel.Dollar)

	sql, args, err := query.ToSql()
	if err != nil {
		return nil, err
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []models.MatchResult
	for rows.Next() {
		var result models.MatchResult
		if err := rows.Scan(
			&result.ID, &result.SessionID, &result.ControlID, &result.ControlText, &result.Status, &result.Score,
			&result.MatchedText, &result.Regulation, &result.DocName, &result.PageNum, &result.Section,
			&result.Overlap, &result.Gap, &result.Reason, &result.Rewrite, &result.Risk, &result.Fine, &result.Ordinal, &result.CreatedAt,
		); err != nil {
			return nil, err
		}
		results = append(results, result)
	}

	return results, nil
}
