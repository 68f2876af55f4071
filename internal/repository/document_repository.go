package repository

import (
	"context"

	"clausematch/internal/models"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

type DocumentRepository struct {
	db     *pgxpool.Pool
	logger *zap.Logger
}

func NewDocumentRepository(db *pgxpool.Pool, logger *zap.Logger) *DocumentRepository {
	return &DocumentRepository{
		db:     db,
		logger: logger,
	}
}

func (r *DocumentRepository) Create(ctx context.Context, doc *models.Document) error {
	query := squirrel.Insert("documents").
		Columns("id", "session_id", "bucket", "file_name", "file_size", "file_path", "source_type", "clause_count", "created_at", "updated_at").
		Values(doc.ID, doc.SessionID, doc.Bucket, doc.FileName, doc.FileSize, doc.FilePath, doc.SourceType, doc.ClauseCount, doc.CreatedAt, doc.UpdatedAt).
		PlaceholderFormat(squirrel.Dollar)

	sql, args, err := query.ToSql()
	if err != nil {
		return err
	}

	_, err = r.db.Exec(ctx, sql, args...)
	return err
}

func (r *DocumentRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Document, error) {
	query := squirrel.Select("id", "session_id", "bucket", "file_name", "file_size", "file_path", "source_type", "clause_count", "created_at", "updated_at").
		From("documents").
		Where(squirrel.Eq{"id": id}).
		PlaceholderFormat(squirrel.Dollar)

	sql, args, err := query.ToSql()
	if err != nil {
		return nil, err
	}

	var doc models.Document
	err = r.db.QueryRow(ctx, sql, args...).Scan(
		&doc.ID, &doc.SessionID, &doc.Bucket, &doc.FileName, &doc.FileSize, &doc.FilePath, &doc.SourceType, &doc.ClauseCount, &doc.CreatedAt, &doc.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	return &doc, nil
}

func (r *DocumentRepository) UpdateClauseCount(ctx context.Context, id uuid.UUID, count int) error {
	query := squirrel.Update("documents").
		Set("clause_count", count).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": id}).
		PlaceholderFormat(squirrel.Dollar)

	sql, args, err := query.ToSql()
	if err != nil {
		return err
	}

	_, err = r.db.Exec(ctx, sql, args...)
	return err
}

func (r *DocumentRepository) ListBySessionID(ctx context.Context, sessionID uuid.UUID) ([]*models.Document, error) {
	query := squirrel.Select("id", "session_id", "bucket", "file_name", "file_size", "file_path", "source_type", "clause_count", "created_at", "updated_at").
		From("documents").
		Where(squirrel.Eq{"session_id": sessionID}).
		OrderBy("created_at ASC").
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

	var documents []*models.Document
	for rows.Next() {
		var doc models.Document
		if err := rows.Scan(
			&doc.ID, &doc.SessionID, &doc.Bucket, &doc.FileName, &doc.FileSize, &doc.FilePath, &doc.SourceType, &doc.ClauseCount, &doc.CreatedAt, &doc.UpdatedAt,
		); err != nil {
			return nil, err
		}
		documents = append(documents, &doc)
	}

	return documents, nil
}

func (r *DocumentRepository) ListBySessionAndBucket(ctx context.Context, sessionID uuid.UUID, bucket models.DocumentBucket) ([]*models.Document, error) {
	query := squirrel.Select("id", "session_id", "bucket", "file_name", "file_size", "file_path", "source_type", "clause_count", "created_at", "updated_at").
		From("documents").
		Where(squirrel.Eq{"session_id": sessionID, "bucket": bucket}).
		OrderBy("created_at ASC").
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

	var documents []*models.Document
	for rows.Next() {
		var doc models.Document
		if err := rows.Scan(
			&doc.ID, &doc.SessionID, &doc.Bucket, &doc.FileName, &doc.FileSize, &doc.FilePath, &doc.SourceType, &doc.ClauseCount, &doc.CreatedAt, &doc.UpdatedAt,
		); err != nil {
			return nil, err
		}
		documents = append(documents, &doc)
	}

	return documents, nil
}

func (r *DocumentRepository) Delete(ctx context.Context, id uuid.UUID) error {
	query := squirrel.Delete("documents").
		Where(squirrel.Eq{"id": id}).
		PlaceholderFormat(squirrel.Dollar)

	sql, args, err := query.ToSql()
	if err != nil {
		return err
	}

	_, err = r.db.Exec(ctx, sql, args...)
	return err
}
