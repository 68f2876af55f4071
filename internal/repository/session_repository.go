package repository

import (
	"context"

	"clausematch/internal/models"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

type SessionRepository struct {
	db     *pgxpool.Pool
	logger *zap.Logger
}

func NewSessionRepository(db *pgxpool.Pool, logger *zap.Logger) *SessionRepository {
	return &SessionRepository{
		db:     db,
		logger: logger,
	}
}

func (r *SessionRepository) Create(ctx context.Context, session *models.Session) error {
	query := squirrel.Insert("sessions").
		Columns("id", "user_id", "name", "audit_mode", "context_injected", "created_at", "updated_at").
		Values(session.ID, session.UserID, session.Name, session.AuditMode, session.ContextInjected, session.CreatedAt, session.UpdatedAt).
		PlaceholderFormat(squirrel.Dollar)

	sql, args, err := query.ToSql()
	if err != nil {
		return err
	}

	_, err = r.db.Exec(ctx, sql, args...)
	return err
}

func (r *SessionRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Session, error) {
	query := squirrel.Select("id", "user_id", "name", "audit_mode", "context_injected", "created_at", "updated_at").
		From("sessions").
		Where(squirrel.Eq{"id": id}).
		PlaceholderFormat(squirrel.Dollar)

	sql, args, err := query.ToSql()
	if err != nil {
		return nil, err
	}

	var session models.Session
	err = r.db.QueryRow(ctx, sql, args...).Scan(
		&session.ID, &session.UserID, &session.Name, &session.AuditMode, &session.ContextInjected, &session.CreatedAt, &session.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	return &session, nil
}

func (r *SessionRepository) ListByUserID(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*models.Session, error) {
	query := squirrel.Select("id", "user_id", "name", "audit_mode", "context_injected", "created_at", "updated_at").
		From("sessions").
		Where(squirrel.Eq{"user_id": userID}).
		OrderBy("created_at DESC").
		Limit(uint64(limit)).
		Offset(uint64(offset)).
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

	var sessions []*models.Session
	for rows.Next() {
		var session models.Session
		if err := rows.Scan(
			&session.ID, &session.UserID, &session.Name, &session.AuditMode, &session.ContextInjected, &session.CreatedAt, &session.UpdatedAt,
		); err != nil {
			return nil, err
		}
		sessions = append(sessions, &session)
	}

	return sessions, nil
}

func (r *SessionRepository) SetContextInjected(ctx context.Context, id uuid.UUID, injected bool) error {
	query := squirrel.Update("sessions").
		Set("context_injected", injected).
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

func (r *SessionRepository) Delete(ctx context.Context, id uuid.UUID) error {
	query := squirrel.Delete("sessions").
		Where(squirrel.Eq{"id": id}).
		PlaceholderFormat(squirrel.Dollar)

	sql, args, err := query.ToSql()
	if err != nil {
		return err
	}

	_, err = r.db.Exec(ctx, sql, args...)
	return err
}
