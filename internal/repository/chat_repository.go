package repository

import (
	"context"

	"clausematch/internal/models"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

type ChatRepository struct {
	db     *pgxpool.Pool
	logger *zap.Logger
}

func NewChatRepository(db *pgxpool.Pool, logger *zap.Logger) *ChatRepository {
	return &ChatRepository{
		db:     db,
		logger: logger,
	}
}

func (r *ChatRepository) Create(ctx context.Context, message *models.ChatMessage) error {
	query := squirrel.Insert("chat_messages").
		Columns("id", "session_id", "role", "content", "created_at").
		Values(message.ID, message.SessionID, message.Role, message.Content, message.CreatedAt).
		PlaceholderFormat(squirrel.Dollar)

	sql, args, err := query.ToSql()
	if err != nil {
		return err
	}

	_, err = r.db.Exec(ctx, sql, args...)
	return err
}

// ListBySessionID returns the transcript in chronological order.
func (r *ChatRepository) ListBySessionID(ctx context.Context, sessionID uuid.UUID) ([]models.ChatMessage, error) {
	query := squirrel.Select("id", "session_id", "role", "content", "created_at").
		From("chat_messages").
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

	var messages []models.ChatMessage
	for rows.Next() {
		var message models.ChatMessage
		if err := rows.Scan(
			&message.ID, &message.SessionID, &message.Role, &message.Content, &message.CreatedAt,
		); err != nil {
			return nil, err
		}
		messages = append(messages, message)
	}

	return messages, nil
}
