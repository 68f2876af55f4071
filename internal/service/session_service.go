package service

import (
	"context"
	"errors"
	"time"

	"clausematch/internal/dto"
	"clausematch/internal/models"
	"clausematch/internal/repository"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

var ErrSessionNotFound = errors.New("session not found")

type SessionService struct {
	sessionRepo *repository.SessionRepository
	logger      *zap.Logger
}

func NewSessionService(sessionRepo *repository.SessionRepository, logger *zap.Logger) *SessionService {
	return &SessionService{
		sessionRepo: sessionRepo,
		logger:      logger,
	}
}

func (s *SessionService) CreateSession(ctx context.Context, userID uuid.UUID, req *dto.CreateSessionRequest) (*dto.SessionResponse, error) {
	auditMode := true
	if req.AuditMode != nil {
		auditMode = *req.AuditMode
	}

	name := req.Name
	if name == "" {
		name = "Session " + time.Now().Format("2006-01-02 15:04")
	}

	now := time.Now()
	session := &models.Session{
		ID:              uuid.New(),
		UserID:          userID,
		Name:            name,
		AuditMode:       auditMode,
		ContextInjected: false,
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	if err := s.sessionRepo.Create(ctx, session); err != nil {
		return nil, err
	}

	return toSessionResponse(session), nil
}

// GetOwnedSession loads a session and verifies ownership. Sessions belonging
// to another user are reported as not found.
func (s *SessionService) GetOwnedSession(ctx context.Context, userID, sessionID uuid.UUID) (*models.Session, error) {
	session, err := s.sessionRepo.GetByID(ctx, sessionID)
	if err != nil {
		return nil, ErrSessionNotFound
	}
	if session.UserID != userID {
		return nil, ErrSessionNotFound
	}
	return session, nil
}

func (s *SessionService) ListSessions(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*dto.SessionResponse, error) {
	sessions, err := s.sessionRepo.ListByUserID(ctx, userID, limit, offset)
	if err != nil {
		return nil, err
	}

	responses := make([]*dto.SessionResponse, len(sessions))
	for i, session := range sessions {
		responses[i] = toSessionResponse(session)
	}
	return responses, nil
}

func (s *SessionService) DeleteSession(ctx context.Context, userID, sessionID uuid.UUID) error {
	if _, err := s.GetOwnedSession(ctx, userID, sessionID); err != nil {
		return err
	}
	return s.sessionRepo.Delete(ctx, sessionID)
}

func toSessionResponse(session *models.Session) *dto.SessionResponse {
	return &dto.SessionResponse{
		ID:        session.ID.String(),
		Name:      session.Name,
		AuditMode: session.AuditMode,
		CreatedAt: session.CreatedAt.Format(time.RFC3339),
	}
}
