package handlers

import (
	"errors"

	"clausematch/internal/dto"
	"clausematch/internal/service"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

type SessionHandler struct {
	sessionService *service.SessionService
	logger         *zap.Logger
}

func NewSessionHandler(sessionService *service.SessionService, logger *zap.Logger) *SessionHandler {
	return &SessionHandler{
		sessionService: sessionService,
		logger:         logger,
	}
}

// CreateSession godoc
// @Summary Create a matching session
// @Description Create a session that groups uploads, a matching run and its chat
// @Tags sessions
// @Accept json
// @Produce json
// @Param request body dto.CreateSessionRequest true "Session parameters"
// @Security Bearer
// @Success 201 {object} dto.SessionResponse
// @Failure 400 {object} map[string]string
// @Router /api/v1/sessions [post]
func (h *SessionHandler) CreateSession(c *fiber.Ctx) error {
	userID, err := getUserID(c)
	if err != nil {
		return fiber.NewError(fiber.StatusUnauthorized, "Unauthorized")
	}

	var req dto.CreateSessionRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	resp, err := h.sessionService.CreateSession(c.Context(), userID, &req)
	if err != nil {
		h.logger.Error("Failed to create session", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to create session",
		})
	}

	return c.Status(fiber.StatusCreated).JSON(resp)
}

// ListSessions godoc
// @Summary List the user's sessions
// @Tags sessions
// @Produce json
// @Param limit query int false "Page size" default(20)
// @Param offset query int false "Page offset" default(0)
// @Security Bearer
// @Success 200 {array} dto.SessionResponse
// @Router /api/v1/sessions [get]
func (h *SessionHandler) ListSessions(c *fiber.Ctx) error {
	userID, err := getUserID(c)
	if err != nil {
		return fiber.NewError(fiber.StatusUnauthorized, "Unauthorized")
	}

	limit := c.QueryInt("limit", 20)
	offset := c.QueryInt("offset", 0)

	sessions, err := h.sessionService.ListSessions(c.Context(), userID, limit, offset)
	if err != nil {
		h.logger.Error("Failed to list sessions", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to list sessions",
		})
	}

	return c.JSON(sessions)
}

// GetSession godoc
// @Summary Get one session
// @Tags sessions
// @Produce json
// @Param id path string true "Session ID"
// @Security Bearer
// @Success 200 {object} dto.SessionResponse
// @Failure 404 {object} map[string]string
// @Router /api/v1/sessions/{id} [get]
func (h *SessionHandler) GetSession(c *fiber.Ctx) error {
	session, err := ownedSession(c, h.sessionService)
	if err != nil {
		return err
	}

	return c.JSON(dto.SessionResponse{
		ID:        session.ID.String(),
		Name:      session.Name,
		AuditMode: session.AuditMode,
		CreatedAt: session.CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
	})
}

// DeleteSession godoc
// @Summary Delete a session
// @Tags sessions
// @Produce json
// @Param id path string true "Session ID"
// @Security Bearer
// @Success 204
// @Failure 404 {object} map[string]string
// @Router /api/v1/sessions/{id} [delete]
func (h *SessionHandler) DeleteSession(c *fiber.Ctx) error {
	userID, err := getUserID(c)
	if err != nil {
		return fiber.NewError(fiber.StatusUnauthorized, "Unauthorized")
	}

	sessionID, err := parseSessionID(c)
	if err != nil {
		return err
	}

	if err := h.sessionService.DeleteSession(c.Context(), userID, sessionID); err != nil {
		if errors.Is(err, service.ErrSessionNotFound) {
			return fiber.NewError(fiber.StatusNotFound, "Session not found")
		}
		h.logger.Error("Failed to delete session", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to delete session",
		})
	}

	return c.SendStatus(fiber.StatusNoContent)
}
