package handlers

import (
	"errors"

	"clausematch/internal/service"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

type MatchHandler struct {
	complianceService *service.ComplianceService
	sessionService    *service.SessionService
	logger            *zap.Logger
}

func NewMatchHandler(complianceService *service.ComplianceService, sessionService *service.SessionService, logger *zap.Logger) *MatchHandler {
	return &MatchHandler{
		complianceService: complianceService,
		sessionService:    sessionService,
		logger:            logger,
	}
}

// RunMatching godoc
// @Summary Run clause matching for a session
// @Description Extract clauses from all uploaded documents, match control against regulation, and store the results
// @Tags matching
// @Produce json
// @Param id path string true "Session ID"
// @Security Bearer
// @Success 200 {object} dto.MatchRunResponse
// @Failure 400 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Failure 502 {object} map[string]string
// @Router /api/v1/sessions/{id}/match [post]
func (h *MatchHandler) RunMatching(c *fiber.Ctx) error {
	session, err := ownedSession(c, h.sessionService)
	if err != nil {
		return err
	}

	resp, err := h.complianceService.RunMatching(c.Context(), session)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrNoControlDocuments),
			errors.Is(err, service.ErrNoRegulationDocuments):
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": err.Error(),
			})
		}
		h.logger.Error("Matching run failed",
			zap.String("session_id", session.ID.String()), zap.Error(err))
		return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{
			"error": "Matching run failed",
		})
	}

	return c.JSON(resp)
}

// GetResults godoc
// @Summary Get the session's stored match results
// @Tags matching
// @Produce json
// @Param id path string true "Session ID"
// @Security Bearer
// @Success 200 {object} dto.MatchRunResponse
// @Failure 404 {object} map[string]string
// @Router /api/v1/sessions/{id}/match [get]
func (h *MatchHandler) GetResults(c *fiber.Ctx) error {
	session, err := ownedSession(c, h.sessionService)
	if err != nil {
		return err
	}

	resp, err := h.complianceService.GetResults(c.Context(), session)
	if err != nil {
		h.logger.Error("Failed to load match results", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to load match results",
		})
	}

	return c.JSON(resp)
}
