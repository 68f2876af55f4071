package handlers

import (
	"fmt"

	"clausematch/internal/service"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

type ReportHandler struct {
	reportService  *service.ReportService
	sessionService *service.SessionService
	logger         *zap.Logger
}

func NewReportHandler(reportService *service.ReportService, sessionService *service.SessionService, logger *zap.Logger) *ReportHandler {
	return &ReportHandler{
		reportService:  reportService,
		sessionService: sessionService,
		logger:         logger,
	}
}

// DownloadReport godoc
// @Summary Download the session compliance report
// @Description Export match results, chat history and session summary as an xlsx workbook
// @Tags reports
// @Produce application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Param id path string true "Session ID"
// @Security Bearer
// @Success 200 {file} binary
// @Failure 404 {object} map[string]string
// @Router /api/v1/sessions/{id}/report [get]
func (h *ReportHandler) DownloadReport(c *fiber.Ctx) error {
	session, err := ownedSession(c, h.sessionService)
	if err != nil {
		return err
	}

	workbook, err := h.reportService.GenerateWorkbook(c.Context(), session)
	if err != nil {
		h.logger.Error("Report generation failed",
			zap.String("session_id", session.ID.String()), zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Report generation failed",
		})
	}

	c.Set(fiber.HeaderContentType, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Set(fiber.HeaderContentDisposition,
		fmt.Sprintf(`attachment; filename="compliance-report-%s.xlsx"`, session.ID.String()))
	return c.Send(workbook)
}
