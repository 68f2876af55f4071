package handlers

import (
	"errors"

	"clausematch/internal/models"
	"clausematch/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type DocumentHandler struct {
	docService     *service.DocumentService
	sessionService *service.SessionService
	logger         *zap.Logger
}

func NewDocumentHandler(docService *service.DocumentService, sessionService *service.SessionService, logger *zap.Logger) *DocumentHandler {
	return &DocumentHandler{
		docService:     docService,
		sessionService: sessionService,
		logger:         logger,
	}
}

// UploadDocument godoc
// @Summary Upload a document into a session bucket
// @Description Upload a control or regulation document (pdf, docx, txt, csv, xlsx)
// @Tags documents
// @Accept multipart/form-data
// @Produce json
// @Param id path string true "Session ID"
// @Param file formData file true "Document file"
// @Param bucket formData string true "Upload bucket: control or regulation"
// @Security Bearer
// @Success 201 {object} dto.DocumentResponse
// @Failure 400 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Router /api/v1/sessions/{id}/documents [post]
func (h *DocumentHandler) UploadDocument(c *fiber.Ctx) error {
	session, err := h.ownedSession(c)
	if err != nil {
		return err
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "File is required",
		})
	}

	bucket := models.DocumentBucket(c.FormValue("bucket"))
	if bucket != models.BucketControl && bucket != models.BucketRegulation {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Bucket must be 'control' or 'regulation'",
		})
	}

	src, err := fileHeader.Open()
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Failed to read uploaded file",
		})
	}
	defer src.Close()

	resp, err := h.docService.UploadDocument(c.Context(), session.ID, bucket, src, fileHeader.Filename)
	if err != nil {
		if errors.Is(err, service.ErrUnsupportedFormat) {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": err.Error(),
			})
		}
		h.logger.Error("Document upload failed", zap.Error(err))
		return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	return c.Status(fiber.StatusCreated).JSON(resp)
}

// ListDocuments godoc
// @Summary List session documents
// @Tags documents
// @Produce json
// @Param id path string true "Session ID"
// @Security Bearer
// @Success 200 {array} dto.DocumentResponse
// @Failure 404 {object} map[string]string
// @Router /api/v1/sessions/{id}/documents [get]
func (h *DocumentHandler) ListDocuments(c *fiber.Ctx) error {
	session, err := h.ownedSession(c)
	if err != nil {
		return err
	}

	docs, err := h.docService.ListDocuments(c.Context(), session.ID)
	if err != nil {
		h.logger.Error("Failed to list documents", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to list documents",
		})
	}

	return c.JSON(docs)
}

// DeleteDocument godoc
// @Summary Delete a session document
// @Tags documents
// @Produce json
// @Param id path string true "Session ID"
// @Param docID path string true "Document ID"
// @Security Bearer
// @Success 204
// @Failure 404 {object} map[string]string
// @Router /api/v1/sessions/{id}/documents/{docID} [delete]
func (h *DocumentHandler) DeleteDocument(c *fiber.Ctx) error {
	session, err := h.ownedSession(c)
	if err != nil {
		return err
	}

	docID, err := uuid.Parse(c.Params("docID"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid document ID",
		})
	}

	if err := h.docService.DeleteDocument(c.Context(), session.ID, docID); err != nil {
		if errors.Is(err, service.ErrDocumentNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": "Document not found",
			})
		}
		h.logger.Error("Failed to delete document", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to delete document",
		})
	}

	return c.SendStatus(fiber.StatusNoContent)
}

func (h *DocumentHandler) ownedSession(c *fiber.Ctx) (*models.Session, error) {
	return ownedSession(c, h.sessionService)
}

func getUserID(c *fiber.Ctx) (uuid.UUID, error) {
	userIDStr, ok := c.Locals("userID").(string)
	if !ok {
		return uuid.Nil, fiber.ErrUnauthorized
	}

	userID, err := uuid.Parse(userIDStr)
	if err != nil {
		return uuid.Nil, err
	}

	return userID, nil
}

func parseSessionID(c *fiber.Ctx) (uuid.UUID, error) {
	sessionID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return uuid.Nil, fiber.NewError(fiber.StatusBadRequest, "Invalid session ID")
	}
	return sessionID, nil
}

// ownedSession resolves the :id path parameter to a session owned by the
// authenticated user. Failures come back as fiber errors for the app's
// error handler to format.
func ownedSession(c *fiber.Ctx, sessions *service.SessionService) (*models.Session, error) {
	userID, err := getUserID(c)
	if err != nil {
		return nil, fiber.NewError(fiber.StatusUnauthorized, "Unauthorized")
	}

	sessionID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return nil, fiber.NewError(fiber.StatusBadRequest, "Invalid session ID")
	}

	session, err := sessions.GetOwnedSession(c.Context(), userID, sessionID)
	if err != nil {
		return nil, fiber.NewError(fiber.StatusNotFound, "Session not found")
	}

	return session, nil
}
