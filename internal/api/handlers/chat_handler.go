package handlers

import (
	"bufio"
	"context"
	"fmt"
	"strings"

	"clausematch/internal/dto"
	"clausematch/internal/models"
	"clausematch/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/valyala/fasthttp"
	"go.uber.org/zap"
)

type ChatHandler struct {
	chatService    *service.ChatService
	sessionService *service.SessionService
	logger         *zap.Logger
}

func NewChatHandler(chatService *service.ChatService, sessionService *service.SessionService, logger *zap.Logger) *ChatHandler {
	return &ChatHandler{
		chatService:    chatService,
		sessionService: sessionService,
		logger:         logger,
	}
}

// SendMessage godoc
// @Summary Ask the session chat assistant
// @Description Answer a question about the session's compliance data. Set stream=true for server-sent events.
// @Tags chat
// @Accept json
// @Produce json
// @Param id path string true "Session ID"
// @Param request body dto.ChatRequest true "Chat message"
// @Security Bearer
// @Success 200 {object} dto.ChatResponse
// @Failure 400 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Failure 502 {object} map[string]string
// @Router /api/v1/sessions/{id}/chat [post]
func (h *ChatHandler) SendMessage(c *fiber.Ctx) error {
	session, err := ownedSession(c, h.sessionService)
	if err != nil {
		return err
	}

	var req dto.ChatRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}
	if strings.TrimSpace(req.Message) == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Message is required",
		})
	}

	if req.Stream {
		return h.streamReply(c, session, req.Message)
	}

	resp, err := h.chatService.Ask(c.Context(), session, req.Message)
	if err != nil {
		h.logger.Error("Chat completion failed", zap.Error(err))
		return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{
			"error": "Chat completion failed",
		})
	}

	return c.JSON(resp)
}

// streamReply delivers the assistant reply as server-sent events. The reply
// is generated against a detached context: the LLM client carries its own
// request timeout and the transcript must be stored even if the consumer
// disconnects mid-stream.
func (h *ChatHandler) streamReply(c *fiber.Ctx, session *models.Session, message string) error {
	c.Set(fiber.HeaderContentType, "text/event-stream")
	c.Set(fiber.HeaderCacheControl, "no-cache")
	c.Set(fiber.HeaderConnection, "keep-alive")

	c.Context().SetBodyStreamWriter(fasthttp.StreamWriter(func(w *bufio.Writer) {
		_, err := h.chatService.AskStream(context.Background(), session, message, func(delta string) error {
			if _, err := fmt.Fprintf(w, "data: %s\n\n", encodeSSEData(delta)); err != nil {
				return err
			}
			return w.Flush()
		})
		if err != nil {
			h.logger.Error("Chat stream failed", zap.Error(err))
			fmt.Fprintf(w, "event: error\ndata: %s\n\n", encodeSSEData(err.Error()))
			w.Flush()
			return
		}
		fmt.Fprint(w, "data: [DONE]\n\n")
		w.Flush()
	}))

	return nil
}

// GetTranscript godoc
// @Summary Get the session chat transcript
// @Tags chat
// @Produce json
// @Param id path string true "Session ID"
// @Security Bearer
// @Success 200 {array} map[string]string
// @Failure 404 {object} map[string]string
// @Router /api/v1/sessions/{id}/chat [get]
func (h *ChatHandler) GetTranscript(c *fiber.Ctx) error {
	session, err := ownedSession(c, h.sessionService)
	if err != nil {
		return err
	}

	transcript, err := h.chatService.GetTranscript(c.Context(), session.ID)
	if err != nil {
		h.logger.Error("Failed to load transcript", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to load transcript",
		})
	}

	entries := make([]fiber.Map, len(transcript))
	for i, message := range transcript {
		entries[i] = fiber.Map{
			"role":       string(message.Role),
			"content":    message.Content,
			"created_at": message.CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
		}
	}
	return c.JSON(entries)
}

// SuggestedPrompts godoc
// @Summary Get suggested chat prompts
// @Tags chat
// @Produce json
// @Param id path string true "Session ID"
// @Security Bearer
// @Success 200 {object} dto.SuggestedPromptsResponse
// @Failure 404 {object} map[string]string
// @Router /api/v1/sessions/{id}/chat/prompts [get]
func (h *ChatHandler) SuggestedPrompts(c *fiber.Ctx) error {
	session, err := ownedSession(c, h.sessionService)
	if err != nil {
		return err
	}

	return c.JSON(h.chatService.SuggestedPrompts(c.Context(), session))
}

// encodeSSEData keeps multi-line fragments valid inside one SSE data field.
func encodeSSEData(data string) string {
	return strings.ReplaceAll(data, "\n", "\ndata: ")
}
