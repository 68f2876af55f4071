package service

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"time"

	"clausematch/internal/dto"
	"clausematch/internal/models"
	"clausematch/internal/repository"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	// Approximate context window of the chat model, in tokens.
	chatContextWindow = 8192
	// Tokens held back from the reply budget for message framing overhead.
	chatReplyReserve = 150
	// The reply budget never drops below this floor.
	chatMinReply = 150

	chatTemperature = 0.7

	contextMatchedLimit = 5
	contextMissingLimit = 3

	truncationNotice = "\n\n[Response truncated due to length limit.]"
)

// tokenRe approximates model tokenization: one token per word or
// punctuation mark. Coarse, but adequate for budgeting.
var tokenRe = regexp.MustCompile(`\w+|[^\w\s]`)

const auditSystemMessage = "You are a compliance audit assistant. Answer strictly " +
	"from the control clauses, regulation clauses and match results provided in " +
	"this conversation. Cite clause IDs and regulation names where relevant. If " +
	"the answer is not in the provided data, say you do not have that information. " +
	"Do not speculate beyond the uploaded documents."

const generalSystemMessage = "You are a helpful assistant for compliance and " +
	"regulatory questions. Be concise and practical."

// ChatService runs the session chat assistant: transcript persistence,
// one-time match-context injection, token budgeting and streaming.
type ChatService struct {
	client      ReasoningClient
	model       string
	sessionRepo *repository.SessionRepository
	chatRepo    *repository.ChatRepository
	matchRepo   *repository.MatchRepository
	logger      *zap.Logger
}

func NewChatService(
	client ReasoningClient,
	model string,
	sessionRepo *repository.SessionRepository,
	chatRepo *repository.ChatRepository,
	matchRepo *repository.MatchRepository,
	logger *zap.Logger,
) *ChatService {
	return &ChatService{
		client:      client,
		model:       model,
		sessionRepo: sessionRepo,
		chatRepo:    chatRepo,
		matchRepo:   matchRepo,
		logger:      logger,
	}
}

// Ask answers one user message and appends both sides to the transcript.
// A reply cut off by the token budget carries a truncation notice.
func (s *ChatService) Ask(ctx context.Context, session *models.Session, message string) (*dto.ChatResponse, error) {
	messages, err := s.prepareConversation(ctx, session, message)
	if err != nil {
		return nil, err
	}

	result, err := s.client.Complete(ctx, CompletionRequest{
		Model:       s.model,
		Temperature: chatTemperature,
		MaxTokens:   dynamicMaxTokens(messages),
		Messages:    messages,
	})
	if err != nil {
		return nil, fmt.Errorf("chat completion failed: %w", err)
	}

	reply := result.Content
	if result.Truncated {
		reply += truncationNotice
	}

	s.appendTranscript(ctx, session.ID, message, reply)
	return &dto.ChatResponse{Reply: reply}, nil
}

// AskStream is Ask with incremental delivery: each text fragment is passed
// to fn as it arrives. The complete reply is returned and persisted.
func (s *ChatService) AskStream(ctx context.Context, session *models.Session, message string, fn func(delta string) error) (string, error) {
	messages, err := s.prepareConversation(ctx, session, message)
	if err != nil {
		return "", err
	}

	result, err := s.client.CompleteStream(ctx, CompletionRequest{
		Model:       s.model,
		Temperature: chatTemperature,
		MaxTokens:   dynamicMaxTokens(messages),
		Messages:    messages,
	}, fn)
	if err != nil {
		return "", fmt.Errorf("chat stream failed: %w", err)
	}

	reply := result.Content
	if result.Truncated {
		if err := fn(truncationNotice); err != nil {
			return "", err
		}
		reply += truncationNotice
	}

	s.appendTranscript(ctx, session.ID, message, reply)
	return reply, nil
}

// SuggestedPrompts returns starter questions for the session chat,
// tailored to the session's match results when a run has happened.
func (s *ChatService) SuggestedPrompts(ctx context.Context, session *models.Session) *dto.SuggestedPromptsResponse {
	prompts := []string{
		"Which control clauses have no regulation coverage?",
		"Summarize the strongest matches and what they cover.",
		"What are the highest-risk compliance gaps in this session?",
		"Suggest rewrites for the weakest matched controls.",
	}

	results, err := s.matchRepo.ListBySessionID(ctx, session.ID)
	if err != nil {
		s.logger.Warn("failed to load results for suggested prompts", zap.Error(err))
		return &dto.SuggestedPromptsResponse{Prompts: prompts}
	}

	missing := 0
	for _, result := range results {
		if !result.Matched() {
			missing++
		}
	}
	if missing > 0 {
		prompts[0] = fmt.Sprintf("Why are %d control clauses unmatched against the regulations?", missing)
	}
	for _, result := range results {
		if result.Matched() && result.Status == models.StatusWeakMatch {
			prompts[3] = fmt.Sprintf("Suggest a rewrite for clause %s to strengthen its weak match.", result.ControlID)
			break
		}
	}

	return &dto.SuggestedPromptsResponse{Prompts: prompts}
}

// GetTranscript returns the session chat history in chronological order.
func (s *ChatService) GetTranscript(ctx context.Context, sessionID uuid.UUID) ([]models.ChatMessage, error) {
	return s.chatRepo.ListBySessionID(ctx, sessionID)
}

// prepareConversation assembles the message list: system message per audit
// mode, one-time match-context injection, stored history, then the new user
// message. The context injection is persisted so it survives restarts and
// happens exactly once per session.
func (s *ChatService) prepareConversation(ctx context.Context, session *models.Session, message string) ([]CompletionMessage, error) {
	systemMessage := generalSystemMessage
	if session.AuditMode {
		systemMessage = auditSystemMessage
	}

	messages := []CompletionMessage{{Role: string(models.ChatRoleSystem), Content: systemMessage}}

	if !session.ContextInjected {
		if contextMsg := s.buildMatchContext(ctx, session.ID); contextMsg != "" {
			record := &models.ChatMessage{
				ID:        uuid.New(),
				SessionID: session.ID,
				Role:      models.ChatRoleSystem,
				Content:   contextMsg,
				CreatedAt: time.Now().UTC(),
			}
			if err := s.chatRepo.Create(ctx, record); err != nil {
				return nil, err
			}
			if err := s.sessionRepo.SetContextInjected(ctx, session.ID, true); err != nil {
				return nil, err
			}
			session.ContextInjected = true
		}
	}

	history, err := s.chatRepo.ListBySessionID(ctx, session.ID)
	if err != nil {
		return nil, err
	}
	for _, entry := range history {
		messages = append(messages, CompletionMessage{Role: string(entry.Role), Content: entry.Content})
	}

	messages = append(messages, CompletionMessage{Role: string(models.ChatRoleUser), Content: message})
	return messages, nil
}

// buildMatchContext summarizes the session's run for injection: the top few
// matched controls and the first few missing ones. Empty when no run exists.
func (s *ChatService) buildMatchContext(ctx context.Context, sessionID uuid.UUID) string {
	results, err := s.matchRepo.ListBySessionID(ctx, sessionID)
	if err != nil {
		s.logger.Warn("Failed to load match results for chat context", zap.Error(err))
		return ""
	}
	if len(results) == 0 {
		return ""
	}

	var matched, missing []models.MatchResult
	for _, result := range results {
		if result.Matched() {
			matched = append(matched, result)
		} else {
			missing = append(missing, result)
		}
	}
	if len(matched) > contextMatchedLimit {
		matched = matched[:contextMatchedLimit]
	}
	if len(missing) > contextMissingLimit {
		missing = missing[:contextMissingLimit]
	}

	var b strings.Builder
	b.WriteString("Compliance matching context for this session.\n")
	if len(matched) > 0 {
		b.WriteString("\nTop matched controls:\n")
		for _, result := range matched {
			fmt.Fprintf(&b, "- [%s, score %.3f] %s (%s) matches %q from %s\n",
				result.Status, result.Score, result.ControlID, result.ControlText,
				result.MatchedText, result.Regulation)
		}
	}
	if len(missing) > 0 {
		b.WriteString("\nControls without regulation coverage:\n")
		for _, result := range missing {
			fmt.Fprintf(&b, "- %s: %s\n", result.ControlID, result.ControlText)
		}
	}
	return b.String()
}

func (s *ChatService) appendTranscript(ctx context.Context, sessionID uuid.UUID, question, reply string) {
	now := time.Now().UTC()
	userMsg := &models.ChatMessage{
		ID:        uuid.New(),
		SessionID: sessionID,
		Role:      models.ChatRoleUser,
		Content:   sanitizeUTF8(question),
		CreatedAt: now,
	}
	assistantMsg := &models.ChatMessage{
		ID:        uuid.New(),
		SessionID: sessionID,
		Role:      models.ChatRoleAssistant,
		Content:   sanitizeUTF8(reply),
		CreatedAt: now.Add(time.Millisecond),
	}
	if err := s.chatRepo.Create(ctx, userMsg); err != nil {
		s.logger.Warn("Failed to store user message", zap.Error(err))
	}
	if err := s.chatRepo.Create(ctx, assistantMsg); err != nil {
		s.logger.Warn("Failed to store assistant message", zap.Error(err))
	}
}

// dynamicMaxTokens sizes the reply budget to what is left of the context
// window after the conversation so far, never below the floor.
func dynamicMaxTokens(messages []CompletionMessage) int {
	used := 0
	for _, msg := range messages {
		used += approximateTokenCount(msg.Content)
	}
	budget := chatContextWindow - used - chatReplyReserve
	if budget < chatMinReply {
		return chatMinReply
	}
	return budget
}

// approximateTokenCount counts words and punctuation marks as one token each.
func approximateTokenCount(text string) int {
	return len(tokenRe.FindAllString(text, -1))
}
