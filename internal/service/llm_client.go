package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"clausematch/pkg/config"

	"github.com/sashabaranov/go-openai"
	"go.uber.org/zap"
)

// CompletionMessage is one chat-style message sent to the reasoning service.
type CompletionMessage struct {
	Role    string
	Content string
}

type CompletionRequest struct {
	Model       string
	Messages    []CompletionMessage
	Temperature float32
	MaxTokens   int
}

// CompletionResult carries the response text and whether the service cut it
// off at the token budget.
type CompletionResult struct {
	Content   string
	Truncated bool
}

// ReasoningClient is the external reasoning capability used by the narrative
// analyzer and the chat assistant. Kept narrow so tests can substitute a
// deterministic stub.
type ReasoningClient interface {
	Complete(ctx context.Context, req CompletionRequest) (CompletionResult, error)
	CompleteStream(ctx context.Context, req CompletionRequest, fn func(delta string) error) (CompletionResult, error)
}

// EmbeddingClient maps text batches to dense vectors, preserving order.
type EmbeddingClient interface {
	Embed(ctx context.Context, model string, texts []string) ([][]float64, error)
}

// OpenAIClient implements both capabilities against any OpenAI-compatible
// endpoint (the default configuration targets Groq).
type OpenAIClient struct {
	client *openai.Client
	logger *zap.Logger
}

func NewOpenAIClient(cfg *config.LLMConfig, logger *zap.Logger) *OpenAIClient {
	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}
	clientCfg.HTTPClient = &http.Client{Timeout: cfg.RequestTimeout}

	return &OpenAIClient{
		client: openai.NewClientWithConfig(clientCfg),
		logger: logger,
	}
}

func (c *OpenAIClient) Complete(ctx context.Context, req CompletionRequest) (CompletionResult, error) {
	resp, err := c.client.CreateChatCompletion(ctx, toChatRequest(req, false))
	if err != nil {
		return CompletionResult{}, fmt.Errorf("completion request failed: %w", err)
	}
	if len(resp.Choices) == 0 {
		return CompletionResult{}, errors.New("no choices in completion response")
	}

	choice := resp.Choices[0]
	return CompletionResult{
		Content:   strings.TrimSpace(choice.Message.Content),
		Truncated: choice.FinishReason != openai.FinishReasonStop,
	}, nil
}

func (c *OpenAIClient) CompleteStream(ctx context.Context, req CompletionRequest, fn func(delta string) error) (CompletionResult, error) {
	stream, err := c.client.CreateChatCompletionStream(ctx, toChatRequest(req, true))
	if err != nil {
		return CompletionResult{}, fmt.Errorf("completion stream failed: %w", err)
	}
	defer stream.Close()

	var content strings.Builder
	truncated := false
	for {
		chunk, err := stream.Recv()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return CompletionResult{}, fmt.Errorf("stream receive failed: %w", err)
		}
		if len(chunk.Choices) == 0 {
			continue
		}

		choice := chunk.Choices[0]
		if choice.FinishReason == openai.FinishReasonLength {
			truncated = true
		}
		if choice.Delta.Content == "" {
			continue
		}

		content.WriteString(choice.Delta.Content)
		if fn != nil {
			if err := fn(choice.Delta.Content); err != nil {
				return CompletionResult{}, err
			}
		}
	}

	return CompletionResult{Content: content.String(), Truncated: truncated}, nil
}

func (c *OpenAIClient) Embed(ctx context.Context, model string, texts []string) ([][]float64, error) {
	resp, err := c.client.CreateEmbeddings(ctx, openai.EmbeddingRequest{
		Input: texts,
		Model: openai.EmbeddingModel(model),
	})
	if err != nil {
		return nil, fmt.Errorf("embedding request failed: %w", err)
	}
	if len(resp.Data) != len(texts) {
		return nil, fmt.Errorf("embedding count mismatch: sent %d texts, got %d vectors", len(texts), len(resp.Data))
	}

	// The API keys each vector by its Index field, not by response position.
	vectors := make([][]float64, len(resp.Data))
	for _, d := range resp.Data {
		if d.Index < 0 || d.Index >= len(vectors) {
			return nil, fmt.Errorf("embedding index %d out of range for %d texts", d.Index, len(texts))
		}
		vec := make([]float64, len(d.Embedding))
		for j, v := range d.Embedding {
			vec[j] = float64(v)
		}
		vectors[d.Index] = vec
	}

	return vectors, nil
}

func toChatRequest(req CompletionRequest, stream bool) openai.ChatCompletionRequest {
	messages := make([]openai.ChatCompletionMessage, len(req.Messages))
	for i, m := range req.Messages {
		messages[i] = openai.ChatCompletionMessage{Role: m.Role, Content: m.Content}
	}
	return openai.ChatCompletionRequest{
		Model:       req.Model,
		Messages:    messages,
		Temperature: req.Temperature,
		MaxTokens:   req.MaxTokens,
		Stream:      stream,
	}
}
