package dto

type ChatRequest struct {
	Message string `json:"message" validate:"required"`
	Stream  bool   `json:"stream"`
}

type ChatResponse struct {
	Reply string `json:"reply"`
}

type SuggestedPromptsResponse struct {
	Prompts []string `json:"prompts"`
}
