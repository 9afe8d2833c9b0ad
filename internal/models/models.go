package models

// RoleUser is the only role the client ever sends.
const RoleUser = "user"

// CompletionRequest is the legacy /v1/completions request body.
type CompletionRequest struct {
	Prompt      string  `json:"prompt"`
	Model       string  `json:"model"`
	MaxTokens   int     `json:"max_tokens"`
	Temperature float64 `json:"temperature"`
}

// ChatRequest is the /v1/chat/completions request body.
type ChatRequest struct {
	Model       string        `json:"model"`
	Temperature float64       `json:"temperature"`
	Messages    []ChatMessage `json:"messages"`
}

// ChatMessage is a single role-tagged message.
type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// CompletionResponse captures the fields read from a completion response.
// Pointer fields distinguish an absent value from an empty one.
type CompletionResponse struct {
	ID      string             `json:"id,omitempty"`
	Object  string             `json:"object,omitempty"`
	Created int64              `json:"created,omitempty"`
	Model   string             `json:"model,omitempty"`
	Choices []CompletionChoice `json:"choices"`
	Usage   *Usage             `json:"usage,omitempty"`
}

// CompletionChoice is one generated alternative of a completion response.
type CompletionChoice struct {
	Index        int     `json:"index"`
	Text         *string `json:"text"`
	FinishReason string  `json:"finish_reason,omitempty"`
}

// ChatResponse captures the fields read from a chat response.
type ChatResponse struct {
	ID      string       `json:"id,omitempty"`
	Object  string       `json:"object,omitempty"`
	Created int64        `json:"created,omitempty"`
	Model   string       `json:"model,omitempty"`
	Choices []ChatChoice `json:"choices"`
	Usage   *Usage       `json:"usage,omitempty"`
}

// ChatChoice is one generated alternative of a chat response.
type ChatChoice struct {
	Index        int                  `json:"index"`
	Message      *ChatResponseMessage `json:"message"`
	FinishReason string               `json:"finish_reason,omitempty"`
}

// ChatResponseMessage is the assistant message nested in a chat choice.
type ChatResponseMessage struct {
	Role    string  `json:"role,omitempty"`
	Content *string `json:"content"`
}

// Usage records token accounting information.
type Usage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

// ErrorResponse is the OpenAI error envelope returned with non-2xx statuses.
type ErrorResponse struct {
	Error ErrorObject `json:"error"`
}

// ErrorObject describes an API error.
type ErrorObject struct {
	Message string `json:"message"`
	Type    string `json:"type"`
	Code    any    `json:"code,omitempty"`
}
