package client

import (
	"context"
	"strings"

	"openai-cli/internal/models"
)

// ChatClient speaks the chat completion shape with a single user message.
type ChatClient struct {
	*session
}

type chatEnvelope struct {
	Choices []models.ChatChoice `json:"choices"`
}

// Generate sends prompt as the only user message and returns
// choices[0].message.content with surrounding whitespace removed.
func (c *ChatClient) Generate(ctx context.Context, prompt, model string) (string, error) {
	payload := models.ChatRequest{
		Model:       model,
		Temperature: Temperature,
		Messages: []models.ChatMessage{
			{Role: models.RoleUser, Content: prompt},
		},
	}

	var resp chatEnvelope
	if err := c.post(ctx, model, payload, &resp); err != nil {
		return "", err
	}

	if len(resp.Choices) == 0 {
		return "", &MalformedResponseError{Field: "choices", Reason: "no choices in response"}
	}
	msg := resp.Choices[0].Message
	if msg == nil {
		return "", &MalformedResponseError{Field: "choices[0].message", Reason: "missing"}
	}
	if msg.Content == nil {
		return "", &MalformedResponseError{Field: "choices[0].message.content", Reason: "missing"}
	}
	return strings.TrimSpace(*msg.Content), nil
}

var (
	_ Client = (*ChatClient)(nil)
	_ Client = (*CompletionClient)(nil)
)
