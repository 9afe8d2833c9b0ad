package client

import (
	"context"
	"strings"

	"openai-cli/internal/models"
)

// CompletionClient speaks the legacy completion shape.
type CompletionClient struct {
	*session
}

type completionEnvelope struct {
	Choices []models.CompletionChoice `json:"choices"`
}

// Generate sends prompt as a completion request and returns choices[0].text
// with surrounding whitespace removed.
func (c *CompletionClient) Generate(ctx context.Context, prompt, model string) (string, error) {
	payload := models.CompletionRequest{
		Prompt:      prompt,
		Model:       model,
		MaxTokens:   MaxTokens,
		Temperature: Temperature,
	}

	var resp completionEnvelope
	if err := c.post(ctx, model, payload, &resp); err != nil {
		return "", err
	}

	if len(resp.Choices) == 0 {
		return "", &MalformedResponseError{Field: "choices", Reason: "no choices in response"}
	}
	text := resp.Choices[0].Text
	if text == nil {
		return "", &MalformedResponseError{Field: "choices[0].text", Reason: "missing"}
	}
	return strings.TrimSpace(*text), nil
}
