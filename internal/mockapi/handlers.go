package mockapi

import (
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"openai-cli/internal/models"
)

const finishReasonStop = "stop"

func (s *Server) handleCompletions(c echo.Context) error {
	var req models.CompletionRequest
	if err := decodeRequestBody(c, &req); err != nil {
		return err
	}
	if strings.TrimSpace(req.Model) == "" {
		return missingModel()
	}

	text := s.reply(req.Prompt)
	return c.JSON(http.StatusOK, models.CompletionResponse{
		ID:      "cmpl-" + uuid.NewString(),
		Object:  "text_completion",
		Created: time.Now().Unix(),
		Model:   req.Model,
		Choices: []models.CompletionChoice{
			{Index: 0, Text: &text, FinishReason: finishReasonStop},
		},
		Usage: usageFor(req.Prompt, text),
	})
}

func (s *Server) handleChatCompletions(c echo.Context) error {
	var req models.ChatRequest
	if err := decodeRequestBody(c, &req); err != nil {
		return err
	}
	if strings.TrimSpace(req.Model) == "" {
		return missingModel()
	}
	if len(req.Messages) == 0 {
		return requestError{
			Status:  http.StatusBadRequest,
			Message: "'messages' must contain at least one message",
			Type:    "invalid_request_error",
		}
	}

	prompt := lastUserMessage(req.Messages)
	text := s.reply(prompt)
	return c.JSON(http.StatusOK, models.ChatResponse{
		ID:      "chatcmpl-" + uuid.NewString(),
		Object:  "chat.completion",
		Created: time.Now().Unix(),
		Model:   req.Model,
		Choices: []models.ChatChoice{
			{
				Index:        0,
				Message:      &models.ChatResponseMessage{Role: "assistant", Content: &text},
				FinishReason: finishReasonStop,
			},
		},
		Usage: usageFor(prompt, text),
	})
}

func (s *Server) reply(prompt string) string {
	if s.opts.Reply != "" {
		return s.opts.Reply
	}
	return prompt
}

func missingModel() error {
	return requestError{
		Status:  http.StatusBadRequest,
		Message: "you must provide a model parameter",
		Type:    "invalid_request_error",
	}
}

func lastUserMessage(messages []models.ChatMessage) string {
	for i := len(messages) - 1; i >= 0; i-- {
		if messages[i].Role == models.RoleUser {
			return messages[i].Content
		}
	}
	return ""
}

// usageFor approximates token counts by whitespace-separated words.
func usageFor(prompt, completion string) *models.Usage {
	p := len(strings.Fields(prompt))
	c := len(strings.Fields(completion))
	return &models.Usage{
		PromptTokens:     p,
		CompletionTokens: c,
		TotalTokens:      p + c,
	}
}
