// Package client sends a single prompt to an OpenAI-compatible HTTP API and
// returns the generated text.
//
// Two request/response shapes are supported: the legacy completion endpoint
// (a prompt string in, choices[0].text out) and the chat endpoint (a single
// user message in, choices[0].message.content out). The shape is chosen once
// by Build and never changes for the lifetime of the returned Client, so
// callers never need to know which one they hold.
package client

import (
	"context"
	"fmt"
	"io"
	"net/http"

	"github.com/sirupsen/logrus"
)

const (
	// MaxTokens caps completion-variant output. The chat variant sends no cap.
	MaxTokens = 1000
	// Temperature is always sent, so sampling is deterministic.
	Temperature = 0.0

	// DefaultCompletionURL is the legacy completion endpoint.
	DefaultCompletionURL = "https://api.openai.com/v1/completions"
	// DefaultChatURL is the chat completion endpoint.
	DefaultChatURL = "https://api.openai.com/v1/chat/completions"
)

// Client generates text for a prompt. Implementations issue exactly one
// blocking request per call and are meant for serial use.
type Client interface {
	Generate(ctx context.Context, prompt, model string) (string, error)
	Variant() Variant
	Close() error
}

// Variant identifies the request/response shape a Client speaks.
type Variant int

const (
	VariantCompletion Variant = iota
	VariantChat
)

func (v Variant) String() string {
	switch v {
	case VariantCompletion:
		return "completion"
	case VariantChat:
		return "chat"
	default:
		return fmt.Sprintf("variant(%d)", int(v))
	}
}

// DefaultEndpoint returns the well-known URL for the chosen variant.
func DefaultEndpoint(useChat bool) string {
	if useChat {
		return DefaultChatURL
	}
	return DefaultCompletionURL
}

// Option customises a client built by Build.
type Option func(*session)

// WithHTTPClient replaces the default HTTP client. Its Timeout is the
// wall-clock bound reported by TimeoutError.
func WithHTTPClient(hc *http.Client) Option {
	return func(s *session) {
		if hc != nil {
			s.http = hc
		}
	}
}

// WithLogger routes request diagnostics to logger.
func WithLogger(logger logrus.FieldLogger) Option {
	return func(s *session) {
		if logger != nil {
			s.log = logger
		}
	}
}

// Build constructs a client for token and endpoint. useChat selects the chat
// variant; otherwise the legacy completion variant is used.
func Build(token, endpoint string, useChat bool, opts ...Option) Client {
	variant := VariantCompletion
	if useChat {
		variant = VariantChat
	}

	s := newSession(token, endpoint, variant, opts...)
	if useChat {
		return &ChatClient{session: s}
	}
	return &CompletionClient{session: s}
}

func discardLogger() logrus.FieldLogger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}
