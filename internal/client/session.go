package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"openai-cli/internal/models"
)

const (
	contentTypeJSON   = "application/json"
	userAgent         = "openai-cli/0.1"
	maxResponseBytes  = 32 << 20 // 32 MiB
	maxErrorBodyBytes = 64 << 10 // 64 KiB
)

// session carries the immutable per-client state shared by both variants.
type session struct {
	token    string
	endpoint string
	variant  Variant
	http     *http.Client
	log      logrus.FieldLogger
}

func newSession(token, endpoint string, variant Variant, opts ...Option) *session {
	s := &session{
		token:    token,
		endpoint: endpoint,
		variant:  variant,
		log:      discardLogger(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.http == nil {
		s.http = newHTTPClient(DefaultTimeout)
	}
	return s
}

// Variant reports the shape fixed at construction.
func (s *session) Variant() Variant {
	return s.variant
}

// Close releases pooled connections held by the client.
func (s *session) Close() error {
	s.http.CloseIdleConnections()
	return nil
}

// post sends payload to the endpoint and decodes a 2xx body into target.
func (s *session) post(ctx context.Context, model string, payload, target any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("construct request: %w", err)
	}

	req.Header.Set("Content-Type", contentTypeJSON)
	req.Header.Set("Accept", contentTypeJSON)
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Authorization", "Bearer "+s.token)

	logger := s.log.WithFields(logrus.Fields{
		"variant":  s.variant.String(),
		"endpoint": s.endpoint,
		"model":    model,
	})
	logger.Debug("sending request")

	start := time.Now()
	resp, err := s.http.Do(req)
	if err != nil {
		return s.transportError(ctx, err)
	}
	defer resp.Body.Close()

	logger.WithFields(logrus.Fields{
		"status":     resp.StatusCode,
		"latency_ms": time.Since(start).Milliseconds(),
	}).Debug("response received")

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return parseHTTPError(resp)
	}

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return s.transportError(ctx, err)
	}

	if err := json.Unmarshal(raw, target); err != nil {
		return &MalformedResponseError{Reason: "response is not valid JSON for this endpoint", Err: err}
	}
	return nil
}

func (s *session) transportError(ctx context.Context, err error) error {
	if isTimeout(ctx, err) {
		return &TimeoutError{Timeout: s.http.Timeout, Err: err}
	}
	return fmt.Errorf("%s request failed: %w", s.variant, err)
}

func isTimeout(ctx context.Context, err error) bool {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}

func parseHTTPError(resp *http.Response) error {
	httpErr := &HTTPError{
		StatusCode: resp.StatusCode,
		Status:     resp.Status,
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxErrorBodyBytes))
	if err != nil {
		httpErr.Body = fmt.Sprintf("<failed to read body: %v>", err)
		return httpErr
	}
	httpErr.Body = strings.TrimSpace(string(body))

	var apiErr models.ErrorResponse
	if err := json.Unmarshal(body, &apiErr); err == nil && apiErr.Error.Message != "" {
		httpErr.APIMessage = apiErr.Error.Message
		httpErr.APIType = apiErr.Error.Type
	}
	return httpErr
}
