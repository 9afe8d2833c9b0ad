package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type capturedRequest struct {
	method string
	header http.Header
	body   map[string]any
}

// stubServer answers every request with status and body and records what it received.
func stubServer(t *testing.T, status int, body string) (*httptest.Server, *[]capturedRequest) {
	t.Helper()
	var captured []capturedRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw, err := io.ReadAll(r.Body)
		assert.NoError(t, err)
		var decoded map[string]any
		assert.NoError(t, json.Unmarshal(raw, &decoded))
		captured = append(captured, capturedRequest{method: r.Method, header: r.Header.Clone(), body: decoded})

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = io.WriteString(w, body)
	}))
	t.Cleanup(srv.Close)
	return srv, &captured
}

func TestCompletionClient_Generate(t *testing.T) {
	srv, captured := stubServer(t, http.StatusOK, `{"choices":[{"text":" hello "}]}`)

	c := Build("secret", srv.URL, false)
	defer c.Close()

	got, err := c.Generate(context.Background(), "say hello", "code-davinci-002")
	require.NoError(t, err)
	assert.Equal(t, "hello", got)
	assert.Equal(t, VariantCompletion, c.Variant())

	require.Len(t, *captured, 1)
	req := (*captured)[0]
	assert.Equal(t, http.MethodPost, req.method)
	assert.Equal(t, "Bearer secret", req.header.Get("Authorization"))
	assert.Equal(t, "application/json", req.header.Get("Content-Type"))

	assert.Equal(t, "say hello", req.body["prompt"])
	assert.Equal(t, "code-davinci-002", req.body["model"])
	assert.EqualValues(t, 1000, req.body["max_tokens"])
	assert.EqualValues(t, 0, req.body["temperature"])
	assert.NotContains(t, req.body, "messages")
}

func TestChatClient_Generate(t *testing.T) {
	srv, captured := stubServer(t, http.StatusOK, `{"choices":[{"message":{"role":"assistant","content":" hi "}}]}`)

	c := Build("secret", srv.URL, true)
	defer c.Close()

	got, err := c.Generate(context.Background(), "greet me", "gpt-3.5-turbo")
	require.NoError(t, err)
	assert.Equal(t, "hi", got)
	assert.Equal(t, VariantChat, c.Variant())

	require.Len(t, *captured, 1)
	req := (*captured)[0]
	assert.Equal(t, "Bearer secret", req.header.Get("Authorization"))
	assert.Equal(t, "gpt-3.5-turbo", req.body["model"])
	assert.EqualValues(t, 0, req.body["temperature"])
	assert.NotContains(t, req.body, "prompt")
	assert.NotContains(t, req.body, "max_tokens")

	messages, ok := req.body["messages"].([]any)
	require.True(t, ok, "messages should be an array")
	require.Len(t, messages, 1)
	assert.Equal(t, map[string]any{"role": "user", "content": "greet me"}, messages[0])
}

func TestBuild_VariantIsFixedAcrossCalls(t *testing.T) {
	prompts := []string{"", "one", "multi\nline\nprompt"}

	for _, useChat := range []bool{false, true} {
		body := `{"choices":[{"text":"x"}]}`
		if useChat {
			body = `{"choices":[{"message":{"content":"x"}}]}`
		}
		srv, captured := stubServer(t, http.StatusOK, body)
		c := Build("tok", srv.URL, useChat)

		for _, p := range prompts {
			_, err := c.Generate(context.Background(), p, "m")
			require.NoError(t, err)
		}

		require.Len(t, *captured, len(prompts))
		for i, req := range *captured {
			if useChat {
				assert.Contains(t, req.body, "messages", "call %d", i)
				assert.NotContains(t, req.body, "prompt", "call %d", i)
			} else {
				assert.Contains(t, req.body, "prompt", "call %d", i)
				assert.NotContains(t, req.body, "messages", "call %d", i)
				assert.Equal(t, prompts[i], req.body["prompt"])
			}
		}
		require.NoError(t, c.Close())
	}
}

func TestGenerate_HTTPError(t *testing.T) {
	body := `{"error":{"message":"Incorrect API key provided","type":"invalid_request_error"}}`

	for _, useChat := range []bool{false, true} {
		srv, _ := stubServer(t, http.StatusUnauthorized, body)
		c := Build("bad", srv.URL, useChat)

		got, err := c.Generate(context.Background(), "p", "m")
		require.Error(t, err)
		assert.Empty(t, got)

		var httpErr *HTTPError
		require.True(t, errors.As(err, &httpErr), "expected HTTPError, got %T", err)
		assert.Equal(t, http.StatusUnauthorized, httpErr.StatusCode)
		assert.Equal(t, body, httpErr.Body)
		assert.Equal(t, "Incorrect API key provided", httpErr.APIMessage)
		assert.Equal(t, "invalid_request_error", httpErr.APIType)
		assert.Contains(t, err.Error(), "401")
	}
}

func TestGenerate_HTTPErrorPlainBody(t *testing.T) {
	srv, _ := stubServer(t, http.StatusBadGateway, `"upstream down"`)
	c := Build("tok", srv.URL, true)

	_, err := c.Generate(context.Background(), "p", "m")

	var httpErr *HTTPError
	require.ErrorAs(t, err, &httpErr)
	assert.Equal(t, http.StatusBadGateway, httpErr.StatusCode)
	assert.Equal(t, `"upstream down"`, httpErr.Body)
	assert.Empty(t, httpErr.APIMessage)
}

func TestGenerate_MalformedResponse(t *testing.T) {
	tests := []struct {
		name    string
		useChat bool
		body    string
		field   string
	}{
		{"completion empty choices", false, `{"choices":[]}`, "choices"},
		{"completion no choices", false, `{}`, "choices"},
		{"completion missing text", false, `{"choices":[{"index":0}]}`, "choices[0].text"},
		{"completion null text", false, `{"choices":[{"text":null}]}`, "choices[0].text"},
		{"completion text not string", false, `{"choices":[{"text":42}]}`, ""},
		{"completion not json", false, `<html>oops</html>`, ""},
		{"chat empty choices", true, `{"choices":[]}`, "choices"},
		{"chat missing message", true, `{"choices":[{"index":0}]}`, "choices[0].message"},
		{"chat missing content", true, `{"choices":[{"message":{"role":"assistant"}}]}`, "choices[0].message.content"},
		{"chat content not string", true, `{"choices":[{"message":{"content":["a"]}}]}`, ""},
		{"chat completion shape", true, `{"choices":[{"text":"hi"}]}`, "choices[0].message"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv, _ := stubServer(t, http.StatusOK, tt.body)
			c := Build("tok", srv.URL, tt.useChat)

			got, err := c.Generate(context.Background(), "p", "m")
			require.Error(t, err)
			assert.Empty(t, got)
			assert.ErrorIs(t, err, ErrMalformedResponse)

			var malformed *MalformedResponseError
			require.ErrorAs(t, err, &malformed)
			assert.Equal(t, tt.field, malformed.Field)
		})
	}
}

func TestGenerate_Timeout(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	t.Cleanup(func() {
		close(release)
		srv.Close()
	})

	hc := &http.Client{Timeout: 50 * time.Millisecond}
	c := Build("tok", srv.URL, true, WithHTTPClient(hc))

	_, err := c.Generate(context.Background(), "p", "m")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrTimeout)

	var timeoutErr *TimeoutError
	require.ErrorAs(t, err, &timeoutErr)
	assert.Equal(t, 50*time.Millisecond, timeoutErr.Timeout)
}

func TestGenerate_ContextDeadline(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))
	t.Cleanup(srv.Close)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := Build("tok", srv.URL, false).Generate(ctx, "p", "m")
	assert.ErrorIs(t, err, ErrTimeout)
}

func TestGenerate_ContextCanceledIsNotTimeout(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
	}))
	t.Cleanup(srv.Close)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := Build("tok", srv.URL, true).Generate(ctx, "p", "m")
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
	assert.NotErrorIs(t, err, ErrTimeout)
	assert.Zero(t, hits.Load())
}

func TestGenerate_ConnectionRefused(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	_, err := Build("tok", url, false).Generate(context.Background(), "p", "m")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "completion request failed")

	var httpErr *HTTPError
	assert.False(t, errors.As(err, &httpErr))
}

func TestDefaultEndpoint(t *testing.T) {
	assert.Equal(t, "https://api.openai.com/v1/chat/completions", DefaultEndpoint(true))
	assert.Equal(t, "https://api.openai.com/v1/completions", DefaultEndpoint(false))
}

func TestVariant_String(t *testing.T) {
	assert.Equal(t, "completion", VariantCompletion.String())
	assert.Equal(t, "chat", VariantChat.String())
	assert.Equal(t, "variant(7)", Variant(7).String())
}

func TestBuild_DefaultTimeout(t *testing.T) {
	c := Build("tok", DefaultChatURL, true)
	chat, ok := c.(*ChatClient)
	require.True(t, ok)
	assert.Equal(t, 600*time.Second, chat.http.Timeout)
}

func TestWithLogger(t *testing.T) {
	srv, _ := stubServer(t, http.StatusOK, `{"choices":[{"text":"ok"}]}`)

	var buf bytes.Buffer
	logger := logrus.New()
	logger.SetOutput(&buf)
	logger.SetLevel(logrus.DebugLevel)
	logger.SetFormatter(&logrus.JSONFormatter{})

	c := Build("do-not-log", srv.URL, false, WithLogger(logger))
	_, err := c.Generate(context.Background(), "private prompt", "m")
	require.NoError(t, err)

	out := buf.String()
	assert.Contains(t, out, `"msg":"sending request"`)
	assert.Contains(t, out, `"variant":"completion"`)
	assert.Contains(t, out, `"status":200`)
	assert.NotContains(t, out, "do-not-log")
	assert.NotContains(t, out, "private prompt")
}
