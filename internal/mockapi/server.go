// Package mockapi serves a local stand-in for the OpenAI completion and chat
// endpoints. Point OPENAI_API_URL at it to exercise the CLI offline.
package mockapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync/atomic"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/sirupsen/logrus"
)

const (
	maxBodyBytes        = 1 << 20 // 1 MiB
	shutdownGracePeriod = 10 * time.Second
	readTimeout         = 30 * time.Second
	writeTimeout        = 45 * time.Second
	idleTimeout         = 120 * time.Second

	bindHost = "127.0.0.1"
)

// Options configures the mock server.
type Options struct {
	// Port to listen on in Run. Zero picks a free port.
	Port int
	// Reply is returned as the generated text. Empty echoes the prompt back.
	Reply string
	// Logger receives request logs. Nil discards them.
	Logger logrus.FieldLogger
	// Out receives the startup banner. Nil suppresses it.
	Out io.Writer
}

// Server is an echo application speaking the OpenAI wire format.
type Server struct {
	opts    Options
	app     *echo.Echo
	log     logrus.FieldLogger
	address string
	calls   atomic.Int64
}

// New constructs a server wired with routing and middleware.
func New(opts Options) (*Server, error) {
	if opts.Port < 0 || opts.Port > 65535 {
		return nil, fmt.Errorf("port %d must be a valid TCP port", opts.Port)
	}

	logger := opts.Logger
	if logger == nil {
		discard := logrus.New()
		discard.SetOutput(io.Discard)
		logger = discard
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.HTTPErrorHandler = openAIErrorHandler

	e.Pre(middleware.RemoveTrailingSlash())
	e.Use(middleware.Recover())
	e.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogLatency: true,
		LogMethod:  true,
		LogURI:     true,
		LogStatus:  true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			logger.WithFields(logrus.Fields{
				"method":     v.Method,
				"uri":        v.URI,
				"status":     v.Status,
				"latency_ms": v.Latency.Milliseconds(),
			}).Info("request")
			return nil
		},
	}))

	srv := &Server{
		opts:    opts,
		app:     e,
		log:     logger,
		address: fmt.Sprintf("%s:%d", bindHost, opts.Port),
	}

	srv.registerRoutes()

	return srv, nil
}

// Handler exposes the server for use with httptest.
func (s *Server) Handler() http.Handler {
	return s.app
}

// Calls reports how many requests reached the /v1 API, authorised or not.
func (s *Server) Calls() int64 {
	return s.calls.Load()
}

// Run starts the HTTP server and blocks until the context is cancelled.
func (s *Server) Run(ctx context.Context) error {
	s.log.WithField("addr", s.address).Info("starting mock server")

	httpServer := &http.Server{
		Addr:         s.address,
		Handler:      s.app,
		ReadTimeout:  readTimeout,
		WriteTimeout: writeTimeout,
		IdleTimeout:  idleTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		if err := s.app.StartServer(httpServer); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	if s.opts.Out != nil {
		go s.printBannerWhenListening(ctx)
	}

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownGracePeriod)
		defer cancel()
		if err := s.app.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
		s.log.Info("mock server shutdown complete")
		return nil
	case err := <-errCh:
		return err
	}
}

// Addr returns the bound address once Run is listening, or "".
func (s *Server) Addr() string {
	if addr := s.app.ListenerAddr(); addr != nil {
		return addr.String()
	}
	return ""
}

func (s *Server) registerRoutes() {
	s.app.GET("/health", s.handleHealth)

	v1 := s.app.Group("/v1", s.countCalls, requireBearer)
	v1.POST("/completions", s.handleCompletions)
	v1.POST("/chat/completions", s.handleChatCompletions)
}

func (s *Server) handleHealth(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) countCalls(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		s.calls.Add(1)
		return next(c)
	}
}

func requireBearer(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		auth := c.Request().Header.Get(echo.HeaderAuthorization)
		token, ok := strings.CutPrefix(auth, "Bearer ")
		if !ok || strings.TrimSpace(token) == "" {
			return requestError{
				Status:  http.StatusUnauthorized,
				Message: "You didn't provide an API key. You need to provide your API key in an Authorization header using Bearer auth.",
				Type:    "invalid_request_error",
			}
		}
		return next(c)
	}
}

func (s *Server) printBannerWhenListening(ctx context.Context) {
	ticker := time.NewTicker(10 * time.Millisecond)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if addr := s.Addr(); addr != "" {
				printStartupBanner(s.opts.Out, addr)
				return
			}
		}
	}
}

func decodeRequestBody[T any](c echo.Context, target *T) error {
	req := c.Request()
	defer req.Body.Close()

	req.Body = http.MaxBytesReader(c.Response(), req.Body, maxBodyBytes)

	decoder := json.NewDecoder(req.Body)
	if err := decoder.Decode(target); err != nil {
		if errors.Is(err, io.EOF) {
			return requestError{
				Status:  http.StatusBadRequest,
				Message: "request body is required",
				Type:    "invalid_request_error",
			}
		}
		return requestError{
			Status:  http.StatusBadRequest,
			Message: fmt.Sprintf("invalid JSON payload: %v", err),
			Type:    "invalid_request_error",
		}
	}

	if err := decoder.Decode(&struct{}{}); err != io.EOF {
		return requestError{
			Status:  http.StatusBadRequest,
			Message: "request body must contain a single JSON object",
			Type:    "invalid_request_error",
		}
	}
	return nil
}

type requestError struct {
	Status  int
	Message string
	Type    string
	Code    string
}

func (e requestError) Error() string {
	return e.Message
}

type errorBody struct {
	Error struct {
		Message string `json:"message"`
		Type    string `json:"type"`
		Code    string `json:"code,omitempty"`
	} `json:"error"`
}

func writeError(c echo.Context, status int, message, errType, code string) error {
	var payload errorBody
	payload.Error.Message = message
	payload.Error.Type = errType
	payload.Error.Code = code
	return c.JSON(status, payload)
}

func openAIErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	var reqErr requestError
	if errors.As(err, &reqErr) {
		_ = writeError(c, reqErr.Status, reqErr.Message, reqErr.Type, reqErr.Code)
		return
	}

	var he *echo.HTTPError
	if errors.As(err, &he) {
		_ = writeError(c, he.Code, fmt.Sprint(he.Message), "invalid_request_error", "")
		return
	}

	_ = writeError(c, http.StatusInternalServerError, "internal server error", "server_error", "")
}

func printStartupBanner(w io.Writer, addr string) {
	fmt.Fprintln(w)
	fmt.Fprintln(w, "openai-cli mock server ready")
	fmt.Fprintf(w, "Listening on http://%s\n", addr)
	fmt.Fprintln(w, "Endpoints:")
	fmt.Fprintln(w, "  GET  /health")
	fmt.Fprintln(w, "  POST /v1/completions")
	fmt.Fprintln(w, "  POST /v1/chat/completions")
	fmt.Fprintf(w, "Example:\n  OPENAI_API_URL=http://%s/v1/chat/completions OPENAI_API_TOKEN=dummy openai-cli complete -s \"hello\"\n\n", addr)
}
