// Package logging builds the logrus logger used for diagnostics.
package logging

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/sirupsen/logrus"

	"openai-cli/internal/config"
)

// DefaultLevel keeps normal runs quiet; generated text goes to stdout.
const DefaultLevel = logrus.WarnLevel

// New returns a logger configured from cfg. stderr is the fallback output and
// must not be nil. The returned closer releases a log file, if one was opened.
func New(cfg config.LoggingConfig, stderr io.Writer) (*logrus.Logger, io.Closer, error) {
	logger := logrus.New()

	level := DefaultLevel
	if cfg.Level != "" {
		parsed, err := logrus.ParseLevel(cfg.Level)
		if err != nil {
			return nil, nil, fmt.Errorf("invalid log level %q: %w", cfg.Level, err)
		}
		level = parsed
	}
	logger.SetLevel(level)

	switch strings.ToLower(cfg.Format) {
	case "json":
		logger.SetFormatter(&logrus.JSONFormatter{})
	default:
		logger.SetFormatter(&logrus.TextFormatter{
			FullTimestamp: true,
		})
	}

	var closer io.Closer = nopCloser{}
	switch strings.ToLower(cfg.Output) {
	case "", "stderr":
		logger.SetOutput(stderr)
	case "stdout":
		logger.SetOutput(os.Stdout)
	default:
		file, err := os.OpenFile(cfg.Output, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			logger.SetOutput(stderr)
			logger.Warnf("Failed to open log file '%s', using stderr instead. Error: %v", cfg.Output, err)
		} else {
			logger.SetOutput(file)
			closer = file
		}
	}

	return logger, closer, nil
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
