package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"openai-cli/internal/config"
	"openai-cli/internal/logging"
)

// Version is stamped at build time.
var Version = "dev"

// IOStreams are the standard streams a command reads from and writes to.
type IOStreams struct {
	In  io.Reader
	Out io.Writer
	Err io.Writer
}

// UsageError reports a problem with how the command was invoked. main exits
// with status 2 for it.
type UsageError struct {
	Message string
}

func (e *UsageError) Error() string {
	return e.Message
}

// app holds per-invocation state shared by subcommands.
type app struct {
	streams    IOStreams
	env        config.LookupFunc
	configPath string
	logLevel   string
}

// Execute runs the CLI with the process streams and environment.
func Execute(ctx context.Context, args []string) error {
	streams := IOStreams{In: os.Stdin, Out: os.Stdout, Err: os.Stderr}
	return run(ctx, args, streams, config.OSEnv())
}

func run(ctx context.Context, args []string, streams IOStreams, env config.LookupFunc) error {
	root := newRootCmd(&app{streams: streams, env: env})
	root.SetArgs(args)
	return root.ExecuteContext(ctx)
}

func newRootCmd(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:     "openai-cli",
		Version: Version,
		Short:   "Send prompts to an OpenAI-compatible completion or chat API",
		Long: `openai-cli sends a prompt to an OpenAI-compatible HTTP API and prints the generated text.

The chat endpoint is used by default; pass --completion for models served by the
legacy completion endpoint (e.g. code-davinci-002).

Environment:
  OPENAI_API_TOKEN   bearer token used when --token is not given
  OPENAI_API_URL     endpoint URL overriding the default for the selected API
  OPENAI_MODEL       model used when --model is not given
  OPENAI_CLI_CONFIG  path to a YAML or TOML config file`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.SetIn(a.streams.In)
	root.SetOut(a.streams.Out)
	root.SetErr(a.streams.Err)
	root.SetFlagErrorFunc(func(c *cobra.Command, err error) error {
		return &UsageError{Message: err.Error()}
	})

	root.PersistentFlags().StringVar(&a.configPath, "config", "", "path to a YAML or TOML config file")
	root.PersistentFlags().StringVar(&a.logLevel, "log-level", "", "log level (trace, debug, info, warn, error)")

	root.AddCommand(
		newCompleteCmd(a),
		newReplCmd(a),
		newMockServerCmd(a),
		newConfigCmd(a),
	)
	return root
}

// setup loads the config file and builds the logger. The returned cleanup
// must be called once the command is done.
func (a *app) setup() (config.File, *logrus.Logger, func(), error) {
	file, err := config.Load(a.configPath, a.env)
	if err != nil {
		return config.File{}, nil, nil, &UsageError{Message: err.Error()}
	}

	logCfg := file.Logging
	if a.logLevel != "" {
		logCfg.Level = a.logLevel
	}

	logger, closer, err := logging.New(logCfg, a.streams.Err)
	if err != nil {
		return config.File{}, nil, nil, &UsageError{Message: err.Error()}
	}

	cleanup := func() {
		if err := closer.Close(); err != nil {
			fmt.Fprintf(a.streams.Err, "close log output: %v\n", err)
		}
	}
	return file, logger, cleanup, nil
}

// IsUsageError reports whether err should be treated as an invocation error.
func IsUsageError(err error) bool {
	var usageErr *UsageError
	return errors.As(err, &usageErr)
}
