package cmd

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
)

const (
	replPrompt       = "Prompt: "
	maxReplLineBytes = 1 << 20
)

func newReplCmd(a *app) *cobra.Command {
	var flags generateFlags

	c := &cobra.Command{
		Use:   "repl",
		Short: "Start an interactive prompt session",
		Long: `Read prompts from standard input one line at a time and print each response
followed by a blank line. Each prompt is sent on its own; no conversation history
is kept. End the session with Ctrl-D.`,
		Args: cobra.NoArgs,
		RunE: func(c *cobra.Command, args []string) error {
			file, logger, cleanup, err := a.setup()
			if err != nil {
				return err
			}
			defer cleanup()

			cl, settings, err := a.newClient(c, &flags, file, logger)
			if err != nil {
				return err
			}
			defer cl.Close()

			ctx := c.Context()
			lines := readLines(ctx, a.streams.In)

			for {
				fmt.Fprint(a.streams.Out, replPrompt)

				var line lineResult
				select {
				case <-ctx.Done():
					fmt.Fprintln(a.streams.Out)
					return ctx.Err()
				case l, ok := <-lines:
					if !ok {
						fmt.Fprintln(a.streams.Out)
						return nil
					}
					line = l
				}
				if line.err != nil {
					return fmt.Errorf("read prompt: %w", line.err)
				}
				if strings.TrimSpace(line.text) == "" {
					continue
				}

				result, err := cl.Generate(ctx, line.text, settings.Model)
				if err != nil {
					if errors.Is(err, context.Canceled) {
						return err
					}
					logger.WithError(err).Debug("generate failed")
					fmt.Fprintf(a.streams.Err, "error: %v\n", err)
					continue
				}

				fmt.Fprintln(a.streams.Out, result)
				fmt.Fprintln(a.streams.Out)
			}
		},
	}

	flags.bind(c)
	return c
}

type lineResult struct {
	text string
	err  error
}

// readLines feeds lines from r so the session can stop on cancellation while
// blocked on input. The channel is closed at EOF.
func readLines(ctx context.Context, r io.Reader) <-chan lineResult {
	out := make(chan lineResult)
	go func() {
		defer close(out)
		scanner := bufio.NewScanner(r)
		scanner.Buffer(make([]byte, 0, 64*1024), maxReplLineBytes)
		for scanner.Scan() {
			select {
			case out <- lineResult{text: scanner.Text()}:
			case <-ctx.Done():
				return
			}
		}
		if err := scanner.Err(); err != nil {
			select {
			case out <- lineResult{err: err}:
			case <-ctx.Done():
			}
		}
	}()
	return out
}
