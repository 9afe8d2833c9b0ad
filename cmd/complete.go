package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"openai-cli/internal/prompt"
)

func newCompleteCmd(a *app) *cobra.Command {
	var (
		flags   generateFlags
		literal string
	)

	c := &cobra.Command{
		Use:   "complete [FILE...]",
		Short: "Print the response for a prompt read from files and/or --string",
		Long: `Build a prompt from the given files (in order, "-" reads standard input)
followed by the --string text, joined by newlines, and print the response.`,
		Example: `  openai-cli complete question.txt
  openai-cli complete -s "Explain goroutines in one sentence"
  git diff | openai-cli complete - -s "Write a commit message for this diff"`,
		RunE: func(c *cobra.Command, args []string) error {
			var text *string
			if c.Flags().Changed("string") {
				text = &literal
			}
			if len(args) == 0 && text == nil {
				return &UsageError{Message: "provide at least one FILE or --string"}
			}

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

			p, err := prompt.Collector{Stdin: a.streams.In}.Collect(args, text)
			if err != nil {
				return err
			}

			result, err := cl.Generate(c.Context(), p, settings.Model)
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(a.streams.Out, result)
			return err
		},
	}

	flags.bind(c)
	c.Flags().StringVarP(&literal, "string", "s", "", "prompt text appended after any files")
	return c
}
