package cmd

import (
	"github.com/spf13/cobra"

	"openai-cli/internal/mockapi"
)

func newMockServerCmd(a *app) *cobra.Command {
	var (
		port  int
		reply string
	)

	c := &cobra.Command{
		Use:   "mock-server",
		Short: "Serve a local fake of the completion and chat endpoints",
		Long: `Run an OpenAI-compatible fake API on 127.0.0.1 for offline use. Any bearer
token is accepted. Responses echo the prompt back unless --reply is given.`,
		Args: cobra.NoArgs,
		RunE: func(c *cobra.Command, args []string) error {
			_, logger, cleanup, err := a.setup()
			if err != nil {
				return err
			}
			defer cleanup()

			srv, err := mockapi.New(mockapi.Options{
				Port:   port,
				Reply:  reply,
				Logger: logger,
				Out:    a.streams.Out,
			})
			if err != nil {
				return &UsageError{Message: err.Error()}
			}
			return srv.Run(c.Context())
		},
	}

	c.Flags().IntVar(&port, "port", 8080, "port to listen on (0 picks a free port)")
	c.Flags().StringVar(&reply, "reply", "", "fixed text to return instead of echoing the prompt")
	return c
}
