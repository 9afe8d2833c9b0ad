package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"openai-cli/internal/config"
)

func newConfigCmd(a *app) *cobra.Command {
	c := &cobra.Command{
		Use:   "config",
		Short: "Inspect configuration file support",
	}

	c.AddCommand(&cobra.Command{
		Use:   "schema",
		Short: "Print the JSON Schema of the config file",
		Args:  cobra.NoArgs,
		RunE: func(c *cobra.Command, args []string) error {
			data, err := config.Schema()
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(a.streams.Out, string(data))
			return err
		},
	})

	c.AddCommand(&cobra.Command{
		Use:   "path",
		Short: "Print the default config file location",
		Args:  cobra.NoArgs,
		RunE: func(c *cobra.Command, args []string) error {
			path := config.DefaultPath(a.env)
			if path == "" {
				return fmt.Errorf("cannot determine config directory: neither XDG_CONFIG_HOME nor HOME is set")
			}
			_, err := fmt.Fprintln(a.streams.Out, path)
			return err
		},
	})

	return c
}
