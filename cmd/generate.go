package cmd

import (
	"errors"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"openai-cli/internal/client"
	"openai-cli/internal/config"
)

const missingTokenMessage = "Either --token option or " + config.EnvToken + " environment variable must be provided"

// generateFlags are the options shared by commands that talk to the API.
type generateFlags struct {
	token      string
	model      string
	chat       bool
	completion bool
}

func (f *generateFlags) bind(c *cobra.Command) {
	c.Flags().StringVarP(&f.token, "token", "t", "", "API token (default $"+config.EnvToken+")")
	c.Flags().StringVarP(&f.model, "model", "m", "", "model identifier (default $"+config.EnvModel+" or "+config.DefaultModel+")")
	c.Flags().BoolVar(&f.chat, "chat", true, "use the chat completion API")
	c.Flags().BoolVarP(&f.completion, "completion", "c", false, "use the legacy completion API (e.g. code-davinci-002)")
	c.MarkFlagsMutuallyExclusive("chat", "completion")
}

func (f *generateFlags) overrides(c *cobra.Command) config.Overrides {
	o := config.Overrides{Token: f.token, Model: f.model}
	switch {
	case c.Flags().Changed("completion"):
		chat := !f.completion
		o.Chat = &chat
	case c.Flags().Changed("chat"):
		chat := f.chat
		o.Chat = &chat
	}
	return o
}

// newClient resolves settings and builds a client. The credential is checked
// here, before anything touches the network.
func (a *app) newClient(c *cobra.Command, flags *generateFlags, file config.File, logger *logrus.Logger) (client.Client, config.Settings, error) {
	settings, err := config.Resolve(flags.overrides(c), a.env, file)
	if err != nil {
		if errors.Is(err, config.ErrMissingToken) {
			return nil, config.Settings{}, &UsageError{Message: missingTokenMessage}
		}
		return nil, config.Settings{}, err
	}

	logger.WithFields(logrus.Fields{
		"endpoint": settings.Endpoint,
		"model":    settings.Model,
		"chat":     settings.Chat,
	}).Debug("resolved settings")

	cl := client.Build(settings.Token, settings.Endpoint, settings.Chat, client.WithLogger(logger))
	return cl, settings, nil
}
