package config

import (
	"errors"
	"os"

	"openai-cli/internal/client"
)

const (
	EnvToken      = "OPENAI_API_TOKEN"
	EnvAPIURL     = "OPENAI_API_URL"
	EnvModel      = "OPENAI_MODEL"
	EnvConfigPath = "OPENAI_CLI_CONFIG"

	DefaultModel = "gpt-3.5-turbo"
)

// ErrMissingToken means no credential was supplied by flag, environment or file.
var ErrMissingToken = errors.New("missing API token")

// LookupFunc reads an environment variable. os.LookupEnv satisfies it.
type LookupFunc func(key string) (string, bool)

// OSEnv reads the process environment.
func OSEnv() LookupFunc {
	return os.LookupEnv
}

// Overrides holds values given explicitly on the command line. Zero values
// mean "not given".
type Overrides struct {
	Token string
	Model string
	Chat  *bool
}

// Settings is everything needed to build a client.
type Settings struct {
	Token    string
	Endpoint string
	Model    string
	Chat     bool
}

// Resolve merges overrides, environment and file, in that order of
// precedence. The endpoint has no flag; it comes from OPENAI_API_URL, the
// file, or the default URL of the selected variant.
func Resolve(o Overrides, env LookupFunc, f File) (Settings, error) {
	token := firstNonEmpty(o.Token, lookup(env, EnvToken), f.Token)
	if token == "" {
		return Settings{}, ErrMissingToken
	}

	chat := true
	switch {
	case o.Chat != nil:
		chat = *o.Chat
	case f.Chat != nil:
		chat = *f.Chat
	}

	return Settings{
		Token:    token,
		Chat:     chat,
		Endpoint: firstNonEmpty(lookup(env, EnvAPIURL), f.APIURL, client.DefaultEndpoint(chat)),
		Model:    firstNonEmpty(o.Model, lookup(env, EnvModel), f.Model, DefaultModel),
	}, nil
}

func lookup(env LookupFunc, key string) string {
	if env == nil {
		return ""
	}
	v, _ := env(key)
	return v
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
