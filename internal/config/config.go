package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"
)

const (
	formatText = "text"
	formatJSON = "json"

	appDir          = "openai-cli"
	defaultFileName = "config.yaml"
)

// File is the optional on-disk configuration. Every field is a fallback for
// the corresponding flag or environment variable.
type File struct {
	Token   string        `yaml:"token" toml:"token" json:"token,omitempty" jsonschema:"description=Bearer token used when neither --token nor OPENAI_API_TOKEN is set"`
	Model   string        `yaml:"model" toml:"model" json:"model,omitempty" jsonschema:"description=Default model identifier"`
	APIURL  string        `yaml:"api_url" toml:"api_url" json:"api_url,omitempty" jsonschema:"description=Endpoint URL used when OPENAI_API_URL is not set,format=uri"`
	Chat    *bool         `yaml:"chat" toml:"chat" json:"chat,omitempty" jsonschema:"description=Use the chat endpoint (true) or the legacy completion endpoint (false)"`
	Logging LoggingConfig `yaml:"logging" toml:"logging" json:"logging,omitempty"`
}

// LoggingConfig controls diagnostic output.
type LoggingConfig struct {
	Level  string `yaml:"level" toml:"level" json:"level,omitempty" jsonschema:"enum=panic,enum=fatal,enum=error,enum=warn,enum=warning,enum=info,enum=debug,enum=trace"`
	Format string `yaml:"format" toml:"format" json:"format,omitempty" jsonschema:"enum=text,enum=json"`
	Output string `yaml:"output" toml:"output" json:"output,omitempty" jsonschema:"description=stderr or stdout or a file path"`
}

// LoadFile reads a YAML (.yaml, .yml) or TOML (.toml) file and validates it.
func LoadFile(path string) (File, error) {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return File{}, fmt.Errorf("resolve config path: %w", err)
	}

	data, err := os.ReadFile(absPath)
	if err != nil {
		return File{}, fmt.Errorf("read config file %q: %w", absPath, err)
	}

	var cfg File
	switch strings.ToLower(filepath.Ext(absPath)) {
	case ".toml":
		if err := toml.Unmarshal(data, &cfg); err != nil {
			return File{}, fmt.Errorf("parse config file %q: %w", absPath, err)
		}
	default:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return File{}, fmt.Errorf("parse config file %q: %w", absPath, err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return File{}, fmt.Errorf("config file %q: %w", absPath, err)
	}
	return cfg, nil
}

// Load returns the configuration from an explicit path, the path named by
// OPENAI_CLI_CONFIG, or the default location. Only the default location may
// be absent.
func Load(explicit string, env LookupFunc) (File, error) {
	if explicit != "" {
		return LoadFile(explicit)
	}
	if path := lookup(env, EnvConfigPath); path != "" {
		return LoadFile(path)
	}

	path := DefaultPath(env)
	if path == "" {
		return File{}, nil
	}
	cfg, err := LoadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return File{}, nil
	}
	return cfg, err
}

// DefaultPath is $XDG_CONFIG_HOME/openai-cli/config.yaml, falling back to
// $HOME/.config. It is empty when neither variable is set.
func DefaultPath(env LookupFunc) string {
	if dir := lookup(env, "XDG_CONFIG_HOME"); dir != "" {
		return filepath.Join(dir, appDir, defaultFileName)
	}
	if home := lookup(env, "HOME"); home != "" {
		return filepath.Join(home, ".config", appDir, defaultFileName)
	}
	return ""
}

// Validate performs sanity checks on the values that are set.
func (f File) Validate() error {
	if f.APIURL != "" {
		u, err := url.Parse(f.APIURL)
		if err != nil {
			return fmt.Errorf("api_url: %w", err)
		}
		if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			return fmt.Errorf("api_url %q must be an absolute http or https URL", f.APIURL)
		}
	}
	return f.Logging.Validate()
}

// Validate checks the level and format names.
func (l LoggingConfig) Validate() error {
	if l.Level != "" {
		if _, err := logrus.ParseLevel(l.Level); err != nil {
			return fmt.Errorf("logging.level: %w", err)
		}
	}
	switch strings.ToLower(l.Format) {
	case "", formatText, formatJSON:
	default:
		return fmt.Errorf("logging.format %q must be one of %q or %q", l.Format, formatText, formatJSON)
	}
	return nil
}
