// Package config loads the hyperkeys CLI configuration.
//
// The file is optional YAML:
//
//	dir: /srv/keys      # default store directory for this process
//	output: text        # text | json | yaml
//	encoding: hex       # hex | base58
//	log_level: warn     # zerolog level name
//
// Environment variables override the file: HYPERKEYS_DIR, HYPERKEYS_OUTPUT,
// HYPERKEYS_ENCODING and HYPERKEYS_LOG_LEVEL.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"

	"xdao.co/hyperkeys/keys"
)

// EnvConfig names the variable that points at the config file.
const EnvConfig = "HYPERKEYS_CONFIG"

const (
	OutputText = "text"
	OutputJSON = "json"
	OutputYAML = "yaml"
)

type Config struct {
	Dir      string `yaml:"dir"`
	Output   string `yaml:"output"`
	Encoding string `yaml:"encoding"`
	LogLevel string `yaml:"log_level"`
}

// DefaultPath returns $HYPERKEYS_CONFIG, or <home>/.config/hyperkeys/config.yaml.
func DefaultPath() (string, error) {
	if p := os.Getenv(EnvConfig); p != "" {
		return p, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "hyperkeys", "config.yaml"), nil
}

// Load reads the YAML file at path, applies environment overrides and
// validates the result.
//
// A missing file is not an error unless required is set; the zero Config
// plus environment overrides is used instead.
func Load(path string, required bool) (Config, error) {
	var cfg Config
	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case err == nil:
			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return Config{}, fmt.Errorf("config: parse %s: %w", path, err)
			}
		case errors.Is(err, fs.ErrNotExist) && !required:
		default:
			return Config{}, fmt.Errorf("config: read %s: %w", path, err)
		}
	}

	if v := os.Getenv("HYPERKEYS_DIR"); v != "" {
		cfg.Dir = v
	}
	if v := os.Getenv("HYPERKEYS_OUTPUT"); v != "" {
		cfg.Output = v
	}
	if v := os.Getenv("HYPERKEYS_ENCODING"); v != "" {
		cfg.Encoding = v
	}
	if v := os.Getenv("HYPERKEYS_LOG_LEVEL"); v != "" {
		cfg.LogLevel = v
	}
	return cfg, cfg.Validate()
}

func (c Config) Validate() error {
	switch c.Output {
	case "", OutputText, OutputJSON, OutputYAML:
	default:
		return fmt.Errorf("config: invalid output %q", c.Output)
	}
	enc, err := keys.ParseEncoding(c.Encoding)
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}
	if enc == keys.EncodingMnemonic {
		return errors.New("config: mnemonic is only valid for seeds, not as a default encoding")
	}
	if c.LogLevel != "" {
		if _, err := zerolog.ParseLevel(c.LogLevel); err != nil {
			return fmt.Errorf("config: invalid log_level %q", c.LogLevel)
		}
	}
	return nil
}

// StoreOptions returns keys.Options with the configured directory as the
// process-wide default; an explicit directory (e.g. a --dir flag) wins.
func (c Config) StoreOptions(explicitDir string, logger *zerolog.Logger) keys.Options {
	return keys.Options{
		Directory:        explicitDir,
		DefaultDirectory: c.Dir,
		Logger:           logger,
	}
}
