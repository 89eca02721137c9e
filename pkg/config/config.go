// Package config loads vartrans settings from a YAML file, an optional
// .env file and VARTRANS_* environment variables, in that order of
// increasing precedence.
package config

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"

	"github.com/dasmlab/vartrans/pkg/translate"
)

// EnvPrefix prefixes every environment override, e.g. VARTRANS_ENGINE.
const EnvPrefix = "VARTRANS"

// Config is the full set of settings.
type Config struct {
	// Engine is the translation engine id. Unknown ids fall back to google.
	Engine   string `yaml:"engine" envconfig:"ENGINE"`
	LogLevel string `yaml:"log_level" envconfig:"LOG_LEVEL"`
	// LogFile receives logs while the terminal UI owns the screen. Empty
	// discards them in that mode.
	LogFile string `yaml:"log_file" envconfig:"LOG_FILE"`

	GoogleURL            string `yaml:"google_url" envconfig:"GOOGLE_URL"`
	LibreTranslateURL    string `yaml:"libretranslate_url" envconfig:"LIBRETRANSLATE_URL"`
	LibreTranslateAPIKey string `yaml:"libretranslate_api_key" envconfig:"LIBRETRANSLATE_API_KEY"`
	ArgosURL             string `yaml:"argos_url" envconfig:"ARGOS_URL"`
	DeepLAPIKey          string `yaml:"deepl_api_key" envconfig:"DEEPL_API_KEY"`
	DeepLURL             string `yaml:"deepl_url" envconfig:"DEEPL_URL"`
	// RemoteAddr is the address of a translation gateway. The remote
	// engine is only available when it is set.
	RemoteAddr string `yaml:"remote_addr" envconfig:"REMOTE_ADDR"`
}

// Default returns the built-in settings.
func Default() Config {
	return Config{
		Engine:   string(translate.DefaultEngine),
		LogLevel: "info",
	}
}

// DefaultPath is $XDG_CONFIG_HOME/vartrans/config.yaml, or the platform
// equivalent.
func DefaultPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "config.yaml"
	}
	return filepath.Join(dir, "vartrans", "config.yaml")
}

// Load reads path (a missing file is not an error), then envFile (ignored
// when missing), then the environment.
func Load(path, envFile string) (Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case errors.Is(err, fs.ErrNotExist):
		case err != nil:
			return Config{}, fmt.Errorf("read config %s: %w", path, err)
		default:
			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return Config{}, fmt.Errorf("parse config %s: %w", path, err)
			}
		}
	}

	if envFile != "" {
		// Variables already set in the process win over the file.
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return Config{}, fmt.Errorf("load env file %s: %w", envFile, err)
		}
	}

	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return Config{}, fmt.Errorf("process environment: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("configuration validation failed: %w", err)
	}
	return cfg, nil
}

// Validate checks the settings.
func (c Config) Validate() error {
	if strings.TrimSpace(c.Engine) == "" {
		return fmt.Errorf("engine is required")
	}
	if _, err := logrus.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("log_level: %w", err)
	}
	return nil
}

// Translate returns the engine settings.
func (c Config) Translate(logger *logrus.Logger) translate.Config {
	return translate.Config{
		GoogleURL:            c.GoogleURL,
		LibreTranslateURL:    c.LibreTranslateURL,
		LibreTranslateAPIKey: c.LibreTranslateAPIKey,
		ArgosURL:             c.ArgosURL,
		DeepLAPIKey:          c.DeepLAPIKey,
		DeepLURL:             c.DeepLURL,
		RemoteAddr:           c.RemoteAddr,
		Logger:               logger,
	}
}

// NewLogger builds the process logger. With quiet set (the terminal UI is
// running) output goes to LogFile, or nowhere. The returned closer releases
// the log file.
func (c Config) NewLogger(quiet bool) (*logrus.Logger, io.Closer, error) {
	logger := logrus.New()
	logger.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: time.RFC3339,
	})

	level, err := logrus.ParseLevel(c.LogLevel)
	if err != nil {
		level = logrus.InfoLevel
	}
	logger.SetLevel(level)

	var closer io.Closer = nopCloser{}
	switch {
	case c.LogFile != "":
		f, err := os.OpenFile(c.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return nil, nil, fmt.Errorf("open log file: %w", err)
		}
		logger.SetOutput(f)
		logger.SetFormatter(&logrus.TextFormatter{
			FullTimestamp:   true,
			TimestampFormat: time.RFC3339,
			DisableColors:   true,
		})
		closer = f
	case quiet:
		logger.SetOutput(io.Discard)
	default:
		logger.SetOutput(os.Stderr)
	}
	return logger, closer, nil
}

// Save writes cfg to path as YAML, creating the directory.
func Save(path string, cfg Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("encode config: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("write config %s: %w", path, err)
	}
	return nil
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
