package main

import (
	"fmt"
	"io"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/dasmlab/vartrans/pkg/config"
	"github.com/dasmlab/vartrans/pkg/status"
	"github.com/dasmlab/vartrans/pkg/translate"
)

// version is set at build time via -ldflags.
var version = "dev"

var rootFlags struct {
	configPath string
	envFile    string
	engine     string
	logLevel   string
	logFile    string
}

var rootCmd = &cobra.Command{
	Use:   "vartrans",
	Short: "Translate and re-case variable names",
	Long: "vartrans translates identifiers between Chinese and English and converts\n" +
		"them between naming conventions, with an interactive picker to choose the result.",
	SilenceUsage: true,
	CompletionOptions: cobra.CompletionOptions{
		HiddenDefaultCmd: true,
	},
}

func init() {
	f := rootCmd.PersistentFlags()
	f.StringVar(&rootFlags.configPath, "config", config.DefaultPath(), "Path to the YAML config file")
	f.StringVar(&rootFlags.envFile, "env-file", ".env", "Optional .env file with VARTRANS_* variables")
	f.StringVar(&rootFlags.engine, "engine", "", "Translation engine for this run (google, libretranslate, argos, deepl, remote)")
	f.StringVar(&rootFlags.logLevel, "log-level", "", "Log level: debug, info, warn, error")
	f.StringVar(&rootFlags.logFile, "log-file", "", "Write logs to this file")

	rootCmd.AddCommand(pickCmd)
	rootCmd.AddCommand(convertCmd)
	rootCmd.AddCommand(translateCmd)
	rootCmd.AddCommand(enginesCmd)
	rootCmd.Version = version
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// app is what every command needs: settings, a logger and the engines.
type app struct {
	store    *config.Store
	logger   *logrus.Logger
	registry *translate.Registry
	closer   io.Closer
}

// loadApp reads the configuration and applies the command-line overrides.
// quiet keeps logs off the terminal while the picker is on screen.
func loadApp(quiet bool) (*app, error) {
	bootstrap := logrus.New()
	bootstrap.SetOutput(io.Discard)

	store, err := config.NewStore(rootFlags.configPath, rootFlags.envFile, bootstrap)
	if err != nil {
		return nil, err
	}

	cfg := store.Config()
	if rootFlags.logLevel != "" {
		if _, err := logrus.ParseLevel(rootFlags.logLevel); err != nil {
			return nil, fmt.Errorf("--log-level: %w", err)
		}
		cfg.LogLevel = rootFlags.logLevel
	}
	if rootFlags.logFile != "" {
		cfg.LogFile = rootFlags.logFile
	}

	logger, closer, err := cfg.NewLogger(quiet)
	if err != nil {
		return nil, err
	}
	bootstrap.SetOutput(logger.Out)
	bootstrap.SetLevel(logger.Level)

	if rootFlags.engine != "" {
		store.SetEngine(rootFlags.engine)
	}

	logger.WithFields(logrus.Fields{
		"config": store.Path(),
		"engine": store.Engine(),
	}).Debug("Configuration loaded")

	return &app{
		store:    store,
		logger:   logger,
		registry: translate.NewDefaultRegistry(cfg.Translate(logger)),
		closer:   closer,
	}, nil
}

// client builds a translation client reporting to sink.
func (a *app) client(sink status.Sink) *translate.Client {
	return translate.NewClient(translate.ClientConfig{
		Registry: a.registry,
		Engines:  a.store,
		Sink:     sink,
		Logger:   a.logger,
	})
}

func (a *app) Close() error {
	if err := a.registry.Close(); err != nil {
		a.logger.WithError(err).Debug("Closing engines failed")
	}
	return a.closer.Close()
}
