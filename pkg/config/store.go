package config

import (
	"sync"

	"github.com/sirupsen/logrus"
)

// Store holds the live configuration. It implements translate.EngineSource
// so the engine can change between requests without rebuilding clients.
type Store struct {
	path    string
	envFile string
	logger  *logrus.Logger

	mu  sync.RWMutex
	cfg Config
	// engineOverride pins the engine regardless of reloads (--engine).
	engineOverride string
}

// NewStore loads the configuration from path and envFile.
func NewStore(path, envFile string, logger *logrus.Logger) (*Store, error) {
	if logger == nil {
		logger = logrus.New()
	}
	cfg, err := Load(path, envFile)
	if err != nil {
		return nil, err
	}
	return &Store{path: path, envFile: envFile, logger: logger, cfg: cfg}, nil
}

// NewStaticStore wraps an already loaded configuration.
func NewStaticStore(cfg Config, logger *logrus.Logger) *Store {
	if logger == nil {
		logger = logrus.New()
	}
	return &Store{logger: logger, cfg: cfg}
}

// Path is the file the store reads and saves.
func (s *Store) Path() string { return s.path }

// Config returns a copy of the current configuration.
func (s *Store) Config() Config {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cfg
}

// Engine returns the engine id to use for the next request.
func (s *Store) Engine() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.engineOverride != "" {
		return s.engineOverride
	}
	return s.cfg.Engine
}

// SetEngine pins the engine id for the rest of the process. An empty id
// removes the pin.
func (s *Store) SetEngine(id string) {
	s.mu.Lock()
	s.engineOverride = id
	s.mu.Unlock()

	s.logger.WithField("engine", id).Debug("Engine override set")
}

// Reload re-reads the configuration. On error the previous configuration
// stays in effect.
func (s *Store) Reload() error {
	cfg, err := Load(s.path, s.envFile)
	if err != nil {
		s.logger.WithError(err).WithField("path", s.path).Warn("Config reload failed, keeping previous settings")
		return err
	}

	s.mu.Lock()
	prev := s.cfg.Engine
	s.cfg = cfg
	s.mu.Unlock()

	s.logger.WithFields(logrus.Fields{
		"path":            s.path,
		"engine":          cfg.Engine,
		"previous_engine": prev,
	}).Info("Configuration reloaded")
	return nil
}

// SaveEngine persists id as the configured engine.
func (s *Store) SaveEngine(id string) error {
	s.mu.Lock()
	cfg := s.cfg
	cfg.Engine = id
	s.mu.Unlock()

	if err := Save(s.path, cfg); err != nil {
		return err
	}

	s.mu.Lock()
	s.cfg = cfg
	s.mu.Unlock()
	return nil
}
