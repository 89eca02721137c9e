package translate

import (
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/sirupsen/logrus"
)

// EngineType identifies a translation engine.
type EngineType string

const (
	// EngineGoogle uses the public Google Translate web endpoint.
	EngineGoogle EngineType = "google"
	// EngineLibreTranslate uses a LibreTranslate server.
	EngineLibreTranslate EngineType = "libretranslate"
	// EngineArgos uses an Argos Translate HTTP service.
	EngineArgos EngineType = "argos"
	// EngineDeepL uses the DeepL API.
	EngineDeepL EngineType = "deepl"
	// EngineRemote forwards to a vartrans translation gateway over gRPC.
	EngineRemote EngineType = "remote"

	// DefaultEngine is used whenever the configured engine is unknown.
	DefaultEngine = EngineGoogle
)

// Config holds the settings every engine needs. Engines whose settings are
// missing are still registered; they fail at request time.
type Config struct {
	// GoogleURL overrides the Google endpoint (tests).
	GoogleURL string
	// LibreTranslateURL is the base URL of the LibreTranslate server.
	LibreTranslateURL string
	// LibreTranslateAPIKey is sent with every LibreTranslate request when set.
	LibreTranslateAPIKey string
	// ArgosURL is the base URL of the Argos Translate service.
	ArgosURL string
	// DeepLAPIKey authorizes DeepL requests.
	DeepLAPIKey string
	// DeepLURL overrides the DeepL endpoint (tests, pro accounts).
	DeepLURL string
	// RemoteAddr is the host:port of a vartrans gateway.
	RemoteAddr string
	// Logger is the logger instance to use. If nil, a default logger is created.
	Logger *logrus.Logger
}

// Registry maps engine identifiers to Translator implementations with an
// explicit fallback entry, so an unrecognized configuration value never
// fails a request.
type Registry struct {
	mu       sync.RWMutex
	engines  map[EngineType]Translator
	fallback EngineType
	logger   *logrus.Logger
}

// NewRegistry creates an empty registry falling back to fallback.
func NewRegistry(fallback EngineType, logger *logrus.Logger) *Registry {
	if logger == nil {
		logger = logrus.New()
	}
	return &Registry{
		engines:  make(map[EngineType]Translator),
		fallback: fallback,
		logger:   logger,
	}
}

// NewDefaultRegistry registers every built-in engine from cfg.
func NewDefaultRegistry(cfg Config) *Registry {
	if cfg.Logger == nil {
		cfg.Logger = logrus.New()
	}

	r := NewRegistry(DefaultEngine, cfg.Logger)
	r.Register(EngineGoogle, NewGoogleClient(cfg.GoogleURL, cfg.Logger))
	r.Register(EngineLibreTranslate, NewLibreTranslateClient(cfg.LibreTranslateURL, cfg.LibreTranslateAPIKey, cfg.Logger))
	r.Register(EngineArgos, NewArgosClient(cfg.ArgosURL, cfg.Logger))
	r.Register(EngineDeepL, NewDeepLClient(cfg.DeepLAPIKey, cfg.DeepLURL, cfg.Logger))
	if cfg.RemoteAddr != "" {
		remote, err := NewRemoteClient(cfg.RemoteAddr, cfg.Logger)
		if err != nil {
			cfg.Logger.WithError(err).WithField("addr", cfg.RemoteAddr).Warn("Remote engine unavailable")
		} else {
			r.Register(EngineRemote, remote)
		}
	}

	cfg.Logger.WithFields(logrus.Fields{
		"engines":  r.Names(),
		"fallback": r.fallback,
	}).Debug("Created engine registry")
	return r
}

// Register adds or replaces the engine stored under id.
func (r *Registry) Register(id EngineType, t Translator) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.engines[id] = t
}

// Resolve returns the engine registered under id, or the fallback engine
// when id is unknown. The returned EngineType is the engine actually used.
func (r *Registry) Resolve(id string) (EngineType, Translator, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if t, ok := r.engines[ParseEngineType(id)]; ok {
		return ParseEngineType(id), t, nil
	}
	if t, ok := r.engines[r.fallback]; ok {
		r.logger.WithFields(logrus.Fields{
			"engine":   id,
			"fallback": r.fallback,
		}).Debug("Unknown translation engine, using fallback")
		return r.fallback, t, nil
	}
	return "", nil, fmt.Errorf("no engine for %q and fallback %q is not registered", id, r.fallback)
}

// Names returns the registered engine identifiers, sorted.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.engines))
	for id := range r.engines {
		names = append(names, string(id))
	}
	sort.Strings(names)
	return names
}

// Close releases engines that hold connections.
func (r *Registry) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	var firstErr error
	for _, t := range r.engines {
		if c, ok := t.(interface{ Close() error }); ok {
			if err := c.Close(); err != nil && firstErr == nil {
				firstErr = err
			}
		}
	}
	return firstErr
}

// ParseEngineType normalizes an engine identifier ("LibreTranslate",
// " DEEPL ") to its EngineType. Unknown names are returned lower-cased and
// resolve to the fallback.
func ParseEngineType(s string) EngineType {
	return EngineType(strings.ToLower(strings.TrimSpace(s)))
}
