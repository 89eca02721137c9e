package translate

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/singleflight"

	"github.com/dasmlab/vartrans/pkg/status"
)

// ErrEmptyTranslation is returned when an engine succeeded but produced no text.
var ErrEmptyTranslation = errors.New("engine returned an empty translation")

// EngineSource supplies the active engine identifier. It is read on every
// request, so a configuration change applies to the next translation.
type EngineSource interface {
	Engine() string
}

// StaticEngine is an EngineSource that never changes.
type StaticEngine string

func (s StaticEngine) Engine() string { return string(s) }

// ClientConfig holds the collaborators of a Client.
type ClientConfig struct {
	Registry *Registry
	Engines  EngineSource
	// Cache defaults to a fresh in-memory cache.
	Cache *Cache
	// Sink receives user-facing status messages. Defaults to status.Discard.
	Sink   status.Sink
	Logger *logrus.Logger
}

// Client is the single entry point for translations: it derives the
// direction, normalizes the text, consults the cache and calls the
// configured engine on a miss.
type Client struct {
	registry *Registry
	engines  EngineSource
	cache    *Cache
	sink     status.Sink
	logger   *logrus.Logger
	flights  singleflight.Group
}

// Result is the outcome of Client.Do.
type Result struct {
	Text   string
	Engine EngineType
	Target Language
	Cached bool
}

// NewClient creates a Client.
func NewClient(cfg ClientConfig) *Client {
	if cfg.Logger == nil {
		cfg.Logger = logrus.New()
	}
	if cfg.Registry == nil {
		cfg.Registry = NewDefaultRegistry(Config{Logger: cfg.Logger})
	}
	if cfg.Engines == nil {
		cfg.Engines = StaticEngine(DefaultEngine)
	}
	if cfg.Cache == nil {
		cfg.Cache = NewCache()
	}
	if cfg.Sink == nil {
		cfg.Sink = status.Discard
	}
	return &Client{
		registry: cfg.Registry,
		engines:  cfg.Engines,
		cache:    cfg.Cache,
		sink:     cfg.Sink,
		logger:   cfg.Logger,
	}
}

// Cache exposes the client's cache.
func (c *Client) Cache() *Cache { return c.cache }

// Translate returns the translation of raw in the opposite language, or ""
// when raw is blank or the engine fails. It never returns an error: the
// failure is reported to the status sink and the caller decides whether to
// retry.
func (c *Client) Translate(ctx context.Context, raw string) string {
	req := NewRequest(raw)
	if req.Text == "" {
		return ""
	}
	res, err := c.Do(ctx, req, c.engines.Engine())
	if err != nil {
		c.sink.Status(fmt.Sprintf("translation failed: %v", err))
		return ""
	}
	return res.Text
}

// Do translates req with the named engine (falling back to the default
// engine when the name is unknown). Concurrent misses for the same key
// share one engine call. If ctx is canceled Do returns early, but the
// engine call keeps running so its result still lands in the cache.
func (c *Client) Do(ctx context.Context, req Request, engineID string) (Result, error) {
	id, engine, err := c.registry.Resolve(engineID)
	if err != nil {
		return Result{}, err
	}

	key := CacheKey{Engine: id, Text: req.CacheText()}
	if cached, ok := c.cache.Get(key); ok {
		recordCacheLookup(id, true)
		c.sink.Status(fmt.Sprintf("using cache: %s", req.Text))
		return Result{Text: cached, Engine: id, Target: req.Target, Cached: true}, nil
	}
	recordCacheLookup(id, false)

	flightKey := string(id) + "\x00" + key.Text
	detached := context.WithoutCancel(ctx)
	ch := c.flights.DoChan(flightKey, func() (any, error) {
		return c.fetch(detached, id, engine, req, key)
	})

	select {
	case <-ctx.Done():
		return Result{}, ctx.Err()
	case r := <-ch:
		if r.Err != nil {
			return Result{}, r.Err
		}
		return Result{Text: r.Val.(string), Engine: id, Target: req.Target}, nil
	}
}

// fetch performs one engine round trip and caches a non-empty result.
func (c *Client) fetch(ctx context.Context, id EngineType, engine Translator, req Request, key CacheKey) (string, error) {
	text := req.EngineText()
	c.sink.Status(fmt.Sprintf("%s translating %q to %s", id, text, req.Target))

	start := time.Now()
	out, err := engine.Translate(ctx, text, string(req.Source), string(req.Target))
	out = Sanitize(out)
	recordTranslationRequest(id, req.Target, time.Since(start), err == nil && out != "", len(text))

	logger := c.logger.WithFields(logrus.Fields{
		"engine":      id,
		"target_lang": req.Target,
		"cache_key":   key.Text,
		"duration_ms": time.Since(start).Milliseconds(),
	})
	if err != nil {
		logger.WithError(err).Warn("Translation failed")
		return "", fmt.Errorf("%s: %w", id, err)
	}
	if out == "" {
		logger.Warn("Translation came back empty")
		return "", fmt.Errorf("%s: %w", id, ErrEmptyTranslation)
	}

	out = c.cache.Add(key, out)
	logger.Debug("Translation cached")
	return out, nil
}

var sanitizer = strings.NewReplacer(`"`, "", "\n", "", "\r", "")

// Sanitize strips quotes and line breaks that some engines echo back, and
// trims surrounding whitespace.
func Sanitize(s string) string {
	return strings.TrimSpace(sanitizer.Replace(s))
}
