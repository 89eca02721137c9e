package translate

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/sirupsen/logrus"
)

// DefaultGoogleURL is the public web endpoint used by browser extensions.
// It needs no credentials, which makes it the fallback engine.
const DefaultGoogleURL = "https://translate.googleapis.com/translate_a/single"

// GoogleClient implements the Translator interface on the Google Translate
// web endpoint.
type GoogleClient struct {
	endpoint string
	mapper   *LanguageMapper
	hc       *http.Client
	logger   *logrus.Entry
}

// NewGoogleClient creates a Google client. An empty endpoint uses DefaultGoogleURL.
func NewGoogleClient(endpoint string, logger *logrus.Logger) *GoogleClient {
	if endpoint == "" {
		endpoint = DefaultGoogleURL
	}
	if logger == nil {
		logger = logrus.New()
	}
	return &GoogleClient{
		endpoint: endpoint,
		mapper:   NewLanguageMapper(),
		hc:       newHTTPClient(),
		logger:   logger.WithField("engine", EngineGoogle),
	}
}

// googleCode maps ISO 639-1 codes to the codes the web endpoint expects.
func (c *GoogleClient) googleCode(tag string) string {
	if code := c.mapper.ToBackendCode(tag); code != "zh" {
		return code
	}
	return "zh-CN"
}

// Translate translates text from source language to target language.
func (c *GoogleClient) Translate(ctx context.Context, text, sourceLang, targetLang string) (string, error) {
	c.logger.WithFields(logrus.Fields{
		"source_lang": sourceLang,
		"target_lang": targetLang,
		"text_length": len(text),
	}).Debug("Translating text with Google")

	q := url.Values{}
	q.Set("client", "gtx")
	q.Set("sl", "auto")
	q.Set("tl", c.googleCode(targetLang))
	q.Set("dt", "t")
	q.Set("q", text)

	var raw json.RawMessage
	if err := get(ctx, c.hc, c.logger, c.endpoint+"?"+q.Encode(), &raw); err != nil {
		return "", err
	}
	return parseGoogleResponse(raw)
}

// parseGoogleResponse extracts the translated sentences from the nested
// array the endpoint returns: [[["译文","source",...], ...], ...].
func parseGoogleResponse(raw json.RawMessage) (string, error) {
	var top []json.RawMessage
	if err := json.Unmarshal(raw, &top); err != nil {
		return "", fmt.Errorf("decode response: %w", err)
	}
	if len(top) == 0 {
		return "", fmt.Errorf("decode response: empty payload")
	}

	var sentences [][]any
	if err := json.Unmarshal(top[0], &sentences); err != nil {
		return "", fmt.Errorf("decode sentences: %w", err)
	}

	var b strings.Builder
	for _, s := range sentences {
		if len(s) == 0 {
			continue
		}
		if part, ok := s[0].(string); ok {
			b.WriteString(part)
		}
	}
	return b.String(), nil
}

// CheckHealth translates a single word.
func (c *GoogleClient) CheckHealth(ctx context.Context) error {
	if _, err := c.Translate(ctx, "ok", "en", "zh"); err != nil {
		return fmt.Errorf("health check failed: %w", err)
	}
	return nil
}

// SupportedLanguages returns the two languages vartrans translates between;
// the endpoint itself accepts far more.
func (c *GoogleClient) SupportedLanguages(ctx context.Context) ([]string, error) {
	return []string{string(LanguageEN), string(LanguageZH)}, nil
}
