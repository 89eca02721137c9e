package translate

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/sirupsen/logrus"
)

// DefaultDeepLURL is the free-tier DeepL endpoint.
const DefaultDeepLURL = "https://api-free.deepl.com/v2/translate"

// DeepLClient implements the Translator interface using the DeepL API.
type DeepLClient struct {
	apiKey   string
	endpoint string
	mapper   *LanguageMapper
	hc       *http.Client
	logger   *logrus.Entry
}

// NewDeepLClient creates a DeepL client. An empty endpoint uses DefaultDeepLURL.
func NewDeepLClient(apiKey, endpoint string, logger *logrus.Logger) *DeepLClient {
	if endpoint == "" {
		endpoint = DefaultDeepLURL
	}
	if logger == nil {
		logger = logrus.New()
	}
	return &DeepLClient{
		apiKey:   apiKey,
		endpoint: endpoint,
		mapper:   NewLanguageMapper(),
		hc:       newHTTPClient(),
		logger:   logger.WithField("engine", EngineDeepL),
	}
}

type deeplResponse struct {
	Translations []struct {
		Text string `json:"text"`
	} `json:"translations"`
}

// Translate translates text from source language to target language.
func (c *DeepLClient) Translate(ctx context.Context, text, sourceLang, targetLang string) (string, error) {
	if c.apiKey == "" {
		return "", fmt.Errorf("deepl API key not configured")
	}

	form := url.Values{}
	form.Add("text", text)
	form.Set("target_lang", c.mapper.ToDeepLCode(targetLang))
	if sourceLang != "" && sourceLang != "auto" {
		form.Set("source_lang", c.mapper.ToDeepLCode(sourceLang))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Authorization", "DeepL-Auth-Key "+c.apiKey)

	var resp deeplResponse
	if err := do(c.hc, c.logger, req, &resp); err != nil {
		return "", err
	}
	if len(resp.Translations) == 0 {
		return "", nil
	}
	return resp.Translations[0].Text, nil
}

// CheckHealth only verifies that a key is configured; DeepL bills per
// character, so no probe request is sent.
func (c *DeepLClient) CheckHealth(ctx context.Context) error {
	if c.apiKey == "" {
		return fmt.Errorf("deepl API key not configured")
	}
	return nil
}

// SupportedLanguages returns the target languages vartrans uses.
func (c *DeepLClient) SupportedLanguages(ctx context.Context) ([]string, error) {
	return []string{string(LanguageEN), string(LanguageZH)}, nil
}
