package translate

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/sirupsen/logrus"
)

// DefaultLibreTranslateURL is the default base URL for LibreTranslate API.
const DefaultLibreTranslateURL = "http://localhost:5000"

// LibreTranslateClient implements the Translator interface using LibreTranslate.
// LibreTranslate is a self-hosted, open-source machine translation API.
type LibreTranslateClient struct {
	baseURL string
	apiKey  string
	mapper  *LanguageMapper
	hc      *http.Client
	logger  *logrus.Entry
}

// NewLibreTranslateClient creates a new LibreTranslate client.
func NewLibreTranslateClient(baseURL, apiKey string, logger *logrus.Logger) *LibreTranslateClient {
	if baseURL == "" {
		baseURL = DefaultLibreTranslateURL
	}
	if logger == nil {
		logger = logrus.New()
	}
	return &LibreTranslateClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		mapper:  NewLanguageMapper(),
		hc:      newHTTPClient(),
		logger:  logger.WithField("engine", EngineLibreTranslate),
	}
}

type libreRequest struct {
	Q      string `json:"q"`
	Source string `json:"source"`
	Target string `json:"target"`
	Format string `json:"format"`
	APIKey string `json:"api_key,omitempty"`
}

type libreResponse struct {
	TranslatedText string `json:"translatedText"`
	Error          string `json:"error"`
}

type libreLanguage struct {
	Code string `json:"code"`
	Name string `json:"name"`
}

// Translate translates text from source language to target language.
func (c *LibreTranslateClient) Translate(ctx context.Context, text, sourceLang, targetLang string) (string, error) {
	c.logger.WithFields(logrus.Fields{
		"source_lang": sourceLang,
		"target_lang": targetLang,
		"text_length": len(text),
	}).Debug("Translating text with LibreTranslate")

	var resp libreResponse
	err := postJSON(ctx, c.hc, c.logger, c.baseURL+"/translate", nil, libreRequest{
		Q:      text,
		Source: c.mapper.ToBackendCode(sourceLang),
		Target: c.mapper.ToBackendCode(targetLang),
		Format: "text",
		APIKey: c.apiKey,
	}, &resp)
	if err != nil {
		return "", err
	}
	if resp.Error != "" {
		return "", fmt.Errorf("libretranslate: %s", resp.Error)
	}
	return resp.TranslatedText, nil
}

// CheckHealth uses the /languages endpoint as a health check.
func (c *LibreTranslateClient) CheckHealth(ctx context.Context) error {
	if err := get(ctx, c.hc, c.logger, c.baseURL+"/languages", nil); err != nil {
		return fmt.Errorf("health check failed: %w", err)
	}
	return nil
}

// SupportedLanguages returns the language codes the server reports.
func (c *LibreTranslateClient) SupportedLanguages(ctx context.Context) ([]string, error) {
	var languages []libreLanguage
	if err := get(ctx, c.hc, c.logger, c.baseURL+"/languages", &languages); err != nil {
		return nil, err
	}
	codes := make([]string, 0, len(languages))
	for _, lang := range languages {
		codes = append(codes, lang.Code)
	}
	return codes, nil
}
