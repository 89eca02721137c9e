package translate

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/sirupsen/logrus"
)

// DefaultArgosURL is the default base URL for Argos Translate API.
const DefaultArgosURL = "http://127.0.0.1:5001"

// ArgosClient implements the Translator interface using Argos Translate
// running behind a small HTTP service.
type ArgosClient struct {
	baseURL string
	mapper  *LanguageMapper
	hc      *http.Client
	logger  *logrus.Entry
}

// NewArgosClient creates a new Argos Translate client.
func NewArgosClient(baseURL string, logger *logrus.Logger) *ArgosClient {
	if baseURL == "" {
		baseURL = DefaultArgosURL
	}
	if logger == nil {
		logger = logrus.New()
	}
	return &ArgosClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		mapper:  NewLanguageMapper(),
		hc:      newHTTPClient(),
		logger:  logger.WithField("engine", EngineArgos),
	}
}

type argosRequest struct {
	Text       string `json:"text"`
	SourceLang string `json:"source_lang"`
	TargetLang string `json:"target_lang"`
}

type argosResponse struct {
	TranslatedText string `json:"translated_text"`
}

// argosLanguages are the pairs shipped with the default Argos package index.
var argosLanguages = []string{
	"en", "es", "fr", "de", "it", "pt", "ru", "zh", "ja", "ko",
	"ar", "hi", "tr", "pl", "nl", "sv", "da", "fi", "cs", "el",
}

// Translate translates text from source language to target language.
func (c *ArgosClient) Translate(ctx context.Context, text, sourceLang, targetLang string) (string, error) {
	c.logger.WithFields(logrus.Fields{
		"source_lang": sourceLang,
		"target_lang": targetLang,
		"text_length": len(text),
	}).Debug("Translating text with Argos")

	var resp argosResponse
	err := postJSON(ctx, c.hc, c.logger, c.baseURL+"/translate", nil, argosRequest{
		Text:       text,
		SourceLang: c.mapper.ToBackendCode(sourceLang),
		TargetLang: c.mapper.ToBackendCode(targetLang),
	}, &resp)
	if err != nil {
		return "", err
	}
	return resp.TranslatedText, nil
}

// CheckHealth probes /health. Argos wrappers without that endpoint are
// treated as healthy as long as the server answers at all.
func (c *ArgosClient) CheckHealth(ctx context.Context) error {
	err := get(ctx, c.hc, c.logger, c.baseURL+"/health", nil)
	var se *statusError
	if errors.As(err, &se) && se.Code == http.StatusNotFound {
		c.logger.Debug("Argos has no health endpoint, assuming healthy")
		return nil
	}
	return err
}

// SupportedLanguages returns the languages of the default Argos packages.
func (c *ArgosClient) SupportedLanguages(ctx context.Context) ([]string, error) {
	return append([]string(nil), argosLanguages...), nil
}
