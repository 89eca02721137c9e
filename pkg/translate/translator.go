package translate

import (
	"context"
	"strings"
)

// Translator defines the interface for machine translation backends.
// Engines are selected by EngineType through a Registry, so the client and
// the gateway never depend on a concrete backend.
type Translator interface {
	// Translate translates text from source language to target language.
	// sourceLang and targetLang are ISO 639-1 codes ("zh", "en").
	Translate(ctx context.Context, text, sourceLang, targetLang string) (string, error)

	// CheckHealth verifies that the translation backend is reachable.
	CheckHealth(ctx context.Context) error

	// SupportedLanguages returns the ISO 639-1 codes the backend accepts.
	SupportedLanguages(ctx context.Context) ([]string, error)
}

// LanguageMapper handles conversion between language code formats.
// Callers may pass tags like "EN", "zh-CN" or "zh_Hans"; backends want the
// bare ISO 639-1 code, and some (DeepL) want their own upper-case variant.
type LanguageMapper struct{}

// NewLanguageMapper creates a new language mapper instance.
func NewLanguageMapper() *LanguageMapper {
	return &LanguageMapper{}
}

// ToBackendCode converts a language tag to its base ISO 639-1 code.
// Examples:
//   - "EN" -> "en"
//   - "zh-CN" -> "zh"
//   - "zh_Hans" -> "zh"
func (lm *LanguageMapper) ToBackendCode(tag string) string {
	lang := strings.ToLower(strings.TrimSpace(tag))
	if idx := strings.IndexAny(lang, "-_"); idx >= 0 {
		lang = lang[:idx]
	}
	return lang
}

// ToDeepLCode converts a language tag to the code DeepL expects.
func (lm *LanguageMapper) ToDeepLCode(tag string) string {
	switch code := lm.ToBackendCode(tag); code {
	case "pt":
		return "PT-BR"
	default:
		return strings.ToUpper(code)
	}
}
