package translate

import (
	"strings"
	"unicode"

	"github.com/dasmlab/vartrans/pkg/casing"
)

// Language is a translation target.
type Language string

const (
	LanguageZH Language = "zh"
	LanguageEN Language = "en"
)

// IsChinese reports whether text contains any Han character.
func IsChinese(text string) bool {
	for _, r := range text {
		if unicode.Is(unicode.Han, r) {
			return true
		}
	}
	return false
}

// Request is the translation direction derived from one piece of raw text.
type Request struct {
	Text   string
	Source Language
	Target Language
}

// NewRequest trims raw and derives the translation direction: Chinese text
// goes to English, anything else goes to Chinese.
func NewRequest(raw string) Request {
	text := strings.TrimSpace(raw)
	if IsChinese(text) {
		return Request{Text: text, Source: LanguageZH, Target: LanguageEN}
	}
	return Request{Text: text, Source: LanguageEN, Target: LanguageZH}
}

// CacheText is the engine-independent part of the cache key. Identifier
// forms are collapsed when translating into Chinese so "userName" and
// "user_name" share an entry; English targets use the text as-is.
func (r Request) CacheText() string {
	if r.Target == LanguageZH {
		if key := casing.Key(r.Text); key != "" {
			return key
		}
	}
	return r.Text
}

// EngineText is the text handed to the engine. Identifier-style input is
// spelled out as a lower-case phrase so it translates as words.
func (r Request) EngineText() string {
	if r.Target == LanguageZH {
		if phrase := casing.Phrase(r.Text); phrase != "" {
			return phrase
		}
	}
	return r.Text
}
