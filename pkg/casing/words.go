// Package casing renders word sequences in the identifier naming
// conventions offered by the picker.
package casing

import (
	"strings"
	"unicode"
)

// Words splits s into its word sequence. Case boundaries ("userName"),
// acronym boundaries ("XMLHttp") and any run of characters that is neither
// a letter nor a digit separate words. The original casing is preserved.
func Words(s string) []string {
	runes := []rune(s)
	var words []string
	var cur []rune

	flush := func() {
		if len(cur) > 0 {
			words = append(words, string(cur))
			cur = cur[:0]
		}
	}

	for i, r := range runes {
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) {
			flush()
			continue
		}
		if len(cur) > 0 && unicode.IsUpper(r) {
			prev := cur[len(cur)-1]
			switch {
			case unicode.IsLower(prev) || unicode.IsDigit(prev):
				flush()
			case unicode.IsUpper(prev) && i+1 < len(runes) && unicode.IsLower(runes[i+1]):
				flush()
			}
		}
		cur = append(cur, r)
	}
	flush()
	return words
}

// Key is the separator and case insensitive form of s used to identify the
// same identifier written in different conventions. "userName", "user_name"
// and "User Name" all map to "user_name".
func Key(s string) string {
	return Snake(s)
}

// Phrase renders s as lower-case words separated by single spaces, the form
// identifier-style input is sent to a translation engine in.
func Phrase(s string) string {
	return join(lowerAll(Words(s)), " ")
}

func lowerAll(words []string) []string {
	out := make([]string, len(words))
	for i, w := range words {
		out[i] = strings.ToLower(w)
	}
	return out
}

func upperAll(words []string) []string {
	out := make([]string, len(words))
	for i, w := range words {
		out[i] = strings.ToUpper(w)
	}
	return out
}

func join(words []string, sep string) string {
	return strings.Join(words, sep)
}
