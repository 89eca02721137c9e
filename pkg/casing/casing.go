package casing

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Style is one naming convention.
type Style struct {
	// Name identifies the style on the command line (e.g. "snakeCase").
	Name string
	// Description is the tag shown next to a rendered variant in the picker.
	Description string
	// Convert renders an arbitrary word sequence in this style.
	Convert func(string) string
}

// Styles lists every supported convention in the order variants are offered.
var Styles = []Style{
	{Name: "camelCase", Description: "camelCase", Convert: Camel},
	{Name: "pascalCase", Description: "PascalCase", Convert: Pascal},
	{Name: "snakeCase", Description: "snake_case", Convert: Snake},
	{Name: "kebabCase", Description: "kebab-case", Convert: Kebab},
	{Name: "constantCase", Description: "CONSTANT_CASE", Convert: Constant},
	{Name: "dotCase", Description: "dot.case", Convert: Dot},
	{Name: "capitalCase", Description: "Capital Case", Convert: Capital},
	{Name: "noCase", Description: "no case", Convert: NoCase},
	{Name: "pathCase", Description: "path/case", Convert: Path},
}

// Lookup returns the style registered under name.
func Lookup(name string) (Style, bool) {
	for _, s := range Styles {
		if s.Name == name {
			return s, true
		}
	}
	return Style{}, false
}

// Names returns the style names in declared order.
func Names() []string {
	names := make([]string, len(Styles))
	for i, s := range Styles {
		names[i] = s.Name
	}
	return names
}

// Variant is one rendering of a word sequence.
type Variant struct {
	Text        string
	Description string
}

// Variants renders s in every style, in declared order.
func Variants(s string) []Variant {
	out := make([]Variant, 0, len(Styles))
	for _, style := range Styles {
		out = append(out, Variant{Text: style.Convert(s), Description: style.Description})
	}
	return out
}

func Camel(s string) string {
	words := Words(s)
	for i, w := range words {
		if i == 0 {
			words[i] = strings.ToLower(w)
			continue
		}
		words[i] = title(w)
	}
	return join(words, "")
}

func Pascal(s string) string {
	return join(titleAll(Words(s)), "")
}

func Snake(s string) string {
	return join(lowerAll(Words(s)), "_")
}

func Kebab(s string) string {
	return join(lowerAll(Words(s)), "-")
}

func Constant(s string) string {
	return join(upperAll(Words(s)), "_")
}

func Dot(s string) string {
	return join(lowerAll(Words(s)), ".")
}

func Capital(s string) string {
	return join(titleAll(Words(s)), " ")
}

func NoCase(s string) string {
	return Phrase(s)
}

func Path(s string) string {
	return join(lowerAll(Words(s)), "/")
}

// title upper-cases the first letter of w and lower-cases the rest. A Caser
// is stateful, so each call builds its own.
func title(w string) string {
	return cases.Title(language.Und).String(w)
}

func titleAll(words []string) []string {
	out := make([]string, len(words))
	for i, w := range words {
		out[i] = title(w)
	}
	return out
}
