package normalize

import (
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

// stripDiacritics decomposes the string and drops combining marks, so that
// "Crédito" and "CREDITO" compare equal after case folding.
func stripDiacritics(s string) string {
	decomposed := norm.NFD.String(s)

	var b strings.Builder
	b.Grow(len(decomposed))

	for _, r := range decomposed {
		if unicode.Is(unicode.Mn, r) {
			continue
		}

		b.WriteRune(r)
	}

	return b.String()
}

// Fold canonicalizes a description for matching: trimmed, uppercased,
// diacritics removed.
func Fold(s string) string {
	return stripDiacritics(strings.ToUpper(strings.TrimSpace(s)))
}

// Words splits a description into its significant tokens: lowercased,
// diacritics removed, punctuation treated as whitespace, tokens of one or
// two characters dropped. Used by the fuzzy description match.
func Words(s string) []string {
	simplified := simplify(s)

	var words []string
	for _, w := range strings.Fields(simplified) {
		if len(w) > 2 {
			words = append(words, w)
		}
	}

	return words
}

// Compact returns the simplified description with all whitespace removed,
// for substring comparison between differently spaced variants of the same
// merchant name.
func Compact(s string) string {
	return strings.ReplaceAll(simplify(s), " ", "")
}

func simplify(s string) string {
	lowered := stripDiacritics(strings.ToLower(s))

	var b strings.Builder
	b.Grow(len(lowered))

	for _, r := range lowered {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
		default:
			b.WriteRune(' ')
		}
	}

	return b.String()
}
