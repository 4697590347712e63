// Package naming provides the deterministic string transforms shared by the
// pagination detector and the cache-key grouping pass: case conversion,
// singular/plural inflection and path resource extraction. All functions are
// pure.
package naming

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var (
	nonAlnum      = regexp.MustCompile(`[^A-Za-z0-9]+`)
	camelBoundary = regexp.MustCompile(`([a-z0-9])([A-Z])`)
	versionToken  = regexp.MustCompile(`(?i)^v[0-9]+$`)
)

// irregulars maps singular to plural for words the suffix rules get wrong.
// Lookups work in both directions and preserve the case of the first letter.
var irregulars = map[string]string{
	"person":    "people",
	"child":     "children",
	"man":       "men",
	"woman":     "women",
	"foot":      "feet",
	"tooth":     "teeth",
	"goose":     "geese",
	"mouse":     "mice",
	"criterion": "criteria",
	"datum":     "data",
}

var irregularPlurals = func() map[string]string {
	m := make(map[string]string, len(irregulars))
	for s, p := range irregulars {
		m[p] = s
	}
	return m
}()

// removeAccents folds accented characters to their base forms so that word
// splitting treats them as plain letters.
func removeAccents(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, _ := transform.String(t, s)
	return out
}

func splitWords(s string) []string {
	s = removeAccents(strings.TrimSpace(s))
	if s == "" {
		return nil
	}
	parts := nonAlnum.Split(s, -1)
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

// ToTitle converts a string to TitleCase: each non-alphanumeric-delimited
// word gets its first letter capitalized, delimiters are stripped, and the
// remainder of each word is preserved ("userId" -> "UserId").
func ToTitle(s string) string {
	var b strings.Builder
	for _, w := range splitWords(s) {
		b.WriteString(strings.ToUpper(w[:1]))
		b.WriteString(w[1:])
	}
	return b.String()
}

// ToMixed converts a string to mixedCase: TitleCase with the first letter
// lowercased.
func ToMixed(s string) string {
	t := ToTitle(s)
	if t == "" {
		return ""
	}
	return strings.ToLower(t[:1]) + t[1:]
}

// ToHyphenated converts a string to hyphenated-lowercase: camel boundaries
// become hyphens, runs of non-alphanumerics collapse to a single hyphen, and
// leading/trailing hyphens are trimmed.
func ToHyphenated(s string) string {
	s = removeAccents(strings.TrimSpace(s))
	s = camelBoundary.ReplaceAllString(s, "$1-$2")
	s = nonAlnum.ReplaceAllString(s, "-")
	s = strings.Trim(s, "-")
	return strings.ToLower(s)
}

// restoreFirst copies the case of the first letter of src onto dst.
func restoreFirst(dst, src string) string {
	if dst == "" || src == "" {
		return dst
	}
	if unicode.IsUpper(rune(src[0])) {
		return strings.ToUpper(dst[:1]) + dst[1:]
	}
	return dst
}

// Singularize returns the singular form of a word. The irregular table wins
// first; after that a small ordered set of suffix rules applies, guarded so
// that words like "grass" or "status" are left alone.
func Singularize(word string) string {
	lower := strings.ToLower(word)
	if s, ok := irregularPlurals[lower]; ok {
		return restoreFirst(s, word)
	}
	if _, ok := irregulars[lower]; ok {
		return word
	}
	switch {
	case len(word) > 4 && strings.HasSuffix(lower, "ies"):
		return word[:len(word)-3] + "y"
	case strings.HasSuffix(lower, "ses"),
		strings.HasSuffix(lower, "xes"),
		strings.HasSuffix(lower, "zes"),
		strings.HasSuffix(lower, "ches"),
		strings.HasSuffix(lower, "shes"):
		return word[:len(word)-2]
	case len(word) > 2 && strings.HasSuffix(lower, "s") &&
		!strings.HasSuffix(lower, "ss") && !strings.HasSuffix(lower, "us"):
		return word[:len(word)-1]
	}
	return word
}

// Pluralize returns the plural form of a word, the inverse of Singularize
// over the same irregular table.
func Pluralize(word string) string {
	lower := strings.ToLower(word)
	if p, ok := irregulars[lower]; ok {
		return restoreFirst(p, word)
	}
	if _, ok := irregularPlurals[lower]; ok {
		return word
	}
	switch {
	case strings.HasSuffix(lower, "y") && len(lower) > 1 && !isVowel(lower[len(lower)-2]):
		return word[:len(word)-1] + "ies"
	case strings.HasSuffix(lower, "s"),
		strings.HasSuffix(lower, "x"),
		strings.HasSuffix(lower, "z"),
		strings.HasSuffix(lower, "ch"),
		strings.HasSuffix(lower, "sh"):
		return word + "es"
	}
	return word + "s"
}

func isVowel(c byte) bool {
	switch c {
	case 'a', 'e', 'i', 'o', 'u':
		return true
	}
	return false
}

// isPlaceholder reports whether a path segment is a parameter marker in
// either the "{id}" or ":id" style.
func isPlaceholder(seg string) bool {
	if strings.HasPrefix(seg, "{") && strings.HasSuffix(seg, "}") {
		return true
	}
	return strings.HasPrefix(seg, ":") && len(seg) > 1
}

// ExtractResource derives the logical resource noun an operation acts on
// from its path: placeholder segments, "api" and version segments are
// dropped and the last remaining segment wins. Falls back to the last raw
// segment, then to "unknown".
func ExtractResource(path string) string {
	segments := strings.Split(path, "/")
	var kept []string
	var raw []string
	for _, seg := range segments {
		if seg == "" {
			continue
		}
		raw = append(raw, seg)
		if isPlaceholder(seg) {
			continue
		}
		if strings.EqualFold(seg, "api") || versionToken.MatchString(seg) {
			continue
		}
		kept = append(kept, seg)
	}
	if len(kept) > 0 {
		return kept[len(kept)-1]
	}
	if len(raw) > 0 {
		return raw[len(raw)-1]
	}
	return "unknown"
}

// IsDetailPath reports whether the path addresses a single entity: its last
// non-empty segment is a parameter placeholder.
func IsDetailPath(path string) bool {
	segments := strings.Split(path, "/")
	for i := len(segments) - 1; i >= 0; i-- {
		if segments[i] == "" {
			continue
		}
		return isPlaceholder(segments[i])
	}
	return false
}
