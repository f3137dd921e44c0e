package match

import (
	"strings"
	"unicode"
)

// NormalizeIdent folds a field name for fuzzy comparison: camelCase and
// separators (_ - . @ and spaces) are collapsed and the result is lower-cased,
// so "createdAt", "created_at" and "@created.at" all compare equal.
func NormalizeIdent(s string) string {
	var b strings.Builder

	b.Grow(len(s))

	for _, r := range s {
		if isSeparator(r) {
			continue
		}

		b.WriteRune(unicode.ToLower(r))
	}

	return b.String()
}

// TokenizeIdent splits a field name into lower-case words on separators and
// camelCase boundaries: "parentDocID" -> [parent doc id].
func TokenizeIdent(s string) []string {
	var (
		tokens  []string
		current strings.Builder
	)

	runes := []rune(s)
	flush := func() {
		if current.Len() > 0 {
			tokens = append(tokens, strings.ToLower(current.String()))
			current.Reset()
		}
	}

	for i, r := range runes {
		if isSeparator(r) {
			flush()
			continue
		}

		if i > 0 && startsWord(runes, i) {
			flush()
		}

		current.WriteRune(r)
	}

	flush()

	return tokens
}

func isSeparator(r rune) bool {
	return r == '_' || r == '-' || r == ' ' || r == '.' || r == '@'
}

// startsWord reports a lower->upper transition ("docID") or the last capital
// of an acronym followed by lower case ("HTTPServer").
func startsWord(runes []rune, i int) bool {
	r, prev := runes[i], runes[i-1]
	if !unicode.IsUpper(r) {
		return false
	}

	if !unicode.IsUpper(prev) && !isSeparator(prev) {
		return true
	}

	return unicode.IsUpper(prev) && i+1 < len(runes) && unicode.IsLower(runes[i+1])
}
