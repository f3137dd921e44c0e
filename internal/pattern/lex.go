package pattern

import (
	"github.com/viant/parsly"
	"github.com/viant/parsly/matcher"
)

const (
	literalToken = iota
	escapeToken
	placeholderToken
)

var literalMatcher = parsly.NewToken(literalToken, "Literal", &literalMatch{})
var escapeMatcher = parsly.NewToken(escapeToken, "Escape", &escapeMatch{})
var placeholderMatcher = parsly.NewToken(placeholderToken, "Placeholder", matcher.NewBlock('{', '}', '\\'))

// literalMatch matches a run of bytes up to the next brace or escape. A
// trailing backslash is literal.
type literalMatch struct{}

func (l *literalMatch) Match(cursor *parsly.Cursor) int {
	pos := cursor.Pos
	for pos < cursor.InputSize {
		switch cursor.Input[pos] {
		case '{', '}':
			return pos - cursor.Pos
		case '\\':
			if pos+1 < cursor.InputSize {
				return pos - cursor.Pos
			}
		}

		pos++
	}

	return pos - cursor.Pos
}

// escapeMatch matches a backslash and the byte it escapes.
type escapeMatch struct{}

func (e *escapeMatch) Match(cursor *parsly.Cursor) int {
	if cursor.Pos+1 < cursor.InputSize && cursor.Input[cursor.Pos] == '\\' {
		return 2
	}

	return 0
}
