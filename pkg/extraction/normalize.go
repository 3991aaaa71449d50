package extraction

import (
	"strings"
	"unicode"
)

// TitleCase upper-cases the first letter of every word and lower-cases the
// rest. A letter following an apostrophe continues the word, so "John's"
// stays "John's".
func TitleCase(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	inWord := false
	for _, r := range s {
		switch {
		case unicode.IsLetter(r):
			if inWord {
				b.WriteRune(unicode.ToLower(r))
			} else {
				b.WriteRune(unicode.ToUpper(r))
			}
			inWord = true
		case unicode.IsDigit(r):
			b.WriteRune(r)
			inWord = true
		case r == '\'' || r == '’':
			b.WriteRune(r)
		default:
			b.WriteRune(r)
			inWord = false
		}
	}
	return b.String()
}

// Capitalize upper-cases the first letter and lower-cases the rest.
func Capitalize(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return s
	}
	runes := []rune(strings.ToLower(s))
	runes[0] = unicode.ToUpper(runes[0])
	return string(runes)
}

// RelationshipType converts "works with" to "WORKS_WITH".
func RelationshipType(s string) string {
	return strings.ToUpper(strings.ReplaceAll(strings.TrimSpace(s), " ", "_"))
}

// allowList matches names case-insensitively and returns the configured
// spelling.
type allowList map[string]string

func newAllowList(names []string) allowList {
	if len(names) == 0 {
		return nil
	}
	list := make(allowList, len(names))
	for _, name := range names {
		list[strings.ToLower(name)] = name
	}
	return list
}

func (a allowList) lookup(name string) (string, bool) {
	canonical, ok := a[strings.ToLower(name)]
	return canonical, ok
}
