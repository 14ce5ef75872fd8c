package similarity

import (
	"strings"
	"unicode"
)

// Normalize lowercases text, drops every character that is neither a word
// character nor whitespace, and collapses whitespace runs into single spaces.
// The result only feeds the scorer; offsets are always taken from the raw text.
func Normalize(text string) string {
	var sb strings.Builder
	sb.Grow(len(text))

	pendingSpace := false
	for _, r := range strings.ToLower(text) {
		switch {
		case unicode.IsSpace(r):
			pendingSpace = true
		case isWordRune(r):
			if pendingSpace && sb.Len() > 0 {
				sb.WriteByte(' ')
			}
			pendingSpace = false
			sb.WriteRune(r)
		}
	}

	return sb.String()
}

func isWordRune(r rune) bool {
	return r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r)
}
