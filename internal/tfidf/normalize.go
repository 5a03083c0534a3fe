package tfidf

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// minTokenRunes is the shortest token that survives normalization.
const minTokenRunes = 4

// Normalize canonicalizes raw text into a comparable token string.
//
// It lower-cases the input, drops every rune that is not a letter, digit or
// whitespace, drops digits, and keeps only tokens of at least four runes,
// joined by single spaces. Normalize is pure and idempotent; text made only
// of short tokens normalizes to the empty string.
func Normalize(text string) string {
	if text == "" {
		return ""
	}

	// strip punctuation and digits in a single pass
	cleaned := strings.Map(func(r rune) rune {
		switch {
		case unicode.IsSpace(r):
			return ' '
		case unicode.IsLetter(r):
			return unicode.ToLower(r)
		default:
			// digits and punctuation are both discarded
			return -1
		}
	}, text)

	fields := strings.Fields(cleaned)
	kept := fields[:0]
	for _, field := range fields {
		if utf8.RuneCountInString(field) >= minTokenRunes {
			kept = append(kept, field)
		}
	}

	return strings.Join(kept, " ")
}
