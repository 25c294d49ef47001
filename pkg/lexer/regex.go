package lexer

import (
	"regexp"
)

// Token regex patterns
var tokenRegexes = map[TokenType]*regexp.Regexp{
	NEWLINE: regexp.MustCompile(`^\n`),
	NUM:     regexp.MustCompile(`^[+-]?\d+$`),
	WORD:    regexp.MustCompile(`^[^\s]+`),
}

var (
	whitespaceRegex = regexp.MustCompile(`^[ \t\r\f\v]+`)
	commentRegex    = regexp.MustCompile(`^//[^\n]*`)
)

// MatchToken matches one token at the start of the string. Whitespace and
// comments are reported as EOF with a non-empty lexeme so the caller can skip them.
func MatchToken(s string) (TokenType, string, bool) {
	if s == "" {
		return EOF, "", false
	} else if match := whitespaceRegex.FindString(s); match != "" {
		return EOF, match, true
	} else if match := commentRegex.FindString(s); match != "" {
		return EOF, match, true
	} else if match := tokenRegexes[NEWLINE].FindString(s); match != "" {
		return NEWLINE, match, true
	}

	word := tokenRegexes[WORD].FindString(s)
	if word == "" {
		return ILLEGAL, string(s[0]), false
	}

	// a word that is entirely a signed integer is a number
	if tokenRegexes[NUM].MatchString(word) {
		return NUM, word, true
	}

	return WORD, word, true
}
