package lexer

import (
	"fmt"
)

type TokenType int

type Token struct {
	Type    TokenType // Type of the token
	Lexeme  string    // Actual string from source code
	Literal string    // Literal value (if applicable), empty string if not
	Pos     Position  // Position in source code
}

// NewToken creates a new Token instance
func NewToken(tokenType TokenType, lexeme string, literal string, Pos Position) Token {
	return Token{
		Type:    tokenType,
		Lexeme:  lexeme,
		Literal: literal,
		Pos:     Pos,
	}
}

const (
	EOF TokenType = iota // End of file

	NEWLINE // end of an instruction line
	NUM     // signed decimal integer
	WORD    // opcode, label, operator or name

	ILLEGAL // illegal token
)

var tokenNames = map[TokenType]string{
	EOF:     "EOF",
	NEWLINE: "NEWLINE",
	NUM:     "NUM",
	WORD:    "WORD",
	ILLEGAL: "ILLEGAL",
}

// String returns a string representation of the Token
func (t Token) String() string {
	if t.Literal == "" {
		return fmt.Sprintf("T_{%s, %q, nil, %s}",
			t.Type, t.Lexeme, t.Pos.String())
	}

	return fmt.Sprintf("T_{%s, %q, %q, %s}",
		t.Type, t.Lexeme, t.Literal, t.Pos.String())
}

// String returns a string representation of the TokenType
func (t TokenType) String() string {
	if str, ok := tokenNames[t]; ok {
		return str
	}

	return fmt.Sprintf("UNKNOWN(%d)", int(t))
}
