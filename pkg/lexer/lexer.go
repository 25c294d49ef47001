package lexer

type Lexer struct {
	input    string // input string to be tokenized
	length   int    // length of the input string
	position int    // current position in the input string
	line     int    // current line number for error reporting
	column   int    // current column number for error reporting
}

// Create a new lexer instance
func NewLexer(s string) *Lexer {
	return &Lexer{
		input:    s,
		length:   len(s),
		position: 0,
		line:     1,
		column:   1,
	}
}

// Get the next token from the input
func (l *Lexer) NextToken() Token {
	for {
		// End of input
		if l.position >= l.length {
			return NewToken(EOF, "", "", l.currentPosition())
		}

		remaining := l.input[l.position:]
		tokenType, lexeme, matched := MatchToken(remaining)

		if !matched {
			pos := l.currentPosition()
			l.advance(len(lexeme))
			return NewToken(ILLEGAL, lexeme, "", pos)
		}

		// whitespace and comments
		if tokenType == EOF {
			l.advance(len(lexeme))
			continue
		}

		literal := ""
		if tokenType == NUM {
			literal = lexeme
		}

		tok := NewToken(tokenType, lexeme, literal, l.currentPosition())
		l.advance(len(lexeme))

		return tok
	}
}

// Line returns the tokens up to the end of the current line, without the
// NEWLINE. ok is false once the input is exhausted.
func (l *Lexer) Line() (tokens []Token, ok bool) {
	for {
		tok := l.NextToken()
		switch tok.Type {
		case EOF:
			return tokens, len(tokens) > 0
		case NEWLINE:
			return tokens, true
		default:
			tokens = append(tokens, tok)
		}
	}
}

// Advance the lexer position by n characters
func (l *Lexer) advance(n int) {
	for i := 0; i < n; i++ {
		if l.position >= l.length {
			break
		}

		if l.input[l.position] == '\n' {
			l.line++
			l.column = 1
		} else {
			l.column++
		}

		l.position++
	}
}

// Get the current position of the lexer
func (l *Lexer) currentPosition() Position {
	return Position{
		Line:   l.line,
		Column: l.column,
		Offset: l.position,
	}
}
