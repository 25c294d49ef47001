package loader

import (
	"errors"
	"fmt"

	"codvm/pkg/bytecode"
	"codvm/pkg/color"
	"codvm/pkg/lexer"
	"codvm/pkg/program"
)

// SyntaxError is a malformed line in a bytecode listing
type SyntaxError struct {
	Line   int
	Column int
	Err    error
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("line %d, column %d: %v", e.Line, e.Column, e.Err)
}

func (e *SyntaxError) Unwrap() error {
	return e.Err
}

// Pretty renders the error for a terminal
func (e *SyntaxError) Pretty() string {
	return color.RedText(e.Err.Error()) + " at " + color.YellowText(fmt.Sprintf("Line: %d, Column %d", e.Line, e.Column))
}

// Loader turns bytecode text into a program builder, one instruction per line
type Loader struct {
	l      *lexer.Lexer
	errors []*SyntaxError
}

func NewLoader(l *lexer.Lexer) *Loader {
	return &Loader{l: l}
}

// Load reads src and returns a builder with its instructions in order.
// Every malformed line is reported; the errors are joined.
func Load(src string) (*program.Builder, error) {
	ld := NewLoader(lexer.NewLexer(src))
	b := ld.Load()
	if errs := ld.Errors(); len(errs) > 0 {
		joined := make([]error, len(errs))
		for i, e := range errs {
			joined[i] = e
		}
		return nil, errors.Join(joined...)
	}
	return b, nil
}

// Load consumes the whole input. Lines that fail are skipped and recorded.
func (ld *Loader) Load() *program.Builder {
	b := program.NewBuilder()

	for {
		toks, ok := ld.l.Line()
		if !ok {
			return b
		}
		if len(toks) == 0 {
			continue
		}

		if in, err := ld.instruction(toks); err != nil {
			ld.errors = append(ld.errors, err)
		} else {
			b.Append(in)
		}
	}
}

// Errors returns the syntax errors collected by Load
func (ld *Loader) Errors() []*SyntaxError {
	return ld.errors
}

func (ld *Loader) instruction(toks []lexer.Token) (bytecode.Instruction, *SyntaxError) {
	for _, t := range toks {
		if t.Type == lexer.ILLEGAL {
			return nil, syntaxError(t, fmt.Errorf("%w: illegal character %q", bytecode.ErrMalformedInstruction, t.Lexeme))
		}
	}

	head := toks[0]
	if head.Type != lexer.WORD {
		return nil, syntaxError(head, fmt.Errorf("%w: expected opcode, found %s %q", bytecode.ErrMalformedInstruction, head.Type, head.Lexeme))
	}

	args := make([]string, 0, len(toks)-1)
	for _, t := range toks[1:] {
		args = append(args, t.Lexeme)
	}

	in, err := bytecode.New(head.Lexeme, args...)
	if err != nil {
		return nil, syntaxError(head, err)
	}
	return in, nil
}

func syntaxError(t lexer.Token, err error) *SyntaxError {
	return &SyntaxError{Line: t.Pos.Line, Column: t.Pos.Column, Err: err}
}
