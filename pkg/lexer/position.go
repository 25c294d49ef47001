package lexer

import "fmt"

// Position is a 1-based line and column plus a 0-based byte offset
type Position struct {
	Line   int
	Column int
	Offset int
}

// Returns a string representation of the Position
func (p Position) String() string {
	return fmt.Sprintf("%d:%d", p.Line, p.Column)
}
