package bytecode

import "fmt"

type Operator string

// List of binary operators accepted by BOP
const (
	OpAdd Operator = "+"
	OpSub Operator = "-"
	OpMul Operator = "*"
	OpDiv Operator = "/"
	OpMod Operator = "%"
	OpEq  Operator = "=="
	OpNeq Operator = "!="
	OpLt  Operator = "<"
	OpLe  Operator = "<="
	OpGt  Operator = ">"
	OpGe  Operator = ">="
	OpOr  Operator = "|"
	OpAnd Operator = "&"
	OpXor Operator = "^"
)

var operators = map[string]Operator{
	"+":  OpAdd,
	"-":  OpSub,
	"*":  OpMul,
	"/":  OpDiv,
	"%":  OpMod,
	"==": OpEq,
	"!=": OpNeq,
	"<":  OpLt,
	"<=": OpLe,
	">":  OpGt,
	">=": OpGe,
	"|":  OpOr,
	"&":  OpAnd,
	"^":  OpXor,
}

// ParseOperator maps an operator symbol to an Operator
func ParseOperator(sym string) (Operator, error) {
	if op, ok := operators[sym]; ok {
		return op, nil
	}

	return "", fmt.Errorf("%w: %q", ErrUnsupportedOperator, sym)
}
