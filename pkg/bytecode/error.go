package bytecode

import "errors"

var (
	ErrMalformedInstruction = errors.New("malformed instruction")
	ErrUnsupportedOperator  = errors.New("unsupported operator")
	ErrUnknownOpcode        = errors.New("unknown opcode")
)
