package bytecode

import (
	"fmt"
	"strconv"
	"strings"
)

// New builds an instruction from an opcode name and its textual operands.
// Opcode names are case-insensitive.
func New(name string, args ...string) (Instruction, error) {
	op := Opcode(strings.ToUpper(name))

	switch op {
	case LIT:
		if err := arity(op, args, 1, 2); err != nil {
			return nil, err
		}
		v, err := parseInt(op, args[0])
		if err != nil {
			return nil, err
		}
		return Lit{Value: v, Name: optional(args, 1)}, nil

	case POP:
		n, err := countArg(op, args)
		if err != nil {
			return nil, err
		}
		return Pop{Count: n}, nil

	case BOP:
		if err := arity(op, args, 1, 1); err != nil {
			return nil, err
		}
		o, err := ParseOperator(args[0])
		if err != nil {
			return nil, err
		}
		return Bop{Op: o}, nil

	case FALSEBRANCH, GOTO, CALL, LABEL:
		if err := arity(op, args, 1, 1); err != nil {
			return nil, err
		}
		switch op {
		case FALSEBRANCH:
			return FalseBranch{Label: args[0]}, nil
		case GOTO:
			return Goto{Label: args[0]}, nil
		case CALL:
			return Call{Label: args[0]}, nil
		default:
			return Label{Name: args[0]}, nil
		}

	case STORE, LOAD:
		if err := arity(op, args, 1, 2); err != nil {
			return nil, err
		}
		off, err := parseNonNegative(op, args[0])
		if err != nil {
			return nil, err
		}
		if op == STORE {
			return Store{Offset: off, Name: optional(args, 1)}, nil
		}
		return Load{Offset: off, Name: optional(args, 1)}, nil

	case ARGS:
		n, err := countArg(op, args)
		if err != nil {
			return nil, err
		}
		return Args{Count: n}, nil

	case RETURN:
		if err := arity(op, args, 0, 1); err != nil {
			return nil, err
		}
		return Return{Label: optional(args, 0)}, nil

	case READ, WRITE, HALT:
		if err := arity(op, args, 0, 0); err != nil {
			return nil, err
		}
		switch op {
		case READ:
			return Read{}, nil
		case WRITE:
			return Write{}, nil
		default:
			return Halt{}, nil
		}

	case DUMP:
		if err := arity(op, args, 1, 1); err != nil {
			return nil, err
		}
		switch strings.ToUpper(args[0]) {
		case "ON":
			return Dump{On: true}, nil
		case "OFF":
			return Dump{On: false}, nil
		default:
			return nil, fmt.Errorf("%w: DUMP expects ON or OFF, got %q", ErrMalformedInstruction, args[0])
		}

	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownOpcode, name)
	}
}

// MustNew is like New but panics on error. Intended for tests and fixed programs.
func MustNew(name string, args ...string) Instruction {
	in, err := New(name, args...)
	if err != nil {
		panic(err)
	}
	return in
}

func arity(op Opcode, args []string, lo, hi int) error {
	if len(args) < lo || len(args) > hi {
		if lo == hi {
			return fmt.Errorf("%w: %s takes %d operand(s), got %d", ErrMalformedInstruction, op, lo, len(args))
		}
		return fmt.Errorf("%w: %s takes %d to %d operands, got %d", ErrMalformedInstruction, op, lo, hi, len(args))
	}
	return nil
}

func countArg(op Opcode, args []string) (int, error) {
	if err := arity(op, args, 1, 1); err != nil {
		return 0, err
	}
	return parseNonNegative(op, args[0])
}

func parseInt(op Opcode, s string) (int, error) {
	v, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("%w: %s operand %q is not an integer", ErrMalformedInstruction, op, s)
	}
	return v, nil
}

func parseNonNegative(op Opcode, s string) (int, error) {
	v, err := parseInt(op, s)
	if err != nil {
		return 0, err
	}
	if v < 0 {
		return 0, fmt.Errorf("%w: %s operand must not be negative, got %d", ErrMalformedInstruction, op, v)
	}
	return v, nil
}

func optional(args []string, i int) string {
	if i < len(args) {
		return args[i]
	}
	return ""
}
