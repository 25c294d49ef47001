package vm

import (
	"fmt"

	"codvm/pkg/bytecode"
)

// exec applies one instruction's effect. The caller advances the program
// counter afterwards.
func (v *VM) exec(in bytecode.Instruction) error {
	switch in := in.(type) {
	case bytecode.Lit:
		v.Push(in.Value)
		return nil

	case bytecode.Pop:
		_, err := v.PopN(in.Count)
		return err

	case bytecode.Bop:
		return v.Bop(in.Op)

	case bytecode.FalseBranch:
		cond, err := v.Pop()
		if err != nil {
			return err
		}
		if cond == 0 {
			v.SetPC(v.prog.Target(v.pc) - 1)
		}
		return nil

	case bytecode.Goto:
		v.SetPC(v.prog.Target(v.pc) - 1)
		return nil

	case bytecode.Store:
		_, err := v.Store(in.Offset)
		return err

	case bytecode.Load:
		_, err := v.Load(in.Offset)
		return err

	case bytecode.Args:
		return v.NewFrameAt(in.Count)

	case bytecode.Call:
		// land on the LABEL itself; the increment skips it
		v.PushReturnAddress(v.pc)
		v.SetPC(v.prog.Target(v.pc))
		return nil

	case bytecode.Return:
		ret, err := v.Peek()
		if err != nil {
			return err
		}
		if v.stack.FrameCount() <= 1 {
			return fmt.Errorf("%w: RETURN outside a call frame", ErrFrameUnderflow)
		}
		if v.returns.Size() == 0 {
			return fmt.Errorf("%w: return address stack is empty", ErrStackUnderflow)
		}
		if err := v.PopFrame(); err != nil {
			return err
		}
		addr, err := v.PopReturnAddress()
		if err != nil {
			return err
		}
		v.SetPC(addr)
		v.Push(ret)
		return nil

	case bytecode.Read:
		return v.Read()

	case bytecode.Write:
		return v.Write()

	case bytecode.Label:
		return nil

	case bytecode.Dump:
		v.SetDumping(in.On)
		return nil

	case bytecode.Halt:
		v.Halt()
		return nil

	default:
		return fmt.Errorf("%w: unhandled instruction %T", bytecode.ErrMalformedInstruction, in)
	}
}

// evalBinary computes left op right; comparisons yield 1 or 0
func evalBinary(op bytecode.Operator, left, right int) (int, error) {
	switch op {
	case bytecode.OpAdd:
		return left + right, nil
	case bytecode.OpSub:
		return left - right, nil
	case bytecode.OpMul:
		return left * right, nil
	case bytecode.OpDiv:
		if right == 0 {
			return 0, fmt.Errorf("%w: %d / 0", ErrDivideByZero, left)
		}
		return left / right, nil
	case bytecode.OpMod:
		if right == 0 {
			return 0, fmt.Errorf("%w: %d %% 0", ErrDivideByZero, left)
		}
		return left % right, nil
	case bytecode.OpOr:
		return left | right, nil
	case bytecode.OpAnd:
		return left & right, nil
	case bytecode.OpXor:
		return left ^ right, nil
	case bytecode.OpEq:
		return boolInt(left == right), nil
	case bytecode.OpNeq:
		return boolInt(left != right), nil
	case bytecode.OpLt:
		return boolInt(left < right), nil
	case bytecode.OpLe:
		return boolInt(left <= right), nil
	case bytecode.OpGt:
		return boolInt(left > right), nil
	case bytecode.OpGe:
		return boolInt(left >= right), nil
	default:
		return 0, fmt.Errorf("%w: %q", bytecode.ErrUnsupportedOperator, string(op))
	}
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
