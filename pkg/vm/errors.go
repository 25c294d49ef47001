package vm

import (
	"errors"
	"fmt"

	"codvm/pkg/bytecode"
)

var (
	ErrStackUnderflow   = errors.New("stack underflow")
	ErrFrameUnderflow   = errors.New("frame underflow")
	ErrInvalidOffset    = errors.New("invalid frame offset")
	ErrInvalidFrame     = errors.New("invalid frame")
	ErrDivideByZero     = errors.New("divide by zero")
	ErrPCOutOfRange     = errors.New("program counter out of range")
	ErrMaxStepsExceeded = errors.New("maximum steps exceeded")
	ErrNotReady         = errors.New("virtual machine already ran")
	ErrNoReader         = errors.New("no reader configured for READ")
	ErrNoWriter         = errors.New("no writer configured for WRITE")
)

// RuntimeError reports a fatal failure together with the instruction that
// caused it
type RuntimeError struct {
	PC          int
	Instruction bytecode.Instruction // nil when pc was out of range
	Err         error
}

func (e *RuntimeError) Error() string {
	if e.Instruction == nil {
		return fmt.Sprintf("at %d: %v", e.PC, e.Err)
	}
	return fmt.Sprintf("at %d (%s): %v", e.PC, e.Instruction, e.Err)
}

func (e *RuntimeError) Unwrap() error {
	return e.Err
}
