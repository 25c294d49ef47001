package vm

import (
	"fmt"
	"io"
	"os"

	"codvm/pkg/bytecode"
	"codvm/pkg/program"
	"codvm/pkg/stack"

	"github.com/charmbracelet/log"
)

type State int

const (
	Ready State = iota
	Running
	Halted
	Failed
)

func (s State) String() string {
	switch s {
	case Ready:
		return "ready"
	case Running:
		return "running"
	case Halted:
		return "halted"
	case Failed:
		return "failed"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// VM executes one resolved program. A VM is single use: build a new one for
// every run.
type VM struct {
	prog *program.Program
	pc   int

	stack   *RuntimeStack
	returns *stack.Stack[int] // return addresses

	state   State
	dumping bool
	err     error // failure that moved the VM to Failed

	in    Reader
	out   Writer
	trace io.Writer
	log   *log.Logger

	maxSteps int // maximum steps (0 = unlimited)
	steps    int // steps executed
}

type Option func(*VM)

// WithReader sets the source of integers for READ
func WithReader(r Reader) Option {
	return func(v *VM) { v.in = r }
}

// WithWriter sets the destination of WRITE
func WithWriter(w Writer) Option {
	return func(v *VM) { v.out = w }
}

// WithTrace sets the writer that receives trace output
func WithTrace(w io.Writer) Option {
	return func(v *VM) { v.trace = w }
}

// WithDumping sets whether tracing is on before the first DUMP instruction.
// Tracing starts on.
func WithDumping(on bool) Option {
	return func(v *VM) { v.dumping = on }
}

// WithMaxSteps sets a maximum number of steps before returning ErrMaxStepsExceeded
func WithMaxSteps(n int) Option {
	return func(v *VM) { v.maxSteps = n }
}

// WithLogger sets the logger used for debug output
func WithLogger(l *log.Logger) Option {
	return func(v *VM) { v.log = l }
}

// New creates a VM for a resolved program
func New(p *program.Program, opts ...Option) *VM {
	v := &VM{
		prog:    p,
		pc:      0,
		stack:   NewRuntimeStack(),
		returns: stack.NewStack[int](),
		state:   Ready,
		dumping: true,
	}

	for _, o := range opts {
		o(v)
	}

	if v.trace == nil {
		v.trace = os.Stdout
	}
	if v.log == nil {
		v.log = log.Default()
	}

	return v
}

// Run executes until HALT or a fatal error
func (v *VM) Run() error {
	if v.state != Ready {
		return ErrNotReady
	}

	for {
		halted, err := v.Step()
		if err != nil {
			return err
		}

		if halted {
			return nil
		}
	}
}

// Step executes a single instruction, returning (halted, error)
func (v *VM) Step() (bool, error) {
	switch v.state {
	case Halted:
		return true, nil
	case Failed:
		return true, v.err
	case Ready:
		v.state = Running
		v.log.Debug("run started", "instructions", v.prog.Len(), "dump", v.dumping)
	}

	if v.maxSteps > 0 && v.steps >= v.maxSteps {
		return false, v.fail(nil, ErrMaxStepsExceeded)
	}

	if v.pc < 0 || v.pc >= v.prog.Len() {
		return false, v.fail(nil, fmt.Errorf("%w: %d not in [0, %d)", ErrPCOutOfRange, v.pc, v.prog.Len()))
	}

	in := v.prog.At(v.pc)
	if err := v.exec(in); err != nil {
		return false, v.fail(in, err)
	}
	v.steps++

	if v.dumping && bytecode.Traceable(in) {
		v.dump(in)
	}

	if v.state == Halted {
		v.log.Debug("run halted", "pc", v.pc, "steps", v.steps)
		return true, nil
	}

	v.pc++
	return false, nil
}

func (v *VM) fail(in bytecode.Instruction, err error) error {
	v.state = Failed
	v.err = &RuntimeError{PC: v.pc, Instruction: in, Err: err}
	return v.err
}

// dump writes the trace lines for an instruction that just executed
func (v *VM) dump(in bytecode.Instruction) {
	text := in.String()
	if r, ok := in.(bytecode.Return); ok && r.Label != "" {
		if top, err := v.stack.Peek(); err == nil {
			text = fmt.Sprintf("%s EXIT %s: %d", text, r.FunctionName(), top)
		}
	}
	fmt.Fprintln(v.trace, text)
	fmt.Fprintln(v.trace, v.stack.Dump())
}

// State returns the lifecycle state
func (v *VM) State() State {
	return v.state
}

// Steps returns the number of instructions executed
func (v *VM) Steps() int {
	return v.steps
}

// Stack returns the runtime stack. Callers must not modify it while the VM runs.
func (v *VM) Stack() *RuntimeStack {
	return v.stack
}

// Program returns the program being executed
func (v *VM) Program() *program.Program {
	return v.prog
}

// PC returns the program counter
func (v *VM) PC() int {
	return v.pc
}

// SetPC sets the program counter. The loop increments it after every
// instruction, so jumps store target-1.
func (v *VM) SetPC(pc int) {
	v.pc = pc
}

// Halt stops the run after the current instruction
func (v *VM) Halt() {
	v.state = Halted
}

// Dumping reports whether tracing is on
func (v *VM) Dumping() bool {
	return v.dumping
}

// SetDumping turns tracing on or off
func (v *VM) SetDumping(on bool) {
	v.dumping = on
}

// LabelAddress returns the index of a label in the program
func (v *VM) LabelAddress(name string) (int, bool) {
	return v.prog.LabelAddress(name)
}

// Push pushes a value on the runtime stack
func (v *VM) Push(val int) {
	v.stack.Push(val)
}

// Pop pops the top of the runtime stack
func (v *VM) Pop() (int, error) {
	return v.stack.Pop()
}

// Peek returns the top of the runtime stack
func (v *VM) Peek() (int, error) {
	return v.stack.Peek()
}

// PopN discards the top n values of the current frame
func (v *VM) PopN(n int) (int, error) {
	return v.stack.PopN(n)
}

// Store pops the top value into a frame slot
func (v *VM) Store(offset int) (int, error) {
	return v.stack.Store(offset)
}

// Load pushes a copy of a frame slot
func (v *VM) Load(offset int) (int, error) {
	return v.stack.Load(offset)
}

// NewFrameAt opens a frame over the top reserve values
func (v *VM) NewFrameAt(reserve int) error {
	if err := v.stack.NewFrameAt(reserve); err != nil {
		return err
	}
	v.log.Debug("frame opened", "fp", v.stack.FramePointer(), "depth", v.stack.FrameCount())
	return nil
}

// PopFrame closes the current frame
func (v *VM) PopFrame() error {
	if err := v.stack.PopFrame(); err != nil {
		return err
	}
	v.log.Debug("frame closed", "fp", v.stack.FramePointer(), "depth", v.stack.FrameCount())
	return nil
}

// PushReturnAddress records where to resume after a call
func (v *VM) PushReturnAddress(addr int) {
	v.returns.Push(addr)
}

// PopReturnAddress removes the most recent return address
func (v *VM) PopReturnAddress() (int, error) {
	addr, ok := v.returns.Pop()
	if !ok {
		return 0, fmt.Errorf("%w: return address stack is empty", ErrStackUnderflow)
	}
	return addr, nil
}

// Bop pops the right then the left operand and pushes left op right
func (v *VM) Bop(op bytecode.Operator) error {
	right, err := v.stack.Pop()
	if err != nil {
		return err
	}
	left, err := v.stack.Pop()
	if err != nil {
		return err
	}

	res, err := evalBinary(op, left, right)
	if err != nil {
		return err
	}

	v.stack.Push(res)
	return nil
}

// Read pushes one integer from the input reader
func (v *VM) Read() error {
	if v.in == nil {
		return ErrNoReader
	}
	val, err := v.in.ReadInt()
	if err != nil {
		return fmt.Errorf("read: %w", err)
	}
	v.stack.Push(val)
	return nil
}

// Write prints the top of the stack without popping it
func (v *VM) Write() error {
	top, err := v.stack.Peek()
	if err != nil {
		return err
	}
	if v.out == nil {
		return ErrNoWriter
	}
	if err := v.out.WriteInt(top); err != nil {
		return fmt.Errorf("write: %w", err)
	}
	return nil
}
