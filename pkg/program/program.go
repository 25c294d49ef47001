package program

import (
	"codvm/pkg/bytecode"
	"errors"
	"fmt"
)

var (
	ErrUnresolvedLabel = errors.New("unresolved label")
	ErrDuplicateLabel  = errors.New("duplicate label")
)

// Builder accumulates instructions at load time
type Builder struct {
	code []bytecode.Instruction
}

// NewBuilder creates a builder, optionally seeded with instructions
func NewBuilder(code ...bytecode.Instruction) *Builder {
	return &Builder{code: append([]bytecode.Instruction(nil), code...)}
}

// Append adds an instruction to the end of the program
func (b *Builder) Append(in bytecode.Instruction) {
	b.code = append(b.code, in)
}

// Len returns the number of instructions appended so far
func (b *Builder) Len() int {
	return len(b.code)
}

// Resolve maps every label reference to the index of its LABEL instruction
// and returns the resulting read-only Program. The builder is left untouched,
// so resolving twice yields identical programs.
func (b *Builder) Resolve() (*Program, error) {
	labels := make(map[string]int)

	// first pass: record label positions
	for idx, in := range b.code {
		if l, ok := in.(bytecode.Label); ok {
			if prev, dup := labels[l.Name]; dup {
				return nil, fmt.Errorf("%w: %q at %d, first defined at %d", ErrDuplicateLabel, l.Name, idx, prev)
			}
			labels[l.Name] = idx
		}
	}

	// second pass: fill targets for GOTO, FALSEBRANCH and CALL
	targets := make([]int, len(b.code))
	for idx, in := range b.code {
		targets[idx] = -1
		j, ok := in.(bytecode.Jump)
		if !ok {
			continue
		}
		addr, ok := labels[j.Target()]
		if !ok {
			return nil, fmt.Errorf("%w: %s at %d", ErrUnresolvedLabel, j, idx)
		}
		targets[idx] = addr
	}

	return &Program{
		code:    append([]bytecode.Instruction(nil), b.code...),
		targets: targets,
		labels:  labels,
	}, nil
}

// Program is a resolved, immutable instruction sequence. It is safe to share
// between virtual machines.
type Program struct {
	code    []bytecode.Instruction
	targets []int          // resolved jump target per index, -1 when none
	labels  map[string]int // label name -> index
}

// Len returns the number of instructions
func (p *Program) Len() int {
	return len(p.code)
}

// At returns the instruction at index i
func (p *Program) At(i int) bytecode.Instruction {
	return p.code[i]
}

// Target returns the resolved jump target of the instruction at i, or -1
func (p *Program) Target(i int) int {
	return p.targets[i]
}

// Targets returns a copy of the resolved target table
func (p *Program) Targets() []int {
	return append([]int(nil), p.targets...)
}

// LabelAddress returns the index of the LABEL instruction with the given name
func (p *Program) LabelAddress(name string) (int, bool) {
	addr, ok := p.labels[name]
	return addr, ok
}

// Labels returns a copy of the label table
func (p *Program) Labels() map[string]int {
	out := make(map[string]int, len(p.labels))
	for k, v := range p.labels {
		out[k] = v
	}
	return out
}

// Instructions returns a copy of the instruction list
func (p *Program) Instructions() []bytecode.Instruction {
	return append([]bytecode.Instruction(nil), p.code...)
}
