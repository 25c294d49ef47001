package bytecode

import (
	"strconv"
	"strings"
)

type Opcode string

// List of opcodes
const (
	LIT         Opcode = "LIT"
	POP         Opcode = "POP"
	BOP         Opcode = "BOP"
	FALSEBRANCH Opcode = "FALSEBRANCH"
	GOTO        Opcode = "GOTO"
	STORE       Opcode = "STORE"
	LOAD        Opcode = "LOAD"
	ARGS        Opcode = "ARGS"
	CALL        Opcode = "CALL"
	RETURN      Opcode = "RETURN"
	READ        Opcode = "READ"
	WRITE       Opcode = "WRITE"
	LABEL       Opcode = "LABEL"
	DUMP        Opcode = "DUMP"
	HALT        Opcode = "HALT"
)

// Instruction is one decoded operation. The set of implementations is closed:
// only the types in this file satisfy it.
type Instruction interface {
	// Opcode returns the instruction's opcode
	Opcode() Opcode
	// Args returns the operands in the textual form accepted by New
	Args() []string
	// String returns the canonical textual form used in traces
	String() string

	instruction()
}

// Jump is implemented by instructions that transfer control to a label
type Jump interface {
	Instruction
	Target() string
}

type Lit struct {
	Value int
	Name  string // optional variable name
}

type Pop struct {
	Count int
}

type Bop struct {
	Op Operator
}

type FalseBranch struct {
	Label string
}

type Goto struct {
	Label string
}

type Store struct {
	Offset int
	Name   string
}

type Load struct {
	Offset int
	Name   string
}

type Args struct {
	Count int
}

type Call struct {
	Label string
}

type Return struct {
	Label string // optional, e.g. "f<<2>>"
}

type Read struct{}

type Write struct{}

type Label struct {
	Name string
}

type Dump struct {
	On bool
}

type Halt struct{}

func (Lit) instruction()         {}
func (Pop) instruction()         {}
func (Bop) instruction()         {}
func (FalseBranch) instruction() {}
func (Goto) instruction()        {}
func (Store) instruction()       {}
func (Load) instruction()        {}
func (Args) instruction()        {}
func (Call) instruction()        {}
func (Return) instruction()      {}
func (Read) instruction()        {}
func (Write) instruction()       {}
func (Label) instruction()       {}
func (Dump) instruction()        {}
func (Halt) instruction()        {}

func (Lit) Opcode() Opcode         { return LIT }
func (Pop) Opcode() Opcode         { return POP }
func (Bop) Opcode() Opcode         { return BOP }
func (FalseBranch) Opcode() Opcode { return FALSEBRANCH }
func (Goto) Opcode() Opcode        { return GOTO }
func (Store) Opcode() Opcode       { return STORE }
func (Load) Opcode() Opcode        { return LOAD }
func (Args) Opcode() Opcode        { return ARGS }
func (Call) Opcode() Opcode        { return CALL }
func (Return) Opcode() Opcode      { return RETURN }
func (Read) Opcode() Opcode        { return READ }
func (Write) Opcode() Opcode       { return WRITE }
func (Label) Opcode() Opcode       { return LABEL }
func (Dump) Opcode() Opcode        { return DUMP }
func (Halt) Opcode() Opcode        { return HALT }

func (i Lit) Args() []string         { return withName([]string{strconv.Itoa(i.Value)}, i.Name) }
func (i Pop) Args() []string         { return []string{strconv.Itoa(i.Count)} }
func (i Bop) Args() []string         { return []string{string(i.Op)} }
func (i FalseBranch) Args() []string { return []string{i.Label} }
func (i Goto) Args() []string        { return []string{i.Label} }
func (i Store) Args() []string       { return withName([]string{strconv.Itoa(i.Offset)}, i.Name) }
func (i Load) Args() []string        { return withName([]string{strconv.Itoa(i.Offset)}, i.Name) }
func (i Args) Args() []string        { return []string{strconv.Itoa(i.Count)} }
func (i Call) Args() []string        { return []string{i.Label} }
func (i Return) Args() []string      { return withName(nil, i.Label) }
func (Read) Args() []string          { return nil }
func (Write) Args() []string         { return nil }
func (i Label) Args() []string       { return []string{i.Name} }
func (Halt) Args() []string          { return nil }

func (i Dump) Args() []string {
	if i.On {
		return []string{"ON"}
	}
	return []string{"OFF"}
}

func (i FalseBranch) Target() string { return i.Label }
func (i Goto) Target() string        { return i.Label }
func (i Call) Target() string        { return i.Label }

func (i Lit) String() string {
	s := "LIT " + strconv.Itoa(i.Value)
	if i.Name != "" {
		s += " " + i.Name + "\tint " + i.Name
	}
	return s
}

func (i Load) String() string {
	s := "LOAD " + strconv.Itoa(i.Offset)
	if i.Name != "" {
		s += " " + i.Name + "\t<load " + i.Name + ">"
	}
	return s
}

func (i Store) String() string {
	s := "STORE " + strconv.Itoa(i.Offset)
	if i.Name != "" {
		s += " " + i.Name + "\t<store " + i.Name + ">"
	}
	return s
}

func (i Pop) String() string         { return format(i) }
func (i Bop) String() string         { return format(i) }
func (i FalseBranch) String() string { return format(i) }
func (i Goto) String() string        { return format(i) }
func (i Args) String() string        { return format(i) }
func (i Call) String() string        { return format(i) }
func (i Return) String() string      { return format(i) }
func (i Read) String() string        { return format(i) }
func (i Write) String() string       { return format(i) }
func (i Label) String() string       { return format(i) }
func (i Dump) String() string        { return format(i) }
func (i Halt) String() string        { return format(i) }

// FunctionName returns the label text before "<<", e.g. "f" for "f<<2>>"
func (i Return) FunctionName() string {
	name, _, _ := strings.Cut(i.Label, "<<")
	return name
}

// Traceable reports whether executing the instruction produces trace output
// while tracing is enabled
func Traceable(in Instruction) bool {
	switch in.(type) {
	case Label, Dump, Halt:
		return false
	default:
		return true
	}
}

func format(in Instruction) string {
	return strings.Join(append([]string{string(in.Opcode())}, in.Args()...), " ")
}

func withName(args []string, name string) []string {
	if name == "" {
		return args
	}
	return append(args, name)
}
