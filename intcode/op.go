package intcode

import "fmt"

// Op represents an Intcode opcode, the low two decimal digits of an
// instruction word.
type Op int64

const (
	ADD Op = 1
	MUL Op = 2
	IN  Op = 3
	OUT Op = 4
	JT  Op = 5
	JF  Op = 6
	LT  Op = 7
	EQ  Op = 8
	HLT Op = 99
)

// opInfo describes the fixed shape of an opcode: how many parameters it
// takes and which of them, if any, names a write target.
type opInfo struct {
	name   string
	params int
	write  int // index of the write-target parameter, or -1
}

var opTable = map[Op]opInfo{
	ADD: {"add", 3, 2},
	MUL: {"mul", 3, 2},
	IN:  {"in", 1, 0},
	OUT: {"out", 1, -1},
	JT:  {"jt", 2, -1},
	JF:  {"jf", 2, -1},
	LT:  {"lt", 3, 2},
	EQ:  {"eq", 3, 2},
	HLT: {"hlt", 0, -1},
}

// Valid reports whether o is a known opcode.
func (o Op) Valid() bool {
	_, ok := opTable[o]
	return ok
}

// Params returns the number of parameters taken by o.
func (o Op) Params() int { return opTable[o].params }

// Width returns the number of memory words occupied by an instruction
// with opcode o.
func (o Op) Width() int { return 1 + o.Params() }

// WriteParam returns the index of the parameter that o writes to,
// and false if o does not write to memory.
func (o Op) WriteParam() (int, bool) {
	info, ok := opTable[o]
	if !ok || info.write < 0 {
		return 0, false
	}
	return info.write, true
}

func (o Op) String() string {
	if info, ok := opTable[o]; ok {
		return info.name
	}
	return fmt.Sprintf("op(%d)", int64(o))
}

// Mode is a parameter mode.
type Mode byte

const (
	Position  Mode = 0
	Immediate Mode = 1
)

func (m Mode) String() string {
	switch m {
	case Position:
		return "position"
	case Immediate:
		return "immediate"
	}
	return fmt.Sprintf("mode(%d)", byte(m))
}

// maxParams is the largest parameter count of any opcode.
const maxParams = 3

// Instruction is a decoded instruction word.
type Instruction struct {
	Op    Op
	Modes [maxParams]Mode
}

// Mode returns the effective mode of parameter i. Write targets are
// always addresses, whatever their encoded mode.
func (in Instruction) Mode(i int) Mode {
	if w, ok := in.Op.WriteParam(); ok && w == i {
		return Position
	}
	return in.Modes[i]
}

// Decode splits an instruction word into its opcode and parameter modes.
// It returns an error if the opcode is unknown or a mode digit used by
// the opcode is neither 0 nor 1.
func Decode(word int64) (Instruction, error) {
	in := Instruction{Op: Op(word % 100)}
	if !in.Op.Valid() {
		return in, fmt.Errorf("invalid opcode %d in word %d", word%100, word)
	}
	modes := word / 100
	for i := 0; i < in.Op.Params(); i++ {
		m := Mode(modes % 10)
		if m != Position && m != Immediate {
			return in, fmt.Errorf("invalid mode %d for parameter %d in word %d", modes%10, i+1, word)
		}
		in.Modes[i] = m
		modes /= 10
	}
	return in, nil
}
