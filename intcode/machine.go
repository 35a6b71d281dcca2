// Package intcode provides an implementation of an Intcode computer,
// called Machine, that executes programs stored in its own memory.
package intcode

import "fmt"

// Machine is an Intcode computer.
type Machine struct {
	Mem []int64
	PC  int
	In  Input
	Out Output

	// Tracef, if non-nil, is called before each instruction is executed.
	Tracef func(format string, args ...any)

	status Status
	err    error
	steps  int
}

// NewMachine returns a Machine with a copy of program loaded at address 0.
// A nil in behaves as an exhausted input and a nil out discards output.
func NewMachine(program []int64, in Input, out Output) *Machine {
	return Resume(program, 0, 0, in, out)
}

// Resume returns a running Machine with a copy of mem, about to execute
// the instruction at pc, that has already executed steps instructions.
func Resume(mem []int64, pc, steps int, in Input, out Output) *Machine {
	if in == nil {
		in = noInput{}
	}
	if out == nil {
		out = discard{}
	}
	return &Machine{
		Mem: append([]int64(nil), mem...),
		PC:  pc,
		In:  in,
		Out: out,

		steps: steps,
	}
}

// Status returns the current status of the machine.
func (m *Machine) Status() Status { return m.status }

// Err returns the fault that stopped the machine, or nil if it has not
// faulted. The returned error is always a FaultError.
func (m *Machine) Err() error { return m.err }

// Steps returns the number of instructions executed so far.
func (m *Machine) Steps() int { return m.steps }

// Memory returns a copy of the machine's memory.
func (m *Machine) Memory() []int64 { return append([]int64(nil), m.Mem...) }

// Step executes the instruction at m.PC and returns the resulting status.
// It does nothing if the machine is not running.
func (m *Machine) Step() Status {
	if m.status != Running {
		return m.status
	}
	if err := m.exec(); err != nil {
		m.status, m.err = Faulted, err
	}
	return m.status
}

// Run executes instructions until the machine halts or faults, and returns
// the final status along with a copy of memory.
func (m *Machine) Run() (Status, []int64) {
	for m.Step() == Running {
	}
	return m.status, m.Memory()
}

func (m *Machine) exec() (err error) {
	var (
		opPC  = m.PC
		op    Op
		fetch bool
	)
	defer func() {
		if e := recover(); e != nil {
			if code, ok := e.(FaultCode); ok {
				err = FaultError{
					FaultCode: code,
					Op:        op,
					Addr:      opPC,
					Fetch:     fetch,
				}
			} else {
				panic(e)
			}
		}
	}()

	if m.PC < 0 || m.PC >= len(m.Mem) {
		fetch = true
		panic(AddressOutOfRange)
	}
	word := m.Mem[m.PC]
	op = Op(word % 100)
	in, derr := Decode(word)
	if derr != nil {
		panic(InvalidOpcode)
	}
	if m.PC+op.Width() > len(m.Mem) {
		panic(AddressOutOfRange)
	}
	if m.Tracef != nil {
		text, _ := m.Disassemble(m.PC)
		m.Tracef("%.4d  %s", m.PC, text)
	}

	switch op {
	case ADD, MUL, LT, EQ:
		a, b := m.param(in, 0), m.param(in, 1)
		dst := m.addr(in, 2)
		var v int64
		switch op {
		case ADD:
			v = a + b
		case MUL:
			v = a * b
		case LT:
			v = boolWord(a < b)
		case EQ:
			v = boolWord(a == b)
		}
		m.Mem[dst] = v
		m.PC += op.Width()
	case IN:
		dst := m.addr(in, 0)
		v, ok := m.In.Next()
		if !ok {
			panic(InputExhausted)
		}
		m.Mem[dst] = v
		m.PC += op.Width()
	case OUT:
		v := m.param(in, 0)
		m.PC += op.Width()
		m.Out.Emit(v)
	case JT, JF:
		cond, target := m.param(in, 0), m.param(in, 1)
		if (cond != 0) == (op == JT) {
			m.PC = m.checkAddr(target)
		} else {
			m.PC += op.Width()
		}
	case HLT:
		m.status = Halted
	default:
		panic(InvalidOpcode)
	}
	m.steps++

	return nil
}

// param returns the value of parameter i of the instruction at m.PC,
// resolved according to its mode.
func (m *Machine) param(in Instruction, i int) int64 {
	v := m.Mem[m.PC+1+i]
	if in.Mode(i) == Immediate {
		return v
	}
	return m.load(v)
}

// addr returns the address named by write-target parameter i of the
// instruction at m.PC.
func (m *Machine) addr(in Instruction, i int) int {
	return m.checkAddr(m.Mem[m.PC+1+i])
}

func (m *Machine) load(addr int64) int64 {
	return m.Mem[m.checkAddr(addr)]
}

func (m *Machine) checkAddr(addr int64) int {
	if addr < 0 || addr >= int64(len(m.Mem)) {
		panic(AddressOutOfRange)
	}
	return int(addr)
}

func boolWord(b bool) int64 {
	if b {
		return 1
	}
	return 0
}

// Status is the execution status of a Machine.
type Status byte

const (
	Running Status = iota
	Halted
	Faulted
)

func (s Status) String() string {
	switch s {
	case Running:
		return "running"
	case Halted:
		return "halted"
	case Faulted:
		return "faulted"
	}
	return fmt.Sprintf("status(%d)", byte(s))
}

// FaultError is the reason a Machine faulted.
type FaultError struct {
	FaultCode
	Op   Op
	Addr int

	// Fetch is set when the PC itself was outside memory, so no
	// instruction was read and Op is meaningless.
	Fetch bool
}

func (e FaultError) Error() string {
	if e.Fetch {
		return fmt.Sprintf("%s fetching instruction at %.4d", e.FaultCode, e.Addr)
	}
	return fmt.Sprintf("%s executing %s at %.4d", e.FaultCode, e.Op, e.Addr)
}

// FaultCode signifies the type of condition that faulted the machine.
type FaultCode byte

const (
	InvalidOpcode     FaultCode = 0x01
	AddressOutOfRange FaultCode = 0x02
	InputExhausted    FaultCode = 0x03
)

func (c FaultCode) String() string {
	if s, ok := map[FaultCode]string{
		InvalidOpcode:     "invalid opcode",
		AddressOutOfRange: "address out of range",
		InputExhausted:    "input exhausted",
	}[c]; ok {
		return s
	}
	return fmt.Sprintf("unknown (%.2x)", byte(c))
}
