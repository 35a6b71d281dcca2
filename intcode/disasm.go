package intcode

import (
	"fmt"
	"strings"
)

// Disassemble returns a textual form of the instruction at addr and the
// number of words it occupies. Position parameters are shown as [addr]
// and immediate parameters as $value. Words that do not decode are shown
// as data with a width of 1.
func (m *Machine) Disassemble(addr int) (string, int) {
	if addr < 0 || addr >= len(m.Mem) {
		return "<out of range>", 1
	}
	word := m.Mem[addr]
	in, err := Decode(word)
	if err != nil {
		return fmt.Sprintf("data %d", word), 1
	}
	var b strings.Builder
	b.WriteString(in.Op.String())
	for i := 0; i < in.Op.Params(); i++ {
		p := addr + 1 + i
		if p >= len(m.Mem) {
			b.WriteString(" ?")
			continue
		}
		if in.Mode(i) == Immediate {
			fmt.Fprintf(&b, " $%d", m.Mem[p])
		} else {
			fmt.Fprintf(&b, " [%d]", m.Mem[p])
		}
	}
	return b.String(), in.Op.Width()
}
