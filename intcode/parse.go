package intcode

import (
	"fmt"
	"io"
	"strconv"
	"strings"
)

// Parse parses a program in its textual form: decimal signed integers
// separated by commas. Whitespace around each value is ignored.
func Parse(s string) ([]int64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, fmt.Errorf("empty program")
	}
	fields := strings.Split(s, ",")
	prog := make([]int64, len(fields))
	for i, f := range fields {
		f = strings.TrimSpace(f)
		if f == "" {
			return nil, fmt.Errorf("empty value at position %d", i)
		}
		v, err := strconv.ParseInt(f, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("bad value at position %d: %v", i, err)
		}
		prog[i] = v
	}
	return prog, nil
}

// ReadProgram reads all of r and parses it as a program.
func ReadProgram(r io.Reader) ([]int64, error) {
	b, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	return Parse(string(b))
}

// Format returns the textual form of mem, the inverse of Parse.
func Format(mem []int64) string {
	var b strings.Builder
	for i, v := range mem {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(strconv.FormatInt(v, 10))
	}
	return b.String()
}
