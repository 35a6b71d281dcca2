package main

import (
	"bufio"
	"fmt"
	"io"
	"log"
	"strconv"
	"strings"
)

// inputAttempts is the number of lines read for a single input value
// before giving up.
const inputAttempts = 5

// consoleInput is an intcode.Input that reads one value per line,
// prompting on w and asking again when a line is not an integer.
type consoleInput struct {
	s *bufio.Scanner
	w io.Writer
}

func newConsoleInput(r io.Reader, w io.Writer) *consoleInput {
	return &consoleInput{s: bufio.NewScanner(r), w: w}
}

func (c *consoleInput) Next() (int64, bool) {
	for i := inputAttempts; i > 0; i-- {
		fmt.Fprint(c.w, "input: ")
		if !c.s.Scan() {
			if err := c.s.Err(); err != nil {
				log.Printf("reading stdin: %v", err)
			}
			return 0, false
		}
		v, err := strconv.ParseInt(strings.TrimSpace(c.s.Text()), 10, 64)
		if err == nil {
			return v, true
		}
		if i > 1 {
			fmt.Fprintf(c.w, "please enter an integer, %d attempts left\n", i-1)
		}
	}
	log.Print("no valid input received")
	return 0, false
}
