package main

import (
	"errors"
	"fmt"
	"io"
	"log"
	"os"

	"golang.org/x/sync/errgroup"

	"github.com/cor/intcode/intcode"
	"github.com/cor/intcode/snapshot"
)

type options struct {
	inputs      []int64
	interactive bool
	maxSteps    int
	trace       bool
	snapshot    string
}

func (o options) check(files int, watch, debug bool) error {
	switch {
	case watch && debug:
		return errors.New("-watch and -debug are mutually exclusive")
	case (watch || debug) && files != 1:
		return errors.New("-watch and -debug take exactly one program")
	case o.interactive && files != 1:
		return errors.New("interactive input needs exactly one program")
	case o.interactive && debug:
		return errors.New("interactive input is not available in the debugger; use its input command")
	case o.snapshot != "" && files != 1:
		return errors.New("a snapshot needs exactly one program")
	case o.maxSteps < 0:
		return fmt.Errorf("negative step limit %d", o.maxSteps)
	}
	return nil
}

// result is the outcome of running one program.
type result struct {
	name    string
	m       *intcode.Machine
	outputs []int64
	limited bool // stopped by the step limit while still running
}

func (r *result) err() error {
	if r.limited {
		return fmt.Errorf("%s: step limit reached after %d instructions", r.name, r.m.Steps())
	}
	if err := r.m.Err(); err != nil {
		return fmt.Errorf("%s: %w", r.name, err)
	}
	return nil
}

// run executes each of the named programs on its own machine, concurrently,
// and reports their results to w in the order given. It returns the exit
// code for the command: 0 if every program halted, and 1 otherwise.
func run(files []string, opts options, stdin io.Reader, w io.Writer) (int, error) {
	results := make([]*result, len(files))
	var g errgroup.Group
	for i, name := range files {
		i, name := i, name
		g.Go(func() error {
			prog, err := loadProgram(name)
			if err != nil {
				return err
			}
			in, out := machineIO(opts, stdin, w)
			results[i] = runMachine(name, intcode.NewMachine(prog, in, out), out, opts)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return 0, err
	}
	return finish(results, opts, w)
}

// resume restores the machine saved in the named snapshot and runs it on
// from where it stopped. Outputs recorded in the snapshot are reported
// ahead of the new ones.
func resume(name string, opts options, stdin io.Reader, w io.Writer) (int, error) {
	img, err := snapshot.ReadFile(name)
	if err != nil {
		return 0, err
	}
	in, out := machineIO(opts, stdin, w)
	out.Values = append(out.Values, img.Outputs...)
	m, err := img.Machine(in, out)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", name, err)
	}
	return finish([]*result{runMachine(name, m, out, opts)}, opts, w)
}

// finish reports results to w, logs their errors and writes the snapshot
// of the first one if requested.
func finish(results []*result, opts options, w io.Writer) (int, error) {
	code := 0
	for _, r := range results {
		report(w, r)
		if err := r.err(); err != nil {
			log.Print(err)
			code = 1
		}
	}
	if name := opts.snapshot; name != "" {
		r := results[0]
		if err := snapshot.WriteFile(name, snapshot.Capture(r.m, r.outputs)); err != nil {
			return code, err
		}
	}
	return code, nil
}

// machineIO returns the input and output for a machine run with opts.
// Interactive prompts are written to prompt.
func machineIO(opts options, stdin io.Reader, prompt io.Writer) (intcode.Input, *intcode.Recorder) {
	if opts.interactive {
		return newConsoleInput(stdin, prompt), &intcode.Recorder{}
	}
	return intcode.Inputs(opts.inputs...), &intcode.Recorder{}
}

// runMachine executes m until it stops or has executed opts.maxSteps
// further instructions.
func runMachine(name string, m *intcode.Machine, out *intcode.Recorder, opts options) *result {
	if opts.trace {
		m.Tracef = func(format string, args ...any) {
			log.Printf("%s: "+format, append([]any{name}, args...)...)
		}
	}
	r := &result{name: name, m: m}
	start := m.Steps()
	for m.Step() == intcode.Running {
		if opts.maxSteps > 0 && m.Steps()-start >= opts.maxSteps {
			r.limited = true
			break
		}
	}
	r.outputs = out.Values
	return r
}

func report(w io.Writer, r *result) {
	fmt.Fprintf(w, "%s: %s after %d instructions\n", r.name, r.m.Status(), r.m.Steps())
	if len(r.outputs) > 0 {
		fmt.Fprintf(w, "%s: output %s\n", r.name, intcode.Format(r.outputs))
	}
	if len(r.m.Mem) > 0 {
		fmt.Fprintf(w, "%s: memory[0] = %d\n", r.name, r.m.Mem[0])
	}
}

func loadProgram(name string) ([]int64, error) {
	f, err := os.Open(name)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	prog, err := intcode.ReadProgram(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %v", name, err)
	}
	return prog, nil
}
