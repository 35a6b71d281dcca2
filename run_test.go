package main

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/cor/intcode/snapshot"
)

func writeProgram(t *testing.T, name, text string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(text+"\n"), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestRun(t *testing.T) {
	var (
		a = writeProgram(t, "equal8.txt", "3,9,8,9,10,9,4,9,99,-1,8")
		b = writeProgram(t, "add.txt", "1,0,0,0,99")
		w bytes.Buffer
	)
	code, err := run([]string{a, b}, options{inputs: []int64{8}}, nil, &w)
	if err != nil {
		t.Fatal(err)
	}
	if code != 0 {
		t.Errorf("exit code %d, want 0", code)
	}
	want := strings.Join([]string{
		a + ": halted after 4 instructions",
		a + ": output 1",
		a + ": memory[0] = 3",
		b + ": halted after 2 instructions",
		b + ": memory[0] = 2",
		"",
	}, "\n")
	if g := w.String(); g != want {
		t.Errorf("output is\n%s\nwant\n%s", g, want)
	}
}

func TestRunStopped(t *testing.T) {
	for _, c := range []struct {
		name string
		prog string
		opts options
		want string
	}{
		{"loop", "1105,1,0", options{maxSteps: 10}, "running after 10 instructions"},
		{"crash", "1,0,0,0,42", options{}, "faulted after 1 instructions"},
		{"noinput", "3,0,99", options{}, "faulted after 0 instructions"},
	} {
		t.Run(c.name, func(t *testing.T) {
			var w bytes.Buffer
			code, err := run([]string{writeProgram(t, c.name, c.prog)}, c.opts, nil, &w)
			if err != nil {
				t.Fatal(err)
			}
			if code != 1 {
				t.Errorf("exit code %d, want 1", code)
			}
			if !strings.Contains(w.String(), c.want) {
				t.Errorf("output %q does not contain %q", w.String(), c.want)
			}
		})
	}
}

func TestRunSnapshot(t *testing.T) {
	prog := writeProgram(t, "echo.txt", "3,0,4,0,99")
	name := filepath.Join(t.TempDir(), "echo.cbor")
	var w bytes.Buffer
	code, err := run([]string{prog}, options{inputs: []int64{77}, snapshot: name}, nil, &w)
	if err != nil {
		t.Fatal(err)
	}
	if code != 0 {
		t.Errorf("exit code %d, want 0", code)
	}
	img, err := snapshot.ReadFile(name)
	if err != nil {
		t.Fatal(err)
	}
	if img.Status != "halted" || img.Memory[0] != 77 || len(img.Outputs) != 1 || img.Outputs[0] != 77 {
		t.Errorf("snapshot is %+v", img)
	}
}

func TestResumeSnapshot(t *testing.T) {
	prog := writeProgram(t, "countdown.txt", "4,11,1001,11,-1,11,1005,11,0,99,0,3")
	name := filepath.Join(t.TempDir(), "countdown.cbor")
	var w bytes.Buffer
	code, err := run([]string{prog}, options{maxSteps: 4, snapshot: name}, nil, &w)
	if err != nil {
		t.Fatal(err)
	}
	if code != 1 {
		t.Errorf("exit code of limited run %d, want 1", code)
	}

	w.Reset()
	code, err = resume(name, options{}, nil, &w)
	if err != nil {
		t.Fatal(err)
	}
	if code != 0 {
		t.Errorf("exit code of resumed run %d, want 0", code)
	}
	for _, s := range []string{
		name + ": halted after 10 instructions",
		name + ": output 3,2,1",
	} {
		if !strings.Contains(w.String(), s) {
			t.Errorf("output %q does not contain %q", w.String(), s)
		}
	}

	// A finished machine cannot be resumed.
	done := filepath.Join(t.TempDir(), "done.cbor")
	if _, err := run([]string{prog}, options{snapshot: done}, nil, &w); err != nil {
		t.Fatal(err)
	}
	if _, err := resume(done, options{}, nil, &w); !errors.Is(err, snapshot.ErrTerminal) {
		t.Errorf("resume of halted snapshot returned %v, want %v", err, snapshot.ErrTerminal)
	}
}

func TestRunErrors(t *testing.T) {
	var w bytes.Buffer
	if _, err := run([]string{filepath.Join(t.TempDir(), "missing.txt")}, options{}, nil, &w); err == nil {
		t.Error("run of missing file succeeded")
	}
	if _, err := run([]string{writeProgram(t, "bad.txt", "1,,2")}, options{}, nil, &w); err == nil {
		t.Error("run of malformed program succeeded")
	}
}

func TestRunInteractive(t *testing.T) {
	prog := writeProgram(t, "lessThan8.txt", "3,9,7,9,10,9,4,9,99,-1,8")
	var w bytes.Buffer
	code, err := run([]string{prog}, options{interactive: true}, strings.NewReader("seven\n7\n"), &w)
	if err != nil {
		t.Fatal(err)
	}
	if code != 0 {
		t.Errorf("exit code %d, want 0", code)
	}
	for _, s := range []string{"4 attempts left", prog + ": output 1"} {
		if !strings.Contains(w.String(), s) {
			t.Errorf("output %q does not contain %q", w.String(), s)
		}
	}
}

func TestOptionsCheck(t *testing.T) {
	for _, c := range []struct {
		opts         options
		files        int
		watch, debug bool
		ok           bool
	}{
		{options{}, 1, false, false, true},
		{options{}, 3, false, false, true},
		{options{}, 1, true, false, true},
		{options{}, 1, false, true, true},
		{options{}, 1, true, true, false},
		{options{}, 2, true, false, false},
		{options{interactive: true}, 2, false, false, false},
		{options{interactive: true}, 1, false, true, false},
		{options{snapshot: "x.cbor"}, 2, false, false, false},
		{options{maxSteps: -1}, 1, false, false, false},
	} {
		err := c.opts.check(c.files, c.watch, c.debug)
		if ok := err == nil; ok != c.ok {
			t.Errorf("%+v.check(%d, %v, %v) returned %v, want ok %v",
				c.opts, c.files, c.watch, c.debug, err, c.ok)
		}
	}
}
