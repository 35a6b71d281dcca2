package snapshot

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/cor/intcode/intcode"
)

func TestCaptureHalted(t *testing.T) {
	var out intcode.Recorder
	m := intcode.NewMachine([]int64{104, 7, 1, 0, 0, 0, 99}, nil, &out)
	m.Run()

	name := filepath.Join(t.TempDir(), "halted.cbor")
	if err := WriteFile(name, Capture(m, out.Values)); err != nil {
		t.Fatal(err)
	}
	img, err := ReadFile(name)
	if err != nil {
		t.Fatal(err)
	}
	if g, w := intcode.Format(img.Memory), "208,7,1,0,0,0,99"; g != w {
		t.Errorf("memory is %s, want %s", g, w)
	}
	if img.PC != 6 || img.Steps != 3 || img.Status != "halted" || img.Fault != "" {
		t.Errorf("image is %+v", img)
	}
	if len(img.Outputs) != 1 || img.Outputs[0] != 7 {
		t.Errorf("outputs are %v, want [7]", img.Outputs)
	}
	if _, err := img.Machine(nil, nil); !errors.Is(err, ErrTerminal) {
		t.Errorf("Machine() returned error %v, want %v", err, ErrTerminal)
	}
}

func TestCaptureFaulted(t *testing.T) {
	m := intcode.NewMachine([]int64{3, 0, 99}, nil, nil)
	m.Run()
	b, err := Marshal(Capture(m, nil))
	if err != nil {
		t.Fatal(err)
	}
	img, err := Unmarshal(b)
	if err != nil {
		t.Fatal(err)
	}
	if g, w := img.Fault, "input exhausted executing in at 0000"; g != w {
		t.Errorf("fault is %q, want %q", g, w)
	}
	if img.Status != "faulted" {
		t.Errorf("status is %q, want faulted", img.Status)
	}
}

func TestResumeRunning(t *testing.T) {
	// Count down from 3, emitting each value.
	prog, err := intcode.Parse("4,11,1001,11,-1,11,1005,11,0,99,0,3")
	if err != nil {
		t.Fatal(err)
	}
	var out intcode.Recorder
	m := intcode.NewMachine(prog, nil, &out)
	for i := 0; i < 4; i++ {
		m.Step()
	}
	b, err := Marshal(Capture(m, out.Values))
	if err != nil {
		t.Fatal(err)
	}
	img, err := Unmarshal(b)
	if err != nil {
		t.Fatal(err)
	}
	var rest intcode.Recorder
	r, err := img.Machine(nil, &rest)
	if err != nil {
		t.Fatal(err)
	}
	if r.Steps() != 4 {
		t.Errorf("resumed Steps() is %d, want 4", r.Steps())
	}
	if s, _ := r.Run(); s != intcode.Halted {
		t.Fatalf("resumed Run() status %v (%v), want halted", s, r.Err())
	}
	if r.Steps() != 10 {
		t.Errorf("Steps() after resumed Run is %d, want 10", r.Steps())
	}
	all := append(img.Outputs, rest.Values...)
	if g, w := intcode.Format(all), "3,2,1"; g != w {
		t.Errorf("outputs are %s, want %s", g, w)
	}
}

func TestChecksumMismatch(t *testing.T) {
	m := intcode.NewMachine([]int64{99}, nil, nil)
	img := Capture(m, nil)
	img.Memory[0] = 98
	b, err := Marshal(img)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := Unmarshal(b); err == nil {
		t.Error("Unmarshal of corrupted image succeeded")
	}
}

func TestMarshalDeterministic(t *testing.T) {
	m := intcode.NewMachine([]int64{1, 0, 0, 0, 99}, nil, nil)
	m.Run()
	a, err := Marshal(Capture(m, nil))
	if err != nil {
		t.Fatal(err)
	}
	b, err := Marshal(Capture(m, nil))
	if err != nil {
		t.Fatal(err)
	}
	if string(a) != string(b) {
		t.Error("Marshal is not deterministic")
	}
}
