package main

import (
	"fmt"
	"log"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"

	"github.com/cor/intcode/intcode"
)

// continueChunk is the number of instructions a continue command executes
// between redraws.
const continueChunk = 10_000

type debugger struct {
	name string
	prog []int64
	opts options

	m     *intcode.Machine
	in    *intcode.Queue
	out   []int64
	kind  stateKind
	brk   map[int]bool
	watch []int

	// gen is bumped by each command that supersedes a continue in
	// progress; queue schedules the next chunk of a continue.
	gen   int
	queue func(func())

	logView   *tview.TextView
	watchView *tview.TextView
	state     *tview.TextView
	input     *tview.InputField
	cols      *tview.Flex
	rows      *tview.Flex
	app       *tview.Application
}

type stateKind int

const (
	clearState stateKind = iota
	breakState
	pauseState
	haltState
	faultState
)

var commands = []string{"step", "continue", "pause", "break", "watch", "input", "reset", "exit"}

func debugMode(progFile string, opts options) error {
	prog, err := loadProgram(progFile)
	if err != nil {
		return err
	}
	d := newDebugger(progFile, prog, opts)
	log.SetPrefix("")
	log.SetOutput(d.logView)
	defer func() {
		log.SetOutput(os.Stderr)
		log.SetPrefix("intcode: ")
	}()
	return d.Run()
}

func newDebugger(name string, prog []int64, opts options) *debugger {
	d := &debugger{
		name: name,
		prog: prog,
		opts: opts,
		brk:  map[int]bool{},
		logView: tview.NewTextView().
			SetMaxLines(1000),
		watchView: tview.NewTextView().
			SetWrap(false).
			SetTextAlign(tview.AlignRight),
		state: tview.NewTextView().
			SetWrap(false),
		input: tview.NewInputField(),
		cols:  tview.NewFlex(),
		rows: tview.NewFlex().
			SetDirection(tview.FlexRow),
		app: tview.NewApplication(),
	}
	d.queue = func(f func()) { go d.app.QueueUpdateDraw(f) }
	d.watchView.SetBackgroundColor(tcell.ColorDarkBlue)
	d.state.SetBackgroundColor(tcell.ColorDarkGrey)
	d.cols.
		AddItem(d.watchView, 0, 1, false).
		AddItem(d.logView, 0, 2, false)
	d.rows.
		AddItem(d.cols, 0, 1, false).
		AddItem(d.state, 3, 0, false).
		AddItem(d.input, 1, 0, true)
	d.app.SetRoot(d.rows, true)

	d.input.SetAutocompleteFunc(func(t string) (entries []string) {
		if t == "" || strings.Contains(t, " ") {
			return nil
		}
		for _, c := range commands {
			if strings.HasPrefix(c, t) {
				entries = append(entries, c)
			}
		}
		return
	})
	d.input.SetAutocompletedFunc(func(t string, index, src int) bool {
		if src != tview.AutocompletedNavigate {
			d.input.SetText(t)
		}
		return src == tview.AutocompletedEnter || src == tview.AutocompletedClick
	})
	d.input.SetDoneFunc(func(key tcell.Key) {
		if key != tcell.KeyEnter {
			return
		}
		cmd := d.input.GetText()
		if cmd == "" {
			return
		}
		d.input.SetText("")
		d.command(cmd)
	})

	d.reset()
	return d
}

func (d *debugger) Run() error { return d.app.Run() }

func (d *debugger) printf(format string, args ...any) {
	fmt.Fprintf(d.logView, format+"\n", args...)
}

func (d *debugger) reset() {
	d.in = intcode.Inputs(d.opts.inputs...)
	d.out = nil
	d.m = intcode.NewMachine(d.prog, d.in, intcode.OutputFunc(func(v int64) {
		d.out = append(d.out, v)
		d.printf("output %d", v)
	}))
	if d.opts.trace {
		d.m.Tracef = d.printf
	}
	d.kind = clearState
	d.update()
}

// command executes a single debugger command.
func (d *debugger) command(cmd string) {
	cmd, arg, _ := strings.Cut(strings.TrimSpace(cmd), " ")
	arg = strings.TrimSpace(arg)
	switch cmd {
	case "exit", "quit", "q":
		d.app.Stop()
		return
	case "s", "step":
		n := 1
		if arg != "" {
			v, err := strconv.Atoi(arg)
			if err != nil || v < 1 {
				d.printf("invalid step count %q", arg)
				return
			}
			n = v
		}
		d.gen++
		if d.advance(n) && n > 1 {
			d.printf("paused after %d instructions", d.m.Steps())
		}
	case "c", "continue":
		d.gen++
		d.cont(d.gen)
		return
	case "p", "pause":
		d.gen++
		if d.m.Status() != intcode.Running {
			d.printf("machine is %s", d.m.Status())
			return
		}
		d.kind = pauseState
		d.printf("paused after %d instructions", d.m.Steps())
	case "b", "break":
		if arg == "" {
			d.brk = map[int]bool{}
			d.printf("cleared breaks")
			break
		}
		addr, ok := d.addr(arg)
		if !ok {
			return
		}
		if d.brk[addr] {
			delete(d.brk, addr)
			d.printf("cleared break %.4d", addr)
		} else {
			d.brk[addr] = true
			d.printf("set break %.4d", addr)
		}
	case "w", "watch":
		if arg == "" {
			d.watch = nil
			d.printf("cleared watches")
			break
		}
		addr, ok := d.addr(arg)
		if !ok {
			return
		}
		d.watch = append(d.watch, addr)
		d.printf("watching %.4d", addr)
	case "i", "input":
		vals, err := parseInputs(arg)
		if err != nil || len(vals) == 0 {
			d.printf("invalid input %q", arg)
			return
		}
		d.in.Push(vals...)
		d.printf("queued %s", intcode.Format(vals))
	case "reset":
		d.gen++
		d.reset()
		d.printf("reset %s", d.name)
		return
	default:
		d.printf("unknown command %q", cmd)
		return
	}
	d.update()
}

// cont runs the continue command numbered gen one chunk at a time,
// queueing each following chunk so that input and redraws are handled in
// between. It stops when the machine does or when gen is superseded.
func (d *debugger) cont(gen int) {
	if gen != d.gen {
		return
	}
	more := d.advance(continueChunk)
	d.update()
	if more {
		d.queue(func() { d.cont(gen) })
	}
}

// advance executes up to n instructions, stopping early at a breakpoint.
// It reports whether all n were executed without the machine stopping.
func (d *debugger) advance(n int) bool {
	if d.m.Status() != intcode.Running {
		d.printf("machine is %s; reset to run again", d.m.Status())
		return false
	}
	d.kind = pauseState
	for i := 0; i < n; i++ {
		if d.opts.maxSteps > 0 && d.m.Steps() >= d.opts.maxSteps {
			d.printf("step limit reached after %d instructions", d.m.Steps())
			return false
		}
		switch d.m.Step() {
		case intcode.Halted:
			d.kind = haltState
			d.printf("halted after %d instructions", d.m.Steps())
			return false
		case intcode.Faulted:
			d.kind = faultState
			d.printf("%v", d.m.Err())
			return false
		}
		if d.brk[d.m.PC] {
			d.kind = breakState
			return false
		}
	}
	return true
}

func (d *debugger) addr(s string) (int, bool) {
	addr, err := strconv.Atoi(s)
	if err != nil || addr < 0 || addr >= len(d.m.Mem) {
		d.printf("invalid address %q", s)
		return 0, false
	}
	return addr, true
}

// update redraws the state and watch panes.
func (d *debugger) update() {
	switch d.kind {
	case clearState, pauseState:
		d.state.SetTextColor(tcell.ColorBlack)
		d.state.SetBackgroundColor(tcell.ColorDarkGrey)
	case breakState:
		d.state.SetTextColor(tcell.ColorYellow)
		d.state.SetBackgroundColor(tcell.ColorDarkBlue)
	case haltState:
		d.state.SetTextColor(tcell.ColorWhite)
		d.state.SetBackgroundColor(tcell.ColorDarkBlue)
	case faultState:
		d.state.SetTextColor(tcell.ColorWhite)
		d.state.SetBackgroundColor(tcell.ColorDarkRed)
	}
	d.state.SetText(stateMsg(d.m, d.kind, d.in.Len(), d.out))
	d.watchView.SetText(d.watchContent())
}

func stateMsg(m *intcode.Machine, k stateKind, queued int, out []int64) string {
	text, _ := m.Disassemble(m.PC)
	kind := "       "
	switch k {
	case breakState:
		kind = "[break]"
	case pauseState:
		kind = "[pause]"
	case haltState:
		kind = "[halt] "
	case faultState:
		kind = "[FAULT]"
	}
	return fmt.Sprintf("%.4d %-20s %s %d steps\nin: %d queued\nout: %s\n",
		m.PC, text, kind, m.Steps(), queued, intcode.Format(out))
}

func (d *debugger) watchContent() string {
	var b strings.Builder
	brk := make([]int, 0, len(d.brk))
	for addr := range d.brk {
		brk = append(brk, addr)
	}
	sort.Ints(brk)
	for _, addr := range brk {
		fmt.Fprintf(&b, "[%.4d] brk!\n", addr)
	}
	for i, addr := range d.watch {
		if i > 0 {
			b.WriteByte('\n')
		}
		fmt.Fprintf(&b, "[%.4d] %d", addr, d.m.Mem[addr])
	}
	return b.String()
}
