// Command intcode executes Intcode programs.
package main

import (
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"runtime/pprof"

	"github.com/cor/intcode/config"
	"github.com/cor/intcode/intcode"
)

func main() {
	log.SetPrefix("intcode: ")
	log.SetFlags(0)

	var (
		inputFlag       = flag.String("input", "", "comma-separated input `values`")
		interactiveFlag = flag.Bool("interactive", false, "read input values from stdin")
		stepsFlag       = flag.Int("steps", 0, "stop after `n` instructions (0 means no limit)")
		traceFlag       = flag.Bool("trace", false, "log each instruction as it is executed")
		snapshotFlag    = flag.String("snapshot", "", "write the final machine state to `file`")
		configFlag      = flag.String("config", "", "read configuration from `file` (default: nearest "+config.FileName+")")
		watchFlag       = flag.Bool("watch", false, "re-run the program whenever it changes")
		debugFlag       = flag.Bool("debug", false, "step through the program in a debugger")
		resumeFlag      = flag.String("resume", "", "continue the machine saved in snapshot `file`")

		cpuProfileFlag = flag.String("cpu_profile", "", "write CPU profile to `file`")
	)

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "usage: %s [flags] <program.txt>...\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "       %s [flags] <-watch | -debug> <program.txt>\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "       %s [flags] -resume <snapshot.cbor>\n", os.Args[0])
		flag.PrintDefaults()
		os.Exit(2)
	}
	flag.Parse()

	cfg, err := loadConfig(*configFlag)
	if err != nil {
		log.Fatal(err)
	}
	opts, files := cfg.options()
	if flag.NArg() > 0 {
		files = flag.Args()
	}
	set := map[string]bool{}
	flag.Visit(func(f *flag.Flag) { set[f.Name] = true })
	if set["input"] {
		opts.inputs, err = parseInputs(*inputFlag)
		if err != nil {
			log.Fatalf("bad -input: %v", err)
		}
	}
	if set["interactive"] {
		opts.interactive = *interactiveFlag
	}
	if set["steps"] {
		opts.maxSteps = *stepsFlag
	}
	if set["trace"] {
		opts.trace = *traceFlag
	}
	if set["snapshot"] {
		opts.snapshot = *snapshotFlag
	}

	if r := *resumeFlag; r != "" {
		if flag.NArg() > 0 || *watchFlag || *debugFlag {
			log.Fatal("-resume cannot be combined with program arguments, -watch or -debug")
		}
		files = []string{r}
	}

	if len(files) == 0 {
		flag.Usage()
	}
	if err := opts.check(len(files), *watchFlag, *debugFlag); err != nil {
		log.Fatal(err)
	}

	switch {
	case *debugFlag:
		if err := debugMode(files[0], opts); err != nil {
			log.Fatal(err)
		}
		return
	case *watchFlag:
		if err := watchMode(files[0], opts); err != nil {
			log.Fatal(err)
		}
		return
	}

	var cpuProfile io.Closer
	if prof := *cpuProfileFlag; prof != "" {
		f, err := os.Create(prof)
		if err != nil {
			log.Fatalf("creating CPU profile file: %v", err)
		}
		pprof.StartCPUProfile(f)
		cpuProfile = f
	}

	var code int
	if *resumeFlag != "" {
		code, err = resume(files[0], opts, os.Stdin, os.Stdout)
	} else {
		code, err = run(files, opts, os.Stdin, os.Stdout)
	}

	if f := cpuProfile; f != nil {
		pprof.StopCPUProfile()
		f.Close()
	}

	if err != nil {
		log.Fatal(err)
	}
	os.Exit(code)
}

// loadConfig reads the named configuration file, or the nearest
// intcode.toml if name is empty. It returns an empty configuration if
// there is none.
func loadConfig(name string) (*configuration, error) {
	var (
		c   *config.Config
		err error
	)
	if name != "" {
		c, err = config.Load(name)
	} else {
		c, err = config.FindAndLoad(".")
	}
	if err != nil {
		return nil, err
	}
	return &configuration{c}, nil
}

type configuration struct {
	*config.Config // may be nil
}

func (c *configuration) options() (opts options, files []string) {
	if c.Config == nil {
		return options{}, nil
	}
	opts = options{
		inputs:      c.Run.Inputs,
		interactive: c.Run.Interactive,
		maxSteps:    c.Run.MaxSteps,
		trace:       c.Run.Trace,
		snapshot:    c.Resolve(c.Output.Snapshot),
	}
	if p := c.Program.Path; p != "" {
		files = []string{c.Resolve(p)}
	}
	return opts, files
}

func parseInputs(s string) ([]int64, error) {
	if s == "" {
		return nil, nil
	}
	return intcode.Parse(s)
}
