package main

import (
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/howeyc/fsnotify"

	"github.com/cor/intcode/intcode"
)

// watchMode runs the named program, and runs it again each time the file
// is written. It only returns if the watcher cannot be set up.
func watchMode(progFile string, opts options) error {
	progFile = filepath.Clean(progFile)

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer watcher.Close()
	if err := watcher.Watch(filepath.Dir(progFile)); err != nil {
		return err
	}

	run := time.After(1 * time.Millisecond)
	for {
		select {
		case <-run:
			log.Printf("watch: run %s", filepath.Base(progFile))
			prog, err := loadProgram(progFile)
			if err != nil {
				log.Printf("watch: %v", err)
				break
			}
			in, out := machineIO(opts, os.Stdin, os.Stdout)
			r := runMachine(progFile, intcode.NewMachine(prog, in, out), out, opts)
			report(os.Stdout, r)
			if err := r.err(); err != nil {
				log.Printf("watch: %v", err)
			}
		case ev := <-watcher.Event:
			if filepath.Clean(ev.Name) == progFile && !ev.IsAttrib() {
				run = time.After(100 * time.Millisecond)
			}
		case err := <-watcher.Error:
			log.Printf("watch: watcher: %v", err)
		}
	}
}
