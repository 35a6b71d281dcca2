// Package config handles intcode.toml run configuration.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// FileName is the name of the configuration file looked up by FindAndLoad.
const FileName = "intcode.toml"

// Config represents an intcode.toml run configuration.
type Config struct {
	Program Program `toml:"program"`
	Run     Run     `toml:"run"`
	Output  Output  `toml:"output"`

	// Dir is the directory containing the configuration file (set at load time).
	Dir string `toml:"-"`
}

// Program names the program to execute.
type Program struct {
	Path string `toml:"path"`
}

// Run configures execution.
type Run struct {
	Inputs      []int64 `toml:"inputs"`
	Interactive bool    `toml:"interactive"`
	MaxSteps    int     `toml:"max-steps"`
	Trace       bool    `toml:"trace"`
}

// Output configures what is written after execution.
type Output struct {
	Snapshot string `toml:"snapshot"`
}

// Load parses the configuration file at path.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("cannot read %s: %w", path, err)
	}

	var c Config
	md, err := toml.Decode(string(data), &c)
	if err != nil {
		return nil, fmt.Errorf("parse error in %s: %w", path, err)
	}
	if u := md.Undecoded(); len(u) > 0 {
		return nil, fmt.Errorf("unknown key %q in %s", u[0].String(), path)
	}
	if c.Run.MaxSteps < 0 {
		return nil, fmt.Errorf("negative max-steps %d in %s", c.Run.MaxSteps, path)
	}

	c.Dir, err = filepath.Abs(filepath.Dir(path))
	if err != nil {
		return nil, fmt.Errorf("cannot resolve path %s: %w", path, err)
	}
	return &c, nil
}

// FindAndLoad walks up from startDir to find an intcode.toml file,
// then loads and returns it. Returns nil if no file is found.
func FindAndLoad(startDir string) (*Config, error) {
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return nil, err
	}
	for {
		path := filepath.Join(dir, FileName)
		if _, err := os.Stat(path); err == nil {
			return Load(path)
		} else if !errors.Is(err, os.ErrNotExist) {
			return nil, err
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return nil, nil
		}
		dir = parent
	}
}

// Resolve returns path relative to the configuration's directory,
// unless it is empty or already absolute.
func (c *Config) Resolve(path string) string {
	if path == "" || filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(c.Dir, path)
}
