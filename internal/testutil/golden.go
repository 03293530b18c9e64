// Package testutil loads the end-to-end scenarios under testdata/scenarios.
package testutil

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sort"

	"github.com/pkg/errors"
)

// ScenariosDir is the scenario root, relative to the module root.
const ScenariosDir = "testdata/scenarios"

// Scenario is one scenario.json file: a command run against a program in
// the same directory, and what it must produce.
type Scenario struct {
	Name   string          `json:"-"`
	Dir    string          `json:"-"`
	Cmd    []string        `json:"cmd"`
	Policy *ScenarioPolicy `json:"policy,omitempty"`
	Meta   *ScenarioMeta   `json:"meta,omitempty"`
	Expect ExpectedResult  `json:"expect"`
}

// ScenarioPolicy lists the attributes the program may set beyond `value`.
type ScenarioPolicy struct {
	Allow []string `json:"allow"`
}

// ScenarioMeta holds optional scenario metadata.
type ScenarioMeta struct {
	Description string   `json:"description,omitempty"`
	Tags        []string `json:"tags,omitempty"`
}

// ExpectedResult describes the outcome of running a scenario. Empty fields
// are not checked.
type ExpectedResult struct {
	ExitCode       int    `json:"exitCode"`
	StdoutText     string `json:"stdoutText,omitempty"`
	StdoutContains string `json:"stdoutContains,omitempty"`
	Diagnostic     string `json:"diagnostic,omitempty"`
	MessageHas     string `json:"messageContains,omitempty"`
	DOM            string `json:"dom,omitempty"`
}

// LoadScenario loads a scenario from a directory containing scenario.json.
func LoadScenario(dir string) (*Scenario, error) {
	data, err := os.ReadFile(filepath.Join(dir, "scenario.json"))
	if err != nil {
		return nil, errors.Wrap(err, "read scenario")
	}
	var s Scenario
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, errors.Wrapf(err, "parse %s", dir)
	}
	if len(s.Cmd) < 2 {
		return nil, errors.Errorf("%s: cmd needs a command and a file", dir)
	}
	s.Name, s.Dir = filepath.Base(dir), dir
	return &s, nil
}

// ListScenarios returns all scenario directories under root, sorted.
func ListScenarios(root string) ([]string, error) {
	entries, err := os.ReadDir(root)
	if err != nil {
		return nil, errors.Wrap(err, "list scenarios")
	}
	var dirs []string
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		if _, err := os.Stat(filepath.Join(root, e.Name(), "scenario.json")); err == nil {
			dirs = append(dirs, filepath.Join(root, e.Name()))
		}
	}
	sort.Strings(dirs)
	return dirs, nil
}

// Command is the scenario's subcommand, such as "run" or "check".
func (s *Scenario) Command() string { return s.Cmd[0] }

// HasFlag reports whether the scenario command carries flag.
func (s *Scenario) HasFlag(flag string) bool {
	for _, arg := range s.Cmd[1:] {
		if arg == flag {
			return true
		}
	}
	return false
}

// ReadProgram reads the program file named by the last command argument.
func (s *Scenario) ReadProgram() (source, filename string, err error) {
	filename = s.Cmd[len(s.Cmd)-1]
	data, err := os.ReadFile(filepath.Join(s.Dir, filename))
	if err != nil {
		return "", "", errors.Wrap(err, "read program")
	}
	return string(data), filename, nil
}
