package control

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"

	"gopkg.in/yaml.v3"
)

// Script is a headless sequence of actions keyed by the tick before which
// they are applied.
type Script struct {
	Actions []Action `yaml:"actions"`
}

// LoadScript reads and parses a YAML action script.
// Uses strict parsing: unrecognized keys (typos) are rejected.
func LoadScript(path string) (*Script, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading action script: %w", err)
	}
	return ParseScript(data)
}

// ParseScript decodes and validates a script, ordering actions by tick
// (stable, so same-tick actions keep file order).
func ParseScript(data []byte) (*Script, error) {
	var s Script
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&s); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("parsing action script: %w", err)
	}
	for i, a := range s.Actions {
		if err := a.Validate(); err != nil {
			return nil, fmt.Errorf("action[%d]: %w", i, err)
		}
	}
	sort.SliceStable(s.Actions, func(i, j int) bool { return s.Actions[i].Tick < s.Actions[j].Tick })
	return &s, nil
}
