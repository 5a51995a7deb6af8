// Package catalog loads shift scenarios: the embedded default catalog of
// twelve scenarios, or a custom YAML catalog validated against the same schema.
package catalog

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"
	"gopkg.in/yaml.v3"

	"github.com/inference-sim/fc-shift-sim/sim"
)

//go:embed scenarios.yaml
var defaultYAML []byte

//go:embed schema.json
var schemaJSON string

// Catalog is an ordered list of scenarios. Index order is the selection order.
type Catalog struct {
	Scenarios []sim.Scenario `yaml:"scenarios"`
}

var (
	schemaOnce sync.Once
	schema     *jsonschema.Schema
	schemaErr  error

	defaultOnce sync.Once
	defaultCat  *Catalog
)

func compiledSchema() (*jsonschema.Schema, error) {
	schemaOnce.Do(func() {
		schema, schemaErr = jsonschema.CompileString("catalog.schema.json", schemaJSON)
	})
	return schema, schemaErr
}

// Default returns the embedded catalog. Callers must not modify it.
// Panics if the embedded catalog is invalid, which is a build defect.
func Default() *Catalog {
	defaultOnce.Do(func() {
		c, err := Parse(defaultYAML)
		if err != nil {
			panic(fmt.Sprintf("embedded scenario catalog is invalid: %v", err))
		}
		defaultCat = c
	})
	return defaultCat
}

// Load reads and validates a YAML catalog file.
func Load(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading scenario catalog: %w", err)
	}
	c, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return c, nil
}

// Parse decodes a YAML catalog strictly (unknown keys are rejected), checks it
// against the catalog schema, then validates every scenario.
func Parse(data []byte) (*Catalog, error) {
	var c Catalog
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&c); err != nil {
		return nil, fmt.Errorf("parsing scenario catalog: %w", err)
	}
	if err := validateSchema(data); err != nil {
		return nil, err
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

// validateSchema re-encodes the YAML document as JSON so the schema sees JSON types.
func validateSchema(data []byte) error {
	s, err := compiledSchema()
	if err != nil {
		return fmt.Errorf("compiling catalog schema: %w", err)
	}
	var doc any
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return fmt.Errorf("parsing scenario catalog: %w", err)
	}
	raw, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("converting scenario catalog to JSON: %w", err)
	}
	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return fmt.Errorf("converting scenario catalog to JSON: %w", err)
	}
	if err := s.Validate(v); err != nil {
		return fmt.Errorf("scenario catalog schema: %w", err)
	}
	return nil
}

// Validate checks every scenario and rejects duplicate ids.
func (c *Catalog) Validate() error {
	if len(c.Scenarios) == 0 {
		return fmt.Errorf("scenario catalog is empty")
	}
	seen := make(map[string]bool, len(c.Scenarios))
	for i := range c.Scenarios {
		sc := &c.Scenarios[i]
		if err := sc.Validate(); err != nil {
			return err
		}
		if seen[sc.ID] {
			return fmt.Errorf("duplicate scenario id %q", sc.ID)
		}
		seen[sc.ID] = true
	}
	return nil
}

// Len returns the number of scenarios.
func (c *Catalog) Len() int { return len(c.Scenarios) }

// IDs lists scenario ids in catalog order.
func (c *Catalog) IDs() []string {
	ids := make([]string, len(c.Scenarios))
	for i, sc := range c.Scenarios {
		ids[i] = sc.ID
	}
	return ids
}

// At returns a copy of the scenario at index i.
func (c *Catalog) At(i int) (*sim.Scenario, error) {
	if i < 0 || i >= len(c.Scenarios) {
		return nil, fmt.Errorf("scenario index %d out of range [0,%d)", i, len(c.Scenarios))
	}
	sc := c.Scenarios[i]
	return &sc, nil
}

// Lookup resolves a scenario by id or by decimal index and returns it with its index.
func (c *Catalog) Lookup(key string) (*sim.Scenario, int, error) {
	for i, sc := range c.Scenarios {
		if sc.ID == key {
			cp := sc
			return &cp, i, nil
		}
	}
	if i, err := strconv.Atoi(key); err == nil {
		sc, err := c.At(i)
		if err != nil {
			return nil, 0, err
		}
		return sc, i, nil
	}
	return nil, 0, fmt.Errorf("unknown scenario %q; valid: %v", key, c.IDs())
}
