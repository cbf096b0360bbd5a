// Package catalog holds the static knowledge about form fields: hints for
// well-known field names, the keyword based field type classifier and the
// introductions shown when a field becomes active.
package catalog

import (
	_ "embed"
	"fmt"

	"github.com/tbxark/formpilot/types"
	"gopkg.in/yaml.v3"
)

//go:embed catalog.yaml
var defaultCatalogYAML []byte

var defaultCatalog = mustLoad(defaultCatalogYAML)

type Hint struct {
	Name       string `yaml:"name" json:"name"`
	Hint       string `yaml:"hint" json:"hint"`
	Example    string `yaml:"example" json:"example"`
	Validation string `yaml:"validation" json:"validation"`
}

type Catalog struct {
	hints map[string]Hint
	names []string
}

// Load parses a YAML list of hints. Later entries with the same name replace
// earlier ones.
func Load(data []byte) (*Catalog, error) {
	var hints []Hint
	if err := yaml.Unmarshal(data, &hints); err != nil {
		return nil, fmt.Errorf("decode field catalog: %w", err)
	}
	c := &Catalog{hints: make(map[string]Hint, len(hints))}
	for _, h := range hints {
		if h.Name == "" {
			return nil, fmt.Errorf("decode field catalog: entry without name")
		}
		key := types.Fold(h.Name)
		if _, ok := c.hints[key]; !ok {
			c.names = append(c.names, h.Name)
		}
		c.hints[key] = h
	}
	return c, nil
}

func mustLoad(data []byte) *Catalog {
	c, err := Load(data)
	if err != nil {
		panic(err)
	}
	return c
}

func Default() *Catalog {
	return defaultCatalog
}

func (c *Catalog) Lookup(fieldName string) (Hint, bool) {
	h, ok := c.hints[types.Fold(fieldName)]
	return h, ok
}

func (c *Catalog) Names() []string {
	out := make([]string, len(c.names))
	copy(out, c.names)
	return out
}

func Lookup(fieldName string) (Hint, bool) {
	return defaultCatalog.Lookup(fieldName)
}
