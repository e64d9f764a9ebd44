// Package theme loads the visual theme handed to every screen.
package theme

import (
	_ "embed"
	"fmt"
	"os"
	"sort"

	"gopkg.in/yaml.v3"
)

//go:embed themes.yaml
var builtin []byte

// Theme is the single style configuration shared by all screens.
type Theme struct {
	Key          string `yaml:"-" json:"key"`
	Name         string `yaml:"name" json:"name"`
	Background   string `yaml:"background" json:"background"`
	Surface      string `yaml:"surface" json:"surface"`
	Text         string `yaml:"text" json:"text"`
	Heading      string `yaml:"heading" json:"heading"`
	Primary      string `yaml:"primary" json:"primary"`
	PrimaryHover string `yaml:"primary_hover" json:"primary_hover"`
	TableHeader  string `yaml:"table_header" json:"table_header"`
	TableCell    string `yaml:"table_cell" json:"table_cell"`
	Success      string `yaml:"success" json:"success"`
	Error        string `yaml:"error" json:"error"`
	FontFamily   string `yaml:"font_family" json:"font_family"`
}

// Catalog is a set of themes keyed by name.
type Catalog map[string]Theme

// Load reads the built-in themes and, when path is set, the themes in that
// file on top of them.
func Load(path string) (Catalog, error) {
	cat, err := parse(builtin)
	if err != nil {
		return nil, err
	}
	if path == "" {
		return cat, nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read theme file: %w", err)
	}
	extra, err := parse(raw)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	for k, t := range extra {
		cat[k] = t
	}
	return cat, nil
}

func parse(raw []byte) (Catalog, error) {
	var cat Catalog
	if err := yaml.Unmarshal(raw, &cat); err != nil {
		return nil, err
	}
	for k, t := range cat {
		t.Key = k
		cat[k] = t
	}
	return cat, nil
}

func (c Catalog) Get(key string) (Theme, error) {
	t, ok := c[key]
	if !ok {
		return Theme{}, fmt.Errorf("unknown theme %q", key)
	}
	return t, nil
}

func (c Catalog) Keys() []string {
	keys := make([]string, 0, len(c))
	for k := range c {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
