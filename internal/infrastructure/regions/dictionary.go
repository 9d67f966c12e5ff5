package regions

import (
	"fmt"
	"os"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"
	"gopkg.in/yaml.v3"

	"IndicatorsQueue/internal/ports"
)

// Entry is one canonical region with the raw spellings that map onto it.
type Entry struct {
	Name    string   `yaml:"name"`
	Aliases []string `yaml:"aliases"`
}

type file struct {
	Regions []Entry `yaml:"regions"`
}

// Dictionary resolves raw region labels. Keys are NFC-normalized, trimmed,
// whitespace-collapsed and case-folded.
type Dictionary struct {
	index     map[string]string
	canonical []string
}

var _ ports.RegionDictionary = (*Dictionary)(nil)

// New builds a dictionary from entries; canonical names resolve to themselves.
func New(entries []Entry) (*Dictionary, error) {
	d := &Dictionary{index: map[string]string{}}
	for _, e := range entries {
		name := strings.TrimSpace(e.Name)
		if name == "" {
			return nil, fmt.Errorf("region entry without name")
		}
		d.canonical = append(d.canonical, name)
		for _, raw := range append([]string{name}, e.Aliases...) {
			key := normalize(raw)
			if key == "" {
				continue
			}
			if prev, ok := d.index[key]; ok && prev != name {
				return nil, fmt.Errorf("alias %q maps to both %q and %q", raw, prev, name)
			}
			d.index[key] = name
		}
	}
	return d, nil
}

// Load reads a YAML dictionary file.
func Load(path string) (*Dictionary, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read region dictionary: %w", err)
	}
	var f file
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return nil, fmt.Errorf("parse region dictionary: %w", err)
	}
	return New(f.Regions)
}

// Canonicalize returns the canonical name for raw.
func (d *Dictionary) Canonicalize(raw string) (string, bool) {
	name, ok := d.index[normalize(raw)]
	return name, ok
}

// Names lists canonical region names in file order.
func (d *Dictionary) Names() []string {
	return append([]string(nil), d.canonical...)
}

func normalize(s string) string {
	s = norm.NFC.String(s)
	s = strings.Join(strings.Fields(s), " ")
	return cases.Fold().String(s)
}
