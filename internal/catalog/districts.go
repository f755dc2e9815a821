package catalog

import (
	_ "embed"
	"fmt"
	"sort"

	"gopkg.in/yaml.v3"

	"dabachat_backend/platform/textmatch"
)

// The Casablanca district hierarchy ships with the binary. It is reference
// data for text matching only, never validated against a geocoder.
//
//go:embed districts.yaml
var districtsYAML []byte

// Districts maps a district name to its known sub-areas.
type Districts map[string][]string

// LoadDistricts parses the embedded district map.
func LoadDistricts() (Districts, error) {
	var districts Districts
	if err := yaml.Unmarshal(districtsYAML, &districts); err != nil {
		return nil, fmt.Errorf("parse district map: %w", err)
	}
	return districts, nil
}

// Names returns the district names in stable order.
func (d Districts) Names() []string {
	names := make([]string, 0, len(d))
	for name := range d {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// SubAreas resolves a user-typed district name to its sub-area list,
// ignoring case and diacritics. Returns nil when the district is unknown.
func (d Districts) SubAreas(district string) []string {
	folded := textmatch.Fold(district)
	for name, subs := range d {
		if textmatch.Fold(name) == folded {
			return subs
		}
	}
	return nil
}
