package words

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// LoadTable reads a YAML document of the form
//
//	animales: [GATO, PERRO]
//	frutas: [PERA]
//
// Words are trimmed and upper-cased; blank entries are dropped.
func LoadTable(path string) (Table, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read word table: %w", err)
	}

	var doc map[string][]string
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("parse word table %s: %w", path, err)
	}

	table := make(Table, len(doc))
	for category, list := range doc {
		category = strings.TrimSpace(category)
		if category == "" {
			continue
		}
		clean := make([]string, 0, len(list))
		for _, w := range list {
			if w = strings.ToUpper(strings.TrimSpace(w)); w != "" {
				clean = append(clean, w)
			}
		}
		table[category] = clean
	}
	if len(table) == 0 {
		return nil, fmt.Errorf("word table %s has no categories", path)
	}
	return table, nil
}
