package metadata

import (
	_ "embed"
	"fmt"

	"gopkg.in/yaml.v3"

	"kachef/internal/nodes"
)

//go:embed tagrules.yaml
var defaultRules []byte

type ruleEntry struct {
	Categories  []string `yaml:"categories"`
	GradeLevels []string `yaml:"grade_levels"`
}

// Rules maps topic slugs to the tags they seed onto their descendants.
type Rules map[string]nodes.Tags

// DefaultRules returns the embedded tag rules.
func DefaultRules() (Rules, error) {
	return ParseRules(defaultRules)
}

// ParseRules decodes a YAML rules document.
func ParseRules(data []byte) (Rules, error) {
	var raw map[string]ruleEntry
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("decode tag rules: %w", err)
	}
	rules := make(Rules, len(raw))
	for slug, entry := range raw {
		rules[slug] = nodes.Tags{GradeLevels: entry.GradeLevels, Categories: entry.Categories}
	}
	return rules, nil
}

// ForPath unions the rules of every slug in path.
func (r Rules) ForPath(path []string) nodes.Tags {
	var grades, categories []string
	for _, slug := range path {
		tags, ok := r[slug]
		if !ok {
			continue
		}
		grades = append(grades, tags.GradeLevels...)
		categories = append(categories, tags.Categories...)
	}
	return nodes.Tags{GradeLevels: sortedSet(grades), Categories: sortedSet(categories)}
}
