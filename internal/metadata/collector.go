package metadata

import (
	"log/slog"
	"slices"
	"sort"
	"strings"

	"kachef/internal/logging"
	"kachef/internal/nodes"
)

// Occurrence is one placement of a leaf slug in the tree.
type Occurrence struct {
	Path        []string `json:"path"`
	GradeLevels []string `json:"grade_levels"`
	Categories  []string `json:"categories"`
}

// Collector gathers leaf occurrences during a generation build. It is used
// by a single build and is not safe for concurrent use.
type Collector struct {
	rules       Rules
	occurrences map[string][]Occurrence
}

// NewCollector returns a collector seeding tags from rules.
func NewCollector(rules Rules) *Collector {
	return &Collector{rules: rules, occurrences: map[string][]Occurrence{}}
}

// Observe records n under ancestors, the slugs from the top-level topic
// down to n's parent. Only exercises and videos are collected.
func (c *Collector) Observe(n nodes.Node, ancestors []string) {
	if n == nil {
		return
	}
	switch n.Kind() {
	case nodes.KindExercise, nodes.KindVideo:
	default:
		return
	}
	base := n.Base()
	tags := c.rules.ForPath(ancestors)
	tags.GradeLevels = sortedSet(append(tags.GradeLevels, base.GradeLevels...))
	tags.Categories = sortedSet(append(tags.Categories, base.Categories...))
	c.occurrences[base.Slug] = append(c.occurrences[base.Slug], Occurrence{
		Path:        append([]string(nil), ancestors...),
		GradeLevels: tags.GradeLevels,
		Categories:  tags.Categories,
	})
}

// Slugs returns the number of distinct slugs observed.
func (c *Collector) Slugs() int { return len(c.occurrences) }

// Aggregate unions every slug's occurrences and drops categories that are
// prefixes of a more specific category.
func (c *Collector) Aggregate() Map {
	out := make(Map, len(c.occurrences))
	for slug, occs := range c.occurrences {
		var grades, categories []string
		for _, occ := range occs {
			grades = append(grades, occ.GradeLevels...)
			categories = append(categories, occ.Categories...)
		}
		out[slug] = Entry{
			GradeLevels: sortedSet(grades),
			Categories:  DePrefix(sortedSet(categories)),
		}
	}
	return out
}

// TrackedSlug is the tracking record of one slug.
type TrackedSlug struct {
	Occurrences   []Occurrence `json:"occurrences"`
	Aggregated    Entry        `json:"aggregated"`
	Contaminated  bool         `json:"contaminated"`
	ForeignLabels []string     `json:"foreign_labels,omitempty"`
}

// Tracking maps slugs to their tracking records.
type Tracking map[string]TrackedSlug

// Track builds the tracking report and logs a cross_contamination warning
// for each slug whose occurrences disagree.
func (c *Collector) Track(logger *slog.Logger) Tracking {
	logger = logging.NewComponentLogger(logger, "metadata")
	aggregated := c.Aggregate()
	out := make(Tracking, len(c.occurrences))
	slugs := make([]string, 0, len(c.occurrences))
	for slug := range c.occurrences {
		slugs = append(slugs, slug)
	}
	sort.Strings(slugs)
	for _, slug := range slugs {
		occs := c.occurrences[slug]
		rec := TrackedSlug{Occurrences: occs, Aggregated: aggregated[slug]}
		for _, occ := range occs[1:] {
			if !slices.Equal(occ.GradeLevels, occs[0].GradeLevels) || !slices.Equal(occ.Categories, occs[0].Categories) {
				rec.Contaminated = true
				break
			}
		}
		if rec.Contaminated {
			rec.ForeignLabels = foreignLabels(occs)
			logging.WarnWithContext(logger, "slug metadata shared across contexts", "cross_contamination",
				logging.String(logging.FieldSlug, slug),
				logging.Int("occurrences", len(occs)),
				logging.String("foreign_labels", strings.Join(rec.ForeignLabels, ", ")),
				logging.String(logging.FieldErrorHint, "inspect the tracking file to see which parent contributed each label"),
				logging.String(logging.FieldImpact, "every placement of this slug receives the union of tags"),
			)
		}
		out[slug] = rec
	}
	return out
}

// foreignLabels lists labels that some occurrence of a slug lacks.
func foreignLabels(occs []Occurrence) []string {
	counts := map[string]int{}
	for _, occ := range occs {
		for _, label := range sortedSet(append(append([]string(nil), occ.GradeLevels...), occ.Categories...)) {
			counts[label]++
		}
	}
	var out []string
	for label, n := range counts {
		if n < len(occs) {
			out = append(out, label)
		}
	}
	sort.Strings(out)
	return out
}

// DePrefix removes every category that is a string prefix of another
// category in the set, keeping the most specific labels. The input order is
// preserved.
func DePrefix(categories []string) []string {
	var out []string
	for i, c := range categories {
		covered := false
		for j, other := range categories {
			if i != j && other != c && strings.HasPrefix(other, c) {
				covered = true
				break
			}
		}
		if !covered {
			out = append(out, c)
		}
	}
	return out
}

func sortedSet(values []string) []string {
	if len(values) == 0 {
		return nil
	}
	seen := make(map[string]struct{}, len(values))
	out := make([]string, 0, len(values))
	for _, v := range values {
		v = strings.TrimSpace(v)
		if v == "" {
			continue
		}
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	sort.Strings(out)
	if len(out) == 0 {
		return nil
	}
	return out
}
