package curation

import "sort"

// Directives maps replaced slugs to their specs. Each slug is handed out at
// most once.
type Directives struct {
	specs    map[string][]Spec
	consumed map[string]bool
}

// NewDirectives wraps specs. The map is not copied and must not be modified
// afterwards.
func NewDirectives(specs map[string][]Spec) *Directives {
	return &Directives{specs: specs, consumed: map[string]bool{}}
}

// Take returns the specs for slug on the first call and marks the slug
// consumed. Later calls, and slugs with no directive, report false.
func (d *Directives) Take(slug string) ([]Spec, bool) {
	if d == nil || d.consumed[slug] {
		return nil, false
	}
	specs, ok := d.specs[slug]
	if !ok {
		return nil, false
	}
	d.consumed[slug] = true
	return specs, true
}

// Has reports whether slug has a directive that has not been consumed.
func (d *Directives) Has(slug string) bool {
	if d == nil || d.consumed[slug] {
		return false
	}
	_, ok := d.specs[slug]
	return ok
}

// Consumed reports whether Take already handed out slug.
func (d *Directives) Consumed(slug string) bool {
	return d != nil && d.consumed[slug]
}

// Pending lists directive slugs never encountered, sorted.
func (d *Directives) Pending() []string {
	if d == nil {
		return nil
	}
	var out []string
	for slug := range d.specs {
		if !d.consumed[slug] {
			out = append(out, slug)
		}
	}
	sort.Strings(out)
	return out
}

// Len returns the number of directives, consumed or not.
func (d *Directives) Len() int {
	if d == nil {
		return 0
	}
	return len(d.specs)
}
