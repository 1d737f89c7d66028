package curation

import (
	_ "embed"
	"fmt"
	"log/slog"
	"os"
	"sort"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"

	"kachef/internal/language"
	"kachef/internal/logging"
	"kachef/internal/services"
)

//go:embed curation.yaml
var defaultRules []byte

// Spec is one node of an editorial replacement hierarchy.
type Spec struct {
	Slug        string `yaml:"slug"`
	Title       string `yaml:"title,omitempty"`
	Description string `yaml:"description,omitempty"`
	Children    []Spec `yaml:"children,omitempty"`
}

// Rules is the decoded editorial data.
type Rules struct {
	GlobalBlacklist []string                     `yaml:"global_blacklist"`
	Blacklists      map[string][]string          `yaml:"blacklists"`
	Replacements    map[string]map[string][]Spec `yaml:"replacements"`
}

var (
	defaultOnce   sync.Once
	defaultParsed *Rules
	defaultErr    error
)

// Default returns the embedded rules. The result is shared and must not be
// modified.
func Default() (*Rules, error) {
	defaultOnce.Do(func() {
		defaultParsed, defaultErr = Parse(defaultRules)
	})
	return defaultParsed, defaultErr
}

// LoadFile reads rules from path. An empty path selects the embedded rules.
func LoadFile(path string) (*Rules, error) {
	if strings.TrimSpace(path) == "" {
		return Default()
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, services.Wrap(services.ErrConfiguration, "curation", "load", "read "+path, err)
	}
	return Parse(data)
}

// Parse decodes and checks rules. Every spec needs a slug.
func Parse(data []byte) (*Rules, error) {
	var rules Rules
	if err := yaml.Unmarshal(data, &rules); err != nil {
		return nil, services.Wrap(services.ErrConfiguration, "curation", "parse", "decode curation rules", err)
	}
	for key, byslug := range rules.Replacements {
		for slug, specs := range byslug {
			if err := checkSpecs(specs); err != nil {
				return nil, services.Wrap(services.ErrConfiguration, "curation", "parse",
					fmt.Sprintf("replacement %s/%s", key, slug), err)
			}
		}
	}
	return &rules, nil
}

func checkSpecs(specs []Spec) error {
	for _, spec := range specs {
		if strings.TrimSpace(spec.Slug) == "" {
			return fmt.Errorf("spec without slug (title %q)", spec.Title)
		}
		if err := checkSpecs(spec.Children); err != nil {
			return err
		}
	}
	return nil
}

// Key returns the rules key for a run: "lang" or "lang/variant".
func Key(lang, variant string) string {
	lang = language.Normalize(lang)
	if variant = strings.TrimSpace(variant); variant != "" {
		return lang + "/" + variant
	}
	return lang
}

// resolve returns the most specific key present in keys.
func resolve[T any](keys map[string]T, lang, variant string) (string, bool) {
	for _, key := range []string{Key(lang, variant), Key(lang, "")} {
		if _, ok := keys[key]; ok {
			return key, true
		}
	}
	return "", false
}

// Blacklist is a set of slugs.
type Blacklist map[string]struct{}

// Contains reports whether slug is blacklisted.
func (b Blacklist) Contains(slug string) bool {
	_, ok := b[slug]
	return ok
}

// Slugs returns the blacklist in sorted order.
func (b Blacklist) Slugs() []string {
	out := make([]string, 0, len(b))
	for slug := range b {
		out = append(out, slug)
	}
	sort.Strings(out)
	return out
}

// Blacklist returns the global blacklist unioned with the most specific
// per-run list. A run with no list of its own logs a warning.
func (r *Rules) Blacklist(lang, variant string, logger *slog.Logger) Blacklist {
	out := make(Blacklist, len(r.GlobalBlacklist))
	for _, slug := range r.GlobalBlacklist {
		out[slug] = struct{}{}
	}
	key, ok := resolve(r.Blacklists, lang, variant)
	if !ok {
		logging.WarnWithContext(logging.NewComponentLogger(logger, "curation"), "no slug blacklist for run", "blacklist_missing",
			logging.String("key", Key(lang, variant)),
			logging.String(logging.FieldErrorHint, "add a blacklists entry to curation.yaml if this language needs one"),
			logging.String(logging.FieldImpact, "only the global blacklist applies"),
		)
		return out
	}
	for _, slug := range r.Blacklists[key] {
		out[slug] = struct{}{}
	}
	return out
}

// Directives returns a fresh one-shot directive set for a run.
func (r *Rules) Directives(lang, variant string) *Directives {
	key, ok := resolve(r.Replacements, lang, variant)
	if !ok {
		return NewDirectives(nil)
	}
	return NewDirectives(r.Replacements[key])
}
