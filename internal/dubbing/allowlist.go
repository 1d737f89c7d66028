package dubbing

import (
	_ "embed"
	"fmt"

	"gopkg.in/yaml.v3"

	"kachef/internal/language"
)

//go:embed dubbed_videos.yaml
var allowListYAML []byte

// AllowList holds translated youtube ids whose audio is known to be in the
// keyed language, whatever the export says.
type AllowList map[string]map[string]bool

// DefaultAllowList decodes the embedded allow-list.
func DefaultAllowList() (AllowList, error) {
	return ParseAllowList(allowListYAML)
}

// ParseAllowList decodes a YAML mapping of language code to id list.
func ParseAllowList(data []byte) (AllowList, error) {
	var raw map[string][]string
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("decode dubbed allow-list: %w", err)
	}
	out := make(AllowList, len(raw))
	for lang, ids := range raw {
		set := make(map[string]bool, len(ids))
		for _, id := range ids {
			set[id] = true
		}
		out[language.Normalize(lang)] = set
	}
	return out, nil
}

// Allowed reports whether translatedID is a known dub for lang.
func (a AllowList) Allowed(lang, translatedID string) bool {
	if a == nil || translatedID == "" {
		return false
	}
	return a[language.Normalize(lang)][translatedID]
}

// Len returns the number of ids listed for lang.
func (a AllowList) Len(lang string) int {
	return len(a[language.Normalize(lang)])
}
