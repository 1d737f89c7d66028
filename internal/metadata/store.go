package metadata

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"sort"

	"kachef/internal/fileutil"
	"kachef/internal/nodes"
	"kachef/internal/services"
)

const regenerateHint = "run `kachef metadata generate` on the reference language first"

// Entry is the persisted metadata of one slug.
type Entry struct {
	GradeLevels []string `json:"grade_levels"`
	Categories  []string `json:"categories"`
}

// Map is the persisted slug → metadata map.
type Map map[string]Entry

// Tags implements nodes.MetadataLookup.
func (m Map) Tags(slug string) (nodes.Tags, bool) {
	entry, ok := m[slug]
	if !ok {
		return nodes.Tags{}, false
	}
	return nodes.Tags{GradeLevels: entry.GradeLevels, Categories: entry.Categories}, true
}

// Slugs returns the mapped slugs in sorted order.
func (m Map) Slugs() []string {
	out := make([]string, 0, len(m))
	for slug := range m {
		out = append(out, slug)
	}
	sort.Strings(out)
	return out
}

// TrackingPath returns the tracking file written next to the map.
func TrackingPath(mapPath string) string {
	return mapPath + ".tracking.json"
}

// Load reads the map at path. A missing file is ErrNotFound and an
// undecodable one ErrCorrupt; both carry the regeneration hint.
func Load(path string) (Map, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, services.Wrap(services.ErrNotFound, "metadata", "load",
			fmt.Sprintf("no metadata map at %s; %s", path, regenerateHint), err)
	}
	if err != nil {
		return nil, services.Wrap(services.ErrConfiguration, "metadata", "load", "read metadata map", err)
	}
	var m Map
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, services.Wrap(services.ErrCorrupt, "metadata", "load",
			fmt.Sprintf("metadata map %s is corrupt; %s", path, regenerateHint), err)
	}
	if m == nil {
		return nil, services.Wrap(services.ErrCorrupt, "metadata", "load",
			fmt.Sprintf("metadata map %s is empty; %s", path, regenerateHint), nil)
	}
	return m, nil
}

// Save writes m atomically. encoding/json sorts map keys, and values are
// sorted here so regenerating an unchanged tree is byte-identical.
func Save(path string, m Map) error {
	out := make(Map, len(m))
	for slug, entry := range m {
		out[slug] = Entry{
			GradeLevels: nonNil(sortedSet(entry.GradeLevels)),
			Categories:  nonNil(sortedSet(entry.Categories)),
		}
	}
	return writeJSON(path, out)
}

// SaveTracking writes the tracking report for the map at mapPath.
func SaveTracking(mapPath string, tracking Tracking) error {
	return writeJSON(TrackingPath(mapPath), tracking)
}

func writeJSON(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("encode %s: %w", path, err)
	}
	if err := fileutil.WriteFileAtomic(path, append(data, '\n'), 0o644); err != nil {
		return services.Wrap(services.ErrConfiguration, "metadata", "save", "write "+path, err)
	}
	return nil
}

func nonNil(values []string) []string {
	if values == nil {
		return []string{}
	}
	return values
}
