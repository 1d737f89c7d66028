package snapshot

import (
	"context"
	"sort"
	"strings"
)

// Export is one TSV export blob in the bucket.
type Export struct {
	KALang string
	Name   string
}

// KALangOf returns the KA language code an export blob belongs to, which is
// the text before "-export" (es-export-2020-07-10T09:54:36+0000.tsv → es).
func KALangOf(name string) string {
	kalang, _, _ := strings.Cut(name, "-export")
	return kalang
}

// LatestExport returns the newest export for kalang among names. Blob names
// embed an ISO timestamp, so the greatest name is the newest. Names that
// only share a prefix (pt-pt-export-… when asking for pt) are ignored.
func LatestExport(names []string, kalang string) (string, bool) {
	latest := ""
	for _, name := range names {
		if KALangOf(name) != kalang || !strings.Contains(name, "-export") {
			continue
		}
		if name > latest {
			latest = name
		}
	}
	return latest, latest != ""
}

// ListExports returns every export in the bucket grouped by KA language,
// each group sorted oldest first.
func ListExports(ctx context.Context, objects ObjectStore) (map[string][]Export, error) {
	names, err := objects.List(ctx, "")
	if err != nil {
		return nil, err
	}
	sort.Strings(names)
	out := map[string][]Export{}
	for _, name := range names {
		if !strings.Contains(name, "-export") {
			continue
		}
		kalang := KALangOf(name)
		out[kalang] = append(out[kalang], Export{KALang: kalang, Name: name})
	}
	return out, nil
}
