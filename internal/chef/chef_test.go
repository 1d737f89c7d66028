package chef_test

import (
	"context"
	"errors"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gofrs/flock"

	"kachef/internal/channel"
	"kachef/internal/chef"
	"kachef/internal/config"
	"kachef/internal/curation"
	"kachef/internal/metadata"
	"kachef/internal/nodes"
	"kachef/internal/services"
	"kachef/internal/snapshot"
	"kachef/internal/testsupport"
)

var exportColumns = []string{
	"id", "kind", "slug", "original_title", "translated_title", "listed", "fully_translated",
	"curriculum_key", "children_ids", "youtube_id", "translated_youtube_id", "source_lang", "license", "download_urls",
	"suggested_completion_criteria", "assessment_item_ids", "canonical_url",
}

func exportRow(cells map[string]string) string {
	row := make([]string, len(exportColumns))
	for i, name := range exportColumns {
		row[i] = cells[name]
	}
	return strings.Join(row, "\t")
}

// writeExport caches a small math snapshot for kalang so runs never reach GCS.
func writeExport(t *testing.T, cfg *config.Config, kalang, titlePrefix string) {
	t.Helper()
	topic := func(id, kind, slug, children string) string {
		return exportRow(map[string]string{
			"id": id, "kind": kind, "slug": slug,
			"original_title": slug, "translated_title": titlePrefix + slug,
			"listed": "True", "fully_translated": "True",
			"children_ids": children,
		})
	}
	rows := []string{
		strings.Join(exportColumns, "\t"),
		topic("d1", "Domain", "math", `[{"kind":"Course","id":"c1"}]`),
		topic("c1", "Course", "algebra", `[{"kind":"Unit","id":"u1"}]`),
		topic("u1", "Unit", "linear", `[{"kind":"Lesson","id":"l1"}]`),
		topic("l1", "Lesson", "intro", `[{"kind":"Exercise","id":"e1"},{"kind":"Video","id":"v1"}]`),
		exportRow(map[string]string{
			"id": "e1", "kind": "Exercise", "slug": "e/solve",
			"original_title": "Solve", "translated_title": titlePrefix + "Solve",
			"listed": "True", "fully_translated": "True",
			"suggested_completion_criteria": "num_problems_7",
			"assessment_item_ids":           `["item-1"]`,
			"canonical_url":                 "https://www.khanacademy.org/e/solve",
		}),
		exportRow(map[string]string{
			"id": "v1", "kind": "Video", "slug": "v/watch",
			"original_title": "Watch", "translated_title": titlePrefix + "Watch",
			"listed": "True", "fully_translated": "True",
			"youtube_id": "yt-watch", "source_lang": "en",
			"license":       "CC BY-NC-SA (KA default)",
			"download_urls": `{"mp4-low":"https://cdn.kastatic.org/watch-low.mp4"}`,
		}),
	}
	testsupport.WriteFile(t, snapshot.TSVCachePath(cfg.Paths.CacheDir, kalang), strings.Join(rows, "\n")+"\n")
}

// newConfig runs without editorial rules; the built-in ones reshape real
// exports, not this fixture.
func newConfig(t *testing.T, opts ...testsupport.ConfigOption) *config.Config {
	t.Helper()
	opts = append([]testsupport.ConfigOption{testsupport.WithCurationRules("{}\n")}, opts...)
	cfg := testsupport.NewConfig(t, opts...)
	writeExport(t, cfg, "en", "")
	writeExport(t, cfg, "fr", "FR ")
	return cfg
}

func TestGenerateRunWritesMetadataMap(t *testing.T) {
	cfg := newConfig(t)
	res, err := chef.Run(context.Background(), cfg, chef.Options{})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if res.Mode != metadata.ModeGenerate {
		t.Fatalf("mode = %q", res.Mode)
	}
	if res.TreePath != "" {
		t.Fatalf("generation must not write a tree, got %q", res.TreePath)
	}
	if res.RunID == "" || res.Records != 6 || res.TopLevel != 1 {
		t.Fatalf("unexpected result: %+v", res)
	}

	m, err := metadata.Load(res.MetadataPath)
	if err != nil {
		t.Fatalf("metadata.Load: %v", err)
	}
	for _, slug := range []string{"solve", "watch"} {
		if _, ok := m.Tags(slug); !ok {
			t.Fatalf("metadata map missing %q: %v", slug, m.Slugs())
		}
	}
	if res.MetadataSlugs != 2 {
		t.Fatalf("metadata slugs = %d", res.MetadataSlugs)
	}
}

func TestConsumeRunWritesTree(t *testing.T) {
	cfg := newConfig(t)
	if _, err := chef.Run(context.Background(), cfg, chef.Options{}); err != nil {
		t.Fatalf("generation run: %v", err)
	}

	res, err := chef.Run(context.Background(), cfg.WithRun("fr", ""), chef.Options{})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if res.Mode != metadata.ModeConsume {
		t.Fatalf("mode = %q", res.Mode)
	}
	if res.TreePath != channel.OutputPath(cfg.Paths.OutputDir, "fr", "") {
		t.Fatalf("tree path = %q", res.TreePath)
	}
	doc, err := channel.ReadFile(res.TreePath)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if doc.SourceID != "KA (fr)" || len(doc.Children) != 1 {
		t.Fatalf("unexpected channel: %+v", doc)
	}
	if domain, ok := doc.Children[0].(map[string]any); !ok || domain["title"] != "FR math" {
		t.Fatalf("unexpected domain: %v", doc.Children[0])
	}
	// The English-audio video has no French subtitles on record.
	if res.Excluded["untranslated-no-subs"] != 1 {
		t.Fatalf("unexpected exclusions: %v", res.Excluded)
	}
}

func TestConsumeWithoutMapIsFatal(t *testing.T) {
	cfg := newConfig(t)
	res, err := chef.Run(context.Background(), cfg.WithRun("fr", ""), chef.Options{})
	if !errors.Is(err, services.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
	if !services.IsFatal(err) {
		t.Fatalf("missing metadata map should be fatal: %v", err)
	}
	if res == nil || res.Err == nil {
		t.Fatalf("result should carry the error: %+v", res)
	}
}

func TestConsumeChecksMapBeforeSnapshot(t *testing.T) {
	cfg := newConfig(t)
	bucket := &countingBucket{}
	_, err := chef.Run(context.Background(), cfg.WithRun("de", ""), chef.Options{Sources: &chef.Sources{Objects: bucket}})
	if !errors.Is(err, services.ErrNotFound) || !strings.Contains(err.Error(), "metadata") {
		t.Fatalf("expected missing metadata map, got %v", err)
	}
	if bucket.calls != 0 {
		t.Fatalf("snapshot was fetched before the map was checked (%d calls)", bucket.calls)
	}
}

func TestCurationOptionSplicesTree(t *testing.T) {
	cfg := newConfig(t)
	rules, err := curation.Parse([]byte(`
replacements:
  en:
    linear:
    - slug: linear-curated
      title: Curated linear
      children:
      - slug: intro
`))
	if err != nil {
		t.Fatalf("parse rules: %v", err)
	}
	res, err := chef.Run(context.Background(), cfg, chef.Options{Mode: metadata.ModeOff, Curation: rules})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	algebra := res.Root.Children[0].(*nodes.Topic).Children[0].(*nodes.Topic)
	curated, ok := algebra.Children[0].(*nodes.Topic)
	if !ok || curated.ID != curation.NamespacedID("algebra", "linear-curated") || curated.Title != "Curated linear" {
		t.Fatalf("unexpected spliced topic: %+v", algebra.Children[0])
	}
	if len(curated.Children) != 1 || curated.Children[0].Base().Slug != "intro" {
		t.Fatalf("spliced topic should hold the intro lesson, got %d children", len(curated.Children))
	}
	if len(res.Unused) != 0 {
		t.Fatalf("unexpected unused directives: %v", res.Unused)
	}
}

func TestCurationFileIsLoaded(t *testing.T) {
	cfg := newConfig(t, testsupport.WithCurationRules("global_blacklist: [linear]\n"))
	res, err := chef.Run(context.Background(), cfg, chef.Options{Mode: metadata.ModeOff})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if res.Excluded["blacklisted"] != 1 || res.TopLevel != 0 {
		t.Fatalf("blacklist from the rules file not applied: %+v", res)
	}
}

func TestMissingCurationFileIsFatal(t *testing.T) {
	cfg := newConfig(t)
	cfg.Paths.CurationFile = filepath.Join(testsupport.BaseDir(cfg), "missing.yaml")
	_, err := chef.Run(context.Background(), cfg, chef.Options{Mode: metadata.ModeOff})
	if !errors.Is(err, services.ErrConfiguration) || !services.IsFatal(err) {
		t.Fatalf("expected configuration error, got %v", err)
	}
}

func TestEnglishSubtitlesOptionReachesBuild(t *testing.T) {
	cfg := newConfig(t)
	writeDubbedExport(t, cfg)
	cfg.Run.EnglishSubtitles = true
	res, err := chef.Run(context.Background(), cfg.WithRun("es", ""), chef.Options{Mode: metadata.ModeOff})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	var titles []string
	nodes.Walk(res.Root, func(n nodes.Node, _ int) {
		if v, ok := n.(*nodes.Video); ok {
			titles = append(titles, v.Title)
		}
	})
	// Subtitles are off in tests, so the English copy is excluded.
	if len(titles) != 1 || titles[0] != "ES Watch -dubbed(KY)" {
		t.Fatalf("unexpected videos: %v", titles)
	}
	if res.Excluded["untranslated-no-subs"] != 1 {
		t.Fatalf("unexpected exclusions: %v", res.Excluded)
	}
}

// writeDubbedExport caches an es snapshot whose video is a Spanish dub.
func writeDubbedExport(t *testing.T, cfg *config.Config) {
	t.Helper()
	topic := func(id, kind, slug, children string) string {
		return exportRow(map[string]string{
			"id": id, "kind": kind, "slug": slug,
			"original_title": slug, "translated_title": "ES " + slug,
			"listed": "True", "fully_translated": "True",
			"children_ids": children,
		})
	}
	rows := []string{
		strings.Join(exportColumns, "\t"),
		topic("d1", "Domain", "math", `[{"kind":"Lesson","id":"l1"}]`),
		topic("l1", "Lesson", "intro", `[{"kind":"Video","id":"v1"}]`),
		exportRow(map[string]string{
			"id": "v1", "kind": "Video", "slug": "v/watch",
			"original_title": "Watch", "translated_title": "ES Watch",
			"listed": "True", "fully_translated": "True",
			"youtube_id": "yt-watch", "translated_youtube_id": "yt-watch-es", "source_lang": "es",
			"license":       "CC BY-NC-SA (KA default)",
			"download_urls": `{"mp4-low":"https://cdn.kastatic.org/watch-es-low.mp4"}`,
		}),
	}
	testsupport.WriteFile(t, snapshot.TSVCachePath(cfg.Paths.CacheDir, "es"), strings.Join(rows, "\n")+"\n")
}

func TestModeOverrideSkipsMetadata(t *testing.T) {
	cfg := newConfig(t)
	res, err := chef.Run(context.Background(), cfg.WithRun("fr", ""), chef.Options{Mode: metadata.ModeOff})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if res.Mode != metadata.ModeOff || res.TreePath == "" {
		t.Fatalf("unexpected result: %+v", res)
	}
}

func TestConcurrentRunIsRejected(t *testing.T) {
	cfg := newConfig(t)
	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatalf("EnsureDirectories: %v", err)
	}
	held := flock.New(chef.LockPath(cfg.Paths.LockDir, "en", ""))
	ok, err := held.TryLock()
	if err != nil || !ok {
		t.Fatalf("TryLock: %v %v", ok, err)
	}
	defer func() { _ = held.Unlock() }()

	_, err = chef.Run(context.Background(), cfg, chef.Options{})
	if !errors.Is(err, services.ErrConfiguration) || !strings.Contains(err.Error(), "another run is in progress") {
		t.Fatalf("expected lock error, got %v", err)
	}
}

func TestVerboseReportIsWritten(t *testing.T) {
	cfg := newConfig(t, testsupport.WithVerboseReport())
	res, err := chef.Run(context.Background(), cfg, chef.Options{Mode: metadata.ModeOff})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if res.ReportPath != chef.ReportPath(cfg.Paths.OutputDir, "en", "") {
		t.Fatalf("report path = %q", res.ReportPath)
	}
	data, err := os.ReadFile(res.ReportPath)
	if err != nil {
		t.Fatalf("read report: %v", err)
	}
	for _, want := range []string{"INCLUDE Root root", "        INCLUDE Lesson intro", "          INCLUDE Video v/watch"} {
		if !strings.Contains(string(data), want) {
			t.Fatalf("report missing %q:\n%s", want, data)
		}
	}
}

func TestBatchRunsGenerationFirst(t *testing.T) {
	cfg := newConfig(t)
	specs := []chef.Spec{{Language: "fr"}, {Language: "en"}}
	results := chef.Batch(context.Background(), cfg, specs, 2, chef.Options{})
	if len(results) != 2 {
		t.Fatalf("results = %d", len(results))
	}
	for i, res := range results {
		if res.Err != nil {
			t.Fatalf("run %d failed: %v", i, res.Err)
		}
	}
	if results[0].Language != "fr" || results[0].Mode != metadata.ModeConsume {
		t.Fatalf("results must keep spec order: %+v", results[0])
	}
	if results[1].Mode != metadata.ModeGenerate {
		t.Fatalf("unexpected mode for en: %q", results[1].Mode)
	}

	table := chef.RenderResults(results)
	for _, want := range []string{"fr", "consume", "generate", "ok"} {
		if !strings.Contains(table, want) {
			t.Fatalf("table missing %q:\n%s", want, table)
		}
	}
}

func TestBatchRecordsFailuresWithoutStopping(t *testing.T) {
	cfg := newConfig(t)
	specs := []chef.Spec{{Language: "de"}, {Language: "en"}}
	opts := chef.Options{Sources: &chef.Sources{Objects: emptyBucket{}}}
	results := chef.Batch(context.Background(), cfg, specs, 1, opts)
	if !errors.Is(results[0].Err, services.ErrNotFound) {
		t.Fatalf("a language without an export should fail, got %v", results[0].Err)
	}
	if results[1].Err != nil {
		t.Fatalf("other runs must still finish: %v", results[1].Err)
	}
	if !strings.Contains(chef.RenderResults(results), "failed") {
		t.Fatal("failed run should be marked in the table")
	}
}

type countingBucket struct{ calls int }

func (b *countingBucket) List(context.Context, string) ([]string, error) {
	b.calls++
	return nil, nil
}

func (b *countingBucket) Open(context.Context, string) (io.ReadCloser, error) {
	b.calls++
	return nil, fs.ErrNotExist
}

type emptyBucket struct{}

func (emptyBucket) List(context.Context, string) ([]string, error) { return nil, nil }

func (emptyBucket) Open(_ context.Context, name string) (io.ReadCloser, error) {
	return nil, fs.ErrNotExist
}

func TestParseSpec(t *testing.T) {
	tests := []struct {
		in      string
		want    chef.Spec
		wantErr bool
	}{
		{in: "fr", want: chef.Spec{Language: "fr"}},
		{in: "en/in-in", want: chef.Spec{Language: "en", Variant: "in-in"}},
		{in: " pt-BR ", want: chef.Spec{Language: "pt-BR"}},
		{in: "/us-cc", wantErr: true},
	}
	for _, tc := range tests {
		got, err := chef.ParseSpec(tc.in)
		if tc.wantErr {
			if err == nil {
				t.Fatalf("ParseSpec(%q) should fail", tc.in)
			}
			continue
		}
		if err != nil || got != tc.want {
			t.Fatalf("ParseSpec(%q) = %+v, %v", tc.in, got, err)
		}
	}
}
