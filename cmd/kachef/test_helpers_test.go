package main

import (
	"bytes"
	"context"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"kachef/internal/chef"
	"kachef/internal/snapshot"
)

type cliTestEnv struct {
	baseDir    string
	dataDir    string
	configPath string
	sources    *chef.Sources
}

type fakeBucket struct {
	names []string
}

func (b fakeBucket) List(context.Context, string) ([]string, error) { return b.names, nil }

func (b fakeBucket) Open(context.Context, string) (io.ReadCloser, error) {
	return nil, fs.ErrNotExist
}

func setupCLITestEnv(t *testing.T) *cliTestEnv {
	t.Helper()

	base := t.TempDir()
	homeDir := filepath.Join(base, "home")
	if err := os.MkdirAll(homeDir, 0o755); err != nil {
		t.Fatalf("mkdir home: %v", err)
	}
	t.Setenv("HOME", homeDir)
	t.Setenv("KACHEF_LANG", "")
	t.Setenv("KACHEF_LOG_LEVEL", "error")

	dataDir := filepath.Join(base, "data")
	// The built-in curation rules reshape real exports, not this fixture.
	rulesPath := filepath.Join(base, "curation.yaml")
	if err := os.WriteFile(rulesPath, []byte("{}\n"), 0o644); err != nil {
		t.Fatalf("write curation rules: %v", err)
	}
	configPath := filepath.Join(base, "kachef.toml")
	content := "[paths]\n" +
		"data_dir = \"" + dataDir + "\"\n" +
		"curation_file = \"" + rulesPath + "\"\n\n" +
		"[subtitles]\nenabled = false\n\n" +
		"[common_core]\nenabled = false\n\n" +
		"[dubbing]\ncsv_url = \"\"\n\n" +
		"[logging]\nlevel = \"error\"\n"
	if err := os.WriteFile(configPath, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cacheDir := filepath.Join(dataDir, "khantsvcache")
	writeExport(t, snapshot.TSVCachePath(cacheDir, "en"), "")
	writeExport(t, snapshot.TSVCachePath(cacheDir, "fr"), "FR ")

	return &cliTestEnv{
		baseDir:    base,
		dataDir:    dataDir,
		configPath: configPath,
		sources: &chef.Sources{Objects: fakeBucket{names: []string{
			"en-export-2024-01-01T00:00:00+0000.tsv",
			"en-export-2024-02-01T00:00:00+0000.tsv",
			"fr-export-2024-01-15T00:00:00+0000.tsv",
		}}},
	}
}

func writeExport(t *testing.T, path, prefix string) {
	t.Helper()
	header := "id\tkind\tslug\toriginal_title\ttranslated_title\tlisted\tfully_translated\tchildren_ids\tyoutube_id\tsource_lang\tlicense\tdownload_urls\tsuggested_completion_criteria\n"
	topic := func(id, kind, slug, children string) string {
		return strings.Join([]string{id, kind, slug, slug, prefix + slug, "True", "True", children, "", "", "", "", ""}, "\t") + "\n"
	}
	body := header +
		topic("d1", "Domain", "math", `[{"kind":"Course","id":"c1"}]`) +
		topic("c1", "Course", "algebra", `[{"kind":"Unit","id":"u1"}]`) +
		topic("u1", "Unit", "linear", `[{"kind":"Lesson","id":"l1"}]`) +
		topic("l1", "Lesson", "intro", `[{"kind":"Exercise","id":"e1"},{"kind":"Video","id":"v1"}]`) +
		strings.Join([]string{"e1", "Exercise", "e/solve", "Solve", prefix + "Solve", "True", "True", "", "", "", "", "", "num_problems_7"}, "\t") + "\n" +
		strings.Join([]string{"v1", "Video", "v/watch", "Watch", prefix + "Watch", "True", "True", "", "yt-watch", "en", "CC BY-NC-SA (KA default)",
			`{"mp4-low":"https://cdn.kastatic.org/watch-low.mp4"}`, ""}, "\t") + "\n"
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write export: %v", err)
	}
}

func runCLI(t *testing.T, env *cliTestEnv, args ...string) (string, string, error) {
	t.Helper()
	cmd := newRootCommandWith(env.sources)
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs(append([]string{"--config", env.configPath}, args...))
	err := cmd.ExecuteContext(context.Background())
	return stdout.String(), stderr.String(), err
}

func requireContains(t *testing.T, output, substr string) {
	t.Helper()
	if !strings.Contains(output, substr) {
		t.Fatalf("expected %q to contain %q", output, substr)
	}
}
