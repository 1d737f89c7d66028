package preflight

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"kachef/internal/metadata"
	"kachef/internal/snapshot"
	"kachef/internal/testsupport"
)

type fakeObjects struct {
	names []string
	err   error
}

func (f fakeObjects) List(context.Context, string) ([]string, error) { return f.names, f.err }

func (f fakeObjects) Open(context.Context, string) (io.ReadCloser, error) {
	return nil, errors.New("not used")
}

func TestCheckDirectoryAccess_OK(t *testing.T) {
	dir := t.TempDir()
	result := CheckDirectoryAccess("test", dir)
	if !result.Passed {
		t.Fatalf("expected pass for temp dir, got: %s", result.Detail)
	}
}

func TestCheckDirectoryAccess_NotExist(t *testing.T) {
	result := CheckDirectoryAccess("test", filepath.Join(t.TempDir(), "nope"))
	if result.Passed {
		t.Fatal("expected failure for missing dir")
	}
	if !strings.Contains(result.Detail, "does not exist") {
		t.Fatalf("unexpected detail: %s", result.Detail)
	}
}

func TestCheckDirectoryAccess_NotDir(t *testing.T) {
	f := filepath.Join(t.TempDir(), "file.txt")
	if err := os.WriteFile(f, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	result := CheckDirectoryAccess("test", f)
	if result.Passed {
		t.Fatal("expected failure for file path")
	}
}

func TestCheckMetadataMap(t *testing.T) {
	path := filepath.Join(t.TempDir(), "metadata_by_slug.json")
	if result := CheckMetadataMap(path); result.Passed || !strings.Contains(result.Detail, "metadata generate") {
		t.Fatalf("missing map should fail with a hint, got %+v", result)
	}
	if err := metadata.Save(path, metadata.Map{"solve": {GradeLevels: []string{"7"}}}); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if result := CheckMetadataMap(path); !result.Passed || !strings.Contains(result.Detail, "1 slugs") {
		t.Fatalf("unexpected result %+v", result)
	}
}

func TestCheckSnapshotCache(t *testing.T) {
	path := filepath.Join(t.TempDir(), "topic_tree_export.fr.tsv")
	if result := CheckSnapshotCache(path, true); !result.Passed || !strings.Contains(result.Detail, "not cached") {
		t.Fatalf("unexpected result %+v", result)
	}
	testsupport.WriteFile(t, path, "id\n")
	if result := CheckSnapshotCache(path, false); !result.Passed || !strings.Contains(result.Detail, "use_cache is off") {
		t.Fatalf("unexpected result %+v", result)
	}
}

func TestCheckBucket(t *testing.T) {
	objects := fakeObjects{names: []string{
		"pt-pt-export-2024-03-01T00:00:00+0000.tsv",
		"pt-export-2024-01-01T00:00:00+0000.tsv",
	}}
	result := CheckBucket(context.Background(), objects, "bucket", "pt")
	if !result.Passed || result.Detail != "pt-export-2024-01-01T00:00:00+0000.tsv" {
		t.Fatalf("unexpected result %+v", result)
	}
	if result := CheckBucket(context.Background(), objects, "bucket", "fr"); result.Passed {
		t.Fatal("expected failure without an fr export")
	}
	failing := fakeObjects{err: context.DeadlineExceeded}
	if result := CheckBucket(context.Background(), failing, "bucket", "fr"); result.Passed || !strings.Contains(result.Detail, "timed out") {
		t.Fatalf("unexpected result %+v", result)
	}
}

func TestCheckEndpoint(t *testing.T) {
	var agent string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		agent = r.Header.Get("User-Agent")
		if r.URL.Path == "/missing" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	if result := CheckEndpoint(context.Background(), "sheet", srv.URL+"/ok", "kachef/test"); !result.Passed {
		t.Fatalf("expected pass, got: %s", result.Detail)
	}
	if agent != "kachef/test" {
		t.Fatalf("user agent = %q", agent)
	}
	if result := CheckEndpoint(context.Background(), "sheet", srv.URL+"/missing", ""); result.Passed {
		t.Fatal("expected failure for 404")
	}
	if result := CheckEndpoint(context.Background(), "sheet", "", ""); result.Passed {
		t.Fatal("expected failure for missing url")
	}
}

func TestRunAll_NilConfig(t *testing.T) {
	if results := RunAll(context.Background(), nil, Options{}); results != nil {
		t.Fatal("expected nil results for nil config")
	}
}

func TestRunAll_OfflineReferenceRun(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatalf("EnsureDirectories: %v", err)
	}

	results := RunAll(context.Background(), cfg, Options{Offline: true})
	// Five directories plus the snapshot cache; the reference run generates
	// the map, so it is not checked.
	if len(results) != 6 {
		t.Fatalf("expected 6 results, got %d: %+v", len(results), results)
	}
	for _, r := range results {
		if !r.Passed {
			t.Errorf("check %q failed: %s", r.Name, r.Detail)
		}
	}
}

func TestRunAll_ConsumeRunChecksMapAndBucket(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithRun("fr", ""))
	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatalf("EnsureDirectories: %v", err)
	}
	objects := fakeObjects{names: []string{"fr-export-2024-01-01T00:00:00+0000.tsv"}}

	results := RunAll(context.Background(), cfg, Options{Objects: objects})
	byName := map[string]Result{}
	for _, r := range results {
		byName[r.Name] = r
	}
	if r, ok := byName["Metadata map"]; !ok || r.Passed {
		t.Fatalf("expected failing metadata map check, got %+v", r)
	}
	if r, ok := byName["Export bucket"]; !ok || !r.Passed {
		t.Fatalf("expected passing bucket check, got %+v", r)
	}
	if _, ok := byName["Dubbed video sheet"]; ok {
		t.Fatal("dubbing check should be skipped without a sheet url")
	}
	if got := snapshot.TSVCachePath(cfg.Paths.CacheDir, "fr"); !strings.Contains(byName["Snapshot cache"].Detail, got) {
		t.Fatalf("cache detail should name %s: %+v", got, byName["Snapshot cache"])
	}
}
