package snapshot_test

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"kachef/internal/rawstore"
	"kachef/internal/services"
	"kachef/internal/snapshot"
)

type fakeObjects struct {
	blobs  map[string]string
	opened []string
}

func (f *fakeObjects) List(_ context.Context, prefix string) ([]string, error) {
	var out []string
	for name := range f.blobs {
		if strings.HasPrefix(name, prefix) {
			out = append(out, name)
		}
	}
	return out, nil
}

func (f *fakeObjects) Open(_ context.Context, name string) (io.ReadCloser, error) {
	f.opened = append(f.opened, name)
	body, ok := f.blobs[name]
	if !ok {
		return nil, errors.New("no such blob")
	}
	return io.NopCloser(strings.NewReader(body)), nil
}

type fakeAPI struct {
	docs  map[string]string
	calls []string
}

func (f *fakeAPI) FetchTopicTree(_ context.Context, _ string, kalang string) ([]byte, error) {
	f.calls = append(f.calls, kalang)
	doc, ok := f.docs[kalang]
	if !ok {
		return nil, services.Wrap(services.ErrNotFound, "kaapi", "GET", kalang, nil)
	}
	return []byte(doc), nil
}

const tsvHeader = "id\tkind\tslug\toriginal_title\ttranslated_title\tchildren_ids\n"

func tsvBody(title string) string {
	return tsvHeader +
		"d1\tDomain\tmath\tMath\t" + title + "\t\n"
}

func TestLatestExportIgnoresPrefixSiblings(t *testing.T) {
	names := []string{
		"pt-export-2020-01-01T00:00:00+0000.tsv",
		"pt-export-2021-06-01T00:00:00+0000.tsv",
		"pt-pt-export-2022-01-01T00:00:00+0000.tsv",
		"pt-notes.txt",
	}
	got, ok := snapshot.LatestExport(names, "pt")
	if !ok || got != "pt-export-2021-06-01T00:00:00+0000.tsv" {
		t.Fatalf("unexpected latest export %q (ok=%v)", got, ok)
	}
	if _, ok := snapshot.LatestExport(names, "fr"); ok {
		t.Fatal("expected no export for fr")
	}
}

func TestListExportsGroupsByKALang(t *testing.T) {
	objects := &fakeObjects{blobs: map[string]string{
		"es-export-2020-07-10T09:54:36+0000.tsv": "",
		"es-export-2019-01-01T00:00:00+0000.tsv": "",
		"zh-hans-export-2020-01-01T00:00:00+0000.tsv": "",
		"README": "",
	}}
	got, err := snapshot.ListExports(context.Background(), objects)
	if err != nil {
		t.Fatalf("ListExports: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected two languages, got %v", got)
	}
	es := got["es"]
	if len(es) != 2 || es[1].Name != "es-export-2020-07-10T09:54:36+0000.tsv" {
		t.Fatalf("unexpected es exports %+v", es)
	}
	if snapshot.KALangOf("zh-hans-export-2020.tsv") != "zh-hans" {
		t.Fatal("unexpected kalang for zh-hans")
	}
}

func TestLoadTSVDownloadsLatestAndCaches(t *testing.T) {
	cache := t.TempDir()
	objects := &fakeObjects{blobs: map[string]string{
		"pt-export-2020-01-01T00:00:00+0000.tsv": tsvBody("Old"),
		"pt-export-2021-01-01T00:00:00+0000.tsv": tsvBody("Matemática"),
	}}
	loader := &snapshot.Loader{CacheDir: cache, UseCache: true, Objects: objects}

	store, err := loader.LoadTSV(context.Background(), "pt-BR")
	if err != nil {
		t.Fatalf("LoadTSV: %v", err)
	}
	rec, ok := store.Get("d1")
	if !ok || rec.TranslatedTitle != "Matemática" {
		t.Fatalf("unexpected record %+v", rec)
	}
	if _, err := os.Stat(filepath.Join(cache, "topic_tree_export.pt.tsv")); err != nil {
		t.Fatalf("expected cache file: %v", err)
	}

	if _, err := loader.LoadTSV(context.Background(), "pt-BR"); err != nil {
		t.Fatalf("second LoadTSV: %v", err)
	}
	if len(objects.opened) != 1 {
		t.Fatalf("expected cached second load, opened %v", objects.opened)
	}
}

func TestLoadTSVWithoutCacheRedownloads(t *testing.T) {
	objects := &fakeObjects{blobs: map[string]string{
		"fr-export-2021-01-01T00:00:00+0000.tsv": tsvBody("Maths"),
	}}
	loader := &snapshot.Loader{CacheDir: t.TempDir(), Objects: objects}
	for i := 0; i < 2; i++ {
		if _, err := loader.LoadTSV(context.Background(), "fr"); err != nil {
			t.Fatalf("LoadTSV: %v", err)
		}
	}
	if len(objects.opened) != 2 {
		t.Fatalf("expected two downloads, got %d", len(objects.opened))
	}
}

func TestLoadTSVMissingExportIsFatal(t *testing.T) {
	loader := &snapshot.Loader{CacheDir: t.TempDir(), Objects: &fakeObjects{blobs: map[string]string{}}}
	_, err := loader.LoadTSV(context.Background(), "km")
	if !errors.Is(err, services.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
	if !services.IsFatal(err) {
		t.Fatal("missing export must be fatal")
	}
}

func TestLoadAPIUsesEnglishYouTubeIDs(t *testing.T) {
	english := `{"topics":[{"id":"x00000000","kind":"Topic","slug":"root","childData":[{"kind":"Topic","id":"d1"}]},
{"id":"d1","kind":"Topic","slug":"math","translatedTitle":"Math","childData":[{"kind":"Video","id":"v1"}]}],
"exercises":[],
"videos":[{"id":"v1","kind":"Video","slug":"intro","youtubeId":"EN123","translatedYoutubeId":"EN123","translatedYoutubeLang":"en","licenseName":"CC BY-NC-SA (KA default)"}]}`
	french := `{"topics":[{"id":"x00000000","kind":"Topic","slug":"root","childData":[{"kind":"Topic","id":"d1"}]},
{"id":"d1","kind":"Topic","slug":"math","translatedTitle":"Maths","childData":[{"kind":"Video","id":"v1"}]}],
"exercises":[],
"videos":[{"id":"v1","kind":"Video","slug":"intro","youtubeId":"FR999","translatedYoutubeId":"FR999","translatedYoutubeLang":"fr","licenseName":"CC BY-NC-SA (KA default)"}]}`
	api := &fakeAPI{docs: map[string]string{"en": english, "fr": french}}
	cache := t.TempDir()
	loader := &snapshot.Loader{CacheDir: cache, UseCache: true, API: api, APIBaseURL: "https://example.org"}

	store, err := loader.LoadAPI(context.Background(), "fr")
	if err != nil {
		t.Fatalf("LoadAPI: %v", err)
	}
	video, ok := store.Get("v1")
	if !ok {
		t.Fatal("expected video record")
	}
	if video.YouTubeID != "EN123" || video.TranslatedYouTubeID != "FR999" {
		t.Fatalf("unexpected ids %q/%q", video.YouTubeID, video.TranslatedYouTubeID)
	}
	if domain, _ := store.Get("d1"); domain.Kind != rawstore.KindDomain {
		t.Fatalf("expected domain kind, got %q", domain.Kind)
	}
	for _, lang := range []string{"en", "fr"} {
		if _, err := os.Stat(snapshot.APICachePath(cache, lang)); err != nil {
			t.Fatalf("expected api cache for %s: %v", lang, err)
		}
	}

	if _, err := loader.LoadAPI(context.Background(), "fr"); err != nil {
		t.Fatalf("cached LoadAPI: %v", err)
	}
	if len(api.calls) != 2 {
		t.Fatalf("expected cached documents to be reused, calls=%v", api.calls)
	}
}

func TestLoadRejectsUnknownFormat(t *testing.T) {
	loader := &snapshot.Loader{CacheDir: t.TempDir()}
	_, err := loader.Load(context.Background(), "xml", "en")
	if !errors.Is(err, services.ErrConfiguration) {
		t.Fatalf("expected configuration error, got %v", err)
	}
}
