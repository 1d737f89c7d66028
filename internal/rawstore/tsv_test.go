package rawstore_test

import (
	"errors"
	"strings"
	"testing"

	"kachef/internal/rawstore"
	"kachef/internal/services"
)

func tsvDoc(rows ...string) string {
	header := strings.Join([]string{
		"id", "kind", "slug", "original_title", "translated_title", "translated_description_html",
		"listed", "fully_translated", "curriculum_key", "children_ids", "youtube_id",
		"translated_youtube_id", "source_lang", "license", "download_urls", "dubbed", "duration",
		"assessment_item_ids",
	}, "\t")
	return "\ufeff" + header + "\n" + strings.Join(rows, "\n") + "\n"
}

func row(cells ...string) string {
	out := make([]string, 18)
	copy(out, cells)
	return strings.Join(out, "\t")
}

func TestParseTSVDecodesTypedColumns(t *testing.T) {
	doc := tsvDoc(
		row("d1", "Domain", "math", "Math", "Maths", "", "True", "", "", `[{"kind":"Course","id":"c1"}]`),
		row("v1", "Video", "v/intro", "Intro", "Intro FR", "<p>Hi</p>", "true", "False", "us-cc", "",
			"yt-en", "yt-fr", "fr", "cc-by-nc-sa", `[{"filetype":"mp4","url":"https://x/1.mp4"}]`, "True", "321", ""),
		row("e1", "Exercise", "e/add", "Add", "", "", "yes", "", "", "", "", "", "", "", "", "", "", `["a1","a2"]`),
	)
	store, err := rawstore.ParseTSV(strings.NewReader(doc), nil)
	if err != nil {
		t.Fatalf("ParseTSV: %v", err)
	}
	if store.Len() != 3 {
		t.Fatalf("expected 3 records, got %d", store.Len())
	}

	domain, ok := store.Get("d1")
	if !ok {
		t.Fatal("missing d1 (BOM not stripped?)")
	}
	if !rawstore.IsTrue(domain.Listed) || domain.FullyTranslated != nil {
		t.Fatalf("unexpected flags: listed=%v fully_translated=%v", domain.Listed, domain.FullyTranslated)
	}
	if len(domain.Children) != 1 || domain.Children[0].ID != "c1" || domain.Children[0].Kind != rawstore.KindCourse {
		t.Fatalf("unexpected children: %+v", domain.Children)
	}

	video, _ := store.Get("v1")
	if !rawstore.IsFalse(video.FullyTranslated) {
		t.Fatalf("expected fully_translated=false, got %v", video.FullyTranslated)
	}
	if video.CurriculumKey != "us-cc" || video.SourceLang != "fr" || !video.Dubbed || video.Duration != 321 {
		t.Fatalf("unexpected video fields: %+v", video)
	}
	if got := video.DownloadURLs.Get("mp4"); got != "https://x/1.mp4" {
		t.Fatalf("unexpected mp4 url %q", got)
	}

	exercise, _ := store.Get("e1")
	if !rawstore.IsFalse(exercise.Listed) {
		t.Fatal("expected non-True listed value to decode as false")
	}
	if len(exercise.AssessmentItemIDs) != 2 {
		t.Fatalf("unexpected assessment items: %v", exercise.AssessmentItemIDs)
	}
}

func TestParseTSVSkipsUndecodableRows(t *testing.T) {
	doc := tsvDoc(
		row("d1", "Domain", "math", "Math", "", "", "True", "", "", `[{"kind":`),
		row("d2", "Domain", "science", "Science", "", "", "True"),
		row("v1", "Video", "v/x", "X", "", "", "", "", "", "", "", "", "", "", "", "", "long"),
	)
	store, err := rawstore.ParseTSV(strings.NewReader(doc), nil)
	if err != nil {
		t.Fatalf("ParseTSV: %v", err)
	}
	if _, ok := store.Get("d1"); ok {
		t.Fatal("expected row with broken JSON to be skipped")
	}
	if _, ok := store.Get("v1"); ok {
		t.Fatal("expected row with broken integer to be skipped")
	}
	if _, ok := store.Get("d2"); !ok {
		t.Fatal("expected valid row to survive")
	}
}

func TestParseTSVMissingIDIsFatal(t *testing.T) {
	doc := tsvDoc(row("", "Domain", "math"))
	_, err := rawstore.ParseTSV(strings.NewReader(doc), nil)
	if err == nil {
		t.Fatal("expected error for row without id")
	}
	if !errors.Is(err, services.ErrCorrupt) {
		t.Fatalf("expected ErrCorrupt, got %v", err)
	}
}

func TestParseTSVEmptyInput(t *testing.T) {
	if _, err := rawstore.ParseTSV(strings.NewReader(""), nil); !errors.Is(err, services.ErrCorrupt) {
		t.Fatalf("expected ErrCorrupt for empty export, got %v", err)
	}
}
