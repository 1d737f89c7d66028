package nodes_test

import (
	"strings"
	"testing"

	"kachef/internal/admission"
	"kachef/internal/nodes"
	"kachef/internal/rawstore"
)

type memory map[string]string

func (m memory) Apply(text string) string {
	if v, ok := m[text]; ok {
		return v
	}
	return text
}

type standards map[string]string

func (s standards) Lookup(slug string) (string, bool) {
	tag, ok := s[slug]
	return tag, ok
}

type metadataMap map[string]nodes.Tags

func (m metadataMap) Tags(slug string) (nodes.Tags, bool) {
	tags, ok := m[slug]
	return tags, ok
}

func video(mutate ...func(*rawstore.Record)) *rawstore.Record {
	rec := &rawstore.Record{
		ID:                  "vid1",
		Kind:                rawstore.KindVideo,
		Slug:                "v/intro-to-algebra",
		OriginalTitle:       "Intro to algebra",
		TranslatedTitle:     "Introduction à l'algèbre",
		YouTubeID:           "EN123",
		TranslatedYouTubeID: "FR456",
		SourceLang:          "fr",
		License:             "CC BY-NC-SA (KA default)",
		DownloadURLs:        rawstore.DownloadURLs{{Filetype: "mp4", URL: "https://cdn/v.mp4"}, {Filetype: "mp4-low", URL: "https://cdn/v-low.mp4"}},
	}
	for _, m := range mutate {
		m(rec)
	}
	return rec
}

func TestBuildTopicUsesSlugAsID(t *testing.T) {
	f := &nodes.Factory{Language: "fr", ReferenceLanguage: "en"}
	node, reason := f.Build(&rawstore.Record{
		ID: "x1", Kind: rawstore.KindCourse, Slug: "algebra",
		OriginalTitle: "Algebra", TranslatedTitle: "Algèbre", CurriculumKey: "fr-fr",
	})
	if !reason.OK() {
		t.Fatalf("unexpected reason %q", reason)
	}
	topic, ok := node.(*nodes.Topic)
	if !ok {
		t.Fatalf("expected topic, got %T", node)
	}
	if topic.ID != "algebra" || topic.Title != "Algèbre" || topic.Curriculum != "fr-fr" {
		t.Fatalf("unexpected topic %+v", topic.Common)
	}
}

func TestBuildTitleFollowsReferenceLanguage(t *testing.T) {
	rec := &rawstore.Record{ID: "x", Kind: rawstore.KindUnit, Slug: "u", OriginalTitle: "Fractions", TranslatedTitle: ""}
	en := &nodes.Factory{Language: "en", ReferenceLanguage: "en"}
	if node, _ := en.Build(rec); node.Base().Title != "Fractions" {
		t.Fatalf("unexpected en title %q", node.Base().Title)
	}
	fr := &nodes.Factory{Language: "fr", ReferenceLanguage: "en"}
	if node, _ := fr.Build(rec); node.Base().Title != "Fractions" {
		t.Fatalf("missing translated title should fall back, got %q", node.Base().Title)
	}
}

func TestBuildAppliesTranslationMemory(t *testing.T) {
	f := &nodes.Factory{
		Language:          "sw",
		ReferenceLanguage: "en",
		Translations:      memory{"Fractions": "Sehemu", "<p>Learn fractions</p>": "<p>Jifunze sehemu</p>"},
	}
	node, _ := f.Build(&rawstore.Record{
		ID: "x", Kind: rawstore.KindLesson, Slug: "fractions",
		TranslatedTitle: "Fractions", TranslatedDescriptionHTML: "<p>Learn fractions</p>",
	})
	if node.Base().Title != "Sehemu" {
		t.Fatalf("expected translated title, got %q", node.Base().Title)
	}
	if node.Base().Description != "Jifunze sehemu" {
		t.Fatalf("expected translated description, got %q", node.Base().Description)
	}
}

func TestBuildExercise(t *testing.T) {
	f := &nodes.Factory{Language: "en", CommonCore: standards{"solve-linear": "CCSS.Math.8.EE.C.7"}}
	node, reason := f.Build(&rawstore.Record{
		ID: "ex1", Kind: rawstore.KindExercise, Slug: "e/solve-linear",
		OriginalTitle: "Solve linear", SuggestedCompletionCriteria: "num_problems_7",
		AssessmentItemIDs: []string{"a1", "a2"}, CanonicalURL: "https://ka/e/solve-linear",
	})
	if !reason.OK() {
		t.Fatalf("unexpected reason %q", reason)
	}
	ex := node.(*nodes.Exercise)
	if ex.ID != "solve-linear" || ex.Slug != "solve-linear" {
		t.Fatalf("expected prefix stripped, got %q/%q", ex.ID, ex.Slug)
	}
	if ex.Mastery != (nodes.Mastery{Policy: nodes.PolicyMOfN, M: 5, N: 7}) {
		t.Fatalf("unexpected mastery %+v", ex.Mastery)
	}
	if len(ex.Tags) != 1 || ex.Tags[0] != "CCSS.Math.8.EE.C.7" {
		t.Fatalf("unexpected tags %v", ex.Tags)
	}
	if ex.SourceURL != "https://ka/e/solve-linear" || len(ex.AssessmentItemIDs) != 2 {
		t.Fatalf("unexpected exercise payload %+v", ex)
	}
}

func TestBuildExerciseUnknownMasteryFallsBack(t *testing.T) {
	f := &nodes.Factory{Language: "en"}
	node, reason := f.Build(&rawstore.Record{ID: "ex1", Kind: rawstore.KindExercise, Slug: "e/x", SuggestedCompletionCriteria: "num_problems_99"})
	if !reason.OK() {
		t.Fatalf("unknown mastery must not reject, got %q", reason)
	}
	if node.(*nodes.Exercise).Mastery != nodes.DefaultMastery {
		t.Fatalf("expected do-all fallback")
	}
}

func TestBuildVideoKeepsEnglishIdentity(t *testing.T) {
	f := &nodes.Factory{Language: "fr", ReferenceLanguage: "en"}
	node, reason := f.Build(video())
	if !reason.OK() {
		t.Fatalf("unexpected reason %q", reason)
	}
	v := node.(*nodes.Video)
	if v.ID != "EN123" || v.YouTubeID != "EN123" || v.TranslatedYouTubeID != "FR456" {
		t.Fatalf("unexpected video identity %+v", v)
	}
	if v.Slug != "intro-to-algebra" || v.AudioLanguage != "fr" {
		t.Fatalf("unexpected video fields slug=%q audio=%q", v.Slug, v.AudioLanguage)
	}
	if v.License.ID != nodes.LicenseCCBYNCSA || v.License.CopyrightHolder != nodes.CopyrightHolder {
		t.Fatalf("unexpected license %+v", v.License)
	}
	if v.BestDownload() != "https://cdn/v-low.mp4" {
		t.Fatalf("expected low rendition, got %q", v.BestDownload())
	}
}

func TestBuildVideoDubbedUsesRunLanguage(t *testing.T) {
	f := &nodes.Factory{Language: "es"}
	node, _ := f.Build(video(func(r *rawstore.Record) {
		r.SourceLang = "en"
		r.Dubbed = true
		r.TranslatedYouTubeID = ""
	}))
	v := node.(*nodes.Video)
	if v.AudioLanguage != "es" {
		t.Fatalf("dubbed video audio should be run language, got %q", v.AudioLanguage)
	}
	if v.TranslatedYouTubeID != "EN123" {
		t.Fatalf("missing translated id should fall back, got %q", v.TranslatedYouTubeID)
	}
}

func TestBuildRejections(t *testing.T) {
	f := &nodes.Factory{Language: "en"}
	tests := []struct {
		name string
		rec  *rawstore.Record
		want admission.Reason
	}{
		{"unmapped license", video(func(r *rawstore.Record) { r.License = "Standard Youtube" }), admission.InvalidLicense},
		{"unsupported kind", &rawstore.Record{ID: "q", Kind: "TopicQuiz", Slug: "quiz"}, admission.UnsupportedKind},
		{"unknown kind", &rawstore.Record{ID: "h", Kind: "Hologram", Slug: "h"}, admission.UnknownKind},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			node, reason := f.Build(tc.rec)
			if node != nil || reason != tc.want {
				t.Fatalf("Build() = %v, %q; want nil, %q", node, reason, tc.want)
			}
		})
	}
}

func TestBuildInjectsMetadata(t *testing.T) {
	f := &nodes.Factory{
		Language: "fr",
		Metadata: metadataMap{"solve-linear": {GradeLevels: []string{"Lower Secondary"}, Categories: []string{"Mathematics > Algebra"}}},
	}
	node, _ := f.Build(&rawstore.Record{ID: "ex", Kind: rawstore.KindExercise, Slug: "e/solve-linear", SuggestedCompletionCriteria: "do-all"})
	base := node.Base()
	if len(base.GradeLevels) != 1 || base.GradeLevels[0] != "Lower Secondary" {
		t.Fatalf("unexpected grade levels %v", base.GradeLevels)
	}
	if len(base.Categories) != 1 || base.Categories[0] != "Mathematics > Algebra" {
		t.Fatalf("unexpected categories %v", base.Categories)
	}
}

func TestResolveLicenseAcceptsBothSpellings(t *testing.T) {
	for _, name := range []string{"CC BY-NC-ND", "cc-by-nc-nd"} {
		lic, ok := nodes.ResolveLicense(name)
		if !ok || lic.ID != nodes.LicenseCCBYNCND {
			t.Fatalf("ResolveLicense(%q) = %+v, %v", name, lic, ok)
		}
	}
	if _, ok := nodes.ResolveLicense("Standard Youtube"); ok {
		t.Fatal("unexpected mapping for Standard Youtube")
	}
}

func TestMasteryModelNames(t *testing.T) {
	m, _ := nodes.ParseMastery("num_correct_in_a_row_5")
	if m.Model() != "num_correct_in_a_row_5" {
		t.Fatalf("unexpected model %q", m.Model())
	}
	m, _ = nodes.ParseMastery("skill-check")
	if m.Model() != "skill_check" {
		t.Fatalf("unexpected model %q", m.Model())
	}
}

func TestDescriptionCleanup(t *testing.T) {
	cleaner := nodes.NewTextCleaner()
	got := cleaner.Description(`<p>Learn <a href="https://khanacademy.org">more</a> here.</p><p>Second line</p>`)
	if strings.Contains(got, "http") || strings.Contains(got, "\n") {
		t.Fatalf("expected link stripped and single line, got %q", got)
	}
	if !strings.Contains(got, "Learn more here.") || !strings.Contains(got, "Second line") {
		t.Fatalf("unexpected description %q", got)
	}

	long := "<p>" + strings.Repeat("é", 500) + "</p>"
	if n := len([]rune(cleaner.Description(long))); n != nodes.DescriptionLimit {
		t.Fatalf("expected %d runes, got %d", nodes.DescriptionLimit, n)
	}
	if cleaner.Description("   ") != "" {
		t.Fatal("blank description should stay blank")
	}
}

func TestDescriptionKeepsLiteralCharacters(t *testing.T) {
	cleaner := nodes.NewTextCleaner()
	tests := map[string]string{
		"<p>Variables like a_b and #1</p>": "Variables like a_b and #1",
		"<p>1. Count to ten</p>":           "1. Count to ten",
		"<p>Use 2*3 - 1 [sic]</p>":         "Use 2*3 - 1 [sic]",
	}
	for in, want := range tests {
		if got := cleaner.Description(in); got != want {
			t.Errorf("Description(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestWalkVisitsDepthFirst(t *testing.T) {
	leaf := &nodes.Exercise{Common: nodes.Common{ID: "e"}}
	inner := &nodes.Topic{Common: nodes.Common{ID: "inner"}}
	inner.Add(leaf)
	root := &nodes.Topic{Common: nodes.Common{ID: "root"}}
	root.Add(inner)

	var got []string
	nodes.Walk(root, func(n nodes.Node, depth int) {
		got = append(got, strings.Repeat(".", depth)+n.Base().ID)
	})
	if strings.Join(got, ",") != "root,.inner,..e" {
		t.Fatalf("unexpected walk %v", got)
	}
}

func TestNormalizeSpace(t *testing.T) {
	if got := nodes.NormalizeSpace(" a\u00a0b\nc \r\n"); got != "a b c" {
		t.Fatalf("unexpected normalized text %q", got)
	}
}
