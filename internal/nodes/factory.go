package nodes

import (
	"log/slog"
	"sort"
	"strings"

	"kachef/internal/admission"
	"kachef/internal/logging"
	"kachef/internal/rawstore"
)

// Translator overrides text by exact source match.
type Translator interface {
	Apply(text string) string
}

// StandardTags maps an exercise slug to a curriculum-standard tag.
type StandardTags interface {
	Lookup(slug string) (string, bool)
}

// Tags is the slug metadata injected into nodes.
type Tags struct {
	GradeLevels []string
	Categories  []string
}

// MetadataLookup returns stored metadata for a slug.
type MetadataLookup interface {
	Tags(slug string) (Tags, bool)
}

// Factory builds nodes for one run language. A Factory holds no per-build
// state.
type Factory struct {
	Language          string
	ReferenceLanguage string
	Translations      Translator
	CommonCore        StandardTags
	Metadata          MetadataLookup
	Text              *TextCleaner
	Logger            *slog.Logger
}

// Build converts rec into a node. A non-empty reason means no node was
// built: unsupported kinds are silent, unknown kinds warn, and unmapped
// licenses log an error.
func (f *Factory) Build(rec *rawstore.Record) (Node, admission.Reason) {
	if rec == nil {
		return nil, admission.UnknownKind
	}
	logger := f.logger()
	common := Common{
		Title:       f.title(rec),
		Description: f.description(rec),
		Language:    f.Language,
	}

	var node Node
	switch {
	case rec.Kind.IsTopicLike():
		common.ID = rec.Slug
		common.Slug = rec.Slug
		node = &Topic{Common: common, RawKind: rec.Kind, Curriculum: rec.CurriculumKey}
	case rec.Kind == rawstore.KindExercise:
		node = f.exercise(rec, common)
	case rec.Kind == rawstore.KindVideo:
		video, reason := f.video(rec, common)
		if !reason.OK() {
			return nil, reason
		}
		node = video
	case rec.Kind == rawstore.KindArticle:
		common.ID = rec.ID
		common.Slug = strings.TrimPrefix(rec.Slug, "a/")
		node = &Article{Common: common}
	case rec.Kind.IsUnsupported():
		return nil, admission.UnsupportedKind
	default:
		logging.WarnWithContext(logger, "unrecognized node kind", "unknown_kind",
			logging.String(logging.FieldKind, string(rec.Kind)),
			logging.String("id", rec.ID),
			logging.String("title", common.Title),
			logging.String(logging.FieldErrorHint, "new KA content kind; add it to the supported or unsupported set"),
		)
		return nil, admission.UnknownKind
	}
	f.injectMetadata(node.Base())
	return node, admission.Admitted
}

func (f *Factory) exercise(rec *rawstore.Record, common Common) *Exercise {
	slug := strings.TrimPrefix(rec.Slug, "e/")
	common.ID = slug
	common.Slug = slug
	mastery, ok := ParseMastery(rec.SuggestedCompletionCriteria)
	if !ok {
		logging.WarnWithContext(f.logger(), "unknown mastery model", "unknown_mastery",
			logging.String("mastery_model", rec.SuggestedCompletionCriteria),
			logging.String("exercise_id", slug),
			logging.String(logging.FieldImpact, "exercise uses do-all mastery"),
		)
		mastery = DefaultMastery
	}
	ex := &Exercise{
		Common:            common,
		Thumbnail:         rec.ThumbnailURL,
		Mastery:           mastery,
		AssessmentItemIDs: append([]string(nil), rec.AssessmentItemIDs...),
		SourceURL:         rec.CanonicalURL,
	}
	if f.CommonCore != nil {
		if tag, ok := f.CommonCore.Lookup(slug); ok {
			ex.Tags = append(ex.Tags, tag)
		}
	}
	return ex
}

func (f *Factory) video(rec *rawstore.Record, common Common) (*Video, admission.Reason) {
	translated := rec.TranslatedYouTubeID
	if translated == "" {
		translated = rec.YouTubeID
	}
	license, ok := ResolveLicense(rec.License)
	if !ok {
		logging.ErrorWithContext(f.logger(), "unknown video license", "invalid_license",
			logging.String("license", rec.License),
			logging.String("translated_youtube_id", translated),
			logging.String(logging.FieldErrorHint, "license strings are a legal gate; map it explicitly before including the video"),
		)
		return nil, admission.InvalidLicense
	}
	common.ID = rec.YouTubeID
	if common.ID == "" {
		common.ID = rec.ID
	}
	common.Slug = strings.TrimPrefix(rec.Slug, "v/")
	audio := rec.SourceLang
	if rec.Dubbed {
		audio = f.Language
	}
	return &Video{
		Common:              common,
		YouTubeID:           rec.YouTubeID,
		TranslatedYouTubeID: translated,
		AudioLanguage:       audio,
		License:             license,
		DownloadURLs:        append(rawstore.DownloadURLs(nil), rec.DownloadURLs...),
		Thumbnail:           rec.ThumbnailURL,
		Subbed:              rec.Subbed,
		Dubbed:              rec.Dubbed,
		DubSubbed:           rec.DubSubbed,
	}, admission.Admitted
}

func (f *Factory) title(rec *rawstore.Record) string {
	primary, fallback := rec.TranslatedTitle, rec.OriginalTitle
	if f.isReference() {
		primary, fallback = rec.OriginalTitle, rec.TranslatedTitle
	}
	title := primary
	if strings.TrimSpace(title) == "" {
		title = fallback
	}
	return NormalizeSpace(f.translate(title))
}

func (f *Factory) description(rec *rawstore.Record) string {
	source := rec.TranslatedDescriptionHTML
	if strings.TrimSpace(source) == "" {
		source = rec.TranslatedDescription
	}
	if strings.TrimSpace(source) == "" {
		source = rec.OriginalDescription
	}
	source = f.translate(source)
	cleaner := f.Text
	if cleaner == nil {
		cleaner = DefaultTextCleaner()
	}
	return cleaner.Description(source)
}

func (f *Factory) translate(text string) string {
	if f.Translations == nil || text == "" {
		return text
	}
	return f.Translations.Apply(text)
}

func (f *Factory) injectMetadata(c *Common) {
	if f.Metadata == nil || c.Slug == "" {
		return
	}
	tags, ok := f.Metadata.Tags(c.Slug)
	if !ok {
		return
	}
	c.GradeLevels = mergeSorted(c.GradeLevels, tags.GradeLevels)
	c.Categories = mergeSorted(c.Categories, tags.Categories)
}

func (f *Factory) isReference() bool {
	ref := f.ReferenceLanguage
	if ref == "" {
		ref = "en"
	}
	return f.Language == ref
}

func (f *Factory) logger() *slog.Logger {
	return logging.NewComponentLogger(f.Logger, "nodes")
}

func mergeSorted(a, b []string) []string {
	if len(a) == 0 && len(b) == 0 {
		return nil
	}
	seen := make(map[string]struct{}, len(a)+len(b))
	out := make([]string, 0, len(a)+len(b))
	for _, v := range append(append([]string(nil), a...), b...) {
		if _, ok := seen[v]; ok || v == "" {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	sort.Strings(out)
	return out
}
