package admission

import (
	"context"
	"log/slog"

	"kachef/internal/language"
	"kachef/internal/logging"
	"kachef/internal/rawstore"
)

// SlugSet answers blacklist membership.
type SlugSet interface {
	Contains(slug string) bool
}

// DubAllowList answers whether a translated youtube id is a known dub.
type DubAllowList interface {
	Allowed(lang, translatedID string) bool
}

// SubtitleSource lists subtitle languages for a youtube id.
type SubtitleSource interface {
	Languages(ctx context.Context, youtubeID string) []string
}

// Filter decides admissibility for one (language, variant) run. It holds no
// mutable state and may be shared by concurrent builds of the same run.
type Filter struct {
	Language string
	Variant  string
	// ReferenceLanguage is the source language of the content; "en" when
	// empty. Reference runs skip the video language gates.
	ReferenceLanguage string
	// OnlyListed enables the blacklist and translation gates. Metadata
	// generation turns it off to see as much content as possible.
	OnlyListed bool
	// VariantOnly drops every Course whose curriculum key differs from the
	// variant, for variants without their own curation tree.
	VariantOnly bool
	Blacklist   SlugSet
	Dubs        DubAllowList
	Subtitles   SubtitleSource
	Logger      *slog.Logger
}

// Record applies the record-level gates in order: blacklist, curriculum,
// variant-only, and translation completeness. Editorial records from the
// curation splicer pass exempt=true and skip the blacklist only.
func (f *Filter) Record(rec *rawstore.Record, exempt bool) Reason {
	if rec == nil {
		return UnknownKind
	}
	if f.OnlyListed && !exempt && f.Blacklist != nil && f.Blacklist.Contains(rec.Slug) {
		return Blacklisted
	}
	if f.Variant != "" && rec.CurriculumKey != "" && rec.CurriculumKey != f.Variant {
		return CurriculumMismatch
	}
	if f.VariantOnly && f.Variant != "" && rec.Kind == rawstore.KindCourse && rec.CurriculumKey != f.Variant {
		return VariantOnly
	}
	if !f.OnlyListed {
		return Admitted
	}
	switch {
	case rec.Kind.IsTopicLike():
		// The listed flag alone is unreliable upstream, so a topic needs both
		// flags missing or false before it counts as untranslated.
		if !rawstore.IsTrue(rec.FullyTranslated) && !rawstore.IsTrue(rec.Listed) {
			return UntranslatedTopic
		}
	case rec.Kind == rawstore.KindExercise || rec.Kind == rawstore.KindVideo:
		if rawstore.IsFalse(rec.FullyTranslated) {
			return UntranslatedLeaf
		}
	}
	return Admitted
}

// VideoFacts is what the video gates need to know about a built video.
type VideoFacts struct {
	YouTubeID           string
	TranslatedYouTubeID string
	AudioLanguage       string
	HasDownload         bool
}

// Video applies the download and language gates. It returns the subtitle
// languages it looked up so the caller can attach subtitle files without a
// second listing.
func (f *Filter) Video(ctx context.Context, v VideoFacts) (Reason, []string) {
	if !v.HasDownload {
		return NoDownload, nil
	}
	var subs []string
	if f.Subtitles != nil {
		subs = f.Subtitles.Languages(ctx, v.TranslatedYouTubeID)
	}
	if f.isReference() {
		return Admitted, subs
	}
	if language.MatchesAudio(v.AudioLanguage, f.Language) {
		return Admitted, subs
	}
	if f.Dubs != nil && f.Dubs.Allowed(f.Language, v.TranslatedYouTubeID) {
		return Admitted, subs
	}
	for _, code := range subs {
		if language.SamePrimary(code, f.Language) {
			return Admitted, subs
		}
	}
	logger := logging.NewComponentLogger(f.Logger, "admission")
	if v.TranslatedYouTubeID != v.YouTubeID {
		logger.Info("translated video has wrong language",
			logging.String("youtube_id", v.YouTubeID),
			logging.String("translated_youtube_id", v.TranslatedYouTubeID),
			logging.String("audio_lang", v.AudioLanguage),
		)
		return WrongLanguage, subs
	}
	logger.Info("untranslated video without subtitles",
		logging.String("youtube_id", v.TranslatedYouTubeID),
		logging.String("audio_lang", v.AudioLanguage),
	)
	return UntranslatedNoSubs, subs
}

// SubtitleFiles filters subs down to those shipped with the video: every
// language for reference runs, else those sharing the target's primary
// subtag.
func (f *Filter) SubtitleFiles(subs []string) []string {
	reference := f.isReference()
	var out []string
	for _, code := range subs {
		if reference || language.SamePrimary(code, f.Language) {
			out = append(out, code)
		}
	}
	return out
}

func (f *Filter) reference() string {
	if f.ReferenceLanguage == "" {
		return "en"
	}
	return f.ReferenceLanguage
}

func (f *Filter) isReference() bool {
	return language.Normalize(f.Language) == language.Normalize(f.reference())
}
