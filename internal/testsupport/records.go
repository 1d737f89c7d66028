package testsupport

import "kachef/internal/rawstore"

// RecordOption customizes a fixture record.
type RecordOption func(*rawstore.Record)

// Titles sets the original and translated titles.
func Titles(original, translated string) RecordOption {
	return func(r *rawstore.Record) {
		r.OriginalTitle = original
		r.TranslatedTitle = translated
	}
}

// Curriculum sets the curriculum key.
func Curriculum(key string) RecordOption {
	return func(r *rawstore.Record) { r.CurriculumKey = key }
}

// Untranslated marks the record fully_translated=false.
func Untranslated() RecordOption {
	return func(r *rawstore.Record) { r.FullyTranslated = rawstore.BoolPtr(false) }
}

// Unlisted clears both visibility flags.
func Unlisted() RecordOption {
	return func(r *rawstore.Record) {
		r.Listed = nil
		r.FullyTranslated = nil
	}
}

// License sets a video license string.
func License(name string) RecordOption {
	return func(r *rawstore.Record) { r.License = name }
}

// Audio sets the video source language and translated youtube id.
func Audio(lang, translatedID string) RecordOption {
	return func(r *rawstore.Record) {
		r.SourceLang = lang
		r.TranslatedYouTubeID = translatedID
	}
}

// NoDownloads removes every download URL.
func NoDownloads() RecordOption {
	return func(r *rawstore.Record) { r.DownloadURLs = nil }
}

// DanglingChild appends a pointer to an id the store does not hold.
func DanglingChild(kind rawstore.Kind, id string) RecordOption {
	return func(r *rawstore.Record) {
		r.Children = append(r.Children, rawstore.ChildRef{Kind: kind, ID: id})
	}
}

func apply(r *rawstore.Record, opts []RecordOption) *rawstore.Record {
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Topic returns a listed topic-like record pointing at children.
func Topic(kind rawstore.Kind, id, slug string, children []*rawstore.Record, opts ...RecordOption) *rawstore.Record {
	r := &rawstore.Record{
		ID:              id,
		Kind:            kind,
		Slug:            slug,
		OriginalTitle:   slug,
		TranslatedTitle: slug,
		Listed:          rawstore.BoolPtr(true),
	}
	for _, child := range children {
		r.Children = append(r.Children, rawstore.ChildRef{Kind: child.Kind, ID: child.ID})
	}
	return apply(r, opts)
}

// Exercise returns a translated exercise record; slug gets the e/ prefix.
func Exercise(id, slug string, opts ...RecordOption) *rawstore.Record {
	r := &rawstore.Record{
		ID:                          id,
		Kind:                        rawstore.KindExercise,
		Slug:                        "e/" + slug,
		OriginalTitle:               slug,
		TranslatedTitle:             slug,
		Listed:                      rawstore.BoolPtr(true),
		FullyTranslated:             rawstore.BoolPtr(true),
		SuggestedCompletionCriteria: "do-all",
		AssessmentItemIDs:           []string{id + "-item"},
		CanonicalURL:                "https://www.khanacademy.org/e/" + slug,
	}
	return apply(r, opts)
}

// Video returns a downloadable English video; slug gets the v/ prefix.
func Video(id, slug, youtubeID string, opts ...RecordOption) *rawstore.Record {
	r := &rawstore.Record{
		ID:                  id,
		Kind:                rawstore.KindVideo,
		Slug:                "v/" + slug,
		OriginalTitle:       slug,
		TranslatedTitle:     slug,
		Listed:              rawstore.BoolPtr(true),
		FullyTranslated:     rawstore.BoolPtr(true),
		YouTubeID:           youtubeID,
		TranslatedYouTubeID: youtubeID,
		SourceLang:          "en",
		License:             "CC BY-NC-SA (KA default)",
		DownloadURLs: rawstore.DownloadURLs{
			{Filetype: "mp4-low", URL: "https://cdn.kastatic.org/" + youtubeID + "-low.mp4"},
		},
	}
	return apply(r, opts)
}

// Store builds a snapshot store from records.
func Store(records ...*rawstore.Record) *rawstore.Store {
	return rawstore.New(records...)
}
