package rawstore

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
)

// Kind is the raw content kind tag carried by every snapshot row.
type Kind string

const (
	KindRoot     Kind = "Root"
	KindDomain   Kind = "Domain"
	KindCourse   Kind = "Course"
	KindUnit     Kind = "Unit"
	KindLesson   Kind = "Lesson"
	KindExercise Kind = "Exercise"
	KindVideo    Kind = "Video"
	KindArticle  Kind = "Article"
)

// topicLike lists kinds that own children.
var topicLike = map[Kind]bool{
	KindRoot:   true,
	KindDomain: true,
	KindCourse: true,
	KindUnit:   true,
	KindLesson: true,
}

// unsupported lists kinds KA exports that the tree never carries. Pointers to
// them are skipped without a warning.
var unsupported = map[Kind]bool{
	KindArticle:     true,
	"Interactive":   true,
	"TopicQuiz":     true,
	"TopicUnitTest": true,
	"Challenge":     true,
	"Project":       true,
	"Talkthrough":   true,
}

// TopicKinds are the topic-like kinds in hierarchy order, excluding the root.
var TopicKinds = []Kind{KindDomain, KindCourse, KindUnit, KindLesson}

// SupportedKinds are the kinds the tree builder turns into nodes.
var SupportedKinds = []Kind{KindDomain, KindCourse, KindUnit, KindLesson, KindExercise, KindVideo}

// UnsupportedKinds returns the known-unsupported kinds in sorted order.
func UnsupportedKinds() []Kind {
	out := make([]Kind, 0, len(unsupported))
	for k := range unsupported {
		out = append(out, k)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// IsTopicLike reports whether k owns children.
func (k Kind) IsTopicLike() bool { return topicLike[k] }

// IsUnsupported reports whether k is a known kind the tree never carries.
func (k Kind) IsUnsupported() bool { return unsupported[k] }

// IsKnown reports whether k is any kind kachef recognizes.
func (k Kind) IsKnown() bool {
	return topicLike[k] || unsupported[k] || k == KindExercise || k == KindVideo
}

// ChildRef is one entry of a topic's ordered children list.
type ChildRef struct {
	Kind Kind   `json:"kind"`
	ID   string `json:"id"`
}

// DownloadURL is one downloadable rendition of a video.
type DownloadURL struct {
	Filetype string `json:"filetype"`
	URL      string `json:"url"`
}

// DownloadURLs accepts both the TSV list form and the legacy API object form
// keyed by filetype. Object keys are sorted so decoding is deterministic.
type DownloadURLs []DownloadURL

func (d *DownloadURLs) UnmarshalJSON(data []byte) error {
	trimmed := strings.TrimSpace(string(data))
	switch {
	case trimmed == "null" || trimmed == "":
		*d = nil
		return nil
	case strings.HasPrefix(trimmed, "["):
		var list []DownloadURL
		if err := json.Unmarshal(data, &list); err != nil {
			return err
		}
		*d = list
		return nil
	case strings.HasPrefix(trimmed, "{"):
		var byType map[string]string
		if err := json.Unmarshal(data, &byType); err != nil {
			return err
		}
		keys := make([]string, 0, len(byType))
		for k := range byType {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		list := make([]DownloadURL, 0, len(keys))
		for _, k := range keys {
			if byType[k] == "" {
				continue
			}
			list = append(list, DownloadURL{Filetype: k, URL: byType[k]})
		}
		*d = list
		return nil
	default:
		return fmt.Errorf("download_urls: unexpected value %.20s", trimmed)
	}
}

// Get returns the URL for filetype, or "".
func (d DownloadURLs) Get(filetype string) string {
	for _, u := range d {
		if u.Filetype == filetype {
			return u.URL
		}
	}
	return ""
}

// Record is one row of a language snapshot. Empty strings and nil pointers
// stand for cells the export left blank.
type Record struct {
	ID                        string
	Kind                      Kind
	Slug                      string
	OriginalTitle             string
	TranslatedTitle           string
	OriginalDescription       string
	TranslatedDescription     string
	TranslatedDescriptionHTML string
	Listed                    *bool
	FullyTranslated           *bool
	CurriculumKey             string
	Children                  []ChildRef

	YouTubeID           string
	TranslatedYouTubeID string
	SourceLang          string
	License             string
	DownloadURLs        DownloadURLs
	Subbed              bool
	Dubbed              bool
	DubSubbed           bool
	Duration            int
	ThumbnailURL        string

	AssessmentItemIDs           []string
	SuggestedCompletionCriteria string
	CanonicalURL                string

	Prerequisites  json.RawMessage
	RelatedContent json.RawMessage
	TimeEstimate   json.RawMessage
	WordCount      int
}

// Clone returns a deep copy of r.
func (r *Record) Clone() *Record {
	if r == nil {
		return nil
	}
	c := *r
	c.Listed = cloneBool(r.Listed)
	c.FullyTranslated = cloneBool(r.FullyTranslated)
	c.Children = append([]ChildRef(nil), r.Children...)
	c.DownloadURLs = append(DownloadURLs(nil), r.DownloadURLs...)
	c.AssessmentItemIDs = append([]string(nil), r.AssessmentItemIDs...)
	return &c
}

// BoolPtr returns a pointer to v, for building records in code.
func BoolPtr(v bool) *bool { return &v }

func cloneBool(v *bool) *bool {
	if v == nil {
		return nil
	}
	out := *v
	return &out
}

// IsTrue reports whether a nullable flag is set and true.
func IsTrue(v *bool) bool { return v != nil && *v }

// IsFalse reports whether a nullable flag is set and false.
func IsFalse(v *bool) bool { return v != nil && !*v }
