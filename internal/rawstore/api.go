package rawstore

import (
	"encoding/json"
	"io"
	"log/slog"
	"strings"

	"kachef/internal/logging"
	"kachef/internal/services"
)

// DubRemapper resolves the dubbed replacement for a video id in a language.
type DubRemapper interface {
	Lookup(lang, youtubeID string) (string, bool)
}

// APIOptions tunes the legacy JSON API parse for one run language.
type APIOptions struct {
	Language string
	// ReferenceLanguage receives translated titles as original titles too.
	ReferenceLanguage string
	Dubs              DubRemapper
	// EnglishYouTubeIDs maps record ids to the English youtube id.
	EnglishYouTubeIDs map[string]string
	Logger            *slog.Logger
}

type apiTree struct {
	Topics    []apiNode `json:"topics"`
	Exercises []apiNode `json:"exercises"`
	Videos    []apiNode `json:"videos"`
}

type apiNode struct {
	ID                          string          `json:"id"`
	Kind                        string          `json:"kind"`
	Slug                        string          `json:"slug"`
	Name                        string          `json:"name"`
	TranslatedTitle             string          `json:"translatedTitle"`
	TranslatedDescription       string          `json:"translatedDescription"`
	TranslatedDescriptionHTML   string          `json:"translatedDescriptionHtml"`
	ChildData                   []ChildRef      `json:"childData"`
	CurriculumKey               string          `json:"curriculumKey"`
	Hide                        bool            `json:"hide"`
	Deleted                     bool            `json:"deleted"`
	DoNotPublish                bool            `json:"doNotPublish"`
	YouTubeID                   string          `json:"youtubeId"`
	TranslatedYouTubeID         string          `json:"translatedYoutubeId"`
	TranslatedYouTubeLang       string          `json:"translatedYoutubeLang"`
	LicenseName                 string          `json:"licenseName"`
	DownloadURLs                DownloadURLs    `json:"downloadUrls"`
	ImageURL                    string          `json:"imageUrl"`
	SuggestedCompletionCriteria string          `json:"suggestedCompletionCriteria"`
	AllAssessmentItems          []apiItem       `json:"allAssessmentItems"`
	KAURL                       string          `json:"kaUrl"`
	Prerequisites               json.RawMessage `json:"prerequisites"`
	RelatedContent              json.RawMessage `json:"relatedContent"`
}

// apiItem is an assessment item reference; the API emits either bare ids or
// objects with an id field.
type apiItem string

func (a *apiItem) UnmarshalJSON(data []byte) error {
	var id string
	if err := json.Unmarshal(data, &id); err == nil {
		*a = apiItem(id)
		return nil
	}
	var obj struct {
		ID string `json:"id"`
	}
	if err := json.Unmarshal(data, &obj); err != nil {
		return err
	}
	*a = apiItem(obj.ID)
	return nil
}

// ParseAPI reads a legacy /api/v2/topics/topictree response. Topic kinds are
// renamed by depth below the root so the rest of the pipeline sees the same
// Domain/Course/Unit/Lesson shape as a TSV export.
func ParseAPI(r io.Reader, opts APIOptions) (*Store, error) {
	logger := logging.NewComponentLogger(opts.Logger, "rawstore")
	var tree apiTree
	if err := json.NewDecoder(r).Decode(&tree); err != nil {
		return nil, services.Wrap(services.ErrCorrupt, "snapshot", "parse api", "decode topic tree", err)
	}
	reference := opts.ReferenceLanguage
	if reference == "" {
		reference = "en"
	}

	store := New()
	for _, group := range [][]apiNode{tree.Topics, tree.Exercises, tree.Videos} {
		for _, n := range group {
			if strings.TrimSpace(n.ID) == "" {
				return nil, services.Wrap(services.ErrCorrupt, "snapshot", "parse api", "node with missing id", nil)
			}
			store.Put(convertAPINode(n, opts, reference))
		}
	}

	root, ok := store.Get(RootID)
	if !ok {
		return nil, services.Wrap(services.ErrNotFound, "snapshot", "parse api", "topic tree has no root "+RootID, nil)
	}
	root.Kind = KindRoot
	assignTopicDepths(store, root)
	logger.Debug("api topic tree parsed", logging.Int("records", store.Len()))
	return store, nil
}

func convertAPINode(n apiNode, opts APIOptions, reference string) *Record {
	rec := &Record{
		ID:                          n.ID,
		Kind:                        Kind(n.Kind),
		Slug:                        n.Slug,
		TranslatedTitle:             n.TranslatedTitle,
		TranslatedDescription:       n.TranslatedDescription,
		TranslatedDescriptionHTML:   n.TranslatedDescriptionHTML,
		Listed:                      BoolPtr(!(n.Hide || n.Deleted || n.DoNotPublish)),
		CurriculumKey:               n.CurriculumKey,
		Children:                    n.ChildData,
		License:                     n.LicenseName,
		DownloadURLs:                n.DownloadURLs,
		ThumbnailURL:                n.ImageURL,
		SuggestedCompletionCriteria: n.SuggestedCompletionCriteria,
		CanonicalURL:                n.KAURL,
		Prerequisites:               n.Prerequisites,
		RelatedContent:              n.RelatedContent,
	}
	if opts.Language == reference {
		rec.OriginalTitle = n.TranslatedTitle
		rec.OriginalDescription = n.TranslatedDescription
	}
	for _, item := range n.AllAssessmentItems {
		if item != "" {
			rec.AssessmentItemIDs = append(rec.AssessmentItemIDs, string(item))
		}
	}

	switch rec.Kind {
	case KindExercise:
		if n.Name != "" {
			rec.Slug = n.Name
		}
	case KindVideo:
		rec.TranslatedYouTubeID = n.TranslatedYouTubeID
		rec.SourceLang = n.TranslatedYouTubeLang
		if rec.SourceLang != opts.Language && opts.Dubs != nil {
			if dubbed, ok := opts.Dubs.Lookup(opts.Language, n.TranslatedYouTubeID); ok {
				rec.TranslatedYouTubeID = dubbed
				rec.SourceLang = opts.Language
			}
		}
		rec.YouTubeID = n.YouTubeID
		if english, ok := opts.EnglishYouTubeIDs[n.ID]; ok && english != "" {
			rec.YouTubeID = english
		}
	}
	return rec
}

// assignTopicDepths renames Topic records by their depth below root. A topic
// reachable at several depths keeps the shallowest.
func assignTopicDepths(store *Store, root *Record) {
	type item struct {
		rec   *Record
		depth int
	}
	seen := map[string]bool{root.ID: true}
	queue := []item{{root, 0}}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		for _, ref := range cur.rec.Children {
			child, ok := store.Get(ref.ID)
			if !ok || seen[child.ID] || child.Kind != "Topic" {
				continue
			}
			seen[child.ID] = true
			child.Kind = topicKindAtDepth(cur.depth + 1)
			queue = append(queue, item{child, cur.depth + 1})
		}
	}
	// Topics unreachable from the root become lessons so they stay topic-like.
	records := store.Records()
	for _, r := range records {
		if r.Kind == "Topic" {
			r.Kind = KindLesson
		}
	}
	for _, r := range records {
		for i, ref := range r.Children {
			if ref.Kind != "Topic" {
				continue
			}
			if target, ok := store.Get(ref.ID); ok {
				r.Children[i].Kind = target.Kind
			}
		}
	}
}

func topicKindAtDepth(depth int) Kind {
	switch depth {
	case 1:
		return KindDomain
	case 2:
		return KindCourse
	case 3:
		return KindUnit
	default:
		return KindLesson
	}
}
