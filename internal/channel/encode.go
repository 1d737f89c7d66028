package channel

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"kachef/internal/fileutil"
	"kachef/internal/nodes"
	"kachef/internal/services"
)

// Document is the serialized channel.
type Document struct {
	SourceID     string `json:"source_id"`
	SourceDomain string `json:"source_domain"`
	Title        string `json:"title"`
	Description  string `json:"description"`
	Language     string `json:"language"`
	Children     []any  `json:"children"`
}

// TopicJSON is a serialized topic.
type TopicJSON struct {
	Kind        string `json:"kind"`
	SourceID    string `json:"source_id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Slug        string `json:"slug"`
	Children    []any  `json:"children"`
}

// LicenseJSON is a serialized license.
type LicenseJSON struct {
	ID              string `json:"license_id"`
	CopyrightHolder string `json:"copyright_holder"`
	Description     string `json:"description,omitempty"`
}

// QuestionJSON is a serialized assessment item.
type QuestionJSON struct {
	SourceID  string          `json:"source_id"`
	ItemData  json.RawMessage `json:"item_data"`
	SourceURL string          `json:"source_url,omitempty"`
}

// ExerciseJSON is a serialized exercise.
type ExerciseJSON struct {
	Kind         string         `json:"kind"`
	SourceID     string         `json:"source_id"`
	Title        string         `json:"title"`
	Description  string         `json:"description"`
	Slug         string         `json:"slug"`
	Thumbnail    string         `json:"thumbnail,omitempty"`
	License      LicenseJSON    `json:"license"`
	MasteryModel string         `json:"mastery_model"`
	M            int            `json:"m,omitempty"`
	N            int            `json:"n,omitempty"`
	SourceURL    string         `json:"source_url,omitempty"`
	Questions    []QuestionJSON `json:"questions"`
	Tags         []string       `json:"tags"`
	GradeLevels  []string       `json:"grade_levels"`
	Categories   []string       `json:"categories"`
}

// FileJSON is a video or subtitle file.
type FileJSON struct {
	Kind      string `json:"kind"`
	YouTubeID string `json:"youtube_id"`
	URL       string `json:"url,omitempty"`
	Language  string `json:"language"`
}

// VideoJSON is a serialized video.
type VideoJSON struct {
	Kind        string      `json:"kind"`
	SourceID    string      `json:"source_id"`
	Title       string      `json:"title"`
	Description string      `json:"description"`
	Slug        string      `json:"slug"`
	Thumbnail   string      `json:"thumbnail,omitempty"`
	License     LicenseJSON `json:"license"`
	Files       []FileJSON  `json:"files"`
	GradeLevels []string    `json:"grade_levels"`
	Categories  []string    `json:"categories"`
}

// Encode maps root's children under the channel info. Articles have no
// serialized form and are skipped.
func Encode(info Info, root *nodes.Topic) *Document {
	doc := &Document{
		SourceID:     info.SourceID,
		SourceDomain: info.SourceDomain,
		Title:        info.Title,
		Description:  info.Description,
		Language:     info.Language,
		Children:     []any{},
	}
	if root != nil {
		doc.Children = encodeChildren(root.Children)
	}
	return doc
}

func encodeChildren(children []nodes.Node) []any {
	out := make([]any, 0, len(children))
	for _, child := range children {
		if v := encodeNode(child); v != nil {
			out = append(out, v)
		}
	}
	return out
}

func encodeNode(n nodes.Node) any {
	switch n := n.(type) {
	case *nodes.Topic:
		return TopicJSON{
			Kind:        string(nodes.KindTopic),
			SourceID:    n.ID,
			Title:       n.Title,
			Description: n.Description,
			Slug:        n.Slug,
			Children:    encodeChildren(n.Children),
		}
	case *nodes.Exercise:
		return encodeExercise(n)
	case *nodes.Video:
		return encodeVideo(n)
	default:
		return nil
	}
}

func encodeExercise(ex *nodes.Exercise) ExerciseJSON {
	out := ExerciseJSON{
		Kind:         string(nodes.KindExercise),
		SourceID:     ex.ID,
		Title:        ex.Title,
		Description:  ex.Description,
		Slug:         ex.Slug,
		Thumbnail:    ex.Thumbnail,
		License:      encodeLicense(nodes.ExerciseLicense),
		MasteryModel: ex.Mastery.Model(),
		SourceURL:    ex.SourceURL,
		Questions:    make([]QuestionJSON, 0, len(ex.Questions)),
		Tags:         nonNil(ex.Tags),
		GradeLevels:  nonNil(ex.GradeLevels),
		Categories:   nonNil(ex.Categories),
	}
	if ex.Mastery.Policy == nodes.PolicyMOfN {
		out.M, out.N = ex.Mastery.M, ex.Mastery.N
	}
	for _, q := range ex.Questions {
		data := json.RawMessage(q.Data)
		if !json.Valid(data) {
			// Item data is opaque; keep it as a string when it is not JSON.
			quoted, _ := json.Marshal(q.Data)
			data = quoted
		}
		out.Questions = append(out.Questions, QuestionJSON{SourceID: q.ID, ItemData: data, SourceURL: q.SourceURL})
	}
	return out
}

func encodeVideo(v *nodes.Video) VideoJSON {
	files := []FileJSON{{
		Kind:      "video",
		YouTubeID: v.TranslatedYouTubeID,
		URL:       v.BestDownload(),
		Language:  v.AudioLanguage,
	}}
	for _, code := range v.Subtitles {
		files = append(files, FileJSON{Kind: "subtitles", YouTubeID: v.TranslatedYouTubeID, Language: code})
	}
	return VideoJSON{
		Kind:        string(nodes.KindVideo),
		SourceID:    v.ID,
		Title:       v.Title,
		Description: v.Description,
		Slug:        v.Slug,
		Thumbnail:   v.Thumbnail,
		License:     encodeLicense(v.License),
		Files:       files,
		GradeLevels: nonNil(v.GradeLevels),
		Categories:  nonNil(v.Categories),
	}
}

func encodeLicense(l nodes.License) LicenseJSON {
	holder := l.CopyrightHolder
	if holder == "" {
		holder = nodes.CopyrightHolder
	}
	return LicenseJSON{ID: l.ID, CopyrightHolder: holder, Description: l.Description}
}

func nonNil(values []string) []string {
	if values == nil {
		return []string{}
	}
	return values
}

// OutputPath is {dir}/kachef_tree_{lang}[_{variant}].json.
func OutputPath(dir, lang, variant string) string {
	name := "kachef_tree_" + lang
	if variant != "" {
		name += "_" + variant
	}
	return filepath.Join(dir, name+".json")
}

// Write encodes doc as indented JSON to w.
func Write(w io.Writer, doc *Document) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(doc)
}

// WriteFile writes doc atomically to path.
func WriteFile(path string, doc *Document) error {
	err := fileutil.WriteAtomic(path, 0o644, func(w io.Writer) error {
		return Write(w, doc)
	})
	if err != nil {
		return services.Wrap(services.ErrTransient, "channel", "write tree", fmt.Sprintf("write %s", path), err)
	}
	return nil
}

// ReadFile loads a previously written document.
func ReadFile(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, services.Wrap(services.ErrNotFound, "channel", "read tree", path, err)
	}
	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, services.Wrap(services.ErrCorrupt, "channel", "read tree", path, err)
	}
	return &doc, nil
}
