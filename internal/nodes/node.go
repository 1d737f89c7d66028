package nodes

import "kachef/internal/rawstore"

// Kind tags the arm of the node union.
type Kind string

const (
	KindTopic    Kind = "topic"
	KindExercise Kind = "exercise"
	KindVideo    Kind = "video"
	KindArticle  Kind = "article"
)

// Node is a built tree node. The set of implementations is closed.
type Node interface {
	Kind() Kind
	Base() *Common
	sealed()
}

// Common holds the fields every node carries.
type Common struct {
	ID          string
	Title       string
	Description string
	Slug        string
	Language    string
	GradeLevels []string
	Categories  []string
}

// Base returns the shared fields.
func (c *Common) Base() *Common { return c }

func (c *Common) sealed() {}

// Topic owns an ordered list of children. A child belongs to exactly one
// topic.
type Topic struct {
	Common
	RawKind    rawstore.Kind
	Curriculum string
	Children   []Node
}

func (*Topic) Kind() Kind { return KindTopic }

// Add appends child.
func (t *Topic) Add(child Node) {
	if child != nil {
		t.Children = append(t.Children, child)
	}
}

// Question is one assessment item attached to an exercise.
type Question struct {
	ID        string
	Data      string
	SourceURL string
}

// Exercise is a practice node. Questions stay empty until the builder loads
// them.
type Exercise struct {
	Common
	Thumbnail         string
	Mastery           Mastery
	AssessmentItemIDs []string
	SourceURL         string
	Questions         []Question
	Tags              []string
}

func (*Exercise) Kind() Kind { return KindExercise }

// Video is a video node. Its ID is the English youtube id so a video keeps
// the same identity across language runs.
type Video struct {
	Common
	YouTubeID           string
	TranslatedYouTubeID string
	AudioLanguage       string
	License             License
	DownloadURLs        rawstore.DownloadURLs
	Thumbnail           string
	Subbed              bool
	Dubbed              bool
	DubSubbed           bool
	Subtitles           []string
}

func (*Video) Kind() Kind { return KindVideo }

// preferredDownloads lists filetypes in the order a video file is chosen.
var preferredDownloads = []string{"mp4-low", "mp4"}

// BestDownload returns the smallest preferred rendition, else any URL.
func (v *Video) BestDownload() string {
	for _, ft := range preferredDownloads {
		if url := v.DownloadURLs.Get(ft); url != "" {
			return url
		}
	}
	for _, d := range v.DownloadURLs {
		if d.URL != "" {
			return d.URL
		}
	}
	return ""
}

// HasDownload reports whether any rendition is downloadable.
func (v *Video) HasDownload() bool { return v.BestDownload() != "" }

// Article is built for completeness; no output format carries it.
type Article struct {
	Common
}

func (*Article) Kind() Kind { return KindArticle }

// Walk visits n and its descendants depth first, passing the depth below n.
func Walk(n Node, fn func(n Node, depth int)) {
	walk(n, 0, fn)
}

func walk(n Node, depth int, fn func(Node, int)) {
	if n == nil {
		return
	}
	fn(n, depth)
	if t, ok := n.(*Topic); ok {
		for _, child := range t.Children {
			walk(child, depth+1, fn)
		}
	}
}
