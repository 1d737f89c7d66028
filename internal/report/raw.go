package report

import (
	"strconv"
	"strings"

	"kachef/internal/rawstore"
)

// Raw describes a snapshot before filtering. Counts include unlisted and
// untranslated rows, so they overstate what a build admits.
type Raw struct {
	Language string

	Kinds       map[rawstore.Kind]int
	Unsupported map[rawstore.Kind]int
	Topics      int
	Total       int

	Dubbed       int
	Subbed       int
	DubSubbed    int
	Translated   int
	Untranslated int

	HasMP4       int
	HasMP4Low    int
	HasMP4LowIOS int

	// CurriculumKeys lists topic curriculum keys in first-seen order.
	CurriculumKeys []string
}

// Summarize computes the raw report for store.
func Summarize(lang string, store *rawstore.Store) Raw {
	r := Raw{
		Language:    lang,
		Kinds:       map[rawstore.Kind]int{},
		Unsupported: map[rawstore.Kind]int{},
	}
	seenKeys := map[string]bool{}
	for _, rec := range store.Records() {
		r.Total++
		switch {
		case rec.Kind.IsUnsupported():
			r.Unsupported[rec.Kind]++
		default:
			r.Kinds[rec.Kind]++
		}
		if rec.Kind.IsTopicLike() {
			if rec.Kind != rawstore.KindRoot {
				r.Topics++
			}
			if key := rec.CurriculumKey; key != "" && !seenKeys[key] {
				seenKeys[key] = true
				r.CurriculumKeys = append(r.CurriculumKeys, key)
			}
		}
		if rec.Kind == rawstore.KindVideo {
			r.video(rec)
		}
	}
	return r
}

func (r *Raw) video(rec *rawstore.Record) {
	if rec.Dubbed {
		r.Dubbed++
	}
	if rec.Subbed {
		r.Subbed++
	}
	if rec.DubSubbed {
		r.DubSubbed++
	}
	if rec.Dubbed || rec.Subbed || rec.DubSubbed {
		r.Translated++
	} else {
		r.Untranslated++
	}
	if rec.DownloadURLs.Get("mp4") != "" {
		r.HasMP4++
	}
	if rec.DownloadURLs.Get("mp4-low") != "" {
		r.HasMP4Low++
	}
	if rec.DownloadURLs.Get("mp4-low-ios") != "" {
		r.HasMP4LowIOS++
	}
}

// Rows returns the report as label/value pairs in display order.
func (r Raw) Rows() [][]string {
	rows := [][]string{{"language", r.Language}}
	for _, kind := range rawstore.SupportedKinds {
		rows = append(rows, []string{"rows: " + string(kind), strconv.Itoa(r.Kinds[kind])})
	}
	rows = append(rows, []string{"rows: topics (all levels)", strconv.Itoa(r.Topics)})
	for _, kind := range rawstore.UnsupportedKinds() {
		rows = append(rows, []string{"rows: " + string(kind) + " (unsupported)", strconv.Itoa(r.Unsupported[kind])})
	}
	rows = append(rows,
		[]string{"rows: total", strconv.Itoa(r.Total)},
		[]string{"videos: dubbed", strconv.Itoa(r.Dubbed)},
		[]string{"videos: subbed", strconv.Itoa(r.Subbed)},
		[]string{"videos: dub_subbed", strconv.Itoa(r.DubSubbed)},
		[]string{"videos: translated", strconv.Itoa(r.Translated)},
		[]string{"videos: untranslated", strconv.Itoa(r.Untranslated)},
		[]string{"downloads: mp4", strconv.Itoa(r.HasMP4)},
		[]string{"downloads: mp4-low", strconv.Itoa(r.HasMP4Low)},
		[]string{"downloads: mp4-low-ios", strconv.Itoa(r.HasMP4LowIOS)},
		[]string{"curriculum keys", strings.Join(r.CurriculumKeys, ", ")},
	)
	return rows
}

// Render formats the report as a two-column table.
func (r Raw) Render() string {
	return Table([]string{"Field", "Value"}, r.Rows(), []Align{AlignLeft, AlignRight})
}
