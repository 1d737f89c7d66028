package commoncore

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"io"
	"log/slog"
	"strings"

	"kachef/internal/logging"
	"kachef/internal/services"
)

// Getter downloads a document.
type Getter interface {
	Get(ctx context.Context, url string) ([]byte, error)
}

// Tags maps exercise slugs to their Common Core standard.
type Tags map[string]string

// Fetch downloads and parses the standards sheet.
func Fetch(ctx context.Context, getter Getter, url string, logger *slog.Logger) (Tags, error) {
	data, err := getter.Get(ctx, url)
	if err != nil {
		return nil, err
	}
	return Parse(bytes.NewReader(data), logger)
}

// Parse reads the standards sheet. The row whose first cell is "Grade" names
// the columns; data rows need a standard and a skill link ending in
// ".../e/{slug}".
func Parse(r io.Reader, logger *slog.Logger) (Tags, error) {
	logger = logging.NewComponentLogger(logger, "commoncore")
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	tags := Tags{}
	standardIdx, linkIdx := -1, -1
	for {
		row, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, services.Wrap(services.ErrCorrupt, "commoncore", "parse csv", "", err)
		}
		if len(row) == 0 {
			continue
		}
		if row[0] == "Grade" {
			standardIdx, linkIdx = -1, -1
			for i, v := range row {
				switch strings.ToLower(strings.TrimSpace(v)) {
				case "standard":
					standardIdx = i
				case "link to skill":
					linkIdx = i
				}
			}
			if standardIdx < 0 || linkIdx < 0 {
				return nil, services.Wrap(services.ErrCorrupt, "commoncore", "parse csv", `header lacks "standard" or "link to skill" column`, nil)
			}
			continue
		}
		if standardIdx < 0 || standardIdx >= len(row) || linkIdx >= len(row) {
			continue
		}
		standard := strings.TrimSpace(row[standardIdx])
		link := strings.TrimSpace(row[linkIdx])
		if standard == "" || link == "" {
			continue
		}
		slug := exerciseSlug(link)
		if slug == "" {
			continue
		}
		tags[slug] = standard
	}
	logger.Debug("common core tags parsed", logging.Int("slugs", len(tags)))
	return tags, nil
}

// exerciseSlug returns the slug after the last "/e/" segment of a skill
// link, so course paths such as /cc-third-grade/e/... do not cut early.
func exerciseSlug(link string) string {
	idx := strings.LastIndex(link, "/e/")
	if idx < 0 {
		if !strings.HasPrefix(link, "e/") {
			return ""
		}
		idx = -1
	}
	slug := link[idx+3:]
	if i := strings.IndexAny(slug, "?#"); i >= 0 {
		slug = slug[:i]
	}
	return strings.Trim(slug, "/")
}

// Lookup returns the standard for an exercise slug.
func (t Tags) Lookup(slug string) (string, bool) {
	tag, ok := t[slug]
	return tag, ok && tag != ""
}
