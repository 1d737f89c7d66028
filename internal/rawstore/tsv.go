package rawstore

import (
	"bufio"
	"bytes"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"

	"kachef/internal/logging"
	"kachef/internal/services"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// ParseTSV reads a KA topic-tree export. A row without an id aborts the
// parse; a row whose typed cells fail to decode is logged and skipped.
func ParseTSV(r io.Reader, logger *slog.Logger) (*Store, error) {
	logger = logging.NewComponentLogger(logger, "rawstore")
	br := bufio.NewReader(r)
	if head, err := br.Peek(len(utf8BOM)); err == nil && bytes.Equal(head, utf8BOM) {
		_, _ = br.Discard(len(utf8BOM))
	}

	reader := csv.NewReader(br)
	reader.Comma = '\t'
	reader.LazyQuotes = true
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, services.Wrap(services.ErrCorrupt, "snapshot", "parse tsv", "export is empty", nil)
		}
		return nil, services.Wrap(services.ErrCorrupt, "snapshot", "parse tsv", "read header", err)
	}
	columns := make(map[string]int, len(header))
	for i, name := range header {
		columns[strings.TrimSpace(name)] = i
	}
	if _, ok := columns["id"]; !ok {
		return nil, services.Wrap(services.ErrCorrupt, "snapshot", "parse tsv", "header has no id column", nil)
	}

	store := New()
	line := 1
	skipped := 0
	for {
		row, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		line++
		if err != nil {
			return nil, services.Wrap(services.ErrCorrupt, "snapshot", "parse tsv", fmt.Sprintf("line %d", line), err)
		}
		cell := func(name string) string {
			idx, ok := columns[name]
			if !ok || idx >= len(row) {
				return ""
			}
			return row[idx]
		}
		if strings.TrimSpace(cell("id")) == "" {
			return nil, services.Wrap(services.ErrCorrupt, "snapshot", "parse tsv", fmt.Sprintf("line %d: row with missing id", line), nil)
		}
		rec, err := decodeTSVRow(cell)
		if err != nil {
			skipped++
			logger.Error("tsv row skipped",
				logging.String("id", cell("id")),
				logging.Int("line", line),
				logging.Error(err),
				logging.String(logging.FieldEventType, "tsv_row_invalid"),
			)
			continue
		}
		store.Put(rec)
	}
	logger.Debug("tsv export parsed", logging.Int("records", store.Len()), logging.Int("skipped", skipped))
	return store, nil
}

func decodeTSVRow(cell func(string) string) (*Record, error) {
	text := func(name string) string { return strings.TrimSpace(cell(name)) }
	rec := &Record{
		ID:                          text("id"),
		Kind:                        Kind(text("kind")),
		Slug:                        text("slug"),
		OriginalTitle:               text("original_title"),
		TranslatedTitle:             text("translated_title"),
		OriginalDescription:         text("original_description"),
		TranslatedDescription:       text("translated_description"),
		TranslatedDescriptionHTML:   text("translated_description_html"),
		Listed:                      tsvBool(cell("listed")),
		FullyTranslated:             tsvBool(cell("fully_translated")),
		CurriculumKey:               text("curriculum_key"),
		YouTubeID:                   text("youtube_id"),
		TranslatedYouTubeID:         text("translated_youtube_id"),
		SourceLang:                  text("source_lang"),
		License:                     text("license"),
		Subbed:                      IsTrue(tsvBool(cell("subbed"))),
		Dubbed:                      IsTrue(tsvBool(cell("dubbed"))),
		DubSubbed:                   IsTrue(tsvBool(cell("dub_subbed"))),
		ThumbnailURL:                text("thumbnail_url"),
		SuggestedCompletionCriteria: text("suggested_completion_criteria"),
		CanonicalURL:                text("canonical_url"),
	}

	var err error
	if err = jsonCell(cell, "children_ids", &rec.Children); err != nil {
		return nil, err
	}
	if err = jsonCell(cell, "download_urls", &rec.DownloadURLs); err != nil {
		return nil, err
	}
	if err = jsonCell(cell, "assessment_item_ids", &rec.AssessmentItemIDs); err != nil {
		return nil, err
	}
	for name, dst := range map[string]*json.RawMessage{
		"prerequisites":   &rec.Prerequisites,
		"related_content": &rec.RelatedContent,
		"time_estimate":   &rec.TimeEstimate,
	} {
		if err = jsonCell(cell, name, dst); err != nil {
			return nil, err
		}
	}
	if rec.Duration, err = intCell(cell, "duration"); err != nil {
		return nil, err
	}
	if rec.WordCount, err = intCell(cell, "word_count"); err != nil {
		return nil, err
	}
	return rec, nil
}

// tsvBool maps an export boolean cell: blank is null, True/true is true, and
// any other value is false.
func tsvBool(value string) *bool {
	switch value {
	case "":
		return nil
	case "True", "true":
		return BoolPtr(true)
	default:
		return BoolPtr(false)
	}
}

func jsonCell(cell func(string) string, name string, dst any) error {
	raw := strings.TrimSpace(cell(name))
	if raw == "" {
		return nil
	}
	if err := json.Unmarshal([]byte(raw), dst); err != nil {
		return fmt.Errorf("column %s: %w", name, err)
	}
	return nil
}

func intCell(cell func(string) string, name string) (int, error) {
	raw := strings.TrimSpace(cell(name))
	if raw == "" {
		return 0, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("column %s: %w", name, err)
	}
	return v, nil
}
