package dubbing

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"kachef/internal/language"
	"kachef/internal/logging"
	"kachef/internal/services"
)

// Getter downloads a document.
type Getter interface {
	Get(ctx context.Context, url string) ([]byte, error)
}

// Map holds dubbed youtube ids keyed by lowercase language name (as the
// sheet's header spells it) and then by English youtube id.
type Map map[string]map[string]string

// Fetch downloads and parses the dubbed-video sheet.
func Fetch(ctx context.Context, getter Getter, url string, logger *slog.Logger) (Map, error) {
	data, err := getter.Get(ctx, url)
	if err != nil {
		return nil, err
	}
	return ParseCSV(bytes.NewReader(data), logger)
}

// ParseCSV reads the dubbed-video sheet. Preamble rows (blank first cell or
// "UPDATED:") are skipped; the row starting with SERIAL names the columns.
// Every column from "english" onward is a language holding dubbed ids.
func ParseCSV(r io.Reader, logger *slog.Logger) (Map, error) {
	logger = logging.NewComponentLogger(logger, "dubbing")
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	out := Map{}
	var header []string
	titleIdx, englishIdx := -1, -1
	for {
		row, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, services.Wrap(services.ErrCorrupt, "dubbing", "parse csv", "", err)
		}
		if len(row) == 0 {
			continue
		}
		first := strings.TrimSpace(row[0])
		switch {
		case first == "" || first == "UPDATED:":
			continue
		case row[0] == "SERIAL":
			header = make([]string, len(row))
			for i, v := range row {
				header[i] = strings.ToLower(strings.TrimSpace(v))
			}
			titleIdx = indexOf(header, "title id")
			englishIdx = indexOf(header, "english")
			if titleIdx < 0 || englishIdx < 0 {
				return nil, services.Wrap(services.ErrCorrupt, "dubbing", "parse csv", `header lacks "title id" or "english" column`, nil)
			}
			continue
		}
		if header == nil {
			continue
		}
		if len(row) != len(header) {
			logger.Debug("dubbed sheet row skipped", logging.String("serial", first), logging.Int("cells", len(row)))
			continue
		}
		englishID := strings.TrimSpace(row[englishIdx])
		if englishID == "" || strings.TrimSpace(row[titleIdx]) == "" {
			continue
		}
		for idx := englishIdx; idx < len(row); idx++ {
			dubbed := strings.TrimSpace(row[idx])
			if dubbed == "" {
				continue
			}
			lang := header[idx]
			if dubbed == englishID && lang != "english" {
				continue
			}
			if out[lang] == nil {
				out[lang] = map[string]string{}
			}
			out[lang][englishID] = dubbed
		}
	}
	if header == nil {
		return nil, services.Wrap(services.ErrCorrupt, "dubbing", "parse csv", "no SERIAL header row", nil)
	}
	logger.Debug("dubbed sheet parsed", logging.Int("languages", len(out)))
	return out, nil
}

// Lookup returns the dubbed id of youtubeID for an le-utils language code.
// The sheet keys languages by English name; a regional name such as
// "Portuguese, Brazil" also matches the plain "portuguese" column.
func (m Map) Lookup(lang, youtubeID string) (string, bool) {
	if m == nil {
		return "", false
	}
	name := strings.ToLower(language.Name(lang))
	candidates := []string{name}
	if base, _, ok := strings.Cut(name, ","); ok {
		candidates = append(candidates, strings.TrimSpace(base))
	}
	for _, key := range candidates {
		if id, ok := m[key][youtubeID]; ok && id != "" {
			return id, true
		}
	}
	return "", false
}

// Languages returns the number of language columns with at least one dub.
func (m Map) Languages() int { return len(m) }

func indexOf(values []string, want string) int {
	for i, v := range values {
		if v == want {
			return i
		}
	}
	return -1
}

// String summarizes the map for logs.
func (m Map) String() string {
	total := 0
	for _, ids := range m {
		total += len(ids)
	}
	return fmt.Sprintf("%d languages, %d dubs", len(m), total)
}
