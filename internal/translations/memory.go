package translations

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"kachef/internal/language"
	"kachef/internal/logging"
)

// Memory maps source strings to their crowd translation. A nil Memory is an
// empty one.
type Memory map[string]string

// Path returns the memory file for lang under dir.
func Path(dir, lang string) string {
	return filepath.Join(dir, language.ToKALang(lang)+".yaml")
}

// Load reads the memory for lang from dir. Languages KA translates natively
// get an empty memory. A missing file is a warning, not an error.
func Load(dir, lang string, logger *slog.Logger) (Memory, error) {
	logger = logging.NewComponentLogger(logger, "translations")
	if language.IsSupported(lang) {
		return Memory{}, nil
	}
	path := Path(dir, lang)
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		logging.WarnWithContext(logger, "translation memory missing", "translation_memory_missing",
			logging.String("path", path),
			logging.String(logging.FieldErrorHint, "export the crowd translations for this language to "+path),
			logging.String(logging.FieldImpact, "titles and descriptions stay untranslated"),
		)
		return Memory{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read translation memory: %w", err)
	}
	mem, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	logger.Info("translation memory loaded", logging.String("path", path), logging.Int("entries", len(mem)))
	return mem, nil
}

// Parse decodes a YAML mapping of source text to translation. Entries with
// an empty translation are dropped.
func Parse(data []byte) (Memory, error) {
	var raw map[string]string
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("decode translation memory: %w", err)
	}
	mem := make(Memory, len(raw))
	for src, dst := range raw {
		if src != "" && dst != "" {
			mem[src] = dst
		}
	}
	return mem, nil
}

// Apply returns the stored translation of text when the memory holds an
// exact match, else text unchanged.
func (m Memory) Apply(text string) string {
	if text == "" {
		return text
	}
	if out, ok := m[text]; ok {
		return out
	}
	return text
}
