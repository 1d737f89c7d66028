package metadata

import (
	"fmt"
	"strings"

	"kachef/internal/language"
)

// Mode selects what a run does with slug metadata.
type Mode string

const (
	ModeAuto     Mode = "auto"
	ModeGenerate Mode = "generate"
	ModeConsume  Mode = "consume"
	ModeOff      Mode = "off"
)

// ParseMode validates a configured mode.
func ParseMode(value string) (Mode, error) {
	switch m := Mode(strings.ToLower(strings.TrimSpace(value))); m {
	case ModeAuto, ModeGenerate, ModeConsume, ModeOff:
		return m, nil
	case "":
		return ModeAuto, nil
	default:
		return "", fmt.Errorf("unknown metadata mode %q", value)
	}
}

// Resolve turns auto into generate for the reference language without a
// variant and into consume for everything else.
func Resolve(mode Mode, lang, variant, reference string) Mode {
	if mode != ModeAuto && mode != "" {
		return mode
	}
	if language.Normalize(lang) == language.Normalize(reference) && strings.TrimSpace(variant) == "" {
		return ModeGenerate
	}
	return ModeConsume
}
