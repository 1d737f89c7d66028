package channel

import (
	_ "embed"
	"fmt"
	"strings"
	"sync"

	"golang.org/x/text/cases"
	xlanguage "golang.org/x/text/language"
	"gopkg.in/yaml.v3"

	"kachef/internal/language"
)

//go:embed channel.yaml
var lookupData []byte

// SourceDomain is recorded on every channel kachef writes.
const SourceDomain = "khanacademy.org"

// Info identifies the channel of one run.
type Info struct {
	SourceID     string
	SourceDomain string
	Title        string
	Description  string
	Language     string
}

type lookups struct {
	Titles       map[string]string `yaml:"titles"`
	Descriptions map[string]string `yaml:"descriptions"`
}

var (
	lookupOnce sync.Once
	lookup     lookups
)

func tables() lookups {
	lookupOnce.Do(func() {
		if err := yaml.Unmarshal(lookupData, &lookup); err != nil {
			panic(fmt.Sprintf("channel: embedded lookups: %v", err))
		}
	})
	return lookup
}

// NewInfo returns the channel info for a run.
func NewInfo(lang, variant string) Info {
	lang = language.Normalize(lang)
	return Info{
		SourceID:     SourceID(lang, variant),
		SourceDomain: SourceDomain,
		Title:        Title(lang, variant),
		Description:  Description(lang, variant),
		Language:     lang,
	}
}

// SourceID is "KA (lang)" or "KA (lang/variant)".
func SourceID(lang, variant string) string {
	if variant == "" {
		return fmt.Sprintf("KA (%s)", lang)
	}
	return fmt.Sprintf("KA (%s/%s)", lang, variant)
}

// Title returns the channel title for a run.
func Title(lang, variant string) string {
	if title, ok := find(tables().Titles, lang, variant); ok {
		return title
	}
	return fmt.Sprintf("Khan Academy (%s)", displayName(lang))
}

// Description returns the channel description for a run.
func Description(lang, variant string) string {
	if desc, ok := find(tables().Descriptions, lang, variant); ok {
		return desc
	}
	return fmt.Sprintf("Khan Academy content for %s.", language.Name(lang))
}

func find(table map[string]string, lang, variant string) (string, bool) {
	lang = language.Normalize(lang)
	if variant != "" {
		if v, ok := table[lang+"/"+variant]; ok {
			return v, true
		}
	}
	v, ok := table[lang]
	return v, ok
}

// displayName is the native name with its first word title-cased in the
// language's own casing rules ("polski" → "Polski").
func displayName(lang string) string {
	native := language.NativeName(lang)
	tag, err := xlanguage.Parse(lang)
	if err != nil {
		tag = xlanguage.Und
	}
	head, rest, found := strings.Cut(native, " ")
	head = cases.Title(tag, cases.NoLower).String(head)
	if !found {
		return head
	}
	return head + " " + rest
}
