package nodes

import (
	"strings"
	"sync"

	"github.com/JohannesKaufmann/html-to-markdown/v2/converter"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/base"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/commonmark"
	"github.com/microcosm-cc/bluemonday"
)

// DescriptionLimit caps descriptions, in runes.
const DescriptionLimit = 400

// TextCleaner turns description HTML into short plain text. It is safe for
// concurrent use.
type TextCleaner struct {
	policy    *bluemonday.Policy
	converter *converter.Converter
}

var (
	defaultCleanerOnce sync.Once
	defaultCleaner     *TextCleaner
)

// DefaultTextCleaner returns a process-wide cleaner.
func DefaultTextCleaner() *TextCleaner {
	defaultCleanerOnce.Do(func() {
		defaultCleaner = NewTextCleaner()
	})
	return defaultCleaner
}

// NewTextCleaner builds a cleaner. Links and images are unwrapped to their
// text before conversion, and Markdown escaping is off so literal
// characters such as "_" and "1." survive unchanged.
func NewTextCleaner() *TextCleaner {
	policy := bluemonday.NewPolicy()
	policy.AllowElements(
		"p", "br", "div", "span",
		"ul", "ol", "li",
		"strong", "b", "em", "i", "code", "pre", "blockquote",
		"h1", "h2", "h3", "h4", "h5", "h6",
	)
	return &TextCleaner{
		policy: policy,
		converter: converter.NewConverter(
			converter.WithPlugins(
				base.NewBasePlugin(),
				commonmark.NewCommonmarkPlugin(),
			),
			converter.WithEscapeMode(converter.EscapeModeDisabled),
		),
	}
}

// Description sanitizes html, converts it to text, cuts it to
// DescriptionLimit runes and collapses line breaks.
func (c *TextCleaner) Description(html string) string {
	if strings.TrimSpace(html) == "" {
		return ""
	}
	safe := c.policy.Sanitize(html)
	text, err := c.converter.ConvertString(safe)
	if err != nil {
		text = bluemonday.StrictPolicy().Sanitize(html)
	}
	return NormalizeSpace(truncateRunes(text, DescriptionLimit))
}

// NormalizeSpace replaces newlines and non-breaking spaces with spaces and
// trims the result.
func NormalizeSpace(s string) string {
	s = strings.NewReplacer("\r\n", " ", "\n", " ", "\r", " ", "\u00a0", " ").Replace(s)
	return strings.TrimSpace(s)
}

func truncateRunes(s string, limit int) string {
	if limit <= 0 {
		return ""
	}
	count := 0
	for i := range s {
		if count == limit {
			return s[:i]
		}
		count++
	}
	return s
}
