// Package admission decides whether a raw record may appear in the tree for
// one run's language and variant.
//
// Record gates run before a node is built: the slug blacklist, curriculum
// partitioning, variant-only course filtering, and translation completeness.
// Video gates run after: a downloadable rendition must exist, and the audio
// must be in the target language, be a known dub, or have target-language
// subtitles. Every rejection is a Reason that ends up in the verbose report.
package admission
