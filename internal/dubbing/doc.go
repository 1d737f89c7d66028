// Package dubbing loads the two dub sources: the published dubbed-video sheet
// that remaps English youtube ids to dubbed ones per language, and the
// embedded allow-list of translated ids known to carry target-language audio.
package dubbing
