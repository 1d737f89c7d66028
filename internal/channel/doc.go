// Package channel turns a built tree into the channel document kachef
// writes.
//
// Info resolves the channel title and description for a run from embedded
// lookup tables. Encode maps the node tree onto its JSON shape without
// consulting anything else, so the same tree always yields the same bytes.
package channel
