// Package curation holds the editorial rules layered over KA's topic tree:
// slug blacklists and replacement directives, both keyed by language or by
// "lang/variant".
//
// Directives are consumed once per build through Directives.Take. The
// Splicer turns a directive's specs into synthetic records registered in the
// build's store overlay, so the tree builder walks them like any other
// record.
package curation
