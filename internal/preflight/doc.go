// Package preflight provides readiness checks for the filesystem paths and
// external sources a kachef run depends on.
//
// The CLI "kachef status" command runs them before operators start long
// batches: writable directories, the metadata map a consume run needs, the
// export bucket, and the enrichment sheets. Each check is gated by its config
// toggle; disabled features are skipped.
package preflight
