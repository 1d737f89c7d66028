// Package chef orchestrates kachef runs.
//
// Run performs one (language, variant) build end to end: it takes the run
// lock, loads the snapshot and the per-run enrichment data, picks the
// metadata mode, builds the tree and writes whatever the mode produces.
// Batch executes several runs in one process. The metadata generation run
// goes first and alone; the rest share nothing but the read-only snapshot
// cache on disk and run under a bounded errgroup.
package chef
