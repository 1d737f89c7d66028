// Package report renders the human-facing views of a run.
//
// Verbose is the treebuild.Recorder behind the INCLUDE/EXCLUDE listing, one
// line per visited record in visit order. Summarize describes a raw snapshot
// before any filtering, and Stats/PrintTree describe a built tree. Tabular
// output goes through go-pretty so CLI commands share one table style.
package report
