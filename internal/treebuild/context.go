package treebuild

import (
	"log/slog"

	"kachef/internal/admission"
	"kachef/internal/curation"
	"kachef/internal/metadata"
	"kachef/internal/nodes"
	"kachef/internal/rawstore"
)

// Recorder receives one event per visited record, in visit order.
type Recorder interface {
	Include(depth int, kind rawstore.Kind, slug string)
	Exclude(depth int, kind rawstore.Kind, slug string, reason admission.Reason)
}

// RunContext is the explicit state of one run. The snapshot store is shared
// read-only; everything a build mutates is created per build.
type RunContext struct {
	Language string
	Variant  string

	Store   *rawstore.Store
	Factory *nodes.Factory
	Filter  *admission.Filter
	// Curation supplies a fresh directive set per build. Nil disables
	// splicing.
	Curation *curation.Rules
	// Questions loads exercise questions. Nil leaves exercises without
	// questions and skips the no-questions gate.
	Questions QuestionSource
	// EnglishSubtitles keeps a reference-audio copy of every dubbed video,
	// admitted on its own subtitles, in non-reference runs.
	EnglishSubtitles bool
	// Collector is set in metadata generation mode.
	Collector *metadata.Collector
	Recorder  Recorder
	Logger    *slog.Logger
}
