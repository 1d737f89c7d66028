package curation

import (
	"log/slog"

	"kachef/internal/logging"
	"kachef/internal/rawstore"
)

// MaxSpecDepth is how many spec levels a directive may nest: the
// replacement root, its children and its grandchildren.
const MaxSpecDepth = 3

// Splicer materializes directive specs as records in a build's store
// overlay.
type Splicer struct {
	store    *rawstore.Store
	bySlug   map[string]*rawstore.Record
	produced map[string]bool
	exempt   map[string]bool
	logger   *slog.Logger
}

// NewSplicer returns a splicer writing into store, which should be the
// build's overlay. The slug index is taken from store as it is now.
func NewSplicer(store *rawstore.Store, logger *slog.Logger) *Splicer {
	return &Splicer{
		store:    store,
		bySlug:   store.TopicsBySlug(),
		produced: map[string]bool{},
		exempt:   map[string]bool{},
		logger:   logging.NewComponentLogger(logger, "curation"),
	}
}

// NamespacedID is the id of a spliced record placed under parentSlug.
func NamespacedID(parentSlug, slug string) string {
	return parentSlug + "_" + slug
}

// Splice registers a record for each spec, nested specs included, and
// returns the top-level records in spec order. parentSlug is the slug of the
// topic receiving them.
func (s *Splicer) Splice(parentSlug string, specs []Spec) []*rawstore.Record {
	return s.splice(parentSlug, specs, 1)
}

// Produced reports whether id was registered by this splicer.
func (s *Splicer) Produced(id string) bool {
	return s.produced[id]
}

// Exempt reports whether id is an editorial record that skips the slug
// blacklist: a stand-in for a missing slug or a topic holding spliced
// children. Leaf specs cloned from upstream records are not exempt.
func (s *Splicer) Exempt(id string) bool {
	return s.exempt[id]
}

func (s *Splicer) splice(parentSlug string, specs []Spec, level int) []*rawstore.Record {
	out := make([]*rawstore.Record, 0, len(specs))
	for _, spec := range specs {
		rec, editorial := s.record(parentSlug, spec, level)
		s.store.Put(rec)
		s.produced[rec.ID] = true
		s.exempt[rec.ID] = editorial
		out = append(out, rec)
	}
	return out
}

func (s *Splicer) record(parentSlug string, spec Spec, level int) (*rawstore.Record, bool) {
	base, found := s.bySlug[spec.Slug]
	skeleton := len(spec.Children) > 0
	if skeleton && level >= MaxSpecDepth {
		logging.WarnWithContext(s.logger, "replacement nested too deep", "curation_depth",
			logging.String(logging.FieldSlug, spec.Slug),
			logging.Int("level", level),
			logging.String(logging.FieldImpact, "nested children ignored"),
		)
		skeleton = false
	}

	var rec *rawstore.Record
	if found {
		rec = base.Clone()
	} else {
		if !skeleton {
			logging.WarnWithContext(s.logger, "replacement slug not found", "curation_missing_slug",
				logging.String(logging.FieldSlug, spec.Slug),
				logging.String("parent_slug", parentSlug),
				logging.String(logging.FieldErrorHint, "the upstream topic was renamed or removed; update curation.yaml"),
			)
		}
		rec = &rawstore.Record{Kind: rawstore.KindCourse}
	}
	rec.ID = NamespacedID(parentSlug, spec.Slug)
	rec.Slug = spec.Slug
	if spec.Title != "" {
		rec.OriginalTitle = spec.Title
		rec.TranslatedTitle = spec.Title
	}
	if spec.Description != "" {
		rec.OriginalDescription = spec.Description
		rec.TranslatedDescription = spec.Description
		rec.TranslatedDescriptionHTML = spec.Description
	}
	editorial := !found || skeleton
	if editorial {
		rec.Listed = rawstore.BoolPtr(true)
		rec.FullyTranslated = rawstore.BoolPtr(true)
		rec.CurriculumKey = ""
	}
	if !skeleton {
		// Leaf specs keep the upstream children; a stand-in has none and
		// is pruned by the builder.
		return rec, editorial
	}
	children := s.splice(spec.Slug, spec.Children, level+1)
	rec.Children = make([]rawstore.ChildRef, 0, len(children))
	for _, child := range children {
		rec.Children = append(rec.Children, rawstore.ChildRef{Kind: child.Kind, ID: child.ID})
	}
	return rec, editorial
}
