package rawstore

import (
	"sort"
	"sync"
)

// RootID is the id of the synthetic channel root. The legacy API carries a
// real record with this id; TSV snapshots do not.
const RootID = "x00000000"

// DomainOrder is the editorial order of top-level domains. Domains absent
// from this list never reach the tree.
var DomainOrder = []string{
	"math",
	"science",
	"economics-finance-domain",
	"humanities",
	"computing",
	"test-prep",
	"ela",
	"partner-content",
	"college-careers-more",
	"khan-for-educators",
	"kmap",
	"internal-courses",
	"gtp",
}

// Store maps record ids to records for one language snapshot. A store
// created by Layer shares its base read-only and keeps its own additions.
type Store struct {
	records map[string]*Record
	base    *Store

	indexOnce sync.Once
	bySlug    map[string]*Record
}

// New returns a store holding records. Later duplicates of an id win, as
// they do when a snapshot is read row by row.
func New(records ...*Record) *Store {
	s := &Store{records: make(map[string]*Record, len(records))}
	for _, r := range records {
		if r != nil && r.ID != "" {
			s.records[r.ID] = r
		}
	}
	return s
}

// Layer returns a copy-on-write overlay. Records put into the layer are
// invisible to s, so s stays identical across builds.
func (s *Store) Layer() *Store {
	return &Store{records: map[string]*Record{}, base: s}
}

// Get returns the record with id.
func (s *Store) Get(id string) (*Record, bool) {
	if r, ok := s.records[id]; ok {
		return r, true
	}
	if s.base != nil {
		return s.base.Get(id)
	}
	return nil, false
}

// Put registers r, replacing any record with the same id in this layer.
func (s *Store) Put(r *Record) {
	if r == nil || r.ID == "" {
		return
	}
	s.records[r.ID] = r
}

// Len returns the number of distinct ids visible through s.
func (s *Store) Len() int {
	return len(s.ids())
}

// IDs returns all visible ids in sorted order.
func (s *Store) IDs() []string {
	ids := s.ids()
	out := make([]string, 0, len(ids))
	for id := range ids {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}

func (s *Store) ids() map[string]struct{} {
	out := map[string]struct{}{}
	for cur := s; cur != nil; cur = cur.base {
		for id := range cur.records {
			out[id] = struct{}{}
		}
	}
	return out
}

// Records returns all visible records sorted by id.
func (s *Store) Records() []*Record {
	ids := s.IDs()
	out := make([]*Record, 0, len(ids))
	for _, id := range ids {
		r, _ := s.Get(id)
		out = append(out, r)
	}
	return out
}

// ByKind groups visible records by kind, each group sorted by id.
func (s *Store) ByKind() map[Kind][]*Record {
	out := map[Kind][]*Record{}
	for _, r := range s.Records() {
		out[r.Kind] = append(out[r.Kind], r)
	}
	return out
}

// Domains returns the Domain records in editorial order, plus the Domain
// records the order does not mention.
func (s *Store) Domains() (ordered []*Record, unordered []*Record) {
	bySlug := map[string]*Record{}
	for _, r := range s.Records() {
		if r.Kind != KindDomain {
			continue
		}
		if _, ok := bySlug[r.Slug]; !ok {
			bySlug[r.Slug] = r
		}
	}
	listed := map[string]bool{}
	for _, slug := range DomainOrder {
		listed[slug] = true
		if r, ok := bySlug[slug]; ok {
			ordered = append(ordered, r)
		}
	}
	for _, r := range s.Records() {
		if r.Kind == KindDomain && !listed[r.Slug] {
			unordered = append(unordered, r)
		}
	}
	return ordered, unordered
}

// Root returns a synthetic root whose children are the ordered domains.
func (s *Store) Root() *Record {
	ordered, _ := s.Domains()
	root := &Record{
		ID:              RootID,
		Kind:            KindRoot,
		Slug:            "root",
		OriginalTitle:   "THE CHANNEL ROOT NODE",
		TranslatedTitle: "THE CHANNEL ROOT NODE",
		Listed:          BoolPtr(true),
	}
	for _, d := range ordered {
		root.Children = append(root.Children, ChildRef{Kind: KindDomain, ID: d.ID})
	}
	return root
}

// TopicsBySlug returns the first topic-like record seen for each slug. The
// walk is depth-first from the ordered domains; topic-like records it cannot
// reach follow in id order. Overlay records are not indexed.
func (s *Store) TopicsBySlug() map[string]*Record {
	if s.base != nil {
		return s.base.TopicsBySlug()
	}
	s.indexOnce.Do(func() {
		s.bySlug = map[string]*Record{}
		seen := map[string]bool{}
		var walk func(r *Record)
		walk = func(r *Record) {
			if seen[r.ID] {
				return
			}
			seen[r.ID] = true
			if _, ok := s.bySlug[r.Slug]; !ok {
				s.bySlug[r.Slug] = r
			}
			for _, ref := range r.Children {
				if child, ok := s.Get(ref.ID); ok && child.Kind.IsTopicLike() {
					walk(child)
				}
			}
		}
		ordered, _ := s.Domains()
		for _, d := range ordered {
			walk(d)
		}
		for _, r := range s.Records() {
			if r.Kind.IsTopicLike() && r.Kind != KindRoot {
				walk(r)
			}
		}
	})
	return s.bySlug
}
