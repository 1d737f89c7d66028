// Package metadata implements slug metadata propagation.
//
// A generation run on the reference language walks the tree with relaxed
// filters, seeds each leaf with the tag rules of its ancestors, and unions
// the result per slug into a persisted Map. Every other run loads that Map
// and the node factory merges a slug's grade levels and categories into the
// nodes it builds.
//
// Because the union is global per slug, a leaf placed under several parents
// inherits tags from all of them. With tracking enabled the per-occurrence
// contributions are written next to the map and disagreeing slugs are logged
// as cross_contamination.
package metadata
