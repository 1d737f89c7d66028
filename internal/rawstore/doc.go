// Package rawstore holds one language snapshot as a flat id → record map.
//
// Records come either from a TSV topic-tree export or from the legacy JSON
// API, and both are normalized into the same Record shape: Domain, Course,
// Unit and Lesson topics pointing at children by id, plus Exercise, Video and
// Article leaves. The Store is read-only once parsed; Layer gives each build
// a private overlay for records synthesized during curation, which keeps the
// underlying snapshot identical from one build to the next.
package rawstore
