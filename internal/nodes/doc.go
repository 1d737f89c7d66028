// Package nodes defines the built-tree node types and the factory that turns
// raw snapshot records into them.
//
// A Node is one of Topic, Exercise, Video or Article. The Factory resolves
// titles and descriptions for the run language, applies translation-memory
// overrides, maps licenses and mastery models through static tables, and
// injects slug metadata when a map is loaded. It never fails a build: records
// it cannot represent come back with an admission.Reason instead.
package nodes
