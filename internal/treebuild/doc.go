// Package treebuild reconstructs the content tree for one (language,
// variant) run from a flat snapshot.
//
// Build walks depth first from a synthetic root whose children are the
// editorially ordered domains. Every record passes the admission filter,
// topic slugs with a pending curation directive are replaced by spliced
// records, leaves go through the node factory and their per-kind gates, and
// topics left without children are pruned. A bad record never fails the
// build; it is reported through the Recorder with its exclusion reason.
//
// All per-run state lives in RunContext and the per-build overlay, so two
// builds from the same snapshot are identical and independent runs can share
// a process.
package treebuild
