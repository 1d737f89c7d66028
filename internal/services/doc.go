// Package services defines shared utilities consumed by the chef pipeline
// stages and its external integrations.
//
// Key responsibilities:
//   - Context helpers that stamp run IDs, languages, variants, and stage names
//     for logging.
//   - Structured error markers plus the Wrap helper that separate run-fatal
//     failures (missing snapshot, corrupt metadata map, bad configuration)
//     from everything else.
//
// Node-level rejections never travel through these errors; they are exclusion
// reasons recorded by the tree builder.
package services
