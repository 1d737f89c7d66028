// Package logging assembles the slog loggers used by kachef.
//
// It owns the console and JSON handlers, level parsing, and a fan-out handler
// so a batch run can tee its records into a per-run JSON file while the
// operator watches the console. Context helpers tag records with the run id,
// language, variant, and build stage; a no-op logger serves tests and wiring
// code that has nothing to log to.
package logging
