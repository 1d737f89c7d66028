// Package main hosts the kachef CLI.
//
// The Cobra command tree resolves configuration, builds the process logger,
// and hands each invocation to the chef package: single-language builds,
// batches, metadata map generation and inspection, raw snapshot reports, and
// export listings. Heavy lifting stays in internal packages; commands here
// only parse flags and render results.
package main
