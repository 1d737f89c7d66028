// Package config loads, normalizes, and validates kachef configuration data.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), reads TOML files, and honours environment fallbacks such as
// KACHEF_LANG and GOOGLE_APPLICATION_CREDENTIALS. Paths left empty are derived
// from the data directory so a bare config still yields a complete layout of
// snapshot caches, output trees, locks, and the slug metadata map.
//
// Always obtain settings through this package so downstream code receives
// sanitized paths, canonical log formats, and clear validation errors.
package config
