// Package translations holds the crowd translation memory used for
// languages Khan Academy does not translate natively. Source strings that
// match exactly are replaced before any cleanup.
package translations
