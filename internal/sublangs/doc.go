// Package sublangs caches the subtitle languages available per YouTube video
// in a small SQLite database so repeated runs and batch languages do not list
// the same video twice within the TTL.
package sublangs
