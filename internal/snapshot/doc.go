// Package snapshot acquires the per-language raw record set.
//
// TSV exports come from the public Cloud Storage bucket: the newest blob for
// the language's KA code is downloaded atomically into the cache directory
// and reused on later runs when the cache is enabled. The legacy JSON source
// is fetched through kaapi and cached the same way.
package snapshot
