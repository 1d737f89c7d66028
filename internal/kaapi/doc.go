// Package kaapi talks to Khan Academy's HTTP endpoints.
//
// One Client with bounded linear backoff serves the legacy topictree API,
// the GraphQL assessment-item query, caption listings, and the published CSV
// sheets. Errors are classified with the services markers: 404 becomes
// ErrNotFound, exhausted retries ErrTransient, and anything else ErrExternal,
// so callers can decide between skipping a node and aborting a run.
package kaapi
