// Package commoncore maps English exercise slugs to Common Core State
// Standards tags from the published alignment sheet.
package commoncore
