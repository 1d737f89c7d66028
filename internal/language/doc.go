// Package language maps between le-utils language codes and the codes used by
// Khan Academy exports, and answers the language questions admission asks:
// is a language natively supported, what is its display name, and do two
// codes share a primary subtag once locale variants are collapsed.
package language
