// Package diagnostic provides structured errors, warnings and notes
// collected while a query is prepared.
//
// Key capabilities:
//   - Unresolved record field reports with suggestions
//   - Alias and source filter problems found in a mapping file
//   - Notes explaining planning decisions (exact vs superset plans)
package diagnostic
