// Package match provides field-name normalization, Levenshtein distance and
// "did you mean" suggestions for record fields that could not be resolved.
//
// Key functions:
//   - NormalizeIdent: folds a record field name or document path for fuzzy comparison
//   - Levenshtein: computes edit distance between strings
//   - Suggest: ranks known names against an unknown one
package match
