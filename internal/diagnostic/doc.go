// Package diagnostic provides structured, collected warnings for keymap
// parsing, so that a single bad binding degrades gracefully instead of
// failing the whole document.
//
// Key capabilities:
//   - Unresolved reference and fallback-to-raw-text warnings
//   - Cyclic behavior chain reports
//   - Missing optional section notes
//   - Parse-completeness reporting for callers
package diagnostic
