// Package keymap defines the structured keymap representation produced by
// parsing: ordered layers of key legends plus combo specifications.
//
// Key capabilities:
//   - Compact YAML serialization (plain strings for simple legends)
//   - Flexible key specs on input (string, integer or full mapping)
//   - Column-chunked dumps for readable layer output
//   - Rebasing a fresh parse onto a hand-edited earlier keymap
package keymap
