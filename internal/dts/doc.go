// Package dts parses preprocessed devicetree-syntax text into a tree of
// named nodes with typed properties, covering the subset of the format
// needed to resolve keymap, combo and behavior semantics.
//
// Key capabilities:
//   - Nested node bodies with label syntax ("label: name { ... }")
//   - String, string-list, cell-array, phandle and flag properties
//   - Compatible-string indexing and chosen-node lookups
//   - Location of the conventional keymap/combos sections
//   - Skip-and-continue recovery outside the required sections
package dts
