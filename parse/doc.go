// Package parse turns devicetree-syntax ZMK keymap sources into the
// structured keymap model, resolving user-defined behaviors (hold-taps,
// macros, mod-morphs, sticky keys) into display-ready legends.
//
// The pipeline is sequential: preprocessing, structural parsing, behavior
// registry construction, per-binding resolution, layer/combo assembly and
// held-key activation analysis. Binding-level failures degrade to raw-text
// legends and are collected as diagnostics; only preprocessing failures and
// malformed required sections abort a document.
//
// A Parser is scoped to single documents and must not be shared across
// goroutines; concurrent parses need independently constructed Parsers.
package parse
