// Package preproc implements the standards-subset C preprocessor applied to
// devicetree keymap sources before structural parsing, mirroring what the
// firmware's build would do.
//
// Key capabilities:
//   - Object and function-like macros, including __VA_ARGS__
//   - Conditional compilation (#if/#ifdef/#ifndef/#elif/#else/#endif)
//   - #include resolution over configured search paths
//   - Line continuations and comment stripping
//   - Fragment expansion in the context of a processed document
//
// Missing includes are skipped by default since firmware headers are
// normally not available to the drawer; strict mode turns them into errors.
package preproc
