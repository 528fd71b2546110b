// Package behavior builds the registry of user-defined ZMK behaviors from a
// parsed devicetree, mapping node labels to typed descriptors over a closed
// kind set (hold-tap, macro, mod-morph, sticky key, basic).
//
// Unrecognized compatible values are ignored so that unknown behavior types
// degrade to a basic display of the raw reference rather than failing the
// parse. Duplicate labels keep the first definition.
package behavior
