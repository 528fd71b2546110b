// Package config defines the configuration for keymap parsing and its YAML
// loading.
//
// All lookup tables the parser consults (keycode display maps, modifier
// symbol maps, raw binding overrides) live here and are passed through
// explicitly; there is no process-wide mutable state.
package config
