package config

import (
	"strings"

	"github.com/caksoylar/keymap-drawer/keymap"
)

// Config is the top-level configuration file structure. Drawing settings are
// consumed by the rendering engine and ignored here.
type Config struct {
	Parse ParseConfig `yaml:"parse_config"`
}

// ParseConfig holds all settings related to parsing keymaps.
type ParseConfig struct {
	// Run the C preprocessor on devicetree keymaps before structural parsing.
	Preprocess bool `yaml:"preprocess"`

	// Do not do any keycode or binding parsing, except as specified by
	// RawBindingMap.
	SkipBindingParsing bool `yaml:"skip_binding_parsing"`

	// Map raw binding strings to legends as specified, shortcutting any
	// further parsing for exact matches, e.g. {"&bootloader": "BOOT"}.
	RawBindingMap map[string]keymap.LayoutKey `yaml:"raw_binding_map"`

	// Display text to place in the hold field for sticky/one-shot keys.
	StickyLabel string `yaml:"sticky_label"`

	// Display text to place in the hold field for toggled keys.
	ToggleLabel string `yaml:"toggle_label"`

	// Display text to place in the hold field for tap-toggle keys.
	TapToggleLabel string `yaml:"tap_toggle_label"`

	// Legend to output for transparent keys.
	TransLegend keymap.LayoutKey `yaml:"trans_legend"`

	// Rather than marking only the first sequence of key positions that
	// reaches a layer as held, mark every such sequence; positions beyond
	// the first sequence get the held-alternate type. Disabled by default
	// because it creates ambiguity about whether all or any of the marked
	// keys need to be held.
	MarkAlternateLayerActivators bool `yaml:"mark_alternate_layer_activators"`

	// Convert modifier-function wrappers like LC(V) into flattened legends
	// using the given symbols and combiner patterns. Set to null to display
	// the unmodified keycode text instead.
	ModifierFnMap *ModifierFnMap `yaml:"modifier_fn_map"`

	// Remove these prefixes from ZMK keycodes before any other processing,
	// e.g. locale prefixes like "DE_". Longest prefixes are tried first.
	ZmkRemoveKeycodePrefix []string `yaml:"zmk_remove_keycode_prefix"`

	// Convert ZMK keycodes to their display forms, applied to parameters of
	// behaviors like "&kp". User entries are merged over the defaults.
	ZmkKeycodeMap map[string]keymap.LayoutKey `yaml:"zmk_keycode_map"`

	// Additional combo fields per combo node name, e.g.
	// {"combo_esc": {"align": "top", "offset": 0.5}}.
	ZmkCombos map[string]keymap.ComboSpec `yaml:"zmk_combos"`

	// QMK counterparts of the keycode tables, consumed by the QMK JSON
	// parser which shares this configuration object.
	QmkRemoveKeycodePrefix []string                    `yaml:"qmk_remove_keycode_prefix"`
	QmkKeycodeMap          map[string]keymap.LayoutKey `yaml:"qmk_keycode_map"`
}

// ModifierFnMap configures how modifier functions wrapping a keycode are
// flattened into display text.
type ModifierFnMap struct {
	LeftCtrl   string `yaml:"left_ctrl"`
	RightCtrl  string `yaml:"right_ctrl"`
	LeftShift  string `yaml:"left_shift"`
	RightShift string `yaml:"right_shift"`
	LeftAlt    string `yaml:"left_alt"`
	RightAlt   string `yaml:"right_alt"`
	LeftGui    string `yaml:"left_gui"`
	RightGui   string `yaml:"right_gui"`

	// Pattern to join the modifier text with the modified keycode's text,
	// containing {mods} and {key} placeholders.
	KeycodeCombiner string `yaml:"keycode_combiner"`

	// Pattern to join two modifier texts, containing {mod_1} and {mod_2}
	// placeholders.
	ModCombiner string `yaml:"mod_combiner"`

	// Special display values for modifier combinations, keyed by "+"-joined
	// canonical modifier names. Matched ignoring modifier order, before any
	// pairwise combining.
	SpecialCombinations map[string]string `yaml:"special_combinations"`
}

// Symbol returns the display symbol for a canonical modifier name like
// "left_ctrl", falling back to the name itself when unknown.
func (m *ModifierFnMap) Symbol(mod string) string {
	switch mod {
	case "left_ctrl":
		return m.LeftCtrl
	case "right_ctrl":
		return m.RightCtrl
	case "left_shift":
		return m.LeftShift
	case "right_shift":
		return m.RightShift
	case "left_alt":
		return m.LeftAlt
	case "right_alt":
		return m.RightAlt
	case "left_gui":
		return m.LeftGui
	case "right_gui":
		return m.RightGui
	default:
		return mod
	}
}

// CombineWithKey renders the keycode combiner pattern.
func (m *ModifierFnMap) CombineWithKey(mods, key string) string {
	out := strings.ReplaceAll(m.KeycodeCombiner, "{mods}", mods)

	return strings.ReplaceAll(out, "{key}", key)
}

// CombineMods renders the modifier combiner pattern.
func (m *ModifierFnMap) CombineMods(mod1, mod2 string) string {
	out := strings.ReplaceAll(m.ModCombiner, "{mod_1}", mod1)

	return strings.ReplaceAll(out, "{mod_2}", mod2)
}
