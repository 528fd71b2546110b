package parse

import (
	"regexp"
	"strings"

	"github.com/caksoylar/keymap-drawer/config"
	"github.com/caksoylar/keymap-drawer/keymap"
)

// modifierFnToStd maps ZMK modifier-function names to canonical modifier
// names used by the configured symbol map.
var modifierFnToStd = map[string]string{
	"LC": "left_ctrl",
	"LS": "left_shift",
	"LA": "left_alt",
	"LG": "left_gui",
	"RC": "right_ctrl",
	"RS": "right_shift",
	"RA": "right_alt",
	"RG": "right_gui",
}

// modifierFnRe matches one modifier-function wrapper around the rest of a
// keycode, e.g. LC(LS(V)).
var modifierFnRe = regexp.MustCompile(`^([A-Z]+)\((.+)\)$`)

// unwrapModifierFns peels nested modifier-function wrappers off a keycode,
// returning the innermost keycode and the modifiers in outside-in order.
// Returns the keycode unchanged when the modifier function map is disabled.
func (r *resolver) unwrapModifierFns(keycode string) (string, []string) {
	if r.cfg.ModifierFnMap == nil {
		return keycode, nil
	}

	var mods []string

	for {
		m := modifierFnRe.FindStringSubmatch(keycode)
		if m == nil {
			return keycode, mods
		}

		std, ok := modifierFnToStd[m[1]]
		if !ok {
			return keycode, mods
		}

		mods = append(mods, std)
		keycode = m[2]
	}
}

// formatModified combines the collected modifiers with a resolved legend
// using the configured combiner patterns. Special combinations are matched
// ignoring modifier order before falling back to pairwise joining.
func (r *resolver) formatModified(legend keymap.LayoutKey, mods []string) keymap.LayoutKey {
	fnMap := r.cfg.ModifierFnMap
	if fnMap == nil || len(mods) == 0 {
		return legend
	}

	modsText, ok := lookupSpecialCombination(fnMap, mods)
	if !ok {
		modsText = fnMap.Symbol(mods[0])
		for _, mod := range mods[1:] {
			modsText = fnMap.CombineMods(modsText, fnMap.Symbol(mod))
		}
	}

	legend.Tap = fnMap.CombineWithKey(modsText, legend.Tap)
	if legend.Shifted != "" {
		legend.Shifted = fnMap.CombineWithKey(modsText, legend.Shifted)
	}

	return legend
}

// lookupSpecialCombination finds a special display value whose "+"-joined
// modifier set equals the given modifiers, in any order.
func lookupSpecialCombination(fnMap *config.ModifierFnMap, mods []string) (string, bool) {
	want := modSet(mods)

	for combo, display := range fnMap.SpecialCombinations {
		if setsEqual(modSet(strings.Split(combo, "+")), want) {
			return display, true
		}
	}

	return "", false
}

func modSet(mods []string) map[string]bool {
	set := make(map[string]bool, len(mods))
	for _, mod := range mods {
		set[mod] = true
	}

	return set
}

func setsEqual(a, b map[string]bool) bool {
	if len(a) != len(b) {
		return false
	}

	for k := range a {
		if !b[k] {
			return false
		}
	}

	return true
}
