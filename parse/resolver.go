package parse

import (
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/caksoylar/keymap-drawer/config"
	"github.com/caksoylar/keymap-drawer/internal/behavior"
	"github.com/caksoylar/keymap-drawer/internal/diagnostic"
	"github.com/caksoylar/keymap-drawer/keymap"
)

// numberCollapseRe rewrites spelled-out digit keycodes (N3, NUM_5,
// NUMBER_6) down to the bare digit.
var numberCollapseRe = regexp.MustCompile(`N(?:UM(?:BER)?_)?(\d)`)

// zmkModKeycodes maps bare modifier keycodes, as they appear in hold-tap
// parameters, to canonical modifier names.
var zmkModKeycodes = map[string]string{
	"LSHIFT": "left_shift", "LSHFT": "left_shift", "LEFT_SHIFT": "left_shift",
	"LCTRL": "left_ctrl", "LEFT_CONTROL": "left_ctrl",
	"LALT": "left_alt", "LEFT_ALT": "left_alt",
	"LGUI": "left_gui", "LWIN": "left_gui", "LCMD": "left_gui", "LMETA": "left_gui", "LEFT_GUI": "left_gui",
	"RSHIFT": "right_shift", "RSHFT": "right_shift", "RIGHT_SHIFT": "right_shift",
	"RCTRL": "right_ctrl", "RIGHT_CONTROL": "right_ctrl",
	"RALT": "right_alt", "RIGHT_ALT": "right_alt",
	"RGUI": "right_gui", "RWIN": "right_gui", "RCMD": "right_gui", "RMETA": "right_gui", "RIGHT_GUI": "right_gui",
}

// resolver resolves raw binding strings into display legends one document
// at a time. It records layer activations on the shared tracker as a side
// effect of resolving layer-switch bindings.
type resolver struct {
	cfg        *config.ParseConfig
	reg        *behavior.Registry
	layerNames []string
	diags      *diagnostic.Diagnostics
	held       *activationTracker

	// raw binding map with keys re-expanded through the preprocessor
	rawMap map[string]keymap.LayoutKey

	// remove-prefix list sorted longest first
	prefixes []string
}

func newResolver(
	cfg *config.ParseConfig,
	reg *behavior.Registry,
	layerNames []string,
	diags *diagnostic.Diagnostics,
	held *activationTracker,
	rawMap map[string]keymap.LayoutKey,
) *resolver {
	prefixes := make([]string, len(cfg.ZmkRemoveKeycodePrefix))
	copy(prefixes, cfg.ZmkRemoveKeycodePrefix)
	sort.Slice(prefixes, func(i, j int) bool { return len(prefixes[i]) > len(prefixes[j]) })

	return &resolver{
		cfg:        cfg,
		reg:        reg,
		layerNames: layerNames,
		diags:      diags,
		held:       held,
		rawMap:     rawMap,
		prefixes:   prefixes,
	}
}

// resolve turns one binding string into a legend. currentLayer is the index
// of the layer the binding sits on, or -1 for combos; keyPositions are the
// positions that trigger it, used for held-key bookkeeping. noShifted drops
// the shifted field from keycode-map legends, for contexts like combos and
// macro steps where it would be noise.
func (r *resolver) resolve(binding string, currentLayer int, keyPositions []int, noShifted bool) keymap.LayoutKey {
	return r.resolveChain(binding, currentLayer, keyPositions, noShifted, map[string]bool{})
}

func (r *resolver) resolveChain(
	binding string,
	currentLayer int,
	keyPositions []int,
	noShifted bool,
	seen map[string]bool,
) keymap.LayoutKey {
	if legend, ok := r.rawMap[binding]; ok {
		return legend
	}

	if r.cfg.SkipBindingParsing {
		return keymap.LayoutKey{Tap: binding}
	}

	fields := strings.Fields(binding)
	if len(fields) == 0 {
		return keymap.LayoutKey{}
	}

	ref, params := fields[0], fields[1:]

	if legend, ok := r.resolveBuiltin(ref, params, currentLayer, keyPositions, noShifted); ok {
		return legend
	}

	if desc, ok := r.reg.Lookup(ref); ok {
		if seen[ref] {
			r.diags.AddWarning(diagnostic.CodeCyclicBehavior,
				fmt.Sprintf("behavior %s references itself", ref), r.layerLabel(currentLayer), binding)

			return keymap.LayoutKey{Tap: binding}
		}

		seen[ref] = true
		defer delete(seen, ref)

		return r.resolveDescriptor(desc, binding, params, currentLayer, keyPositions, noShifted, seen)
	}

	// Unregistered references without parameters still make a usable legend.
	if len(params) == 0 || (len(params) == 1 && params[0] == "0") {
		return keymap.LayoutKey{Tap: ref}
	}

	r.diags.AddWarning(diagnostic.CodeUnresolvedReference,
		fmt.Sprintf("no behavior definition found for %s", ref), r.layerLabel(currentLayer), binding)

	return keymap.LayoutKey{Tap: binding}
}

func (r *resolver) resolveBuiltin(
	ref string,
	params []string,
	currentLayer int,
	keyPositions []int,
	noShifted bool,
) (keymap.LayoutKey, bool) {
	switch ref {
	case "&none":
		return keymap.LayoutKey{}, true

	case "&trans":
		return r.cfg.TransLegend, true

	case "&kp":
		return r.mapped(strings.Join(params, " "), noShifted), true

	case "&kt":
		key := r.mapped(strings.Join(params, " "), noShifted)

		return keymap.LayoutKey{
			Tap: key.Tap, Hold: r.cfg.ToggleLabel, Shifted: key.Shifted, Type: keymap.TypeToggle,
		}, true

	case "&bt":
		if len(params) == 0 {
			return keymap.LayoutKey{Tap: ref}, true
		}

		key := r.mapped(params[0], noShifted)
		if len(params) > 1 {
			key.Hold = params[1]
		}

		return key, true

	case "&out", "&ext_power", "&rgb_ug":
		return keymap.LayoutKey{
			Tap: strings.ReplaceAll(strings.Join(params, " "), "_", " "),
		}, true

	case "&mo":
		name, index, ok := r.layerTarget(params)
		if ok {
			r.held.activate(r.fromLayers(currentLayer), index, keyPositions)
		}

		return keymap.LayoutKey{Tap: name}, true

	case "&to", "&tog":
		name, _, _ := r.layerTarget(params)

		return keymap.LayoutKey{Tap: name, Hold: r.cfg.ToggleLabel, Type: keymap.TypeToggle}, true
	}

	return keymap.LayoutKey{}, false
}

func (r *resolver) resolveDescriptor(
	desc *behavior.Descriptor,
	binding string,
	params []string,
	currentLayer int,
	keyPositions []int,
	noShifted bool,
	seen map[string]bool,
) keymap.LayoutKey {
	switch desc.Kind {
	case behavior.KindHoldTap:
		if len(params) < 2 {
			r.diags.AddWarning(diagnostic.CodeMalformedBehavior,
				fmt.Sprintf("hold-tap %s needs two parameters", desc.Label),
				r.layerLabel(currentLayer), binding)

			return keymap.LayoutKey{Tap: binding}
		}

		hold := r.resolveChain(desc.HoldRef+" "+params[0], currentLayer, keyPositions, noShifted, seen)
		tap := r.resolveChain(desc.TapRef+" "+params[1], currentLayer, keyPositions, noShifted, seen)

		out := keymap.LayoutKey{Tap: tap.Tap, Hold: hold.Tap, Shifted: tap.Shifted}
		if desc.DisplayName != "" {
			out.Tap = desc.DisplayName
		}

		return out

	case behavior.KindMacro:
		var parts []string

		for _, step := range desc.Steps {
			stepRef, _, _ := strings.Cut(step, " ")
			if strings.HasPrefix(stepRef, "&macro_") {
				continue
			}

			key := r.resolveChain(step, currentLayer, keyPositions, true, seen)
			if key.Tap != "" {
				parts = append(parts, key.Tap)
			}
		}

		return keymap.LayoutKey{Tap: strings.Join(parts, " ")}

	case behavior.KindModMorph:
		base := r.resolveChain(desc.DefaultRef, currentLayer, keyPositions, true, seen)
		morphed := r.resolveChain(desc.MorphedRef, currentLayer, keyPositions, true, seen)

		return keymap.LayoutKey{Tap: base.Tap, Hold: base.Hold, Shifted: morphed.Tap}

	case behavior.KindStickyKey:
		inner := desc.InnerRef
		if len(params) > 0 {
			inner += " " + strings.Join(params, " ")
		}

		key := r.resolveChain(inner, currentLayer, keyPositions, noShifted, seen)

		label, keyType := r.cfg.StickyLabel, keymap.TypeSticky

		switch desc.Mode {
		case behavior.ModeToggle:
			label, keyType = r.cfg.ToggleLabel, keymap.TypeToggle
		case behavior.ModeTapToggle:
			label, keyType = r.cfg.TapToggleLabel, keymap.TypeTapToggle
		case behavior.ModeSticky:
		}

		return keymap.LayoutKey{Tap: key.Tap, Hold: label, Shifted: key.Shifted, Type: keyType}

	case behavior.KindBasic:
		return r.mapped(desc.Keycode, noShifted)
	}

	return keymap.LayoutKey{Tap: binding}
}

// mapped runs one keycode through the display pipeline: prefix removal,
// modifier-function unwrapping, keycode-map lookup and the fallback
// prettifying transforms.
func (r *resolver) mapped(keycode string, noShifted bool) keymap.LayoutKey {
	keycode = r.stripPrefixes(keycode)
	keycode, mods := r.unwrapModifierFns(keycode)

	legend, found := r.cfg.ZmkKeycodeMap[keycode]
	if !found {
		legend = keymap.LayoutKey{Tap: r.prettify(keycode)}
	}

	if noShifted {
		legend.Shifted = ""
	}

	return r.formatModified(legend, mods)
}

func (r *resolver) prettify(keycode string) string {
	if r.cfg.ModifierFnMap != nil {
		if mod, ok := zmkModKeycodes[keycode]; ok {
			return r.cfg.ModifierFnMap.Symbol(mod)
		}
	}

	display := numberCollapseRe.ReplaceAllString(keycode, "$1")
	display = strings.TrimPrefix(display, "C_")
	display = strings.TrimPrefix(display, "K_")
	display = strings.ReplaceAll(display, "BT_SEL", "BT")

	return strings.ReplaceAll(display, "_", " ")
}

func (r *resolver) stripPrefixes(keycode string) string {
	for _, prefix := range r.prefixes {
		if strings.HasPrefix(keycode, prefix) {
			return keycode[len(prefix):]
		}
	}

	return keycode
}

// layerTarget resolves a layer parameter to its display name. Parameters
// that are not valid indices fall back to their raw text with a warning.
func (r *resolver) layerTarget(params []string) (name string, index int, ok bool) {
	if len(params) == 0 {
		return "", -1, false
	}

	index, err := strconv.Atoi(params[0])
	if err != nil || index < 0 || index >= len(r.layerNames) {
		r.diags.AddWarning(diagnostic.CodeInvalidLayerIndex,
			fmt.Sprintf("layer parameter %q does not name a layer", params[0]), "", strings.Join(params, " "))

		return params[0], -1, false
	}

	return r.layerNames[index], index, true
}

func (r *resolver) layerLabel(currentLayer int) string {
	if currentLayer < 0 || currentLayer >= len(r.layerNames) {
		return ""
	}

	return r.layerNames[currentLayer]
}

func (r *resolver) fromLayers(currentLayer int) []int {
	if currentLayer < 0 {
		return nil
	}

	return []int{currentLayer}
}
