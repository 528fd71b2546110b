package behavior

import (
	"fmt"

	"github.com/caksoylar/keymap-drawer/internal/diagnostic"
	"github.com/caksoylar/keymap-drawer/internal/dts"
)

// Compatible values recognized by the registry. Anything else is ignored.
const (
	compatHoldTap       = "zmk,behavior-hold-tap"
	compatMacro         = "zmk,behavior-macro"
	compatMacroOneParam = "zmk,behavior-macro-one-param"
	compatMacroTwoParam = "zmk,behavior-macro-two-param"
	compatModMorph      = "zmk,behavior-mod-morph"
	compatStickyKey     = "zmk,behavior-sticky-key"
	compatKeyToggle     = "zmk,behavior-key-toggle"
)

// Registry maps behavior reference labels (with the leading "&") to their
// descriptors. It is built once per document before any resolution begins and
// is immutable afterwards.
type Registry struct {
	byLabel map[string]*Descriptor
}

// Lookup returns the descriptor for a reference label like "&mt".
func (r *Registry) Lookup(ref string) (*Descriptor, bool) {
	d, ok := r.byLabel[ref]

	return d, ok
}

// Len returns the number of registered behaviors.
func (r *Registry) Len() int {
	return len(r.byLabel)
}

// add registers a descriptor unless the label is already taken; the first
// definition wins, mirroring permissive real-world configs.
func (r *Registry) add(d *Descriptor) {
	if _, exists := r.byLabel[d.Label]; exists {
		return
	}

	r.byLabel[d.Label] = d
}

// Build scans the document for nodes carrying recognized compatible values
// and constructs the behavior registry, seeded with the firmware's built-in
// behaviors. Malformed behavior nodes are reported to diags and skipped.
func Build(tree *dts.Tree, diags *diagnostic.Diagnostics) *Registry {
	r := &Registry{byLabel: map[string]*Descriptor{}}

	for _, d := range builtins() {
		r.add(d)
	}

	for _, node := range tree.CompatibleNodes(compatHoldTap) {
		label, refs, ok := behaviorBindings(node, 2, diags)
		if !ok {
			continue
		}

		display, _ := node.StringProperty("display-name")
		r.add(&Descriptor{
			Kind:        KindHoldTap,
			Label:       label,
			HoldRef:     refs[0],
			TapRef:      refs[1],
			DisplayName: display,
		})
	}

	macroCompats := []struct {
		compat string
		params int
	}{
		{compatMacro, 0},
		{compatMacroOneParam, 1},
		{compatMacroTwoParam, 2},
	}

	for _, mc := range macroCompats {
		for _, node := range tree.CompatibleNodes(mc.compat) {
			label, ok := refLabel(node, diags)
			if !ok {
				continue
			}

			steps, ok := node.Bindings("bindings")
			if !ok {
				diags.AddWarning(diagnostic.CodeMalformedBehavior,
					fmt.Sprintf("cannot parse bindings for macro %q", node.Name), "", label)

				continue
			}

			r.add(&Descriptor{Kind: KindMacro, Label: label, BoundParams: mc.params, Steps: steps})
		}
	}

	for _, node := range tree.CompatibleNodes(compatModMorph) {
		label, refs, ok := behaviorBindings(node, 2, diags)
		if !ok {
			continue
		}

		var mods []string
		if val, found := node.Property("mods"); found {
			mods, _ = val.AsCells()
		}

		r.add(&Descriptor{
			Kind:       KindModMorph,
			Label:      label,
			DefaultRef: refs[0],
			MorphedRef: refs[1],
			Mods:       mods,
		})
	}

	for _, node := range tree.CompatibleNodes(compatStickyKey) {
		label, refs, ok := behaviorBindings(node, 1, diags)
		if !ok {
			continue
		}

		r.add(&Descriptor{Kind: KindStickyKey, Label: label, InnerRef: refs[0], Mode: ModeSticky})
	}

	for _, node := range tree.CompatibleNodes(compatKeyToggle) {
		label, refs, ok := behaviorBindings(node, 1, diags)
		if !ok {
			continue
		}

		r.add(&Descriptor{Kind: KindStickyKey, Label: label, InnerRef: refs[0], Mode: ModeToggle})
	}

	return r
}

// builtins returns descriptors for firmware built-in behaviors that are not
// declared in keymap sources.
func builtins() []*Descriptor {
	return []*Descriptor{
		{Kind: KindHoldTap, Label: "&mt", HoldRef: "&kp", TapRef: "&kp"},
		{Kind: KindHoldTap, Label: "&lt", HoldRef: "&mo", TapRef: "&kp"},
		{Kind: KindModMorph, Label: "&gresc", DefaultRef: "&kp ESC", MorphedRef: "&kp GRAVE"},
		{Kind: KindStickyKey, Label: "&sk", InnerRef: "&kp", Mode: ModeSticky},
		{Kind: KindStickyKey, Label: "&sl", InnerRef: "&mo", Mode: ModeSticky},
	}
}

// behaviorBindings extracts the label and the first n binding references of
// a behavior node.
func behaviorBindings(node *dts.Node, n int, diags *diagnostic.Diagnostics) (string, []string, bool) {
	label, ok := refLabel(node, diags)
	if !ok {
		return "", nil, false
	}

	refs, ok := node.Bindings("bindings")
	if !ok || len(refs) < n {
		diags.AddWarning(diagnostic.CodeMalformedBehavior,
			fmt.Sprintf("cannot parse bindings for behavior %q", node.Name), "", label)

		return "", nil, false
	}

	return label, refs[:n], true
}

// refLabel derives the registry key for a behavior node from its label,
// falling back to the node name.
func refLabel(node *dts.Node, diags *diagnostic.Diagnostics) (string, bool) {
	name := node.Label
	if name == "" {
		name = node.Name
	}

	if name == "" || name == "/" {
		diags.AddWarning(diagnostic.CodeMalformedBehavior, "cannot find label for behavior node", "", "")

		return "", false
	}

	return "&" + name, true
}
