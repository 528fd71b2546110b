package parse

import (
	"sort"

	"github.com/caksoylar/keymap-drawer/keymap"
)

// activation is one (source layer, key position) pair that reaches a layer.
type activation struct {
	layer int
	pos   int
}

// activationTracker records which key positions are held to reach each
// layer. Activations must be fed in increasing target-layer order so that
// chains through intermediate layers propagate.
type activationTracker struct {
	markAlternate bool

	primary   map[int]map[activation]struct{}
	alternate map[int]map[activation]struct{}
}

func newActivationTracker(markAlternate bool) *activationTracker {
	return &activationTracker{
		markAlternate: markAlternate,
		primary:       make(map[int]map[activation]struct{}),
		alternate:     make(map[int]map[activation]struct{}),
	}
}

// activate records that holding keyPositions on any of fromLayers reaches
// toLayer. fromLayers may be empty (combos) or have several entries
// (conditional layers). Activations from a higher or equal layer index are
// ignored, and only the first source sequence per layer counts as primary;
// later sources are recorded as alternates when enabled, dropped otherwise.
func (t *activationTracker) activate(fromLayers []int, toLayer int, keyPositions []int) {
	for _, from := range fromLayers {
		if from >= toLayer {
			return
		}
	}

	if _, claimed := t.primary[toLayer]; claimed {
		if !t.markAlternate {
			return
		}

		set := t.alternate[toLayer]
		if set == nil {
			set = make(map[activation]struct{})
			t.alternate[toLayer] = set
		}

		addActivations(set, fromLayers, keyPositions)

		return
	}

	set := make(map[activation]struct{})
	addActivations(set, fromLayers, keyPositions)

	// Keys held to reach the source layers are also held here.
	for _, from := range fromLayers {
		for act := range t.primary[from] {
			set[act] = struct{}{}
		}
	}

	t.primary[toLayer] = set
}

func addActivations(set map[activation]struct{}, fromLayers []int, keyPositions []int) {
	for _, from := range fromLayers {
		for _, pos := range keyPositions {
			set[activation{layer: from, pos: pos}] = struct{}{}
		}
	}
}

// annotate writes held types into the resolved layers. Transparent keys
// that turn out to be activators lose their legend and keep only the type.
func (t *activationTracker) annotate(data *keymap.KeymapData, trans keymap.LayoutKey) {
	t.mark(data, t.primary, trans, keymap.TypeHeld)
	t.mark(data, t.alternate, trans, keymap.TypeHeldAlternate)
}

func (t *activationTracker) mark(
	data *keymap.KeymapData,
	sets map[int]map[activation]struct{},
	trans keymap.LayoutKey,
	keyType string,
) {
	for _, layerIndex := range sortedLayerIndices(sets) {
		if layerIndex < 0 || layerIndex >= len(data.Layers) {
			continue
		}

		keys := data.Layers[layerIndex].Keys

		for act := range sets[layerIndex] {
			if act.pos < 0 || act.pos >= len(keys) {
				continue
			}

			if keyType == keymap.TypeHeldAlternate && keys[act.pos].Type == keymap.TypeHeld {
				continue
			}

			if keys[act.pos] == trans {
				keys[act.pos] = keymap.LayoutKey{Type: keyType}
			} else {
				keys[act.pos].Type = keyType
			}
		}
	}
}

func sortedLayerIndices(sets map[int]map[activation]struct{}) []int {
	out := make([]int, 0, len(sets))
	for index := range sets {
		out = append(out, index)
	}

	sort.Ints(out)

	return out
}
