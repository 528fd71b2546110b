package keymap

// Pre-defined values for LayoutKey.Type. An empty type means a plain key;
// anything else selects a styling class in the renderer.
const (
	TypeHeld          = "held"
	TypeHeldAlternate = "held-alternate"
	TypeTrans         = "trans"
	TypeSticky        = "sticky"
	TypeToggle        = "toggle"
	TypeTapToggle     = "tap-toggle"
	TypeGhost         = "ghost"
	TypeCustom        = "custom"
)

// LayoutKey represents a single key legend in the keymap. It has a tap field
// by default and can optionally carry hold or shifted fields, or a type that
// marks it as held, transparent etc.
type LayoutKey struct {
	Tap     string
	Hold    string
	Shifted string
	Type    string
}

// IsEmpty returns true if no field of the legend is set.
func (k LayoutKey) IsEmpty() bool {
	return k == LayoutKey{}
}

// IsSimple returns true if the legend consists of only a tap field, so it can
// be serialized as a plain string.
func (k LayoutKey) IsSimple() bool {
	return k.Hold == "" && k.Shifted == "" && k.Type == ""
}

// Merge returns a copy of base with every non-empty field of k applied on
// top. Used when rebasing a parse onto an earlier, hand-edited keymap.
func (k LayoutKey) Merge(base LayoutKey) LayoutKey {
	out := base
	if k.Tap != "" {
		out.Tap = k.Tap
	}
	if k.Hold != "" {
		out.Hold = k.Hold
	}
	if k.Shifted != "" {
		out.Shifted = k.Shifted
	}
	if k.Type != "" {
		out.Type = k.Type
	}
	return out
}

// ComboSpec represents a combo: the key positions that trigger it, the legend
// it activates and the layers it is present on. An empty Layers list means the
// combo is active on all layers. The drawing-related fields can be filled in
// from per-combo configuration overrides.
type ComboSpec struct {
	KeyPositions []int
	Key          LayoutKey
	Layers       []string

	Align        string
	Offset       float64
	Type         string
	Width        float64
	Height       float64
	Rotation     float64
	Dendron      *bool
	DrawSeparate *bool
	Hidden       bool
}

// Layer is a named, position-indexed sequence of key legends. Position i is
// the i'th binding declared for the layer, matching firmware key numbering.
type Layer struct {
	Name string
	Keys []LayoutKey
}

// KeymapData is the full parse result: layers in declaration order plus
// combos. It is handed to the rendering engine as-is and never mutated by the
// parsing core after being returned.
type KeymapData struct {
	Layers []Layer
	Combos []ComboSpec
}

// LayerNames returns the layer names in declaration order.
func (d *KeymapData) LayerNames() []string {
	names := make([]string, len(d.Layers))
	for i, layer := range d.Layers {
		names[i] = layer.Name
	}
	return names
}

// Layer returns the layer with the given name, or nil if it does not exist.
func (d *KeymapData) Layer(name string) *Layer {
	for i := range d.Layers {
		if d.Layers[i].Name == name {
			return &d.Layers[i]
		}
	}
	return nil
}
