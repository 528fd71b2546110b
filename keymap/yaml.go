package keymap

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// --- LayoutKey YAML methods ---

// UnmarshalYAML implements custom YAML unmarshaling for LayoutKey.
// Accepts a plain scalar (string or number, used as the tap field), null for
// an empty key, or a full mapping using either the short aliases (t, h, s)
// or the long field names.
func (k *LayoutKey) UnmarshalYAML(node *yaml.Node) error {
	switch node.Kind {
	case yaml.ScalarNode:
		*k = LayoutKey{}
		if node.Tag != "!!null" {
			k.Tap = node.Value
		}

		return nil

	case yaml.MappingNode:
		*k = LayoutKey{}

		for i := 0; i+1 < len(node.Content); i += 2 {
			name := node.Content[i].Value
			value := node.Content[i+1]

			switch name {
			case "t", "tap":
				k.Tap = scalarString(value)
			case "h", "hold":
				k.Hold = scalarString(value)
			case "s", "shifted":
				k.Shifted = scalarString(value)
			case "type":
				k.Type = scalarString(value)
			default:
				// Tolerate renderer-only fields like left/right labels.
			}
		}

		return nil

	default:
		return fmt.Errorf("expected scalar or mapping for key spec, got %v", node.Kind)
	}
}

// MarshalYAML implements custom YAML marshaling for LayoutKey.
// Outputs a plain string for tap-only legends, otherwise a compact mapping
// with only the non-empty fields.
func (k LayoutKey) MarshalYAML() (any, error) {
	if k.IsSimple() {
		return k.Tap, nil
	}

	return keyMappingNode(k), nil
}

// FromKeySpec derives a full LayoutKey from a YAML-ish key spec value: a
// string or integer fills the tap field, nil yields an empty key, and a
// string-keyed map sets individual fields.
func FromKeySpec(spec any) (LayoutKey, error) {
	switch v := spec.(type) {
	case nil:
		return LayoutKey{}, nil
	case string:
		return LayoutKey{Tap: v}, nil
	case int:
		return LayoutKey{Tap: fmt.Sprint(v)}, nil
	case LayoutKey:
		return v, nil
	case map[string]any:
		var key LayoutKey

		for name, val := range v {
			s := fmt.Sprint(val)

			switch name {
			case "t", "tap":
				key.Tap = s
			case "h", "hold":
				key.Hold = s
			case "s", "shifted":
				key.Shifted = s
			case "type":
				key.Type = s
			}
		}

		return key, nil
	default:
		return LayoutKey{}, fmt.Errorf("invalid key specification %v, provide a mapping, string or null", spec)
	}
}

// --- ComboSpec YAML methods ---

// UnmarshalYAML implements custom YAML unmarshaling for ComboSpec, accepting
// the short aliases used in dumped keymaps alongside the long field names.
func (c *ComboSpec) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.MappingNode {
		return fmt.Errorf("expected mapping for combo spec, got %v", node.Kind)
	}

	*c = ComboSpec{}

	for i := 0; i+1 < len(node.Content); i += 2 {
		name := node.Content[i].Value
		value := node.Content[i+1]

		var err error

		switch name {
		case "p", "key_positions":
			err = value.Decode(&c.KeyPositions)
		case "k", "key":
			err = value.Decode(&c.Key)
		case "l", "layers":
			err = value.Decode(&c.Layers)
		case "a", "align":
			c.Align = scalarString(value)
		case "o", "offset":
			err = value.Decode(&c.Offset)
		case "type":
			c.Type = scalarString(value)
		case "w", "width":
			err = value.Decode(&c.Width)
		case "h", "height":
			err = value.Decode(&c.Height)
		case "r", "rotation":
			err = value.Decode(&c.Rotation)
		case "d", "dendron":
			err = value.Decode(&c.Dendron)
		case "draw_separate":
			err = value.Decode(&c.DrawSeparate)
		case "hidden":
			err = value.Decode(&c.Hidden)
		}

		if err != nil {
			return fmt.Errorf("combo field %q: %w", name, err)
		}
	}

	// Partial specs (e.g. per-combo config overrides) may omit positions
	// entirely, but a present positions list must describe a real combo.
	if len(c.KeyPositions) == 1 {
		return fmt.Errorf("need at least two key positions for combo but got %v", c.KeyPositions)
	}

	return nil
}

// MarshalYAML implements custom YAML marshaling for ComboSpec using the short
// aliases and omitting unset fields.
func (c ComboSpec) MarshalYAML() (any, error) {
	node := &yaml.Node{Kind: yaml.MappingNode}

	appendPair(node, "p", intSeqNode(c.KeyPositions))
	appendPair(node, "k", keyValueNode(c.Key))

	if len(c.Layers) > 0 {
		appendPair(node, "l", strSeqNode(c.Layers))
	}

	if c.Align != "" {
		appendPair(node, "a", scalarNode(c.Align))
	}

	if c.Offset != 0 {
		appendPair(node, "o", floatNode(c.Offset))
	}

	if c.Type != "" {
		appendPair(node, "type", scalarNode(c.Type))
	}

	if c.Width != 0 {
		appendPair(node, "w", floatNode(c.Width))
	}

	if c.Height != 0 {
		appendPair(node, "h", floatNode(c.Height))
	}

	if c.Rotation != 0 {
		appendPair(node, "r", floatNode(c.Rotation))
	}

	if c.Dendron != nil {
		appendPair(node, "d", boolNode(*c.Dendron))
	}

	if c.DrawSeparate != nil {
		appendPair(node, "draw_separate", boolNode(*c.DrawSeparate))
	}

	if c.Hidden {
		appendPair(node, "hidden", boolNode(true))
	}

	return node, nil
}

// ApplyOverrides merges non-zero fields of an override spec (e.g. from
// per-combo configuration) into the combo.
func (c *ComboSpec) ApplyOverrides(o ComboSpec) {
	if len(o.KeyPositions) > 0 {
		c.KeyPositions = o.KeyPositions
	}
	if !o.Key.IsEmpty() {
		c.Key = o.Key
	}
	if len(o.Layers) > 0 {
		c.Layers = o.Layers
	}
	if o.Align != "" {
		c.Align = o.Align
	}
	if o.Offset != 0 {
		c.Offset = o.Offset
	}
	if o.Type != "" {
		c.Type = o.Type
	}
	if o.Width != 0 {
		c.Width = o.Width
	}
	if o.Height != 0 {
		c.Height = o.Height
	}
	if o.Rotation != 0 {
		c.Rotation = o.Rotation
	}
	if o.Dendron != nil {
		c.Dendron = o.Dendron
	}
	if o.DrawSeparate != nil {
		c.DrawSeparate = o.DrawSeparate
	}
	if o.Hidden {
		c.Hidden = true
	}
}

// --- KeymapData YAML methods ---

// MarshalYAML implements YAML marshaling for KeymapData, preserving layer
// declaration order.
func (d KeymapData) MarshalYAML() (any, error) {
	return d.Dump(0), nil
}

// Dump returns a YAML-marshalable view of the keymap. When columns is
// positive, each layer's keys are chunked into rows of that many keys for
// readability.
func (d *KeymapData) Dump(columns int) *yaml.Node {
	layers := &yaml.Node{Kind: yaml.MappingNode}

	for _, layer := range d.Layers {
		keys := &yaml.Node{Kind: yaml.SequenceNode}

		if columns > 0 {
			for start := 0; start < len(layer.Keys); start += columns {
				end := min(start+columns, len(layer.Keys))
				row := &yaml.Node{Kind: yaml.SequenceNode, Style: yaml.FlowStyle}

				for _, key := range layer.Keys[start:end] {
					row.Content = append(row.Content, keyValueNode(key))
				}

				keys.Content = append(keys.Content, row)
			}
		} else {
			for _, key := range layer.Keys {
				keys.Content = append(keys.Content, keyValueNode(key))
			}
		}

		appendPair(layers, layer.Name, keys)
	}

	doc := &yaml.Node{Kind: yaml.MappingNode}
	appendPair(doc, "layers", layers)

	if len(d.Combos) > 0 {
		combos := &yaml.Node{Kind: yaml.SequenceNode}

		for _, combo := range d.Combos {
			val, _ := combo.MarshalYAML()
			combos.Content = append(combos.Content, val.(*yaml.Node))
		}

		appendPair(doc, "combos", combos)
	}

	return doc
}

// UnmarshalYAML implements YAML unmarshaling for KeymapData, flattening
// column-chunked layer rows back into flat key sequences.
func (d *KeymapData) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.MappingNode {
		return fmt.Errorf("expected mapping for keymap, got %v", node.Kind)
	}

	*d = KeymapData{}

	for i := 0; i+1 < len(node.Content); i += 2 {
		switch node.Content[i].Value {
		case "layers":
			if err := d.unmarshalLayers(node.Content[i+1]); err != nil {
				return err
			}
		case "combos":
			if err := node.Content[i+1].Decode(&d.Combos); err != nil {
				return fmt.Errorf("combos: %w", err)
			}
		}
	}

	return nil
}

func (d *KeymapData) unmarshalLayers(node *yaml.Node) error {
	if node.Kind != yaml.MappingNode {
		return fmt.Errorf("expected mapping for layers, got %v", node.Kind)
	}

	for i := 0; i+1 < len(node.Content); i += 2 {
		name := node.Content[i].Value
		seq := node.Content[i+1]

		if seq.Kind != yaml.SequenceNode {
			return fmt.Errorf("layer %q: expected sequence of keys", name)
		}

		layer := Layer{Name: name}

		for _, item := range seq.Content {
			// A nested sequence is a row from a column-chunked dump.
			if item.Kind == yaml.SequenceNode {
				for _, sub := range item.Content {
					var key LayoutKey
					if err := sub.Decode(&key); err != nil {
						return fmt.Errorf("layer %q: %w", name, err)
					}

					layer.Keys = append(layer.Keys, key)
				}

				continue
			}

			var key LayoutKey
			if err := item.Decode(&key); err != nil {
				return fmt.Errorf("layer %q: %w", name, err)
			}

			layer.Keys = append(layer.Keys, key)
		}

		d.Layers = append(d.Layers, layer)
	}

	return nil
}

// --- node construction helpers ---

func scalarString(node *yaml.Node) string {
	if node.Tag == "!!null" {
		return ""
	}

	return node.Value
}

func scalarNode(s string) *yaml.Node {
	node := &yaml.Node{Kind: yaml.ScalarNode, Value: s}
	if s == "" {
		node.Style = yaml.DoubleQuotedStyle
	}

	return node
}

func floatNode(f float64) *yaml.Node {
	return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!float", Value: fmt.Sprint(f)}
}

func boolNode(b bool) *yaml.Node {
	return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!bool", Value: fmt.Sprint(b)}
}

func intSeqNode(vals []int) *yaml.Node {
	node := &yaml.Node{Kind: yaml.SequenceNode, Style: yaml.FlowStyle}
	for _, v := range vals {
		node.Content = append(node.Content, &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!int", Value: fmt.Sprint(v)})
	}

	return node
}

func strSeqNode(vals []string) *yaml.Node {
	node := &yaml.Node{Kind: yaml.SequenceNode, Style: yaml.FlowStyle}
	for _, v := range vals {
		node.Content = append(node.Content, scalarNode(v))
	}

	return node
}

func keyMappingNode(k LayoutKey) *yaml.Node {
	node := &yaml.Node{Kind: yaml.MappingNode, Style: yaml.FlowStyle}

	if k.Tap != "" || k.IsSimple() {
		appendPair(node, "t", scalarNode(k.Tap))
	}

	if k.Hold != "" {
		appendPair(node, "h", scalarNode(k.Hold))
	}

	if k.Shifted != "" {
		appendPair(node, "s", scalarNode(k.Shifted))
	}

	if k.Type != "" {
		appendPair(node, "type", scalarNode(k.Type))
	}

	return node
}

func keyValueNode(k LayoutKey) *yaml.Node {
	if k.IsSimple() {
		return scalarNode(k.Tap)
	}

	return keyMappingNode(k)
}

func appendPair(mapping *yaml.Node, key string, value *yaml.Node) {
	mapping.Content = append(mapping.Content,
		&yaml.Node{Kind: yaml.ScalarNode, Value: key}, value)
}
