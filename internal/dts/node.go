package dts

import (
	"strconv"
	"strings"
)

// ValueKind discriminates the typed property value variant.
type ValueKind int

const (
	// KindBool is a value-less flag property ("hold-trigger-on-release;").
	KindBool ValueKind = iota
	// KindString is a single string property.
	KindString
	// KindStringList is a comma-separated list of strings.
	KindStringList
	// KindCells is one or more <...> cell groups, flattened in order.
	KindCells
	// KindPhandle is a bare node reference ("prop = &label;").
	KindPhandle
)

// Value is a tagged devicetree property value, resolved explicitly at each
// access site via the typed accessors.
type Value struct {
	kind  ValueKind
	items []string
}

// BoolValue returns a flag value.
func BoolValue() Value {
	return Value{kind: KindBool}
}

// StringValue returns a string-list value; a single item reads as a plain
// string.
func StringValue(items ...string) Value {
	if len(items) == 1 {
		return Value{kind: KindString, items: items}
	}

	return Value{kind: KindStringList, items: items}
}

// CellsValue returns a cell-array value from flattened cell tokens.
func CellsValue(cells ...string) Value {
	return Value{kind: KindCells, items: cells}
}

// PhandleValue returns a node-reference value for the given label.
func PhandleValue(label string) Value {
	return Value{kind: KindPhandle, items: []string{label}}
}

// Kind returns the value's variant tag.
func (v Value) Kind() ValueKind {
	return v.kind
}

// AsString returns the value as a single string. String lists return their
// first element.
func (v Value) AsString() (string, bool) {
	if (v.kind == KindString || v.kind == KindStringList) && len(v.items) > 0 {
		return v.items[0], true
	}

	return "", false
}

// AsStrings returns the value as a string list.
func (v Value) AsStrings() ([]string, bool) {
	if v.kind == KindString || v.kind == KindStringList {
		return v.items, true
	}

	return nil, false
}

// AsCells returns the flattened cell tokens of a cell-array value.
func (v Value) AsCells() ([]string, bool) {
	if v.kind != KindCells {
		return nil, false
	}

	return v.items, true
}

// AsInts parses a cell-array value as integers. Non-numeric cells make the
// conversion fail.
func (v Value) AsInts() ([]int, bool) {
	cells, ok := v.AsCells()
	if !ok {
		return nil, false
	}

	out := make([]int, 0, len(cells))

	for _, cell := range cells {
		n, err := parseInt(cell)
		if err != nil {
			return nil, false
		}

		out = append(out, n)
	}

	return out, true
}

// AsBindings splits a cell-array value into per-reference binding strings:
// <&kp A &mo 1> becomes ["&kp A", "&mo 1"]. Returns nil, false for values
// that contain no references.
func (v Value) AsBindings() ([]string, bool) {
	cells, ok := v.AsCells()
	if !ok {
		return nil, false
	}

	var out []string

	current := -1

	for _, cell := range cells {
		if strings.HasPrefix(cell, "&") {
			out = append(out, cell)
			current = len(out) - 1

			continue
		}

		if current >= 0 {
			out[current] += " " + cell
		}
	}

	return out, len(out) > 0
}

// AsPhandle returns the referenced label of a phandle value.
func (v Value) AsPhandle() (string, bool) {
	if v.kind != KindPhandle || len(v.items) == 0 {
		return "", false
	}

	return v.items[0], true
}

// Property is a named property in declaration order.
type Property struct {
	Name  string
	Value Value
}

// Node is a devicetree node: a name, an optional label, ordered properties
// and ordered children. Nodes are constructed by the parser and read-only
// afterwards.
type Node struct {
	Name     string
	Label    string
	Children []*Node

	props []Property
	index map[string]int
}

// SetProperty appends a property, or overrides the value of an existing one
// in place so that the original insertion order is preserved.
func (n *Node) SetProperty(name string, value Value) {
	if n.index == nil {
		n.index = map[string]int{}
	}

	if at, ok := n.index[name]; ok {
		n.props[at].Value = value

		return
	}

	n.index[name] = len(n.props)
	n.props = append(n.props, Property{Name: name, Value: value})
}

// Property returns the value of the named property.
func (n *Node) Property(name string) (Value, bool) {
	at, ok := n.index[name]
	if !ok {
		return Value{}, false
	}

	return n.props[at].Value, true
}

// Properties returns all properties in insertion order.
func (n *Node) Properties() []Property {
	return n.props
}

// Compatible returns the node's compatible strings, if any.
func (n *Node) Compatible() []string {
	val, ok := n.Property("compatible")
	if !ok {
		return nil
	}

	strs, _ := val.AsStrings()

	return strs
}

// StringProperty returns the first present string property among the given
// names. Used for display-name/label precedence chains.
func (n *Node) StringProperty(names ...string) (string, bool) {
	for _, name := range names {
		if val, ok := n.Property(name); ok {
			if s, ok := val.AsString(); ok {
				return s, true
			}
		}
	}

	return "", false
}

// Bindings returns the node's phandle-array property with the given name,
// split into per-reference binding strings.
func (n *Node) Bindings(name string) ([]string, bool) {
	val, ok := n.Property(name)
	if !ok {
		return nil, false
	}

	return val.AsBindings()
}

// parseInt parses a devicetree integer cell, accepting decimal and 0x hex
// forms and parenthesized plain numbers.
func parseInt(cell string) (int, error) {
	cell = strings.TrimSpace(cell)
	cell = strings.TrimPrefix(cell, "(")
	cell = strings.TrimSuffix(cell, ")")

	n, err := strconv.ParseInt(strings.TrimSpace(cell), 0, 64)

	return int(n), err
}
