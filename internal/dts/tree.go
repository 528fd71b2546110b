package dts

// Tree is a parsed devicetree document with lookup indexes over the node
// tree. It is built once per document and read-only afterwards.
type Tree struct {
	Root *Node

	compatibles map[string][]*Node
}

func newTree(root *Node) *Tree {
	t := &Tree{Root: root, compatibles: map[string][]*Node{}}
	t.indexCompatibles(root)

	return t
}

func (t *Tree) indexCompatibles(node *Node) {
	for _, value := range node.Compatible() {
		t.compatibles[value] = append(t.compatibles[value], node)
	}

	for _, child := range node.Children {
		t.indexCompatibles(child)
	}
}

// CompatibleNodes returns all nodes carrying the given compatible value, in
// document order.
func (t *Tree) CompatibleNodes(value string) []*Node {
	return t.compatibles[value]
}

// Section locates a conventional top-level section node (keymap or combos)
// by name, searching breadth-first so the shallowest match wins. Returns
// MissingSectionError when absent, which callers may treat as recoverable.
func (t *Tree) Section(name string) (*Node, error) {
	queue := []*Node{t.Root}

	for len(queue) > 0 {
		node := queue[0]
		queue = queue[1:]

		if node.Name == name {
			return node, nil
		}

		queue = append(queue, node.Children...)
	}

	return nil, &MissingSectionError{Section: name}
}

// ChosenPath returns the phandle label of a property in a chosen node, e.g.
// the matrix transform selection.
func (t *Tree) ChosenPath(property string) (string, bool) {
	for _, chosen := range t.nodesNamed("chosen") {
		if val, ok := chosen.Property(property); ok {
			if label, ok := val.AsPhandle(); ok {
				return label, true
			}
		}
	}

	return "", false
}

// Walk visits every node in document order, root first.
func (t *Tree) Walk(visit func(*Node)) {
	var walk func(*Node)

	walk = func(node *Node) {
		visit(node)

		for _, child := range node.Children {
			walk(child)
		}
	}

	walk(t.Root)
}

func (t *Tree) nodesNamed(name string) []*Node {
	var out []*Node

	t.Walk(func(node *Node) {
		if node.Name == name {
			out = append(out, node)
		}
	})

	return out
}
