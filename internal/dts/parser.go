package dts

import (
	"fmt"
	"strings"
)

// Protected section names: malformed syntax inside these subtrees fails the
// document, anywhere else it is skipped.
var protectedSections = map[string]bool{"keymap": true, "combos": true}

// Parse parses preprocessed devicetree text into a Tree rooted at an
// artificial top-level node.
func Parse(src string) (*Tree, error) {
	p := &parser{sc: newScanner(src)}

	root := &Node{Name: "/"}

	err := p.parseBody(root, nil, false, true)
	if err != nil {
		return nil, err
	}

	return newTree(root), nil
}

type parser struct {
	sc *scanner
}

// parseBody parses node-body items into parent until the closing brace (or
// EOF at the top level). path is the ancestor chain used for error context;
// protected marks subtrees where malformed syntax is fatal.
func (p *parser) parseBody(parent *Node, path []string, protected, top bool) error {
	for {
		tok := p.sc.peek()

		switch {
		case tok.kind == tEOF:
			if !top {
				return p.fail(path, tok.line, "unexpected end of input in node body")
			}

			return nil

		case tok.kind == tPunct && tok.text == "}":
			if top {
				// Stray closing brace at the top level; drop it.
				p.sc.next()

				continue
			}

			return nil

		case tok.kind == tPunct && tok.text == ";":
			p.sc.next()

		default:
			err := p.parseItem(parent, path, protected, top)
			if err != nil {
				return err
			}
		}
	}
}

// parseItem parses one node or property declaration.
func (p *parser) parseItem(parent *Node, path []string, protected, top bool) error {
	var label, name string

	tok := p.sc.next()

	switch {
	case tok.kind == tIdent:
		name = tok.text

	case tok.kind == tPunct && tok.text == "/":
		// The root node, "/ { ... };".
		name = "/"

	case tok.kind == tPunct && tok.text == "&":
		// Overlay reference, "&label { ... };".
		ref := p.sc.next()
		if ref.kind != tIdent {
			return p.recover(parent, path, protected, ref.line, "dangling & reference")
		}

		name = "&" + ref.text

	default:
		return p.recover(parent, path, protected, tok.line, fmt.Sprintf("unexpected token %q", tok.text))
	}

	// Label syntax glues "label: name" together.
	if next := p.sc.peek(); next.kind == tPunct && next.text == ":" {
		p.sc.next()

		nameTok := p.sc.next()
		if nameTok.kind != tIdent {
			return p.recover(parent, path, protected, nameTok.line, "missing node name after label")
		}

		label, name = name, nameTok.text
	}

	switch next := p.sc.peek(); {
	case next.kind == tPunct && next.text == "{":
		p.sc.next()

		child := &Node{Name: name, Label: label}
		childPath := append(append([]string{}, path...), name)
		childProtected := protected || protectedSections[name]

		err := p.parseBody(child, childPath, childProtected, false)
		if err != nil {
			return err
		}

		if closing := p.sc.next(); !(closing.kind == tPunct && closing.text == "}") {
			return p.fail(childPath, closing.line, "unbalanced node body")
		}

		parent.Children = append(parent.Children, child)

		return nil

	case next.kind == tPunct && next.text == "=":
		p.sc.next()

		value, err := p.parseValue(path, name)
		if err != nil {
			if protected {
				return err
			}

			p.skipToSemicolon()

			return nil
		}

		parent.SetProperty(name, value)

		return nil

	case next.kind == tPunct && next.text == ";":
		p.sc.next()
		parent.SetProperty(name, BoolValue())

		return nil

	default:
		return p.recover(parent, path, protected, next.line,
			fmt.Sprintf("unexpected token %q after %q", next.text, name))
	}
}

// parseValue parses the right-hand side of a property: strings, cell groups
// or a phandle reference, with comma-separated repetitions flattened.
func (p *parser) parseValue(path []string, name string) (Value, error) {
	var strs []string

	var cells []string

	phandle := ""

	for {
		tok := p.sc.next()

		switch {
		case tok.kind == tString:
			strs = append(strs, tok.text)

		case tok.kind == tPunct && tok.text == "<":
			group, ok := p.sc.readCells()
			if !ok {
				return Value{}, p.fail(path, tok.line, fmt.Sprintf("unterminated cell array for %q", name))
			}

			cells = append(cells, group...)

		case tok.kind == tPunct && tok.text == "&":
			ref := p.sc.next()
			if ref.kind != tIdent {
				return Value{}, p.fail(path, tok.line, fmt.Sprintf("dangling & reference for %q", name))
			}

			phandle = ref.text

		default:
			return Value{}, p.fail(path, tok.line, fmt.Sprintf("unexpected token %q in value of %q", tok.text, name))
		}

		switch sep := p.sc.next(); {
		case sep.kind == tPunct && sep.text == ",":
			continue
		case sep.kind == tPunct && sep.text == ";":
			switch {
			case len(cells) > 0:
				return CellsValue(cells...), nil
			case phandle != "":
				return PhandleValue(phandle), nil
			default:
				return StringValue(strs...), nil
			}
		default:
			return Value{}, p.fail(path, sep.line, fmt.Sprintf("missing semicolon after %q", name))
		}
	}
}

// recover either skips the malformed declaration or, inside a protected
// section, turns it into a structural error.
func (p *parser) recover(parent *Node, path []string, protected bool, line int, msg string) error {
	if protected || protectedSections[parent.Name] {
		return p.fail(path, line, msg)
	}

	p.skipToSemicolon()

	return nil
}

// skipToSemicolon drops tokens until the end of the current declaration,
// balancing any braces opened along the way.
func (p *parser) skipToSemicolon() {
	depth := 0

	for {
		tok := p.sc.next()

		switch {
		case tok.kind == tEOF:
			return

		case tok.kind == tPunct && tok.text == "{":
			depth++

		case tok.kind == tPunct && tok.text == "}":
			if depth == 0 {
				return
			}

			depth--

		case tok.kind == tPunct && tok.text == ";":
			if depth == 0 {
				return
			}
		}
	}
}

func (p *parser) fail(path []string, line int, msg string) error {
	return &StructuralParseError{Path: "/" + strings.Join(path, "/"), Line: line, Message: msg}
}
