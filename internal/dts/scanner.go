package dts

import (
	"strings"
)

type tokenKind int

const (
	tEOF tokenKind = iota
	tIdent
	tString
	tPunct
)

type token struct {
	kind tokenKind
	text string
	line int
}

// scanner splits preprocessed devicetree text into identifiers, strings and
// punctuation. Cell arrays are read out-of-band via readCells since their
// contents follow different lexical rules (parenthesized expressions).
type scanner struct {
	src  string
	pos  int
	line int

	peeked *token
}

func newScanner(src string) *scanner {
	return &scanner{src: src, line: 1}
}

func (s *scanner) peek() token {
	if s.peeked == nil {
		tok := s.scan()
		s.peeked = &tok
	}

	return *s.peeked
}

func (s *scanner) next() token {
	if s.peeked != nil {
		tok := *s.peeked
		s.peeked = nil

		return tok
	}

	return s.scan()
}

func (s *scanner) scan() token {
	s.skipSpace()

	if s.pos >= len(s.src) {
		return token{kind: tEOF, line: s.line}
	}

	ch := s.src[s.pos]
	line := s.line

	if ch == '"' {
		s.pos++
		start := s.pos

		for s.pos < len(s.src) && s.src[s.pos] != '"' {
			if s.src[s.pos] == '\\' {
				s.pos++
			}

			if s.pos < len(s.src) && s.src[s.pos] == '\n' {
				s.line++
			}

			s.pos++
		}

		text := s.src[start:min(s.pos, len(s.src))]
		if s.pos < len(s.src) {
			s.pos++
		}

		return token{kind: tString, text: text, line: line}
	}

	if isNameByte(ch) {
		start := s.pos

		for s.pos < len(s.src) {
			next := s.src[s.pos]

			// A comma is part of a name ("zmk,matrix-transform") only when
			// glued to further name bytes; otherwise it is a list separator.
			if next == ',' {
				if s.pos+1 < len(s.src) && isNameByte(s.src[s.pos+1]) {
					s.pos++

					continue
				}

				break
			}

			if !isNameByte(next) {
				break
			}

			s.pos++
		}

		return token{kind: tIdent, text: s.src[start:s.pos], line: line}
	}

	s.pos++

	return token{kind: tPunct, text: string(ch), line: line}
}

// readCells consumes the contents of a <...> cell group, assuming the opening
// '<' was already scanned. Whitespace separates cells except inside
// parenthesized expressions, which stay one cell.
func (s *scanner) readCells() ([]string, bool) {
	var cells []string

	var cur strings.Builder

	depth := 0

	flush := func() {
		if cur.Len() > 0 {
			cells = append(cells, cur.String())
			cur.Reset()
		}
	}

	for s.pos < len(s.src) {
		ch := s.src[s.pos]

		switch {
		case ch == '>' && depth == 0:
			s.pos++
			flush()

			return cells, true

		case ch == '(':
			depth++
			cur.WriteByte(ch)
			s.pos++

		case ch == ')':
			depth--
			cur.WriteByte(ch)
			s.pos++

		case ch == ' ' || ch == '\t' || ch == '\n' || ch == '\r':
			if ch == '\n' {
				s.line++
			}

			if depth > 0 {
				cur.WriteByte(' ')
			} else {
				flush()
			}

			s.pos++

		default:
			cur.WriteByte(ch)
			s.pos++
		}
	}

	return nil, false
}

func (s *scanner) skipSpace() {
	for s.pos < len(s.src) {
		switch s.src[s.pos] {
		case '\n':
			s.line++
			s.pos++
		case ' ', '\t', '\r':
			s.pos++
		default:
			return
		}
	}
}

// isNameByte covers devicetree node and property name characters, including
// '#' for cell-count properties and ',' for compatible-style names.
func isNameByte(ch byte) bool {
	switch {
	case ch >= 'a' && ch <= 'z', ch >= 'A' && ch <= 'Z', ch >= '0' && ch <= '9':
		return true
	case ch == '_' || ch == '-' || ch == '.' || ch == '+' || ch == '#' || ch == '@' || ch == '?':
		return true
	default:
		return false
	}
}
