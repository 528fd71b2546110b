package preproc

import (
	"errors"
	"fmt"
	"strings"
)

// maxExpansions bounds total macro expansions within one line to keep
// self-referential macros from looping.
const maxExpansions = 512

// errUnterminatedArgs marks a macro invocation whose argument list did not
// close within the current line, so the caller can pull in following lines.
var errUnterminatedArgs = errors.New("unterminated macro argument list")

// expandLine expands all macro invocations in one line of source text.
func (p *Preprocessor) expandLine(line string) (string, error) {
	e := &expander{p: p}

	return e.expand(line)
}

// expander streams bytes from a stack of pending input chunks, so that macro
// replacement text is rescanned for further expansions.
type expander struct {
	p          *Preprocessor
	stack      []chunk
	expansions int
}

type chunk struct {
	s string
	i int
}

func (e *expander) expand(line string) (string, error) {
	e.stack = []chunk{{s: line}}

	var out strings.Builder

	for {
		ch, ok := e.next()
		if !ok {
			return out.String(), nil
		}

		if ch == '"' || ch == '\'' {
			out.WriteByte(ch)
			e.copyQuoted(&out, ch)

			continue
		}

		if !isIdentStart(ch) {
			out.WriteByte(ch)

			continue
		}

		ident := e.readIdent(ch)

		if macro, ok := e.p.fn[ident]; ok && e.peekIs('(') {
			e.next()

			args, ok := e.readArgs()
			if !ok {
				return "", fmt.Errorf("%w for %s", errUnterminatedArgs, ident)
			}

			err := e.push(substitute(macro, args))
			if err != nil {
				return "", err
			}

			continue
		}

		if val, ok := e.p.obj[ident]; ok {
			err := e.push(val)
			if err != nil {
				return "", err
			}

			continue
		}

		out.WriteString(ident)
	}
}

// substitute replaces parameter names and __VA_ARGS__ in a function macro
// body with the invocation arguments.
func substitute(macro fnMacro, args []string) string {
	byName := map[string]string{}

	for i, param := range macro.params {
		if i < len(args) {
			byName[param] = args[i]
		} else {
			byName[param] = ""
		}
	}

	if macro.variadic {
		if len(args) > len(macro.params) {
			byName["__VA_ARGS__"] = strings.Join(args[len(macro.params):], ", ")
		} else {
			byName["__VA_ARGS__"] = ""
		}
	}

	var out strings.Builder

	body := macro.body
	for i := 0; i < len(body); {
		ch := body[i]

		if ch == '"' || ch == '\'' {
			end := skipQuoted(body, i)
			out.WriteString(body[i:end])
			i = end

			continue
		}

		if !isIdentStart(ch) {
			out.WriteByte(ch)
			i++

			continue
		}

		start := i
		for i < len(body) && isIdentPart(body[i]) {
			i++
		}

		ident := body[start:i]
		if repl, ok := byName[ident]; ok {
			out.WriteString(repl)
		} else {
			out.WriteString(ident)
		}
	}

	return out.String()
}

func (e *expander) push(s string) error {
	e.expansions++
	if e.expansions > maxExpansions {
		return errors.New("recursive macro expansion")
	}

	if s != "" {
		e.stack = append(e.stack, chunk{s: s})
	}

	return nil
}

func (e *expander) next() (byte, bool) {
	for len(e.stack) > 0 {
		top := &e.stack[len(e.stack)-1]
		if top.i >= len(top.s) {
			e.stack = e.stack[:len(e.stack)-1]

			continue
		}

		ch := top.s[top.i]
		top.i++

		return ch, true
	}

	return 0, false
}

func (e *expander) peekIs(want byte) bool {
	for i := len(e.stack) - 1; i >= 0; i-- {
		if e.stack[i].i < len(e.stack[i].s) {
			return e.stack[i].s[e.stack[i].i] == want
		}
	}

	return false
}

func (e *expander) readIdent(first byte) string {
	var out strings.Builder
	out.WriteByte(first)

	for {
		if !e.peekIsIdentPart() {
			return out.String()
		}

		ch, _ := e.next()
		out.WriteByte(ch)
	}
}

func (e *expander) peekIsIdentPart() bool {
	for i := len(e.stack) - 1; i >= 0; i-- {
		if e.stack[i].i < len(e.stack[i].s) {
			return isIdentPart(e.stack[i].s[e.stack[i].i])
		}
	}

	return false
}

// readArgs consumes a parenthesized, comma-separated argument list, honoring
// nested parentheses and quoted strings.
func (e *expander) readArgs() ([]string, bool) {
	var args []string

	var cur strings.Builder

	depth := 1

	for {
		ch, ok := e.next()
		if !ok {
			return nil, false
		}

		switch {
		case ch == '"' || ch == '\'':
			cur.WriteByte(ch)
			e.copyQuoted(&cur, ch)

		case ch == '(':
			depth++
			cur.WriteByte(ch)

		case ch == ')':
			depth--
			if depth == 0 {
				args = append(args, strings.TrimSpace(cur.String()))

				return args, true
			}

			cur.WriteByte(ch)

		case ch == ',' && depth == 1:
			args = append(args, strings.TrimSpace(cur.String()))
			cur.Reset()

		default:
			cur.WriteByte(ch)
		}
	}
}

func (e *expander) copyQuoted(out *strings.Builder, quote byte) {
	for {
		ch, ok := e.next()
		if !ok {
			return
		}

		out.WriteByte(ch)

		if ch == '\\' {
			if next, ok := e.next(); ok {
				out.WriteByte(next)
			}

			continue
		}

		if ch == quote {
			return
		}
	}
}

func skipQuoted(s string, start int) int {
	quote := s[start]

	for i := start + 1; i < len(s); i++ {
		if s[i] == '\\' {
			i++

			continue
		}

		if s[i] == quote {
			return i + 1
		}
	}

	return len(s)
}

func scanIdent(s string) (ident, rest string, ok bool) {
	if s == "" || !isIdentStart(s[0]) {
		return "", "", false
	}

	i := 1
	for i < len(s) && isIdentPart(s[i]) {
		i++
	}

	return s[:i], s[i:], true
}

func collapseSpaces(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

func isIdentStart(ch byte) bool {
	return ch == '_' || ch >= 'a' && ch <= 'z' || ch >= 'A' && ch <= 'Z'
}

func isIdentPart(ch byte) bool {
	return isIdentStart(ch) || ch >= '0' && ch <= '9'
}
