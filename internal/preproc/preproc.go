package preproc

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
)

// maxIncludeDepth bounds nested includes to keep malformed inputs from
// recursing forever.
const maxIncludeDepth = 32

type fnMacro struct {
	params   []string
	variadic bool
	body     string
}

// Preprocessor expands macros, resolves conditionals and includes over
// devicetree keymap sources. It is not safe for concurrent use; construct one
// per document.
type Preprocessor struct {
	includeDirs    []string
	strictIncludes bool

	obj map[string]string
	fn  map[string]fnMacro

	includeGuard map[string]bool
}

// Option configures a Preprocessor.
type Option func(*Preprocessor)

// WithIncludeDirs adds search paths for #include resolution.
func WithIncludeDirs(dirs ...string) Option {
	return func(p *Preprocessor) {
		p.includeDirs = append(p.includeDirs, dirs...)
	}
}

// WithDefine pre-defines an object macro, as if by "#define name value".
func WithDefine(name, value string) Option {
	return func(p *Preprocessor) {
		p.obj[name] = value
	}
}

// WithStrictIncludes makes unresolvable #include directives an error instead
// of being skipped.
func WithStrictIncludes() Option {
	return func(p *Preprocessor) {
		p.strictIncludes = true
	}
}

// New creates a Preprocessor with the given options.
func New(opts ...Option) *Preprocessor {
	p := &Preprocessor{
		obj:          map[string]string{},
		fn:           map[string]fnMacro{},
		includeGuard: map[string]bool{},
	}

	for _, opt := range opts {
		opt(p)
	}

	return p
}

// Preprocess runs the full preprocessing pass over src, read from the file
// called name (used for error context and relative include resolution).
// The output contains no directives: conditional-compilation is resolved,
// macros are expanded and directive lines are replaced by blank lines so
// that line positions are preserved.
func (p *Preprocessor) Preprocess(name string, src string) (string, error) {
	var out strings.Builder

	cond := &condStack{}

	err := p.process(name, src, cond, &out)
	if err != nil {
		return "", err
	}

	if cond.Depth() != 0 {
		return "", errorf(name, cond.UnclosedLine(), "unclosed conditional directive")
	}

	return out.String(), nil
}

// ExpandFragment expands macros in a standalone fragment using the macro
// state accumulated by a previous Preprocess call. Directives inside the
// fragment are not interpreted. Used to re-key raw binding overrides so they
// match preprocessed binding text.
func (p *Preprocessor) ExpandFragment(src string) (string, error) {
	lines := strings.Split(StripComments(src), "\n")

	for i, line := range lines {
		expanded, err := p.expandLine(line)
		if err != nil {
			return "", errorf("", i+1, "%s", err.Error())
		}

		lines[i] = strings.TrimSpace(collapseSpaces(expanded))
	}

	return strings.Join(lines, "\n"), nil
}

func (p *Preprocessor) process(name, src string, cond *condStack, out *strings.Builder) error {
	lines := strings.Split(StripComments(src), "\n")

	for idx := 0; idx < len(lines); idx++ {
		lineNo := idx + 1
		logical := lines[idx]
		blanks := 0

		// Fold line continuations into one logical line.
		for strings.HasSuffix(strings.TrimRight(logical, " \t"), "\\") && idx+1 < len(lines) {
			logical = strings.TrimRight(strings.TrimRight(strings.TrimRight(logical, " \t"), "\\"), " \t")
			idx++
			blanks++
			logical += " " + lines[idx]
		}

		trimmed := strings.TrimSpace(logical)

		if strings.HasPrefix(trimmed, "#") {
			err := p.handleDirective(name, lineNo, trimmed, cond, out)
			if err != nil {
				return err
			}
		} else if cond.Active() {
			expanded, err := p.expandLine(logical)

			// Function macro invocations may span lines without backslash
			// continuations; pull following lines in until the argument
			// list closes.
			for errors.Is(err, errUnterminatedArgs) && idx+1 < len(lines) {
				idx++
				blanks++
				logical += " " + lines[idx]
				expanded, err = p.expandLine(logical)
			}

			if err != nil {
				return errorf(name, lineNo, "%s", err.Error())
			}

			out.WriteString(expanded)
		}

		// Keep one output line per input line, including continuations and
		// suppressed directive/inactive lines.
		for i := 0; i < blanks; i++ {
			out.WriteByte('\n')
		}

		if idx < len(lines)-1 {
			out.WriteByte('\n')
		}
	}

	return nil
}

func (p *Preprocessor) handleDirective(name string, lineNo int, trimmed string, cond *condStack, out *strings.Builder) error {
	cmd, arg := splitDirective(trimmed)

	switch cmd {
	case "ifdef":
		cond.Push(p.isDefined(strings.TrimSpace(arg)), lineNo)
	case "ifndef":
		cond.Push(!p.isDefined(strings.TrimSpace(arg)), lineNo)
	case "if":
		cond.Push(p.evalCondition(arg), lineNo)
	case "elif":
		if !cond.Elif(p.evalCondition(arg)) {
			return errorf(name, lineNo, "#elif without matching #if")
		}
	case "else":
		if !cond.Else() {
			return errorf(name, lineNo, "#else without matching #if")
		}
	case "endif":
		if !cond.Pop() {
			return errorf(name, lineNo, "#endif without matching #if")
		}

	case "define":
		if !cond.Active() {
			return nil
		}

		if !p.define(arg) {
			return errorf(name, lineNo, "malformed #define: %q", trimmed)
		}
	case "undef":
		if !cond.Active() {
			return nil
		}

		ident := strings.TrimSpace(arg)
		delete(p.obj, ident)
		delete(p.fn, ident)

	case "include":
		if !cond.Active() {
			return nil
		}

		return p.include(name, lineNo, arg, cond, out)

	default:
		// Unknown directives (#pragma etc.) are dropped, matching firmware
		// sources that carry directives this subset does not model.
	}

	return nil
}

// define parses the argument of a #define and registers the macro.
// Returns false for unparseable input.
func (p *Preprocessor) define(arg string) bool {
	arg = strings.TrimSpace(arg)

	ident, rest, ok := scanIdent(arg)
	if !ok {
		return false
	}

	// Function-like only when '(' immediately follows the name.
	if strings.HasPrefix(rest, "(") {
		end := strings.IndexByte(rest, ')')
		if end < 0 {
			return false
		}

		var params []string
		variadic := false

		for _, param := range strings.Split(rest[1:end], ",") {
			param = strings.TrimSpace(param)
			if param == "" {
				continue
			}

			if param == "..." {
				variadic = true
				continue
			}

			params = append(params, param)
		}

		p.fn[ident] = fnMacro{params: params, variadic: variadic, body: strings.TrimSpace(rest[end+1:])}

		return true
	}

	p.obj[ident] = strings.TrimSpace(rest)

	return true
}

func (p *Preprocessor) include(name string, lineNo int, arg string, cond *condStack, out *strings.Builder) error {
	path, relative, ok := parseIncludeArg(strings.TrimSpace(arg))
	if !ok {
		return errorf(name, lineNo, "bad #include syntax: %q", arg)
	}

	resolved, found := p.resolveInclude(path, relative, name)
	if !found {
		if p.strictIncludes {
			return errorf(name, lineNo, "cannot resolve include %q", path)
		}

		return nil
	}

	if p.includeGuard[resolved] {
		return errorf(name, lineNo, "include cycle detected at %q", resolved)
	}

	if len(p.includeGuard) >= maxIncludeDepth {
		return errorf(name, lineNo, "maximum include depth (%d) exceeded", maxIncludeDepth)
	}

	data, err := os.ReadFile(resolved)
	if err != nil {
		if p.strictIncludes {
			return &Error{File: name, Line: lineNo, Message: "cannot read include " + resolved, Err: err}
		}

		return nil
	}

	p.includeGuard[resolved] = true
	defer delete(p.includeGuard, resolved)

	err = p.process(resolved, string(data), cond, out)
	if err != nil {
		return err
	}

	out.WriteByte('\n')

	return nil
}

// resolveInclude searches the include dirs for path; quoted includes also try
// the including file's directory first.
func (p *Preprocessor) resolveInclude(path string, relative bool, from string) (string, bool) {
	if filepath.IsAbs(path) {
		if fileExists(path) {
			return path, true
		}

		return "", false
	}

	var candidates []string
	if relative && from != "" {
		candidates = append(candidates, filepath.Join(filepath.Dir(from), path))
	}

	for _, dir := range p.includeDirs {
		candidates = append(candidates, filepath.Join(dir, path))
	}

	for _, candidate := range candidates {
		if fileExists(candidate) {
			return filepath.Clean(candidate), true
		}
	}

	return "", false
}

func (p *Preprocessor) isDefined(name string) bool {
	_, obj := p.obj[name]
	_, fn := p.fn[name]

	return obj || fn
}

// evalCondition evaluates a #if/#elif expression. Supported subset:
// defined(NAME) and defined NAME, ! negation, || and && of those, plain
// identifiers (true when defined with a non-zero value) and integer literals.
func (p *Preprocessor) evalCondition(expr string) bool {
	expr = strings.TrimSpace(expr)

	for _, part := range strings.Split(expr, "||") {
		if p.evalConjunction(part) {
			return true
		}
	}

	return false
}

func (p *Preprocessor) evalConjunction(expr string) bool {
	for _, part := range strings.Split(expr, "&&") {
		if !p.evalAtom(strings.TrimSpace(part)) {
			return false
		}
	}

	return true
}

func (p *Preprocessor) evalAtom(expr string) bool {
	if rest, ok := strings.CutPrefix(expr, "!"); ok {
		return !p.evalAtom(strings.TrimSpace(rest))
	}

	if strings.HasPrefix(expr, "(") && strings.HasSuffix(expr, ")") {
		return p.evalAtom(strings.TrimSpace(expr[1 : len(expr)-1]))
	}

	if rest, ok := strings.CutPrefix(expr, "defined"); ok {
		rest = strings.TrimSpace(rest)
		rest = strings.TrimPrefix(rest, "(")
		rest = strings.TrimSuffix(rest, ")")

		return p.isDefined(strings.TrimSpace(rest))
	}

	if p.isDefined(expr) {
		val := strings.TrimSpace(p.obj[expr])

		return val != "" && val != "0"
	}

	return expr != "" && expr != "0"
}

func parseIncludeArg(arg string) (path string, relative, ok bool) {
	if len(arg) >= 2 && arg[0] == '"' {
		if end := strings.IndexByte(arg[1:], '"'); end >= 0 {
			return arg[1 : 1+end], true, true
		}

		return "", false, false
	}

	if len(arg) >= 2 && arg[0] == '<' {
		if end := strings.IndexByte(arg, '>'); end > 0 {
			return arg[1:end], false, true
		}
	}

	return "", false, false
}

func splitDirective(trimmed string) (cmd, arg string) {
	rest := strings.TrimSpace(strings.TrimPrefix(trimmed, "#"))

	cmd, arg, _ = strings.Cut(rest, " ")

	return cmd, strings.TrimSpace(arg)
}

func fileExists(path string) bool {
	info, err := os.Stat(path)

	return err == nil && !info.IsDir()
}

// StripComments removes C-style line and block comments while preserving line
// positions and quoted strings. Used directly for pass-through mode.
func StripComments(src string) string {
	var out strings.Builder
	out.Grow(len(src))

	for i := 0; i < len(src); i++ {
		ch := src[i]

		switch {
		case ch == '"' || ch == '\'':
			quote := ch
			out.WriteByte(ch)

			for i++; i < len(src); i++ {
				out.WriteByte(src[i])

				if src[i] == '\\' && i+1 < len(src) {
					i++
					out.WriteByte(src[i])

					continue
				}

				if src[i] == quote {
					break
				}
			}

		case ch == '/' && i+1 < len(src) && src[i+1] == '/':
			for i < len(src) && src[i] != '\n' {
				i++
			}

			if i < len(src) {
				out.WriteByte('\n')
			}

		case ch == '/' && i+1 < len(src) && src[i+1] == '*':
			i += 2

			for ; i+1 < len(src); i++ {
				if src[i] == '\n' {
					out.WriteByte('\n')
				}

				if src[i] == '*' && src[i+1] == '/' {
					i++
					break
				}
			}

		default:
			out.WriteByte(ch)
		}
	}

	return out.String()
}
