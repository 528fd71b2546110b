package preproc

import "fmt"

// Error is a preprocessing failure, carrying the offending file and line
// when available.
type Error struct {
	File    string
	Line    int
	Message string
	Err     error
}

func (e *Error) Error() string {
	loc := e.File
	if e.Line > 0 {
		loc = fmt.Sprintf("%s:%d", e.File, e.Line)
	}

	if loc == "" {
		return e.Message
	}

	return loc + ": " + e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

func errorf(file string, line int, format string, args ...any) *Error {
	return &Error{File: file, Line: line, Message: fmt.Sprintf(format, args...)}
}
