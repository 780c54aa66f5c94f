package expr

import (
	"errors"
	"fmt"
)

var (
	// ErrUnknownIdentifier is wrapped by errors for names outside the whitelist.
	ErrUnknownIdentifier = errors.New("unknown identifier")
	// ErrArity is wrapped by errors for calls with the wrong number of arguments.
	ErrArity = errors.New("wrong number of arguments")
	// ErrTooDeep is wrapped when nesting exceeds maxDepth.
	ErrTooDeep = errors.New("expression nested too deeply")
)

// SyntaxError reports a compile failure at a byte offset of the source.
type SyntaxError struct {
	Pos int
	Msg string
	Err error
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("syntax error at offset %d: %s", e.Pos, e.Msg)
}

func (e *SyntaxError) Unwrap() error { return e.Err }

func errorAt(pos int, err error, format string, args ...interface{}) *SyntaxError {
	return &SyntaxError{Pos: pos, Msg: fmt.Sprintf(format, args...), Err: err}
}
