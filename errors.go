package jsonedit

import (
	"errors"
	"fmt"

	"github.com/kevinwang15/jsonedit/internal/jpath"
)

var (
	ErrNoMatch          = errors.New("path matched no node")
	ErrAmbiguousMatch   = errors.New("path matched more than one node")
	ErrNotAnObject      = errors.New("node is not an object")
	ErrNotAnArray       = errors.New("node is not an array")
	ErrNoSuchAttribute  = errors.New("no such attribute")
	ErrIndexOutOfBounds = errors.New("index out of bounds")
	ErrInvalidPath      = jpath.ErrSyntax
	ErrUnsupportedValue = errors.New("unsupported value")
	ErrTestFailed       = errors.New("patch test failed")
	ErrFilterResult     = errors.New("filter result is not a bool")
)

// EditError reports a failed operation together with the path it was
// addressing.
type EditError struct {
	Op   string
	Path string
	Err  error
}

func (e *EditError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("jsonedit: %s %s: %v", e.Op, e.Path, e.Err)
	}
	return fmt.Sprintf("jsonedit: %s: %v", e.Op, e.Err)
}

func (e *EditError) Unwrap() error {
	return e.Err
}

func newEditError(op, path string, err error) error {
	if _, ok := err.(*EditError); ok {
		return err
	}
	return &EditError{Op: op, Path: path, Err: err}
}
