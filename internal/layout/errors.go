package layout

import (
	"errors"
	"fmt"
)

var (
	// ErrUnknownLayout indicates a page requested a layout that is neither built in
	// nor present in the layouts directory.
	ErrUnknownLayout = errors.New("unknown layout")

	// ErrTemplate indicates a layout template failed to parse or execute.
	ErrTemplate = errors.New("layout template failed")
)

// UnknownLayoutError names the page and the layout it asked for.
type UnknownLayoutError struct {
	Route  string
	Layout string
}

func (e *UnknownLayoutError) Error() string {
	return fmt.Sprintf("unknown layout '%s' in '%s'", e.Layout, e.Route)
}

func (e *UnknownLayoutError) Unwrap() error {
	return ErrUnknownLayout
}
