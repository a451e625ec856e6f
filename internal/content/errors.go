package content

import "errors"

var (
	// ErrSourceRead indicates a source file could not be opened or read.
	ErrSourceRead = errors.New("source file read failed")

	// ErrMarkdown indicates goldmark failed to convert a Markdown body.
	ErrMarkdown = errors.New("markdown conversion failed")

	errInvalidUTF8 = errors.New("body is not valid UTF-8")
)
