// Package frontmatter extracts an optional metadata block from the start of a
// content file. The block may be YAML (between `---` lines), TOML (between `+++`
// lines) or a single JSON object. The format is sniffed from the first non-blank
// line; only the first block is ever parsed.
//
// After a successful Extract the Stream is positioned at the first byte of the
// body, so the caller reads the remaining content straight from it.
package frontmatter

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
	"unicode"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"git.home.luguber.info/inful/sitebuilder/internal/foundation"
)

// Format identifies the dialect of a metadata block.
type Format int

const (
	FormatNone Format = iota
	FormatYAML
	FormatTOML
	FormatJSON
)

func (f Format) String() string {
	switch f {
	case FormatYAML:
		return "yaml"
	case FormatTOML:
		return "toml"
	case FormatJSON:
		return "json"
	default:
		return "none"
	}
}

const (
	yamlSeparator = "---"
	tomlSeparator = "+++"
)

var (
	// ErrIO indicates the underlying stream failed to read or seek.
	ErrIO = errors.New("frontmatter stream error")
	// ErrYAML indicates a malformed YAML block.
	ErrYAML = errors.New("invalid yaml frontmatter")
	// ErrTOML indicates a malformed TOML block.
	ErrTOML = errors.New("invalid toml frontmatter")
	// ErrJSON indicates a malformed JSON object.
	ErrJSON = errors.New("invalid json frontmatter")
)

// Sniff classifies the first non-blank line of a document. The line is compared
// verbatim, including its newline.
func Sniff(line string) Format {
	switch {
	case line == yamlSeparator+"\n":
		return FormatYAML
	case line == tomlSeparator+"\n":
		return FormatTOML
	case strings.HasPrefix(line, "{"):
		return FormatJSON
	default:
		return FormatNone
	}
}

// ErrorFormat reports which dialect a decode error came from, or FormatNone.
func ErrorFormat(err error) Format {
	switch {
	case errors.Is(err, ErrYAML):
		return FormatYAML
	case errors.Is(err, ErrTOML):
		return FormatTOML
	case errors.Is(err, ErrJSON):
		return FormatJSON
	default:
		return FormatNone
	}
}

// Extract decodes the metadata block at the start of s into T.
//
// It returns None when the document has no block, or when the block is blank or
// an empty JSON object. On success s is positioned at the start of the body. On
// error the position of s is unspecified.
func Extract[T any](s *Stream) (foundation.Option[T], error) {
	line, err := firstSignificantLine(s)
	if errors.Is(err, io.EOF) {
		// Only blank lines: nothing left to read as body.
		return foundation.None[T](), nil
	}
	if err != nil {
		return foundation.None[T](), fmt.Errorf("%w: %w", ErrIO, err)
	}

	switch Sniff(line) {
	case FormatYAML:
		return extractDelimited(s, yamlSeparator, decodeYAML[T])
	case FormatTOML:
		return extractDelimited(s, tomlSeparator, decodeTOML[T])
	case FormatJSON:
		return extractJSON[T](s)
	default:
		if _, err := s.Seek(0, io.SeekStart); err != nil {
			return foundation.None[T](), fmt.Errorf("%w: %w", ErrIO, err)
		}
		return foundation.None[T](), nil
	}
}

// Parse extracts the metadata from r and returns it together with the body.
func Parse[T any](r io.ReadSeeker) (foundation.Option[T], []byte, error) {
	s := NewStream(r)
	meta, err := Extract[T](s)
	if err != nil {
		return foundation.None[T](), nil, err
	}
	body, err := io.ReadAll(s)
	if err != nil {
		return foundation.None[T](), nil, fmt.Errorf("%w: %w", ErrIO, err)
	}
	return meta, body, nil
}

func firstSignificantLine(s *Stream) (string, error) {
	for {
		line, err := s.ReadLine()
		if err != nil {
			return "", err
		}
		if strings.TrimSpace(line) != "" {
			return line, nil
		}
	}
}

func extractDelimited[T any](s *Stream, sep string, decode func(string) (T, error)) (foundation.Option[T], error) {
	var buf strings.Builder
	for {
		line, err := s.ReadLine()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return foundation.None[T](), fmt.Errorf("%w: %w", ErrIO, err)
		}
		buf.WriteString(line)
		if strings.HasSuffix(strings.TrimRightFunc(line, unicode.IsSpace), sep) {
			break
		}
	}

	block := strings.TrimRightFunc(buf.String(), unicode.IsSpace)
	for strings.HasSuffix(block, sep) {
		block = strings.TrimSuffix(block, sep)
	}
	if strings.TrimSpace(block) == "" {
		return foundation.None[T](), nil
	}

	v, err := decode(block)
	if err != nil {
		return foundation.None[T](), err
	}
	return foundation.Some(v), nil
}

func decodeYAML[T any](block string) (T, error) {
	var v T
	if err := yaml.Unmarshal([]byte(block), &v); err != nil {
		return v, fmt.Errorf("%w: %w", ErrYAML, err)
	}
	return v, nil
}

func decodeTOML[T any](block string) (T, error) {
	var v T
	if _, err := toml.Decode(block, &v); err != nil {
		return v, fmt.Errorf("%w: %w", ErrTOML, err)
	}
	return v, nil
}

// extractJSON decodes exactly one JSON value from the start of the stream and
// then skips a single separator byte. Blank lines or "\r\n" between the object
// and the body are left in the body.
func extractJSON[T any](s *Stream) (foundation.Option[T], error) {
	if _, err := s.Seek(0, io.SeekStart); err != nil {
		return foundation.None[T](), fmt.Errorf("%w: %w", ErrIO, err)
	}

	dec := json.NewDecoder(s)
	var raw json.RawMessage
	if err := dec.Decode(&raw); err != nil {
		return foundation.None[T](), classifyJSONError(err)
	}
	if _, err := s.Seek(dec.InputOffset()+1, io.SeekStart); err != nil {
		return foundation.None[T](), fmt.Errorf("%w: %w", ErrIO, err)
	}

	if isEmptyObject(raw) {
		return foundation.None[T](), nil
	}
	var v T
	if err := json.Unmarshal(raw, &v); err != nil {
		return foundation.None[T](), fmt.Errorf("%w: %w", ErrJSON, err)
	}
	return foundation.Some(v), nil
}

func isEmptyObject(raw json.RawMessage) bool {
	var compact bytes.Buffer
	if err := json.Compact(&compact, raw); err != nil {
		return false
	}
	return compact.String() == "{}"
}

func classifyJSONError(err error) error {
	var syntaxErr *json.SyntaxError
	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &syntaxErr) || errors.As(err, &typeErr) || errors.Is(err, io.ErrUnexpectedEOF) {
		return fmt.Errorf("%w: %w", ErrJSON, err)
	}
	return fmt.Errorf("%w: %w", ErrIO, err)
}
