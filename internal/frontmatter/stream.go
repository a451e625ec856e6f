package frontmatter

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
)

// Stream is a line-buffered reader over an io.ReadSeeker that tracks the exact
// logical offset of the next unread byte. Seeking discards the read buffer, so
// the offset always matches what a subsequent Read will return.
//
// Offsets are absolute: the underlying reader must be positioned at its start
// when the Stream is created.
type Stream struct {
	rs  io.ReadSeeker
	br  *bufio.Reader
	off int64
}

// NewStream wraps rs, which must be positioned at offset zero.
func NewStream(rs io.ReadSeeker) *Stream {
	return &Stream{rs: rs, br: bufio.NewReader(rs)}
}

// NewBufferedStream reads r fully into memory so it can be sniffed and rewound.
// It is meant for sources that cannot seek, such as pipes.
func NewBufferedStream(r io.Reader) (*Stream, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrIO, err)
	}
	return NewStream(bytes.NewReader(data)), nil
}

// ReadLine returns the next line including its trailing newline. A final line
// without a newline is returned with a nil error; io.EOF is only reported once
// nothing is left.
func (s *Stream) ReadLine() (string, error) {
	line, err := s.br.ReadString('\n')
	s.off += int64(len(line))
	if errors.Is(err, io.EOF) {
		if line == "" {
			return "", io.EOF
		}
		return line, nil
	}
	return line, err
}

// Read implements io.Reader.
func (s *Stream) Read(p []byte) (int, error) {
	n, err := s.br.Read(p)
	s.off += int64(n)
	return n, err
}

// Seek implements io.Seeker. Positions past the end are allowed; reads from
// there report io.EOF.
func (s *Stream) Seek(offset int64, whence int) (int64, error) {
	var target int64
	switch whence {
	case io.SeekStart:
		target = offset
	case io.SeekCurrent:
		target = s.off + offset
	case io.SeekEnd:
		pos, err := s.rs.Seek(offset, io.SeekEnd)
		if err != nil {
			return s.off, err
		}
		s.br.Reset(s.rs)
		s.off = pos
		return pos, nil
	default:
		return s.off, fmt.Errorf("seek: invalid whence %d", whence)
	}
	if target < 0 {
		return s.off, fmt.Errorf("seek: negative position %d", target)
	}

	pos, err := s.rs.Seek(target, io.SeekStart)
	if err != nil {
		return s.off, err
	}
	s.br.Reset(s.rs)
	s.off = pos
	return pos, nil
}

// Offset reports the position of the next unread byte.
func (s *Stream) Offset() int64 {
	return s.off
}
