package binary

import (
	"encoding/binary"
	"errors"
	"fmt"
)

// ErrTruncated is returned when a read would run past the end of the window.
var ErrTruncated = errors.New("read past end of data")

// Reader reads big-endian values from a borrowed byte window.
// Slices returned by ReadBytes alias the window; nothing is copied.
type Reader struct {
	data []byte
	base int
	pos  int
}

// NewReader creates a Reader over data. base is the absolute offset of
// data[0] inside the enclosing buffer and is only used for positions.
func NewReader(data []byte, base int) *Reader {
	return &Reader{data: data, base: base}
}

// Position returns the absolute byte position of the next read.
func (r *Reader) Position() int {
	return r.base + r.pos
}

// Offset returns the position relative to the start of the window.
func (r *Reader) Offset() int {
	return r.pos
}

// Len returns the number of unread bytes.
func (r *Reader) Len() int {
	return len(r.data) - r.pos
}

// Seek moves to a window-relative offset.
func (r *Reader) Seek(off int) error {
	if off < 0 || off > len(r.data) {
		return r.wrapError(ErrTruncated)
	}
	r.pos = off
	return nil
}

// ReadU2 reads a big-endian uint16.
func (r *Reader) ReadU2() (uint16, error) {
	if r.Len() < 2 {
		return 0, r.wrapError(ErrTruncated)
	}
	v := binary.BigEndian.Uint16(r.data[r.pos:])
	r.pos += 2
	return v, nil
}

// ReadU4 reads a big-endian uint32.
func (r *Reader) ReadU4() (uint32, error) {
	if r.Len() < 4 {
		return 0, r.wrapError(ErrTruncated)
	}
	v := binary.BigEndian.Uint32(r.data[r.pos:])
	r.pos += 4
	return v, nil
}

// ReadBytes returns the next n bytes without copying.
func (r *Reader) ReadBytes(n int) ([]byte, error) {
	if n < 0 || r.Len() < n {
		return nil, r.wrapError(ErrTruncated)
	}
	b := r.data[r.pos : r.pos+n : r.pos+n]
	r.pos += n
	return b, nil
}

func (r *Reader) wrapError(err error) error {
	return &ParseError{Position: r.Position(), Err: err}
}

// ParseError represents an error during binary parsing with position information.
type ParseError struct {
	Err      error
	Position int
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("classfile: at position %d: %v", e.Position, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}
