package binary

import "encoding/binary"

// Writer appends big-endian values to a byte slice.
type Writer struct {
	buf []byte
}

// AppendTo creates a Writer that appends to dst.
func AppendTo(dst []byte) *Writer {
	return &Writer{buf: dst}
}

// Bytes returns the written bytes.
func (w *Writer) Bytes() []byte {
	return w.buf
}

// Len returns the number of bytes written.
func (w *Writer) Len() int {
	return len(w.buf)
}

// U2 writes a big-endian uint16.
func (w *Writer) U2(v uint16) {
	w.buf = binary.BigEndian.AppendUint16(w.buf, v)
}

// U4 writes a big-endian uint32.
func (w *Writer) U4(v uint32) {
	w.buf = binary.BigEndian.AppendUint32(w.buf, v)
}
