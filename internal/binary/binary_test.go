package binary

import (
	"bytes"
	"errors"
	"testing"
)

func TestReaderBigEndian(t *testing.T) {
	r := NewReader([]byte{0x12, 0x34, 0xde, 0xad, 0xbe, 0xef}, 0)

	u2, err := r.ReadU2()
	if err != nil {
		t.Fatalf("ReadU2: %v", err)
	}
	if u2 != 0x1234 {
		t.Errorf("ReadU2: got 0x%04x, want 0x1234", u2)
	}

	u4, err := r.ReadU4()
	if err != nil {
		t.Fatalf("ReadU4: %v", err)
	}
	if u4 != 0xdeadbeef {
		t.Errorf("ReadU4: got 0x%08x, want 0xdeadbeef", u4)
	}
	if r.Len() != 0 {
		t.Errorf("Len: got %d, want 0", r.Len())
	}
}

func TestReaderReadBytesZeroCopy(t *testing.T) {
	data := []byte{0x01, 0x02, 0x03, 0x04, 0x05}
	r := NewReader(data, 0)

	got, err := r.ReadBytes(3)
	if err != nil {
		t.Fatalf("ReadBytes: %v", err)
	}
	if !bytes.Equal(got, []byte{0x01, 0x02, 0x03}) {
		t.Errorf("ReadBytes: got %v, want [1 2 3]", got)
	}
	data[0] = 0xff
	if got[0] != 0xff {
		t.Error("ReadBytes should alias the window")
	}
	if cap(got) != 3 {
		t.Errorf("ReadBytes cap: got %d, want 3", cap(got))
	}

	_, err = r.ReadBytes(10)
	if err == nil {
		t.Error("expected error for reading past end")
	}
}

func TestReaderAbsolutePosition(t *testing.T) {
	r := NewReader([]byte{0x00, 0x01}, 40)

	if _, err := r.ReadU2(); err != nil {
		t.Fatalf("ReadU2: %v", err)
	}
	_, err := r.ReadU2()

	var pe *ParseError
	if !errors.As(err, &pe) {
		t.Fatalf("expected *ParseError, got %T", err)
	}
	if pe.Position != 42 {
		t.Errorf("Position: got %d, want 42", pe.Position)
	}
	if r.Offset() != 2 {
		t.Errorf("Offset: got %d, want 2", r.Offset())
	}
}

func TestReaderSeek(t *testing.T) {
	r := NewReader([]byte{0, 1, 0, 2, 0, 3}, 0)

	if err := r.Seek(4); err != nil {
		t.Fatalf("Seek: %v", err)
	}
	v, _ := r.ReadU2()
	if v != 3 {
		t.Errorf("after Seek(4): got %d, want 3", v)
	}
	if err := r.Seek(2); err != nil {
		t.Fatalf("Seek: %v", err)
	}
	v, _ = r.ReadU2()
	if v != 2 {
		t.Errorf("after Seek(2): got %d, want 2", v)
	}
	if err := r.Seek(7); !errors.Is(err, ErrTruncated) {
		t.Errorf("Seek past end: got %v", err)
	}
}

func TestParseErrorMessage(t *testing.T) {
	r := NewReader([]byte{1}, 8)
	_, err := r.ReadU2()

	want := "classfile: at position 8: read past end of data"
	if err == nil || err.Error() != want {
		t.Errorf("got %v, want %q", err, want)
	}
}

func TestWriter(t *testing.T) {
	w := AppendTo([]byte{0xca, 0xfe})
	w.U2(0x1234)
	w.U4(0x00000006)

	want := []byte{0xca, 0xfe, 0x12, 0x34, 0x00, 0x00, 0x00, 0x06}
	if !bytes.Equal(w.Bytes(), want) {
		t.Errorf("got %x, want %x", w.Bytes(), want)
	}
	if w.Len() != 8 {
		t.Errorf("Len: got %d, want 8", w.Len())
	}
}

func TestWriterReaderRoundTrip(t *testing.T) {
	values := []uint16{0, 1, 0x00ff, 0x8000, 0xffff}
	w := AppendTo(make([]byte, 0, len(values)*2))
	for _, v := range values {
		w.U2(v)
	}

	r := NewReader(w.Bytes(), 0)
	for i, want := range values {
		got, err := r.ReadU2()
		if err != nil {
			t.Fatalf("ReadU2 %d: %v", i, err)
		}
		if got != want {
			t.Errorf("value %d: got %d, want %d", i, got, want)
		}
	}
}
