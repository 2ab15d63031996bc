package attribute_test

import (
	"bytes"
	"testing"

	"github.com/wippyai/classfile/attribute"
	"github.com/wippyai/classfile/constpool"
)

func FuzzDecodeModule(f *testing.F) {
	f.Add(minimal)
	f.Add([]byte{0x00, 0x02, 0x00, 0x00, 0x00})
	f.Add([]byte{
		0x00, 0x02, 0x80, 0x20, 0x00, 0x07,
		0x00, 0x01, 0x00, 0x02, 0x00, 0x20, 0x00, 0x07,
		0x00, 0x01, 0x00, 0x04, 0x00, 0x00, 0x00, 0x01, 0x00, 0x02,
		0x00, 0x00,
		0x00, 0x01, 0x00, 0x06,
		0x00, 0x01, 0x00, 0x06, 0x00, 0x01, 0x00, 0x06,
	})
	f.Add([]byte{0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff})

	pool := fixturePool(f)
	entries := pool.Entries()

	f.Fuzz(func(t *testing.T, data []byte) {
		// Fresh copy so encode-side inserts do not leak between runs.
		p, err := constpool.FromEntries(entries)
		if err != nil {
			t.Fatal(err)
		}
		d, err := attribute.DecodeModule(data, p)
		if err != nil {
			return
		}
		out, err := attribute.EncodeModule(d, p)
		if err != nil {
			t.Fatalf("EncodeModule of decoded attribute: %v", err)
		}
		if !bytes.Equal(out, data) {
			t.Fatalf("byte identity broken\n got %x\nwant %x", out, data)
		}
	})
}
