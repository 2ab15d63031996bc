package bundle

import (
	"bytes"
	"encoding/hex"
	"fmt"
	"os"

	"github.com/fxamacker/cbor/v2"
	"github.com/zeebo/blake3"
	"go.uber.org/zap"

	"github.com/wippyai/classfile/attribute"
	"github.com/wippyai/classfile/constpool"
	"github.com/wippyai/classfile/errors"
)

// FormatVersion is the bundle layout version written by Marshal.
const FormatVersion = 1

// Bundle is one encoded attribute together with the constant pool its
// indices refer to.
type Bundle struct {
	Pool      []PoolEntry `cbor:"pool"`
	Attribute []byte      `cbor:"attribute"`
	Digest    []byte      `cbor:"digest"`
	Version   int         `cbor:"version"`
}

// PoolEntry is one constant pool slot. Slot i of Bundle.Pool has index i+1.
type PoolEntry struct {
	Value string `cbor:"value"`
	Tag   uint8  `cbor:"tag"`
}

// Hash is a BLAKE3 digest.
type Hash [32]byte

func (h Hash) String() string {
	return hex.EncodeToString(h[:])
}

// domainKey is the ASCII bundle domain name, zero-padded to the 32 bytes
// BLAKE3 keyed mode requires.
var domainKey = [32]byte{
	'c', 'l', 'a', 's', 's', 'f', 'i', 'l', 'e', '.', 'b', 'u', 'n', 'd', 'l', 'e',
	'.', 'a', 't', 't', 'r', 'i', 'b', 'u', 't', 'e', 0, 0, 0, 0, 0, 0,
}

// Digest returns the keyed BLAKE3 hash of an attribute envelope.
func Digest(data []byte) Hash {
	// NewKeyed only fails on a key that is not 32 bytes long.
	hasher, err := blake3.NewKeyed(domainKey[:])
	if err != nil {
		panic("bundle: BLAKE3 keyed hash initialization failed: " + err.Error())
	}
	hasher.Write(data)
	var h Hash
	copy(h[:], hasher.Sum(nil))
	return h
}

var (
	encMode cbor.EncMode
	decMode cbor.DecMode
)

func init() {
	var err error
	encMode, err = cbor.CoreDetEncOptions().EncMode()
	if err != nil {
		panic("bundle: CBOR encoder initialization failed: " + err.Error())
	}
	decMode, err = cbor.DecOptions{
		DupMapKey: cbor.DupMapKeyEnforcedAPF,
	}.DecMode()
	if err != nil {
		panic("bundle: CBOR decoder initialization failed: " + err.Error())
	}
}

// New encodes attr with its attribute header and captures pool. Encoding
// may add constants to pool, so the snapshot is taken afterwards.
func New(pool *constpool.Pool, attr attribute.Attribute) (*Bundle, error) {
	if pool == nil {
		return nil, errors.InvalidInput(errors.PhaseEncode, "nil constant pool")
	}
	envelope, err := attribute.AppendAttribute(nil, attr, pool)
	if err != nil {
		return nil, err
	}
	entries := pool.Entries()
	b := &Bundle{
		Version:   FormatVersion,
		Pool:      make([]PoolEntry, len(entries)),
		Attribute: envelope,
	}
	for i, e := range entries {
		b.Pool[i] = PoolEntry{Tag: uint8(e.Tag), Value: e.Value}
	}
	d := Digest(envelope)
	b.Digest = d[:]
	return b, nil
}

// Hash returns the recorded digest.
func (b *Bundle) Hash() Hash {
	var h Hash
	copy(h[:], b.Digest)
	return h
}

// Verify checks the version and that the digest matches the attribute bytes.
func (b *Bundle) Verify() error {
	if b.Version != FormatVersion {
		return errors.New(errors.PhaseLoad, errors.KindInvalidInput).
			Path("version").
			Expected(fmt.Sprint(FormatVersion)).
			Actual(fmt.Sprint(b.Version)).
			Detail("unsupported bundle version").
			Build()
	}
	want := Digest(b.Attribute)
	if !bytes.Equal(b.Digest, want[:]) {
		return errors.New(errors.PhaseLoad, errors.KindIntegrity).
			Path("digest").
			Expected(want.String()).
			Actual(hex.EncodeToString(b.Digest)).
			Detail("attribute bytes do not match digest").
			Build()
	}
	return nil
}

// ConstantPool rebuilds the constant pool.
func (b *Bundle) ConstantPool() (*constpool.Pool, error) {
	entries := make([]constpool.Entry, len(b.Pool))
	for i, e := range b.Pool {
		entries[i] = constpool.Entry{Tag: constpool.Tag(e.Tag), Value: e.Value}
	}
	return constpool.FromEntries(entries)
}

// Module rebuilds the pool and decodes the attribute against it. The
// returned attribute borrows b.Attribute.
func (b *Bundle) Module() (attribute.ModuleAttribute, *constpool.Pool, error) {
	pool, err := b.ConstantPool()
	if err != nil {
		return nil, nil, err
	}
	attr, next, err := attribute.ReadAttribute(b.Attribute, 0, pool)
	if err != nil {
		return nil, nil, err
	}
	if next != len(b.Attribute) {
		return nil, nil, errors.Malformed([]string{"attribute"}, next, "bytes after attribute")
	}
	m, ok := attr.(attribute.ModuleAttribute)
	if !ok {
		return nil, nil, errors.New(errors.PhaseLoad, errors.KindInvalidInput).
			Expected(attribute.Name).
			Actual(attr.AttributeName()).
			Build()
	}
	return m, pool, nil
}

// Marshal encodes b as deterministic CBOR.
func Marshal(b *Bundle) ([]byte, error) {
	data, err := encMode.Marshal(b)
	if err != nil {
		return nil, errors.Wrap(errors.PhaseEncode, errors.KindInvalidInput, err, "encode bundle")
	}
	return data, nil
}

// Unmarshal decodes and verifies a bundle.
func Unmarshal(data []byte) (*Bundle, error) {
	var b Bundle
	if err := decMode.Unmarshal(data, &b); err != nil {
		return nil, errors.Wrap(errors.PhaseLoad, errors.KindInvalidInput, err, "decode bundle")
	}
	if err := b.Verify(); err != nil {
		return nil, err
	}
	return &b, nil
}

// Save writes b to path.
func Save(path string, b *Bundle) error {
	data, err := Marshal(b)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return errors.Wrap(errors.PhaseEncode, errors.KindInvalidInput, err, "write "+path)
	}
	Logger().Info("bundle saved",
		zap.String("path", path),
		zap.Int("bytes", len(data)),
		zap.Stringer("digest", b.Hash()),
	)
	return nil
}

// Load reads and verifies the bundle at path.
func Load(path string) (*Bundle, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(errors.PhaseLoad, errors.KindNotFound, err, "read "+path)
	}
	b, err := Unmarshal(data)
	if err != nil {
		return nil, err
	}
	Logger().Info("bundle loaded",
		zap.String("path", path),
		zap.Int("constants", len(b.Pool)),
		zap.Stringer("digest", b.Hash()),
	)
	return b, nil
}
