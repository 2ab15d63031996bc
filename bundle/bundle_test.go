package bundle

import (
	"path/filepath"
	"testing"

	"github.com/fxamacker/cbor/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wippyai/classfile/accessflag"
	"github.com/wippyai/classfile/attribute"
	"github.com/wippyai/classfile/constpool"
	cferrors "github.com/wippyai/classfile/errors"
)

func sampleModule(t *testing.T) (*constpool.Pool, *attribute.UnboundModuleAttribute) {
	t.Helper()
	pool := constpool.New()
	m, err := attribute.BuildModule(pool, "com.example.app", func(b *attribute.ModuleBuilder) error {
		if err := b.SetVersion("1.0"); err != nil {
			return err
		}
		if err := b.Require("java.base", accessflag.AccMandated, ""); err != nil {
			return err
		}
		if err := b.Export("com.example.api", 0, "com.example.client"); err != nil {
			return err
		}
		return b.Provide("com.example.spi.Plugin", "com.example.impl.PluginImpl")
	})
	require.NoError(t, err)
	return pool, m
}

func TestMarshalUnmarshal(t *testing.T) {
	pool, m := sampleModule(t)

	b, err := New(pool, m)
	require.NoError(t, err)
	assert.Equal(t, FormatVersion, b.Version)
	assert.Len(t, b.Pool, pool.Len(), "snapshot must include the attribute name constant")

	data, err := Marshal(b)
	require.NoError(t, err)

	got, err := Unmarshal(data)
	require.NoError(t, err)
	assert.Equal(t, b, got)

	decoded, gotPool, err := got.Module()
	require.NoError(t, err)
	assert.True(t, attribute.Equal(m, decoded))
	assert.Equal(t, pool.Entries(), gotPool.Entries())

	// Re-encoding against the restored pool reproduces the stored bytes.
	again, err := attribute.AppendAttribute(nil, decoded, gotPool)
	require.NoError(t, err)
	assert.Equal(t, b.Attribute, again)
}

func TestMarshalDeterministic(t *testing.T) {
	pool, m := sampleModule(t)
	b, err := New(pool, m)
	require.NoError(t, err)

	first, err := Marshal(b)
	require.NoError(t, err)
	second, err := Marshal(b)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestTamperedAttributeFailsIntegrity(t *testing.T) {
	pool, m := sampleModule(t)
	b, err := New(pool, m)
	require.NoError(t, err)

	b.Attribute[len(b.Attribute)-1] ^= 0xff
	data, err := Marshal(b)
	require.NoError(t, err)

	_, err = Unmarshal(data)
	assert.ErrorIs(t, err, cferrors.ErrIntegrity)
}

func TestUnsupportedVersion(t *testing.T) {
	pool, m := sampleModule(t)
	b, err := New(pool, m)
	require.NoError(t, err)
	b.Version = 99

	data, err := Marshal(b)
	require.NoError(t, err)
	_, err = Unmarshal(data)
	assert.ErrorIs(t, err, cferrors.ErrInvalidInput)
}

func TestUnmarshalGarbage(t *testing.T) {
	_, err := Unmarshal([]byte{0xff, 0x00})
	assert.ErrorIs(t, err, cferrors.ErrInvalidInput)
}

func TestModuleRejectsDuplicatePool(t *testing.T) {
	b := &Bundle{
		Version: FormatVersion,
		Pool: []PoolEntry{
			{Tag: uint8(constpool.TagUtf8), Value: "x"},
			{Tag: uint8(constpool.TagUtf8), Value: "x"},
		},
	}
	_, _, err := b.Module()
	assert.ErrorIs(t, err, cferrors.ErrInvalidInput)
}

func TestModuleRejectsTrailingBytes(t *testing.T) {
	pool, m := sampleModule(t)
	b, err := New(pool, m)
	require.NoError(t, err)
	b.Attribute = append(b.Attribute, 0x00)

	_, _, err = b.Module()
	assert.ErrorIs(t, err, cferrors.ErrMalformedAttribute)
}

func TestSaveLoad(t *testing.T) {
	pool, m := sampleModule(t)
	b, err := New(pool, m)
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "module.bundle")
	require.NoError(t, Save(path, b))

	got, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, b.Hash(), got.Hash())

	_, err = Load(filepath.Join(t.TempDir(), "missing.bundle"))
	assert.ErrorIs(t, err, cferrors.ErrNotFound)
}

func TestWireKeys(t *testing.T) {
	pool, m := sampleModule(t)
	b, err := New(pool, m)
	require.NoError(t, err)
	data, err := Marshal(b)
	require.NoError(t, err)

	var raw map[string]any
	require.NoError(t, cbor.Unmarshal(data, &raw))
	for _, k := range []string{"version", "pool", "attribute", "digest"} {
		assert.Contains(t, raw, k)
	}
}

func TestDigestIsKeyed(t *testing.T) {
	a := Digest([]byte("x"))
	b := Digest([]byte("x"))
	c := Digest([]byte("y"))
	assert.Equal(t, a, b)
	assert.NotEqual(t, a, c)
	assert.Len(t, a.String(), 64)
}

func TestNewNilPool(t *testing.T) {
	_, m := sampleModule(t)
	_, err := New(nil, m)
	assert.ErrorIs(t, err, cferrors.ErrInvalidInput)
}
