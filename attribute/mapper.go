package attribute

import (
	"fmt"
	"sync"

	"github.com/wippyai/classfile/constpool"
	"github.com/wippyai/classfile/errors"
	"github.com/wippyai/classfile/internal/binary"
)

// HeaderSize is the size of attribute_name_index plus attribute_length.
const HeaderSize = 6

// Mapper reads and writes one attribute kind. The outer class file reader
// looks mappers up by attribute name.
type Mapper interface {
	Name() string

	// Size returns the payload length Write will produce.
	Size(attr Attribute) (int, error)

	// Read decodes the payload at buf[offset:offset+length].
	Read(buf []byte, offset, length int, pool ConstantPool) (Attribute, error)

	// Write appends the payload of attr to dst.
	Write(dst []byte, attr Attribute, pool ConstantPool) ([]byte, error)
}

// ModuleMapper handles the Module attribute.
type ModuleMapper struct{}

func (ModuleMapper) Name() string { return Name }

func (ModuleMapper) Size(attr Attribute) (int, error) {
	m, err := asModule(attr)
	if err != nil {
		return 0, err
	}
	return ModuleSize(m)
}

func (ModuleMapper) Read(buf []byte, offset, length int, pool ConstantPool) (Attribute, error) {
	return DecodeModuleAt(buf, offset, length, pool)
}

func (ModuleMapper) Write(dst []byte, attr Attribute, pool ConstantPool) ([]byte, error) {
	m, err := asModule(attr)
	if err != nil {
		return nil, err
	}
	return AppendModule(dst, m, pool)
}

func asModule(attr Attribute) (ModuleAttribute, error) {
	m, ok := attr.(ModuleAttribute)
	if !ok {
		return nil, errors.New(errors.PhaseEncode, errors.KindInvalidInput).
			Expected(Name).
			Actual(fmt.Sprintf("%T", attr)).
			Build()
	}
	return m, nil
}

var (
	mappersMu sync.RWMutex
	mappers   = map[string]Mapper{Name: ModuleMapper{}}
)

// RegisterMapper adds or replaces the mapper for m.Name().
func RegisterMapper(m Mapper) {
	mappersMu.Lock()
	mappers[m.Name()] = m
	mappersMu.Unlock()
}

// LookupMapper returns the mapper registered for name.
func LookupMapper(name string) (Mapper, bool) {
	mappersMu.RLock()
	m, ok := mappers[name]
	mappersMu.RUnlock()
	return m, ok
}

// ReadAttribute reads one attribute, header included, starting at
// buf[offset]. It returns the attribute and the offset just past it.
func ReadAttribute(buf []byte, offset int, pool ConstantPool) (Attribute, int, error) {
	if pool == nil {
		return nil, 0, errors.InvalidInput(errors.PhaseDecode, "nil constant pool")
	}
	if offset < 0 || offset > len(buf) {
		return nil, 0, errors.Malformed([]string{"attribute"}, offset, "offset outside buffer")
	}
	r := binary.NewReader(buf[offset:], offset)
	nameIdx, err := r.ReadU2()
	if err != nil {
		return nil, 0, errors.Truncated([]string{"attribute_name_index"}, offset, HeaderSize, len(buf)-offset)
	}
	length, err := r.ReadU4()
	if err != nil {
		return nil, 0, errors.Truncated([]string{"attribute_length"}, offset, HeaderSize, len(buf)-offset)
	}

	name, err := pool.Lookup(nameIdx)
	if err != nil {
		return nil, 0, errors.New(errors.PhaseDecode, errors.KindMalformedAttribute).
			Path("attribute_name_index").
			Offset(offset).
			Value(nameIdx).
			Cause(err).
			Build()
	}
	if name.Tag != constpool.TagUtf8 {
		return nil, 0, errors.New(errors.PhaseDecode, errors.KindInvalidConstantKind).
			Path("attribute_name_index").
			Offset(offset).
			Expected(constpool.TagUtf8.String()).
			Actual(name.Tag.String()).
			Build()
	}
	m, ok := LookupMapper(name.Value)
	if !ok {
		return nil, 0, errors.NotFound(errors.PhaseDecode, "attribute mapper", name.Value)
	}

	start := r.Position()
	payload, err := r.ReadBytes(int(length))
	if err != nil {
		return nil, 0, errors.New(errors.PhaseDecode, errors.KindMalformedAttribute).
			Path(name.Value).
			Offset(offset + 2).
			Expected(fmt.Sprintf("%d bytes", length)).
			Actual(fmt.Sprintf("%d bytes", r.Len())).
			Cause(err).
			Detail("attribute_length overruns buffer").
			Build()
	}
	attr, err := m.Read(buf, start, len(payload), pool)
	if err != nil {
		return nil, 0, err
	}
	return attr, r.Position(), nil
}

// AppendAttribute appends attr with its name_index and length header.
func AppendAttribute(dst []byte, attr Attribute, pool ConstantPool) ([]byte, error) {
	if attr == nil {
		return nil, errors.InvalidInput(errors.PhaseEncode, "nil attribute")
	}
	if pool == nil {
		return nil, errors.InvalidInput(errors.PhaseEncode, "nil constant pool")
	}
	m, ok := LookupMapper(attr.AttributeName())
	if !ok {
		return nil, errors.NotFound(errors.PhaseEncode, "attribute mapper", attr.AttributeName())
	}
	size, err := m.Size(attr)
	if err != nil {
		return nil, err
	}
	name, err := pool.Resolve(constpool.TagUtf8, m.Name())
	if err != nil {
		return nil, err
	}
	nameIdx, ok := pool.IndexOf(name)
	if !ok {
		return nil, errors.NotFound(errors.PhaseEncode, "constant", name)
	}

	w := binary.AppendTo(dst)
	w.U2(nameIdx)
	w.U4(uint32(size))
	return m.Write(w.Bytes(), attr, pool)
}
