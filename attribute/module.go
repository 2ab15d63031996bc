package attribute

import (
	"slices"
	"sync"

	"github.com/wippyai/classfile/accessflag"
	"github.com/wippyai/classfile/constpool"
	"github.com/wippyai/classfile/errors"
)

// Name is the attribute name the Module attribute is registered under.
const Name = "Module"

// Attribute is any class file attribute the mapper registry can dispatch.
type Attribute interface {
	AttributeName() string
}

// ModuleAttribute is the Module attribute. It has exactly two
// implementations: *BoundModuleAttribute, produced by decoding, and
// *UnboundModuleAttribute, produced by a ModuleBuilder or
// NewModuleAttribute. Both are immutable and safe for concurrent reads.
type ModuleAttribute interface {
	Attribute

	// ModuleName returns the Module constant naming this module.
	ModuleName() constpool.Entry

	// ModuleFlagsMask returns the raw module_flags.
	ModuleFlagsMask() uint16

	// ModuleFlags returns the named module flags.
	ModuleFlags() []accessflag.Flag

	// Has tests one module flag against the raw mask.
	Has(flag accessflag.Flag) bool

	// ModuleVersion returns the Utf8 version, if present.
	ModuleVersion() (constpool.Entry, bool)

	Requires() []RequireInfo
	Exports() []ExportInfo
	Opens() []OpenInfo
	Uses() []constpool.Entry
	Provides() []ProvideInfo

	sealed()
}

// UnboundModuleAttribute is a fully materialised Module attribute.
// Accessors return copies.
type UnboundModuleAttribute struct {
	name     constpool.Entry
	version  constpool.Entry
	requires []RequireInfo
	exports  []ExportInfo
	opens    []OpenInfo
	uses     []constpool.Entry
	provides []ProvideInfo
	flags    uint16
}

// NewModuleAttribute creates a Module attribute from ready-made parts.
// version may be nil. The slices are copied.
func NewModuleAttribute(
	name constpool.Entry,
	flags uint16,
	version *constpool.Entry,
	requires []RequireInfo,
	exports []ExportInfo,
	opens []OpenInfo,
	uses []constpool.Entry,
	provides []ProvideInfo,
) (*UnboundModuleAttribute, error) {
	m := &UnboundModuleAttribute{
		name:     name,
		flags:    flags,
		requires: slices.Clone(requires),
		exports:  slices.Clone(exports),
		opens:    slices.Clone(opens),
		uses:     slices.Clone(uses),
		provides: slices.Clone(provides),
	}
	if version != nil {
		m.version = *version
	}
	if err := m.check(); err != nil {
		return nil, err
	}
	return m, nil
}

func (m *UnboundModuleAttribute) check() error {
	if err := checkTag(errors.PhaseBuild, m.name, constpool.TagModule, "module_name"); err != nil {
		return err
	}
	if !m.version.IsZero() {
		if err := checkTag(errors.PhaseBuild, m.version, constpool.TagUtf8, "module_version"); err != nil {
			return err
		}
	}
	for _, r := range m.requires {
		if err := r.check(errors.PhaseBuild); err != nil {
			return err
		}
	}
	for _, e := range m.exports {
		if err := e.check("exports"); err != nil {
			return err
		}
	}
	for _, o := range m.opens {
		if err := o.check("opens"); err != nil {
			return err
		}
	}
	for _, u := range m.uses {
		if err := checkTag(errors.PhaseBuild, u, constpool.TagClass, "uses"); err != nil {
			return err
		}
	}
	for _, p := range m.provides {
		if err := p.check(); err != nil {
			return err
		}
	}
	return nil
}

func (m *UnboundModuleAttribute) sealed() {}

func (m *UnboundModuleAttribute) AttributeName() string          { return Name }
func (m *UnboundModuleAttribute) ModuleName() constpool.Entry    { return m.name }
func (m *UnboundModuleAttribute) ModuleFlagsMask() uint16        { return m.flags }
func (m *UnboundModuleAttribute) Requires() []RequireInfo        { return slices.Clone(m.requires) }
func (m *UnboundModuleAttribute) Exports() []ExportInfo          { return slices.Clone(m.exports) }
func (m *UnboundModuleAttribute) Opens() []OpenInfo              { return slices.Clone(m.opens) }
func (m *UnboundModuleAttribute) Uses() []constpool.Entry        { return slices.Clone(m.uses) }
func (m *UnboundModuleAttribute) Provides() []ProvideInfo        { return slices.Clone(m.provides) }
func (m *UnboundModuleAttribute) ModuleFlags() []accessflag.Flag { return moduleFlags(m.flags) }

func (m *UnboundModuleAttribute) Has(flag accessflag.Flag) bool {
	return accessflag.Has(accessflag.LocationModule, m.flags, flag)
}

func (m *UnboundModuleAttribute) ModuleVersion() (constpool.Entry, bool) {
	return m.version, !m.version.IsZero()
}

// section records where one list starts inside the payload.
type section struct {
	start int // offset of the first item, relative to the payload
	count int
}

const (
	secRequires = iota
	secExports
	secOpens
	secUses
	secProvides
	numSections
)

var sectionNames = [numSections]string{"requires", "exports", "opens", "uses", "provides"}

// BoundModuleAttribute is a Module attribute read from class file bytes.
//
// It borrows its payload from the buffer passed to DecodeModule; the buffer
// must outlive it and must not be modified. Decoding validates every count
// and constant reference up front, so accessors do not return errors. Lists
// are built on first access and cached. If the borrowed bytes are changed
// after decoding and no longer parse, list accessors panic with the
// *errors.Error describing the problem.
type BoundModuleAttribute struct {
	pool     ConstantPool
	payload  []byte
	name     constpool.Entry
	version  constpool.Entry
	sections [numSections]section
	offset   int
	flags    uint16

	requires lazyList[RequireInfo]
	exports  lazyList[ExportInfo]
	opens    lazyList[OpenInfo]
	uses     lazyList[constpool.Entry]
	provides lazyList[ProvideInfo]
}

// lazyList materialises one list on first use. A failure is kept and
// re-raised on every call.
type lazyList[T any] struct {
	err   error
	items []T
	once  sync.Once
}

func (l *lazyList[T]) get(m *BoundModuleAttribute, sec int, read func(*decoder, int, bool) (T, error)) []T {
	l.once.Do(func() {
		l.items, l.err = materialize(m, sec, read)
	})
	if l.err != nil {
		panic(l.err)
	}
	return slices.Clone(l.items)
}

func (m *BoundModuleAttribute) sealed() {}

func (m *BoundModuleAttribute) AttributeName() string          { return Name }
func (m *BoundModuleAttribute) ModuleName() constpool.Entry    { return m.name }
func (m *BoundModuleAttribute) ModuleFlagsMask() uint16        { return m.flags }
func (m *BoundModuleAttribute) ModuleFlags() []accessflag.Flag { return moduleFlags(m.flags) }

func (m *BoundModuleAttribute) Has(flag accessflag.Flag) bool {
	return accessflag.Has(accessflag.LocationModule, m.flags, flag)
}

func (m *BoundModuleAttribute) ModuleVersion() (constpool.Entry, bool) {
	return m.version, !m.version.IsZero()
}

// Payload returns the borrowed attribute payload, without the
// name_index/length header.
func (m *BoundModuleAttribute) Payload() []byte { return m.payload }

// Offset returns the absolute offset of the payload in the decoded buffer.
func (m *BoundModuleAttribute) Offset() int { return m.offset }

// Count returns the declared item count of a list without materialising it.
// name is one of requires, exports, opens, uses or provides.
func (m *BoundModuleAttribute) Count(name string) int {
	for i, n := range sectionNames {
		if n == name {
			return m.sections[i].count
		}
	}
	return 0
}

func (m *BoundModuleAttribute) Requires() []RequireInfo {
	return m.requires.get(m, secRequires, readRequire)
}

func (m *BoundModuleAttribute) Exports() []ExportInfo {
	return m.exports.get(m, secExports, readExport)
}

func (m *BoundModuleAttribute) Opens() []OpenInfo {
	return m.opens.get(m, secOpens, readOpen)
}

func (m *BoundModuleAttribute) Uses() []constpool.Entry {
	return m.uses.get(m, secUses, readUse)
}

func (m *BoundModuleAttribute) Provides() []ProvideInfo {
	return m.provides.get(m, secProvides, readProvide)
}

func moduleFlags(mask uint16) []accessflag.Flag {
	return accessflag.MaskToFlags(mask, accessflag.LocationModule)
}

// Materialize returns an unbound copy of attr. An unbound attribute is
// returned as is.
func Materialize(attr ModuleAttribute) *UnboundModuleAttribute {
	if u, ok := attr.(*UnboundModuleAttribute); ok {
		return u
	}
	m := &UnboundModuleAttribute{
		name:     attr.ModuleName(),
		flags:    attr.ModuleFlagsMask(),
		requires: attr.Requires(),
		exports:  attr.Exports(),
		opens:    attr.Opens(),
		uses:     attr.Uses(),
		provides: attr.Provides(),
	}
	if v, ok := attr.ModuleVersion(); ok {
		m.version = v
	}
	return m
}

// Equal reports whether a and b hold the same fields, with lists equal in
// order and content. The representation does not matter.
func Equal(a, b ModuleAttribute) bool {
	if a.ModuleName() != b.ModuleName() || a.ModuleFlagsMask() != b.ModuleFlagsMask() {
		return false
	}
	av, aok := a.ModuleVersion()
	bv, bok := b.ModuleVersion()
	if aok != bok || av != bv {
		return false
	}
	return slices.Equal(a.Requires(), b.Requires()) &&
		slices.EqualFunc(a.Exports(), b.Exports(), ExportInfo.Equal) &&
		slices.EqualFunc(a.Opens(), b.Opens(), OpenInfo.Equal) &&
		slices.Equal(a.Uses(), b.Uses()) &&
		slices.EqualFunc(a.Provides(), b.Provides(), ProvideInfo.Equal)
}
