package attribute

import (
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/wippyai/classfile/constpool"
	"github.com/wippyai/classfile/errors"
	"github.com/wippyai/classfile/internal/binary"
)

const maxU2 = 0xffff

// moduleParts is a snapshot of the lists being encoded, so a bound model
// is materialised once per encode.
type moduleParts struct {
	name     constpool.Entry
	version  constpool.Entry
	requires []RequireInfo
	exports  []ExportInfo
	opens    []OpenInfo
	uses     []constpool.Entry
	provides []ProvideInfo
	flags    uint16
}

func partsOf(attr ModuleAttribute) *moduleParts {
	p := &moduleParts{
		name:     attr.ModuleName(),
		flags:    attr.ModuleFlagsMask(),
		requires: attr.Requires(),
		exports:  attr.Exports(),
		opens:    attr.Opens(),
		uses:     attr.Uses(),
		provides: attr.Provides(),
	}
	if v, ok := attr.ModuleVersion(); ok {
		p.version = v
	}
	return p
}

// size returns the exact payload length, failing if a count does not fit a u16.
func (p *moduleParts) size() (int, error) {
	counts := [numSections]int{len(p.requires), len(p.exports), len(p.opens), len(p.uses), len(p.provides)}
	for sec, n := range counts {
		if n > maxU2 {
			return 0, errors.Overflow(errors.PhaseEncode, []string{sectionNames[sec] + "_count"}, n, "u16")
		}
	}

	n := 6 // name, flags, version
	n += 2 + 6*len(p.requires)
	for i, e := range p.exports {
		if e.TargetCount() > maxU2 {
			return 0, errors.Overflow(errors.PhaseEncode, []string{"exports", strconv.Itoa(i), "to_count"}, e.TargetCount(), "u16")
		}
		n += 6 + 2*e.TargetCount()
	}
	n += 2
	for i, o := range p.opens {
		if o.TargetCount() > maxU2 {
			return 0, errors.Overflow(errors.PhaseEncode, []string{"opens", strconv.Itoa(i), "to_count"}, o.TargetCount(), "u16")
		}
		n += 6 + 2*o.TargetCount()
	}
	n += 2
	n += 2 + 2*len(p.uses)
	n += 2
	for i, pr := range p.provides {
		if len(pr.implementations) > maxU2 {
			return 0, errors.Overflow(errors.PhaseEncode, []string{"provides", strconv.Itoa(i), "with_count"}, len(pr.implementations), "u16")
		}
		n += 4 + 2*len(pr.implementations)
	}
	return n, nil
}

// ModuleSize returns the encoded payload length of attr.
func ModuleSize(attr ModuleAttribute) (int, error) {
	return partsOf(attr).size()
}

// EncodeModule encodes attr as a Module attribute payload. Constants
// missing from pool are added to it.
func EncodeModule(attr ModuleAttribute, pool ConstantPool) ([]byte, error) {
	return AppendModule(nil, attr, pool)
}

// AppendModule appends the encoded payload of attr to dst.
func AppendModule(dst []byte, attr ModuleAttribute, pool ConstantPool) ([]byte, error) {
	if attr == nil {
		return nil, errors.InvalidInput(errors.PhaseEncode, "nil attribute")
	}
	if pool == nil {
		return nil, errors.InvalidInput(errors.PhaseEncode, "nil constant pool")
	}
	p := partsOf(attr)
	size, err := p.size()
	if err != nil {
		return nil, err
	}
	if cap(dst)-len(dst) < size {
		grown := make([]byte, len(dst), len(dst)+size)
		copy(grown, dst)
		dst = grown
	}
	start := len(dst)

	e := &encoder{w: binary.AppendTo(dst), pool: pool}
	e.index(p.name, "module_name")
	e.w.U2(p.flags)
	e.optional(p.version, "module_version")

	e.w.U2(uint16(len(p.requires)))
	for _, r := range p.requires {
		e.index(r.module, "requires", "module")
		e.w.U2(r.flags)
		e.optional(r.version, "requires", "version")
	}

	e.w.U2(uint16(len(p.exports)))
	for _, x := range p.exports {
		e.packageInfo(x.packageInfo, "exports")
	}

	e.w.U2(uint16(len(p.opens)))
	for _, o := range p.opens {
		e.packageInfo(o.packageInfo, "opens")
	}

	e.w.U2(uint16(len(p.uses)))
	for _, u := range p.uses {
		e.index(u, "uses")
	}

	e.w.U2(uint16(len(p.provides)))
	for _, pr := range p.provides {
		e.index(pr.service, "provides", "service")
		e.w.U2(uint16(len(pr.implementations)))
		for _, impl := range pr.implementations {
			e.index(impl, "provides", "with")
		}
	}

	if e.err != nil {
		return nil, e.err
	}
	if got := e.w.Len() - start; got != size {
		return nil, errors.New(errors.PhaseEncode, errors.KindMalformedAttribute).
			Path(Name).
			Expected(strconv.Itoa(size) + " bytes").
			Actual(strconv.Itoa(got) + " bytes").
			Detail("encoded length differs from computed size").
			Build()
	}

	Logger().Debug("encoded Module attribute",
		zap.String("module", p.name.Value),
		zap.Int("length", size),
	)
	return e.w.Bytes(), nil
}

// encoder records the first indexing error and keeps writing zeros so the
// output length still matches the computed size.
type encoder struct {
	w    *binary.Writer
	pool ConstantPool
	err  error
}

func (e *encoder) index(c constpool.Entry, path ...string) {
	if e.err != nil {
		e.w.U2(0)
		return
	}
	idx, err := indexOf(e.pool, c)
	if err != nil {
		if _, ok := err.(*errors.Error); !ok {
			err = errors.Wrap(errors.PhaseEncode, errors.KindInvalidInput, err, "cannot index "+c.String()+" at "+strings.Join(path, "."))
		}
		e.err = err
	}
	e.w.U2(idx)
}

func (e *encoder) optional(c constpool.Entry, path ...string) {
	if c.IsZero() {
		e.w.U2(0)
		return
	}
	e.index(c, path...)
}

func (e *encoder) packageInfo(p packageInfo, section string) {
	e.index(p.pkg, section, "package")
	e.w.U2(p.flags)
	e.w.U2(uint16(len(p.targets)))
	for _, t := range p.targets {
		e.index(t, section, "to")
	}
}

// indexOf finds c in pool, resolving it first if it is missing.
func indexOf(pool ConstantPool, c constpool.Entry) (uint16, error) {
	if idx, ok := pool.IndexOf(c); ok {
		return idx, nil
	}
	if _, err := pool.Resolve(c.Tag, c.Value); err != nil {
		return 0, err
	}
	if idx, ok := pool.IndexOf(c); ok {
		return idx, nil
	}
	return 0, errors.NotFound(errors.PhaseEncode, "constant", c)
}
