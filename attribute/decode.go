package attribute

import (
	"fmt"
	"strconv"

	"go.uber.org/zap"

	"github.com/wippyai/classfile/constpool"
	"github.com/wippyai/classfile/errors"
	"github.com/wippyai/classfile/internal/binary"
)

// Smallest encoded size of one item in each list.
var minItemSize = [numSections]int{
	secRequires: 6, // index, flags, version_index
	secExports:  6, // index, flags, target_count
	secOpens:    6,
	secUses:     2,
	secProvides: 4, // index, impl_count
}

// DecodeModule decodes a Module attribute payload (the bytes after the
// attribute_name_index and attribute_length fields).
func DecodeModule(payload []byte, pool ConstantPool) (*BoundModuleAttribute, error) {
	return DecodeModuleAt(payload, 0, len(payload), pool)
}

// DecodeModuleAt decodes the Module attribute payload stored at
// buf[offset:offset+length]. The result borrows that region. Error offsets
// are absolute positions in buf.
func DecodeModuleAt(buf []byte, offset, length int, pool ConstantPool) (*BoundModuleAttribute, error) {
	if pool == nil {
		return nil, errors.InvalidInput(errors.PhaseDecode, "nil constant pool")
	}
	if offset < 0 || length < 0 || offset > len(buf) || length > len(buf)-offset {
		return nil, errors.New(errors.PhaseDecode, errors.KindMalformedAttribute).
			Path(Name).
			Offset(offset).
			Expected(fmt.Sprintf("%d bytes", length)).
			Actual(fmt.Sprintf("%d bytes", max(len(buf)-offset, 0))).
			Detail("attribute length exceeds buffer").
			Build()
	}

	payload := buf[offset : offset+length : offset+length]
	d := newDecoder(payload, offset, pool)
	m := &BoundModuleAttribute{
		pool:    pool,
		payload: payload,
		offset:  offset,
	}

	var err error
	if m.name, err = d.entry(constpool.TagModule, false, "module_name"); err != nil {
		return nil, err
	}
	if m.flags, err = d.u2("module_flags"); err != nil {
		return nil, err
	}
	if m.version, err = d.entry(constpool.TagUtf8, true, "module_version"); err != nil {
		return nil, err
	}

	if m.sections[secRequires], err = scan(d, secRequires, readRequire); err != nil {
		return nil, err
	}
	if m.sections[secExports], err = scan(d, secExports, readExport); err != nil {
		return nil, err
	}
	if m.sections[secOpens], err = scan(d, secOpens, readOpen); err != nil {
		return nil, err
	}
	if m.sections[secUses], err = scan(d, secUses, readUse); err != nil {
		return nil, err
	}
	if m.sections[secProvides], err = scan(d, secProvides, readProvide); err != nil {
		return nil, err
	}

	if n := d.r.Len(); n != 0 {
		return nil, errors.New(errors.PhaseDecode, errors.KindMalformedAttribute).
			Path(Name).
			Offset(d.r.Position()).
			Expected("end of attribute").
			Actual(fmt.Sprintf("%d trailing bytes", n)).
			Build()
	}

	Logger().Debug("decoded Module attribute",
		zap.String("module", m.name.Value),
		zap.Int("offset", offset),
		zap.Int("length", length),
		zap.Int("requires", m.sections[secRequires].count),
		zap.Int("exports", m.sections[secExports].count),
		zap.Int("opens", m.sections[secOpens].count),
		zap.Int("uses", m.sections[secUses].count),
		zap.Int("provides", m.sections[secProvides].count),
	)
	return m, nil
}

type decoder struct {
	r    *binary.Reader
	pool ConstantPool
}

func newDecoder(payload []byte, base int, pool ConstantPool) *decoder {
	return &decoder{r: binary.NewReader(payload, base), pool: pool}
}

func (d *decoder) u2(path ...string) (uint16, error) {
	pos := d.r.Position()
	v, err := d.r.ReadU2()
	if err != nil {
		e := errors.Truncated(path, pos, 2, d.r.Len())
		e.Cause = err
		return 0, e
	}
	return v, nil
}

// entry reads a constant index and resolves it, checking the tag.
// A zero index is only accepted when optional, and yields the zero Entry.
func (d *decoder) entry(want constpool.Tag, optional bool, path ...string) (constpool.Entry, error) {
	pos := d.r.Position()
	idx, err := d.u2(path...)
	if err != nil {
		return constpool.Entry{}, err
	}
	if idx == 0 {
		if optional {
			return constpool.Entry{}, nil
		}
		return constpool.Entry{}, errors.New(errors.PhaseDecode, errors.KindMalformedAttribute).
			Path(path...).
			Offset(pos).
			Expected(want.String() + " index").
			Actual("0").
			Build()
	}
	e, err := d.pool.Lookup(idx)
	if err != nil {
		return constpool.Entry{}, errors.New(errors.PhaseDecode, errors.KindMalformedAttribute).
			Path(path...).
			Offset(pos).
			Value(idx).
			Cause(err).
			Detail("constant index %d does not resolve", idx).
			Build()
	}
	if e.Tag != want {
		return constpool.Entry{}, errors.New(errors.PhaseDecode, errors.KindInvalidConstantKind).
			Path(path...).
			Offset(pos).
			Value(idx).
			Expected(want.String()).
			Actual(e.Tag.String()).
			Detail("constant index %d", idx).
			Build()
	}
	return e, nil
}

// count reads a u16 count and checks that count items of at least
// itemSize bytes fit in what is left of the attribute.
func (d *decoder) count(itemSize int, path ...string) (int, error) {
	pos := d.r.Position()
	n, err := d.u2(path...)
	if err != nil {
		return 0, err
	}
	need := int(n) * itemSize
	if have := d.r.Len(); need > have {
		return 0, errors.New(errors.PhaseDecode, errors.KindMalformedAttribute).
			Path(path...).
			Offset(pos).
			Value(n).
			Expected(fmt.Sprintf("%d bytes", need)).
			Actual(fmt.Sprintf("%d bytes", have)).
			Detail("count %d overruns attribute length", n).
			Build()
	}
	return int(n), nil
}

// scan validates one list and records where it starts.
func scan[T any](d *decoder, sec int, read func(d *decoder, i int, keep bool) (T, error)) (section, error) {
	n, err := d.count(minItemSize[sec], sectionNames[sec]+"_count")
	if err != nil {
		return section{}, err
	}
	s := section{start: d.r.Offset(), count: n}
	for i := 0; i < n; i++ {
		if _, err := read(d, i, false); err != nil {
			return section{}, err
		}
	}
	return s, nil
}

// materialize re-reads a list that scan already validated.
func materialize[T any](m *BoundModuleAttribute, sec int, read func(d *decoder, i int, keep bool) (T, error)) ([]T, error) {
	s := m.sections[sec]
	d := newDecoder(m.payload, m.offset, m.pool)
	if err := d.r.Seek(s.start); err != nil {
		return nil, errors.Malformed([]string{sectionNames[sec]}, m.offset+s.start, "section start outside payload")
	}
	out := make([]T, 0, s.count)
	for i := 0; i < s.count; i++ {
		v, err := read(d, i, true)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}

func readRequire(d *decoder, i int, _ bool) (RequireInfo, error) {
	at := strconv.Itoa(i)
	var r RequireInfo
	var err error
	if r.module, err = d.entry(constpool.TagModule, false, "requires", at, "module"); err != nil {
		return RequireInfo{}, err
	}
	if r.flags, err = d.u2("requires", at, "flags"); err != nil {
		return RequireInfo{}, err
	}
	if r.version, err = d.entry(constpool.TagUtf8, true, "requires", at, "version"); err != nil {
		return RequireInfo{}, err
	}
	return r, nil
}

func readPackageInfo(d *decoder, sec, i int, keep bool) (packageInfo, error) {
	name := sectionNames[sec]
	at := strconv.Itoa(i)
	var p packageInfo
	var err error
	if p.pkg, err = d.entry(constpool.TagPackage, false, name, at, "package"); err != nil {
		return packageInfo{}, err
	}
	if p.flags, err = d.u2(name, at, "flags"); err != nil {
		return packageInfo{}, err
	}
	n, err := d.count(2, name, at, "to_count")
	if err != nil {
		return packageInfo{}, err
	}
	if keep && n > 0 {
		p.targets = make([]constpool.Entry, 0, n)
	}
	for j := 0; j < n; j++ {
		t, err := d.entry(constpool.TagModule, false, name, at, "to", strconv.Itoa(j))
		if err != nil {
			return packageInfo{}, err
		}
		if keep {
			p.targets = append(p.targets, t)
		}
	}
	return p, nil
}

func readExport(d *decoder, i int, keep bool) (ExportInfo, error) {
	p, err := readPackageInfo(d, secExports, i, keep)
	return ExportInfo{p}, err
}

func readOpen(d *decoder, i int, keep bool) (OpenInfo, error) {
	p, err := readPackageInfo(d, secOpens, i, keep)
	return OpenInfo{p}, err
}

func readUse(d *decoder, i int, _ bool) (constpool.Entry, error) {
	return d.entry(constpool.TagClass, false, "uses", strconv.Itoa(i))
}

func readProvide(d *decoder, i int, keep bool) (ProvideInfo, error) {
	at := strconv.Itoa(i)
	var p ProvideInfo
	var err error
	if p.service, err = d.entry(constpool.TagClass, false, "provides", at, "service"); err != nil {
		return ProvideInfo{}, err
	}
	pos := d.r.Position()
	n, err := d.count(2, "provides", at, "with_count")
	if err != nil {
		return ProvideInfo{}, err
	}
	if n == 0 {
		return ProvideInfo{}, errors.New(errors.PhaseDecode, errors.KindMalformedAttribute).
			Path("provides", at, "with_count").
			Offset(pos).
			Expected("at least 1 implementation").
			Actual("0").
			Build()
	}
	if keep {
		p.implementations = make([]constpool.Entry, 0, n)
	}
	for j := 0; j < n; j++ {
		impl, err := d.entry(constpool.TagClass, false, "provides", at, "with", strconv.Itoa(j))
		if err != nil {
			return ProvideInfo{}, err
		}
		if keep {
			p.implementations = append(p.implementations, impl)
		}
	}
	return p, nil
}
