package attribute

import (
	"github.com/wippyai/classfile/accessflag"
	"github.com/wippyai/classfile/constpool"
	"github.com/wippyai/classfile/errors"
)

// ModuleBuilder accumulates the fields of a Module attribute. Setters that
// take names resolve them through the pool, inserting missing constants.
// Lists keep call order and duplicates.
//
// A builder is single use: after Build every method fails with
// builder_already_built. It is not safe for concurrent use.
type ModuleBuilder struct {
	pool     ConstantPool
	name     constpool.Entry
	version  constpool.Entry
	requires []RequireInfo
	exports  []ExportInfo
	opens    []OpenInfo
	uses     []constpool.Entry
	provides []ProvideInfo
	flags    uint16
	built    bool
}

// NewModuleBuilder creates a builder that resolves names in pool.
func NewModuleBuilder(pool ConstantPool) *ModuleBuilder {
	return &ModuleBuilder{pool: pool}
}

// BuildModule creates a builder, sets the module name, runs fn and builds.
func BuildModule(pool ConstantPool, name string, fn func(*ModuleBuilder) error) (*UnboundModuleAttribute, error) {
	b := NewModuleBuilder(pool)
	if err := b.SetName(name); err != nil {
		return nil, err
	}
	if fn != nil {
		if err := fn(b); err != nil {
			return nil, err
		}
	}
	return b.Build()
}

func (b *ModuleBuilder) live(op string) error {
	if b.built {
		return errors.AlreadyBuilt(op)
	}
	if b.pool == nil {
		return errors.InvalidInput(errors.PhaseBuild, "nil constant pool")
	}
	return nil
}

func (b *ModuleBuilder) resolve(tag constpool.Tag, name string) (constpool.Entry, error) {
	var (
		value string
		err   error
	)
	switch tag {
	case constpool.TagModule:
		value, err = constpool.ModuleName(name)
	case constpool.TagPackage:
		value, err = constpool.PackageName(name)
	case constpool.TagClass:
		value, err = constpool.ClassName(name)
	default:
		value = name
	}
	if err != nil {
		return constpool.Entry{}, err
	}
	return b.pool.Resolve(tag, value)
}

func (b *ModuleBuilder) resolveAll(tag constpool.Tag, names []string) ([]constpool.Entry, error) {
	out := make([]constpool.Entry, 0, len(names))
	for _, n := range names {
		e, err := b.resolve(tag, n)
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, nil
}

// SetName sets the module name.
func (b *ModuleBuilder) SetName(name string) error {
	if err := b.live("SetName"); err != nil {
		return err
	}
	e, err := b.resolve(constpool.TagModule, name)
	if err != nil {
		return err
	}
	b.name = e
	return nil
}

// SetNameEntry sets the module name from a Module constant.
func (b *ModuleBuilder) SetNameEntry(e constpool.Entry) error {
	if err := b.live("SetNameEntry"); err != nil {
		return err
	}
	if err := checkTag(errors.PhaseBuild, e, constpool.TagModule, "module_name"); err != nil {
		return err
	}
	b.name = e
	return nil
}

// SetFlags sets the raw module_flags. Unknown bits are kept.
func (b *ModuleBuilder) SetFlags(mask uint16) error {
	if err := b.live("SetFlags"); err != nil {
		return err
	}
	b.flags = mask
	return nil
}

// SetFlagSet sets module_flags from named flags.
func (b *ModuleBuilder) SetFlagSet(flags ...accessflag.Flag) error {
	if err := b.live("SetFlagSet"); err != nil {
		return err
	}
	mask, err := accessflag.FlagsToMask(accessflag.LocationModule, flags...)
	if err != nil {
		return err
	}
	b.flags = mask
	return nil
}

// SetVersion sets the module version. An empty string clears it.
func (b *ModuleBuilder) SetVersion(version string) error {
	if err := b.live("SetVersion"); err != nil {
		return err
	}
	if version == "" {
		b.version = constpool.Entry{}
		return nil
	}
	e, err := b.resolve(constpool.TagUtf8, version)
	if err != nil {
		return err
	}
	b.version = e
	return nil
}

// SetVersionEntry sets the module version from a Utf8 constant.
func (b *ModuleBuilder) SetVersionEntry(e constpool.Entry) error {
	if err := b.live("SetVersionEntry"); err != nil {
		return err
	}
	if err := checkTag(errors.PhaseBuild, e, constpool.TagUtf8, "module_version"); err != nil {
		return err
	}
	b.version = e
	return nil
}

// Require adds a requires entry. An empty version means none.
func (b *ModuleBuilder) Require(module string, mask uint16, version string) error {
	if err := b.live("Require"); err != nil {
		return err
	}
	m, err := b.resolve(constpool.TagModule, module)
	if err != nil {
		return err
	}
	r := RequireInfo{module: m, flags: mask}
	if version != "" {
		if r.version, err = b.resolve(constpool.TagUtf8, version); err != nil {
			return err
		}
	}
	b.requires = append(b.requires, r)
	return nil
}

// RequireFlags is Require with named flags.
func (b *ModuleBuilder) RequireFlags(module string, flags []accessflag.Flag, version string) error {
	if err := b.live("RequireFlags"); err != nil {
		return err
	}
	mask, err := accessflag.FlagsToMask(accessflag.LocationRequires, flags...)
	if err != nil {
		return err
	}
	return b.Require(module, mask, version)
}

// AddRequire adds a prepared requires entry.
func (b *ModuleBuilder) AddRequire(r RequireInfo) error {
	if err := b.live("AddRequire"); err != nil {
		return err
	}
	if err := r.check(errors.PhaseBuild); err != nil {
		return err
	}
	b.requires = append(b.requires, r)
	return nil
}

// Export adds an exports entry. No targets means an unqualified export.
func (b *ModuleBuilder) Export(pkg string, mask uint16, targets ...string) error {
	if err := b.live("Export"); err != nil {
		return err
	}
	p, err := b.packageInfo(pkg, mask, targets)
	if err != nil {
		return err
	}
	b.exports = append(b.exports, ExportInfo{p})
	return nil
}

// ExportFlags is Export with named flags.
func (b *ModuleBuilder) ExportFlags(pkg string, flags []accessflag.Flag, targets ...string) error {
	if err := b.live("ExportFlags"); err != nil {
		return err
	}
	mask, err := accessflag.FlagsToMask(accessflag.LocationExports, flags...)
	if err != nil {
		return err
	}
	return b.Export(pkg, mask, targets...)
}

// AddExport adds a prepared exports entry.
func (b *ModuleBuilder) AddExport(e ExportInfo) error {
	if err := b.live("AddExport"); err != nil {
		return err
	}
	if err := e.check("exports"); err != nil {
		return err
	}
	b.exports = append(b.exports, e)
	return nil
}

// Open adds an opens entry. No targets means an unqualified open.
func (b *ModuleBuilder) Open(pkg string, mask uint16, targets ...string) error {
	if err := b.live("Open"); err != nil {
		return err
	}
	p, err := b.packageInfo(pkg, mask, targets)
	if err != nil {
		return err
	}
	b.opens = append(b.opens, OpenInfo{p})
	return nil
}

// OpenFlags is Open with named flags.
func (b *ModuleBuilder) OpenFlags(pkg string, flags []accessflag.Flag, targets ...string) error {
	if err := b.live("OpenFlags"); err != nil {
		return err
	}
	mask, err := accessflag.FlagsToMask(accessflag.LocationOpens, flags...)
	if err != nil {
		return err
	}
	return b.Open(pkg, mask, targets...)
}

// AddOpen adds a prepared opens entry.
func (b *ModuleBuilder) AddOpen(o OpenInfo) error {
	if err := b.live("AddOpen"); err != nil {
		return err
	}
	if err := o.check("opens"); err != nil {
		return err
	}
	b.opens = append(b.opens, o)
	return nil
}

func (b *ModuleBuilder) packageInfo(pkg string, mask uint16, targets []string) (packageInfo, error) {
	p, err := b.resolve(constpool.TagPackage, pkg)
	if err != nil {
		return packageInfo{}, err
	}
	var to []constpool.Entry
	if len(targets) > 0 {
		if to, err = b.resolveAll(constpool.TagModule, targets); err != nil {
			return packageInfo{}, err
		}
	}
	return packageInfo{pkg: p, flags: mask, targets: to}, nil
}

// Use adds a service class to uses.
func (b *ModuleBuilder) Use(class string) error {
	if err := b.live("Use"); err != nil {
		return err
	}
	c, err := b.resolve(constpool.TagClass, class)
	if err != nil {
		return err
	}
	b.uses = append(b.uses, c)
	return nil
}

// AddUse adds a Class constant to uses.
func (b *ModuleBuilder) AddUse(e constpool.Entry) error {
	if err := b.live("AddUse"); err != nil {
		return err
	}
	if err := checkTag(errors.PhaseBuild, e, constpool.TagClass, "uses"); err != nil {
		return err
	}
	b.uses = append(b.uses, e)
	return nil
}

// Provide adds a provides entry for service with the given implementations.
func (b *ModuleBuilder) Provide(service string, impls ...string) error {
	if err := b.live("Provide"); err != nil {
		return err
	}
	if len(impls) == 0 {
		return errors.New(errors.PhaseBuild, errors.KindInvalidInput).
			Path("provides", "with").
			Detail("service %s has no implementations", service).
			Build()
	}
	s, err := b.resolve(constpool.TagClass, service)
	if err != nil {
		return err
	}
	with, err := b.resolveAll(constpool.TagClass, impls)
	if err != nil {
		return err
	}
	b.provides = append(b.provides, ProvideInfo{service: s, implementations: with})
	return nil
}

// AddProvide adds a prepared provides entry.
func (b *ModuleBuilder) AddProvide(p ProvideInfo) error {
	if err := b.live("AddProvide"); err != nil {
		return err
	}
	if err := p.check(); err != nil {
		return err
	}
	b.provides = append(b.provides, p)
	return nil
}

// Build returns the accumulated attribute. The builder cannot be used afterwards.
func (b *ModuleBuilder) Build() (*UnboundModuleAttribute, error) {
	if b.built {
		return nil, errors.AlreadyBuilt("Build")
	}
	if b.name.IsZero() {
		return nil, errors.FieldMissing(errors.PhaseBuild, []string{Name}, "module_name")
	}
	b.built = true
	m := &UnboundModuleAttribute{
		name:     b.name,
		flags:    b.flags,
		version:  b.version,
		requires: b.requires,
		exports:  b.exports,
		opens:    b.opens,
		uses:     b.uses,
		provides: b.provides,
	}
	b.requires, b.exports, b.opens, b.uses, b.provides = nil, nil, nil, nil, nil
	return m, nil
}
