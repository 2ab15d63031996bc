package attribute

import (
	"slices"

	"github.com/wippyai/classfile/accessflag"
	"github.com/wippyai/classfile/constpool"
	"github.com/wippyai/classfile/errors"
)

// RequireInfo is one requires entry. It is comparable with ==.
type RequireInfo struct {
	module  constpool.Entry
	version constpool.Entry
	flags   uint16
}

// NewRequireInfo creates a requires entry. version may be nil.
func NewRequireInfo(module constpool.Entry, flags uint16, version *constpool.Entry) (RequireInfo, error) {
	r := RequireInfo{module: module, flags: flags}
	if version != nil {
		r.version = *version
	}
	if err := r.check(errors.PhaseBuild); err != nil {
		return RequireInfo{}, err
	}
	return r, nil
}

func (r RequireInfo) check(phase errors.Phase) error {
	if err := checkTag(phase, r.module, constpool.TagModule, "requires", "module"); err != nil {
		return err
	}
	if !r.version.IsZero() {
		return checkTag(phase, r.version, constpool.TagUtf8, "requires", "version")
	}
	return nil
}

// Module returns the required module.
func (r RequireInfo) Module() constpool.Entry { return r.module }

// FlagsMask returns the raw requires_flags.
func (r RequireInfo) FlagsMask() uint16 { return r.flags }

// Flags returns the named requires flags.
func (r RequireInfo) Flags() []accessflag.Flag {
	return accessflag.MaskToFlags(r.flags, accessflag.LocationRequires)
}

// Has reports whether flag is set.
func (r RequireInfo) Has(flag accessflag.Flag) bool {
	return accessflag.Has(accessflag.LocationRequires, r.flags, flag)
}

// Version returns the required version, if any.
func (r RequireInfo) Version() (constpool.Entry, bool) {
	return r.version, !r.version.IsZero()
}

// packageInfo is the shape shared by exports and opens entries.
type packageInfo struct {
	pkg     constpool.Entry
	targets []constpool.Entry
	flags   uint16
}

func newPackageInfo(section string, pkg constpool.Entry, flags uint16, targets []constpool.Entry) (packageInfo, error) {
	if err := checkTag(errors.PhaseBuild, pkg, constpool.TagPackage, section, "package"); err != nil {
		return packageInfo{}, err
	}
	for _, t := range targets {
		if err := checkTag(errors.PhaseBuild, t, constpool.TagModule, section, "to"); err != nil {
			return packageInfo{}, err
		}
	}
	return packageInfo{pkg: pkg, flags: flags, targets: slices.Clone(targets)}, nil
}

func (p packageInfo) check(section string) error {
	if err := checkTag(errors.PhaseBuild, p.pkg, constpool.TagPackage, section, "package"); err != nil {
		return err
	}
	for _, t := range p.targets {
		if err := checkTag(errors.PhaseBuild, t, constpool.TagModule, section, "to"); err != nil {
			return err
		}
	}
	return nil
}

// Package returns the exported or opened package.
func (p packageInfo) Package() constpool.Entry { return p.pkg }

// FlagsMask returns the raw flags.
func (p packageInfo) FlagsMask() uint16 { return p.flags }

// Targets returns a copy of the target modules. Empty means every module.
func (p packageInfo) Targets() []constpool.Entry { return slices.Clone(p.targets) }

// TargetCount returns the number of target modules.
func (p packageInfo) TargetCount() int { return len(p.targets) }

// IsQualified reports whether the entry names target modules.
func (p packageInfo) IsQualified() bool { return len(p.targets) > 0 }

func (p packageInfo) equal(o packageInfo) bool {
	return p.pkg == o.pkg && p.flags == o.flags && slices.Equal(p.targets, o.targets)
}

// ExportInfo is one exports entry.
type ExportInfo struct {
	packageInfo
}

// NewExportInfo creates an exports entry. No targets means an unqualified export.
func NewExportInfo(pkg constpool.Entry, flags uint16, targets ...constpool.Entry) (ExportInfo, error) {
	p, err := newPackageInfo("exports", pkg, flags, targets)
	if err != nil {
		return ExportInfo{}, err
	}
	return ExportInfo{p}, nil
}

// Flags returns the named exports flags.
func (e ExportInfo) Flags() []accessflag.Flag {
	return accessflag.MaskToFlags(e.flags, accessflag.LocationExports)
}

// Has reports whether flag is set.
func (e ExportInfo) Has(flag accessflag.Flag) bool {
	return accessflag.Has(accessflag.LocationExports, e.flags, flag)
}

// Equal reports whether e and o have the same package, flags and targets in order.
func (e ExportInfo) Equal(o ExportInfo) bool { return e.equal(o.packageInfo) }

// OpenInfo is one opens entry.
type OpenInfo struct {
	packageInfo
}

// NewOpenInfo creates an opens entry. No targets means an unqualified open.
func NewOpenInfo(pkg constpool.Entry, flags uint16, targets ...constpool.Entry) (OpenInfo, error) {
	p, err := newPackageInfo("opens", pkg, flags, targets)
	if err != nil {
		return OpenInfo{}, err
	}
	return OpenInfo{p}, nil
}

// Flags returns the named opens flags.
func (o OpenInfo) Flags() []accessflag.Flag {
	return accessflag.MaskToFlags(o.flags, accessflag.LocationOpens)
}

// Has reports whether flag is set.
func (o OpenInfo) Has(flag accessflag.Flag) bool {
	return accessflag.Has(accessflag.LocationOpens, o.flags, flag)
}

// Equal reports whether o and other have the same package, flags and targets in order.
func (o OpenInfo) Equal(other OpenInfo) bool { return o.equal(other.packageInfo) }

// ProvideInfo is one provides entry.
type ProvideInfo struct {
	service         constpool.Entry
	implementations []constpool.Entry
}

// NewProvideInfo creates a provides entry. At least one implementation is required.
func NewProvideInfo(service constpool.Entry, impls ...constpool.Entry) (ProvideInfo, error) {
	p := ProvideInfo{service: service, implementations: slices.Clone(impls)}
	if err := p.check(); err != nil {
		return ProvideInfo{}, err
	}
	return p, nil
}

func (p ProvideInfo) check() error {
	if err := checkTag(errors.PhaseBuild, p.service, constpool.TagClass, "provides", "service"); err != nil {
		return err
	}
	if len(p.implementations) == 0 {
		return errors.New(errors.PhaseBuild, errors.KindInvalidInput).
			Path("provides", "with").
			Detail("service %s has no implementations", p.service.Value).
			Build()
	}
	for _, impl := range p.implementations {
		if err := checkTag(errors.PhaseBuild, impl, constpool.TagClass, "provides", "with"); err != nil {
			return err
		}
	}
	return nil
}

// Service returns the service interface.
func (p ProvideInfo) Service() constpool.Entry { return p.service }

// Implementations returns a copy of the implementation classes.
func (p ProvideInfo) Implementations() []constpool.Entry { return slices.Clone(p.implementations) }

// Equal reports whether p and o name the same service and implementations in order.
func (p ProvideInfo) Equal(o ProvideInfo) bool {
	return p.service == o.service && slices.Equal(p.implementations, o.implementations)
}

func checkTag(phase errors.Phase, e constpool.Entry, want constpool.Tag, path ...string) error {
	if e.Tag == want {
		return nil
	}
	return errors.ConstantKind(phase, path, want.String(), e.Tag.String())
}
