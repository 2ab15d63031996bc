package descriptor

import (
	"bytes"
	stderrors "errors"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/wippyai/classfile/accessflag"
	"github.com/wippyai/classfile/attribute"
	"github.com/wippyai/classfile/constpool"
	"github.com/wippyai/classfile/errors"
)

// Descriptor is the YAML form of a module declaration. Names are written
// in dotted form.
type Descriptor struct {
	Name     string    `yaml:"name"`
	Version  string    `yaml:"version,omitempty"`
	Flags    []string  `yaml:"flags,omitempty"`
	Requires []Require `yaml:"requires,omitempty"`
	Exports  []Package `yaml:"exports,omitempty"`
	Opens    []Package `yaml:"opens,omitempty"`
	Uses     []string  `yaml:"uses,omitempty"`
	Provides []Provide `yaml:"provides,omitempty"`
}

// Require is one requires clause.
type Require struct {
	Module  string   `yaml:"module"`
	Version string   `yaml:"version,omitempty"`
	Flags   []string `yaml:"flags,omitempty"`
}

// Package is one exports or opens clause. An empty To means every module.
type Package struct {
	Package string   `yaml:"package"`
	Flags   []string `yaml:"flags,omitempty"`
	To      []string `yaml:"to,omitempty"`
}

// Provide is one provides clause.
type Provide struct {
	Service string   `yaml:"service"`
	With    []string `yaml:"with"`
}

// Parse decodes a YAML descriptor. Unknown keys are rejected.
func Parse(data []byte) (*Descriptor, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	var d Descriptor
	if err := dec.Decode(&d); err != nil {
		if stderrors.Is(err, io.EOF) {
			return nil, errors.FieldMissing(errors.PhaseParse, nil, "name")
		}
		return nil, errors.Wrap(errors.PhaseParse, errors.KindInvalidInput, err, "decode descriptor")
	}
	if d.Name == "" {
		return nil, errors.FieldMissing(errors.PhaseParse, nil, "name")
	}
	return &d, nil
}

// Load reads and parses the descriptor at path.
func Load(path string) (*Descriptor, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(errors.PhaseParse, errors.KindNotFound, err, "read "+path)
	}
	return Parse(data)
}

// Marshal encodes d as YAML.
func Marshal(d *Descriptor) ([]byte, error) {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(d); err != nil {
		return nil, errors.Wrap(errors.PhaseEncode, errors.KindInvalidInput, err, "encode descriptor")
	}
	if err := enc.Close(); err != nil {
		return nil, errors.Wrap(errors.PhaseEncode, errors.KindInvalidInput, err, "encode descriptor")
	}
	return buf.Bytes(), nil
}

// Build turns d into a Module attribute, resolving names in pool.
func (d *Descriptor) Build(pool attribute.ConstantPool) (*attribute.UnboundModuleAttribute, error) {
	moduleFlags, err := parseFlags(accessflag.LocationModule, d.Flags)
	if err != nil {
		return nil, err
	}
	return attribute.BuildModule(pool, d.Name, func(b *attribute.ModuleBuilder) error {
		if err := b.SetFlagSet(moduleFlags...); err != nil {
			return err
		}
		if err := b.SetVersion(d.Version); err != nil {
			return err
		}
		for _, r := range d.Requires {
			flags, err := parseFlags(accessflag.LocationRequires, r.Flags)
			if err != nil {
				return err
			}
			if err := b.RequireFlags(r.Module, flags, r.Version); err != nil {
				return err
			}
		}
		for _, e := range d.Exports {
			flags, err := parseFlags(accessflag.LocationExports, e.Flags)
			if err != nil {
				return err
			}
			if err := b.ExportFlags(e.Package, flags, e.To...); err != nil {
				return err
			}
		}
		for _, o := range d.Opens {
			flags, err := parseFlags(accessflag.LocationOpens, o.Flags)
			if err != nil {
				return err
			}
			if err := b.OpenFlags(o.Package, flags, o.To...); err != nil {
				return err
			}
		}
		for _, u := range d.Uses {
			if err := b.Use(u); err != nil {
				return err
			}
		}
		for _, p := range d.Provides {
			if err := b.Provide(p.Service, p.With...); err != nil {
				return err
			}
		}
		return nil
	})
}

func parseFlags(loc accessflag.Location, names []string) ([]accessflag.Flag, error) {
	flags := make([]accessflag.Flag, 0, len(names))
	for _, n := range names {
		f, err := accessflag.Parse(loc, n)
		if err != nil {
			return nil, err
		}
		flags = append(flags, f)
	}
	return flags, nil
}

// FromAttribute describes attr. Mask bits no flag names are not represented.
func FromAttribute(attr attribute.ModuleAttribute) *Descriptor {
	d := &Descriptor{
		Name:  attr.ModuleName().Value,
		Flags: names(accessflag.LocationModule, attr.ModuleFlagsMask()),
	}
	if v, ok := attr.ModuleVersion(); ok {
		d.Version = v.Value
	}
	for _, r := range attr.Requires() {
		req := Require{
			Module: r.Module().Value,
			Flags:  names(accessflag.LocationRequires, r.FlagsMask()),
		}
		if v, ok := r.Version(); ok {
			req.Version = v.Value
		}
		d.Requires = append(d.Requires, req)
	}
	for _, e := range attr.Exports() {
		d.Exports = append(d.Exports, Package{
			Package: constpool.BinaryName(e.Package().Value),
			Flags:   names(accessflag.LocationExports, e.FlagsMask()),
			To:      values(e.Targets(), false),
		})
	}
	for _, o := range attr.Opens() {
		d.Opens = append(d.Opens, Package{
			Package: constpool.BinaryName(o.Package().Value),
			Flags:   names(accessflag.LocationOpens, o.FlagsMask()),
			To:      values(o.Targets(), false),
		})
	}
	d.Uses = values(attr.Uses(), true)
	for _, p := range attr.Provides() {
		d.Provides = append(d.Provides, Provide{
			Service: constpool.BinaryName(p.Service().Value),
			With:    values(p.Implementations(), true),
		})
	}
	return d
}

func names(loc accessflag.Location, mask uint16) []string {
	n := accessflag.Names(loc, mask)
	if len(n) == 0 {
		return nil
	}
	return n
}

func values(entries []constpool.Entry, binaryName bool) []string {
	if len(entries) == 0 {
		return nil
	}
	out := make([]string, len(entries))
	for i, e := range entries {
		if binaryName {
			out[i] = constpool.BinaryName(e.Value)
		} else {
			out[i] = e.Value
		}
	}
	return out
}
