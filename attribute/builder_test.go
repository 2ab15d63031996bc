package attribute_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wippyai/classfile/accessflag"
	"github.com/wippyai/classfile/attribute"
	"github.com/wippyai/classfile/constpool"
	cferrors "github.com/wippyai/classfile/errors"
)

func TestBuildWithoutName(t *testing.T) {
	b := attribute.NewModuleBuilder(constpool.New())
	require.NoError(t, b.Require("java.base", 0, ""))

	_, err := b.Build()
	assert.ErrorIs(t, err, cferrors.ErrMissingRequiredField)

	// A failed Build leaves the builder usable.
	require.NoError(t, b.SetName("com.example.app"))
	m, err := b.Build()
	require.NoError(t, err)
	assert.Len(t, m.Requires(), 1)
}

func TestBuilderUseAfterBuild(t *testing.T) {
	pool := constpool.New()
	b := attribute.NewModuleBuilder(pool)
	require.NoError(t, b.SetName("m"))
	_, err := b.Build()
	require.NoError(t, err)

	mod, _ := pool.Module("x")
	pkg, _ := pool.Package("x")
	cls, _ := pool.Class("x.X")
	ver, _ := pool.Utf8("1")
	req, _ := attribute.NewRequireInfo(mod, 0, nil)
	exp, _ := attribute.NewExportInfo(pkg, 0)
	opn, _ := attribute.NewOpenInfo(pkg, 0)
	prv, _ := attribute.NewProvideInfo(cls, cls)

	calls := map[string]func() error{
		"SetName":         func() error { return b.SetName("n") },
		"SetNameEntry":    func() error { return b.SetNameEntry(mod) },
		"SetFlags":        func() error { return b.SetFlags(0) },
		"SetFlagSet":      func() error { return b.SetFlagSet(accessflag.Open) },
		"SetVersion":      func() error { return b.SetVersion("1") },
		"SetVersionEntry": func() error { return b.SetVersionEntry(ver) },
		"Require":         func() error { return b.Require("x", 0, "") },
		"RequireFlags":    func() error { return b.RequireFlags("x", nil, "") },
		"AddRequire":      func() error { return b.AddRequire(req) },
		"Export":          func() error { return b.Export("x", 0) },
		"ExportFlags":     func() error { return b.ExportFlags("x", nil) },
		"AddExport":       func() error { return b.AddExport(exp) },
		"Open":            func() error { return b.Open("x", 0) },
		"OpenFlags":       func() error { return b.OpenFlags("x", nil) },
		"AddOpen":         func() error { return b.AddOpen(opn) },
		"Use":             func() error { return b.Use("x.X") },
		"AddUse":          func() error { return b.AddUse(cls) },
		"Provide":         func() error { return b.Provide("x.X", "x.X") },
		"AddProvide":      func() error { return b.AddProvide(prv) },
		"Build": func() error {
			_, err := b.Build()
			return err
		},
	}
	for name, call := range calls {
		t.Run(name, func(t *testing.T) {
			assert.ErrorIs(t, call(), cferrors.ErrBuilderAlreadyBuilt)
		})
	}
}

func TestBuilderDeduplicatesThroughPool(t *testing.T) {
	pool := constpool.New()
	b := attribute.NewModuleBuilder(pool)
	require.NoError(t, b.SetName("com.example.app"))
	require.NoError(t, b.Require("java.base", 0, ""))
	before := pool.Len()
	require.NoError(t, b.Require("java.base", accessflag.AccMandated, ""))
	assert.Equal(t, before, pool.Len(), "second require must not add constants")

	m, err := b.Build()
	require.NoError(t, err)
	reqs := m.Requires()
	require.Len(t, reqs, 2)
	assert.Equal(t, reqs[0].Module(), reqs[1].Module())

	i0, ok0 := pool.IndexOf(reqs[0].Module())
	i1, ok1 := pool.IndexOf(reqs[1].Module())
	assert.True(t, ok0 && ok1)
	assert.Equal(t, i0, i1)
}

func TestBuilderPreservesOrder(t *testing.T) {
	pool := constpool.New()
	m, err := attribute.BuildModule(pool, "m", func(b *attribute.ModuleBuilder) error {
		for _, c := range []string{"c.Z", "c.A", "c.Z", "c.M"} {
			if err := b.Use(c); err != nil {
				return err
			}
		}
		return nil
	})
	require.NoError(t, err)

	var got []string
	for _, u := range m.Uses() {
		got = append(got, u.Value)
	}
	assert.Equal(t, []string{"c/Z", "c/A", "c/Z", "c/M"}, got)
}

func TestBuilderSymbolicNames(t *testing.T) {
	pool := constpool.New()
	m, err := attribute.BuildModule(pool, "com.example.app", func(b *attribute.ModuleBuilder) error {
		if err := b.Open("com.example.impl", 0, "com.example.test"); err != nil {
			return err
		}
		return b.Provide("com.example.spi.Plugin", "com.example.impl.PluginImpl")
	})
	require.NoError(t, err)

	assert.Equal(t, constpool.Entry{Tag: constpool.TagModule, Value: "com.example.app"}, m.ModuleName())
	opens := m.Opens()
	require.Len(t, opens, 1)
	assert.Equal(t, "com/example/impl", opens[0].Package().Value)
	assert.Equal(t, []constpool.Entry{{Tag: constpool.TagModule, Value: "com.example.test"}}, opens[0].Targets())
	prov := m.Provides()
	require.Len(t, prov, 1)
	assert.Equal(t, "com/example/spi/Plugin", prov[0].Service().Value)
	assert.Equal(t, "com/example/impl/PluginImpl", prov[0].Implementations()[0].Value)
}

func TestBuilderRejects(t *testing.T) {
	pool := constpool.New()
	utf, _ := pool.Utf8("x")
	mod, _ := pool.Module("x")

	tests := []struct {
		name string
		call func(b *attribute.ModuleBuilder) error
		want error
	}{
		{"name entry wrong tag", func(b *attribute.ModuleBuilder) error { return b.SetNameEntry(utf) }, cferrors.ErrInvalidConstantKind},
		{"version entry wrong tag", func(b *attribute.ModuleBuilder) error { return b.SetVersionEntry(mod) }, cferrors.ErrInvalidConstantKind},
		{"use wrong tag", func(b *attribute.ModuleBuilder) error { return b.AddUse(mod) }, cferrors.ErrInvalidConstantKind},
		{"zero require", func(b *attribute.ModuleBuilder) error { return b.AddRequire(attribute.RequireInfo{}) }, cferrors.ErrInvalidConstantKind},
		{"zero export", func(b *attribute.ModuleBuilder) error { return b.AddExport(attribute.ExportInfo{}) }, cferrors.ErrInvalidConstantKind},
		{"provide without impls", func(b *attribute.ModuleBuilder) error { return b.Provide("a.S") }, cferrors.ErrInvalidInput},
		{"zero provide", func(b *attribute.ModuleBuilder) error { return b.AddProvide(attribute.ProvideInfo{}) }, cferrors.ErrInvalidConstantKind},
		{"flag illegal for module", func(b *attribute.ModuleBuilder) error { return b.SetFlagSet(accessflag.Transitive) }, cferrors.ErrInvalidInput},
		{"flag illegal for requires", func(b *attribute.ModuleBuilder) error {
			return b.RequireFlags("java.base", []accessflag.Flag{accessflag.Open}, "")
		}, cferrors.ErrInvalidInput},
		{"flag illegal for exports", func(b *attribute.ModuleBuilder) error {
			return b.ExportFlags("com.example.api", []accessflag.Flag{accessflag.Transitive})
		}, cferrors.ErrInvalidInput},
		{"flag illegal for opens", func(b *attribute.ModuleBuilder) error {
			return b.OpenFlags("com.example.impl", []accessflag.Flag{accessflag.StaticPhase}, "com.example.test")
		}, cferrors.ErrInvalidInput},
		{"bad package name", func(b *attribute.ModuleBuilder) error { return b.Export("a..b", 0) }, cferrors.ErrInvalidInput},
		{"empty module name", func(b *attribute.ModuleBuilder) error { return b.SetName("") }, cferrors.ErrInvalidInput},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := attribute.NewModuleBuilder(pool)
			assert.ErrorIs(t, tt.call(b), tt.want)
		})
	}
}

func TestBuilderNamedPackageFlags(t *testing.T) {
	pool := constpool.New()
	m, err := attribute.BuildModule(pool, "com.example.app", func(b *attribute.ModuleBuilder) error {
		if err := b.ExportFlags("com.example.api", []accessflag.Flag{accessflag.Synthetic}); err != nil {
			return err
		}
		return b.OpenFlags("com.example.impl", []accessflag.Flag{accessflag.Mandated}, "com.example.test")
	})
	require.NoError(t, err)

	exports := m.Exports()
	require.Len(t, exports, 1)
	assert.Equal(t, accessflag.AccSynthetic, exports[0].FlagsMask())
	assert.False(t, exports[0].IsQualified())

	opens := m.Opens()
	require.Len(t, opens, 1)
	assert.Equal(t, accessflag.AccMandated, opens[0].FlagsMask())
	assert.True(t, opens[0].Has(accessflag.Mandated))
	require.Equal(t, 1, opens[0].TargetCount())
	assert.Equal(t, "com.example.test", opens[0].Targets()[0].Value)
}

func TestBuildModuleCallbackError(t *testing.T) {
	_, err := attribute.BuildModule(constpool.New(), "m", func(b *attribute.ModuleBuilder) error {
		return b.Provide("a.S")
	})
	assert.ErrorIs(t, err, cferrors.ErrInvalidInput)
}

func TestSetVersionEmptyClears(t *testing.T) {
	m, err := attribute.BuildModule(constpool.New(), "m", func(b *attribute.ModuleBuilder) error {
		if err := b.SetVersion("1.0"); err != nil {
			return err
		}
		return b.SetVersion("")
	})
	require.NoError(t, err)
	_, ok := m.ModuleVersion()
	assert.False(t, ok)
}

func TestUnboundAccessorsReturnCopies(t *testing.T) {
	pool := constpool.New()
	m := buildApp(t, pool)

	uses := m.Uses()
	uses[0] = constpool.Entry{}
	reqs := m.Requires()
	reqs[0] = attribute.RequireInfo{}
	targets := m.Exports()[1].Targets()
	targets[0] = constpool.Entry{}

	assert.False(t, m.Uses()[0].IsZero())
	assert.False(t, m.Requires()[0].Module().IsZero())
	assert.False(t, m.Exports()[1].Targets()[0].IsZero())
}
