// Command modattr builds, inspects and validates Module attribute bundles.
package main

import (
	"encoding/hex"
	"fmt"
	"io"
	"os"

	"github.com/spf13/pflag"
	"go.uber.org/zap"
	"golang.org/x/term"

	"github.com/wippyai/classfile/attribute"
	"github.com/wippyai/classfile/bundle"
	"github.com/wippyai/classfile/constpool"
	"github.com/wippyai/classfile/descriptor"
)

const usage = `Usage:
  modattr build -f module.yaml -o module.bundle [--hex]
  modattr inspect -b module.bundle [--yaml] [--hex] [-i]
  modattr validate -b module.bundle
`

func main() {
	if err := run(os.Args[1:], os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string, stdout io.Writer) error {
	if len(args) == 0 {
		return fmt.Errorf("missing command\n%s", usage)
	}
	switch args[0] {
	case "build":
		return runBuild(args[1:], stdout)
	case "inspect":
		return runInspect(args[1:], stdout)
	case "validate":
		return runValidate(args[1:], stdout)
	case "help", "-h", "--help":
		fmt.Fprint(stdout, usage)
		return nil
	default:
		return fmt.Errorf("unknown command %q\n%s", args[0], usage)
	}
}

func newFlagSet(name string, verbose *bool) *pflag.FlagSet {
	fs := pflag.NewFlagSet(name, pflag.ContinueOnError)
	fs.BoolVarP(verbose, "verbose", "v", false, "log decode and encode details")
	return fs
}

// setupLogging installs one logger in every package that logs.
func setupLogging(verbose bool) error {
	var (
		l   *zap.Logger
		err error
	)
	if verbose {
		l, err = zap.NewDevelopment()
	} else {
		cfg := zap.NewProductionConfig()
		cfg.Level = zap.NewAtomicLevelAt(zap.WarnLevel)
		l, err = cfg.Build()
	}
	if err != nil {
		return fmt.Errorf("logger: %w", err)
	}
	attribute.SetLogger(l)
	constpool.SetLogger(l)
	bundle.SetLogger(l)
	return nil
}

func runBuild(args []string, stdout io.Writer) error {
	var (
		input, output string
		showHex       bool
		verbose       bool
	)
	fs := newFlagSet("build", &verbose)
	fs.StringVarP(&input, "file", "f", "", "module descriptor (YAML)")
	fs.StringVarP(&output, "out", "o", "", "bundle to write")
	fs.BoolVar(&showHex, "hex", false, "print the encoded attribute as hex")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if input == "" || output == "" {
		return fmt.Errorf("build needs -f and -o\n%s", usage)
	}
	if err := setupLogging(verbose); err != nil {
		return err
	}

	d, err := descriptor.Load(input)
	if err != nil {
		return err
	}
	pool := constpool.New()
	m, err := d.Build(pool)
	if err != nil {
		return err
	}
	if err := attribute.Validate(m); err != nil {
		return err
	}
	b, err := bundle.New(pool, m)
	if err != nil {
		return err
	}
	if err := bundle.Save(output, b); err != nil {
		return err
	}

	fmt.Fprintf(stdout, "wrote %s: %d attribute bytes, %d constants, digest %s\n",
		output, len(b.Attribute), len(b.Pool), b.Hash())
	if showHex {
		fmt.Fprintln(stdout, hex.EncodeToString(b.Attribute))
	}
	return nil
}

func runInspect(args []string, stdout io.Writer) error {
	var (
		path                         string
		asYAML, showHex, interactive bool
		verbose                      bool
	)
	fs := newFlagSet("inspect", &verbose)
	fs.StringVarP(&path, "bundle", "b", "", "bundle to read")
	fs.BoolVar(&asYAML, "yaml", false, "print the module as a YAML descriptor")
	fs.BoolVar(&showHex, "hex", false, "hex dump the encoded attribute")
	fs.BoolVarP(&interactive, "interactive", "i", false, "browse sections in a TUI")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if path == "" {
		return fmt.Errorf("inspect needs -b\n%s", usage)
	}
	if err := setupLogging(verbose); err != nil {
		return err
	}

	b, err := bundle.Load(path)
	if err != nil {
		return err
	}
	m, _, err := b.Module()
	if err != nil {
		return err
	}

	switch {
	case interactive:
		return runInteractive(path, m)
	case asYAML:
		out, err := descriptor.Marshal(descriptor.FromAttribute(m))
		if err != nil {
			return err
		}
		_, err = stdout.Write(out)
		return err
	case showHex:
		_, err := io.WriteString(stdout, hex.Dump(b.Attribute))
		return err
	default:
		_, err := io.WriteString(stdout, renderReport(path, m, isTerminal(stdout)))
		return err
	}
}

func runValidate(args []string, stdout io.Writer) error {
	var (
		path    string
		verbose bool
	)
	fs := newFlagSet("validate", &verbose)
	fs.StringVarP(&path, "bundle", "b", "", "bundle to read")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if path == "" {
		return fmt.Errorf("validate needs -b\n%s", usage)
	}
	if err := setupLogging(verbose); err != nil {
		return err
	}

	b, err := bundle.Load(path)
	if err != nil {
		return err
	}
	m, _, err := b.Module()
	if err != nil {
		return err
	}
	if err := attribute.Validate(m); err != nil {
		return err
	}
	fmt.Fprintf(stdout, "%s: module %s is valid\n", path, m.ModuleName().Value)
	return nil
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}
