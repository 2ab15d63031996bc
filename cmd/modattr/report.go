package main

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/wippyai/classfile/accessflag"
	"github.com/wippyai/classfile/attribute"
	"github.com/wippyai/classfile/constpool"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4")).
			Padding(0, 1)

	sectionStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#87CEEB"))

	nameStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#98FB98"))

	flagStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFD580"))

	selectedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4"))

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#666666"))
)

type section struct {
	title   string
	lines   []string
	counted bool
}

// painter renders with a style only when output goes to a terminal.
type painter bool

func (p painter) paint(s lipgloss.Style, text string) string {
	if !p {
		return text
	}
	return s.Render(text)
}

func (p painter) flags(names []string) string {
	if len(names) == 0 {
		return ""
	}
	return " " + p.paint(flagStyle, "["+strings.Join(names, ", ")+"]")
}

func (p painter) unknownBits(loc accessflag.Location, mask uint16) string {
	if extra := mask &^ accessflag.KnownBits(loc); extra != 0 {
		return " " + p.paint(flagStyle, fmt.Sprintf("(+0x%04x)", extra))
	}
	return ""
}

func buildSections(m attribute.ModuleAttribute, p painter) []section {
	header := section{title: "module"}
	header.lines = append(header.lines,
		"name:    "+p.paint(nameStyle, m.ModuleName().Value),
		"flags:  "+p.flags(accessflag.Names(accessflag.LocationModule, m.ModuleFlagsMask()))+
			p.unknownBits(accessflag.LocationModule, m.ModuleFlagsMask()),
	)
	if v, ok := m.ModuleVersion(); ok {
		header.lines = append(header.lines, "version: "+v.Value)
	}

	requires := section{title: "requires", counted: true}
	for _, r := range m.Requires() {
		line := p.paint(nameStyle, r.Module().Value) +
			p.flags(accessflag.Names(accessflag.LocationRequires, r.FlagsMask())) +
			p.unknownBits(accessflag.LocationRequires, r.FlagsMask())
		if v, ok := r.Version(); ok {
			line += " @" + v.Value
		}
		requires.lines = append(requires.lines, line)
	}

	exports := section{title: "exports", counted: true}
	for _, e := range m.Exports() {
		exports.lines = append(exports.lines,
			packageLine(p, e.Package(), accessflag.LocationExports, e.FlagsMask(), e.Targets()))
	}

	opens := section{title: "opens", counted: true}
	for _, o := range m.Opens() {
		opens.lines = append(opens.lines,
			packageLine(p, o.Package(), accessflag.LocationOpens, o.FlagsMask(), o.Targets()))
	}

	uses := section{title: "uses", counted: true}
	for _, u := range m.Uses() {
		uses.lines = append(uses.lines, p.paint(nameStyle, constpool.BinaryName(u.Value)))
	}

	provides := section{title: "provides", counted: true}
	for _, pr := range m.Provides() {
		impls := make([]string, 0, len(pr.Implementations()))
		for _, impl := range pr.Implementations() {
			impls = append(impls, constpool.BinaryName(impl.Value))
		}
		provides.lines = append(provides.lines,
			p.paint(nameStyle, constpool.BinaryName(pr.Service().Value))+" with "+strings.Join(impls, ", "))
	}

	return []section{header, requires, exports, opens, uses, provides}
}

func packageLine(p painter, pkg constpool.Entry, loc accessflag.Location, mask uint16, targets []constpool.Entry) string {
	line := p.paint(nameStyle, constpool.BinaryName(pkg.Value)) +
		p.flags(accessflag.Names(loc, mask)) +
		p.unknownBits(loc, mask)
	if len(targets) > 0 {
		to := make([]string, len(targets))
		for i, t := range targets {
			to[i] = t.Value
		}
		line += " to " + strings.Join(to, ", ")
	}
	return line
}

func renderSection(s section, p painter) string {
	var b strings.Builder
	if s.counted {
		fmt.Fprintf(&b, "%s (%d)\n", p.paint(sectionStyle, s.title), len(s.lines))
	} else {
		b.WriteString(p.paint(sectionStyle, s.title) + "\n")
	}
	for _, l := range s.lines {
		b.WriteString("  ")
		b.WriteString(l)
		b.WriteString("\n")
	}
	return b.String()
}

func renderReport(path string, m attribute.ModuleAttribute, styled bool) string {
	p := painter(styled)
	var b strings.Builder
	b.WriteString(p.paint(titleStyle, "Module attribute"))
	b.WriteString(" ")
	b.WriteString(path)
	b.WriteString("\n\n")
	for _, s := range buildSections(m, p) {
		b.WriteString(renderSection(s, p))
		b.WriteString("\n")
	}
	return b.String()
}
