package accessflag

import (
	"strings"

	"github.com/wippyai/classfile/errors"
)

// Location identifies where a flag mask appears in the module attribute.
type Location uint8

const (
	LocationModule Location = iota
	LocationRequires
	LocationExports
	LocationOpens
)

func (l Location) String() string {
	switch l {
	case LocationModule:
		return "module"
	case LocationRequires:
		return "requires"
	case LocationExports:
		return "exports"
	case LocationOpens:
		return "opens"
	default:
		return "unknown"
	}
}

// Flag is a named access flag. Different flags may share a bit
// (Open and Transitive are both 0x0020); the location decides which applies.
type Flag uint8

const (
	Open Flag = iota + 1
	Transitive
	StaticPhase
	Synthetic
	Mandated
)

// Raw bit values.
const (
	AccOpen        uint16 = 0x0020
	AccTransitive  uint16 = 0x0020
	AccStaticPhase uint16 = 0x0040
	AccSynthetic   uint16 = 0x1000
	AccMandated    uint16 = 0x8000
)

var flagInfo = [...]struct {
	name string
	mask uint16
}{
	Open:        {"open", AccOpen},
	Transitive:  {"transitive", AccTransitive},
	StaticPhase: {"static_phase", AccStaticPhase},
	Synthetic:   {"synthetic", AccSynthetic},
	Mandated:    {"mandated", AccMandated},
}

// Mask returns the bit for f.
func (f Flag) Mask() uint16 {
	if int(f) >= len(flagInfo) {
		return 0
	}
	return flagInfo[f].mask
}

func (f Flag) String() string {
	if f == 0 || int(f) >= len(flagInfo) {
		return "unknown"
	}
	return flagInfo[f].name
}

// Ordered by bit so MaskToFlags output is ordered too.
var tables = [...][]Flag{
	LocationModule:   {Open, Synthetic, Mandated},
	LocationRequires: {Transitive, StaticPhase, Synthetic, Mandated},
	LocationExports:  {Synthetic, Mandated},
	LocationOpens:    {Synthetic, Mandated},
}

var (
	known   [len(tables)]uint16
	allowed [len(tables)]uint8 // bit f set when Flag f is legal at loc
)

func init() {
	for loc, flags := range tables {
		for _, f := range flags {
			known[loc] |= f.Mask()
			allowed[loc] |= 1 << f
		}
	}
}

// Flags returns the flags legal at loc, ordered by bit.
func Flags(loc Location) []Flag {
	if int(loc) >= len(tables) {
		return nil
	}
	out := make([]Flag, len(tables[loc]))
	copy(out, tables[loc])
	return out
}

// KnownBits returns the OR of every flag legal at loc.
func KnownBits(loc Location) uint16 {
	if int(loc) >= len(known) {
		return 0
	}
	return known[loc]
}

// Allowed reports whether f is legal at loc.
func Allowed(loc Location, f Flag) bool {
	if int(loc) >= len(allowed) || f >= 8 {
		return false
	}
	return allowed[loc]&(1<<f) != 0
}

// MaskToFlags returns the flags named by mask at loc. Bits that no flag at
// loc names are dropped from the result but stay in the caller's mask.
func MaskToFlags(mask uint16, loc Location) []Flag {
	if int(loc) >= len(tables) {
		return nil
	}
	var out []Flag
	for _, f := range tables[loc] {
		if mask&f.Mask() != 0 {
			out = append(out, f)
		}
	}
	return out
}

// FlagsToMask ORs flags together, rejecting any flag not legal at loc.
func FlagsToMask(loc Location, flags ...Flag) (uint16, error) {
	var mask uint16
	for _, f := range flags {
		if !Allowed(loc, f) {
			return 0, errors.New(errors.PhaseBuild, errors.KindInvalidInput).
				Path(loc.String()).
				Value(f).
				Detail("flag %s is not allowed on %s", f, loc).
				Build()
		}
		mask |= f.Mask()
	}
	return mask, nil
}

// Has reports whether flag is set in mask at loc. Open and Transitive share
// a bit, so the flag must also be legal at loc.
func Has(loc Location, mask uint16, flag Flag) bool {
	return mask&flag.Mask() != 0 && Allowed(loc, flag)
}

// Parse looks up a flag by name at loc, ignoring case. Dashes and
// underscores are interchangeable, so "static-phase" and "STATIC_PHASE" both work.
func Parse(loc Location, name string) (Flag, error) {
	n := strings.ReplaceAll(strings.ToLower(strings.TrimSpace(name)), "-", "_")
	if int(loc) < len(tables) {
		for _, f := range tables[loc] {
			if f.String() == n {
				return f, nil
			}
		}
	}
	return 0, errors.New(errors.PhaseParse, errors.KindInvalidInput).
		Path(loc.String()).
		Value(name).
		Detail("unknown %s flag %q", loc, name).
		Build()
}

// Names returns the names of the flags set in mask at loc.
func Names(loc Location, mask uint16) []string {
	flags := MaskToFlags(mask, loc)
	out := make([]string, len(flags))
	for i, f := range flags {
		out[i] = f.String()
	}
	return out
}
