// Package accessflag maps the 16-bit access masks of the Module attribute
// to named flags.
//
// The same bit means different things depending on where the mask sits:
// 0x0020 is Open on the module itself and Transitive on a requires entry.
// Every function therefore takes a Location. Masks are always stored raw,
// so bits no flag names survive a decode/encode cycle untouched.
package accessflag
