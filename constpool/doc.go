// Package constpool is a small deduplicating constant pool holding the
// entry kinds the Module attribute references: Utf8, Class, Module and
// Package.
//
// Entries are values. An Entry compares equal to another with the same tag
// and value no matter which pool or index it came from, so it can be used
// as a map key and carried between pools. Indices exist only inside a Pool:
//
//	p := constpool.New()
//	base, _ := p.Module("java.base")
//	idx, _ := p.IndexOf(base) // 2; the Utf8 name sits at 1
//
// Resolve never stores the same value twice, including under concurrent
// callers.
package constpool
