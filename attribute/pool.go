package attribute

import "github.com/wippyai/classfile/constpool"

// ConstantPool is what the codec needs from the enclosing class file's
// constant pool. *constpool.Pool implements it.
type ConstantPool interface {
	// Resolve returns the entry for (tag, value), inserting it if absent.
	// Equal values must yield equal entries.
	Resolve(tag constpool.Tag, value string) (constpool.Entry, error)

	// Lookup returns the entry stored at index.
	Lookup(index uint16) (constpool.Entry, error)

	// IndexOf returns the index of e in this pool.
	IndexOf(e constpool.Entry) (uint16, bool)
}

var _ ConstantPool = (*constpool.Pool)(nil)
