package constpool

import (
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/wippyai/classfile/errors"
)

// Tag is a constant pool entry kind.
type Tag uint8

const (
	TagUtf8    Tag = 1
	TagClass   Tag = 7
	TagModule  Tag = 19
	TagPackage Tag = 20
)

func (t Tag) String() string {
	switch t {
	case TagUtf8:
		return "Utf8"
	case TagClass:
		return "Class"
	case TagModule:
		return "Module"
	case TagPackage:
		return "Package"
	default:
		return fmt.Sprintf("Tag(%d)", uint8(t))
	}
}

// Valid reports whether t is a tag this pool stores.
func (t Tag) Valid() bool {
	switch t {
	case TagUtf8, TagClass, TagModule, TagPackage:
		return true
	}
	return false
}

// MaxEntries is the largest number of slots a pool can hold.
// Index 0 is reserved, so valid indices are 1..MaxEntries.
const MaxEntries = 0xffff

// Entry is a reference to a pool constant. Two entries are equal when
// their tag and value are equal; the index they occupy plays no part.
type Entry struct {
	Tag   Tag
	Value string
}

func (e Entry) String() string {
	return e.Tag.String() + "(" + e.Value + ")"
}

// IsZero reports whether e is the zero Entry.
func (e Entry) IsZero() bool {
	return e == Entry{}
}

// Pool is an in-memory deduplicating constant pool. It is safe for
// concurrent use.
type Pool struct {
	index   map[Entry]uint16
	entries []Entry
	mu      sync.RWMutex
}

// New creates an empty pool.
func New() *Pool {
	return &Pool{index: make(map[Entry]uint16)}
}

// FromEntries restores a pool from an Entries snapshot. Entries keep the
// indices they had when the snapshot was taken.
func FromEntries(entries []Entry) (*Pool, error) {
	if len(entries) > MaxEntries {
		return nil, errors.Overflow(errors.PhaseLoad, []string{"pool"}, len(entries), "65535 entries")
	}
	p := &Pool{
		index:   make(map[Entry]uint16, len(entries)),
		entries: make([]Entry, 0, len(entries)),
	}
	for i, e := range entries {
		if !e.Tag.Valid() {
			return nil, errors.New(errors.PhaseLoad, errors.KindInvalidInput).
				Path("pool", fmt.Sprint(i+1)).
				Value(uint8(e.Tag)).
				Detail("unsupported tag %d", uint8(e.Tag)).
				Build()
		}
		if _, dup := p.index[e]; dup {
			return nil, errors.New(errors.PhaseLoad, errors.KindInvalidInput).
				Path("pool", fmt.Sprint(i+1)).
				Value(e).
				Detail("duplicate entry %s", e).
				Build()
		}
		p.entries = append(p.entries, e)
		p.index[e] = uint16(len(p.entries))
	}
	return p, nil
}

// Resolve returns the entry for (tag, value), inserting it if absent.
// Class, Module and Package entries also insert their Utf8 name first.
func (p *Pool) Resolve(tag Tag, value string) (Entry, error) {
	if !tag.Valid() {
		return Entry{}, errors.New(errors.PhaseResolve, errors.KindInvalidInput).
			Value(uint8(tag)).
			Detail("unsupported tag %d", uint8(tag)).
			Build()
	}
	e := Entry{Tag: tag, Value: value}

	p.mu.RLock()
	_, ok := p.index[e]
	p.mu.RUnlock()
	if ok {
		return e, nil
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if tag != TagUtf8 {
		if _, err := p.insertLocked(Entry{Tag: TagUtf8, Value: value}); err != nil {
			return Entry{}, err
		}
	}
	if _, err := p.insertLocked(e); err != nil {
		return Entry{}, err
	}
	return e, nil
}

func (p *Pool) insertLocked(e Entry) (uint16, error) {
	if idx, ok := p.index[e]; ok {
		return idx, nil
	}
	if len(p.entries) >= MaxEntries {
		return 0, errors.Overflow(errors.PhaseResolve, []string{"pool"}, len(p.entries)+1, "65535 entries")
	}
	p.entries = append(p.entries, e)
	idx := uint16(len(p.entries))
	p.index[e] = idx
	Logger().Debug("constant added", zap.Stringer("entry", e), zap.Uint16("index", idx))
	return idx, nil
}

// Lookup returns the entry at index.
func (p *Pool) Lookup(index uint16) (Entry, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if index == 0 || int(index) > len(p.entries) {
		return Entry{}, errors.NotFound(errors.PhaseResolve, "constant index", index)
	}
	return p.entries[index-1], nil
}

// IndexOf returns the index of e, if present.
func (p *Pool) IndexOf(e Entry) (uint16, bool) {
	p.mu.RLock()
	idx, ok := p.index[e]
	p.mu.RUnlock()
	return idx, ok
}

// Len returns the number of occupied slots.
func (p *Pool) Len() int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return len(p.entries)
}

// Entries returns a snapshot of the pool in index order; entry i sits at index i+1.
func (p *Pool) Entries() []Entry {
	p.mu.RLock()
	defer p.mu.RUnlock()
	out := make([]Entry, len(p.entries))
	copy(out, p.entries)
	return out
}

// Utf8 resolves a Utf8 constant.
func (p *Pool) Utf8(s string) (Entry, error) {
	return p.Resolve(TagUtf8, s)
}

// Module resolves a Module constant from a module name.
func (p *Pool) Module(name string) (Entry, error) {
	n, err := ModuleName(name)
	if err != nil {
		return Entry{}, err
	}
	return p.Resolve(TagModule, n)
}

// Package resolves a Package constant from a dotted or internal package name.
func (p *Pool) Package(name string) (Entry, error) {
	n, err := PackageName(name)
	if err != nil {
		return Entry{}, err
	}
	return p.Resolve(TagPackage, n)
}

// Class resolves a Class constant from a dotted or internal class name.
func (p *Pool) Class(name string) (Entry, error) {
	n, err := ClassName(name)
	if err != nil {
		return Entry{}, err
	}
	return p.Resolve(TagClass, n)
}
