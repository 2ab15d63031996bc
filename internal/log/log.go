// Package log holds the zap loggers of the packages that log.
package log

import (
	"sync/atomic"

	"go.uber.org/zap"
)

var nop = zap.NewNop()

// Slot is one package's logger. The zero value is not usable; use New.
type Slot struct {
	name string
	l    atomic.Pointer[zap.Logger]
}

// New returns a slot whose logger is named name once set.
func New(name string) *Slot {
	return &Slot{name: name}
}

// Logger returns the installed logger, or a no-op logger.
func (s *Slot) Logger() *zap.Logger {
	if l := s.l.Load(); l != nil {
		return l
	}
	return nop
}

// Set installs l. A nil l restores the no-op logger.
func (s *Slot) Set(l *zap.Logger) {
	if l == nil {
		s.l.Store(nil)
		return
	}
	s.l.Store(l.Named(s.name))
}
