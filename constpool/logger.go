package constpool

import (
	"go.uber.org/zap"

	"github.com/wippyai/classfile/internal/log"
)

var logger = log.New("constpool")

// Logger returns the constpool package's logger.
// It is a no-op logger unless SetLogger was called.
func Logger() *zap.Logger { return logger.Logger() }

// SetLogger sets the logger used for pool insertions.
func SetLogger(l *zap.Logger) { logger.Set(l) }
