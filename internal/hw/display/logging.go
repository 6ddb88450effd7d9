package display

import (
	"github.com/charmbracelet/log"

	"github.com/mgnush/evsiren/internal/types"
)

// Logging is a development/test Display backend: it logs each decision
// instead of driving GPIO, used by `evsiren simulate` and by tests.
type Logging struct {
	logger    *log.Logger
	maxCycles uint32
	cleared   bool
}

// NewLogging returns a Logging backend using logger.
func NewLogging(logger *log.Logger, maxCycles uint32) *Logging {
	return &Logging{logger: logger, maxCycles: maxCycles}
}

// Update implements Display by logging the decision at info level, and the
// clear transition at debug level.
func (l *Logging) Update(cycles uint32, loc types.Location, dir types.Direction) error {
	if cycles > l.maxCycles {
		if !l.cleared {
			l.logger.Debug("display cleared", "cycles", cycles)
			l.cleared = true
		}

		return nil
	}

	l.cleared = false
	l.logger.Info("decision", "location", loc, "direction", dir, "cycles", cycles)

	return nil
}
