// Package output renders pipeline Decisions through the console/JSON
// formatter, one record per window, the way the report commands of this
// repository render one record per file.
package output

import (
	"fmt"
	"io"

	"github.com/farcloser/primordium/format"

	"github.com/mgnush/evsiren/internal/types"
)

// DecisionToMap converts a Decision plus its window sequence number into the
// canonical map structure used for console and JSON rendering.
func DecisionToMap(window uint64, decision types.Decision) map[string]any {
	meta := map[string]any{
		"window":    window,
		"location":  decision.Location.String(),
		"direction": decision.Direction.String(),
		"cycles":    decision.CyclesSinceDetection,
	}

	if decision.Location == types.NoLocation {
		meta["summary"] = "no detection"
	} else {
		meta["summary"] = fmt.Sprintf("%s, %s", decision.Location, decision.Direction)
	}

	return meta
}

// Reporter renders one Decision at a time through a named formatter
// ("console" or "json", per primordium/format).
type Reporter struct {
	formatter format.Formatter
	out       io.Writer
}

// NewReporter resolves formatName to a format.Formatter and returns a
// Reporter that writes through it to out.
func NewReporter(formatName string, out io.Writer) (*Reporter, error) {
	formatter, err := format.GetFormatter(formatName)
	if err != nil {
		return nil, fmt.Errorf("resolve output format %q: %w", formatName, err)
	}

	return &Reporter{formatter: formatter, out: out}, nil
}

// Emit renders one window's Decision.
func (r *Reporter) Emit(window uint64, decision types.Decision) error {
	data := &format.Data{
		Object: fmt.Sprintf("window-%d", window),
		Meta:   DecisionToMap(window, decision),
	}

	if err := r.formatter.PrintAll([]*format.Data{data}, r.out); err != nil {
		return fmt.Errorf("render decision: %w", err)
	}

	return nil
}
