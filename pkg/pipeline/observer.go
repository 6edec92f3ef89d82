package pipeline

import (
	"github.com/charmbracelet/log"

	"github.com/matzehuels/unshred/pkg/core/sequence"
)

// LogObserver logs every candidate at debug level. Chains that re-entered
// an already placed stripe get a second line with the revisit count.
func LogObserver(l *log.Logger, n int) sequence.Observer {
	return sequence.ObserverFunc(func(c sequence.Candidate) {
		if l == nil {
			return
		}
		l.Debug("candidate", "start", c.Start, "cost", c.Cost, "sequence", c.Walk)
		if revisits := c.Revisits(); revisits > 0 {
			l.Debug("chain revisited placed stripes",
				"start", c.Start,
				"revisits", revisits,
				"missing", n-c.Distinct())
		}
	})
}
