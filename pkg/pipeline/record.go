package pipeline

import (
	"time"

	"github.com/matzehuels/unshred/pkg/store"
)

// Record converts the result into a run record for a store. The record
// carries the options Execute validated, not the caller's raw values.
func (r *Result) Record(elapsed time.Duration) *store.Record {
	opts := r.Options

	rec := store.NewRecord(r.Source, r.ImageHash)
	rec.Width, rec.Height = r.Stats.Width, r.Stats.Height
	rec.StripeWidth = opts.StripeWidth
	rec.Stripes = r.Stats.Stripes
	rec.Metric = opts.Metric
	rec.IncludeAlpha = opts.IncludeAlpha
	rec.Solution = r.Solution
	rec.Candidates = r.Candidates
	rec.ElapsedMS = elapsed.Milliseconds()
	return rec
}
