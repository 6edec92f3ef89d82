// Package score computes the edge dissimilarity between two pixel columns.
//
// The score of a candidate boundary is the sum, over every row, of the
// per-pixel color distance between the two columns that would touch. Lower
// scores mean a more plausible adjacency. Scores are non-negative and are
// evaluated directionally by the adjacency stage (the right edge of one
// stripe against the left edge of another), although the per-pixel distance
// itself does not depend on argument order.
package score

import (
	"fmt"
	"strings"

	"github.com/lucasb-eyer/go-colorful"

	"github.com/matzehuels/unshred/pkg/core/stripe"
	"github.com/matzehuels/unshred/pkg/errors"
)

// Metric selects the per-pixel distance.
type Metric string

const (
	// MetricRGB sums the absolute differences of the R, G and B channels.
	MetricRGB Metric = "rgb"

	// MetricLab uses the Euclidean distance in CIE L*a*b*, scaled by 255 so
	// that it lives on a range comparable to a single RGB channel.
	MetricLab Metric = "lab"
)

// Metrics lists the supported metrics.
var Metrics = []Metric{MetricRGB, MetricLab}

// ParseMetric converts a metric name into a Metric.
// The empty string selects MetricRGB.
func ParseMetric(s string) (Metric, error) {
	switch Metric(strings.ToLower(strings.TrimSpace(s))) {
	case "", MetricRGB:
		return MetricRGB, nil
	case MetricLab:
		return MetricLab, nil
	}
	return "", errors.Configuration("invalid metric: %q (must be one of: rgb, lab)", s)
}

// Options configures the dissimilarity computation.
type Options struct {
	// Metric selects the per-pixel distance. Zero value means MetricRGB.
	Metric Metric

	// IncludeAlpha adds the absolute alpha difference to every pixel
	// distance. Alpha only participates for arity-4 pixels.
	IncludeAlpha bool
}

// String returns a compact, stable description used in cache keys and logs.
func (o Options) String() string {
	m := o.Metric
	if m == "" {
		m = MetricRGB
	}
	return fmt.Sprintf("%s/alpha=%t", m, o.IncludeAlpha)
}

// Dissimilarity returns the sum over all rows of the per-pixel distance
// between a and b. Both columns must have the same length.
func Dissimilarity(a, b stripe.Column, opts Options) float64 {
	var total float64
	if opts.Metric == MetricLab {
		for y := range a {
			total += labDistance(a[y], b[y], opts.IncludeAlpha)
		}
		return total
	}
	// Integer accumulation keeps the RGB sum exact regardless of height.
	var sum uint64
	for y := range a {
		sum += rgbDistance(a[y], b[y], opts.IncludeAlpha)
	}
	return float64(sum)
}

// PixelDistance returns the distance between two pixels under opts.
func PixelDistance(c, d stripe.Color, opts Options) float64 {
	if opts.Metric == MetricLab {
		return labDistance(c, d, opts.IncludeAlpha)
	}
	return float64(rgbDistance(c, d, opts.IncludeAlpha))
}

func rgbDistance(c, d stripe.Color, alpha bool) uint64 {
	sum := absDiff(c.R, d.R) + absDiff(c.G, d.G) + absDiff(c.B, d.B)
	if alpha && c.HasAlpha() && d.HasAlpha() {
		sum += absDiff(c.A, d.A)
	}
	return sum
}

func labDistance(c, d stripe.Color, alpha bool) float64 {
	dist := toColorful(c).DistanceLab(toColorful(d)) * 255
	if alpha && c.HasAlpha() && d.HasAlpha() {
		dist += float64(absDiff(c.A, d.A))
	}
	return dist
}

func toColorful(c stripe.Color) colorful.Color {
	return colorful.Color{R: float64(c.R) / 255, G: float64(c.G) / 255, B: float64(c.B) / 255}
}

func absDiff(a, b uint8) uint64 {
	if a > b {
		return uint64(a - b)
	}
	return uint64(b - a)
}
