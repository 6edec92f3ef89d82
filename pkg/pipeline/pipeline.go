// Package pipeline provides the reconstruction pipeline for unshred.
//
// This package implements the complete load → score → solve → compose
// pipeline that is shared by the CLI and the HTTP API. Centralizing it keeps
// caching, logging and hook emission identical across entry points.
//
// # Architecture
//
// The pipeline consists of four stages:
//
//  1. Load: decode the image and cut it into a stripe collection
//  2. Score: build the adjacency graph of edge dissimilarities
//  3. Solve: run one greedy chain per start stripe and select the cheapest
//  4. Compose: paste the stripes in the solved order and encode the result
//
// Score and Solve are skipped on a cache hit; the cache key is the SHA-256
// of the image bytes plus every option that can change the solution.
//
// # Usage
//
//	runner := pipeline.NewRunner(cache, nil, logger)
//	in, err := pipeline.ReadInput("shredded.png")
//	result, err := runner.Execute(ctx, in, pipeline.Options{StripeWidth: 32})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	os.WriteFile("unshredded-shredded.png", result.Artifact, 0644)
//
// Run individual stages:
//
//	img, coll, err := runner.Load(ctx, in, opts)
//	g := runner.BuildGraph(ctx, coll, opts)
//	cands, sol := runner.Solve(ctx, g, opts)
//	out, err := runner.Compose(ctx, img, coll, sol.Order)
package pipeline

import (
	"fmt"
	"image"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/unshred/pkg/cache"
	"github.com/matzehuels/unshred/pkg/core/adjacency"
	"github.com/matzehuels/unshred/pkg/core/score"
	"github.com/matzehuels/unshred/pkg/core/sequence"
	"github.com/matzehuels/unshred/pkg/core/stripe"
	"github.com/matzehuels/unshred/pkg/errors"
	"github.com/matzehuels/unshred/pkg/imageio"
)

// DefaultFormat is the default output image format.
const DefaultFormat = imageio.FormatPNG

// =============================================================================
// Options - Pipeline Configuration
// =============================================================================

// Options contains all configuration for the reconstruction pipeline.
// This struct supports JSON serialization for API requests and run records.
type Options struct {
	StripeWidth  int    `json:"stripe_width"`
	Policy       string `json:"policy"`
	Metric       string `json:"metric"`
	IncludeAlpha bool   `json:"include_alpha"`
	Format       string `json:"format"`

	// Refresh bypasses cache reads; results are still written.
	Refresh bool `json:"refresh,omitempty"`

	// Runtime options (not serialized)
	Workers  int               `json:"-"`
	Logger   *log.Logger       `json:"-"`
	Observer sequence.Observer `json:"-"`
}

// Input is a raw image plus a display name.
type Input struct {
	Name string
	Data []byte
}

// ReadInput reads an image file into an Input named after its basename.
func ReadInput(path string) (Input, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Input{}, errors.InputLoad(err, "read %s", path)
	}
	return Input{Name: filepath.Base(path), Data: data}, nil
}

// Hash returns the content hash of the input bytes.
func (in Input) Hash() string {
	return cache.Hash(in.Data)
}

// Result contains the outputs of a pipeline run.
type Result struct {
	Source    string
	ImageHash string

	// Options are the validated options the run used.
	Options Options

	// Image is the decoded source image.
	Image      image.Image
	Collection *stripe.Collection

	// Graph is nil when the solution came from the cache.
	Graph *adjacency.Graph

	Candidates []sequence.Candidate
	Solution   sequence.Solution

	// Output is the composed image. It is nil when the encoded artifact
	// came from the cache.
	Output *image.NRGBA

	// Artifact is Output encoded in Options.Format.
	Artifact []byte

	Stats     Stats
	CacheInfo CacheInfo
}

// Stats contains pipeline execution statistics.
type Stats struct {
	Stripes     int
	Width       int
	Height      int
	LoadTime    time.Duration
	ScoreTime   time.Duration
	SolveTime   time.Duration
	ComposeTime time.Duration
}

// Total returns the summed stage time.
func (s Stats) Total() time.Duration {
	return s.LoadTime + s.ScoreTime + s.SolveTime + s.ComposeTime
}

// CacheInfo tracks cache hits for each pipeline stage.
type CacheInfo struct {
	SolveHit   bool // Whether candidates and solution came from cache
	ComposeHit bool // Whether the encoded artifact came from cache
}

// =============================================================================
// Options Methods
// =============================================================================

// ValidateAndSetDefaults checks every option and applies defaults.
// Policy and metric are normalized to their canonical spelling.
// This method is idempotent.
func (o *Options) ValidateAndSetDefaults() error {
	if o.StripeWidth == 0 {
		o.StripeWidth = stripe.DefaultWidth
	}
	if o.StripeWidth < 0 {
		return errors.Configuration("stripe width must be positive, got %d", o.StripeWidth)
	}

	p, err := sequence.ParsePolicy(o.Policy)
	if err != nil {
		return err
	}
	o.Policy = string(p)

	m, err := score.ParseMetric(o.Metric)
	if err != nil {
		return err
	}
	o.Metric = string(m)

	if o.Format == "" {
		o.Format = DefaultFormat
	}
	if err := imageio.ValidateFormat(o.Format); err != nil {
		return err
	}
	if o.Workers < 0 {
		return errors.Configuration("workers must not be negative, got %d", o.Workers)
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	return nil
}

// ScoreOptions returns the dissimilarity options.
func (o *Options) ScoreOptions() score.Options {
	return score.Options{Metric: score.Metric(o.Metric), IncludeAlpha: o.IncludeAlpha}
}

// SolutionKeyOpts returns cache key options for the solve stage.
func (o *Options) SolutionKeyOpts() cache.SolutionKeyOpts {
	return cache.SolutionKeyOpts{
		StripeWidth:  o.StripeWidth,
		Metric:       o.Metric,
		IncludeAlpha: o.IncludeAlpha,
		Policy:       o.Policy,
	}
}

// ArtifactKeyOpts returns cache key options for the encoded output.
func (o *Options) ArtifactKeyOpts() cache.ArtifactKeyOpts {
	return cache.ArtifactKeyOpts{Format: o.Format}
}

// String returns a compact description for logs.
func (o *Options) String() string {
	return fmt.Sprintf("width=%d policy=%s score=%s", o.StripeWidth, o.Policy, o.ScoreOptions())
}
