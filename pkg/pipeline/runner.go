package pipeline

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"image"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/unshred/pkg/cache"
	"github.com/matzehuels/unshred/pkg/core/adjacency"
	"github.com/matzehuels/unshred/pkg/core/compose"
	"github.com/matzehuels/unshred/pkg/core/sequence"
	"github.com/matzehuels/unshred/pkg/core/stripe"
	"github.com/matzehuels/unshred/pkg/imageio"
	"github.com/matzehuels/unshred/pkg/observability"
)

// Runner encapsulates pipeline execution with caching.
// Both CLI and API use this to avoid duplicating caching logic.
//
// The Runner is stateless except for the cache and logger - it doesn't
// store pipeline results. Multiple goroutines can safely use the same
// Runner with different options.
type Runner struct {
	Cache      cache.Cache
	Keyer      cache.Keyer
	Logger     *log.Logger
	Compositor compose.Compositor

	// TTL overrides cache.TTLSolution when positive.
	TTL time.Duration
}

// NewRunner creates a runner with the given cache and keyer.
// If keyer is nil, a DefaultKeyer is used.
// If cache is nil, a NullCache is used (caching disabled).
func NewRunner(c cache.Cache, keyer cache.Keyer, logger *log.Logger) *Runner {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{
		Cache:      c,
		Keyer:      keyer,
		Logger:     logger,
		Compositor: compose.Strip{},
	}
}

// solved is the cached value of the solve stage.
type solved struct {
	Candidates []sequence.Candidate `json:"candidates"`
	Solution   sequence.Solution    `json:"solution"`
}

// Execute runs the complete load → score → solve → compose pipeline with caching.
func (r *Runner) Execute(ctx context.Context, in Input, opts Options) (*Result, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}

	result := &Result{
		Source:    in.Name,
		ImageHash: in.Hash(),
		Options:   opts,
	}

	// Stage 1: Load
	loadStart := time.Now()
	img, coll, err := r.Load(ctx, in, opts)
	if err != nil {
		return nil, fmt.Errorf("load: %w", err)
	}
	result.Image = img
	result.Collection = coll
	result.Stats.LoadTime = time.Since(loadStart)
	result.Stats.Stripes = coll.Len()
	result.Stats.Width = coll.Width()
	result.Stats.Height = coll.Height()

	r.Logger.Info("loaded stripes",
		"source", in.Name,
		"stripes", coll.Len(),
		"size", fmt.Sprintf("%dx%d", coll.Width(), coll.Height()),
		"duration", result.Stats.LoadTime)

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	// Stages 2 and 3: Score and Solve, cached together
	solutionKey := r.Keyer.SolutionKey(result.ImageHash, opts.SolutionKeyOpts())
	s, hit := r.cachedSolution(ctx, solutionKey, coll.Len(), opts)
	if hit {
		result.CacheInfo.SolveHit = true
		r.Logger.Info("solution from cache", "cost", s.Solution.Cost)
		notify(r.observers(opts, coll.Len()), s.Candidates)
	} else {
		scoreStart := time.Now()
		g := r.BuildGraph(ctx, coll, opts)
		result.Graph = g
		result.Stats.ScoreTime = time.Since(scoreStart)
		r.Logger.Info("scored edges",
			"pairs", coll.Len()*coll.Len(),
			"metric", opts.ScoreOptions(),
			"duration", result.Stats.ScoreTime)

		if err := ctx.Err(); err != nil {
			return nil, err
		}

		solveStart := time.Now()
		s.Candidates, s.Solution = r.Solve(ctx, g, opts)
		result.Stats.SolveTime = time.Since(solveStart)
		r.Logger.Info("solved order",
			"policy", s.Solution.Policy,
			"start", s.Solution.Start,
			"cost", s.Solution.Cost,
			"complete", s.Solution.IsPermutation(),
			"duration", result.Stats.SolveTime)

		if data, err := json.Marshal(s); err == nil {
			_ = r.Cache.Set(ctx, solutionKey, data, r.ttl(cache.TTLSolution))
			observability.Cache().OnCacheSet(ctx, "solution", len(data))
		}
	}
	result.Candidates = s.Candidates
	result.Solution = s.Solution

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	// Stage 4: Compose
	composeStart := time.Now()
	artifactKey := r.Keyer.ArtifactKey(cache.Hash([]byte(solutionKey)), opts.ArtifactKeyOpts())
	if data, ok := r.cachedArtifact(ctx, artifactKey, hit, opts); ok {
		result.Artifact = data
		result.CacheInfo.ComposeHit = true
	} else {
		out, err := r.Compose(ctx, img, coll, s.Solution.Order)
		if err != nil {
			return nil, fmt.Errorf("compose: %w", err)
		}
		var buf bytes.Buffer
		if err := imageio.Encode(&buf, out, opts.Format); err != nil {
			return nil, fmt.Errorf("compose: %w", err)
		}
		result.Output = out
		result.Artifact = buf.Bytes()
		_ = r.Cache.Set(ctx, artifactKey, result.Artifact, r.ttl(cache.TTLArtifact))
		observability.Cache().OnCacheSet(ctx, "artifact", buf.Len())
	}
	result.Stats.ComposeTime = time.Since(composeStart)

	r.Logger.Info("composed output",
		"format", opts.Format,
		"bytes", len(result.Artifact),
		"duration", result.Stats.ComposeTime)

	return result, nil
}

// cachedSolution returns a cached solve result that fits a collection of n
// stripes. Entries that fail to decode or reference unknown ids are misses.
func (r *Runner) cachedSolution(ctx context.Context, key string, n int, opts Options) (solved, bool) {
	if opts.Refresh {
		return solved{}, false
	}
	data, hit, err := r.Cache.Get(ctx, key)
	if err != nil || !hit {
		observability.Cache().OnCacheMiss(ctx, "solution")
		return solved{}, false
	}
	var s solved
	if err := json.Unmarshal(data, &s); err != nil || !fits(s.Solution.Order, n) {
		observability.Cache().OnCacheMiss(ctx, "solution")
		return solved{}, false
	}
	observability.Cache().OnCacheHit(ctx, "solution")
	return s, true
}

// cachedArtifact only consults the cache when the solution was cached too;
// a fresh solution always gets a fresh artifact.
func (r *Runner) cachedArtifact(ctx context.Context, key string, solveHit bool, opts Options) ([]byte, bool) {
	if !solveHit || opts.Refresh {
		return nil, false
	}
	data, hit, err := r.Cache.Get(ctx, key)
	if err != nil || !hit || len(data) == 0 {
		observability.Cache().OnCacheMiss(ctx, "artifact")
		return nil, false
	}
	observability.Cache().OnCacheHit(ctx, "artifact")
	return data, true
}

func fits(order []int, n int) bool {
	if len(order) > n {
		return false
	}
	for _, id := range order {
		if id < 0 || id >= n {
			return false
		}
	}
	return true
}

// Load decodes the input and cuts it into stripes.
// Failures are INPUT_LOAD or INVALID_CONFIG errors and happen before any
// scoring.
func (r *Runner) Load(ctx context.Context, in Input, opts Options) (image.Image, *stripe.Collection, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, nil, err
	}
	hooks := observability.Pipeline()
	hooks.OnLoadStart(ctx, in.Name)
	start := time.Now()

	img, err := imageio.Decode(bytes.NewReader(in.Data))
	if err != nil {
		hooks.OnLoadComplete(ctx, in.Name, 0, time.Since(start), err)
		return nil, nil, err
	}
	coll, err := stripe.Load(stripe.FromImage(img), opts.StripeWidth)
	if err != nil {
		hooks.OnLoadComplete(ctx, in.Name, 0, time.Since(start), err)
		return nil, nil, err
	}
	hooks.OnLoadComplete(ctx, in.Name, coll.Len(), time.Since(start), nil)
	return img, coll, nil
}

// BuildGraph scores every ordered stripe pair.
func (r *Runner) BuildGraph(ctx context.Context, coll *stripe.Collection, opts Options) *adjacency.Graph {
	hooks := observability.Pipeline()
	hooks.OnScoreStart(ctx, string(opts.ScoreOptions().Metric), coll.Len())
	start := time.Now()

	g := adjacency.Build(coll, adjacency.Options{
		Score:   opts.ScoreOptions(),
		Workers: opts.Workers,
	})

	hooks.OnScoreComplete(ctx, string(opts.ScoreOptions().Metric), time.Since(start), nil)
	return g
}

// Solve chains from every start and selects the cheapest candidate.
// Every candidate is reported to opts.Observer and logged at debug level.
func (r *Runner) Solve(ctx context.Context, g *adjacency.Graph, opts Options) ([]sequence.Candidate, sequence.Solution) {
	r.applyLogger(&opts)
	policy := sequence.Policy(opts.Policy)
	if policy == "" {
		policy = sequence.DefaultPolicy
	}

	hooks := observability.Pipeline()
	hooks.OnSolveStart(ctx, string(policy), g.Len())
	start := time.Now()

	rec := sequence.New(g, sequence.Options{Policy: policy, Workers: opts.Workers})
	cands := rec.Candidates()
	sol := sequence.Select(cands, policy, r.observers(opts, g.Len()))

	hooks.OnSolveComplete(ctx, string(policy), sol.Cost, time.Since(start), nil)
	return cands, sol
}

// observers returns the caller's observer followed by the debug trace.
func (r *Runner) observers(opts Options, n int) sequence.Observer {
	return sequence.Observers{opts.Observer, LogObserver(opts.Logger, n)}
}

// notify replays cached candidates in start-id order.
func notify(obs sequence.Observer, cands []sequence.Candidate) {
	for _, c := range cands {
		obs.OnCandidate(c)
	}
}

// Compose pastes stripes in order onto a canvas the size of the source.
func (r *Runner) Compose(ctx context.Context, img image.Image, coll *stripe.Collection, order []int) (*image.NRGBA, error) {
	hooks := observability.Pipeline()
	hooks.OnComposeStart(ctx, len(order))
	start := time.Now()

	c := r.Compositor
	if c == nil {
		c = compose.Strip{}
	}
	out, err := c.Compose(img, coll, order)
	hooks.OnComposeComplete(ctx, time.Since(start), err)
	return out, err
}

// Close releases resources held by the runner (primarily the cache).
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}

func (r *Runner) ttl(def time.Duration) time.Duration {
	if r.TTL > 0 {
		return r.TTL
	}
	return def
}

// applyLogger sets the runner's logger on options if not already set.
func (r *Runner) applyLogger(opts *Options) {
	if opts.Logger == nil {
		opts.Logger = r.Logger
	}
}
