package sequence

import (
	"runtime"
	"slices"

	"golang.org/x/sync/errgroup"

	"github.com/matzehuels/unshred/pkg/core/adjacency"
)

// Options configures a Reconstructor.
type Options struct {
	// Policy selects the revisit behavior. Zero value means DefaultPolicy.
	Policy Policy

	// Workers bounds the number of start ids chained concurrently.
	// Zero means runtime.GOMAXPROCS(0); one runs sequentially.
	Workers int

	// Observer, if set, receives every candidate in start-id order.
	Observer Observer
}

// Solution is the reconstructed stripe order.
type Solution struct {
	// Order is the left-to-right placement order of stripe ids.
	Order []int `json:"order" bson:"order"`

	// Walk is the winning chain before reversal.
	Walk []int `json:"walk" bson:"walk"`

	// Cost is the accumulated score of the winning chain.
	Cost float64 `json:"cost" bson:"cost"`

	// Start is the start id of the winning chain, or -1 for an empty graph.
	Start int `json:"start" bson:"start"`

	Policy Policy `json:"policy" bson:"policy"`
}

// IsPermutation reports whether Order places every stripe exactly once.
func (s Solution) IsPermutation() bool {
	return isPermutation(s.Order, len(s.Order))
}

// Reconstructor runs greedy chaining over a finished adjacency graph.
// It only reads the graph and may be shared by concurrent callers.
type Reconstructor struct {
	graph *adjacency.Graph
	opts  Options
}

// New creates a Reconstructor for g.
func New(g *adjacency.Graph, opts Options) *Reconstructor {
	if opts.Policy == "" {
		opts.Policy = DefaultPolicy
	}
	return &Reconstructor{graph: g, opts: opts}
}

// Policy returns the configured revisit policy.
func (r *Reconstructor) Policy() Policy { return r.opts.Policy }

// Chain builds the greedy sequence from start.
// The score of the link leaving the last placed stripe is never looked up,
// so a single-stripe graph costs zero.
func (r *Reconstructor) Chain(start int) Candidate {
	n := r.graph.Len()
	walk := make([]int, 0, n)
	var visited []bool
	if r.opts.Policy == PolicyCorrected {
		visited = make([]bool, n)
	}

	var cost float64
	current := start
	for len(walk) < n {
		walk = append(walk, current)
		if visited != nil {
			visited[current] = true
		}
		if len(walk) == n {
			break
		}

		var next adjacency.Entry
		if visited != nil {
			// Unvisited stripes remain while the walk is short.
			next, _ = r.graph.BestUnvisited(current, visited)
		} else {
			next = r.graph.BestNeighbor(current)
		}
		cost += next.Score
		current = next.Neighbor
	}

	return Candidate{Start: start, Cost: cost, Walk: walk}
}

// Candidates chains every start id and returns the results indexed by start.
func (r *Reconstructor) Candidates() []Candidate {
	n := r.graph.Len()
	out := make([]Candidate, n)

	var g errgroup.Group
	g.SetLimit(workers(r.opts.Workers))
	for s := 0; s < n; s++ {
		g.Go(func() error {
			out[s] = r.Chain(s)
			return nil
		})
	}
	_ = g.Wait()

	return out
}

// Solve chains every start id, notifies the observer, and returns the
// reversed lowest-cost chain. Ties go to the lowest start id.
func (r *Reconstructor) Solve() Solution {
	return Select(r.Candidates(), r.opts.Policy, r.opts.Observer)
}

// Select picks the winning candidate from cands, which must be indexed by
// start id. It is split from Solve so cached traces can be replayed.
func Select(cands []Candidate, policy Policy, obs Observer) Solution {
	best := -1
	for i, c := range cands {
		if obs != nil {
			obs.OnCandidate(c)
		}
		if best < 0 || c.Cost < cands[best].Cost {
			best = i
		}
	}

	if best < 0 {
		return Solution{Order: []int{}, Walk: []int{}, Start: -1, Policy: policy}
	}

	win := cands[best]
	order := slices.Clone(win.Walk)
	slices.Reverse(order)
	return Solution{
		Order:  order,
		Walk:   slices.Clone(win.Walk),
		Cost:   win.Cost,
		Start:  win.Start,
		Policy: policy,
	}
}

func workers(n int) int {
	if n <= 0 {
		return runtime.GOMAXPROCS(0)
	}
	return n
}
