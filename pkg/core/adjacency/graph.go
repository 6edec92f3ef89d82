package adjacency

import (
	"cmp"
	"math"
	"runtime"
	"slices"

	"golang.org/x/sync/errgroup"

	"github.com/matzehuels/unshred/pkg/core/score"
	"github.com/matzehuels/unshred/pkg/core/stripe"
	"github.com/matzehuels/unshred/pkg/errors"
)

// Sentinel is the score pinned to a stripe's own entry so it is never
// selected as its own neighbor.
var Sentinel = math.Inf(1)

// Entry is one ranked neighbor.
type Entry struct {
	Score    float64 `json:"score" bson:"score"`
	Neighbor int     `json:"neighbor" bson:"neighbor"`
}

// IsSentinel reports whether the entry is a self entry.
func (e Entry) IsSentinel() bool { return math.IsInf(e.Score, 1) }

// Options configures graph construction.
type Options struct {
	Score score.Options

	// Workers bounds the number of rows scored concurrently.
	// Zero means runtime.GOMAXPROCS(0); one scores sequentially.
	Workers int
}

// Graph is the immutable per-stripe neighbor ranking.
type Graph struct {
	scores   [][]float64
	rankings [][]Entry
}

// Build scores every ordered pair of stripes in c and ranks them.
// It performs O(N²·H) pixel comparisons and cannot fail for a loaded
// collection.
func Build(c *stripe.Collection, opts Options) *Graph {
	n := c.Len()
	stripes := c.Stripes()
	scores := make([][]float64, n)

	var g errgroup.Group
	g.SetLimit(workers(opts.Workers))
	for i := 0; i < n; i++ {
		g.Go(func() error {
			row := make([]float64, n)
			left := stripes[i].LeftEdge()
			for j := 0; j < n; j++ {
				if j == i {
					row[j] = Sentinel
					continue
				}
				row[j] = score.Dissimilarity(left, stripes[j].RightEdge(), opts.Score)
			}
			scores[i] = row
			return nil
		})
	}
	_ = g.Wait()

	return newGraph(scores)
}

// FromMatrix builds a graph from precomputed scores, where m[i][j] is the
// score of j sitting immediately left of i. Diagonal values are ignored
// and replaced by the sentinel. The matrix must be square with finite,
// non-negative off-diagonal scores.
func FromMatrix(m [][]float64) (*Graph, error) {
	n := len(m)
	scores := make([][]float64, n)
	for i, row := range m {
		if len(row) != n {
			return nil, errors.New(errors.ErrCodeInvalidInput, "row %d has %d scores, want %d", i, len(row), n)
		}
		scores[i] = make([]float64, n)
		for j, s := range row {
			if i == j {
				scores[i][j] = Sentinel
				continue
			}
			if s < 0 || math.IsNaN(s) || math.IsInf(s, 0) {
				return nil, errors.New(errors.ErrCodeInvalidInput, "score[%d][%d] = %v is not a finite non-negative value", i, j, s)
			}
			scores[i][j] = s
		}
	}
	return newGraph(scores), nil
}

func newGraph(scores [][]float64) *Graph {
	n := len(scores)
	rankings := make([][]Entry, n)
	for i, row := range scores {
		ranking := make([]Entry, n)
		for j, s := range row {
			ranking[j] = Entry{Score: s, Neighbor: j}
		}
		slices.SortFunc(ranking, compareEntries)
		rankings[i] = ranking
	}
	return &Graph{scores: scores, rankings: rankings}
}

// compareEntries orders by score, then by lowest neighbor id.
func compareEntries(a, b Entry) int {
	if c := cmp.Compare(a.Score, b.Score); c != 0 {
		return c
	}
	return cmp.Compare(a.Neighbor, b.Neighbor)
}

func workers(n int) int {
	if n <= 0 {
		return runtime.GOMAXPROCS(0)
	}
	return n
}

// Len returns the number of stripes N.
func (g *Graph) Len() int { return len(g.rankings) }

// Score returns the score of j sitting immediately left of i.
// Score(i, i) is the sentinel.
func (g *Graph) Score(i, j int) float64 { return g.scores[i][j] }

// Ranking returns a copy of the full sorted ranking of stripe i,
// including its sentinel self entry.
func (g *Graph) Ranking(i int) []Entry {
	return slices.Clone(g.rankings[i])
}

// BestNeighbor returns the lowest-scoring entry of stripe i, regardless of
// any placement state. For a single-stripe graph this is the self entry.
func (g *Graph) BestNeighbor(i int) Entry {
	return g.rankings[i][0]
}

// BestUnvisited returns the lowest-scoring non-self entry of stripe i whose
// neighbor is not marked in visited. It reports false when every other
// stripe has been visited.
func (g *Graph) BestUnvisited(i int, visited []bool) (Entry, bool) {
	for _, e := range g.rankings[i] {
		if e.Neighbor == i || visited[e.Neighbor] {
			continue
		}
		return e, true
	}
	return Entry{}, false
}

// Matrix returns a copy of the raw score matrix.
func (g *Graph) Matrix() [][]float64 {
	out := make([][]float64, len(g.scores))
	for i, row := range g.scores {
		out[i] = slices.Clone(row)
	}
	return out
}
