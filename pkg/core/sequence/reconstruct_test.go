package sequence

import (
	"math"
	"math/rand"
	"reflect"
	"testing"

	"github.com/matzehuels/unshred/pkg/core/adjacency"
	"github.com/matzehuels/unshred/pkg/core/stripe"
	"github.com/matzehuels/unshred/pkg/errors"
)

const height = 4

func uniformStripe(left, right uint8) stripe.Stripe {
	return stripe.New(0, 1, stripe.Uniform(stripe.Gray(left), height), stripe.Uniform(stripe.Gray(right), height))
}

func buildGraph(t *testing.T, stripes ...stripe.Stripe) *adjacency.Graph {
	t.Helper()
	c, err := stripe.NewCollection(stripes...)
	if err != nil {
		t.Fatalf("NewCollection() error: %v", err)
	}
	return adjacency.Build(c, adjacency.Options{})
}

func mustMatrix(t *testing.T, m [][]float64) *adjacency.Graph {
	t.Helper()
	g, err := adjacency.FromMatrix(m)
	if err != nil {
		t.Fatalf("FromMatrix() error: %v", err)
	}
	return g
}

func TestSingleStripe(t *testing.T) {
	for _, p := range Policies {
		t.Run(string(p), func(t *testing.T) {
			g := buildGraph(t, uniformStripe(10, 200))
			sol := New(g, Options{Policy: p}).Solve()

			if !reflect.DeepEqual(sol.Order, []int{0}) {
				t.Errorf("Order = %v, want [0]", sol.Order)
			}
			// A neighbor lookup would have added the sentinel score.
			if sol.Cost != 0 {
				t.Errorf("Cost = %v, want 0", sol.Cost)
			}
			if sol.Start != 0 {
				t.Errorf("Start = %d, want 0", sol.Start)
			}
		})
	}
}

func TestPerfectChainAnyShuffle(t *testing.T) {
	labeled := map[string]stripe.Stripe{
		"A": uniformStripe(0, 100),
		"B": uniformStripe(100, 200),
		"C": uniformStripe(200, 250),
	}
	shuffles := [][]string{
		{"A", "B", "C"},
		{"A", "C", "B"},
		{"B", "A", "C"},
		{"B", "C", "A"},
		{"C", "A", "B"},
		{"C", "B", "A"},
	}

	for _, p := range Policies {
		for _, shuffle := range shuffles {
			t.Run(string(p)+"/"+shuffle[0]+shuffle[1]+shuffle[2], func(t *testing.T) {
				stripes := make([]stripe.Stripe, len(shuffle))
				for i, name := range shuffle {
					stripes[i] = labeled[name]
				}
				g := buildGraph(t, stripes...)
				sol := New(g, Options{Policy: p}).Solve()

				var got []string
				for _, id := range sol.Order {
					got = append(got, shuffle[id])
				}
				if !reflect.DeepEqual(got, []string{"A", "B", "C"}) {
					t.Errorf("Order = %v, want [A B C]", got)
				}
				if sol.Cost != 0 {
					t.Errorf("Cost = %v, want 0", sol.Cost)
				}
			})
		}
	}
}

func TestUniformStripesEqualCost(t *testing.T) {
	g := buildGraph(t,
		uniformStripe(0, 0),
		uniformStripe(40, 40),
		uniformStripe(80, 80),
		uniformStripe(120, 120),
	)
	rec := &Recorder{}
	New(g, Options{Policy: PolicyFaithful, Observer: rec}).Solve()

	if len(rec.Candidates) != 4 {
		t.Fatalf("got %d candidates, want 4", len(rec.Candidates))
	}
	want := float64(3 * 40 * 3 * height)
	for _, c := range rec.Candidates {
		if c.Cost != want {
			t.Errorf("start %d: Cost = %v, want %v", c.Start, c.Cost, want)
		}
		if len(c.Walk) != 4 {
			t.Errorf("start %d: walk length = %d, want 4", c.Start, len(c.Walk))
		}
	}
}

// cycleMatrix embeds a mutual-best pair {0, 1} among five stripes.
var cycleMatrix = [][]float64{
	{0, 1, 10, 10, 10},
	{1, 0, 10, 10, 10},
	{5, 20, 0, 20, 20},
	{20, 20, 5, 0, 20},
	{20, 20, 20, 5, 0},
}

func TestRevisitPolicy(t *testing.T) {
	g := mustMatrix(t, cycleMatrix)

	t.Run("faithful", func(t *testing.T) {
		sol := New(g, Options{Policy: PolicyFaithful}).Solve()
		if !reflect.DeepEqual(sol.Walk, []int{0, 1, 0, 1, 0}) {
			t.Errorf("Walk = %v, want [0 1 0 1 0]", sol.Walk)
		}
		if sol.Cost != 4 {
			t.Errorf("Cost = %v, want 4", sol.Cost)
		}
		if sol.IsPermutation() {
			t.Error("faithful solution should keep the cyclic revisit")
		}
	})

	t.Run("corrected", func(t *testing.T) {
		sol := New(g, Options{Policy: PolicyCorrected}).Solve()
		if !sol.IsPermutation() {
			t.Fatalf("Order = %v, want a permutation of 5 ids", sol.Order)
		}
		if !reflect.DeepEqual(sol.Order, []int{1, 0, 2, 3, 4}) {
			t.Errorf("Order = %v, want [1 0 2 3 4]", sol.Order)
		}
		if sol.Cost != 16 || sol.Start != 4 {
			t.Errorf("Cost = %v Start = %d, want 16 and 4", sol.Cost, sol.Start)
		}
	})
}

func TestChainFaithfulRevisits(t *testing.T) {
	g := mustMatrix(t, cycleMatrix)
	c := New(g, Options{}).Chain(2)

	if !reflect.DeepEqual(c.Walk, []int{2, 0, 1, 0, 1}) {
		t.Errorf("Walk = %v, want [2 0 1 0 1]", c.Walk)
	}
	if c.Cost != 8 {
		t.Errorf("Cost = %v, want 8", c.Cost)
	}
	if c.Distinct() != 3 || c.Revisits() != 2 {
		t.Errorf("Distinct() = %d Revisits() = %d, want 3 and 2", c.Distinct(), c.Revisits())
	}
}

func TestTieGoesToLowestStart(t *testing.T) {
	g := mustMatrix(t, [][]float64{
		{0, 3, 3},
		{3, 0, 3},
		{3, 3, 0},
	})
	sol := New(g, Options{Policy: PolicyCorrected}).Solve()
	if sol.Start != 0 {
		t.Errorf("Start = %d, want 0", sol.Start)
	}
	if !reflect.DeepEqual(sol.Order, []int{2, 1, 0}) {
		t.Errorf("Order = %v, want [2 1 0]", sol.Order)
	}
}

func TestObserverOrder(t *testing.T) {
	g := mustMatrix(t, cycleMatrix)
	rec := &Recorder{}
	var calls int
	obs := Observers{rec, ObserverFunc(func(Candidate) { calls++ }), nil}

	New(g, Options{Workers: 4, Observer: obs}).Solve()

	if calls != 5 {
		t.Errorf("ObserverFunc called %d times, want 5", calls)
	}
	for i, c := range rec.Candidates {
		if c.Start != i {
			t.Errorf("candidate %d has Start %d", i, c.Start)
		}
	}
}

func TestSolveDeterministic(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	const n = 30
	m := make([][]float64, n)
	for i := range m {
		m[i] = make([]float64, n)
		for j := range m[i] {
			m[i][j] = float64(rng.Intn(50))
		}
	}
	g := mustMatrix(t, m)

	for _, p := range Policies {
		want := New(g, Options{Policy: p, Workers: 1}).Solve()
		for _, w := range []int{0, 2, 5, 16} {
			for run := 0; run < 3; run++ {
				got := New(g, Options{Policy: p, Workers: w}).Solve()
				if !reflect.DeepEqual(got, want) {
					t.Fatalf("%s workers=%d run=%d: solution differs", p, w, run)
				}
			}
		}
		if p == PolicyCorrected && !want.IsPermutation() {
			t.Errorf("corrected solution is not a permutation: %v", want.Order)
		}
	}
}

func TestEmptyGraph(t *testing.T) {
	g := mustMatrix(t, [][]float64{})
	sol := New(g, Options{}).Solve()
	if sol.Start != -1 || len(sol.Order) != 0 {
		t.Errorf("Solve() on empty graph = %+v", sol)
	}
	if math.IsNaN(sol.Cost) || sol.Cost != 0 {
		t.Errorf("Cost = %v, want 0", sol.Cost)
	}
}

func TestSelectReplaysCandidates(t *testing.T) {
	cands := []Candidate{
		{Start: 0, Cost: 9, Walk: []int{0, 1}},
		{Start: 1, Cost: 2, Walk: []int{1, 0}},
	}
	sol := Select(cands, PolicyFaithful, nil)
	if !reflect.DeepEqual(sol.Order, []int{0, 1}) || sol.Cost != 2 || sol.Start != 1 {
		t.Errorf("Select() = %+v", sol)
	}
	// The winning walk must not alias the candidate.
	sol.Walk[0] = 42
	if cands[1].Walk[0] != 1 {
		t.Error("Select should copy the winning walk")
	}
}

func TestParsePolicy(t *testing.T) {
	tests := []struct {
		input   string
		want    Policy
		wantErr bool
	}{
		{"", PolicyFaithful, false},
		{"faithful", PolicyFaithful, false},
		{"Corrected", PolicyCorrected, false},
		{"strict", "", true},
	}

	for _, tt := range tests {
		got, err := ParsePolicy(tt.input)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParsePolicy(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			continue
		}
		if err != nil && !errors.Is(err, errors.ErrCodeInvalidConfig) {
			t.Errorf("ParsePolicy(%q) code = %v", tt.input, errors.GetCode(err))
		}
		if got != tt.want {
			t.Errorf("ParsePolicy(%q) = %v, want %v", tt.input, got, tt.want)
		}
	}
}
