package sequence

// Candidate is the result of one greedy run from a start stripe.
// Walk lists stripe ids in walk order (right to left in the image).
type Candidate struct {
	Start int     `json:"start" bson:"start"`
	Cost  float64 `json:"cost" bson:"cost"`
	Walk  []int   `json:"sequence" bson:"sequence"`
}

// Distinct returns the number of distinct stripe ids in the walk.
func (c Candidate) Distinct() int {
	seen := make(map[int]struct{}, len(c.Walk))
	for _, id := range c.Walk {
		seen[id] = struct{}{}
	}
	return len(seen)
}

// Revisits returns how many walk positions re-entered a stripe that was
// already placed.
func (c Candidate) Revisits() int {
	return len(c.Walk) - c.Distinct()
}

// IsPermutation reports whether the walk contains each id in [0, n) once.
func (c Candidate) IsPermutation(n int) bool {
	return isPermutation(c.Walk, n)
}

// Observer receives candidate records during Solve.
type Observer interface {
	OnCandidate(c Candidate)
}

// ObserverFunc adapts a function to the Observer interface.
type ObserverFunc func(Candidate)

// OnCandidate calls f(c).
func (f ObserverFunc) OnCandidate(c Candidate) { f(c) }

// Recorder is an Observer that keeps every candidate it receives.
type Recorder struct {
	Candidates []Candidate
}

// OnCandidate appends c.
func (r *Recorder) OnCandidate(c Candidate) {
	r.Candidates = append(r.Candidates, c)
}

// Observers fans candidates out to several observers in order.
type Observers []Observer

// OnCandidate forwards c to every non-nil observer.
func (o Observers) OnCandidate(c Candidate) {
	for _, obs := range o {
		if obs != nil {
			obs.OnCandidate(c)
		}
	}
}

func isPermutation(ids []int, n int) bool {
	if len(ids) != n {
		return false
	}
	seen := make([]bool, n)
	for _, id := range ids {
		if id < 0 || id >= n || seen[id] {
			return false
		}
		seen[id] = true
	}
	return true
}
