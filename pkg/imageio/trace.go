package imageio

import (
	"github.com/matzehuels/unshred/pkg/core/sequence"
)

// Trace is the serializable record of one reconstruction.
type Trace struct {
	Source      string               `json:"source,omitempty" bson:"source,omitempty"`
	StripeWidth int                  `json:"stripe_width" bson:"stripe_width"`
	Policy      sequence.Policy      `json:"policy" bson:"policy"`
	Metric      string               `json:"metric,omitempty" bson:"metric,omitempty"`
	Candidates  []sequence.Candidate `json:"candidates" bson:"candidates"`
	Solution    sequence.Solution    `json:"solution" bson:"solution"`
}
