package sequence

import (
	"strings"

	"github.com/matzehuels/unshred/pkg/errors"
)

// Policy decides whether a chain may revisit an already placed stripe.
type Policy string

const (
	// PolicyFaithful follows the best neighbor unconditionally and may
	// revisit stripes. It reproduces historical output exactly.
	PolicyFaithful Policy = "faithful"

	// PolicyCorrected follows the best neighbor that has not been placed
	// yet, so every chain is a permutation.
	PolicyCorrected Policy = "corrected"
)

// DefaultPolicy is the policy used when none is configured.
const DefaultPolicy = PolicyFaithful

// Policies lists the supported policies.
var Policies = []Policy{PolicyFaithful, PolicyCorrected}

// ParsePolicy converts a policy name into a Policy.
// The empty string selects DefaultPolicy.
func ParsePolicy(s string) (Policy, error) {
	switch Policy(strings.ToLower(strings.TrimSpace(s))) {
	case "":
		return DefaultPolicy, nil
	case PolicyFaithful:
		return PolicyFaithful, nil
	case PolicyCorrected:
		return PolicyCorrected, nil
	}
	return "", errors.Configuration("invalid policy: %q (must be one of: faithful, corrected)", s)
}
