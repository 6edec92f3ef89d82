package cache

// Keyer derives cache keys. Implementations must be deterministic: equal
// inputs give equal keys across processes.
type Keyer interface {
	// SolutionKey identifies a solved reconstruction of one image.
	SolutionKey(imageHash string, opts SolutionKeyOpts) string

	// ArtifactKey identifies an encoded output image of one solution.
	ArtifactKey(solutionHash string, opts ArtifactKeyOpts) string
}

// SolutionKeyOpts are the options that change a solution.
// Worker count is deliberately absent: results do not depend on it.
type SolutionKeyOpts struct {
	StripeWidth  int    `json:"stripe_width"`
	Metric       string `json:"metric"`
	IncludeAlpha bool   `json:"include_alpha"`
	Policy       string `json:"policy"`
}

// ArtifactKeyOpts are the options that change an encoded output.
type ArtifactKeyOpts struct {
	Format string `json:"format"`
}

// DefaultKeyer hashes key components with SHA-256.
type DefaultKeyer struct{}

// NewDefaultKeyer returns the default keyer.
func NewDefaultKeyer() Keyer {
	return DefaultKeyer{}
}

// SolutionKey returns "solution:<hash>".
func (DefaultKeyer) SolutionKey(imageHash string, opts SolutionKeyOpts) string {
	return hashKey("solution", imageHash, opts)
}

// ArtifactKey returns "artifact:<hash>".
func (DefaultKeyer) ArtifactKey(solutionHash string, opts ArtifactKeyOpts) string {
	return hashKey("artifact", solutionHash, opts)
}
