package cache

// ScopedKeyer prefixes every key of an inner Keyer. It is selected by
// cache.key_prefix so several deployments can share one Redis database.
type ScopedKeyer struct {
	inner  Keyer
	prefix string
}

// NewScopedKeyer wraps inner, or a DefaultKeyer when inner is nil.
func NewScopedKeyer(inner Keyer, prefix string) Keyer {
	if inner == nil {
		inner = NewDefaultKeyer()
	}
	return &ScopedKeyer{inner: inner, prefix: prefix}
}

func (k *ScopedKeyer) SolutionKey(imageHash string, opts SolutionKeyOpts) string {
	return k.prefix + k.inner.SolutionKey(imageHash, opts)
}

func (k *ScopedKeyer) ArtifactKey(solutionHash string, opts ArtifactKeyOpts) string {
	return k.prefix + k.inner.ArtifactKey(solutionHash, opts)
}
