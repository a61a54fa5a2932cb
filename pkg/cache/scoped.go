package cache

// ScopedKeyer wraps a Keyer with a prefix so several deployments can share one
// Redis instance without colliding.
//
//	keyer := NewScopedKeyer(NewDefaultKeyer(), "datamaps:staging:")
type ScopedKeyer struct {
	inner  Keyer
	prefix string
}

// NewScopedKeyer creates a keyer with a prefix.
// The prefix is prepended to all generated keys.
func NewScopedKeyer(inner Keyer, prefix string) Keyer {
	if inner == nil {
		inner = NewDefaultKeyer()
	}
	return &ScopedKeyer{inner: inner, prefix: prefix}
}

// HTTPKey generates a prefixed key for fetched documents.
func (k *ScopedKeyer) HTTPKey(namespace, key string) string {
	return k.prefix + k.inner.HTTPKey(namespace, key)
}

// TopologyKey generates a prefixed key for decoded topologies.
func (k *ScopedKeyer) TopologyKey(scope, url string) string {
	return k.prefix + k.inner.TopologyKey(scope, url)
}

// RenderKey generates a prefixed key for rendered documents.
func (k *ScopedKeyer) RenderKey(opts RenderKeyOpts) string {
	return k.prefix + k.inner.RenderKey(opts)
}
