package cache

// ScopedKeyer wraps a Keyer with a prefix. The server scopes keys by build
// version so a deploy never serves snapshots rendered by older code:
//
//	keyer := NewScopedKeyer(NewDefaultKeyer(), "v1.2.0:")
type ScopedKeyer struct {
	inner  Keyer
	prefix string
}

// NewScopedKeyer creates a keyer with a prefix. A nil inner keyer means
// [DefaultKeyer].
func NewScopedKeyer(inner Keyer, prefix string) Keyer {
	if inner == nil {
		inner = NewDefaultKeyer()
	}
	return &ScopedKeyer{inner: inner, prefix: prefix}
}

// HTTPKey generates a prefixed key for fetched resources.
func (k *ScopedKeyer) HTTPKey(namespace, key string) string {
	return k.prefix + k.inner.HTTPKey(namespace, key)
}

// ArtifactKey generates a prefixed key for rendered snapshots.
func (k *ScopedKeyer) ArtifactKey(chart string, opts ArtifactKeyOpts) string {
	return k.prefix + k.inner.ArtifactKey(chart, opts)
}
