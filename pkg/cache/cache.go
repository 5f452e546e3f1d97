// Package cache stores rendered artifacts and fetched datasets.
//
// Backends implement [Cache]: [NullCache] (disabled), [FileCache] (CLI and
// single-instance servers) and [RedisCache] (shared across instances). Keys
// come from a [Keyer] so every producer names its entries the same way.
package cache

import (
	"context"
	"time"
)

// Cache is a byte store with per-entry expiry.
type Cache interface {
	// Get returns the cached bytes and whether the key was present.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores data under key. A zero ttl never expires.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	Close() error
}

// Keyer names cache entries.
type Keyer interface {
	// HTTPKey names a fetched remote resource.
	HTTPKey(namespace, key string) string

	// ArtifactKey names a rendered chart snapshot.
	ArtifactKey(chart string, opts ArtifactKeyOpts) string
}

// ArtifactKeyOpts are the inputs that change a rendered snapshot.
type ArtifactKeyOpts struct {
	Format      string        `json:"format"`
	Step        string        `json:"step"`
	Width       float64       `json:"width"`
	Height      float64       `json:"height"`
	DataHash    string        `json:"data_hash"`
	Transitions time.Duration `json:"transitions"`
	Standalone  bool          `json:"standalone"`
}

// DefaultKeyer is the standard [Keyer].
type DefaultKeyer struct{}

// NewDefaultKeyer returns the standard keyer.
func NewDefaultKeyer() Keyer { return DefaultKeyer{} }

// HTTPKey returns "http:<namespace><key>".
func (DefaultKeyer) HTTPKey(namespace, key string) string {
	return "http:" + namespace + key
}

// ArtifactKey hashes the chart name with every option.
func (DefaultKeyer) ArtifactKey(chart string, opts ArtifactKeyOpts) string {
	return hashKey("artifact", chart, opts)
}
