// Package cache provides pluggable byte caching for the layout pipeline.
//
// The [Cache] interface abstracts the storage backend: file-based for CLI
// usage, Redis for server deployments, and a null cache for tests or when
// caching is disabled. A [Keyer] derives deterministic cache keys from
// graph content hashes and layout options, so identical requests hit the
// same entry regardless of where they originate.
package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"time"
)

// Cache is a byte-oriented cache with TTL support.
// Implementations must be safe for concurrent use.
type Cache interface {
	// Get retrieves a value. The second return reports whether the key
	// was present; a miss is not an error.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores a value. A zero ttl means no expiration.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes a value. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases backend resources.
	Close() error
}

// Default TTLs per cacheable stage. Graphs are content-addressed so they
// can live long; layouts and artifacts follow them.
const (
	TTLGraph    = 7 * 24 * time.Hour
	TTLLayout   = 24 * time.Hour
	TTLArtifact = 24 * time.Hour
)

// =============================================================================
// Keyer - Cache Key Generation
// =============================================================================

// LayoutKeyOpts are the options that distinguish layout cache entries
// computed from the same graph.
type LayoutKeyOpts struct {
	Engine     string // positioning engine name ("sugiyama", "graphviz")
	Direction  string // main layout axis ("LR", "TB")
	Nested     bool   // parent-relative coordinate variant
	ConfigHash string // hash of the sizing configuration, when customized
}

// ArtifactKeyOpts are the options that distinguish rendered artifacts
// produced from the same layout.
type ArtifactKeyOpts struct {
	Format string  // output format ("svg", "png", "pdf", "json")
	Title  string  // canvas title drawn into the artifact
	Scale  float64 // raster scale factor, for raster formats
}

// Keyer generates cache keys for the three cacheable stages:
// parsed graphs, computed layouts, and rendered artifacts.
type Keyer interface {
	// GraphKey generates a key for a parsed graph, from the content hash
	// of its serialized form.
	GraphKey(graphHash string) string

	// LayoutKey generates a key for a layout computed from the graph
	// with the given content hash.
	LayoutKey(graphHash string, opts LayoutKeyOpts) string

	// ArtifactKey generates a key for an artifact rendered from the
	// layout with the given content hash.
	ArtifactKey(layoutHash string, opts ArtifactKeyOpts) string
}

// DefaultKeyer is the standard key scheme: a stage prefix plus a SHA-256
// hash over the inputs.
type DefaultKeyer struct{}

// NewDefaultKeyer creates the standard keyer.
func NewDefaultKeyer() Keyer {
	return &DefaultKeyer{}
}

// GraphKey generates a key for a parsed graph.
func (k *DefaultKeyer) GraphKey(graphHash string) string {
	return "graph:" + graphHash
}

// LayoutKey generates a key for a computed layout.
func (k *DefaultKeyer) LayoutKey(graphHash string, opts LayoutKeyOpts) string {
	return hashKey("layout", graphHash, opts.Engine, opts.Direction, opts.Nested, opts.ConfigHash)
}

// ArtifactKey generates a key for a rendered artifact.
func (k *DefaultKeyer) ArtifactKey(layoutHash string, opts ArtifactKeyOpts) string {
	return hashKey("artifact", layoutHash, opts.Format, opts.Title, opts.Scale)
}

// hashKey generates a cache key by hashing the components.
// The key format is: prefix:hash(parts...)
func hashKey(prefix string, parts ...any) string {
	data, _ := json.Marshal(parts)
	sum := sha256.Sum256(data)
	return prefix + ":" + hex.EncodeToString(sum[:])
}

// Hash computes the SHA-256 hash of the input data as a 64-character
// hex string. Full-length hashes keep content addressing collision-free.
func Hash(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// =============================================================================
// NullCache - Disabled Caching
// =============================================================================

// NullCache is a no-op cache that never stores anything.
// Useful for testing or when caching should be disabled.
type NullCache struct{}

// NewNullCache creates a null cache.
func NewNullCache() Cache {
	return &NullCache{}
}

// Get always returns a cache miss.
func (c *NullCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	return nil, false, nil
}

// Set does nothing.
func (c *NullCache) Set(ctx context.Context, key string, data []byte, ttl time.Duration) error {
	return nil
}

// Delete does nothing.
func (c *NullCache) Delete(ctx context.Context, key string) error {
	return nil
}

// Close does nothing.
func (c *NullCache) Close() error {
	return nil
}

var _ Cache = (*NullCache)(nil)
