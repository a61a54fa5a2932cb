package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
)

// hashKey generates a cache key by hashing the components.
// The key format is: prefix:hash(parts...)
func hashKey(prefix string, parts ...any) string {
	data, _ := json.Marshal(parts)
	hash := sha256.Sum256(data)
	return fmt.Sprintf("%s:%s", prefix, hex.EncodeToString(hash[:]))
}

// Hash computes a SHA-256 hash of the input data.
// Returns the full 64-character hex string.
func Hash(data []byte) string {
	hash := sha256.Sum256(data)
	return hex.EncodeToString(hash[:])
}

// Keyer builds cache keys for each kind of cached artifact.
type Keyer interface {
	// HTTPKey is the key of a fetched document.
	HTTPKey(namespace, key string) string

	// TopologyKey is the key of a decoded topology for a scope and source URL.
	TopologyKey(scope, url string) string

	// RenderKey is the key of a rendered map document.
	RenderKey(opts RenderKeyOpts) string
}

// RenderKeyOpts identifies one rendered document.
type RenderKeyOpts struct {
	Scope      string `json:"scope"`
	ConfigHash string `json:"config"`
	Format     string `json:"format"`
	Width      int    `json:"width,omitempty"`
}

// DefaultKeyer produces unprefixed keys.
type DefaultKeyer struct{}

// NewDefaultKeyer returns the default key layout.
func NewDefaultKeyer() Keyer {
	return DefaultKeyer{}
}

// HTTPKey returns "http:<namespace>:<key>".
func (DefaultKeyer) HTTPKey(namespace, key string) string {
	return "http:" + namespace + ":" + key
}

// TopologyKey hashes the scope and source URL.
func (DefaultKeyer) TopologyKey(scope, url string) string {
	return hashKey("topology", scope, url)
}

// RenderKey hashes the render options.
func (DefaultKeyer) RenderKey(opts RenderKeyOpts) string {
	return hashKey("render", opts)
}
