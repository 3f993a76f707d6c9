package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
)

// Key prefixes produced by [DefaultKeyer].
const (
	prefixLayout   = "layout"
	prefixArtifact = "artifact"
)

// LayoutKeyOpts lists every layout setting that changes the result.
type LayoutKeyOpts struct {
	Mode               string     `json:"mode"`
	Transverse         bool       `json:"transverse"`
	NodeWidth          float64    `json:"node_width"`
	NodeHeight         float64    `json:"node_height"`
	NodeSpacing        float64    `json:"node_spacing"`
	TurningSlotSpacing float64    `json:"turning_slot_spacing"`
	LevelSpacing       float64    `json:"level_spacing"`
	Margin             [4]float64 `json:"margin"`
	ComponentPadding   float64    `json:"component_padding"`
	LinkStrategy       string     `json:"link_strategy"`
	LinkMerge          bool       `json:"link_merge"`
}

// ArtifactKeyOpts lists the render settings that change an artifact.
type ArtifactKeyOpts struct {
	Format string `json:"format"`
	Labels bool   `json:"labels"`
	Theme  string `json:"theme"`
}

// Keyer derives cache keys.
type Keyer interface {
	// LayoutKey keys a layout by the hash of its input graph.
	LayoutKey(inputHash string, opts LayoutKeyOpts) string
	// ArtifactKey keys a rendered artifact by the hash of its layout.
	ArtifactKey(layoutHash string, opts ArtifactKeyOpts) string
}

// DefaultKeyer hashes the input hash together with the options.
type DefaultKeyer struct{}

// NewDefaultKeyer returns the standard keyer.
func NewDefaultKeyer() Keyer { return DefaultKeyer{} }

// LayoutKey implements [Keyer].
func (DefaultKeyer) LayoutKey(inputHash string, opts LayoutKeyOpts) string {
	return hashKey(prefixLayout, inputHash, opts)
}

// ArtifactKey implements [Keyer].
func (DefaultKeyer) ArtifactKey(layoutHash string, opts ArtifactKeyOpts) string {
	return hashKey(prefixArtifact, layoutHash, opts)
}

// ScopedKeyer prefixes another keyer's keys, giving the CLI and the server
// separate namespaces in a shared backend.
type ScopedKeyer struct {
	inner  Keyer
	prefix string
}

// NewScopedKeyer wraps inner, or DefaultKeyer when inner is nil.
func NewScopedKeyer(inner Keyer, prefix string) Keyer {
	if inner == nil {
		inner = NewDefaultKeyer()
	}
	return &ScopedKeyer{inner: inner, prefix: prefix}
}

// LayoutKey implements [Keyer].
func (k *ScopedKeyer) LayoutKey(inputHash string, opts LayoutKeyOpts) string {
	return k.prefix + k.inner.LayoutKey(inputHash, opts)
}

// ArtifactKey implements [Keyer].
func (k *ScopedKeyer) ArtifactKey(layoutHash string, opts ArtifactKeyOpts) string {
	return k.prefix + k.inner.ArtifactKey(layoutHash, opts)
}

// hashKey returns prefix:sha256(json(parts)).
func hashKey(prefix string, parts ...any) string {
	data, _ := json.Marshal(parts)
	sum := sha256.Sum256(data)
	return fmt.Sprintf("%s:%s", prefix, hex.EncodeToString(sum[:]))
}

// Hash returns the hex SHA-256 of data.
func Hash(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}
