package graph

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/matzehuels/stratum/pkg/errors"
	"github.com/matzehuels/stratum/pkg/layout"
)

// LayoutVersion is written to every serialized layout.
const LayoutVersion = 1

// Layout modes.
const (
	ModeSingle = "single"
	ModeMulti  = "multi"
)

// LayoutMeta records the settings a layout was produced with.
type LayoutMeta struct {
	Mode         string `json:"mode,omitempty"`
	Transverse   bool   `json:"transverse,omitempty"`
	LinkStrategy string `json:"link_strategy,omitempty"`
}

// Layout is the serialized layout output.
type Layout struct {
	Version int `json:"version"`
	LayoutMeta

	Width  float64                 `json:"width"`
	Height float64                 `json:"height"`
	Nodes  []layout.OutputNode     `json:"nodes"`
	Links  []layout.OutputRelation `json:"links"`
}

// NewLayout wraps a layout result.
func NewLayout(res layout.Result, meta LayoutMeta) Layout {
	nodes, links := res.Nodes, res.Links
	if nodes == nil {
		nodes = []layout.OutputNode{}
	}
	if links == nil {
		links = []layout.OutputRelation{}
	}
	return Layout{
		Version:    LayoutVersion,
		LayoutMeta: meta,
		Width:      res.Size.Width,
		Height:     res.Size.Height,
		Nodes:      nodes,
		Links:      links,
	}
}

// Result unwraps the layout result.
func (l Layout) Result() layout.Result {
	return layout.Result{
		Nodes: l.Nodes,
		Links: l.Links,
		Size:  layout.Size{Width: l.Width, Height: l.Height},
	}
}

// =============================================================================
// Layout Serialization API
// =============================================================================

// MarshalLayout serializes a Layout to indented JSON.
func MarshalLayout(l Layout) ([]byte, error) {
	return json.MarshalIndent(l, "", "  ")
}

// UnmarshalLayout decodes a Layout and checks its version.
func UnmarshalLayout(data []byte) (Layout, error) {
	var l Layout
	if err := json.Unmarshal(data, &l); err != nil {
		return Layout{}, errors.Wrap(errors.ErrCodeInvalidFormat, err, "decode layout")
	}
	if l.Version != LayoutVersion {
		return Layout{}, errors.New(errors.ErrCodeUnsupported, "layout version %d (want %d)", l.Version, LayoutVersion)
	}
	return l, nil
}

// WriteLayoutFile writes a Layout to a JSON file.
func WriteLayoutFile(l Layout, path string) error {
	data, err := MarshalLayout(l)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

// ReadLayoutFile reads a Layout from a JSON file.
func ReadLayoutFile(path string) (Layout, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return Layout{}, errors.Wrap(errors.ErrCodeFileNotFound, err, "read %s", path)
	}
	if err != nil {
		return Layout{}, fmt.Errorf("read %s: %w", path, err)
	}
	return UnmarshalLayout(data)
}
