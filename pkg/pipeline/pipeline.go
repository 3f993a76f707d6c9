// Package pipeline runs the parse → layout → render sequence shared by the CLI
// and the HTTP API.
//
// # Architecture
//
// The pipeline consists of three stages:
//
//  1. Parse: Read a graph document (see [graph.ReadGraph])
//  2. Layout: Run [layout.Single] or [layout.Multi] on it
//  3. Render: Produce SVG, DOT, PDF, PNG or JSON from the layout
//
// Layouts and artifacts are cached through a [cache.Cache] keyed by the
// content hash of the input plus every option that changes the output.
//
// # Usage
//
//	runner := pipeline.NewRunner(cache, nil, logger)
//	g, err := pipeline.ParseFile(ctx, "graph.json")
//	result, err := runner.Execute(ctx, g, pipeline.Options{Formats: []string{"svg"}})
//	svg := result.Artifacts["svg"]
package pipeline

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/stratum/pkg/cache"
	"github.com/matzehuels/stratum/pkg/errors"
	"github.com/matzehuels/stratum/pkg/graph"
	"github.com/matzehuels/stratum/pkg/layout"
	"github.com/matzehuels/stratum/pkg/render"
	"github.com/matzehuels/stratum/pkg/render/svg"
	"github.com/matzehuels/stratum/pkg/route"
)

// =============================================================================
// Default Values - Single Source of Truth for CLI and API
// =============================================================================

const (
	// DefaultMode lays out every connected component separately.
	DefaultMode = graph.ModeMulti

	// DefaultLinkStrategy is the default link router.
	DefaultLinkStrategy = route.KindPolyline

	// DefaultScale is the PNG resolution multiplier.
	DefaultScale = 2.0

	// TTLLayout is how long a computed layout stays cached.
	TTLLayout = 7 * 24 * time.Hour

	// TTLArtifact is how long a rendered artifact stays cached.
	TTLArtifact = 7 * 24 * time.Hour
)

// DefaultTheme is the default SVG theme.
const DefaultTheme = svg.DefaultTheme

// =============================================================================
// Options - Pipeline Configuration
// =============================================================================

// Options contains all configuration for the pipeline. Zero values select
// the layout engine's defaults. This struct supports JSON serialization for
// API requests.
type Options struct {
	// Layout options
	Mode               string         `json:"mode,omitempty"`
	Transverse         bool           `json:"transverse,omitempty"`
	NodeWidth          float64        `json:"node_width,omitempty"`
	NodeHeight         float64        `json:"node_height,omitempty"`
	NodeSpacing        float64        `json:"node_spacing,omitempty"`
	TurningSlotSpacing float64        `json:"turning_slot_spacing,omitempty"`
	LevelSpacing       float64        `json:"level_spacing,omitempty"`
	Margin             *layout.Margin `json:"margin,omitempty"`
	NoMargin           bool           `json:"no_margin,omitempty"`
	ComponentPadding   float64        `json:"component_padding,omitempty"`
	LinkStrategy       string         `json:"link_strategy,omitempty"`
	DisableLinkMerge   bool           `json:"disable_link_merge,omitempty"`

	// Render options
	Formats  []string `json:"formats,omitempty"`
	Theme    string   `json:"theme,omitempty"`
	NoLabels bool     `json:"no_labels,omitempty"`
	Graphviz bool     `json:"graphviz,omitempty"` // Draw SVG through Graphviz instead of the native renderer
	Detailed bool     `json:"detailed,omitempty"` // Info entries in DOT labels
	Scale    float64  `json:"scale,omitempty"`

	Refresh bool `json:"refresh,omitempty"`

	// Runtime options (not serialized)
	Logger *log.Logger `json:"-"`

	// validated tracks whether ValidateAndSetDefaults has been called.
	validated bool
}

// Result contains the outputs of a pipeline run.
type Result struct {
	// InputHash is the content hash of the parsed graph.
	InputHash string

	// Layout is the computed layout.
	Layout graph.Layout

	// Artifacts contains rendered outputs keyed by format.
	Artifacts map[string][]byte

	// Stats contains timing and size information.
	Stats Stats

	// CacheInfo tracks which stages hit the cache.
	CacheInfo CacheInfo
}

// Stats contains pipeline execution statistics.
type Stats struct {
	NodeCount  int
	LinkCount  int
	LayoutTime time.Duration
	RenderTime time.Duration
}

// CacheInfo tracks cache hits for each pipeline stage.
type CacheInfo struct {
	LayoutHit bool // Whether layout result came from cache
	RenderHit bool // Whether all artifacts came from cache
}

// =============================================================================
// Validation Functions
// =============================================================================

// ValidateFormat checks that a format is valid.
func ValidateFormat(format string) error {
	if !render.ValidFormat(format) {
		return errors.New(errors.ErrCodeInvalidFormat, "invalid format: %q (must be one of: %s)",
			format, strings.Join(render.Formats, ", "))
	}
	return nil
}

// ValidateFormats checks that all formats are valid.
func ValidateFormats(formats []string) error {
	for _, f := range formats {
		if err := ValidateFormat(f); err != nil {
			return err
		}
	}
	return nil
}

// ValidateMode checks that a layout mode is valid.
func ValidateMode(mode string) error {
	if mode != graph.ModeSingle && mode != graph.ModeMulti {
		return errors.New(errors.ErrCodeInvalidConfig, "invalid mode: %q (must be one of: single, multi)", mode)
	}
	return nil
}

// ValidateLinkStrategy checks that a link strategy can be selected by name.
// Custom strategies need code and are not accepted here.
func ValidateLinkStrategy(kind string) error {
	if kind == route.KindCustom {
		return errors.New(errors.ErrCodeInvalidStrategy, "link strategy %q cannot be selected by name", kind)
	}
	return route.ValidateKind(kind)
}

// ValidateTheme checks that a theme is known.
func ValidateTheme(theme string) error {
	if _, ok := svg.LookupTheme(theme); !ok {
		return errors.New(errors.ErrCodeInvalidConfig, "invalid theme: %q (must be one of: %s)",
			theme, strings.Join(svg.ThemeNames(), ", "))
	}
	return nil
}

// =============================================================================
// Options Methods
// =============================================================================

// ValidateAndSetDefaults applies defaults and validates the full pipeline.
// This method is idempotent - calling it multiple times has the same effect as calling it once.
func (o *Options) ValidateAndSetDefaults() error {
	if o.validated {
		return nil
	}
	if err := o.ValidateForLayout(); err != nil {
		return err
	}
	if err := o.ValidateForRender(); err != nil {
		return err
	}
	o.validated = true
	return nil
}

// SetLayoutDefaults sets default values for layout computation.
func (o *Options) SetLayoutDefaults() {
	if o.Mode == "" {
		o.Mode = DefaultMode
	}
	if o.LinkStrategy == "" {
		o.LinkStrategy = DefaultLinkStrategy
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
}

// ValidateForLayout validates and sets defaults for layout computation.
func (o *Options) ValidateForLayout() error {
	o.SetLayoutDefaults()
	if err := ValidateMode(o.Mode); err != nil {
		return err
	}
	if err := ValidateLinkStrategy(o.LinkStrategy); err != nil {
		return err
	}
	return o.LayoutConfig().Validate()
}

// SetRenderDefaults sets default values for rendering.
func (o *Options) SetRenderDefaults() {
	if len(o.Formats) == 0 {
		o.Formats = []string{render.FormatSVG}
	}
	if o.Theme == "" {
		o.Theme = DefaultTheme
	}
	if o.Scale == 0 {
		o.Scale = DefaultScale
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
}

// ValidateForRender validates and sets defaults for rendering.
func (o *Options) ValidateForRender() error {
	o.SetRenderDefaults()
	if err := ValidateFormats(o.Formats); err != nil {
		return err
	}
	if o.Scale < 0 {
		return errors.New(errors.ErrCodeInvalidConfig, "scale must be positive, got %g", o.Scale)
	}
	return ValidateTheme(o.Theme)
}

// LayoutConfig translates the options into an engine configuration.
func (o *Options) LayoutConfig() layout.Config {
	cfg := layout.Config{
		Transverse:         o.Transverse,
		DefaultNodeWidth:   o.NodeWidth,
		DefaultNodeHeight:  o.NodeHeight,
		NodeSpacing:        o.NodeSpacing,
		TurningSlotSpacing: o.TurningSlotSpacing,
		LevelSpacing:       o.LevelSpacing,
		NoMargin:           o.NoMargin,
		ComponentPadding:   o.ComponentPadding,
		LinkStrategy:       o.LinkStrategy,
		DisableLinkMerge:   o.DisableLinkMerge,
		Logger:             o.Logger,
	}
	if o.Margin != nil {
		cfg.Margin = *o.Margin
	}
	return cfg
}

// Meta returns the layout metadata recorded with results.
func (o *Options) Meta() graph.LayoutMeta {
	return graph.LayoutMeta{Mode: o.Mode, Transverse: o.Transverse, LinkStrategy: o.LinkStrategy}
}

// LayoutKeyOpts returns cache key options for layout computation. Defaults
// are resolved first, so spelling out a default hits the same entry as
// leaving it empty.
func (o *Options) LayoutKeyOpts() cache.LayoutKeyOpts {
	cfg := o.LayoutConfig().WithDefaults()
	return cache.LayoutKeyOpts{
		Mode:               o.Mode,
		Transverse:         cfg.Transverse,
		NodeWidth:          cfg.DefaultNodeWidth,
		NodeHeight:         cfg.DefaultNodeHeight,
		NodeSpacing:        cfg.NodeSpacing,
		TurningSlotSpacing: cfg.TurningSlotSpacing,
		LevelSpacing:       cfg.LevelSpacing,
		Margin:             [4]float64{cfg.Margin.Left, cfg.Margin.Right, cfg.Margin.Top, cfg.Margin.Bottom},
		ComponentPadding:   cfg.ComponentPadding,
		LinkStrategy:       cfg.LinkStrategy,
		LinkMerge:          !cfg.DisableLinkMerge,
	}
}

// ArtifactKeyOpts returns cache key options for artifact rendering.
func (o *Options) ArtifactKeyOpts(format string) cache.ArtifactKeyOpts {
	opts := cache.ArtifactKeyOpts{
		Format: format,
		Labels: !o.NoLabels,
		Theme:  o.Theme,
	}
	switch format {
	case render.FormatDOT:
		opts.Labels = o.Detailed
		opts.Theme = ""
	case render.FormatSVG, render.FormatPDF:
		if o.Graphviz {
			opts.Theme = "graphviz"
		}
	case render.FormatPNG:
		if o.Graphviz {
			opts.Theme = "graphviz"
		}
		opts.Theme += fmt.Sprintf("@%gx", o.Scale)
	case render.FormatJSON:
		opts.Labels, opts.Theme = false, ""
	}
	return opts
}
