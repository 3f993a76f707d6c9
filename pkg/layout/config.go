package layout

import (
	"io"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/stratum/pkg/dag"
	"github.com/matzehuels/stratum/pkg/errors"
	"github.com/matzehuels/stratum/pkg/route"
)

// Default values applied by [Config.WithDefaults].
const (
	DefaultNodeWidth          = 180.0
	DefaultNodeHeight         = 50.0
	DefaultNodeSpacing        = 40.0
	DefaultTurningSlotSpacing = route.DefaultTurningSlotSpacing
	DefaultLevelSpacing       = route.DefaultLevelSpacing
	DefaultComponentPadding   = 200.0

	// transverseVirtualWidth keeps chains thin once the axes are swapped,
	// where a virtual node's width becomes vertical room.
	transverseVirtualWidth = 0.1
)

// DefaultMargin surrounds every layout unless overridden.
var DefaultMargin = Margin{Left: 180, Right: 180, Top: 50, Bottom: 50}

// Margin is the empty space around a layout, in output orientation.
type Margin struct {
	Left   float64 `json:"left" toml:"left"`
	Right  float64 `json:"right" toml:"right"`
	Top    float64 `json:"top" toml:"top"`
	Bottom float64 `json:"bottom" toml:"bottom"`
}

// IsZero reports whether no side is set.
func (m Margin) IsZero() bool { return m == Margin{} }

// Config controls a layout run. The zero value is usable: call
// [Config.WithDefaults] (Single and Multi do) to fill unset fields.
type Config struct {
	// Transverse lays levels out left to right instead of top to bottom.
	Transverse bool

	DefaultNodeWidth   float64
	DefaultNodeHeight  float64
	NodeSpacing        float64
	TurningSlotSpacing float64
	LevelSpacing       float64
	// Margin applies to the whole layout. A zero Margin selects
	// DefaultMargin; use NoMargin for none.
	Margin   Margin
	NoMargin bool
	// ComponentPadding separates components in [Multi].
	ComponentPadding float64

	// LinkStrategy is one of the route kinds; empty means polyline.
	LinkStrategy string
	// CustomStrategy builds the router when LinkStrategy is "custom".
	CustomStrategy func(g *dag.Graph, opts route.Options) route.Strategy
	// DisableLinkMerge gives crossing polyline runs their own turning slot.
	DisableLinkMerge bool

	// NodeKey and LinkKey override deduplication keys. The defaults are the
	// node ID and "source-target".
	NodeKey func(InputNode) string
	LinkKey func(InputRelation) string

	// VirtualNodeWidth sizes placeholder nodes on long links. Zero selects
	// the node width default, or a hairline in transverse mode.
	VirtualNodeWidth float64

	Logger *log.Logger
}

// WithDefaults returns a copy of c with every unset field filled.
func (c Config) WithDefaults() Config {
	if c.DefaultNodeWidth <= 0 {
		c.DefaultNodeWidth = DefaultNodeWidth
	}
	if c.DefaultNodeHeight <= 0 {
		c.DefaultNodeHeight = DefaultNodeHeight
	}
	if c.NodeSpacing <= 0 {
		c.NodeSpacing = DefaultNodeSpacing
	}
	if c.TurningSlotSpacing <= 0 {
		c.TurningSlotSpacing = DefaultTurningSlotSpacing
	}
	if c.LevelSpacing <= 0 {
		c.LevelSpacing = DefaultLevelSpacing
	}
	if c.NoMargin {
		c.Margin = Margin{}
	} else if c.Margin.IsZero() {
		c.Margin = DefaultMargin
	}
	if c.ComponentPadding <= 0 {
		c.ComponentPadding = DefaultComponentPadding
	}
	if c.LinkStrategy == "" {
		c.LinkStrategy = route.KindPolyline
	}
	if c.NodeKey == nil {
		c.NodeKey = defaultNodeKey
	}
	if c.LinkKey == nil {
		c.LinkKey = defaultLinkKey
	}
	if c.VirtualNodeWidth <= 0 {
		c.VirtualNodeWidth = DefaultNodeWidth
		if c.Transverse {
			c.VirtualNodeWidth = transverseVirtualWidth
		}
	}
	if c.Logger == nil {
		c.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	return c
}

// Validate checks settings WithDefaults cannot repair.
func (c Config) Validate() error {
	if err := route.ValidateKind(c.LinkStrategy); err != nil {
		return err
	}
	if c.LinkStrategy == route.KindCustom && c.CustomStrategy == nil {
		return errors.New(errors.ErrCodeInvalidConfig, "link strategy %q requires CustomStrategy", c.LinkStrategy)
	}
	m := c.Margin
	if m.Left < 0 || m.Right < 0 || m.Top < 0 || m.Bottom < 0 {
		return errors.New(errors.ErrCodeInvalidConfig, "margins must not be negative")
	}
	return nil
}

func (c Config) routeOptions() route.Options {
	return route.Options{
		LevelSpacing:       c.LevelSpacing,
		TurningSlotSpacing: c.TurningSlotSpacing,
		NodeSpacing:        c.NodeSpacing,
		LinkMerge:          !c.DisableLinkMerge,
		Custom:             c.CustomStrategy,
	}
}

func defaultNodeKey(n InputNode) string { return n.ID }

func defaultLinkKey(r InputRelation) string { return r.SourceID + "-" + r.TargetID }
