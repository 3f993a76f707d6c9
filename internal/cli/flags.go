package cli

import (
	"github.com/spf13/cobra"

	"github.com/matzehuels/stratum/pkg/errors"
	"github.com/matzehuels/stratum/pkg/layout"
	"github.com/matzehuels/stratum/pkg/pipeline"
	"github.com/matzehuels/stratum/pkg/render/svg"
)

// layoutFlags are the layout options shared by layout, render and inspect.
// Only flags the user set override the config file.
type layoutFlags struct {
	mode             string
	transverse       bool
	nodeWidth        float64
	nodeHeight       float64
	nodeSpacing      float64
	slotSpacing      float64
	levelSpacing     float64
	margin           []float64
	noMargin         bool
	componentPadding float64
	strategy         string
	noMerge          bool
}

func (f *layoutFlags) register(cmd *cobra.Command) {
	fs := cmd.Flags()
	fs.StringVarP(&f.mode, "mode", "m", pipeline.DefaultMode, "layout mode: single or multi")
	fs.BoolVarP(&f.transverse, "transverse", "t", false, "lay levels out left to right")
	fs.Float64Var(&f.nodeWidth, "node-width", layout.DefaultNodeWidth, "default node width")
	fs.Float64Var(&f.nodeHeight, "node-height", layout.DefaultNodeHeight, "default node height")
	fs.Float64Var(&f.nodeSpacing, "node-spacing", layout.DefaultNodeSpacing, "gap between nodes on a level")
	fs.Float64Var(&f.slotSpacing, "slot-spacing", layout.DefaultTurningSlotSpacing, "gap between link turning slots")
	fs.Float64Var(&f.levelSpacing, "level-spacing", layout.DefaultLevelSpacing, "minimum gap between levels")
	fs.Float64SliceVar(&f.margin, "margin", nil, "margin: one value, or left,right,top,bottom (0 for none)")
	fs.BoolVar(&f.noMargin, "no-margin", false, "drop the outer margin")
	fs.Float64Var(&f.componentPadding, "component-padding", layout.DefaultComponentPadding, "gap between components in multi mode")
	fs.StringVarP(&f.strategy, "link-strategy", "l", pipeline.DefaultLinkStrategy, "link router: polyline or straight")
	fs.BoolVar(&f.noMerge, "no-link-merge", false, "route links through separate turning slots")

	_ = cmd.RegisterFlagCompletionFunc("mode", fixedCompletion("single", "multi"))
	_ = cmd.RegisterFlagCompletionFunc("link-strategy", fixedCompletion("polyline", "straight"))
}

// apply copies changed flags onto opts.
func (f *layoutFlags) apply(cmd *cobra.Command, opts *pipeline.Options) error {
	fs := cmd.Flags()
	set := func(name string, fn func()) {
		if fs.Changed(name) {
			fn()
		}
	}
	set("mode", func() { opts.Mode = f.mode })
	set("transverse", func() { opts.Transverse = f.transverse })
	set("node-width", func() { opts.NodeWidth = f.nodeWidth })
	set("node-height", func() { opts.NodeHeight = f.nodeHeight })
	set("node-spacing", func() { opts.NodeSpacing = f.nodeSpacing })
	set("slot-spacing", func() { opts.TurningSlotSpacing = f.slotSpacing })
	set("level-spacing", func() { opts.LevelSpacing = f.levelSpacing })
	set("no-margin", func() { opts.NoMargin = f.noMargin })
	set("component-padding", func() { opts.ComponentPadding = f.componentPadding })
	set("link-strategy", func() { opts.LinkStrategy = f.strategy })
	set("no-link-merge", func() { opts.DisableLinkMerge = f.noMerge })

	if fs.Changed("margin") {
		m, err := parseMargin(f.margin)
		if err != nil {
			return err
		}
		if m.IsZero() {
			opts.NoMargin = true
		} else {
			opts.Margin = &m
		}
	}
	return nil
}

// parseMargin accepts one value for all sides or four values in
// left,right,top,bottom order. An all-zero margin means no margin.
func parseMargin(v []float64) (layout.Margin, error) {
	switch len(v) {
	case 1:
		return layout.Margin{Left: v[0], Right: v[0], Top: v[0], Bottom: v[0]}, nil
	case 4:
		return layout.Margin{Left: v[0], Right: v[1], Top: v[2], Bottom: v[3]}, nil
	}
	return layout.Margin{}, errors.New(errors.ErrCodeInvalidConfig, "margin needs 1 or 4 values, got %d", len(v))
}

// renderFlags are the artifact options of the render command.
type renderFlags struct {
	formats  string
	theme    string
	noLabels bool
	graphviz bool
	detailed bool
	scale    float64
}

func (f *renderFlags) register(cmd *cobra.Command) {
	fs := cmd.Flags()
	fs.StringVarP(&f.formats, "format", "f", "svg", "output formats, comma separated: svg, dot, pdf, png, json")
	fs.StringVar(&f.theme, "theme", pipeline.DefaultTheme, "svg theme")
	fs.BoolVar(&f.noLabels, "no-labels", false, "omit node labels")
	fs.BoolVar(&f.graphviz, "graphviz", false, "draw the svg with graphviz using the computed positions")
	fs.BoolVar(&f.detailed, "detailed", false, "include node labels in dot output")
	fs.Float64Var(&f.scale, "scale", pipeline.DefaultScale, "png resolution multiplier")

	_ = cmd.RegisterFlagCompletionFunc("theme", fixedCompletion(svg.ThemeNames()...))
}

func (f *renderFlags) apply(cmd *cobra.Command, opts *pipeline.Options) {
	fs := cmd.Flags()
	if fs.Changed("format") || len(opts.Formats) == 0 {
		opts.Formats = parseFormats(f.formats)
	}
	if fs.Changed("theme") {
		opts.Theme = f.theme
	}
	if fs.Changed("no-labels") {
		opts.NoLabels = f.noLabels
	}
	if fs.Changed("graphviz") {
		opts.Graphviz = f.graphviz
	}
	if fs.Changed("detailed") {
		opts.Detailed = f.detailed
	}
	if fs.Changed("scale") {
		opts.Scale = f.scale
	}
}

func fixedCompletion(values ...string) func(*cobra.Command, []string, string) ([]string, cobra.ShellCompDirective) {
	return func(*cobra.Command, []string, string) ([]string, cobra.ShellCompDirective) {
		return values, cobra.ShellCompDirectiveNoFileComp
	}
}
