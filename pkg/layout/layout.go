package layout

import (
	"context"
	"runtime"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/matzehuels/stratum/pkg/observability"
)

const (
	modeSingle = "single"
	modeMulti  = "multi"
)

// Single lays out all nodes as one graph, even when it is disconnected.
func Single(ctx context.Context, nodes []InputNode, cfg Config) (Result, error) {
	cfg = cfg.WithDefaults()
	if err := cfg.Validate(); err != nil {
		return Result{}, err
	}
	start := time.Now()
	observability.Layout().OnLayoutStart(ctx, modeSingle, len(nodes))
	res, err := single(ctx, nodes, cfg)
	observability.Layout().OnLayoutComplete(ctx, modeSingle, len(res.Nodes), time.Since(start), err)
	return res, err
}

// Multi lays out each connected component on its own and packs the results
// side by side, ComponentPadding apart and centered across the tallest one.
// In transverse mode components are stacked top to bottom. Components run
// concurrently; output order follows the order of first appearance in nodes.
func Multi(ctx context.Context, nodes []InputNode, cfg Config) (Result, error) {
	cfg = cfg.WithDefaults()
	if err := cfg.Validate(); err != nil {
		return Result{}, err
	}
	start := time.Now()
	observability.Layout().OnLayoutStart(ctx, modeMulti, len(nodes))
	res, err := multi(ctx, nodes, cfg)
	observability.Layout().OnLayoutComplete(ctx, modeMulti, len(res.Nodes), time.Since(start), err)
	return res, err
}

func single(ctx context.Context, nodes []InputNode, cfg Config) (Result, error) {
	e, err := run(ctx, nodes, cfg)
	if err != nil {
		return Result{}, err
	}
	if e.g.NodeCount() == 0 {
		return emptyResult(), nil
	}

	m := cfg.Margin
	if !cfg.Transverse {
		res, err := e.Output(m.Left, m.Top)
		if err != nil {
			return Result{}, err
		}
		res.Size = Size{Width: e.width + m.Left + m.Right, Height: e.height + m.Top + m.Bottom}
		return res, nil
	}

	// Layout space x becomes output y, so the top margin offsets x.
	res, err := e.Output(m.Top, m.Left)
	if err != nil {
		return Result{}, err
	}
	res.Size = Size{Width: e.width + m.Top + m.Bottom, Height: e.height + m.Left + m.Right}
	res.transpose()
	return res, nil
}

func multi(ctx context.Context, nodes []InputNode, cfg Config) (Result, error) {
	components, err := SeparateComponents(nodes)
	if err != nil {
		return Result{}, err
	}
	if len(components) <= 1 {
		return single(ctx, nodes, cfg)
	}
	cfg.Logger.Debug("separated components", "count", len(components))

	engines := make([]*Engine, len(components))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.GOMAXPROCS(0))
	for i, comp := range components {
		g.Go(func() error {
			e, err := run(gctx, comp, cfg)
			engines[i] = e
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return Result{}, err
	}

	// Components are packed along layout x. In transverse mode that axis
	// becomes output y, so the vertical margins apply along it.
	m := cfg.Margin
	lead, trail, above, below := m.Left, m.Right, m.Top, m.Bottom
	if cfg.Transverse {
		lead, trail, above, below = m.Top, m.Bottom, m.Left, m.Right
	}

	var band, span float64
	for _, e := range engines {
		band = max(band, e.height)
		span += e.width
	}
	span += cfg.ComponentPadding * float64(len(engines)-1)

	res := Result{Size: Size{Width: span + lead + trail, Height: band + above + below}}
	x := lead
	for _, e := range engines {
		out, err := e.Output(x, (res.Size.Height-e.height)/2)
		if err != nil {
			return Result{}, err
		}
		res.Nodes = append(res.Nodes, out.Nodes...)
		res.Links = append(res.Links, out.Links...)
		x += e.width + cfg.ComponentPadding
	}
	if cfg.Transverse {
		res.transpose()
	}
	return res, nil
}

func run(ctx context.Context, nodes []InputNode, cfg Config) (*Engine, error) {
	if err := ctx.Err(); err != nil {
		return nil, contextError(err)
	}
	e, err := NewEngine(Preprocess(nodes, cfg), cfg)
	if err != nil {
		return nil, err
	}
	if err := e.Run(ctx); err != nil {
		return nil, err
	}
	return e, nil
}
