package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/matzehuels/stratum/pkg/graph"
	"github.com/matzehuels/stratum/pkg/observability"
	"github.com/matzehuels/stratum/pkg/render"
	"github.com/matzehuels/stratum/pkg/render/dot"
	"github.com/matzehuels/stratum/pkg/render/svg"
)

// Render generates output artifacts in the requested formats. PDF and PNG
// are converted from the SVG, which is drawn once and shared.
func Render(ctx context.Context, l graph.Layout, opts Options) (artifacts map[string][]byte, err error) {
	if err := opts.ValidateForRender(); err != nil {
		return nil, err
	}

	start := time.Now()
	observability.Pipeline().OnRenderStart(ctx, opts.Formats)
	defer func() {
		observability.Pipeline().OnRenderComplete(ctx, opts.Formats, time.Since(start), err)
	}()

	res := l.Result()
	var svgData []byte
	drawSVG := func() ([]byte, error) {
		if svgData != nil {
			return svgData, nil
		}
		if opts.Graphviz {
			data, err := dot.RenderSVG(ctx, dot.ToDOT(res, dot.Options{Detailed: opts.Detailed}))
			if err != nil {
				return nil, err
			}
			svgData = data
		} else {
			svgData = svg.Render(res,
				svg.WithTheme(opts.Theme),
				svg.WithLabels(!opts.NoLabels))
		}
		return svgData, nil
	}

	artifacts = make(map[string][]byte, len(opts.Formats))
	for _, format := range opts.Formats {
		var data []byte
		var err error

		switch format {
		case render.FormatSVG:
			data, err = drawSVG()
		case render.FormatDOT:
			data = []byte(dot.ToDOT(res, dot.Options{Detailed: opts.Detailed}))
		case render.FormatPDF:
			if data, err = drawSVG(); err == nil {
				data, err = render.ToPDF(ctx, data)
			}
		case render.FormatPNG:
			if data, err = drawSVG(); err == nil {
				data, err = render.ToPNG(ctx, data, opts.Scale)
			}
		case render.FormatJSON:
			data, err = graph.MarshalLayout(l)
		default:
			err = ValidateFormat(format)
		}

		if err != nil {
			return nil, fmt.Errorf("render %s: %w", format, err)
		}
		artifacts[format] = data
		opts.Logger.Debug("rendered artifact", "format", format, "bytes", len(data))
	}
	return artifacts, nil
}
