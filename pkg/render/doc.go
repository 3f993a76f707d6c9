// Package render turns finished layouts into pictures.
//
// # Overview
//
// A [layout.Result] already carries every coordinate and path a picture
// needs, so renderers here only draw. Two renderers are provided:
//
//   - [svg] draws nodes as rounded boxes and links from their routed paths
//   - [dot] exports Graphviz DOT with every node pinned at its layout position
//
// # Format Conversion
//
// [ToPDF] and [ToPNG] convert any SVG using the external rsvg-convert tool
// (from librsvg):
//
//	out := svg.Render(res, svg.WithTheme("dark"))
//	pdf, err := render.ToPDF(ctx, out)
//	png, err := render.ToPNG(ctx, out, 2.0) // 2x scale
//
// [layout.Result]: github.com/matzehuels/stratum/pkg/layout.Result
// [svg]: github.com/matzehuels/stratum/pkg/render/svg
// [dot]: github.com/matzehuels/stratum/pkg/render/dot
package render
