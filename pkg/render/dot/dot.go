// Package dot exports layouts as Graphviz DOT and renders them through the
// embedded Graphviz library.
//
// Nodes are pinned at their layout positions (pos="x,y!") so Graphviz's
// neato engine keeps the placement and only draws the edges. Setting
// [Options.Unpinned] hands placement back to Graphviz, which is useful for
// comparing the two layouts side by side.
package dot

import (
	"bytes"
	"context"
	"fmt"
	"maps"
	"regexp"
	"slices"
	"strconv"
	"strings"

	"github.com/goccy/go-graphviz"

	"github.com/matzehuels/stratum/pkg/layout"
)

// pointsPerInch converts layout units (treated as points) to Graphviz inches.
const pointsPerInch = 72.0

// Options configures DOT export.
type Options struct {
	// Detailed includes info entries in node labels.
	// When false, only the node ID is shown.
	Detailed bool
	// Unpinned omits node positions so Graphviz lays the graph out itself.
	Unpinned bool
}

// ToDOT converts a layout to Graphviz DOT. Graphviz puts the origin at the
// bottom left, so y coordinates are flipped against the layout height.
func ToDOT(res layout.Result, opts Options) string {
	var buf bytes.Buffer
	buf.WriteString("digraph G {\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  node [shape=box, style=\"rounded,filled\", fillcolor=white, fixedsize=true, fontsize=12];\n")
	if opts.Unpinned {
		buf.WriteString("  rankdir=TB;\n")
	} else {
		buf.WriteString("  splines=true;\n")
		buf.WriteString("  overlap=true;\n")
		buf.WriteString("  notranslate=true;\n")
	}
	buf.WriteString("\n")

	for _, n := range res.Nodes {
		attrs := []string{
			fmt.Sprintf("label=%q", fmtLabel(n, opts.Detailed)),
			"width=" + inches(n.Width),
			"height=" + inches(n.Height),
		}
		if !opts.Unpinned {
			cx := n.Position.X + n.Width/2
			cy := res.Size.Height - (n.Position.Y + n.Height/2)
			attrs = append(attrs, fmt.Sprintf("pos=\"%s,%s!\"", num(cx), num(cy)))
		}
		fmt.Fprintf(&buf, "  %q [%s];\n", n.ID, strings.Join(attrs, ", "))
	}

	buf.WriteString("\n")
	for _, l := range res.Links {
		fmt.Fprintf(&buf, "  %q -> %q;\n", l.SourceID, l.TargetID)
	}

	buf.WriteString("}\n")
	return buf.String()
}

func fmtLabel(n layout.OutputNode, detailed bool) string {
	if !detailed || len(n.Info) == 0 {
		return n.ID
	}
	parts := make([]string, 0, len(n.Info))
	for _, k := range slices.Sorted(maps.Keys(n.Info)) {
		parts = append(parts, fmt.Sprintf("%s: %v", k, n.Info[k]))
	}
	return n.ID + "\n" + strings.Join(parts, "\n")
}

func inches(v float64) string { return num(v / pointsPerInch) }

func num(v float64) string { return strconv.FormatFloat(v, 'f', -1, 64) }

// RenderSVG renders DOT source to SVG using Graphviz's neato engine.
func RenderSVG(ctx context.Context, dot string) ([]byte, error) {
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()
	gv.SetLayout(graphviz.NEATO)

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, graphviz.SVG, &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return normalizeViewBox(buf.Bytes()), nil
}

var (
	svgTagRe  = regexp.MustCompile(`<svg[^>]*>`)
	viewBoxRe = regexp.MustCompile(`viewBox="([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)"`)
)

// normalizeViewBox replaces Graphviz's <svg> tag with one whose viewBox
// starts at the origin and whose size matches it.
func normalizeViewBox(svg []byte) []byte {
	match := viewBoxRe.FindSubmatch(svg)
	if match == nil {
		return svg
	}

	w, _ := strconv.ParseFloat(string(match[3]), 64)
	h, _ := strconv.ParseFloat(string(match[4]), 64)
	if w == 0 || h == 0 {
		return svg
	}

	tag := fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.2f %.2f" width="%.0f" height="%.0f">`,
		w, h, w, h)
	return svgTagRe.ReplaceAll(svg, []byte(tag))
}
