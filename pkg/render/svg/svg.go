// Package svg draws a finished layout as a standalone SVG document.
//
// Nodes become rounded rectangles with a centered label, links are stroked
// from their routed path data (arrowheads are part of the path). Node and
// link info maps are emitted as <title> tooltips.
//
//	out := svg.Render(res, svg.WithTheme("dark"), svg.WithLabels(true))
package svg

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"maps"
	"slices"
	"strings"

	"github.com/matzehuels/stratum/pkg/layout"
)

const (
	fontHeightRatio = 0.5
	fontWidthRatio  = 0.9
	fontCharWidth   = 0.55
	fontSizeMin     = 8.0
	fontSizeMax     = 18.0
	cornerRadius    = 4.0
)

const interactionCSS = `
    .node rect { transition: stroke-width 0.2s ease; }
    .node:hover rect { stroke-width: 2.5; }
    .link { fill: none; stroke-width: 1.2; }`

// Option configures a rendering.
type Option func(*renderer)

type renderer struct {
	theme    Theme
	labels   bool
	tooltips bool
}

// WithTheme selects a theme by name. Unknown names keep the default.
func WithTheme(name string) Option {
	return func(r *renderer) {
		if t, ok := LookupTheme(name); ok {
			r.theme = t
		}
	}
}

// WithLabels toggles node labels. Labels are on by default.
func WithLabels(on bool) Option { return func(r *renderer) { r.labels = on } }

// WithTooltips toggles <title> elements built from info maps.
func WithTooltips(on bool) Option { return func(r *renderer) { r.tooltips = on } }

// Render draws res as SVG.
func Render(res layout.Result, opts ...Option) []byte {
	theme, _ := LookupTheme(DefaultTheme)
	r := renderer{theme: theme, labels: true, tooltips: true}
	for _, opt := range opts {
		opt(&r)
	}

	w, h := res.Size.Width, res.Size.Height
	var buf bytes.Buffer
	fmt.Fprintf(&buf, `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.1f %.1f" width="%.0f" height="%.0f">`+"\n",
		w, h, w, h)
	fmt.Fprintf(&buf, "  <style>%s\n  </style>\n", interactionCSS)
	if r.theme.Background != "none" {
		fmt.Fprintf(&buf, `  <rect class="background" width="100%%" height="100%%" fill="%s"/>`+"\n", r.theme.Background)
	}

	buf.WriteString(`  <g class="links">` + "\n")
	for _, l := range res.Links {
		r.renderLink(&buf, l)
	}
	buf.WriteString("  </g>\n")

	buf.WriteString(`  <g class="nodes">` + "\n")
	for _, n := range res.Nodes {
		r.renderNode(&buf, n)
	}
	buf.WriteString("  </g>\n")
	buf.WriteString("</svg>\n")
	return buf.Bytes()
}

func (r *renderer) renderLink(buf *bytes.Buffer, l layout.OutputRelation) {
	if l.Path == "" {
		return
	}
	fmt.Fprintf(buf, `    <path class="link" data-source="%s" data-target="%s" d="%s" stroke="%s">`,
		escape(l.SourceID), escape(l.TargetID), l.Path, r.theme.Link)
	if r.tooltips {
		fmt.Fprintf(buf, "<title>%s</title>", escape(title(l.SourceID+" → "+l.TargetID, l.Info)))
	}
	buf.WriteString("</path>\n")
}

func (r *renderer) renderNode(buf *bytes.Buffer, n layout.OutputNode) {
	fmt.Fprintf(buf, `    <g class="node" id="node-%s">`+"\n", escape(n.ID))
	if r.tooltips {
		fmt.Fprintf(buf, "      <title>%s</title>\n", escape(title(n.ID, n.Info)))
	}
	fmt.Fprintf(buf, `      <rect x="%.2f" y="%.2f" width="%.2f" height="%.2f" rx="%.0f" fill="%s" stroke="%s"/>`+"\n",
		n.Position.X, n.Position.Y, n.Width, n.Height, cornerRadius, r.theme.NodeFill, r.theme.NodeStroke)
	if r.labels {
		label := Label(n)
		size := FontSize(n.Width, n.Height, len(label))
		fmt.Fprintf(buf, `      <text x="%.2f" y="%.2f" font-family="sans-serif" font-size="%.1f" fill="%s" text-anchor="middle" dominant-baseline="central">%s</text>`+"\n",
			n.Position.X+n.Width/2, n.Position.Y+n.Height/2, size, r.theme.Text,
			escape(Truncate(label, n.Width, size)))
	}
	buf.WriteString("    </g>\n")
}

// Label returns the text drawn for n: its "label" info entry when that is a
// non-empty string, the ID otherwise.
func Label(n layout.OutputNode) string {
	if s, ok := n.Info["label"].(string); ok && s != "" {
		return s
	}
	return n.ID
}

// FontSize picks a font size that fits textLen characters into a w×h box.
func FontSize(w, h float64, textLen int) float64 {
	chars := max(1, textLen)
	byHeight := h * fontHeightRatio
	byWidth := (w * fontWidthRatio) / (float64(chars) * fontCharWidth)
	return max(fontSizeMin, min(fontSizeMax, min(byHeight, byWidth)))
}

// Truncate shortens label with ".." so it fits width at the given font size.
func Truncate(label string, width, fontSize float64) string {
	maxChars := max(3, int(width*fontWidthRatio/(fontSize*fontCharWidth)))
	runes := []rune(label)
	if len(runes) <= maxChars {
		return label
	}
	return string(runes[:maxChars-2]) + ".."
}

func title(head string, info map[string]any) string {
	if len(info) == 0 {
		return head
	}
	lines := []string{head}
	for _, k := range slices.Sorted(maps.Keys(info)) {
		lines = append(lines, fmt.Sprintf("%s: %v", k, info[k]))
	}
	return strings.Join(lines, "\n")
}

func escape(s string) string {
	var buf bytes.Buffer
	xml.EscapeText(&buf, []byte(s))
	return buf.String()
}
