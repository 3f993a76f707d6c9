package svg

import (
	"maps"
	"slices"
)

// Theme is the color set of a rendering.
type Theme struct {
	Background string
	NodeFill   string
	NodeStroke string
	Text       string
	Link       string
}

// DefaultTheme is the theme used when none is selected.
const DefaultTheme = "light"

var themes = map[string]Theme{
	"light": {
		Background: "#ffffff",
		NodeFill:   "#f5f7fa",
		NodeStroke: "#33415c",
		Text:       "#1b263b",
		Link:       "#5c677d",
	},
	"dark": {
		Background: "#0d1117",
		NodeFill:   "#161b22",
		NodeStroke: "#8b949e",
		Text:       "#e6edf3",
		Link:       "#6e7681",
	},
	"mono": {
		Background: "none",
		NodeFill:   "#ffffff",
		NodeStroke: "#000000",
		Text:       "#000000",
		Link:       "#000000",
	},
}

// LookupTheme returns the named theme. An empty name selects [DefaultTheme].
func LookupTheme(name string) (Theme, bool) {
	if name == "" {
		name = DefaultTheme
	}
	t, ok := themes[name]
	return t, ok
}

// ThemeNames lists the known themes in sorted order.
func ThemeNames() []string {
	return slices.Sorted(maps.Keys(themes))
}
