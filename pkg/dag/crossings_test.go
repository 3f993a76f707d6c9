package dag

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// bipartite builds a two-level graph with the given upper → lower links.
func bipartite(upper, lower int, links [][2]int) (*Graph, [][]NodeID) {
	g := New(upper + lower)
	var top, bottom []NodeID
	for i := 0; i < upper; i++ {
		n, _ := g.AddNode(Node{ID: "u" + string(rune('0'+i)), Level: 0})
		top = append(top, n)
	}
	for i := 0; i < lower; i++ {
		n, _ := g.AddNode(Node{ID: "l" + string(rune('0'+i)), Level: 1})
		bottom = append(bottom, n)
	}
	for _, l := range links {
		_, _ = g.AddLink(Link{Source: top[l[0]], Target: bottom[l[1]]})
	}
	levels := [][]NodeID{top, bottom}
	g.SetLevels(levels)
	return g, levels
}

func TestCountLayerCrossings(t *testing.T) {
	tests := []struct {
		name         string
		upper, lower int
		links        [][2]int
		want         int
	}{
		{"empty", 0, 0, nil, 0},
		{"parallel", 2, 2, [][2]int{{0, 0}, {1, 1}}, 0},
		{"single cross", 2, 2, [][2]int{{0, 1}, {1, 0}}, 1},
		{"shared source", 1, 3, [][2]int{{0, 2}, {0, 0}, {0, 1}}, 0},
		{"shared target", 3, 1, [][2]int{{0, 0}, {1, 0}, {2, 0}}, 0},
		{"full reversal", 3, 3, [][2]int{{0, 2}, {1, 1}, {2, 0}}, 3},
		{"k22", 2, 2, [][2]int{{0, 0}, {0, 1}, {1, 0}, {1, 1}}, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g, levels := bipartite(tt.upper, tt.lower, tt.links)
			assert.Equal(t, tt.want, CountLayerCrossings(g, levels[0], levels[1]))
			assert.Equal(t, tt.want, CountCrossings(g, levels))
		})
	}
}

func TestCountLayerCrossingsIgnoresLongLinks(t *testing.T) {
	g, levels := bipartite(2, 2, [][2]int{{0, 1}, {1, 0}})
	far, _ := g.AddNode(Node{ID: "far", Level: 3})
	_, _ = g.AddLink(Link{Source: levels[0][0], Target: far})
	assert.Equal(t, 1, CountLayerCrossings(g, levels[0], levels[1]))
}

func TestWorkspaceGrows(t *testing.T) {
	g, levels := bipartite(3, 3, [][2]int{{0, 2}, {1, 1}, {2, 0}})
	ws := NewCrossingWorkspace(0)
	assert.Equal(t, 3, CountLayerCrossingsWith(g, levels[0], levels[1], ws))
	assert.Equal(t, 3, CountLayerCrossingsWith(g, levels[0], levels[1], ws))
}

func TestCountPairCrossings(t *testing.T) {
	g, levels := bipartite(2, 2, [][2]int{{0, 1}, {1, 0}})
	assert.Equal(t, 1, CountPairCrossings(g, levels[0][0], levels[0][1], false))
	assert.Equal(t, 0, CountPairCrossings(g, levels[0][1], levels[0][0], false))
	assert.Equal(t, 1, CountPairCrossings(g, levels[1][0], levels[1][1], true))
}
