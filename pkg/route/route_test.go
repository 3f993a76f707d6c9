package route

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matzehuels/stratum/pkg/dag"
	"github.com/matzehuels/stratum/pkg/errors"
	"github.com/matzehuels/stratum/pkg/geom"
)

type box struct {
	id         string
	level      int
	x, y, w, h float64
}

// placed builds a positioned graph; nodes must be listed level by level in
// left-to-right order.
func placed(t *testing.T, nodes []box, links [][2]string) (*dag.Graph, [][]dag.NodeID) {
	t.Helper()
	g := dag.New(len(nodes))
	var levels [][]dag.NodeID
	for _, b := range nodes {
		n, err := g.AddNode(dag.Node{ID: b.id, Level: b.level, X: b.x, Y: b.y, Width: b.w, Height: b.h})
		require.NoError(t, err)
		for len(levels) <= b.level {
			levels = append(levels, nil)
		}
		levels[b.level] = append(levels[b.level], n)
	}
	for i, l := range links {
		src, _ := g.Lookup(l[0])
		dst, _ := g.Lookup(l[1])
		_, err := g.AddLink(dag.Link{Source: src, Target: dst, Origin: i})
		require.NoError(t, err)
	}
	g.SetLevels(levels)
	return g, levels
}

func TestSlotRatio(t *testing.T) {
	tests := []struct {
		idx, length int
		want        float64
	}{
		{0, 1, 0.5},
		{0, 2, 0.5},
		{1, 2, 0.5},
		{0, 3, 2.0 / 3},
		{1, 3, 1.0 / 3},
		{2, 3, 2.0 / 3},
		{0, 4, 2.0 / 3},
		{1, 4, 1.0 / 3},
		{2, 4, 1.0 / 3},
		{3, 4, 2.0 / 3},
	}
	for _, tt := range tests {
		assert.InDeltaf(t, tt.want, slotRatio(tt.idx, tt.length), 1e-12, "slotRatio(%d, %d)", tt.idx, tt.length)
	}
}

func TestAttachRatio(t *testing.T) {
	assert.InDelta(t, 0.5, attachRatio(0, 1), 1e-12)
	assert.InDelta(t, 0.4, attachRatio(0, 2), 1e-12)
	assert.InDelta(t, 0.6, attachRatio(1, 2), 1e-12)
}

func TestNew(t *testing.T) {
	g := dag.New(0)

	s, err := New("", g, Options{})
	require.NoError(t, err)
	assert.IsType(t, &Polyline{}, s)

	s, err = New(KindStraight, g, Options{})
	require.NoError(t, err)
	assert.IsType(t, &StraightLine{}, s)

	_, err = New("zigzag", g, Options{})
	assert.True(t, errors.Is(err, errors.ErrCodeInvalidStrategy))

	_, err = New(KindCustom, g, Options{})
	assert.True(t, errors.Is(err, errors.ErrCodeInvalidStrategy))

	custom := NewStraightLine(g, Options{})
	s, err = New(KindCustom, g, Options{Custom: func(*dag.Graph, Options) Strategy { return custom }})
	require.NoError(t, err)
	assert.Same(t, custom, s)
}

func TestValidateKind(t *testing.T) {
	for _, k := range append(Kinds, "") {
		assert.NoError(t, ValidateKind(k), k)
	}
	assert.Error(t, ValidateKind("bezier"))
}

func TestPolyline_TwoNodes(t *testing.T) {
	g, levels := placed(t, []box{
		{id: "a", level: 0, x: 0, y: 50, w: 180, h: 50},
		{id: "b", level: 1, x: 0, y: 180, w: 180, h: 50},
	}, [][2]string{{"a", "b"}})
	p := NewPolyline(g, Options{LinkMerge: true})

	paddings := p.Prepare(levels)

	assert.Equal(t, []float64{80, 0}, paddings)
	lk := g.Link(0)
	assert.Equal(t, 90.0, lk.SourceOffset)
	assert.Equal(t, 90.0, lk.TargetOffset)
	assert.Equal(t, 1, lk.TurnIndex)
	assert.Equal(t, 1, lk.TurnCount)
	assert.Equal(t, 0, g.Node(0).OutIndex)
	assert.Equal(t, dag.None, g.Node(1).OutIndex)

	want := []geom.Point{
		{X: 90, Y: 100}, {X: 90, Y: 140}, {X: 90, Y: 140}, {X: 90, Y: 180},
		{X: 87, Y: 175}, {X: 90, Y: 180}, {X: 93, Y: 175}, {X: 90, Y: 180},
	}
	assert.Equal(t, want, p.Path(0, paddings, true, true))
}

func TestPolyline_ReversedLinkRunsBackward(t *testing.T) {
	g, levels := placed(t, []box{
		{id: "a", level: 0, x: 0, y: 0, w: 100, h: 50},
		{id: "b", level: 1, x: 0, y: 130, w: 100, h: 50},
	}, [][2]string{{"a", "b"}})
	g.Link(0).Reversed = true
	p := NewPolyline(g, Options{LinkMerge: true})
	paddings := p.Prepare(levels)

	pts := p.Path(0, paddings, true, true)

	require.Len(t, pts, 8)
	assert.Equal(t, geom.Point{X: 50, Y: 130}, pts[0], "starts at the original source")
	// A reversed out-link gets its own attach point on a's bottom edge.
	assert.Equal(t, geom.Point{X: 60, Y: 50}, pts[3])
	assert.Equal(t, geom.Point{X: 63, Y: 55}, pts[4])
	assert.Equal(t, geom.Point{X: 60, Y: 50}, pts[len(pts)-1], "ends on the original target")

	mid := p.Path(0, paddings, false, false)
	assert.Len(t, mid, 4, "no arrowhead away from the original target")
}

func TestPolyline_SplitsCrossingRuns(t *testing.T) {
	nodes := []box{
		{id: "a", level: 0, x: 0, y: 0, w: 100, h: 50},
		{id: "b", level: 0, x: 200, y: 0, w: 100, h: 50},
		{id: "c", level: 1, x: 0, y: 130, w: 100, h: 50},
		{id: "d", level: 1, x: 200, y: 130, w: 100, h: 50},
	}
	links := [][2]string{{"a", "d"}, {"b", "c"}}

	t.Run("merged", func(t *testing.T) {
		g, levels := placed(t, nodes, links)
		paddings := NewPolyline(g, Options{LinkMerge: true}).Prepare(levels)
		assert.Equal(t, 80.0, paddings[0])
		assert.Equal(t, g.Link(0).TurnIndex, g.Link(1).TurnIndex)
		assert.Equal(t, 1, g.Link(0).TurnCount)
	})

	t.Run("split", func(t *testing.T) {
		g, levels := placed(t, nodes, links)
		paddings := NewPolyline(g, Options{}).Prepare(levels)
		assert.Equal(t, 90.0, paddings[0])
		assert.Equal(t, 1, g.Link(0).TurnIndex)
		assert.Equal(t, 2, g.Link(1).TurnIndex)
		assert.Equal(t, 2, g.Link(1).TurnCount)
		assert.InDelta(t, 0.6, g.Link(1).TurnValue, 1e-12)
	})
}

func TestPolyline_SharedEndpointKeepsSlot(t *testing.T) {
	g, levels := placed(t, []box{
		{id: "a", level: 0, x: 0, y: 0, w: 100, h: 50},
		{id: "b", level: 0, x: 200, y: 0, w: 100, h: 50},
		{id: "c", level: 1, x: 0, y: 130, w: 100, h: 50},
		{id: "d", level: 1, x: 200, y: 130, w: 100, h: 50},
	}, [][2]string{{"a", "d"}, {"b", "c"}, {"b", "d"}})

	NewPolyline(g, Options{}).Prepare(levels)

	// b→d crosses neither run and stays in a→d's slot.
	assert.Equal(t, g.Link(0).TurnValue, g.Link(2).TurnValue)
	assert.Equal(t, 2, g.Link(1).TurnIndex)
}

func TestPolyline_OffsetsSpreadIncoming(t *testing.T) {
	g, levels := placed(t, []box{
		{id: "a", level: 0, x: 0, y: 0, w: 100, h: 50},
		{id: "b", level: 0, x: 200, y: 0, w: 100, h: 50},
		{id: "c", level: 1, x: 100, y: 130, w: 100, h: 50},
	}, [][2]string{{"b", "c"}, {"a", "c"}})

	NewPolyline(g, Options{}).Prepare(levels)

	assert.InDelta(t, 40.0, g.Link(1).TargetOffset, 1e-9, "a is left of b")
	assert.InDelta(t, 60.0, g.Link(0).TargetOffset, 1e-9)
}

func TestPolyline_SelfLoop(t *testing.T) {
	g, levels := placed(t, []box{{id: "a", level: 0, x: 100, y: 0, w: 100, h: 50}}, [][2]string{{"a", "a"}})
	p := NewPolyline(g, Options{})
	p.Prepare(levels)

	pts := p.SelfLoopPath(0)

	require.Len(t, pts, 10)
	assert.Equal(t, geom.Point{X: 150, Y: 50}, pts[0])
	assert.Equal(t, geom.Point{X: 76, Y: 62}, pts[2])
	assert.Equal(t, geom.Point{X: 76, Y: -12}, pts[3])
	assert.Equal(t, geom.Point{X: 150, Y: 0}, pts[5])
	assert.Equal(t, geom.Point{X: 150, Y: 0}, pts[9])
}

func TestSelfLoopStaysInNodeGap(t *testing.T) {
	tests := []struct {
		spacing float64
		side    float64
	}{
		{10, 105},
		{24, 98},
		{40, 86},
	}
	for _, tt := range tests {
		g, levels := placed(t, []box{
			{id: "n", level: 0, x: 0, y: 0, w: 110 - tt.spacing, h: 50},
			{id: "a", level: 0, x: 110, y: 0, w: 100, h: 50},
		}, [][2]string{{"a", "a"}})
		opts := Options{NodeSpacing: tt.spacing}
		p := NewPolyline(g, opts)
		p.Prepare(levels)

		assert.Equal(t, tt.side, p.SelfLoopPath(0)[2].X, "polyline, spacing %v", tt.spacing)
		assert.Equal(t, tt.side, NewStraightLine(g, opts).SelfLoopPath(0)[2].X, "straight, spacing %v", tt.spacing)
		assert.Greater(t, tt.side, 110-tt.spacing, "clear of the neighbour")
	}
}

func TestStraightLine_Path(t *testing.T) {
	g, levels := placed(t, []box{
		{id: "a", level: 0, x: 0, y: 0, w: 100, h: 50},
		{id: "b", level: 1, x: 0, y: 130, w: 100, h: 50},
	}, [][2]string{{"a", "b"}})
	s := NewStraightLine(g, Options{})

	paddings := s.Prepare(levels)
	assert.Equal(t, []float64{80, 0}, paddings)

	pts := s.Path(0, paddings, true, true)
	require.Len(t, pts, 7)
	assert.Equal(t, geom.Point{X: 50, Y: 25}, pts[0])
	assert.InDelta(t, 50, pts[1].X, 1e-9)
	assert.InDelta(t, 130, pts[1].Y, 1e-9)
	assert.InDelta(t, 50-5.196152, pts[2].X, 1e-6)
	assert.InDelta(t, 127, pts[2].Y, 1e-9)
	assert.InDelta(t, 50+5.196152, pts[4].X, 1e-6)
	assert.InDelta(t, 127, pts[4].Y, 1e-9)
	assert.Equal(t, geom.Point{X: 50, Y: 155}, pts[6])

	assert.Equal(t, []geom.Point{{X: 50, Y: 25}, {X: 50, Y: 155}}, s.Path(0, paddings, false, true))
}

func TestStraightLine_ReversedArrowAtOriginalTarget(t *testing.T) {
	g, levels := placed(t, []box{
		{id: "a", level: 0, x: 0, y: 0, w: 100, h: 50},
		{id: "b", level: 1, x: 0, y: 130, w: 100, h: 50},
	}, [][2]string{{"a", "b"}})
	g.Link(0).Reversed = true
	s := NewStraightLine(g, Options{})
	paddings := s.Prepare(levels)

	pts := s.Path(0, paddings, true, true)

	require.Len(t, pts, 7)
	assert.Equal(t, geom.Point{X: 50, Y: 155}, pts[0])
	assert.InDelta(t, 50, pts[5].Y, 1e-9, "arrow tip on a's bottom edge")
	assert.Greater(t, pts[4].Y, 50.0, "barbs trail below the tip")
	assert.Equal(t, geom.Point{X: 50, Y: 25}, pts[6])
}

func TestStraightLine_PaddingGrowsWithLinks(t *testing.T) {
	nodes := []box{{id: "r", level: 0, w: 10, h: 10}}
	var links [][2]string
	for i := 0; i < 7; i++ {
		id := string(rune('a' + i))
		nodes = append(nodes, box{id: id, level: 1, x: float64(i) * 20, w: 10, h: 10})
		links = append(links, [2]string{"r", id})
	}
	g, levels := placed(t, nodes, links)

	paddings := NewStraightLine(g, Options{}).Prepare(levels)

	assert.Equal(t, 105.0, paddings[0])
}

func TestStraightLine_SelfLoop(t *testing.T) {
	g, _ := placed(t, []box{{id: "a", level: 0, x: 0, y: 0, w: 100, h: 50}}, [][2]string{{"a", "a"}})

	pts := NewStraightLine(g, Options{}).SelfLoopPath(0)

	assert.Equal(t, geom.Point{X: 50, Y: 50}, pts[0])
	assert.Equal(t, geom.Point{X: 20, Y: 0}, pts[5])
}

func TestArrowhead(t *testing.T) {
	a, b := arrowhead(geom.Point{X: 0, Y: 0}, geom.Point{X: 30, Y: -40})
	assert.InDelta(t, 6, geom.Distance(a, geom.Point{}), 1e-9)
	assert.InDelta(t, 6, geom.Distance(b, geom.Point{}), 1e-9)
	assert.InDelta(t, -2.3569, a.X, 1e-3)
	assert.InDelta(t, -5.5177, a.Y, 1e-3)
	assert.InDelta(t, 10.392305, geom.Distance(a, b), 1e-6, "barbs 60 degrees off the shaft")

	same, _ := arrowhead(geom.Point{X: 1, Y: 1}, geom.Point{X: 1, Y: 1})
	assert.Equal(t, geom.Point{X: 1, Y: 1}, same)
}
