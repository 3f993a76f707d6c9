package layout

import (
	"context"
	"encoding/json"
	"fmt"
	"math/rand/v2"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matzehuels/stratum/pkg/dag"
	"github.com/matzehuels/stratum/pkg/errors"
	"github.com/matzehuels/stratum/pkg/geom"
	"github.com/matzehuels/stratum/pkg/observability"
	"github.com/matzehuels/stratum/pkg/route"
)

func TestSingle_TwoNodes(t *testing.T) {
	res, err := Single(context.Background(), chain([]string{"a", "b"}, [2]string{"a", "b"}), Config{})
	require.NoError(t, err)

	require.Len(t, res.Nodes, 2)
	a, _ := res.Node("a")
	b, _ := res.Node("b")
	assert.Equal(t, Point{X: 180, Y: 50}, a.Position)
	assert.Equal(t, Point{X: 180, Y: 180}, b.Position)
	assert.Equal(t, 130.0, b.Position.Y-a.Position.Y, "level spacing plus row height")
	assert.Equal(t, Size{Width: 540, Height: 280}, res.Size)

	require.Len(t, res.Links, 1)
	lk := res.Links[0]
	assert.Equal(t, "a", lk.SourceID)
	assert.Equal(t, "b", lk.TargetID)
	require.GreaterOrEqual(t, len(lk.Points), 4)
	assert.Equal(t, Point{X: 270, Y: 100}, lk.Points[0])
	assert.Equal(t, Point{X: 270, Y: 140}, lk.Points[1])
	assert.Equal(t, Point{X: 270, Y: 180}, lk.Points[3])
	assert.True(t, strings.HasPrefix(lk.Path, "M270,100 L270,140 L270,140 L270,180"), lk.Path)
}

func TestSingle_ThreeCycle(t *testing.T) {
	nodes := chain([]string{"a", "b", "c"}, [2]string{"a", "b"}, [2]string{"b", "c"}, [2]string{"c", "a"})

	res, err := Single(context.Background(), nodes, Config{})
	require.NoError(t, err)

	assert.Equal(t, []string{"a", "b", "c"}, ids(res.Nodes))
	require.Len(t, res.Links, 3)

	a, _ := res.Node("a")
	b, _ := res.Node("b")
	c, _ := res.Node("c")
	assert.Less(t, a.Position.Y, b.Position.Y)
	assert.Less(t, b.Position.Y, c.Position.Y)

	back := res.Links[2]
	assert.Equal(t, "c", back.SourceID, "relation keeps its original orientation")
	assert.Equal(t, "a", back.TargetID)
	first, last := back.Points[0], back.Points[len(back.Points)-1]
	assert.Equal(t, c.Position.Y, first.Y, "path starts at the original source")
	assert.Equal(t, a.Position.Y+a.Height, last.Y, "arrow ends at the original target")
}

func TestSingle_SelfLoop(t *testing.T) {
	res, err := Single(context.Background(), chain([]string{"a"}, [2]string{"a", "a"}), Config{})
	require.NoError(t, err)

	require.Len(t, res.Nodes, 1)
	assert.Equal(t, Point{X: 180, Y: 50}, res.Nodes[0].Position)
	assert.Equal(t, Size{Width: 540, Height: 150}, res.Size)

	require.Len(t, res.Links, 1)
	lk := res.Links[0]
	assert.Equal(t, "a", lk.SourceID)
	assert.Equal(t, "a", lk.TargetID)
	assert.Equal(t, Point{X: 270, Y: 100}, lk.Points[0])
	assert.Equal(t, Point{X: 156, Y: 112}, lk.Points[2], "loop runs left of the node")
	assert.True(t, strings.HasPrefix(lk.Path, "M270,100 L270,112 L156,112 L156,38 L270,38 L270,50"), lk.Path)
}

func TestSingle_SelfLoopBesideNeighbor(t *testing.T) {
	for _, spacing := range []float64{10, 24, 40} {
		t.Run(fmt.Sprint(spacing), func(t *testing.T) {
			nodes := chain([]string{"a", "b"}, [2]string{"a", "a"}, [2]string{"b", "b"})
			res, err := Single(context.Background(), nodes, Config{NodeSpacing: spacing})
			require.NoError(t, err)
			require.Len(t, res.Links, 2)

			for _, lk := range res.Links {
				self, _ := res.Node(lk.SourceID)
				side := lk.Points[2].X
				assert.Less(t, side, self.Position.X, "loop runs left of %s", self.ID)
				for _, other := range res.Nodes {
					if other.ID == self.ID {
						continue
					}
					inside := side > other.Position.X && side < other.Position.X+other.Width
					assert.False(t, inside, "loop of %s cuts through %s", self.ID, other.ID)
				}
			}
		})
	}
}

func TestSingle_Transverse(t *testing.T) {
	res, err := Single(context.Background(), chain([]string{"a", "b"}, [2]string{"a", "b"}), Config{Transverse: true})
	require.NoError(t, err)

	a, _ := res.Node("a")
	b, _ := res.Node("b")
	assert.Equal(t, 180.0, a.Width)
	assert.Equal(t, 50.0, a.Height)
	assert.Equal(t, Point{X: 180, Y: 50}, a.Position)
	assert.Equal(t, Point{X: 440, Y: 50}, b.Position)
	assert.Equal(t, Size{Width: 800, Height: 150}, res.Size)

	lk := res.Links[0]
	assert.Equal(t, a.Position.X+a.Width, lk.Points[0].X, "link leaves the right edge")
	assert.Equal(t, geom.PathString(lk.Points, false), lk.Path)
}

func TestSingle_StraightLinks(t *testing.T) {
	cfg := Config{LinkStrategy: route.KindStraight}
	res, err := Single(context.Background(), chain([]string{"a", "b"}, [2]string{"a", "b"}), cfg)
	require.NoError(t, err)

	lk := res.Links[0]
	assert.Equal(t, Point{X: 270, Y: 75}, lk.Points[0], "starts at the source center")
	assert.Equal(t, Point{X: 270, Y: 205}, lk.Points[len(lk.Points)-1], "ends at the target center")
}

func TestSingle_CustomStrategy(t *testing.T) {
	var calls int
	cfg := Config{
		LinkStrategy: route.KindCustom,
		CustomStrategy: func(g *dag.Graph, opts route.Options) route.Strategy {
			calls++
			return route.NewStraightLine(g, opts)
		},
	}
	_, err := Single(context.Background(), chain([]string{"a", "b"}, [2]string{"a", "b"}), cfg)
	require.NoError(t, err)
	assert.Equal(t, 1, calls)
}

func TestSingle_NoVirtualNodesInOutput(t *testing.T) {
	nodes := chain([]string{"a", "b", "c", "d"},
		[2]string{"a", "b"}, [2]string{"b", "c"}, [2]string{"c", "d"}, [2]string{"a", "d"})

	res, err := Single(context.Background(), nodes, Config{})
	require.NoError(t, err)

	assert.Equal(t, []string{"a", "b", "c", "d"}, ids(res.Nodes))
	require.Len(t, res.Links, 4)
	for _, lk := range res.Links {
		assert.NotContains(t, lk.SourceID, "virtual")
		assert.NotContains(t, lk.TargetID, "virtual")
	}

	long := res.Links[1]
	require.Equal(t, "a-d", long.SourceID+"-"+long.TargetID)
	require.Len(t, long.Points, 16, "three segments, arrow on the last")
	a, _ := res.Node("a")
	d, _ := res.Node("d")
	assert.Equal(t, a.Position.Y+a.Height, long.Points[0].Y)
	assert.Equal(t, d.Position.Y, long.Points[11].Y, "stitched path reaches the target")
}

func TestMulti_PacksComponents(t *testing.T) {
	nodes := chain([]string{"a", "b", "c", "d"}, [2]string{"a", "b"}, [2]string{"c", "d"})

	res, err := Multi(context.Background(), nodes, Config{})
	require.NoError(t, err)

	assert.Equal(t, []string{"a", "b", "c", "d"}, ids(res.Nodes))
	assert.Equal(t, Size{Width: 180 + 180 + 200 + 180 + 180, Height: 280}, res.Size)

	a, _ := res.Node("a")
	c, _ := res.Node("c")
	assert.Equal(t, Point{X: 180, Y: 50}, a.Position)
	assert.Equal(t, Point{X: 560, Y: 50}, c.Position)
}

func TestMulti_CentersShorterComponents(t *testing.T) {
	nodes := chain([]string{"a", "b", "solo"}, [2]string{"a", "b"})

	res, err := Multi(context.Background(), nodes, Config{ComponentPadding: 100})
	require.NoError(t, err)

	solo, _ := res.Node("solo")
	assert.Equal(t, 180.0+180+100, solo.Position.X)
	assert.Equal(t, (280.0-50)/2, solo.Position.Y)
}

func TestMulti_Transverse(t *testing.T) {
	nodes := chain([]string{"a", "b", "c", "d"}, [2]string{"a", "b"}, [2]string{"c", "d"})

	res, err := Multi(context.Background(), nodes, Config{Transverse: true})
	require.NoError(t, err)

	a, _ := res.Node("a")
	c, _ := res.Node("c")
	assert.Equal(t, a.Position.X, c.Position.X, "components stack vertically")
	assert.Equal(t, 250.0, c.Position.Y-a.Position.Y, "node height plus padding")
	assert.Equal(t, 800.0, res.Size.Width)
	assert.Equal(t, 50.0+50+200+50+50, res.Size.Height)
}

func TestMulti_SingleComponentMatchesSingle(t *testing.T) {
	nodes := chain([]string{"a", "b", "c"}, [2]string{"a", "b"}, [2]string{"a", "c"})

	multi, err := Multi(context.Background(), nodes, Config{})
	require.NoError(t, err)
	single, err := Single(context.Background(), nodes, Config{})
	require.NoError(t, err)
	assert.Equal(t, single, multi)
}

func TestMulti_Inconsistent(t *testing.T) {
	nodes := []InputNode{
		{ID: "b"},
		{ID: "a", DownRelations: []InputRelation{{SourceID: "a", TargetID: "b"}}},
	}
	_, err := Multi(context.Background(), nodes, Config{})
	assert.True(t, errors.Is(err, errors.ErrCodeGraphInconsistent))
}

func TestLayout_EmptyInput(t *testing.T) {
	for name, fn := range map[string]func(context.Context, []InputNode, Config) (Result, error){
		"single": Single,
		"multi":  Multi,
	} {
		t.Run(name, func(t *testing.T) {
			res, err := fn(context.Background(), nil, Config{})
			require.NoError(t, err)
			assert.True(t, res.IsEmpty())
			assert.Empty(t, res.Links)
			assert.Equal(t, Size{}, res.Size)

			data, err := json.Marshal(res)
			require.NoError(t, err)
			assert.JSONEq(t, `{"nodes":[],"links":[],"size":{"width":0,"height":0}}`, string(data))
		})
	}
}

func TestLayout_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := Multi(ctx, chain([]string{"a", "b", "c"}, [2]string{"a", "b"}), Config{})
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrCodeCanceled))
}

func TestLayout_Deterministic(t *testing.T) {
	rng := rand.New(rand.NewPCG(7, 11))
	names := make([]string, 30)
	for i := range names {
		names[i] = fmt.Sprintf("n%02d", i)
	}
	var edges [][2]string
	for range 60 {
		edges = append(edges, [2]string{names[rng.IntN(len(names))], names[rng.IntN(len(names))]})
	}
	nodes := chain(names, edges...)

	for _, fn := range []func(context.Context, []InputNode, Config) (Result, error){Single, Multi} {
		first, err := fn(context.Background(), nodes, Config{})
		require.NoError(t, err)
		for range 3 {
			again, err := fn(context.Background(), nodes, Config{})
			require.NoError(t, err)
			assert.Equal(t, first, again)
		}
	}
}

type recordingHooks struct {
	observability.NoopLayoutHooks
	mu       sync.Mutex
	events   []string
	reversed int
}

func (h *recordingHooks) OnLayoutStart(_ context.Context, mode string, _ int) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.events = append(h.events, "start:"+mode)
}

func (h *recordingHooks) OnLayoutComplete(_ context.Context, mode string, _ int, _ time.Duration, _ error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.events = append(h.events, "complete:"+mode)
}

func (h *recordingHooks) OnCyclesBroken(_ context.Context, reversed int) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.reversed += reversed
}

func TestLayout_Hooks(t *testing.T) {
	hooks := &recordingHooks{}
	observability.SetLayoutHooks(hooks)
	t.Cleanup(observability.Reset)

	nodes := chain([]string{"a", "b", "c"}, [2]string{"a", "b"}, [2]string{"b", "c"}, [2]string{"c", "a"})
	_, err := Single(context.Background(), nodes, Config{})
	require.NoError(t, err)

	assert.Equal(t, []string{"start:single", "complete:single"}, hooks.events)
	assert.Equal(t, 1, hooks.reversed)
}
