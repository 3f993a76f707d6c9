package ordering

import (
	"cmp"
	"context"
	"slices"

	"github.com/matzehuels/stratum/pkg/dag"
)

// MaxIterations is the index of the last refinement round. Rounds are
// numbered from 0, so a full run performs MaxIterations+1 sweeps.
const MaxIterations = 24

// Orderer arranges the nodes of every level to reduce link crossings. It
// writes the chosen order back with [dag.Graph.SetLevels].
type Orderer interface {
	Order(g *dag.Graph) Result
}

// ContextOrderer is an Orderer that can be cancelled between rounds.
type ContextOrderer interface {
	Orderer
	OrderContext(ctx context.Context, g *dag.Graph) (Result, error)
}

// Result reports crossing counts for diagnostics.
type Result struct {
	// Initial is the crossing count of the depth-first starting order.
	Initial int
	// Final is the crossing count of the order written to the graph.
	Final int
	// History holds the best count after each refinement round. It never
	// increases.
	History []int
}

// Improved reports whether refinement removed any crossing.
func (r Result) Improved() bool { return r.Final < r.Initial }

// WeightedMedian is the median-sweep orderer. The zero value runs
// [MaxIterations] rounds.
type WeightedMedian struct {
	// Passes overrides the last round index when positive.
	Passes int
}

var _ ContextOrderer = WeightedMedian{}

// Order runs [WeightedMedian] with default settings.
func Order(g *dag.Graph) Result {
	return WeightedMedian{}.Order(g)
}

// Order implements [Orderer].
func (o WeightedMedian) Order(g *dag.Graph) Result {
	r, _ := o.OrderContext(context.Background(), g)
	return r
}

// OrderContext implements [ContextOrderer]. When ctx is cancelled the best
// order found so far is written to g and ctx.Err() is returned with it.
func (o WeightedMedian) OrderContext(ctx context.Context, g *dag.Graph) (Result, error) {
	levels := initialOrder(g)
	s := newSweeper(g, levels)
	best := s.total()
	res := Result{Initial: best, Final: best}
	if best == 0 {
		return res, nil
	}

	last := MaxIterations
	if o.Passes > 0 {
		last = o.Passes
	}

	bestLevels := cloneLevels(s.levels)
	var err error
	for round := 0; round <= last && best > 0; round++ {
		if err = ctx.Err(); err != nil {
			break
		}
		s.sweep(round%2 == 0)
		if count := s.transpose(); count < best {
			best = count
			bestLevels = cloneLevels(s.levels)
		}
		res.History = append(res.History, best)
	}

	g.SetLevels(bestLevels)
	res.Final = best
	return res, err
}

// initialOrder groups nodes by level and numbers them in depth-first
// preorder along unit-span links. Levels are scanned top-down and every node
// not yet placed starts a new walk.
func initialOrder(g *dag.Graph) [][]dag.NodeID {
	grouped := g.GroupLevels()
	order := make([][]dag.NodeID, len(grouped))
	for i, row := range grouped {
		order[i] = make([]dag.NodeID, 0, len(row))
	}

	placed := make([]bool, g.NodeCount())
	var stack []dag.NodeID
	for _, row := range grouped {
		for _, root := range row {
			stack = append(stack[:0], root)
			for len(stack) > 0 {
				v := stack[len(stack)-1]
				stack = stack[:len(stack)-1]
				if placed[v] {
					continue
				}
				placed[v] = true
				lv := g.Node(v).Level
				order[lv] = append(order[lv], v)

				out := g.Out(v)
				for k := len(out) - 1; k >= 0; k-- {
					if g.IsUnit(out[k]) {
						stack = append(stack, g.Link(out[k]).Target)
					}
				}
			}
		}
	}
	g.SetLevels(order)
	return order
}

// sweeper holds the working order across refinement rounds. Node Pos always
// mirrors the working order.
type sweeper struct {
	g       *dag.Graph
	levels  [][]dag.NodeID
	ws      *dag.CrossingWorkspace
	medians []float64
	scratch []int
}

func newSweeper(g *dag.Graph, levels [][]dag.NodeID) *sweeper {
	width := 0
	for _, row := range levels {
		width = max(width, len(row))
	}
	return &sweeper{
		g:       g,
		levels:  levels,
		ws:      dag.NewCrossingWorkspace(width),
		medians: make([]float64, g.NodeCount()),
	}
}

func (s *sweeper) total() int {
	total := 0
	for i := 1; i < len(s.levels); i++ {
		total += s.gap(i)
	}
	return total
}

// gap counts crossings between level i-1 and level i.
func (s *sweeper) gap(i int) int {
	return dag.CountLayerCrossingsWith(s.g, s.levels[i-1], s.levels[i], s.ws)
}

// local counts crossings in the gaps touching level i.
func (s *sweeper) local(i int) int {
	n := 0
	if i > 0 {
		n += s.gap(i)
	}
	if i+1 < len(s.levels) {
		n += s.gap(i + 1)
	}
	return n
}

// sweep reorders every level by the median position of its neighbors in the
// previous level of the sweep: parents when sweeping down, children when
// sweeping up.
func (s *sweeper) sweep(down bool) {
	if down {
		for i := range s.levels {
			s.reorder(i, true)
		}
		return
	}
	for i := len(s.levels) - 1; i >= 0; i-- {
		s.reorder(i, false)
	}
}

func (s *sweeper) reorder(i int, useParents bool) {
	row := s.levels[i]
	for _, v := range row {
		neighbors := s.g.Children(v)
		if useParents {
			neighbors = s.g.Parents(v)
		}
		s.scratch = s.scratch[:0]
		for _, n := range neighbors {
			s.scratch = append(s.scratch, s.g.Node(n).Pos)
		}
		slices.Sort(s.scratch)
		s.medians[v] = weightedMedian(s.scratch)
	}
	s.levels[i] = sortLevel(row, s.medians)
	s.place(i)
}

func (s *sweeper) place(i int) {
	for pos, v := range s.levels[i] {
		s.g.Node(v).Pos = pos
	}
}

// transpose tries every adjacent swap in level and position order, keeping a
// swap only when it strictly lowers the total crossing count. It returns the
// resulting total.
func (s *sweeper) transpose() int {
	best := s.total()
	if len(s.levels) == 1 {
		return best
	}
	for i, row := range s.levels {
		for j := 1; j < len(row); j++ {
			before := s.local(i)
			s.swap(row, j)
			after := s.local(i)
			if after < before {
				best += after - before
				continue
			}
			s.swap(row, j)
		}
	}
	return best
}

func (s *sweeper) swap(row []dag.NodeID, j int) {
	row[j-1], row[j] = row[j], row[j-1]
	s.g.Node(row[j-1]).Pos = j - 1
	s.g.Node(row[j]).Pos = j
}

// weightedMedian returns the median of sorted neighbor positions, or -1 when
// there are none. For an even count above two the two middle positions are
// interpolated, weighted toward the side whose neighbors are packed tighter.
func weightedMedian(pos []int) float64 {
	n := len(pos)
	m := n / 2
	switch {
	case n == 0:
		return -1
	case n%2 == 1:
		return float64(pos[m])
	case n == 2:
		return float64(pos[0]+pos[1]) / 2
	}
	left := float64(pos[m-1] - pos[0])
	right := float64(pos[n-1] - pos[m])
	if left+right == 0 {
		return float64(pos[m-1]+pos[m]) / 2
	}
	return (float64(pos[m-1])*right + float64(pos[m])*left) / (left + right)
}

// sortLevel orders row by median. Nodes without a median (-1) keep their
// current index; they are re-inserted in ascending position order after the
// others are sorted.
func sortLevel(row []dag.NodeID, medians []float64) []dag.NodeID {
	sorted := make([]dag.NodeID, 0, len(row))
	var fixed []int
	for pos, v := range row {
		if medians[v] == -1 {
			fixed = append(fixed, pos)
			continue
		}
		sorted = append(sorted, v)
	}
	slices.SortStableFunc(sorted, func(a, b dag.NodeID) int {
		return cmp.Compare(medians[a], medians[b])
	})
	for _, pos := range fixed {
		sorted = slices.Insert(sorted, min(pos, len(sorted)), row[pos])
	}
	return sorted
}

func cloneLevels(levels [][]dag.NodeID) [][]dag.NodeID {
	out := make([][]dag.NodeID, len(levels))
	for i, row := range levels {
		out[i] = slices.Clone(row)
	}
	return out
}
