package position

import (
	"math"
	"slices"

	"github.com/matzehuels/stratum/pkg/dag"
	"github.com/matzehuels/stratum/pkg/errors"
)

// Alignment identifies one of the four Brandes–Köpf passes: the vertical
// direction in which blocks are grown and the side toward which they are
// compacted.
type Alignment int

const (
	UpLeft Alignment = iota
	UpRight
	DownLeft
	DownRight
)

var alignments = [...]Alignment{UpLeft, UpRight, DownLeft, DownRight}

func (a Alignment) String() string {
	switch a {
	case UpLeft:
		return "ul"
	case UpRight:
		return "ur"
	case DownLeft:
		return "dl"
	case DownRight:
		return "dr"
	}
	return "unknown"
}

func (a Alignment) up() bool    { return a == UpLeft || a == UpRight }
func (a Alignment) right() bool { return a == UpRight || a == DownRight }

// Result describes the outcome of [Assign].
type Result struct {
	// Narrowest is the pass the others were aligned to.
	Narrowest Alignment
	// Width is the extent of the final placement, node widths included.
	Width float64
}

// Assign computes horizontal coordinates for every node of an ordered,
// layered graph. Node X is set to the left edge; the leftmost node sits at 0.
// Neighbors within a level are kept at least nodeSpacing apart, edge to edge.
//
// Assign fails with [errors.ErrCodeInvariant] if compaction meets two
// adjacent blocks with no recorded spacing, which indicates a corrupted
// level order.
func Assign(g *dag.Graph, nodeSpacing float64) (Result, error) {
	levels := g.Levels()
	n := g.NodeCount()
	if n == 0 {
		return Result{}, nil
	}

	conflicts := findTypeConflicts(g, levels)

	var xs [len(alignments)][]float64
	for i, a := range alignments {
		p := newPass(g, levels, a)
		p.alignVertically(conflicts)
		x, err := p.compact(nodeSpacing)
		if err != nil {
			return Result{}, err
		}
		if a.right() {
			for v := range x {
				x[v] = -x[v]
			}
		}
		xs[i] = x
	}

	narrowest := narrowestPass(g, xs[:])
	alignTo(xs[:], narrowest)

	var minLeft float64
	candidates := make([]float64, len(alignments))
	for v := 0; v < n; v++ {
		for i := range xs {
			candidates[i] = xs[i][v]
		}
		slices.Sort(candidates)
		node := g.Node(dag.NodeID(v))
		node.X = (candidates[1]+candidates[2])/2 - node.Width/2
		if v == 0 || node.X < minLeft {
			minLeft = node.X
		}
	}

	var right float64
	for v := 0; v < n; v++ {
		node := g.Node(dag.NodeID(v))
		node.X -= minLeft
		right = max(right, node.X+node.Width)
	}
	return Result{Narrowest: alignments[narrowest], Width: right}, nil
}

// pairKey identifies an unordered pair of nodes.
type pairKey struct{ a, b dag.NodeID }

func pair(a, b dag.NodeID) pairKey {
	if a > b {
		a, b = b, a
	}
	return pairKey{a, b}
}

// findTypeConflicts marks inner segments that cross a segment between two
// virtual nodes, in the graph's own orientation. Such segments are never used
// for alignment, which keeps long links straight.
func findTypeConflicts(g *dag.Graph, levels [][]dag.NodeID) map[pairKey]bool {
	conflicts := make(map[pairKey]bool)
	for i := 1; i < len(levels); i++ {
		row := levels[i]
		k0, scan := 0, 0
		for j, v := range row {
			k1 := len(levels[i-1])
			upper, hasUpper := virtualParent(g, v)
			if hasUpper {
				k1 = g.Node(upper).Pos
			}
			if !hasUpper && j != len(row)-1 {
				continue
			}
			for _, cur := range row[scan : j+1] {
				curVirtual := g.Node(cur).IsVirtual()
				for _, u := range g.Parents(cur) {
					pos := g.Node(u).Pos
					if (pos < k0 || k1 < pos) && !(curVirtual && g.Node(u).IsVirtual()) {
						conflicts[pair(u, cur)] = true
					}
				}
			}
			scan = j + 1
			k0 = k1
		}
	}
	return conflicts
}

func virtualParent(g *dag.Graph, v dag.NodeID) (dag.NodeID, bool) {
	if !g.Node(v).IsVirtual() {
		return dag.None, false
	}
	for _, u := range g.Parents(v) {
		if g.Node(u).IsVirtual() {
			return u, true
		}
	}
	return dag.None, false
}

// pass holds the state of one alignment direction. rows and pos are the
// level order seen from that direction: rows run bottom-up for down passes
// and positions are mirrored for right passes.
type pass struct {
	g     *dag.Graph
	dir   Alignment
	rows  [][]dag.NodeID
	pos   []int
	root  []dag.NodeID
	align []dag.NodeID
}

func newPass(g *dag.Graph, levels [][]dag.NodeID, dir Alignment) *pass {
	n := g.NodeCount()
	p := &pass{
		g:     g,
		dir:   dir,
		rows:  make([][]dag.NodeID, len(levels)),
		pos:   make([]int, n),
		root:  make([]dag.NodeID, n),
		align: make([]dag.NodeID, n),
	}
	for i, row := range levels {
		r := slices.Clone(row)
		if dir.right() {
			slices.Reverse(r)
		}
		if dir.up() {
			p.rows[i] = r
		} else {
			p.rows[len(levels)-1-i] = r
		}
		for j, v := range r {
			p.pos[v] = j
		}
	}
	for v := range p.root {
		p.root[v] = dag.NodeID(v)
		p.align[v] = dag.NodeID(v)
	}
	return p
}

// neighbors returns the unit-span neighbors in the previously aligned level,
// sorted by their position in this pass.
func (p *pass) neighbors(v dag.NodeID) []dag.NodeID {
	var ns []dag.NodeID
	if p.dir.up() {
		ns = p.g.Parents(v)
	} else {
		ns = p.g.Children(v)
	}
	slices.SortFunc(ns, func(a, b dag.NodeID) int { return p.pos[a] - p.pos[b] })
	return ns
}

// alignVertically groups nodes into blocks by linking each node to its
// median neighbor (or one of the two medians) in the previous level, unless
// that would cross an earlier alignment or a type conflict.
func (p *pass) alignVertically(conflicts map[pairKey]bool) {
	for _, row := range p.rows {
		r := -1
		for _, v := range row {
			ns := p.neighbors(v)
			if len(ns) == 0 {
				continue
			}
			lo, hi := (len(ns)-1)/2, len(ns)/2
			for z := lo; z <= hi; z++ {
				w := ns[z]
				if p.align[v] == v && r < p.pos[w] && !conflicts[pair(v, w)] {
					p.align[w] = v
					p.root[v] = p.root[w]
					p.align[v] = p.root[v]
					r = p.pos[w]
				}
			}
		}
	}
}

// compact places blocks as far toward the pass's left as spacing allows and
// returns block-center coordinates indexed by node.
func (p *pass) compact(nodeSpacing float64) ([]float64, error) {
	n := p.g.NodeCount()
	spacing := make(map[pairKey]float64)
	for _, row := range p.rows {
		for j := 1; j < len(row); j++ {
			u, v := row[j-1], row[j]
			key := pair(p.root[u], p.root[v])
			need := p.g.Node(v).Width/2 + nodeSpacing + p.g.Node(u).Width/2
			spacing[key] = max(spacing[key], need)
		}
	}

	c := &compactor{
		pass:    p,
		spacing: spacing,
		sink:    make([]dag.NodeID, n),
		shift:   make([]float64, n),
		x:       make([]float64, n),
		placed:  make([]bool, n),
	}
	for v := 0; v < n; v++ {
		c.sink[v] = dag.NodeID(v)
		c.shift[v] = math.Inf(1)
	}

	for _, row := range p.rows {
		for _, v := range row {
			if p.root[v] == v {
				if err := c.placeBlock(v); err != nil {
					return nil, err
				}
			}
		}
	}

	x := make([]float64, n)
	for v := range x {
		r := p.root[v]
		x[v] = c.x[r]
		if s := c.shift[c.sink[r]]; !math.IsInf(s, 1) {
			x[v] += s
		}
	}
	return x, nil
}

type compactor struct {
	*pass
	spacing map[pairKey]float64
	sink    []dag.NodeID
	shift   []float64
	x       []float64
	placed  []bool
}

// placeBlock positions the block rooted at v after every block to its left.
// Blocks still to be placed are handled on an explicit stack.
func (c *compactor) placeBlock(v dag.NodeID) error {
	if c.placed[v] {
		return nil
	}
	type frame struct{ root, w dag.NodeID }

	c.placed[v] = true
	stack := []frame{{root: v, w: v}}
	for len(stack) > 0 {
		f := stack[len(stack)-1]
		if j := c.pos[f.w]; j > 0 {
			level := c.g.Node(f.w).Level
			u := c.root[c.rowOf(level)[j-1]]
			if !c.placed[u] {
				c.placed[u] = true
				stack = append(stack, frame{root: u, w: u})
				continue
			}
			if err := c.follow(f.root, u); err != nil {
				return err
			}
		}
		next := c.align[f.w]
		if next == f.root {
			stack = stack[:len(stack)-1]
			continue
		}
		stack[len(stack)-1].w = next
	}
	return nil
}

// follow places block v to the right of its left neighbor block u.
func (c *compactor) follow(v, u dag.NodeID) error {
	if c.sink[v] == v {
		c.sink[v] = c.sink[u]
	}
	space, ok := c.spacing[pair(u, c.root[v])]
	if !ok {
		return errors.New(errors.ErrCodeInvariant,
			"no spacing recorded between blocks %s and %s", c.g.Node(u).ID, c.g.Node(v).ID)
	}
	if c.sink[v] != c.sink[u] {
		c.shift[c.sink[u]] = min(c.shift[c.sink[u]], c.x[v]-c.x[u]-space)
		return nil
	}
	c.x[v] = max(c.x[v], c.x[u]+space)
	return nil
}

func (p *pass) rowOf(level int) []dag.NodeID {
	if p.dir.up() {
		return p.rows[level]
	}
	return p.rows[len(p.rows)-1-level]
}

// narrowestPass returns the index of the pass with the smallest extent,
// node widths included. Ties go to the earlier pass.
func narrowestPass(g *dag.Graph, xs [][]float64) int {
	best, bestWidth := 0, math.Inf(1)
	for i, x := range xs {
		lo, hi := math.Inf(1), math.Inf(-1)
		for v, c := range x {
			half := g.Node(dag.NodeID(v)).Width / 2
			lo = min(lo, c-half)
			hi = max(hi, c+half)
		}
		if hi-lo < bestWidth {
			best, bestWidth = i, hi-lo
		}
	}
	return best
}

// alignTo shifts every other pass so that left passes share the narrowest
// pass's minimum and right passes share its maximum.
func alignTo(xs [][]float64, narrowest int) {
	minAlign, maxAlign := slices.Min(xs[narrowest]), slices.Max(xs[narrowest])
	for i, x := range xs {
		if i == narrowest {
			continue
		}
		delta := minAlign - slices.Min(x)
		if alignments[i].right() {
			delta = maxAlign - slices.Max(x)
		}
		for v := range x {
			x[v] += delta
		}
	}
}
