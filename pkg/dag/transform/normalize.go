package transform

import "github.com/matzehuels/stratum/pkg/dag"

// Result summarizes what [Normalize] changed.
type Result struct {
	// Reversed lists the links flipped to break cycles.
	Reversed []dag.LinkID
	// VirtualNodes is the number of virtual nodes inserted.
	VirtualNodes int
	// LevelHeights is the tallest node height per level.
	LevelHeights []float64
}

// Normalize runs cycle breaking, layering and subdivision in that order,
// leaving g with every attached link spanning exactly one level.
func Normalize(g *dag.Graph, virtualWidth float64) Result {
	var r Result
	r.Reversed = BreakCycles(g)
	AssignLayers(g)
	r.LevelHeights = g.LevelHeights()
	r.VirtualNodes = Subdivide(g, virtualWidth, r.LevelHeights)
	return r
}
