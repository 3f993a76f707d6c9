// Package dag provides the arena graph shared by every stage of the layered
// layout engine.
//
// # Overview
//
// A [Graph] stores nodes and links in contiguous slices and refers to them by
// integer index ([NodeID], [LinkID]). There are no pointers between nodes and
// links, so a link can be reversed or detached by rewriting a few indices, and
// an entire layout run can be discarded by dropping one value.
//
// Each stage annotates the arena in place:
//
//   - cycle breaking flips links and sets [Link.Reversed]
//   - layering writes [Node.Level]
//   - subdivision adds [NodeKindVirtual] nodes and chain segments
//   - ordering writes [Node.Pos] and the level grouping
//   - coordinate assignment writes [Node.X]
//   - routing writes offsets, turn slots and [Link.Path]
//
// # Basic Usage
//
//	g := dag.New(2)
//	a, _ := g.AddNode(dag.Node{ID: "a", Width: 100, Height: 50})
//	b, _ := g.AddNode(dag.Node{ID: "b", Width: 100, Height: 50})
//	g.AddLink(dag.Link{Source: a, Target: b, Origin: 0})
//
// Self loops are accepted by [Graph.AddLink] but kept apart from adjacency;
// see [Graph.SelfLoops].
//
// # Edge Crossings
//
// [CountCrossings] and [CountLayerCrossings] use a Fenwick tree (binary
// indexed tree) to count inversions in O(E log V) time. The ordering stage
// calls them after every candidate swap, reusing a [CrossingWorkspace].
//
// # Concurrency
//
// Graph instances are not safe for concurrent use. Distinct graphs share no
// state and can be processed in parallel.
//
// # Related Packages
//
// The [transform] subpackage implements cycle breaking, layering and
// subdivision. [ordering] and [position] implement the ordering and
// coordinate stages.
//
// [transform]: github.com/matzehuels/stratum/pkg/dag/transform
// [ordering]: github.com/matzehuels/stratum/pkg/dag/ordering
// [position]: github.com/matzehuels/stratum/pkg/dag/position
package dag
