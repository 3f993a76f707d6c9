// Package layout turns caller nodes and relations into a layered drawing:
// every node gets a position and every relation a routed path.
//
// # Pipeline
//
// An [Engine] lays out one graph in fixed stages over a [dag.Graph] arena:
//
//  1. [Preprocess] deduplicates nodes and relations and resolves sizes
//  2. cycle breaking reverses links until the graph is acyclic
//  3. layering assigns every node a level
//  4. subdivision replaces long links with chains of virtual nodes
//  5. ordering reduces crossings between adjacent levels
//  6. coordinate assignment places nodes horizontally (Brandes-Köpf)
//  7. routing computes turn slots, level gaps and link paths
//
// [Engine.Output] then positions levels vertically, stitches chain paths
// back together, restores reversed links and drops virtual nodes.
//
// # Entry points
//
// [Single] lays out the input as one graph. [Multi] first splits it with
// [SeparateComponents], lays out components concurrently and packs them side
// by side:
//
//	res, err := layout.Multi(ctx, nodes, layout.Config{LinkStrategy: route.KindStraight})
//	if err != nil {
//	    return err
//	}
//	for _, n := range res.Nodes {
//	    fmt.Println(n.ID, n.Position)
//	}
//
// # Orientation
//
// With Config.Transverse levels run left to right. The engine always works
// top to bottom; node sizes are swapped on the way in and coordinates on the
// way out.
//
// # Errors
//
// Cycles are never an error: they are logged at warn level and reported to
// [observability.LayoutHooks]. Inconsistent component membership fails with
// [errors.ErrCodeGraphInconsistent] and a corrupted ordering with
// [errors.ErrCodeInvariant].
//
// [dag.Graph]: github.com/matzehuels/stratum/pkg/dag
// [observability.LayoutHooks]: github.com/matzehuels/stratum/pkg/observability
// [errors.ErrCodeGraphInconsistent]: github.com/matzehuels/stratum/pkg/errors
// [errors.ErrCodeInvariant]: github.com/matzehuels/stratum/pkg/errors
package layout
