// Package ordering decides the left-to-right arrangement of nodes within each
// level of a layered graph.
//
// # Algorithm
//
// [WeightedMedian] follows the classic median heuristic for layered drawings:
//
//  1. Number each level in depth-first preorder along unit-span links, which
//     lays out tree-shaped parts without any crossing.
//  2. If that order already has no crossing, stop.
//  3. Otherwise run rounds 0 through [MaxIterations]. Even rounds sweep
//     top-down and sort each level by the weighted median of its parents'
//     positions; odd rounds sweep bottom-up using children. Nodes without
//     such neighbors keep their index.
//  4. After each sweep, try swapping every adjacent pair and keep a swap only
//     when it strictly lowers the total crossing count.
//  5. Remember the best order seen; it is what ends up in the graph.
//
// The working order carries over from round to round even when a round does
// not beat the best, so later sweeps can still escape a plateau.
//
// # Usage
//
//	res := ordering.Order(g)
//	fmt.Println(res.Initial, "->", res.Final)
//	for _, row := range g.Levels() { ... }
//
// Crossings are counted with [dag.CountLayerCrossings]; transposition
// recounts only the two gaps touching the swapped level.
package ordering
