// Package transform prepares an arena graph for ordering and coordinate
// assignment.
//
// # Overview
//
// Input graphs may be cyclic, disconnected and full of links that skip
// levels. This package turns them into a proper layered graph where:
//
//   - The attached links form a DAG
//   - Every node has a level, the minimum level being 0
//   - Every attached link connects consecutive levels
//
// The [Normalize] function applies the three steps in the required order.
//
// # Cycle Breaking
//
// [BreakCycles] flips links that close directed cycles and flags them
// Reversed. Nothing is removed: [RestoreCycles] flips them back once paths
// have been routed, so output links always keep the caller's orientation.
// Relations the caller marked as cycle-closing are preferred for reversal.
//
// # Layer Assignment
//
// [AssignLayers] finds a backbone by repeatedly stripping degree-1 nodes,
// levels the backbone breadth-first and then hangs the stripped trees off
// it. Compared to a longest-path layering this keeps leaves next to the
// node they attach to instead of dropping them to the bottom row.
//
// # Subdivision
//
// [Subdivide] replaces links that skip levels with chains of virtual nodes:
//
//	Before: app (level 0) → core (level 3)
//	After:  app → virtual0 → virtual1 → core
//
// The long link stays in the arena, detached, with the chain in its
// Children.
//
// # Usage
//
//	res := transform.Normalize(g, 180)
//	// g is now layered; res.Reversed lists the flipped links
//
// For fine-grained control, apply the steps individually:
//
//	transform.BreakCycles(g)
//	transform.AssignLayers(g)
//	transform.Subdivide(g, 180, g.LevelHeights())
package transform
