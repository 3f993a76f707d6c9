// Package route computes link geometry once nodes have their final
// coordinates.
//
// A [Strategy] is prepared once per layout with the ordered levels; it
// decides where links attach to nodes and how much vertical room each gap
// between levels needs. The layout engine then asks it for the points of
// every unit-span link and self loop and stitches chain segments together.
//
// Built-in strategies:
//
//   - [Polyline] routes orthogonally through turning slots, keeping parallel
//     runs apart. With link merging disabled, runs that would cross inside
//     one slot are pushed to a slot of their own.
//   - [StraightLine] connects node centers and trims the arrow end at the
//     node's border.
//
// A custom strategy is plugged in through [Options.Custom] and selected with
// [KindCustom].
package route
