// Package position assigns horizontal coordinates to the nodes of an ordered
// layered graph using the Brandes–Köpf method.
//
// Four passes are computed, one per combination of vertical direction (blocks
// grown from parents or from children) and horizontal bias (compacted toward
// the left or toward the right). Each pass groups nodes into vertical blocks
// around median neighbors and packs the blocks as tightly as node widths and
// the configured spacing allow. The narrowest pass becomes the reference the
// other three are aligned to, and every node takes the mean of its two middle
// candidate coordinates.
//
// Segments that cross a link between two virtual nodes are excluded from
// alignment, so long links stay as straight as possible.
package position
