package layout

import (
	"slices"
	"strings"
)

// Prepared is deduplicated input ready for an [Engine].
type Prepared struct {
	// Nodes are unique by ID and key, sorted by ID, with width and height
	// resolved (and swapped in transverse mode).
	Nodes []InputNode
	// Links are unique by key, sorted by "source-target", self loops
	// excluded.
	Links []InputRelation
	// SelfLoops are unique by key, in discovery order.
	SelfLoops []InputRelation
	// Dropped counts relations naming an unknown node.
	Dropped int
}

// Preprocess deduplicates nodes and relations. The first occurrence of a node
// ID or key wins. Relations are collected from every node's DownRelations and
// then UpRelations; a relation naming a node that is not in the input is
// dropped.
func Preprocess(nodes []InputNode, cfg Config) Prepared {
	cfg = cfg.WithDefaults()

	var p Prepared
	byID := make(map[string]bool, len(nodes))
	keys := make(map[string]bool, len(nodes))
	for _, n := range nodes {
		if n.ID == "" || byID[n.ID] {
			continue
		}
		key := cfg.NodeKey(n)
		if keys[key] {
			continue
		}
		byID[n.ID] = true
		keys[key] = true

		n.Width = cmpOr(n.Width, cfg.DefaultNodeWidth)
		n.Height = cmpOr(n.Height, cfg.DefaultNodeHeight)
		if cfg.Transverse {
			n.Width, n.Height = n.Height, n.Width
		}
		p.Nodes = append(p.Nodes, n)
	}

	seen := make(map[string]bool)
	for _, n := range nodes {
		if n.ID == "" {
			continue
		}
		for _, rels := range [][]InputRelation{n.DownRelations, n.UpRelations} {
			for _, r := range rels {
				if !byID[r.SourceID] || !byID[r.TargetID] {
					cfg.Logger.Debug("dropped relation", "source", r.SourceID, "target", r.TargetID)
					p.Dropped++
					continue
				}
				key := cfg.LinkKey(r)
				if seen[key] {
					continue
				}
				seen[key] = true
				if r.SourceID == r.TargetID {
					p.SelfLoops = append(p.SelfLoops, r)
				} else {
					p.Links = append(p.Links, r)
				}
			}
		}
	}

	slices.SortStableFunc(p.Nodes, func(a, b InputNode) int {
		return strings.Compare(a.ID, b.ID)
	})
	slices.SortStableFunc(p.Links, func(a, b InputRelation) int {
		return strings.Compare(defaultLinkKey(a), defaultLinkKey(b))
	})
	return p
}

func cmpOr(v, def float64) float64 {
	if v > 0 {
		return v
	}
	return def
}
