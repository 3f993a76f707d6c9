package graph

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/matzehuels/stratum/pkg/errors"
	"github.com/matzehuels/stratum/pkg/layout"
)

// =============================================================================
// Graph - Layout Input
// =============================================================================

// Graph is the serialized layout input.
type Graph struct {
	Nodes []layout.InputNode `json:"nodes,omitempty"`
	Edges []Edge             `json:"edges,omitempty"`
}

// Edge is a relation in the compact edge-list form.
type Edge struct {
	From  string         `json:"from"`
	To    string         `json:"to"`
	Cycle bool           `json:"cycle,omitempty"`
	Info  map[string]any `json:"info,omitempty"`
}

// Relation converts e to a layout relation.
func (e Edge) Relation() layout.InputRelation {
	return layout.InputRelation{SourceID: e.From, TargetID: e.To, IsCycleRelation: e.Cycle, Info: e.Info}
}

// Input validates g and returns layout input. Each edge is listed on both
// endpoints, so component separation sees it from either side. An edge
// endpoint that is not declared as a node is created, in order of first
// mention.
func (g Graph) Input() ([]layout.InputNode, error) {
	nodes := make([]layout.InputNode, 0, len(g.Nodes))
	index := make(map[string]int, len(g.Nodes))
	for i, n := range g.Nodes {
		if err := errors.ValidateNodeID(n.ID); err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidNodeID, err, "node %d", i)
		}
		if err := errors.ValidateFiniteSize(n.ID, n.Width, n.Height); err != nil {
			return nil, err
		}
		if _, seen := index[n.ID]; !seen {
			index[n.ID] = len(nodes)
		}
		nodes = append(nodes, n)
	}

	for i, e := range g.Edges {
		for _, id := range []string{e.From, e.To} {
			if err := errors.ValidateNodeID(id); err != nil {
				return nil, errors.Wrap(errors.ErrCodeInvalidNodeID, err, "edge %d", i)
			}
			if _, seen := index[id]; !seen {
				index[id] = len(nodes)
				nodes = append(nodes, layout.InputNode{ID: id})
			}
		}
		r := e.Relation()
		src := &nodes[index[e.From]]
		src.DownRelations = append(src.DownRelations, r)
		if e.From != e.To {
			dst := &nodes[index[e.To]]
			dst.UpRelations = append(dst.UpRelations, r)
		}
	}
	return nodes, nil
}

// FromInput converts layout input to the compact form: nodes without
// relation lists plus one edge per distinct relation, in discovery order.
func FromInput(nodes []layout.InputNode) Graph {
	out := Graph{Nodes: make([]layout.InputNode, len(nodes))}
	seen := make(map[[2]string]bool)
	for i, n := range nodes {
		rels := append(append([]layout.InputRelation(nil), n.DownRelations...), n.UpRelations...)
		n.DownRelations, n.UpRelations = nil, nil
		out.Nodes[i] = n
		for _, r := range rels {
			key := [2]string{r.SourceID, r.TargetID}
			if seen[key] {
				continue
			}
			seen[key] = true
			out.Edges = append(out.Edges, Edge{From: r.SourceID, To: r.TargetID, Cycle: r.IsCycleRelation, Info: r.Info})
		}
	}
	return out
}

// =============================================================================
// Graph Serialization API
// =============================================================================

// MarshalGraph encodes g as compact JSON. Info maps encode with sorted keys,
// so equal graphs produce equal bytes.
func MarshalGraph(g Graph) ([]byte, error) {
	return json.Marshal(g)
}

// UnmarshalGraph decodes JSON bytes into a Graph.
func UnmarshalGraph(data []byte) (Graph, error) {
	return ReadGraph(bytes.NewReader(data))
}

// ReadGraph decodes a JSON graph from r. Unknown fields are rejected.
func ReadGraph(r io.Reader) (Graph, error) {
	var g Graph
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&g); err != nil {
		return Graph{}, errors.Wrap(errors.ErrCodeInvalidFormat, err, "decode graph")
	}
	if len(g.Nodes) == 0 && len(g.Edges) == 0 {
		return Graph{}, errors.New(errors.ErrCodeInvalidInput, "graph has no nodes or edges")
	}
	return g, nil
}

// ReadGraphFile reads a JSON graph file.
func ReadGraphFile(path string) (Graph, error) {
	f, err := os.Open(path)
	if os.IsNotExist(err) {
		return Graph{}, errors.Wrap(errors.ErrCodeFileNotFound, err, "open %s", path)
	}
	if err != nil {
		return Graph{}, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	return ReadGraph(f)
}

// WriteGraph writes g as indented JSON.
func WriteGraph(g Graph, w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(g); err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	return nil
}

// WriteGraphFile writes g to path with 0644 permissions.
func WriteGraphFile(g Graph, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := WriteGraph(g, f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
