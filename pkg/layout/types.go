package layout

import "github.com/matzehuels/stratum/pkg/geom"

// Point is a position in output space.
type Point = geom.Point

// InputNode is a caller node. UpRelations lists relations to parents and
// DownRelations relations to children; either side may list a relation, the
// preprocessor collects both. A zero Width or Height selects the configured
// default.
type InputNode struct {
	ID            string          `json:"id"`
	UpRelations   []InputRelation `json:"up,omitempty"`
	DownRelations []InputRelation `json:"down,omitempty"`
	Width         float64         `json:"width,omitempty"`
	Height        float64         `json:"height,omitempty"`
	Info          map[string]any  `json:"info,omitempty"`
}

// InputRelation is a directed relation from SourceID to TargetID. A relation
// with SourceID == TargetID is a self loop. IsCycleRelation marks a relation
// the caller knows closes a cycle; it is preferred when a link has to be
// reversed.
type InputRelation struct {
	SourceID        string         `json:"source"`
	TargetID        string         `json:"target"`
	IsCycleRelation bool           `json:"cycle,omitempty"`
	Info            map[string]any `json:"info,omitempty"`
}

// OutputNode is a placed node. Position is the top-left corner.
type OutputNode struct {
	ID       string         `json:"id"`
	Position Point          `json:"position"`
	Width    float64        `json:"width"`
	Height   float64        `json:"height"`
	Info     map[string]any `json:"info,omitempty"`
}

// OutputRelation is a routed relation in its original orientation. Path is
// the SVG path data for Points.
type OutputRelation struct {
	SourceID string         `json:"source"`
	TargetID string         `json:"target"`
	Path     string         `json:"path"`
	Points   []Point        `json:"points"`
	Info     map[string]any `json:"info,omitempty"`
}

// Size is the extent of a layout, margins included.
type Size struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Result is a complete layout.
type Result struct {
	Nodes []OutputNode     `json:"nodes"`
	Links []OutputRelation `json:"links"`
	Size  Size             `json:"size"`
}

// emptyResult has non-nil slices so it encodes as empty JSON arrays.
func emptyResult() Result {
	return Result{Nodes: []OutputNode{}, Links: []OutputRelation{}}
}

// IsEmpty reports whether the layout holds no nodes.
func (r Result) IsEmpty() bool { return len(r.Nodes) == 0 }

// Node returns the output node with the given ID.
func (r Result) Node(id string) (OutputNode, bool) {
	for _, n := range r.Nodes {
		if n.ID == id {
			return n, true
		}
	}
	return OutputNode{}, false
}

// transpose swaps the axes of every coordinate and box in r.
func (r *Result) transpose() {
	for i := range r.Nodes {
		n := &r.Nodes[i]
		n.Position = n.Position.Swap()
		n.Width, n.Height = n.Height, n.Width
	}
	for i := range r.Links {
		lk := &r.Links[i]
		for j := range lk.Points {
			lk.Points[j] = lk.Points[j].Swap()
		}
		lk.Path = geom.PathString(lk.Points, false)
	}
	r.Size.Width, r.Size.Height = r.Size.Height, r.Size.Width
}
