package transform

import (
	"testing"

	"github.com/matzehuels/stratum/pkg/dag"
)

func TestSubdivide_LongLink(t *testing.T) {
	g := build(t, []string{"a", "b", "c", "d"}, []edge{
		{from: "a", to: "b"}, {from: "b", to: "c"}, {from: "c", to: "d"}, {from: "a", to: "d"},
	})
	BreakCycles(g)
	AssignLayers(g)
	g.Node(2).Height = 80

	created := Subdivide(g, 180, g.LevelHeights())

	if created != 2 {
		t.Fatalf("Subdivide() created %d virtual nodes, want 2", created)
	}
	long := g.Link(3)
	if !g.IsDetached(3) {
		t.Error("long link still attached")
	}
	if len(long.Children) != 3 {
		t.Fatalf("long link has %d segments, want 3", len(long.Children))
	}

	prev := long.Source
	for i, seg := range long.Children {
		s := g.Link(seg)
		if s.Source != prev {
			t.Errorf("segment %d starts at %s, want %s", i, g.Node(s.Source).ID, g.Node(prev).ID)
		}
		if p, ok := s.Parent(); !ok || p != 3 {
			t.Errorf("segment %d parent = %d, %v; want 3, true", i, p, ok)
		}
		if s.Origin != dag.None {
			t.Errorf("segment %d Origin = %d, want None", i, s.Origin)
		}
		prev = s.Target
	}
	if prev != long.Target {
		t.Errorf("chain ends at %s, want d", g.Node(prev).ID)
	}

	v := g.Node(g.Link(long.Children[0]).Target)
	if !v.IsVirtual() || v.ID != "virtual0" {
		t.Errorf("first virtual node = %q (virtual=%v), want virtual0", v.ID, v.IsVirtual())
	}
	if v.Width != 180 || v.Height != 50 {
		t.Errorf("virtual0 size = %vx%v, want 180x50", v.Width, v.Height)
	}
	if h := g.Node(g.Link(long.Children[1]).Target).Height; h != 80 {
		t.Errorf("virtual1 height = %v, want tallest of its level 80", h)
	}
	if err := g.ValidateLayered(); err != nil {
		t.Errorf("ValidateLayered() = %v", err)
	}
}

func TestSubdivide_ReversedChain(t *testing.T) {
	g := build(t, []string{"a", "b", "c"}, []edge{
		{from: "a", to: "b"}, {from: "b", to: "c"}, {from: "c", to: "a"},
	})
	r := Normalize(g, 180)

	if len(r.Reversed) != 1 || r.VirtualNodes != 1 {
		t.Fatalf("Normalize() = %+v, want 1 reversed and 1 virtual", r)
	}
	for _, seg := range g.Link(2).Children {
		if !g.Link(seg).Reversed {
			t.Errorf("segment %d did not inherit Reversed", seg)
		}
	}
}

func TestSubdivide_IDCollision(t *testing.T) {
	g := build(t, []string{"a", "b", "c", "virtual0"}, []edge{
		{from: "a", to: "b"}, {from: "b", to: "c"}, {from: "a", to: "c"},
	})
	BreakCycles(g)
	AssignLayers(g)

	if n := Subdivide(g, 180, g.LevelHeights()); n != 1 {
		t.Fatalf("Subdivide() = %d, want 1", n)
	}
	if _, ok := g.Lookup("virtual0__1"); !ok {
		t.Error("expected suffixed ID virtual0__1")
	}
}

func TestSubdivide_SkipsSelfLoopsAndUnitLinks(t *testing.T) {
	g := build(t, []string{"a", "b"}, []edge{{from: "a", to: "b"}, {from: "a", to: "a"}})
	BreakCycles(g)
	AssignLayers(g)

	if n := Subdivide(g, 180, g.LevelHeights()); n != 0 {
		t.Errorf("Subdivide() = %d, want 0", n)
	}
	if g.NodeCount() != 2 {
		t.Errorf("NodeCount() = %d, want 2", g.NodeCount())
	}
}
