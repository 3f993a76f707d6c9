package transform_test

import (
	"fmt"

	"github.com/matzehuels/stratum/pkg/dag"
	"github.com/matzehuels/stratum/pkg/dag/transform"
)

func newGraph(ids []string, links [][2]string) *dag.Graph {
	g := dag.New(len(ids))
	for _, id := range ids {
		_, _ = g.AddNode(dag.Node{ID: id, Width: 100, Height: 50})
	}
	for i, l := range links {
		src, _ := g.Lookup(l[0])
		dst, _ := g.Lookup(l[1])
		_, _ = g.AddLink(dag.Link{Source: src, Target: dst, Origin: i})
	}
	return g
}

func ExampleNormalize() {
	// app → auth → db, app → cache → db, plus a direct app → db
	g := newGraph(
		[]string{"app", "auth", "cache", "db"},
		[][2]string{{"app", "auth"}, {"app", "cache"}, {"app", "db"}, {"auth", "db"}, {"cache", "db"}},
	)

	r := transform.Normalize(g, 180)

	fmt.Println("Reversed:", len(r.Reversed))
	fmt.Println("Virtual nodes:", r.VirtualNodes)
	fmt.Println("Levels:", len(r.LevelHeights))
	fmt.Println("app -> db segments:", len(g.Link(2).Children))
	fmt.Println("Layered:", g.ValidateLayered() == nil)
	// Output:
	// Reversed: 0
	// Virtual nodes: 1
	// Levels: 3
	// app -> db segments: 2
	// Layered: true
}

func ExampleBreakCycles() {
	g := newGraph([]string{"a", "b", "c"}, [][2]string{{"a", "b"}, {"b", "c"}, {"c", "a"}})

	reversed := transform.BreakCycles(g)
	l := g.Link(reversed[0])

	fmt.Println("Reversed links:", len(reversed))
	fmt.Printf("Now: %s -> %s\n", g.Node(l.Source).ID, g.Node(l.Target).ID)
	fmt.Println("Acyclic:", g.Validate() == nil)
	// Output:
	// Reversed links: 1
	// Now: a -> c
	// Acyclic: true
}

func ExampleAssignLayers() {
	g := newGraph([]string{"app", "lib", "core"}, [][2]string{{"app", "lib"}, {"lib", "core"}})

	transform.AssignLayers(g)

	for _, id := range []string{"app", "lib", "core"} {
		n, _ := g.Lookup(id)
		fmt.Printf("%s level: %d\n", id, g.Node(n).Level)
	}
	// Output:
	// app level: 0
	// lib level: 1
	// core level: 2
}
