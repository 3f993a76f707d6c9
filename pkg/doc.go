// Package pkg holds the Stratum libraries.
//
// # Overview
//
// Stratum computes Sugiyama-style layered layouts for directed graphs: nodes
// are assigned to levels, ordered within each level to reduce link
// crossings, given coordinates and connected by routed links. The packages
// fall into three groups:
//
//  1. Engine: [dag], [dag/transform], [dag/ordering], [dag/position],
//     [route], [geom] and [layout]
//  2. Formats: [graph] (JSON input and layout files), [render/svg],
//     [render/dot] and [render] (PDF and PNG conversion)
//  3. Infrastructure: [pipeline], [cache], [server], [errors],
//     [observability] and [buildinfo]
//
// # Architecture
//
//	graph JSON
//	     ↓
//	[pipeline] Parse
//	     ↓
//	[layout] Single / Multi
//	     ↓  (break cycles, assign levels, subdivide, order, position, route)
//	[graph] Layout
//	     ↓
//	[pipeline] Render → svg / dot / pdf / png / json
//
// [pipeline.Runner] caches layouts and artifacts through a [cache.Cache];
// [server] exposes the same runner over HTTP.
//
// # Quick Start
//
//	g, _ := pipeline.ParseFile(ctx, "deps.json", nil)
//	runner := pipeline.NewRunner(nil, nil, nil)
//	res, err := runner.Execute(ctx, g, pipeline.Options{
//	    Mode:    graph.ModeMulti,
//	    Formats: []string{"svg"},
//	})
//	os.WriteFile("deps.svg", res.Artifacts["svg"], 0o644)
//
// Or call the engine directly:
//
//	res, err := layout.Single(ctx, []layout.InputNode{
//	    {ID: "a", DownRelations: []layout.InputRelation{{SourceID: "a", TargetID: "b"}}},
//	    {ID: "b", UpRelations: []layout.InputRelation{{SourceID: "a", TargetID: "b"}}},
//	}, layout.Config{})
//
// # Observability
//
// Register [observability] hooks to receive layout, pipeline, cache and HTTP
// events. The default hooks do nothing.
package pkg
