// Package graph provides the JSON wire formats for layout input and output.
//
// The formats are shared by the CLI, the HTTP API and the result cache.
//
// # Graph Input
//
// A [Graph] accepts nodes with relation lists, mirroring
// [layout.InputNode]:
//
//	{
//	  "nodes": [
//	    {"id": "api", "width": 120, "down": [{"source": "api", "target": "db"}]},
//	    {"id": "db", "info": {"kind": "postgres"}}
//	  ]
//	}
//
// or a compact edge list, where nodes are created on first mention:
//
//	{
//	  "edges": [
//	    {"from": "api", "to": "db"},
//	    {"from": "db", "to": "api", "cycle": true}
//	  ]
//	}
//
// Both arrays may be combined. [Graph.Input] validates identifiers and sizes
// and merges the edges into the nodes' relation lists.
//
// # Layout Output
//
// A [Layout] wraps a [layout.Result] with the settings that produced it:
//
//	l := graph.NewLayout(res, graph.LayoutMeta{Mode: "multi"})
//	data, _ := graph.MarshalLayout(l)
//
// # Errors
//
// Malformed JSON fails with [errors.ErrCodeInvalidFormat], invalid node IDs
// with [errors.ErrCodeInvalidNodeID] and missing files with
// [errors.ErrCodeFileNotFound].
//
// [layout.InputNode]: github.com/matzehuels/stratum/pkg/layout
// [layout.Result]: github.com/matzehuels/stratum/pkg/layout
// [errors.ErrCodeInvalidFormat]: github.com/matzehuels/stratum/pkg/errors
// [errors.ErrCodeInvalidNodeID]: github.com/matzehuels/stratum/pkg/errors
// [errors.ErrCodeFileNotFound]: github.com/matzehuels/stratum/pkg/errors
package graph
