package pipeline

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/matzehuels/stratum/pkg/errors"
	"github.com/matzehuels/stratum/pkg/graph"
	"github.com/matzehuels/stratum/pkg/observability"
)

// InputFormat is the only graph document format understood by [Parse].
const InputFormat = "json"

// Parse reads a graph document from r and checks that it converts to layout
// input, so structural errors surface before any layout work starts.
func Parse(ctx context.Context, r io.Reader) (g graph.Graph, err error) {
	start := time.Now()
	observability.Pipeline().OnParseStart(ctx, InputFormat)
	defer func() {
		observability.Pipeline().OnParseComplete(ctx, InputFormat, nodeCount(g), time.Since(start), err)
	}()

	g, err = graph.ReadGraph(r)
	if err != nil {
		return graph.Graph{}, err
	}
	if _, err = g.Input(); err != nil {
		return graph.Graph{}, err
	}
	return g, nil
}

// ParseBytes is [Parse] over an in-memory document.
func ParseBytes(ctx context.Context, data []byte) (graph.Graph, error) {
	return Parse(ctx, bytes.NewReader(data))
}

// ParseFile reads a graph document from disk. The path "-" reads stdin.
func ParseFile(ctx context.Context, path string, stdin io.Reader) (graph.Graph, error) {
	if path == "-" {
		return Parse(ctx, stdin)
	}
	f, err := os.Open(path)
	if os.IsNotExist(err) {
		return graph.Graph{}, errors.Wrap(errors.ErrCodeFileNotFound, err, "open %s", path)
	}
	if err != nil {
		return graph.Graph{}, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	return Parse(ctx, f)
}

// nodeCount counts declared nodes plus edge endpoints that are not declared.
func nodeCount(g graph.Graph) int {
	seen := make(map[string]struct{}, len(g.Nodes))
	for _, n := range g.Nodes {
		seen[n.ID] = struct{}{}
	}
	for _, e := range g.Edges {
		seen[e.From] = struct{}{}
		seen[e.To] = struct{}{}
	}
	return len(seen)
}
