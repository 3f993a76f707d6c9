package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/stratum/pkg/graph"
	"github.com/matzehuels/stratum/pkg/pipeline"
)

const layoutSuffix = ".layout.json"

type layoutOpts struct {
	layoutFlags
	output  string
	noCache bool
	refresh bool
}

func (c *CLI) layoutCommand() *cobra.Command {
	var opts layoutOpts

	cmd := &cobra.Command{
		Use:   "layout [graph.json]",
		Short: "Compute a layout and write it as JSON",
		Long: `Compute a layered layout for a graph and write it as JSON.

The input is a graph file, or - for stdin. The layout is written next to the
input as <name>.layout.json unless --output is given; with stdin input it
goes to stdout.`,
		Example: `  stratum layout deps.json
  stratum layout deps.json --mode single --transverse -o deps.layout.json
  cat deps.json | stratum layout -`,
		Args: inputArg,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runLayout(cmd, args[0], &opts)
		},
	}

	opts.layoutFlags.register(cmd)
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file (- for stdout)")
	cmd.Flags().BoolVar(&opts.noCache, "no-cache", false, "disable the layout cache")
	cmd.Flags().BoolVar(&opts.refresh, "refresh", false, "recompute and overwrite cached layouts")

	return cmd
}

func (c *CLI) runLayout(cmd *cobra.Command, input string, opts *layoutOpts) error {
	ctx := cmd.Context()
	logger := loggerFromContext(ctx)

	popts := c.baseOptions()
	if err := opts.apply(cmd, &popts); err != nil {
		return err
	}
	popts.Refresh = opts.refresh

	g, err := pipeline.ParseFile(ctx, input, cmd.InOrStdin())
	if err != nil {
		return err
	}

	runner, err := c.newRunner(ctx, opts.noCache)
	if err != nil {
		return err
	}
	defer runner.Close()

	output := layoutOutput(input, opts.output)
	toStdout := output == "-"

	spinner := newSpinnerWithContext(ctx, "Computing layout...")
	if !toStdout {
		spinner.Start()
	}
	prog := newProgress(logger)
	l, hit, err := runner.ComputeLayoutWithCacheInfo(ctx, g, popts)
	spinner.Stop()
	if err != nil {
		return err
	}
	prog.done(fmt.Sprintf("Laid out %d nodes", len(l.Nodes)))

	if toStdout {
		data, err := graph.MarshalLayout(l)
		if err != nil {
			return err
		}
		_, err = cmd.OutOrStdout().Write(append(data, '\n'))
		return err
	}

	if err := graph.WriteLayoutFile(l, output); err != nil {
		return err
	}
	printSuccess("Layout computed")
	printFile(output)
	printStats(len(l.Nodes), len(l.Links), hit)
	printNextStep("Render it", "stratum render --layout "+output)
	return nil
}

// layoutOutput resolves the output path: explicit, stdout for stdin input,
// or the input name with the layout suffix.
func layoutOutput(input, output string) string {
	switch {
	case output != "":
		return output
	case input == "-":
		return "-"
	}
	return trimExt(input) + layoutSuffix
}

// trimExt removes the extension, treating ".layout.json" as one.
func trimExt(path string) string {
	if strings.HasSuffix(path, layoutSuffix) {
		return strings.TrimSuffix(path, layoutSuffix)
	}
	return strings.TrimSuffix(path, filepath.Ext(path))
}

// writeFile writes data to path, creating parent directories.
func writeFile(path string, data []byte) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	return os.WriteFile(path, data, 0o644)
}
