package cli

import (
	"fmt"
	"slices"

	"github.com/spf13/cobra"

	"github.com/matzehuels/stratum/pkg/errors"
	"github.com/matzehuels/stratum/pkg/graph"
	"github.com/matzehuels/stratum/pkg/pipeline"
)

type renderOpts struct {
	layout    layoutFlags
	render    renderFlags
	output    string
	fromSaved bool
	noCache   bool
	refresh   bool
}

func (c *CLI) renderCommand() *cobra.Command {
	var opts renderOpts

	cmd := &cobra.Command{
		Use:   "render [graph.json]",
		Short: "Render a graph or a saved layout",
		Long: `Lay out a graph and render it to one or more formats.

With --layout the input is a layout written by "stratum layout" and the
layout step is skipped. Files are named <output>.<format>; the output base
defaults to the input name. With "-o -" the single requested format is
written to stdout.

pdf and png need rsvg-convert on PATH.`,
		Example: `  stratum render deps.json
  stratum render deps.json -f svg,png --theme dark
  stratum render --layout deps.layout.json -f dot --detailed
  stratum render deps.json -f svg -o - > deps.svg`,
		Args: inputArg,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runRender(cmd, args[0], &opts)
		},
	}

	opts.layout.register(cmd)
	opts.render.register(cmd)
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output base path, or - for stdout")
	cmd.Flags().BoolVar(&opts.fromSaved, "layout", false, "input is a saved layout")
	cmd.Flags().BoolVar(&opts.noCache, "no-cache", false, "disable the cache")
	cmd.Flags().BoolVar(&opts.refresh, "refresh", false, "recompute and overwrite cached results")

	return cmd
}

func (c *CLI) runRender(cmd *cobra.Command, input string, opts *renderOpts) error {
	ctx := cmd.Context()
	logger := loggerFromContext(ctx)

	popts := c.baseOptions()
	if err := opts.layout.apply(cmd, &popts); err != nil {
		return err
	}
	opts.render.apply(cmd, &popts)
	popts.Refresh = opts.refresh

	toStdout := opts.output == "-"
	if toStdout && len(popts.Formats) != 1 {
		return errors.New(errors.ErrCodeInvalidInput, "stdout output takes exactly one format, got %d", len(popts.Formats))
	}

	runner, err := c.newRunner(ctx, opts.noCache)
	if err != nil {
		return err
	}
	defer runner.Close()

	spinner := newSpinnerWithContext(ctx, "Rendering...")
	if !toStdout {
		spinner.Start()
	}
	prog := newProgress(logger)

	var (
		artifacts    map[string][]byte
		nodes, links int
		cached       bool
	)
	if opts.fromSaved {
		l, err := graph.ReadLayoutFile(input)
		if err != nil {
			spinner.Stop()
			return err
		}
		artifacts, cached, err = runner.RenderWithCacheInfo(ctx, l, popts)
		if err != nil {
			spinner.Stop()
			return err
		}
		nodes, links = len(l.Nodes), len(l.Links)
	} else {
		g, err := pipeline.ParseFile(ctx, input, cmd.InOrStdin())
		if err != nil {
			spinner.Stop()
			return err
		}
		res, err := runner.Execute(ctx, g, popts)
		if err != nil {
			spinner.Stop()
			return err
		}
		artifacts = res.Artifacts
		nodes, links = res.Stats.NodeCount, res.Stats.LinkCount
		cached = res.CacheInfo.LayoutHit && res.CacheInfo.RenderHit
	}
	spinner.Stop()
	prog.done(fmt.Sprintf("Rendered %d formats", len(artifacts)))

	if toStdout {
		_, err := cmd.OutOrStdout().Write(artifacts[popts.Formats[0]])
		return err
	}

	base := opts.output
	if base == "" {
		if input == "-" {
			base = "graph"
		} else {
			base = trimExt(input)
		}
	}

	formats := make([]string, 0, len(artifacts))
	for f := range artifacts {
		formats = append(formats, f)
	}
	slices.Sort(formats)

	printSuccess("Rendered %d %s", len(formats), plural(len(formats), "file", "files"))
	for _, f := range formats {
		path := base + "." + f
		if f == "json" {
			path = base + layoutSuffix
		}
		if err := writeFile(path, artifacts[f]); err != nil {
			return err
		}
		printFile(path)
	}
	printStats(nodes, links, cached)
	return nil
}

func plural(n int, one, many string) string {
	if n == 1 {
		return one
	}
	return many
}
