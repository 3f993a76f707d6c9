package cli

import (
	"context"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/matzehuels/stratum/pkg/graph"
	"github.com/matzehuels/stratum/pkg/layout"
	"github.com/matzehuels/stratum/pkg/pipeline"
)

type inspectOpts struct {
	layoutFlags
	interactive bool
	levels      bool
}

func (c *CLI) inspectCommand() *cobra.Command {
	var opts inspectOpts

	cmd := &cobra.Command{
		Use:   "inspect [graph.json]",
		Short: "Show levels, crossings and virtual nodes of a layout",
		Long: `Run the layout engine on each component and report what it did:
levels, virtual nodes, reversed links, crossing counts before and after
ordering, and the chosen alignment.

--levels lists every level; --interactive opens a level browser.`,
		Example: `  stratum inspect deps.json
  stratum inspect deps.json --levels
  stratum inspect deps.json -i`,
		Args: inputArg,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runInspect(cmd, args[0], &opts)
		},
	}

	opts.layoutFlags.register(cmd)
	cmd.Flags().BoolVarP(&opts.interactive, "interactive", "i", false, "browse levels interactively")
	cmd.Flags().BoolVar(&opts.levels, "levels", false, "list the nodes on every level")

	return cmd
}

func (c *CLI) runInspect(cmd *cobra.Command, input string, opts *inspectOpts) error {
	ctx := cmd.Context()

	popts := c.baseOptions()
	if err := opts.apply(cmd, &popts); err != nil {
		return err
	}
	g, err := pipeline.ParseFile(ctx, input, cmd.InOrStdin())
	if err != nil {
		return err
	}
	reports, err := inspectGraph(ctx, g, popts)
	if err != nil {
		return err
	}

	if opts.interactive {
		_, err := tea.NewProgram(newLevelBrowser(reports), tea.WithContext(ctx)).Run()
		return err
	}

	fmt.Fprintln(out, StyleTitle.Render(fmt.Sprintf("%d %s", len(reports), plural(len(reports), "component", "components"))))
	fmt.Fprintln(out, summaryTable(reports))
	for _, r := range reports {
		if r.Dropped > 0 {
			printWarning("component %d: dropped %d %s to unknown nodes", r.Index+1, r.Dropped, plural(r.Dropped, "relation", "relations"))
		}
	}
	if opts.levels {
		for _, r := range reports {
			fmt.Fprintln(out)
			fmt.Fprintln(out, StyleTitle.Render(fmt.Sprintf("Component %d", r.Index+1)))
			fmt.Fprintln(out, levelsTable(r))
		}
	}
	return nil
}

// componentReport is what the engine did to one component.
type componentReport struct {
	Index   int
	Stats   layout.Stats
	Size    layout.Size
	Levels  []levelInfo
	Dropped int
}

// levelInfo lists the caller's nodes on one level and counts the virtual
// nodes placed between them.
type levelInfo struct {
	Nodes   []string
	Virtual int
}

// inspectGraph runs one engine per component, or a single engine in single
// mode, and collects their statistics.
func inspectGraph(ctx context.Context, g graph.Graph, opts pipeline.Options) ([]componentReport, error) {
	if err := opts.ValidateForLayout(); err != nil {
		return nil, err
	}
	nodes, err := g.Input()
	if err != nil {
		return nil, err
	}
	groups := [][]layout.InputNode{nodes}
	if opts.Mode == graph.ModeMulti {
		if groups, err = layout.SeparateComponents(nodes); err != nil {
			return nil, err
		}
	}

	known := make(map[string]bool, len(nodes))
	for _, n := range nodes {
		known[n.ID] = true
	}

	cfg := opts.LayoutConfig()
	reports := make([]componentReport, 0, len(groups))
	for i, comp := range groups {
		prep := layout.Preprocess(comp, cfg)
		e, err := layout.NewEngine(prep, cfg)
		if err != nil {
			return nil, err
		}
		if err := e.Run(ctx); err != nil {
			return nil, err
		}

		r := componentReport{Index: i, Stats: e.Stats(), Size: e.Size(), Dropped: prep.Dropped}
		for _, ids := range e.Levels() {
			var lv levelInfo
			for _, id := range ids {
				if known[id] {
					lv.Nodes = append(lv.Nodes, id)
				} else {
					lv.Virtual++
				}
			}
			r.Levels = append(r.Levels, lv)
		}
		reports = append(reports, r)
	}
	return reports, nil
}

func summaryTable(reports []componentReport) string {
	rows := make([][]string, len(reports))
	for i, r := range reports {
		s := r.Stats
		rows[i] = []string{
			fmt.Sprint(r.Index + 1),
			fmt.Sprint(s.Nodes),
			fmt.Sprint(s.Links),
			fmt.Sprint(s.Levels),
			fmt.Sprint(s.VirtualNodes),
			fmt.Sprint(len(s.Reversed)),
			fmt.Sprintf("%d %s %d", s.Ordering.Initial, iconArrow, s.Ordering.Final),
			s.Alignment.String(),
			fmt.Sprintf("%.0fx%.0f", r.Size.Width, r.Size.Height),
		}
	}
	headers := []string{"#", "Nodes", "Links", "Levels", "Virtual", "Reversed", "Crossings", "Alignment", "Size"}
	return newTable(headers, rows, nil).Render()
}

func levelsTable(r componentReport) string {
	rows := make([][]string, len(r.Levels))
	for i, lv := range r.Levels {
		rows[i] = []string{fmt.Sprint(i), strings.Join(lv.Nodes, ", "), virtualCount(lv.Virtual)}
	}
	return newTable([]string{"Level", "Nodes", "Virtual"}, rows, nil).Render()
}

func virtualCount(n int) string {
	if n == 0 {
		return ""
	}
	return fmt.Sprintf("+%d", n)
}
