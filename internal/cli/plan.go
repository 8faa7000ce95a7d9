package cli

import (
	"fmt"
	"io"
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/matzehuels/imagestitch/pkg/atlas"
	"github.com/matzehuels/imagestitch/pkg/pipeline"
)

// planCommand creates the plan command, which reports what a stitch would do.
func (c *CLI) planCommand() *cobra.Command {
	opts := newStitchOpts()
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "plan",
		Short: "Show image order and grid geometry without writing anything",
		Long: `Plan indexes the input directory and computes the grid exactly like a
stitch run, then prints every image with the cell it would occupy. No pixels
are decoded and no file is written.

With --json the plan is printed as the same frame atlas --atlas would write.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := applyConfig(cmd.Flags(), opts); err != nil {
				return err
			}
			if err := opts.validate(); err != nil {
				return err
			}
			runner := pipeline.NewRunner(nil, nil, c.Logger)
			o := opts.Options
			o.Logger = loggerFromContext(cmd.Context())
			plan, err := runner.Plan(cmd.Context(), o)
			if err != nil {
				return err
			}
			if asJSON {
				return atlas.Write(plan.Atlas(o.Output, o.Atlas), cmd.OutOrStdout())
			}
			renderPlan(cmd.OutOrStdout(), plan)
			return nil
		},
	}

	bindStitchFlags(cmd.Flags(), opts)
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the frame atlas as JSON")
	return cmd
}

// renderPlan prints the layout summary followed by one table row per image.
func renderPlan(w io.Writer, p *pipeline.Plan) {
	l := p.Layout

	fmt.Fprintln(w, StyleTitle.Render("Layout"))
	printKeyValue(w, "Images", strconv.Itoa(len(p.Entries)))
	printKeyValue(w, "Tile", p.Tile.String())
	printKeyValue(w, "Direction", l.Direction.String())
	printKeyValue(w, "Grid", fmt.Sprintf("%d cols × %d rows", l.Cols(), l.Rows()))
	printKeyValue(w, "Canvas", l.Size().String())
	if free := l.Capacity() - len(p.Entries); free > 0 {
		printKeyValue(w, "Empty cells", strconv.Itoa(free))
	}
	if len(p.Skipped) > 0 {
		printKeyValue(w, "Skipped", strconv.Itoa(len(p.Skipped)))
	}
	fmt.Fprintln(w)

	rows := make([][]string, len(p.Entries))
	for k, e := range p.Entries {
		row, col := l.Cell(k)
		o := l.Origin(k)
		rows[k] = []string{
			strconv.Itoa(k),
			e.Name,
			e.Format,
			e.Size.String(),
			fmt.Sprintf("%d,%d", row, col),
			fmt.Sprintf("%d,%d", o.X, o.Y),
		}
	}

	headerStyle := lipgloss.NewStyle().Foreground(colorGray).Bold(true).Padding(0, 1)
	mismatchStyle := lipgloss.NewStyle().Foreground(colorYellow)

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("#", "File", "Format", "Size", "Cell", "Origin").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == -1 {
				return headerStyle
			}
			base := lipgloss.NewStyle().Padding(0, 1)
			if row >= 0 && row < len(p.Entries) && p.Entries[row].Size != p.Tile {
				return base.Inherit(mismatchStyle)
			}
			if col == 0 {
				return base.Foreground(colorDim)
			}
			return base
		})

	fmt.Fprintln(w, t.Render())
}
