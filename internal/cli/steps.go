package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/matzehuels/scrolly/pkg/article"
	"github.com/matzehuels/scrolly/pkg/chart"
)

func (c *CLI) stepsCommand() *cobra.Command {
	var graph string
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "steps",
		Short: "Print the article's steps in reading order",
		Long: `Steps prints every narrative section with the chart and step it triggers.

With --graph the narrative is written as a Graphviz diagram instead:
a .dot path gets the DOT source, a .svg path the rendered drawing.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			// Step metadata does not depend on the data, so no dataset is loaded.
			defs := article.StaticDatasets(nil, nil).Definitions()
			sections := article.Narrative()

			switch {
			case graph != "":
				return writeGraph(cmd.Context(), graph, sections, defs)
			case asJSON:
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(sections)
			}
			fmt.Fprintln(cmd.OutOrStdout(), StyleTitle.Render(article.Title))
			fmt.Fprintln(cmd.OutOrStdout(), stepsTable(sections, defs))
			return nil
		},
	}

	cmd.Flags().StringVarP(&graph, "graph", "g", "", "write the narrative as a diagram (.dot or .svg)")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the sections as JSON")

	return cmd
}

// stepsTable lays the narrative out as a table, one row per section.
func stepsTable(sections []article.Section, defs []chart.Definition) string {
	descr := make(map[string]string)
	for _, d := range defs {
		for _, st := range d.Steps {
			descr[st.ID] = st.Description
		}
	}

	rows := make([][]string, len(sections))
	for i, s := range sections {
		rows[i] = []string{strconv.Itoa(i + 1), s.Chart, s.Step, descr[s.Step], s.Text}
	}

	headerStyle := lipgloss.NewStyle().Foreground(colorGray).Bold(true)
	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("", "Chart", "Step", "Effect", "Text").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			base := lipgloss.NewStyle().Padding(0, 1)
			switch {
			case row == -1:
				return headerStyle.Padding(0, 1)
			case col == 0 || col == 3:
				return base.Foreground(colorDim)
			case col == 2:
				return base.Foreground(colorCyan)
			case col == 4:
				return base.Width(48)
			}
			return base
		})
	return t.Render()
}

func writeGraph(ctx context.Context, path string, sections []article.Section, defs []chart.Definition) error {
	dot := article.ToDOT(sections, defs)

	var data []byte
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".dot", ".gv":
		data = []byte(dot)
	case ".svg":
		spin := newSpinner(ctx, "Rendering diagram...")
		spin.Start()
		svg, err := article.RenderDOT(ctx, dot)
		if err != nil {
			spin.StopWithError("Graphviz failed")
			return err
		}
		spin.StopWithSuccess("Rendered diagram")
		data = svg
	default:
		return fmt.Errorf("unsupported graph format %q (want .dot or .svg)", ext)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	printSuccess("Wrote narrative diagram")
	printFile(path)
	return nil
}
