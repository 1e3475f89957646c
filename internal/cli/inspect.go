package cli

import (
	"fmt"
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/matzehuels/atlas/pkg/mapgraph"
)

// inspectCommand creates the inspect command for summarizing a document.
func (c *CLI) inspectCommand() *cobra.Command {
	var storeName string

	cmd := &cobra.Command{
		Use:   "inspect [file]",
		Short: "Summarize a document's maps and hotspots",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			g, warns, label, err := c.resolveGraph(cmd.Context(), args, storeName)
			if err != nil {
				return err
			}
			printInspect(g, warns, label)
			return nil
		},
	}

	cmd.Flags().StringVar(&storeName, "store", "", "load the named document from the configured store")

	return cmd
}

// printInspect renders the document summary.
func printInspect(g *mapgraph.Graph, warns []mapgraph.Warning, label string) {
	root := g.InferRoot()
	orphans := g.Unreachable(root)

	mapLinks, urlLinks := 0, 0
	for _, n := range g.Nodes() {
		for _, h := range n.Hotspots {
			if h.IsMapLink() {
				mapLinks++
			} else {
				urlLinks++
			}
		}
	}

	fmt.Println(StyleTitle.Render("Document " + label))
	printNewline()
	printKeyValue("Maps", strconv.Itoa(g.Len()))
	printKeyValue("Hotspots", fmt.Sprintf("%d (%d map links, %d url links)", g.HotspotCount(), mapLinks, urlLinks))
	printKeyValue("Root", root)
	printKeyValue("Orphans", strconv.Itoa(len(orphans)))

	for _, w := range warns {
		printWarning("%s", w)
	}

	printNewline()
	fmt.Println(mapTable(g, root))
	printDetail("▸ marks the root; grey rows are unreachable from it")
}

// mapTable renders one row per map in sorted order.
func mapTable(g *mapgraph.Graph, root string) string {
	orphaned := make(map[string]bool)
	for _, id := range g.Unreachable(root) {
		orphaned[id] = true
	}

	ids := make([]string, 0, g.Len())
	rows := make([][]string, 0, g.Len())
	for _, n := range g.Nodes() {
		marker := "  "
		if n.ID == root {
			marker = "▸ "
		}
		rows = append(rows, []string{
			marker,
			n.ID,
			truncate(n.ImageURL, 40),
			strconv.Itoa(len(n.Hotspots)),
			strconv.Itoa(g.References(n.ID)),
		})
		ids = append(ids, n.ID)
	}

	headerStyle := lipgloss.NewStyle().Foreground(colorGray).Bold(true)

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("", "Map", "Image", "Hotspots", "Refs").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == -1 {
				return headerStyle
			}
			if row >= len(ids) {
				return lipgloss.NewStyle()
			}
			switch {
			case ids[row] == root:
				return lipgloss.NewStyle().Foreground(colorCyan).Bold(col == 1)
			case orphaned[ids[row]]:
				return lipgloss.NewStyle().Foreground(colorDim)
			}
			return lipgloss.NewStyle()
		})

	return t.Render()
}
