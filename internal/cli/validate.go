package cli

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/matzehuels/atlas/pkg/errors"
)

// validateCommand creates the validate command.
func (c *CLI) validateCommand() *cobra.Command {
	var (
		storeName string
		strict    bool
	)

	cmd := &cobra.Command{
		Use:   "validate [file]",
		Short: "Check a document and report repairs and dangling links",
		Long: `Validate parses a document and reports everything the normalizer had to
repair or drop, plus structural findings: hotspot links that point at
missing maps, and maps unreachable from the root.

Findings are warnings by default; with --strict they fail the command.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runValidate(cmd.Context(), args, storeName, strict)
		},
	}

	cmd.Flags().StringVar(&storeName, "store", "", "load the named document from the configured store")
	cmd.Flags().BoolVar(&strict, "strict", false, "treat repairs and findings as errors")

	return cmd
}

func (c *CLI) runValidate(ctx context.Context, args []string, storeName string, strict bool) error {
	g, warns, label, err := c.resolveGraph(ctx, args, storeName)
	if err != nil {
		return err
	}

	findings := len(warns)
	for _, w := range warns {
		printWarning("%s", w)
	}

	// Dangling map links are tolerated in storage; surface them here.
	for _, n := range g.Nodes() {
		for _, h := range n.Hotspots {
			if h.IsMapLink() && !g.Has(h.LinkToMapID) {
				printWarning("map %q: hotspot %q links to missing map %q", n.ID, h.ID, h.LinkToMapID)
				findings++
			}
		}
	}

	root := g.InferRoot()
	for _, id := range g.Unreachable(root) {
		printWarning("map %q is unreachable from root %q", id, root)
		findings++
	}

	if findings == 0 {
		printSuccess("%s: %d maps, %d hotspots, no findings", label, g.Len(), g.HotspotCount())
		return nil
	}
	if strict {
		return errors.New(errors.ErrCodeInvalidDocument, "%s: %d findings", label, findings)
	}
	printInfo("%s: %d maps, %d hotspots, %d findings", label, g.Len(), g.HotspotCount(), findings)
	return nil
}
