package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/atlas/pkg/document"
	"github.com/matzehuels/atlas/pkg/render"
)

// exportOpts holds the command-line flags for the export command.
type exportOpts struct {
	output  string // output file path; empty derives one (DOT goes to stdout)
	format  string // output format: dot, svg, png
	rankdir string // graphviz layout direction: TB, LR, BT, RL
	labels  bool   // include hotspot titles and image names
	orphans bool   // include maps unreachable from the root
	urls    bool   // include external URL leaf nodes
	noCache bool   // bypass the render cache
	store   string // load the named document from the configured store
}

// exportCommand creates the export command for rendering graph overviews.
func (c *CLI) exportCommand() *cobra.Command {
	opts := exportOpts{}

	cmd := &cobra.Command{
		Use:   "export [file]",
		Short: "Render the map graph to DOT, SVG, or PNG",
		Long: `Export renders an overview of the document's map graph: one node per
map, an edge per hotspot link, the root highlighted. Maps unreachable
from the root and external URL targets can be included with --orphans
and --urls.

SVG and PNG renders are cached by document content and options. DOT is
always generated fresh and goes to stdout unless --output is given.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			// Flag defaults come from the config, which is only loaded
			// once the root command has run.
			r := c.Config.Render
			if opts.format == "" {
				opts.format = r.Format
			}
			if opts.rankdir == "" {
				opts.rankdir = r.Rankdir
			}
			if !cmd.Flags().Changed("labels") {
				opts.labels = r.Labels
			}
			if !cmd.Flags().Changed("orphans") {
				opts.orphans = r.Orphans
			}
			if !cmd.Flags().Changed("urls") {
				opts.urls = r.URLs
			}
			return c.runExport(withLogger(cmd.Context(), c.Logger), args, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file (default: derived from the input)")
	cmd.Flags().StringVarP(&opts.format, "format", "f", "", "output format: dot, svg, png (default from config)")
	cmd.Flags().StringVar(&opts.rankdir, "rankdir", "", "layout direction: TB, LR, BT, RL (default from config)")
	cmd.Flags().BoolVar(&opts.labels, "labels", true, "include hotspot titles and image names")
	cmd.Flags().BoolVar(&opts.orphans, "orphans", false, "include maps unreachable from the root")
	cmd.Flags().BoolVar(&opts.urls, "urls", false, "include external URL leaf nodes")
	cmd.Flags().BoolVar(&opts.noCache, "no-cache", false, "bypass the render cache")
	cmd.Flags().StringVar(&opts.store, "store", "", "load the named document from the configured store")

	return cmd
}

// runExport loads the document, renders the overview, and writes output.
func (c *CLI) runExport(ctx context.Context, args []string, opts exportOpts) error {
	logger := loggerFromContext(ctx)

	format, err := render.ParseFormat(opts.format)
	if err != nil {
		return err
	}

	g, _, label, err := c.resolveGraph(ctx, args, opts.store)
	if err != nil {
		return err
	}
	logger.Debug("loaded document", "source", label, "maps", g.Len(), "hotspots", g.HotspotCount())

	renderer := c.newRenderer(opts.noCache)

	var spin *Spinner
	if format != render.FormatDOT {
		spin = newSpinner(ctx, fmt.Sprintf("Rendering %s overview...", format))
		spin.Start()
	}

	data, cacheHit, err := renderer.Overview(ctx, g, format, render.Options{
		Rankdir: opts.rankdir,
		Labels:  opts.labels,
		Orphans: opts.orphans,
		URLs:    opts.urls,
	})
	if spin != nil {
		if err != nil {
			spin.StopWithError("Render failed")
		} else {
			spin.Stop()
		}
	}
	if err != nil {
		return err
	}

	outputPath := opts.output
	if outputPath == "" && format != render.FormatDOT {
		outputPath = exportPath(label, string(format))
	}

	out, err := openOutput(outputPath)
	if err != nil {
		return err
	}
	defer out.Close()
	if _, err := out.Write(data); err != nil {
		return err
	}

	if outputPath == "" {
		return nil // DOT went to stdout
	}

	printSuccess("Export complete")
	printFile(outputPath)
	printStats(g.Len(), g.HotspotCount(), cacheHit)
	printNewline()
	printNextStep("Serve the document", "atlas serve")
	return nil
}

// exportPath derives an output file name from the document source label.
func exportPath(label, format string) string {
	base := strings.TrimPrefix(label, "store:")
	if document.IsURL(base) {
		if i := strings.IndexAny(base, "?#"); i >= 0 {
			base = base[:i]
		}
		base = path.Base(base)
	}
	base = strings.TrimSuffix(base, filepath.Ext(base))
	if base == "" || base == "." || base == "/" {
		base = "atlas"
	}
	return base + "." + format
}

// nopCloser wraps an io.Writer with a no-op Close method, making
// os.Stdout usable as an io.WriteCloser.
type nopCloser struct{ io.Writer }

func (nopCloser) Close() error { return nil }

// openOutput returns a WriteCloser for the given path. An empty path
// means stdout; otherwise the file is created, overwriting if present.
func openOutput(path string) (io.WriteCloser, error) {
	if path == "" {
		return nopCloser{os.Stdout}, nil
	}
	return os.Create(path)
}
