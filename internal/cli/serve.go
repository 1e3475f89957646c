package cli

import (
	"context"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/atlas/internal/server"
)

type serveOpts struct {
	// addr is the listen address; empty falls back to the configured
	// server.addr.
	addr string
	// store names a stored document to serve instead of a file path.
	store string
	// noCache bypasses the render cache.
	noCache bool
}

// serveCommand creates the HTTP API server command.
func (c *CLI) serveCommand() *cobra.Command {
	var opts serveOpts

	cmd := &cobra.Command{
		Use:   "serve [file]",
		Short: "Serve a document over the HTTP editing API",
		Long: `Serve a map document over HTTP. The API exposes the document, a
navigation session, hotspot editing, and rendered overviews under
/api/v1. Edits happen in memory; PUT /api/v1/docs/{name} with an empty
body persists the current document to the configured store.

Usage:
  atlas serve floorplans.json
  atlas serve --store floorplans --addr :9090`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if opts.addr == "" {
				opts.addr = c.Config.Server.Addr
			}
			return c.runServe(withLogger(cmd.Context(), c.Logger), args, opts)
		},
	}

	cmd.Flags().StringVar(&opts.addr, "addr", "", "Listen address (default from config)")
	cmd.Flags().StringVar(&opts.store, "store", "", "Serve a document from the store instead of a file")
	cmd.Flags().BoolVar(&opts.noCache, "no-cache", false, "Bypass the render cache")

	return cmd
}

// runServe loads the document and runs the API server until the context
// is cancelled.
func (c *CLI) runServe(ctx context.Context, args []string, opts serveOpts) error {
	g, warns, label, err := c.resolveGraph(ctx, args, opts.store)
	if err != nil {
		return err
	}
	for _, w := range warns {
		printWarning("%s", w)
	}

	// The server runs without persistence when the store is unreachable.
	st, err := c.openStore(ctx)
	if err != nil {
		printWarning("document store unavailable: %v", err)
		st = nil
	} else {
		defer st.Close()
	}

	srv, err := server.New(server.Options{
		Graph:    g,
		Source:   label,
		Addr:     opts.addr,
		Store:    st,
		Renderer: c.newRenderer(opts.noCache),
		Logger:   c.Logger,
	})
	if err != nil {
		return err
	}

	display := opts.addr
	if strings.HasPrefix(display, ":") {
		display = "localhost" + display
	}
	printInfo("Serving %s on %s", label, opts.addr)
	printNextStep("Current frame", "curl http://"+display+"/api/v1/frame")

	return srv.Run(ctx)
}
