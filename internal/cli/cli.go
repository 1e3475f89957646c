// Package cli implements the atlas command-line interface.
package cli

import (
	"context"
	"io"
	"time"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/atlas/internal/config"
	"github.com/matzehuels/atlas/pkg/buildinfo"
	"github.com/matzehuels/atlas/pkg/cache"
	"github.com/matzehuels/atlas/pkg/docstore"
	"github.com/matzehuels/atlas/pkg/document"
	"github.com/matzehuels/atlas/pkg/errors"
	"github.com/matzehuels/atlas/pkg/httputil"
	"github.com/matzehuels/atlas/pkg/mapgraph"
	"github.com/matzehuels/atlas/pkg/render"
)

// =============================================================================
// Constants
// =============================================================================

// docCacheTTL bounds how long fetched remote documents are reused.
const docCacheTTL = 15 * time.Minute

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// =============================================================================
// CLI - Central CLI State
// =============================================================================

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger
	Config *config.Config
}

// New creates a new CLI instance with a default logger and configuration.
// The real configuration is loaded by the root command before any
// subcommand runs.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{
		Logger: newLogger(w, level),
		Config: config.Default(),
	}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// LoadConfig replaces the CLI configuration with the file at path (or
// the default location when path is empty) plus environment overrides.
func (c *CLI) LoadConfig(path string) error {
	cfg, err := config.Load(path)
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	c.Config = cfg
	return nil
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	var configPath string

	root := &cobra.Command{
		Use:   "atlas",
		Short: "Atlas explores and edits image-map hierarchies",
		Long: `Atlas works with image-map documents: hierarchies of maps whose clickable
hotspot regions link to deeper maps or to external URLs. It validates and
inspects documents, renders graph overviews, browses a document
interactively in the terminal, and serves the same operations over HTTP.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return c.LoadConfig(configPath)
		},
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().StringVar(&configPath, "config", "", "config file (default "+config.DefaultPath()+")")

	// Register all subcommands
	root.AddCommand(c.inspectCommand())
	root.AddCommand(c.validateCommand())
	root.AddCommand(c.exportCommand())
	root.AddCommand(c.browseCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.docsCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.configCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// =============================================================================
// Renderer Factory
// =============================================================================

// newRenderer creates a graph renderer backed by the configured cache.
func (c *CLI) newRenderer(noCache bool) *render.Renderer {
	return render.NewRenderer(c.newCache(noCache), nil, c.Logger)
}

func (c *CLI) newCache(noCache bool) cache.Cache {
	if noCache || c.Config.Cache.Disabled {
		return cache.NewNullCache()
	}
	fc, err := cache.NewFileCache(c.Config.CacheDir())
	if err != nil {
		c.Logger.Debug("render cache unavailable", "dir", c.Config.CacheDir(), "error", err)
		return cache.NewNullCache()
	}
	return fc
}

// =============================================================================
// Document Loading
// =============================================================================

// loadGraph reads a document from a local path or an http(s) URL,
// falling back to the configured default document when source is empty.
func (c *CLI) loadGraph(ctx context.Context, source string) (*mapgraph.Graph, []mapgraph.Warning, error) {
	if source == "" {
		source = c.Config.Document.Path
	}
	if source == "" {
		return nil, nil, errors.New(errors.ErrCodeInvalidInput,
			"no document given (pass a path or set document.path in the config)")
	}
	return document.Open(ctx, source, nil, c.fetchCache())
}

// fetchCache builds the HTTP cache consulted for remote documents, or
// nil when caching is disabled.
func (c *CLI) fetchCache() *httputil.Cache {
	if c.Config.Cache.Disabled {
		return nil
	}
	hc, err := httputil.NewCache(c.Config.CacheDir(), docCacheTTL)
	if err != nil {
		return nil
	}
	return hc.Namespace("documents")
}

// openStore connects to the configured document store.
func (c *CLI) openStore(ctx context.Context) (docstore.Store, error) {
	return docstore.Open(ctx, c.Config.Store)
}

// loadFromStore fetches a named document from the configured store.
func (c *CLI) loadFromStore(ctx context.Context, name string) (*mapgraph.Graph, []mapgraph.Warning, error) {
	store, err := c.openStore(ctx)
	if err != nil {
		return nil, nil, err
	}
	defer store.Close()

	raw, err := store.Get(ctx, name)
	if err != nil {
		return nil, nil, err
	}
	return document.Unmarshal(raw)
}

// resolveGraph loads the document named by the first positional argument,
// the --store flag, or the configured default, in that order. The
// returned label names the source for messages.
func (c *CLI) resolveGraph(ctx context.Context, args []string, storeName string) (*mapgraph.Graph, []mapgraph.Warning, string, error) {
	if storeName != "" {
		g, warns, err := c.loadFromStore(ctx, storeName)
		return g, warns, "store:" + storeName, err
	}
	source := ""
	if len(args) > 0 {
		source = args[0]
	}
	if source == "" {
		source = c.Config.Document.Path
	}
	g, warns, err := c.loadGraph(ctx, source)
	return g, warns, source, err
}
