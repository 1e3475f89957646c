package render

import (
	"context"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/atlas/pkg/cache"
	"github.com/matzehuels/atlas/pkg/document"
	"github.com/matzehuels/atlas/pkg/errors"
	"github.com/matzehuels/atlas/pkg/mapgraph"
	"github.com/matzehuels/atlas/pkg/observability"
)

// Format identifies a render output format.
type Format string

// Supported formats.
const (
	FormatDOT Format = "dot"
	FormatSVG Format = "svg"
	FormatPNG Format = "png"
)

// ParseFormat converts a user-supplied format name to a Format.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(s)); f {
	case FormatDOT, FormatSVG, FormatPNG:
		return f, nil
	default:
		return "", errors.New(errors.ErrCodeUnsupported, "unsupported render format %q (use dot, svg or png)", s)
	}
}

// Renderer renders graph overviews with content-addressed caching.
type Renderer struct {
	Cache  cache.Cache
	Keyer  cache.Keyer
	Logger *log.Logger
}

// NewRenderer creates a renderer.
// If c is nil, a NullCache is used (caching disabled).
// If keyer is nil, a DefaultKeyer is used.
// If logger is nil, the default logger is used.
func NewRenderer(c cache.Cache, keyer cache.Keyer, logger *log.Logger) *Renderer {
	if c == nil {
		c = cache.NewNullCache()
	}
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Renderer{Cache: c, Keyer: keyer, Logger: logger}
}

// Overview renders the whole graph in the given format. The boolean
// reports whether the artifact came from the cache. DOT output is
// cheap to generate and is never cached.
func (r *Renderer) Overview(ctx context.Context, g *mapgraph.Graph, format Format, opts Options) ([]byte, bool, error) {
	if g == nil {
		return nil, false, errors.New(errors.ErrCodeInvalidInput, "renderer requires a graph")
	}
	opts, err := opts.normalized()
	if err != nil {
		return nil, false, err
	}
	switch format {
	case FormatDOT, FormatSVG, FormatPNG:
	default:
		return nil, false, errors.New(errors.ErrCodeUnsupported, "unsupported render format %q", format)
	}

	dot := ToDOT(g, opts)
	if format == FormatDOT {
		return []byte(dot), false, nil
	}

	key := r.cacheKey(g, format, opts)
	if key != "" {
		if data, hit, err := r.Cache.Get(ctx, key); err == nil && hit {
			observability.Cache().OnCacheHit(ctx, "render")
			return data, true, nil
		}
		observability.Cache().OnCacheMiss(ctx, "render")
	}

	hooks := observability.Render()
	hooks.OnRenderStart(ctx, string(format), g.Len())
	start := time.Now()
	var data []byte
	if format == FormatSVG {
		data, err = SVG(ctx, dot)
	} else {
		data, err = PNG(ctx, dot)
	}
	hooks.OnRenderComplete(ctx, string(format), len(data), time.Since(start), err)
	if err != nil {
		return nil, false, err
	}

	if key != "" {
		if err := r.Cache.Set(ctx, key, data, cache.TTLRender); err != nil {
			r.Logger.Debug("render cache write failed", "key", key, "error", err)
		} else {
			observability.Cache().OnCacheSet(ctx, "render", len(data))
		}
	}
	return data, false, nil
}

// cacheKey derives the artifact key from the serialized graph. An empty
// key disables caching for the call; that only happens when the graph
// cannot be serialized.
func (r *Renderer) cacheKey(g *mapgraph.Graph, format Format, opts Options) string {
	data, err := document.Marshal(g)
	if err != nil {
		return ""
	}
	return r.Keyer.RenderKey(cache.Hash(data), cache.RenderKeyOpts{
		Format:  string(format),
		Rankdir: opts.Rankdir,
		Labels:  opts.Labels,
		Orphans: opts.Orphans,
		URLs:    opts.URLs,
	})
}
