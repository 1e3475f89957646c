// Package render draws map graphs as node-link overview diagrams.
//
// # Overview
//
// An overview shows the whole document at once: maps as boxes, map-type
// hotspots as arrows between them. It is the editor's answer to "where
// does this graph actually go" without clicking through every map.
//
//   - [ToDOT] emits Graphviz DOT text
//   - [SVG] and [PNG] rasterize DOT in-process via goccy/go-graphviz
//   - [Renderer] adds content-addressed caching on top
//
// # DOT Generation
//
// ToDOT walks the graph in sorted map order, so output is deterministic
// for a given graph and options. The root map is highlighted, maps
// unreachable from the root can be included dashed-grey, and url-type
// hotspots can appear as external leaf nodes:
//
//	dot := render.ToDOT(g, render.Options{Labels: true, URLs: true})
//	svg, err := render.SVG(ctx, dot)
//
// # Caching
//
// Rendering is deterministic per graph content and options, so the
// Renderer caches finished artifacts under a hash of the serialized
// document plus the options:
//
//	r := render.NewRenderer(fileCache, nil, logger)
//	svg, hit, err := r.Overview(ctx, g, render.FormatSVG, render.Options{})
package render
