// Package pkg provides the core libraries for Atlas image-map exploration.
//
// # Overview
//
// Atlas models hierarchies of image maps: pictures carrying clickable
// hotspot regions that descend into other maps or open external links.
// The pkg directory is organized into four main areas:
//
//  1. [mapgraph] - Domain model (maps, hotspots, immutable edits)
//  2. [session] - Interaction engine (navigation, view transforms, editing)
//  3. [document] - Serialization (JSON codec, normalization, remote fetch)
//  4. [render] - Hierarchy overview rendering (DOT, SVG, PNG)
//
// # Architecture
//
// The typical data flow through Atlas:
//
//	Map document (JSON file, URL, or store)
//	         ↓
//	    [document] package (decode + normalize)
//	         ↓
//	    [mapgraph] package (validated graph, immutable mutations)
//	         ↓
//	    [session] package (navigation, edit machine, frames)
//	         ↓
//	    CLI / terminal browser / HTTP API
//
// # Quick Start
//
// Load a document and walk into its hierarchy:
//
//	import (
//	    "github.com/matzehuels/atlas/pkg/document"
//	    "github.com/matzehuels/atlas/pkg/session"
//	)
//
//	// 1. Load and normalize a document
//	g, warns, _ := document.Load("floorplans.json")
//
//	// 2. Start a session at the inferred root map
//	sess, _ := session.New(g, "", nil)
//
//	// 3. Click a hotspot; map links navigate, url links surface the URL
//	frame, _ := sess.Frame()
//	res, _ := sess.ClickHotspot(frame.Hotspots[0].ID)
//
// # Main Packages
//
// ## Domain Model
//
// [mapgraph] - The map graph: nodes keyed by map id, each holding an image
// reference and hotspot regions in percent coordinates. Graphs are
// immutable; every mutation validates and returns a new graph, so history
// entries and concurrent readers keep consistent snapshots.
//
// [geometry] - Coordinate transforms between screen pixels and the
// canonical percent space, plus drag-rectangle resolution for drawing
// hotspots.
//
// ## Interaction
//
// [navigate] - Navigation over a graph: a current map and a history stack,
// with graph swaps that repair the position when edits remove maps.
//
// [viewstate] - Per-map pan/zoom cache so returning to a map restores the
// view it was left in.
//
// [editstate] - Edit-action state machine gating the draw, delete, and
// edit handshakes. Frontends arm a tool, act, then confirm or cancel.
//
// [session] - The facade tying the engine together. Produces
// [session.Frame] snapshots for frontends and routes every mutation
// through the graph, including the addressed mutations used by the
// HTTP API.
//
// ## Serialization and Persistence
//
// [document] - JSON codec with normalization: id minting, hotspot
// clamping, duplicate repair, and orphan reporting. Loads from files and,
// via [httputil], from URLs.
//
// [docstore] - Named document persistence with file, memory, Redis, and
// MongoDB backends behind one interface.
//
// [httputil] - Retrying HTTP fetch with TTL response caching.
//
// ## Rendering
//
// [render] - Hierarchy overviews: DOT generation plus SVG/PNG
// rasterization through Graphviz, cached by graph content via [cache].
//
// [cache] - Content-addressed render cache (file, memory, null) with a
// pluggable [cache.Keyer].
//
// ## Support
//
// [errors] - Coded errors with user-safe messages; codes map to exit
// codes in the CLI and status codes in the HTTP API.
//
// [observability] - Hook points for session and store instrumentation.
//
// [buildinfo] - Build metadata stamped at link time.
//
// # Common Workflows
//
// Draw a new hotspot through the drawing handshake:
//
//	sess.SetEditEnabled(true)
//	sess.SetEditAction(editstate.ModeDraw)
//	rect, ok, _ := sess.DrawRect(geometry.Point{X: 120, Y: 80}, geometry.Point{X: 360, Y: 240})
//	id, _ := sess.ConfirmDraw(session.NewHotspot{
//	    Title:       "Cellar",
//	    LinkType:    mapgraph.LinkMap,
//	    LinkToMapID: "cellar",
//	})
//
// Render an overview of the whole hierarchy:
//
//	r := render.NewRenderer(cache.NewFileCache(dir), nil, logger)
//	svg, hit, _ := r.Overview(ctx, sess.Graph(), render.FormatSVG, render.Options{Labels: true})
//
// # Testing
//
// Run tests:
//
//	go test ./pkg/...            # All tests
//	go test ./pkg/mapgraph/...   # Specific package
//	go test -run Example         # Examples only
//
// [mapgraph]: https://pkg.go.dev/github.com/matzehuels/atlas/pkg/mapgraph
// [geometry]: https://pkg.go.dev/github.com/matzehuels/atlas/pkg/geometry
// [navigate]: https://pkg.go.dev/github.com/matzehuels/atlas/pkg/navigate
// [viewstate]: https://pkg.go.dev/github.com/matzehuels/atlas/pkg/viewstate
// [editstate]: https://pkg.go.dev/github.com/matzehuels/atlas/pkg/editstate
// [session]: https://pkg.go.dev/github.com/matzehuels/atlas/pkg/session
// [session.Frame]: https://pkg.go.dev/github.com/matzehuels/atlas/pkg/session#Frame
// [document]: https://pkg.go.dev/github.com/matzehuels/atlas/pkg/document
// [docstore]: https://pkg.go.dev/github.com/matzehuels/atlas/pkg/docstore
// [httputil]: https://pkg.go.dev/github.com/matzehuels/atlas/pkg/httputil
// [render]: https://pkg.go.dev/github.com/matzehuels/atlas/pkg/render
// [cache]: https://pkg.go.dev/github.com/matzehuels/atlas/pkg/cache
// [cache.Keyer]: https://pkg.go.dev/github.com/matzehuels/atlas/pkg/cache#Keyer
// [errors]: https://pkg.go.dev/github.com/matzehuels/atlas/pkg/errors
// [observability]: https://pkg.go.dev/github.com/matzehuels/atlas/pkg/observability
// [buildinfo]: https://pkg.go.dev/github.com/matzehuels/atlas/pkg/buildinfo
package pkg
