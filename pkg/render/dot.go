package render

import (
	"bytes"
	"fmt"
	"path"
	"strings"

	"github.com/matzehuels/atlas/pkg/errors"
	"github.com/matzehuels/atlas/pkg/mapgraph"
)

// Options configures overview rendering.
type Options struct {
	// Rankdir sets the layout direction: TB, LR, BT or RL.
	// Empty means TB.
	Rankdir string

	// Labels adds image names and hotspot counts to map nodes, and
	// hotspot titles to edges. When false, nodes show only the map id.
	Labels bool

	// Orphans includes maps unreachable from the root, drawn dashed.
	// When false, unreachable maps and their edges are omitted.
	Orphans bool

	// URLs adds url-type hotspots as external leaf nodes.
	URLs bool
}

// normalized fills defaults and rejects unknown rankdir values.
func (o Options) normalized() (Options, error) {
	if o.Rankdir == "" {
		o.Rankdir = "TB"
	}
	switch o.Rankdir {
	case "TB", "LR", "BT", "RL":
		return o, nil
	default:
		return o, errors.New(errors.ErrCodeInvalidInput, "rankdir must be TB, LR, BT or RL, got %q", o.Rankdir)
	}
}

// ToDOT converts a map graph to Graphviz DOT format. The resulting
// string can be rendered with [SVG] or [PNG].
//
// Output is deterministic: maps are emitted in sorted id order and
// hotspots in their stored order. The root map (per InferRoot) is
// highlighted; map-type hotspots whose target is missing from the
// document get a red dashed edge to a placeholder node.
func ToDOT(g *mapgraph.Graph, opts Options) string {
	if g == nil {
		g = mapgraph.New()
	}
	rankdir := opts.Rankdir
	if rankdir == "" {
		rankdir = "TB"
	}

	root := g.InferRoot()
	hidden := make(map[string]bool)
	orphaned := make(map[string]bool)
	for _, id := range g.Unreachable(root) {
		if opts.Orphans {
			orphaned[id] = true
		} else {
			hidden[id] = true
		}
	}

	var buf bytes.Buffer
	buf.WriteString("digraph atlas {\n")
	fmt.Fprintf(&buf, "  rankdir=%s;\n", rankdir)
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  node [shape=box, style=\"rounded,filled\", fillcolor=white, fontsize=14, margin=\"0.2,0.1\"];\n")
	buf.WriteString("  ranksep=0.5;\n")
	buf.WriteString("  nodesep=0.3;\n")
	buf.WriteString("\n")

	for _, n := range g.Nodes() {
		if hidden[n.ID] {
			continue
		}
		attrs := nodeAttrs(n, n.ID == root, orphaned[n.ID], opts.Labels)
		fmt.Fprintf(&buf, "  %q [%s];\n", n.ID, strings.Join(attrs, ", "))
	}

	buf.WriteString("\n")
	missing := make(map[string]bool)
	for _, n := range g.Nodes() {
		if hidden[n.ID] {
			continue
		}
		for _, h := range n.Hotspots {
			switch {
			case h.IsMapLink():
				writeMapEdge(&buf, g, n.ID, h, opts, missing)
			case h.IsURLLink() && opts.URLs:
				leaf := "url:" + h.ID
				fmt.Fprintf(&buf, "  %q [label=%q, shape=ellipse, style=dashed, fontsize=12];\n", leaf, h.LinkedURL)
				fmt.Fprintf(&buf, "  %q -> %q [style=dashed];\n", n.ID, leaf)
			}
		}
	}

	buf.WriteString("}\n")
	return buf.String()
}

func writeMapEdge(buf *bytes.Buffer, g *mapgraph.Graph, from string, h mapgraph.Hotspot, opts Options, missing map[string]bool) {
	to := h.LinkToMapID
	var attrs []string
	if opts.Labels && h.Title != "" {
		attrs = append(attrs, fmt.Sprintf("label=%q", h.Title))
	}

	if !g.Has(to) {
		// Dangling links survive until deletion's orphan scan; show the
		// hole instead of silently inventing a plain node.
		if !missing[to] {
			missing[to] = true
			fmt.Fprintf(buf, "  %q [label=%q, color=red, style=\"rounded,dashed\"];\n", to, to+" (missing)")
		}
		attrs = append(attrs, "color=red", "style=dashed")
	}

	if len(attrs) == 0 {
		fmt.Fprintf(buf, "  %q -> %q;\n", from, to)
		return
	}
	fmt.Fprintf(buf, "  %q -> %q [%s];\n", from, to, strings.Join(attrs, ", "))
}

func nodeAttrs(n mapgraph.MapNode, isRoot, isOrphan, labels bool) []string {
	attrs := []string{fmt.Sprintf("label=%q", nodeLabel(n, labels))}
	if isRoot {
		attrs = append(attrs, "fillcolor=lightblue", "penwidth=2")
	}
	if isOrphan {
		attrs = append(attrs, "style=\"rounded,filled,dashed\"", "fillcolor=lightgrey")
	}
	return attrs
}

func nodeLabel(n mapgraph.MapNode, labels bool) string {
	if !labels {
		return n.ID
	}
	parts := []string{
		"image: " + imageBase(n.ImageURL),
		fmt.Sprintf("hotspots: %d", len(n.Hotspots)),
	}
	return n.ID + "\n" + strings.Join(parts, "\n")
}

// imageBase shortens an image reference to its final path element so
// labels stay readable for long URLs.
func imageBase(ref string) string {
	if i := strings.IndexAny(ref, "?#"); i >= 0 {
		ref = ref[:i]
	}
	if ref == "" {
		return ref
	}
	return path.Base(ref)
}
