// Package mapgraph holds the document's map graph: a flat id-keyed arena of
// map nodes whose map-type hotspots form directed edges. The graph is not
// required to be acyclic or connected; unreachable nodes are permitted
// transiently and cleaned up by deletion's orphan scan.
//
// Every mutation follows an immutable-update discipline: it returns a new
// *Graph (sharing untouched nodes with the receiver) or an error, and never
// modifies the receiver. Callers hold exactly one current graph reference
// and swap it atomically on success, so no reader ever observes a
// half-updated graph.
package mapgraph

import (
	"maps"
	"slices"

	"github.com/matzehuels/atlas/pkg/errors"
)

// Graph is the document: a mapping from map id to node. Edges are id
// lookups, never embedded node references, so cloning and orphan scanning
// stay trivial.
//
// The zero value is not usable; use New or FromNodes. Graph values are
// effectively immutable once built: mutate through AddHotspot,
// UpdateHotspot, DeleteHotspot and SetMapImage, each of which returns a
// new graph.
type Graph struct {
	nodes map[string]*MapNode
}

// New returns an empty graph.
func New() *Graph {
	return &Graph{nodes: make(map[string]*MapNode)}
}

// FromNodes builds a graph from the given nodes. Hotspot defaults (minted
// ids, blank url target) are applied before validation. Fails on an invalid
// node or a duplicate map id; duplicate hotspot ids across maps are not
// checked.
func FromNodes(nodes ...MapNode) (*Graph, error) {
	g := New()
	for _, n := range nodes {
		node := n.clone()
		if node.Hotspots == nil {
			node.Hotspots = []Hotspot{}
		}
		for i, h := range node.Hotspots {
			node.Hotspots[i] = h.normalized()
		}
		if err := node.Validate(); err != nil {
			return nil, err
		}
		if _, exists := g.nodes[node.ID]; exists {
			return nil, errors.New(errors.ErrCodeDuplicateMapID,
				"map %q defined twice", node.ID)
		}
		g.nodes[node.ID] = node
	}
	return g, nil
}

// Len returns the number of map nodes.
func (g *Graph) Len() int { return len(g.nodes) }

// Has reports whether a map with the given id exists.
func (g *Graph) Has(id string) bool {
	_, ok := g.nodes[id]
	return ok
}

// Node returns a deep copy of the map with the given id. Modifying the
// returned value never affects the graph; mutate through the graph's
// operations instead.
func (g *Graph) Node(id string) (MapNode, bool) {
	n, ok := g.nodes[id]
	if !ok {
		return MapNode{}, false
	}
	return *n.clone(), true
}

// IDs returns all map ids in sorted order for deterministic iteration.
func (g *Graph) IDs() []string {
	return slices.Sorted(maps.Keys(g.nodes))
}

// Nodes returns deep copies of all nodes, sorted by id.
func (g *Graph) Nodes() []MapNode {
	out := make([]MapNode, 0, len(g.nodes))
	for _, id := range g.IDs() {
		out = append(out, *g.nodes[id].clone())
	}
	return out
}

// FindHotspot locates a hotspot by map and hotspot id.
func (g *Graph) FindHotspot(mapID, hotspotID string) (Hotspot, bool) {
	n, ok := g.nodes[mapID]
	if !ok {
		return Hotspot{}, false
	}
	i := n.FindHotspot(hotspotID)
	if i < 0 {
		return Hotspot{}, false
	}
	return n.Hotspots[i], true
}

// References counts map-type hotspots anywhere in the graph that point at
// mapID. A node with zero references is an orphan candidate.
func (g *Graph) References(mapID string) int {
	count := 0
	for _, n := range g.nodes {
		for _, h := range n.Hotspots {
			if h.IsMapLink() && h.LinkToMapID == mapID {
				count++
			}
		}
	}
	return count
}

// HotspotCount returns the total number of hotspots across all maps.
func (g *Graph) HotspotCount() int {
	total := 0
	for _, n := range g.nodes {
		total += len(n.Hotspots)
	}
	return total
}

// InferRoot picks the document's entry map: the first id in sorted order
// that no map-type hotspot references. When every node is referenced (the
// graph is cyclic), it falls back to the first sorted id. Returns "" for an
// empty graph.
func (g *Graph) InferRoot() string {
	ids := g.IDs()
	for _, id := range ids {
		if g.References(id) == 0 {
			return id
		}
	}
	if len(ids) > 0 {
		return ids[0]
	}
	return ""
}

// Unreachable returns the ids of maps that cannot be reached from the
// given start map by following map-type hotspots, in sorted order. Used for
// document inspection; unreachable maps are legal.
func (g *Graph) Unreachable(from string) []string {
	seen := make(map[string]bool, len(g.nodes))
	var walk func(id string)
	walk = func(id string) {
		n, ok := g.nodes[id]
		if !ok || seen[id] {
			return
		}
		seen[id] = true
		for _, h := range n.Hotspots {
			if h.IsMapLink() {
				walk(h.LinkToMapID)
			}
		}
	}
	walk(from)

	var out []string
	for _, id := range g.IDs() {
		if !seen[id] {
			out = append(out, id)
		}
	}
	return out
}

// shallow returns a new graph sharing every node with the receiver.
// Mutations replace the touched nodes with fresh clones before returning.
func (g *Graph) shallow() *Graph {
	nodes := make(map[string]*MapNode, len(g.nodes))
	maps.Copy(nodes, g.nodes)
	return &Graph{nodes: nodes}
}

// =============================================================================
// Mutations
// =============================================================================

// AddHotspot appends a hotspot to the target map and returns the new graph.
// The hotspot is normalized first: an empty id is minted, a url link
// without a target defaults to blank.
//
// For a map-type hotspot a new empty map node keyed by the hotspot's
// LinkToMapID is created with newMapImageURL as its image. This fails with
// DUPLICATE_MAP_ID when that id already exists; silently overwriting a
// populated map is never acceptable. For url-type hotspots newMapImageURL
// is ignored.
//
// On any error the receiver is unchanged and the returned graph is nil.
func (g *Graph) AddHotspot(targetMapID string, h Hotspot, newMapImageURL string) (*Graph, error) {
	target, ok := g.nodes[targetMapID]
	if !ok {
		return nil, errors.New(errors.ErrCodeMapNotFound, "map %q not found", targetMapID)
	}

	h = h.normalized()
	if err := h.Validate(); err != nil {
		return nil, err
	}

	var linked *MapNode
	if h.IsMapLink() {
		if _, exists := g.nodes[h.LinkToMapID]; exists {
			return nil, errors.New(errors.ErrCodeDuplicateMapID,
				"map %q already exists", h.LinkToMapID)
		}
		if newMapImageURL != "" {
			if err := errors.ValidateImageRef(newMapImageURL); err != nil {
				return nil, err
			}
		}
		linked = &MapNode{ID: h.LinkToMapID, ImageURL: newMapImageURL, Hotspots: []Hotspot{}}
	}

	next := g.shallow()
	updated := target.clone()
	updated.Hotspots = append(updated.Hotspots, h)
	next.nodes[targetMapID] = updated
	if linked != nil {
		next.nodes[linked.ID] = linked
	}
	return next, nil
}

// HotspotPatch carries the fields UpdateHotspot may replace. Nil pointers
// mean "leave unchanged". When LinkType switches variants, the old
// variant's payload is cleared whether or not the patch names it.
type HotspotPatch struct {
	Title       *string    `json:"title,omitempty" bson:"title,omitempty"`
	LinkType    *LinkType  `json:"linkType,omitempty" bson:"linkType,omitempty"`
	LinkToMapID *string    `json:"linkToMapId,omitempty" bson:"linkToMapId,omitempty"`
	LinkedURL   *string    `json:"linkedUrl,omitempty" bson:"linkedUrl,omitempty"`
	URLTarget   *URLTarget `json:"urlTarget,omitempty" bson:"urlTarget,omitempty"`
}

// UpdateHotspot applies a partial update to one hotspot and returns the new
// graph. Fails when the map or hotspot is missing, or when the patched
// hotspot no longer validates (for example switching to a map link without
// supplying LinkToMapID).
//
// Switching link type does not create any map node; only AddHotspot does
// that. A map link patched to point at a not-yet-existing map is permitted,
// matching the transient dangling references the data model allows.
func (g *Graph) UpdateHotspot(targetMapID, hotspotID string, patch HotspotPatch) (*Graph, error) {
	target, ok := g.nodes[targetMapID]
	if !ok {
		return nil, errors.New(errors.ErrCodeMapNotFound, "map %q not found", targetMapID)
	}
	i := target.FindHotspot(hotspotID)
	if i < 0 {
		return nil, errors.New(errors.ErrCodeHotspotNotFound,
			"hotspot %q not found on map %q", hotspotID, targetMapID)
	}

	h := target.Hotspots[i]
	if patch.Title != nil {
		h.Title = *patch.Title
	}
	if patch.LinkType != nil && *patch.LinkType != h.LinkType {
		// Variant switch: the previous payload must not survive.
		h.LinkType = *patch.LinkType
		h.LinkToMapID = ""
		h.LinkedURL = ""
		h.URLTarget = ""
	}
	if patch.LinkToMapID != nil {
		h.LinkToMapID = *patch.LinkToMapID
	}
	if patch.LinkedURL != nil {
		h.LinkedURL = *patch.LinkedURL
	}
	if patch.URLTarget != nil {
		h.URLTarget = *patch.URLTarget
	}
	h = h.normalized()
	if err := h.Validate(); err != nil {
		return nil, err
	}

	next := g.shallow()
	updated := target.clone()
	updated.Hotspots[i] = h
	next.nodes[targetMapID] = updated
	return next, nil
}

// DeleteResult reports what DeleteHotspot did.
type DeleteResult struct {
	// Deleted is false when the hotspot (or its map) was already gone and
	// the delete degraded to a warning.
	Deleted bool
	// OrphanRemoved names the map node removed by the orphan scan, or "".
	OrphanRemoved string
	// Warning is set for the already-gone case.
	Warning *Warning
}

// DeleteHotspot removes a hotspot and returns the new graph. Deleting a
// hotspot that is already absent (or whose map is absent) is not an error:
// the receiver is returned unchanged with a warning, keeping deletion
// idempotent.
//
// When the removed hotspot was a map link, every remaining hotspot in the
// graph is scanned; if none still references the linked map, that orphaned
// node is removed too. The scan is single-level: maps orphaned only as a
// second-order effect of removing the orphan are left in place. This is a
// known limitation, not an oversight.
func (g *Graph) DeleteHotspot(targetMapID, hotspotID string) (*Graph, DeleteResult, error) {
	target, ok := g.nodes[targetMapID]
	if !ok {
		return g, DeleteResult{Warning: &Warning{
			Op:      "delete",
			Message: "map " + targetMapID + " not found, nothing to delete",
		}}, nil
	}
	i := target.FindHotspot(hotspotID)
	if i < 0 {
		return g, DeleteResult{Warning: &Warning{
			Op:      "delete",
			Message: "hotspot " + hotspotID + " already gone from map " + targetMapID,
		}}, nil
	}

	removed := target.Hotspots[i]
	next := g.shallow()
	updated := target.clone()
	updated.Hotspots = append(updated.Hotspots[:i], updated.Hotspots[i+1:]...)
	next.nodes[targetMapID] = updated

	res := DeleteResult{Deleted: true}
	if removed.IsMapLink() && next.References(removed.LinkToMapID) == 0 {
		if _, exists := next.nodes[removed.LinkToMapID]; exists {
			delete(next.nodes, removed.LinkToMapID)
			res.OrphanRemoved = removed.LinkToMapID
		}
	}
	return next, res, nil
}

// SetMapImage replaces a map's background image and returns the new graph.
// The reference must be non-empty and pass the URL-or-absolute-path check.
func (g *Graph) SetMapImage(mapID, imageURL string) (*Graph, error) {
	target, ok := g.nodes[mapID]
	if !ok {
		return nil, errors.New(errors.ErrCodeMapNotFound, "map %q not found", mapID)
	}
	if err := errors.ValidateImageRef(imageURL); err != nil {
		return nil, err
	}

	next := g.shallow()
	updated := target.clone()
	updated.ImageURL = imageURL
	next.nodes[mapID] = updated
	return next, nil
}
