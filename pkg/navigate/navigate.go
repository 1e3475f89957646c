// Package navigate tracks the operator's position in a map graph: the
// current map plus the stack of maps they descended through.
//
// The navigator never owns the graph. Mutations happen elsewhere and the
// resulting graph is handed back via [Navigator.SetGraph]; the navigator
// only checks that its own position survived the change. History entries
// are validated lazily, when a back step actually lands on them.
package navigate

import (
	"slices"

	"github.com/matzehuels/atlas/pkg/errors"
	"github.com/matzehuels/atlas/pkg/mapgraph"
)

// Display is the read-only projection of the current map handed to a
// presentation layer. Hotspots carry canonical percentage coordinates;
// converting them to screen space is the caller's concern.
type Display struct {
	MapID     string             `json:"mapId"`
	ImageURL  string             `json:"imageUrl"`
	Hotspots  []mapgraph.Hotspot `json:"hotspots"`
	CanGoBack bool               `json:"canGoBack"`
}

// Navigator holds the current map id and the visit history. Most-recent
// history entry is last. Not safe for concurrent use.
type Navigator struct {
	graph   *mapgraph.Graph
	current string
	history []string
}

// New starts a navigator at rootID with empty history. Fails if the root
// is absent so a bad entry point surfaces immediately instead of as a
// blank first screen.
func New(g *mapgraph.Graph, rootID string) (*Navigator, error) {
	if g == nil {
		return nil, errors.New(errors.ErrCodeInvalidInput, "navigator requires a graph")
	}
	if err := errors.ValidateMapID(rootID); err != nil {
		return nil, err
	}
	if !g.Has(rootID) {
		return nil, errors.New(errors.ErrCodeMapNotFound, "root map %q not in document", rootID)
	}
	return &Navigator{graph: g, current: rootID}, nil
}

// Current returns the current map id, or "" when degraded.
func (n *Navigator) Current() string { return n.current }

// Degraded reports whether the current map was lost, typically because a
// graph mutation removed it. History is retained so Back still works.
func (n *Navigator) Degraded() bool { return n.current == "" }

// CanGoBack reports whether the history stack is non-empty.
func (n *Navigator) CanGoBack() bool { return len(n.history) > 0 }

// Depth returns the number of history entries.
func (n *Navigator) Depth() int { return len(n.history) }

// History returns a copy of the visit stack, most-recent last.
func (n *Navigator) History() []string {
	return slices.Clone(n.history)
}

// Graph returns the graph the navigator currently resolves ids against.
func (n *Navigator) Graph() *mapgraph.Graph { return n.graph }

// ToChild descends to mapID, pushing the current map onto the history.
// The target must exist; on failure position and history are unchanged.
func (n *Navigator) ToChild(mapID string) error {
	if err := errors.ValidateMapID(mapID); err != nil {
		return err
	}
	if !n.graph.Has(mapID) {
		return errors.New(errors.ErrCodeMapNotFound, "map %q not in document", mapID)
	}
	if n.current != "" {
		n.history = append(n.history, n.current)
	}
	n.current = mapID
	return nil
}

// Back pops the most recent history entry and returns to it. An empty
// history is a no-op, not an error. If the popped map has since been
// deleted the pop still counts, the position stays where it was, and a
// HISTORY_CORRUPTED error is returned; retrying walks further down the
// stack instead of hitting the same dead entry forever.
func (n *Navigator) Back() (bool, error) {
	if len(n.history) == 0 {
		return false, nil
	}
	last := len(n.history) - 1
	target := n.history[last]
	n.history = n.history[:last]
	if !n.graph.Has(target) {
		return false, errors.New(errors.ErrCodeHistoryCorrupted,
			"history entry %q no longer in document", target)
	}
	n.current = target
	return true, nil
}

// SetGraph swaps in a new graph after an incremental mutation. Position
// and history are kept; if the mutation removed the current map the
// navigator degrades (current cleared, history retained) and SetGraph
// reports false.
func (n *Navigator) SetGraph(g *mapgraph.Graph) bool {
	n.graph = g
	if n.current != "" && !g.Has(n.current) {
		n.current = ""
		return false
	}
	return true
}

// Load replaces the graph wholesale and restarts at rootID with empty
// history. Fails loudly if the root is absent; the navigator is left
// unchanged in that case.
func (n *Navigator) Load(g *mapgraph.Graph, rootID string) error {
	if g == nil {
		return errors.New(errors.ErrCodeInvalidInput, "navigator requires a graph")
	}
	if err := errors.ValidateMapID(rootID); err != nil {
		return err
	}
	if !g.Has(rootID) {
		return errors.New(errors.ErrCodeMapNotFound, "root map %q not in document", rootID)
	}
	n.graph = g
	n.current = rootID
	n.history = nil
	return nil
}

// Display resolves the current map into its presentation data. Returns a
// consistency error when degraded or when the current id stopped
// resolving, which means callers skipped SetGraph after a mutation.
func (n *Navigator) Display() (Display, error) {
	if n.current == "" {
		return Display{}, errors.New(errors.ErrCodeConsistency, "no map selected")
	}
	node, ok := n.graph.Node(n.current)
	if !ok {
		return Display{}, errors.New(errors.ErrCodeConsistency,
			"current map %q missing from document", n.current)
	}
	return Display{
		MapID:     node.ID,
		ImageURL:  node.ImageURL,
		Hotspots:  node.Hotspots,
		CanGoBack: n.CanGoBack(),
	}, nil
}
