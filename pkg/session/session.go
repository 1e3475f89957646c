// Package session wires the map graph, navigation, edit state, and view
// transforms into one interactive explorer session.
//
// A Session is the single entry point for a presentation layer: it receives
// discrete user events (clicks, drawn rectangles, button presses, document
// loads) and answers with a [Frame] describing exactly what to put on
// screen. All graph mutations flow through here so that navigation, the
// edit machine, and the view-transform cache observe every change.
//
// # Architecture
//
// The session composes four independent pieces:
//
//   - mapgraph.Graph: the immutable document (maps + hotspots)
//   - navigate.Navigator: current map and history stack
//   - editstate.Machine: which editing tool is active
//   - viewstate.Cache: per-map pan/zoom, with a generation tag
//
// Mutations never change a graph in place. Each one produces a new graph
// which is atomically swapped into the navigator; if the swap removes the
// map the operator is looking at, the session degrades to "no map
// selected" instead of crashing and back navigation recovers.
//
// # Usage
//
//	g, warnings, err := document.Unmarshal(raw)
//	if err != nil {
//	    return err
//	}
//	sess, err := session.New(g, "", logger) // "" infers the root map
//	if err != nil {
//	    return err
//	}
//
//	frame, _ := sess.Frame()
//	// render frame, then feed events back:
//	result, err := sess.ClickHotspot(id)
//
// Sessions are single-operator and not safe for concurrent use. The one
// exception is ApplyFit, which is safe to call from an image-load
// callback; the generation tag discards results that arrive after the
// operator has moved on.
package session

import (
	"github.com/charmbracelet/log"

	"github.com/matzehuels/atlas/pkg/document"
	"github.com/matzehuels/atlas/pkg/editstate"
	"github.com/matzehuels/atlas/pkg/errors"
	"github.com/matzehuels/atlas/pkg/geometry"
	"github.com/matzehuels/atlas/pkg/mapgraph"
	"github.com/matzehuels/atlas/pkg/navigate"
	"github.com/matzehuels/atlas/pkg/observability"
	"github.com/matzehuels/atlas/pkg/viewstate"
)

// Session is an interactive explorer over one map document.
type Session struct {
	nav    *navigate.Navigator
	edit   *editstate.Machine
	views  *viewstate.Cache
	canvas geometry.Canvas
	logger *log.Logger

	// draft holds a drawn rectangle awaiting its link fields.
	draft *geometry.Rect
}

// New starts a session on g at rootID. An empty rootID picks the
// document's inferred root (first unreferenced map in sorted order).
// A nil logger falls back to log.Default().
func New(g *mapgraph.Graph, rootID string, logger *log.Logger) (*Session, error) {
	if logger == nil {
		logger = log.Default()
	}
	if rootID == "" {
		rootID = g.InferRoot()
		if rootID == "" {
			return nil, errors.New(errors.ErrCodeInvalidDocument, "document contains no maps")
		}
	}
	nav, err := navigate.New(g, rootID)
	if err != nil {
		return nil, err
	}
	return &Session{
		nav:    nav,
		edit:   editstate.New(),
		views:  viewstate.New(),
		canvas: geometry.DefaultCanvas,
		logger: logger,
	}, nil
}

// Graph returns the current document graph.
func (s *Session) Graph() *mapgraph.Graph { return s.nav.Graph() }

// Mode returns the current edit mode.
func (s *Session) Mode() editstate.Mode { return s.edit.Mode() }

// CurrentMapID returns the map the operator is viewing, or "" when the
// session is degraded.
func (s *Session) CurrentMapID() string { return s.nav.Current() }

// Path returns the navigation trail for breadcrumb display: the history
// from the entry map down, with the current map last. Degraded sessions
// return just the history.
func (s *Session) Path() []string {
	trail := s.nav.History()
	if cur := s.nav.Current(); cur != "" {
		trail = append(trail, cur)
	}
	return trail
}

// currentID is the shared guard for operations that need a live map.
func (s *Session) currentID() (string, error) {
	id := s.nav.Current()
	if id == "" {
		return "", errors.New(errors.ErrCodeConsistency, "no map selected")
	}
	return id, nil
}

// =============================================================================
// Navigation
// =============================================================================

// NavigateToChild descends into the given map. On success the view
// generation advances so stale fit results for the previous map are
// discarded.
func (s *Session) NavigateToChild(mapID string) error {
	from := s.nav.Current()
	if err := s.nav.ToChild(mapID); err != nil {
		return err
	}
	s.views.Bump()
	s.logger.Debug("navigated", "from", from, "to", mapID, "depth", s.nav.Depth())
	observability.Session().OnNavigate(from, mapID, s.nav.Depth())
	return nil
}

// NavigateBack returns to the previously visited map. With empty history
// it reports (false, nil). A popped map that no longer exists yields a
// HISTORY_CORRUPTED error; the entry is consumed so a retry reaches the
// next one down.
func (s *Session) NavigateBack() (bool, error) {
	from := s.nav.Current()
	moved, err := s.nav.Back()
	if err != nil {
		s.logger.Warn("history entry points at a missing map", "from", from, "err", err)
		observability.Session().OnBack(from, "", err)
		return false, err
	}
	if moved {
		s.views.Bump()
		s.logger.Debug("navigated back", "from", from, "to", s.nav.Current())
		observability.Session().OnBack(from, s.nav.Current(), nil)
	}
	return moved, nil
}

// ClickHotspot interprets a click on a hotspot of the current map
// according to the active edit mode: selection modes record the hotspot,
// view modes follow its link. The returned result tells the presentation
// what happened; for url links it carries the address to open, since the
// core never opens anything itself.
func (s *Session) ClickHotspot(hotspotID string) (ClickResult, error) {
	current, err := s.currentID()
	if err != nil {
		return ClickResult{}, err
	}
	node, _ := s.nav.Graph().Node(current)
	idx := node.FindHotspot(hotspotID)
	if idx < 0 {
		return ClickResult{}, errors.New(errors.ErrCodeHotspotNotFound,
			"hotspot %q not on map %q", hotspotID, current)
	}
	h := node.Hotspots[idx]

	switch s.edit.Mode() {
	case editstate.ModeSelectDelete:
		if err := s.edit.MarkForDelete(hotspotID); err != nil {
			return ClickResult{}, err
		}
		return ClickResult{Action: ClickMarkedForDelete, HotspotID: hotspotID}, nil

	case editstate.ModeSelectEdit:
		if err := s.edit.BeginEdit(hotspotID); err != nil {
			return ClickResult{}, err
		}
		return ClickResult{Action: ClickEditStarted, HotspotID: hotspotID}, nil

	case editstate.ModeDraw, editstate.ModeEdit, editstate.ModeChangeImage:
		// Clicks mean nothing while a drawing, modal edit, or image swap
		// is in progress.
		return ClickResult{Action: ClickIgnored, HotspotID: hotspotID}, nil

	default:
		if h.IsMapLink() {
			if err := s.NavigateToChild(h.LinkToMapID); err != nil {
				return ClickResult{}, err
			}
			return ClickResult{Action: ClickNavigated, HotspotID: hotspotID, MapID: h.LinkToMapID}, nil
		}
		return ClickResult{
			Action:    ClickOpenURL,
			HotspotID: hotspotID,
			URL:       h.LinkedURL,
			Target:    h.URLTarget,
		}, nil
	}
}

// =============================================================================
// Edit mode
// =============================================================================

// SetEditEnabled toggles editing globally. Disabling resets the edit
// machine and discards any drawn-but-unconfirmed rectangle.
func (s *Session) SetEditEnabled(on bool) {
	s.edit.SetEnabled(on)
	if !on {
		s.draft = nil
	}
}

// SetEditAction selects an editing tool. Leaving draw mode discards an
// unconfirmed rectangle.
func (s *Session) SetEditAction(mode editstate.Mode) error {
	if err := s.edit.SetMode(mode); err != nil {
		return err
	}
	if mode != editstate.ModeDraw {
		s.draft = nil
	}
	return nil
}

// =============================================================================
// Drawing new hotspots
// =============================================================================

// DrawRect converts a completed drag gesture into a draft hotspot
// rectangle. Only meaningful in draw mode; anywhere else the gesture is
// rejected. Returns (rect, false, nil) when the drag was too small to be
// intentional; that is a discard, not an error. An accepted draft
// replaces any previous one and waits for ConfirmDraw or CancelDraw.
func (s *Session) DrawRect(start, end geometry.Point) (geometry.Rect, bool, error) {
	if !s.edit.DrawingEnabled() {
		return geometry.Rect{}, false, errors.New(errors.ErrCodeInvalidInput,
			"drawing requires draw mode (current: %s)", s.edit.Mode())
	}
	current, err := s.currentID()
	if err != nil {
		return geometry.Rect{}, false, err
	}
	t, ok := s.views.Get(current)
	if !ok {
		t = geometry.Identity()
	}
	rect, ok := geometry.HotspotFromDrag(start, end, t, s.canvas)
	if !ok {
		return geometry.Rect{}, false, nil
	}
	s.draft = &rect
	return rect, true, nil
}

// PendingDraw returns the draft rectangle awaiting link fields, if any.
func (s *Session) PendingDraw() (geometry.Rect, bool) {
	if s.draft == nil {
		return geometry.Rect{}, false
	}
	return *s.draft, true
}

// NewHotspot carries the link fields for a drawn rectangle.
type NewHotspot struct {
	Title       string
	LinkType    mapgraph.LinkType
	LinkToMapID string
	LinkedURL   string
	URLTarget   mapgraph.URLTarget

	// NewMapImageURL seeds the background of a freshly created map when
	// LinkType is map. Ignored for url links.
	NewMapImageURL string
}

// ConfirmDraw combines the pending draft rectangle with its link fields
// and adds the hotspot to the current map. A map link to an unknown id
// also creates that map. Returns the new hotspot's id; the draft is kept
// on failure so the dialog can correct its fields and retry.
func (s *Session) ConfirmDraw(spec NewHotspot) (string, error) {
	current, err := s.currentID()
	if err != nil {
		return "", err
	}
	if s.draft == nil {
		return "", errors.New(errors.ErrCodeInvalidInput, "no drawn rectangle pending")
	}
	h := mapgraph.Hotspot{
		ID:          mapgraph.NewHotspotID(),
		X:           s.draft.X,
		Y:           s.draft.Y,
		Width:       s.draft.W,
		Height:      s.draft.H,
		Title:       spec.Title,
		LinkType:    spec.LinkType,
		LinkToMapID: spec.LinkToMapID,
		LinkedURL:   spec.LinkedURL,
		URLTarget:   spec.URLTarget,
	}
	next, err := s.nav.Graph().AddHotspot(current, h, spec.NewMapImageURL)
	observability.Session().OnMutation("add-hotspot", current, err)
	if err != nil {
		return "", err
	}
	s.swapGraph(next, "add-hotspot")
	s.draft = nil
	s.logger.Info("added hotspot", "map", current, "hotspot", h.ID, "link", string(h.LinkType))
	return h.ID, nil
}

// CancelDraw discards the pending draft rectangle.
func (s *Session) CancelDraw() { s.draft = nil }

// =============================================================================
// Deleting hotspots
// =============================================================================

// SelectForDeletion marks a hotspot of the current map as the pending
// delete target. The hotspot must exist; deletion happens only on
// ConfirmDeletion.
func (s *Session) SelectForDeletion(hotspotID string) error {
	current, err := s.currentID()
	if err != nil {
		return err
	}
	if _, ok := s.nav.Graph().FindHotspot(current, hotspotID); !ok {
		return errors.New(errors.ErrCodeHotspotNotFound,
			"hotspot %q not on map %q", hotspotID, current)
	}
	return s.edit.MarkForDelete(hotspotID)
}

// ConfirmDeletion removes the hotspot from the current map. Deleting a
// hotspot that is already gone is a soft warning, not a failure. If the
// removed hotspot was the last reference to a map, that map is swept out
// of the document too; reaching the swept map through the current view is
// handled by degrading gracefully.
func (s *Session) ConfirmDeletion(hotspotID string) (mapgraph.DeleteResult, error) {
	current, err := s.currentID()
	if err != nil {
		return mapgraph.DeleteResult{}, err
	}
	next, result, err := s.nav.Graph().DeleteHotspot(current, hotspotID)
	observability.Session().OnMutation("delete-hotspot", current, err)
	if err != nil {
		return mapgraph.DeleteResult{}, err
	}
	s.edit.ClearPending()
	if result.Warning != nil {
		s.logger.Warn("delete skipped", "map", current, "hotspot", hotspotID,
			"reason", result.Warning.Message)
		return result, nil
	}
	if result.OrphanRemoved != "" {
		s.views.Forget(result.OrphanRemoved)
		s.logger.Info("removed orphaned map", "map", result.OrphanRemoved)
	}
	s.swapGraph(next, "delete-hotspot")
	s.logger.Info("deleted hotspot", "map", current, "hotspot", hotspotID)
	return result, nil
}

// =============================================================================
// Editing hotspots
// =============================================================================

// SelectForEdit opens a modal edit for a hotspot of the current map.
func (s *Session) SelectForEdit(hotspotID string) error {
	current, err := s.currentID()
	if err != nil {
		return err
	}
	if _, ok := s.nav.Graph().FindHotspot(current, hotspotID); !ok {
		return errors.New(errors.ErrCodeHotspotNotFound,
			"hotspot %q not on map %q", hotspotID, current)
	}
	return s.edit.BeginEdit(hotspotID)
}

// SubmitEdit applies the dialog's changed fields to the hotspot under
// edit. On success the modal closes; on a validation failure it stays
// open with state untouched so the operator can correct and resubmit.
func (s *Session) SubmitEdit(patch mapgraph.HotspotPatch) error {
	current, err := s.currentID()
	if err != nil {
		return err
	}
	subject := s.edit.EditSubject()
	if subject == "" {
		return errors.New(errors.ErrCodeInvalidInput, "no hotspot under edit")
	}
	next, err := s.nav.Graph().UpdateHotspot(current, subject, patch)
	observability.Session().OnMutation("update-hotspot", current, err)
	if err != nil {
		return err
	}
	s.swapGraph(next, "update-hotspot")
	s.edit.EndEdit()
	s.logger.Info("updated hotspot", "map", current, "hotspot", subject)
	return nil
}

// CancelEdit closes the modal edit without touching the graph.
func (s *Session) CancelEdit() { s.edit.EndEdit() }

// =============================================================================
// Addressed mutations
// =============================================================================
//
// Pointer-driven frontends mutate the current map through the draw and
// select handshakes above. Frontends that address maps directly (the
// HTTP API) use these instead; they skip the edit machine entirely and
// leave its state alone.

// AddHotspot adds a hotspot to the given map. Geometry arrives in
// canonical percentages; an empty id is minted. A map link to an unknown
// id also creates that map, seeded with newMapImageURL. Returns the
// hotspot's id.
func (s *Session) AddHotspot(mapID string, h mapgraph.Hotspot, newMapImageURL string) (string, error) {
	if h.ID == "" {
		h.ID = mapgraph.NewHotspotID()
	}
	next, err := s.nav.Graph().AddHotspot(mapID, h, newMapImageURL)
	observability.Session().OnMutation("add-hotspot", mapID, err)
	if err != nil {
		return "", err
	}
	s.swapGraph(next, "add-hotspot")
	s.logger.Info("added hotspot", "map", mapID, "hotspot", h.ID, "link", string(h.LinkType))
	return h.ID, nil
}

// UpdateHotspot applies a partial update to a hotspot of the given map.
func (s *Session) UpdateHotspot(mapID, hotspotID string, patch mapgraph.HotspotPatch) error {
	next, err := s.nav.Graph().UpdateHotspot(mapID, hotspotID, patch)
	observability.Session().OnMutation("update-hotspot", mapID, err)
	if err != nil {
		return err
	}
	s.swapGraph(next, "update-hotspot")
	s.logger.Info("updated hotspot", "map", mapID, "hotspot", hotspotID)
	return nil
}

// DeleteHotspot removes a hotspot from the given map without the
// mark-then-confirm handshake. The soft warning for an already-absent
// hotspot and the orphan sweep behave exactly like ConfirmDeletion.
func (s *Session) DeleteHotspot(mapID, hotspotID string) (mapgraph.DeleteResult, error) {
	next, result, err := s.nav.Graph().DeleteHotspot(mapID, hotspotID)
	observability.Session().OnMutation("delete-hotspot", mapID, err)
	if err != nil {
		return mapgraph.DeleteResult{}, err
	}
	if result.Warning != nil {
		s.logger.Warn("delete skipped", "map", mapID, "hotspot", hotspotID,
			"reason", result.Warning.Message)
		return result, nil
	}
	if result.OrphanRemoved != "" {
		s.views.Forget(result.OrphanRemoved)
		s.logger.Info("removed orphaned map", "map", result.OrphanRemoved)
	}
	s.swapGraph(next, "delete-hotspot")
	s.logger.Info("deleted hotspot", "map", mapID, "hotspot", hotspotID)
	return result, nil
}

// =============================================================================
// Map image and documents
// =============================================================================

// ChangeMapImage replaces the background image of the given map. If the
// change-image tool was active it returns to idle afterwards.
func (s *Session) ChangeMapImage(mapID, imageURL string) error {
	next, err := s.nav.Graph().SetMapImage(mapID, imageURL)
	observability.Session().OnMutation("set-map-image", mapID, err)
	if err != nil {
		return err
	}
	s.swapGraph(next, "set-map-image")
	if s.edit.Mode() == editstate.ModeChangeImage {
		if err := s.edit.SetMode(editstate.ModeIdle); err != nil {
			return err
		}
	}
	s.logger.Info("changed map image", "map", mapID, "image", imageURL)
	return nil
}

// LoadDocument parses raw document bytes and, if they normalize into a
// usable graph, replaces the whole document: navigation restarts at the
// new root, edit state and view transforms reset, history clears. On any
// failure the session keeps its current document untouched. Returned
// warnings describe entries the normalizer had to drop or repair.
func (s *Session) LoadDocument(raw []byte) ([]mapgraph.Warning, error) {
	g, warnings, err := document.Unmarshal(raw)
	if err != nil {
		return nil, err
	}
	root := g.InferRoot()
	if err := s.nav.Load(g, root); err != nil {
		return nil, err
	}
	s.edit.Reset()
	s.views.Reset()
	s.draft = nil
	s.logger.Info("loaded document",
		"maps", g.Len(), "hotspots", g.HotspotCount(), "root", root, "warnings", len(warnings))
	observability.Session().OnDocumentLoaded(g.Len(), g.HotspotCount(), len(warnings))
	return warnings, nil
}

// Export serializes the current graph in the interchange format. The
// output is deterministic and round-trips through LoadDocument.
func (s *Session) Export() ([]byte, error) {
	return document.Marshal(s.nav.Graph())
}

// =============================================================================
// View transforms
// =============================================================================

// SetViewTransform records the pan/zoom for the current map, so returning
// to it later restores the same view.
func (s *Session) SetViewTransform(t geometry.Transform) error {
	current, err := s.currentID()
	if err != nil {
		return err
	}
	if !t.Valid() {
		return errors.New(errors.ErrCodeInvalidInput, "view transform must have positive finite scale")
	}
	s.views.Set(current, t)
	return nil
}

// ResetView forgets the current map's stored transform; the next Frame
// reports NeedsFit so the presentation recomputes fit-to-container.
func (s *Session) ResetView() {
	if current := s.nav.Current(); current != "" {
		s.views.Forget(current)
	}
}

// ViewGeneration returns the tag to capture before starting an
// asynchronous fit computation.
func (s *Session) ViewGeneration() uint64 { return s.views.Generation() }

// ApplyFit stores a fit-to-container transform computed from natural
// image and container dimensions, unless the session has navigated or
// loaded another document since gen was captured. Safe to call from an
// image-load callback. Reports whether the transform was applied.
func (s *Session) ApplyFit(gen uint64, mapID string, imageW, imageH, containerW, containerH float64) bool {
	t := geometry.FitTransform(imageW, imageH, containerW, containerH)
	return s.views.SetIfCurrent(gen, mapID, t)
}

// swapGraph installs the mutated graph and degrades loudly if the current
// map did not survive.
func (s *Session) swapGraph(next *mapgraph.Graph, op string) {
	lost := s.nav.Current()
	if s.nav.SetGraph(next) {
		return
	}
	s.views.Forget(lost)
	s.logger.Error("current map removed from document", "map", lost, "op", op)
	observability.Session().OnDegraded(lost)
}
