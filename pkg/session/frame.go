package session

import (
	"github.com/matzehuels/atlas/pkg/editstate"
	"github.com/matzehuels/atlas/pkg/geometry"
	"github.com/matzehuels/atlas/pkg/mapgraph"
)

// Click outcomes reported by ClickHotspot.
const (
	// ClickNavigated means the session followed a map link.
	ClickNavigated = "navigated"

	// ClickOpenURL asks the presentation to open the result's URL.
	ClickOpenURL = "open-url"

	// ClickMarkedForDelete recorded the hotspot as the pending delete target.
	ClickMarkedForDelete = "marked-for-delete"

	// ClickEditStarted opened a modal edit for the hotspot.
	ClickEditStarted = "edit-started"

	// ClickIgnored means the click carries no meaning in the current mode.
	ClickIgnored = "ignored"
)

// ClickResult describes what a hotspot click did.
type ClickResult struct {
	Action    string             `json:"action"`
	HotspotID string             `json:"hotspotId"`
	MapID     string             `json:"mapId,omitempty"`
	URL       string             `json:"url,omitempty"`
	Target    mapgraph.URLTarget `json:"urlTarget,omitempty"`
}

// HotspotView pairs a hotspot with its on-screen rectangle under the
// frame's view transform.
type HotspotView struct {
	mapgraph.Hotspot
	Screen geometry.Rect `json:"screen"`
}

// Frame is everything a presentation layer needs to draw the current
// state: the map, its hotspots in both canonical and screen coordinates,
// navigation flags, and the edit machine's state.
type Frame struct {
	MapID     string         `json:"mapId"`
	ImageURL  string         `json:"imageUrl"`
	CanGoBack bool           `json:"canGoBack"`
	Mode      editstate.Mode `json:"-"`
	ModeName  string         `json:"mode"`

	// EditSubject and PendingDelete name the hotspots under modal edit and
	// awaiting delete confirmation, when set.
	EditSubject   string `json:"editSubject,omitempty"`
	PendingDelete string `json:"pendingDelete,omitempty"`

	// Draft is a drawn rectangle awaiting its link fields, in canonical
	// percentage coordinates.
	Draft *geometry.Rect `json:"draft,omitempty"`

	// Transform is the pan/zoom the hotspot screen rectangles were
	// computed with. NeedsFit is set when no transform is stored for this
	// map yet; the screen rectangles then assume the identity transform
	// and the presentation should kick off a fit computation (capture
	// ViewGeneration, measure, then ApplyFit).
	Transform geometry.Transform `json:"transform"`
	NeedsFit  bool               `json:"needsFit"`

	Hotspots []HotspotView `json:"hotspots"`
}

// Frame snapshots the current map for rendering. Fails with a consistency
// error when no map is selected (degraded session); navigating back or
// loading a document recovers.
func (s *Session) Frame() (Frame, error) {
	d, err := s.nav.Display()
	if err != nil {
		return Frame{}, err
	}
	t, ok := s.views.Get(d.MapID)
	if !ok {
		t = geometry.Identity()
	}
	views := make([]HotspotView, len(d.Hotspots))
	for i, h := range d.Hotspots {
		pct := geometry.Rect{X: h.X, Y: h.Y, W: h.Width, H: h.Height}
		views[i] = HotspotView{
			Hotspot: h,
			Screen:  geometry.PercentToScreen(pct, t, s.canvas),
		}
	}
	var draft *geometry.Rect
	if s.draft != nil {
		r := *s.draft
		draft = &r
	}
	return Frame{
		MapID:         d.MapID,
		ImageURL:      d.ImageURL,
		CanGoBack:     d.CanGoBack,
		Mode:          s.edit.Mode(),
		ModeName:      s.edit.Mode().String(),
		EditSubject:   s.edit.EditSubject(),
		PendingDelete: s.edit.PendingDelete(),
		Draft:         draft,
		Transform:     t,
		NeedsFit:      !ok,
		Hotspots:      views,
	}, nil
}
