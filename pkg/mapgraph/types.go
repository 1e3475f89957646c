package mapgraph

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/matzehuels/atlas/pkg/errors"
)

// =============================================================================
// Constants - Single Source of Truth
// =============================================================================

// LinkType discriminates what a hotspot points at.
type LinkType string

const (
	// LinkMap jumps to another map node in the same document.
	LinkMap LinkType = "map"
	// LinkURL opens an external resource.
	LinkURL LinkType = "url"
)

// URLTarget selects where a url-type hotspot opens.
type URLTarget string

const (
	// TargetSelf opens the URL in the current browsing context.
	TargetSelf URLTarget = "self"
	// TargetBlank opens the URL in a new context. This is the default.
	TargetBlank URLTarget = "blank"
)

// MinHotspotPct mirrors the geometry clamp: stored hotspots are never
// narrower or shorter than this percentage of the canonical canvas.
const MinHotspotPct = 0.1

// Tolerance for the x+width <= 100 bounds check. Percentages arrive from
// float transform chains and carry rounding dust.
const boundsEpsilon = 1e-9

// =============================================================================
// Hotspot - Clickable Region
// =============================================================================

// Hotspot is a clickable rectangular region on one map. Position and size
// are percentages of the canonical canvas (0-100), which keeps them stable
// across display sizes.
//
// Exactly one link payload is populated, matching LinkType: map-type
// hotspots carry LinkToMapID, url-type hotspots carry LinkedURL (plus
// URLTarget, defaulting to blank). Validate enforces this.
type Hotspot struct {
	ID     string  `json:"id" bson:"id"`
	X      float64 `json:"x" bson:"x"`
	Y      float64 `json:"y" bson:"y"`
	Width  float64 `json:"width" bson:"width"`
	Height float64 `json:"height" bson:"height"`
	Title  string  `json:"title,omitempty" bson:"title,omitempty"`

	LinkType    LinkType  `json:"linkType" bson:"linkType"`
	LinkToMapID string    `json:"linkToMapId,omitempty" bson:"linkToMapId,omitempty"`
	LinkedURL   string    `json:"linkedUrl,omitempty" bson:"linkedUrl,omitempty"`
	URLTarget   URLTarget `json:"urlTarget,omitempty" bson:"urlTarget,omitempty"`
}

// NewHotspotID mints a fresh hotspot identifier.
func NewHotspotID() string { return uuid.NewString() }

// IsMapLink reports whether the hotspot jumps to another map.
func (h Hotspot) IsMapLink() bool { return h.LinkType == LinkMap }

// IsURLLink reports whether the hotspot opens an external URL.
func (h Hotspot) IsURLLink() bool { return h.LinkType == LinkURL }

// DisplayTitle returns the title if set, otherwise the hotspot ID.
func (h Hotspot) DisplayTitle() string {
	if h.Title != "" {
		return h.Title
	}
	return h.ID
}

// Target returns the link destination regardless of link type: the linked
// map id for map hotspots, the URL for url hotspots.
func (h Hotspot) Target() string {
	if h.IsMapLink() {
		return h.LinkToMapID
	}
	return h.LinkedURL
}

// Validate checks the hotspot's shape: a usable id, geometry inside the
// canonical canvas at no less than the minimum size, and exactly one link
// payload matching LinkType. It does not check that a linked map id
// resolves; dangling map links are permitted transiently and cleaned up by
// deletion's orphan scan.
func (h Hotspot) Validate() error {
	if err := errors.ValidateHotspotID(h.ID); err != nil {
		return err
	}
	if h.X < 0 || h.X > 100 || h.Y < 0 || h.Y > 100 {
		return errors.New(errors.ErrCodeInvalidHotspot,
			"hotspot %q: position (%g, %g) outside canvas", h.ID, h.X, h.Y)
	}
	if h.Width < MinHotspotPct || h.Height < MinHotspotPct {
		return errors.New(errors.ErrCodeInvalidHotspot,
			"hotspot %q: size %gx%g below minimum %g", h.ID, h.Width, h.Height, MinHotspotPct)
	}
	if h.X+h.Width > 100+boundsEpsilon || h.Y+h.Height > 100+boundsEpsilon {
		return errors.New(errors.ErrCodeInvalidHotspot,
			"hotspot %q: rectangle extends past canvas", h.ID)
	}
	switch h.LinkType {
	case LinkMap:
		if h.LinkToMapID == "" {
			return errors.New(errors.ErrCodeInvalidHotspot,
				"hotspot %q: map link without linkToMapId", h.ID)
		}
		if h.LinkedURL != "" || h.URLTarget != "" {
			return errors.New(errors.ErrCodeInvalidHotspot,
				"hotspot %q: map link carries url payload", h.ID)
		}
		if err := errors.ValidateMapID(h.LinkToMapID); err != nil {
			return err
		}
	case LinkURL:
		if h.LinkedURL == "" {
			return errors.New(errors.ErrCodeInvalidHotspot,
				"hotspot %q: url link without linkedUrl", h.ID)
		}
		if h.LinkToMapID != "" {
			return errors.New(errors.ErrCodeInvalidHotspot,
				"hotspot %q: url link carries map payload", h.ID)
		}
		switch h.URLTarget {
		case TargetSelf, TargetBlank:
		default:
			return errors.New(errors.ErrCodeInvalidHotspot,
				"hotspot %q: unknown url target %q", h.ID, h.URLTarget)
		}
	default:
		return errors.New(errors.ErrCodeInvalidHotspot,
			"hotspot %q: unknown link type %q", h.ID, h.LinkType)
	}
	return nil
}

// normalized returns a copy with defaults applied: a minted id when absent
// and the blank url target for url links that omit one.
func (h Hotspot) normalized() Hotspot {
	if h.ID == "" {
		h.ID = NewHotspotID()
	}
	if h.LinkType == LinkURL && h.URLTarget == "" {
		h.URLTarget = TargetBlank
	}
	return h
}

// =============================================================================
// MapNode - One Navigable Image
// =============================================================================

// MapNode is one navigable image and its hotspots. Hotspot order reflects
// creation order; it is preserved through serialization but carries no
// semantic weight.
type MapNode struct {
	ID       string    `json:"id" bson:"id"`
	ImageURL string    `json:"imageUrl" bson:"imageUrl"`
	Hotspots []Hotspot `json:"hotspots" bson:"hotspots"`
}

// FindHotspot returns the index of the hotspot with the given id, or -1.
func (n *MapNode) FindHotspot(hotspotID string) int {
	for i, h := range n.Hotspots {
		if h.ID == hotspotID {
			return i
		}
	}
	return -1
}

// Validate checks the node id, the image reference (when set), and every
// hotspot.
func (n *MapNode) Validate() error {
	if err := errors.ValidateMapID(n.ID); err != nil {
		return err
	}
	if n.ImageURL != "" {
		if err := errors.ValidateImageRef(n.ImageURL); err != nil {
			return err
		}
	}
	for _, h := range n.Hotspots {
		if err := h.Validate(); err != nil {
			return err
		}
	}
	return nil
}

// clone returns a deep copy; the hotspot slice is never shared.
func (n *MapNode) clone() *MapNode {
	c := *n
	if n.Hotspots != nil {
		c.Hotspots = make([]Hotspot, len(n.Hotspots))
		copy(c.Hotspots, n.Hotspots)
	}
	return &c
}

// =============================================================================
// Warning - Soft Failure
// =============================================================================

// Warning records a condition that was tolerated rather than failed:
// a delete of an already-absent hotspot, a dropped hotspot during document
// normalization. Warnings are surfaced to the operator but never abort the
// operation that produced them.
type Warning struct {
	Op      string `json:"op" bson:"op"`
	Message string `json:"message" bson:"message"`
}

func (w Warning) String() string {
	return fmt.Sprintf("%s: %s", w.Op, w.Message)
}
