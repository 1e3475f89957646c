package document

import (
	"fmt"
	"slices"

	"github.com/matzehuels/atlas/pkg/errors"
	"github.com/matzehuels/atlas/pkg/mapgraph"
)

// normalize turns raw import data into a well-formed graph, applying the
// inference and drop rules documented in the package comment. Hard failure
// is reserved for an empty mapping or a document where nothing survived.
func normalize(raw map[string]rawMap) (*mapgraph.Graph, []mapgraph.Warning, error) {
	if len(raw) == 0 {
		return nil, nil, errors.New(errors.ErrCodeInvalidDocument, "document contains no maps")
	}

	var warns []mapgraph.Warning
	warn := func(format string, args ...any) {
		warns = append(warns, mapgraph.Warning{Op: "normalize", Message: fmt.Sprintf(format, args...)})
	}

	ids := make([]string, 0, len(raw))
	for id := range raw {
		ids = append(ids, id)
	}
	slices.Sort(ids)

	nodes := make([]mapgraph.MapNode, 0, len(raw))
	for _, id := range ids {
		entry := raw[id]
		if err := errors.ValidateMapID(id); err != nil {
			warn("map %q dropped: %s", id, errors.UserMessage(err))
			continue
		}

		imageURL := entry.ImageURL
		if imageURL != "" {
			if err := errors.ValidateImageRef(imageURL); err != nil {
				warn("map %q: image reference %q cleared: %s", id, imageURL, errors.UserMessage(err))
				imageURL = ""
			}
		}

		hotspots := make([]mapgraph.Hotspot, 0, len(entry.Hotspots))
		for i, rh := range entry.Hotspots {
			h, reason := normalizeHotspot(rh)
			if reason != "" {
				warn("map %q: hotspot %d dropped: %s", id, i, reason)
				continue
			}
			hotspots = append(hotspots, h)
		}

		nodes = append(nodes, mapgraph.MapNode{ID: id, ImageURL: imageURL, Hotspots: hotspots})
	}

	if len(nodes) == 0 {
		return nil, warns, errors.New(errors.ErrCodeInvalidDocument,
			"document contains no usable maps")
	}

	g, err := mapgraph.FromNodes(nodes...)
	if err != nil {
		return nil, warns, errors.Wrap(errors.ErrCodeInvalidDocument, err, "document rejected")
	}
	return g, warns, nil
}

// normalizeHotspot applies the per-hotspot rules and returns either a
// well-formed hotspot or a non-empty drop reason.
func normalizeHotspot(rh rawHotspot) (mapgraph.Hotspot, string) {
	if rh.ID == nil || rh.X == nil || rh.Y == nil || rh.Width == nil || rh.Height == nil {
		return mapgraph.Hotspot{}, "missing id, x, y, width or height"
	}

	h := mapgraph.Hotspot{
		ID:     *rh.ID,
		X:      *rh.X,
		Y:      *rh.Y,
		Width:  *rh.Width,
		Height: *rh.Height,
		Title:  rh.Title,
	}

	linkType := rh.LinkType
	if linkType == "" {
		// Infer the discriminant from whichever payload is present.
		switch {
		case rh.LinkToMapID != "":
			linkType = string(mapgraph.LinkMap)
		case rh.LinkedURL != "":
			linkType = string(mapgraph.LinkURL)
		default:
			return mapgraph.Hotspot{}, "no linkType and no payload to infer one from"
		}
	}

	switch mapgraph.LinkType(linkType) {
	case mapgraph.LinkMap:
		if rh.LinkToMapID == "" {
			return mapgraph.Hotspot{}, "map link without linkToMapId"
		}
		// Keep only the map payload; stray url fields are discarded.
		h.LinkType = mapgraph.LinkMap
		h.LinkToMapID = rh.LinkToMapID
	case mapgraph.LinkURL:
		if rh.LinkedURL == "" {
			return mapgraph.Hotspot{}, "url link without linkedUrl"
		}
		h.LinkType = mapgraph.LinkURL
		h.LinkedURL = rh.LinkedURL
		switch mapgraph.URLTarget(rh.URLTarget) {
		case mapgraph.TargetSelf:
			h.URLTarget = mapgraph.TargetSelf
		default:
			// Absent or unrecognized targets fall back to the default.
			h.URLTarget = mapgraph.TargetBlank
		}
	default:
		return mapgraph.Hotspot{}, fmt.Sprintf("unknown linkType %q", linkType)
	}

	if err := h.Validate(); err != nil {
		return mapgraph.Hotspot{}, errors.UserMessage(err)
	}
	return h, ""
}
