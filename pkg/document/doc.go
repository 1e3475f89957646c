// Package document imports and exports atlas map documents.
//
// # Overview
//
// A document is the serialized form of a [mapgraph.Graph]: everything needed
// to rebuild the hierarchy of linked image maps. The format is designed for:
//
//   - Hand-editing: a flat JSON object keyed by map id
//   - Transfer: one self-contained file, no external schema
//   - Round-trip preservation: export then re-import yields an equal graph
//
// # JSON Format
//
// The top level is a non-empty object mapping map ids to map nodes:
//
//	{
//	  "lobby": {
//	    "imageUrl": "https://example.com/lobby.png",
//	    "hotspots": [
//	      {"id": "h1", "x": 10, "y": 10, "width": 20, "height": 20,
//	       "linkType": "map", "linkToMapId": "cellar"},
//	      {"id": "h2", "x": 60, "y": 40, "width": 15, "height": 10,
//	       "linkType": "url", "linkedUrl": "https://example.com",
//	       "urlTarget": "blank"}
//	    ]
//	  },
//	  "cellar": {"imageUrl": "https://example.com/cellar.png", "hotspots": []}
//	}
//
// # Normalization
//
// Imported documents are normalized, not rejected, wherever possible:
//
//   - A missing linkType is inferred: a hotspot with linkToMapId is a map
//     link, otherwise one with linkedUrl is a url link.
//   - Only the payload matching the link type is kept; urlTarget defaults
//     to "blank".
//   - Hotspots that cannot be normalized (missing id, x, y, width or
//     height; no inferable link; geometry outside the canvas) are dropped
//     with a warning rather than failing the import.
//
// The only hard failure is a top level that is not a non-empty keyed
// mapping, or a document whose every entry had to be dropped.
//
// # Import and Export
//
// [Load] and [Unmarshal] read from a file or bytes; [Save] and [Marshal]
// write. [Open] also accepts http(s) URLs, fetching with retry and an
// optional response cache:
//
//	g, warns, err := document.Open(ctx, "floors.json", nil, nil)
//
// Exported output is deterministic: map ids are sorted and hotspot order is
// preserved, so identical graphs produce identical bytes.
package document
