package document

import "github.com/matzehuels/atlas/pkg/mapgraph"

// Default returns the built-in starter document used when no document is
// supplied: a two-map sample demonstrating both link types.
func Default() *mapgraph.Graph {
	g, err := mapgraph.FromNodes(
		mapgraph.MapNode{
			ID:       "overview",
			ImageURL: "https://raw.githubusercontent.com/matzehuels/atlas/main/examples/images/overview.png",
			Hotspots: []mapgraph.Hotspot{
				{
					ID: "overview-detail", X: 30, Y: 25, Width: 40, Height: 35,
					Title:    "Detail area",
					LinkType: mapgraph.LinkMap, LinkToMapID: "detail",
				},
			},
		},
		mapgraph.MapNode{
			ID:       "detail",
			ImageURL: "https://raw.githubusercontent.com/matzehuels/atlas/main/examples/images/detail.png",
			Hotspots: []mapgraph.Hotspot{
				{
					ID: "detail-readme", X: 5, Y: 80, Width: 25, Height: 12,
					Title:    "Project readme",
					LinkType: mapgraph.LinkURL, LinkedURL: "https://github.com/matzehuels/atlas",
					URLTarget: mapgraph.TargetBlank,
				},
			},
		},
	)
	if err != nil {
		// The built-in document is compiled in; it cannot be invalid.
		panic("document: built-in default rejected: " + err.Error())
	}
	return g
}
