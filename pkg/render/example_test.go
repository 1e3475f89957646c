package render_test

import (
	"fmt"

	"github.com/matzehuels/atlas/pkg/mapgraph"
	"github.com/matzehuels/atlas/pkg/render"
)

func ExampleToDOT() {
	g, err := mapgraph.FromNodes(
		mapgraph.MapNode{
			ID:       "lobby",
			ImageURL: "lobby.png",
			Hotspots: []mapgraph.Hotspot{
				{ID: "down", X: 10, Y: 10, Width: 20, Height: 20, LinkType: mapgraph.LinkMap, LinkToMapID: "cellar"},
			},
		},
		mapgraph.MapNode{ID: "cellar", ImageURL: "cellar.png"},
	)
	if err != nil {
		fmt.Println("graph:", err)
		return
	}

	fmt.Println(render.ToDOT(g, render.Options{}))
	// Output:
	// digraph atlas {
	//   rankdir=TB;
	//   bgcolor="transparent";
	//   node [shape=box, style="rounded,filled", fillcolor=white, fontsize=14, margin="0.2,0.1"];
	//   ranksep=0.5;
	//   nodesep=0.3;
	//
	//   "cellar" [label="cellar"];
	//   "lobby" [label="lobby", fillcolor=lightblue, penwidth=2];
	//
	//   "lobby" -> "cellar";
	// }
}
