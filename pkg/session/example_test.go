package session_test

import (
	"fmt"
	"io"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/atlas/pkg/editstate"
	"github.com/matzehuels/atlas/pkg/geometry"
	"github.com/matzehuels/atlas/pkg/mapgraph"
	"github.com/matzehuels/atlas/pkg/session"
)

func ExampleSession() {
	g, _ := mapgraph.FromNodes(
		mapgraph.MapNode{ID: "lobby", ImageURL: "lobby.png", Hotspots: []mapgraph.Hotspot{
			{ID: "stairs", X: 40, Y: 60, Width: 15, Height: 20,
				LinkType: mapgraph.LinkMap, LinkToMapID: "cellar"},
		}},
		mapgraph.MapNode{ID: "cellar", ImageURL: "cellar.png"},
	)
	logger := log.NewWithOptions(io.Discard, log.Options{})

	sess, _ := session.New(g, "", logger)
	fmt.Println("start:", sess.CurrentMapID())

	res, _ := sess.ClickHotspot("stairs")
	fmt.Println("click:", res.Action, "->", sess.CurrentMapID())

	moved, _ := sess.NavigateBack()
	fmt.Println("back:", moved, "->", sess.CurrentMapID())

	// Output:
	// start: lobby
	// click: navigated -> cellar
	// back: true -> lobby
}

func ExampleSession_drawing() {
	g, _ := mapgraph.FromNodes(mapgraph.MapNode{ID: "plan", ImageURL: "plan.png"})
	logger := log.NewWithOptions(io.Discard, log.Options{})
	sess, _ := session.New(g, "", logger)

	sess.SetEditEnabled(true)
	_ = sess.SetEditAction(editstate.ModeDraw)

	// With no stored pan/zoom the view is the identity transform, so
	// screen pixels map straight onto the 1600x1200 canvas.
	rect, ok, _ := sess.DrawRect(geometry.Point{X: 160, Y: 120}, geometry.Point{X: 320, Y: 240})
	fmt.Printf("draft ok=%v at %.0f%% %.0f%% size %.0fx%.0f\n", ok, rect.X, rect.Y, rect.W, rect.H)

	_, err := sess.ConfirmDraw(session.NewHotspot{
		Title:     "Boiler room",
		LinkType:  mapgraph.LinkURL,
		LinkedURL: "https://example.com/boiler",
	})
	fmt.Println("confirmed:", err == nil, "hotspots:", sess.Graph().HotspotCount())

	// Output:
	// draft ok=true at 10% 10% size 10x10
	// confirmed: true hotspots: 1
}
