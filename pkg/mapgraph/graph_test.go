package mapgraph

import (
	"testing"

	"github.com/matzehuels/atlas/pkg/errors"
)

// twoMaps builds the canonical two-node fixture: map "a" carries hotspot
// "h1" linking to map "b".
func twoMaps(t *testing.T) *Graph {
	t.Helper()
	g, err := FromNodes(
		MapNode{ID: "a", ImageURL: "https://img.test/a.png", Hotspots: []Hotspot{
			{ID: "h1", X: 10, Y: 10, Width: 20, Height: 20, LinkType: LinkMap, LinkToMapID: "b"},
		}},
		MapNode{ID: "b", ImageURL: "https://img.test/b.png"},
	)
	if err != nil {
		t.Fatalf("FromNodes: %v", err)
	}
	return g
}

func TestFromNodes(t *testing.T) {
	tests := []struct {
		name     string
		nodes    []MapNode
		wantErr  errors.Code
		wantLen  int
		wantSpot int
	}{
		{
			name: "Valid",
			nodes: []MapNode{
				{ID: "a", ImageURL: "https://img.test/a.png", Hotspots: []Hotspot{
					{ID: "h1", X: 1, Y: 1, Width: 5, Height: 5, LinkType: LinkURL, LinkedURL: "https://example.com"},
				}},
				{ID: "b", ImageURL: "/srv/images/b.png"},
			},
			wantLen:  2,
			wantSpot: 1,
		},
		{
			name: "DuplicateMapID",
			nodes: []MapNode{
				{ID: "a", ImageURL: "https://img.test/a.png"},
				{ID: "a", ImageURL: "https://img.test/other.png"},
			},
			wantErr: errors.ErrCodeDuplicateMapID,
		},
		{
			name: "InvalidHotspotGeometry",
			nodes: []MapNode{
				{ID: "a", Hotspots: []Hotspot{
					{ID: "h1", X: 95, Y: 10, Width: 20, Height: 20, LinkType: LinkURL, LinkedURL: "https://example.com"},
				}},
			},
			wantErr: errors.ErrCodeInvalidHotspot,
		},
		{
			name: "InvalidMapID",
			nodes: []MapNode{
				{ID: "../escape", ImageURL: "https://img.test/a.png"},
			},
			wantErr: errors.ErrCodeInvalidMapID,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g, err := FromNodes(tt.nodes...)
			if tt.wantErr != "" {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("FromNodes error = %v, want code %s", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("FromNodes: %v", err)
			}
			if g.Len() != tt.wantLen {
				t.Errorf("Len = %d, want %d", g.Len(), tt.wantLen)
			}
			if g.HotspotCount() != tt.wantSpot {
				t.Errorf("HotspotCount = %d, want %d", g.HotspotCount(), tt.wantSpot)
			}
		})
	}

	t.Run("NilHotspotsBecomeEmpty", func(t *testing.T) {
		g, err := FromNodes(MapNode{ID: "a", ImageURL: "https://img.test/a.png"})
		if err != nil {
			t.Fatalf("FromNodes: %v", err)
		}
		n, _ := g.Node("a")
		if n.Hotspots == nil {
			t.Error("Hotspots is nil, want empty slice")
		}
	})
}

func TestAddHotspot(t *testing.T) {
	t.Run("URLLink", func(t *testing.T) {
		g := twoMaps(t)
		next, err := g.AddHotspot("a", Hotspot{
			ID: "h2", X: 40, Y: 40, Width: 10, Height: 10,
			LinkType: LinkURL, LinkedURL: "https://example.com",
		}, "ignored.png")
		if err != nil {
			t.Fatalf("AddHotspot: %v", err)
		}
		if next.Len() != 2 {
			t.Errorf("url link created a map node: Len = %d, want 2", next.Len())
		}
		h, ok := next.FindHotspot("a", "h2")
		if !ok {
			t.Fatal("hotspot h2 not found after add")
		}
		if h.URLTarget != TargetBlank {
			t.Errorf("URLTarget = %q, want blank default", h.URLTarget)
		}
	})

	t.Run("MapLinkCreatesNode", func(t *testing.T) {
		g := twoMaps(t)
		next, err := g.AddHotspot("b", Hotspot{
			ID: "h2", X: 5, Y: 5, Width: 10, Height: 10,
			LinkType: LinkMap, LinkToMapID: "c",
		}, "https://img.test/c.png")
		if err != nil {
			t.Fatalf("AddHotspot: %v", err)
		}
		c, ok := next.Node("c")
		if !ok {
			t.Fatal("linked map c not created")
		}
		if c.ImageURL != "https://img.test/c.png" {
			t.Errorf("ImageURL = %q", c.ImageURL)
		}
		if len(c.Hotspots) != 0 || c.Hotspots == nil {
			t.Errorf("new map hotspots = %v, want empty non-nil", c.Hotspots)
		}
	})

	t.Run("DuplicateMapIDRejected", func(t *testing.T) {
		g := twoMaps(t)
		_, err := g.AddHotspot("a", Hotspot{
			ID: "h2", X: 5, Y: 5, Width: 10, Height: 10,
			LinkType: LinkMap, LinkToMapID: "b",
		}, "")
		if !errors.Is(err, errors.ErrCodeDuplicateMapID) {
			t.Fatalf("error = %v, want DUPLICATE_MAP_ID", err)
		}
		// The failed mutation must leave the receiver untouched.
		if g.Len() != 2 || g.HotspotCount() != 1 {
			t.Errorf("graph mutated by failed add: %d maps, %d hotspots", g.Len(), g.HotspotCount())
		}
	})

	t.Run("TargetMapMissing", func(t *testing.T) {
		g := twoMaps(t)
		_, err := g.AddHotspot("nope", Hotspot{
			ID: "h2", X: 5, Y: 5, Width: 10, Height: 10,
			LinkType: LinkURL, LinkedURL: "https://example.com",
		}, "")
		if !errors.Is(err, errors.ErrCodeMapNotFound) {
			t.Fatalf("error = %v, want MAP_NOT_FOUND", err)
		}
	})

	t.Run("MintsMissingID", func(t *testing.T) {
		g := twoMaps(t)
		next, err := g.AddHotspot("a", Hotspot{
			X: 50, Y: 50, Width: 10, Height: 10,
			LinkType: LinkURL, LinkedURL: "https://example.com",
		}, "")
		if err != nil {
			t.Fatalf("AddHotspot: %v", err)
		}
		n, _ := next.Node("a")
		if len(n.Hotspots) != 2 {
			t.Fatalf("hotspots = %d, want 2", len(n.Hotspots))
		}
		if n.Hotspots[1].ID == "" {
			t.Error("hotspot id not minted")
		}
	})

	t.Run("ReceiverUnchanged", func(t *testing.T) {
		g := twoMaps(t)
		next, err := g.AddHotspot("a", Hotspot{
			ID: "h2", X: 40, Y: 40, Width: 10, Height: 10,
			LinkType: LinkURL, LinkedURL: "https://example.com",
		}, "")
		if err != nil {
			t.Fatalf("AddHotspot: %v", err)
		}
		if g.HotspotCount() != 1 {
			t.Errorf("receiver hotspots = %d, want 1", g.HotspotCount())
		}
		if next.HotspotCount() != 2 {
			t.Errorf("result hotspots = %d, want 2", next.HotspotCount())
		}
	})
}

func TestUpdateHotspot(t *testing.T) {
	strPtr := func(s string) *string { return &s }
	linkPtr := func(l LinkType) *LinkType { return &l }

	t.Run("TitleOnly", func(t *testing.T) {
		g := twoMaps(t)
		next, err := g.UpdateHotspot("a", "h1", HotspotPatch{Title: strPtr("Ground floor")})
		if err != nil {
			t.Fatalf("UpdateHotspot: %v", err)
		}
		h, _ := next.FindHotspot("a", "h1")
		if h.Title != "Ground floor" {
			t.Errorf("Title = %q", h.Title)
		}
		if h.LinkToMapID != "b" {
			t.Errorf("link payload disturbed: %q", h.LinkToMapID)
		}
	})

	t.Run("SwitchMapToURL", func(t *testing.T) {
		g := twoMaps(t)
		next, err := g.UpdateHotspot("a", "h1", HotspotPatch{
			LinkType:  linkPtr(LinkURL),
			LinkedURL: strPtr("https://example.com/floor"),
		})
		if err != nil {
			t.Fatalf("UpdateHotspot: %v", err)
		}
		h, _ := next.FindHotspot("a", "h1")
		if h.LinkToMapID != "" {
			t.Errorf("stale map payload survived variant switch: %q", h.LinkToMapID)
		}
		if h.LinkedURL != "https://example.com/floor" {
			t.Errorf("LinkedURL = %q", h.LinkedURL)
		}
		if h.URLTarget != TargetBlank {
			t.Errorf("URLTarget = %q, want blank default", h.URLTarget)
		}
	})

	t.Run("SwitchURLToMap", func(t *testing.T) {
		g, err := FromNodes(
			MapNode{ID: "a", ImageURL: "https://img.test/a.png", Hotspots: []Hotspot{
				{ID: "h1", X: 10, Y: 10, Width: 20, Height: 20,
					LinkType: LinkURL, LinkedURL: "https://example.com", URLTarget: TargetSelf},
			}},
		)
		if err != nil {
			t.Fatalf("FromNodes: %v", err)
		}
		next, err := g.UpdateHotspot("a", "h1", HotspotPatch{
			LinkType:    linkPtr(LinkMap),
			LinkToMapID: strPtr("basement"),
		})
		if err != nil {
			t.Fatalf("UpdateHotspot: %v", err)
		}
		h, _ := next.FindHotspot("a", "h1")
		if h.LinkedURL != "" || h.URLTarget != "" {
			t.Errorf("stale url payload survived: %q %q", h.LinkedURL, h.URLTarget)
		}
		if h.LinkToMapID != "basement" {
			t.Errorf("LinkToMapID = %q", h.LinkToMapID)
		}
		// Switching never creates the linked map; the reference dangles.
		if next.Has("basement") {
			t.Error("variant switch created a map node")
		}
	})

	t.Run("SwitchWithoutPayloadFails", func(t *testing.T) {
		g := twoMaps(t)
		_, err := g.UpdateHotspot("a", "h1", HotspotPatch{LinkType: linkPtr(LinkURL)})
		if !errors.Is(err, errors.ErrCodeInvalidHotspot) {
			t.Fatalf("error = %v, want INVALID_HOTSPOT", err)
		}
		h, _ := g.FindHotspot("a", "h1")
		if h.LinkToMapID != "b" {
			t.Error("failed update mutated the receiver")
		}
	})

	t.Run("HotspotMissing", func(t *testing.T) {
		g := twoMaps(t)
		_, err := g.UpdateHotspot("a", "nope", HotspotPatch{Title: strPtr("x")})
		if !errors.Is(err, errors.ErrCodeHotspotNotFound) {
			t.Fatalf("error = %v, want HOTSPOT_NOT_FOUND", err)
		}
	})

	t.Run("MapMissing", func(t *testing.T) {
		g := twoMaps(t)
		_, err := g.UpdateHotspot("nope", "h1", HotspotPatch{Title: strPtr("x")})
		if !errors.Is(err, errors.ErrCodeMapNotFound) {
			t.Fatalf("error = %v, want MAP_NOT_FOUND", err)
		}
	})
}

func TestDeleteHotspot(t *testing.T) {
	t.Run("OrphanRemoved", func(t *testing.T) {
		g := twoMaps(t)
		next, res, err := g.DeleteHotspot("a", "h1")
		if err != nil {
			t.Fatalf("DeleteHotspot: %v", err)
		}
		if !res.Deleted {
			t.Fatal("Deleted = false")
		}
		if res.OrphanRemoved != "b" {
			t.Errorf("OrphanRemoved = %q, want b", res.OrphanRemoved)
		}
		if next.Has("b") {
			t.Error("orphaned map b still present")
		}
		// Map a survives with zero hotspots.
		n, ok := next.Node("a")
		if !ok {
			t.Fatal("map a vanished")
		}
		if len(n.Hotspots) != 0 {
			t.Errorf("hotspots = %d, want 0", len(n.Hotspots))
		}
	})

	t.Run("SecondReferenceKeepsMap", func(t *testing.T) {
		g := twoMaps(t)
		g, err := g.AddHotspot("a", Hotspot{
			ID: "h2", X: 50, Y: 50, Width: 10, Height: 10,
			LinkType: LinkMap, LinkToMapID: "b",
		}, "")
		if !errors.Is(err, errors.ErrCodeDuplicateMapID) {
			t.Fatalf("second link to existing map should not recreate it: %v", err)
		}

		// Build the two-referrers shape directly instead.
		g, err = FromNodes(
			MapNode{ID: "a", ImageURL: "https://img.test/a.png", Hotspots: []Hotspot{
				{ID: "h1", X: 10, Y: 10, Width: 20, Height: 20, LinkType: LinkMap, LinkToMapID: "b"},
				{ID: "h2", X: 50, Y: 50, Width: 10, Height: 10, LinkType: LinkMap, LinkToMapID: "b"},
			}},
			MapNode{ID: "b", ImageURL: "https://img.test/b.png"},
		)
		if err != nil {
			t.Fatalf("FromNodes: %v", err)
		}
		next, res, err := g.DeleteHotspot("a", "h1")
		if err != nil {
			t.Fatalf("DeleteHotspot: %v", err)
		}
		if res.OrphanRemoved != "" {
			t.Errorf("OrphanRemoved = %q, want none", res.OrphanRemoved)
		}
		if !next.Has("b") {
			t.Error("map b removed while still referenced by h2")
		}
	})

	t.Run("AlreadyGoneIsSoftWarning", func(t *testing.T) {
		g := twoMaps(t)
		next, res, err := g.DeleteHotspot("a", "ghost")
		if err != nil {
			t.Fatalf("DeleteHotspot: %v", err)
		}
		if res.Deleted {
			t.Error("Deleted = true for absent hotspot")
		}
		if res.Warning == nil {
			t.Error("missing warning for idempotent delete")
		}
		if next != g {
			t.Error("no-op delete returned a different graph")
		}
	})

	t.Run("MapGoneIsSoftWarning", func(t *testing.T) {
		g := twoMaps(t)
		_, res, err := g.DeleteHotspot("ghost", "h1")
		if err != nil {
			t.Fatalf("DeleteHotspot: %v", err)
		}
		if res.Deleted || res.Warning == nil {
			t.Errorf("res = %+v, want soft warning", res)
		}
	})

	t.Run("SingleLevelCleanupOnly", func(t *testing.T) {
		// a → b → c: deleting a's link to b orphans b; c is only orphaned as
		// a second-order effect and must survive the single-level scan.
		g, err := FromNodes(
			MapNode{ID: "a", ImageURL: "https://img.test/a.png", Hotspots: []Hotspot{
				{ID: "h1", X: 10, Y: 10, Width: 20, Height: 20, LinkType: LinkMap, LinkToMapID: "b"},
			}},
			MapNode{ID: "b", ImageURL: "https://img.test/b.png", Hotspots: []Hotspot{
				{ID: "h2", X: 10, Y: 10, Width: 20, Height: 20, LinkType: LinkMap, LinkToMapID: "c"},
			}},
			MapNode{ID: "c", ImageURL: "https://img.test/c.png"},
		)
		if err != nil {
			t.Fatalf("FromNodes: %v", err)
		}
		next, res, err := g.DeleteHotspot("a", "h1")
		if err != nil {
			t.Fatalf("DeleteHotspot: %v", err)
		}
		if res.OrphanRemoved != "b" {
			t.Errorf("OrphanRemoved = %q, want b", res.OrphanRemoved)
		}
		if !next.Has("c") {
			t.Error("second-order orphan c was chased; cleanup must be single-level")
		}
	})

	t.Run("ReceiverUnchanged", func(t *testing.T) {
		g := twoMaps(t)
		if _, _, err := g.DeleteHotspot("a", "h1"); err != nil {
			t.Fatalf("DeleteHotspot: %v", err)
		}
		if g.HotspotCount() != 1 || !g.Has("b") {
			t.Error("delete mutated the receiver")
		}
	})
}

func TestSetMapImage(t *testing.T) {
	tests := []struct {
		name    string
		mapID   string
		url     string
		wantErr errors.Code
	}{
		{"Valid", "a", "https://img.test/new.png", ""},
		{"AbsolutePath", "a", "/srv/images/new.png", ""},
		{"Empty", "a", "", errors.ErrCodeInvalidImageRef},
		{"Relative", "a", "images/new.png", errors.ErrCodeInvalidImageRef},
		{"MapMissing", "nope", "https://img.test/new.png", errors.ErrCodeMapNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := twoMaps(t)
			next, err := g.SetMapImage(tt.mapID, tt.url)
			if tt.wantErr != "" {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("error = %v, want code %s", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("SetMapImage: %v", err)
			}
			n, _ := next.Node(tt.mapID)
			if n.ImageURL != tt.url {
				t.Errorf("ImageURL = %q, want %q", n.ImageURL, tt.url)
			}
			orig, _ := g.Node(tt.mapID)
			if orig.ImageURL == tt.url {
				t.Error("receiver mutated")
			}
		})
	}
}

func TestReferences(t *testing.T) {
	g := twoMaps(t)
	if got := g.References("b"); got != 1 {
		t.Errorf("References(b) = %d, want 1", got)
	}
	if got := g.References("a"); got != 0 {
		t.Errorf("References(a) = %d, want 0", got)
	}
}

func TestInferRoot(t *testing.T) {
	t.Run("Unreferenced", func(t *testing.T) {
		g := twoMaps(t)
		if got := g.InferRoot(); got != "a" {
			t.Errorf("InferRoot = %q, want a", got)
		}
	})

	t.Run("CycleFallsBackToSorted", func(t *testing.T) {
		g, err := FromNodes(
			MapNode{ID: "x", Hotspots: []Hotspot{
				{ID: "h1", X: 1, Y: 1, Width: 5, Height: 5, LinkType: LinkMap, LinkToMapID: "y"},
			}},
			MapNode{ID: "y", Hotspots: []Hotspot{
				{ID: "h2", X: 1, Y: 1, Width: 5, Height: 5, LinkType: LinkMap, LinkToMapID: "x"},
			}},
		)
		if err != nil {
			t.Fatalf("FromNodes: %v", err)
		}
		if got := g.InferRoot(); got != "x" {
			t.Errorf("InferRoot = %q, want x", got)
		}
	})

	t.Run("Empty", func(t *testing.T) {
		if got := New().InferRoot(); got != "" {
			t.Errorf("InferRoot = %q, want empty", got)
		}
	})
}

func TestUnreachable(t *testing.T) {
	g, err := FromNodes(
		MapNode{ID: "a", Hotspots: []Hotspot{
			{ID: "h1", X: 1, Y: 1, Width: 5, Height: 5, LinkType: LinkMap, LinkToMapID: "b"},
		}},
		MapNode{ID: "b"},
		MapNode{ID: "island"},
	)
	if err != nil {
		t.Fatalf("FromNodes: %v", err)
	}
	got := g.Unreachable("a")
	if len(got) != 1 || got[0] != "island" {
		t.Errorf("Unreachable = %v, want [island]", got)
	}
}

func TestNodeIsolation(t *testing.T) {
	g := twoMaps(t)
	n, _ := g.Node("a")
	n.Hotspots[0].Title = "tampered"
	n.ImageURL = "tampered"

	fresh, _ := g.Node("a")
	if fresh.Hotspots[0].Title == "tampered" || fresh.ImageURL == "tampered" {
		t.Error("Node returned a view into the arena instead of a copy")
	}
}
