package navigate

import (
	"reflect"
	"testing"

	"github.com/matzehuels/atlas/pkg/errors"
	"github.com/matzehuels/atlas/pkg/mapgraph"
)

func threeLevels(t *testing.T) *mapgraph.Graph {
	t.Helper()
	g, err := mapgraph.FromNodes(
		mapgraph.MapNode{ID: "a", ImageURL: "a.png", Hotspots: []mapgraph.Hotspot{
			{ID: "a-b", X: 10, Y: 10, Width: 20, Height: 20, LinkType: mapgraph.LinkMap, LinkToMapID: "b"},
		}},
		mapgraph.MapNode{ID: "b", ImageURL: "b.png", Hotspots: []mapgraph.Hotspot{
			{ID: "b-c", X: 40, Y: 40, Width: 20, Height: 20, LinkType: mapgraph.LinkMap, LinkToMapID: "c"},
		}},
		mapgraph.MapNode{ID: "c", ImageURL: "c.png"},
	)
	if err != nil {
		t.Fatalf("FromNodes: %v", err)
	}
	return g
}

func TestNew(t *testing.T) {
	g := threeLevels(t)

	t.Run("StartsAtRoot", func(t *testing.T) {
		nav, err := New(g, "a")
		if err != nil {
			t.Fatalf("New: %v", err)
		}
		if nav.Current() != "a" {
			t.Errorf("Current() = %q, want a", nav.Current())
		}
		if nav.CanGoBack() {
			t.Error("CanGoBack() = true for fresh navigator")
		}
	})

	t.Run("MissingRoot", func(t *testing.T) {
		if _, err := New(g, "nope"); !errors.Is(err, errors.ErrCodeMapNotFound) {
			t.Errorf("New(missing root) = %v, want MAP_NOT_FOUND", err)
		}
	})

	t.Run("BadRootID", func(t *testing.T) {
		if _, err := New(g, "a/b"); !errors.Is(err, errors.ErrCodeInvalidMapID) {
			t.Errorf("New(bad id) = %v, want INVALID_MAP_ID", err)
		}
	})

	t.Run("NilGraph", func(t *testing.T) {
		if _, err := New(nil, "a"); !errors.Is(err, errors.ErrCodeInvalidInput) {
			t.Errorf("New(nil) = %v, want INVALID_INPUT", err)
		}
	})
}

func TestToChild(t *testing.T) {
	t.Run("PushesCurrent", func(t *testing.T) {
		nav, err := New(threeLevels(t), "a")
		if err != nil {
			t.Fatalf("New: %v", err)
		}
		if err := nav.ToChild("b"); err != nil {
			t.Fatalf("ToChild: %v", err)
		}
		if nav.Current() != "b" {
			t.Errorf("Current() = %q, want b", nav.Current())
		}
		if got := nav.History(); !reflect.DeepEqual(got, []string{"a"}) {
			t.Errorf("History() = %v, want [a]", got)
		}
	})

	t.Run("MissingTargetLeavesStateAlone", func(t *testing.T) {
		nav, err := New(threeLevels(t), "a")
		if err != nil {
			t.Fatalf("New: %v", err)
		}
		if err := nav.ToChild("ghost"); !errors.Is(err, errors.ErrCodeMapNotFound) {
			t.Fatalf("ToChild(ghost) = %v, want MAP_NOT_FOUND", err)
		}
		if nav.Current() != "a" || nav.CanGoBack() {
			t.Errorf("state changed on failed hop: current=%q depth=%d", nav.Current(), nav.Depth())
		}
	})

	t.Run("PathSeparatorRejected", func(t *testing.T) {
		nav, err := New(threeLevels(t), "a")
		if err != nil {
			t.Fatalf("New: %v", err)
		}
		if err := nav.ToChild("../etc"); !errors.Is(err, errors.ErrCodeInvalidMapID) {
			t.Errorf("ToChild(../etc) = %v, want INVALID_MAP_ID", err)
		}
	})

	t.Run("RepeatVisitsStack", func(t *testing.T) {
		nav, err := New(threeLevels(t), "a")
		if err != nil {
			t.Fatalf("New: %v", err)
		}
		for _, id := range []string{"b", "c", "b"} {
			if err := nav.ToChild(id); err != nil {
				t.Fatalf("ToChild(%s): %v", id, err)
			}
		}
		if got := nav.History(); !reflect.DeepEqual(got, []string{"a", "b", "c"}) {
			t.Errorf("History() = %v, want [a b c]", got)
		}
	})
}

func TestBack(t *testing.T) {
	t.Run("RoundTripRestoresHistory", func(t *testing.T) {
		nav, err := New(threeLevels(t), "a")
		if err != nil {
			t.Fatalf("New: %v", err)
		}
		if err := nav.ToChild("b"); err != nil {
			t.Fatalf("ToChild: %v", err)
		}
		before := nav.History()
		if err := nav.ToChild("c"); err != nil {
			t.Fatalf("ToChild: %v", err)
		}
		moved, err := nav.Back()
		if err != nil || !moved {
			t.Fatalf("Back() = (%v, %v), want (true, nil)", moved, err)
		}
		if nav.Current() != "b" {
			t.Errorf("Current() = %q, want b", nav.Current())
		}
		if got := nav.History(); !reflect.DeepEqual(got, before) {
			t.Errorf("History() = %v, want %v", got, before)
		}
	})

	t.Run("EmptyHistoryIsNoop", func(t *testing.T) {
		nav, err := New(threeLevels(t), "a")
		if err != nil {
			t.Fatalf("New: %v", err)
		}
		moved, err := nav.Back()
		if moved || err != nil {
			t.Errorf("Back() = (%v, %v), want (false, nil)", moved, err)
		}
		if nav.Current() != "a" {
			t.Errorf("Current() = %q, want a", nav.Current())
		}
	})

	t.Run("DeadEntryPopsAndStays", func(t *testing.T) {
		nav, err := New(threeLevels(t), "a")
		if err != nil {
			t.Fatalf("New: %v", err)
		}
		for _, id := range []string{"b", "c"} {
			if err := nav.ToChild(id); err != nil {
				t.Fatalf("ToChild(%s): %v", id, err)
			}
		}
		// Rebuild the document without b while the operator sits on c.
		smaller, err := mapgraph.FromNodes(
			mapgraph.MapNode{ID: "a", ImageURL: "a.png"},
			mapgraph.MapNode{ID: "c", ImageURL: "c.png"},
		)
		if err != nil {
			t.Fatalf("FromNodes: %v", err)
		}
		if !nav.SetGraph(smaller) {
			t.Fatal("SetGraph reported degradation, current map still exists")
		}

		moved, err := nav.Back()
		if moved || !errors.Is(err, errors.ErrCodeHistoryCorrupted) {
			t.Fatalf("Back() = (%v, %v), want (false, HISTORY_CORRUPTED)", moved, err)
		}
		if nav.Current() != "c" {
			t.Errorf("Current() = %q after corrupted pop, want c", nav.Current())
		}
		if got := nav.History(); !reflect.DeepEqual(got, []string{"a"}) {
			t.Errorf("History() = %v, want [a]", got)
		}

		// The dead entry is consumed, so retrying reaches a.
		moved, err = nav.Back()
		if err != nil || !moved {
			t.Fatalf("second Back() = (%v, %v), want (true, nil)", moved, err)
		}
		if nav.Current() != "a" {
			t.Errorf("Current() = %q, want a", nav.Current())
		}
	})
}

func TestSetGraph(t *testing.T) {
	t.Run("CurrentSurvivesMutation", func(t *testing.T) {
		g := threeLevels(t)
		nav, err := New(g, "a")
		if err != nil {
			t.Fatalf("New: %v", err)
		}
		next, err := g.SetMapImage("a", "fresh.png")
		if err != nil {
			t.Fatalf("SetMapImage: %v", err)
		}
		if !nav.SetGraph(next) {
			t.Fatal("SetGraph() = false, current map still present")
		}
		d, err := nav.Display()
		if err != nil {
			t.Fatalf("Display: %v", err)
		}
		if d.ImageURL != "fresh.png" {
			t.Errorf("ImageURL = %q, want fresh.png", d.ImageURL)
		}
	})

	t.Run("OrphanedCurrentDegrades", func(t *testing.T) {
		g := threeLevels(t)
		nav, err := New(g, "a")
		if err != nil {
			t.Fatalf("New: %v", err)
		}
		if err := nav.ToChild("b"); err != nil {
			t.Fatalf("ToChild: %v", err)
		}
		// Removing a's only link to b sweeps b out from under the operator.
		next, res, err := g.DeleteHotspot("a", "a-b")
		if err != nil {
			t.Fatalf("DeleteHotspot: %v", err)
		}
		if res.OrphanRemoved != "b" {
			t.Fatalf("OrphanRemoved = %q, want b", res.OrphanRemoved)
		}
		if nav.SetGraph(next) {
			t.Fatal("SetGraph() = true, current map was deleted")
		}
		if !nav.Degraded() {
			t.Error("Degraded() = false")
		}
		if _, err := nav.Display(); !errors.Is(err, errors.ErrCodeConsistency) {
			t.Errorf("Display() while degraded = %v, want CONSISTENCY", err)
		}

		// Back still works: a survived and now shows zero hotspots.
		moved, err := nav.Back()
		if err != nil || !moved {
			t.Fatalf("Back() = (%v, %v), want (true, nil)", moved, err)
		}
		d, err := nav.Display()
		if err != nil {
			t.Fatalf("Display: %v", err)
		}
		if d.MapID != "a" || len(d.Hotspots) != 0 {
			t.Errorf("Display = %q with %d hotspots, want a with 0", d.MapID, len(d.Hotspots))
		}
	})
}

func TestLoad(t *testing.T) {
	t.Run("ResetsHistory", func(t *testing.T) {
		nav, err := New(threeLevels(t), "a")
		if err != nil {
			t.Fatalf("New: %v", err)
		}
		if err := nav.ToChild("b"); err != nil {
			t.Fatalf("ToChild: %v", err)
		}
		fresh, err := mapgraph.FromNodes(mapgraph.MapNode{ID: "home", ImageURL: "home.png"})
		if err != nil {
			t.Fatalf("FromNodes: %v", err)
		}
		if err := nav.Load(fresh, "home"); err != nil {
			t.Fatalf("Load: %v", err)
		}
		if nav.Current() != "home" {
			t.Errorf("Current() = %q, want home", nav.Current())
		}
		if nav.CanGoBack() {
			t.Error("CanGoBack() = true after load")
		}
	})

	t.Run("MissingRootLeavesNavigatorAlone", func(t *testing.T) {
		nav, err := New(threeLevels(t), "a")
		if err != nil {
			t.Fatalf("New: %v", err)
		}
		if err := nav.ToChild("b"); err != nil {
			t.Fatalf("ToChild: %v", err)
		}
		fresh, err := mapgraph.FromNodes(mapgraph.MapNode{ID: "home", ImageURL: "home.png"})
		if err != nil {
			t.Fatalf("FromNodes: %v", err)
		}
		if err := nav.Load(fresh, "nope"); !errors.Is(err, errors.ErrCodeMapNotFound) {
			t.Fatalf("Load(missing root) = %v, want MAP_NOT_FOUND", err)
		}
		if nav.Current() != "b" || !nav.CanGoBack() {
			t.Errorf("navigator disturbed by failed load: current=%q depth=%d", nav.Current(), nav.Depth())
		}
	})
}

func TestDisplay(t *testing.T) {
	nav, err := New(threeLevels(t), "a")
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	d, err := nav.Display()
	if err != nil {
		t.Fatalf("Display: %v", err)
	}
	if d.MapID != "a" || d.ImageURL != "a.png" {
		t.Errorf("Display = %q/%q, want a/a.png", d.MapID, d.ImageURL)
	}
	if len(d.Hotspots) != 1 || d.Hotspots[0].ID != "a-b" {
		t.Errorf("Hotspots = %v, want single a-b", d.Hotspots)
	}
	if d.CanGoBack {
		t.Error("CanGoBack = true at root")
	}

	if err := nav.ToChild("b"); err != nil {
		t.Fatalf("ToChild: %v", err)
	}
	d, err = nav.Display()
	if err != nil {
		t.Fatalf("Display: %v", err)
	}
	if !d.CanGoBack {
		t.Error("CanGoBack = false below root")
	}
}

func TestHistoryCopyIsDetached(t *testing.T) {
	nav, err := New(threeLevels(t), "a")
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if err := nav.ToChild("b"); err != nil {
		t.Fatalf("ToChild: %v", err)
	}
	h := nav.History()
	h[0] = "tampered"
	if got := nav.History(); got[0] != "a" {
		t.Errorf("History() = %v, internal stack was mutated through the copy", got)
	}
}
