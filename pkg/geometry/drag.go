package geometry

// Drag tracks a single in-flight drawing gesture on the presentation
// surface. It only records screen-space points; converting the finished
// gesture into a hotspot is [HotspotFromDrag]'s job, so the minimum-size
// discard rule lives in exactly one place.
//
// Lifecycle: Begin on pointer-down, Move on each pointer-move, then either
// End on pointer-up or Cancel when the pointer leaves the surface or the
// edit mode changes mid-drag. After End or Cancel the tracker is idle again
// and safe to reuse.
type Drag struct {
	active bool
	start  Point
	last   Point
}

// Begin starts a new gesture at p. Beginning while a gesture is already
// active discards the old one.
func (d *Drag) Begin(p Point) {
	d.active = true
	d.start = p
	d.last = p
}

// Move records pointer movement and returns the live preview rectangle in
// screen space. Returns ok=false when no gesture is active.
func (d *Drag) Move(p Point) (Rect, bool) {
	if !d.active {
		return Rect{}, false
	}
	d.last = p
	return NormalizeDrag(d.start, p), true
}

// End finishes the gesture at p and returns its endpoints for
// [HotspotFromDrag]. Returns ok=false when no gesture is active. The
// tracker is idle afterwards either way.
func (d *Drag) End(p Point) (start, end Point, ok bool) {
	if !d.active {
		return Point{}, Point{}, false
	}
	start, end = d.start, p
	d.reset()
	return start, end, true
}

// Cancel abandons the gesture without committing anything.
func (d *Drag) Cancel() { d.reset() }

// Active reports whether a gesture is in flight.
func (d *Drag) Active() bool { return d.active }

// Preview returns the current preview rectangle without advancing the
// gesture. Returns ok=false when no gesture is active.
func (d *Drag) Preview() (Rect, bool) {
	if !d.active {
		return Rect{}, false
	}
	return NormalizeDrag(d.start, d.last), true
}

func (d *Drag) reset() {
	d.active = false
	d.start = Point{}
	d.last = Point{}
}
