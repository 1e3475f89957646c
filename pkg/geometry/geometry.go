// Package geometry converts between the three coordinate spaces of an atlas
// view: screen pixels (what the pointer reports), canvas pixels (the image at
// its canonical resolution), and percentages of the canonical canvas (how
// hotspots are stored).
//
// Hotspots are persisted as percentages of a fixed canonical canvas so their
// positions survive any display size. The view applies a [Transform] (zoom
// scale plus pan offset) between canvas space and screen space:
//
//	screen = canvas*scale + pan
//	canvas = (screen - pan) / scale
//
// [ScreenToPercent] and [PercentToScreen] compose the two steps and are exact
// algebraic inverses of each other, so a rectangle drawn on screen and
// immediately re-rendered lands on the same pixels.
//
// All functions are pure; the only stateful type is [Drag], the tracker for
// an in-flight drawing gesture.
package geometry

import "math"

// MinHotspotPct is the minimum width and height of a stored hotspot, in
// percent of the canonical canvas. Prevents degenerate zero-area hotspots.
const MinHotspotPct = 0.1

// MinDragPx is the minimum screen width and height of a drag gesture.
// Anything smaller is treated as an accidental click and discarded.
const MinDragPx = 1.0

// Point is a 2D coordinate.
type Point struct {
	X, Y float64
}

// Rect is an axis-aligned rectangle anchored at its top-left corner.
// The same type is used in all three coordinate spaces; which space a value
// lives in is determined by the function that produced it.
type Rect struct {
	X, Y, W, H float64
}

// Contains reports whether p lies inside the rectangle (edges inclusive).
func (r Rect) Contains(p Point) bool {
	return p.X >= r.X && p.X <= r.X+r.W && p.Y >= r.Y && p.Y <= r.Y+r.H
}

// Area returns the rectangle's area.
func (r Rect) Area() float64 { return r.W * r.H }

// Transform is the view state of one map: zoom scale and pan offset, both in
// screen pixels. The zero value is not usable (zero scale); use [Identity]
// or [FitTransform].
type Transform struct {
	Scale float64 `json:"scale" bson:"scale"`
	PanX  float64 `json:"pan_x" bson:"pan_x"`
	PanY  float64 `json:"pan_y" bson:"pan_y"`
}

// Identity returns the neutral transform (scale 1, no pan).
func Identity() Transform { return Transform{Scale: 1} }

// Valid reports whether the transform can be inverted.
// A non-positive scale would collapse or mirror the view.
func (t Transform) Valid() bool {
	return t.Scale > 0 && !math.IsNaN(t.Scale) && !math.IsInf(t.Scale, 0) &&
		!math.IsNaN(t.PanX) && !math.IsNaN(t.PanY)
}

// Canvas is the canonical reference resolution hotspot percentages are
// relative to. It is a property of the document, independent of any actual
// display size.
type Canvas struct {
	Width, Height float64
}

// DefaultCanvas is the canonical canvas used when a document does not
// specify its own.
var DefaultCanvas = Canvas{Width: 1600, Height: 1200}

// Valid reports whether both canvas dimensions are positive.
func (c Canvas) Valid() bool {
	return c.Width > 0 && c.Height > 0
}

// NormalizeDrag converts two drag endpoints into a rectangle with
// non-negative width and height, regardless of drag direction.
func NormalizeDrag(start, end Point) Rect {
	return Rect{
		X: math.Min(start.X, end.X),
		Y: math.Min(start.Y, end.Y),
		W: math.Abs(end.X - start.X),
		H: math.Abs(end.Y - start.Y),
	}
}

// ScreenToCanvas maps a screen-pixel rectangle into canvas space by
// removing the current pan and zoom.
func ScreenToCanvas(r Rect, t Transform) Rect {
	return Rect{
		X: (r.X - t.PanX) / t.Scale,
		Y: (r.Y - t.PanY) / t.Scale,
		W: r.W / t.Scale,
		H: r.H / t.Scale,
	}
}

// CanvasToScreen maps a canvas-space rectangle back to screen pixels by
// applying the current pan and zoom. It is the inverse of [ScreenToCanvas].
func CanvasToScreen(r Rect, t Transform) Rect {
	return Rect{
		X: r.X*t.Scale + t.PanX,
		Y: r.Y*t.Scale + t.PanY,
		W: r.W * t.Scale,
		H: r.H * t.Scale,
	}
}

// CanvasToPercent expresses a canvas-space rectangle as percentages of the
// canonical canvas.
func CanvasToPercent(r Rect, c Canvas) Rect {
	return Rect{
		X: r.X / c.Width * 100,
		Y: r.Y / c.Height * 100,
		W: r.W / c.Width * 100,
		H: r.H / c.Height * 100,
	}
}

// PercentToCanvas expands a percentage rectangle back into canvas pixels.
// It is the inverse of [CanvasToPercent].
func PercentToCanvas(r Rect, c Canvas) Rect {
	return Rect{
		X: r.X / 100 * c.Width,
		Y: r.Y / 100 * c.Height,
		W: r.W / 100 * c.Width,
		H: r.H / 100 * c.Height,
	}
}

// ScreenToPercent converts a screen-pixel rectangle to canonical
// percentages under the given view transform. No clamping is applied; use
// [ClampPercent] (or [HotspotFromDrag], which does both) before storing the
// result as a hotspot.
func ScreenToPercent(r Rect, t Transform, c Canvas) Rect {
	return CanvasToPercent(ScreenToCanvas(r, t), c)
}

// PercentToScreen renders a canonical-percentage rectangle at the current
// zoom and pan. It is the exact algebraic inverse of [ScreenToPercent].
func PercentToScreen(r Rect, t Transform, c Canvas) Rect {
	return CanvasToScreen(PercentToCanvas(r, c), t)
}

// ClampPercent confines a percentage rectangle to the canonical canvas:
// origin within [0,100], width and height at least [MinHotspotPct] and no
// larger than the space remaining to the right/bottom edge.
func ClampPercent(r Rect) Rect {
	r.X = clamp(r.X, 0, 100)
	r.Y = clamp(r.Y, 0, 100)
	r.W = math.Max(r.W, MinHotspotPct)
	r.H = math.Max(r.H, MinHotspotPct)
	r.W = math.Min(r.W, 100-r.X)
	r.H = math.Min(r.H, 100-r.Y)
	// A start point on the far edge leaves less room than the minimum size;
	// pull the origin back so the minimum still fits.
	if r.W < MinHotspotPct {
		r.W = MinHotspotPct
		r.X = 100 - MinHotspotPct
	}
	if r.H < MinHotspotPct {
		r.H = MinHotspotPct
		r.Y = 100 - MinHotspotPct
	}
	return r
}

// HotspotFromDrag turns a raw drag gesture into a stored hotspot rectangle:
// normalize the endpoints, discard drags below [MinDragPx] in either screen
// dimension, convert to canonical percentages, clamp. Returns ok=false when
// the drag was discarded or the transform/canvas is unusable.
func HotspotFromDrag(start, end Point, t Transform, c Canvas) (Rect, bool) {
	if !t.Valid() || !c.Valid() {
		return Rect{}, false
	}
	screen := NormalizeDrag(start, end)
	if screen.W < MinDragPx || screen.H < MinDragPx {
		return Rect{}, false
	}
	return ClampPercent(ScreenToPercent(screen, t, c)), true
}

// FitTransform computes the "fit to container" view for an image of the
// given natural size: the largest uniform scale at which the whole image is
// visible, centered in the container. This is the transform used when no
// cached view exists for a map.
func FitTransform(imageW, imageH, containerW, containerH float64) Transform {
	if imageW <= 0 || imageH <= 0 || containerW <= 0 || containerH <= 0 {
		return Identity()
	}
	scale := math.Min(containerW/imageW, containerH/imageH)
	return Transform{
		Scale: scale,
		PanX:  (containerW - imageW*scale) / 2,
		PanY:  (containerH - imageH*scale) / 2,
	}
}

func clamp(v, lo, hi float64) float64 {
	return math.Min(math.Max(v, lo), hi)
}
