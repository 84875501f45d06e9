// Package selection converts pointer drag gestures into a rectangle on the
// render surface.
package selection

import (
	"math"
)

// Point is a position in surface pixels, origin top-left, y increasing downward
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Sub returns p relative to origin. Used to turn client coordinates into
// surface coordinates by subtracting the surface's bounding box corner.
func (p Point) Sub(origin Point) Point {
	return Point{X: p.X - origin.X, Y: p.Y - origin.Y}
}

// Rect is a selection in surface pixels. X and Y locate the top-left corner;
// Width and Height are never negative.
type Rect struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// RectFromPoints normalizes a drag from a to b
func RectFromPoints(a, b Point) Rect {
	return Rect{
		X:      math.Min(a.X, b.X),
		Y:      math.Min(a.Y, b.Y),
		Width:  math.Abs(b.X - a.X),
		Height: math.Abs(b.Y - a.Y),
	}
}

// Empty reports whether the rectangle has no area
func (r Rect) Empty() bool {
	return r.Width == 0 || r.Height == 0
}

// State of the tracker
type State int

const (
	Idle State = iota
	Selecting
)

func (s State) String() string {
	if s == Selecting {
		return "selecting"
	}
	return "idle"
}

// Tracker follows one drag gesture at a time: idle -> selecting -> idle.
// The last rectangle persists into idle so it can be exported later.
type Tracker struct {
	state   State
	anchor  Point
	rect    Rect
	hasRect bool
}

// NewTracker returns an idle tracker with no selection
func NewTracker() *Tracker {
	return &Tracker{}
}

// PointerDown records the drag anchor and starts selecting.
// Any previous selection is dropped.
func (t *Tracker) PointerDown(p Point) {
	t.state = Selecting
	t.anchor = p
	t.rect = Rect{X: p.X, Y: p.Y}
	t.hasRect = false
}

// PointerMove updates the rectangle while selecting. It returns false when
// the tracker is idle and the event was ignored.
func (t *Tracker) PointerMove(p Point) (Rect, bool) {
	if t.state != Selecting {
		return Rect{}, false
	}
	t.rect = RectFromPoints(t.anchor, p)
	return t.rect, true
}

// PointerUp ends the drag and keeps the last rectangle.
// A drag without movement leaves a zero-size rectangle at the anchor.
func (t *Tracker) PointerUp() {
	if t.state != Selecting {
		return
	}
	t.state = Idle
	t.hasRect = true
}

// PointerLeave behaves like PointerUp
func (t *Tracker) PointerLeave() {
	t.PointerUp()
}

// Selection returns the last completed rectangle, if any
func (t *Tracker) Selection() (Rect, bool) {
	if !t.hasRect {
		return Rect{}, false
	}
	return t.rect, true
}

// Current returns the rectangle being dragged or the last completed one
func (t *Tracker) Current() Rect {
	return t.rect
}

// State returns the tracker state
func (t *Tracker) State() State {
	return t.state
}

// Selecting reports whether a drag is in progress
func (t *Tracker) Selecting() bool {
	return t.state == Selecting
}

// Reset drops any selection and returns to idle
func (t *Tracker) Reset() {
	*t = Tracker{}
}
