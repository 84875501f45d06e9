package pdf

import (
	"strings"
)

// BoundingBox represents a rectangular area in page space
type BoundingBox struct {
	X0 float64 // Left
	Y0 float64 // Bottom
	X1 float64 // Right
	Y1 float64 // Top
}

// Width returns the width of the bounding box
func (b BoundingBox) Width() float64 {
	return b.X1 - b.X0
}

// Height returns the height of the bounding box
func (b BoundingBox) Height() float64 {
	return b.Y1 - b.Y0
}

// Contains checks if a point is within the bounding box, edges included
func (b BoundingBox) Contains(x, y float64) bool {
	return x >= b.X0 && x <= b.X1 && y >= b.Y0 && y <= b.Y1
}

// Intersects checks if two bounding boxes intersect
func (b BoundingBox) Intersects(other BoundingBox) bool {
	return !(b.X1 < other.X0 || b.X0 > other.X1 || b.Y1 < other.Y0 || b.Y0 > other.Y1)
}

// TransformMatrix represents a 2D transformation matrix
type TransformMatrix struct {
	A, B, C, D, E, F float64
}

// Translation returns a matrix that only moves the origin to (x, y)
func Translation(x, y float64) TransformMatrix {
	return TransformMatrix{A: 1, D: 1, E: x, F: y}
}

// TextRun is a positioned string fragment emitted for a page.
// The anchor point is the horizontal and vertical offset of Transform,
// expressed in page space (origin bottom-left, y increasing upward).
type TextRun struct {
	Text      string
	Transform TransformMatrix
	Font      string
	FontSize  float64
	Width     float64
}

// Anchor returns the run's anchor point in page space
func (r TextRun) Anchor() (x, y float64) {
	return r.Transform.E, r.Transform.F
}

// Blank reports whether the run carries no visible text
func (r TextRun) Blank() bool {
	return strings.TrimSpace(r.Text) == ""
}

// Viewport holds a page's dimensions at a 1:1 scale factor
type Viewport struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// BBox returns the viewport as a page-space bounding box
func (v Viewport) BBox() BoundingBox {
	return BoundingBox{X0: 0, Y0: 0, X1: v.Width, Y1: v.Height}
}

// TextRunOption is a function that modifies how glyphs are merged into runs
type TextRunOption func(*textRunConfig)

type textRunConfig struct {
	XTolerance float64
	YTolerance float64
}

func defaultTextRunConfig() textRunConfig {
	return textRunConfig{
		XTolerance: 3,
		YTolerance: 1,
	}
}

// WithXTolerance sets the largest horizontal gap between two glyphs of the same run
func WithXTolerance(tolerance float64) TextRunOption {
	return func(c *textRunConfig) {
		c.XTolerance = tolerance
	}
}

// WithYTolerance sets the largest baseline drift between two glyphs of the same run
func WithYTolerance(tolerance float64) TextRunOption {
	return func(c *textRunConfig) {
		c.YTolerance = tolerance
	}
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
