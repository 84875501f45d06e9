// Package coords maps a selection on the render surface into PDF page space.
//
// The render surface has its origin at the top-left with y increasing
// downward; page space has its origin at the bottom-left with y increasing
// upward. The only scale applied is the surface-to-viewport ratio.
package coords

import (
	"errors"
	"fmt"

	"github.com/pyhub-apps/pdfregion/pkg/pdf"
	"github.com/pyhub-apps/pdfregion/pkg/selection"
)

// ErrSurfaceNotReady indicates the render surface has not been laid out yet
var ErrSurfaceNotReady = errors.New("render surface not ready")

// Size is the on-screen size of the render surface in pixels
type Size struct {
	Width  float64 `json:"width" validate:"gte=0"`
	Height float64 `json:"height" validate:"gte=0"`
}

// Ready reports whether both dimensions are positive
func (s Size) Ready() bool {
	return s.Width > 0 && s.Height > 0
}

// PageRect is a selection expressed in page space. Y is the page-space
// coordinate of the selection's top edge; the rectangle extends Height
// points downward from there.
type PageRect struct {
	X      float64
	Y      float64
	Width  float64
	Height float64
}

// Left returns the left edge
func (r PageRect) Left() float64 { return r.X }

// Right returns the right edge
func (r PageRect) Right() float64 { return r.X + r.Width }

// Top returns the top edge
func (r PageRect) Top() float64 { return r.Y }

// Bottom returns the bottom edge
func (r PageRect) Bottom() float64 { return r.Y - r.Height }

// Degenerate reports whether the rectangle has no area
func (r PageRect) Degenerate() bool {
	return r.Width == 0 || r.Height == 0
}

// BBox returns the rectangle as a page-space bounding box
func (r PageRect) BBox() pdf.BoundingBox {
	return pdf.BoundingBox{
		X0: r.Left(),
		Y0: r.Bottom(),
		X1: r.Right(),
		Y1: r.Top(),
	}
}

// Contains reports whether a page-space point lies inside, edges included
func (r PageRect) Contains(x, y float64) bool {
	return r.BBox().Contains(x, y)
}

// Map converts a surface rectangle into page space
func Map(rect selection.Rect, surface Size, viewport pdf.Viewport) (PageRect, error) {
	if !surface.Ready() {
		return PageRect{}, fmt.Errorf("%w: surface is %.0fx%.0f", ErrSurfaceNotReady, surface.Width, surface.Height)
	}

	sx := viewport.Width / surface.Width
	sy := viewport.Height / surface.Height

	return PageRect{
		X:      rect.X * sx,
		Width:  rect.Width * sx,
		Y:      (surface.Height - rect.Y) * sy,
		Height: rect.Height * sy,
	}, nil
}
