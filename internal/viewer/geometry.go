// Package viewer maps field geometry between the document's percentage
// coordinate space and the pixel space of a rendered page, and decides how an
// uploaded file gets rendered. It draws nothing itself: rendering is delegated
// to pluggable renderers, and the overlay consumer positions its own widgets
// from the pixel rectangles computed here.
package viewer

import (
	"fmt"

	"github.com/quillsign/quillsign/internal/sign"
)

// Rotation is the clockwise page rotation in degrees.
type Rotation int

const (
	Rotate0   Rotation = 0
	Rotate90  Rotation = 90
	Rotate180 Rotation = 180
	Rotate270 Rotation = 270
)

// Normalize folds any multiple of 90 into one of the four canonical rotations.
func (r Rotation) Normalize() (Rotation, error) {
	if r%90 != 0 {
		return 0, sign.NewValidationError(fmt.Sprintf("rotation %d is not a multiple of 90", r))
	}
	n := int(r) % 360
	if n < 0 {
		n += 360
	}
	return Rotation(n), nil
}

// PageMetrics describes the rendered surface a page is drawn onto: the
// unrotated page size at zoom 1, the current zoom factor, and the rotation.
type PageMetrics struct {
	Width    float64
	Height   float64
	Zoom     float64
	Rotation Rotation
}

// DisplaySize returns the on-screen pixel size of the page surface, accounting
// for zoom and for the axis swap at 90 and 270 degrees.
func (m PageMetrics) DisplaySize() (w, h float64) {
	w, h = m.Width*m.Zoom, m.Height*m.Zoom
	if m.Rotation == Rotate90 || m.Rotation == Rotate270 {
		w, h = h, w
	}
	return w, h
}

func (m PageMetrics) validate() error {
	if m.Width <= 0 || m.Height <= 0 {
		return sign.NewValidationError("page metrics require positive width and height")
	}
	if m.Zoom <= 0 {
		return sign.NewValidationError("zoom must be positive")
	}
	if _, err := m.Rotation.Normalize(); err != nil {
		return err
	}
	return nil
}

// PixelRect is an axis-aligned rectangle on the rendered surface, in pixels.
type PixelRect struct {
	X      float64
	Y      float64
	Width  float64
	Height float64
}

// PercentPoint is a point in the document's page space, each axis 0–100.
type PercentPoint struct {
	X float64
	Y float64
}

// ToPixels converts a field's percentage geometry into the pixel rectangle it
// occupies on the rendered surface under the given zoom and rotation. The
// geometry's page number is not consulted; callers select fields per page.
func ToPixels(g sign.Geometry, m PageMetrics) (PixelRect, error) {
	if err := m.validate(); err != nil {
		return PixelRect{}, err
	}
	rot, _ := m.Rotation.Normalize()

	// rotate the rectangle inside percent space first, then scale
	x, y, w, h := g.X, g.Y, g.Width, g.Height
	switch rot {
	case Rotate90:
		x, y, w, h = 100-g.Y-g.Height, g.X, g.Height, g.Width
	case Rotate180:
		x, y = 100-g.X-g.Width, 100-g.Y-g.Height
	case Rotate270:
		x, y, w, h = g.Y, 100-g.X-g.Width, g.Height, g.Width
	}

	dw, dh := m.DisplaySize()
	return PixelRect{
		X:      x / 100 * dw,
		Y:      y / 100 * dh,
		Width:  w / 100 * dw,
		Height: h / 100 * dh,
	}, nil
}

// ToPercent converts an on-surface pixel point back into the document's
// unrotated percentage space, so pointer events can be matched against field
// geometry regardless of how the page is currently displayed.
func ToPercent(px, py float64, m PageMetrics) (PercentPoint, error) {
	if err := m.validate(); err != nil {
		return PercentPoint{}, err
	}
	rot, _ := m.Rotation.Normalize()

	dw, dh := m.DisplaySize()
	rx, ry := px/dw*100, py/dh*100

	switch rot {
	case Rotate90:
		rx, ry = ry, 100-rx
	case Rotate180:
		rx, ry = 100-rx, 100-ry
	case Rotate270:
		rx, ry = 100-ry, rx
	}
	return PercentPoint{X: rx, Y: ry}, nil
}
