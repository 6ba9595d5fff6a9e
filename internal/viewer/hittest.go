package viewer

import "github.com/quillsign/quillsign/internal/sign"

// HitTest returns the field on the given page whose rectangle contains the
// point, or nil. The point is in percentage space (already unrotated, see
// ToPercent). Overlapping fields resolve to the first match in list order,
// which is insertion order on the document.
func HitTest(fields []sign.Field, page int, p PercentPoint) *sign.Field {
	for i := range fields {
		f := &fields[i]
		if f.Geometry.Page != page {
			continue
		}
		if f.Geometry.Contains(p.X, p.Y) {
			return f
		}
	}
	return nil
}

// ClampDrag clamps a proposed field origin so the whole rectangle stays on the
// page: x into [0, 100−width], y into [0, 100−height]. A field can therefore
// never be dragged off-surface, however far the pointer travels.
func ClampDrag(g sign.Geometry, newX, newY float64) (x, y float64) {
	x = clamp(newX, 0, 100-g.Width)
	y = clamp(newY, 0, 100-g.Height)
	return x, y
}

func clamp(v, lo, hi float64) float64 {
	if hi < lo {
		hi = lo
	}
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
