package viewer

import (
	"testing"

	"github.com/quillsign/quillsign/internal/sign"
)

func overlayFields() []sign.Field {
	return []sign.Field{
		{ID: "f1", Kind: sign.FieldKindSignature, Geometry: sign.Geometry{Page: 1, X: 10, Y: 10, Width: 20, Height: 10}},
		{ID: "f2", Kind: sign.FieldKindText, Geometry: sign.Geometry{Page: 1, X: 25, Y: 15, Width: 20, Height: 10}},
		{ID: "f3", Kind: sign.FieldKindDate, Geometry: sign.Geometry{Page: 2, X: 10, Y: 10, Width: 20, Height: 10}},
	}
}

func TestHitTest(t *testing.T) {
	fields := overlayFields()

	tests := []struct {
		name  string
		page  int
		point PercentPoint
		want  string
	}{
		{"inside first field", 1, PercentPoint{X: 15, Y: 12}, "f1"},
		{"overlap resolves to first in list order", 1, PercentPoint{X: 28, Y: 18}, "f1"},
		{"inside second field only", 1, PercentPoint{X: 40, Y: 22}, "f2"},
		{"edge is inclusive", 1, PercentPoint{X: 10, Y: 10}, "f1"},
		{"same point, other page", 2, PercentPoint{X: 15, Y: 12}, "f3"},
		{"empty area", 1, PercentPoint{X: 90, Y: 90}, ""},
		{"page without fields", 3, PercentPoint{X: 15, Y: 12}, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := HitTest(fields, tt.page, tt.point)
			switch {
			case tt.want == "" && got != nil:
				t.Errorf("hit %s, want no hit", got.ID)
			case tt.want != "" && got == nil:
				t.Errorf("no hit, want %s", tt.want)
			case tt.want != "" && got.ID != tt.want:
				t.Errorf("hit %s, want %s", got.ID, tt.want)
			}
		})
	}
}

func TestClampDrag(t *testing.T) {
	g := sign.Geometry{Page: 1, X: 10, Y: 10, Width: 30, Height: 20}

	tests := []struct {
		name           string
		inX, inY       float64
		wantX, wantY   float64
	}{
		{"inside stays put", 40, 50, 40, 50},
		{"negative clamps to zero", -5, -10, 0, 0},
		{"right edge", 95, 50, 70, 50},
		{"bottom edge", 40, 99, 40, 80},
		{"both axes", 200, 200, 70, 80},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			x, y := ClampDrag(g, tt.inX, tt.inY)
			if x != tt.wantX || y != tt.wantY {
				t.Errorf("clamp(%v,%v) = (%v,%v), want (%v,%v)", tt.inX, tt.inY, x, y, tt.wantX, tt.wantY)
			}
		})
	}
}
