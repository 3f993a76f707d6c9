package geom

import (
	"math"
	"testing"
)

func TestRect(t *testing.T) {
	r := Rect{X: 10, Y: 20, W: 100, H: 50}
	if got := r.Center(); got != (Point{X: 60, Y: 45}) {
		t.Errorf("Center() = %v", got)
	}
	if r.Right() != 110 || r.Bottom() != 70 {
		t.Errorf("Right/Bottom = %g/%g", r.Right(), r.Bottom())
	}
	if !r.Contains(Point{X: 50, Y: 30}) {
		t.Error("Contains(inside) = false")
	}
	if r.Contains(Point{X: 10, Y: 30}) {
		t.Error("Contains(edge) = true, want strict")
	}
}

func TestSegmentsCross(t *testing.T) {
	tests := []struct {
		name           string
		p1, p2, p3, p4 Point
		want           bool
	}{
		{"x shape", Point{0, 0}, Point{10, 10}, Point{0, 10}, Point{10, 0}, true},
		{"parallel", Point{0, 0}, Point{10, 0}, Point{0, 5}, Point{10, 5}, false},
		{"apart", Point{0, 0}, Point{1, 1}, Point{5, 0}, Point{6, 1}, false},
		{"touching end", Point{0, 0}, Point{10, 0}, Point{10, 0}, Point{10, 10}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := SegmentsCross(tt.p1, tt.p2, tt.p3, tt.p4); got != tt.want {
				t.Errorf("SegmentsCross() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestIntersection(t *testing.T) {
	got := Intersection(Point{0, 0}, Point{10, 0}, Point{5, -5}, Point{5, 5})
	if got != (Point{X: 5, Y: 0}) {
		t.Errorf("Intersection() = %v, want (5,0)", got)
	}
}

func TestBoxIntersection(t *testing.T) {
	r := Rect{X: 0, Y: 100, W: 100, H: 50}

	p, ok := BoxIntersection(r, Point{50, 0}, r.Center())
	if !ok || p != (Point{X: 50, Y: 100}) {
		t.Errorf("vertical entry = %v, %v; want (50,100)", p, ok)
	}

	p, ok = BoxIntersection(r, Point{-50, 125}, r.Center())
	if !ok || p != (Point{X: 0, Y: 125}) {
		t.Errorf("horizontal entry = %v, %v; want (0,125)", p, ok)
	}

	if _, ok := BoxIntersection(r, Point{0, 0}, Point{10, 10}); ok {
		t.Error("miss reported a hit")
	}
}

func TestDistance(t *testing.T) {
	if d := Distance(Point{0, 0}, Point{3, 4}); math.Abs(d-5) > 1e-12 {
		t.Errorf("Distance() = %g, want 5", d)
	}
}

func TestPathString(t *testing.T) {
	pts := []Point{{X: 1, Y: 2}, {X: 3.5, Y: 4}}
	if got := PathString(pts, false); got != "M1,2 L3.5,4" {
		t.Errorf("PathString() = %q", got)
	}
	if got := PathString(pts, true); got != "M2,1 L4,3.5" {
		t.Errorf("PathString(swap) = %q", got)
	}
	if got := PathString(nil, false); got != "" {
		t.Errorf("PathString(nil) = %q", got)
	}
}
