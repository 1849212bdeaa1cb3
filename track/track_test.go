package track

import (
	"errors"
	"math"
	"testing"
)

func square(t *testing.T, width float32) *Track {
	t.Helper()
	tr, err := New([]Vec2{V(100, 100), V(500, 100), V(500, 500), V(100, 500)}, width)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return tr
}

func approx(a, b float32) bool {
	return math.Abs(float64(a-b)) < 1e-3
}

func TestNewRejectsTooFewWaypoints(t *testing.T) {
	for n := 0; n < 3; n++ {
		pts := make([]Vec2, n)
		for i := range pts {
			pts[i] = V(float32(i), 0)
		}
		_, err := New(pts, 10)
		if !errors.Is(err, ErrTooFewWaypoints) {
			t.Errorf("%d waypoints: got %v, want ErrTooFewWaypoints", n, err)
		}
	}
}

func TestNewRejectsNonPositiveWidth(t *testing.T) {
	if _, err := New([]Vec2{V(0, 0), V(1, 0), V(0, 1)}, 0); err == nil {
		t.Error("expected error for zero width")
	}
}

func TestNewCopiesWaypoints(t *testing.T) {
	pts := []Vec2{V(0, 0), V(100, 0), V(0, 100)}
	tr, err := New(pts, 10)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	pts[0] = V(999, 999)
	if tr.Point(0) != V(0, 0) {
		t.Error("track shares storage with caller's slice")
	}
}

func TestDefault(t *testing.T) {
	tr := Default()
	if tr.NumSectors() != 20 {
		t.Errorf("sectors: got %d, want 20", tr.NumSectors())
	}
	if tr.Width() != 100 {
		t.Errorf("width: got %v, want 100", tr.Width())
	}
	if got, want := tr.StartPosition(), V(580.5, 141); got != want {
		t.Errorf("start: got %v, want %v", got, want)
	}
	if h := tr.StartHeading(); math.Abs(float64(h)) > math.Pi/180 {
		t.Errorf("start heading: got %v rad, want within 1 degree of 0", h)
	}
}

func TestSectorOf(t *testing.T) {
	tr := square(t, 40)
	tests := []struct {
		name string
		p    Vec2
		want int
	}{
		{"top edge", V(300, 100), 0},
		{"right edge", V(500, 300), 1},
		{"bottom edge", V(300, 500), 2},
		{"left edge", V(100, 300), 3},
		{"near top right corner, top side", V(450, 110), 0},
		{"centre tie goes to first", V(300, 300), 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tr.SectorOf(tt.p); got != tt.want {
				t.Errorf("SectorOf(%v): got %d, want %d", tt.p, got, tt.want)
			}
		})
	}
}

func TestPerpendicularDistance(t *testing.T) {
	tr := square(t, 40)
	tests := []struct {
		p      Vec2
		sector int
		want   float32
	}{
		{V(300, 100), 0, 0},
		{V(300, 120), 0, 20},
		{V(300, 70), 0, 30},
		{V(1000, 90), 0, 10}, // infinite line, not the segment
		{V(520, 300), 1, 20}, // vertical sector
		{V(100, 250), 3, 0},
	}
	for _, tt := range tests {
		if got := tr.PerpendicularDistance(tt.p, tt.sector); !approx(got, tt.want) {
			t.Errorf("PerpendicularDistance(%v, %d): got %v, want %v", tt.p, tt.sector, got, tt.want)
		}
	}

	if !tr.Contains(V(300, 120), 0) {
		t.Error("point exactly at half width should be on track")
	}
	if tr.Contains(V(300, 121), 0) {
		t.Error("point beyond half width should be off track")
	}
}

func TestRailsSquare(t *testing.T) {
	tr := square(t, 40)

	// Screen coordinates: the square winds clockwise, so Perp points inward.
	r := tr.Rails(0)
	diag := float32(20 / math.Sqrt2)
	wantLeftA := V(100+diag, 100+diag)
	wantRightA := V(100-diag, 100-diag)
	if !approx(r.Left.A.X, wantLeftA.X) || !approx(r.Left.A.Y, wantLeftA.Y) {
		t.Errorf("left rail start: got %v, want %v", r.Left.A, wantLeftA)
	}
	if !approx(r.Right.A.X, wantRightA.X) || !approx(r.Right.A.Y, wantRightA.Y) {
		t.Errorf("right rail start: got %v, want %v", r.Right.A, wantRightA)
	}

	// Rails of consecutive sectors join.
	for i := 0; i < tr.NumSectors(); i++ {
		a, b := tr.Rails(i), tr.Rails(i+1)
		if a.Left.B != b.Left.A || a.Right.B != b.Right.A {
			t.Errorf("rails of sectors %d and %d do not join", i, i+1)
		}
	}

	// Averaged corner normals pull the rails in to half width / sqrt(2) on a square.
	for i := 0; i < tr.NumSectors(); i++ {
		r := tr.Rails(i)
		for _, s := range []Segment{r.Left, r.Right} {
			if d := tr.PerpendicularDistance(s.Midpoint(), i); !approx(d, diag) {
				t.Errorf("sector %d rail midpoint distance: got %v, want %v", i, d, diag)
			}
		}
	}
}

func TestHairpinNormalFallback(t *testing.T) {
	// Waypoint 1 doubles straight back, so its averaged normal cancels.
	tr, err := New([]Vec2{V(0, 0), V(100, 0), V(0, 0), V(-50, 50)}, 10)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	for i := 0; i < tr.NumSectors(); i++ {
		r := tr.Rails(i)
		for _, p := range []Vec2{r.Left.A, r.Left.B, r.Right.A, r.Right.B} {
			if math.IsNaN(float64(p.X)) || math.IsNaN(float64(p.Y)) {
				t.Fatalf("sector %d rail has NaN point", i)
			}
		}
	}
	if r := tr.Rails(0); r.Left.B == r.Right.B {
		t.Error("hairpin waypoint has no usable normal")
	}
}

func TestIntersect(t *testing.T) {
	tests := []struct {
		name  string
		p, q  Segment
		want  Vec2
		found bool
	}{
		{"cross", Segment{V(0, 0), V(10, 10)}, Segment{V(0, 10), V(10, 0)}, V(5, 5), true},
		{"touching end", Segment{V(0, 0), V(5, 0)}, Segment{V(5, -5), V(5, 5)}, V(5, 0), true},
		{"short of", Segment{V(0, 0), V(4, 0)}, Segment{V(5, -5), V(5, 5)}, Vec2{}, false},
		{"parallel", Segment{V(0, 0), V(10, 0)}, Segment{V(0, 1), V(10, 1)}, Vec2{}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := Intersect(tt.p, tt.q)
			if ok != tt.found {
				t.Fatalf("found: got %v, want %v", ok, tt.found)
			}
			if ok && (!approx(got.X, tt.want.X) || !approx(got.Y, tt.want.Y)) {
				t.Errorf("point: got %v, want %v", got, tt.want)
			}
		})
	}
}

func TestCheckpoints(t *testing.T) {
	tr := square(t, 40)
	cps := tr.Checkpoints()
	if len(cps) != 4 {
		t.Fatalf("checkpoints: got %d, want 4", len(cps))
	}
	for i, cp := range cps {
		if got := cp.A.Dist(cp.B); !approx(got, 40) {
			t.Errorf("checkpoint %d length: got %v, want 40", i, got)
		}
		if mid := cp.Midpoint(); !approx(mid.X, tr.Point(i+1).X) || !approx(mid.Y, tr.Point(i+1).Y) {
			t.Errorf("checkpoint %d centred at %v, want waypoint %v", i, mid, tr.Point(i+1))
		}
	}
}
