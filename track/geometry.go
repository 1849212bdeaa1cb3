package track

import "math"

// Vec2 is a 2D point or direction in screen space (y grows downward).
type Vec2 struct {
	X, Y float32
}

// V is shorthand for Vec2{x, y}.
func V(x, y float32) Vec2 { return Vec2{X: x, Y: y} }

// FromAngle returns the unit vector at the given angle in radians.
func FromAngle(rad float32) Vec2 {
	s, c := math.Sincos(float64(rad))
	return Vec2{X: float32(c), Y: float32(s)}
}

func (v Vec2) Add(o Vec2) Vec2 { return Vec2{v.X + o.X, v.Y + o.Y} }
func (v Vec2) Sub(o Vec2) Vec2 { return Vec2{v.X - o.X, v.Y - o.Y} }
func (v Vec2) Scale(s float32) Vec2 { return Vec2{v.X * s, v.Y * s} }
func (v Vec2) Dot(o Vec2) float32 { return v.X*o.X + v.Y*o.Y }
func (v Vec2) Perp() Vec2 { return Vec2{-v.Y, v.X} }
func (v Vec2) Len() float32 { return float32(math.Hypot(float64(v.X), float64(v.Y))) }
func (v Vec2) Dist(o Vec2) float32 { return v.Sub(o).Len() }
func (v Vec2) Lerp(o Vec2, t float32) Vec2 { return v.Add(o.Sub(v).Scale(t)) }

func atan2(y, x float32) float32 { return float32(math.Atan2(float64(y), float64(x))) }

// Normalize returns v scaled to unit length, or the zero vector if v is zero.
func (v Vec2) Normalize() Vec2 {
	l := v.Len()
	if l == 0 {
		return Vec2{}
	}
	return Vec2{v.X / l, v.Y / l}
}

// Segment is a line segment from A to B.
type Segment struct {
	A, B Vec2
}

// Midpoint returns the point halfway along the segment.
func (s Segment) Midpoint() Vec2 {
	return s.A.Add(s.B).Scale(0.5)
}

// Intersect returns the point where segments p and q cross, if they do.
// Parallel and collinear segments report no intersection.
func Intersect(p, q Segment) (Vec2, bool) {
	d := (p.A.X-p.B.X)*(q.A.Y-q.B.Y) - (p.A.Y-p.B.Y)*(q.A.X-q.B.X)
	if d == 0 {
		return Vec2{}, false
	}
	t := ((p.A.X-q.A.X)*(q.A.Y-q.B.Y) - (p.A.Y-q.A.Y)*(q.A.X-q.B.X)) / d
	u := -((p.A.X-p.B.X)*(p.A.Y-q.A.Y) - (p.A.Y-p.B.Y)*(p.A.X-q.A.X)) / d
	if t < 0 || t > 1 || u < 0 || u > 1 {
		return Vec2{}, false
	}
	return q.A.Lerp(q.B, u), true
}

// LineDistance returns the distance from p to the infinite line through a and b.
// If a and b coincide it falls back to the distance between p and a.
func LineDistance(p, a, b Vec2) float32 {
	ab := b.Sub(a)
	l := ab.Len()
	if l == 0 {
		return p.Dist(a)
	}
	cross := ab.X*(p.Y-a.Y) - ab.Y*(p.X-a.X)
	if cross < 0 {
		cross = -cross
	}
	return cross / l
}
