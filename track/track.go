// Package track holds the closed circuit the cars drive on: waypoints,
// boundary rails, sector lookup and off-track distance.
package track

import (
	"errors"
	"fmt"

	"github.com/pthm-cable/racers/config"
)

// ErrTooFewWaypoints is returned when a circuit has fewer than three waypoints.
var ErrTooFewWaypoints = errors.New("track: at least 3 waypoints are required")

// Rails are the two boundary lines of one sector.
type Rails struct {
	Left  Segment
	Right Segment
}

// Track is an immutable closed polyline with a constant width.
// Sector i runs from waypoint i to waypoint (i+1) mod N.
type Track struct {
	points  []Vec2
	width   float32
	mids    []Vec2 // sector midpoints
	normals []Vec2 // averaged unit normal at each waypoint
	rails   []Rails
}

// New builds a track from waypoints and a width.
func New(points []Vec2, width float32) (*Track, error) {
	if len(points) < 3 {
		return nil, fmt.Errorf("%w: got %d", ErrTooFewWaypoints, len(points))
	}
	if width <= 0 {
		return nil, fmt.Errorf("track: width must be positive, got %g", width)
	}

	n := len(points)
	t := &Track{
		points:  append([]Vec2(nil), points...),
		width:   width,
		mids:    make([]Vec2, n),
		normals: make([]Vec2, n),
		rails:   make([]Rails, n),
	}

	for i := 0; i < n; i++ {
		t.mids[i] = t.Segment(i).Midpoint()
	}

	for i := 0; i < n; i++ {
		prev := t.points[(i+n-1)%n]
		cur := t.points[i]
		next := t.points[(i+1)%n]

		in := cur.Sub(prev).Perp()
		out := next.Sub(cur).Perp()
		normal := in.Add(out).Scale(0.5).Normalize()
		if normal == (Vec2{}) {
			// Hairpin: the incoming and outgoing normals cancel.
			normal = out.Normalize()
		}
		t.normals[i] = normal
	}

	half := width / 2
	for i := 0; i < n; i++ {
		a, b := t.points[i], t.points[(i+1)%n]
		na, nb := t.normals[i].Scale(half), t.normals[(i+1)%n].Scale(half)
		t.rails[i] = Rails{
			Left:  Segment{A: a.Add(na), B: b.Add(nb)},
			Right: Segment{A: a.Sub(na), B: b.Sub(nb)},
		}
	}

	return t, nil
}

// FromConfig builds a track from the config's track section.
func FromConfig(tc config.TrackConfig) (*Track, error) {
	points := make([]Vec2, len(tc.Waypoints))
	for i, p := range tc.Waypoints {
		points[i] = V(float32(p.X), float32(p.Y))
	}
	return New(points, float32(tc.Width))
}

// Default returns the built-in circuit from the embedded config defaults.
func Default() *Track {
	cfg, err := config.Defaults()
	if err != nil {
		panic(fmt.Sprintf("track: %v", err))
	}
	t, err := FromConfig(cfg.Track)
	if err != nil {
		panic(fmt.Sprintf("track: default circuit: %v", err))
	}
	return t
}

// NumSectors returns the number of sectors (equal to the number of waypoints).
func (t *Track) NumSectors() int { return len(t.points) }

// LastSector returns the index of the final sector before the start line.
func (t *Track) LastSector() int { return len(t.points) - 1 }

// Width returns the track width.
func (t *Track) Width() float32 { return t.width }

// Point returns waypoint i (mod N).
func (t *Track) Point(i int) Vec2 {
	n := len(t.points)
	return t.points[((i%n)+n)%n]
}

// Segment returns the centre line of sector i (mod N).
func (t *Track) Segment(i int) Segment {
	return Segment{A: t.Point(i), B: t.Point(i + 1)}
}

// Rails returns the boundary rails of sector i (mod N).
func (t *Track) Rails(i int) Rails {
	n := len(t.rails)
	return t.rails[((i%n)+n)%n]
}

// SectorOf returns the sector whose midpoint is nearest to p.
// Ties go to the lowest index.
func (t *Track) SectorOf(p Vec2) int {
	best := 0
	bestDist := float32(-1)
	for i, m := range t.mids {
		d := p.Sub(m)
		dist := d.Dot(d)
		if bestDist < 0 || dist < bestDist {
			best = i
			bestDist = dist
		}
	}
	return best
}

// StartPosition returns the midpoint of the first sector.
func (t *Track) StartPosition() Vec2 {
	return t.mids[0]
}

// StartHeading returns the direction of the first sector in radians.
func (t *Track) StartHeading() float32 {
	d := t.points[1].Sub(t.points[0])
	return atan2(d.Y, d.X)
}

// PerpendicularDistance returns the distance from p to the infinite line through sector i.
func (t *Track) PerpendicularDistance(p Vec2, sector int) float32 {
	s := t.Segment(sector)
	return LineDistance(p, s.A, s.B)
}

// Contains reports whether p is within half the track width of sector i's centre line.
func (t *Track) Contains(p Vec2, sector int) bool {
	return t.PerpendicularDistance(p, sector) <= t.width/2
}

// Checkpoints returns, for each waypoint i+1, a line across the track of
// length Width along the averaged normal.
func (t *Track) Checkpoints() []Segment {
	n := len(t.points)
	out := make([]Segment, n)
	half := t.width / 2
	for i := 0; i < n; i++ {
		p := t.points[(i+1)%n]
		nv := t.normals[(i+1)%n].Scale(half)
		out[i] = Segment{A: p.Sub(nv), B: p.Add(nv)}
	}
	return out
}
