package systems

import (
	"github.com/pthm-cable/racers/components"
	"github.com/pthm-cable/racers/track"
)

// CastRay returns the distance from origin along dir to the nearest rail of
// any sector, scanning from sector start and wrapping. The ray extends
// Reference*ReachFactor; with no hit closer than Reference the result is Reference.
func CastRay(tr *track.Track, origin, dir track.Vec2, start int, s SensorParams) float32 {
	ray := track.Segment{A: origin, B: origin.Add(dir.Scale(s.Reference * s.ReachFactor))}
	nearest := s.Reference

	n := tr.NumSectors()
	for i := 0; i < n; i++ {
		rails := tr.Rails(start + i)
		for _, rail := range [2]track.Segment{rails.Left, rails.Right} {
			if hit, ok := track.Intersect(ray, rail); ok {
				if d := hit.Dist(origin); d < nearest {
					nearest = d
				}
			}
		}
	}
	return nearest
}

// CastRays fills dst with NumRays normalised distances spread evenly across the
// field of view, starting at heading - FOV/2. dst must have length NumRays.
func CastRays(dst []float64, tr *track.Track, origin track.Vec2, heading float32, sector int, s SensorParams) {
	startDeg := toDegrees(heading) - s.FOV/2
	step := s.FOV / float32(s.NumRays)

	for i := range dst {
		dir := track.FromAngle(toRadians(startDeg + step*float32(i)))
		dst[i] = float64(CastRay(tr, origin, dir, sector, s) / s.Reference)
	}
}

// FillInputs writes the controller input vector into dst: the ray distances,
// then velocity, acceleration, steering and sin(heading), each normalised.
// dst must have length len(rays)+6.
func FillInputs(dst, rays []float64, vel components.Velocity, acc components.Acceleration, rot components.Rotation, c CarParams) []float64 {
	n := copy(dst, rays)
	dst[n+0] = float64(vel.X / c.MaxSpeed)
	dst[n+1] = float64(vel.Y / c.MaxSpeed)
	dst[n+2] = float64(acc.X / c.MaxAccel)
	dst[n+3] = float64(acc.Y / c.MaxAccel)
	dst[n+4] = float64(rot.Steer / c.SteerWeight)
	dst[n+5] = float64(sin(rot.Heading))
	return dst[:n+6]
}
