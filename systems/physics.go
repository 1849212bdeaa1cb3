package systems

import (
	"github.com/pthm-cable/racers/components"
	"github.com/pthm-cable/racers/track"
)

// Controls are the controller outputs for a single step. They are not stored
// on the car, so every step starts from neutral.
type Controls struct {
	Throttle float32 // [0, 1]
	Steering float32 // [-1, 1]
	Brake    float32 // [0, 1]
}

// ControlsFromOutputs maps raw network outputs to controls.
// Steering is remapped from [0, 1] to [-1, 1]; nothing is clamped.
func ControlsFromOutputs(out []float64) Controls {
	return Controls{
		Throttle: float32(out[0]),
		Steering: float32((out[1] - 0.5) * 2),
		Brake:    float32(out[2]),
	}
}

// Integrate advances one car by dt seconds.
func Integrate(pos *components.Position, vel *components.Velocity, acc *components.Acceleration,
	rot *components.Rotation, ctl Controls, p Params, dt float32) {
	c := &p.Car

	// Steering: ease the heading toward heading + steer.
	rot.Steer = ctl.Steering * c.SteerWeight
	rot.Heading = lerp(rot.Heading, rot.Heading+rot.Steer, dt*c.SteerBlend)
	dir := track.FromAngle(rot.Heading)

	a := dir.Scale(ctl.Throttle * c.MaxAccel)
	v := vel.Vec().Add(a.Scale(dt))

	// Braking
	v = v.Add(v.Scale(-ctl.Brake * c.BrakingFactor * dt))

	// Both frictions come from the post-brake velocity. Longitudinal friction
	// is dt-scaled, lateral friction removes a fixed share per step.
	normal := v.Scale(-c.Friction)
	perp := dir.Perp()
	lateral := perp.Scale(v.Dot(perp) * -c.LateralFriction)
	v = v.Add(normal.Scale(dt)).Add(lateral)

	acc.X, acc.Y = a.X, a.Y
	vel.X, vel.Y = v.X, v.Y

	halfW, halfH := c.HitboxW/2, c.HitboxH/2
	pos.X = clampFloat(pos.X+v.X*dt, halfW, p.ArenaW-halfW)
	pos.Y = clampFloat(pos.Y+v.Y*dt, halfH, p.ArenaH-halfH)
}
