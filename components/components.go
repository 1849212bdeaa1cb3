// Package components defines ECS components for the simulation.
package components

import (
	"github.com/pthm-cable/racers/neural"
	"github.com/pthm-cable/racers/track"
)

// Position is the centre of a car's hitbox.
type Position struct {
	X, Y float32
}

// Vec returns the position as a track vector.
func (p Position) Vec() track.Vec2 { return track.Vec2{X: p.X, Y: p.Y} }

// Velocity represents a car's velocity in pixels per second.
type Velocity struct {
	X, Y float32
}

// Vec returns the velocity as a track vector.
func (v Velocity) Vec() track.Vec2 { return track.Vec2{X: v.X, Y: v.Y} }

// Acceleration is the acceleration applied on the last physics step.
type Acceleration struct {
	X, Y float32
}

// Vec returns the acceleration as a track vector.
func (a Acceleration) Vec() track.Vec2 { return track.Vec2{X: a.X, Y: a.Y} }

// Rotation holds the heading and the steering angle in radians.
type Rotation struct {
	Heading float32 `inspect:"angle"`
	Steer   float32 `inspect:"label,fmt:%.3f"` // steering output * steer weight from the last step
}

// Progress tracks fitness and lap state for one car.
type Progress struct {
	Fitness     int     `inspect:"label"`
	SpeedSum    float32 `inspect:"skip"`  // sum of |velocity| over every scored tick
	Sector      int     `inspect:"label"` // last sector credited
	SectorTimer int     `inspect:"label"` // ticks since the last sector change
	LapTimer    int     `inspect:"label"` // ticks since the last lap
	LapTime     int     `inspect:"label"` // duration of the last completed lap in ticks
	Laps        int     `inspect:"label"`
	Crashed     bool    `inspect:"bool"`
	JustLapped  bool    `inspect:"skip"` // set only on the tick a lap completes
}

// Driver identifies a car and owns its controller.
type Driver struct {
	ID    int // 1-based car number
	Brain *neural.Network
}
