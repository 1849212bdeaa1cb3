package systems

import (
	"github.com/pthm-cable/racers/components"
	"github.com/pthm-cable/racers/track"
)

// CarState is a value copy of one car's mutable components.
type CarState struct {
	Pos  components.Position
	Vel  components.Velocity
	Acc  components.Acceleration
	Rot  components.Rotation
	Prog components.Progress
}

// Scratch holds per-worker buffers reused across cars.
type Scratch struct {
	Rays   []float64
	Inputs []float64
}

// NewScratch allocates buffers sized for p.
func NewScratch(p Params) *Scratch {
	return &Scratch{
		Rays:   make([]float64, p.Sensors.NumRays),
		Inputs: make([]float64, p.NumInputs()),
	}
}

// Drive advances one car by a single tick: score the tick, then unless the car
// has crashed sense the track, run the controller, integrate physics, advance
// the timers and check the car is still on the track. Crashed cars are left
// untouched apart from clearing JustLapped.
func Drive(s *CarState, driver *components.Driver, tr *track.Track, p Params, dt float32, scratch *Scratch) error {
	s.Prog.JustLapped = false
	if s.Prog.Crashed {
		return nil
	}

	here := s.Pos.Vec()
	sector := tr.SectorOf(here)
	TollFitness(&s.Prog, Speed(s.Vel), sector, tr.LastSector(), p.Fitness)
	if s.Prog.Crashed {
		return nil
	}

	CastRays(scratch.Rays, tr, here, s.Rot.Heading, sector, p.Sensors)
	inputs := FillInputs(scratch.Inputs, scratch.Rays, s.Vel, s.Acc, s.Rot, p.Car)

	out, err := driver.Brain.Forward(inputs)
	if err != nil {
		return err
	}

	Integrate(&s.Pos, &s.Vel, &s.Acc, &s.Rot, ControlsFromOutputs(out), p, dt)

	s.Prog.SectorTimer++
	s.Prog.LapTimer++

	if !IsOnTrack(tr, s.Pos) {
		s.Prog.Crashed = true
	}
	return nil
}
