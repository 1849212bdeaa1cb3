package systems

import (
	"math"
	"testing"

	"github.com/pthm-cable/racers/components"
	"github.com/pthm-cable/racers/config"
	"github.com/pthm-cable/racers/neural"
	"github.com/pthm-cable/racers/track"
)

const testDT = float32(1.0 / 60.0)

func init() {
	config.MustInit("")
}

func defaultParams() Params {
	return NewParams(config.Cfg())
}

func near(a, b, eps float32) bool {
	return math.Abs(float64(a-b)) <= float64(eps)
}

func squareTrack(t *testing.T) *track.Track {
	t.Helper()
	tr, err := track.New([]track.Vec2{track.V(100, 100), track.V(500, 100), track.V(500, 500), track.V(100, 500)}, 40)
	if err != nil {
		t.Fatalf("track.New: %v", err)
	}
	return tr
}

func TestNewParams(t *testing.T) {
	p := defaultParams()
	if p.NumInputs() != 21 {
		t.Errorf("NumInputs: got %d, want 21", p.NumInputs())
	}
	if p.ArenaW != 1200 || p.ArenaH != 800 {
		t.Errorf("arena: got %vx%v, want 1200x800", p.ArenaW, p.ArenaH)
	}
	if !near(p.Car.SteerWeight, math.Pi/6, 1e-6) {
		t.Errorf("steer weight: got %v, want pi/6", p.Car.SteerWeight)
	}
}

func TestSpeedBonus(t *testing.T) {
	f := defaultParams().Fitness
	tests := []struct {
		ticks int
		want  int
	}{
		{0, 50000},
		{1, 50000},
		{2, 12500},
		{3, 5555},
		{100, 5},
		{300, 0},
	}
	for _, tt := range tests {
		if got := SpeedBonus(tt.ticks, f); got != tt.want {
			t.Errorf("SpeedBonus(%d): got %d, want %d", tt.ticks, got, tt.want)
		}
	}
}

func TestTollFitness(t *testing.T) {
	f := defaultParams().Fitness
	const last = 19

	tests := []struct {
		name   string
		before components.Progress
		sector int
		check  func(t *testing.T, p components.Progress)
	}{
		{
			name:   "same sector",
			before: components.Progress{Fitness: 10, Sector: 4, SectorTimer: 7},
			sector: 4,
			check: func(t *testing.T, p components.Progress) {
				if p.Fitness != 11 || p.Sector != 4 || p.SectorTimer != 7 {
					t.Errorf("got %+v", p)
				}
			},
		},
		{
			name:   "forward sector",
			before: components.Progress{Fitness: 10, Sector: 4, SectorTimer: 10},
			sector: 5,
			check: func(t *testing.T, p components.Progress) {
				want := 10 + 1 + 1000 + 500
				if p.Fitness != want {
					t.Errorf("fitness: got %d, want %d", p.Fitness, want)
				}
				if p.Sector != 5 || p.SectorTimer != 0 || p.JustLapped {
					t.Errorf("got %+v", p)
				}
			},
		},
		{
			name:   "zero tick sector is clamped",
			before: components.Progress{Sector: 4},
			sector: 5,
			check: func(t *testing.T, p components.Progress) {
				if want := 1 + 1000 + 50000; p.Fitness != want {
					t.Errorf("fitness: got %d, want %d", p.Fitness, want)
				}
			},
		},
		{
			name:   "lap completion",
			before: components.Progress{Fitness: 100, Sector: last, SectorTimer: 10, LapTimer: 600, Laps: 2},
			sector: 0,
			check: func(t *testing.T, p components.Progress) {
				want := 100 + 1 + 5000 + 500
				if p.Fitness != want {
					t.Errorf("fitness: got %d, want %d", p.Fitness, want)
				}
				if p.Sector != 0 || p.SectorTimer != 0 || p.LapTimer != 0 || p.LapTime != 600 || p.Laps != 3 || !p.JustLapped {
					t.Errorf("got %+v", p)
				}
				if p.Crashed {
					t.Error("lap completion must not crash")
				}
			},
		},
		{
			name:   "backward over start line",
			before: components.Progress{Fitness: 100, Sector: 0, SectorTimer: 5},
			sector: last,
			check: func(t *testing.T, p components.Progress) {
				if want := 100 + 1 - 5000; p.Fitness != want {
					t.Errorf("fitness: got %d, want %d", p.Fitness, want)
				}
				if !p.Crashed || p.Sector != last || p.SectorTimer != 0 {
					t.Errorf("got %+v", p)
				}
			},
		},
		{
			name:   "backward sector",
			before: components.Progress{Fitness: 5000, Sector: 8, SectorTimer: 5},
			sector: 6,
			check: func(t *testing.T, p components.Progress) {
				if want := 5000 + 1 - 1000; p.Fitness != want {
					t.Errorf("fitness: got %d, want %d", p.Fitness, want)
				}
				if p.Crashed || p.Sector != 6 || p.SectorTimer != 0 {
					t.Errorf("got %+v", p)
				}
			},
		},
		{
			name:   "skipping ahead is not credited",
			before: components.Progress{Fitness: 10, Sector: 4, SectorTimer: 3},
			sector: 6,
			check: func(t *testing.T, p components.Progress) {
				if p.Fitness != 11 || p.Sector != 4 || p.SectorTimer != 3 {
					t.Errorf("got %+v", p)
				}
			},
		},
		{
			name:   "crashed is frozen",
			before: components.Progress{Fitness: 10, Sector: 4, SpeedSum: 3, Crashed: true},
			sector: 5,
			check: func(t *testing.T, p components.Progress) {
				if p.Fitness != 10 || p.Sector != 4 || p.SpeedSum != 3 {
					t.Errorf("got %+v", p)
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := tt.before
			TollFitness(&p, 2.5, tt.sector, last, f)
			tt.check(t, p)
		})
	}
}

func TestTollFitnessAccumulatesSpeed(t *testing.T) {
	f := defaultParams().Fitness
	var p components.Progress
	for i := 0; i < 4; i++ {
		TollFitness(&p, 2.5, 0, 19, f)
	}
	if p.SpeedSum != 10 || p.Fitness != 4 {
		t.Errorf("got %+v, want speed sum 10 and fitness 4", p)
	}
}

func TestFinalFitness(t *testing.T) {
	f := defaultParams().Fitness
	tests := []struct {
		name  string
		prog  components.Progress
		ticks int
		want  int
	}{
		{"running", components.Progress{Fitness: 100, SpeedSum: 1000.9}, 3, 100 + 333*5},
		{"crashed", components.Progress{Fitness: 100, SpeedSum: 1000.9, Crashed: true}, 3, 100 - 10000 + 333*5},
		{"slow", components.Progress{Fitness: 7, SpeedSum: 4}, 5, 7},
		{"no ticks", components.Progress{Fitness: 7, SpeedSum: 4}, 0, 7},
	}
	for _, tt := range tests {
		if got := FinalFitness(tt.prog, tt.ticks, f); got != tt.want {
			t.Errorf("%s: got %d, want %d", tt.name, got, tt.want)
		}
	}
}

func TestIntegrateFriction(t *testing.T) {
	p := defaultParams()

	t.Run("longitudinal", func(t *testing.T) {
		pos := components.Position{X: 600, Y: 400}
		vel := components.Velocity{X: 100}
		var acc components.Acceleration
		var rot components.Rotation
		Integrate(&pos, &vel, &acc, &rot, Controls{}, p, testDT)

		want := 100 - 100*0.88*testDT
		if !near(vel.X, want, 1e-3) || vel.Y != 0 {
			t.Errorf("velocity: got %+v, want (%v, 0)", vel, want)
		}
		if !near(pos.X, 600+want*testDT, 1e-3) {
			t.Errorf("position: got %v", pos.X)
		}
	})

	t.Run("lateral is not dt scaled", func(t *testing.T) {
		pos := components.Position{X: 600, Y: 400}
		vel := components.Velocity{Y: 100}
		var acc components.Acceleration
		var rot components.Rotation
		Integrate(&pos, &vel, &acc, &rot, Controls{}, p, testDT)

		want := 100 - 100*0.88*testDT - 100*0.05
		if !near(vel.Y, want, 1e-3) || !near(vel.X, 0, 1e-4) {
			t.Errorf("velocity: got %+v, want (0, %v)", vel, want)
		}
	})

	t.Run("brake", func(t *testing.T) {
		pos := components.Position{X: 600, Y: 400}
		vel := components.Velocity{X: 100}
		var acc components.Acceleration
		var rot components.Rotation
		Integrate(&pos, &vel, &acc, &rot, Controls{Brake: 1}, p, testDT)

		braked := 100 - 100*0.9*testDT
		want := braked - braked*0.88*testDT
		if !near(vel.X, want, 1e-3) {
			t.Errorf("velocity: got %v, want %v", vel.X, want)
		}
	})
}

func TestIntegrateThrottleAndSteering(t *testing.T) {
	p := defaultParams()
	pos := components.Position{X: 600, Y: 400}
	var vel components.Velocity
	var acc components.Acceleration
	var rot components.Rotation

	Integrate(&pos, &vel, &acc, &rot, Controls{Throttle: 1, Steering: 1}, p, testDT)

	wantSteer := float32(math.Pi / 6)
	if !near(rot.Steer, wantSteer, 1e-5) {
		t.Errorf("steer: got %v, want %v", rot.Steer, wantSteer)
	}
	wantHeading := wantSteer * 6 * testDT
	if !near(rot.Heading, wantHeading, 1e-5) {
		t.Errorf("heading: got %v, want %v", rot.Heading, wantHeading)
	}
	if !near(track.V(acc.X, acc.Y).Len(), 400, 1e-2) {
		t.Errorf("acceleration magnitude: got %v, want 400", track.V(acc.X, acc.Y).Len())
	}
	if vel.X <= 0 || vel.Y <= 0 {
		t.Errorf("velocity should point along the new heading: %+v", vel)
	}
}

func TestIntegrateSteerBlendClamped(t *testing.T) {
	p := defaultParams()
	pos := components.Position{X: 600, Y: 400}
	var vel components.Velocity
	var acc components.Acceleration
	var rot components.Rotation

	// dt * blend = 6 is clamped to 1, so the full steer angle is applied.
	Integrate(&pos, &vel, &acc, &rot, Controls{Steering: -1}, p, 1)
	if !near(rot.Heading, -math.Pi/6, 1e-5) {
		t.Errorf("heading: got %v, want %v", rot.Heading, -math.Pi/6)
	}
}

func TestIntegrateClampsToArena(t *testing.T) {
	p := defaultParams()
	pos := components.Position{X: 16, Y: 31}
	vel := components.Velocity{X: -6000, Y: -6000}
	var acc components.Acceleration
	var rot components.Rotation

	Integrate(&pos, &vel, &acc, &rot, Controls{}, p, testDT)
	if pos.X != 15 || pos.Y != 30 {
		t.Errorf("position: got %+v, want (15, 30)", pos)
	}

	pos = components.Position{X: 1180, Y: 765}
	vel = components.Velocity{X: 6000, Y: 6000}
	Integrate(&pos, &vel, &acc, &rot, Controls{}, p, testDT)
	if pos.X != 1185 || pos.Y != 770 {
		t.Errorf("position: got %+v, want (1185, 770)", pos)
	}
}

func TestControlsFromOutputs(t *testing.T) {
	c := ControlsFromOutputs([]float64{0.75, 0.25, 0.1})
	if c.Throttle != 0.75 || c.Steering != -0.5 || !near(c.Brake, 0.1, 1e-7) {
		t.Errorf("got %+v", c)
	}
}

func TestCastRay(t *testing.T) {
	tr := squareTrack(t)
	s := SensorParams{NumRays: 1, FOV: 0, Reference: 1200, ReachFactor: 5}
	inner := float32(20 / math.Sqrt2)

	t.Run("hits inner rail", func(t *testing.T) {
		d := CastRay(tr, track.V(300, 100), track.V(0, 1), 0, s)
		if !near(d, inner, 1e-3) {
			t.Errorf("distance: got %v, want %v", d, inner)
		}
	})

	t.Run("hits outer rail", func(t *testing.T) {
		d := CastRay(tr, track.V(300, 100), track.V(0, -1), 0, s)
		if !near(d, inner, 1e-3) {
			t.Errorf("distance: got %v, want %v", d, inner)
		}
	})

	t.Run("start sector does not change the result", func(t *testing.T) {
		for start := 0; start < 4; start++ {
			d := CastRay(tr, track.V(300, 100), track.V(0, 1), start, s)
			if !near(d, inner, 1e-3) {
				t.Errorf("start %d: got %v, want %v", start, d, inner)
			}
		}
	})

	t.Run("no hit returns reference", func(t *testing.T) {
		d := CastRay(tr, track.V(2000, 2000), track.V(1, 0), 0, s)
		if d != 1200 {
			t.Errorf("distance: got %v, want 1200", d)
		}
	})
}

func TestCastRaysSpread(t *testing.T) {
	tr := squareTrack(t)
	s := SensorParams{NumRays: 4, FOV: 180, Reference: 1200, ReachFactor: 5}
	rays := make([]float64, 4)

	// Heading +x from the top edge: rays at -90, -45, 0, 45 degrees.
	CastRays(rays, tr, track.V(300, 100), 0, 0, s)

	inner := 20 / math.Sqrt2 / 1200
	if math.Abs(rays[0]-inner) > 1e-5 {
		t.Errorf("ray 0 (straight up): got %v, want %v", rays[0], inner)
	}
	if rays[3] <= 0 || rays[3] >= 1 {
		t.Errorf("ray 3 should hit a rail: got %v", rays[3])
	}
	for i, r := range rays {
		if r < 0 || r > 1 {
			t.Errorf("ray %d out of [0,1]: %v", i, r)
		}
	}
}

func TestFillInputs(t *testing.T) {
	c := defaultParams().Car
	rays := []float64{0.1, 0.2, 0.3}
	dst := make([]float64, 9)

	got := FillInputs(dst, rays,
		components.Velocity{X: 175, Y: -350},
		components.Acceleration{X: 400, Y: 200},
		components.Rotation{Heading: math.Pi / 2, Steer: c.SteerWeight / 2},
		c)

	want := []float64{0.1, 0.2, 0.3, 0.5, -1, 1, 0.5, 0.5, 1}
	if len(got) != len(want) {
		t.Fatalf("length: got %d, want %d", len(got), len(want))
	}
	for i := range want {
		if math.Abs(got[i]-want[i]) > 1e-6 {
			t.Errorf("input %d: got %v, want %v", i, got[i], want[i])
		}
	}
}

func TestIsOnTrack(t *testing.T) {
	tr := squareTrack(t)
	tests := []struct {
		pos  components.Position
		want bool
	}{
		{components.Position{X: 300, Y: 100}, true},
		{components.Position{X: 300, Y: 120}, true},
		{components.Position{X: 300, Y: 121}, false},
		{components.Position{X: 300, Y: 79}, false},
		{components.Position{X: 515, Y: 300}, true},
	}
	for _, tt := range tests {
		if got := IsOnTrack(tr, tt.pos); got != tt.want {
			t.Errorf("IsOnTrack(%+v): got %v, want %v", tt.pos, got, tt.want)
		}
	}
}

// constantDriver returns a single-layer network that ignores its inputs and
// always outputs sigmoid(bias) for throttle, steering and brake.
func constantDriver(inputs int, throttle, steering, brake float64) *components.Driver {
	logit := func(p float64) float64 { return math.Log(p / (1 - p)) }
	return &components.Driver{
		ID: 1,
		Brain: &neural.Network{Layers: []neural.Layer{{
			Inputs:     inputs,
			Outputs:    3,
			Weights:    make([]float64, inputs*3),
			Bias:       []float64{logit(throttle), logit(steering), logit(brake)},
			Activation: neural.Sigmoid,
		}}},
	}
}

func TestDriveStaysOnTrackDrivingStraight(t *testing.T) {
	p := defaultParams()
	tr, err := track.New([]track.Vec2{
		track.V(100, 400), track.V(1100, 400), track.V(900, 700), track.V(300, 700),
	}, 40)
	if err != nil {
		t.Fatalf("track.New: %v", err)
	}

	start := tr.StartPosition()
	state := CarState{
		Pos: components.Position{X: start.X, Y: start.Y},
		Rot: components.Rotation{Heading: tr.StartHeading()},
	}
	driver := constantDriver(p.NumInputs(), 0.05, 0.5, 1e-9)
	scratch := NewScratch(p)

	for tick := 0; tick < 500; tick++ {
		before := state.Prog.Fitness
		if err := Drive(&state, driver, tr, p, testDT, scratch); err != nil {
			t.Fatalf("tick %d: %v", tick, err)
		}
		if state.Prog.Crashed {
			t.Fatalf("tick %d: marked off track at %+v", tick, state.Pos)
		}
		if state.Prog.Fitness < before {
			t.Fatalf("tick %d: fitness dropped from %d to %d", tick, before, state.Prog.Fitness)
		}
	}

	if state.Pos.X <= start.X {
		t.Errorf("car did not move forward: %+v", state.Pos)
	}
	if state.Pos.Y != start.Y {
		t.Errorf("car drifted off the centre line: y=%v", state.Pos.Y)
	}
	if state.Prog.Fitness != 500 {
		t.Errorf("fitness: got %d, want 500", state.Prog.Fitness)
	}
	if state.Prog.SectorTimer != 500 || state.Prog.LapTimer != 500 {
		t.Errorf("timers: got %d/%d, want 500/500", state.Prog.SectorTimer, state.Prog.LapTimer)
	}
}

func TestDriveCrossesIntoNextSector(t *testing.T) {
	p := defaultParams()
	// Sector 1 continues sector 0's centre line, so the handoff at x=600
	// happens on the track.
	tr, err := track.New([]track.Vec2{
		track.V(100, 400), track.V(600, 400), track.V(1100, 400), track.V(1100, 700), track.V(100, 700),
	}, 40)
	if err != nil {
		t.Fatalf("track.New: %v", err)
	}

	start := tr.StartPosition()
	state := CarState{
		Pos: components.Position{X: start.X, Y: start.Y},
		Rot: components.Rotation{Heading: tr.StartHeading()},
	}
	driver := constantDriver(p.NumInputs(), 0.5, 0.5, 1e-9)
	scratch := NewScratch(p)

	ticks := 0
	for state.Pos.X < 900 {
		if ticks > 2000 {
			t.Fatalf("car stalled at %+v", state.Pos)
		}
		if err := Drive(&state, driver, tr, p, testDT, scratch); err != nil {
			t.Fatalf("tick %d: %v", ticks, err)
		}
		ticks++
		if state.Prog.Crashed {
			t.Fatalf("tick %d: marked off track at %+v (sector %d)", ticks, state.Pos, tr.SectorOf(state.Pos.Vec()))
		}
	}
	// One more tick credits the sector the car is now in.
	if err := Drive(&state, driver, tr, p, testDT, scratch); err != nil {
		t.Fatalf("Drive: %v", err)
	}

	if state.Prog.Crashed {
		t.Fatalf("marked off track at %+v", state.Pos)
	}
	if state.Prog.Sector != 1 {
		t.Errorf("sector: got %d, want 1", state.Prog.Sector)
	}
	if state.Prog.Fitness < p.Fitness.SectorBonus {
		t.Errorf("fitness %d should include the sector bonus %d", state.Prog.Fitness, p.Fitness.SectorBonus)
	}
	if state.Prog.SectorTimer >= ticks {
		t.Errorf("sector timer should restart at the handoff: got %d after %d ticks", state.Prog.SectorTimer, ticks)
	}
	if state.Pos.Y != start.Y {
		t.Errorf("car drifted off the centre line: y=%v", state.Pos.Y)
	}
}

func TestDriveOvershootingCornerCrashes(t *testing.T) {
	p := defaultParams()
	tr, err := track.New([]track.Vec2{
		track.V(100, 400), track.V(1100, 400), track.V(900, 700), track.V(300, 700),
	}, 40)
	if err != nil {
		t.Fatalf("track.New: %v", err)
	}

	start := tr.StartPosition()
	state := CarState{
		Pos: components.Position{X: start.X, Y: start.Y},
		Rot: components.Rotation{Heading: tr.StartHeading()},
	}
	driver := constantDriver(p.NumInputs(), 0.5, 0.5, 1e-9)
	scratch := NewScratch(p)

	for tick := 0; !state.Prog.Crashed; tick++ {
		if tick > 2000 {
			t.Fatalf("car never left the track: %+v", state.Pos)
		}
		if err := Drive(&state, driver, tr, p, testDT, scratch); err != nil {
			t.Fatalf("tick %d: %v", tick, err)
		}
	}

	// Sector 1's midpoint becomes the nearest one at x = 828.125, where the
	// car is ~226px from sector 1's centre line.
	if state.Pos.X <= 828.125 || state.Pos.X > 838.125 {
		t.Errorf("crash position: got x=%v, want just past 828.125", state.Pos.X)
	}
	if state.Pos.Y != start.Y {
		t.Errorf("car drifted off the centre line: y=%v", state.Pos.Y)
	}
	if state.Prog.Sector != 0 {
		t.Errorf("sector 1 should not be credited to a crashed car: got %d", state.Prog.Sector)
	}
}

func TestDriveMarksOffTrackAndFreezes(t *testing.T) {
	p := defaultParams()
	tr := squareTrack(t)
	state := CarState{
		Pos: components.Position{X: 300, Y: 119},
		Vel: components.Velocity{Y: 300},
	}
	driver := constantDriver(p.NumInputs(), 0.5, 0.5, 0.5)
	scratch := NewScratch(p)

	if err := Drive(&state, driver, tr, p, testDT, scratch); err != nil {
		t.Fatalf("Drive: %v", err)
	}
	if !state.Prog.Crashed {
		t.Fatalf("expected crash, position %+v", state.Pos)
	}

	frozen := state
	for i := 0; i < 10; i++ {
		if err := Drive(&state, driver, tr, p, testDT, scratch); err != nil {
			t.Fatalf("Drive: %v", err)
		}
	}
	if state != frozen {
		t.Errorf("crashed car changed: got %+v, want %+v", state, frozen)
	}
}

func TestDriveReportsSizeMismatch(t *testing.T) {
	p := defaultParams()
	tr := squareTrack(t)
	state := CarState{Pos: components.Position{X: 300, Y: 100}}
	driver := constantDriver(p.NumInputs()-1, 0.5, 0.5, 0.5)

	err := Drive(&state, driver, tr, p, testDT, NewScratch(p))
	if _, ok := err.(*neural.SizeMismatchError); !ok {
		t.Fatalf("expected *neural.SizeMismatchError, got %v", err)
	}
}

func BenchmarkCastRays(b *testing.B) {
	p := defaultParams()
	tr := track.Default()
	rays := make([]float64, p.Sensors.NumRays)
	origin := tr.StartPosition()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		CastRays(rays, tr, origin, 0, 0, p.Sensors)
	}
}
