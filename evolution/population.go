// Package evolution runs generations of neural-network drivers on a track:
// per-tick driving, ranking by final fitness, and breeding every child of the
// next generation from the two best cars.
package evolution

import (
	"fmt"
	"log/slog"
	"math/rand"
	"sort"

	"github.com/mlange-42/ark/ecs"

	"github.com/pthm-cable/racers/components"
	"github.com/pthm-cable/racers/config"
	"github.com/pthm-cable/racers/neural"
	"github.com/pthm-cable/racers/systems"
	"github.com/pthm-cable/racers/telemetry"
	"github.com/pthm-cable/racers/track"
)

// LapRecorder receives completed laps in ascending car order.
type LapRecorder interface {
	RecordLap(car, generation, lapTime int) int
}

// GenerationLogger receives the best final fitness of each finished generation.
type GenerationLogger interface {
	LogGeneration(generation, bestFitness int) error
}

// Options configures a Population.
type Options struct {
	Size      int
	TimeLimit int // ticks per generation
	Workers   int // 0 = GOMAXPROCS

	Params   systems.Params
	Topology neural.Topology
	Init     neural.InitRanges
	Mutation neural.MutationRates

	// Seed, if set, replaces random initialisation: every first-generation
	// car gets a mutated copy of it.
	Seed *neural.Network

	Laps         LapRecorder
	Logger       GenerationLogger
	OnGeneration func(*GenerationResult)
	Perf         *telemetry.PerfCollector
}

// OptionsFromConfig builds Options from a loaded config. Collaborators are
// left nil.
func OptionsFromConfig(cfg *config.Config) (Options, error) {
	hiddenAct, err := neural.ParseActivation(cfg.Neural.HiddenActivation)
	if err != nil {
		return Options{}, fmt.Errorf("hidden activation: %w", err)
	}
	outputAct, err := neural.ParseActivation(cfg.Neural.OutputActivation)
	if err != nil {
		return Options{}, fmt.Errorf("output activation: %w", err)
	}

	return Options{
		Size:      cfg.Population.Size,
		TimeLimit: cfg.Population.TimeLimit,
		Workers:   cfg.Population.Workers,
		Params:    systems.NewParams(cfg),
		Topology: neural.Topology{
			Inputs:           cfg.Derived.NumInputs,
			Hidden:           append([]int(nil), cfg.Neural.HiddenLayers...),
			Outputs:          cfg.Neural.NumOutputs,
			HiddenActivation: hiddenAct,
			OutputActivation: outputAct,
		},
		Init: neural.InitRanges{
			Weight: cfg.Neural.WeightInitRange,
			Bias:   cfg.Neural.BiasInitRange,
		},
		Mutation: neural.MutationRates{
			WeightReplace: cfg.Mutation.WeightReplaceRate,
			WeightPerturb: cfg.Mutation.WeightPerturbRate,
			BiasReplace:   cfg.Mutation.BiasReplaceRate,
			BiasPerturb:   cfg.Mutation.BiasPerturbRate,
			WeightRange:   cfg.Mutation.WeightReplaceRange,
			BiasRange:     cfg.Mutation.BiasReplaceRange,
			PerturbRange:  cfg.Mutation.PerturbRange,
		},
	}, nil
}

// RankedCar is one car of a finished generation, in rank order.
type RankedCar struct {
	ID      int
	Fitness int // final fitness
	Laps    int
	Crashed bool
	Brain   *neural.Network
}

// GenerationResult describes a finished generation.
type GenerationResult struct {
	Generation int
	Ticks      int
	Ranked     []RankedCar // best first
	Stats      telemetry.GenerationStats
	Mutations  neural.MutationStats // applied while breeding the next generation
}

// Best returns the top-ranked car.
func (r *GenerationResult) Best() RankedCar {
	return r.Ranked[0]
}

// CarView is a read-only snapshot of one car for rendering.
type CarView struct {
	ID      int
	X, Y    float32
	Heading float32
	Crashed bool
	Best    bool
	Fitness int
	Laps    int
	Sector  int
}

// Population owns the cars of the current generation.
type Population struct {
	world *ecs.World

	carMapper *ecs.Map6[
		components.Position,
		components.Velocity,
		components.Acceleration,
		components.Rotation,
		components.Progress,
		components.Driver,
	]
	progressFilter *ecs.Filter1[components.Progress]

	// Individual component mappers for lookups
	posMap    *ecs.Map1[components.Position]
	velMap    *ecs.Map1[components.Velocity]
	accMap    *ecs.Map1[components.Acceleration]
	rotMap    *ecs.Map1[components.Rotation]
	progMap   *ecs.Map1[components.Progress]
	driverMap *ecs.Map1[components.Driver]

	// Cars in index order. Index i holds car i+1.
	cars []ecs.Entity

	track    *track.Track
	opts     Options
	rng      *rand.Rand
	parallel *parallelState

	generation int
	ticks      int
}

// NewPopulation creates the first generation. Every car starts at the track's
// start position facing along sector 0. The controller input width must match
// the sensor vector width.
func NewPopulation(tr *track.Track, opts Options, rng *rand.Rand) (*Population, error) {
	if opts.Size < 2 {
		return nil, fmt.Errorf("population size %d: need at least 2 cars", opts.Size)
	}
	if opts.TimeLimit < 1 {
		return nil, fmt.Errorf("time limit %d: need at least 1 tick", opts.TimeLimit)
	}
	if want := opts.Params.NumInputs(); opts.Topology.Inputs != want {
		return nil, &neural.SizeMismatchError{Expected: opts.Topology.Inputs, Got: want}
	}
	if opts.Topology.Outputs != 3 {
		return nil, fmt.Errorf("controller has %d outputs, want 3", opts.Topology.Outputs)
	}
	if opts.Seed != nil {
		if err := opts.Seed.Validate(); err != nil {
			return nil, fmt.Errorf("seed network: %w", err)
		}
		if got := opts.Seed.InputSize(); got != opts.Params.NumInputs() {
			return nil, &neural.SizeMismatchError{Expected: got, Got: opts.Params.NumInputs()}
		}
		if opts.Seed.OutputSize() != 3 {
			return nil, fmt.Errorf("seed network has %d outputs, want 3", opts.Seed.OutputSize())
		}
	}

	world := ecs.NewWorld()
	p := &Population{
		world: world,
		carMapper: ecs.NewMap6[
			components.Position,
			components.Velocity,
			components.Acceleration,
			components.Rotation,
			components.Progress,
			components.Driver,
		](world),
		progressFilter: ecs.NewFilter1[components.Progress](world),
		posMap:         ecs.NewMap1[components.Position](world),
		velMap:         ecs.NewMap1[components.Velocity](world),
		accMap:         ecs.NewMap1[components.Acceleration](world),
		rotMap:         ecs.NewMap1[components.Rotation](world),
		progMap:        ecs.NewMap1[components.Progress](world),
		driverMap:      ecs.NewMap1[components.Driver](world),
		track:          tr,
		opts:           opts,
		rng:            rng,
		parallel:       newParallelState(opts.Workers, opts.Params),
	}

	p.cars = make([]ecs.Entity, 0, opts.Size)
	for i := 0; i < opts.Size; i++ {
		var brain *neural.Network
		if opts.Seed != nil {
			brain = opts.Seed.Clone()
			brain.Mutate(rng, opts.Mutation)
		} else {
			brain = neural.NewNetwork(rng, opts.Topology, opts.Init)
		}
		p.cars = append(p.cars, p.spawnCar(i+1, brain))
	}

	return p, nil
}

// spawnCar creates a car entity at the start line.
func (p *Population) spawnCar(id int, brain *neural.Network) ecs.Entity {
	start := p.track.StartPosition()
	pos := components.Position{X: start.X, Y: start.Y}
	vel := components.Velocity{}
	acc := components.Acceleration{}
	rot := components.Rotation{Heading: p.track.StartHeading()}
	prog := components.Progress{}
	driver := components.Driver{ID: id, Brain: brain}

	return p.carMapper.NewEntity(&pos, &vel, &acc, &rot, &prog, &driver)
}

// Tick advances the simulation by one step. If the generation's time is up or
// every car has crashed, the step only advances the generation. Otherwise
// every car drives once and completed laps are reported in car order.
func (p *Population) Tick(dt float32) error {
	if p.ticks >= p.opts.TimeLimit || p.AllCrashed() {
		return p.AdvanceGeneration()
	}

	perf := p.opts.Perf
	perf.StartTick()

	perf.StartPhase(telemetry.PhaseSnapshot)
	p.snapshotCars()

	perf.StartPhase(telemetry.PhaseDrive)
	p.driveCars(dt)

	perf.StartPhase(telemetry.PhaseApply)
	err := p.applyCars()

	p.ticks++
	perf.EndTick()

	if err != nil {
		return fmt.Errorf("generation %d tick %d: %w", p.generation, p.ticks, err)
	}
	return nil
}

// AllCrashed reports whether no car is still driving.
func (p *Population) AllCrashed() bool {
	all := true
	query := p.progressFilter.Query()
	for query.Next() {
		if !query.Get().Crashed {
			all = false
		}
	}
	return all
}

// rank returns the current cars ordered by final fitness, best first.
// Equal fitness keeps car order.
func (p *Population) rank() []RankedCar {
	elapsed := p.ticks + 1
	ranked := make([]RankedCar, len(p.cars))
	for i, e := range p.cars {
		prog := p.progMap.Get(e)
		driver := p.driverMap.Get(e)
		ranked[i] = RankedCar{
			ID:      driver.ID,
			Fitness: systems.FinalFitness(*prog, elapsed, p.opts.Params.Fitness),
			Laps:    prog.Laps,
			Crashed: prog.Crashed,
			Brain:   driver.Brain,
		}
	}
	sort.SliceStable(ranked, func(a, b int) bool {
		return ranked[a].Fitness > ranked[b].Fitness
	})
	return ranked
}

// AdvanceGeneration ranks the cars, breeds a full new generation from the two
// best, and replaces every car. No car survives unchanged.
func (p *Population) AdvanceGeneration() error {
	perf := p.opts.Perf
	perf.StartTick()
	perf.StartPhase(telemetry.PhaseAdvance)
	defer perf.EndTick()

	ranked := p.rank()
	parentA, parentB := ranked[0].Brain, ranked[1].Brain

	children := make([]*neural.Network, len(p.cars))
	var mutations neural.MutationStats
	for i := range children {
		child, stats, err := neural.Reproduce(parentA, parentB, p.rng, p.opts.Mutation)
		if err != nil {
			return fmt.Errorf("breeding car %d: %w", i+1, err)
		}
		children[i] = child
		mutations.Add(stats)
	}

	results := make([]telemetry.CarResult, len(ranked))
	for i, r := range ranked {
		results[i] = telemetry.CarResult{ID: r.ID, Fitness: r.Fitness, Laps: r.Laps, Crashed: r.Crashed}
	}
	result := &GenerationResult{
		Generation: p.generation,
		Ticks:      p.ticks,
		Ranked:     ranked,
		Stats:      telemetry.ComputeGenerationStats(p.generation, p.ticks, results),
		Mutations:  mutations,
	}

	for _, e := range p.cars {
		p.world.RemoveEntity(e)
	}
	p.cars = p.cars[:0]
	for i, brain := range children {
		p.cars = append(p.cars, p.spawnCar(i+1, brain))
	}

	slog.Info("generation_complete", "stats", result.Stats)

	var logErr error
	if p.opts.Logger != nil {
		logErr = p.opts.Logger.LogGeneration(result.Generation, result.Best().Fitness)
	}
	if p.opts.OnGeneration != nil {
		p.opts.OnGeneration(result)
	}

	p.ticks = 0
	p.generation++

	if logErr != nil {
		return fmt.Errorf("logging generation %d: %w", result.Generation, logErr)
	}
	return nil
}

// BestCar returns the id of the car with the highest current fitness,
// crashed or not. The first car wins ties.
func (p *Population) BestCar() int {
	bestID := 0
	bestFitness := 0
	for i, e := range p.cars {
		f := p.progMap.Get(e).Fitness
		if i == 0 || f > bestFitness {
			bestFitness = f
			bestID = p.driverMap.Get(e).ID
		}
	}
	return bestID
}

// Cars returns a render view of every car in car order.
func (p *Population) Cars() []CarView {
	best := p.BestCar()
	views := make([]CarView, len(p.cars))
	for i, e := range p.cars {
		pos := p.posMap.Get(e)
		rot := p.rotMap.Get(e)
		prog := p.progMap.Get(e)
		id := p.driverMap.Get(e).ID
		views[i] = CarView{
			ID:      id,
			X:       pos.X,
			Y:       pos.Y,
			Heading: rot.Heading,
			Crashed: prog.Crashed,
			Best:    id == best,
			Fitness: prog.Fitness,
			Laps:    prog.Laps,
			Sector:  prog.Sector,
		}
	}
	return views
}

// Brain returns the controller of car id (1-based), or nil.
func (p *Population) Brain(id int) *neural.Network {
	if id < 1 || id > len(p.cars) {
		return nil
	}
	return p.driverMap.Get(p.cars[id-1]).Brain
}

// Car returns a copy of car id's progress (1-based).
func (p *Population) Car(id int) (components.Progress, bool) {
	if id < 1 || id > len(p.cars) {
		return components.Progress{}, false
	}
	return *p.progMap.Get(p.cars[id-1]), true
}

// State returns a copy of every mutable component of car id.
func (p *Population) State(id int) (systems.CarState, bool) {
	if id < 1 || id > len(p.cars) {
		return systems.CarState{}, false
	}
	e := p.cars[id-1]
	return systems.CarState{
		Pos:  *p.posMap.Get(e),
		Vel:  *p.velMap.Get(e),
		Acc:  *p.accMap.Get(e),
		Rot:  *p.rotMap.Get(e),
		Prog: *p.progMap.Get(e),
	}, true
}

// Params returns the per-car system parameters the population runs with.
func (p *Population) Params() systems.Params { return p.opts.Params }

// Progress returns the elapsed share of the generation's time limit.
func (p *Population) Progress() float32 {
	return float32(p.ticks) / float32(p.opts.TimeLimit)
}

// Generation returns the current generation number, starting at 0.
func (p *Population) Generation() int { return p.generation }

// Ticks returns the ticks elapsed in the current generation.
func (p *Population) Ticks() int { return p.ticks }

// Size returns the number of cars.
func (p *Population) Size() int { return len(p.cars) }

// TimeLimit returns the ticks per generation.
func (p *Population) TimeLimit() int { return p.opts.TimeLimit }

// Track returns the track the cars drive on.
func (p *Population) Track() *track.Track { return p.track }

// Close stops the worker pool.
func (p *Population) Close() {
	p.parallel.stopWorkers()
}
