package evolution

import (
	"runtime"
	"sync"

	"github.com/mlange-42/ark/ecs"

	"github.com/pthm-cable/racers/components"
	"github.com/pthm-cable/racers/systems"
)

// parallelThreshold is the minimum car count to use parallel processing.
// Below this, single-threaded is faster due to goroutine overhead.
const parallelThreshold = 64

// carSnapshot captures one car's state for the drive phase.
type carSnapshot struct {
	Entity ecs.Entity
	Driver *components.Driver
	State  systems.CarState
	Err    error
}

// workChunk represents a range of cars for a worker to process.
type workChunk struct {
	start, end int
	dt         float32
}

// parallelState holds resources for parallel car updates.
type parallelState struct {
	snapshots  []carSnapshot
	scratches  []*systems.Scratch
	numWorkers int

	// Worker pool channels
	workChan chan workChunk // sends work to workers
	doneChan chan struct{}  // workers signal completion
	stopChan chan struct{}  // signals workers to exit
	wg       sync.WaitGroup // tracks active workers
	running  bool           // true if workers are running
}

func newParallelState(workers int, params systems.Params) *parallelState {
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	scratches := make([]*systems.Scratch, workers)
	for i := range scratches {
		scratches[i] = systems.NewScratch(params)
	}
	return &parallelState{
		numWorkers: workers,
		scratches:  scratches,
		snapshots:  make([]carSnapshot, 0, 256),
	}
}

// startWorkers launches persistent worker goroutines.
func (p *parallelState) startWorkers(pop *Population) {
	if p.running {
		return
	}

	p.workChan = make(chan workChunk, p.numWorkers)
	p.doneChan = make(chan struct{}, p.numWorkers)
	p.stopChan = make(chan struct{})
	p.running = true

	for i := 0; i < p.numWorkers; i++ {
		p.wg.Add(1)
		go p.worker(pop, i)
	}
}

// stopWorkers signals all workers to exit and waits for them.
func (p *parallelState) stopWorkers() {
	if !p.running {
		return
	}

	close(p.stopChan)
	p.wg.Wait()
	close(p.workChan)
	close(p.doneChan)
	p.running = false
}

// worker runs in a goroutine, processing chunks until stopped.
func (p *parallelState) worker(pop *Population, workerID int) {
	defer p.wg.Done()
	scratch := p.scratches[workerID]

	for {
		select {
		case <-p.stopChan:
			return
		case chunk, ok := <-p.workChan:
			if !ok {
				return
			}
			pop.driveChunk(chunk.start, chunk.end, scratch, chunk.dt)
			p.doneChan <- struct{}{}
		}
	}
}

// snapshotCars copies every car's components in index order.
func (pop *Population) snapshotCars() {
	ps := pop.parallel
	ps.snapshots = ps.snapshots[:0]
	for _, e := range pop.cars {
		ps.snapshots = append(ps.snapshots, carSnapshot{
			Entity: e,
			Driver: pop.driverMap.Get(e),
			State: systems.CarState{
				Pos:  *pop.posMap.Get(e),
				Vel:  *pop.velMap.Get(e),
				Acc:  *pop.accMap.Get(e),
				Rot:  *pop.rotMap.Get(e),
				Prog: *pop.progMap.Get(e),
			},
		})
	}
}

// driveCars runs the drive phase, single-threaded for small populations.
func (pop *Population) driveCars(dt float32) {
	ps := pop.parallel
	n := len(ps.snapshots)
	if n == 0 {
		return
	}

	if n < parallelThreshold || ps.numWorkers == 1 {
		pop.driveChunk(0, n, ps.scratches[0], dt)
		return
	}

	if !ps.running {
		ps.startWorkers(pop)
	}

	chunkSize := (n + ps.numWorkers - 1) / ps.numWorkers

	// Dispatch chunks to workers
	chunksDispatched := 0
	for w := 0; w < ps.numWorkers; w++ {
		start := w * chunkSize
		end := start + chunkSize
		if end > n {
			end = n
		}
		if start >= end {
			continue
		}

		ps.workChan <- workChunk{start: start, end: end, dt: dt}
		chunksDispatched++
	}

	// Wait for all chunks to complete
	for i := 0; i < chunksDispatched; i++ {
		<-ps.doneChan
	}
}

// driveChunk processes a range of cars for a single worker.
func (pop *Population) driveChunk(i0, i1 int, scratch *systems.Scratch, dt float32) {
	for i := i0; i < i1; i++ {
		snap := &pop.parallel.snapshots[i]
		snap.Err = systems.Drive(&snap.State, snap.Driver, pop.track, pop.opts.Params, dt, scratch)
	}
}

// applyCars writes results back to the components in index order and
// reports laps. The first drive error is returned after every car is written.
func (pop *Population) applyCars() error {
	var firstErr error
	for i := range pop.parallel.snapshots {
		snap := &pop.parallel.snapshots[i]
		s := &snap.State

		*pop.posMap.Get(snap.Entity) = s.Pos
		*pop.velMap.Get(snap.Entity) = s.Vel
		*pop.accMap.Get(snap.Entity) = s.Acc
		*pop.rotMap.Get(snap.Entity) = s.Rot
		*pop.progMap.Get(snap.Entity) = s.Prog

		if snap.Err != nil && firstErr == nil {
			firstErr = snap.Err
		}
		if s.Prog.JustLapped && pop.opts.Laps != nil {
			pop.opts.Laps.RecordLap(snap.Driver.ID, pop.generation, s.Prog.LapTime)
		}
	}
	return firstErr
}
