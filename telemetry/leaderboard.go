package telemetry

import (
	"fmt"
	"io"
	"log/slog"
	"sync"
	"text/tabwriter"
)

// DefaultLeaderboardCapacity is the number of slots when none is configured.
const DefaultLeaderboardCapacity = 10

// LapEntry is one leaderboard slot. A zero Car marks an unused slot.
type LapEntry struct {
	Car        int `csv:"car" json:"car"`
	Generation int `csv:"generation" json:"generation"`
	LapTime    int `csv:"lap_time" json:"lap_time"`
}

// Used reports whether the slot holds a lap.
func (e LapEntry) Used() bool {
	return e.Car != 0
}

// Leaderboard keeps the fastest laps seen across all generations, ordered by
// ascending lap time. It is safe for concurrent use.
type Leaderboard struct {
	mu    sync.RWMutex
	slots []LapEntry
}

// NewLeaderboard creates a leaderboard with capacity slots.
func NewLeaderboard(capacity int) *Leaderboard {
	if capacity <= 0 {
		capacity = DefaultLeaderboardCapacity
	}
	return &Leaderboard{slots: make([]LapEntry, capacity)}
}

// RecordLap inserts a lap at the first slot that is unused or holds a strictly
// slower time. Later entries shift down and the last one falls off. It returns
// the 0-based placement, or -1 if the lap did not place.
func (lb *Leaderboard) RecordLap(car, generation, lapTime int) int {
	lb.mu.Lock()
	defer lb.mu.Unlock()

	for i, slot := range lb.slots {
		if slot.Used() && lapTime >= slot.LapTime {
			continue
		}
		copy(lb.slots[i+1:], lb.slots[i:len(lb.slots)-1])
		lb.slots[i] = LapEntry{Car: car, Generation: generation, LapTime: lapTime}

		slog.Info("leaderboard_update",
			"place", i+1,
			"car", car,
			"generation", generation,
			"lap_time", lapTime,
		)
		return i
	}
	return -1
}

// Capacity returns the number of slots.
func (lb *Leaderboard) Capacity() int {
	return len(lb.slots)
}

// Len returns the number of used slots.
func (lb *Leaderboard) Len() int {
	lb.mu.RLock()
	defer lb.mu.RUnlock()
	n := 0
	for _, s := range lb.slots {
		if s.Used() {
			n++
		}
	}
	return n
}

// Fastest returns the best lap, if any.
func (lb *Leaderboard) Fastest() (LapEntry, bool) {
	lb.mu.RLock()
	defer lb.mu.RUnlock()
	if !lb.slots[0].Used() {
		return LapEntry{}, false
	}
	return lb.slots[0], true
}

// Slowest returns the slowest lap still on the board, if any.
func (lb *Leaderboard) Slowest() (LapEntry, bool) {
	lb.mu.RLock()
	defer lb.mu.RUnlock()
	for i := len(lb.slots) - 1; i >= 0; i-- {
		if lb.slots[i].Used() {
			return lb.slots[i], true
		}
	}
	return LapEntry{}, false
}

// Entries returns a copy of every slot, including unused ones.
func (lb *Leaderboard) Entries() []LapEntry {
	lb.mu.RLock()
	defer lb.mu.RUnlock()
	out := make([]LapEntry, len(lb.slots))
	copy(out, lb.slots)
	return out
}

// Reset clears all slots.
func (lb *Leaderboard) Reset() {
	lb.mu.Lock()
	defer lb.mu.Unlock()
	clear(lb.slots)
}

// WriteTable prints every slot as an aligned table.
func (lb *Leaderboard) WriteTable(w io.Writer) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "Car no.\tGeneration\tLap Time")
	for _, e := range lb.Entries() {
		fmt.Fprintf(tw, "%d\t%d\t%d\n", e.Car, e.Generation, e.LapTime)
	}
	return tw.Flush()
}
