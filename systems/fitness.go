package systems

import (
	"math"

	"github.com/pthm-cable/racers/components"
	"github.com/pthm-cable/racers/track"
)

// SpeedBonus rewards fast sector completion: multiplier / ticks², truncated.
// A zero-tick sector earns the bonus for one tick.
func SpeedBonus(ticks int, f FitnessParams) int {
	if ticks <= 1 {
		return f.SectorSpeedMultiplier
	}
	t := float64(ticks)
	return int(float64(f.SectorSpeedMultiplier) / (t * t))
}

// TollFitness scores one tick for a car currently in sector. It does nothing
// once the car has crashed. Timers are not advanced here.
func TollFitness(prog *components.Progress, speed float32, sector, lastSector int, f FitnessParams) {
	if prog.Crashed {
		return
	}
	prog.Fitness++
	prog.SpeedSum += speed

	switch {
	case sector == prog.Sector+1:
		prog.Sector++
		prog.Fitness += f.SectorBonus + SpeedBonus(prog.SectorTimer, f)
		prog.SectorTimer = 0

	case sector == 0 && prog.Sector == lastSector:
		prog.Fitness += f.LapBonus + SpeedBonus(prog.SectorTimer, f)
		prog.Sector = 0
		prog.SectorTimer = 0
		prog.LapTime = prog.LapTimer
		prog.LapTimer = 0
		prog.Laps++
		prog.JustLapped = true

	case prog.Sector == 0 && sector == lastSector:
		// Reversed over the start line.
		prog.Crashed = true
		prog.Fitness += f.BackLapPunishment
		prog.SectorTimer = 0
		prog.Sector = lastSector

	case sector < prog.Sector:
		prog.Fitness += f.BackSectorPunishment
		prog.SectorTimer = 0
		prog.Sector = sector
	}
}

// FinalFitness is the ranking score after ticks have elapsed: accumulated
// fitness, the crash penalty, and the truncated average speed times its factor.
func FinalFitness(prog components.Progress, ticks int, f FitnessParams) int {
	fitness := prog.Fitness
	if prog.Crashed {
		fitness += f.CrashPunishment
	}
	if ticks > 0 {
		avgSpeed := int(prog.SpeedSum) / ticks
		fitness += avgSpeed * f.AverageSpeedFactor
	}
	return fitness
}

// IsOnTrack reports whether pos lies within half the track width of the
// centre line of the sector it is nearest to.
func IsOnTrack(tr *track.Track, pos components.Position) bool {
	p := pos.Vec()
	return tr.Contains(p, tr.SectorOf(p))
}

// Speed returns |v|.
func Speed(v components.Velocity) float32 {
	return float32(math.Hypot(float64(v.X), float64(v.Y)))
}
